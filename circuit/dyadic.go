package circuit

import (
	"fmt"
	"math"
)

// MaxWidth bounds register widths and dyadic exponents so that phase
// numerators and qubit bounds stay within int64 range.
const MaxWidth = 62

// Dyadic is an exact phase parameter: the rotation angle is 2π·Num/2^Exp.
// Values are kept normalized with Num in [0, 2^Exp), so two Dyadics are equal
// as angles iff they are equal as values, and negation is exact. Exactness is
// what makes mechanically emitted adjoints cancel without rounding residue.
type Dyadic struct {
	Num int64
	Exp uint8
}

// NewDyadic returns the normalized dyadic phase num/2^exp (turns).
func NewDyadic(num int64, exp uint8) Dyadic {
	if exp > MaxWidth {
		panic(fmt.Sprintf("dyadic exponent %d exceeds %d", exp, MaxWidth))
	}
	m := int64(1) << exp
	num %= m
	if num < 0 {
		num += m
	}
	return Dyadic{Num: num, Exp: exp}
}

// Neg returns the exact negated phase.
func (d Dyadic) Neg() Dyadic {
	if d.Num == 0 {
		return Dyadic{Num: 0, Exp: d.Exp}
	}
	return Dyadic{Num: (int64(1) << d.Exp) - d.Num, Exp: d.Exp}
}

// IsZero reports whether the phase is a multiple of 2π.
func (d Dyadic) IsZero() bool {
	return d.Num == 0
}

// Turns returns the phase as a fraction of a full turn, in [0,1).
func (d Dyadic) Turns() float64 {
	return float64(d.Num) / float64(uint64(1)<<d.Exp)
}

// Radians returns the rotation angle in radians.
func (d Dyadic) Radians() float64 {
	return 2 * math.Pi * d.Turns()
}

func (d Dyadic) String() string {
	return fmt.Sprintf("%d/2^%d", d.Num, d.Exp)
}
