package weierstrass

import (
	"fmt"
	"math/big"

	"github.com/consensys/qnark/circuit"
	"github.com/consensys/qnark/ecc"
	"github.com/consensys/qnark/std/modarith"
)

// RequiredWidth returns the narrowest coordinate width at which nbAdds
// chained mixed additions synthesize without a SizingError, whatever the
// classical operands. The addition schedule is replayed on bounds alone,
// starting from reduced coordinates and taking every scalar constant at its
// per-bit worst case of p−1.
func RequiredWidth(cv *ecc.Curve, nbAdds int) (int, error) {
	if nbAdds < 1 {
		return 0, fmt.Errorf("need at least one addition, got %d", nbAdds)
	}

	p := cv.Modulus()
	pm1 := new(big.Int).Sub(p, big.NewInt(1))

	bx := new(big.Int).Set(pm1)
	by := new(big.Int).Set(pm1)
	bz := new(big.Int).Set(pm1)

	max := new(big.Int).Set(pm1)
	track := func(bounds ...*big.Int) {
		for _, b := range bounds {
			if b.Cmp(max) > 0 {
				max.Set(b)
			}
		}
	}
	scalarMax := func(b *big.Int) *big.Int {
		return new(big.Int).Mul(big.NewInt(int64(b.BitLen())), pm1)
	}
	blend := func(acc, in *big.Int) {
		if in.Cmp(acc) > 0 {
			acc.Set(in)
		}
	}

	for i := 0; i < nbAdds; i++ {
		t1 := modarith.SquareSpan(p, bz)
		t2 := scalarMax(t1)
		t3 := modarith.MulSpan(p, bz, t1)
		t4 := scalarMax(t3)
		t2.Add(t2, modarith.SubSpan(p, bx))
		t4.Add(t4, modarith.SubSpan(p, by))

		z3 := modarith.MulSpan(p, bz, t2)

		h2 := modarith.SquareSpan(p, t2)
		t5 := modarith.MulSpan(p, bx, h2)
		t6 := modarith.SquareSpan(p, t4)
		t6.Add(t6, modarith.MulSubSpan(p, t2, h2))
		t6.Add(t6, modarith.SubSpan(p, t5))
		t6.Add(t6, modarith.SubSpan(p, t5))
		w5 := new(big.Int).Add(t5, modarith.SubSpan(p, t6))
		t7 := modarith.MulSpan(p, t4, w5)
		t8 := modarith.MulSpan(p, by, t2)
		t7.Add(t7, modarith.MulSubSpan(p, t8, h2))

		track(t1, t2, t3, t4, z3, h2, t5, t6, w5, t7, t8)

		// a controlled closing swap leaves the larger of the two bounds
		// on both sides
		blend(bx, t6)
		blend(by, t7)
		blend(bz, z3)
	}

	w := max.BitLen()
	if w > circuit.MaxWidth {
		return 0, &modarith.SizingError{Register: "coordinate", Width: circuit.MaxWidth, Bound: max}
	}
	return w, nil
}
