// Package ecc implements classical arithmetic on short Weierstrass curves
// y² = x³ + ax + b over small prime fields.
//
// It carries the immutable curve configuration threaded into every synthesis
// call, precomputes the classical constants the circuit layers consume
// (doubling chains, negations), and verifies solver candidates. Everything
// here is usable independently of circuit synthesis.
package ecc

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/field/pool"
)

// Curve is an immutable short Weierstrass curve configuration over F_p,
// plus the coordinate bit-width used when synthesizing registers for its
// points. There is no ambient curve state in qnark: a *Curve is passed
// explicitly into every synthesis call.
type Curve struct {
	p  *big.Int
	a  *big.Int
	b  *big.Int
	nb int
}

// NewCurve validates and freezes a curve configuration. The modulus must be
// an odd prime above 3, the curve non-singular (4a³+27b² ≠ 0 mod p) and
// nbBits at least the modulus bit length.
func NewCurve(p, a, b *big.Int, nbBits int) (*Curve, error) {
	if p == nil || a == nil || b == nil {
		return nil, errors.New("nil curve parameter")
	}
	if p.Cmp(big.NewInt(3)) <= 0 || p.Bit(0) == 0 || !p.ProbablyPrime(20) {
		return nil, fmt.Errorf("modulus %s is not an odd prime above 3", p)
	}
	if nbBits < p.BitLen() {
		return nil, fmt.Errorf("coordinate width %d below modulus bit length %d", nbBits, p.BitLen())
	}
	c := &Curve{
		p:  new(big.Int).Set(p),
		a:  new(big.Int).Mod(a, p),
		b:  new(big.Int).Mod(b, p),
		nb: nbBits,
	}
	if c.isSingular() {
		return nil, fmt.Errorf("curve a=%s b=%s mod %s is singular", c.a, c.b, p)
	}
	return c, nil
}

// 4a³ + 27b² ≡ 0 marks a singular curve.
func (c *Curve) isSingular() bool {
	t := pool.BigInt.Get()
	u := pool.BigInt.Get()
	defer pool.BigInt.Put(t)
	defer pool.BigInt.Put(u)
	t.Mul(c.a, c.a)
	t.Mul(t, c.a)
	t.Lsh(t, 2)
	u.Mul(c.b, c.b)
	u.Mul(u, big.NewInt(27))
	t.Add(t, u)
	t.Mod(t, c.p)
	return t.Sign() == 0
}

// Modulus returns a copy of p.
func (c *Curve) Modulus() *big.Int { return new(big.Int).Set(c.p) }

// A returns a copy of the a coefficient.
func (c *Curve) A() *big.Int { return new(big.Int).Set(c.a) }

// B returns a copy of the b coefficient.
func (c *Curve) B() *big.Int { return new(big.Int).Set(c.b) }

// NbBits returns the coordinate bit-width registers are sized with.
func (c *Curve) NbBits() int { return c.nb }

func (c *Curve) String() string {
	return fmt.Sprintf("y²=x³+%s·x+%s mod %s", c.a, c.b, c.p)
}

// Point is a classical affine point, or the point at infinity (zero value).
type Point struct {
	X, Y *big.Int
}

// Infinity returns the identity element.
func Infinity() Point { return Point{} }

// NewPoint returns the affine point (x,y).
func NewPoint(x, y int64) Point {
	return Point{X: big.NewInt(x), Y: big.NewInt(y)}
}

// IsInfinity reports whether p is the identity element.
func (p Point) IsInfinity() bool { return p.X == nil || p.Y == nil }

// Equal reports whether two points are equal.
func (p Point) Equal(q Point) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() && q.IsInfinity()
	}
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

func (p Point) String() string {
	if p.IsInfinity() {
		return "∞"
	}
	return fmt.Sprintf("(%s,%s)", p.X, p.Y)
}

// IsOnCurve reports whether p satisfies the curve equation. The point at
// infinity is on every curve.
func (c *Curve) IsOnCurve(p Point) bool {
	if p.IsInfinity() {
		return true
	}
	l := pool.BigInt.Get()
	r := pool.BigInt.Get()
	defer pool.BigInt.Put(l)
	defer pool.BigInt.Put(r)
	l.Mul(p.Y, p.Y)
	l.Mod(l, c.p)
	r.Mul(p.X, p.X)
	r.Mul(r, p.X)
	r.Add(r, new(big.Int).Mul(c.a, p.X))
	r.Add(r, c.b)
	r.Mod(r, c.p)
	return l.Cmp(r) == 0
}

// Neg returns -p.
func (c *Curve) Neg(p Point) Point {
	if p.IsInfinity() {
		return Infinity()
	}
	y := new(big.Int).Neg(p.Y)
	y.Mod(y, c.p)
	return Point{X: new(big.Int).Set(p.X), Y: y}
}

// Add returns p+q using the full chord-tangent law, including identity and
// doubling cases. This classical helper is total; only the synthesized
// formula has the affine-distinct precondition.
func (c *Curve) Add(p, q Point) Point {
	if p.IsInfinity() {
		return clonePoint(q)
	}
	if q.IsInfinity() {
		return clonePoint(p)
	}
	if p.X.Cmp(q.X) == 0 {
		if p.Y.Cmp(q.Y) != 0 {
			return Infinity()
		}
		return c.Double(p)
	}
	num := pool.BigInt.Get()
	den := pool.BigInt.Get()
	defer pool.BigInt.Put(num)
	defer pool.BigInt.Put(den)
	num.Sub(q.Y, p.Y)
	den.Sub(q.X, p.X)
	den.Mod(den, c.p)
	inv, ok := ModInverse(den, c.p)
	if !ok {
		return Infinity()
	}
	lambda := num.Mul(num, inv)
	lambda.Mod(lambda, c.p)
	return c.chord(lambda, p, q)
}

// Double returns 2p.
func (c *Curve) Double(p Point) Point {
	if p.IsInfinity() || p.Y.Sign() == 0 {
		return Infinity()
	}
	num := pool.BigInt.Get()
	den := pool.BigInt.Get()
	defer pool.BigInt.Put(num)
	defer pool.BigInt.Put(den)
	num.Mul(p.X, p.X)
	num.Mul(num, big.NewInt(3))
	num.Add(num, c.a)
	den.Lsh(p.Y, 1)
	den.Mod(den, c.p)
	inv, ok := ModInverse(den, c.p)
	if !ok {
		return Infinity()
	}
	lambda := num.Mul(num, inv)
	lambda.Mod(lambda, c.p)
	return c.chord(lambda, p, p)
}

// chord completes the addition law from the line slope.
func (c *Curve) chord(lambda *big.Int, p, q Point) Point {
	x3 := new(big.Int).Mul(lambda, lambda)
	x3.Sub(x3, p.X)
	x3.Sub(x3, q.X)
	x3.Mod(x3, c.p)
	y3 := new(big.Int).Sub(p.X, x3)
	y3.Mul(y3, lambda)
	y3.Sub(y3, p.Y)
	y3.Mod(y3, c.p)
	return Point{X: x3, Y: y3}
}

// ScalarMul returns k·p by double-and-add, least significant bit first.
func (c *Curve) ScalarMul(k *big.Int, p Point) Point {
	acc := Infinity()
	base := clonePoint(p)
	kk := new(big.Int).Set(k)
	if kk.Sign() < 0 {
		kk.Neg(kk)
		base = c.Neg(base)
	}
	for i := 0; i < kk.BitLen(); i++ {
		if kk.Bit(i) == 1 {
			acc = c.Add(acc, base)
		}
		base = c.Double(base)
	}
	return acc
}

// NormalizeJacobian reduces raw Jacobian coordinate values mod p and returns
// the affine point (X/Z², Y/Z³). Values exceeding p are accepted: measured
// registers hold unreduced phase-arithmetic sums. Z ≡ 0 yields infinity.
func (c *Curve) NormalizeJacobian(x, y, z *big.Int) Point {
	zz := pool.BigInt.Get()
	defer pool.BigInt.Put(zz)
	zz.Mod(z, c.p)
	if zz.Sign() == 0 {
		return Infinity()
	}
	z2 := pool.BigInt.Get()
	defer pool.BigInt.Put(z2)
	z2.Mul(zz, zz)
	z2.Mod(z2, c.p)
	inv2, _ := ModInverse(z2, c.p)
	z3 := z2.Mul(z2, zz)
	z3.Mod(z3, c.p)
	inv3, _ := ModInverse(z3, c.p)

	ax := new(big.Int).Mod(x, c.p)
	ax.Mul(ax, inv2)
	ax.Mod(ax, c.p)
	ay := new(big.Int).Mod(y, c.p)
	ay.Mul(ay, inv3)
	ay.Mod(ay, c.p)
	return Point{X: ax, Y: ay}
}

// ModInverse returns x⁻¹ mod n and whether it exists.
func ModInverse(x, n *big.Int) (*big.Int, bool) {
	inv := new(big.Int).ModInverse(x, n)
	if inv == nil {
		return nil, false
	}
	return inv, true
}

func clonePoint(p Point) Point {
	if p.IsInfinity() {
		return Infinity()
	}
	return Point{X: new(big.Int).Set(p.X), Y: new(big.Int).Set(p.Y)}
}
