package modarith

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/consensys/qnark/circuit"
)

// The span of a primitive is the largest value it can add to its target: the
// sum of its reduced term constants, every one of which may fire. Spans depend
// only on the modulus and the bit lengths of the source bounds, so the sizing
// calculator can replay a synthesis schedule on bounds alone, without
// registers or gate emission.

// SquareSpan returns the largest value Square can add to its target for a
// source register bounded by bound.
func SquareSpan(p, bound *big.Int) *big.Int {
	return sumVals(squareTermVals(modulusWord(p), bound.BitLen()))
}

// MulSpan returns the largest value Mul can add to its target for source
// registers bounded by boundA and boundB.
func MulSpan(p, boundA, boundB *big.Int) *big.Int {
	return sumVals(productTermVals(modulusWord(p), 1, boundA.BitLen(), boundB.BitLen()))
}

// MulSubSpan returns the largest value MulSub can add to its target for
// source registers bounded by boundA and boundB.
func MulSubSpan(p, boundA, boundB *big.Int) *big.Int {
	pp := modulusWord(p)
	return sumVals(productTermVals(pp, pp-1, boundA.BitLen(), boundB.BitLen()))
}

// ScalarMulSpan returns the largest value ScalarMul by c can add to its
// target for a source register bounded by bound.
func ScalarMulSpan(p, c, bound *big.Int) *big.Int {
	pp := modulusWord(p)
	cw := new(big.Int).Mod(c, p).Uint64()
	return sumVals(scalarTermVals(pp, cw, bound.BitLen()))
}

// SubSpan returns the largest value Sub can add to its target for a source
// register bounded by bound.
func SubSpan(p, bound *big.Int) *big.Int {
	pp := modulusWord(p)
	return sumVals(scalarTermVals(pp, pp-1, bound.BitLen()))
}

// squareTermVals lists the reduced constants of a t-bit squaring in emission
// order: for each source bit i the diagonal term 2^(2i) mod p, then for each
// j > i the doubled cross term 2^(i+j+1) mod p.
func squareTermVals(p uint64, t int) []uint64 {
	if t <= 0 {
		return nil
	}
	pw := pow2(p, 2*t)
	vals := make([]uint64, 0, t*(t+1)/2)
	for i := 0; i < t; i++ {
		vals = append(vals, pw[2*i])
		for j := i + 1; j < t; j++ {
			vals = append(vals, pw[i+j]*2%p)
		}
	}
	return vals
}

// productTermVals lists c·2^(i+j) mod p for i < ta, j < tb, row-major in i.
func productTermVals(p, c uint64, ta, tb int) []uint64 {
	if ta <= 0 || tb <= 0 {
		return nil
	}
	pw := pow2(p, ta+tb-1)
	c %= p
	vals := make([]uint64, 0, ta*tb)
	for i := 0; i < ta; i++ {
		for j := 0; j < tb; j++ {
			vals = append(vals, mulMod(c, pw[i+j], p))
		}
	}
	return vals
}

// scalarTermVals lists c·2^i mod p for i < t.
func scalarTermVals(p, c uint64, t int) []uint64 {
	if t <= 0 {
		return nil
	}
	pw := pow2(p, t)
	c %= p
	vals := make([]uint64, t)
	for i := range vals {
		vals[i] = mulMod(c, pw[i], p)
	}
	return vals
}

// pow2 returns the residues 2^k mod p for k < n.
func pow2(p uint64, n int) []uint64 {
	out := make([]uint64, n)
	v := uint64(1) % p
	for k := 0; k < n; k++ {
		out[k] = v
		v = v * 2 % p
	}
	return out
}

// mulMod returns a·b mod p through the full 128-bit product. Both factors
// must already be reduced; then the high word is below p and the division
// cannot overflow.
func mulMod(a, b, p uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, p)
	return rem
}

func modulusWord(p *big.Int) uint64 {
	if p.Sign() <= 0 || p.BitLen() > circuit.MaxWidth {
		panic(fmt.Sprintf("modulus %s outside (0, 2^%d)", p, circuit.MaxWidth))
	}
	return p.Uint64()
}

func sumVals(vals []uint64) *big.Int {
	sum := new(big.Int)
	var w big.Int
	for _, v := range vals {
		sum.Add(sum, w.SetUint64(v))
	}
	return sum
}
