// Package modarith synthesizes modular arithmetic over a small prime field
// on Fourier-encoded registers.
//
// Each primitive adds a value to its target through a single Fourier
// sandwich: qft.Transform on the target, one batch of controlled phase
// rotations per term, qft.Inverse. Term constants are reduced mod p before
// emission, so the target grows per call by at most the sum of the residues
// and its width stays within a few bits of the field width across a whole
// point addition. Running sums are never reduced between calls; congruence
// survives because the sizing check keeps every sum below 2^w, where
// wraparound would break it.
//
// Subtraction has no negative values to represent: Sub and MulSub add the
// per-term complements (p − t) mod p, which shift the sum by multiples of p
// and keep it non-negative.
//
// Forward primitives journal a content tag on the target register; the Inv
// forms emit the exact adjoint and pop the journal. An out-of-order
// uncompute, or one whose sources changed in between, is rejected at
// synthesis time.
package modarith

import (
	"fmt"
	"math/big"

	"github.com/consensys/qnark/circuit"
	"github.com/consensys/qnark/ecc"
	"github.com/consensys/qnark/std/qft"
)

// Square appends z² mod p to the target register, reading z in the
// computational basis and rotating the target in the phase basis. Returns a
// SizingError, recording nothing, if the target cannot hold its current
// bound plus SquareSpan.
func Square(cv *ecc.Curve, z, out *circuit.Register, opts ...Option) (*circuit.Sequence, error) {
	cfg := newConfig(opts...)
	checkTarget(out, cfg.ctrls, z)
	pp, err := fieldWord(cv, out)
	if err != nil {
		return nil, err
	}
	terms, span := squareTerms(pp, z, cfg.ctrls)
	return apply("square", tagParams(nil, cfg.ctrls), []*circuit.Register{z}, out, terms, span)
}

// SquareInv uncomputes a matching Square.
func SquareInv(cv *ecc.Curve, z, out *circuit.Register, opts ...Option) (*circuit.Sequence, error) {
	cfg := newConfig(opts...)
	checkTarget(out, cfg.ctrls, z)
	pp, err := fieldWord(cv, out)
	if err != nil {
		return nil, err
	}
	terms, _ := squareTerms(pp, z, cfg.ctrls)
	return applyInv("square", tagParams(nil, cfg.ctrls), []*circuit.Register{z}, out, terms)
}

// Mul appends a·b mod p to the target register.
func Mul(cv *ecc.Curve, a, b, out *circuit.Register, opts ...Option) (*circuit.Sequence, error) {
	cfg := newConfig(opts...)
	checkTarget(out, cfg.ctrls, a, b)
	pp, err := fieldWord(cv, out)
	if err != nil {
		return nil, err
	}
	terms, span := productTerms(pp, a, b, cfg.ctrls, false)
	return apply("mul", tagParams(nil, cfg.ctrls), []*circuit.Register{a, b}, out, terms, span)
}

// MulInv uncomputes a matching Mul.
func MulInv(cv *ecc.Curve, a, b, out *circuit.Register, opts ...Option) (*circuit.Sequence, error) {
	cfg := newConfig(opts...)
	checkTarget(out, cfg.ctrls, a, b)
	pp, err := fieldWord(cv, out)
	if err != nil {
		return nil, err
	}
	terms, _ := productTerms(pp, a, b, cfg.ctrls, false)
	return applyInv("mul", tagParams(nil, cfg.ctrls), []*circuit.Register{a, b}, out, terms)
}

// ScalarMul appends c·src mod p to the target register. The constant is
// reduced first; negative constants are accepted.
func ScalarMul(cv *ecc.Curve, src, out *circuit.Register, c *big.Int, opts ...Option) (*circuit.Sequence, error) {
	cfg := newConfig(opts...)
	checkTarget(out, cfg.ctrls, src)
	pp, err := fieldWord(cv, out)
	if err != nil {
		return nil, err
	}
	cw := new(big.Int).Mod(c, cv.Modulus()).Uint64()
	terms, span := scalarTerms(pp, cw, src, cfg.ctrls)
	return apply("scalarmul", tagParams([]uint64{cw}, cfg.ctrls), []*circuit.Register{src}, out, terms, span)
}

// ScalarMulInv uncomputes a matching ScalarMul by the same constant.
func ScalarMulInv(cv *ecc.Curve, src, out *circuit.Register, c *big.Int, opts ...Option) (*circuit.Sequence, error) {
	cfg := newConfig(opts...)
	checkTarget(out, cfg.ctrls, src)
	pp, err := fieldWord(cv, out)
	if err != nil {
		return nil, err
	}
	cw := new(big.Int).Mod(c, cv.Modulus()).Uint64()
	terms, _ := scalarTerms(pp, cw, src, cfg.ctrls)
	return applyInv("scalarmul", tagParams([]uint64{cw}, cfg.ctrls), []*circuit.Register{src}, out, terms)
}

// Sub appends −src mod p to the target register: each source bit i
// contributes the complement constant (p − 2^i mod p) mod p, so the running
// sum stays non-negative while landing in the subtrahend's residue class.
func Sub(cv *ecc.Curve, src, target *circuit.Register, opts ...Option) (*circuit.Sequence, error) {
	cfg := newConfig(opts...)
	checkTarget(target, cfg.ctrls, src)
	pp, err := fieldWord(cv, target)
	if err != nil {
		return nil, err
	}
	terms, span := scalarTerms(pp, pp-1, src, cfg.ctrls)
	return apply("sub", tagParams(nil, cfg.ctrls), []*circuit.Register{src}, target, terms, span)
}

// SubInv uncomputes a matching Sub.
func SubInv(cv *ecc.Curve, src, target *circuit.Register, opts ...Option) (*circuit.Sequence, error) {
	cfg := newConfig(opts...)
	checkTarget(target, cfg.ctrls, src)
	pp, err := fieldWord(cv, target)
	if err != nil {
		return nil, err
	}
	terms, _ := scalarTerms(pp, pp-1, src, cfg.ctrls)
	return applyInv("sub", tagParams(nil, cfg.ctrls), []*circuit.Register{src}, target, terms)
}

// MulSub appends −a·b mod p to the target register, the complement form of
// Mul.
func MulSub(cv *ecc.Curve, a, b, out *circuit.Register, opts ...Option) (*circuit.Sequence, error) {
	cfg := newConfig(opts...)
	checkTarget(out, cfg.ctrls, a, b)
	pp, err := fieldWord(cv, out)
	if err != nil {
		return nil, err
	}
	terms, span := productTerms(pp, a, b, cfg.ctrls, true)
	return apply("mulsub", tagParams(nil, cfg.ctrls), []*circuit.Register{a, b}, out, terms, span)
}

// MulSubInv uncomputes a matching MulSub.
func MulSubInv(cv *ecc.Curve, a, b, out *circuit.Register, opts ...Option) (*circuit.Sequence, error) {
	cfg := newConfig(opts...)
	checkTarget(out, cfg.ctrls, a, b)
	pp, err := fieldWord(cv, out)
	if err != nil {
		return nil, err
	}
	terms, _ := productTerms(pp, a, b, cfg.ctrls, true)
	return applyInv("mulsub", tagParams(nil, cfg.ctrls), []*circuit.Register{a, b}, out, terms)
}

// term is one reduced constant together with the qubits that condition it.
type term struct {
	val   uint64
	ctrls []int
}

func apply(label string, params []uint64, srcs []*circuit.Register, out *circuit.Register, terms []term, span *big.Int) (*circuit.Sequence, error) {
	bound := out.Bound()
	bound.Add(bound, span)
	if bound.BitLen() > out.Width() {
		return nil, &SizingError{Register: out.Name(), Width: out.Width(), Bound: bound}
	}
	s := emit(out, terms)
	out.NoteWrite(circuit.OpTag(label, params, srcs...), bound)
	return s, nil
}

func applyInv(label string, params []uint64, srcs []*circuit.Register, out *circuit.Register, terms []term) (*circuit.Sequence, error) {
	if err := out.NoteInverse(circuit.OpTag(label, params, srcs...)); err != nil {
		return nil, err
	}
	return emit(out, terms).Adjoint(), nil
}

// emit wraps the term rotations in the Fourier sandwich. The sandwich is
// always present, even for an empty term list, so gate structure does not
// depend on source bounds.
func emit(out *circuit.Register, terms []term) *circuit.Sequence {
	s := qft.Transform(out)
	w := out.Width()
	mask := uint64(1)<<uint(w) - 1
	for _, t := range terms {
		for k := 0; k < w; k++ {
			s.Phase(circuit.NewDyadic(int64(t.val<<uint(k)&mask), uint8(w)), out.Qubit(k), t.ctrls...)
		}
	}
	return s.Concat(qft.Inverse(out))
}

func squareTerms(pp uint64, z *circuit.Register, ctrls []int) ([]term, *big.Int) {
	t := z.Bound().BitLen()
	vals := squareTermVals(pp, t)
	terms := make([]term, 0, len(vals))
	idx := 0
	for i := 0; i < t; i++ {
		terms = append(terms, term{val: vals[idx], ctrls: withQubits(ctrls, z.Qubit(i))})
		idx++
		for j := i + 1; j < t; j++ {
			terms = append(terms, term{val: vals[idx], ctrls: withQubits(ctrls, z.Qubit(i), z.Qubit(j))})
			idx++
		}
	}
	return terms, sumVals(vals)
}

func productTerms(pp uint64, a, b *circuit.Register, ctrls []int, complement bool) ([]term, *big.Int) {
	c := uint64(1)
	if complement {
		c = pp - 1
	}
	ta, tb := a.Bound().BitLen(), b.Bound().BitLen()
	vals := productTermVals(pp, c, ta, tb)
	terms := make([]term, 0, len(vals))
	for i := 0; i < ta; i++ {
		for j := 0; j < tb; j++ {
			terms = append(terms, term{val: vals[i*tb+j], ctrls: withQubits(ctrls, a.Qubit(i), b.Qubit(j))})
		}
	}
	return terms, sumVals(vals)
}

func scalarTerms(pp, cw uint64, src *circuit.Register, ctrls []int) ([]term, *big.Int) {
	t := src.Bound().BitLen()
	vals := scalarTermVals(pp, cw, t)
	terms := make([]term, 0, len(vals))
	for i, v := range vals {
		terms = append(terms, term{val: v, ctrls: withQubits(ctrls, src.Qubit(i))})
	}
	return terms, sumVals(vals)
}

// fieldWord narrows the modulus for term generation. A target narrower than
// the field cannot hold even a single reduced residue.
func fieldWord(cv *ecc.Curve, out *circuit.Register) (uint64, error) {
	p := cv.Modulus()
	if p.BitLen() > out.Width() {
		return 0, &SizingError{
			Register: out.Name(),
			Width:    out.Width(),
			Bound:    p.Sub(p, big.NewInt(1)),
		}
	}
	return p.Uint64(), nil
}

// checkTarget panics on overlapping operands; that is builder misuse, not a
// data error.
func checkTarget(out *circuit.Register, ctrls []int, srcs ...*circuit.Register) {
	for _, s := range srcs {
		if s == out {
			panic(fmt.Sprintf("register %s used as both source and target", out.Name()))
		}
	}
	lo, hi := out.Offset(), out.Offset()+out.Width()
	for _, q := range ctrls {
		if q >= lo && q < hi {
			panic(fmt.Sprintf("control qubit %d lies inside target register %s", q, out.Name()))
		}
	}
}

func withQubits(base []int, qs ...int) []int {
	out := make([]int, 0, len(base)+len(qs))
	out = append(out, base...)
	return append(out, qs...)
}

func tagParams(consts []uint64, ctrls []int) []uint64 {
	out := make([]uint64, 0, len(consts)+len(ctrls))
	out = append(out, consts...)
	for _, q := range ctrls {
		out = append(out, uint64(q))
	}
	return out
}
