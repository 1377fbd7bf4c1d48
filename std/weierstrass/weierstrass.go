// Package weierstrass composes quantum point additions on a short
// Weierstrass curve from the modarith primitives.
//
// The accumulator is a Jacobian coordinate triple (X, Y, Z); the incoming
// point is classical and affine, so its coordinates enter the arithmetic as
// scalar constants. One AddMixed emits the mixed chord formulas across eight
// scratch blocks: the chord operands and the new coordinates are computed
// forward, every intermediate is uncomputed by retraced adjoints against
// recomputed Z powers, and a closing register swap moves the new (X3, Y3, Z3)
// into the accumulator while the displaced trio retires with the pool.
//
// The chord form divides by the x-difference of the operands and has no
// doubling branch: every computational path must keep the classical point
// x-distinct from the accumulated one. Selector-driven accumulation arranged
// by the oracle keeps the exceptional paths confined to the measure-zero
// branches the algorithm tolerates.
package weierstrass

import (
	"fmt"
	"math/big"

	"github.com/consensys/qnark/circuit"
	"github.com/consensys/qnark/ecc"
	"github.com/consensys/qnark/std/modarith"
)

// PointRegisters groups the Jacobian coordinate registers of a running
// accumulator point.
type PointRegisters struct {
	X, Y, Z *circuit.Register
}

// NewAccumulator allocates the coordinate trio at the given width.
func NewAccumulator(c *circuit.Circuit, width int) (*PointRegisters, error) {
	x, err := c.NewRegister("X", circuit.RoleCoordinate, width)
	if err != nil {
		return nil, err
	}
	y, err := c.NewRegister("Y", circuit.RoleCoordinate, width)
	if err != nil {
		return nil, err
	}
	z, err := c.NewRegister("Z", circuit.RoleCoordinate, width)
	if err != nil {
		return nil, err
	}
	return &PointRegisters{X: x, Y: y, Z: z}, nil
}

// LoadAffine writes a finite affine point into the zeroed coordinate trio,
// with Z = 1.
func (pr *PointRegisters) LoadAffine(s *circuit.Sequence, pt ecc.Point) error {
	if pt.IsInfinity() {
		return &DegeneratePointError{Op: "load", Index: -1}
	}
	if !pt.X.IsUint64() || !pt.Y.IsUint64() {
		return fmt.Errorf("point coordinates exceed 64 bits")
	}
	if err := s.LoadConstant(pr.X, pt.X.Uint64()); err != nil {
		return err
	}
	if err := s.LoadConstant(pr.Y, pt.Y.Uint64()); err != nil {
		return err
	}
	return s.LoadConstant(pr.Z, 1)
}

// AddMixed folds the classical affine point q into the Jacobian accumulator:
//
//	H  = x2·Z² − X    R  = y2·Z³ − Y
//	X3 = R² − H³ − 2·X·H²
//	Y3 = R·(X·H² − X3) − Y·H³
//	Z3 = Z·H
//
// Eight scratch blocks come from pool; five return clean, the displaced
// coordinate trio retires. On SizingError or a pool fault the ledgers are
// already partially advanced, so callers treat failure as fatal for the
// circuit under construction.
func AddMixed(cv *ecc.Curve, acc *PointRegisters, q ecc.Point, pool *circuit.AncillaPool, opts ...Option) (*circuit.Sequence, error) {
	cfg := newConfig(opts...)
	if q.IsInfinity() {
		return nil, &DegeneratePointError{Op: "add", Index: -1}
	}
	if err := checkWidths(acc, pool); err != nil {
		return nil, err
	}

	var mo []modarith.Option
	if len(cfg.ctrls) > 0 {
		mo = append(mo, modarith.WithControls(cfg.ctrls...))
	}

	t1 := pool.Alloc("Z3")
	t2 := pool.Alloc("H")
	t3 := pool.Alloc("H2")
	t4 := pool.Alloc("R")
	t5 := pool.Alloc("V")
	t6 := pool.Alloc("X3")
	t7 := pool.Alloc("Y3")
	t8 := pool.Alloc("YH")

	b := seqBuilder{seq: circuit.NewSequence()}

	// Z powers and the chord operands, reduced in place
	b.add(modarith.Square(cv, acc.Z, t1, mo...))     // t1 = Z²
	b.add(modarith.ScalarMul(cv, t1, t2, q.X, mo...)) // t2 = x2·Z²
	b.add(modarith.Mul(cv, acc.Z, t1, t3, mo...))    // t3 = Z³
	b.add(modarith.ScalarMul(cv, t3, t4, q.Y, mo...)) // t4 = y2·Z³
	b.add(modarith.Sub(cv, acc.X, t2, mo...))        // t2 = H
	b.add(modarith.Sub(cv, acc.Y, t4, mo...))        // t4 = R

	// return the Z powers, then the new Z
	b.add(modarith.MulInv(cv, acc.Z, t1, t3, mo...))
	b.add(modarith.SquareInv(cv, acc.Z, t1, mo...))
	b.add(modarith.Mul(cv, acc.Z, t2, t1, mo...)) // t1 = Z3

	// chord products
	b.add(modarith.Square(cv, t2, t3, mo...))      // t3 = H²
	b.add(modarith.Mul(cv, acc.X, t3, t5, mo...))  // t5 = X·H²
	b.add(modarith.Square(cv, t4, t6, mo...))      // t6 = R²
	b.add(modarith.MulSub(cv, t2, t3, t6, mo...))  // t6 −= H³
	b.add(modarith.Sub(cv, t5, t6, mo...))         // t6 −= X·H²
	b.add(modarith.Sub(cv, t5, t6, mo...))         // t6 = X3
	b.add(modarith.Sub(cv, t6, t5, mo...))         // t5 = X·H² − X3
	b.add(modarith.Mul(cv, t4, t5, t7, mo...))     // t7 = R·(X·H² − X3)
	b.add(modarith.Mul(cv, acc.Y, t2, t8, mo...))  // t8 = Y·H
	b.add(modarith.MulSub(cv, t8, t3, t7, mo...))  // t7 = Y3
	b.add(modarith.MulInv(cv, acc.Y, t2, t8, mo...))

	// retrace the scratch chain; the operand uncomputes run against
	// recomputed Z powers, which carry the same content tags
	b.add(modarith.SubInv(cv, t6, t5, mo...))
	b.add(modarith.MulInv(cv, acc.X, t3, t5, mo...))
	b.add(modarith.SquareInv(cv, t2, t3, mo...))
	b.add(modarith.SubInv(cv, acc.Y, t4, mo...))
	b.add(modarith.SubInv(cv, acc.X, t2, mo...))
	b.add(modarith.Square(cv, acc.Z, t8, mo...))   // t8 = Z²
	b.add(modarith.Mul(cv, acc.Z, t8, t5, mo...))  // t5 = Z³
	b.add(modarith.ScalarMulInv(cv, t5, t4, q.Y, mo...))
	b.add(modarith.ScalarMulInv(cv, t8, t2, q.X, mo...))
	b.add(modarith.MulInv(cv, acc.Z, t8, t5, mo...))
	b.add(modarith.SquareInv(cv, acc.Z, t8, mo...))

	if b.err != nil {
		return nil, b.err
	}

	// swap in the new coordinates; the displaced trio retires
	b.seq.SwapRegisters(acc.X, t6, cfg.ctrls...)
	b.seq.SwapRegisters(acc.Y, t7, cfg.ctrls...)
	b.seq.SwapRegisters(acc.Z, t1, cfg.ctrls...)

	for _, r := range []*circuit.Register{t2, t3, t4, t5, t8} {
		if err := pool.Release(r); err != nil {
			return nil, err
		}
	}
	for _, r := range []*circuit.Register{t1, t6, t7} {
		if err := pool.Retire(r); err != nil {
			return nil, err
		}
	}

	return b.seq, nil
}

// ScalarMul folds sel·base into the accumulator: one mixed addition of the
// classically doubled point 2^i·base per selector bit, conditioned on that
// bit.
func ScalarMul(cv *ecc.Curve, acc *PointRegisters, sel *circuit.Register, base ecc.Point, pool *circuit.AncillaPool, opts ...Option) (*circuit.Sequence, error) {
	cfg := newConfig(opts...)
	if base.IsInfinity() {
		return nil, &DegeneratePointError{Op: "scalarmul", Index: -1}
	}
	seq := circuit.NewSequence()
	pt := base
	for i := 0; i < sel.Width(); i++ {
		if pt.IsInfinity() {
			return nil, &DegeneratePointError{Op: "scalarmul", Index: i}
		}
		ctrls := make([]int, 0, len(cfg.ctrls)+1)
		ctrls = append(ctrls, sel.Qubit(i))
		ctrls = append(ctrls, cfg.ctrls...)
		s, err := AddMixed(cv, acc, pt, pool, WithControls(ctrls...))
		if err != nil {
			return nil, err
		}
		seq.Concat(s)
		pt = cv.Double(pt)
	}
	return seq, nil
}

type seqBuilder struct {
	seq *circuit.Sequence
	err error
}

func (b *seqBuilder) add(s *circuit.Sequence, err error) {
	if b.err != nil {
		return
	}
	if err != nil {
		b.err = err
		return
	}
	b.seq.Concat(s)
}

func checkWidths(acc *PointRegisters, pool *circuit.AncillaPool) error {
	for _, r := range []*circuit.Register{acc.X, acc.Y, acc.Z} {
		if r.Width() != pool.Width() {
			return &modarith.SizingError{
				Register: r.Name(),
				Width:    r.Width(),
				Bound:    maxForWidth(pool.Width()),
			}
		}
	}
	return nil
}

func maxForWidth(w int) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), uint(w))
	return m.Sub(m, big.NewInt(1))
}
