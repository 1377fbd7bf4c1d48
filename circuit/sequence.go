package circuit

import (
	"fmt"
	"math/big"
	"math/bits"
)

// Sequence is the recording builder: synthesis primitives emit their gates
// into a Sequence, compose sequences by concatenation, and obtain inverse gate
// lists exclusively through Adjoint. Hand-written inverse code paths are what
// this type exists to eliminate.
type Sequence struct {
	ops []Operation
}

// NewSequence returns an empty recording.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Len returns the number of recorded operations.
func (s *Sequence) Len() int { return len(s.ops) }

// Ops exposes the recorded operations. The slice is owned by the sequence;
// callers must not mutate it.
func (s *Sequence) Ops() []Operation { return s.ops }

// H records a Hadamard on qubit q.
func (s *Sequence) H(q int) {
	s.ops = append(s.ops, Operation{Kind: GateH, Targets: []int{q}})
}

// X records a bit-flip on qubit q guarded by ctrls.
func (s *Sequence) X(q int, ctrls ...int) {
	s.ops = append(s.ops, Operation{Kind: GateX, Targets: []int{q}, Controls: ctrls})
}

// Swap records an exchange of qubits q1 and q2 guarded by ctrls.
func (s *Sequence) Swap(q1, q2 int, ctrls ...int) {
	s.ops = append(s.ops, Operation{Kind: GateSwap, Targets: []int{q1, q2}, Controls: ctrls})
}

// Phase records a dyadic phase rotation on qubit q guarded by ctrls.
// Zero angles are elided.
func (s *Sequence) Phase(p Dyadic, q int, ctrls ...int) {
	if p.IsZero() {
		return
	}
	s.ops = append(s.ops, Operation{Kind: GatePhase, Targets: []int{q}, Controls: ctrls, Param: p})
}

// Concat appends the operations of the given sequences, in order, and returns s.
func (s *Sequence) Concat(others ...*Sequence) *Sequence {
	for _, o := range others {
		s.ops = append(s.ops, o.ops...)
	}
	return s
}

// Adjoint returns the exact inverse recording: same operations, reversed
// order, phase parameters negated. Panics if the sequence contains a
// measurement.
func (s *Sequence) Adjoint() *Sequence {
	out := &Sequence{ops: make([]Operation, len(s.ops))}
	for i, op := range s.ops {
		out.ops[len(s.ops)-1-i] = op.adjoint()
	}
	return out
}

// Hadamard records a Hadamard on every qubit of r, putting the register into
// uniform superposition, and notes the write (full-range bound) in the
// register ledger. One-way setup: there is no paired inverse note.
func (s *Sequence) Hadamard(r *Register) {
	for i := 0; i < r.Width(); i++ {
		s.H(r.Qubit(i))
	}
	bound := new(big.Int).Lsh(big.NewInt(1), uint(r.Width()))
	bound.Sub(bound, big.NewInt(1))
	r.NoteWrite(OpTag("h", []uint64{uint64(r.Width())}), bound)
}

// LoadConstant records bit-flips writing the constant v into the zero-
// initialized register r and notes the write in the register ledger.
func (s *Sequence) LoadConstant(r *Register, v uint64) error {
	if n := bits.Len64(v); n > r.Width() {
		return fmt.Errorf("constant %d needs %d bits, register %s has %d", v, n, r.Name(), r.Width())
	}
	for i := 0; i < r.Width(); i++ {
		if v>>uint(i)&1 == 1 {
			s.X(r.Qubit(i))
		}
	}
	r.NoteWrite(OpTag("load", []uint64{v}), new(big.Int).SetUint64(v))
	return nil
}

// SwapRegisters records a qubit-wise exchange of two equal-width registers,
// guarded by ctrls, and updates the content ledger: an unconditional swap
// exchanges the two states exactly, a controlled swap leaves both sides
// holding either prior content and is accounted as a blend. Panics if the
// widths differ.
func (s *Sequence) SwapRegisters(a, b *Register, ctrls ...int) {
	if a.Width() != b.Width() {
		panic(fmt.Sprintf("cannot swap registers %s (%d bits) and %s (%d bits)", a.Name(), a.Width(), b.Name(), b.Width()))
	}
	for i := 0; i < a.Width(); i++ {
		s.Swap(a.Qubit(i), b.Qubit(i), ctrls...)
	}
	if len(ctrls) == 0 {
		exchangeContents(a, b)
	} else {
		blendContents(a, b, ctrls)
	}
}
