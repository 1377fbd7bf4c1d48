// Package qft synthesizes the quantum Fourier transform used to move
// coordinate registers into and out of the phase domain.
//
// Qubit 0 of a register is its least significant bit. Transform maps the
// basis state |x⟩ to (1/√M)·Σ_y exp(2πi·x·y/M)|y⟩ with M = 2^w, i.e. the
// exact transform including the closing bit-reversal swaps. Phase-domain
// additions sandwich their rotations between Transform and its Adjoint; the
// sandwich itself is never conditioned, so controlled arithmetic controls
// only the interior rotations and no controlled-Hadamard is ever needed.
package qft

import (
	"github.com/consensys/qnark/circuit"
)

// Transform returns the w-qubit Fourier transform on r, built high qubit
// first and closed by the bit-reversal swap layer.
func Transform(r *circuit.Register) *circuit.Sequence {
	s := circuit.NewSequence()
	w := r.Width()
	for j := w - 1; j >= 0; j-- {
		s.H(r.Qubit(j))
		for k := j - 1; k >= 0; k-- {
			s.Phase(circuit.NewDyadic(1, uint8(j-k+1)), r.Qubit(j), r.Qubit(k))
		}
	}
	for i := 0; i < w/2; i++ {
		s.Swap(r.Qubit(i), r.Qubit(w-1-i))
	}
	return s
}

// Inverse returns the adjoint of Transform.
func Inverse(r *circuit.Register) *circuit.Sequence {
	return Transform(r).Adjoint()
}
