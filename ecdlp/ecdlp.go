// Package ecdlp assembles Shor discrete-logarithm oracle circuits over short
// Weierstrass curves and recovers the logarithm from their measurement
// statistics.
//
// Synthesize builds the quantum side: two selector registers in uniform
// superposition drive the doubling chains of the base point P and the public
// point Q into a shared Jacobian accumulator, both selectors pass through an
// inverse Fourier transform and are measured. Solve is the classical side: it
// rescales each measured selector pair to the dual lattice of the curve order
// and verifies the resulting scalar candidates by classical scalar
// multiplication.
package ecdlp

import (
	"fmt"

	"github.com/consensys/qnark/circuit"
	"github.com/consensys/qnark/ecc"
	"github.com/consensys/qnark/logger"
	"github.com/consensys/qnark/std/qft"
	"github.com/consensys/qnark/std/weierstrass"
)

// Oracle is a synthesized discrete-logarithm circuit together with the layout
// facts the classical post-processing needs.
type Oracle struct {
	Circuit *circuit.Circuit

	// A and B are the measured selector registers, in histogram key order:
	// A occupies the leftmost NbBits of every key, B the next NbBits.
	A, B *circuit.Register

	// Acc is the Jacobian accumulator holding a·P + b·Q. It is not measured;
	// its coordinates stay entangled with the selectors.
	Acc *weierstrass.PointRegisters

	// NbBits is the width of each selector register.
	NbBits int
}

// Synthesize builds the oracle circuit for the instance Q = d·P on cv. Each
// selector register holds nbBits qubits; coordinate and scratch registers take
// the width returned by the bound replay over the 2·nbBits chained additions.
//
// The circuit prepares both selectors with Hadamards, loads the accumulator
// representative (Z=1, X=Y=0), applies the selector-controlled doubling chain
// of p and then of q, inverse Fourier transforms both selectors and measures
// a before b.
func Synthesize(cv *ecc.Curve, p, q ecc.Point, nbBits int) (*Oracle, error) {
	if nbBits < 1 {
		return nil, fmt.Errorf("selector width %d, need at least 1", nbBits)
	}
	if p.IsInfinity() || q.IsInfinity() {
		return nil, fmt.Errorf("oracle points must be finite, got P=%s Q=%s", p, q)
	}
	if !cv.IsOnCurve(p) {
		return nil, fmt.Errorf("base point %s not on %s", p, cv)
	}
	if !cv.IsOnCurve(q) {
		return nil, fmt.Errorf("public point %s not on %s", q, cv)
	}
	w, err := weierstrass.RequiredWidth(cv, 2*nbBits)
	if err != nil {
		return nil, err
	}

	c := circuit.New()
	a, err := c.NewRegister("a", circuit.RoleSelector, nbBits)
	if err != nil {
		return nil, err
	}
	b, err := c.NewRegister("b", circuit.RoleSelector, nbBits)
	if err != nil {
		return nil, err
	}
	acc, err := weierstrass.NewAccumulator(c, w)
	if err != nil {
		return nil, err
	}
	pool, err := circuit.NewAncillaPool(c, w)
	if err != nil {
		return nil, err
	}

	prep := circuit.NewSequence()
	prep.Hadamard(a)
	prep.Hadamard(b)
	if err := prep.LoadConstant(acc.Z, 1); err != nil {
		return nil, err
	}
	c.Append(prep)

	chainP, err := weierstrass.ScalarMul(cv, acc, a, p, pool)
	if err != nil {
		return nil, err
	}
	chainQ, err := weierstrass.ScalarMul(cv, acc, b, q, pool)
	if err != nil {
		return nil, err
	}
	c.Append(chainP, chainQ)

	c.Append(qft.Inverse(a), qft.Inverse(b))
	if err := c.Measure(a); err != nil {
		return nil, err
	}
	if err := c.Measure(b); err != nil {
		return nil, err
	}
	if err := pool.Finalize(); err != nil {
		return nil, err
	}

	log := logger.Logger()
	log.Info().
		Int("nbBits", nbBits).
		Int("width", w).
		Int("nbQubits", c.NbQubits()).
		Int("nbOps", c.NbOps()).
		Int("nbAncilla", pool.NbBlocks()).
		Int("nbRetired", pool.NbRetired()).
		Msg("synthesized discrete-log oracle")

	return &Oracle{Circuit: c, A: a, B: b, Acc: acc, NbBits: nbBits}, nil
}
