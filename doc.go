// Package qnark synthesizes reversible elliptic-curve arithmetic circuits and
// recovers discrete logarithms from their measurement statistics.
//
// qnark builds, from a small-curve configuration, the phase-estimation oracle
// |a⟩|b⟩|0⟩ → |a⟩|b⟩|aP+bQ⟩ used to attack the elliptic-curve discrete-log
// problem: modular arithmetic is synthesized in the Fourier domain
// (std/modarith), composed into an ancilla-restoring mixed point addition and a
// controlled scalar-multiplication chain (std/weierstrass), and assembled into
// the full oracle (ecdlp). Circuits cross to an execution backend as an
// ordered operation list (circuit, backend); the resulting measurement
// histogram is decoded by a weighted candidate-voting solver (ecdlp) backed by
// classical curve arithmetic (ecc).
//
// The execution backend itself is out of scope; package test ships a reference
// state-vector engine used by the test suites.
package qnark

import (
	"github.com/blang/semver/v4"
)

// Version of the qnark library
var Version = semver.MustParse("0.1.0")
