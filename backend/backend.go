// Package backend defines the execution boundary of qnark: an assembled
// circuit goes in, a measurement histogram comes out. Execution itself is out
// of scope for this library; package test ships a reference engine
// implementing Executor for the test suites.
package backend

import (
	"github.com/consensys/qnark/circuit"
)

// Executor runs a circuit for the given number of shots and returns the
// outcome histogram over the circuit's measured registers.
//
// The call is synchronous; retry and shot-count policy belong to the caller.
type Executor interface {
	Execute(c *circuit.Circuit, shots uint64) (Histogram, error)
}
