package circuit

import "fmt"

// GateKind enumerates the gate vocabulary of the executor contract.
// Values are wire-stable.
type GateKind uint8

const (
	// GateH is an uncontrolled Hadamard rotation on one qubit.
	GateH GateKind = iota
	// GateX is a bit-flip, optionally controlled.
	GateX
	// GateSwap exchanges two qubits, optionally controlled.
	GateSwap
	// GatePhase rotates the |1⟩ amplitude of one qubit by an exact dyadic
	// angle, optionally controlled.
	GatePhase
	// GateMeasure reads out a register in the computational basis. Measure
	// operations define the histogram key layout, in emission order.
	GateMeasure
)

func (k GateKind) String() string {
	switch k {
	case GateH:
		return "h"
	case GateX:
		return "x"
	case GateSwap:
		return "swap"
	case GatePhase:
		return "phase"
	case GateMeasure:
		return "measure"
	default:
		return "unknown"
	}
}

// Operation is a single typed gate over global qubit indices.
// Swap has two targets, Measure has one per measured qubit (least significant
// first), every other kind has exactly one. Param is meaningful for GatePhase
// only.
type Operation struct {
	Kind     GateKind
	Targets  []int
	Controls []int
	Param    Dyadic
}

func (op Operation) adjoint() Operation {
	switch op.Kind {
	case GateMeasure:
		panic("cannot adjoint a measurement")
	case GatePhase:
		op.Param = op.Param.Neg()
	}
	// H, X and Swap are self-inverse; qubit lists are shared, not copied,
	// since operations are never mutated after emission.
	return op
}

func (op Operation) String() string {
	if op.Kind == GatePhase {
		return fmt.Sprintf("%s(%s) t=%v c=%v", op.Kind, op.Param, op.Targets, op.Controls)
	}
	return fmt.Sprintf("%s t=%v c=%v", op.Kind, op.Targets, op.Controls)
}
