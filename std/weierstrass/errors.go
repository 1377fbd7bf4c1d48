package weierstrass

import "fmt"

// DegeneratePointError reports a classical operand the chord formulas cannot
// absorb: the point at infinity, passed directly or reached inside a doubling
// chain.
type DegeneratePointError struct {
	Op    string
	Index int // position in the doubling chain, -1 for a direct operand
}

func (e *DegeneratePointError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: operand is the point at infinity", e.Op)
	}
	return fmt.Sprintf("%s: doubling chain reaches infinity at bit %d", e.Op, e.Index)
}
