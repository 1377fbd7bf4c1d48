package modarith

import (
	"fmt"
	"math/big"
)

// SizingError reports a target register too narrow for the value range a
// primitive would accumulate into it. The failing synthesis records nothing;
// callers size registers up front (see weierstrass.RequiredWidth) and treat
// this error as a configuration fault.
type SizingError struct {
	Register string
	Width    int
	Bound    *big.Int
}

func (e *SizingError) Error() string {
	return fmt.Sprintf("register %s: width %d cannot hold bound %s (%d bits required)",
		e.Register, e.Width, e.Bound, e.Bound.BitLen())
}
