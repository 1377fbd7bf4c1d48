package circuit

import (
	"fmt"

	"github.com/consensys/qnark/internal/debug"
)

// AncillaPool is a typed arena of equal-width scratch registers. It replaces
// raw positional ancilla slicing with named, role-tagged handles and a
// per-block state machine:
//
//	free → in-use → free          (Release, journal empty)
//	free → in-use → retired       (Retire, block carries displaced values)
//
// A block whose journal is non-empty is pending-uncompute; releasing it is an
// error (and an assertion failure under -tags debug). Retired blocks are never
// reused: they hold values that stay live to the end of the circuit, such as
// the displaced old coordinates after a point-addition swap.
type AncillaPool struct {
	c     *Circuit
	width int
	free  []*Register
	all   []*Register

	nbRetired int
}

// NewAncillaPool creates an empty pool issuing blocks of the given width on
// circuit c.
func NewAncillaPool(c *Circuit, width int) (*AncillaPool, error) {
	if width < 1 || width > MaxWidth {
		return nil, fmt.Errorf("ancilla width %d out of range [1,%d]", width, MaxWidth)
	}
	return &AncillaPool{c: c, width: width}, nil
}

// Width returns the block width in qubits.
func (p *AncillaPool) Width() int { return p.width }

// NbBlocks returns the number of blocks ever allocated.
func (p *AncillaPool) NbBlocks() int { return len(p.all) }

// NbRetired returns the number of retired blocks.
func (p *AncillaPool) NbRetired() int { return p.nbRetired }

// Alloc hands out a zero-state block, reusing a released one when available.
// The label documents the block's current role ("H2", "X3", ...).
func (p *AncillaPool) Alloc(label string) *Register {
	var r *Register
	if n := len(p.free); n > 0 {
		r = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		var err error
		r, err = p.c.NewRegister(fmt.Sprintf("t%d", len(p.all)), RoleScratch, p.width)
		if err != nil {
			panic(err) // pool-generated names are unique
		}
		r.owner = p
		p.all = append(p.all, r)
	}
	r.label = label
	r.state = stateInUse
	return r
}

// Release returns a block to the free list. The block must be clean: every
// write uncomputed in reverse order. The zero-state check runs in every build;
// -tags debug additionally panics at the call site.
func (p *AncillaPool) Release(r *Register) error {
	if r.owner != p {
		return fmt.Errorf("register %s does not belong to this pool", r.Name())
	}
	if r.state != stateInUse {
		return fmt.Errorf("register %s released in state %d", r.Name(), r.state)
	}
	if !r.IsClean() {
		debug.Assert(false, "dirty release of ancilla "+r.Name())
		return fmt.Errorf("ancilla %s(%s) released with %d pending writes", r.Name(), r.Label(), r.Pending())
	}
	r.state = stateFree
	r.label = ""
	p.free = append(p.free, r)
	return nil
}

// Retire marks a block as intentionally carrying a non-zero value to the end
// of the circuit. Retired blocks are never handed out again.
func (p *AncillaPool) Retire(r *Register) error {
	if r.owner != p {
		return fmt.Errorf("register %s does not belong to this pool", r.Name())
	}
	if r.state != stateInUse {
		return fmt.Errorf("register %s retired in state %d", r.Name(), r.state)
	}
	r.state = stateRetired
	p.nbRetired++
	return nil
}

// Finalize verifies that no block is left in use: every allocation was either
// released clean or deliberately retired.
func (p *AncillaPool) Finalize() error {
	for _, r := range p.all {
		if r.state == stateInUse {
			debug.Assert(false, "leaked ancilla "+r.Name())
			return fmt.Errorf("ancilla %s(%s) still in use at finalize", r.Name(), r.Label())
		}
	}
	return nil
}
