package circuit

import (
	"fmt"
	"math/big"

	"github.com/bits-and-blooms/bitset"
)

// Circuit is an ordered operation list over a fixed register set, the sole
// contract with the execution backend. Operation order is semantically
// significant; appends are the only mutation.
type Circuit struct {
	registers []*Register
	byName    map[string]*Register
	nbQubits  int

	ops []Operation

	measured     *bitset.BitSet
	measureOrder []*Register
}

// New returns an empty circuit.
func New() *Circuit {
	return &Circuit{
		byName:   make(map[string]*Register),
		measured: bitset.New(64),
	}
}

// NewRegister allocates a register of the given width at the end of the
// current qubit range. Names must be unique within the circuit.
func (c *Circuit) NewRegister(name string, role Role, width int) (*Register, error) {
	if name == "" {
		return nil, fmt.Errorf("register name must not be empty")
	}
	if width < 1 || width > MaxWidth {
		return nil, fmt.Errorf("register %s: width %d out of range [1,%d]", name, width, MaxWidth)
	}
	if _, ok := c.byName[name]; ok {
		return nil, fmt.Errorf("register %s already exists", name)
	}
	r := &Register{
		name:   name,
		role:   role,
		offset: c.nbQubits,
		width:  width,
		bound:  new(big.Int),
	}
	c.registers = append(c.registers, r)
	c.byName[name] = r
	c.nbQubits += width
	return r, nil
}

// Register returns the register with the given name, or nil.
func (c *Circuit) Register(name string) *Register {
	return c.byName[name]
}

// Registers returns the circuit's registers in allocation order.
func (c *Circuit) Registers() []*Register { return c.registers }

// NbQubits returns the total number of qubits across all registers.
func (c *Circuit) NbQubits() int { return c.nbQubits }

// Ops exposes the operation list. The slice is owned by the circuit; callers
// must not mutate it.
func (c *Circuit) Ops() []Operation { return c.ops }

// NbOps returns the number of appended operations.
func (c *Circuit) NbOps() int { return len(c.ops) }

// Append adds the operations of the given sequences, in order.
func (c *Circuit) Append(seqs ...*Sequence) {
	for _, s := range seqs {
		c.ops = append(c.ops, s.ops...)
	}
}

// Measure appends a computational-basis readout of the whole register.
// Measure order defines the histogram key layout: the first measured register
// occupies the leftmost key bits, each register written most significant bit
// first. A register can be measured once.
func (c *Circuit) Measure(r *Register) error {
	for _, i := range r.Qubits() {
		if c.measured.Test(uint(i)) {
			return fmt.Errorf("register %s already measured", r.Name())
		}
	}
	targets := r.Qubits()
	c.ops = append(c.ops, Operation{Kind: GateMeasure, Targets: targets})
	for _, i := range targets {
		c.measured.Set(uint(i))
	}
	c.measureOrder = append(c.measureOrder, r)
	return nil
}

// Measured returns the set of measured qubit indices. The bitset is owned by
// the circuit; callers must not mutate it.
func (c *Circuit) Measured() *bitset.BitSet { return c.measured }

// MeasuredRegisters returns the measured registers in measurement order.
func (c *Circuit) MeasuredRegisters() []*Register { return c.measureOrder }
