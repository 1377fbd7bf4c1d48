package circuit_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/qnark/circuit"
)

func TestRegisterAllocation(t *testing.T) {
	c := circuit.New()

	a, err := c.NewRegister("a", circuit.RoleSelector, 3)
	require.NoError(t, err)
	assert.Equal(t, "a", a.Name())
	assert.Equal(t, circuit.RoleSelector, a.Role())
	assert.Equal(t, 0, a.Offset())
	assert.Equal(t, 3, a.Width())
	assert.Equal(t, []int{0, 1, 2}, a.Qubits())

	x, err := c.NewRegister("X", circuit.RoleCoordinate, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, x.Offset())
	assert.Equal(t, 4, x.Qubit(1))
	assert.Equal(t, 5, c.NbQubits())

	assert.Same(t, a, c.Register("a"))
	assert.Nil(t, c.Register("zz"))
	assert.Equal(t, []*circuit.Register{a, x}, c.Registers())

	_, err = c.NewRegister("a", circuit.RoleScratch, 1)
	assert.ErrorContains(t, err, "already exists")
	_, err = c.NewRegister("", circuit.RoleScratch, 1)
	assert.Error(t, err)
	_, err = c.NewRegister("w", circuit.RoleScratch, 0)
	assert.ErrorContains(t, err, "out of range")
	_, err = c.NewRegister("w", circuit.RoleScratch, circuit.MaxWidth+1)
	assert.ErrorContains(t, err, "out of range")

	assert.Panics(t, func() { a.Qubit(3) })
	assert.Panics(t, func() { a.Qubit(-1) })
}

func TestMeasureOrder(t *testing.T) {
	c := circuit.New()
	a, err := c.NewRegister("a", circuit.RoleSelector, 2)
	require.NoError(t, err)
	b, err := c.NewRegister("b", circuit.RoleSelector, 3)
	require.NoError(t, err)

	require.NoError(t, c.Measure(b))
	require.NoError(t, c.Measure(a))
	assert.Equal(t, []*circuit.Register{b, a}, c.MeasuredRegisters())

	err = c.Measure(b)
	assert.ErrorContains(t, err, "already measured")

	require.Equal(t, 2, c.NbOps())
	op := c.Ops()[0]
	assert.Equal(t, circuit.GateMeasure, op.Kind)
	assert.Equal(t, b.Qubits(), op.Targets)

	assert.True(t, c.Measured().Test(uint(a.Qubit(0))))
}

func TestAppendOrder(t *testing.T) {
	c := circuit.New()
	r, err := c.NewRegister("r", circuit.RoleScratch, 1)
	require.NoError(t, err)

	s1 := circuit.NewSequence()
	s1.H(r.Qubit(0))
	s2 := circuit.NewSequence()
	s2.X(r.Qubit(0))

	c.Append(s1, s2)
	require.Equal(t, 2, c.NbOps())
	assert.Equal(t, circuit.GateH, c.Ops()[0].Kind)
	assert.Equal(t, circuit.GateX, c.Ops()[1].Kind)
}

func TestContentLedger(t *testing.T) {
	c := circuit.New()
	r, err := c.NewRegister("r", circuit.RoleScratch, 4)
	require.NoError(t, err)
	src, err := c.NewRegister("s", circuit.RoleScratch, 4)
	require.NoError(t, err)

	assert.True(t, r.IsClean())
	assert.Zero(t, r.Bound().Sign())

	tag := circuit.OpTag("square", nil, src)
	r.NoteWrite(tag, big.NewInt(9))
	assert.Equal(t, 1, r.Pending())
	assert.Equal(t, int64(9), r.Bound().Int64())

	// tags fingerprint source contents: after src changes, the same
	// primitive yields a different tag
	src.NoteWrite(circuit.OpTag("load", []uint64{3}), big.NewInt(3))
	changed := circuit.OpTag("square", nil, src)
	assert.NotEqual(t, tag, changed)

	err = r.NoteInverse(changed)
	assert.ErrorContains(t, err, "does not match")
	require.NoError(t, r.NoteInverse(tag))
	assert.True(t, r.IsClean())
	assert.Zero(t, r.Bound().Sign())

	err = r.NoteInverse(tag)
	assert.ErrorContains(t, err, "clean register")
}
