package test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/qnark/backend"
	"github.com/consensys/qnark/circuit"
)

func TestUniformSuperposition(t *testing.T) {
	assert := assert.New(t)

	c := circuit.New()
	r, err := c.NewRegister("x", circuit.RoleSelector, 2)
	require.NoError(t, err)

	s := circuit.NewSequence()
	s.Hadamard(r)
	c.Append(s)
	require.NoError(t, c.Measure(r))

	e := NewEngine()
	h, err := e.Execute(c, 10)
	require.NoError(t, err)

	// 10 shots over 4 equal outcomes: floors of 2.5, the 2 leftover shots go
	// to the first keys in order.
	want := backend.Histogram{"00": 3, "01": 3, "10": 2, "11": 2}
	assert.Equal(want, h)

	h, err = e.Execute(c, 4096)
	require.NoError(t, err)
	assert.Equal(uint64(4096), h.Total())
	for _, k := range []string{"00", "01", "10", "11"} {
		assert.Equal(uint64(1024), h[k])
	}
}

func TestLoadConstantIsClassical(t *testing.T) {
	assert := assert.New(t)

	c := circuit.New()
	x, err := c.NewRegister("x", circuit.RoleCoordinate, 4)
	require.NoError(t, err)
	y, err := c.NewRegister("y", circuit.RoleCoordinate, 4)
	require.NoError(t, err)

	s := circuit.NewSequence()
	require.NoError(t, s.LoadConstant(x, 11))
	require.NoError(t, s.LoadConstant(y, 5))
	c.Append(s)

	st, err := NewEngine().State(c)
	require.NoError(t, err)
	assert.True(st.IsClassical())
	assert.InDelta(1.0, st.Norm(), 1e-12)

	vx, err := st.Value("x")
	require.NoError(t, err)
	assert.Equal(uint64(11), vx)
	vy, err := st.Value("y")
	require.NoError(t, err)
	assert.Equal(uint64(5), vy)

	_, err = st.Value("z")
	assert.Error(err)
}

// HZH = X: conjugating a half-turn phase by Hadamards flips the qubit, and
// the cancelled amplitude must be pruned away.
func TestInterference(t *testing.T) {
	assert := assert.New(t)

	c := circuit.New()
	q, err := c.NewRegister("q", circuit.RoleScratch, 1)
	require.NoError(t, err)

	s := circuit.NewSequence()
	s.H(q.Qubit(0))
	s.Phase(circuit.NewDyadic(1, 1), q.Qubit(0))
	s.H(q.Qubit(0))
	c.Append(s)
	require.NoError(t, c.Measure(q))

	st, err := NewEngine().State(c)
	require.NoError(t, err)
	assert.Equal(1, st.Size())

	h, err := NewEngine().Execute(c, 512)
	require.NoError(t, err)
	assert.Equal(backend.Histogram{"1": 512}, h)
}

func TestControlledPhase(t *testing.T) {
	assert := assert.New(t)

	build := func(ctrlOn bool) *circuit.Circuit {
		c := circuit.New()
		ctl, _ := c.NewRegister("c", circuit.RoleSelector, 1)
		tgt, _ := c.NewRegister("t", circuit.RoleScratch, 1)
		s := circuit.NewSequence()
		if ctrlOn {
			s.X(ctl.Qubit(0))
		}
		s.H(tgt.Qubit(0))
		s.Phase(circuit.NewDyadic(1, 1), tgt.Qubit(0), ctl.Qubit(0))
		s.H(tgt.Qubit(0))
		c.Append(s)
		_ = c.Measure(ctl)
		_ = c.Measure(tgt)
		return c
	}

	e := NewEngine()

	h, err := e.Execute(build(true), 100)
	require.NoError(t, err)
	assert.Equal(backend.Histogram{"11": 100}, h)

	h, err = e.Execute(build(false), 100)
	require.NoError(t, err)
	assert.Equal(backend.Histogram{"00": 100}, h)
}

func TestSwapRegisters(t *testing.T) {
	assert := assert.New(t)

	c := circuit.New()
	a, err := c.NewRegister("a", circuit.RoleCoordinate, 3)
	require.NoError(t, err)
	b, err := c.NewRegister("b", circuit.RoleCoordinate, 3)
	require.NoError(t, err)

	s := circuit.NewSequence()
	require.NoError(t, s.LoadConstant(a, 6))
	s.SwapRegisters(a, b)
	c.Append(s)

	st, err := NewEngine().State(c)
	require.NoError(t, err)
	va, err := st.Value("a")
	require.NoError(t, err)
	vb, err := st.Value("b")
	require.NoError(t, err)
	assert.Equal(uint64(0), va)
	assert.Equal(uint64(6), vb)
}

func TestStateAmplitudes(t *testing.T) {
	assert := assert.New(t)

	c := circuit.New()
	q, err := c.NewRegister("q", circuit.RoleScratch, 1)
	require.NoError(t, err)
	s := circuit.NewSequence()
	s.H(q.Qubit(0))
	s.Phase(circuit.NewDyadic(1, 2), q.Qubit(0)) // quarter turn: i on |1⟩
	c.Append(s)

	st, err := NewEngine().State(c)
	require.NoError(t, err)
	assert.Equal(2, st.Size())
	assert.False(st.IsClassical())
	_, err = st.Value("q")
	assert.Error(err)

	a0 := st.Amplitude("0")
	a1 := st.Amplitude("1")
	assert.InDelta(0, cmplx.Abs(a0-complex(1/math.Sqrt2, 0)), 1e-12)
	assert.InDelta(0, cmplx.Abs(a1-complex(0, 1/math.Sqrt2)), 1e-12)

	amps := st.Amplitudes()
	assert.Len(amps, 2)
}

func TestExecuteErrors(t *testing.T) {
	assert := assert.New(t)
	e := NewEngine()

	// no registers
	_, err := e.State(circuit.New())
	assert.Error(err)

	// no measured register
	c := circuit.New()
	_, err = c.NewRegister("x", circuit.RoleScratch, 1)
	require.NoError(t, err)
	_, err = e.Execute(c, 10)
	assert.Error(err)

	// zero shots
	r := c.Register("x")
	require.NoError(t, c.Measure(r))
	_, err = e.Execute(c, 0)
	assert.Error(err)

	// gate after measurement
	s := circuit.NewSequence()
	s.X(r.Qubit(0))
	c.Append(s)
	_, err = e.State(c)
	assert.Error(err)
}
