package ecdlp_test

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/qnark/circuit"
	"github.com/consensys/qnark/ecc"
	"github.com/consensys/qnark/ecdlp"
	"github.com/consensys/qnark/std/weierstrass"
	"github.com/consensys/qnark/test"
)

// y² = x³ + 7 over F₁₃. P = (11,5) generates a subgroup of order 7 and
// Q = 6·P = (11,8), so the instance solved throughout is d = 6.
func toy13(t *testing.T) *ecc.Curve {
	t.Helper()
	cv, err := ecc.NewCurve(big.NewInt(13), big.NewInt(0), big.NewInt(7), 4)
	require.NoError(t, err)
	return cv
}

func TestSynthesizeStructure(t *testing.T) {
	cv := toy13(t)
	const m = 2

	w, err := weierstrass.RequiredWidth(cv, 2*m)
	require.NoError(t, err)

	o, err := ecdlp.Synthesize(cv, ecc.NewPoint(11, 5), ecc.NewPoint(11, 8), m)
	require.NoError(t, err)

	assert.Equal(t, m, o.NbBits)
	assert.Equal(t, m, o.A.Width())
	assert.Equal(t, m, o.B.Width())
	assert.Equal(t, w, o.Acc.X.Width())

	// two selectors plus 3 coordinate and 5+6m scratch registers of width w
	c := o.Circuit
	assert.Equal(t, 2*m+(8+6*m)*w, c.NbQubits())
	assert.NotNil(t, c.Register(fmt.Sprintf("t%d", 5+6*m-1)))
	assert.Nil(t, c.Register(fmt.Sprintf("t%d", 5+6*m)))

	measured := c.MeasuredRegisters()
	require.Len(t, measured, 2)
	assert.Same(t, o.A, measured[0])
	assert.Same(t, o.B, measured[1])

	var nbH, nbSwap, nbX, nbMeasure int
	for _, op := range c.Ops() {
		switch op.Kind {
		case circuit.GateH:
			nbH++
		case circuit.GateSwap:
			nbSwap++
		case circuit.GateX:
			nbX++
		case circuit.GateMeasure:
			nbMeasure++
		}
	}
	// selector preparation, 31 Fourier sandwiches per addition over 2m
	// additions, and the two closing inverse transforms
	assert.Equal(t, 2*m+2*m*31*2*w+2*m, nbH)
	assert.Equal(t, 2*m*(31*2*(w/2)+3*w)+2*(m/2), nbSwap)
	assert.Equal(t, 1, nbX, "only the Z=1 load writes a computational bit")
	assert.Equal(t, 2, nbMeasure)
}

func TestSynthesizeValidation(t *testing.T) {
	cv := toy13(t)
	p := ecc.NewPoint(11, 5)
	q := ecc.NewPoint(11, 8)

	_, err := ecdlp.Synthesize(cv, p, q, 0)
	assert.ErrorContains(t, err, "selector width")

	_, err = ecdlp.Synthesize(cv, ecc.Infinity(), q, 2)
	assert.ErrorContains(t, err, "finite")

	_, err = ecdlp.Synthesize(cv, ecc.NewPoint(3, 3), q, 2)
	assert.ErrorContains(t, err, "base point")

	_, err = ecdlp.Synthesize(cv, p, ecc.NewPoint(3, 3), 2)
	assert.ErrorContains(t, err, "public point")

	// (0,0) has order 2 on y² = x³ + 4x over F₅, so its doubling chain
	// collapses on the second selector bit
	tor, err := ecc.NewCurve(big.NewInt(5), big.NewInt(4), big.NewInt(0), 3)
	require.NoError(t, err)
	_, err = ecdlp.Synthesize(tor, ecc.NewPoint(0, 0), ecc.NewPoint(0, 0), 2)
	var dg *weierstrass.DegeneratePointError
	require.ErrorAs(t, err, &dg)
	assert.Equal(t, 1, dg.Index)
}

func TestSynthesizeExecutes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping oracle execution test with testing.Short() flag set")
	}
	cv, err := ecc.NewCurve(big.NewInt(5), big.NewInt(1), big.NewInt(1), 3)
	require.NoError(t, err)

	// P = (0,1) and 2P = (4,2) on y² = x³ + x + 1 over F₅
	o, err := ecdlp.Synthesize(cv, ecc.NewPoint(0, 1), ecc.NewPoint(4, 2), 1)
	require.NoError(t, err)

	h, err := test.NewEngine().Execute(o.Circuit, 64)
	require.NoError(t, err)
	assert.Equal(t, uint64(64), h.Total())

	samples, err := ecdlp.ParseHistogram(h, 1)
	require.NoError(t, err)
	require.NotEmpty(t, samples)
	var total uint64
	for _, s := range samples {
		assert.Less(t, s.A, uint64(2))
		assert.Less(t, s.B, uint64(2))
		total += s.Count
	}
	assert.Equal(t, uint64(64), total)
}
