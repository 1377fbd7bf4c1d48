package weierstrass_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/qnark/circuit"
	"github.com/consensys/qnark/ecc"
	"github.com/consensys/qnark/std/modarith"
	"github.com/consensys/qnark/std/weierstrass"
	"github.com/consensys/qnark/test"
)

func toy13(t *testing.T) *ecc.Curve {
	t.Helper()
	cv, err := ecc.NewCurve(big.NewInt(13), big.NewInt(0), big.NewInt(7), 4)
	require.NoError(t, err)
	return cv
}

func toy5(t *testing.T) *ecc.Curve {
	t.Helper()
	cv, err := ecc.NewCurve(big.NewInt(5), big.NewInt(1), big.NewInt(1), 3)
	require.NoError(t, err)
	return cv
}

func value(t *testing.T, st *test.State, name string) uint64 {
	t.Helper()
	v, err := st.Value(name)
	require.NoError(t, err)
	return v
}

func TestAddMixedMatchesChord(t *testing.T) {
	cv := toy13(t)

	w, err := weierstrass.RequiredWidth(cv, 1)
	require.NoError(t, err)
	require.GreaterOrEqual(t, w, 4)
	require.LessOrEqual(t, w, 12)

	c := circuit.New()
	acc, err := weierstrass.NewAccumulator(c, w)
	require.NoError(t, err)
	pool, err := circuit.NewAncillaPool(c, w)
	require.NoError(t, err)

	// the chord law never reads the curve coefficients, so the classical
	// ecc fixture (4,8)+(11,5) = (8,3) carries over unchanged
	s := circuit.NewSequence()
	require.NoError(t, acc.LoadAffine(s, ecc.NewPoint(4, 8)))

	add, err := weierstrass.AddMixed(cv, acc, ecc.NewPoint(11, 5), pool)
	require.NoError(t, err)
	c.Append(s, add)

	assert.Equal(t, 8, pool.NbBlocks())
	assert.Equal(t, 3, pool.NbRetired())
	require.NoError(t, pool.Finalize())

	st, err := test.NewEngine().State(c)
	require.NoError(t, err)
	require.True(t, st.IsClassical())

	// raw accumulations stay congruent to the affine result
	x3 := value(t, st, "X")
	y3 := value(t, st, "Y")
	z3 := value(t, st, "Z")
	assert.Equal(t, uint64(145), x3)
	assert.Equal(t, uint64(119), y3)
	assert.Equal(t, uint64(7), z3)

	got := cv.NormalizeJacobian(
		new(big.Int).SetUint64(x3),
		new(big.Int).SetUint64(y3),
		new(big.Int).SetUint64(z3),
	)
	assert.True(t, got.Equal(ecc.NewPoint(8, 3)))

	// released scratch is back to zero
	for _, name := range []string{"t1", "t2", "t3", "t4", "t7"} {
		assert.Equal(t, uint64(0), value(t, st, name), name)
	}
	// the retired trio holds the displaced coordinates
	assert.Equal(t, uint64(1), value(t, st, "t0"))
	assert.Equal(t, uint64(4), value(t, st, "t5"))
	assert.Equal(t, uint64(8), value(t, st, "t6"))
}

func TestAddMixedStructure(t *testing.T) {
	cv := toy13(t)
	const w = 12

	c := circuit.New()
	acc, err := weierstrass.NewAccumulator(c, w)
	require.NoError(t, err)
	pool, err := circuit.NewAncillaPool(c, w)
	require.NoError(t, err)

	s := circuit.NewSequence()
	require.NoError(t, acc.LoadAffine(s, ecc.NewPoint(4, 8)))

	add, err := weierstrass.AddMixed(cv, acc, ecc.NewPoint(11, 5), pool)
	require.NoError(t, err)

	// 31 primitives, each wrapped in a Fourier sandwich of two
	// w-qubit transforms, plus the closing coordinate swaps
	var nbH, nbSwap, nbX, nbMeasure int
	for _, op := range add.Ops() {
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
	assert.Equal(t, 31*2*w, nbH)
	assert.Equal(t, 31*2*(w/2)+3*w, nbSwap)
	assert.Zero(t, nbX)
	assert.Zero(t, nbMeasure)
}

func TestScalarMulChain(t *testing.T) {
	cv := toy5(t)

	// y² = x³ + x + 1 over F_5: P = (0,1), 2P = (4,2), 5P = (3,1)
	base := ecc.NewPoint(0, 1)
	twoP := ecc.NewPoint(4, 2)

	w, err := weierstrass.RequiredWidth(cv, 2)
	require.NoError(t, err)
	require.LessOrEqual(t, w, 10)

	run := func(t *testing.T, k uint64) ecc.Point {
		c := circuit.New()
		sel, err := c.NewRegister("sel", circuit.RoleSelector, 2)
		require.NoError(t, err)
		acc, err := weierstrass.NewAccumulator(c, w)
		require.NoError(t, err)
		pool, err := circuit.NewAncillaPool(c, w)
		require.NoError(t, err)

		s := circuit.NewSequence()
		require.NoError(t, s.LoadConstant(sel, k))
		require.NoError(t, acc.LoadAffine(s, twoP))

		sm, err := weierstrass.ScalarMul(cv, acc, sel, base, pool)
		require.NoError(t, err)
		c.Append(s, sm)

		assert.Equal(t, 11, pool.NbBlocks())
		assert.Equal(t, 6, pool.NbRetired())
		require.NoError(t, pool.Finalize())

		st, err := test.NewEngine().State(c)
		require.NoError(t, err)
		require.True(t, st.IsClassical())
		assert.Equal(t, k, value(t, st, "sel"))

		for _, name := range []string{"t1", "t10"} {
			assert.Equal(t, uint64(0), value(t, st, name), name)
		}

		return cv.NormalizeJacobian(
			new(big.Int).SetUint64(value(t, st, "X")),
			new(big.Int).SetUint64(value(t, st, "Y")),
			new(big.Int).SetUint64(value(t, st, "Z")),
		)
	}

	t.Run("k=3", func(t *testing.T) {
		got := run(t, 3)
		want := cv.Add(twoP, cv.ScalarMul(big.NewInt(3), base))
		assert.True(t, got.Equal(want), "got %v want %v", got, want)
		assert.True(t, got.Equal(ecc.NewPoint(3, 1)))
	})

	t.Run("k=0", func(t *testing.T) {
		got := run(t, 0)
		assert.True(t, got.Equal(twoP), "got %v", got)
	})
}

func TestDegeneratePoints(t *testing.T) {
	cv := toy13(t)

	t.Run("add infinity", func(t *testing.T) {
		c := circuit.New()
		acc, err := weierstrass.NewAccumulator(c, 10)
		require.NoError(t, err)
		pool, err := circuit.NewAncillaPool(c, 10)
		require.NoError(t, err)

		_, err = weierstrass.AddMixed(cv, acc, ecc.Infinity(), pool)
		var de *weierstrass.DegeneratePointError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "add", de.Op)
		assert.Equal(t, -1, de.Index)
		assert.Zero(t, pool.NbBlocks())
	})

	t.Run("doubling chain collapses", func(t *testing.T) {
		// y² = x³ + 4x over F_5 has the 2-torsion point (0,0)
		tor, err := ecc.NewCurve(big.NewInt(5), big.NewInt(4), big.NewInt(0), 3)
		require.NoError(t, err)
		w, err := weierstrass.RequiredWidth(tor, 2)
		require.NoError(t, err)

		c := circuit.New()
		sel, err := c.NewRegister("sel", circuit.RoleSelector, 2)
		require.NoError(t, err)
		acc, err := weierstrass.NewAccumulator(c, w)
		require.NoError(t, err)
		pool, err := circuit.NewAncillaPool(c, w)
		require.NoError(t, err)

		_, err = weierstrass.ScalarMul(tor, acc, sel, ecc.NewPoint(0, 0), pool)
		var de *weierstrass.DegeneratePointError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "scalarmul", de.Op)
		assert.Equal(t, 1, de.Index)
	})

	t.Run("infinite base", func(t *testing.T) {
		c := circuit.New()
		sel, err := c.NewRegister("sel", circuit.RoleSelector, 2)
		require.NoError(t, err)
		acc, err := weierstrass.NewAccumulator(c, 10)
		require.NoError(t, err)
		pool, err := circuit.NewAncillaPool(c, 10)
		require.NoError(t, err)

		_, err = weierstrass.ScalarMul(cv, acc, sel, ecc.Infinity(), pool)
		var de *weierstrass.DegeneratePointError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, -1, de.Index)
	})

	t.Run("load infinity", func(t *testing.T) {
		c := circuit.New()
		acc, err := weierstrass.NewAccumulator(c, 10)
		require.NoError(t, err)
		var de *weierstrass.DegeneratePointError
		err = acc.LoadAffine(circuit.NewSequence(), ecc.Infinity())
		require.ErrorAs(t, err, &de)
	})
}

func TestWidthMismatch(t *testing.T) {
	cv := toy13(t)

	c := circuit.New()
	acc, err := weierstrass.NewAccumulator(c, 6)
	require.NoError(t, err)
	pool, err := circuit.NewAncillaPool(c, 8)
	require.NoError(t, err)

	_, err = weierstrass.AddMixed(cv, acc, ecc.NewPoint(11, 5), pool)
	var se *modarith.SizingError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "X", se.Register)
	assert.Equal(t, 6, se.Width)
}

func TestRequiredWidth(t *testing.T) {
	cv := toy13(t)

	w1, err := weierstrass.RequiredWidth(cv, 1)
	require.NoError(t, err)
	w2, err := weierstrass.RequiredWidth(cv, 2)
	require.NoError(t, err)
	w4, err := weierstrass.RequiredWidth(cv, 4)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, w1, 4)
	assert.LessOrEqual(t, w1, w2)
	assert.LessOrEqual(t, w2, w4)
	assert.LessOrEqual(t, w4, circuit.MaxWidth)

	_, err = weierstrass.RequiredWidth(cv, 0)
	require.Error(t, err)
}
