package mathx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMaxClamp(t *testing.T) {
	assert.Equal(t, 1, Min(3, 1, 2))
	assert.Equal(t, 3.5, Max(3.5, 1, 2))
	assert.Equal(t, uint8(255), Clamp(uint8(255), 0, 255))
	assert.Equal(t, 0.0, Clamp(-4.0, 0, 1))
	assert.Equal(t, 10, Clamp(11, 0, 10))
	assert.Equal(t, 7, Abs(-7))
}

func TestMapAndLerp(t *testing.T) {
	assert.InDelta(t, 105.0, Map(0.5, 0, 1, 10, 200), 1e-9)
	assert.InDelta(t, 10.0, Map(0, 0, 255, 10, 250), 1e-9)
	assert.InDelta(t, 250.0, Map(255, 0, 255, 10, 250), 1e-9)
	// A degenerate input range maps onto the lower output bound.
	assert.Equal(t, 3.0, Map(5, 1, 1, 3, 9))

	assert.InDelta(t, 1.0, Lerp(0, 10, 0.1), 1e-9)
}

func TestRandDeterministic(t *testing.T) {
	a, b := NewRand(42), NewRand(42)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Float64(), b.Float64())
	}

	c := NewRand(43)
	same := 0
	a = NewRand(42)
	for i := 0; i < 100; i++ {
		if a.Float64() == c.Float64() {
			same++
		}
	}
	assert.Less(t, same, 100)
}

func TestRandRanges(t *testing.T) {
	r := NewRand(7)
	for i := 0; i < 10000; i++ {
		f := r.Float64()
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)

		v := r.Range(-2, -0.5)
		require.GreaterOrEqual(t, v, -2.0)
		require.Less(t, v, -0.5)

		n := r.Intn(96)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 96)

		s := r.Sign()
		require.True(t, s == 1 || s == -1)
	}
}

func TestRandZeroSeed(t *testing.T) {
	r := NewRand(0)
	assert.NotPanics(t, func() { r.Float64() })
	assert.Panics(t, func() { r.Intn(0) })
}
