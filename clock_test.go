package backdrop

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSceneClock_FirstTickIsZero(t *testing.T) {
	src := NewManualTime(time.Unix(100, 0))
	c := NewSceneClock(src)

	elapsed, delta := c.Tick()
	assert.Zero(t, elapsed)
	assert.Zero(t, delta)

	src.Advance(250 * time.Millisecond)
	elapsed, delta = c.Tick()
	assert.InDelta(t, 0.25, elapsed, 1e-9)
	assert.InDelta(t, 0.25, delta, 1e-9)
	assert.Equal(t, elapsed, c.Elapsed)
	assert.Equal(t, delta, c.Delta)
}

func TestSceneClock_BackwardsSourceNeverRewinds(t *testing.T) {
	src := NewManualTime(time.Unix(100, 0))
	c := NewSceneClock(src)
	c.Tick()
	src.Advance(time.Second)
	c.Tick()

	src.Advance(-500 * time.Millisecond)
	elapsed, delta := c.Tick()
	assert.Zero(t, delta)
	assert.InDelta(t, 1.0, elapsed, 1e-9)

	// Catching back up only counts time past the last good reading.
	src.Advance(700 * time.Millisecond)
	elapsed, delta = c.Tick()
	assert.InDelta(t, 0.2, delta, 1e-9)
	assert.InDelta(t, 1.2, elapsed, 1e-9)
}

func TestSceneClock_StallKeepsRawElapsed(t *testing.T) {
	src := NewManualTime(time.Unix(0, 0))
	c := NewSceneClock(src)
	c.Tick()
	src.Advance(5 * time.Second)
	elapsed, delta := c.Tick()
	assert.InDelta(t, 5.0, elapsed, 1e-9)
	assert.InDelta(t, 5.0, delta, 1e-9)
}

func TestSceneClock_Reset(t *testing.T) {
	src := NewManualTime(time.Unix(0, 0))
	c := NewSceneClock(src)
	c.Tick()
	src.Advance(time.Second)
	c.Tick()

	c.Reset()
	src.Advance(time.Second)
	elapsed, delta := c.Tick()
	assert.Zero(t, elapsed)
	assert.Zero(t, delta)
}

func TestClampDelta(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.016, 0.016},
		{MaxDelta, MaxDelta},
		{3.0, MaxDelta},
		{-1, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampDelta(tt.in, MaxDelta), "in=%v", tt.in)
	}
}
