package main

import (
	"testing"

	"github.com/pitwall/backdrop"
	"github.com/stretchr/testify/assert"
)

func TestHostLoop_WaitsWhenIdle(t *testing.T) {
	loop := backdrop.NewRefreshLoop()
	cancel := loop.RequestFrames(func() {})

	iterations, polls := 0, 0
	var waits []float64
	done := func() bool {
		iterations++
		if iterations == 3 {
			cancel()
		}
		return iterations > 5
	}
	wait := func(timeout float64) { waits = append(waits, timeout) }

	hostLoop(done, func() { polls++ }, loop.Pump, wait)

	assert.Equal(t, 5, polls)
	assert.Equal(t, uint64(2), loop.Frames(), "frames run until the callback is cancelled")
	assert.Len(t, waits, 3, "every idle iteration waits for events")
	for _, w := range waits {
		assert.InDelta(t, frameInterval.Seconds(), w, 1e-9)
	}
}
