package backdrop

import (
	"math"
	"sync"
	"time"
)

// TimeSource supplies monotonic readings to the scene clock.
type TimeSource interface {
	Now() time.Time
}

// SystemTime reads the wall clock; time.Now carries a monotonic reading.
type SystemTime struct{}

func (SystemTime) Now() time.Time { return time.Now() }

// ManualTime is a controllable TimeSource for tests and offline capture.
type ManualTime struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualTime(start time.Time) *ManualTime {
	return &ManualTime{now: start}
}

func (m *ManualTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualTime) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// SceneClock tracks time since the scene mounted. It is owned by the render
// loop driver, which is its only writer; everyone else gets (elapsed, delta)
// as arguments.
type SceneClock struct {
	source  TimeSource
	start   time.Time
	last    time.Time
	started bool

	Elapsed float64
	Delta   float64
}

func NewSceneClock(source TimeSource) *SceneClock {
	if source == nil {
		source = SystemTime{}
	}
	return &SceneClock{source: source}
}

// Reset restarts the clock; the next Tick reports delta 0.
func (c *SceneClock) Reset() {
	c.started = false
	c.Elapsed = 0
	c.Delta = 0
}

// Tick samples the time source. Elapsed is non-decreasing and delta is
// non-negative even if the source steps backwards.
func (c *SceneClock) Tick() (elapsed, delta float64) {
	now := c.source.Now()
	if !c.started {
		c.start = now
		c.last = now
		c.started = true
		c.Elapsed = 0
		c.Delta = 0
		return 0, 0
	}

	d := now.Sub(c.last).Seconds()
	if d < 0 {
		d = 0
	} else {
		c.last = now
	}
	c.Delta = d
	c.Elapsed += d
	return c.Elapsed, c.Delta
}

// ClampDelta is the integration-side stall policy: invalid readings become 0
// and spikes are capped at limit.
func ClampDelta(delta, limit float64) float64 {
	if math.IsNaN(delta) || math.IsInf(delta, 0) || delta < 0 {
		return 0
	}
	if delta > limit {
		return limit
	}
	return delta
}
