package backdrop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfiler_Scopes(t *testing.T) {
	p := NewProfiler()
	src := NewManualTime(time.Unix(0, 0))
	p.now = src.Now

	p.BeginScope(ScopeAdvance)
	src.Advance(2 * time.Millisecond)
	p.EndScope(ScopeAdvance)

	p.BeginScope(ScopeRaster)
	src.Advance(5 * time.Millisecond)
	p.EndScope(ScopeRaster)

	p.BeginScope(ScopeAdvance)
	src.Advance(time.Millisecond)
	p.EndScope(ScopeAdvance)

	assert.Equal(t, []string{ScopeAdvance, ScopeRaster}, p.Order)
	assert.Equal(t, time.Millisecond, p.Scopes[ScopeAdvance])
	assert.Equal(t, 6*time.Millisecond, p.Total())

	p.SetCount("frames", 3)
	p.AddCount("frames", 1)
	s := p.GetStatsString()
	assert.Contains(t, s, "advance=1.00ms")
	assert.Contains(t, s, "raster=5.00ms")
	assert.Contains(t, s, "frames=4")

	p.Reset()
	assert.Zero(t, p.Total())
	assert.Zero(t, p.Counts["frames"])
	assert.Len(t, p.Order, 2)
}

func TestProfiler_EndWithoutBegin(t *testing.T) {
	p := NewProfiler()
	p.EndScope("missing")
	assert.Empty(t, p.Scopes)
}
