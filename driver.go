package backdrop

import (
	"fmt"
	"image"

	"github.com/pitwall/backdrop/render/core"
)

// profileInterval is how often, in scene seconds, stage timings are logged
// at debug level.
const profileInterval = 1.0

// DriverDeps are the collaborators a Driver steps each frame. Post, Overlay and
// Presenter may be nil.
type DriverDeps struct {
	Clock      *SceneClock
	Particles  *ParticleStream
	Rig        *Rig
	Composer   *Composer
	Rasterizer Rasterizer
	Post       PostProcessor
	Overlay    Overlay
	Presenter  Presenter
	Loop       *RefreshLoop
	Logger     Logger
	Target     *image.RGBA
}

// Driver runs one frame per refresh: tick, advance, pose, compose, raster,
// post, present. It is single-threaded; all calls happen on the render
// goroutine that pumps its RefreshLoop.
type Driver struct {
	DriverDeps

	profiler *Profiler
	streaks  []core.StreakInstance
	cancel   func()

	frames        uint64
	lastReport    float64
	badFrameSeen  bool
	presentFailed bool
}

func NewDriver(deps DriverDeps) *Driver {
	deps.Logger = orNop(deps.Logger)
	if deps.Loop == nil {
		deps.Loop = NewRefreshLoop()
	}
	if deps.Clock == nil {
		deps.Clock = NewSceneClock(nil)
	}
	d := &Driver{
		DriverDeps: deps,
		profiler:   NewProfiler(),
	}
	if deps.Particles != nil {
		d.streaks = make([]core.StreakInstance, 0, deps.Particles.Len())
	}
	return d
}

// Start registers the frame callback. It is a no-op while running.
func (d *Driver) Start() {
	if d.cancel != nil {
		return
	}
	d.cancel = d.Loop.RequestFrames(d.frame)
}

// Stop cancels the frame callback. Once it returns no new frame starts.
func (d *Driver) Stop() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	d.cancel = nil
}

func (d *Driver) Running() bool { return d.cancel != nil }

func (d *Driver) Frames() uint64 { return d.frames }

func (d *Driver) Profiler() *Profiler { return d.profiler }

// SetTarget swaps the render target after a resize.
func (d *Driver) SetTarget(img *image.RGBA) { d.Target = img }

func (d *Driver) frame() {
	elapsed, delta := d.Clock.Tick()
	d.Step(elapsed, delta)
}

// Step renders one frame. Particles and rig see the same clock reading; the
// particles integrate with the delta capped at MaxDelta while the rig poses
// from the raw elapsed time.
func (d *Driver) Step(elapsed, delta float64) {
	step := ClampDelta(delta, MaxDelta)
	if step != delta && d.Logger.DebugEnabled() {
		d.Logger.Debugf("Clamped frame delta %.3fs to %.3fs", delta, step)
	}

	p := d.profiler
	p.BeginScope(ScopeAdvance)
	d.Particles.Advance(step)
	p.EndScope(ScopeAdvance)

	p.BeginScope(ScopePose)
	pose := d.Rig.Pose(elapsed)
	p.EndScope(ScopePose)

	p.BeginScope(ScopeCompose)
	d.streaks = d.Particles.Snapshot(d.streaks)
	f := d.Composer.Compose(pose, d.streaks)
	p.EndScope(ScopeCompose)

	if err := f.Validate(); err != nil {
		if d.Logger.DebugEnabled() {
			panic(fmt.Sprintf("driver: %v", err))
		}
		if !d.badFrameSeen {
			d.badFrameSeen = true
			d.Logger.Errorf("Skipping frame: %v", err)
		}
		return
	}

	if d.Target == nil {
		return
	}

	p.BeginScope(ScopeRaster)
	d.Rasterizer.Rasterize(f, d.Target)
	p.EndScope(ScopeRaster)

	p.BeginScope(ScopePost)
	if d.Post != nil {
		d.Post.Apply(d.Target)
	}
	if d.Overlay != nil {
		d.Overlay(d.Target)
	}
	p.EndScope(ScopePost)

	p.BeginScope(ScopePresent)
	if d.Presenter != nil {
		if err := d.Presenter.Present(d.Target); err != nil && !d.presentFailed {
			d.presentFailed = true
			d.Logger.Warnf("Present failed on %s: %v", d.Presenter.Name(), err)
		}
	}
	p.EndScope(ScopePresent)

	d.frames++
	p.AddCount("frames", 1)
	p.SetCount("recycled", int(d.Particles.Recycled()))
	if d.Logger.DebugEnabled() && elapsed-d.lastReport >= profileInterval {
		d.lastReport = elapsed
		d.Logger.Debugf("%s | frame=%.2fms", p.GetStatsString(), float64(p.Total().Microseconds())/1000)
		p.Reset()
	}
}
