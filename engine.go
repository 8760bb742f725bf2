// Package backdrop animates the procedural race scene behind the pitwall dashboard:
// a wireframe car rig driving through a stream of laser streaks.
package backdrop

import (
	"errors"
	"fmt"
	"image"
	"math/rand"

	"github.com/google/uuid"
	"github.com/pitwall/backdrop/render/core"
	"github.com/pitwall/backdrop/render/post"
	"github.com/pitwall/backdrop/render/raster"
	xdraw "golang.org/x/image/draw"
)

var (
	ErrBackendUnavailable = errors.New("render backend unavailable")
	ErrAlreadyMounted     = errors.New("engine already mounted")
	ErrNotMounted         = errors.New("engine not mounted")
)

type EngineState int

const (
	StateUnmounted EngineState = iota
	StateRunning
	// StateDegraded shows a static flat background after a backend failure.
	StateDegraded
)

func (s EngineState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDegraded:
		return "degraded"
	default:
		return "unmounted"
	}
}

type Option func(*Engine)

func WithLogger(l Logger) Option {
	return func(e *Engine) { e.logger = orNop(l) }
}

func WithTimeSource(ts TimeSource) Option {
	return func(e *Engine) { e.time = ts }
}

func WithRefreshLoop(l *RefreshLoop) Option {
	return func(e *Engine) { e.loop = l }
}

func WithRasterizer(r Rasterizer) Option {
	return func(e *Engine) { e.raster = r }
}

// WithPostProcessor replaces the pipeline built from EngineConfig.Post.
func WithPostProcessor(p PostProcessor) Option {
	return func(e *Engine) { e.post = p }
}

// WithPresenter installs the display sink. Installing a second presenter
// with a different name panics.
func WithPresenter(p Presenter) Option {
	return func(e *Engine) { ensureSinglePresenter(e, p) }
}

func WithOverlay(o Overlay) Option {
	return func(e *Engine) { e.overlay = o }
}

// Engine owns the backdrop scene between Mount and Unmount. All methods must
// be called from the render goroutine; other goroutines go through
// Loop().Defer.
type Engine struct {
	cfg       EngineConfig
	logger    Logger
	log       Logger
	time      TimeSource
	loop      *RefreshLoop
	raster    Rasterizer
	post      PostProcessor
	presenter Presenter
	overlay   Overlay

	state        EngineState
	session      uuid.UUID
	vp           core.Viewport
	clock        *SceneClock
	particles    *ParticleStream
	rig          *Rig
	composer     *Composer
	target       *image.RGBA
	driver       *Driver
	backendReady bool
	lastErr      error
	reported     bool
}

func NewEngine(cfg EngineConfig, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, logger: NewNopLogger()}
	for _, opt := range opts {
		opt(e)
	}
	if cfg.Debug {
		e.logger.SetDebug(true)
	}
	e.log = e.logger
	if e.time == nil {
		e.time = SystemTime{}
	}
	if e.loop == nil {
		e.loop = NewRefreshLoop()
	}
	if e.raster == nil {
		e.raster = raster.New()
	}
	return e
}

func (e *Engine) State() EngineState { return e.state }

func (e *Engine) Loop() *RefreshLoop { return e.loop }

func (e *Engine) Viewport() core.Viewport { return e.vp }

// Session is the id of the current mount, empty when unmounted.
func (e *Engine) Session() string {
	if e.state == StateUnmounted {
		return ""
	}
	return e.session.String()
}

// Target is the last rendered frame, nil when unmounted.
func (e *Engine) Target() *image.RGBA { return e.target }

// Err is the backend failure that caused degradation, if any.
func (e *Engine) Err() error { return e.lastErr }

func (e *Engine) Driver() *Driver { return e.driver }

// Mount allocates the scene, initializes the backend and starts the loop.
// A backend failure does not surface: the engine reports it once, switches
// to a flat background and returns nil.
func (e *Engine) Mount(vp core.Viewport) error {
	if e.state != StateUnmounted {
		return ErrAlreadyMounted
	}

	e.session = uuid.New()
	e.log = withSession(e.logger, e.session.String()[:8])
	e.vp = vp
	e.lastErr = nil

	particles, err := NewParticleStream(e.cfg.Stream, rand.New(rand.NewSource(e.cfg.Seed)))
	if err != nil {
		e.log = e.logger
		return fmt.Errorf("mount: %w", err)
	}
	e.particles = particles
	e.rig = NewRig(e.cfg.Motion)
	e.composer = NewComposer()
	e.clock = NewSceneClock(e.time)

	if e.post == nil {
		p, err := post.NewPipeline(e.cfg.Post)
		if err != nil {
			e.degrade(fmt.Errorf("%w: %w", ErrBackendUnavailable, err))
			return nil
		}
		e.post = p
	}

	if err := e.initBackend(vp); err != nil {
		e.degrade(err)
		return nil
	}

	e.target = image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	e.driver = NewDriver(DriverDeps{
		Clock:      e.clock,
		Particles:  e.particles,
		Rig:        e.rig,
		Composer:   e.composer,
		Rasterizer: e.raster,
		Post:       e.post,
		Overlay:    e.overlay,
		Presenter:  e.presenter,
		Loop:       e.loop,
		Logger:     e.log,
		Target:     e.target,
	})
	e.driver.Start()
	e.state = StateRunning
	e.log.Infof("Mounted %dx%d backdrop (%d streaks, presenter %s)", vp.Width, vp.Height, particles.Len(), e.presenterName())
	return nil
}

func (e *Engine) presenterName() RendererName {
	if e.presenter == nil {
		return "none"
	}
	return e.presenter.Name()
}

// initBackend brings up rasterizer, post chain and presenter in that order,
// unwinding whatever succeeded if a later piece fails.
func (e *Engine) initBackend(vp core.Viewport) error {
	if err := e.raster.Init(vp); err != nil {
		return fmt.Errorf("%w: raster: %w", ErrBackendUnavailable, err)
	}
	if err := e.post.Init(vp); err != nil {
		e.raster.Release()
		return fmt.Errorf("%w: post: %w", ErrBackendUnavailable, err)
	}
	if e.presenter != nil {
		if err := e.presenter.Init(vp); err != nil {
			e.post.Release()
			e.raster.Release()
			return fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, e.presenter.Name(), err)
		}
	}
	e.backendReady = true
	return nil
}

func (e *Engine) releaseBackend() {
	if !e.backendReady {
		return
	}
	if e.presenter != nil {
		e.presenter.Release()
	}
	if e.post != nil {
		e.post.Release()
	}
	e.raster.Release()
	e.backendReady = false
}

// degrade switches to the static fallback. The failure is logged once per
// engine, however many mounts hit it.
func (e *Engine) degrade(err error) {
	e.lastErr = err
	e.state = StateDegraded
	if !e.reported {
		e.reported = true
		e.log.Warnf("3D backdrop disabled, showing flat background: %v", err)
	}
	if !e.vp.Valid() || e.composer == nil {
		return
	}
	e.target = image.NewRGBA(image.Rect(0, 0, e.vp.Width, e.vp.Height))
	bg := e.composer.Background()
	xdraw.Draw(e.target, e.target.Bounds(), &image.Uniform{C: bg}, image.Point{}, xdraw.Src)

	// The presenter may still work on its own even if raster or post failed.
	if e.presenter == nil {
		return
	}
	if err := e.presenter.Init(e.vp); err != nil {
		return
	}
	if err := e.presenter.Present(e.target); err != nil {
		e.log.Debugf("Flat background present failed: %v", err)
	}
	e.presenter.Release()
}

// Resize re-initializes the backend for a new viewport. The scene clock,
// particles and rig carry on untouched.
func (e *Engine) Resize(vp core.Viewport) error {
	switch e.state {
	case StateUnmounted:
		return ErrNotMounted
	case StateDegraded:
		e.vp = vp
		e.degrade(e.lastErr)
		return nil
	}
	if !vp.Valid() {
		// A minimized window reports 0x0. Hold the backend and scene until a
		// drawable size comes back.
		if e.driver.Running() {
			e.driver.Stop()
			e.log.Debugf("Paused at %dx%d", vp.Width, vp.Height)
		}
		return nil
	}
	if vp == e.vp {
		e.driver.Start()
		return nil
	}

	e.driver.Stop()
	e.releaseBackend()
	e.vp = vp
	if err := e.initBackend(vp); err != nil {
		e.driver = nil
		e.degrade(err)
		return nil
	}
	e.target = image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	e.driver.SetTarget(e.target)
	e.driver.Start()
	e.log.Debugf("Resized to %dx%d", vp.Width, vp.Height)
	return nil
}

// Unmount stops the loop, then releases every pool and buffer. It is safe
// without a successful Mount and safe to call twice.
func (e *Engine) Unmount() {
	if e.driver != nil {
		e.driver.Stop()
		e.driver = nil
	}
	e.releaseBackend()
	if e.particles != nil {
		e.particles.Release()
		e.particles = nil
	}
	if e.rig != nil {
		e.rig.Release()
		e.rig = nil
	}
	if e.state != StateUnmounted {
		e.log.Infof("Unmounted")
	}
	e.composer = nil
	e.clock = nil
	e.target = nil
	e.state = StateUnmounted
	e.log = e.logger
}
