package post

import (
	"fmt"
	"image"

	"github.com/pitwall/backdrop/render/core"
)

// stage is a full-frame pass. The set is closed: stages are only built by
// NewPipeline, in a fixed order.
type stage interface {
	name() string
	init(vp core.Viewport) error
	apply(img *image.RGBA)
	release()
}

// Pipeline runs bloom, scanline and vignette in that order. Bloom runs first so
// the glow is darkened together with the rest of the frame.
type Pipeline struct {
	cfg    Config
	stages []stage
	vp     core.Viewport
	ready  bool
}

func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{cfg: cfg}
	if cfg.Bloom.Enabled {
		p.stages = append(p.stages, &bloomStage{cfg: cfg.Bloom})
	}
	p.stages = append(p.stages,
		&scanlineStage{cfg: cfg.Scanline},
		&vignetteStage{cfg: cfg.Vignette},
	)
	return p, nil
}

func (p *Pipeline) Config() Config { return p.cfg }

// Stages lists the pass names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.name()
	}
	return names
}

// Init sizes every stage's buffers for vp. Any failure leaves the pipeline
// unusable; callers degrade instead of running a partial chain.
func (p *Pipeline) Init(vp core.Viewport) error {
	if !vp.Valid() {
		return fmt.Errorf("post: invalid viewport %dx%d", vp.Width, vp.Height)
	}
	p.Release()
	for _, s := range p.stages {
		if err := s.init(vp); err != nil {
			p.Release()
			return fmt.Errorf("post: %s: %w", s.name(), err)
		}
	}
	p.vp = vp
	p.ready = true
	return nil
}

func (p *Pipeline) Apply(img *image.RGBA) {
	if !p.ready {
		return
	}
	b := img.Bounds()
	if b.Dx() != p.vp.Width || b.Dy() != p.vp.Height {
		return
	}
	for _, s := range p.stages {
		s.apply(img)
	}
}

func (p *Pipeline) Release() {
	for _, s := range p.stages {
		s.release()
	}
	p.ready = false
}
