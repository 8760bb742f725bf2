package backdrop

import (
	"image"

	"github.com/pitwall/backdrop/render/core"
)

// RendererName identifies a concrete presenter.
// Keep names aligned with ensureSinglePresenter tags.
type RendererName string

const (
	RendererWGPU     RendererName = "wgpu"
	RendererTerminal RendererName = "term"
	RendererSnapshot RendererName = "snapshot"
)

// Rasterizer turns a composed frame into pixels.
type Rasterizer interface {
	Init(vp core.Viewport) error
	Rasterize(f *core.Frame, dst *image.RGBA)
	Release()
}

// PostProcessor runs the full-frame passes after rasterization.
type PostProcessor interface {
	Init(vp core.Viewport) error
	Apply(img *image.RGBA)
	Release()
}

// Presenter puts a finished frame on a display.
type Presenter interface {
	Name() RendererName
	Init(vp core.Viewport) error
	Present(img *image.RGBA) error
	Release()
}

// Overlay draws on top of the post-processed frame, before it is presented.
type Overlay func(img *image.RGBA)
