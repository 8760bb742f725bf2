// Package snapshot keeps the most recent presented frame in memory so headless
// hosts can encode it as a PNG.
package snapshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/pitwall/backdrop"
	"github.com/pitwall/backdrop/render/core"
)

var (
	ErrNotInitialized = errors.New("snapshot: presenter not initialized")
	ErrNoFrame        = errors.New("snapshot: nothing presented yet")
)

type Presenter struct {
	last      *image.RGBA
	vp        core.Viewport
	ready     bool
	presented int
}

func NewPresenter() *Presenter { return &Presenter{} }

func (p *Presenter) Name() backdrop.RendererName { return backdrop.RendererSnapshot }

func (p *Presenter) Init(vp core.Viewport) error {
	if !vp.Valid() {
		return fmt.Errorf("snapshot: invalid viewport %dx%d", vp.Width, vp.Height)
	}
	if p.last == nil || p.vp != vp {
		p.last = image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	}
	p.vp = vp
	p.ready = true
	return nil
}

func (p *Presenter) Present(img *image.RGBA) error {
	if !p.ready {
		return ErrNotInitialized
	}
	b := img.Bounds()
	if b.Dx() != p.vp.Width || b.Dy() != p.vp.Height {
		return fmt.Errorf("snapshot: frame %dx%d does not match %dx%d", b.Dx(), b.Dy(), p.vp.Width, p.vp.Height)
	}
	for y := 0; y < b.Dy(); y++ {
		copy(p.last.Pix[y*p.last.Stride:y*p.last.Stride+b.Dx()*4], img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	p.presented++
	return nil
}

// Presented counts frames received since construction.
func (p *Presenter) Presented() int { return p.presented }

// Frame returns the last presented image. It stays valid after Release.
func (p *Presenter) Frame() *image.RGBA {
	if p.presented == 0 {
		return nil
	}
	return p.last
}

func (p *Presenter) Encode(w io.Writer) error {
	f := p.Frame()
	if f == nil {
		return ErrNoFrame
	}
	return png.Encode(w, f)
}

func (p *Presenter) WriteFile(path string) error {
	if p.Frame() == nil {
		return ErrNoFrame
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.Encode(out); err != nil {
		out.Close()
		return fmt.Errorf("snapshot: encode %s: %w", path, err)
	}
	return out.Close()
}

// Release stops accepting frames but keeps the last one for encoding.
func (p *Presenter) Release() { p.ready = false }
