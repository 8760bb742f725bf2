package post

import (
	"image"
	"math"

	"github.com/pitwall/backdrop/render/core"
)

// vignetteStage darkens radially from the frame center. The factor map depends
// only on the viewport, so it is built once in init.
type vignetteStage struct {
	cfg    VignetteConfig
	w, h   int
	factor []float32
}

func (s *vignetteStage) name() string { return "vignette" }

func (s *vignetteStage) init(vp core.Viewport) error {
	s.w, s.h = vp.Width, vp.Height
	s.factor = make([]float32, vp.Width*vp.Height)
	scale := s.cfg.Darkness + s.cfg.Offset
	for y := 0; y < vp.Height; y++ {
		v := (float64(y)+0.5)/float64(vp.Height) - 0.5
		for x := 0; x < vp.Width; x++ {
			u := (float64(x)+0.5)/float64(vp.Width) - 0.5
			d := float32(math.Sqrt(u*u + v*v))
			s.factor[y*vp.Width+x] = smoothstep(0.8, s.cfg.Offset*0.799, d*scale)
		}
	}
	return nil
}

func (s *vignetteStage) release() { s.factor = nil }

func (s *vignetteStage) apply(img *image.RGBA) {
	b := img.Bounds()
	if b.Dx() != s.w || b.Dy() != s.h {
		return
	}
	for y := 0; y < s.h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		fr := s.factor[y*s.w:]
		for x := 0; x < s.w; x++ {
			f := fr[x]
			i := x * 4
			row[i] = clamp8(float32(row[i]) * f)
			row[i+1] = clamp8(float32(row[i+1]) * f)
			row[i+2] = clamp8(float32(row[i+2]) * f)
		}
	}
}
