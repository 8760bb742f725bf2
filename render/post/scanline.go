package post

import (
	"image"
	"math"

	"github.com/pitwall/backdrop/render/core"
)

type scanlineStage struct {
	cfg  ScanlineConfig
	rows []float32
}

func (s *scanlineStage) name() string { return "scanline" }

func (s *scanlineStage) init(vp core.Viewport) error {
	s.rows = make([]float32, vp.Height)
	for y := range s.rows {
		v := math.Sin(float64(y) * float64(s.cfg.Density))
		s.rows[y] = 1 - s.cfg.Opacity*float32(0.5-0.5*v)
	}
	return nil
}

func (s *scanlineStage) release() { s.rows = nil }

func (s *scanlineStage) apply(img *image.RGBA) {
	b := img.Bounds()
	for y := 0; y < b.Dy() && y < len(s.rows); y++ {
		f := s.rows[y]
		if f >= 1 {
			continue
		}
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < b.Dx()*4; x += 4 {
			row[x] = clamp8(float32(row[x]) * f)
			row[x+1] = clamp8(float32(row[x+1]) * f)
			row[x+2] = clamp8(float32(row[x+2]) * f)
		}
	}
}
