package post

import (
	"image"

	"github.com/pitwall/backdrop/render/core"
	xdraw "golang.org/x/image/draw"
)

// bloomStage extracts pixels above a luminance threshold, blurs them through a
// mip chain and adds the result back onto the frame.
type bloomStage struct {
	cfg BloomConfig

	bright *image.RGBA
	mips   []*image.RGBA
	ups    []*image.RGBA
	glow   *image.RGBA
}

func (s *bloomStage) name() string { return "bloom" }

func (s *bloomStage) init(vp core.Viewport) error {
	s.bright = image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	s.glow = image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	s.mips = s.mips[:0]
	s.ups = s.ups[:0]
	w, h := vp.Width, vp.Height
	for i := 0; i < s.cfg.Levels; i++ {
		w, h = max(1, w/2), max(1, h/2)
		s.mips = append(s.mips, image.NewRGBA(image.Rect(0, 0, w, h)))
		s.ups = append(s.ups, image.NewRGBA(image.Rect(0, 0, w, h)))
		if w == 1 && h == 1 {
			break
		}
	}
	return nil
}

func (s *bloomStage) release() {
	s.bright, s.glow = nil, nil
	s.mips, s.ups = nil, nil
}

func (s *bloomStage) apply(img *image.RGBA) {
	if len(s.mips) == 0 {
		return
	}
	s.brightPass(img)

	xdraw.ApproxBiLinear.Scale(s.mips[0], s.mips[0].Bounds(), s.bright, s.bright.Bounds(), xdraw.Src, nil)
	for i := 1; i < len(s.mips); i++ {
		xdraw.ApproxBiLinear.Scale(s.mips[i], s.mips[i].Bounds(), s.mips[i-1], s.mips[i-1].Bounds(), xdraw.Src, nil)
	}
	for i := len(s.mips) - 2; i >= 0; i-- {
		xdraw.BiLinear.Scale(s.ups[i], s.ups[i].Bounds(), s.mips[i+1], s.mips[i+1].Bounds(), xdraw.Src, nil)
		mix(s.mips[i], s.ups[i], s.cfg.Radius)
	}
	xdraw.BiLinear.Scale(s.glow, s.glow.Bounds(), s.mips[0], s.mips[0].Bounds(), xdraw.Src, nil)

	s.composite(img)
}

func (s *bloomStage) brightPass(img *image.RGBA) {
	b := img.Bounds()
	lo := s.cfg.Threshold
	hi := s.cfg.Threshold + s.cfg.Smoothing
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := s.bright.Pix[y*s.bright.Stride:]
		for x := 0; x < b.Dx(); x++ {
			i := x * 4
			r, g, bl := float32(src[i]), float32(src[i+1]), float32(src[i+2])
			l := (0.2126*r + 0.7152*g + 0.0722*bl) / 255
			var k float32
			if hi > lo {
				k = smoothstep(lo, hi, l)
			} else if l > lo {
				k = 1
			}
			dst[i] = clamp8(r * k)
			dst[i+1] = clamp8(g * k)
			dst[i+2] = clamp8(bl * k)
			dst[i+3] = 255
		}
	}
}

func (s *bloomStage) composite(img *image.RGBA) {
	b := img.Bounds()
	k := s.cfg.Intensity
	for y := 0; y < b.Dy(); y++ {
		dst := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		src := s.glow.Pix[y*s.glow.Stride:]
		for x := 0; x < b.Dx()*4; x += 4 {
			dst[x] = clamp8(float32(dst[x]) + float32(src[x])*k)
			dst[x+1] = clamp8(float32(dst[x+1]) + float32(src[x+1])*k)
			dst[x+2] = clamp8(float32(dst[x+2]) + float32(src[x+2])*k)
		}
	}
}

// mix sets dst = dst + (src-dst)*t channel-wise; both images share a size.
func mix(dst, src *image.RGBA, t float32) {
	for i := range dst.Pix {
		a := float32(dst.Pix[i])
		dst.Pix[i] = clamp8(a + (float32(src.Pix[i])-a)*t)
	}
}
