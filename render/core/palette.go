package core

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Hex parses a "#rrggbb" constant. Palette entries are compile-time values,
// so a malformed one is a programming error.
func Hex(s string) color.RGBA {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("core: bad palette color %q: %v", s, err))
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// WithAlpha returns c carrying straight (non-premultiplied) alpha a in [0,1].
func WithAlpha(c color.RGBA, a float32) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(a*255 + 0.5)}
}

// BlendFog mixes c towards fog by t in [0,1] in RGB space.
func BlendFog(c, fog color.RGBA, t float32) color.RGBA {
	if t <= 0 {
		return c
	}
	if t >= 1 {
		return color.RGBA{R: fog.R, G: fog.G, B: fog.B, A: c.A}
	}
	a, _ := colorful.MakeColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	b, _ := colorful.MakeColor(fog)
	r, g, bl := a.BlendRgb(b, float64(t)).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: bl, A: c.A}
}
