// Package overlay draws the strategy readout on top of the finished frame:
// win probabilities as text and the lap gap history as a sparkline.
package overlay

import (
	"fmt"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pitwall/backdrop/render/core"
	"github.com/pitwall/backdrop/render/raster"
	"github.com/pitwall/backdrop/strategy"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	LeadColor  = core.Hex("#e10600")
	RivalColor = core.Hex("#888888")
	TraceColor = core.Hex("#00ffff")
	ZeroColor  = core.WithAlpha(core.Hex("#0044ff"), 0.6)
)

const (
	margin      = 8
	stripHeight = 40
	minWidth    = 64
	minHeight   = 48
)

// Readout holds the latest duel and draws it. Set and Draw run on the render
// goroutine; producers hand results over with RefreshLoop.Defer.
type Readout struct {
	canvas raster.Canvas
	face   font.Face

	label  string
	d1, d2 string
	result *strategy.Result
	pts    []mgl32.Vec2
}

func NewReadout() *Readout {
	return &Readout{face: basicfont.Face7x13}
}

func (r *Readout) Set(req strategy.Request, res strategy.Result) {
	r.d1, r.d2 = req.Driver1, req.Driver2
	r.result = &res
	r.label = fmt.Sprintf("%s %.0f%%  %s %.0f%%", req.Driver1, res.D1WinProb, req.Driver2, res.D2WinProb)
}

// Label is the text line drawn in the top-left corner.
func (r *Readout) Label() string { return r.label }

// Draw matches the engine's overlay hook.
func (r *Readout) Draw(img *image.RGBA) {
	if r.result == nil {
		return
	}
	b := img.Bounds()
	if b.Dx() < minWidth || b.Dy() < minHeight {
		return
	}
	r.drawText(img)
	r.drawTrace(img)
}

func (r *Readout) drawText(img *image.RGBA) {
	b := img.Bounds()
	ascent := r.face.Metrics().Ascent.Ceil()
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(LeadColor),
		Face: r.face,
		Dot:  fixed.P(b.Min.X+margin, b.Min.Y+margin+ascent),
	}
	d.DrawString(fmt.Sprintf("%s %.0f%%", r.d1, r.result.D1WinProb))
	d.Src = image.NewUniform(RivalColor)
	d.DrawString(fmt.Sprintf("  %s %.0f%%", r.d2, r.result.D2WinProb))
}

// drawTrace plots gap per lap in a strip along the bottom edge. Positive gaps
// (driver one ahead) go up.
func (r *Readout) drawTrace(img *image.RGBA) {
	hist := r.result.LapHistory
	if len(hist) < 2 {
		return
	}
	b := img.Bounds()
	h := min(stripHeight, b.Dy()/4)
	x0 := float32(b.Min.X + margin)
	x1 := float32(b.Max.X - margin)
	mid := float32(b.Max.Y-margin) - float32(h)/2
	half := float32(h) / 2

	peak := 0.0
	for _, lg := range hist {
		peak = math.Max(peak, math.Abs(lg.Gap))
	}
	if peak == 0 {
		peak = 1
	}

	r.canvas.StrokeLine(img, mgl32.Vec2{x0, mid}, mgl32.Vec2{x1, mid}, 1, ZeroColor)

	r.pts = r.pts[:0]
	step := (x1 - x0) / float32(len(hist)-1)
	for i, lg := range hist {
		y := mid - float32(lg.Gap/peak)*half
		r.pts = append(r.pts, mgl32.Vec2{x0 + float32(i)*step, y})
	}
	for i := 1; i < len(r.pts); i++ {
		r.canvas.StrokeLine(img, r.pts[i-1], r.pts[i], 1.5, TraceColor)
	}
}
