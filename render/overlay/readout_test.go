package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/pitwall/backdrop/strategy"
	"github.com/stretchr/testify/assert"
)

func black(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func litIn(img *image.RGBA, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) != (color.RGBA{A: 255}) {
				n++
			}
		}
	}
	return n
}

func sampleResult() strategy.Result {
	res := strategy.Result{D1WinProb: 64.4, D2WinProb: 35.6}
	for i := 0; i < 20; i++ {
		res.LapHistory = append(res.LapHistory, strategy.LapGap{Lap: i + 1, Gap: float64(i%5) - 2})
	}
	return res
}

func TestReadout_NothingBeforeSet(t *testing.T) {
	img := black(160, 120)
	NewReadout().Draw(img)
	assert.Zero(t, litIn(img, img.Bounds()))
}

func TestReadout_DrawsTextAndTrace(t *testing.T) {
	r := NewReadout()
	r.Set(strategy.DefaultRequest(), sampleResult())
	assert.Equal(t, "VER 64%  HAM 36%", r.Label())

	img := black(160, 120)
	r.Draw(img)
	assert.Greater(t, litIn(img, image.Rect(0, 0, 160, 30)), 20, "probability text")
	assert.Greater(t, litIn(img, image.Rect(0, 80, 160, 120)), 50, "gap trace")
	assert.Zero(t, litIn(img, image.Rect(60, 40, 100, 70)), "middle of the frame stays clear")
}

func TestReadout_SkipsTinyFrames(t *testing.T) {
	r := NewReadout()
	r.Set(strategy.DefaultRequest(), sampleResult())
	img := black(32, 16)
	r.Draw(img)
	assert.Zero(t, litIn(img, img.Bounds()))
}

func TestReadout_FlatHistory(t *testing.T) {
	r := NewReadout()
	res := sampleResult()
	for i := range res.LapHistory {
		res.LapHistory[i].Gap = 0
	}
	r.Set(strategy.DefaultRequest(), res)
	img := black(160, 120)
	assert.NotPanics(t, func() { r.Draw(img) })
}
