package raster

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pitwall/backdrop/render/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame() *core.Frame {
	bg := core.Hex("#000510")
	return &core.Frame{
		Background: &bg,
		Fog:        &core.Fog{Color: bg, Near: 20, Far: 60},
		Rig: []core.PartPose{{
			Name:      "body",
			Shape:     core.ShapeBox,
			Material:  core.MaterialWireframe,
			Size:      mgl32.Vec3{0.8, 0.25, 2.4},
			Transform: core.At(mgl32.Vec3{0, -0.3, 0}),
		}},
		Streaks: []core.StreakInstance{},
		Grid:    &core.FloorGrid{Size: 100, Divisions: 40, Y: -0.8, CenterColor: core.Hex("#0044ff"), LineColor: core.Hex("#001133")},
		Camera:  core.Camera{Position: mgl32.Vec3{0, 1, -5}, Target: mgl32.Vec3{0, -0.3, 0}, FovY: 60, Near: 0.1, Far: 1000},
	}
}

func countNot(img *image.RGBA, c color.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != c {
				n++
			}
		}
	}
	return n
}

func TestInitRejectsViewport(t *testing.T) {
	r := New()
	for _, vp := range []core.Viewport{{}, {Width: 10}, {Width: MaxDimension + 1, Height: 10}} {
		err := r.Init(vp)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedViewport))
	}
	require.NoError(t, r.Init(core.Viewport{Width: 64, Height: 36}))
}

func TestRasterizeClearsToBackground(t *testing.T) {
	r := New()
	require.NoError(t, r.Init(core.Viewport{Width: 32, Height: 18}))

	f := testFrame()
	f.Grid.Divisions = 0
	f.Rig[0].Transform = core.At(mgl32.Vec3{0, 0, -500}) // behind the camera

	img := image.NewRGBA(image.Rect(0, 0, 32, 18))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	r.Rasterize(f, img)

	assert.Equal(t, 0, countNot(img, *f.Background))
}

func TestRasterizeDrawsRigAndGrid(t *testing.T) {
	r := New()
	require.NoError(t, r.Init(core.Viewport{Width: 160, Height: 90}))

	f := testFrame()
	img := image.NewRGBA(image.Rect(0, 0, 160, 90))
	r.Rasterize(f, img)

	assert.Greater(t, countNot(img, *f.Background), 0)

	// The rig sits at the image center; wire edges are cyan-dominant.
	found := false
	for y := 30; y < 70 && !found; y++ {
		for x := 50; x < 110; x++ {
			c := img.RGBAAt(x, y)
			if c.R < 30 && c.G > 60 && int(c.G)*10 >= int(c.B)*8 {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "expected wireframe pixels near the center")
}

func TestStreakIsDrawn(t *testing.T) {
	r := New()
	require.NoError(t, r.Init(core.Viewport{Width: 160, Height: 90}))

	f := testFrame()
	f.Rig[0].Transform = core.At(mgl32.Vec3{0, 0, -500})
	f.Grid.Divisions = 0
	f.Streaks = []core.StreakInstance{{
		Pos:   [3]float32{0, -0.3, 10},
		Scale: [3]float32{0.5, 0.5, 10},
		Color: [4]float32{1, 0, 0.2, 0.8},
	}}
	img := image.NewRGBA(image.Rect(0, 0, 160, 90))
	r.Rasterize(f, img)

	reddest := uint8(0)
	for i := 0; i < len(img.Pix); i += 4 {
		reddest = max(reddest, img.Pix[i])
	}
	assert.Greater(t, reddest, uint8(150))
}

func TestFillPolygonClipsToBounds(t *testing.T) {
	var c Canvas
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	white := color.RGBA{255, 255, 255, 255}

	assert.NotPanics(t, func() {
		c.FillPolygon(img, []mgl32.Vec2{{-50, -50}, {5, -50}, {5, 60}, {-50, 60}}, white)
	})
	assert.Equal(t, white, img.RGBAAt(2, 5))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(8, 5))

	// Entirely outside.
	c.FillPolygon(img, []mgl32.Vec2{{20, 20}, {30, 20}, {30, 30}}, white)
	assert.Equal(t, color.RGBA{}, img.RGBAAt(9, 9))
}

func TestStrokeLine(t *testing.T) {
	var c Canvas
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	red := color.RGBA{255, 0, 0, 255}

	c.StrokeLine(img, mgl32.Vec2{2, 10}, mgl32.Vec2{18, 10}, 2, red)

	assert.Equal(t, red, img.RGBAAt(10, 10))
	assert.Equal(t, red, img.RGBAAt(10, 9))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(10, 3))
}
