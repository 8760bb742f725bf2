package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pitwall/backdrop/render/core"
	xdraw "golang.org/x/image/draw"
)

// MaxDimension bounds the software target; larger viewports are refused so the
// host degrades instead of stalling the refresh loop.
const MaxDimension = 4096

var ErrUnsupportedViewport = errors.New("raster: unsupported viewport")

// Material looks. Everything is self-illuminated.
var (
	WireColor   = core.Hex("#00ffff")
	WireOpacity = float32(0.8)
	GlowColor   = core.Hex("#0088ff")
	GlowOpacity = float32(0.1)
)

const (
	cylinderSegments = 16
	gridSubdivisions = 8 // per grid line, for per-segment fog
)

var boxCorners = [8]mgl32.Vec3{
	{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
	{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
}

var boxEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

var boxFaces = [6][4]int{
	{0, 1, 2, 3}, {4, 5, 6, 7}, {0, 1, 5, 4},
	{2, 3, 7, 6}, {0, 3, 7, 4}, {1, 2, 6, 5},
}

// Rasterizer draws a composed frame into an RGBA image on the CPU.
type Rasterizer struct {
	Canvas

	vp      core.Viewport
	ready   bool
	viewPrj mgl32.Mat4
	camera  core.Camera
	fog     core.Fog
	focalPx float32

	world [2 * cylinderSegments]mgl32.Vec3
	clip  [2 * cylinderSegments]mgl32.Vec4
	face  []mgl32.Vec2
}

func New() *Rasterizer {
	return &Rasterizer{face: make([]mgl32.Vec2, 0, cylinderSegments)}
}

func (r *Rasterizer) Init(vp core.Viewport) error {
	if !vp.Valid() || vp.Width > MaxDimension || vp.Height > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrUnsupportedViewport, vp.Width, vp.Height)
	}
	r.vp = vp
	r.ready = true
	return nil
}

func (r *Rasterizer) Release() {
	r.ready = false
	r.Canvas = Canvas{}
}

// Rasterize clears dst to the frame background and draws grid, streaks and
// rig in that order. The rig is drawn last so it stays in front of the stream.
func (r *Rasterizer) Rasterize(f *core.Frame, dst *image.RGBA) {
	if !r.ready {
		return
	}
	b := dst.Bounds()
	xdraw.Draw(dst, b, &image.Uniform{C: *f.Background}, image.Point{}, xdraw.Src)

	vp := core.Viewport{Width: b.Dx(), Height: b.Dy()}
	r.camera = f.Camera
	r.fog = *f.Fog
	r.viewPrj = f.Camera.ViewProj(vp.Aspect())
	r.focalPx = float32(vp.Height) / (2 * float32(math.Tan(float64(mgl32.DegToRad(f.Camera.FovY))/2)))

	r.drawGrid(dst, f.Grid)
	r.drawStreaks(dst, f.Streaks)
	for i := range f.Rig {
		r.drawPart(dst, &f.Rig[i])
	}
}

func (r *Rasterizer) toClip(p mgl32.Vec3) mgl32.Vec4 {
	return r.viewPrj.Mul4x1(p.Vec4(1))
}

func (r *Rasterizer) toScreen(c mgl32.Vec4, b image.Rectangle) mgl32.Vec2 {
	inv := 1 / c.W()
	x := (c.X()*inv + 1) * 0.5 * float32(b.Dx())
	y := (1 - c.Y()*inv) * 0.5 * float32(b.Dy())
	return mgl32.Vec2{x + float32(b.Min.X), y + float32(b.Min.Y)}
}

// segment clips a-b against the near plane and returns screen endpoints.
func (r *Rasterizer) segment(a, b mgl32.Vec4, bounds image.Rectangle) (mgl32.Vec2, mgl32.Vec2, bool) {
	near := r.camera.Near
	if a.W() < near && b.W() < near {
		return mgl32.Vec2{}, mgl32.Vec2{}, false
	}
	if a.W() < near {
		a = a.Add(b.Sub(a).Mul((near - a.W()) / (b.W() - a.W())))
	} else if b.W() < near {
		b = b.Add(a.Sub(b).Mul((near - b.W()) / (a.W() - b.W())))
	}
	return r.toScreen(a, bounds), r.toScreen(b, bounds), true
}

func (r *Rasterizer) fogged(c color.RGBA, at mgl32.Vec3, alpha float32) (color.NRGBA, bool) {
	t := r.fog.Factor(at.Sub(r.camera.Position).Len())
	if t >= 1 {
		return color.NRGBA{}, false
	}
	return core.WithAlpha(core.BlendFog(c, r.fog.Color, t), alpha), true
}

func (r *Rasterizer) line(dst *image.RGBA, a, b mgl32.Vec3, width float32, c color.RGBA, alpha float32) {
	col, visible := r.fogged(c, a.Add(b).Mul(0.5), alpha)
	if !visible {
		return
	}
	sa, sb, ok := r.segment(r.toClip(a), r.toClip(b), dst.Bounds())
	if !ok {
		return
	}
	r.StrokeLine(dst, sa, sb, width, col)
}

func (r *Rasterizer) drawGrid(dst *image.RGBA, g *core.FloorGrid) {
	if g.Divisions <= 0 {
		return
	}
	half := g.Size / 2
	step := g.Size / float32(g.Divisions)
	seg := g.Size / gridSubdivisions
	for i := 0; i <= g.Divisions; i++ {
		v := -half + float32(i)*step
		c := g.LineColor
		if i*2 == g.Divisions {
			c = g.CenterColor
		}
		for s := 0; s < gridSubdivisions; s++ {
			u0 := -half + float32(s)*seg
			u1 := u0 + seg
			r.line(dst, mgl32.Vec3{u0, g.Y, v}, mgl32.Vec3{u1, g.Y, v}, 1, c, 1)
			r.line(dst, mgl32.Vec3{v, g.Y, u0}, mgl32.Vec3{v, g.Y, u1}, 1, c, 1)
		}
	}
}

func (r *Rasterizer) drawStreaks(dst *image.RGBA, streaks []core.StreakInstance) {
	for _, s := range streaks {
		center := mgl32.Vec3{s.Pos[0], s.Pos[1], s.Pos[2]}
		halfLen := s.Scale[2] / 2
		a := center.Sub(mgl32.Vec3{0, 0, halfLen})
		b := center.Add(mgl32.Vec3{0, 0, halfLen})

		mid := r.toClip(center)
		width := float32(1)
		if mid.W() > r.camera.Near {
			width = max(1, s.Scale[0]*r.focalPx/mid.W())
		}
		c := color.RGBA{
			R: uint8(s.Color[0]*255 + 0.5),
			G: uint8(s.Color[1]*255 + 0.5),
			B: uint8(s.Color[2]*255 + 0.5),
			A: 255,
		}
		r.line(dst, a, b, width, c, s.Color[3])
	}
}

func (r *Rasterizer) drawPart(dst *image.RGBA, p *core.PartPose) {
	model := p.Model()
	switch p.Shape {
	case core.ShapeBox:
		for i, c := range boxCorners {
			r.world[i] = model.Mul4x1(c.Vec4(1)).Vec3()
			r.clip[i] = r.toClip(r.world[i])
		}
		if p.Material == core.MaterialGlow {
			for _, f := range boxFaces {
				r.fillFace(dst, f[:], GlowColor, GlowOpacity)
			}
			return
		}
		for _, e := range boxEdges {
			r.line(dst, r.world[e[0]], r.world[e[1]], 1, WireColor, WireOpacity)
		}
	case core.ShapeCylinder:
		n := cylinderSegments
		for i := 0; i < n; i++ {
			th := 2 * math.Pi * float64(i) / float64(n)
			y, z := float32(math.Cos(th)), float32(math.Sin(th))
			r.world[i] = model.Mul4x1(mgl32.Vec4{-0.5, y, z, 1}).Vec3()
			r.world[n+i] = model.Mul4x1(mgl32.Vec4{0.5, y, z, 1}).Vec3()
		}
		for i := range r.world {
			r.clip[i] = r.toClip(r.world[i])
		}
		if p.Material == core.MaterialGlow {
			var ring [cylinderSegments]int
			for side := 0; side < 2; side++ {
				for i := range ring {
					ring[i] = side*n + i
				}
				r.fillFace(dst, ring[:], GlowColor, GlowOpacity)
			}
			return
		}
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			r.line(dst, r.world[i], r.world[j], 1, WireColor, WireOpacity)
			r.line(dst, r.world[n+i], r.world[n+j], 1, WireColor, WireOpacity)
			r.line(dst, r.world[i], r.world[n+i], 1, WireColor, WireOpacity)
		}
	}
}

// fillFace fills a polygon of projected vertices. Faces crossing the near
// plane are skipped.
func (r *Rasterizer) fillFace(dst *image.RGBA, idx []int, c color.RGBA, alpha float32) {
	var center mgl32.Vec3
	r.face = r.face[:0]
	for _, i := range idx {
		if r.clip[i].W() < r.camera.Near {
			return
		}
		center = center.Add(r.world[i])
		r.face = append(r.face, r.toScreen(r.clip[i], dst.Bounds()))
	}
	col, visible := r.fogged(c, center.Mul(1/float32(len(idx))), alpha)
	if !visible {
		return
	}
	r.FillPolygon(dst, r.face, col)
}
