package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Canvas fills screen-space polygons into an RGBA target. The vector
// rasterizer and scratch buffers are reused across calls, so steady-state
// drawing does not allocate.
type Canvas struct {
	z       vector.Rasterizer
	src     image.Uniform
	scratch [2][]mgl32.Vec2
	quad    [4]mgl32.Vec2
}

// FillPolygon draws a convex or concave polygon with the given color, clipped
// to dst's bounds. Colors with alpha are composited with Over.
func (c *Canvas) FillPolygon(dst *image.RGBA, pts []mgl32.Vec2, col color.Color) {
	if len(pts) < 3 {
		return
	}
	b := dst.Bounds()
	poly := c.clip(pts, b)
	if len(poly) < 3 {
		return
	}

	minX, minY := poly[0].X(), poly[0].Y()
	maxX, maxY := minX, minY
	for _, p := range poly[1:] {
		minX = min(minX, p.X())
		minY = min(minY, p.Y())
		maxX = max(maxX, p.X())
		maxY = max(maxY, p.Y())
	}
	box := image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	).Intersect(b)
	if box.Empty() {
		return
	}

	ox, oy := float32(box.Min.X), float32(box.Min.Y)
	c.z.Reset(box.Dx(), box.Dy())
	c.z.DrawOp = xdraw.Over
	c.z.MoveTo(poly[0].X()-ox, poly[0].Y()-oy)
	for _, p := range poly[1:] {
		c.z.LineTo(p.X()-ox, p.Y()-oy)
	}
	c.z.ClosePath()

	c.src.C = col
	c.z.Draw(dst, box, &c.src, image.Point{})
}

// StrokeLine draws a segment as a quad of the given pixel width.
func (c *Canvas) StrokeLine(dst *image.RGBA, a, b mgl32.Vec2, width float32, col color.Color) {
	if width <= 0 {
		width = 1
	}
	d := b.Sub(a)
	l := d.Len()
	if l < 1e-4 {
		h := width / 2
		c.quad = [4]mgl32.Vec2{
			{a.X() - h, a.Y() - h}, {a.X() + h, a.Y() - h},
			{a.X() + h, a.Y() + h}, {a.X() - h, a.Y() + h},
		}
		c.FillPolygon(dst, c.quad[:], col)
		return
	}
	n := mgl32.Vec2{-d.Y(), d.X()}.Mul(width / (2 * l))
	c.quad = [4]mgl32.Vec2{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}
	c.FillPolygon(dst, c.quad[:], col)
}

// clip runs Sutherland-Hodgman against the four edges of r.
func (c *Canvas) clip(pts []mgl32.Vec2, r image.Rectangle) []mgl32.Vec2 {
	x0, y0 := float32(r.Min.X), float32(r.Min.Y)
	x1, y1 := float32(r.Max.X), float32(r.Max.Y)

	in := append(c.scratch[0][:0], pts...)
	out := c.scratch[1][:0]
	edges := [4]struct {
		axis   int
		bound  float32
		keepLo bool
	}{
		{0, x0, false}, {0, x1, true}, {1, y0, false}, {1, y1, true},
	}
	for _, e := range edges {
		out = out[:0]
		if len(in) == 0 {
			break
		}
		inside := func(p mgl32.Vec2) bool {
			if e.keepLo {
				return p[e.axis] <= e.bound
			}
			return p[e.axis] >= e.bound
		}
		prev := in[len(in)-1]
		prevIn := inside(prev)
		for _, cur := range in {
			curIn := inside(cur)
			if curIn != prevIn {
				t := (e.bound - prev[e.axis]) / (cur[e.axis] - prev[e.axis])
				out = append(out, prev.Add(cur.Sub(prev).Mul(t)))
			}
			if curIn {
				out = append(out, cur)
			}
			prev, prevIn = cur, curIn
		}
		in, out = out, in
	}
	c.scratch[0], c.scratch[1] = in, out
	return in
}
