package core

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrIncompleteFrame marks a frame handed to the rasterizer without one of
// its required elements.
var ErrIncompleteFrame = errors.New("incomplete frame")

// Viewport is the drawable area in device pixels.
type Viewport struct {
	Width  int
	Height int
}

func (v Viewport) Valid() bool { return v.Width > 0 && v.Height > 0 }

func (v Viewport) Aspect() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

type Shape uint8

const (
	ShapeBox Shape = iota
	ShapeCylinder // axis along local X
)

type Material uint8

const (
	MaterialWireframe Material = iota
	MaterialGlow
)

// PartPose is one rig segment placed in world space for the current frame.
// Size holds box extents, or (width, radius, radius) for cylinders.
type PartPose struct {
	Name      string
	Shape     Shape
	Material  Material
	Size      mgl32.Vec3
	Transform Transform
	Spin      float32
}

// Model returns the matrix mapping the unit shape into world space.
func (p PartPose) Model() mgl32.Mat4 {
	return p.Transform.ObjectToWorld().Mul4(mgl32.Scale3D(p.Size.X(), p.Size.Y(), p.Size.Z()))
}

// StreakInstance matches the per-instance layout of an instanced unit box:
// translation, scale and straight-alpha color.
type StreakInstance struct {
	Pos   [3]float32
	Scale [3]float32
	Color [4]float32
}

type Fog struct {
	Color color.RGBA
	Near  float32
	Far   float32
}

// Factor returns the linear fog amount at distance d.
func (f Fog) Factor(d float32) float32 {
	if f.Far <= f.Near {
		return 0
	}
	t := (d - f.Near) / (f.Far - f.Near)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// FloorGrid is a square line grid in the XZ plane.
type FloorGrid struct {
	Size        float32
	Divisions   int
	Y           float32
	CenterColor color.RGBA
	LineColor   color.RGBA
}

// Frame is everything the rasterizer needs for one image.
type Frame struct {
	Background *color.RGBA
	Fog        *Fog
	Rig        []PartPose
	Streaks    []StreakInstance
	Grid       *FloorGrid
	Camera     Camera
}

// Validate reports the first missing element.
func (f *Frame) Validate() error {
	switch {
	case f == nil:
		return fmt.Errorf("%w: nil frame", ErrIncompleteFrame)
	case f.Background == nil:
		return fmt.Errorf("%w: background", ErrIncompleteFrame)
	case f.Fog == nil:
		return fmt.Errorf("%w: fog", ErrIncompleteFrame)
	case len(f.Rig) == 0:
		return fmt.Errorf("%w: rig", ErrIncompleteFrame)
	case f.Streaks == nil:
		return fmt.Errorf("%w: streaks", ErrIncompleteFrame)
	case f.Grid == nil:
		return fmt.Errorf("%w: grid", ErrIncompleteFrame)
	}
	return nil
}
