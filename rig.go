package backdrop

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pitwall/backdrop/render/core"
)

type PartKind uint8

const (
	PartBody PartKind = iota
	PartSidepod
	PartRearWing
	PartFrontWing
	PartWheel
)

// RigPart is one fixed-shape segment of the car. Offset is relative to the
// rig root and never changes after construction.
type RigPart struct {
	Name     string
	Kind     PartKind
	Shape    core.Shape
	Material core.Material
	Offset   mgl32.Vec3
	Size     mgl32.Vec3
}

// RigPose is the full set of part placements for one elapsed time.
type RigPose struct {
	Root      core.Transform
	WheelSpin float32
	Parts     []core.PartPose
}

const (
	tireRadius = 0.35
	tireWidth  = 0.4
	rimRadius  = 0.25
	rimWidth   = 0.41
)

var wheelOffsets = [4]mgl32.Vec3{
	{-0.9, 0.15, -1.2}, {0.9, 0.15, -1.2},
	{-0.9, 0.15, 1.4}, {0.9, 0.15, 1.4},
}

var wheelNames = [4]string{"wheel_fl", "wheel_fr", "wheel_rl", "wheel_rr"}

func box(name string, kind PartKind, m core.Material, offset, size mgl32.Vec3) RigPart {
	return RigPart{Name: name, Kind: kind, Shape: core.ShapeBox, Material: m, Offset: offset, Size: size}
}

func carParts() []RigPart {
	wire, glow := core.MaterialWireframe, core.MaterialGlow
	parts := []RigPart{
		box("body", PartBody, wire, mgl32.Vec3{0, 0.2, 0}, mgl32.Vec3{0.8, 0.25, 2.4}),
		box("body_glow", PartBody, glow, mgl32.Vec3{0, 0.2, 0}, mgl32.Vec3{0.79, 0.24, 2.39}),
		box("sidepod_r", PartSidepod, wire, mgl32.Vec3{0.5, 0.2, 0.2}, mgl32.Vec3{0.3, 0.25, 1.2}),
		box("sidepod_l", PartSidepod, wire, mgl32.Vec3{-0.5, 0.2, 0.2}, mgl32.Vec3{0.3, 0.25, 1.2}),
		// rear wing assembly hangs off (0, 0.6, 1.8)
		box("rear_wing", PartRearWing, wire, mgl32.Vec3{0, 0.6, 1.8}, mgl32.Vec3{1.8, 0.05, 0.4}),
		box("endplate_r", PartRearWing, wire, mgl32.Vec3{0.8, 0.3, 1.8}, mgl32.Vec3{0.05, 0.6, 0.4}),
		box("endplate_l", PartRearWing, wire, mgl32.Vec3{-0.8, 0.3, 1.8}, mgl32.Vec3{0.05, 0.6, 0.4}),
		box("front_wing", PartFrontWing, wire, mgl32.Vec3{0, -0.05, -2.1}, mgl32.Vec3{2.0, 0.05, 0.5}),
	}
	for i, off := range wheelOffsets {
		parts = append(parts,
			RigPart{
				Name: wheelNames[i] + "_tire", Kind: PartWheel, Shape: core.ShapeCylinder, Material: wire,
				Offset: off, Size: mgl32.Vec3{tireWidth, tireRadius, tireRadius},
			},
			RigPart{
				Name: wheelNames[i] + "_rim", Kind: PartWheel, Shape: core.ShapeCylinder, Material: glow,
				Offset: off, Size: mgl32.Vec3{rimWidth, rimRadius, rimRadius},
			},
		)
	}
	return parts
}

// Rig animates the car. Pose output depends on elapsed time only; the part
// buffer is reused between calls.
type Rig struct {
	motion RigMotion
	parts  []RigPart
	poses  []core.PartPose
}

func NewRig(motion RigMotion) *Rig {
	parts := carParts()
	r := &Rig{motion: motion, parts: parts}
	r.allocPoses()
	return r
}

func (r *Rig) allocPoses() {
	r.poses = make([]core.PartPose, len(r.parts))
	for i, p := range r.parts {
		r.poses[i] = core.PartPose{Name: p.Name, Shape: p.Shape, Material: p.Material, Size: p.Size}
	}
}

// Parts returns a copy of the static part table.
func (r *Rig) Parts() []RigPart {
	out := make([]RigPart, len(r.parts))
	copy(out, r.parts)
	return out
}

// RootTransform is the floating body pose: bob on Y, constant pitch, slow yaw.
func (r *Rig) RootTransform(elapsed float64) core.Transform {
	m := r.motion
	bob := float64(m.BobAmp) * math.Sin(float64(m.BobRate)*elapsed)
	yaw := float64(m.YawAmp) * math.Sin(float64(m.YawRate)*elapsed)

	root := core.NewTransform()
	root.Position = mgl32.Vec3{0, m.BaseY + float32(bob), 0}
	// XYZ Euler order: pitch first, then yaw.
	root.Rotation = mgl32.QuatRotate(m.Pitch, mgl32.Vec3{1, 0, 0}).
		Mul(mgl32.QuatRotate(float32(yaw), mgl32.Vec3{0, 1, 0}))
	return root
}

// WheelSpin is the wheel rotation about its axle. It is computed from elapsed
// time, never accumulated per frame.
func (r *Rig) WheelSpin(elapsed float64) float32 {
	return float32(-float64(r.motion.WheelRate) * elapsed)
}

// Pose places every part for elapsed. The returned Parts slice is owned by the
// rig and valid until the next call.
func (r *Rig) Pose(elapsed float64) RigPose {
	root := r.RootTransform(elapsed)
	spin := r.WheelSpin(elapsed)
	wheel := mgl32.QuatRotate(spin, mgl32.Vec3{1, 0, 0})
	if r.poses == nil {
		r.allocPoses()
	}

	for i, p := range r.parts {
		local := core.At(p.Offset)
		var s float32
		if p.Kind == PartWheel {
			local.Rotation = wheel
			s = spin
		}
		r.poses[i].Transform = core.Compose(root, local)
		r.poses[i].Spin = s
	}
	return RigPose{Root: root, WheelSpin: spin, Parts: r.poses}
}

// Release drops the pose buffer at unmount.
func (r *Rig) Release() {
	r.poses = nil
}
