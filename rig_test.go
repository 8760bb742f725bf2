package backdrop

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pitwall/backdrop/render/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copyPose(p RigPose) RigPose {
	parts := make([]core.PartPose, len(p.Parts))
	copy(parts, p.Parts)
	p.Parts = parts
	return p
}

func TestRig_PartTable(t *testing.T) {
	rig := NewRig(DefaultRigMotion())
	parts := rig.Parts()
	require.Len(t, parts, 16)

	wheels := 0
	for _, p := range parts {
		if p.Kind == PartWheel {
			wheels++
			assert.Equal(t, core.ShapeCylinder, p.Shape)
		}
	}
	assert.Equal(t, 8, wheels, "four tires and four rims")

	// Parts is a copy.
	parts[0].Offset = mgl32.Vec3{9, 9, 9}
	assert.NotEqual(t, parts[0].Offset, rig.Parts()[0].Offset)
}

func TestRig_PoseIsPure(t *testing.T) {
	rig := NewRig(DefaultRigMotion())
	for _, tt := range []float64{0, 0.016, 1.5, 42.125, 3600} {
		first := copyPose(rig.Pose(tt))
		rig.Pose(tt + 7) // unrelated call in between
		second := copyPose(rig.Pose(tt))
		assert.Equal(t, first, second, "t=%v", tt)
	}
}

func TestRig_BoundedOscillation(t *testing.T) {
	m := DefaultRigMotion()
	rig := NewRig(m)
	lo, hi := m.BaseY-m.BobAmp, m.BaseY+m.BobAmp
	for tt := 0.0; tt < 200; tt += 0.037 {
		y := rig.RootTransform(tt).Position.Y()
		if y < lo-1e-6 || y > hi+1e-6 {
			t.Fatalf("t=%v: y=%v outside [%v, %v]", tt, y, lo, hi)
		}
	}
}

func TestRig_WheelSpinDeterminism(t *testing.T) {
	rig := NewRig(DefaultRigMotion())
	target := time.Duration(math.Pi / 20 * float64(time.Second))

	run := func(steps int) float32 {
		src := NewManualTime(time.Unix(1000, 0))
		clock := NewSceneClock(src)
		clock.Tick()
		for i := 0; i < steps; i++ {
			src.Advance(target / time.Duration(steps))
		}
		// top up whatever integer division dropped
		src.Advance(target - (target/time.Duration(steps))*time.Duration(steps))
		elapsed, _ := clock.Tick()
		return rig.Pose(elapsed).WheelSpin
	}

	one := run(1)
	assert.InDelta(t, -math.Pi, one, 1e-5)

	// Same elapsed reached through many small ticks.
	src := NewManualTime(time.Unix(1000, 0))
	clock := NewSceneClock(src)
	clock.Tick()
	var elapsed float64
	for i := 0; i < 10; i++ {
		src.Advance(target / 10)
		elapsed, _ = clock.Tick()
	}
	src.Advance(target - (target/10)*10)
	elapsed, _ = clock.Tick()
	assert.InDelta(t, one, rig.Pose(elapsed).WheelSpin, 1e-5)
}

func TestRig_WheelsSpinIndependentOfBody(t *testing.T) {
	rig := NewRig(DefaultRigMotion())
	parts := rig.Parts()

	for _, tt := range []float64{0.3, 1.1, 2.9} {
		pose := rig.Pose(tt)
		wantSpin := mgl32.QuatRotate(-RigWheelRate*float32(tt), mgl32.Vec3{1, 0, 0})
		for i, p := range pose.Parts {
			local := pose.Root.Rotation.Inverse().Mul(p.Transform.Rotation)
			wantPos := pose.Root.Position.Add(pose.Root.Rotation.Rotate(parts[i].Offset))
			assert.True(t, p.Transform.Position.ApproxEqualThreshold(wantPos, 1e-5), "%s position", p.Name)

			if parts[i].Kind == PartWheel {
				assert.True(t, local.ApproxEqualThreshold(wantSpin, 1e-4) ||
					local.ApproxEqualThreshold(wantSpin.Scale(-1), 1e-4), "%s spin at t=%v", p.Name, tt)
				assert.Equal(t, pose.WheelSpin, p.Spin)
			} else {
				assert.True(t, local.ApproxEqualThreshold(mgl32.QuatIdent(), 1e-5) ||
					local.ApproxEqualThreshold(mgl32.QuatIdent().Scale(-1), 1e-5), "%s must carry body rotation only", p.Name)
				assert.Zero(t, p.Spin)
			}
		}
	}
}

func TestRig_RootHasConstantPitch(t *testing.T) {
	m := DefaultRigMotion()
	rig := NewRig(m)
	// At t=0 yaw is zero, so the root is the pitch alone.
	root := rig.RootTransform(0)
	assert.True(t, root.Rotation.ApproxEqualThreshold(mgl32.QuatRotate(m.Pitch, mgl32.Vec3{1, 0, 0}), 1e-6))
	assert.InDelta(t, m.BaseY, root.Position.Y(), 1e-6)
}

func TestRig_PoseAfterRelease(t *testing.T) {
	rig := NewRig(DefaultRigMotion())
	rig.Release()
	assert.NotPanics(t, func() { rig.Pose(1) })
}
