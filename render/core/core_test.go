package core

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closeEnough(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestObjectToWorldScalesRotatesThenTranslates(t *testing.T) {
	tr := NewTransform()
	tr.Position = mgl32.Vec3{10, 20, 30}
	tr.Scale = mgl32.Vec3{2, 3, 4}
	tr.Rotation = mgl32.QuatRotate(0.7, mgl32.Vec3{0, 1, 0})

	local := mgl32.Vec3{1, -1, 0.5}
	got := tr.ObjectToWorld().Mul4x1(local.Vec4(1)).Vec3()
	want := tr.Position.Add(tr.Rotation.Rotate(mgl32.Vec3{2, -3, 2}))

	for i := 0; i < 3; i++ {
		if !closeEnough(got[i], want[i], 0.001) {
			t.Errorf("world[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestComposeMatchesMatrixProduct(t *testing.T) {
	parent := At(mgl32.Vec3{0, -0.5, 0})
	parent.Rotation = mgl32.QuatRotate(0.05, mgl32.Vec3{1, 0, 0}).Mul(mgl32.QuatRotate(0.08, mgl32.Vec3{0, 1, 0}))
	local := At(mgl32.Vec3{0.9, 0.15, 1.4})
	local.Rotation = mgl32.QuatRotate(-3, mgl32.Vec3{1, 0, 0})

	world := Compose(parent, local)
	want := parent.ObjectToWorld().Mul4(local.ObjectToWorld())
	got := world.ObjectToWorld()

	for i := 0; i < 16; i++ {
		assert.InDelta(t, want[i], got[i], 1e-5, "element %d", i)
	}
}

func TestComposeKeepsReflection(t *testing.T) {
	parent := NewTransform()
	parent.Scale = mgl32.Vec3{-1, 1, 1}
	world := Compose(parent, At(mgl32.Vec3{2, 0, 0}))

	assert.Equal(t, mgl32.Vec3{-2, 0, 0}, world.Position)
	assert.Equal(t, float32(-1), world.Scale.X())
}

func TestFogFactor(t *testing.T) {
	f := Fog{Near: 20, Far: 60}
	assert.Equal(t, float32(0), f.Factor(5))
	assert.InDelta(t, 0.5, f.Factor(40), 1e-6)
	assert.Equal(t, float32(1), f.Factor(100))
	assert.Equal(t, float32(0), Fog{Near: 10, Far: 10}.Factor(50))
}

func TestHex(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0, G: 5, B: 16, A: 255}, Hex("#000510"))
	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 51, A: 255}, Hex("#ff0033"))
	assert.Panics(t, func() { Hex("cyan") })
}

func TestBlendFog(t *testing.T) {
	c := Hex("#00ffff")
	fog := Hex("#000510")
	assert.Equal(t, c, BlendFog(c, fog, 0))
	assert.Equal(t, fog, BlendFog(c, fog, 1))

	mid := BlendFog(c, fog, 0.5)
	assert.InDelta(t, 130, int(mid.G), 2)
}

func TestFrameValidate(t *testing.T) {
	bg := Hex("#000510")
	full := &Frame{
		Background: &bg,
		Fog:        &Fog{Near: 20, Far: 60},
		Rig:        []PartPose{{Name: "body"}},
		Streaks:    []StreakInstance{},
		Grid:       &FloorGrid{Size: 100, Divisions: 40},
	}
	require.NoError(t, full.Validate())

	cases := map[string]func(f *Frame){
		"background": func(f *Frame) { f.Background = nil },
		"fog":        func(f *Frame) { f.Fog = nil },
		"rig":        func(f *Frame) { f.Rig = nil },
		"streaks":    func(f *Frame) { f.Streaks = nil },
		"grid":       func(f *Frame) { f.Grid = nil },
	}
	for name, strip := range cases {
		f := *full
		strip(&f)
		err := f.Validate()
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrIncompleteFrame))
		assert.Contains(t, err.Error(), name)
	}
}

func TestCameraLooksAtTarget(t *testing.T) {
	cam := Camera{Position: mgl32.Vec3{0, 1, -5}, Target: mgl32.Vec3{0, 0, 0}, FovY: 60, Near: 0.1, Far: 1000}
	clip := cam.ViewProj(16.0 / 9.0).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	require.Greater(t, clip.W(), float32(0))

	ndc := clip.Vec3().Mul(1 / clip.W())
	assert.InDelta(t, 0, ndc.X(), 1e-5)
	assert.InDelta(t, 0, ndc.Y(), 1e-5)
}
