package backdrop

import (
	"image/color"

	"github.com/pitwall/backdrop/render/core"
)

// Composer assembles the fixed scene dressing, the rig pose and the streak
// snapshot into one frame. It holds no per-frame logic.
type Composer struct {
	background color.RGBA
	fog        core.Fog
	grid       core.FloorGrid
	camera     core.Camera

	frame core.Frame
}

func NewComposer() *Composer {
	bg := core.Hex(BackgroundHex)
	return &Composer{
		background: bg,
		fog:        core.Fog{Color: bg, Near: FogNear, Far: FogFar},
		grid: core.FloorGrid{
			Size:        GridSize,
			Divisions:   GridDivisions,
			Y:           GridY,
			CenterColor: core.Hex(GridCenterHex),
			LineColor:   core.Hex(GridLineHex),
		},
		camera: core.Camera{
			Position: CameraPosition,
			Target:   CameraTarget,
			FovY:     CameraFov,
			Near:     CameraNear,
			Far:      CameraFar,
		},
	}
}

// Background is the clear color, also used for the degraded flat fill.
func (c *Composer) Background() color.RGBA { return c.background }

func (c *Composer) Camera() core.Camera { return c.camera }

// Compose fills the composer's frame and returns it. The frame is reused, so
// it is only valid until the next call.
func (c *Composer) Compose(pose RigPose, streaks []core.StreakInstance) *core.Frame {
	c.frame = core.Frame{
		Background: &c.background,
		Fog:        &c.fog,
		Rig:        pose.Parts,
		Streaks:    streaks,
		Grid:       &c.grid,
		Camera:     c.camera,
	}
	return &c.frame
}
