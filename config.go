package backdrop

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pitwall/backdrop/render/post"
)

// Scene clock.
const (
	// MaxDelta caps the step used for integration after a stall (backgrounded
	// tab, debugger pause). Raw elapsed time is never capped.
	MaxDelta = 0.1
)

// Particle stream.
const (
	StreamCount     = 100
	StreamFar       = -100.0
	StreamNear      = 20.0
	StreamSpawnNear = 0.0 // initial depth is drawn from [StreamFar, StreamSpawnNear)
	StreamSpreadX   = 40.0
	StreamSpreadY   = 15.0
	StreamSpeedMin  = 50.0
	StreamSpeedMax  = 100.0
	StreamLenMin    = 10.0
	StreamLenMax    = 40.0
	StreamThin      = 0.1
	StreamOpacity   = 0.8
)

// Rig motion.
const (
	RigBaseY     = -0.5
	RigBobAmp    = 0.05
	RigBobRate   = 2.0 // rad/s
	RigPitch     = 0.05
	RigYawAmp    = 0.1
	RigYawRate   = 0.5  // rad/s
	RigWheelRate = 20.0 // rad/s
)

// Scene dressing.
const (
	BackgroundHex = "#000510"
	FogNear       = 20.0
	FogFar        = 60.0
	GridSize      = 100.0
	GridDivisions = 40
	GridY         = -0.8
	GridCenterHex = "#0044ff"
	GridLineHex   = "#001133"
	CameraFov     = 60.0
	CameraNear    = 0.1
	CameraFar     = 1000.0
)

var (
	CameraPosition = mgl32.Vec3{0, 1, -5}
	CameraTarget   = mgl32.Vec3{0, 0, 0}
)

// RecyclePolicy decides what a particle keeps when it wraps to the far edge.
type RecyclePolicy int

const (
	// RecycleKeep only resets depth; lane, speed, length and color persist.
	RecycleKeep RecyclePolicy = iota
	// RecycleRedraw also redraws lane, speed, length and color.
	RecycleRedraw
)

// StreamConfig sizes the particle pool and its spawn distributions.
type StreamConfig struct {
	Count     int
	Far       float32
	Near      float32
	SpawnNear float32
	SpreadX   float32
	SpreadY   float32
	SpeedMin  float32
	SpeedMax  float32
	LenMin    float32
	LenMax    float32
	Thin      float32
	Recycle   RecyclePolicy
}

func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Count:     StreamCount,
		Far:       StreamFar,
		Near:      StreamNear,
		SpawnNear: StreamSpawnNear,
		SpreadX:   StreamSpreadX,
		SpreadY:   StreamSpreadY,
		SpeedMin:  StreamSpeedMin,
		SpeedMax:  StreamSpeedMax,
		LenMin:    StreamLenMin,
		LenMax:    StreamLenMax,
		Thin:      StreamThin,
		Recycle:   RecycleKeep,
	}
}

// RigMotion holds the animator's fixed constants.
type RigMotion struct {
	BaseY     float32
	BobAmp    float32
	BobRate   float32
	Pitch     float32
	YawAmp    float32
	YawRate   float32
	WheelRate float32
}

func DefaultRigMotion() RigMotion {
	return RigMotion{
		BaseY:     RigBaseY,
		BobAmp:    RigBobAmp,
		BobRate:   RigBobRate,
		Pitch:     RigPitch,
		YawAmp:    RigYawAmp,
		YawRate:   RigYawRate,
		WheelRate: RigWheelRate,
	}
}

// EngineConfig bundles everything the engine consumes. Hosts use
// DefaultEngineConfig; tests override single fields.
type EngineConfig struct {
	Stream StreamConfig
	Motion RigMotion
	Post   post.Config
	Seed   int64
	Debug  bool
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Stream: DefaultStreamConfig(),
		Motion: DefaultRigMotion(),
		Post:   post.DefaultConfig(),
		Seed:   1,
	}
}
