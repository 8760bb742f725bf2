package backdrop

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pitwall/backdrop/render/core"
)

var ErrInvalidStream = errors.New("invalid particle stream config")

// StreakColor is the closed set of streak hues.
type StreakColor uint8

const (
	StreakCyan StreakColor = iota
	StreakRed
)

var streakPalette = [...][4]float32{
	StreakCyan: rgbaOf(core.Hex("#00ffff"), StreamOpacity),
	StreakRed:  rgbaOf(core.Hex("#ff0033"), StreamOpacity),
}

func rgbaOf(c color.RGBA, alpha float32) [4]float32 {
	return [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, alpha}
}

func (c StreakColor) RGBA() [4]float32 { return streakPalette[c] }

func (c StreakColor) String() string {
	if c == StreakRed {
		return "red"
	}
	return "cyan"
}

// Particle is a copy of one pool slot.
type Particle struct {
	Pos    mgl32.Vec3
	Speed  float32
	Length float32
	Color  StreakColor
}

// ParticleStream is a fixed pool of streaks travelling towards +Z. Slots are
// allocated once and only ever repositioned.
type ParticleStream struct {
	cfg StreamConfig
	rng *rand.Rand

	// SoA pool
	pos    []mgl32.Vec3
	speed  []float32
	length []float32
	color  []StreakColor

	recycled uint64
}

func NewParticleStream(cfg StreamConfig, rng *rand.Rand) (*ParticleStream, error) {
	switch {
	case cfg.Count <= 0:
		return nil, fmt.Errorf("%w: count %d", ErrInvalidStream, cfg.Count)
	case cfg.Far >= cfg.Near:
		return nil, fmt.Errorf("%w: far %v must be below near %v", ErrInvalidStream, cfg.Far, cfg.Near)
	case cfg.SpawnNear <= cfg.Far || cfg.SpawnNear > cfg.Near:
		return nil, fmt.Errorf("%w: spawn depth %v outside (%v, %v]", ErrInvalidStream, cfg.SpawnNear, cfg.Far, cfg.Near)
	case cfg.SpeedMin < 0 || cfg.SpeedMax < cfg.SpeedMin:
		return nil, fmt.Errorf("%w: speed range [%v, %v]", ErrInvalidStream, cfg.SpeedMin, cfg.SpeedMax)
	case cfg.LenMin < 0 || cfg.LenMax < cfg.LenMin:
		return nil, fmt.Errorf("%w: length range [%v, %v]", ErrInvalidStream, cfg.LenMin, cfg.LenMax)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	s := &ParticleStream{
		cfg:    cfg,
		rng:    rng,
		pos:    make([]mgl32.Vec3, cfg.Count),
		speed:  make([]float32, cfg.Count),
		length: make([]float32, cfg.Count),
		color:  make([]StreakColor, cfg.Count),
	}
	for i := range s.pos {
		s.spawn(i)
		s.pos[i][2] = lerp(cfg.Far, cfg.SpawnNear, s.rng.Float32())
	}
	return s, nil
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// spawn draws lane, speed, length and color for slot i. Depth is left to the
// caller.
func (s *ParticleStream) spawn(i int) {
	s.pos[i][0] = (s.rng.Float32() - 0.5) * s.cfg.SpreadX
	s.pos[i][1] = (s.rng.Float32() - 0.5) * s.cfg.SpreadY
	s.speed[i] = lerp(s.cfg.SpeedMin, s.cfg.SpeedMax, s.rng.Float32())
	s.length[i] = lerp(s.cfg.LenMin, s.cfg.LenMax, s.rng.Float32())
	if s.rng.Float32() > 0.5 {
		s.color[i] = StreakCyan
	} else {
		s.color[i] = StreakRed
	}
}

func (s *ParticleStream) Len() int { return len(s.pos) }

func (s *ParticleStream) At(i int) Particle {
	return Particle{Pos: s.pos[i], Speed: s.speed[i], Length: s.length[i], Color: s.color[i]}
}

// Recycled counts wraps since construction.
func (s *ParticleStream) Recycled() uint64 { return s.recycled }

// Advance moves every particle by speed*delta and resets any that reached the
// near limit to exactly the far limit. Negative or non-finite deltas are
// treated as zero.
func (s *ParticleStream) Advance(delta float64) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) || delta <= 0 {
		return
	}
	dt := float32(delta)
	far, near := s.cfg.Far, s.cfg.Near
	for i := range s.pos {
		z := s.pos[i][2] + s.speed[i]*dt
		if z >= near {
			z = far
			s.recycled++
			if s.cfg.Recycle == RecycleRedraw {
				s.spawn(i)
			}
		}
		s.pos[i][2] = z
	}
}

// Snapshot packs one instance per particle into dst, reusing its storage.
func (s *ParticleStream) Snapshot(dst []core.StreakInstance) []core.StreakInstance {
	if cap(dst) < len(s.pos) {
		dst = make([]core.StreakInstance, 0, len(s.pos))
	}
	dst = dst[:0]
	thin := s.cfg.Thin
	for i, p := range s.pos {
		dst = append(dst, core.StreakInstance{
			Pos:   [3]float32{p.X(), p.Y(), p.Z()},
			Scale: [3]float32{thin, thin, s.length[i]},
			Color: s.color[i].RGBA(),
		})
	}
	return dst
}

// Release drops the pool. The stream must not be advanced afterwards.
func (s *ParticleStream) Release() {
	s.pos, s.speed, s.length, s.color = nil, nil, nil, nil
}
