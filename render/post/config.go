package post

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("post: invalid config")

type BloomConfig struct {
	Enabled   bool
	Threshold float32 // luminance in [0,1]
	Smoothing float32 // width of the threshold ramp
	Intensity float32
	Radius    float32 // mip blend factor in [0,1]
	Levels    int
}

type ScanlineConfig struct {
	Density float32 // angular frequency per pixel row
	Opacity float32
}

type VignetteConfig struct {
	Offset   float32
	Darkness float32
}

// Config is fixed for a session; the pipeline keeps its own copy.
type Config struct {
	Bloom    BloomConfig
	Scanline ScanlineConfig
	Vignette VignetteConfig
}

func DefaultConfig() Config {
	return Config{
		Bloom: BloomConfig{
			Enabled:   true,
			Threshold: 0.1,
			Smoothing: 0.03,
			Intensity: 2.5,
			Radius:    0.5,
			Levels:    5,
		},
		Scanline: ScanlineConfig{Density: 1.5, Opacity: 0.15},
		Vignette: VignetteConfig{Offset: 0.1, Darkness: 1.1},
	}
}

func (c Config) validate() error {
	b := c.Bloom
	switch {
	case b.Threshold < 0 || b.Threshold > 1:
		return fmt.Errorf("%w: bloom threshold %v", ErrInvalidConfig, b.Threshold)
	case b.Smoothing < 0:
		return fmt.Errorf("%w: bloom smoothing %v", ErrInvalidConfig, b.Smoothing)
	case b.Intensity < 0:
		return fmt.Errorf("%w: bloom intensity %v", ErrInvalidConfig, b.Intensity)
	case b.Radius < 0 || b.Radius > 1:
		return fmt.Errorf("%w: bloom radius %v", ErrInvalidConfig, b.Radius)
	case b.Enabled && b.Levels < 1:
		return fmt.Errorf("%w: bloom levels %d", ErrInvalidConfig, b.Levels)
	case c.Scanline.Density <= 0:
		return fmt.Errorf("%w: scanline density %v", ErrInvalidConfig, c.Scanline.Density)
	case c.Scanline.Opacity < 0 || c.Scanline.Opacity > 1:
		return fmt.Errorf("%w: scanline opacity %v", ErrInvalidConfig, c.Scanline.Opacity)
	case c.Vignette.Offset < 0 || c.Vignette.Darkness < 0:
		return fmt.Errorf("%w: vignette %+v", ErrInvalidConfig, c.Vignette)
	}
	return nil
}

func smoothstep(e0, e1, x float32) float32 {
	t := (x - e0) / (e1 - e0)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

func clamp8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
