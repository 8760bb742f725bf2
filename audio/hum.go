// Package audio synthesizes the ambient engine hum played under the backdrop.
package audio

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
)

// HumConfig shapes the idle rumble: a sawtooth whose pitch wobbles with a
// sine LFO, muffled by a low-pass and kept quiet.
type HumConfig struct {
	Base     float64 // Hz
	LFORate  float64 // Hz
	LFODepth float64 // Hz of pitch swing
	Cutoff   float64 // Hz
	Gain     float64
	Fade     time.Duration
}

func DefaultHumConfig() HumConfig {
	return HumConfig{
		Base:     60,
		LFORate:  8,
		LFODepth: 5,
		Cutoff:   400,
		Gain:     0.15,
		Fade:     500 * time.Millisecond,
	}
}

// fadeFloor is where the exponential fade-out stops and the stream ends.
const fadeFloor = 0.001

// Hum is an endless beep.Streamer until FadeOut is called; it then ramps the
// gain down exponentially and ends.
type Hum struct {
	cfg  HumConfig
	rate beep.SampleRate

	phase    float64
	lfoPhase float64
	lp       float64
	alpha    float64

	fadeReq   atomic.Bool
	fadeTotal int
	fadeLeft  int
	fading    bool
	done      atomic.Bool
}

func NewHum(cfg HumConfig, rate beep.SampleRate) *Hum {
	return &Hum{
		cfg:       cfg,
		rate:      rate,
		alpha:     1 - math.Exp(-2*math.Pi*cfg.Cutoff/float64(rate)),
		fadeTotal: max(1, rate.N(cfg.Fade)),
	}
}

// FadeOut asks the stream to ramp down and finish. Safe from any goroutine.
func (h *Hum) FadeOut() { h.fadeReq.Store(true) }

// Done reports whether the fade has completed.
func (h *Hum) Done() bool { return h.done.Load() }

func (h *Hum) gain() float64 {
	if !h.fading {
		return h.cfg.Gain
	}
	t := 1 - float64(h.fadeLeft)/float64(h.fadeTotal)
	return h.cfg.Gain * math.Pow(fadeFloor/h.cfg.Gain, t)
}

func (h *Hum) Stream(samples [][2]float64) (n int, ok bool) {
	if h.done.Load() {
		return 0, false
	}
	if !h.fading && h.fadeReq.Load() {
		h.fading = true
		h.fadeLeft = h.fadeTotal
	}

	sr := float64(h.rate)
	for i := range samples {
		if h.fading && h.fadeLeft <= 0 {
			h.done.Store(true)
			return i, i > 0
		}

		freq := h.cfg.Base + h.cfg.LFODepth*math.Sin(2*math.Pi*h.lfoPhase)
		saw := 2.0 * (h.phase - 0.5)
		h.lp += h.alpha * (saw - h.lp)
		val := h.lp * h.gain()

		samples[i][0] = val
		samples[i][1] = val

		h.phase += freq / sr
		h.phase -= math.Floor(h.phase)
		h.lfoPhase += h.cfg.LFORate / sr
		h.lfoPhase -= math.Floor(h.lfoPhase)
		if h.fading {
			h.fadeLeft--
		}
	}
	return len(samples), true
}

func (h *Hum) Err() error { return nil }
