package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)
)

// EngineSound owns the speaker and the hum. It starts muted; a failed speaker
// init leaves it silent rather than failing the host.
type EngineSound struct {
	mu          sync.Mutex
	cfg         HumConfig
	mixer       *beep.Mixer
	hum         *Hum
	initialized bool
}

func NewEngineSound(cfg HumConfig) *EngineSound {
	return &EngineSound{
		cfg:   cfg,
		mixer: &beep.Mixer{},
	}
}

// Initialize sets up the audio system
func (s *EngineSound) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Playing reports whether a hum is running and not fading out.
func (s *EngineSound) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hum != nil && !s.hum.fadeReq.Load()
}

func (s *EngineSound) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	if s.hum != nil && !s.hum.fadeReq.Load() {
		return
	}
	s.hum = NewHum(s.cfg, sampleRate)
	speaker.Lock()
	s.mixer.Add(s.hum)
	speaker.Unlock()
}

// Stop fades the hum out; the mixer drops it once the fade ends.
func (s *EngineSound) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hum != nil {
		s.hum.FadeOut()
	}
}

// Toggle flips between playing and muted and reports the new state.
func (s *EngineSound) Toggle() bool {
	if s.Playing() {
		s.Stop()
		return false
	}
	s.Start()
	return s.Playing()
}

// Cleanup stops all sounds and closes the audio system
func (s *EngineSound) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	s.hum = nil
	s.initialized = false
}
