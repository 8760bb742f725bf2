package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

func TestHumStaysWithinGain(t *testing.T) {
	cfg := DefaultHumConfig()
	h := NewHum(cfg, beep.SampleRate(44100))

	samples := make([][2]float64, 4410)
	var energy float64
	for block := 0; block < 10; block++ {
		n, ok := h.Stream(samples)
		if !ok || n != len(samples) {
			t.Fatalf("block %d: n=%d ok=%v", block, n, ok)
		}
		for i := 0; i < n; i++ {
			v := samples[i][0]
			if math.Abs(v) > cfg.Gain+1e-9 {
				t.Fatalf("sample %d exceeds gain: %f", i, v)
			}
			if samples[i][0] != samples[i][1] {
				t.Fatalf("sample %d: channels differ", i)
			}
			energy += v * v
		}
	}
	if energy == 0 {
		t.Error("expected audible output")
	}
	if h.Err() != nil {
		t.Errorf("unexpected error: %v", h.Err())
	}
}

func TestHumFadeOutEnds(t *testing.T) {
	rate := beep.SampleRate(8000)
	cfg := DefaultHumConfig()
	h := NewHum(cfg, rate)

	buf := make([][2]float64, 256)
	h.Stream(buf)
	h.FadeOut()

	total := 0
	last := 0.0
	for i := 0; i < 100; i++ {
		n, ok := h.Stream(buf)
		total += n
		if n > 0 {
			last = math.Abs(buf[n-1][0])
		}
		if !ok {
			break
		}
	}
	if !h.Done() {
		t.Fatal("expected fade to complete")
	}
	want := rate.N(cfg.Fade)
	if total != want {
		t.Errorf("fade length: got %d samples, want %d", total, want)
	}
	if last > cfg.Gain*0.05 {
		t.Errorf("tail should be near silent, got %f", last)
	}

	n, ok := h.Stream(buf)
	if n != 0 || ok {
		t.Errorf("finished hum must stay finished, got n=%d ok=%v", n, ok)
	}
}

func TestHumLowPassMuffles(t *testing.T) {
	rate := beep.SampleRate(44100)
	bright := DefaultHumConfig()
	bright.Cutoff = 20000
	dark := DefaultHumConfig()

	rms := func(cfg HumConfig) float64 {
		h := NewHum(cfg, rate)
		buf := make([][2]float64, rate.N(200*time.Millisecond))
		h.Stream(buf)
		var sum float64
		for _, s := range buf {
			sum += s[0] * s[0]
		}
		return math.Sqrt(sum / float64(len(buf)))
	}
	if rms(dark) >= rms(bright) {
		t.Error("a lower cutoff should remove energy")
	}
}

func TestEngineSoundWithoutSpeaker(t *testing.T) {
	s := NewEngineSound(DefaultHumConfig())
	s.Start()
	if s.Playing() {
		t.Error("start before Initialize must stay silent")
	}
	if s.Toggle() {
		t.Error("toggle before Initialize must stay silent")
	}
	s.Stop()
	s.Cleanup()
}
