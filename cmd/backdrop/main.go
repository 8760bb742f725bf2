package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pitwall/backdrop"
	"github.com/pitwall/backdrop/audio"
	"github.com/pitwall/backdrop/render/overlay"
	"github.com/pitwall/backdrop/strategy"
)

func init() {
	runtime.LockOSThread()
}

type options struct {
	mode   string
	width  int
	height int
	frames int
	out    string
	debug  bool
	api    string
	addr   string
	sound  bool
	seed   int64
	logTo  string
}

func main() {
	var o options
	flag.StringVar(&o.mode, "mode", "window", "Host: window, term, snapshot or serve")
	flag.IntVar(&o.width, "width", 1280, "Window or snapshot width in pixels")
	flag.IntVar(&o.height, "height", 720, "Window or snapshot height in pixels")
	flag.IntVar(&o.frames, "frames", 120, "Frames to render before writing the snapshot")
	flag.StringVar(&o.out, "out", "backdrop.png", "Snapshot output path")
	flag.BoolVar(&o.debug, "debug", false, "Verbose logging; malformed frames panic")
	flag.StringVar(&o.api, "api", "", "Strategy API base URL; empty uses the demo provider")
	flag.StringVar(&o.addr, "addr", ":8000", "Listen address for serve mode")
	flag.BoolVar(&o.sound, "sound", false, "Start with the engine hum on")
	flag.Int64Var(&o.seed, "seed", 1, "Seed for particles and strategy demo data")
	flag.StringVar(&o.logTo, "log", "", "Log file for term mode (default: discard)")
	flag.Parse()

	cfg := backdrop.DefaultEngineConfig()
	cfg.Seed = o.seed
	cfg.Debug = o.debug

	var err error
	switch o.mode {
	case "window":
		err = runWindow(o, cfg)
	case "term":
		err = runTerm(o, cfg)
	case "snapshot":
		err = runSnapshot(o, cfg)
	case "serve":
		err = runServe(o)
	default:
		err = fmt.Errorf("unknown mode %q", o.mode)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "backdrop:", err)
		os.Exit(1)
	}
}

func provider(o options, logger backdrop.Logger) strategy.Provider {
	demo := strategy.NewDemo(o.seed)
	if o.api == "" {
		return demo
	}
	return strategy.WithFallback(strategy.NewRemote(o.api), demo, logger)
}

// fetchStrategy queries the provider off the render goroutine and hands the
// result to the readout through the loop.
func fetchStrategy(ctx context.Context, p strategy.Provider, loop *backdrop.RefreshLoop, readout *overlay.Readout, logger backdrop.Logger) {
	req := strategy.DefaultRequest()
	go func() {
		ctx, cancel := context.WithTimeout(ctx, strategy.DefaultTimeout)
		defer cancel()
		res, err := p.Duel(ctx, req)
		if err != nil {
			logger.Warnf("Strategy unavailable: %v", err)
			return
		}
		loop.Defer(func() { readout.Set(req, res) })
	}()
}

// startSound brings up the hum if asked to. Audio failures never stop the host.
func startSound(o options, logger backdrop.Logger) *audio.EngineSound {
	s := audio.NewEngineSound(audio.DefaultHumConfig())
	if err := s.Initialize(); err != nil {
		logger.Warnf("Audio initialization failed: %v", err)
		return s
	}
	if o.sound {
		s.Start()
	}
	return s
}

const frameInterval = 16 * time.Millisecond
