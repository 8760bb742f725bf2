package main

import (
	"context"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pitwall/backdrop"
	"github.com/pitwall/backdrop/render/core"
	"github.com/pitwall/backdrop/render/gpu"
	"github.com/pitwall/backdrop/render/overlay"
)

func runWindow(o options, cfg backdrop.EngineConfig) error {
	logger := backdrop.NewDefaultLogger("backdrop", o.debug)

	if err := glfw.Init(); err != nil {
		return err
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(o.width, o.height, "Pitwall", nil, nil)
	if err != nil {
		return err
	}
	defer window.Destroy()

	readout := overlay.NewReadout()
	engine := backdrop.NewEngine(cfg,
		backdrop.WithLogger(logger),
		backdrop.WithPresenter(gpu.NewPresenter(window)),
		backdrop.WithOverlay(readout.Draw),
	)

	fbw, fbh := window.GetFramebufferSize()
	if err := engine.Mount(core.Viewport{Width: fbw, Height: fbh}); err != nil {
		return err
	}
	defer engine.Unmount()

	sound := startSound(o, logger)
	defer sound.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fetchStrategy(ctx, provider(o, logger), engine.Loop(), readout, logger)

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		if err := engine.Resize(core.Viewport{Width: width, Height: height}); err != nil {
			logger.Errorf("Resize failed: %v", err)
		}
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyM:
			sound.Toggle()
		}
	})

	hostLoop(window.ShouldClose, glfw.PollEvents, engine.Loop().Pump, glfw.WaitEventsTimeout)
	return nil
}

// hostLoop drives the window. Presenting paces it while frames run; once no
// frame is scheduled (paused or degraded) it sleeps in wait instead of spinning.
func hostLoop(done func() bool, poll func(), pump func() bool, wait func(timeout float64)) {
	for !done() {
		poll()
		if !pump() {
			wait(frameInterval.Seconds())
		}
	}
}
