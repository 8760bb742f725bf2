package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/pitwall/backdrop"
	"github.com/pitwall/backdrop/render/overlay"
	"github.com/pitwall/backdrop/render/term"
)

func runTerm(o options, cfg backdrop.EngineConfig) error {
	var sink io.Writer = io.Discard
	if o.logTo != "" {
		f, err := os.OpenFile(o.logTo, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		sink = f
	}
	logger := backdrop.NewWriterLogger(sink, sink, "backdrop", o.debug)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	readout := overlay.NewReadout()
	engine := backdrop.NewEngine(cfg,
		backdrop.WithLogger(logger),
		backdrop.WithPresenter(term.NewPresenter(screen)),
		backdrop.WithOverlay(readout.Draw),
	)
	if err := engine.Mount(term.ViewportFor(screen)); err != nil {
		return err
	}
	defer engine.Unmount()

	sound := startSound(o, logger)
	defer sound.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop := engine.Loop()
	fetchStrategy(ctx, provider(o, logger), loop, readout, logger)

	go func() {
		for {
			switch ev := screen.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventResize:
				loop.Defer(func() {
					screen.Sync()
					if err := engine.Resize(term.ViewportFor(screen)); err != nil {
						logger.Errorf("Resize failed: %v", err)
					}
				})
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					cancel()
					return
				}
				if ev.Key() == tcell.KeyRune && ev.Rune() == 'm' {
					sound.Toggle()
				}
			}
		}
	}()

	if err := loop.Run(ctx, frameInterval); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
