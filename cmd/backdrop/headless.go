package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pitwall/backdrop"
	"github.com/pitwall/backdrop/render/core"
	"github.com/pitwall/backdrop/render/overlay"
	"github.com/pitwall/backdrop/render/snapshot"
	"github.com/pitwall/backdrop/strategy"
)

// runSnapshot renders a fixed number of frames on a manual clock and writes the
// last one as a PNG. Output is identical for identical flags.
func runSnapshot(o options, cfg backdrop.EngineConfig) error {
	logger := backdrop.NewDefaultLogger("backdrop", o.debug)
	clock := backdrop.NewManualTime(time.Unix(0, 0))
	presenter := snapshot.NewPresenter()
	readout := overlay.NewReadout()

	engine := backdrop.NewEngine(cfg,
		backdrop.WithLogger(logger),
		backdrop.WithTimeSource(clock),
		backdrop.WithPresenter(presenter),
		backdrop.WithOverlay(readout.Draw),
	)
	if err := engine.Mount(core.Viewport{Width: o.width, Height: o.height}); err != nil {
		return err
	}
	defer engine.Unmount()
	if engine.State() == backdrop.StateDegraded {
		return fmt.Errorf("snapshot: %w", engine.Err())
	}

	req := strategy.DefaultRequest()
	ctx, cancel := context.WithTimeout(context.Background(), strategy.DefaultTimeout)
	res, err := provider(o, logger).Duel(ctx, req)
	cancel()
	if err != nil {
		logger.Warnf("Strategy unavailable: %v", err)
	} else {
		readout.Set(req, res)
	}

	for i := 0; i < o.frames; i++ {
		clock.Advance(frameInterval)
		engine.Loop().Pump()
	}
	if err := presenter.WriteFile(o.out); err != nil {
		return err
	}
	logger.Infof("Wrote %s after %d frames", o.out, presenter.Presented())
	return nil
}

// runServe exposes the Monte Carlo model over HTTP for other hosts' -api flag.
func runServe(o options) error {
	logger := backdrop.NewDefaultLogger("strategy", o.debug)
	srv := &http.Server{
		Addr:              o.addr,
		Handler:           strategy.Handler(strategy.NewMonteCarlo(o.seed)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	logger.Infof("Serving strategy model on %s", o.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
