// Package strategy produces the race-duel payload shown next to the backdrop:
// win probabilities for two drivers and the average gap per lap.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidRequest = errors.New("strategy: invalid request")

// Compound is a tire compound. Values match the remote service's wire names.
type Compound string

const (
	Soft   Compound = "SOFT"
	Medium Compound = "MED"
	Hard   Compound = "HARD"
)

// ParseCompound accepts the wire names and their long forms, case-insensitive.
func ParseCompound(s string) (Compound, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SOFT", "S":
		return Soft, nil
	case "MED", "MEDIUM", "M":
		return Medium, nil
	case "HARD", "H":
		return Hard, nil
	}
	return "", fmt.Errorf("%w: unknown compound %q", ErrInvalidRequest, s)
}

// Request describes one duel. Driver1 is the reference car; a positive gap
// means Driver1 is ahead.
type Request struct {
	Driver1 string
	Driver2 string
	Pit1    int
	Pit2    int
	Track   string
	Tire1   Compound
	Tire2   Compound
}

// DefaultRequest mirrors the dashboard's initial selection.
func DefaultRequest() Request {
	return Request{
		Driver1: "VER",
		Driver2: "HAM",
		Pit1:    20,
		Pit2:    20,
		Track:   "Bahrain",
		Tire1:   Soft,
		Tire2:   Medium,
	}
}

func (r Request) Validate() error {
	switch {
	case r.Driver1 == "" || r.Driver2 == "":
		return fmt.Errorf("%w: both drivers are required", ErrInvalidRequest)
	case r.Pit1 < 0 || r.Pit2 < 0:
		return fmt.Errorf("%w: negative pit lap", ErrInvalidRequest)
	case r.Track == "":
		return fmt.Errorf("%w: track is required", ErrInvalidRequest)
	}
	return nil
}

type LapGap struct {
	Lap int     `json:"lap"`
	Gap float64 `json:"gap"`
}

// Result is the payload the readout renders. Probabilities are percentages.
type Result struct {
	D1WinProb  float64  `json:"d1_win_prob"`
	D2WinProb  float64  `json:"d2_win_prob"`
	LapHistory []LapGap `json:"lap_history"`
}

// Provider computes a duel. Implementations must honor ctx cancellation.
type Provider interface {
	Duel(ctx context.Context, req Request) (Result, error)
}

// Logger is the slice of the engine logger the fallback chain needs.
type Logger interface {
	Warnf(format string, args ...any)
}

type fallbackProvider struct {
	primary  Provider
	fallback Provider
	logger   Logger
}

// WithFallback asks primary first and answers from fallback when it fails.
func WithFallback(primary, fallback Provider, logger Logger) Provider {
	return &fallbackProvider{primary: primary, fallback: fallback, logger: logger}
}

func (f *fallbackProvider) Duel(ctx context.Context, req Request) (Result, error) {
	res, err := f.primary.Duel(ctx, req)
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	if f.logger != nil {
		f.logger.Warnf("Strategy service unavailable, using demo data: %v", err)
	}
	return f.fallback.Duel(ctx, req)
}
