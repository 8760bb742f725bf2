package strategy

import (
	"context"
	"math"
	"math/rand"
)

// DriverStats are per-driver pace (seconds per lap behind the reference) and
// consistency (lap time standard deviation).
type DriverStats struct {
	Pace        float64
	Consistency float64
}

var driverTable = map[string]DriverStats{
	"VER": {Pace: 0.00, Consistency: 0.10},
	"HAM": {Pace: 0.05, Consistency: 0.12},
	"LEC": {Pace: 0.02, Consistency: 0.15},
	"NOR": {Pace: 0.03, Consistency: 0.12},
	"ALO": {Pace: 0.10, Consistency: 0.08},
	"SAI": {Pace: 0.08, Consistency: 0.14},
	"RUS": {Pace: 0.06, Consistency: 0.13},
	"PER": {Pace: 0.15, Consistency: 0.18},
}

var unknownDriver = DriverStats{Pace: 0.20, Consistency: 0.20}

// Stats looks a driver up; unknown codes get a slow, inconsistent default.
func Stats(code string) DriverStats {
	if s, ok := driverTable[code]; ok {
		return s
	}
	return unknownDriver
}

// tire returns the base lap penalty and per-lap degradation of a compound.
// Unknown compounds behave like mediums.
func tire(c Compound) (base, deg float64) {
	switch c {
	case Soft:
		return 0.0, 0.15
	case Hard:
		return 0.6, 0.04
	default:
		return 0.3, 0.08
	}
}

const (
	DefaultSimulations = 600
	DefaultLaps        = 57
	DefaultPitLoss     = 22.0
)

// MonteCarlo runs many noisy races and averages them. Both cars switch to
// mediums after their stop.
type MonteCarlo struct {
	Simulations int
	Laps        int
	PitLoss     float64

	rng *rand.Rand
}

func NewMonteCarlo(seed int64) *MonteCarlo {
	return &MonteCarlo{
		Simulations: DefaultSimulations,
		Laps:        DefaultLaps,
		PitLoss:     DefaultPitLoss,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (m *MonteCarlo) Duel(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	d1, d2 := Stats(req.Driver1), Stats(req.Driver2)
	sigma := d1.Consistency + d2.Consistency
	pace := d2.Pace - d1.Pace

	trace := make([]float64, m.Laps)
	wins := 0
	for sim := 0; sim < m.Simulations; sim++ {
		if sim%64 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}

		base1, deg1 := tire(req.Tire1)
		base2, deg2 := tire(req.Tire2)
		var wear1, wear2, gap float64
		for lap := 1; lap <= m.Laps; lap++ {
			gap += pace + (base2 + wear2) - (base1 + wear1) + m.rng.NormFloat64()*sigma

			if lap == req.Pit1 {
				gap -= m.PitLoss
				wear1 = 0
				base1, deg1 = tire(Medium)
			}
			if lap == req.Pit2 {
				gap += m.PitLoss
				wear2 = 0
				base2, deg2 = tire(Medium)
			}
			wear1 += deg1
			wear2 += deg2
			trace[lap-1] += gap
		}
		if gap > 0 {
			wins++
		}
	}

	res := Result{LapHistory: make([]LapGap, m.Laps)}
	if m.Simulations > 0 {
		n := float64(m.Simulations)
		res.D1WinProb = float64(wins) / n * 100
		res.D2WinProb = float64(m.Simulations-wins) / n * 100
		for i, g := range trace {
			res.LapHistory[i] = LapGap{Lap: i + 1, Gap: round3(g / n)}
		}
	}
	return res, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
