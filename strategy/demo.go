package strategy

import (
	"context"
	"math"
	"math/rand"
)

const demoLaps = 50

// Demo fabricates a plausible duel without any computation service. Used when
// the remote service is asleep.
type Demo struct {
	rng *rand.Rand
}

func NewDemo(seed int64) *Demo {
	return &Demo{rng: rand.New(rand.NewSource(seed))}
}

func (d *Demo) Duel(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res := Result{
		D1WinProb:  62 + d.rng.Float64()*5,
		D2WinProb:  38 - d.rng.Float64()*5,
		LapHistory: make([]LapGap, demoLaps),
	}
	for i := range res.LapHistory {
		gap := 5 + math.Sin(float64(i)*0.2)*3
		if i > req.Pit1 {
			gap -= 4
		}
		if i > req.Pit2 {
			gap += 4
		}
		res.LapHistory[i] = LapGap{Lap: i + 1, Gap: gap}
	}
	return res, nil
}
