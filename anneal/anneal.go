// Package anneal implements a generic simulated annealing loop.
//
// A Problem supplies random neighbours and a distance to the target; Solve
// accepts every improvement and an uphill move with probability
// exp(-change/temp), cooling the temperature by Alpha after each step.
package anneal

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/niklasfasching/anneal/util"
)

type Problem[S any] interface {
	Neighbour(r *rand.Rand, s S) (S, error)
	Distance(s S) float64
}

// Stopper can be implemented by a Problem to end the search early.
type Stopper[S any] interface {
	Stop(step int, s S) bool
}

type Config struct {
	Temp, Alpha, Precision float64
	MaxSteps               int
	Seed                   uint64
}

type Result[S any] struct {
	Solution        S
	Distance, Temp  float64
	Steps, Accepted int
	Reason          string
}

type Step[S any] struct {
	N              int
	Solution       S
	Distance, Temp float64
	Accepted       bool
}

const (
	StopHook      = "hook"
	StopPrecision = "precision"
	StopMaxSteps  = "max-steps"
	StopCanceled  = "canceled"
)

var DefaultConfig = Config{Temp: 500, Alpha: 0.7, MaxSteps: 500, Seed: 1}

func (c Config) Rand() *rand.Rand { return rand.New(rand.NewPCG(c.Seed, c.Seed^0x9e3779b97f4a7c15)) }

func Solve[S any](ctx context.Context, p Problem[S], start S, c Config, hooks ...func(Step[S])) (Result[S], error) {
	if c.Temp < 0 || math.IsNaN(c.Temp) {
		return Result[S]{}, fmt.Errorf("temperature must not be negative: %v", c.Temp)
	} else if !(c.Alpha > 0 && c.Alpha <= 1) {
		return Result[S]{}, fmt.Errorf("alpha must be in (0, 1]: %v", c.Alpha)
	}
	r, temp := c.Rand(), c.Temp
	res := Result[S]{Solution: start, Distance: p.Distance(start)}
	if res.Distance < 0 {
		return res, fmt.Errorf("negative distance %v for start solution", res.Distance)
	}
	for {
		res.Temp = temp
		if res.Reason = stopReason(ctx, p, c, res); res.Reason != "" {
			util.Infof(ctx, "stopped after %d steps (%s): distance=%g temp=%g", res.Steps, res.Reason, res.Distance, temp)
			return res, nil
		}
		n, err := p.Neighbour(r, res.Solution)
		if err != nil {
			return res, fmt.Errorf("neighbour at step %d: %w", res.Steps, err)
		}
		d := p.Distance(n)
		if d < 0 {
			return res, fmt.Errorf("negative distance %v at step %d", d, res.Steps)
		}
		ok, err := accept(r, d-res.Distance, temp)
		if err != nil {
			return res, fmt.Errorf("step %d: %w", res.Steps, err)
		} else if ok {
			res.Solution, res.Distance = n, d
			res.Accepted++
		}
		res.Steps++
		util.Debugf(ctx, "step=%d temp=%g distance=%g accepted=%t solution=%v", res.Steps, temp, res.Distance, ok, res.Solution)
		for _, h := range hooks {
			h(Step[S]{res.Steps, res.Solution, res.Distance, temp, ok})
		}
		temp *= c.Alpha
	}
}

func stopReason[S any](ctx context.Context, p Problem[S], c Config, res Result[S]) string {
	if s, ok := p.(Stopper[S]); ok && s.Stop(res.Steps, res.Solution) {
		return StopHook
	} else if res.Distance < c.Precision {
		return StopPrecision
	} else if c.MaxSteps > 0 && res.Steps >= c.MaxSteps {
		return StopMaxSteps
	} else if ctx.Err() != nil {
		return StopCanceled
	}
	return ""
}

func accept(r *rand.Rand, change, temp float64) (bool, error) {
	if change < 0 {
		return true, nil
	}
	p := Probability(change, temp)
	if !(p >= 0 && p <= 1) {
		return false, fmt.Errorf("probability %v out of range (change=%v temp=%v)", p, change, temp)
	}
	return r.Float64() < p, nil
}

// Probability of accepting a move that worsens the distance by change.
func Probability(change, temp float64) float64 {
	if change == 0 {
		return 1
	} else if temp <= 0 {
		return 0
	}
	return math.Exp(-change / temp)
}
