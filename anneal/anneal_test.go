package anneal

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/niklasfasching/anneal/util"
)

type countdown struct{ stopAt int }

func (c countdown) Neighbour(r *rand.Rand, n int) (int, error) { return n - 1, nil }
func (c countdown) Distance(n int) float64                     { return math.Abs(float64(n)) }
func (c countdown) Stop(step int, n int) bool                  { return step >= c.stopAt }

type broken struct{ countdown }

func (broken) Neighbour(r *rand.Rand, n int) (int, error) { return 0, errors.New("boom") }

type negative struct{ countdown }

func (negative) Distance(n int) float64 { return -1 }

func TestSolve(t *testing.T) {
	ctx := context.Background()

	t.Run("sin", func(t *testing.T) {
		c := Config{Temp: 500, Alpha: 0.4, Precision: 0.000001, MaxSteps: 100000, Seed: 1}
		res, err := Solve[float64](ctx, Sin{1}, 30, c)
		if err != nil {
			t.Fatal(err)
		} else if res.Reason != StopPrecision || res.Distance >= c.Precision {
			t.Fatalf("expected to reach precision, got %#v", res)
		} else if math.Abs(math.Sin(res.Solution*math.Pi/180)-1) >= c.Precision {
			t.Fatalf("%v is not a maximum of sin", res.Solution)
		}
	})

	t.Run("max steps", func(t *testing.T) {
		steps := 0
		res, err := Solve[float64](ctx, Sin{2}, 0, Config{Temp: 10, Alpha: 0.9, MaxSteps: 50, Seed: 2},
			func(Step[float64]) { steps++ })
		if err != nil {
			t.Fatal(err)
		} else if res.Reason != StopMaxSteps || res.Steps != 50 || steps != 50 {
			t.Fatalf("expected 50 steps, got %d (%d hooks): %s", res.Steps, steps, res.Reason)
		}
	})

	t.Run("stop hook", func(t *testing.T) {
		res, err := Solve[int](ctx, countdown{5}, 100, DefaultConfig)
		if err != nil {
			t.Fatal(err)
		} else if res.Reason != StopHook || res.Steps != 5 || res.Solution != 95 || res.Accepted != 5 {
			t.Fatalf("expected hook to stop at 95, got %#v", res)
		}
	})

	t.Run("greedy", func(t *testing.T) {
		res, err := Solve[int](ctx, countdown{20}, 10, Config{Temp: 0, Alpha: 1, Seed: 3})
		if err != nil {
			t.Fatal(err)
		} else if res.Solution != 0 || res.Accepted != 10 || res.Steps != 20 {
			t.Fatalf("expected only improving moves to be accepted, got %#v", res)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		for _, c := range []Config{{Temp: -1, Alpha: 0.5}, {Temp: 1, Alpha: 0}, {Temp: 1, Alpha: 1.5}, {Temp: math.NaN(), Alpha: 0.5}} {
			if _, err := Solve[int](ctx, countdown{1}, 0, c); err == nil {
				t.Errorf("%#v: expected error", c)
			}
		}
		if _, err := Solve[int](ctx, negative{countdown{1}}, 0, DefaultConfig); err == nil || !strings.Contains(err.Error(), "negative distance") {
			t.Errorf("expected negative distance error, got %v", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		res, err := Solve[float64](ctx, Sin{1}, 0, Config{Temp: 1, Alpha: 0.5, Precision: 0})
		if err != nil {
			t.Fatal(err)
		} else if res.Reason != StopCanceled || res.Steps != 0 {
			t.Fatalf("expected immediate cancel, got %#v", res)
		}
	})

	t.Run("neighbour error", func(t *testing.T) {
		if _, err := Solve[int](ctx, broken{countdown{5}}, 10, DefaultConfig); err == nil || !strings.Contains(err.Error(), "boom") {
			t.Fatalf("expected neighbour error, got %v", err)
		}
	})

	t.Run("logging", func(t *testing.T) {
		lines := map[util.Lvl]int{}
		ctx := util.WithLogger(ctx, func(lvl util.Lvl, msg string) { lines[lvl]++ })
		if _, err := Solve[int](ctx, countdown{3}, 10, DefaultConfig); err != nil {
			t.Fatal(err)
		} else if lines[util.DEBUG] != 3 || lines[util.INFO] != 1 {
			t.Fatalf("expected 3 debug and 1 info line, got %v", lines)
		}
	})
}

func TestProbability(t *testing.T) {
	for _, x := range []struct{ change, temp, expected float64 }{
		{0, 0, 1},
		{0, 10, 1},
		{1, 0, 0},
		{1, -1, 0},
		{2, 2, math.Exp(-1)},
		{100, 1, math.Exp(-100)},
	} {
		if p := Probability(x.change, x.temp); p != x.expected {
			t.Errorf("change=%v temp=%v: expected %v, got %v", x.change, x.temp, x.expected, p)
		}
	}
}
