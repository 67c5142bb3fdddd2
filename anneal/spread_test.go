package anneal

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/niklasfasching/anneal/geo"
)

func spreadTree(t *testing.T, ps ...geo.Point) *geo.Region {
	t.Helper()
	r, err := geo.New(geo.Area{Xmin: -300, Xmax: 300, Ymin: -300, Ymax: 300}, geo.Config{})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range ps {
		if err := r.Insert(p); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

func TestSpread(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, err := NewSpreadSolution(spreadTree(t), rand.New(rand.NewPCG(1, 1))); err == nil {
			t.Fatal("expected error for empty tree")
		}
	})

	t.Run("single point", func(t *testing.T) {
		s, err := NewSpreadSolution(spreadTree(t, geo.Point{X: 1, Y: 2}), rand.New(rand.NewPCG(1, 1)))
		if err != nil {
			t.Fatal(err)
		} else if s.Current != (geo.Point{X: 1, Y: 2}) || (Spread{}).Distance(s) != 2 {
			t.Fatalf("unexpected solution %v", s)
		}
	})

	t.Run("string", func(t *testing.T) {
		s := SpreadSolution{Current: geo.Point{X: 1.5, Y: -2}}
		if str := s.String(); str != "(1.5,-2)" {
			t.Fatalf("expected the current point only, got %q", str)
		}
	})

	t.Run("solve", func(t *testing.T) {
		ps := []geo.Point{{X: -223, Y: -188}, {X: 24, Y: 26}, {X: -132, Y: 143}, {X: 246, Y: 132}, {X: 209, Y: 0}, {X: 5, Y: -40}}
		tree := spreadTree(t, ps...)
		c := DefaultConfig
		start, err := NewSpreadSolution(tree, c.Rand())
		if err != nil {
			t.Fatal(err)
		}
		res, err := Solve[SpreadSolution](context.Background(), Spread{}, start, c)
		if err != nil {
			t.Fatal(err)
		} else if res.Reason != StopMaxSteps || res.Steps != c.MaxSteps {
			t.Fatalf("expected %d steps, got %#v", c.MaxSteps, res)
		}
		found := false
		for _, p := range ps {
			found = found || p == res.Solution.Current
		}
		if !found {
			t.Fatalf("%v is not a stored point", res.Solution.Current)
		} else if d := 1 / res.Solution.Total(); d != res.Distance {
			t.Fatalf("expected distance %v, got %v", d, res.Distance)
		} else if err := tree.Check(); err != nil {
			t.Fatal(err)
		}
	})
}

func TestRestarts(t *testing.T) {
	ctx := context.Background()
	rs, err := Restarts(ctx, 8, 3, func(ctx context.Context, i int) (Result[float64], error) {
		c := Config{Temp: 100, Alpha: 0.8, MaxSteps: 20 + i, Seed: uint64(i)}
		return Solve[float64](ctx, Sin{1}, float64(i*45), c)
	})
	if err != nil {
		t.Fatal(err)
	} else if len(rs) != 8 {
		t.Fatalf("expected 8 results, got %d", len(rs))
	}
	for i := 1; i < len(rs); i++ {
		if rs[i-1].Distance > rs[i].Distance {
			t.Fatalf("results not ordered: %v > %v", rs[i-1].Distance, rs[i].Distance)
		}
	}

	_, err = Restarts(ctx, 4, 0, func(ctx context.Context, i int) (Result[int], error) {
		if i == 2 {
			return Result[int]{}, errors.New("restart failed")
		}
		return Solve[int](ctx, countdown{10}, 0, DefaultConfig)
	})
	if err == nil || err.Error() != "restart failed" {
		t.Fatalf("expected restart error, got %v", err)
	}
}
