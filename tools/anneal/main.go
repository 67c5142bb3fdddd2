package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/niklasfasching/anneal/anneal"
	"github.com/niklasfasching/anneal/ops"
	"github.com/niklasfasching/anneal/sqlite"
	"github.com/niklasfasching/anneal/util"
)

type Config struct {
	Temp, Alpha float64
	Precision   float64 `config:"optional"`
	MaxSteps    int
	Seed        uint64
	Restarts    int
	Parallel    int
	MaxLvl      int

	SinStart     float64
	SinTarget    float64
	SinAlpha     float64
	SinPrecision float64

	DB          string
	LogLvl      string
	Limit       int
	MetricsHost string `config:"optional"`
	MetricsUser string `config:"optional"`
	MetricsPass string `config:"optional"`
	FlushSecs   int
}

var DefaultConfig = Config{
	Temp:         500,
	Alpha:        0.7,
	MaxSteps:     500,
	Seed:         1,
	Restarts:     4,
	Parallel:     4,
	MaxLvl:       64,
	SinStart:     30,
	SinTarget:    1,
	SinAlpha:     0.4,
	SinPrecision: 1e-6,
	DB:           "anneal.db",
	LogLvl:       "INFO",
	Limit:        10,
	FlushSecs:    30,
}

const usage = `usage: anneal <command>
  spread [points.geojson]   find the point with the largest summed distance to all others
  sin                       find the angle at which sin reaches ANNEAL_SinTarget
  dump [points.geojson]     print the quadtree
  runs [problem [x y]]      list recorded runs, best or closest to (x, y) first
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, w io.Writer) error {
	c := DefaultConfig
	if err := util.LoadConfig("ANNEAL_", &c); err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = util.WithLogger(ctx, util.WithLvl(util.ParseLvl(c.LogLvl), util.Writer(os.Stderr)))
	if len(args) == 0 {
		return fmt.Errorf("%s", usage)
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "dump":
		ps, err := loadPoints(arg(args, 0))
		if err != nil {
			return err
		}
		t, err := newTree(ps, c.MaxLvl)
		if err != nil {
			return err
		}
		return t.Print(w)
	case "spread", "sin", "runs":
		db, err := sqlite.Open(c.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		if cmd == "runs" {
			return listRuns(db, c, args, w)
		}
		m := &ops.M{Host: c.MetricsHost, User: c.MetricsUser, Pass: c.MetricsPass}
		o := ops.New(m)
		if m.Host != "" && c.FlushSecs <= 0 {
			return fmt.Errorf("FlushSecs must be positive: %d", c.FlushSecs)
		} else if m.Host != "" {
			go o.Start(ctx, time.Duration(c.FlushSecs)*time.Second)
		}
		defer o.Shutdown(ctx, 5*time.Second)
		if cmd == "sin" {
			return solveSin(ctx, db, m, c, w)
		}
		return solveSpread(ctx, db, m, c, arg(args, 0), w)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func solveSpread(ctx context.Context, db *sqlite.DB, m *ops.M, c Config, path string, w io.Writer) error {
	ps, err := loadPoints(path)
	if err != nil {
		return err
	}
	util.Infof(ctx, "spread over %d points, %d restarts", len(ps), c.Restarts)
	rs, err := anneal.Restarts(ctx, c.Restarts, c.Parallel, func(ctx context.Context, i int) (anneal.Result[anneal.SpreadSolution], error) {
		started := time.Now()
		t, err := newTree(ps, c.MaxLvl)
		if err != nil {
			return anneal.Result[anneal.SpreadSolution]{}, err
		}
		ac := c.annealConfig(i, c.Alpha, c.Precision)
		start, err := anneal.NewSpreadSolution(t, ac.Rand())
		if err != nil {
			return anneal.Result[anneal.SpreadSolution]{}, err
		}
		r, err := anneal.Solve(ctx, anneal.Spread{}, start, ac, observe[anneal.SpreadSolution](m, "spread"))
		if err != nil {
			return r, err
		}
		p, s := r.Solution.Current, fmt.Sprintf("%v total=%g", r.Solution, r.Solution.Total())
		return r, record(db, m, "spread", ac.Seed, started, r.Steps, r.Accepted, r.Reason, r.Distance, p.X, p.Y, s)
	})
	if err != nil {
		return err
	}
	best := rs[0]
	fmt.Fprintf(w, "best: %v total=%g distance=%g steps=%d (%s)\n",
		best.Solution, best.Solution.Total(), best.Distance, best.Steps, best.Reason)
	return logMetrics(ctx, m)
}

func solveSin(ctx context.Context, db *sqlite.DB, m *ops.M, c Config, w io.Writer) error {
	problem := anneal.Sin{Target: c.SinTarget}
	rs, err := anneal.Restarts(ctx, c.Restarts, c.Parallel, func(ctx context.Context, i int) (anneal.Result[float64], error) {
		started := time.Now()
		ac := c.annealConfig(i, c.SinAlpha, c.SinPrecision)
		r, err := anneal.Solve(ctx, problem, c.SinStart, ac, observe[float64](m, "sin"))
		if err != nil {
			return r, err
		}
		y := math.Sin(r.Solution * math.Pi / 180)
		s := fmt.Sprintf("sin(%g°)=%g", r.Solution, y)
		return r, record(db, m, "sin", ac.Seed, started, r.Steps, r.Accepted, r.Reason, r.Distance, r.Solution, y, s)
	})
	if err != nil {
		return err
	}
	best := rs[0]
	fmt.Fprintf(w, "best: %g° distance=%g steps=%d (%s)\n", best.Solution, best.Distance, best.Steps, best.Reason)
	return logMetrics(ctx, m)
}

func (c Config) annealConfig(restart int, alpha, precision float64) anneal.Config {
	return anneal.Config{
		Temp:      c.Temp,
		Alpha:     alpha,
		Precision: precision,
		MaxSteps:  c.MaxSteps,
		Seed:      c.Seed + uint64(restart),
	}
}

func observe[S any](m *ops.M, problem string) func(anneal.Step[S]) {
	return func(s anneal.Step[S]) {
		m.Counter("anneal_steps,problem="+problem, 1)
		if s.Accepted {
			m.Counter("anneal_accepted,problem="+problem, 1)
		} else {
			m.Counter("anneal_rejected,problem="+problem, 1)
		}
	}
}

// record stores a finished run. Runs cut short by cancellation are dropped.
func record(db *sqlite.DB, m *ops.M, problem string, seed uint64, started time.Time,
	steps, accepted int, reason string, distance, x, y float64, solution string) error {
	if reason == anneal.StopCanceled {
		m.Counter("anneal_canceled,problem="+problem, 1)
		return nil
	}
	m.Counter("anneal_runs,problem="+problem+",reason="+ops.Esc(reason, "-"), 1)
	m.Hist("anneal_distance", distance, ops.DistanceBuckets, "problem=%s", problem)
	_, err := db.InsertRun(sqlite.Run{
		Problem:  problem,
		Seed:     int64(seed),
		Steps:    steps,
		Accepted: accepted,
		Reason:   reason,
		Score:    distance,
		X:        x,
		Y:        y,
		Solution: solution,
		Started:  started,
	})
	return err
}

func logMetrics(ctx context.Context, m *ops.M) error {
	if m.Host != "" {
		return nil
	}
	b := &bytes.Buffer{}
	if err := m.Write(b); err != nil {
		return err
	}
	util.Debug(ctx, "metrics:\n", b.String())
	return nil
}

func listRuns(db *sqlite.DB, c Config, args []string, w io.Writer) error {
	problem := arg(args, 0)
	if problem == "" {
		problem = "spread"
	}
	var rs []sqlite.Run
	var err error
	if len(args) == 3 {
		x, y := 0.0, 0.0
		if _, err := fmt.Sscan(args[1]+" "+args[2], &x, &y); err != nil {
			return fmt.Errorf("bad coordinates %q %q: %w", args[1], args[2], err)
		}
		rs, err = db.RunsNear(problem, x, y, c.Limit)
	} else {
		rs, err = db.Runs(problem, c.Limit)
	}
	if err != nil {
		return err
	}
	for _, r := range rs {
		fmt.Fprintf(w, "%d\t%s\t%s\tseed=%d\tsteps=%d\taccepted=%d\t%s\tscore=%g\t%s\n",
			r.ID, r.Started.Local().Format(time.DateTime), r.Problem, r.Seed, r.Steps, r.Accepted, r.Reason, r.Score, r.Solution)
	}
	return nil
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
