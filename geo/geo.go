package geo

import (
	"math"
	"math/rand/v2"
	"strconv"
)

type Point struct{ X, Y float64 }

// Area is a closed axis-aligned rectangle [Xmin,Xmax] x [Ymin,Ymax].
type Area struct{ Xmin, Xmax, Ymin, Ymax float64 }

func (p Point) String() string {
	return "(" + strconv.FormatFloat(p.X, 'f', -1, 64) + "," + strconv.FormatFloat(p.Y, 'f', -1, 64) + ")"
}

func Dist2(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

func Dist(a, b Point) float64 { return math.Sqrt(Dist2(a, b)) }

func (a Area) Contains(p Point) bool {
	return p.X >= a.Xmin && p.X <= a.Xmax && p.Y >= a.Ymin && p.Y <= a.Ymax
}

func (a Area) IsSquare() bool { return a.Xmax-a.Xmin == a.Ymax-a.Ymin }

func (a Area) Mid() Point { return Point{a.Xmin/2 + a.Xmax/2, a.Ymin/2 + a.Ymax/2} }

// SplitsExactly reports whether all four quadrants of a are exact squares in
// float64.
func (a Area) SplitsExactly() bool {
	for i := range 4 {
		if !a.Sub(i).IsSquare() {
			return false
		}
	}
	return true
}

// Quadrant returns 0 (low x, low y), 1 (high x, low y), 2 (low x, high y)
// or 3 (high x, high y). Points on a midline belong to the high side.
func (a Area) Quadrant(p Point) int {
	m, i := a.Mid(), 0
	if p.X >= m.X {
		i |= 1
	}
	if p.Y >= m.Y {
		i |= 2
	}
	return i
}

func (a Area) Sub(i int) Area {
	m := a.Mid()
	s := a
	if i&1 == 0 {
		s.Xmax = m.X
	} else {
		s.Xmin = m.X
	}
	if i&2 == 0 {
		s.Ymax = m.Y
	} else {
		s.Ymin = m.Y
	}
	return s
}

// MinDist2 is the squared distance from p to the closest point of a. It is 0
// inside a, the squared distance to the nearest edge when p is outside on one
// axis and to the nearest corner when outside on both.
func (a Area) MinDist2(p Point) float64 {
	dx, dy := 0.0, 0.0
	if p.X < a.Xmin {
		dx = a.Xmin - p.X
	} else if p.X > a.Xmax {
		dx = p.X - a.Xmax
	}
	if p.Y < a.Ymin {
		dy = a.Ymin - p.Y
	} else if p.Y > a.Ymax {
		dy = p.Y - a.Ymax
	}
	return dx*dx + dy*dy
}

func (a Area) Rand(r *rand.Rand) Point {
	return Point{lerp(a.Xmin, a.Xmax, r.Float64()), lerp(a.Ymin, a.Ymax, r.Float64())}
}

// lerp never computes hi-lo, which can overflow for finite bounds.
func lerp(lo, hi, f float64) float64 {
	return math.Min(math.Max(lo*(1-f)+hi*f, lo), hi)
}

func (a Area) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return "x=[" + f(a.Xmin) + "," + f(a.Xmax) + "] y=[" + f(a.Ymin) + "," + f(a.Ymax) + "]"
}
