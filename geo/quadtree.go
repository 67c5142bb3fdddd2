package geo

import (
	"fmt"
	"iter"
	"math"
)

// Region is a node of a point-region quadtree covering a square Area. A leaf
// (Quadrants == nil) holds at most one Point; an internal node has exactly 4
// quadrant slots, any of which may be nil, and never holds a Point itself.
type Region struct {
	Area
	Config
	Point     *Point
	Quadrants []*Region
	Lvl       int
}

type Config struct{ MaxLvl int }

type State int

const (
	Empty State = iota
	Occupied
	Internal
)

const DefaultMaxLvl = 64

var (
	OutOfDomainErr    = fmt.Errorf("out of domain")
	DuplicatePointErr = fmt.Errorf("duplicate point")
	NotFoundErr       = fmt.Errorf("point not found")
	MaxLvlErr         = fmt.Errorf("max level exceeded")
	InexactSplitErr   = fmt.Errorf("quadrants not representable as exact squares")
	InvariantErr      = fmt.Errorf("invariant violation")
)

func New(a Area, c Config) (*Region, error) {
	for _, v := range []float64{a.Xmin, a.Xmax, a.Ymin, a.Ymax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %v is not finite", InvariantErr, a)
		}
	}
	if a.Xmax < a.Xmin || a.Ymax < a.Ymin {
		return nil, fmt.Errorf("%w: %v is inverted", InvariantErr, a)
	} else if !a.IsSquare() {
		return nil, fmt.Errorf("%w: %v is not square", InvariantErr, a)
	} else if math.IsInf(a.Xmax-a.Xmin, 0) {
		return nil, fmt.Errorf("%w: side of %v is not finite", InvariantErr, a)
	}
	if c.MaxLvl <= 0 {
		c.MaxLvl = DefaultMaxLvl
	}
	return &Region{Area: a, Config: c}, nil
}

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Occupied:
		return "occupied"
	case Internal:
		return "internal"
	default:
		panic(fmt.Errorf("bad state: %d", int(s)))
	}
}

func (r *Region) State() State {
	if r.Quadrants != nil {
		return Internal
	} else if r.Point != nil {
		return Occupied
	}
	return Empty
}

func (r *Region) IsLeaf() bool  { return r.Quadrants == nil }
func (r *Region) IsEmpty() bool { return r.Quadrants == nil && r.Point == nil }

func (r *Region) Insert(p Point) error {
	if r.Config == (Config{}) {
		return fmt.Errorf("%w: region must be instantiated with New", InvariantErr)
	} else if !r.Contains(p) {
		return fmt.Errorf("%w: %v does not contain %v", OutOfDomainErr, r.Area, p)
	}
	return r.insert(p)
}

func (r *Region) insert(p Point) error {
	for q := r; ; {
		switch q.State() {
		case Internal:
			i := q.Quadrant(p)
			if q.Quadrants[i] == nil {
				q.Quadrants[i] = q.child(i)
			}
			q = q.Quadrants[i]
		case Empty:
			q.Point = &p
			return nil
		default:
			existing := *q.Point
			if existing == p {
				return fmt.Errorf("%w: %v", DuplicatePointErr, p)
			} else if err := q.canSplit(existing, p); err != nil {
				return err
			}
			q.Point, q.Quadrants = nil, make([]*Region, 4)
			if err := q.insert(existing); err != nil {
				return err
			}
		}
	}
}

// canSplit walks the areas r would be split into until a and b end up in
// different quadrants. Every split on the way must stay within MaxLvl and
// produce exact squares.
func (r *Region) canSplit(a, b Point) error {
	for area, lvl := r.Area, r.Lvl; ; lvl++ {
		if lvl+1 > r.MaxLvl {
			return fmt.Errorf("%w: separating %v and %v needs level > %d", MaxLvlErr, a, b, r.MaxLvl)
		} else if !area.SplitsExactly() {
			return fmt.Errorf("%w: %v at level %d", InexactSplitErr, area, lvl)
		}
		i := area.Quadrant(a)
		if i != area.Quadrant(b) {
			return nil
		}
		area = area.Sub(i)
	}
}

func (r *Region) child(i int) *Region {
	return &Region{Area: r.Sub(i), Config: r.Config, Lvl: r.Lvl + 1}
}

// Remove deletes p and collapses every ancestor on its path that is left
// holding a single point, stopping at the first one that holds more.
func (r *Region) Remove(p Point) error {
	trajectory, q := []*Region{}, r
	for q.Quadrants != nil {
		trajectory = append(trajectory, q)
		if q = q.Quadrants[q.Quadrant(p)]; q == nil {
			return fmt.Errorf("%w: %v", NotFoundErr, p)
		}
	}
	if q.Point == nil || *q.Point != p {
		return fmt.Errorf("%w: %v", NotFoundErr, p)
	}
	q.Point = nil
	if len(trajectory) == 0 {
		return nil
	}
	parent := trajectory[len(trajectory)-1]
	parent.Quadrants[parent.Quadrant(p)] = nil
	for i := len(trajectory) - 1; i >= 0; i-- {
		if trajectory[i].Count() > 1 {
			break
		} else if err := trajectory[i].merge(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Region) merge() error {
	var only *Point
	n := 0
	for p := range r.All() {
		n, only = n+1, &p
	}
	if n != 1 {
		return fmt.Errorf("%w: merging %v at level %d which holds %d points", InvariantErr, r.Area, r.Lvl, n)
	}
	r.Point, r.Quadrants = only, nil
	return nil
}

// All yields the stored points in depth-first quadrant order.
func (r *Region) All() iter.Seq[Point] {
	return func(yield func(Point) bool) {
		stack := []*Region{r}
		for len(stack) > 0 {
			q := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if q.Point != nil && !yield(*q.Point) {
				return
			}
			for i := len(q.Quadrants) - 1; i >= 0; i-- {
				if c := q.Quadrants[i]; c != nil {
					stack = append(stack, c)
				}
			}
		}
	}
}

func (r *Region) Count() int {
	n := 0
	for range r.All() {
		n++
	}
	return n
}

// Check walks the whole tree and reports the first broken structural
// invariant as an InvariantErr.
func (r *Region) Check() error {
	stack := []*Region{r}
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !q.IsSquare() {
			return fmt.Errorf("%w: %v at level %d is not square", InvariantErr, q.Area, q.Lvl)
		} else if q.Lvl > q.MaxLvl {
			return fmt.Errorf("%w: %v at level %d exceeds %d", InvariantErr, q.Area, q.Lvl, q.MaxLvl)
		}
		if q.IsLeaf() {
			if q.Point == nil && q != r {
				return fmt.Errorf("%w: empty non-root leaf %v at level %d", InvariantErr, q.Area, q.Lvl)
			} else if q.Point != nil && !q.Contains(*q.Point) {
				return fmt.Errorf("%w: %v outside of %v", InvariantErr, *q.Point, q.Area)
			}
			continue
		}
		if q.Point != nil {
			return fmt.Errorf("%w: internal %v holds %v", InvariantErr, q.Area, *q.Point)
		} else if len(q.Quadrants) != 4 {
			return fmt.Errorf("%w: internal %v has %d quadrants", InvariantErr, q.Area, len(q.Quadrants))
		} else if n := q.Count(); n < 2 {
			return fmt.Errorf("%w: internal %v at level %d holds %d points", InvariantErr, q.Area, q.Lvl, n)
		}
		for i, c := range q.Quadrants {
			if c == nil {
				continue
			} else if c.Area != q.Sub(i) || c.Lvl != q.Lvl+1 || c.Config != q.Config {
				return fmt.Errorf("%w: quadrant %d of %v is %v at level %d", InvariantErr, i, q.Area, c.Area, c.Lvl)
			}
			for p := range c.All() {
				if q.Quadrant(p) != i {
					return fmt.Errorf("%w: %v stored in quadrant %d of %v", InvariantErr, p, i, q.Area)
				}
			}
			stack = append(stack, c)
		}
	}
	return nil
}
