package anneal

import (
	"fmt"
	"math/rand/v2"

	"github.com/niklasfasching/anneal/geo"
)

// Spread searches the points of a tree for the one with the largest summed
// distance to all others. Neighbours are the stored points closest to
// uniformly sampled coordinates.
type Spread struct{}

type SpreadSolution struct {
	Tree    *geo.Region
	Current geo.Point
}

func NewSpreadSolution(t *geo.Region, r *rand.Rand) (SpreadSolution, error) {
	if t.IsEmpty() {
		return SpreadSolution{}, fmt.Errorf("spread needs at least one point")
	}
	p, err := t.Nearest(t.Rand(r))
	return SpreadSolution{t, p}, err
}

func (Spread) Neighbour(r *rand.Rand, s SpreadSolution) (SpreadSolution, error) {
	p, err := s.Tree.Nearest(s.Tree.Rand(r))
	return SpreadSolution{s.Tree, p}, err
}

func (Spread) Distance(s SpreadSolution) float64 {
	if d := s.Tree.TotalDistance(s.Current); d != 0 {
		return 1 / d
	}
	return 2
}

// Total is the summed distance from Current to all stored points. It walks
// the whole tree.
func (s SpreadSolution) Total() float64 { return s.Tree.TotalDistance(s.Current) }

func (s SpreadSolution) String() string { return s.Current.String() }
