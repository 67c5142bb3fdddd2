package anneal

import (
	"math"
	"math/rand/v2"
)

// Sin searches for an angle in degrees at which sin reaches Target, moving
// at most 10 degrees per step.
type Sin struct{ Target float64 }

func (Sin) Neighbour(r *rand.Rand, deg float64) (float64, error) {
	return deg + float64(r.IntN(21)-10), nil
}

func (s Sin) Distance(deg float64) float64 {
	return math.Abs(math.Sin(deg*math.Pi/180) - s.Target)
}
