package geo

import "fmt"

// Nearest returns the stored point closest to p. It expands the tree breadth
// first and only enqueues quadrants whose area could still hold a point
// strictly closer than the best one found so far.
func (r *Region) Nearest(p Point) (Point, error) {
	var best *Point
	bestD2, queue := 0.0, []*Region{r}
	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]
		if q.IsLeaf() {
			if q.Point == nil && q == r {
				return Point{}, fmt.Errorf("%w: %v is empty", NotFoundErr, r.Area)
			} else if q.Point == nil {
				return Point{}, fmt.Errorf("%w: empty leaf %v at level %d", InvariantErr, q.Area, q.Lvl)
			} else if d2 := Dist2(p, *q.Point); best == nil || d2 < bestD2 {
				best, bestD2 = q.Point, d2
			}
			continue
		}
		for _, c := range q.Quadrants {
			if c != nil && (best == nil || c.MinDist2(p) < bestD2) {
				queue = append(queue, c)
			}
		}
	}
	if best == nil {
		return Point{}, fmt.Errorf("%w: internal %v without points", InvariantErr, r.Area)
	}
	return *best, nil
}

// TotalDistance sums the euclidean distance from ref to every stored point.
func (r *Region) TotalDistance(ref Point) float64 {
	d := 0.0
	for p := range r.All() {
		d += Dist(p, ref)
	}
	return d
}
