package main

import (
	"fmt"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/niklasfasching/anneal/geo"
)

var defaultPoints = []geo.Point{
	{X: -223, Y: -188}, {X: 24, Y: 26}, {X: -132, Y: 143}, {X: 246, Y: 132}, {X: 209, Y: 0}, {X: -67, Y: 259},
	{X: 75, Y: 186}, {X: -192, Y: -144}, {X: -12, Y: 260}, {X: -129, Y: 198}, {X: 218, Y: -234}, {X: 150, Y: 136},
	{X: 31, Y: 62}, {X: 249, Y: 215}, {X: -212, Y: -112}, {X: 11, Y: 203}, {X: -130, Y: 6}, {X: 167, Y: -38},
	{X: -162, Y: 272}, {X: -221, Y: 58}, {X: 163, Y: 82}, {X: -221, Y: 105}, {X: -162, Y: -281}, {X: -228, Y: -230},
	{X: -161, Y: -252}, {X: -62, Y: -194}, {X: 19, Y: 293}, {X: 74, Y: -114}, {X: -179, Y: 52}, {X: -195, Y: -5},
	{X: -224, Y: -214}, {X: -110, Y: -281}, {X: 171, Y: 91}, {X: 155, Y: 211}, {X: 256, Y: -161}, {X: -65, Y: 291},
	{X: -293, Y: -96}, {X: -32, Y: -46}, {X: -152, Y: 17}, {X: 82, Y: -191}, {X: 196, Y: -196}, {X: 5, Y: -40},
}

// loadPoints reads the Point and MultiPoint geometries of a GeoJSON feature
// collection. Without a path the built-in points are returned.
func loadPoints(path string) ([]geo.Point, error) {
	if path == "" {
		return defaultPoints, nil
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(bs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	ps, seen := []geo.Point{}, map[geo.Point]bool{}
	add := func(p orb.Point) {
		if gp := (geo.Point{X: p.X(), Y: p.Y()}); !seen[gp] {
			seen[gp] = true
			ps = append(ps, gp)
		}
	}
	for i, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Point:
			add(g)
		case orb.MultiPoint:
			for _, p := range g {
				add(p)
			}
		default:
			return nil, fmt.Errorf("feature %d of %q: unsupported geometry %T", i, path, f.Geometry)
		}
	}
	if len(ps) == 0 {
		return nil, fmt.Errorf("%q contains no points", path)
	}
	return ps, nil
}

// enclosingSquare returns a square with integer corners and a power of two
// side length that contains all ps. Both keep the corner arithmetic exact.
func enclosingSquare(ps []geo.Point) geo.Area {
	mp := make(orb.MultiPoint, len(ps))
	for i, p := range ps {
		mp[i] = orb.Point{p.X, p.Y}
	}
	b := mp.Bound()
	extent := math.Max(b.Right()-b.Left(), b.Top()-b.Bottom())
	side := 1.0
	for side <= extent+1 {
		side *= 2
	}
	x, y := math.Floor(b.Left()), math.Floor(b.Bottom())
	return geo.Area{Xmin: x, Xmax: x + side, Ymin: y, Ymax: y + side}
}

func newTree(ps []geo.Point, maxLvl int) (*geo.Region, error) {
	t, err := geo.New(enclosingSquare(ps), geo.Config{MaxLvl: maxLvl})
	if err != nil {
		return nil, err
	}
	for _, p := range ps {
		if err := t.Insert(p); err != nil {
			return nil, err
		}
	}
	return t, nil
}
