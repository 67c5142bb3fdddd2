package geo

import (
	"math/rand/v2"
	"testing"
)

func benchRegion(b *testing.B, n int) (*Region, *rand.Rand) {
	b.Helper()
	rnd := rand.New(rand.NewPCG(1, 1))
	r, err := New(Area{50, 150, 50, 150}, Config{})
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if err := r.Insert(r.Rand(rnd)); err != nil {
			b.Fatal(err)
		}
	}
	return r, rnd
}

func BenchmarkInsert(b *testing.B) {
	r, rnd := benchRegion(b, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Insert(r.Rand(rnd))
	}
}

func BenchmarkNearest(b *testing.B) {
	r, rnd := benchRegion(b, 100000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Nearest(r.Rand(rnd)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRemove(b *testing.B) {
	r, rnd := benchRegion(b, 0)
	ps := make([]Point, b.N)
	for i := range ps {
		ps[i] = r.Rand(rnd)
		r.Insert(ps[i])
	}
	b.ResetTimer()
	for _, p := range ps {
		r.Remove(p)
	}
}
