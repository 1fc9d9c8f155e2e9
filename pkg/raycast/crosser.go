package raycast

import (
	"github.com/chazu/simplex/pkg/geom"
	"github.com/chazu/simplex/pkg/simplex"
)

// crosser tests query segments against the simplices of one complex. There
// is one implementation per embedding dimension; every query operation goes
// through newCrosser.
type crosser interface {
	size() int
	// crossing reports whether the segment start→end crosses simplex i and
	// where.
	crossing(i int, start, end []float64) ([]float64, bool)
	// normal returns the unit normal of simplex i, pointing toward end.
	normal(i int, start, end []float64) []float64
}

// newCrosser converts the simplices of c into the form its dimension's
// predicate works on. c must already have passed Check.
func newCrosser(c *simplex.Complex) crosser {
	switch c.Dim() {
	case 1:
		pts := make(points1, c.Len())
		for i := range pts {
			pts[i] = c.Vertices[c.Simplices[i][0]][0]
		}
		return pts
	case 2:
		segs := make(segments2, c.Len())
		for i, s := range c.Simplices {
			segs[i] = geom.Segment2{A: geom.Vec2(c.Vertices[s[0]]), B: geom.Vec2(c.Vertices[s[1]])}
		}
		return segs
	default:
		tris := make(triangles3, c.Len())
		for i, s := range c.Simplices {
			tris[i] = geom.Triangle{
				A: geom.Vec3(c.Vertices[s[0]]),
				B: geom.Vec3(c.Vertices[s[1]]),
				C: geom.Vec3(c.Vertices[s[2]]),
			}
		}
		return tris
	}
}

// points1 holds the boundary points of a 1D complex.
type points1 []float64

func (p points1) size() int { return len(p) }

// A touch at either end of the segment counts as a crossing.
func (p points1) crossing(i int, start, end []float64) ([]float64, bool) {
	v := p[i]
	if (start[0]-v)*(end[0]-v) <= 0 {
		return []float64{v}, true
	}
	return nil, false
}

func (p points1) normal(i int, start, end []float64) []float64 {
	if p[i] < start[0] {
		return []float64{1}
	}
	return []float64{-1}
}

type segments2 []geom.Segment2

func (s segments2) size() int { return len(s) }

func (s segments2) crossing(i int, start, end []float64) ([]float64, bool) {
	p, ok := geom.Crossing2(geom.Segment2{A: geom.Vec2(start), B: geom.Vec2(end)}, s[i])
	if !ok {
		return nil, false
	}
	return geom.Slice2(p), true
}

func (s segments2) normal(i int, start, end []float64) []float64 {
	n := geom.CrossNormal2(geom.Segment2{A: geom.Vec2(start), B: geom.Vec2(end)}, s[i])
	return geom.Slice2(n)
}

type triangles3 []geom.Triangle

func (t triangles3) size() int { return len(t) }

func (t triangles3) crossing(i int, start, end []float64) ([]float64, bool) {
	p, ok := geom.Crossing3(geom.Segment3{A: geom.Vec3(start), B: geom.Vec3(end)}, t[i])
	if !ok {
		return nil, false
	}
	return geom.Slice3(p), true
}

func (t triangles3) normal(i int, start, end []float64) []float64 {
	n := geom.CrossNormal3(geom.Segment3{A: geom.Vec3(start), B: geom.Vec3(end)}, t[i])
	return geom.Slice3(n)
}

// count returns how many simplices the segment crosses.
func count(x crosser, start, end []float64) int {
	n := 0
	for i := 0; i < x.size(); i++ {
		if _, ok := x.crossing(i, start, end); ok {
			n++
		}
	}
	return n
}

// first returns the lowest simplex index the segment crosses, and the
// crossing point, or -1 if there is none.
func first(x crosser, start, end []float64) (int, []float64) {
	for i := 0; i < x.size(); i++ {
		if p, ok := x.crossing(i, start, end); ok {
			return i, p
		}
	}
	return -1, nil
}
