package geom

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Crossing3 returns the point where s crosses the triangle tri and whether
// it crosses at all.
//
// The endpoints of s are projected onto tri's normal. Endpoints on the same
// side, or both in tri's plane, mean no crossing. Otherwise the point where
// s meets the plane is found and tested for membership in tri: the point
// and tri are projected onto the coordinate plane that drops the normal's
// largest component, and a 2D ray from the point to a spot outside tri's
// bounding box is counted against tri's three edges. An odd count means
// the point is inside.
//
// A crossing exactly on a vertex of tri meets two edges and is never
// reported.
func Crossing3(s Segment3, tri Triangle) (v3.Vec, bool) {
	n := tri.Normal()
	proj1 := s.A.Sub(tri.A).Dot(n)
	proj2 := s.B.Sub(tri.A).Dot(n)

	if proj1*proj2 > 0 {
		return v3.Vec{}, false
	}
	if proj1 == 0 && proj2 == 0 {
		return v3.Vec{}, false
	}

	t := proj1 / (proj1 - proj2)
	p := s.A.Add(s.B.Sub(s.A).MulScalar(t))

	outside := tri.Min().Sub(v3.Vec{X: anchorOffset[0], Y: anchorOffset[1], Z: anchorOffset[2]})

	axis := dominantAxis(n)
	ray := Segment2{A: drop(p, axis), B: drop(outside, axis)}
	a, b, c := drop(tri.A, axis), drop(tri.B, axis), drop(tri.C, axis)

	count := 0
	for _, edge := range [3][2]v2.Vec{{a, b}, {b, c}, {c, a}} {
		if Intersects2(ray, Segment2{A: edge[0], B: edge[1]}) {
			count++
		}
	}
	if count%2 == 1 {
		return p, true
	}
	return v3.Vec{}, false
}

// Intersects3 reports whether s crosses tri. See Crossing3.
func Intersects3(s Segment3, tri Triangle) bool {
	_, ok := Crossing3(s, tri)
	return ok
}

// CrossNormal3 returns tri's unit normal, negated if needed so that it
// points toward the end point of the query segment s.
func CrossNormal3(s Segment3, tri Triangle) v3.Vec {
	n := tri.Normal()
	if s.B.Sub(tri.A).Dot(n) < 0 {
		n = n.MulScalar(-1)
	}
	return Unit3(n)
}
