package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Crossing2 returns the point where s crosses the simplex segment seg and
// whether it crosses at all.
//
// Both endpoints of s are projected onto seg's normal. Endpoints on the
// same side, or both exactly on seg's line, mean no crossing; overlapping
// collinear segments are therefore never reported. Otherwise the crossing
// point on seg's line is interpolated along s and kept only if it falls in
// seg's extent, measured along whichever axis seg spans more so that a
// nearly axis-aligned seg does not lose precision. The extent is closed:
// touching an endpoint of seg counts as a crossing.
func Crossing2(s, seg Segment2) (v2.Vec, bool) {
	n := seg.Normal()
	proj1 := s.A.Sub(seg.A).Dot(n)
	proj2 := s.B.Sub(seg.A).Dot(n)

	if proj1*proj2 > 0 {
		return v2.Vec{}, false
	}
	if proj1 == 0 && proj2 == 0 {
		return v2.Vec{}, false
	}

	t := proj1 / (proj1 - proj2)
	p := s.A.Add(s.B.Sub(s.A).MulScalar(t))

	// A normal dominated by x means seg runs mostly along y.
	var lo, hi, x float64
	if math.Abs(n.X) > math.Abs(n.Y) {
		lo, hi, x = math.Min(seg.A.Y, seg.B.Y), math.Max(seg.A.Y, seg.B.Y), p.Y
	} else {
		lo, hi, x = math.Min(seg.A.X, seg.B.X), math.Max(seg.A.X, seg.B.X), p.X
	}
	if x >= lo && x <= hi {
		return p, true
	}
	return v2.Vec{}, false
}

// Intersects2 reports whether s crosses seg. See Crossing2.
func Intersects2(s, seg Segment2) bool {
	_, ok := Crossing2(s, seg)
	return ok
}

// CrossNormal2 returns seg's unit normal, negated if needed so that it
// points toward the end point of the query segment s.
func CrossNormal2(s, seg Segment2) v2.Vec {
	n := seg.Normal()
	if s.B.Sub(seg.A).Dot(n) < 0 {
		n = n.MulScalar(-1)
	}
	return Unit2(n)
}
