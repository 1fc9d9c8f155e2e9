// Package geom provides the numeric primitives behind the ray-casting
// queries: segments and triangles over sdfx vectors, right-hand-rule
// normals, and the crossing predicates for segment/segment in 2D and
// segment/triangle in 3D.
//
// Normals returned by Normal methods are unnormalized. Crossing predicates
// treat collinear and coplanar contact as no crossing.
package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// anchorOffset is subtracted from the component-wise minimum of a point
// set to build a point that is outside its bounding box. The values are
// unrelated to each other so that rays cast from the anchor are not
// parallel to the axes or to typical mesh features.
var anchorOffset = [3]float64{1.23456789, 2.34567891, 3.45678912}

// AnchorOffset returns the standard per-axis anchor offsets.
func AnchorOffset() [3]float64 {
	return anchorOffset
}

// OutsidePoint returns the component-wise minimum of pts minus offset. The
// result lies outside the axis-aligned bounding box of pts. All points must
// share one dimension of at most 3; pts must not be empty.
func OutsidePoint(pts [][]float64, offset [3]float64) []float64 {
	dim := len(pts[0])
	out := make([]float64, dim)
	for k := range out {
		out[k] = math.Inf(1)
	}
	for _, p := range pts {
		for k := 0; k < dim; k++ {
			out[k] = math.Min(out[k], p[k])
		}
	}
	for k := range out {
		out[k] -= offset[k]
	}
	return out
}

// Vec2 converts a 2-tuple to a vector.
func Vec2(p []float64) v2.Vec {
	return v2.Vec{X: p[0], Y: p[1]}
}

// Vec3 converts a 3-tuple to a vector.
func Vec3(p []float64) v3.Vec {
	return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
}

// Slice2 converts a vector to a 2-tuple.
func Slice2(v v2.Vec) []float64 {
	return []float64{v.X, v.Y}
}

// Slice3 converts a vector to a 3-tuple.
func Slice3(v v3.Vec) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// Segment2 is a directed segment in the plane.
type Segment2 struct {
	A, B v2.Vec
}

// Normal returns B-A rotated by -90 degrees, (dy, -dx). For a
// counter-clockwise boundary it points outward.
func (s Segment2) Normal() v2.Vec {
	d := s.B.Sub(s.A)
	return v2.Vec{X: d.Y, Y: -d.X}
}

// Segment3 is a directed segment in space.
type Segment3 struct {
	A, B v3.Vec
}

// Triangle is an ordered vertex triple. Its vertex order fixes the sign of
// its normal.
type Triangle struct {
	A, B, C v3.Vec
}

// Normal returns (B-A)×(C-A).
func (t Triangle) Normal() v3.Vec {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A))
}

// Min returns the component-wise minimum of the three vertices.
func (t Triangle) Min() v3.Vec {
	return t.A.Min(t.B).Min(t.C)
}

// Centroid returns the mean of the three vertices.
func (t Triangle) Centroid() v3.Vec {
	return t.A.Add(t.B).Add(t.C).MulScalar(1.0 / 3.0)
}

// dominantAxis returns the index of the component of n with the largest
// magnitude, preferring the earlier axis on ties.
func dominantAxis(n v3.Vec) int {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ax >= ay && ax >= az:
		return 0
	case ay >= az:
		return 1
	default:
		return 2
	}
}

// drop projects v onto the plane of the two axes other than axis.
func drop(v v3.Vec, axis int) v2.Vec {
	switch axis {
	case 0:
		return v2.Vec{X: v.Y, Y: v.Z}
	case 1:
		return v2.Vec{X: v.X, Y: v.Z}
	default:
		return v2.Vec{X: v.X, Y: v.Y}
	}
}

// Unit2 scales v to unit length. A zero vector is returned unchanged.
func Unit2(v v2.Vec) v2.Vec {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.MulScalar(1 / l)
}

// Unit3 scales v to unit length. A zero vector is returned unchanged.
func Unit3(v v3.Vec) v3.Vec {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.MulScalar(1 / l)
}
