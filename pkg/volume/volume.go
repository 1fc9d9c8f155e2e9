// Package volume computes the length, area or volume enclosed by a closed
// simplicial complex.
package volume

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/simplex/pkg/orient"
	"github.com/chazu/simplex/pkg/simplex"
)

var log = simplex.Logger("volume")

// Orienter produces a consistently outward-oriented copy of a complex.
type Orienter interface {
	Oriented(c *simplex.Complex) (*simplex.Complex, error)
}

// Volume returns the measure enclosed by c: length in 1D, area in 2D,
// volume in 3D. With orientFirst the simplices are oriented by
// orient.Default before integrating.
func Volume(c *simplex.Complex, orientFirst bool) (float64, error) {
	if orientFirst {
		return Compute(c, orient.Default)
	}
	return Compute(c, nil)
}

// Compute orients c with o, if o is not nil, and integrates it.
//
// In 2D and 3D each simplex contributes the signed volume of the cone from
// the vertex centroid to the simplex, det(v0, ..., vD-1)/D!. The sum is the
// enclosed volume only when every normal points outward; without
// orientation the result may be negative or meaningless.
//
// In 1D the simplex vertices are sorted and paired off as entry and exit
// points, so orientation does not apply.
func Compute(c *simplex.Complex, o Orienter) (float64, error) {
	if err := c.Check(); err != nil {
		return 0, err
	}
	if c.Dim() == 1 {
		return length(c), nil
	}
	if o != nil {
		oc, err := o.Oriented(c)
		if err != nil {
			return 0, err
		}
		c = oc
	}

	verts := centered(c.Vertices)
	var sum float64
	switch c.Dim() {
	case 2:
		for _, s := range c.Simplices {
			m := mgl64.Mat2FromRows(vec2(verts[s[0]]), vec2(verts[s[1]]))
			sum += m.Det()
		}
		sum /= 2
	case 3:
		for _, s := range c.Simplices {
			m := mgl64.Mat3FromRows(vec3(verts[s[0]]), vec3(verts[s[1]]), vec3(verts[s[2]]))
			sum += m.Det()
		}
		sum /= 6
	}
	log.Debugf("volume of %d simplices in %dD: %g", c.Len(), c.Dim(), sum)
	return sum, nil
}

// length pairs sorted boundary points, subtracting every entry point from
// the following exit point.
func length(c *simplex.Complex) float64 {
	xs := make([]float64, 0, c.Len())
	for _, s := range c.Simplices {
		xs = append(xs, c.Vertices[s[0]][0])
	}
	sort.Float64s(xs)

	var sum float64
	for i, x := range xs {
		if i%2 == 0 {
			sum -= x
		} else {
			sum += x
		}
	}
	return math.Abs(sum)
}

// centered returns a copy of verts translated so that their mean is the
// origin.
func centered(verts [][]float64) [][]float64 {
	dim := len(verts[0])
	mean := make([]float64, dim)
	for _, v := range verts {
		for k, x := range v {
			mean[k] += x
		}
	}
	for k := range mean {
		mean[k] /= float64(len(verts))
	}

	out := make([][]float64, len(verts))
	for i, v := range verts {
		out[i] = make([]float64, dim)
		for k, x := range v {
			out[i][k] = x - mean[k]
		}
	}
	return out
}

func vec2(p []float64) mgl64.Vec2 {
	return mgl64.Vec2{p[0], p[1]}
}

func vec3(p []float64) mgl64.Vec3 {
	return mgl64.Vec3{p[0], p[1], p[2]}
}
