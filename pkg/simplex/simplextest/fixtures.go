// Package simplextest provides small closed complexes for tests.
package simplextest

import (
	"math"

	"github.com/chazu/simplex/pkg/simplex"
)

// Interval is the 1D complex bounding [0, 1].
func Interval() *simplex.Complex {
	return &simplex.Complex{
		Vertices:  [][]float64{{0}, {1}},
		Simplices: [][]int{{0}, {1}},
	}
}

// Square is the counter-clockwise unit square, whose right-hand normals
// point outward.
func Square() *simplex.Complex {
	return &simplex.Complex{
		Vertices:  [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Simplices: [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
	}
}

// Cube is the 12-triangle unit cube [0,1]^3 with outward normals.
// Vertex i sits at (i&1, i>>1&1, i>>2&1).
func Cube() *simplex.Complex {
	var verts [][]float64
	for i := 0; i < 8; i++ {
		verts = append(verts, []float64{float64(i & 1), float64(i >> 1 & 1), float64(i >> 2 & 1)})
	}
	return &simplex.Complex{
		Vertices: verts,
		Simplices: [][]int{
			{0, 2, 1}, {1, 2, 3}, // z = 0
			{4, 5, 6}, {5, 7, 6}, // z = 1
			{0, 1, 4}, {1, 5, 4}, // y = 0
			{2, 6, 3}, {3, 6, 7}, // y = 1
			{0, 4, 2}, {2, 4, 6}, // x = 0
			{1, 3, 5}, {3, 7, 5}, // x = 1
		},
	}
}

// Circle is a counter-clockwise regular n-gon of the given radius centred
// at the origin.
func Circle(n int, radius float64) *simplex.Complex {
	c := &simplex.Complex{}
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		c.Vertices = append(c.Vertices, []float64{radius * math.Cos(theta), radius * math.Sin(theta)})
		c.Simplices = append(c.Simplices, []int{i, (i + 1) % n})
	}
	return c
}

// Flipped returns a copy of c with the first two indices of every simplex
// at an odd position swapped, so that half of the normals point inward.
func Flipped(c *simplex.Complex) *simplex.Complex {
	s := c.CloneSimplices()
	for i := range s {
		if i%2 == 1 && len(s[i]) >= 2 {
			s[i][0], s[i][1] = s[i][1], s[i][0]
		}
	}
	return c.WithSimplices(s)
}

// Reversed returns a copy of c with every simplex flipped.
func Reversed(c *simplex.Complex) *simplex.Complex {
	s := c.CloneSimplices()
	for i := range s {
		if len(s[i]) >= 2 {
			s[i][0], s[i][1] = s[i][1], s[i][0]
		}
	}
	return c.WithSimplices(s)
}
