// Package simplex defines simplicial complexes: a shared vertex table plus a
// sequence of fixed-arity simplices that index into it. A complex in
// dimension D has D-tuple vertices and simplices of D indices: single
// vertices in 1D, segments in 2D and triangles in 3D.
//
// Complexes are read-only inputs. Operations that reorder simplices return a
// new Complex that shares the vertex table with the original.
package simplex

import "math"

// MaxDim is the largest supported embedding dimension.
const MaxDim = 3

// Complex is a vertex table plus simplices indexing into it.
type Complex struct {
	Vertices  [][]float64 `json:"vertices"`
	Simplices [][]int     `json:"simplices"`
}

// New checks the shape of vertices and simplices and returns a Complex.
// Every vertex must have the same dimension D in {1, 2, 3}, every simplex
// must have exactly D indices, and every index must address a vertex.
// Closedness is not checked here; see Validate.
func New(vertices [][]float64, simplices [][]int) (*Complex, error) {
	c := &Complex{Vertices: vertices, Simplices: simplices}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// Check verifies the shape invariants documented on New.
func (c *Complex) Check() error {
	if len(c.Vertices) == 0 {
		return shapeErrorf("empty vertex table")
	}
	dim := len(c.Vertices[0])
	if dim < 1 || dim > MaxDim {
		return DimensionError(dim)
	}
	for i, v := range c.Vertices {
		if len(v) != dim {
			return shapeErrorf("vertex %d has %d coordinates, want %d", i, len(v), dim)
		}
	}
	for i, s := range c.Simplices {
		if len(s) != dim {
			return shapeErrorf("simplex %d has %d indices, want %d", i, len(s), dim)
		}
		for _, idx := range s {
			if idx < 0 || idx >= len(c.Vertices) {
				return shapeErrorf("simplex %d references vertex %d, table has %d", i, idx, len(c.Vertices))
			}
		}
	}
	return nil
}

// Dim returns the embedding dimension, or 0 for an empty vertex table.
func (c *Complex) Dim() int {
	if len(c.Vertices) == 0 {
		return 0
	}
	return len(c.Vertices[0])
}

// Len returns the number of simplices.
func (c *Complex) Len() int {
	return len(c.Simplices)
}

// Points returns the coordinates of simplex i's vertices, in index order.
// The returned rows alias the vertex table.
func (c *Complex) Points(i int) [][]float64 {
	s := c.Simplices[i]
	pts := make([][]float64, len(s))
	for j, idx := range s {
		pts[j] = c.Vertices[idx]
	}
	return pts
}

// WithSimplices returns a complex sharing c's vertex table with a different
// simplex sequence.
func (c *Complex) WithSimplices(simplices [][]int) *Complex {
	return &Complex{Vertices: c.Vertices, Simplices: simplices}
}

// CloneSimplices returns a deep copy of the simplex sequence.
func (c *Complex) CloneSimplices() [][]int {
	out := make([][]int, len(c.Simplices))
	for i, s := range c.Simplices {
		out[i] = append([]int(nil), s...)
	}
	return out
}

// Bounds returns the component-wise minimum and maximum over all vertices.
func (c *Complex) Bounds() (min, max []float64) {
	dim := c.Dim()
	min = make([]float64, dim)
	max = make([]float64, dim)
	for k := 0; k < dim; k++ {
		min[k] = math.Inf(1)
		max[k] = math.Inf(-1)
	}
	for _, v := range c.Vertices {
		for k, x := range v {
			min[k] = math.Min(min[k], x)
			max[k] = math.Max(max[k], x)
		}
	}
	return min, max
}

// Scale is the largest coordinate value minus the smallest coordinate value
// over every vertex and every axis. It is used to make epsilons relative to
// the size of the input.
func (c *Complex) Scale() float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range c.Vertices {
		for _, x := range v {
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
		}
	}
	if len(c.Vertices) == 0 {
		return 0
	}
	return hi - lo
}

// CheckBatch verifies that a batch of points all have dimension dim.
func CheckBatch(name string, pts [][]float64, dim int) error {
	for i, p := range pts {
		if len(p) != dim {
			return shapeErrorf("%s %d has %d coordinates, want %d", name, i, len(p), dim)
		}
	}
	return nil
}

// CheckSegments verifies that start and end batches have equal length and
// that every point has dimension dim.
func CheckSegments(start, end [][]float64, dim int) error {
	if len(start) != len(end) {
		return shapeErrorf("%d start points but %d end points", len(start), len(end))
	}
	if err := CheckBatch("start point", start, dim); err != nil {
		return err
	}
	return CheckBatch("end point", end, dim)
}
