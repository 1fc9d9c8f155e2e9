package tessellate

import (
	"math"

	"github.com/chazu/simplex/pkg/kernel"
	"github.com/chazu/simplex/pkg/simplex"
)

type cellKey [3]int64

// welder merges vertices that lie within tol of each other on every axis.
// Vertices are bucketed on a grid of cell size tol, so a match can only be
// in the same or a neighbouring cell.
type welder struct {
	tol   float64
	cell  float64
	grid  map[cellKey][]int
	verts [][]float64
}

func newWelder(tol float64) *welder {
	cell := tol
	if cell <= 0 {
		cell = 1
	}
	return &welder{tol: tol, cell: cell, grid: make(map[cellKey][]int)}
}

func (w *welder) key(p []float64) cellKey {
	return cellKey{
		int64(math.Floor(p[0] / w.cell)),
		int64(math.Floor(p[1] / w.cell)),
		int64(math.Floor(p[2] / w.cell)),
	}
}

// add returns the index of an existing vertex close to p, or appends p.
func (w *welder) add(p []float64) int {
	k := w.key(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, idx := range w.grid[cellKey{k[0] + dx, k[1] + dy, k[2] + dz}] {
					if w.near(w.verts[idx], p) {
						return idx
					}
				}
			}
		}
	}
	idx := len(w.verts)
	w.verts = append(w.verts, []float64{p[0], p[1], p[2]})
	w.grid[k] = append(w.grid[k], idx)
	return idx
}

func (w *welder) near(a, b []float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > w.tol {
			return false
		}
	}
	return true
}

// Weld merges the vertices of m that are closer than tol times the mesh's
// coordinate range and returns the resulting complex. Triangles that
// collapse onto repeated vertices are dropped.
func Weld(m *kernel.Mesh, tol float64) *simplex.Complex {
	w := newWelder(tol * coordRange(m.Vertices))

	remap := make([]int, m.VertexCount())
	for i := range remap {
		remap[i] = w.add(m.Vertex(i))
	}

	var simplices [][]int
	dropped := 0
	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		a, b, c := remap[t[0]], remap[t[1]], remap[t[2]]
		if a == b || b == c || a == c {
			dropped++
			continue
		}
		simplices = append(simplices, []int{a, b, c})
	}

	log.Debugf("welded %d vertices into %d, kept %d of %d triangles",
		m.VertexCount(), len(w.verts), len(simplices), m.TriangleCount())
	if dropped > 0 {
		log.Debugf("dropped %d degenerate triangles", dropped)
	}
	return &simplex.Complex{Vertices: w.verts, Simplices: simplices}
}

// coordRange is the largest coordinate value minus the smallest.
func coordRange(flat []float64) float64 {
	if len(flat) == 0 {
		return 0
	}
	lo, hi := flat[0], flat[0]
	for _, x := range flat {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return hi - lo
}
