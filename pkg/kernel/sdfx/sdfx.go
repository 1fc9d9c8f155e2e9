// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/simplex/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// DefaultCells is the default marching cubes resolution along the longest
// side of a solid's bounding box.
const DefaultCells = 48

// ErrForeignSolid is returned when a solid from another backend is passed
// to this kernel.
var ErrForeignSolid = errors.New("sdfx: solid was not built by this kernel")

// solid wraps an sdf.SDF3 to implement kernel.Solid.
type solid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *solid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Kernel implements kernel.Kernel using sdfx.
type Kernel struct {
	cells int
}

// New returns a Kernel meshing with the given marching cubes resolution.
// Non-positive values select DefaultCells.
func New(cells int) *Kernel {
	if cells <= 0 {
		cells = DefaultCells
	}
	return &Kernel{cells: cells}
}

// Cells returns the marching cubes resolution.
func (k *Kernel) Cells() int {
	return k.cells
}

// invalidSolid stands in for the result of an operation on a foreign solid.
// ToMesh rejects it with ErrForeignSolid.
type invalidSolid struct{}

func (invalidSolid) BoundingBox() (min, max [3]float64) { return }

func unwrap(s kernel.Solid) sdf.SDF3 {
	if w, ok := s.(*solid); ok {
		return w.s
	}
	return nil
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &solid{s: s}
}

// Box creates a box with the given side lengths, centred on the origin.
func (k *Kernel) Box(x, y, z float64) (kernel.Solid, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box: %w", err)
	}
	return wrap(s), nil
}

// Sphere creates a sphere centred on the origin.
func (k *Kernel) Sphere(radius float64) (kernel.Solid, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere: %w", err)
	}
	return wrap(s), nil
}

// Cylinder creates a z-axis cylinder centred on the origin.
func (k *Kernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	return wrap(s), nil
}

// combine applies op to a and b, or returns an invalidSolid when either
// was built elsewhere.
func combine(a, b kernel.Solid, op func(a, b sdf.SDF3) sdf.SDF3) kernel.Solid {
	sa, sb := unwrap(a), unwrap(b)
	if sa == nil || sb == nil {
		return invalidSolid{}
	}
	return wrap(op(sa, sb))
}

// transform applies m to s, or returns an invalidSolid for a foreign s.
func transform(s kernel.Solid, m sdf.M44) kernel.Solid {
	ss := unwrap(s)
	if ss == nil {
		return invalidSolid{}
	}
	return wrap(sdf.Transform3D(ss, m))
}

// Union returns the union of two solids.
func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return combine(a, b, func(a, b sdf.SDF3) sdf.SDF3 { return sdf.Union3D(a, b) })
}

// Difference returns the difference a - b.
func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return combine(a, b, sdf.Difference3D)
}

// Intersection returns the intersection of two solids.
func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return combine(a, b, sdf.Intersect3D)
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return transform(s, sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))
}

// Rotate rotates a solid by Euler angles (degrees) around X, then Y, then Z.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return transform(s, m)
}

// ToMesh converts a solid to a triangle soup using marching cubes. Every
// triangle gets its own three vertices.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)
	if sdf3 == nil {
		return nil, ErrForeignSolid
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	vertices := make([]float64, 0, len(triangles)*9)
	indices := make([]int, 0, len(triangles)*3)

	for i, tri := range triangles {
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, v.X, v.Y, v.Z)
			indices = append(indices, i*3+j)
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Indices:  indices,
	}, nil
}
