// Package tessellate builds a constructive solid with a geometry kernel,
// meshes it and welds the mesh into a closed 3D simplicial complex.
package tessellate

import (
	"fmt"

	"github.com/chazu/simplex/pkg/kernel"
	"github.com/chazu/simplex/pkg/scene"
	"github.com/chazu/simplex/pkg/simplex"
)

var log = simplex.Logger("tessellate")

// DefaultWeld is the default weld tolerance as a fraction of the mesh's
// coordinate range.
const DefaultWeld = 1e-9

// Mesher implements scene.Mesher on top of a kernel.
type Mesher struct {
	Kernel kernel.Kernel
	Weld   float64
}

// Compile-time interface check.
var _ scene.Mesher = (*Mesher)(nil)

// Complex builds, meshes and welds s.
func (m *Mesher) Complex(s *scene.Shape) (*simplex.Complex, error) {
	return Complex(m.Kernel, s, m.Weld)
}

// Complex builds s with k, meshes it and welds vertices closer than weld
// times the mesh's coordinate range.
func Complex(k kernel.Kernel, s *scene.Shape, weld float64) (*simplex.Complex, error) {
	solid, err := Solid(k, s)
	if err != nil {
		return nil, err
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed: %w", err)
	}
	if mesh.IsEmpty() {
		return nil, fmt.Errorf("tessellate: %s produced an empty mesh", s.Kind)
	}
	return Weld(mesh, weld), nil
}

// Solid walks the shape tree bottom-up and returns the kernel solid it
// describes. The tree is never mutated.
func Solid(k kernel.Kernel, s *scene.Shape) (kernel.Solid, error) {
	switch s.Kind {
	case scene.ShapeBox:
		return wrapErr(k.Box(s.Vec[0], s.Vec[1], s.Vec[2]))
	case scene.ShapeSphere:
		return wrapErr(k.Sphere(s.Radius))
	case scene.ShapeCylinder:
		return wrapErr(k.Cylinder(s.Height, s.Radius))

	case scene.ShapeUnion, scene.ShapeDifference, scene.ShapeIntersection:
		return handleBoolean(k, s)

	case scene.ShapeTranslate, scene.ShapeRotate:
		return handleTransform(k, s)

	default:
		return nil, fmt.Errorf("tessellate: unknown shape kind: %v", s.Kind)
	}
}

func wrapErr(s kernel.Solid, err error) (kernel.Solid, error) {
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	return s, nil
}

// handleBoolean folds the children of a boolean node left to right.
func handleBoolean(k kernel.Kernel, s *scene.Shape) (kernel.Solid, error) {
	if len(s.Children) == 0 {
		return nil, fmt.Errorf("tessellate: %s has no children", s.Kind)
	}
	acc, err := Solid(k, s.Children[0])
	if err != nil {
		return nil, err
	}
	for _, child := range s.Children[1:] {
		next, err := Solid(k, child)
		if err != nil {
			return nil, err
		}
		switch s.Kind {
		case scene.ShapeUnion:
			acc = k.Union(acc, next)
		case scene.ShapeDifference:
			acc = k.Difference(acc, next)
		default:
			acc = k.Intersection(acc, next)
		}
	}
	return acc, nil
}

// handleTransform applies a translation or rotation to the single child.
func handleTransform(k kernel.Kernel, s *scene.Shape) (kernel.Solid, error) {
	if len(s.Children) != 1 {
		return nil, fmt.Errorf("tessellate: %s needs exactly one child, got %d", s.Kind, len(s.Children))
	}
	child, err := Solid(k, s.Children[0])
	if err != nil {
		return nil, err
	}
	v := s.Vec
	if s.Kind == scene.ShapeTranslate {
		return k.Translate(child, v[0], v[1], v[2]), nil
	}
	return k.Rotate(child, v[0], v[1], v[2]), nil
}
