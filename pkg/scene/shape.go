package scene

import "fmt"

// ShapeKind identifies the type of a Shape node.
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapeCylinder
	ShapeUnion
	ShapeDifference
	ShapeIntersection
	ShapeTranslate
	ShapeRotate
)

var shapeKindNames = [...]string{
	ShapeBox:          "box",
	ShapeSphere:       "sphere",
	ShapeCylinder:     "cylinder",
	ShapeUnion:        "union",
	ShapeDifference:   "difference",
	ShapeIntersection: "intersection",
	ShapeTranslate:    "translate",
	ShapeRotate:       "rotate",
}

func (k ShapeKind) String() string {
	if k >= 0 && int(k) < len(shapeKindNames) {
		return shapeKindNames[k]
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

// Shape is a node in a constructive solid tree. Leaves are primitives
// centred on the origin; inner nodes combine or transform their children.
type Shape struct {
	Kind ShapeKind

	// Vec is the box size, the translation offset or the rotation angles
	// in degrees, depending on Kind.
	Vec [3]float64

	Radius float64 // sphere, cylinder
	Height float64 // cylinder

	Children []*Shape
}

// Box returns a box primitive with the given side lengths.
func Box(x, y, z float64) *Shape {
	return &Shape{Kind: ShapeBox, Vec: [3]float64{x, y, z}}
}

// Sphere returns a sphere primitive.
func Sphere(radius float64) *Shape {
	return &Shape{Kind: ShapeSphere, Radius: radius}
}

// Cylinder returns a z-axis cylinder primitive.
func Cylinder(height, radius float64) *Shape {
	return &Shape{Kind: ShapeCylinder, Height: height, Radius: radius}
}

// Union combines two or more shapes.
func Union(shapes ...*Shape) *Shape {
	return &Shape{Kind: ShapeUnion, Children: shapes}
}

// Difference subtracts every shape after the first from the first.
func Difference(shapes ...*Shape) *Shape {
	return &Shape{Kind: ShapeDifference, Children: shapes}
}

// Intersection keeps the region common to all shapes.
func Intersection(shapes ...*Shape) *Shape {
	return &Shape{Kind: ShapeIntersection, Children: shapes}
}

// Translate moves s by v.
func Translate(s *Shape, v [3]float64) *Shape {
	return &Shape{Kind: ShapeTranslate, Vec: v, Children: []*Shape{s}}
}

// Rotate rotates s by Euler angles v, in degrees.
func Rotate(s *Shape, v [3]float64) *Shape {
	return &Shape{Kind: ShapeRotate, Vec: v, Children: []*Shape{s}}
}

// Check verifies that primitive parameters are positive and that every
// operator has the children it needs.
func (s *Shape) Check() error {
	switch s.Kind {
	case ShapeBox:
		if s.Vec[0] <= 0 || s.Vec[1] <= 0 || s.Vec[2] <= 0 {
			return fmt.Errorf("box: size %v must be positive", s.Vec)
		}
	case ShapeSphere:
		if s.Radius <= 0 {
			return fmt.Errorf("sphere: radius %g must be positive", s.Radius)
		}
	case ShapeCylinder:
		if s.Radius <= 0 || s.Height <= 0 {
			return fmt.Errorf("cylinder: height %g and radius %g must be positive", s.Height, s.Radius)
		}
	case ShapeUnion, ShapeDifference, ShapeIntersection:
		if len(s.Children) < 2 {
			return fmt.Errorf("%s: needs at least 2 shapes, got %d", s.Kind, len(s.Children))
		}
	case ShapeTranslate, ShapeRotate:
		if len(s.Children) != 1 {
			return fmt.Errorf("%s: needs exactly 1 shape, got %d", s.Kind, len(s.Children))
		}
	default:
		return fmt.Errorf("unknown shape kind %v", s.Kind)
	}
	for _, c := range s.Children {
		if c == nil {
			return fmt.Errorf("%s: nil child", s.Kind)
		}
		if err := c.Check(); err != nil {
			return err
		}
	}
	return nil
}
