package simplex

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a query segment was required to cross
	// the complex but crosses no simplex.
	ErrNotFound = errors.New("no intersection found")

	// ErrUnsupportedDimension is returned for embedding dimensions outside
	// {1, 2, 3}, or when a 2D/3D-only operation is given a 1D complex.
	ErrUnsupportedDimension = errors.New("unsupported dimension")

	// ErrShapeMismatch is returned when batch arrays disagree in length or
	// coordinate dimension, or when a simplex row is malformed.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// NotFoundError reports the query segment that crossed nothing.
type NotFoundError struct {
	Index int
	Start []float64
	End   []float64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("segment %d from %v to %v: %s", e.Index, e.Start, e.End, ErrNotFound)
}

// Unwrap lets errors.Is match ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// DimensionError wraps ErrUnsupportedDimension with the offending value.
func DimensionError(dim int) error {
	return fmt.Errorf("%w: %d", ErrUnsupportedDimension, dim)
}

func shapeErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrShapeMismatch, fmt.Sprintf(format, args...))
}
