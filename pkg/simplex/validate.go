package simplex

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Validation error codes.
const (
	CodeDuplicateVertex  = "DUPLICATE_VERTEX"
	CodeDuplicateSimplex = "DUPLICATE_SIMPLEX"
	CodeOpenFace         = "OPEN_FACE"
	CodeEndpointCount    = "ENDPOINT_COUNT"
	CodeMalformed        = "MALFORMED"
)

// ValidationError describes one closedness violation. Simplex is the index
// of the first simplex involved, or -1 when the problem is global.
type ValidationError struct {
	Code    string
	Message string
	Simplex int
}

func (e ValidationError) Error() string {
	if e.Simplex >= 0 {
		return fmt.Sprintf("%s: %s (simplex: %d)", e.Code, e.Message, e.Simplex)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidationResult collects every violation found by Validate.
type ValidationResult struct {
	Errors []ValidationError
}

// OK reports whether no violations were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// IsClosed reports whether c passes Validate.
func IsClosed(c *Complex) bool {
	return Validate(c).OK()
}

// Validate checks the combinatorial preconditions of parity containment:
// no simplex repeats a vertex, no two simplices share the same vertex set,
// and the complex is closed. In 2D and 3D closed means every (D-1)-face is
// incident to exactly two simplices; in 1D it means exactly two simplices.
//
// A complex that fails Check is reported with a single CodeMalformed error
// and is not inspected further.
//
// Validate is never called by the query operations. Callers run it when
// they cannot vouch for their input.
func Validate(c *Complex) ValidationResult {
	if err := c.Check(); err != nil {
		return ValidationResult{Errors: []ValidationError{{
			Code:    CodeMalformed,
			Message: err.Error(),
			Simplex: -1,
		}}}
	}

	var errs []ValidationError

	errs = append(errs, validateDuplicateVertices(c)...)
	errs = append(errs, validateDuplicateSimplices(c)...)

	if c.Dim() == 1 {
		errs = append(errs, validateEndpoints(c)...)
	} else {
		errs = append(errs, validateFaces(c)...)
	}

	return ValidationResult{Errors: errs}
}

// validateDuplicateVertices flags simplices that list a vertex twice.
func validateDuplicateVertices(c *Complex) []ValidationError {
	var errs []ValidationError
	for i, s := range c.Simplices {
		if dups := lo.FindDuplicates(s); len(dups) > 0 {
			errs = append(errs, ValidationError{
				Code:    CodeDuplicateVertex,
				Message: fmt.Sprintf("simplex repeats vertices %v", dups),
				Simplex: i,
			})
		}
	}
	return errs
}

// faceKey is a sorted tuple of up to three vertex indices, padded with -1.
type faceKey [MaxDim]int

func makeFaceKey(idx []int) faceKey {
	sorted := append([]int(nil), idx...)
	sort.Ints(sorted)
	k := faceKey{-1, -1, -1}
	copy(k[:], sorted)
	return k
}

// validateDuplicateSimplices flags simplices whose vertex set was already
// used by an earlier simplex, regardless of winding.
func validateDuplicateSimplices(c *Complex) []ValidationError {
	var errs []ValidationError
	seen := make(map[faceKey]int)
	for i, s := range c.Simplices {
		key := makeFaceKey(s)
		if first, ok := seen[key]; ok {
			errs = append(errs, ValidationError{
				Code:    CodeDuplicateSimplex,
				Message: fmt.Sprintf("same vertices as simplex %d", first),
				Simplex: i,
			})
			continue
		}
		seen[key] = i
	}
	return errs
}

// validateEndpoints checks that a 1D complex bounds exactly one interval.
func validateEndpoints(c *Complex) []ValidationError {
	if len(c.Simplices) == 2 {
		return nil
	}
	return []ValidationError{{
		Code:    CodeEndpointCount,
		Message: fmt.Sprintf("1D complex has %d endpoints, want 2", len(c.Simplices)),
		Simplex: -1,
	}}
}

// validateFaces counts the simplices incident to every (D-1)-face. Faces
// are reported in order of first appearance so output is deterministic.
func validateFaces(c *Complex) []ValidationError {
	type incidence struct {
		first int
		count int
		face  []int
	}
	counts := make(map[faceKey]*incidence)
	var order []faceKey

	for i, s := range c.Simplices {
		for skip := range s {
			face := make([]int, 0, len(s)-1)
			for j, idx := range s {
				if j != skip {
					face = append(face, idx)
				}
			}
			key := makeFaceKey(face)
			inc, ok := counts[key]
			if !ok {
				inc = &incidence{first: i, face: face}
				counts[key] = inc
				order = append(order, key)
			}
			inc.count++
		}
	}

	var errs []ValidationError
	for _, key := range order {
		inc := counts[key]
		if inc.count == 2 {
			continue
		}
		errs = append(errs, ValidationError{
			Code:    CodeOpenFace,
			Message: fmt.Sprintf("face %v is shared by %d simplices, want 2", inc.face, inc.count),
			Simplex: inc.first,
		})
	}
	return errs
}
