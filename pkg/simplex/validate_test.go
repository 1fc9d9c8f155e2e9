package simplex_test

import (
	"strings"
	"testing"

	"github.com/chazu/simplex/pkg/simplex"
	"github.com/chazu/simplex/pkg/simplex/simplextest"
)

// resultHasCode returns true if r contains at least one error with code.
func resultHasCode(r simplex.ValidationResult, code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

func TestValidateClosedFixtures(t *testing.T) {
	for name, c := range map[string]*simplex.Complex{
		"interval": simplextest.Interval(),
		"square":   simplextest.Square(),
		"cube":     simplextest.Cube(),
		"circle":   simplextest.Circle(16, 2),
		"flipped":  simplextest.Flipped(simplextest.Cube()),
	} {
		t.Run(name, func(t *testing.T) {
			r := simplex.Validate(c)
			if !r.OK() {
				for _, e := range r.Errors {
					t.Logf("  error: %s", e.Error())
				}
				t.Fatal("expected closed complex")
			}
			if !simplex.IsClosed(c) {
				t.Error("IsClosed() = false")
			}
		})
	}
}

func TestValidateOpenSquare(t *testing.T) {
	c := simplextest.Square()
	c.Simplices = c.Simplices[:3]

	r := simplex.Validate(c)
	if !resultHasCode(r, simplex.CodeOpenFace) {
		t.Fatalf("expected %s, got %v", simplex.CodeOpenFace, r.Errors)
	}
	// Vertices 0 and 3 each lose one incident segment.
	if len(r.Errors) != 2 {
		t.Errorf("expected 2 open faces, got %d", len(r.Errors))
	}
}

func TestValidateOpenCube(t *testing.T) {
	c := simplextest.Cube()
	c.Simplices = c.Simplices[1:]

	r := simplex.Validate(c)
	if !resultHasCode(r, simplex.CodeOpenFace) {
		t.Fatalf("expected %s, got %v", simplex.CodeOpenFace, r.Errors)
	}
	if len(r.Errors) != 3 {
		t.Errorf("expected the 3 edges of the removed triangle, got %d", len(r.Errors))
	}
}

func TestValidateDuplicateSimplex(t *testing.T) {
	c := simplextest.Square()
	c.Simplices = append(c.Simplices, []int{1, 0})

	r := simplex.Validate(c)
	if !resultHasCode(r, simplex.CodeDuplicateSimplex) {
		t.Fatalf("expected %s, got %v", simplex.CodeDuplicateSimplex, r.Errors)
	}
	for _, e := range r.Errors {
		if e.Code == simplex.CodeDuplicateSimplex && e.Simplex != 4 {
			t.Errorf("duplicate reported at simplex %d, want 4", e.Simplex)
		}
	}
}

func TestValidateDuplicateVertex(t *testing.T) {
	c := simplextest.Cube()
	c.Simplices[0] = []int{0, 0, 1}

	r := simplex.Validate(c)
	if !resultHasCode(r, simplex.CodeDuplicateVertex) {
		t.Fatalf("expected %s, got %v", simplex.CodeDuplicateVertex, r.Errors)
	}
}

func TestValidateEndpointCount(t *testing.T) {
	c := &simplex.Complex{
		Vertices:  [][]float64{{0}, {1}, {2}},
		Simplices: [][]int{{0}, {1}, {2}},
	}
	r := simplex.Validate(c)
	if !resultHasCode(r, simplex.CodeEndpointCount) {
		t.Fatalf("expected %s, got %v", simplex.CodeEndpointCount, r.Errors)
	}
	if !strings.Contains(r.Errors[0].Error(), "3 endpoints") {
		t.Errorf("unexpected message %q", r.Errors[0].Error())
	}
}

func TestValidateMalformed(t *testing.T) {
	tests := []struct {
		name string
		c    *simplex.Complex
	}{
		{"four indices in 3D", &simplex.Complex{
			Vertices:  simplextest.Cube().Vertices,
			Simplices: [][]int{{0, 1, 2, 3}, {0, 1, 2, 4}},
		}},
		{"index out of range", &simplex.Complex{
			Vertices:  [][]float64{{0, 0}, {1, 0}},
			Simplices: [][]int{{0, 1}, {1, 2}},
		}},
		{"empty vertex table", &simplex.Complex{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := simplex.Validate(tt.c)
			if len(r.Errors) != 1 || r.Errors[0].Code != simplex.CodeMalformed {
				t.Fatalf("Validate() = %v, want one %s error", r.Errors, simplex.CodeMalformed)
			}
			if simplex.IsClosed(tt.c) {
				t.Error("IsClosed() = true for a malformed complex")
			}
		})
	}
}
