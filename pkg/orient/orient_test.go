package orient

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/chazu/simplex/pkg/raycast"
	"github.com/chazu/simplex/pkg/simplex"
	"github.com/chazu/simplex/pkg/simplex/simplextest"
)

func TestSimplicesIdempotent(t *testing.T) {
	for name, c := range map[string]*simplex.Complex{
		"square": simplextest.Square(),
		"cube":   simplextest.Cube(),
		"circle": simplextest.Circle(24, 3),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := Simplices(c)
			if err != nil {
				t.Fatalf("Simplices() error = %v", err)
			}
			if !reflect.DeepEqual(got, c.Simplices) {
				t.Errorf("Simplices() changed an outward complex:\n got %v\nwant %v", got, c.Simplices)
			}
		})
	}
}

func TestSimplicesRepairsWinding(t *testing.T) {
	tests := []struct {
		name string
		in   *simplex.Complex
		want *simplex.Complex
	}{
		{"flipped square", simplextest.Flipped(simplextest.Square()), simplextest.Square()},
		{"reversed square", simplextest.Reversed(simplextest.Square()), simplextest.Square()},
		{"flipped cube", simplextest.Flipped(simplextest.Cube()), simplextest.Cube()},
		{"reversed cube", simplextest.Reversed(simplextest.Cube()), simplextest.Cube()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.in.CloneSimplices()
			got, err := Simplices(tt.in)
			if err != nil {
				t.Fatalf("Simplices() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want.Simplices) {
				t.Errorf("Simplices() =\n%v\nwant\n%v", got, tt.want.Simplices)
			}
			if !reflect.DeepEqual(before, tt.in.Simplices) {
				t.Error("Simplices() modified its input")
			}
		})
	}
}

func TestSimplicesLargeScale(t *testing.T) {
	c := simplextest.Cube()
	for _, v := range c.Vertices {
		for k := range v {
			v[k] = v[k]*1e4 - 5e3
		}
	}
	got, err := Simplices(simplextest.Flipped(c))
	if err != nil {
		t.Fatalf("Simplices() error = %v", err)
	}
	if !reflect.DeepEqual(got, c.Simplices) {
		t.Errorf("Simplices() =\n%v\nwant\n%v", got, c.Simplices)
	}
}

func TestSimplices1D(t *testing.T) {
	c := &simplex.Complex{
		Vertices:  [][]float64{{0}, {1}},
		Simplices: [][]int{{1}, {0}},
	}
	got, err := Simplices(c)
	if err != nil {
		t.Fatalf("Simplices() error = %v", err)
	}
	if !reflect.DeepEqual(got, c.Simplices) {
		t.Errorf("Simplices() = %v, want unchanged", got)
	}
}

func TestNormals(t *testing.T) {
	got, err := Normals(simplextest.Square())
	if err != nil {
		t.Fatalf("Normals() error = %v", err)
	}
	want := [][]float64{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	for i := range want {
		for k := range want[i] {
			if math.Abs(got[i][k]-want[i][k]) > 1e-12 {
				t.Errorf("Normals()[%d] = %v, want %v", i, got[i], want[i])
				break
			}
		}
	}

	if _, err := Normals(simplextest.Interval()); !errors.Is(err, simplex.ErrUnsupportedDimension) {
		t.Errorf("Normals() 1D error = %v, want ErrUnsupportedDimension", err)
	}
	if _, err := OutwardNormals(simplextest.Interval()); !errors.Is(err, simplex.ErrUnsupportedDimension) {
		t.Errorf("OutwardNormals() 1D error = %v, want ErrUnsupportedDimension", err)
	}
}

func TestOutwardNormalsPointAway(t *testing.T) {
	c := simplextest.Flipped(simplextest.Cube())
	normals, err := OutwardNormals(c)
	if err != nil {
		t.Fatalf("OutwardNormals() error = %v", err)
	}
	for i, n := range normals {
		// For the unit cube an outward normal points from the centre
		// toward the face.
		cen := centroid(c.Points(i))
		dot := 0.0
		for k := range n {
			dot += n[k] * (cen[k] - 0.5)
		}
		if dot <= 0 {
			t.Errorf("normal %d = %v points inward", i, n)
		}
		if l := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]); math.Abs(l-1) > 1e-12 {
			t.Errorf("normal %d has length %v", i, l)
		}
	}
}

func TestUpwardNormals(t *testing.T) {
	normals, err := UpwardNormals(simplextest.Cube())
	if err != nil {
		t.Fatalf("UpwardNormals() error = %v", err)
	}
	for i, n := range normals {
		if n[2] < 0 {
			t.Errorf("normal %d = %v points down", i, n)
		}
	}
	// The bottom face now points up.
	if math.Abs(normals[0][2]-1) > 1e-12 {
		t.Errorf("bottom normal = %v, want (0, 0, 1)", normals[0])
	}
}

// fixedOracle reports every point as inside.
type fixedOracle struct{ calls int }

func (f *fixedOracle) Contains(pts [][]float64, c *simplex.Complex) ([]bool, error) {
	f.calls++
	out := make([]bool, len(pts))
	for i := range out {
		out[i] = true
	}
	return out, nil
}

func TestOrienterUsesOracle(t *testing.T) {
	oracle := &fixedOracle{}
	got, err := New(oracle, DefaultPerturbation).Simplices(simplextest.Square())
	if err != nil {
		t.Fatalf("Simplices() error = %v", err)
	}
	if oracle.calls != 1 {
		t.Errorf("oracle called %d times, want 1", oracle.calls)
	}
	if !reflect.DeepEqual(got, simplextest.Reversed(simplextest.Square()).Simplices) {
		t.Errorf("Simplices() = %v, want every simplex flipped", got)
	}
}

func TestOrienterParallelOracle(t *testing.T) {
	opts := raycast.DefaultOptions()
	opts.Workers = 4
	o := New(raycast.New(opts), DefaultPerturbation)

	got, err := o.Simplices(simplextest.Flipped(simplextest.Circle(40, 2)))
	if err != nil {
		t.Fatalf("Simplices() error = %v", err)
	}
	if !reflect.DeepEqual(got, simplextest.Circle(40, 2).Simplices) {
		t.Errorf("Simplices() did not restore counter-clockwise winding")
	}
}
