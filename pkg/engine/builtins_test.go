package engine

import (
	"strings"
	"testing"

	"github.com/chazu/simplex/pkg/scene"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(sphere :radius 2)`,
			expect: `(sphere "__kw_radius" 2)`,
		},
		{
			name:   "multiple keywords",
			input:  `(cylinder :height 4 :radius 1)`,
			expect: `(cylinder "__kw_height" 4 "__kw_radius" 1)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "keyword in backtick string preserved",
			input:  "`raw :keyword`",
			expect: "`raw :keyword`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(outward-normals)`,
			expect: `(outward_normals)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec -1 -2.5)`,
			expect: `(vec -1 -2.5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:max-depth`,
			expect: `"__kw_max-depth"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// evalScene evaluates source and fails the test on any error.
func evalScene(t *testing.T, source string) *scene.Scene {
	t.Helper()
	s, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if s == nil {
		t.Fatal("expected non-nil scene")
	}
	return s
}

// ---------------------------------------------------------------------------
// Complex tests
// ---------------------------------------------------------------------------

func TestExplicitSquare(t *testing.T) {
	s := evalScene(t, `
(complex
  :vertices (list (vec 0 0) (vec 1 0) (vec 1 1) (vec 0 1))
  :simplices (list (list 0 1) (list 1 2) (list 2 3) (list 3 0)))
`)
	if s.Complex == nil {
		t.Fatal("expected complex to be set")
	}
	if s.Complex.Dim() != 2 {
		t.Errorf("expected 2D complex, got %dD", s.Complex.Dim())
	}
	if s.Complex.Len() != 4 {
		t.Errorf("expected 4 simplices, got %d", s.Complex.Len())
	}
	if got := s.Complex.Vertices[2]; got[0] != 1 || got[1] != 1 {
		t.Errorf("vertex 2 = %v, want [1 1]", got)
	}
	if got := s.Complex.Simplices[3]; got[0] != 3 || got[1] != 0 {
		t.Errorf("simplex 3 = %v, want [3 0]", got)
	}
}

func TestComplexAcceptsArrays(t *testing.T) {
	s := evalScene(t, `
(def pts [[0] [1]])
(complex :vertices pts :simplices [[0] [1]])
`)
	if s.Complex == nil || s.Complex.Dim() != 1 {
		t.Fatalf("expected 1D complex, got %+v", s.Complex)
	}
	if s.Complex.Vertices[1][0] != 1 {
		t.Errorf("vertex 1 = %v, want [1]", s.Complex.Vertices[1])
	}
}

func TestComplexVariableReference(t *testing.T) {
	s := evalScene(t, `
(def side 2.5)
(complex
  :vertices (list (vec 0 0) (vec side 0) (vec side side) (vec 0 side))
  :simplices (list (list 0 1) (list 1 2) (list 2 3) (list 3 0)))
`)
	if got := s.Complex.Vertices[2]; got[0] != 2.5 || got[1] != 2.5 {
		t.Errorf("vertex 2 = %v, want [2.5 2.5]", got)
	}
}

func TestComplexRejectsBadIndex(t *testing.T) {
	s, evalErrs, err := NewEngine().Evaluate(`
(complex :vertices (list (vec 0 0) (vec 1 0)) :simplices (list (list 0 5)))
`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if s != nil {
		t.Fatal("expected nil scene")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected an eval error for out-of-range index")
	}
	if !strings.Contains(evalErrs[0].Message, "complex") {
		t.Errorf("expected error to name the builtin, got %q", evalErrs[0].Message)
	}
}

// ---------------------------------------------------------------------------
// Solid tests
// ---------------------------------------------------------------------------

func TestSolidTree(t *testing.T) {
	s := evalScene(t, `
(def body (box :size (vec 4 4 4)))
(def hole (rotate (cylinder :height 6 :radius 1) (vec 90 0 0)))
(solid (translate (difference body hole) (vec 1 2 3)))
`)
	if s.Solid == nil {
		t.Fatal("expected solid to be set")
	}
	root := s.Solid
	if root.Kind != scene.ShapeTranslate {
		t.Fatalf("root kind = %s, want translate", root.Kind)
	}
	if root.Vec != [3]float64{1, 2, 3} {
		t.Errorf("translate vec = %v", root.Vec)
	}
	diff := root.Children[0]
	if diff.Kind != scene.ShapeDifference || len(diff.Children) != 2 {
		t.Fatalf("expected difference of 2 children, got %s with %d", diff.Kind, len(diff.Children))
	}
	if diff.Children[0].Kind != scene.ShapeBox || diff.Children[0].Vec != [3]float64{4, 4, 4} {
		t.Errorf("first child = %+v, want 4x4x4 box", diff.Children[0])
	}
	rot := diff.Children[1]
	if rot.Kind != scene.ShapeRotate || rot.Vec != [3]float64{90, 0, 0} {
		t.Errorf("second child = %+v, want rotate 90 about x", rot)
	}
	cyl := rot.Children[0]
	if cyl.Kind != scene.ShapeCylinder || cyl.Height != 6 || cyl.Radius != 1 {
		t.Errorf("cylinder = %+v", cyl)
	}
}

func TestSphereAndUnion(t *testing.T) {
	s := evalScene(t, `(solid (union (sphere :radius 1) (sphere :radius 2) (box :size (vec 1 1 1))))`)
	if s.Solid.Kind != scene.ShapeUnion {
		t.Fatalf("root kind = %s, want union", s.Solid.Kind)
	}
	if len(s.Solid.Children) != 3 {
		t.Errorf("expected 3 children, got %d", len(s.Solid.Children))
	}
	if s.Solid.Children[1].Radius != 2 {
		t.Errorf("second sphere radius = %f, want 2", s.Solid.Children[1].Radius)
	}
}

func TestSolidRejectsInvalidShape(t *testing.T) {
	_, evalErrs, err := NewEngine().Evaluate(`(solid (sphere :radius -1))`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected an eval error for negative radius")
	}
}

// ---------------------------------------------------------------------------
// Query tests
// ---------------------------------------------------------------------------

func TestQueriesRecordedInOrder(t *testing.T) {
	s := evalScene(t, `
(complex
  :vertices (list (vec 0 0) (vec 1 0) (vec 1 1) (vec 0 1))
  :simplices (list (list 0 1) (list 1 2) (list 2 3) (list 3 0)))
(contains (vec 0.5 0.5) (list (vec 2 2) (vec -1 0.5)))
(crossings (segment (vec -1 0.5) (vec 2 0.5)))
(intersect (list (segment (vec 0.5 -1) (vec 0.5 0.5)) (segment (vec 2 0.5) (vec 0.5 0.5))))
(volume)
(volume :orient false)
(normals)
(outward-normals)
(upward-normals)
(orient)
(check)
`)
	want := []scene.QueryKind{
		scene.QueryContains,
		scene.QueryCrossings,
		scene.QueryIntersect,
		scene.QueryVolume,
		scene.QueryVolume,
		scene.QueryNormals,
		scene.QueryOutwardNormals,
		scene.QueryUpwardNormals,
		scene.QueryOrient,
		scene.QueryCheck,
	}
	if len(s.Queries) != len(want) {
		t.Fatalf("expected %d queries, got %d", len(want), len(s.Queries))
	}
	for i, k := range want {
		if s.Queries[i].Kind != k {
			t.Errorf("query %d kind = %s, want %s", i, s.Queries[i].Kind, k)
		}
	}

	if pts := s.Queries[0].Points; len(pts) != 3 || pts[2][0] != -1 || pts[2][1] != 0.5 {
		t.Errorf("contains points = %v", pts)
	}
	cross := s.Queries[1]
	if len(cross.Start) != 1 || cross.Start[0][0] != -1 || cross.End[0][0] != 2 {
		t.Errorf("crossings segments = %v -> %v", cross.Start, cross.End)
	}
	if n := len(s.Queries[2].Start); n != 2 {
		t.Errorf("intersect has %d segments, want 2", n)
	}
	if !s.Queries[3].Orient {
		t.Error("(volume) should orient by default")
	}
	if s.Queries[4].Orient {
		t.Error("(volume :orient false) should not orient")
	}
}

func TestPointAsList(t *testing.T) {
	s := evalScene(t, `(contains [0.25 0.75])`)
	pts := s.Queries[0].Points
	if len(pts) != 1 || pts[0][0] != 0.25 || pts[0][1] != 0.75 {
		t.Errorf("points = %v, want [[0.25 0.75]]", pts)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"vec too long", `(vec 1 2 3 4)`, "vec"},
		{"vec not a number", `(vec "a")`, "vec"},
		{"segment mixed dims", `(segment (vec 0 0) (vec 1 1 1))`, "segment"},
		{"segment one point", `(segment (vec 0 0))`, "segment"},
		{"box missing size", `(box)`, "box"},
		{"box wrong size dim", `(box :size (vec 1 1))`, "box"},
		{"cylinder missing radius", `(cylinder :height 2)`, "cylinder"},
		{"union single shape", `(union (sphere :radius 1))`, "union"},
		{"translate not a shape", `(translate 3 (vec 1 0 0))`, "translate"},
		{"crossings not a segment", `(crossings (vec 0 0))`, "crossings"},
		{"volume bad orient", `(volume :orient 1)`, "volume"},
		{"check takes no args", `(check 1)`, "check"},
		{"outward normals takes no args", `(outward-normals 1)`, "outward-normals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if s != nil {
				t.Fatal("expected nil scene on error")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected an eval error")
			}
			if !strings.Contains(evalErrs[0].Message, tt.want) {
				t.Errorf("message = %q, want containing %q", evalErrs[0].Message, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Argument parsing
// ---------------------------------------------------------------------------

func TestSexpStrings(t *testing.T) {
	v := &sexpVec{v: []float64{1, 2.5}}
	if got := v.SexpString(nil); got != "(vec 1 2.5)" {
		t.Errorf("SexpString() = %q", got)
	}
	sh := &sexpShape{shape: scene.Sphere(1)}
	if got := sh.SexpString(nil); got != "(sphere ...)" {
		t.Errorf("SexpString() = %q", got)
	}
}
