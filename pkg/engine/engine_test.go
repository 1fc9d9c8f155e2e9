package engine

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chazu/simplex/pkg/scene"
)

const interval = `
(complex :vertices (list (vec 0) (vec 2)) :simplices (list (list 0) (list 1)))
`

func TestEvaluateBlankSource(t *testing.T) {
	for name, source := range map[string]string{
		"empty":        "",
		"whitespace":   "   \n\t  \n  ",
		"comment only": "; nothing to see\n",
	} {
		t.Run(name, func(t *testing.T) {
			s, evalErrs, err := NewEngine().Evaluate(source)
			if err != nil {
				t.Fatalf("unexpected fatal error: %v", err)
			}
			if len(evalErrs) > 0 {
				t.Fatalf("unexpected eval errors: %v", evalErrs)
			}
			if s == nil || s.Complex != nil || s.Solid != nil || len(s.Queries) != 0 {
				t.Errorf("expected empty scene, got %+v", s)
			}
		})
	}
}

func TestEvaluateScript(t *testing.T) {
	source := `
(def n 3)
(def pts (list (vec 0 0) (vec n 0) (vec n n) (vec 0 n)))
(complex :vertices pts :simplices (list (list 0 1) (list 1 2) (list 2 3) (list 3 0)))
(contains (vec 1 1) (vec (+ n 1) 1))
(volume)
`
	s, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if s.Complex == nil || s.Complex.Len() != 4 || s.Complex.Vertices[2][0] != 3 {
		t.Fatalf("complex = %+v, want the 3x3 square", s.Complex)
	}
	if len(s.Queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(s.Queries))
	}
	if q := s.Queries[0]; q.Kind != scene.QueryContains || q.Points[1][0] != 4 {
		t.Errorf("query 0 = %+v, want contains with computed point", q)
	}
	if q := s.Queries[1]; q.Kind != scene.QueryVolume || !q.Orient {
		t.Errorf("query 1 = %+v, want oriented volume", q)
	}
}

func TestEvaluateFreshSandbox(t *testing.T) {
	eng := NewEngine()

	first, _, err := eng.Evaluate("(def side 2)\n" + interval + "(volume)")
	if err != nil || first.Complex == nil {
		t.Fatalf("first evaluation: scene %+v, error %v", first, err)
	}

	// Neither the complex nor the definitions carry over.
	second, evalErrs, err := eng.Evaluate("(volume)")
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("second evaluation: %v %v", evalErrs, err)
	}
	if second.Complex != nil || len(second.Queries) != 1 {
		t.Errorf("second scene = %+v, want one query and no complex", second)
	}

	_, evalErrs, err = eng.Evaluate("(contains (vec side))")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Error("expected eval error for a symbol defined in an earlier evaluation")
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unclosed complex", "(complex :vertices"},
		{"undefined symbol", interval + "(contains (vec missing-point))"},
		{"bad builtin argument", "(contains (vec 1 2 3 4))"},
		{"error on second line", "(check)\n(volume :orient"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if s != nil {
				t.Errorf("expected nil scene, got %+v", s)
			}
			if len(evalErrs) == 0 || evalErrs[0].Message == "" {
				t.Fatalf("expected a populated eval error, got %v", evalErrs)
			}
		})
	}
}

func TestEvalErrorString(t *testing.T) {
	tests := []struct {
		err  EvalError
		want string
	}{
		{EvalError{Line: 5, Message: "unbalanced parens"}, "line 5: unbalanced parens"},
		{EvalError{Message: "no location"}, "no location"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestEngineTimeout(t *testing.T) {
	if got := NewEngine().Timeout(); got != DefaultTimeout {
		t.Errorf("NewEngine().Timeout() = %s, want %s", got, DefaultTimeout)
	}
	if got := New(0).Timeout(); got != DefaultTimeout {
		t.Errorf("New(0).Timeout() = %s, want %s", got, DefaultTimeout)
	}
	if got := New(250 * time.Millisecond).Timeout(); got != 250*time.Millisecond {
		t.Errorf("New(250ms).Timeout() = %s", got)
	}
}

func TestWaitTimesOut(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(1)
	ch := make(chan evalResult)

	start := time.Now()
	_, _, err := waitWithTimeout(ch, 20*time.Millisecond, 1, &mu, &gen)
	if err == nil || !strings.Contains(err.Error(), "timed out after 20ms") {
		t.Fatalf("error = %v, want timeout after 20ms", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("waited %s for a 20ms timeout", elapsed)
	}
}

func TestWaitDiscardsSuperseded(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)

	ch := make(chan evalResult, 1)
	ch <- evalResult{scene: &scene.Scene{}}

	_, _, err := waitWithTimeout(ch, time.Second, 1, &mu, &gen)
	if err == nil || !strings.Contains(err.Error(), "superseded") {
		t.Fatalf("error = %v, want superseded", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short form", "line 3: bad token", 3, "bad token"},
		{"no line", "contains: point has 4 coordinates", 0, "point has 4 coordinates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) != 1 {
				t.Fatalf("expected one error, got %v", errs)
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
			if !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }
