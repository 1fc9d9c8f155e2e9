package main

import (
	"errors"

	"github.com/chazu/simplex/pkg/config"
	"github.com/chazu/simplex/pkg/engine"
	"github.com/chazu/simplex/pkg/scene"
	"github.com/chazu/simplex/pkg/simplex"
)

// App is the command-line backend. It evaluates scene scripts and runs
// queries against complexes with the configured services.
type App struct {
	engine *engine.Engine
	runner *scene.Runner
}

// ComplexData describes the complex a scene resolved to.
type ComplexData struct {
	Dim       int `json:"dim"`
	Vertices  int `json:"vertices"`
	Simplices int `json:"simplices"`
}

// QueryData is the JSON-serializable result of one query.
type QueryData struct {
	Kind      string      `json:"kind"`
	Summary   string      `json:"summary"`
	Inside    []bool      `json:"inside,omitempty"`
	Counts    []int       `json:"counts,omitempty"`
	Indices   []int       `json:"indices,omitempty"`
	Points    [][]float64 `json:"points,omitempty"`
	Normals   [][]float64 `json:"normals,omitempty"`
	Volume    *float64    `json:"volume,omitempty"`
	Simplices [][]int     `json:"simplices,omitempty"`
	Closed    *bool       `json:"closed,omitempty"`
	Problems  []string    `json:"problems,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a scene script.
type EvalResult struct {
	Complex *ComplexData    `json:"complex,omitempty"`
	Queries []QueryData     `json:"queries"`
	Errors  []EvalErrorData `json:"errors"`
}

// NewApp creates an App whose services are built from cfg.
func NewApp(cfg *config.Config) *App {
	caster := cfg.Caster()
	return &App{
		engine: cfg.Evaluator(),
		runner: &scene.Runner{
			Caster:   caster,
			Orienter: cfg.Orienter(caster),
			Mesher:   cfg.Mesher(),
		},
	}
}

// Runner returns the scene runner, whose services also back the direct
// query commands.
func (a *App) Runner() *scene.Runner {
	return a.runner
}

// Evaluate takes scene script source and returns the answer to every query
// it declares.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Queries: []QueryData{},
		Errors:  []EvalErrorData{},
	}

	// Step 1: Evaluate the script into a scene.
	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Errorf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Report script errors.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// A script that declares nothing is valid and has nothing to report.
	if s.Complex == nil && s.Solid == nil && len(s.Queries) == 0 {
		return result
	}

	// Step 3: Resolve the complex and run the queries.
	c, results, err := a.runner.Run(s)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, scene.ErrNoComplex) {
			msg = "queries need a (complex ...) or (solid ...) to run against"
		}
		log.Errorf("Run error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: msg})
		return result
	}

	// Step 4: Convert query results to the output format.
	result.Complex = describe(c)
	for _, r := range results {
		result.Queries = append(result.Queries, queryData(r))
	}
	return result
}

func describe(c *simplex.Complex) *ComplexData {
	return &ComplexData{Dim: c.Dim(), Vertices: len(c.Vertices), Simplices: c.Len()}
}

func queryData(r scene.Result) QueryData {
	q := QueryData{
		Kind:      r.Query.Kind.String(),
		Summary:   r.Summary(),
		Inside:    r.Inside,
		Counts:    r.Counts,
		Indices:   r.Indices,
		Points:    r.Points,
		Normals:   r.Normals,
		Simplices: r.Simplices,
	}
	if r.Err != nil {
		q.Error = r.Err.Error()
		return q
	}
	switch r.Query.Kind {
	case scene.QueryVolume:
		v := r.Volume
		q.Volume = &v
	case scene.QueryCheck:
		closed := r.Validation.OK()
		q.Closed = &closed
		for _, e := range r.Validation.Errors {
			q.Problems = append(q.Problems, e.Error())
		}
	}
	return q
}
