// Package scene describes a batch of ray-casting queries against one
// complex and runs them. The complex is given either explicitly or as a
// constructive solid that is meshed on demand.
package scene

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/chazu/simplex/pkg/orient"
	"github.com/chazu/simplex/pkg/raycast"
	"github.com/chazu/simplex/pkg/simplex"
	"github.com/chazu/simplex/pkg/volume"
)

var log = simplex.Logger("scene")

// ErrNoComplex is returned when a scene defines neither a complex nor a
// solid.
var ErrNoComplex = errors.New("scene: no complex or solid defined")

// QueryKind identifies a query.
type QueryKind int

const (
	QueryContains QueryKind = iota
	QueryCrossings
	QueryIntersect
	QueryVolume
	QueryNormals
	QueryOutwardNormals
	QueryUpwardNormals
	QueryOrient
	QueryCheck
)

var queryKindNames = [...]string{
	QueryContains:       "contains",
	QueryCrossings:      "crossings",
	QueryIntersect:      "intersect",
	QueryVolume:         "volume",
	QueryNormals:        "normals",
	QueryOutwardNormals: "outward-normals",
	QueryUpwardNormals:  "upward-normals",
	QueryOrient:         "orient",
	QueryCheck:          "check",
}

func (k QueryKind) String() string {
	if k >= 0 && int(k) < len(queryKindNames) {
		return queryKindNames[k]
	}
	return fmt.Sprintf("QueryKind(%d)", int(k))
}

// Query is one request against the scene's complex.
type Query struct {
	Kind QueryKind

	Points     [][]float64 // contains
	Start, End [][]float64 // crossings, intersect
	Orient     bool        // volume
}

// Scene is a complex source plus the queries to run against it. When both
// Complex and Solid are set, Complex wins.
type Scene struct {
	Complex *simplex.Complex
	Solid   *Shape
	Queries []Query
}

// Result holds the answer to one query. Only the fields relevant to the
// query kind are set. Err records a failure of this query alone.
type Result struct {
	Query Query

	Inside     []bool
	Counts     []int
	Indices    []int
	Points     [][]float64
	Normals    [][]float64
	Volume     float64
	Simplices  [][]int
	Validation *simplex.ValidationResult

	Err error
}

// Summary returns a one-line description of the result.
func (r Result) Summary() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: error: %v", r.Query.Kind, r.Err)
	}
	switch r.Query.Kind {
	case QueryContains:
		in := lo.CountBy(r.Inside, func(b bool) bool { return b })
		return fmt.Sprintf("contains: %d of %d points inside", in, len(r.Inside))
	case QueryCrossings:
		odd := lo.CountBy(r.Counts, func(n int) bool { return n%2 == 1 })
		return fmt.Sprintf("crossings: %d segments, %d with odd counts", len(r.Counts), odd)
	case QueryIntersect:
		return fmt.Sprintf("intersect: %d segments hit simplices %v", len(r.Indices), lo.Uniq(r.Indices))
	case QueryVolume:
		return fmt.Sprintf("volume: %g", r.Volume)
	case QueryNormals, QueryOutwardNormals, QueryUpwardNormals:
		return fmt.Sprintf("%s: %d normals", r.Query.Kind, len(r.Normals))
	case QueryOrient:
		return fmt.Sprintf("orient: %d simplices", len(r.Simplices))
	case QueryCheck:
		if r.Validation.OK() {
			return "check: closed"
		}
		return fmt.Sprintf("check: %d problems", len(r.Validation.Errors))
	}
	return r.Query.Kind.String()
}

// Mesher turns a constructive solid into a closed 3D complex.
type Mesher interface {
	Complex(s *Shape) (*simplex.Complex, error)
}

// Runner executes scenes.
type Runner struct {
	Caster   *raycast.Caster
	Orienter *orient.Orienter
	Mesher   Mesher
}

// NewRunner returns a Runner using the default caster and orienter.
func NewRunner(m Mesher) *Runner {
	return &Runner{
		Caster:   raycast.Default,
		Orienter: orient.Default,
		Mesher:   m,
	}
}

// Resolve returns the complex the scene's queries run against.
func (r *Runner) Resolve(s *Scene) (*simplex.Complex, error) {
	switch {
	case s.Complex != nil:
		if err := s.Complex.Check(); err != nil {
			return nil, fmt.Errorf("scene: complex: %w", err)
		}
		return s.Complex, nil
	case s.Solid != nil:
		if r.Mesher == nil {
			return nil, errors.New("scene: solid given but no mesher configured")
		}
		if err := s.Solid.Check(); err != nil {
			return nil, fmt.Errorf("scene: solid: %w", err)
		}
		c, err := r.Mesher.Complex(s.Solid)
		if err != nil {
			return nil, fmt.Errorf("scene: meshing solid: %w", err)
		}
		log.Debugf("meshed solid into %d vertices and %d triangles", len(c.Vertices), c.Len())
		return c, nil
	}
	return nil, ErrNoComplex
}

// Run resolves the complex and runs every query in order. A failing query
// records its error in its Result and does not stop the others; only a
// failure to resolve the complex is returned as an error.
func (r *Runner) Run(s *Scene) (*simplex.Complex, []Result, error) {
	c, err := r.Resolve(s)
	if err != nil {
		return nil, nil, err
	}

	results := make([]Result, len(s.Queries))
	for i, q := range s.Queries {
		results[i] = r.run(q, c)
		if results[i].Err != nil {
			log.Infof("query %d (%s) failed: %v", i, q.Kind, results[i].Err)
		}
	}
	return c, results, nil
}

func (r *Runner) run(q Query, c *simplex.Complex) Result {
	res := Result{Query: q}
	switch q.Kind {
	case QueryContains:
		res.Inside, res.Err = r.Caster.Contains(q.Points, c)
	case QueryCrossings:
		res.Counts, res.Err = r.Caster.CrossCount(q.Start, q.End, c)
	case QueryIntersect:
		res.Indices, res.Err = r.Caster.IntersectionIndex(q.Start, q.End, c)
		if res.Err == nil {
			res.Points, res.Err = r.Caster.IntersectionPoint(q.Start, q.End, c)
		}
		if res.Err == nil {
			res.Normals, res.Err = r.Caster.IntersectionNormal(q.Start, q.End, c)
		}
	case QueryVolume:
		if q.Orient {
			res.Volume, res.Err = volume.Compute(c, r.Orienter)
		} else {
			res.Volume, res.Err = volume.Compute(c, nil)
		}
	case QueryNormals:
		res.Normals, res.Err = orient.Normals(c)
	case QueryOutwardNormals:
		res.Normals, res.Err = r.Orienter.OutwardNormals(c)
	case QueryUpwardNormals:
		res.Normals, res.Err = orient.UpwardNormals(c)
	case QueryOrient:
		res.Simplices, res.Err = r.Orienter.Simplices(c)
	case QueryCheck:
		v := simplex.Validate(c)
		res.Validation = &v
	default:
		res.Err = fmt.Errorf("unknown query kind %v", q.Kind)
	}
	return res
}
