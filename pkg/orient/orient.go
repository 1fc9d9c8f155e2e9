// Package orient reorders the vertices of simplices so that their
// right-hand-rule normals point out of the region a closed complex bounds,
// and computes per-simplex unit normals.
//
// Orientation is a consumer of an unoriented containment oracle: each
// simplex's centroid is nudged along its normal and the oracle decides
// whether the nudged point is inside. The oracle only needs the complex to
// be closed, not consistently oriented, so the original simplices are
// passed to it unchanged.
package orient

import (
	"github.com/chazu/simplex/pkg/geom"
	"github.com/chazu/simplex/pkg/raycast"
	"github.com/chazu/simplex/pkg/simplex"
)

var log = simplex.Logger("orient")

// DefaultPerturbation is the default nudge distance as a fraction of the
// domain scale.
const DefaultPerturbation = 1e-10

// Oracle classifies points against a closed complex.
type Oracle interface {
	Contains(pts [][]float64, c *simplex.Complex) ([]bool, error)
}

// Orienter orients simplices with the help of an Oracle.
type Orienter struct {
	oracle       Oracle
	perturbation float64
}

// New returns an Orienter that nudges centroids by perturbation times the
// domain scale and asks oracle whether they are inside.
func New(oracle Oracle, perturbation float64) *Orienter {
	return &Orienter{oracle: oracle, perturbation: perturbation}
}

// Default orients with raycast.Default.
var Default = New(raycast.Default, DefaultPerturbation)

// Simplices returns a copy of c's simplices in which every simplex whose
// normal points into the region has its first two indices swapped. The
// input is not modified. 1D complexes are returned unchanged.
//
// Each simplex costs one containment test against the whole complex.
func (o *Orienter) Simplices(c *simplex.Complex) ([][]int, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}
	out := c.CloneSimplices()
	if c.Dim() == 1 || c.Len() == 0 {
		return out, nil
	}

	probes, err := o.probes(c)
	if err != nil {
		return nil, err
	}
	inside, err := o.oracle.Contains(probes, c)
	if err != nil {
		return nil, err
	}

	flipped := 0
	for i, in := range inside {
		if in {
			out[i][0], out[i][1] = out[i][1], out[i][0]
			flipped++
		}
	}
	log.Debugf("oriented %d simplices, flipped %d", len(out), flipped)
	return out, nil
}

// Oriented returns c with its simplices oriented. The vertex table is
// shared with c.
func (o *Orienter) Oriented(c *simplex.Complex) (*simplex.Complex, error) {
	s, err := o.Simplices(c)
	if err != nil {
		return nil, err
	}
	return c.WithSimplices(s), nil
}

// probes returns each simplex's centroid moved along its unit normal.
func (o *Orienter) probes(c *simplex.Complex) ([][]float64, error) {
	normals, err := Normals(c)
	if err != nil {
		return nil, err
	}
	step := o.perturbation * c.Scale()

	probes := make([][]float64, c.Len())
	for i := range probes {
		p := centroid(c.Points(i))
		for k := range p {
			p[k] += step * normals[i][k]
		}
		probes[i] = p
	}
	return probes, nil
}

func centroid(pts [][]float64) []float64 {
	out := make([]float64, len(pts[0]))
	for _, p := range pts {
		for k, x := range p {
			out[k] += x
		}
	}
	for k := range out {
		out[k] /= float64(len(pts))
	}
	return out
}

// Normals returns the unit right-hand-rule normal of every simplex of c.
// Only 2D and 3D complexes have normals.
func Normals(c *simplex.Complex) ([][]float64, error) {
	if err := c.Check(); err != nil {
		return nil, err
	}
	out := make([][]float64, c.Len())
	switch c.Dim() {
	case 2:
		for i := range out {
			pts := c.Points(i)
			seg := geom.Segment2{A: geom.Vec2(pts[0]), B: geom.Vec2(pts[1])}
			out[i] = geom.Slice2(geom.Unit2(seg.Normal()))
		}
	case 3:
		for i := range out {
			pts := c.Points(i)
			tri := geom.Triangle{A: geom.Vec3(pts[0]), B: geom.Vec3(pts[1]), C: geom.Vec3(pts[2])}
			out[i] = geom.Slice3(geom.Unit3(tri.Normal()))
		}
	default:
		return nil, simplex.DimensionError(c.Dim())
	}
	return out, nil
}

// OutwardNormals returns the unit normals of c after orienting it, so every
// normal points out of the region.
func (o *Orienter) OutwardNormals(c *simplex.Complex) ([][]float64, error) {
	if c.Dim() != 2 && c.Dim() != 3 {
		return nil, simplex.DimensionError(c.Dim())
	}
	oc, err := o.Oriented(c)
	if err != nil {
		return nil, err
	}
	return Normals(oc)
}

// UpwardNormals returns the unit normals of c, each negated if needed so
// that its last component is non-negative.
func UpwardNormals(c *simplex.Complex) ([][]float64, error) {
	out, err := Normals(c)
	if err != nil {
		return nil, err
	}
	for _, n := range out {
		if n[len(n)-1] < 0 {
			for k := range n {
				n[k] = -n[k]
			}
		}
	}
	return out, nil
}

// Simplices runs Default.Simplices.
func Simplices(c *simplex.Complex) ([][]int, error) {
	return Default.Simplices(c)
}

// OutwardNormals runs Default.OutwardNormals.
func OutwardNormals(c *simplex.Complex) ([][]float64, error) {
	return Default.OutwardNormals(c)
}
