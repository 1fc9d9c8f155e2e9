// Package raycast answers batched segment and point queries against a
// simplicial complex in 1, 2 or 3 dimensions: crossing counts, first
// crossings and their normals, and point containment by the parity rule.
//
// Every query in a batch is independent. A Caster may split a batch across
// worker goroutines; results are always gathered in input order.
package raycast

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/simplex/pkg/geom"
	"github.com/chazu/simplex/pkg/simplex"
)

var log = simplex.Logger("raycast")

// Options configures a Caster.
type Options struct {
	// Workers is the number of goroutines a batch is split across. Values
	// below 2 process the batch sequentially.
	Workers int

	// AnchorOffset is subtracted from the minimum corner of the complex to
	// place the exterior anchor used by Contains.
	AnchorOffset [3]float64
}

// DefaultOptions processes batches sequentially with the standard anchor.
func DefaultOptions() Options {
	return Options{Workers: 1, AnchorOffset: geom.AnchorOffset()}
}

// Caster runs ray-casting queries.
type Caster struct {
	opts Options
}

// New returns a Caster with the given options.
func New(opts Options) *Caster {
	return &Caster{opts: opts}
}

// Default is the Caster behind the package-level functions.
var Default = New(DefaultOptions())

// Options returns the options c was built with.
func (c *Caster) Options() Options {
	return c.opts
}

// prepare validates the complex and a segment batch and returns the
// crosser for the complex's dimension.
func (c *Caster) prepare(start, end [][]float64, cx *simplex.Complex) (crosser, error) {
	if err := cx.Check(); err != nil {
		return nil, err
	}
	if err := simplex.CheckSegments(start, end, cx.Dim()); err != nil {
		return nil, err
	}
	return newCrosser(cx), nil
}

// CrossCount returns, for each segment start[i]→end[i], the number of
// simplices of cx it crosses.
func (c *Caster) CrossCount(start, end [][]float64, cx *simplex.Complex) ([]int, error) {
	x, err := c.prepare(start, end, cx)
	if err != nil {
		return nil, err
	}
	log.Debugf("cross count: %d segments against %d simplices in %dD", len(start), cx.Len(), cx.Dim())

	out := make([]int, len(start))
	err = c.each(len(start), func(i int) error {
		out[i] = count(x, start[i], end[i])
		return nil
	})
	return out, err
}

// IntersectionIndex returns, for each segment, the index of the first
// simplex of cx it crosses, scanning simplices in order. A segment that
// crosses nothing fails the whole call with a *simplex.NotFoundError.
func (c *Caster) IntersectionIndex(start, end [][]float64, cx *simplex.Complex) ([]int, error) {
	x, err := c.prepare(start, end, cx)
	if err != nil {
		return nil, err
	}

	out := make([]int, len(start))
	err = c.each(len(start), func(i int) error {
		idx, _ := first(x, start[i], end[i])
		if idx < 0 {
			return notFound(i, start[i], end[i])
		}
		out[i] = idx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IntersectionPoint returns, for each segment, the point where it crosses
// the simplex reported by IntersectionIndex.
func (c *Caster) IntersectionPoint(start, end [][]float64, cx *simplex.Complex) ([][]float64, error) {
	x, err := c.prepare(start, end, cx)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(start))
	err = c.each(len(start), func(i int) error {
		idx, p := first(x, start[i], end[i])
		if idx < 0 {
			return notFound(i, start[i], end[i])
		}
		out[i] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IntersectionNormal returns, for each segment, the unit normal of the
// simplex reported by IntersectionIndex, oriented toward the segment's end
// point. In 1D the normal is +1 when the crossed vertex is below the start
// point and -1 otherwise.
func (c *Caster) IntersectionNormal(start, end [][]float64, cx *simplex.Complex) ([][]float64, error) {
	x, err := c.prepare(start, end, cx)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(start))
	err = c.each(len(start), func(i int) error {
		idx, _ := first(x, start[i], end[i])
		if idx < 0 {
			return notFound(i, start[i], end[i])
		}
		out[i] = x.normal(idx, start[i], end[i])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Contains reports, for each point, whether it lies inside cx. A segment is
// cast from an anchor outside the bounding box of cx to the point and the
// point is inside when the segment crosses an odd number of simplices.
//
// The result is only meaningful for closed complexes; closedness is not
// checked. Points on the boundary may be classified either way.
func (c *Caster) Contains(pts [][]float64, cx *simplex.Complex) ([]bool, error) {
	if err := cx.Check(); err != nil {
		return nil, err
	}
	if err := simplex.CheckBatch("point", pts, cx.Dim()); err != nil {
		return nil, err
	}
	x := newCrosser(cx)
	anchor := geom.OutsidePoint(cx.Vertices, c.opts.AnchorOffset)
	log.Debugf("contains: %d points against %d simplices in %dD, anchor %v", len(pts), cx.Len(), cx.Dim(), anchor)

	out := make([]bool, len(pts))
	err := c.each(len(pts), func(i int) error {
		out[i] = count(x, anchor, pts[i])%2 == 1
		return nil
	})
	return out, err
}

// each calls fn for every index in [0, n), splitting the range into
// contiguous chunks when more than one worker is configured. The first
// error stops the remaining chunks and is returned.
func (c *Caster) each(n int, fn func(i int) error) error {
	workers := c.opts.Workers
	if workers < 2 || n < 2 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	workers = min(workers, n)
	chunk := (n + workers - 1) / workers

	g, ctx := errgroup.WithContext(context.Background())
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if ctx.Err() != nil {
					return nil
				}
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func notFound(i int, start, end []float64) error {
	log.Debugf("segment %d from %v to %v crosses no simplex", i, start, end)
	return &simplex.NotFoundError{Index: i, Start: start, End: end}
}

// CrossCount runs Default.CrossCount.
func CrossCount(start, end [][]float64, cx *simplex.Complex) ([]int, error) {
	return Default.CrossCount(start, end, cx)
}

// IntersectionIndex runs Default.IntersectionIndex.
func IntersectionIndex(start, end [][]float64, cx *simplex.Complex) ([]int, error) {
	return Default.IntersectionIndex(start, end, cx)
}

// IntersectionPoint runs Default.IntersectionPoint.
func IntersectionPoint(start, end [][]float64, cx *simplex.Complex) ([][]float64, error) {
	return Default.IntersectionPoint(start, end, cx)
}

// IntersectionNormal runs Default.IntersectionNormal.
func IntersectionNormal(start, end [][]float64, cx *simplex.Complex) ([][]float64, error) {
	return Default.IntersectionNormal(start, end, cx)
}

// Contains runs Default.Contains.
func Contains(pts [][]float64, cx *simplex.Complex) ([]bool, error) {
	return Default.Contains(pts, cx)
}
