// Package loader reads complexes from files. Plain JSON holds a vertex table
// and simplices directly; GeoJSON polygons become closed 2D complexes.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/chazu/simplex/pkg/simplex"
)

var log = simplex.Logger("loader")

// Format selects a decoder.
type Format int

const (
	FormatJSON Format = iota
	FormatGeoJSON
)

func (f Format) String() string {
	if f == FormatGeoJSON {
		return "geojson"
	}
	return "json"
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".geojson":
		return FormatGeoJSON, nil
	}
	return 0, fmt.Errorf("loader: unknown extension %q (want .json or .geojson)", filepath.Ext(path))
}

// Load reads the complex stored at path.
func Load(path string) (*simplex.Complex, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	defer f.Close()

	c, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	log.Debugf("loaded %s: %dD, %d vertices, %d simplices", path, c.Dim(), len(c.Vertices), c.Len())
	return c, nil
}

// Read decodes a complex from r.
func Read(r io.Reader, format Format) (*simplex.Complex, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == FormatGeoJSON {
		return DecodeGeoJSON(data)
	}
	return DecodeJSON(data)
}

// DecodeJSON decodes {"vertices": [[...]], "simplices": [[...]]}.
func DecodeJSON(data []byte) (*simplex.Complex, error) {
	var c simplex.Complex
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode complex: %w", err)
	}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Write encodes c as indented JSON.
func Write(w io.Writer, c *simplex.Complex) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// DecodeGeoJSON accepts a FeatureCollection, a Feature or a bare geometry.
func DecodeGeoJSON(data []byte) (*simplex.Complex, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	var geoms []orb.Geometry
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		geoms = append(geoms, f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		geoms = append(geoms, g.Geometry())
	}
	return FromGeometry(geoms...)
}

// FromGeometry turns polygon rings into a closed 2D complex. Every ring
// becomes a chain of segments; holes are kept as extra rings.
func FromGeometry(geoms ...orb.Geometry) (*simplex.Complex, error) {
	b := &builder{}
	for _, g := range geoms {
		if err := b.add(g); err != nil {
			return nil, err
		}
	}
	if len(b.vertices) == 0 {
		return nil, fmt.Errorf("%w: no polygon rings found", simplex.ErrShapeMismatch)
	}
	return simplex.New(b.vertices, b.simplices)
}

type builder struct {
	vertices  [][]float64
	simplices [][]int
}

func (b *builder) add(g orb.Geometry) error {
	switch geom := g.(type) {
	case orb.Ring:
		return b.ring(geom)
	case orb.Polygon:
		for _, r := range geom {
			if err := b.ring(r); err != nil {
				return err
			}
		}
	case orb.MultiPolygon:
		for _, p := range geom {
			if err := b.add(p); err != nil {
				return err
			}
		}
	case orb.Collection:
		for _, sub := range geom {
			if err := b.add(sub); err != nil {
				return err
			}
		}
	case nil:
		return fmt.Errorf("%w: feature without geometry", simplex.ErrShapeMismatch)
	default:
		return fmt.Errorf("%w: unsupported geometry type %s", simplex.ErrShapeMismatch, g.GeoJSONType())
	}
	return nil
}

// ring appends r as a closed chain, dropping the repeated closing point.
func (b *builder) ring(r orb.Ring) error {
	if len(r) > 1 && r[0] == r[len(r)-1] {
		r = r[:len(r)-1]
	}
	if len(r) < 3 {
		return fmt.Errorf("%w: ring has %d distinct points, want at least 3", simplex.ErrShapeMismatch, len(r))
	}
	base := len(b.vertices)
	for i, p := range r {
		b.vertices = append(b.vertices, []float64{p[0], p[1]})
		b.simplices = append(b.simplices, []int{base + i, base + (i+1)%len(r)})
	}
	return nil
}
