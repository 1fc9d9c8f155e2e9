package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/simplex/pkg/scene"
	"github.com/chazu/simplex/pkg/simplex"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites scene script source before passing it to
// zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     so keywords need no global symbols.
//
//  2. Kebab-case to underscore: outward-normals -> outward_normals
//     zygomys reads a hyphen inside an identifier as subtraction.
//
//  3. Line comments: ; and ;; become //, the zygomys comment syntax.
//
// String literals are left untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipQuoted(b, i, '"', true)
			result = append(result, b[i:j]...)
			i = j

		case b[i] == '`':
			j := skipQuoted(b, i, '`', false)
			result = append(result, b[i:j]...)
			i = j

		case b[i] == ';':
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}

		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, ':', '=')
			i += 2

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j

		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++

		default:
			result = append(result, b[i])
			i++
		}
	}
	return string(result)
}

// skipQuoted returns the index just past the literal that opens at b[i].
func skipQuoted(b []byte, i int, quote byte, escapes bool) int {
	i++
	for i < len(b) && b[i] != quote {
		if escapes && b[i] == '\\' && i+1 < len(b) {
			i++
		}
		i++
	}
	if i < len(b) {
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec wraps a point of dimension 1 to 3.
type sexpVec struct {
	v []float64
}

func (v *sexpVec) SexpString(ps *zygo.PrintState) string {
	parts := make([]string, len(v.v))
	for i, x := range v.v {
		parts[i] = fmt.Sprintf("%g", x)
	}
	return "(vec " + strings.Join(parts, " ") + ")"
}
func (v *sexpVec) Type() *zygo.RegisteredType { return nil }

// sexpSegment wraps a query segment.
type sexpSegment struct {
	start, end []float64
}

func (s *sexpSegment) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(segment %v %v)", s.start, s.end)
}
func (s *sexpSegment) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a constructive solid tree.
type sexpShape struct {
	shape *scene.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s ...)", s.shape.Kind)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpComplex wraps an explicit complex.
type sexpComplex struct {
	c *simplex.Complex
}

func (c *sexpComplex) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(complex %dD %d vertices %d simplices)", c.c.Dim(), len(c.c.Vertices), c.c.Len())
}
func (c *sexpComplex) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a non-negative integer index.
func toInt(s zygo.Sexp) (int, error) {
	v, ok := s.(*zygo.SexpInt)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
	}
	return int(v.Val), nil
}

// toBool extracts a boolean.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toPoint accepts a vec or a list of 1 to 3 numbers.
func toPoint(s zygo.Sexp) ([]float64, error) {
	if v, ok := s.(*sexpVec); ok {
		return v.v, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected point: %w", err)
	}
	if len(items) < 1 || len(items) > simplex.MaxDim {
		return nil, fmt.Errorf("point has %d coordinates, want 1 to %d", len(items), simplex.MaxDim)
	}
	p := make([]float64, len(items))
	for i, item := range items {
		if p[i], err = toFloat64(item); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// toPoints flattens args into points. Each arg is a point or a list of
// points.
func toPoints(args []zygo.Sexp) ([][]float64, error) {
	var pts [][]float64
	for _, a := range args {
		if p, err := toPoint(a); err == nil {
			pts = append(pts, p)
			continue
		}
		items, err := sexpListToSlice(a)
		if err != nil {
			return nil, fmt.Errorf("expected point or list of points, got %T", a)
		}
		for _, item := range items {
			p, err := toPoint(item)
			if err != nil {
				return nil, err
			}
			pts = append(pts, p)
		}
	}
	return pts, nil
}

// toVec3 extracts a 3D vec.
func toVec3(s zygo.Sexp) ([3]float64, error) {
	p, err := toPoint(s)
	if err != nil {
		return [3]float64{}, err
	}
	if len(p) != 3 {
		return [3]float64{}, fmt.Errorf("expected 3 coordinates, got %d", len(p))
	}
	return [3]float64{p[0], p[1], p[2]}, nil
}

// toSegments flattens args into segment endpoints. Each arg is a segment
// or a list of segments.
func toSegments(args []zygo.Sexp) (start, end [][]float64, err error) {
	push := func(s zygo.Sexp) error {
		seg, ok := s.(*sexpSegment)
		if !ok {
			return fmt.Errorf("expected segment, got %T (%s)", s, s.SexpString(nil))
		}
		start = append(start, seg.start)
		end = append(end, seg.end)
		return nil
	}
	for _, a := range args {
		if _, ok := a.(*sexpSegment); ok {
			if err := push(a); err != nil {
				return nil, nil, err
			}
			continue
		}
		items, err := sexpListToSlice(a)
		if err != nil {
			return nil, nil, fmt.Errorf("expected segment or list of segments, got %T", a)
		}
		for _, item := range items {
			if err := push(item); err != nil {
				return nil, nil, err
			}
		}
	}
	return start, end, nil
}

// toShape extracts a shape.
func toShape(s zygo.Sexp) (*scene.Shape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.shape, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

func toShapes(args []zygo.Sexp) ([]*scene.Shape, error) {
	shapes := make([]*scene.Shape, len(args))
	for i, a := range args {
		sh, err := toShape(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		shapes[i] = sh
	}
	return shapes, nil
}

// kwFloat reads a required numeric keyword argument.
func kwFloat(pa kwArgs, name string) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return 0, fmt.Errorf("missing :%s", name)
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtin is a scene script function body; add wraps it for zygomys.
type builtin func(args []zygo.Sexp) (zygo.Sexp, error)

// add registers fn under name. Errors are prefixed with the kebab-case name
// the script author wrote.
func add(env *zygo.Zlisp, name string, fn builtin) {
	display := strings.ReplaceAll(name, "_", "-")
	env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		out, err := fn(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", display, err)
		}
		return out, nil
	})
}

// registerBuiltins installs the scene script builtins into a zygomys
// environment. Builtins that define the complex or add queries write into s.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene) {
	registerValues(env)
	registerShapes(env, s)
	registerQueries(env, s)
}

func registerValues(env *zygo.Zlisp) {
	// (vec 1 2 3)
	add(env, "vec", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > simplex.MaxDim {
			return nil, fmt.Errorf("requires 1 to %d coordinates, got %d", simplex.MaxDim, len(args))
		}
		v := make([]float64, len(args))
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return nil, fmt.Errorf("coordinate %d: %w", i+1, err)
			}
			v[i] = f
		}
		return &sexpVec{v: v}, nil
	})

	// (segment (vec 0 0) (vec 1 1))
	add(env, "segment", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("requires a start and an end point, got %d arguments", len(args))
		}
		a, err := toPoint(args[0])
		if err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
		b, err := toPoint(args[1])
		if err != nil {
			return nil, fmt.Errorf("end: %w", err)
		}
		if len(a) != len(b) {
			return nil, fmt.Errorf("start has %d coordinates but end has %d", len(a), len(b))
		}
		return &sexpSegment{start: a, end: b}, nil
	})
}

func registerShapes(env *zygo.Zlisp, s *scene.Scene) {
	// (complex :vertices (list (vec 0 0) ...) :simplices (list (list 0 1) ...))
	add(env, "complex", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		vs, ok := pa.kw["vertices"]
		if !ok {
			return nil, fmt.Errorf("missing :vertices")
		}
		items, err := sexpListToSlice(vs)
		if err != nil {
			return nil, fmt.Errorf("vertices: %w", err)
		}
		vertices, err := toPoints(items)
		if err != nil {
			return nil, fmt.Errorf("vertices: %w", err)
		}

		var simplices [][]int
		if ss, ok := pa.kw["simplices"]; ok {
			rows, err := sexpListToSlice(ss)
			if err != nil {
				return nil, fmt.Errorf("simplices: %w", err)
			}
			for i, row := range rows {
				idx, err := sexpListToSlice(row)
				if err != nil {
					return nil, fmt.Errorf("simplex %d: %w", i, err)
				}
				simplexRow := make([]int, len(idx))
				for j, x := range idx {
					if simplexRow[j], err = toInt(x); err != nil {
						return nil, fmt.Errorf("simplex %d: %w", i, err)
					}
				}
				simplices = append(simplices, simplexRow)
			}
		}

		c, err := simplex.New(vertices, simplices)
		if err != nil {
			return nil, err
		}
		s.Complex = c
		return &sexpComplex{c: c}, nil
	})

	// (box :size (vec 1 2 3))
	add(env, "box", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, ok := pa.kw["size"]
		if !ok {
			return nil, fmt.Errorf("missing :size")
		}
		size, err := toVec3(v)
		if err != nil {
			return nil, fmt.Errorf("size: %w", err)
		}
		return &sexpShape{shape: scene.Box(size[0], size[1], size[2])}, nil
	})

	// (sphere :radius 2)
	add(env, "sphere", func(args []zygo.Sexp) (zygo.Sexp, error) {
		r, err := kwFloat(parseArgs(args), "radius")
		if err != nil {
			return nil, err
		}
		return &sexpShape{shape: scene.Sphere(r)}, nil
	})

	// (cylinder :height 4 :radius 1)
	add(env, "cylinder", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		h, err := kwFloat(pa, "height")
		if err != nil {
			return nil, err
		}
		r, err := kwFloat(pa, "radius")
		if err != nil {
			return nil, err
		}
		return &sexpShape{shape: scene.Cylinder(h, r)}, nil
	})

	// (translate shape (vec 1 0 0)), (rotate shape (vec 0 0 45))
	for name, fn := range map[string]func(*scene.Shape, [3]float64) *scene.Shape{
		"translate": scene.Translate,
		"rotate":    scene.Rotate,
	} {
		fn := fn
		add(env, name, func(args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("requires a shape and a vec, got %d arguments", len(args))
			}
			sh, err := toShape(args[0])
			if err != nil {
				return nil, err
			}
			v, err := toVec3(args[1])
			if err != nil {
				return nil, err
			}
			return &sexpShape{shape: fn(sh, v)}, nil
		})
	}

	// (union a b ...), (difference a b ...), (intersection a b ...)
	for name, fn := range map[string]func(...*scene.Shape) *scene.Shape{
		"union":        scene.Union,
		"difference":   scene.Difference,
		"intersection": scene.Intersection,
	} {
		fn := fn
		add(env, name, func(args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) < 2 {
				return nil, fmt.Errorf("requires at least 2 shapes, got %d", len(args))
			}
			shapes, err := toShapes(args)
			if err != nil {
				return nil, err
			}
			return &sexpShape{shape: fn(shapes...)}, nil
		})
	}

	// (solid shape)
	add(env, "solid", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("requires exactly 1 shape, got %d", len(args))
		}
		sh, err := toShape(args[0])
		if err != nil {
			return nil, err
		}
		if err := sh.Check(); err != nil {
			return nil, err
		}
		s.Solid = sh
		return args[0], nil
	})
}

func registerQueries(env *zygo.Zlisp, s *scene.Scene) {
	// (contains (vec 0.5 0.5) ...)
	add(env, "contains", func(args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := toPoints(args)
		if err != nil {
			return nil, err
		}
		s.Queries = append(s.Queries, scene.Query{Kind: scene.QueryContains, Points: pts})
		return zygo.SexpNull, nil
	})

	// (crossings (segment ...) ...), (intersect (segment ...) ...)
	for name, kind := range map[string]scene.QueryKind{
		"crossings": scene.QueryCrossings,
		"intersect": scene.QueryIntersect,
	} {
		kind := kind
		add(env, name, func(args []zygo.Sexp) (zygo.Sexp, error) {
			start, end, err := toSegments(args)
			if err != nil {
				return nil, err
			}
			s.Queries = append(s.Queries, scene.Query{Kind: kind, Start: start, End: end})
			return zygo.SexpNull, nil
		})
	}

	// (volume), (volume :orient false)
	add(env, "volume", func(args []zygo.Sexp) (zygo.Sexp, error) {
		q := scene.Query{Kind: scene.QueryVolume, Orient: true}
		if v, ok := parseArgs(args).kw["orient"]; ok {
			b, err := toBool(v)
			if err != nil {
				return nil, fmt.Errorf("orient: %w", err)
			}
			q.Orient = b
		}
		s.Queries = append(s.Queries, q)
		return zygo.SexpNull, nil
	})

	// (normals), (outward-normals), (upward-normals), (orient), (check)
	for name, kind := range map[string]scene.QueryKind{
		"normals":         scene.QueryNormals,
		"outward_normals": scene.QueryOutwardNormals,
		"upward_normals":  scene.QueryUpwardNormals,
		"orient":          scene.QueryOrient,
		"check":           scene.QueryCheck,
	} {
		kind := kind
		add(env, name, func(args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 0 {
				return nil, fmt.Errorf("takes no arguments, got %d", len(args))
			}
			s.Queries = append(s.Queries, scene.Query{Kind: kind})
			return zygo.SexpNull, nil
		})
	}
}
