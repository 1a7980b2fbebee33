package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/facet/pkg/design"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/query"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/sirupsen/logrus"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms facet Lisp source before passing it to
// zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal), so
//     keywords need no global symbols.
//  2. Kebab-case to underscore: def-shape -> def_shape, since zygomys
//     reads a hyphen as subtraction.
//  3. ; line comments become // comments.
//
// String literals pass through untouched, which keeps queries such as
// "not >Z" or "|X" intact.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipString(b, i, '"', true)
			result = append(result, b[i:j]...)
			i = j
			continue
		case b[i] == '`':
			j := skipString(b, i, '`', false)
			result = append(result, b[i:j]...)
			i = j
			continue
		case b[i] == ';':
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		case b[i] == ':' && i+1 < len(b):
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

// skipString returns the index just past the string literal opened at b[i].
func skipString(b []byte, i int, quote byte, escapes bool) int {
	i++
	for i < len(b) && b[i] != quote {
		if escapes && b[i] == '\\' && i+1 < len(b) {
			i += 2
			continue
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

// sexpShape wraps a kernel.Shape so it can be passed between builtins.
type sexpShape struct {
	shape kernel.Shape
	name  string // set once the shape is registered with defshape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	if s.name != "" {
		return fmt.Sprintf("(shape %q)", s.name)
	}
	bb := s.shape.BoundingBox()
	size := bb.Max.Sub(bb.Min)
	return fmt.Sprintf("(shape %gx%gx%g)", size.X, size.Y, size.Z)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpEntities wraps an ordered list of sub-entities of one kind.
type sexpEntities struct {
	kind     kernel.ShapeKind
	entities []kernel.Entity
}

func (s *sexpEntities) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %d)", s.kind.Plural(), len(s.entities))
}
func (s *sexpEntities) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
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
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// Keyword at end with no value, treated as a flag.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// number reads a numeric argument given either by keyword or at position pos.
func (pa kwArgs) number(fn, key string, pos int) (float64, error) {
	v, ok := pa.kw[key]
	if !ok {
		if pos >= len(pa.positional) {
			return 0, fmt.Errorf("%s: missing %s", fn, key)
		}
		v = pa.positional[pos]
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	return f, nil
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

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toShape(s zygo.Sexp) (kernel.Shape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.shape, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func positive(fn, key string, f float64) error {
	if f <= 0 {
		return fmt.Errorf("%s: %s must be positive, got %g", fn, key, f)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

// selection evaluates text against target, which is either an entity list
// or a shape. Selecting from a shape honours a kind prefix in the query.
func (e *Engine) selection(text string, target zygo.Sexp, tol float64) (*sexpEntities, error) {
	opts := []query.Option{query.WithTolerance(tol), query.WithDefaultKind(e.kind)}

	var (
		out        []kernel.Entity
		kind       kernel.ShapeKind
		candidates int
		err        error
	)
	switch t := target.(type) {
	case *sexpEntities:
		kind, candidates = t.kind, len(t.entities)
		out, err = query.Select(text, t.entities, opts...)
	case *sexpShape:
		q, perr := query.ParseQuery(text)
		if perr != nil {
			return nil, perr
		}
		kind = e.kind
		if q.HasKind {
			kind = q.Kind
		}
		candidates = len(t.shape.SubShapes(kind))
		out, err = query.SelectFrom(t.shape, text, opts...)
	default:
		return nil, fmt.Errorf("expected entities or shape, got %T (%s)", target, target.SexpString(nil))
	}
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"query":      text,
		"kind":       kind.Plural(),
		"candidates": candidates,
		"selected":   len(out),
	}).Debug("selection")
	return &sexpEntities{kind: kind, entities: out}, nil
}

// selectArgs reads (fn "query" target :tolerance t) style arguments,
// skipping skip leading positional arguments.
func (e *Engine) selectArgs(fn string, pa kwArgs, skip int) (string, zygo.Sexp, float64, error) {
	if len(pa.positional) < skip+2 {
		return "", nil, 0, fmt.Errorf("%s requires a query and a target", fn)
	}
	text, err := toString(pa.positional[skip])
	if err != nil {
		return "", nil, 0, fmt.Errorf("%s: query: %w", fn, err)
	}
	tol := e.tolerance
	if v, ok := pa.kw["tolerance"]; ok {
		if tol, err = toFloat64(v); err != nil {
			return "", nil, 0, fmt.Errorf("%s: tolerance: %w", fn, err)
		}
		if err := positive(fn, "tolerance", tol); err != nil {
			return "", nil, 0, err
		}
	}
	return text, pa.positional[skip+1], tol, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the facet DSL builtins into a zygomys
// environment. The builtins populate d during evaluation.
//
// Source must be preprocessed with preprocessSource so that :keyword tokens
// arrive as recognisable string literals.
func registerBuiltins(env *zygo.Zlisp, d *design.Design, e *Engine) {

	// (box :x 10 :y 20 :z 30) or (box 10 20 30)
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var dims [3]float64
		for i, key := range []string{"x", "y", "z"} {
			f, err := pa.number("box", key, i)
			if err != nil {
				return zygo.SexpNull, err
			}
			if err := positive("box", key, f); err != nil {
				return zygo.SexpNull, err
			}
			dims[i] = f
		}
		return &sexpShape{shape: e.kernel.Box(dims[0], dims[1], dims[2])}, nil
	})

	// (cylinder :height 5 :radius 2) or (cylinder 5 2)
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		h, err := pa.number("cylinder", "height", 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		r, err := pa.number("cylinder", "radius", 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := positive("cylinder", "height", h); err != nil {
			return zygo.SexpNull, err
		}
		if err := positive("cylinder", "radius", r); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: e.kernel.Cylinder(h, r)}, nil
	})

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// (translate shape (vec3 0 0 5)) and (rotate shape (vec3 0 0 90))
	for _, fn := range []string{"translate", "rotate"} {
		fn := fn
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires a shape and a vec3", fn)
			}
			s, err := toShape(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			v, err := toVec3(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			if fn == "translate" {
				return &sexpShape{shape: e.kernel.Translate(s, v.X, v.Y, v.Z)}, nil
			}
			return &sexpShape{shape: e.kernel.Rotate(s, v.X, v.Y, v.Z)}, nil
		})
	}

	// (compound a b c)
	env.AddFunction("compound", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 0 {
			return zygo.SexpNull, fmt.Errorf("compound requires at least one shape")
		}
		shapes := make([]kernel.Shape, len(args))
		for i, a := range args {
			s, err := toShape(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("compound: argument %d: %w", i+1, err)
			}
			shapes[i] = s
		}
		return &sexpShape{shape: e.kernel.Compound(shapes...)}, nil
	})

	// (defshape "name" (box ...))
	env.AddFunction("defshape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defshape requires a name and a shape expression")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: name: %w", err)
		}
		if shapeName == "" {
			return zygo.SexpNull, fmt.Errorf("defshape: name must not be empty")
		}
		s, err := toShape(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: %w", err)
		}
		d.AddShape(&design.ShapeNode{Name: shapeName, Shape: s})
		return &sexpShape{shape: s, name: shapeName}, nil
	})

	// (shape "name")
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shape requires a name argument")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: name: %w", err)
		}
		n := d.Lookup(shapeName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("shape: no shape named %q", shapeName)
		}
		return &sexpShape{shape: n.Shape, name: shapeName}, nil
	})

	// (faces shape), (edges shape), ...
	for _, kind := range []kernel.ShapeKind{
		kernel.KindVertex, kernel.KindEdge, kernel.KindWire,
		kernel.KindFace, kernel.KindShell, kernel.KindSolid,
	} {
		kind := kind
		fn := kind.Plural()
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires a shape argument", fn)
			}
			s, err := toShape(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			return &sexpEntities{kind: kind, entities: s.SubShapes(kind)}, nil
		})
	}

	// (select ">Z" (faces (shape "base")) :tolerance 1e-4)
	env.AddFunction("select", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		text, target, tol, err := e.selectArgs("select", parseArgs(args), 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		sel, err := e.selection(text, target, tol)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select: %w", err)
		}
		return sel, nil
	})

	// (defselection "top" ">Z" (faces (shape "base")) :tolerance 1e-4)
	env.AddFunction("defselection", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("defselection requires a name, a query and a target")
		}
		selName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defselection: name: %w", err)
		}
		if selName == "" {
			return zygo.SexpNull, fmt.Errorf("defselection: name must not be empty")
		}
		text, target, tol, err := e.selectArgs("defselection", pa, 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		sel, err := e.selection(text, target, tol)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defselection %q: %w", selName, err)
		}
		d.AddSelection(&design.Selection{
			Name:      selName,
			Query:     text,
			Tolerance: tol,
			Entities:  sel.entities,
		})
		return sel, nil
	})

	// (count (select ...))
	env.AddFunction("count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("count requires one argument")
		}
		ents, ok := args[0].(*sexpEntities)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("count: expected entities, got %T (%s)", args[0], args[0].SexpString(nil))
		}
		return &zygo.SexpInt{Val: int64(len(ents.entities))}, nil
	})
}
