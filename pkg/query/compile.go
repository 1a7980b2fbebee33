package query

import (
	"fmt"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/selector"
)

// Options configures compilation and selection.
type Options struct {
	// Tolerance is applied to every direction and ranking selector.
	Tolerance float64
	// DefaultKind is the sub-entity kind SelectFrom uses when the query
	// has no kind prefix.
	DefaultKind kernel.ShapeKind
}

// Option adjusts Options.
type Option func(*Options)

// WithTolerance sets the comparison tolerance.
func WithTolerance(tol float64) Option {
	return func(o *Options) { o.Tolerance = tol }
}

// WithDefaultKind sets the kind SelectFrom falls back to.
func WithDefaultKind(k kernel.ShapeKind) Option {
	return func(o *Options) { o.DefaultKind = k }
}

func newOptions(opts []Option) Options {
	o := Options{Tolerance: selector.DefaultTolerance, DefaultKind: kernel.KindFace}
	for _, fn := range opts {
		fn(&o)
	}
	if o.Tolerance <= 0 {
		o.Tolerance = selector.DefaultTolerance
	}
	return o
}

// Compile turns an expression tree into a selector tree.
func Compile(e Expr, opts ...Option) (selector.Selector, error) {
	o := newOptions(opts)
	return compile(e, o.Tolerance)
}

func compile(e Expr, tol float64) (selector.Selector, error) {
	switch n := e.(type) {
	case *DirAtom:
		return direction(selector.Direction(n.Dir.Vec()), tol), nil

	case *TypeAtom:
		return selector.Type(string(n.Type)), nil

	case *NthAtom:
		v := n.Dir.Vec()
		if n.HasIndex && (n.Op == ">" || n.Op == "<") {
			return selector.Chain(
				direction(selector.Parallel(v), tol),
				nth(selector.CenterNth(v, n.Index, n.Max()), tol),
			), nil
		}
		index := -1
		if n.HasIndex {
			index = n.Index
		}
		return nth(selector.CenterNth(v, index, n.Max()), tol), nil

	case *DirOpAtom:
		v := n.Dir.Vec()
		switch n.Op {
		case "|":
			return direction(selector.Parallel(v), tol), nil
		case "#":
			return direction(selector.Perpendicular(v), tol), nil
		case "+":
			return direction(selector.Direction(v), tol), nil
		case "-":
			return direction(selector.Direction(v.Neg()), tol), nil
		}
		return nil, fmt.Errorf("query: unknown direction operator %q", n.Op)

	case *ViewAtom:
		v, ok := views[n.View]
		if !ok {
			return nil, fmt.Errorf("query: unknown view %q", n.View)
		}
		return nth(selector.CenterNth(v, -1, true), tol), nil

	case *NotExpr:
		inner, err := compile(n.Inner, tol)
		if err != nil {
			return nil, err
		}
		return selector.Not(inner), nil

	case *BinaryExpr:
		left, err := compile(n.Left, tol)
		if err != nil {
			return nil, err
		}
		right, err := compile(n.Right, tol)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case OpAnd:
			return selector.And(left, right), nil
		case OpOr:
			return selector.Or(left, right), nil
		default:
			return selector.Subtract(left, right), nil
		}
	}
	return nil, fmt.Errorf("query: cannot compile %T", e)
}

func direction(s *selector.DirectionSelector, tol float64) *selector.DirectionSelector {
	s.Tolerance = tol
	return s
}

func nth(s *selector.NthSelector, tol float64) *selector.NthSelector {
	s.Tolerance = tol
	return s
}
