// Package query implements the selector string language: a lexer and
// recursive-descent parser producing an expression tree, a canonical
// printer, and a compiler from expressions to selector trees.
//
//	faces >Z[-2] and %PLANE
//	edges |Z exc (>X or <X)
//	not top
package query

import (
	"fmt"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/selector"
)

// Parse parses and compiles text.
func Parse(text string, opts ...Option) (selector.Selector, error) {
	e, err := ParseExpr(text)
	if err != nil {
		return nil, err
	}
	return Compile(e, opts...)
}

// Select parses text and filters entities with it.
func Select(text string, entities []kernel.Entity, opts ...Option) ([]kernel.Entity, error) {
	s, err := Parse(text, opts...)
	if err != nil {
		return nil, err
	}
	out, err := s.Filter(entities)
	if err != nil {
		return nil, fmt.Errorf("query: evaluate %q: %w", text, err)
	}
	return out, nil
}

// Query is a selection expression with an optional leading kind word, as in
// "edges %CIRCLE". A query of only a kind word has a nil Expr and selects
// every entity of that kind.
type Query struct {
	Kind    kernel.ShapeKind
	HasKind bool
	Expr    Expr
}

func (q Query) String() string {
	switch {
	case q.HasKind && q.Expr == nil:
		return q.Kind.Plural()
	case q.HasKind:
		return q.Kind.Plural() + " " + q.Expr.String()
	case q.Expr == nil:
		return ""
	default:
		return q.Expr.String()
	}
}

// ParseQuery parses text, recognising a leading plural kind word.
func ParseQuery(text string) (Query, error) {
	tokens, err := NewLexer(text).Tokenize()
	if err != nil {
		return Query{}, err
	}
	var q Query
	if first := tokens[0]; first.Type == TokenWord {
		if k, ok := kernel.ParseKind(first.Value); ok {
			q.Kind, q.HasKind = k, true
			tokens = tokens[1:]
			if tokens[0].Type == TokenEOF {
				return q, nil
			}
		}
	}
	q.Expr, err = newParser(text, tokens).parse()
	if err != nil {
		return Query{}, err
	}
	return q, nil
}

// Compile returns the selector for q. A query without an expression
// compiles to the identity selector.
func (q Query) Compile(opts ...Option) (selector.Selector, error) {
	if q.Expr == nil {
		return selector.Identity(), nil
	}
	return Compile(q.Expr, opts...)
}

// SelectFrom evaluates text against the sub-entities of shape. The kind
// comes from the query's prefix, or from the options (faces by default).
func SelectFrom(shape kernel.Shape, text string, opts ...Option) ([]kernel.Entity, error) {
	q, err := ParseQuery(text)
	if err != nil {
		return nil, err
	}
	o := newOptions(opts)
	kind := o.DefaultKind
	if q.HasKind {
		kind = q.Kind
	}
	s, err := q.Compile(opts...)
	if err != nil {
		return nil, err
	}
	out, err := s.Filter(shape.SubShapes(kind))
	if err != nil {
		return nil, fmt.Errorf("query: evaluate %q on %s: %w", text, kind.Plural(), err)
	}
	return out, nil
}
