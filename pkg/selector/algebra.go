package selector

import (
	"strings"

	"github.com/chazu/facet/pkg/kernel"
)

// Compile-time interface checks.
var (
	_ Selector = (*IdentitySelector)(nil)
	_ Selector = (*NearestToPointSelector)(nil)
	_ Selector = (*BoxSelector)(nil)
	_ Selector = (*DirectionSelector)(nil)
	_ Selector = (*TypeSelector)(nil)
	_ Selector = (*NthSelector)(nil)
	_ Selector = (*AndSelector)(nil)
	_ Selector = (*OrSelector)(nil)
	_ Selector = (*SubtractSelector)(nil)
	_ Selector = (*NotSelector)(nil)
	_ Selector = (*ChainSelector)(nil)
)

// AndSelector keeps entities selected by both children.
type AndSelector struct {
	Left, Right Selector
}

// And returns the intersection of l and r.
func And(l, r Selector) *AndSelector {
	return &AndSelector{Left: l, Right: r}
}

func (s *AndSelector) Filter(entities []kernel.Entity) ([]kernel.Entity, error) {
	return combine(entities, s.Left, s.Right, func(inL, inR bool) bool { return inL && inR })
}

func (s *AndSelector) String() string {
	return "(" + s.Left.String() + " and " + s.Right.String() + ")"
}

// OrSelector keeps entities selected by either child.
type OrSelector struct {
	Left, Right Selector
}

// Or returns the union of l and r.
func Or(l, r Selector) *OrSelector {
	return &OrSelector{Left: l, Right: r}
}

func (s *OrSelector) Filter(entities []kernel.Entity) ([]kernel.Entity, error) {
	return combine(entities, s.Left, s.Right, func(inL, inR bool) bool { return inL || inR })
}

func (s *OrSelector) String() string {
	return "(" + s.Left.String() + " or " + s.Right.String() + ")"
}

// SubtractSelector keeps entities selected by Left but not by Right.
type SubtractSelector struct {
	Left, Right Selector
}

// Subtract returns l minus r.
func Subtract(l, r Selector) *SubtractSelector {
	return &SubtractSelector{Left: l, Right: r}
}

func (s *SubtractSelector) Filter(entities []kernel.Entity) ([]kernel.Entity, error) {
	return combine(entities, s.Left, s.Right, func(inL, inR bool) bool { return inL && !inR })
}

func (s *SubtractSelector) String() string {
	return "(" + s.Left.String() + " exc " + s.Right.String() + ")"
}

// NotSelector keeps entities its child does not select.
type NotSelector struct {
	Inner Selector
}

// Not returns the complement of inner within whatever input it is given.
func Not(inner Selector) *NotSelector {
	return &NotSelector{Inner: inner}
}

func (s *NotSelector) Filter(entities []kernel.Entity) ([]kernel.Entity, error) {
	return Subtract(Identity(), s.Inner).Filter(entities)
}

func (s *NotSelector) String() string {
	return "not " + s.Inner.String()
}

// combine evaluates both children against the same input and keeps the
// entities for which keep returns true, in order of first appearance.
func combine(entities []kernel.Entity, l, r Selector, keep func(inL, inR bool) bool) ([]kernel.Entity, error) {
	left, err := l.Filter(entities)
	if err != nil {
		return nil, err
	}
	right, err := r.Filter(entities)
	if err != nil {
		return nil, err
	}
	inL := membership(left)
	inR := membership(right)

	var out []kernel.Entity
	for _, e := range dedupe(entities) {
		if keep(inL[e], inR[e]) {
			out = append(out, e)
		}
	}
	return out, nil
}

func membership(entities []kernel.Entity) map[kernel.Entity]bool {
	m := make(map[kernel.Entity]bool, len(entities))
	for _, e := range entities {
		m[e] = true
	}
	return m
}

// ---------------------------------------------------------------------------
// Chain
// ---------------------------------------------------------------------------

// ChainSelector feeds each stage's output into the next stage.
type ChainSelector struct {
	Stages []Selector
}

// Chain returns a pipeline of stages. An empty chain selects everything.
// The final output holds each entity once.
func Chain(stages ...Selector) *ChainSelector {
	return &ChainSelector{Stages: stages}
}

func (s *ChainSelector) Filter(entities []kernel.Entity) ([]kernel.Entity, error) {
	out := entities
	for _, st := range s.Stages {
		var err error
		out, err = st.Filter(out)
		if err != nil {
			return nil, err
		}
	}
	return dedupe(out), nil
}

func (s *ChainSelector) String() string {
	parts := make([]string, len(s.Stages))
	for i, st := range s.Stages {
		parts[i] = st.String()
	}
	return "chain(" + strings.Join(parts, ", ") + ")"
}
