package selector

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/facet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DirMode selects how a DirectionSelector compares vectors.
type DirMode int

const (
	DirExact         DirMode = iota // same direction
	DirParallel                     // same or opposite direction
	DirPerpendicular                // at right angles
)

func (m DirMode) String() string {
	switch m {
	case DirExact:
		return "exact"
	case DirParallel:
		return "parallel"
	case DirPerpendicular:
		return "perpendicular"
	default:
		return "unknown"
	}
}

// DirectionSelector keeps planar faces by normal and linear edges by
// tangent. Every other entity is dropped.
type DirectionSelector struct {
	Direction v3.Vec // unit length
	Mode      DirMode
	Tolerance float64
}

// Direction keeps entities whose vector points along v.
func Direction(v v3.Vec) *DirectionSelector {
	return newDirection(v, DirExact)
}

// Parallel keeps entities whose vector is parallel to v, in either sense.
func Parallel(v v3.Vec) *DirectionSelector {
	return newDirection(v, DirParallel)
}

// Perpendicular keeps entities whose vector is perpendicular to v.
func Perpendicular(v v3.Vec) *DirectionSelector {
	return newDirection(v, DirPerpendicular)
}

func newDirection(v v3.Vec, mode DirMode) *DirectionSelector {
	return &DirectionSelector{Direction: v.Normalize(), Mode: mode, Tolerance: DefaultTolerance}
}

// Filter keeps entities whose test vector passes the mode's comparison.
// A zero or non-finite direction is an error.
func (s *DirectionSelector) Filter(entities []kernel.Entity) ([]kernel.Entity, error) {
	if !validDirection(s.Direction) {
		return nil, fmt.Errorf("%s: %w", s, ErrBadDirection)
	}
	var out []kernel.Entity
	for _, e := range dedupe(entities) {
		v, ok := testVector(e)
		if !ok {
			continue
		}
		if s.test(v) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *DirectionSelector) test(v v3.Vec) bool {
	switch s.Mode {
	case DirParallel:
		return s.Direction.Cross(v).Length() < s.Tolerance
	case DirPerpendicular:
		return math.Abs(kernel.Angle(s.Direction, v)-math.Pi/2) < s.Tolerance
	default:
		return kernel.Angle(s.Direction, v) < s.Tolerance
	}
}

// testVector returns the normal of a planar face or the tangent of a linear
// edge.
func testVector(e kernel.Entity) (v3.Vec, bool) {
	var (
		v   v3.Vec
		err error
	)
	switch {
	case e.Kind() == kernel.KindFace && e.GeomType() == kernel.GeomPlane:
		v, err = e.Normal()
	case e.Kind() == kernel.KindEdge && e.GeomType() == kernel.GeomLine:
		v, err = e.Tangent()
	default:
		return v3.Vec{}, false
	}
	return v, err == nil
}

func (s *DirectionSelector) String() string {
	switch s.Mode {
	case DirParallel:
		return "|" + formatVec(s.Direction)
	case DirPerpendicular:
		return "#" + formatVec(s.Direction)
	default:
		return "+" + formatVec(s.Direction)
	}
}

// ---------------------------------------------------------------------------
// Type
// ---------------------------------------------------------------------------

// TypeSelector keeps entities of one canonical geometry type.
type TypeSelector struct {
	Type kernel.GeomType
}

// Type keeps entities classified as name, compared case-insensitively.
func Type(name string) *TypeSelector {
	return &TypeSelector{Type: kernel.GeomType(strings.ToUpper(name))}
}

// Filter keeps entities whose GeomType matches.
func (s *TypeSelector) Filter(entities []kernel.Entity) ([]kernel.Entity, error) {
	var out []kernel.Entity
	for _, e := range dedupe(entities) {
		if e.GeomType() == s.Type {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *TypeSelector) String() string {
	return "%" + string(s.Type)
}
