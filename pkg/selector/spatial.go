package selector

import (
	"fmt"
	"math"

	"github.com/chazu/facet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// NearestToPointSelector keeps the single entity whose center of mass is
// closest to Point. Ties go to the earliest entity in the input.
type NearestToPointSelector struct {
	Point v3.Vec
}

// NearestToPoint returns a selector for the entity nearest p.
func NearestToPoint(p v3.Vec) *NearestToPointSelector {
	return &NearestToPointSelector{Point: p}
}

// Filter returns at most one entity.
func (s *NearestToPointSelector) Filter(entities []kernel.Entity) ([]kernel.Entity, error) {
	var best kernel.Entity
	bestDist := math.Inf(1)
	for _, e := range entities {
		if d := kernel.Distance(e.CenterOfMass(), s.Point); d < bestDist {
			best, bestDist = e, d
		}
	}
	if best == nil {
		return nil, nil
	}
	return []kernel.Entity{best}, nil
}

func (s *NearestToPointSelector) String() string {
	return "nearest" + formatVec(s.Point)
}

// ---------------------------------------------------------------------------
// Box
// ---------------------------------------------------------------------------

// BoxSelector keeps entities lying strictly inside the box spanned by two
// opposite corners, given in any order. By default the center of mass is
// tested; with UseBoundingBox both corners of the entity's bounding box must
// be inside.
type BoxSelector struct {
	P0, P1         v3.Vec
	UseBoundingBox bool
}

// Box returns a selector for entities inside the box with corners p0, p1.
func Box(p0, p1 v3.Vec, useBoundingBox bool) *BoxSelector {
	return &BoxSelector{P0: p0, P1: p1, UseBoundingBox: useBoundingBox}
}

// Filter keeps entities strictly inside the box. A point on a face of the
// box is outside.
func (s *BoxSelector) Filter(entities []kernel.Entity) ([]kernel.Entity, error) {
	var out []kernel.Entity
	for _, e := range dedupe(entities) {
		if s.UseBoundingBox {
			bb := e.BoundingBox()
			if s.inside(bb.Min) && s.inside(bb.Max) {
				out = append(out, e)
			}
			continue
		}
		if s.inside(e.CenterOfMass()) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *BoxSelector) inside(p v3.Vec) bool {
	return between(p.X, s.P0.X, s.P1.X) &&
		between(p.Y, s.P0.Y, s.P1.Y) &&
		between(p.Z, s.P0.Z, s.P1.Z)
}

// between reports whether v lies on different sides of a and b. The XOR of
// the two comparisons makes corner order irrelevant; equality with either
// bound counts as outside.
func between(v, a, b float64) bool {
	if v == a || v == b {
		return false
	}
	return (v < a) != (v < b)
}

func (s *BoxSelector) String() string {
	if s.UseBoundingBox {
		return fmt.Sprintf("box(%s,%s,bb)", formatVec(s.P0), formatVec(s.P1))
	}
	return fmt.Sprintf("box(%s,%s)", formatVec(s.P0), formatVec(s.P1))
}
