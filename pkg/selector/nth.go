package selector

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/chazu/facet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Key maps an entity to the scalar an NthSelector ranks by. Value returns
// an error wrapping kernel.ErrIncompatible when the entity has no such
// scalar; those entities are skipped.
type Key interface {
	Value(e kernel.Entity) (float64, error)
	String() string
}

// CenterKey projects the center of mass onto a direction.
type CenterKey struct {
	Direction v3.Vec // unit length
}

// Value returns the signed distance of e's center along the key direction.
func (k CenterKey) Value(e kernel.Entity) (float64, error) {
	return e.CenterOfMass().Dot(k.Direction), nil
}

func (k CenterKey) String() string {
	return "center" + formatVec(k.Direction)
}

// RadiusKey ranks circular edges by radius.
type RadiusKey struct{}

// Value returns e's radius.
func (RadiusKey) Value(e kernel.Entity) (float64, error) {
	if k := e.Kind(); k != kernel.KindEdge && k != kernel.KindWire {
		return 0, kernel.Incompatible("radius", e)
	}
	return e.Radius()
}

func (RadiusKey) String() string { return "radius" }

// LengthKey ranks edges and wires by length.
type LengthKey struct{}

// Value returns e's length.
func (LengthKey) Value(e kernel.Entity) (float64, error) {
	if k := e.Kind(); k != kernel.KindEdge && k != kernel.KindWire {
		return 0, kernel.Incompatible("length", e)
	}
	return e.Length()
}

func (LengthKey) String() string { return "length" }

// AreaKey ranks faces, shells, solids and closed planar wires by area.
type AreaKey struct{}

// Value returns e's area.
func (AreaKey) Value(e kernel.Entity) (float64, error) {
	switch e.Kind() {
	case kernel.KindFace, kernel.KindShell, kernel.KindSolid, kernel.KindWire:
		return e.Area()
	}
	return 0, kernel.Incompatible("area", e)
}

func (AreaKey) String() string { return "area" }

// ---------------------------------------------------------------------------
// NthSelector
// ---------------------------------------------------------------------------

// NthSelector groups entities whose keys are within Tolerance of each other
// and returns the cluster at Index. Clusters are ordered by ascending key,
// or descending when Max is false. Negative indices count from the end.
type NthSelector struct {
	Key       Key
	Index     int
	Max       bool
	Tolerance float64
}

// Nth builds a ranking selector over an arbitrary key.
func Nth(key Key, index int, max bool) *NthSelector {
	return &NthSelector{Key: key, Index: index, Max: max, Tolerance: DefaultTolerance}
}

// CenterNth ranks by center projected onto v.
func CenterNth(v v3.Vec, index int, max bool) *NthSelector {
	return Nth(CenterKey{Direction: v.Normalize()}, index, max)
}

// RadiusNth ranks edges by radius.
func RadiusNth(index int, max bool) *NthSelector {
	return Nth(RadiusKey{}, index, max)
}

// LengthNth ranks edges and wires by length.
func LengthNth(index int, max bool) *NthSelector {
	return Nth(LengthKey{}, index, max)
}

// AreaNth ranks faces, shells, solids and closed planar wires by area.
func AreaNth(index int, max bool) *NthSelector {
	return Nth(AreaKey{}, index, max)
}

type keyed struct {
	key    float64
	entity kernel.Entity
}

// Filter clusters entities by key and returns the selected cluster in
// ascending key order. Entities without a key, or with a NaN key, are
// skipped; if none has one the result is empty.
func (s *NthSelector) Filter(entities []kernel.Entity) ([]kernel.Entity, error) {
	if ck, ok := s.Key.(CenterKey); ok && !validDirection(ck.Direction) {
		return nil, fmt.Errorf("%s: %w", s, ErrBadDirection)
	}
	if len(entities) == 0 {
		return nil, &EmptyInputError{Selector: s.String()}
	}

	var items []keyed
	for _, e := range dedupe(entities) {
		v, err := s.Key.Value(e)
		if err != nil {
			if errors.Is(err, kernel.ErrIncompatible) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", s, err)
		}
		if math.IsNaN(v) {
			continue
		}
		items = append(items, keyed{key: v, entity: e})
	}
	if len(items) == 0 {
		return nil, nil
	}

	clusters := cluster(items, s.Tolerance)
	if !s.Max {
		for i, j := 0, len(clusters)-1; i < j; i, j = i+1, j-1 {
			clusters[i], clusters[j] = clusters[j], clusters[i]
		}
	}

	idx := s.Index
	if idx < 0 {
		idx += len(clusters)
	}
	if idx < 0 || idx >= len(clusters) {
		return nil, &IndexOutOfRangeError{Selector: s.String(), Index: s.Index, Count: len(clusters)}
	}

	out := make([]kernel.Entity, len(clusters[idx]))
	for i, it := range clusters[idx] {
		out[i] = it.entity
	}
	return out, nil
}

// cluster sorts items by key and splits them into runs. A run is anchored on
// its first key: an item joins it while within tol of that anchor, so
// clusters never chain through a sequence of close neighbours.
func cluster(items []keyed, tol float64) [][]keyed {
	sort.SliceStable(items, func(i, j int) bool { return items[i].key < items[j].key })

	var clusters [][]keyed
	start := 0
	for i := 1; i <= len(items); i++ {
		if i == len(items) || items[i].key-items[start].key > tol {
			clusters = append(clusters, items[start:i])
			start = i
		}
	}
	return clusters
}

func (s *NthSelector) String() string {
	if ck, ok := s.Key.(CenterKey); ok {
		op := ">>"
		if !s.Max {
			op = "<<"
		}
		return fmt.Sprintf("%s%s[%d]", op, formatVec(ck.Direction), s.Index)
	}
	dir := "max"
	if !s.Max {
		dir = "min"
	}
	return fmt.Sprintf("nth(%s,%d,%s)", s.Key, s.Index, dir)
}
