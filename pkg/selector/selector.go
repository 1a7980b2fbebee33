// Package selector implements the selector algebra: primitive selectors
// that filter a list of kernel entities by direction, type, position or
// clustered rank, and the combinators that compose them.
//
// A Selector is immutable once built. It holds no reference to any entity
// list, so one tree can filter many lists, concurrently if the kernel's
// accessors allow it.
package selector

import (
	"math"
	"strconv"
	"strings"

	"github.com/chazu/facet/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultTolerance is used by every constructor in this package.
const DefaultTolerance = 1e-6

// Selector filters an ordered list of entities.
//
// Filter returns a subset of its input and never modifies the input slice
// or the entities in it. String returns a canonical description used in
// error messages.
type Selector interface {
	Filter(entities []kernel.Entity) ([]kernel.Entity, error)
	String() string
}

// Evaluate applies s to entities. It exists so callers holding a tree do not
// need to know which node is the root.
func Evaluate(s Selector, entities []kernel.Entity) ([]kernel.Entity, error) {
	return s.Filter(entities)
}

// ---------------------------------------------------------------------------
// Identity
// ---------------------------------------------------------------------------

// IdentitySelector selects everything. It is the universe that Not
// subtracts from.
type IdentitySelector struct{}

// Identity returns the select-everything selector.
func Identity() *IdentitySelector {
	return &IdentitySelector{}
}

// Filter returns entities with repeated handles removed.
func (s *IdentitySelector) Filter(entities []kernel.Entity) ([]kernel.Entity, error) {
	return dedupe(entities), nil
}

func dedupe(entities []kernel.Entity) []kernel.Entity {
	seen := make(map[kernel.Entity]bool, len(entities))
	out := make([]kernel.Entity, 0, len(entities))
	for _, e := range entities {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

func (s *IdentitySelector) String() string {
	return "all"
}

// ---------------------------------------------------------------------------
// Formatting helpers
// ---------------------------------------------------------------------------

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// validDirection reports whether v can serve as a direction: finite and
// of non-zero length.
func validDirection(v v3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return v.Length() > 0
}

// formatVec prints v the way the query grammar reads vector literals.
func formatVec(v v3.Vec) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(formatFloat(v.X))
	b.WriteByte(',')
	b.WriteString(formatFloat(v.Y))
	b.WriteByte(',')
	b.WriteString(formatFloat(v.Z))
	b.WriteByte(')')
	return b.String()
}
