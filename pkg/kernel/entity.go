package kernel

import (
	"fmt"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ShapeKind enumerates topological entity kinds.
type ShapeKind int

const (
	KindVertex ShapeKind = iota
	KindEdge
	KindWire
	KindFace
	KindShell
	KindSolid
)

func (k ShapeKind) String() string {
	switch k {
	case KindVertex:
		return "Vertex"
	case KindEdge:
		return "Edge"
	case KindWire:
		return "Wire"
	case KindFace:
		return "Face"
	case KindShell:
		return "Shell"
	case KindSolid:
		return "Solid"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// kindPlurals maps the plural words used in queries and scripts to kinds.
var kindPlurals = map[string]ShapeKind{
	"vertices": KindVertex,
	"edges":    KindEdge,
	"wires":    KindWire,
	"faces":    KindFace,
	"shells":   KindShell,
	"solids":   KindSolid,
}

// ParseKind resolves a plural kind word ("faces", "EDGES", ...).
func ParseKind(word string) (ShapeKind, bool) {
	k, ok := kindPlurals[strings.ToLower(word)]
	return k, ok
}

// Plural returns the plural word for k, as accepted by ParseKind.
func (k ShapeKind) Plural() string {
	for w, kind := range kindPlurals {
		if kind == k {
			return w
		}
	}
	return strings.ToLower(k.String()) + "s"
}

// Entity is a read-only handle to one topological sub-element of a shape.
//
// Entities are compared by identity. Implementations must be pointer types
// so that two handles are equal only if they refer to the same element.
type Entity interface {
	Kind() ShapeKind
	BoundingBox() sdf.Box3
	CenterOfMass() v3.Vec

	// GeomType is the canonical classification of the underlying surface
	// (faces) or curve (edges); OTHER for everything else.
	GeomType() GeomType

	// Kind-specific values. Each returns an error wrapping ErrIncompatible
	// when the value does not exist for this entity.
	Normal() (v3.Vec, error)  // faces, at a representative parameter
	Tangent() (v3.Vec, error) // edges, at a representative parameter
	Length() (float64, error) // edges and wires
	Area() (float64, error)   // faces, shells, solids, closed planar wires
	Radius() (float64, error) // circular edges and wires
}

// Incompatible builds an ErrIncompatible error naming the value and entity.
func Incompatible(value string, e Entity) error {
	return fmt.Errorf("%s of %s: %w", value, e.Kind(), ErrIncompatible)
}
