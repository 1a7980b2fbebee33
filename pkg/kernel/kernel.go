// Package kernel defines the abstract geometry kernel interface.
// Implementations (brep) provide shapes whose sub-entities (faces, edges,
// vertices, wires, shells, solids) are exposed as read-only handles. The
// selector packages only ever see those handles, so kernels can be swapped
// without changing the rest of the system.
package kernel

import (
	"errors"

	"github.com/deadsy/sdfx/sdf"
)

// ErrIncompatible is returned by an Entity accessor when the requested value
// is not defined for that entity, e.g. the radius of a straight edge.
var ErrIncompatible = errors.New("value not defined for this entity")

// Shape is an opaque handle to a kernel shape.
// Implementations wrap their internal representation.
type Shape interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() sdf.Box3

	// SubShapes returns the sub-entities of the given kind, in kernel order.
	SubShapes(kind ShapeKind) []Entity
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Shape
	Cylinder(height, radius float64) Shape

	// Compound collects shapes without merging their topology.
	Compound(shapes ...Shape) Shape

	// Transforms
	Translate(s Shape, x, y, z float64) Shape
	Rotate(s Shape, x, y, z float64) Shape // Euler angles in degrees
}
