package kernel

import (
	"sort"
	"strings"
)

// GeomType is the canonical, kernel-independent name of a surface or curve
// type. Kernels translate their own type identifiers into these names.
type GeomType string

// Surface types.
const (
	GeomPlane    GeomType = "PLANE"
	GeomCylinder GeomType = "CYLINDER"
	GeomCone     GeomType = "CONE"
	GeomSphere   GeomType = "SPHERE"
	GeomTorus    GeomType = "TORUS"
)

// Curve types.
const (
	GeomLine      GeomType = "LINE"
	GeomCircle    GeomType = "CIRCLE"
	GeomEllipse   GeomType = "ELLIPSE"
	GeomHyperbola GeomType = "HYPERBOLA"
	GeomParabola  GeomType = "PARABOLA"
)

// Shared by surfaces and curves.
const (
	GeomBezier  GeomType = "BEZIER"
	GeomBSpline GeomType = "BSPLINE"
)

// GeomOther classifies entities with no recognised surface or curve,
// including vertices, wires, shells and solids. It cannot be queried.
const GeomOther GeomType = "OTHER"

// selectable is the vocabulary accepted after the % type operator.
var selectable = map[GeomType]bool{
	GeomPlane: true, GeomCylinder: true, GeomCone: true, GeomSphere: true, GeomTorus: true,
	GeomLine: true, GeomCircle: true, GeomEllipse: true, GeomHyperbola: true, GeomParabola: true,
	GeomBezier: true, GeomBSpline: true,
}

// LookupGeomType resolves a type name case-insensitively. OTHER and
// unknown names are rejected.
func LookupGeomType(name string) (GeomType, bool) {
	t := GeomType(strings.ToUpper(name))
	return t, selectable[t]
}

// GeomTypes returns the selectable vocabulary in sorted order.
func GeomTypes() []GeomType {
	out := make([]GeomType, 0, len(selectable))
	for t := range selectable {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
