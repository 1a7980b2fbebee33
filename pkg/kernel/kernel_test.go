package kernel

import (
	"errors"
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- ShapeKind tests ---

func TestShapeKindString(t *testing.T) {
	tests := []struct {
		kind ShapeKind
		want string
	}{
		{KindVertex, "Vertex"},
		{KindEdge, "Edge"},
		{KindWire, "Wire"},
		{KindFace, "Face"},
		{KindShell, "Shell"},
		{KindSolid, "Solid"},
		{ShapeKind(42), "ShapeKind(42)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []ShapeKind{KindVertex, KindEdge, KindWire, KindFace, KindShell, KindSolid} {
		got, ok := ParseKind(k.Plural())
		require.True(t, ok, "plural %q should parse", k.Plural())
		assert.Equal(t, k, got)
	}

	got, ok := ParseKind("FACES")
	assert.True(t, ok)
	assert.Equal(t, KindFace, got)

	_, ok = ParseKind("face")
	assert.False(t, ok, "singular words are not kinds")
}

// --- GeomType tests ---

func TestLookupGeomType(t *testing.T) {
	got, ok := LookupGeomType("plane")
	assert.True(t, ok)
	assert.Equal(t, GeomPlane, got)

	_, ok = LookupGeomType("OTHER")
	assert.False(t, ok, "OTHER is not selectable")

	_, ok = LookupGeomType("SQUIGGLE")
	assert.False(t, ok)
}

func TestGeomTypesSorted(t *testing.T) {
	types := GeomTypes()
	require.NotEmpty(t, types)
	for i := 1; i < len(types); i++ {
		assert.Less(t, string(types[i-1]), string(types[i]))
	}
	assert.Contains(t, types, GeomCircle)
	assert.NotContains(t, types, GeomOther)
}

// --- Vector helper tests ---

func TestAngle(t *testing.T) {
	tests := []struct {
		name string
		a, b v3.Vec
		want float64
	}{
		{"same", v3.Vec{X: 1}, v3.Vec{X: 2}, 0},
		{"opposite", v3.Vec{Z: 1}, v3.Vec{Z: -1}, math.Pi},
		{"perpendicular", v3.Vec{X: 1}, v3.Vec{Y: 1}, math.Pi / 2},
		{"diagonal", v3.Vec{X: 1}, v3.Vec{X: 1, Y: 1}, math.Pi / 4},
		{"zero vector", v3.Vec{}, v3.Vec{X: 1}, math.Pi / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Angle(tt.a, tt.b), 1e-12)
		})
	}
}

func TestPointBox(t *testing.T) {
	bb := PointBox(v3.Vec{X: 1, Y: 5, Z: -1}, v3.Vec{X: -2, Y: 0, Z: 3})
	assert.Equal(t, v3.Vec{X: -2, Y: 0, Z: -1}, bb.Min)
	assert.Equal(t, v3.Vec{X: 1, Y: 5, Z: 3}, bb.Max)

	assert.Equal(t, sdf.Box3{}, PointBox())
}

func TestUnionBox(t *testing.T) {
	a := sdf.Box3{Min: v3.Vec{}, Max: v3.Vec{X: 1, Y: 1, Z: 1}}
	b := sdf.Box3{Min: v3.Vec{X: -1, Y: 0.5, Z: 0}, Max: v3.Vec{X: 0, Y: 2, Z: 0.5}}
	u := UnionBox(a, b)
	assert.Equal(t, v3.Vec{X: -1}, u.Min)
	assert.Equal(t, v3.Vec{X: 1, Y: 2, Z: 1}, u.Max)
}

// --- Compile-time interface check with a stub kernel ---

// stubEntity is a minimal Entity implementation for testing.
type stubEntity struct {
	kind ShapeKind
}

func (e *stubEntity) Kind() ShapeKind          { return e.kind }
func (e *stubEntity) BoundingBox() sdf.Box3    { return sdf.Box3{} }
func (e *stubEntity) CenterOfMass() v3.Vec     { return v3.Vec{} }
func (e *stubEntity) GeomType() GeomType       { return GeomOther }
func (e *stubEntity) Normal() (v3.Vec, error)  { return v3.Vec{}, Incompatible("normal", e) }
func (e *stubEntity) Tangent() (v3.Vec, error) { return v3.Vec{}, Incompatible("tangent", e) }
func (e *stubEntity) Length() (float64, error) { return 0, Incompatible("length", e) }
func (e *stubEntity) Area() (float64, error)   { return 0, Incompatible("area", e) }
func (e *stubEntity) Radius() (float64, error) { return 0, Incompatible("radius", e) }

// stubShape holds a single vertex.
type stubShape struct {
	v *stubEntity
}

func (s *stubShape) BoundingBox() sdf.Box3 { return sdf.Box3{} }

func (s *stubShape) SubShapes(kind ShapeKind) []Entity {
	if kind == KindVertex {
		return []Entity{s.v}
	}
	return nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Entity = (*stubEntity)(nil)
var _ Shape = (*stubShape)(nil)

func TestIncompatibleWrapsSentinel(t *testing.T) {
	e := &stubEntity{kind: KindVertex}
	_, err := e.Radius()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompatible))
	assert.Contains(t, err.Error(), "radius of Vertex")
}

func TestStubShapeSubShapes(t *testing.T) {
	var s Shape = &stubShape{v: &stubEntity{kind: KindVertex}}
	assert.Len(t, s.SubShapes(KindVertex), 1)
	assert.Empty(t, s.SubShapes(KindFace))
}
