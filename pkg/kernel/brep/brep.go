// Package brep implements the kernel.Kernel interface with a small analytic
// boundary representation. Boxes and cylinders are built face by face with
// exact normals, lengths, areas and radii, which is all the selector
// packages need. Geometry math uses the github.com/deadsy/sdfx vector,
// box and matrix types.
package brep

import (
	"math"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*BrepKernel)(nil)
var _ kernel.Shape = (*shape)(nil)

// shape holds the sub-entities of a kernel shape, grouped by kind and in
// kernel order. Shapes are never mutated after construction.
type shape struct {
	byKind map[kernel.ShapeKind][]*entity
}

// BoundingBox returns the axis-aligned bounding box of every face, or of
// every vertex for shapes without faces.
func (s *shape) BoundingBox() sdf.Box3 {
	for _, kind := range []kernel.ShapeKind{kernel.KindFace, kernel.KindEdge, kernel.KindVertex} {
		ents := s.byKind[kind]
		if len(ents) == 0 {
			continue
		}
		bb := ents[0].BoundingBox()
		for _, e := range ents[1:] {
			bb = kernel.UnionBox(bb, e.BoundingBox())
		}
		return bb
	}
	return sdf.Box3{}
}

// SubShapes returns the entities of the given kind.
func (s *shape) SubShapes(kind kernel.ShapeKind) []kernel.Entity {
	ents := s.byKind[kind]
	out := make([]kernel.Entity, len(ents))
	for i, e := range ents {
		out[i] = e
	}
	return out
}

// number assigns 1-based indices per kind.
func (s *shape) number() *shape {
	for _, ents := range s.byKind {
		for i, e := range ents {
			e.index = i + 1
		}
	}
	return s
}

// copyWith returns a new shape whose entities are fresh copies passed
// through fn. Shared parts stay shared in the copy.
func (s *shape) copyWith(fn func(*entity)) *shape {
	memo := make(map[*entity]*entity)
	var dup func(e *entity) *entity
	dup = func(e *entity) *entity {
		if c, ok := memo[e]; ok {
			return c
		}
		c := *e
		c.pts = append([]v3.Vec(nil), e.pts...)
		c.parts = make([]*entity, len(e.parts))
		for i, p := range e.parts {
			c.parts[i] = dup(p)
		}
		fn(&c)
		memo[e] = &c
		return &c
	}
	out := &shape{byKind: make(map[kernel.ShapeKind][]*entity)}
	for kind, ents := range s.byKind {
		for _, e := range ents {
			out.byKind[kind] = append(out.byKind[kind], dup(e))
		}
	}
	return out
}

// BrepKernel implements kernel.Kernel with analytic B-rep shapes.
type BrepKernel struct{}

// New returns a new BrepKernel.
func New() *BrepKernel {
	return &BrepKernel{}
}

// unwrap extracts the underlying shape from a kernel.Shape.
func unwrap(s kernel.Shape) *shape {
	return s.(*shape)
}

// Box creates a box with the given dimensions and its minimum corner at the
// origin. Faces are ordered -X, +X, -Y, +Y, -Z, +Z.
func (k *BrepKernel) Box(x, y, z float64) kernel.Shape {
	corner := func(i int) v3.Vec {
		return v3.Vec{X: x * float64(i&1), Y: y * float64(i>>1&1), Z: z * float64(i>>2&1)}
	}

	s := &shape{byKind: make(map[kernel.ShapeKind][]*entity)}
	for i := 0; i < 8; i++ {
		s.add(point(corner(i)))
	}

	// An edge joins two corners whose indices differ in exactly one bit.
	edges := make(map[[2]int]*entity)
	for i := 0; i < 8; i++ {
		for bit := 0; bit < 3; bit++ {
			j := i | 1<<bit
			if j == i {
				continue
			}
			e := segment(corner(i), corner(j))
			edges[[2]int{i, j}] = e
			s.add(e)
		}
	}
	edgeBetween := func(i, j int) *entity {
		if i > j {
			i, j = j, i
		}
		return edges[[2]int{i, j}]
	}

	var faces []*entity
	for a := 0; a < 3; a++ {
		b, c := (a+1)%3, (a+2)%3
		for side := 0; side < 2; side++ {
			idx := func(u, v int) int { return side<<a | u<<b | v<<c }
			ring := []int{idx(0, 0), idx(1, 0), idx(1, 1), idx(0, 1)}

			normal := axisVec(a)
			if side == 0 {
				normal = normal.Neg()
			}
			pts := make([]v3.Vec, len(ring))
			for i, ci := range ring {
				pts[i] = corner(ci)
			}
			f := &entity{kind: kernel.KindFace, geom: geomPolygon, pts: pts, axis: normal}
			faces = append(faces, f)
			s.add(f)

			w := &entity{kind: kernel.KindWire, geom: geomWire, closed: true, planar: true}
			for i := range ring {
				w.parts = append(w.parts, edgeBetween(ring[i], ring[(i+1)%len(ring)]))
			}
			s.add(w)
		}
	}

	s.add(&entity{kind: kernel.KindShell, geom: geomShell, parts: faces})
	s.add(&entity{kind: kernel.KindSolid, geom: geomSolid, parts: faces})
	return s.number()
}

// Cylinder creates a cylinder standing on the XY plane, centred on the Z
// axis. The seam lies on +X. Faces are ordered side, top, bottom.
func (k *BrepKernel) Cylinder(height, radius float64) kernel.Shape {
	zAxis := v3.Vec{Z: 1}
	seam := v3.Vec{X: 1}
	top := v3.Vec{Z: height}

	s := &shape{byKind: make(map[kernel.ShapeKind][]*entity)}

	s.add(point(seam.MulScalar(radius)))
	s.add(point(seam.MulScalar(radius).Add(top)))

	topRim := &entity{kind: kernel.KindEdge, geom: geomCircle, center: top, axis: zAxis, ref: seam, radius: radius}
	seamLine := segment(seam.MulScalar(radius), seam.MulScalar(radius).Add(top))
	bottomRim := &entity{kind: kernel.KindEdge, geom: geomCircle, center: v3.Vec{}, axis: zAxis, ref: seam, radius: radius}
	s.add(topRim)
	s.add(seamLine)
	s.add(bottomRim)

	side := &entity{kind: kernel.KindFace, geom: geomCylinder, axis: zAxis, ref: seam, radius: radius, height: height}
	topCap := &entity{kind: kernel.KindFace, geom: geomDisc, center: top, axis: zAxis, ref: seam, radius: radius}
	bottomCap := &entity{kind: kernel.KindFace, geom: geomDisc, axis: zAxis.Neg(), ref: seam, radius: radius}
	faces := []*entity{side, topCap, bottomCap}
	for _, f := range faces {
		s.add(f)
	}

	s.add(&entity{kind: kernel.KindWire, geom: geomWire, closed: true,
		parts: []*entity{topRim, seamLine, bottomRim, seamLine}})
	s.add(&entity{kind: kernel.KindWire, geom: geomWire, closed: true, planar: true, parts: []*entity{topRim}})
	s.add(&entity{kind: kernel.KindWire, geom: geomWire, closed: true, planar: true, parts: []*entity{bottomRim}})

	s.add(&entity{kind: kernel.KindShell, geom: geomShell, parts: faces})
	s.add(&entity{kind: kernel.KindSolid, geom: geomSolid, parts: faces})
	return s.number()
}

// Compound collects the entities of several shapes into one shape.
// Entities are copied, so the result shares no handles with its inputs.
func (k *BrepKernel) Compound(shapes ...kernel.Shape) kernel.Shape {
	out := &shape{byKind: make(map[kernel.ShapeKind][]*entity)}
	for _, s := range shapes {
		c := unwrap(s).copyWith(func(*entity) {})
		for _, kind := range allKinds {
			out.byKind[kind] = append(out.byKind[kind], c.byKind[kind]...)
		}
	}
	return out.number()
}

// Translate moves a shape by (x, y, z).
func (k *BrepKernel) Translate(s kernel.Shape, x, y, z float64) kernel.Shape {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return transform(unwrap(s), m)
}

// Rotate rotates a shape by Euler angles (degrees) around X, Y, Z axes.
func (k *BrepKernel) Rotate(s kernel.Shape, x, y, z float64) kernel.Shape {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return transform(unwrap(s), m)
}

// transform maps positions through m and directions through its linear part.
func transform(s *shape, m sdf.M44) kernel.Shape {
	origin := m.MulPosition(v3.Vec{})
	dir := func(d v3.Vec) v3.Vec {
		if d == (v3.Vec{}) {
			return d
		}
		return m.MulPosition(d).Sub(origin).Normalize()
	}
	out := s.copyWith(func(e *entity) {
		for i, p := range e.pts {
			e.pts[i] = m.MulPosition(p)
		}
		e.center = m.MulPosition(e.center)
		e.axis = dir(e.axis)
		e.ref = dir(e.ref)
	})
	return out.number()
}

var allKinds = []kernel.ShapeKind{
	kernel.KindVertex, kernel.KindEdge, kernel.KindWire,
	kernel.KindFace, kernel.KindShell, kernel.KindSolid,
}

func (s *shape) add(e *entity) {
	s.byKind[e.kind] = append(s.byKind[e.kind], e)
}

func point(p v3.Vec) *entity {
	return &entity{kind: kernel.KindVertex, geom: geomPoint, pts: []v3.Vec{p}}
}

func segment(a, b v3.Vec) *entity {
	return &entity{kind: kernel.KindEdge, geom: geomSegment, pts: []v3.Vec{a, b}, axis: b.Sub(a).Normalize()}
}

func axisVec(a int) v3.Vec {
	switch a {
	case 0:
		return v3.Vec{X: 1}
	case 1:
		return v3.Vec{Y: 1}
	default:
		return v3.Vec{Z: 1}
	}
}
