package brep

import (
	"fmt"
	"math"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Entity = (*entity)(nil)

// geom is the kernel's own surface/curve/topology classification.
type geom int

const (
	geomPoint    geom = iota // vertex
	geomPolygon              // planar polygonal face
	geomDisc                 // planar circular face
	geomCylinder             // cylindrical face
	geomSegment              // straight edge
	geomCircle               // full circular edge
	geomWire                 // chain of edges
	geomShell                // set of faces
	geomSolid                // closed set of faces
)

// surfaceTypes and curveTypes translate kernel geometry to canonical names.
var surfaceTypes = map[geom]kernel.GeomType{
	geomPolygon:  kernel.GeomPlane,
	geomDisc:     kernel.GeomPlane,
	geomCylinder: kernel.GeomCylinder,
}

var curveTypes = map[geom]kernel.GeomType{
	geomSegment: kernel.GeomLine,
	geomCircle:  kernel.GeomCircle,
}

// entity is the single concrete sub-shape type. Which fields are meaningful
// depends on geom:
//
//	point            pts[0]
//	polygon          pts (cyclic corners), axis = outward normal
//	segment          pts[0..1], axis = direction first -> last
//	disc, circle     center, axis, ref (seam direction), radius
//	cylinder         center (base), axis, ref, radius, height
//	wire/shell/solid parts
type entity struct {
	kind   kernel.ShapeKind
	geom   geom
	index  int
	pts    []v3.Vec
	center v3.Vec
	axis   v3.Vec
	ref    v3.Vec
	radius float64
	height float64
	parts  []*entity
	closed bool
	planar bool
}

// String names the entity the way FreeCAD does: Face1, Edge12, ...
func (e *entity) String() string {
	return fmt.Sprintf("%s%d", e.kind, e.index)
}

// Kind returns the topological kind.
func (e *entity) Kind() kernel.ShapeKind {
	return e.kind
}

// GeomType returns the canonical classification.
func (e *entity) GeomType() kernel.GeomType {
	var t kernel.GeomType
	switch e.kind {
	case kernel.KindFace:
		t = surfaceTypes[e.geom]
	case kernel.KindEdge:
		t = curveTypes[e.geom]
	}
	if t == "" {
		return kernel.GeomOther
	}
	return t
}

// CenterOfMass returns the centroid. Wires are weighted by edge length,
// shells and solids by face area.
func (e *entity) CenterOfMass() v3.Vec {
	switch e.geom {
	case geomPoint:
		return e.pts[0]
	case geomPolygon, geomSegment:
		var sum v3.Vec
		for _, p := range e.pts {
			sum = sum.Add(p)
		}
		return sum.MulScalar(1 / float64(len(e.pts)))
	case geomDisc, geomCircle:
		return e.center
	case geomCylinder:
		return e.center.Add(e.axis.MulScalar(e.height / 2))
	case geomWire:
		return weightedCenter(e.parts, func(p *entity) float64 {
			l, _ := p.Length()
			return l
		})
	default:
		return weightedCenter(e.parts, func(p *entity) float64 {
			a, _ := p.Area()
			return a
		})
	}
}

func weightedCenter(parts []*entity, weight func(*entity) float64) v3.Vec {
	var sum v3.Vec
	var total float64
	for _, p := range parts {
		w := weight(p)
		sum = sum.Add(p.CenterOfMass().MulScalar(w))
		total += w
	}
	if total == 0 {
		return sum
	}
	return sum.MulScalar(1 / total)
}

// BoundingBox returns the exact axis-aligned bounding box.
func (e *entity) BoundingBox() sdf.Box3 {
	switch e.geom {
	case geomPoint, geomPolygon, geomSegment:
		return kernel.PointBox(e.pts...)
	case geomDisc, geomCircle:
		return circleBox(e.center, e.axis, e.radius)
	case geomCylinder:
		top := e.center.Add(e.axis.MulScalar(e.height))
		return kernel.UnionBox(circleBox(e.center, e.axis, e.radius), circleBox(top, e.axis, e.radius))
	default:
		bb := e.parts[0].BoundingBox()
		for _, p := range e.parts[1:] {
			bb = kernel.UnionBox(bb, p.BoundingBox())
		}
		return bb
	}
}

// circleBox bounds a circle: along each world axis the extent is
// r*sqrt(1 - n_i^2) for unit normal n.
func circleBox(c, n v3.Vec, r float64) sdf.Box3 {
	ext := v3.Vec{
		X: r * math.Sqrt(math.Max(0, 1-n.X*n.X)),
		Y: r * math.Sqrt(math.Max(0, 1-n.Y*n.Y)),
		Z: r * math.Sqrt(math.Max(0, 1-n.Z*n.Z)),
	}
	return sdf.Box3{Min: c.Sub(ext), Max: c.Add(ext)}
}

// Normal returns the face normal at the middle of the parameter range.
// For a cylinder that is the radial direction opposite the seam.
func (e *entity) Normal() (v3.Vec, error) {
	switch e.geom {
	case geomPolygon, geomDisc:
		return e.axis, nil
	case geomCylinder:
		return e.ref.Neg(), nil
	}
	return v3.Vec{}, kernel.Incompatible("normal", e)
}

// Tangent returns the edge tangent at the middle of the parameter range.
func (e *entity) Tangent() (v3.Vec, error) {
	switch e.geom {
	case geomSegment:
		return e.axis, nil
	case geomCircle:
		// p(t) = c + r(cos t ref + sin t w); at t = pi the tangent is -w.
		return e.axis.Cross(e.ref).Neg(), nil
	}
	return v3.Vec{}, kernel.Incompatible("tangent", e)
}

// Length returns the arc length of edges and wires.
func (e *entity) Length() (float64, error) {
	switch e.geom {
	case geomSegment:
		return kernel.Distance(e.pts[0], e.pts[1]), nil
	case geomCircle:
		return 2 * math.Pi * e.radius, nil
	case geomWire:
		var total float64
		for _, p := range e.parts {
			l, err := p.Length()
			if err != nil {
				return 0, err
			}
			total += l
		}
		return total, nil
	}
	return 0, kernel.Incompatible("length", e)
}

// Area returns the surface area of faces, shells and solids. For a wire it
// builds the enclosed planar face on demand, which fails unless the wire is
// closed and planar.
func (e *entity) Area() (float64, error) {
	switch e.geom {
	case geomPolygon:
		return polygonArea(e.pts), nil
	case geomDisc:
		return math.Pi * e.radius * e.radius, nil
	case geomCylinder:
		return 2 * math.Pi * e.radius * e.height, nil
	case geomShell, geomSolid:
		var total float64
		for _, p := range e.parts {
			a, err := p.Area()
			if err != nil {
				return 0, err
			}
			total += a
		}
		return total, nil
	case geomWire:
		return e.wireArea()
	}
	return 0, kernel.Incompatible("area", e)
}

func (e *entity) wireArea() (float64, error) {
	if !e.closed || !e.planar {
		return 0, fmt.Errorf("cannot build a face from %s, only closed planar wires are supported: %w",
			e, kernel.ErrIncompatible)
	}
	if len(e.parts) == 1 && e.parts[0].geom == geomCircle {
		r := e.parts[0].radius
		return math.Pi * r * r, nil
	}
	for _, p := range e.parts {
		if p.geom != geomSegment {
			return 0, fmt.Errorf("cannot build a face from %s with curved edges: %w", e, kernel.ErrIncompatible)
		}
	}
	return polygonArea(chain(e.parts)), nil
}

// chain walks segments head to tail and returns the cyclic corner list.
// Segment orientation inside the wire does not matter.
func chain(segs []*entity) []v3.Vec {
	a, b := segs[0].pts[0], segs[0].pts[1]
	if len(segs) > 1 && !touches(segs[1], b) {
		a, b = b, a
	}
	pts := []v3.Vec{a, b}
	for _, s := range segs[1:] {
		last := pts[len(pts)-1]
		if kernel.Distance(s.pts[0], last) <= chainTolerance {
			pts = append(pts, s.pts[1])
		} else {
			pts = append(pts, s.pts[0])
		}
	}
	// The walk ends back on the first corner.
	return pts[:len(pts)-1]
}

const chainTolerance = 1e-9

func touches(s *entity, p v3.Vec) bool {
	return kernel.Distance(s.pts[0], p) <= chainTolerance || kernel.Distance(s.pts[1], p) <= chainTolerance
}

// polygonArea returns the area of a planar polygon from its cyclic corners.
func polygonArea(pts []v3.Vec) float64 {
	var sum v3.Vec
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum = sum.Add(p.Cross(q))
	}
	return sum.Length() / 2
}

// Radius returns the radius of circular edges.
func (e *entity) Radius() (float64, error) {
	if e.geom == geomCircle {
		return e.radius, nil
	}
	return 0, kernel.Incompatible("radius", e)
}
