package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Angle returns the angle between a and b in radians, in [0, π].
// The angle involving a zero vector is reported as π/2.
func Angle(a, b v3.Vec) float64 {
	la, lb := a.Length(), b.Length()
	if la == 0 || lb == 0 {
		return math.Pi / 2
	}
	c := a.Dot(b) / (la * lb)
	// Rounding can push |c| just past 1.
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c)
}

// Distance returns the euclidean distance between two points.
func Distance(a, b v3.Vec) float64 {
	return a.Sub(b).Length()
}

// PointBox returns the smallest box containing every point.
// It returns the zero box for no points.
func PointBox(pts ...v3.Vec) sdf.Box3 {
	if len(pts) == 0 {
		return sdf.Box3{}
	}
	bb := sdf.Box3{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		bb.Min = bb.Min.Min(p)
		bb.Max = bb.Max.Max(p)
	}
	return bb
}

// UnionBox returns the smallest box containing both boxes.
func UnionBox(a, b sdf.Box3) sdf.Box3 {
	return sdf.Box3{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}
