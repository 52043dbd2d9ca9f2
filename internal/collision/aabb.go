package collision

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"physics-adapter/internal/dynamics"
)

// AABB is an axis-aligned box in world coordinates.
type AABB struct {
	Min r3.Vec
	Max r3.Vec
}

// ShapeNodeAABB returns the world bounds of a shape-node.
func ShapeNodeAABB(sn *dynamics.ShapeNode) AABB {
	lo, hi := dynamics.TransformBounds(sn.Transform(), sn.Shape())
	return AABB{Min: lo, Max: hi}
}

func (a AABB) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(a.Min, a.Max))
}

func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// penetrationAxis returns the overlap amount and axis index (0=X, 1=Y, 2=Z) for the minimum penetration.
// If no overlap, returns (0, -1).
func penetrationAxis(a, b AABB) (depth float64, axis int) {
	overlapX := math.Min(a.Max.X, b.Max.X) - math.Max(a.Min.X, b.Min.X)
	overlapY := math.Min(a.Max.Y, b.Max.Y) - math.Max(a.Min.Y, b.Min.Y)
	overlapZ := math.Min(a.Max.Z, b.Max.Z) - math.Max(a.Min.Z, b.Min.Z)
	if overlapX <= 0 || overlapY <= 0 || overlapZ <= 0 {
		return 0, -1
	}
	depth = overlapX
	axis = 0
	if overlapY < depth {
		depth = overlapY
		axis = 1
	}
	if overlapZ < depth {
		depth = overlapZ
		axis = 2
	}
	return depth, axis
}

// overlapCenter is the centre of the intersection of two overlapping boxes.
func overlapCenter(a, b AABB) r3.Vec {
	lo := r3.Vec{X: math.Max(a.Min.X, b.Min.X), Y: math.Max(a.Min.Y, b.Min.Y), Z: math.Max(a.Min.Z, b.Min.Z)}
	hi := r3.Vec{X: math.Min(a.Max.X, b.Max.X), Y: math.Min(a.Max.Y, b.Max.Y), Z: math.Min(a.Max.Z, b.Max.Z)}
	return r3.Scale(0.5, r3.Add(lo, hi))
}

func axisVec(axis int) r3.Vec {
	switch axis {
	case 0:
		return r3.Vec{X: 1}
	case 1:
		return r3.Vec{Y: 1}
	}
	return r3.Vec{Z: 1}
}

func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}
