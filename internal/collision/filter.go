package collision

import (
	"physics-adapter/internal/dynamics"
)

// Filter decides whether a candidate pair of shape-nodes is skipped by the detector.
type Filter interface {
	IgnoresCollision(a, b *dynamics.ShapeNode) bool
}

// BodyNodeFilter is the default exclusion rule. A pair is ignored when both shapes are on the same
// body-node, when neither skeleton is mobile, when they share a skeleton whose self-collision check
// is off, or when their body-nodes are joined directly and adjacent checks are off.
type BodyNodeFilter struct{}

func (BodyNodeFilter) IgnoresCollision(a, b *dynamics.ShapeNode) bool {
	if a == b {
		return true
	}
	ba, bb := a.BodyNode(), b.BodyNode()
	if ba == nil || bb == nil {
		return true
	}
	if ba == bb {
		return true
	}
	sa, sb := ba.Skeleton(), bb.Skeleton()
	if !sa.IsMobile() && !sb.IsMobile() {
		return true
	}
	if sa == sb {
		if !sa.SelfCollisionEnabled() {
			return true
		}
		if !sa.AdjacentBodyCheckEnabled() && AreAdjacent(ba, bb) {
			return true
		}
	}
	return false
}

// AreAdjacent reports whether one body-node is the direct parent of the other.
func AreAdjacent(a, b *dynamics.BodyNode) bool {
	return a.Parent() == b || b.Parent() == a
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(a, b *dynamics.ShapeNode) bool

func (f FilterFunc) IgnoresCollision(a, b *dynamics.ShapeNode) bool { return f(a, b) }
