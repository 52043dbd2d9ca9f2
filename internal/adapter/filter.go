package adapter

import (
	"physics-adapter/internal/collision"
	"physics-adapter/internal/dynamics"
)

// BitmaskCollisionFilter extends the body-node rules with per-shape group and mask bits. Two shapes
// may collide only when one's group intersects the other's mask. A shape that was never registered
// is never ignored on bitmask grounds.
type BitmaskCollisionFilter struct {
	collision.BodyNodeFilter

	groups map[*dynamics.ShapeNode]uint32
	masks  map[*dynamics.ShapeNode]uint32
}

func NewBitmaskCollisionFilter() *BitmaskCollisionFilter {
	return &BitmaskCollisionFilter{
		groups: make(map[*dynamics.ShapeNode]uint32),
		masks:  make(map[*dynamics.ShapeNode]uint32),
	}
}

// SetCollisionGroup inserts or overwrites the group bits of sn.
func (f *BitmaskCollisionFilter) SetCollisionGroup(sn *dynamics.ShapeNode, group uint32) {
	f.groups[sn] = group
}

// SetCollisionMask inserts or overwrites the mask bits of sn.
func (f *BitmaskCollisionFilter) SetCollisionMask(sn *dynamics.ShapeNode, mask uint32) {
	f.masks[sn] = mask
}

func (f *BitmaskCollisionFilter) CollisionGroup(sn *dynamics.ShapeNode) (uint32, bool) {
	g, ok := f.groups[sn]
	return g, ok
}

func (f *BitmaskCollisionFilter) CollisionMask(sn *dynamics.ShapeNode) (uint32, bool) {
	m, ok := f.masks[sn]
	return m, ok
}

// Remove forgets sn. Removing an unknown shape-node is a no-op.
func (f *BitmaskCollisionFilter) Remove(sn *dynamics.ShapeNode) {
	delete(f.groups, sn)
	delete(f.masks, sn)
}

// Len is the number of shape-nodes with a registered group.
func (f *BitmaskCollisionFilter) Len() int { return len(f.groups) }

func (f *BitmaskCollisionFilter) IgnoresCollision(a, b *dynamics.ShapeNode) bool {
	if f.BodyNodeFilter.IgnoresCollision(a, b) {
		return true
	}
	g1, ok1 := f.groups[a]
	m1, ok2 := f.masks[a]
	g2, ok3 := f.groups[b]
	m2, ok4 := f.masks[b]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return g1&m2 == 0 && g2&m1 == 0
}
