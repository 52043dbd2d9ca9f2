package adapter

import (
	"go.uber.org/zap"

	"physics-adapter/internal/core"
	"physics-adapter/internal/dynamics"
	"physics-adapter/internal/logger"
)

// SingleBodyColliderAdapter owns the engine-side collision shape of one collider. Build creates the
// shape; the body adapter then places it on its body-node and hands the shape-node back.
type SingleBodyColliderAdapter struct {
	collider  *core.Collider
	shape     dynamics.Shape
	shapeNode *dynamics.ShapeNode
	filter    *BitmaskCollisionFilter
	detached  bool

	log *zap.Logger
}

// NewSingleBodyColliderAdapter panics when collider is nil.
func NewSingleBodyColliderAdapter(collider *core.Collider, log *zap.Logger) *SingleBodyColliderAdapter {
	log = logger.OrNop(log)
	if collider == nil {
		log.Panic("collider adapter needs a collider")
	}
	return &SingleBodyColliderAdapter{collider: collider, log: log}
}

// Build creates the collision shape from the collider's shape descriptor. A descriptor the factory
// rejects leaves CollisionShape nil.
func (a *SingleBodyColliderAdapter) Build() {
	a.shape = CreateCollisionShape(a.collider.Data.Shape, a.log)
}

func (a *SingleBodyColliderAdapter) Collider() *core.Collider            { return a.collider }
func (a *SingleBodyColliderAdapter) CollisionShape() dynamics.Shape      { return a.shape }
func (a *SingleBodyColliderAdapter) ShapeNode() *dynamics.ShapeNode      { return a.shapeNode }
func (a *SingleBodyColliderAdapter) SetShapeNode(sn *dynamics.ShapeNode) { a.shapeNode = sn }

// RegisterFilter stores the group and mask of the collider in f for the current shape-node.
func (a *SingleBodyColliderAdapter) RegisterFilter(f *BitmaskCollisionFilter) {
	if f == nil || a.shapeNode == nil {
		return
	}
	a.filter = f
	f.SetCollisionGroup(a.shapeNode, a.collider.Data.CollisionGroup)
	f.SetCollisionMask(a.shapeNode, a.collider.Data.CollisionMask)
}

// SetCollisionGroup updates the collider data and, once registered, the filter.
func (a *SingleBodyColliderAdapter) SetCollisionGroup(group uint32) {
	a.collider.Data.CollisionGroup = group
	if a.filter != nil && a.shapeNode != nil {
		a.filter.SetCollisionGroup(a.shapeNode, group)
	}
}

func (a *SingleBodyColliderAdapter) SetCollisionMask(mask uint32) {
	a.collider.Data.CollisionMask = mask
	if a.filter != nil && a.shapeNode != nil {
		a.filter.SetCollisionMask(a.shapeNode, mask)
	}
}

// OnDetach unregisters the shape-node from the filter. Safe to call more than once.
func (a *SingleBodyColliderAdapter) OnDetach() {
	if a.detached {
		return
	}
	if a.filter != nil && a.shapeNode != nil {
		a.filter.Remove(a.shapeNode)
	}
	a.filter = nil
	a.detached = true
}

func (a *SingleBodyColliderAdapter) Detached() bool { return a.detached }
