package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// BodyAdapter is the engine-side representation of one body. Implementations panic when called
// out of order (before Build, or Initialize without a world) and log a warning for velocity
// sets their joint cannot take.
type BodyAdapter interface {
	Build()
	Initialize()
	Reset()
	OnDetach()

	SetTransform(tf mgl64.Mat4)
	GetTransform() mgl64.Mat4
	SetLinearVelocity(v mgl64.Vec3)
	SetAngularVelocity(w mgl64.Vec3)
	GetLinearVelocity() mgl64.Vec3
	GetAngularVelocity() mgl64.Vec3
	SetForceCOM(f mgl64.Vec3)
	SetTorqueCOM(t mgl64.Vec3)
	GetMass() float64
}

// ColliderAdapter builds the engine collision shape for a Collider.
type ColliderAdapter interface {
	Build()
	OnDetach()
}

// Collider is the collision part of a body.
type Collider struct {
	Data    CollisionData
	body    *SingleBody
	adapter ColliderAdapter
}

// Body is the owning body; nil once the body has been detached.
func (c *Collider) Body() *SingleBody { return c.body }

func (c *Collider) Adapter() ColliderAdapter { return c.adapter }

// SetAdapter attaches the engine adapter. A collider takes exactly one adapter.
func (c *Collider) SetAdapter(a ColliderAdapter) error {
	if c.adapter != nil {
		return fmt.Errorf("collider already has an adapter")
	}
	c.adapter = a
	return nil
}

// SingleBody is an engine-agnostic rigid body. Descriptors are deep-copied on construction so
// later changes to the caller's slices do not leak into a built body.
type SingleBody struct {
	ID   uuid.UUID
	Name string
	Data BodyData
	Tf0  mgl64.Mat4
	Tf   mgl64.Mat4

	collider *Collider
	adapter  BodyAdapter
	detached bool
}

// NewSingleBody creates a body at the initial transform tf0.
func NewSingleBody(name string, data BodyData, tf0 mgl64.Mat4) (*SingleBody, error) {
	b := &SingleBody{
		ID:   uuid.New(),
		Name: name,
		Tf0:  tf0,
		Tf:   tf0,
	}
	if err := copier.CopyWithOption(&b.Data, &data, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("copy body data of %q: %w", name, err)
	}
	if !b.Data.Collision.Shape.IsZero() {
		b.collider = &Collider{Data: b.Data.Collision, body: b}
	}
	return b, nil
}

// Collider returns nil for bodies without a collision shape.
func (b *SingleBody) Collider() *Collider { return b.collider }

func (b *SingleBody) Adapter() BodyAdapter { return b.adapter }

func (b *SingleBody) IsDynamic() bool { return b.Data.DynType == Dynamic }

func (b *SingleBody) Detached() bool { return b.detached }

// SetAdapter attaches the engine adapter. A body takes exactly one adapter and never a new one
// after detach.
func (b *SingleBody) SetAdapter(a BodyAdapter) error {
	switch {
	case b.detached:
		return fmt.Errorf("body %q is detached", b.Name)
	case b.adapter != nil:
		return fmt.Errorf("body %q already has an adapter", b.Name)
	}
	b.adapter = a
	return nil
}

// SyncTransform refreshes the cached Tf from the adapter.
func (b *SingleBody) SyncTransform() {
	if b.adapter != nil && !b.detached {
		b.Tf = b.adapter.GetTransform()
	}
}

// Detach tells the adapters to drop their references and severs the body from them.
func (b *SingleBody) Detach() {
	if b.detached {
		return
	}
	if b.collider != nil {
		if b.collider.adapter != nil {
			b.collider.adapter.OnDetach()
		}
		b.collider.adapter = nil
		b.collider.body = nil
	}
	if b.adapter != nil {
		b.adapter.OnDetach()
	}
	b.adapter = nil
	b.detached = true
}
