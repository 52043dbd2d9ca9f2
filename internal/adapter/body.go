package adapter

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"physics-adapter/internal/core"
	"physics-adapter/internal/dynamics"
	"physics-adapter/internal/logger"
	"physics-adapter/internal/mathbridge"
	"physics-adapter/internal/simulation"
)

// State is the lifecycle stage of a SingleBodyAdapter.
type State int

const (
	Unbuilt State = iota
	Built
	Initialized
	Detached
)

func (s State) String() string {
	switch s {
	case Unbuilt:
		return "unbuilt"
	case Built:
		return "built"
	case Initialized:
		return "initialized"
	case Detached:
		return "detached"
	}
	return "unknown"
}

// SingleBodyAdapter mirrors one core.SingleBody as a single-node skeleton in a world. Dynamic bodies
// hang from a free joint, static bodies from a weld joint. Calling an operation in the wrong state
// is a programming error and panics through the logger.
type SingleBodyAdapter struct {
	body     *core.SingleBody
	name     string
	tf0      mgl64.Mat4
	dynamic  bool
	collider *SingleBodyColliderAdapter

	skeleton *dynamics.Skeleton
	joint    dynamics.Joint
	node     *dynamics.BodyNode
	world    *simulation.World

	defaultDensity float64
	state          State

	log *zap.Logger
}

// NewSingleBodyAdapter creates the adapter of body and, when the body has a collider, its collider
// adapter. It does not attach itself to body; see Attach.
func NewSingleBodyAdapter(body *core.SingleBody, log *zap.Logger) *SingleBodyAdapter {
	log = logger.OrNop(log)
	if body == nil {
		log.Panic("body adapter needs a body")
	}
	a := &SingleBodyAdapter{
		body:           body,
		name:           body.Name,
		tf0:            body.Tf0,
		dynamic:        body.IsDynamic(),
		defaultDensity: core.DefaultDensity,
		log:            log.With(zap.String("body", body.Name)),
	}
	if c := body.Collider(); c != nil {
		a.collider = NewSingleBodyColliderAdapter(c, a.log)
	}
	return a
}

// Attach registers a and its collider adapter with the body.
func (a *SingleBodyAdapter) Attach() error {
	if err := a.body.SetAdapter(a); err != nil {
		return err
	}
	if a.collider != nil {
		return a.collider.Collider().SetAdapter(a.collider)
	}
	return nil
}

func (a *SingleBodyAdapter) Name() string                                { return a.name }
func (a *SingleBodyAdapter) State() State                                { return a.state }
func (a *SingleBodyAdapter) Body() *core.SingleBody                      { return a.body }
func (a *SingleBodyAdapter) ColliderAdapter() *SingleBodyColliderAdapter { return a.collider }
func (a *SingleBodyAdapter) Skeleton() *dynamics.Skeleton                { return a.skeleton }
func (a *SingleBodyAdapter) BodyNode() *dynamics.BodyNode                { return a.node }
func (a *SingleBodyAdapter) Joint() dynamics.Joint                       { return a.joint }
func (a *SingleBodyAdapter) World() *simulation.World                    { return a.world }

// SetWorld names the world Initialize registers the skeleton with.
func (a *SingleBodyAdapter) SetWorld(w *simulation.World) { a.world = w }

// SetDefaultDensity is used for colliders whose density is not positive.
func (a *SingleBodyAdapter) SetDefaultDensity(rho float64) {
	if rho > 0 {
		a.defaultDensity = rho
	}
}

func (a *SingleBodyAdapter) require(op string, ok bool) {
	if !ok {
		a.log.Panic("operation not allowed in current state",
			zap.String("op", op),
			zap.Stringer("state", a.state))
	}
}

func (a *SingleBodyAdapter) built() bool {
	return a.state == Built || a.state == Initialized
}

// Build creates the skeleton, its joint, body-node and collision shape, and moves the body to its
// initial transform.
func (a *SingleBodyAdapter) Build() {
	a.require("Build", a.state == Unbuilt)

	a.skeleton = dynamics.NewSkeleton(a.name)
	if a.dynamic {
		a.joint, a.node = a.skeleton.CreateJointAndBodyNodePair(nil, dynamics.NewFreeJoint(a.name+"_freejoint"), a.name)
	} else {
		a.joint, a.node = a.skeleton.CreateJointAndBodyNodePair(nil, dynamics.NewWeldJoint(a.name+"_weldjoint"), a.name)
	}

	var shape dynamics.Shape
	if a.collider != nil {
		a.collider.Build()
		shape = a.collider.CollisionShape()
		if shape != nil {
			sn := a.node.CreateShapeNode(shape, a.name+"_shape")
			sn.Friction = a.collider.Collider().Data.Friction
			a.collider.SetShapeNode(sn)
		}
	}

	if a.dynamic && shape != nil {
		data := a.collider.Collider().Data
		density := data.Density
		if density <= 0 {
			density = a.defaultDensity
		}
		if inertia, ok := massProperties(shape, a.body.Data.Inertia, density); ok {
			a.node.SetInertia(inertia)
		} else {
			a.log.Warn("keeping default inertia, computed mass is not positive",
				zap.String("shape", shape.Type()),
				zap.Float64("density", density))
		}
	}

	a.state = Built
	a.SetTransform(a.tf0)
	a.log.Debug("built body adapter",
		zap.String("joint", a.joint.Type()),
		zap.Float64("mass", a.node.Mass()))
}

// Initialize adds the skeleton to the world and registers the collider's group and mask when the
// world filters by bitmask.
func (a *SingleBodyAdapter) Initialize() {
	a.require("Initialize", a.state == Built && a.world != nil && a.skeleton != nil)

	a.world.AddSkeleton(a.skeleton)
	if f, ok := a.world.CollisionFilter().(*BitmaskCollisionFilter); ok && a.collider != nil {
		a.collider.RegisterFilter(f)
	}
	a.state = Initialized
}

// Reset restores the initial transform, and zero velocities for dynamic bodies.
func (a *SingleBodyAdapter) Reset() {
	a.require("Reset", a.built())

	a.SetTransform(a.tf0)
	if a.dynamic {
		a.SetLinearVelocity(mgl64.Vec3{})
		a.SetAngularVelocity(mgl64.Vec3{})
	}
}

// OnDetach drops the body reference. The skeleton stays readable but nothing else is allowed.
func (a *SingleBodyAdapter) OnDetach() {
	a.body = nil
	a.state = Detached
}

func (a *SingleBodyAdapter) SetTransform(tf mgl64.Mat4) {
	a.require("SetTransform", a.built())

	iso := mathbridge.Mat4ToIsometry(tf)
	if fj, ok := a.joint.(*dynamics.FreeJoint); ok {
		fj.SetTransform(iso)
		return
	}
	a.joint.SetTransformFromParentBodyNode(iso)
}

func (a *SingleBodyAdapter) GetTransform() mgl64.Mat4 {
	a.require("GetTransform", a.built())
	return mathbridge.Mat4FromIsometry(a.node.Transform())
}

// SetLinearVelocity sets the world velocity of the centre of mass and keeps the angular velocity.
// Bodies that do not have six degrees of freedom only log a warning.
func (a *SingleBodyAdapter) SetLinearVelocity(v mgl64.Vec3) {
	a.require("SetLinearVelocity", a.built())
	if !a.sixDofs("SetLinearVelocity") {
		return
	}
	a.projectVelocity(mathbridge.Vec3ToR3(v), a.node.AngularVelocity())
}

// SetAngularVelocity sets the world angular velocity and keeps the velocity of the centre of mass.
func (a *SingleBodyAdapter) SetAngularVelocity(w mgl64.Vec3) {
	a.require("SetAngularVelocity", a.built())
	if !a.sixDofs("SetAngularVelocity") {
		return
	}
	a.projectVelocity(a.comLinearVelocity(), mathbridge.Vec3ToR3(w))
}

func (a *SingleBodyAdapter) sixDofs(op string) bool {
	if a.joint.NumDofs() != 6 {
		a.log.Warn("velocity needs a six dof joint, ignoring",
			zap.String("op", op),
			zap.String("joint", a.joint.Type()),
			zap.Int("dofs", a.joint.NumDofs()))
		return false
	}
	return true
}

// projectVelocity prescribes (linear, angular) on a world-aligned frame at the skeleton COM and
// reads back the body-frame spatial velocity of a child frame placed on the body-node.
func (a *SingleBodyAdapter) projectVelocity(linear, angular r3.Vec) {
	center := dynamics.NewSimpleFrame(nil, "center", dynamics.Translation(a.skeleton.COM()))
	center.SetClassicDerivatives(linear, angular)
	ref := dynamics.NewSimpleFrame(center, "ref", a.node.TransformRelativeTo(center.Transform()))
	a.joint.SetVelocities(ref.SpatialVelocity().RawVector().Data)
}

func (a *SingleBodyAdapter) comLinearVelocity() r3.Vec {
	w := a.node.AngularVelocity()
	v := a.node.LinearVelocity()
	return r3.Add(v, r3.Cross(w, r3.Sub(a.node.COM(), a.node.Transform().Translation)))
}

// GetLinearVelocity returns the world velocity of the centre of mass.
func (a *SingleBodyAdapter) GetLinearVelocity() mgl64.Vec3 {
	a.require("GetLinearVelocity", a.built())
	return mathbridge.Vec3FromR3(a.comLinearVelocity())
}

func (a *SingleBodyAdapter) GetAngularVelocity() mgl64.Vec3 {
	a.require("GetAngularVelocity", a.built())
	return mathbridge.Vec3FromR3(a.node.AngularVelocity())
}

// SetForceCOM applies a world-frame force at the centre of mass for the next step.
func (a *SingleBodyAdapter) SetForceCOM(f mgl64.Vec3) {
	a.require("SetForceCOM", a.built())
	a.node.SetExtForce(mathbridge.Vec3ToR3(f))
}

func (a *SingleBodyAdapter) SetTorqueCOM(t mgl64.Vec3) {
	a.require("SetTorqueCOM", a.built())
	a.node.SetExtTorque(mathbridge.Vec3ToR3(t))
}

func (a *SingleBodyAdapter) GetMass() float64 {
	a.require("GetMass", a.built())
	return a.node.Mass()
}
