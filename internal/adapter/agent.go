package adapter

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"physics-adapter/internal/core"
	"physics-adapter/internal/dynamics"
	"physics-adapter/internal/logger"
	"physics-adapter/internal/mathbridge"
)

// planarPitch is the initial rotation about y of a placed planar agent.
const planarPitch = math.Pi / 90

// Agent is an articulated body built from core.AgentData. Its skeleton is registered with a world
// by Simulation.AddAgent.
type Agent struct {
	Name     string
	skeleton *dynamics.Skeleton
	links    []core.LinkData
	shapes   map[*dynamics.ShapeNode]core.CollisionData

	registered bool
	q0         []float64

	// anchor is the root joint's parent frame as built, before any placement.
	anchor dynamics.Isometry
}

// NewAgent builds the skeleton of data. Colliders use defaultDensity when their own density is
// not positive; links whose shape cannot be built keep the default inertia and get no shape-node.
func NewAgent(data core.AgentData, defaultDensity float64, log *zap.Logger) (*Agent, error) {
	log = logger.OrNop(log).With(zap.String("agent", data.Name))
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if defaultDensity <= 0 {
		defaultDensity = core.DefaultDensity
	}

	a := &Agent{
		Name:     data.Name,
		skeleton: dynamics.NewSkeleton(data.Name),
		links:    append([]core.LinkData(nil), data.Links...),
		shapes:   make(map[*dynamics.ShapeNode]core.CollisionData),
	}
	for _, link := range data.Links {
		joint, err := newJoint(link.Joint)
		if err != nil {
			return nil, fmt.Errorf("agent %q link %q: %w", data.Name, link.Name, err)
		}
		var parent *dynamics.BodyNode
		if link.Parent != "" {
			parent = a.skeleton.BodyNode(link.Parent)
		}
		_, node := a.skeleton.CreateJointAndBodyNodePair(parent, joint, link.Name)

		if link.Collision.Shape.IsZero() {
			continue
		}
		shape := CreateCollisionShape(link.Collision.Shape, log)
		if shape == nil {
			continue
		}
		sn := node.CreateShapeNode(shape, link.Name+"_shape")
		sn.Friction = link.Collision.Friction
		a.shapes[sn] = link.Collision

		density := link.Collision.Density
		if density <= 0 {
			density = defaultDensity
		}
		if inertia, ok := massProperties(shape, link.Inertia, density); ok {
			node.SetInertia(inertia)
		}
	}
	if root := a.skeleton.RootJoint(); root != nil {
		a.anchor = root.TransformFromParentBodyNode().Clone()
	}
	log.Debug("built agent",
		zap.Int("links", a.skeleton.NumBodyNodes()),
		zap.Int("dofs", a.skeleton.NumDofs()),
		zap.Float64("mass", a.skeleton.Mass()))
	return a, nil
}

func (a *Agent) Skeleton() *dynamics.Skeleton { return a.skeleton }

func (a *Agent) Registered() bool { return a.registered }

// Links returns the link descriptors the agent was built from.
func (a *Agent) Links() []core.LinkData { return a.links }

// LinkTransform returns the world transform of the named link.
func (a *Agent) LinkTransform(name string) (mgl64.Mat4, bool) {
	node := a.skeleton.BodyNode(name)
	if node == nil {
		return mgl64.Ident4(), false
	}
	return mathbridge.Mat4FromIsometry(node.Transform()), true
}

// LinkMass returns the mass of the named link, or zero.
func (a *Agent) LinkMass(name string) float64 {
	if node := a.skeleton.BodyNode(name); node != nil {
		return node.Mass()
	}
	return 0
}

func newJoint(data core.JointData) (dynamics.Joint, error) {
	axis := mathbridge.Vec3ToR3(data.Axis)
	var j dynamics.Joint
	switch data.Type {
	case core.JointFree:
		j = dynamics.NewFreeJoint(data.Name)
	case core.JointRevolute:
		j = dynamics.NewRevoluteJoint(data.Name, axis)
	case core.JointPrismatic:
		j = dynamics.NewPrismaticJoint(data.Name, axis)
	case core.JointBall:
		j = dynamics.NewBallJoint(data.Name)
	case core.JointPlanar:
		j = dynamics.NewPlanarJoint(data.Name)
	case core.JointFixed:
		j = dynamics.NewWeldJoint(data.Name)
	default:
		return nil, fmt.Errorf("unsupported joint type %v", data.Type)
	}
	j.SetTransformFromParentBodyNode(frameOrIdentity(data.ParentToJoint))
	j.SetTransformFromChildBodyNode(frameOrIdentity(data.ChildToJoint))
	j.SetDamping(data.Damping)
	if data.Limits[0] < data.Limits[1] {
		for dof := 0; dof < j.NumDofs(); dof++ {
			j.SetPositionLimits(dof, data.Limits[0], data.Limits[1])
		}
	}
	return j, nil
}

// frameOrIdentity treats an all-zero matrix as an unset frame.
func frameOrIdentity(m mgl64.Mat4) dynamics.Isometry {
	if m == (mgl64.Mat4{}) {
		return dynamics.Identity()
	}
	return mathbridge.Mat4ToIsometry(m)
}

// place moves the root joint to position and rotation. Free roots take the full transform. Planar
// roots take the in-plane coordinates and have their plane shifted to position.Y. Any other root
// gets the placement composed with its own parent frame.
func (a *Agent) place(position mgl64.Vec3, rotation mgl64.Mat3) {
	root := a.skeleton.RootJoint()
	if root == nil {
		return
	}
	switch j := root.(type) {
	case *dynamics.FreeJoint:
		j.SetPositions(dynamics.ConvertToPositions(mathbridge.Mat4ToIsometry(core.TransformFromPosMat3(position, rotation))))
	case *dynamics.PlanarJoint:
		j.SetTransformFromParentBodyNode(dynamics.Translation(r3.Vec{Y: position.Y()}).Mul(a.anchor))
		j.SetPositions([]float64{position.Z(), position.X(), planarPitch})
	default:
		placement := mathbridge.Mat4ToIsometry(core.TransformFromPosMat3(position, rotation))
		j.SetTransformFromParentBodyNode(placement.Mul(a.anchor))
	}
	a.q0 = a.skeleton.Positions()
}

// reset restores the placement and stops every joint.
func (a *Agent) reset() {
	if a.q0 != nil {
		offset := 0
		for _, b := range a.skeleton.BodyNodes() {
			j := b.ParentJoint()
			n := j.NumDofs()
			j.SetPositions(a.q0[offset : offset+n])
			offset += n
		}
	}
	a.skeleton.ResetVelocities()
}
