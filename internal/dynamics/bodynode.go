package dynamics

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// BodyNode is one rigid link of a skeleton, attached to its parent by a joint.
type BodyNode struct {
	name       string
	skel       *Skeleton
	parent     *BodyNode
	children   []*BodyNode
	joint      Joint
	inertia    Inertia
	shapeNodes []*ShapeNode

	extForce  r3.Vec
	extTorque r3.Vec
}

func (b *BodyNode) Name() string             { return b.name }
func (b *BodyNode) Skeleton() *Skeleton      { return b.skel }
func (b *BodyNode) Parent() *BodyNode        { return b.parent }
func (b *BodyNode) Children() []*BodyNode    { return b.children }
func (b *BodyNode) ParentJoint() Joint       { return b.joint }
func (b *BodyNode) ShapeNodes() []*ShapeNode { return b.shapeNodes }

func (b *BodyNode) Inertia() Inertia { return b.inertia.Clone() }

func (b *BodyNode) SetInertia(i Inertia) { b.inertia = i.Clone() }

func (b *BodyNode) Mass() float64 { return b.inertia.Mass }

// CreateShapeNode attaches shape at the body-node origin.
func (b *BodyNode) CreateShapeNode(shape Shape, name string) *ShapeNode {
	sn := &ShapeNode{name: name, shape: shape, body: b, relative: Identity(), Friction: 1}
	b.shapeNodes = append(b.shapeNodes, sn)
	return sn
}

// RemoveShapeNode detaches sn; it reports false when sn does not belong to b.
func (b *BodyNode) RemoveShapeNode(sn *ShapeNode) bool {
	for i, other := range b.shapeNodes {
		if other == sn {
			b.shapeNodes = append(b.shapeNodes[:i], b.shapeNodes[i+1:]...)
			sn.body = nil
			return true
		}
	}
	return false
}

// Transform returns the world transform of the body-node frame.
func (b *BodyNode) Transform() Isometry {
	rel := b.joint.RelativeTransform()
	if b.parent == nil {
		return rel
	}
	return b.parent.Transform().Mul(rel)
}

// TransformRelativeTo returns the body-node transform expressed in frame.
func (b *BodyNode) TransformRelativeTo(frame Isometry) Isometry {
	return frame.Inverse().Mul(b.Transform())
}

// COM returns the world position of the centre of mass.
func (b *BodyNode) COM() r3.Vec {
	return b.Transform().Apply(b.inertia.COM)
}

// worldInertia returns the moment about the COM in world axes.
func (b *BodyNode) worldInertia(tf Isometry) *mat.Dense {
	return rotateInertia(tf.R(), b.inertia.moment())
}

// velocities returns the world angular velocity and the world linear velocity of the frame origin.
func (b *BodyNode) velocities() (w, v r3.Vec) {
	tf := b.Transform()
	var parentTf Isometry
	if b.parent != nil {
		w, v = b.parent.velocities()
		parentTf = b.parent.Transform()
		v = r3.Add(v, r3.Cross(w, r3.Sub(tf.Translation, parentTf.Translation)))
	} else {
		parentTf = Identity()
	}

	if fj, ok := b.joint.(*FreeJoint); ok {
		w = r3.Add(w, tf.Rotate(r3.Vec{X: fj.dq[0], Y: fj.dq[1], Z: fj.dq[2]}))
		v = r3.Add(v, tf.Rotate(r3.Vec{X: fj.dq[3], Y: fj.dq[4], Z: fj.dq[5]}))
		return w, v
	}
	axes, origin := worldScrews(b.joint, parentTf)
	dq := b.joint.base().dq
	for i, s := range axes {
		w = r3.Add(w, r3.Scale(dq[i], s.W))
		lin := r3.Add(s.V, r3.Cross(s.W, r3.Sub(tf.Translation, origin)))
		v = r3.Add(v, r3.Scale(dq[i], lin))
	}
	return w, v
}

// worldScrews rotates the joint screws into world axes and returns the world joint origin.
func worldScrews(j Joint, parentTf Isometry) ([]screw, r3.Vec) {
	local := j.screws()
	if len(local) == 0 {
		return nil, r3.Vec{}
	}
	frame := parentTf.Mul(j.base().parentToJoint)
	origin := frame.Mul(j.motion()).Translation
	out := make([]screw, len(local))
	for i, s := range local {
		out[i] = screw{W: frame.Rotate(s.W), V: frame.Rotate(s.V)}
	}
	return out, origin
}

// AngularVelocity returns the world angular velocity.
func (b *BodyNode) AngularVelocity() r3.Vec {
	w, _ := b.velocities()
	return w
}

// LinearVelocity returns the world velocity of the body-node origin.
func (b *BodyNode) LinearVelocity() r3.Vec {
	_, v := b.velocities()
	return v
}

// SpatialVelocity returns [ω; v] of the body-node expressed in its own frame.
func (b *BodyNode) SpatialVelocity() *mat.VecDense {
	w, v := b.velocities()
	tf := b.Transform()
	return spatialVector(tf.RotateInv(w), tf.RotateInv(v))
}

// SetExtForce replaces the external force applied at the COM (world axes) until cleared.
func (b *BodyNode) SetExtForce(f r3.Vec) { b.extForce = f }

// AddExtForce accumulates onto the external force.
func (b *BodyNode) AddExtForce(f r3.Vec) { b.extForce = r3.Add(b.extForce, f) }

func (b *BodyNode) SetExtTorque(t r3.Vec) { b.extTorque = t }
func (b *BodyNode) AddExtTorque(t r3.Vec) { b.extTorque = r3.Add(b.extTorque, t) }

func (b *BodyNode) ExternalForce() r3.Vec  { return b.extForce }
func (b *BodyNode) ExternalTorque() r3.Vec { return b.extTorque }

func (b *BodyNode) ClearExternalForces() {
	b.extForce = r3.Vec{}
	b.extTorque = r3.Vec{}
}

// ShapeNode places a shape on a body-node and carries its contact friction.
type ShapeNode struct {
	name     string
	shape    Shape
	body     *BodyNode
	relative Isometry
	Friction float64
}

func (s *ShapeNode) Name() string                { return s.name }
func (s *ShapeNode) Shape() Shape                { return s.shape }
func (s *ShapeNode) BodyNode() *BodyNode         { return s.body }
func (s *ShapeNode) RelativeTransform() Isometry { return s.relative }

func (s *ShapeNode) SetRelativeTransform(tf Isometry) { s.relative = tf.Clone() }

// Transform returns the world transform of the shape, identity for a detached node.
func (s *ShapeNode) Transform() Isometry {
	if s.body == nil {
		return s.relative
	}
	return s.body.Transform().Mul(s.relative)
}
