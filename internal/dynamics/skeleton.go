package dynamics

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Skeleton is a tree of body-nodes connected by joints. Body-nodes are kept in creation order,
// which is always parent before child.
type Skeleton struct {
	name  string
	nodes []*BodyNode

	mobile        bool
	selfCollision bool
	adjacentCheck bool
}

func NewSkeleton(name string) *Skeleton {
	return &Skeleton{name: name, mobile: true}
}

func (s *Skeleton) Name() string        { return s.name }
func (s *Skeleton) SetName(name string) { s.name = name }

// CreateJointAndBodyNodePair adds a body-node under parent (nil for a root) connected by joint.
func (s *Skeleton) CreateJointAndBodyNodePair(parent *BodyNode, joint Joint, name string) (Joint, *BodyNode) {
	b := &BodyNode{
		name:    name,
		skel:    s,
		parent:  parent,
		joint:   joint,
		inertia: DefaultInertia(),
	}
	if parent != nil {
		parent.children = append(parent.children, b)
	}
	s.nodes = append(s.nodes, b)
	return joint, b
}

func (s *Skeleton) BodyNodes() []*BodyNode { return s.nodes }

func (s *Skeleton) NumBodyNodes() int { return len(s.nodes) }

// BodyNode returns the named body-node or nil.
func (s *Skeleton) BodyNode(name string) *BodyNode {
	for _, b := range s.nodes {
		if b.name == name {
			return b
		}
	}
	return nil
}

// RootBodyNode returns nil for an empty skeleton.
func (s *Skeleton) RootBodyNode() *BodyNode {
	if len(s.nodes) == 0 {
		return nil
	}
	return s.nodes[0]
}

func (s *Skeleton) RootJoint() Joint {
	if root := s.RootBodyNode(); root != nil {
		return root.joint
	}
	return nil
}

func (s *Skeleton) NumDofs() int {
	n := 0
	for _, b := range s.nodes {
		n += b.joint.NumDofs()
	}
	return n
}

// Positions concatenates joint positions in body-node order.
func (s *Skeleton) Positions() []float64 {
	var q []float64
	for _, b := range s.nodes {
		q = append(q, b.joint.Positions()...)
	}
	return q
}

// Velocities concatenates joint velocities in body-node order.
func (s *Skeleton) Velocities() []float64 {
	var dq []float64
	for _, b := range s.nodes {
		dq = append(dq, b.joint.Velocities()...)
	}
	return dq
}

// ResetVelocities zeroes every joint velocity.
func (s *Skeleton) ResetVelocities() {
	for _, b := range s.nodes {
		clear(b.joint.base().dq)
	}
}

func (s *Skeleton) Mass() float64 {
	m := 0.0
	for _, b := range s.nodes {
		m += b.inertia.Mass
	}
	return m
}

// COM returns the mass-weighted world centre of mass. A massless skeleton reports its root origin.
func (s *Skeleton) COM() r3.Vec {
	total := s.Mass()
	if total <= 0 {
		if root := s.RootBodyNode(); root != nil {
			return root.Transform().Translation
		}
		return r3.Vec{}
	}
	var c r3.Vec
	for _, b := range s.nodes {
		c = r3.Add(c, r3.Scale(b.inertia.Mass/total, b.COM()))
	}
	return c
}

// IsMobile reports whether the world should integrate this skeleton.
func (s *Skeleton) IsMobile() bool { return s.mobile && s.NumDofs() > 0 }

func (s *Skeleton) SetMobile(mobile bool) { s.mobile = mobile }

func (s *Skeleton) SelfCollisionEnabled() bool { return s.selfCollision }

// EnableSelfCollisionCheck lets body-nodes of this skeleton collide with each other. adjacent also
// enables pairs connected by a joint.
func (s *Skeleton) EnableSelfCollisionCheck(adjacent bool) {
	s.selfCollision = true
	s.adjacentCheck = adjacent
}

func (s *Skeleton) DisableSelfCollisionCheck() {
	s.selfCollision = false
	s.adjacentCheck = false
}

func (s *Skeleton) AdjacentBodyCheckEnabled() bool { return s.adjacentCheck }

// ClearExternalForces drops the transient wrenches of every body-node.
func (s *Skeleton) ClearExternalForces() {
	for _, b := range s.nodes {
		b.ClearExternalForces()
	}
}

// ClearInternalForces drops joint force commands.
func (s *Skeleton) ClearInternalForces() {
	for _, b := range s.nodes {
		b.joint.base().clearForces()
	}
}

// Integrate advances the skeleton by dt under gravity. Free joints are integrated as floating bases
// with the Newton-Euler equations; other joints advance each DOF from its generalized force over
// the effective inertia of the child body-node along that DOF.
func (s *Skeleton) Integrate(dt float64, gravity r3.Vec) {
	if !s.IsMobile() {
		return
	}
	for _, b := range s.nodes {
		if b.joint.NumDofs() == 0 {
			continue
		}
		if fj, ok := b.joint.(*FreeJoint); ok {
			integrateFloating(b, fj, dt, gravity)
			continue
		}
		integrateReduced(b, dt, gravity)
	}
}

func integrateFloating(b *BodyNode, j *FreeJoint, dt float64, gravity r3.Vec) {
	m := b.inertia.Mass
	if m <= 0 {
		return
	}
	tf := b.Transform()
	w := tf.Rotate(r3.Vec{X: j.dq[0], Y: j.dq[1], Z: j.dq[2]})
	v := tf.Rotate(r3.Vec{X: j.dq[3], Y: j.dq[4], Z: j.dq[5]})

	force := r3.Add(r3.Scale(m, gravity), b.extForce)
	force = r3.Sub(force, r3.Scale(j.damping, v))
	torque := r3.Sub(b.extTorque, r3.Scale(j.damping, w))

	v = r3.Add(v, r3.Scale(dt/m, force))

	iw := b.worldInertia(tf)
	var inv mat.Dense
	if err := inv.Inverse(iw); err == nil {
		gyro := r3.Cross(w, mulVec(iw, w))
		alpha := mulVec(&inv, r3.Sub(torque, gyro))
		w = r3.Add(w, r3.Scale(dt, alpha))
	}

	next := Isometry{
		Rotation:    orthonormalize(mul3(ExpMap(r3.Scale(dt, w)), tf.R())),
		Translation: r3.Add(tf.Translation, r3.Scale(dt, v)),
	}
	parentTf := Identity()
	if b.parent != nil {
		parentTf = b.parent.Transform()
	}
	j.SetTransform(parentTf.Inverse().Mul(next))

	wb, vb := next.RotateInv(w), next.RotateInv(v)
	j.dq[0], j.dq[1], j.dq[2] = wb.X, wb.Y, wb.Z
	j.dq[3], j.dq[4], j.dq[5] = vb.X, vb.Y, vb.Z
}

func integrateReduced(b *BodyNode, dt float64, gravity r3.Vec) {
	j := b.joint
	jb := j.base()
	parentTf := Identity()
	if b.parent != nil {
		parentTf = b.parent.Transform()
	}
	tf := b.Transform()
	axes, origin := worldScrews(j, parentTf)
	m := b.inertia.Mass
	iw := b.worldInertia(tf)
	com := tf.Apply(b.inertia.COM)
	r := r3.Sub(com, origin)

	force := r3.Add(r3.Scale(m, gravity), b.extForce)
	torque := r3.Add(b.extTorque, r3.Cross(r, force))

	for i, s := range axes {
		lin := r3.Add(s.V, r3.Cross(s.W, r))
		meff := r3.Dot(s.W, mulVec(iw, s.W)) + m*r3.Dot(lin, lin)
		if meff < 1e-12 {
			continue
		}
		gen := r3.Dot(s.W, torque) + r3.Dot(s.V, force) + jb.tau[i] - jb.damping*jb.dq[i]
		jb.dq[i] += dt * gen / meff
	}
	j.advance(dt)
}
