package dynamics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Joint connects a body-node to its parent (or to the world for a root body-node).
//
// The transform from the parent body-node to the child is
// TransformFromParentBodyNode · motion(q) · TransformFromChildBodyNode⁻¹.
type Joint interface {
	Name() string
	Type() string
	NumDofs() int

	Positions() []float64
	SetPositions(q []float64)
	Velocities() []float64
	SetVelocities(dq []float64)
	Forces() []float64
	SetForces(tau []float64)
	Damping() float64
	SetDamping(d float64)
	SetPositionLimits(dof int, lower, upper float64)

	TransformFromParentBodyNode() Isometry
	SetTransformFromParentBodyNode(tf Isometry)
	TransformFromChildBodyNode() Isometry
	SetTransformFromChildBodyNode(tf Isometry)
	RelativeTransform() Isometry

	base() *jointBase
	motion() Isometry
	// screws lists, per DOF, the angular velocity and the velocity of the joint origin produced by a
	// unit rate of that DOF, in the parent-side joint frame. Free joints return nil.
	screws() []screw
	// advance integrates dq over dt into the positions.
	advance(dt float64)
}

type screw struct {
	W r3.Vec
	V r3.Vec
}

type jointBase struct {
	name          string
	parentToJoint Isometry
	childToJoint  Isometry
	q, dq, tau    []float64
	lower, upper  []float64
	damping       float64
}

func newJointBase(name string, dofs int) jointBase {
	return jointBase{
		name:          name,
		parentToJoint: Identity(),
		childToJoint:  Identity(),
		q:             make([]float64, dofs),
		dq:            make([]float64, dofs),
		tau:           make([]float64, dofs),
		lower:         make([]float64, dofs),
		upper:         make([]float64, dofs),
	}
}

func (j *jointBase) base() *jointBase { return j }
func (j *jointBase) Name() string     { return j.name }
func (j *jointBase) NumDofs() int     { return len(j.q) }

func (j *jointBase) Positions() []float64 { return append([]float64(nil), j.q...) }

// SetPositions copies up to NumDofs values.
func (j *jointBase) SetPositions(q []float64)   { copy(j.q, q) }
func (j *jointBase) Velocities() []float64      { return append([]float64(nil), j.dq...) }
func (j *jointBase) SetVelocities(dq []float64) { copy(j.dq, dq) }
func (j *jointBase) Forces() []float64          { return append([]float64(nil), j.tau...) }
func (j *jointBase) SetForces(tau []float64)    { copy(j.tau, tau) }
func (j *jointBase) Damping() float64           { return j.damping }
func (j *jointBase) SetDamping(d float64)       { j.damping = d }

func (j *jointBase) TransformFromParentBodyNode() Isometry { return j.parentToJoint }
func (j *jointBase) TransformFromChildBodyNode() Isometry  { return j.childToJoint }

func (j *jointBase) SetTransformFromParentBodyNode(tf Isometry) { j.parentToJoint = tf.Clone() }
func (j *jointBase) SetTransformFromChildBodyNode(tf Isometry)  { j.childToJoint = tf.Clone() }

// SetPositionLimits enables clamping of one DOF. lower >= upper disables it.
func (j *jointBase) SetPositionLimits(dof int, lower, upper float64) {
	if dof < 0 || dof >= len(j.q) {
		return
	}
	j.lower[dof], j.upper[dof] = lower, upper
}

func (j *jointBase) clearForces() {
	clear(j.tau)
}

// clamp keeps positions within their limits and stops motion into a limit.
func (j *jointBase) clamp() {
	for i := range j.q {
		if j.lower[i] >= j.upper[i] {
			continue
		}
		if j.q[i] < j.lower[i] {
			j.q[i] = j.lower[i]
			j.dq[i] = math.Max(j.dq[i], 0)
		} else if j.q[i] > j.upper[i] {
			j.q[i] = j.upper[i]
			j.dq[i] = math.Min(j.dq[i], 0)
		}
	}
}

func (j *jointBase) advance(dt float64) {
	for i := range j.q {
		j.q[i] += j.dq[i] * dt
	}
	j.clamp()
}

func relativeTransform(j Joint) Isometry {
	b := j.base()
	return b.parentToJoint.Mul(j.motion()).Mul(b.childToJoint.Inverse())
}

// WeldJoint has no degrees of freedom. The child is rigidly attached at TransformFromParentBodyNode.
type WeldJoint struct {
	jointBase
}

func NewWeldJoint(name string) *WeldJoint {
	return &WeldJoint{jointBase: newJointBase(name, 0)}
}

func (j *WeldJoint) Type() string                { return "weld" }
func (j *WeldJoint) motion() Isometry            { return Identity() }
func (j *WeldJoint) screws() []screw             { return nil }
func (j *WeldJoint) RelativeTransform() Isometry { return relativeTransform(j) }

// RevoluteJoint rotates about Axis, given in the joint frame.
type RevoluteJoint struct {
	jointBase
	Axis r3.Vec
}

func NewRevoluteJoint(name string, axis r3.Vec) *RevoluteJoint {
	return &RevoluteJoint{jointBase: newJointBase(name, 1), Axis: r3.Unit(axis)}
}

func (j *RevoluteJoint) Type() string { return "revolute" }
func (j *RevoluteJoint) motion() Isometry {
	return Isometry{Rotation: ExpMap(r3.Scale(j.q[0], j.Axis))}
}
func (j *RevoluteJoint) screws() []screw             { return []screw{{W: j.Axis}} }
func (j *RevoluteJoint) RelativeTransform() Isometry { return relativeTransform(j) }

// PrismaticJoint translates along Axis, given in the joint frame.
type PrismaticJoint struct {
	jointBase
	Axis r3.Vec
}

func NewPrismaticJoint(name string, axis r3.Vec) *PrismaticJoint {
	return &PrismaticJoint{jointBase: newJointBase(name, 1), Axis: r3.Unit(axis)}
}

func (j *PrismaticJoint) Type() string { return "prismatic" }
func (j *PrismaticJoint) motion() Isometry {
	return Translation(r3.Scale(j.q[0], j.Axis))
}
func (j *PrismaticJoint) screws() []screw             { return []screw{{V: j.Axis}} }
func (j *PrismaticJoint) RelativeTransform() Isometry { return relativeTransform(j) }

// BallJoint has three rotational DOFs stored as a rotation vector. Velocities are the angular
// velocity in the parent-side joint frame.
type BallJoint struct {
	jointBase
}

func NewBallJoint(name string) *BallJoint {
	return &BallJoint{jointBase: newJointBase(name, 3)}
}

func (j *BallJoint) Type() string { return "ball" }
func (j *BallJoint) motion() Isometry {
	return Isometry{Rotation: ExpMap(r3.Vec{X: j.q[0], Y: j.q[1], Z: j.q[2]})}
}
func (j *BallJoint) screws() []screw {
	return []screw{{W: r3.Vec{X: 1}}, {W: r3.Vec{Y: 1}}, {W: r3.Vec{Z: 1}}}
}
func (j *BallJoint) RelativeTransform() Isometry { return relativeTransform(j) }

func (j *BallJoint) advance(dt float64) {
	w := r3.Scale(dt, r3.Vec{X: j.dq[0], Y: j.dq[1], Z: j.dq[2]})
	r := mul3(ExpMap(w), j.motion().R())
	q := LogMap(r)
	j.q[0], j.q[1], j.q[2] = q.X, q.Y, q.Z
}

// PlanarJoint moves in the joint frame's ZX plane. Positions are (z, x, rotation about y).
type PlanarJoint struct {
	jointBase
}

func NewPlanarJoint(name string) *PlanarJoint {
	return &PlanarJoint{jointBase: newJointBase(name, 3)}
}

func (j *PlanarJoint) Type() string { return "planar" }
func (j *PlanarJoint) motion() Isometry {
	return Isometry{
		Rotation:    ExpMap(r3.Vec{Y: j.q[2]}),
		Translation: r3.Vec{X: j.q[1], Z: j.q[0]},
	}
}
func (j *PlanarJoint) screws() []screw {
	return []screw{{V: r3.Vec{Z: 1}}, {V: r3.Vec{X: 1}}, {W: r3.Vec{Y: 1}}}
}
func (j *PlanarJoint) RelativeTransform() Isometry { return relativeTransform(j) }

// FreeJoint has six DOFs. Positions are a rotation vector followed by a translation. Velocities are
// the body spatial velocity [ω; v] of the child, expressed in the child frame.
type FreeJoint struct {
	jointBase
	tf Isometry
}

func NewFreeJoint(name string) *FreeJoint {
	return &FreeJoint{jointBase: newJointBase(name, 6), tf: Identity()}
}

func (j *FreeJoint) Type() string                { return "free" }
func (j *FreeJoint) motion() Isometry            { return j.tf }
func (j *FreeJoint) screws() []screw             { return nil }
func (j *FreeJoint) RelativeTransform() Isometry { return relativeTransform(j) }

// advance is a no-op: free joints are integrated as floating bases by the skeleton.
func (j *FreeJoint) advance(float64) {}

func (j *FreeJoint) Positions() []float64 {
	return ConvertToPositions(j.tf)
}

func (j *FreeJoint) SetPositions(q []float64) {
	if len(q) < 6 {
		return
	}
	j.tf = ConvertToTransform(q)
}

// SetTransform places the child so that RelativeTransform() == tf.
func (j *FreeJoint) SetTransform(tf Isometry) {
	j.tf = j.parentToJoint.Inverse().Mul(tf).Mul(j.childToJoint)
}

// ConvertToPositions returns the six free-joint coordinates of tf.
func ConvertToPositions(tf Isometry) []float64 {
	w := LogMap(tf.R())
	t := tf.Translation
	return []float64{w.X, w.Y, w.Z, t.X, t.Y, t.Z}
}

// ConvertToTransform is the inverse of ConvertToPositions.
func ConvertToTransform(q []float64) Isometry {
	return Isometry{
		Rotation:    ExpMap(r3.Vec{X: q[0], Y: q[1], Z: q[2]}),
		Translation: r3.Vec{X: q[3], Y: q[4], Z: q[5]},
	}
}

// spatialVector packs [ω; v] into a 6-vector.
func spatialVector(w, v r3.Vec) *mat.VecDense {
	return mat.NewVecDense(6, []float64{w.X, w.Y, w.Z, v.X, v.Y, v.Z})
}
