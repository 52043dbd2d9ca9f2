package dynamics

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// SimpleFrame is a free-standing reference frame with a prescribed velocity. A nil parent is the
// world frame.
type SimpleFrame struct {
	name     string
	parent   *SimpleFrame
	relative Isometry
	linVel   r3.Vec
	angVel   r3.Vec
}

func NewSimpleFrame(parent *SimpleFrame, name string, relative Isometry) *SimpleFrame {
	return &SimpleFrame{name: name, parent: parent, relative: relative.Clone()}
}

func (f *SimpleFrame) Name() string { return f.name }

func (f *SimpleFrame) SetRelativeTransform(tf Isometry) { f.relative = tf.Clone() }

// SetClassicDerivatives sets the linear and angular velocity relative to the parent, in parent axes.
func (f *SimpleFrame) SetClassicDerivatives(linear, angular r3.Vec) {
	f.linVel = linear
	f.angVel = angular
}

// Transform returns the world transform.
func (f *SimpleFrame) Transform() Isometry {
	if f.parent == nil {
		return f.relative
	}
	return f.parent.Transform().Mul(f.relative)
}

// velocities returns the world angular velocity and the world velocity of the frame origin.
func (f *SimpleFrame) velocities() (w, v r3.Vec) {
	if f.parent == nil {
		return f.angVel, f.linVel
	}
	pw, pv := f.parent.velocities()
	ptf := f.parent.Transform()
	p := f.Transform().Translation
	w = r3.Add(pw, ptf.Rotate(f.angVel))
	v = r3.Add(pv, r3.Cross(pw, r3.Sub(p, ptf.Translation)))
	v = r3.Add(v, ptf.Rotate(f.linVel))
	return w, v
}

func (f *SimpleFrame) LinearVelocity() r3.Vec {
	_, v := f.velocities()
	return v
}

func (f *SimpleFrame) AngularVelocity() r3.Vec {
	w, _ := f.velocities()
	return w
}

// SpatialVelocity returns [ω; v] relative to the world, expressed in this frame.
func (f *SimpleFrame) SpatialVelocity() *mat.VecDense {
	w, v := f.velocities()
	tf := f.Transform()
	return spatialVector(tf.RotateInv(w), tf.RotateInv(v))
}
