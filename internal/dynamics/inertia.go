package dynamics

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Inertia is the mass, centre of mass (in the body frame) and the 3×3 moment about the COM.
type Inertia struct {
	Mass   float64
	COM    r3.Vec
	Moment *mat.Dense
}

// DefaultInertia is unit mass with an identity moment, the inertia of a freshly created body-node.
func DefaultInertia() Inertia {
	return Inertia{Mass: 1, Moment: eye3()}
}

// NewInertia builds a symmetric moment from its six independent terms.
func NewInertia(mass, ixx, iyy, izz, ixy, ixz, iyz float64) Inertia {
	return Inertia{
		Mass: mass,
		Moment: mat.NewDense(3, 3, []float64{
			ixx, ixy, ixz,
			ixy, iyy, iyz,
			ixz, iyz, izz,
		}),
	}
}

// SetMoment replaces the moment with a copy of m.
func (i *Inertia) SetMoment(m mat.Matrix) {
	i.Moment = mat.DenseCopyOf(m)
}

func (i Inertia) moment() *mat.Dense {
	if i.Moment == nil {
		return eye3()
	}
	return i.Moment
}

func (i Inertia) Clone() Inertia {
	return Inertia{Mass: i.Mass, COM: i.COM, Moment: mat.DenseCopyOf(i.moment())}
}

// parallelAxis returns the moment of a point mass m at offset d about the origin.
func parallelAxis(m float64, d r3.Vec) *mat.Dense {
	dd := r3.Dot(d, d)
	return mat.NewDense(3, 3, []float64{
		m * (dd - d.X*d.X), -m * d.X * d.Y, -m * d.X * d.Z,
		-m * d.Y * d.X, m * (dd - d.Y*d.Y), -m * d.Y * d.Z,
		-m * d.Z * d.X, -m * d.Z * d.Y, m * (dd - d.Z*d.Z),
	})
}
