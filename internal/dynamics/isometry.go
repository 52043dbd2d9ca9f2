package dynamics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Isometry is a rigid transform: a 3×3 rotation followed by a translation. A nil Rotation is
// treated as identity so the zero value is the identity transform.
type Isometry struct {
	Rotation    *mat.Dense
	Translation r3.Vec
}

func Identity() Isometry {
	return Isometry{Rotation: eye3()}
}

// NewIsometry copies rot, so later writes to it do not affect the isometry.
func NewIsometry(rot mat.Matrix, translation r3.Vec) Isometry {
	return Isometry{Rotation: mat.DenseCopyOf(rot), Translation: translation}
}

// Translation returns a pure translation.
func Translation(t r3.Vec) Isometry {
	return Isometry{Rotation: eye3(), Translation: t}
}

// R returns the rotation block, never nil.
func (a Isometry) R() *mat.Dense {
	if a.Rotation == nil {
		return eye3()
	}
	return a.Rotation
}

func (a Isometry) Clone() Isometry {
	return NewIsometry(a.R(), a.Translation)
}

// Mul composes a·b: b is applied first.
func (a Isometry) Mul(b Isometry) Isometry {
	return Isometry{
		Rotation:    mul3(a.R(), b.R()),
		Translation: r3.Add(mulVec(a.R(), b.Translation), a.Translation),
	}
}

func (a Isometry) Inverse() Isometry {
	rt := mat.DenseCopyOf(a.R().T())
	return Isometry{
		Rotation:    rt,
		Translation: r3.Scale(-1, mulVec(rt, a.Translation)),
	}
}

// Apply transforms a point.
func (a Isometry) Apply(p r3.Vec) r3.Vec {
	return r3.Add(mulVec(a.R(), p), a.Translation)
}

// Rotate transforms a direction.
func (a Isometry) Rotate(v r3.Vec) r3.Vec {
	return mulVec(a.R(), v)
}

// RotateInv applies the inverse rotation to a direction.
func (a Isometry) RotateInv(v r3.Vec) r3.Vec {
	return mulTVec(a.R(), v)
}

// Matrix returns the 4×4 homogeneous form.
func (a Isometry) Matrix() *mat.Dense {
	r := a.R()
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, r.At(i, j))
		}
	}
	m.Set(0, 3, a.Translation.X)
	m.Set(1, 3, a.Translation.Y)
	m.Set(2, 3, a.Translation.Z)
	m.Set(3, 3, 1)
	return m
}

// EqualApprox compares rotation and translation entry-wise within tol.
func (a Isometry) EqualApprox(b Isometry, tol float64) bool {
	if !mat.EqualApprox(a.R(), b.R(), tol) {
		return false
	}
	d := r3.Sub(a.Translation, b.Translation)
	return math.Abs(d.X) <= tol && math.Abs(d.Y) <= tol && math.Abs(d.Z) <= tol
}
