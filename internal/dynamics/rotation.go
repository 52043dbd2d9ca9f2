package dynamics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

func eye3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

// mulVec returns m·v for a 3×3 m.
func mulVec(m mat.Matrix, v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}

// mulTVec returns mᵀ·v for a 3×3 m.
func mulTVec(m mat.Matrix, v r3.Vec) r3.Vec {
	return r3.Vec{
		X: m.At(0, 0)*v.X + m.At(1, 0)*v.Y + m.At(2, 0)*v.Z,
		Y: m.At(0, 1)*v.X + m.At(1, 1)*v.Y + m.At(2, 1)*v.Z,
		Z: m.At(0, 2)*v.X + m.At(1, 2)*v.Y + m.At(2, 2)*v.Z,
	}
}

func mul3(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(a, b)
	return &out
}

// rotateInertia returns R·I·Rᵀ.
func rotateInertia(r, inertia mat.Matrix) *mat.Dense {
	var tmp, out mat.Dense
	tmp.Mul(r, inertia)
	out.Mul(&tmp, r.T())
	return &out
}

// ExpMap converts a rotation vector (axis × angle) to a rotation matrix (Rodrigues).
func ExpMap(w r3.Vec) *mat.Dense {
	theta := r3.Norm(w)
	if theta < 1e-12 {
		return mat.NewDense(3, 3, []float64{
			1, -w.Z, w.Y,
			w.Z, 1, -w.X,
			-w.Y, w.X, 1,
		})
	}
	k := r3.Scale(1/theta, w)
	s, c := math.Sincos(theta)
	t := 1 - c
	return mat.NewDense(3, 3, []float64{
		c + k.X*k.X*t, k.X*k.Y*t - k.Z*s, k.X*k.Z*t + k.Y*s,
		k.Y*k.X*t + k.Z*s, c + k.Y*k.Y*t, k.Y*k.Z*t - k.X*s,
		k.Z*k.X*t - k.Y*s, k.Z*k.Y*t + k.X*s, c + k.Z*k.Z*t,
	})
}

// LogMap converts a rotation matrix to its rotation vector, with angle in [0, π].
func LogMap(r mat.Matrix) r3.Vec {
	q := RotationToQuat(r)
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	im := r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	s := r3.Norm(im)
	if s < 1e-12 {
		return r3.Scale(2, im)
	}
	theta := 2 * math.Atan2(s, q.Real)
	return r3.Scale(theta/s, im)
}

// RotationToQuat converts a rotation matrix to a unit quaternion (Shepperd's method).
func RotationToQuat(r mat.Matrix) quat.Number {
	m00, m11, m22 := r.At(0, 0), r.At(1, 1), r.At(2, 2)
	tr := m00 + m11 + m22
	var q quat.Number
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q = quat.Number{
			Real: s / 4,
			Imag: (r.At(2, 1) - r.At(1, 2)) / s,
			Jmag: (r.At(0, 2) - r.At(2, 0)) / s,
			Kmag: (r.At(1, 0) - r.At(0, 1)) / s,
		}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = quat.Number{
			Real: (r.At(2, 1) - r.At(1, 2)) / s,
			Imag: s / 4,
			Jmag: (r.At(0, 1) + r.At(1, 0)) / s,
			Kmag: (r.At(0, 2) + r.At(2, 0)) / s,
		}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = quat.Number{
			Real: (r.At(0, 2) - r.At(2, 0)) / s,
			Imag: (r.At(0, 1) + r.At(1, 0)) / s,
			Jmag: s / 4,
			Kmag: (r.At(1, 2) + r.At(2, 1)) / s,
		}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = quat.Number{
			Real: (r.At(1, 0) - r.At(0, 1)) / s,
			Imag: (r.At(0, 2) + r.At(2, 0)) / s,
			Jmag: (r.At(1, 2) + r.At(2, 1)) / s,
			Kmag: s / 4,
		}
	}
	return quat.Scale(1/quat.Abs(q), q)
}

// QuatToRotation converts a quaternion to a rotation matrix. q is normalised first.
func QuatToRotation(q quat.Number) *mat.Dense {
	n := quat.Abs(q)
	if n == 0 {
		return eye3()
	}
	q = quat.Scale(1/n, q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w),
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w),
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y),
	})
}

// orthonormalize removes drift accumulated by repeated integration.
func orthonormalize(r mat.Matrix) *mat.Dense {
	return QuatToRotation(RotationToQuat(r))
}
