// Package mathbridge converts between the framework's mgl64 types and the engine's gonum types.
// Matrices are copied entry by entry through At/Set, so neither side's storage order matters.
package mathbridge

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"physics-adapter/internal/dynamics"
)

func Vec3ToR3(v mgl64.Vec3) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func Vec3FromR3(v r3.Vec) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func Vec4ToDense(v mgl64.Vec4) *mat.VecDense {
	return mat.NewVecDense(4, []float64{v[0], v[1], v[2], v[3]})
}

// Vec4FromDense reads the first four entries of v.
func Vec4FromDense(v mat.Vector) mgl64.Vec4 {
	return mgl64.Vec4{v.AtVec(0), v.AtVec(1), v.AtVec(2), v.AtVec(3)}
}

func Mat3ToDense(m mgl64.Mat3) *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, m.At(i, j))
		}
	}
	return d
}

// Mat3FromDense reads the upper-left 3×3 block of m.
func Mat3FromDense(m mat.Matrix) mgl64.Mat3 {
	var out mgl64.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, m.At(i, j))
		}
	}
	return out
}

func Mat4ToDense(m mgl64.Mat4) *mat.Dense {
	d := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			d.Set(i, j, m.At(i, j))
		}
	}
	return d
}

func Mat4FromDense(m mat.Matrix) mgl64.Mat4 {
	var out mgl64.Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out.Set(i, j, m.At(i, j))
		}
	}
	return out
}

// Mat4ToIsometry copies the rotation block and the translation column of a homogeneous transform.
// The bottom row is not checked.
func Mat4ToIsometry(m mgl64.Mat4) dynamics.Isometry {
	rot := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rot.Set(i, j, m.At(i, j))
		}
	}
	return dynamics.Isometry{
		Rotation:    rot,
		Translation: r3.Vec{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)},
	}
}

func Mat4FromIsometry(tf dynamics.Isometry) mgl64.Mat4 {
	out := mgl64.Ident4()
	r := tf.R()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, r.At(i, j))
		}
	}
	out.Set(0, 3, tf.Translation.X)
	out.Set(1, 3, tf.Translation.Y)
	out.Set(2, 3, tf.Translation.Z)
	return out
}

func QuatToNumber(q mgl64.Quat) quat.Number {
	return quat.Number{Real: q.W, Imag: q.V[0], Jmag: q.V[1], Kmag: q.V[2]}
}

func QuatFromNumber(q quat.Number) mgl64.Quat {
	return mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}
}
