package render

import (
	"math"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
)

// The simulation is Z-up, raylib is Y-up. zUpToYUp maps simulation axes to raylib axes:
// (x, y, z) -> (x, z, -y).
var zUpToYUp = mgl64.Mat4{
	1, 0, 0, 0,
	0, 0, -1, 0,
	0, 1, 0, 0,
	0, 0, 0, 1,
}

// Vector3 converts a simulation point or direction to raylib coordinates.
func Vector3(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v.X()), float32(v.Z()), float32(-v.Y()))
}

// Matrix converts a simulation transform to a raylib model matrix acting on raylib-local vertices.
// Both libraries store matrices column-major with the translation in elements 12-14.
func Matrix(tf mgl64.Mat4) rl.Matrix {
	m := zUpToYUp.Mul4(tf).Mul4(zUpToYUp.Transpose())
	return matrixFromMat4(m)
}

func matrixFromMat4(m mgl64.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: float32(m[0]), M4: float32(m[4]), M8: float32(m[8]), M12: float32(m[12]),
		M1: float32(m[1]), M5: float32(m[5]), M9: float32(m[9]), M13: float32(m[13]),
		M2: float32(m[2]), M6: float32(m[6]), M10: float32(m[10]), M14: float32(m[14]),
		M3: float32(m[3]), M7: float32(m[7]), M11: float32(m[11]), M15: float32(m[15]),
	}
}

// Color converts an RGB triple in [0,1] to an opaque raylib color. Components are clamped.
func Color(c mgl64.Vec3) rl.Color {
	ch := func(v float64) uint8 {
		return uint8(math.Round(mgl64.Clamp(v, 0, 1) * 255))
	}
	return rl.NewColor(ch(c.X()), ch(c.Y()), ch(c.Z()), 255)
}

// AxisAngle returns the raylib-space rotation axis and angle in degrees of a simulation rotation,
// the form rl.DrawModelEx takes. The identity maps to the raylib up axis with a zero angle.
func AxisAngle(rot mgl64.Mat3) (rl.Vector3, float32) {
	m := zUpToYUp.Mat3().Mul3(rot).Mul3(zUpToYUp.Mat3().Transpose())
	r := [9]float32{}
	for i := range r {
		r[i] = float32(m[i])
	}
	// m is column-major: element (row, col) = r[col*3+row].
	at := func(row, col int) float32 { return r[col*3+row] }

	cos := (at(0, 0) + at(1, 1) + at(2, 2) - 1) / 2
	angle := math32.Acos(math32.Max(-1, math32.Min(1, cos)))
	if angle < 1e-6 {
		return rl.NewVector3(0, 1, 0), 0
	}
	var axis rl.Vector3
	if math32.Pi-angle < 1e-4 {
		// Near a half turn the antisymmetric part vanishes; read the axis off the diagonal.
		axis = rl.NewVector3(
			math32.Sqrt(math32.Max(0, (at(0, 0)+1)/2)),
			math32.Sqrt(math32.Max(0, (at(1, 1)+1)/2)),
			math32.Sqrt(math32.Max(0, (at(2, 2)+1)/2)),
		)
		if at(0, 1) < 0 {
			axis.Y = -axis.Y
		}
		if at(0, 2) < 0 {
			axis.Z = -axis.Z
		}
	} else {
		s := 2 * math32.Sin(angle)
		axis = rl.NewVector3(
			(at(2, 1)-at(1, 2))/s,
			(at(0, 2)-at(2, 0))/s,
			(at(1, 0)-at(0, 1))/s,
		)
	}
	n := math32.Sqrt(axis.X*axis.X + axis.Y*axis.Y + axis.Z*axis.Z)
	if n == 0 {
		return rl.NewVector3(0, 1, 0), 0
	}
	return rl.NewVector3(axis.X/n, axis.Y/n, axis.Z/n), angle * 180 / math32.Pi
}
