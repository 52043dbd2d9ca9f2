package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// RotationFromEuler builds R = Rz·Ry·Rx from XYZ Euler angles in radians.
func RotationFromEuler(euler mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Rotate3DZ(euler.Z()).Mul3(mgl64.Rotate3DY(euler.Y())).Mul3(mgl64.Rotate3DX(euler.X()))
}

// TransformFromPosRot builds a homogeneous transform from a position and XYZ Euler angles.
func TransformFromPosRot(position, euler mgl64.Vec3) mgl64.Mat4 {
	return TransformFromPosMat3(position, RotationFromEuler(euler))
}

func TransformFromPosMat3(position mgl64.Vec3, rot mgl64.Mat3) mgl64.Mat4 {
	return mgl64.Translate3D(position.X(), position.Y(), position.Z()).Mul4(rot.Mat4())
}

// Position extracts the translation column.
func Position(tf mgl64.Mat4) mgl64.Vec3 {
	return tf.Col(3).Vec3()
}

// Rotation extracts the upper-left 3×3 block.
func Rotation(tf mgl64.Mat4) mgl64.Mat3 {
	return tf.Mat3()
}
