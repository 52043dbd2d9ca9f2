package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultDensity is used for colliders that do not set a positive density (kg/m³).
const DefaultDensity = 1000.0

// MeshData is the geometry source of a mesh shape: a file path, or raw xyz vertex triples with
// index triples. Filename wins when both are set.
type MeshData struct {
	Filename string    `yaml:"filename,omitempty"`
	Vertices []float64 `yaml:"vertices,omitempty"`
	Faces    []int     `yaml:"faces,omitempty"`
}

// HeightfieldData is a row-major grid of WidthSamples × DepthSamples heights.
type HeightfieldData struct {
	WidthSamples int       `yaml:"width_samples,omitempty"`
	DepthSamples int       `yaml:"depth_samples,omitempty"`
	Heights      []float64 `yaml:"heights,omitempty"`
}

// ShapeData describes a collision or visual shape.
//
// Size is interpreted per type: box full extents; sphere radius in X; cylinder and capsule radius
// in X and height in Y; ellipsoid semi-axes; heightfield world extents (X, Y) and vertical scale Z;
// mesh scale (zero means 1). Children and ChildrenTransforms are parallel slices used by compounds.
type ShapeData struct {
	Type               ShapeType
	Size               mgl64.Vec3
	Mesh               MeshData
	Heightfield        HeightfieldData
	Children           []ShapeData
	ChildrenTransforms []mgl64.Mat4
}

func PlaneShape() ShapeData {
	return ShapeData{Type: ShapePlane}
}

func BoxShape(size mgl64.Vec3) ShapeData {
	return ShapeData{Type: ShapeBox, Size: size}
}

func SphereShape(radius float64) ShapeData {
	return ShapeData{Type: ShapeSphere, Size: mgl64.Vec3{radius, radius, radius}}
}

func CylinderShape(radius, height float64) ShapeData {
	return ShapeData{Type: ShapeCylinder, Size: mgl64.Vec3{radius, height, 0}}
}

func CapsuleShape(radius, height float64) ShapeData {
	return ShapeData{Type: ShapeCapsule, Size: mgl64.Vec3{radius, height, 0}}
}

// EllipsoidShape takes semi-axes.
func EllipsoidShape(semiAxes mgl64.Vec3) ShapeData {
	return ShapeData{Type: ShapeEllipsoid, Size: semiAxes}
}

// MeshFileShape loads a triangle mesh from filename when built.
func MeshFileShape(filename string) ShapeData {
	return ShapeData{Type: ShapeTriangleMesh, Mesh: MeshData{Filename: filename}}
}

// MeshShape builds a triangle mesh (or a convex one when convex is set) from raw arrays.
func MeshShape(vertices []float64, faces []int, convex bool) ShapeData {
	t := ShapeTriangleMesh
	if convex {
		t = ShapeConvexMesh
	}
	return ShapeData{Type: t, Mesh: MeshData{Vertices: vertices, Faces: faces}}
}

// HeightfieldShape covers extent.X × extent.Y in the world with heights multiplied by extent.Z.
func HeightfieldShape(width, depth int, heights []float64, extent mgl64.Vec3) ShapeData {
	return ShapeData{
		Type: ShapeHeightfield,
		Size: extent,
		Heightfield: HeightfieldData{
			WidthSamples: width,
			DepthSamples: depth,
			Heights:      heights,
		},
	}
}

// CompoundShape pairs children with their transforms relative to the compound frame.
// Missing transforms are treated as identity.
func CompoundShape(children []ShapeData, transforms []mgl64.Mat4) ShapeData {
	return ShapeData{Type: ShapeCompound, Children: children, ChildrenTransforms: transforms}
}

// ChildTransform returns the relative transform of child i, identity when none was given.
func (s ShapeData) ChildTransform(i int) mgl64.Mat4 {
	if i < len(s.ChildrenTransforms) {
		return s.ChildrenTransforms[i]
	}
	return mgl64.Ident4()
}

// IsZero reports whether the shape is absent.
func (s ShapeData) IsZero() bool {
	return s.Type == ShapeNone
}

// InertialData carries explicit mass properties. Zero mass means "derive from the collider".
type InertialData struct {
	Mass float64
	Ixx  float64
	Iyy  float64
	Izz  float64
	Ixy  float64
	Ixz  float64
	Iyz  float64
}

// HasValidMoments reports whether the explicit inertia terms may be used as-is:
// diagonal strictly positive, off-diagonal non-negative.
func (i InertialData) HasValidMoments() bool {
	return i.Ixx > 0 && i.Iyy > 0 && i.Izz > 0 && i.Ixy >= 0 && i.Ixz >= 0 && i.Iyz >= 0
}

// CollisionData describes a body's collider and its group/mask bits.
type CollisionData struct {
	Shape          ShapeData
	Density        float64
	Friction       float64
	CollisionGroup uint32
	CollisionMask  uint32
}

// NewCollisionData returns collision data for shape with default density, friction 1
// and group and mask 1.
func NewCollisionData(shape ShapeData) CollisionData {
	return CollisionData{
		Shape:          shape,
		Density:        DefaultDensity,
		Friction:       1,
		CollisionGroup: 1,
		CollisionMask:  1,
	}
}

type VisualData struct {
	Shape ShapeData
	Color mgl64.Vec3
}

// BodyData is everything a body adapter needs besides the pose.
type BodyData struct {
	DynType   DynamicsType
	Collision CollisionData
	Visual    VisualData
	Inertia   InertialData
}

// JointData describes one joint of an articulated body. Limits holds (lower, upper); equal
// limits disable clamping.
type JointData struct {
	Type          JointType
	Name          string
	Axis          mgl64.Vec3
	ParentToJoint mgl64.Mat4
	ChildToJoint  mgl64.Mat4
	Limits        mgl64.Vec2
	Damping       float64
}

// NewJointData returns a joint with identity frames and the Z axis.
func NewJointData(t JointType, name string) JointData {
	return JointData{
		Type:          t,
		Name:          name,
		Axis:          mgl64.Vec3{0, 0, 1},
		ParentToJoint: mgl64.Ident4(),
		ChildToJoint:  mgl64.Ident4(),
	}
}
