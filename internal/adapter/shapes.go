package adapter

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"physics-adapter/internal/core"
	"physics-adapter/internal/dynamics"
	"physics-adapter/internal/logger"
	"physics-adapter/internal/mathbridge"
	"physics-adapter/internal/meshio"
)

// CreateCollisionShape builds the engine shape for data. Unsupported or malformed descriptors are
// logged at error level and yield nil; the caller then treats the body as shape-less.
func CreateCollisionShape(data core.ShapeData, log *zap.Logger) dynamics.Shape {
	log = logger.OrNop(log)
	size := mathbridge.Vec3ToR3(data.Size)

	switch data.Type {
	case core.ShapePlane:
		return dynamics.NewPlaneShape(r3.Vec{Z: 1}, 0)
	case core.ShapeBox:
		return dynamics.NewBoxShape(size)
	case core.ShapeSphere:
		return dynamics.NewSphereShape(size.X)
	case core.ShapeCylinder:
		return dynamics.NewCylinderShape(size.X, size.Y)
	case core.ShapeCapsule:
		return dynamics.NewCapsuleShape(size.X, size.Y)
	case core.ShapeEllipsoid:
		return dynamics.NewEllipsoidShape(r3.Scale(2, size))
	case core.ShapeConvexMesh, core.ShapeTriangleMesh:
		return createMeshShape(data, log)
	case core.ShapeHeightfield:
		return createHeightmapShape(data, log)
	case core.ShapeCompound:
		return createCompoundShape(data, log)
	}
	log.Error("couldn't create collision shape", zap.Stringer("type", data.Type))
	return nil
}

func meshScale(size mgl64.Vec3) r3.Vec {
	if size == (mgl64.Vec3{}) {
		return r3.Vec{X: 1, Y: 1, Z: 1}
	}
	return mathbridge.Vec3ToR3(size)
}

func createMeshShape(data core.ShapeData, log *zap.Logger) dynamics.Shape {
	convex := data.Type == core.ShapeConvexMesh
	md := data.Mesh
	var (
		m   *meshio.Mesh
		err error
	)
	switch {
	case md.Filename != "":
		m, err = meshio.Load(md.Filename)
	case convex && len(md.Vertices) > 0 && len(md.Faces) == 0:
		m, err = meshio.PointCloud(md.Vertices)
	case len(md.Vertices) > 0 && len(md.Faces) > 0:
		m, err = meshio.FromVertexData(md.Vertices, md.Faces)
	default:
		err = meshio.ErrEmptyMesh
	}
	if err != nil {
		log.Error("couldn't create mesh shape",
			zap.Stringer("type", data.Type),
			zap.String("filename", md.Filename),
			zap.Int("vertices", len(md.Vertices)/3),
			zap.Int("faces", len(md.Faces)/3),
			zap.Error(err))
		return nil
	}
	return dynamics.NewMeshShape(m, meshScale(data.Size), convex)
}

func createHeightmapShape(data core.ShapeData, log *zap.Logger) dynamics.Shape {
	hf := data.Heightfield
	nw, nd := hf.WidthSamples, hf.DepthSamples
	if nw < 2 || nd < 2 || len(hf.Heights) != nw*nd {
		log.Error("couldn't create heightfield shape",
			zap.Int("width_samples", nw),
			zap.Int("depth_samples", nd),
			zap.Int("heights", len(hf.Heights)))
		return nil
	}
	scaleZ := data.Size.Z()
	if scaleZ == 0 {
		scaleZ = 1
	}
	scale := r3.Vec{
		X: data.Size.X() / float64(nw-1),
		Y: data.Size.Y() / float64(nd-1),
		Z: scaleZ,
	}
	heights := append([]float64(nil), hf.Heights...)
	return dynamics.NewHeightmapShape(nw, nd, heights, scale)
}

func createCompoundShape(data core.ShapeData, log *zap.Logger) dynamics.Shape {
	compound := dynamics.NewCompoundShape()
	for i, child := range data.Children {
		shape := CreateCollisionShape(child, log)
		if shape == nil {
			log.Error("skipping compound child", zap.Int("child", i), zap.Stringer("type", child.Type))
			continue
		}
		compound.AddChild(shape, mathbridge.Mat4ToIsometry(data.ChildTransform(i)))
	}
	if len(compound.Children) == 0 {
		log.Error("couldn't create compound shape: no valid children")
		return nil
	}
	return compound
}

// massProperties applies the mass and inertia policy: an explicit positive mass wins, otherwise
// volume × density; explicit moments are used only when HasValidMoments, otherwise the shape's.
func massProperties(shape dynamics.Shape, inertia core.InertialData, density float64) (dynamics.Inertia, bool) {
	mass := inertia.Mass
	if mass <= 0 {
		mass = shape.Volume() * density
	}
	if mass <= 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
		return dynamics.Inertia{}, false
	}
	out := dynamics.Inertia{Mass: mass}
	if inertia.HasValidMoments() {
		out = dynamics.NewInertia(mass, inertia.Ixx, inertia.Iyy, inertia.Izz, inertia.Ixy, inertia.Ixz, inertia.Iyz)
	} else {
		out.SetMoment(shape.ComputeInertia(mass))
	}
	return out, true
}

