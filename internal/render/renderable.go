package render

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"physics-adapter/internal/core"
	"physics-adapter/internal/meshio"
)

// Unit meshes shared by every renderable. Cube and sphere have unit extent, the cylinder has
// diameter 1 and height 1 with its base on the local origin, the plane is 1×1.
const (
	meshCube     = "cube"
	meshSphere   = "sphere"
	meshCylinder = "cylinder"
	meshPlane    = "plane"
)

// defaultPlaneExtent is the drawn size of a plane whose visual size is zero.
const defaultPlaneExtent = 20

// Part is one drawable piece of a renderable. Local is the simulation-space transform from the
// body frame to the unit mesh, scale included. Exactly one of Mesh, Wire and Heightfield is set.
// Extent is the horizontal size of a heightfield part.
type Part struct {
	Mesh        string
	Wire        *meshio.Mesh
	Heightfield *core.HeightfieldData
	Extent      mgl64.Vec3
	Local       mgl64.Mat4
}

// PoseSource yields the current simulation-space pose of something that is not a core body, such
// as a link of an articulated agent.
type PoseSource func() mgl64.Mat4

// Renderable is the drawable mirror of one body or agent link: its parts, color and the latest pose.
type Renderable struct {
	Name  string
	Color rl.Color
	Parts []Part

	body   *core.SingleBody
	source PoseSource
	pose   mgl64.Mat4
}

// NewRenderable builds the parts of body's visual shape.
func NewRenderable(body *core.SingleBody) (*Renderable, error) {
	parts, err := shapeParts(body.Data.Visual.Shape, mgl64.Ident4())
	if err != nil {
		return nil, fmt.Errorf("renderable %q: %w", body.Name, err)
	}
	return &Renderable{
		Name:  body.Name,
		Color: Color(body.Data.Visual.Color),
		Parts: parts,
		body:  body,
		pose:  body.Tf,
	}, nil
}

// NewLinkRenderable builds the parts of visual for a renderable whose pose is read from source.
func NewLinkRenderable(name string, visual core.VisualData, source PoseSource) (*Renderable, error) {
	parts, err := shapeParts(visual.Shape, mgl64.Ident4())
	if err != nil {
		return nil, fmt.Errorf("renderable %q: %w", name, err)
	}
	return &Renderable{
		Name:   name,
		Color:  Color(visual.Color),
		Parts:  parts,
		source: source,
		pose:   source(),
	}, nil
}

// Sync copies the body's cached transform, or asks the pose source. Detached bodies keep their
// last pose.
func (r *Renderable) Sync() {
	switch {
	case r.source != nil:
		r.pose = r.source()
	case r.body != nil && !r.body.Detached():
		r.pose = r.body.Tf
	}
}

func (r *Renderable) Pose() mgl64.Mat4 { return r.pose }

// PartTransform is the raylib model matrix of part i at the current pose.
func (r *Renderable) PartTransform(i int) rl.Matrix {
	return Matrix(r.pose.Mul4(r.Parts[i].Local))
}

func shapeParts(shape core.ShapeData, offset mgl64.Mat4) ([]Part, error) {
	size := shape.Size
	switch shape.Type {
	case core.ShapeNone:
		return nil, nil
	case core.ShapePlane:
		w, d := size.X(), size.Y()
		if w <= 0 || d <= 0 {
			w, d = defaultPlaneExtent, defaultPlaneExtent
		}
		return []Part{{Mesh: meshPlane, Local: offset.Mul4(mgl64.Scale3D(w, d, 1))}}, nil
	case core.ShapeBox:
		return []Part{{Mesh: meshCube, Local: offset.Mul4(mgl64.Scale3D(size.X(), size.Y(), size.Z()))}}, nil
	case core.ShapeSphere:
		d := 2 * size.X()
		return []Part{{Mesh: meshSphere, Local: offset.Mul4(mgl64.Scale3D(d, d, d))}}, nil
	case core.ShapeEllipsoid:
		return []Part{{Mesh: meshSphere, Local: offset.Mul4(mgl64.Scale3D(2*size.X(), 2*size.Y(), 2*size.Z()))}}, nil
	case core.ShapeCylinder:
		return []Part{cylinderPart(offset, size.X(), size.Y())}, nil
	case core.ShapeCapsule:
		r, h := size.X(), size.Y()
		d := 2 * r
		return []Part{
			cylinderPart(offset, r, h),
			{Mesh: meshSphere, Local: offset.Mul4(mgl64.Translate3D(0, 0, h/2)).Mul4(mgl64.Scale3D(d, d, d))},
			{Mesh: meshSphere, Local: offset.Mul4(mgl64.Translate3D(0, 0, -h/2)).Mul4(mgl64.Scale3D(d, d, d))},
		}, nil
	case core.ShapeConvexMesh, core.ShapeTriangleMesh:
		m, err := loadVisualMesh(shape.Mesh)
		if err != nil {
			return nil, err
		}
		s := size
		if s == (mgl64.Vec3{}) {
			s = mgl64.Vec3{1, 1, 1}
		}
		return []Part{{Wire: m, Local: offset.Mul4(mgl64.Scale3D(s.X(), s.Y(), s.Z()))}}, nil
	case core.ShapeHeightfield:
		hf := shape.Heightfield
		if hf.WidthSamples < 2 || hf.DepthSamples < 2 || len(hf.Heights) != hf.WidthSamples*hf.DepthSamples {
			return nil, fmt.Errorf("malformed heightfield %dx%d with %d heights", hf.WidthSamples, hf.DepthSamples, len(hf.Heights))
		}
		scaleZ := size.Z()
		if scaleZ == 0 {
			scaleZ = 1
		}
		return []Part{{
			Heightfield: &hf,
			Extent:      size,
			Local:       offset.Mul4(mgl64.Translate3D(-size.X()/2, size.Y()/2, 0)).Mul4(mgl64.Scale3D(1, 1, scaleZ)),
		}}, nil
	case core.ShapeCompound:
		var parts []Part
		for i, child := range shape.Children {
			sub, err := shapeParts(child, offset.Mul4(shape.ChildTransform(i)))
			if err != nil {
				return nil, err
			}
			parts = append(parts, sub...)
		}
		return parts, nil
	}
	return nil, fmt.Errorf("%w: %v", core.ErrUnknownShapeType, shape.Type)
}

// cylinderPart centres the unit cylinder, whose base sits on the local origin, on the body frame.
func cylinderPart(offset mgl64.Mat4, radius, height float64) Part {
	d := 2 * radius
	return Part{
		Mesh:  meshCylinder,
		Local: offset.Mul4(mgl64.Scale3D(d, d, height)).Mul4(mgl64.Translate3D(0, 0, -0.5)),
	}
}

func loadVisualMesh(md core.MeshData) (*meshio.Mesh, error) {
	if md.Filename != "" {
		return meshio.Load(md.Filename)
	}
	if len(md.Faces) == 0 {
		return meshio.PointCloud(md.Vertices)
	}
	return meshio.FromVertexData(md.Vertices, md.Faces)
}
