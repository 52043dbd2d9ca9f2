package render

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physics-adapter/internal/core"
)

func TestVector3SwapsUpAxis(t *testing.T) {
	v := Vector3(mgl64.Vec3{1, 2, 3})
	assert.Equal(t, rl.NewVector3(1, 3, -2), v)
}

func TestMatrixTranslation(t *testing.T) {
	m := Matrix(mgl64.Translate3D(1, 2, 3))
	assert.InDelta(t, 1, m.M12, 1e-6)
	assert.InDelta(t, 3, m.M13, 1e-6)
	assert.InDelta(t, -2, m.M14, 1e-6)
	assert.InDelta(t, 1, m.M15, 1e-6)
	assert.InDelta(t, 1, m.M0, 1e-6)
	assert.InDelta(t, 1, m.M5, 1e-6)
	assert.InDelta(t, 1, m.M10, 1e-6)
}

func TestMatrixKeepsScaleOnMappedAxes(t *testing.T) {
	m := Matrix(mgl64.Scale3D(2, 3, 4))
	assert.InDelta(t, 2, m.M0, 1e-6)
	assert.InDelta(t, 4, m.M5, 1e-6)
	assert.InDelta(t, 3, m.M10, 1e-6)
}

func TestColor(t *testing.T) {
	assert.Equal(t, rl.NewColor(255, 128, 0, 255), Color(mgl64.Vec3{1, 0.5, 0}))
	assert.Equal(t, rl.NewColor(255, 0, 0, 255), Color(mgl64.Vec3{2, -1, 0}))
}

func TestAxisAngle(t *testing.T) {
	axis, angle := AxisAngle(mgl64.Ident3())
	assert.Equal(t, rl.NewVector3(0, 1, 0), axis)
	assert.Equal(t, float32(0), angle)

	axis, angle = AxisAngle(mgl64.Rotate3DZ(math.Pi / 2))
	assert.InDelta(t, 0, axis.X, 1e-5)
	assert.InDelta(t, 1, axis.Y, 1e-5)
	assert.InDelta(t, 0, axis.Z, 1e-5)
	assert.InDelta(t, 90, angle, 1e-3)

	axis, angle = AxisAngle(mgl64.Rotate3DX(math.Pi))
	assert.InDelta(t, 1, axis.X, 1e-5)
	assert.InDelta(t, 180, angle, 1e-3)
}

func newVisualBody(t *testing.T, shape core.ShapeData) *core.SingleBody {
	t.Helper()
	b, err := core.NewSingleBody("visual", core.BodyData{
		Visual: core.VisualData{Shape: shape, Color: mgl64.Vec3{0, 1, 0}},
	}, mgl64.Translate3D(0, 0, 1))
	require.NoError(t, err)
	return b
}

func TestNewRenderableParts(t *testing.T) {
	tests := []struct {
		name   string
		shape  core.ShapeData
		meshes []string
	}{
		{"box", core.BoxShape(mgl64.Vec3{1, 2, 3}), []string{meshCube}},
		{"sphere", core.SphereShape(0.5), []string{meshSphere}},
		{"ellipsoid", core.EllipsoidShape(mgl64.Vec3{1, 2, 3}), []string{meshSphere}},
		{"cylinder", core.CylinderShape(0.5, 2), []string{meshCylinder}},
		{"capsule", core.CapsuleShape(0.5, 2), []string{meshCylinder, meshSphere, meshSphere}},
		{"plane", core.PlaneShape(), []string{meshPlane}},
		{"none", core.ShapeData{}, nil},
		{
			"compound",
			core.CompoundShape(
				[]core.ShapeData{core.BoxShape(mgl64.Vec3{1, 1, 1}), core.SphereShape(1)},
				[]mgl64.Mat4{mgl64.Translate3D(1, 0, 0), mgl64.Translate3D(-1, 0, 0)},
			),
			[]string{meshCube, meshSphere},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd, err := NewRenderable(newVisualBody(t, tt.shape))
			require.NoError(t, err)
			var meshes []string
			for _, p := range rd.Parts {
				meshes = append(meshes, p.Mesh)
			}
			assert.Equal(t, tt.meshes, meshes)
			assert.Equal(t, rl.NewColor(0, 255, 0, 255), rd.Color)
		})
	}
}

func TestNewRenderableScales(t *testing.T) {
	rd, err := NewRenderable(newVisualBody(t, core.SphereShape(0.5)))
	require.NoError(t, err)
	assert.True(t, rd.Parts[0].Local.ApproxEqual(mgl64.Scale3D(1, 1, 1)))

	rd, err = NewRenderable(newVisualBody(t, core.CylinderShape(0.5, 2)))
	require.NoError(t, err)
	base := rd.Parts[0].Local.Mul4x1(mgl64.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -1, base.Z(), 1e-9)

	rd, err = NewRenderable(newVisualBody(t, core.PlaneShape()))
	require.NoError(t, err)
	assert.InDelta(t, defaultPlaneExtent, rd.Parts[0].Local.At(0, 0), 1e-9)
}

func TestNewRenderableCompoundOffsets(t *testing.T) {
	shape := core.CompoundShape(
		[]core.ShapeData{core.BoxShape(mgl64.Vec3{1, 1, 1})},
		[]mgl64.Mat4{mgl64.Translate3D(2, 0, 0)},
	)
	rd, err := NewRenderable(newVisualBody(t, shape))
	require.NoError(t, err)
	require.Len(t, rd.Parts, 1)
	assert.InDelta(t, 2, rd.Parts[0].Local.Col(3).X(), 1e-9)

	m := rd.PartTransform(0)
	assert.InDelta(t, 2, m.M12, 1e-6)
	assert.InDelta(t, 1, m.M13, 1e-6)
}

func TestNewRenderableMeshAndHeightfield(t *testing.T) {
	mesh := core.MeshShape([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []int{0, 1, 2}, false)
	rd, err := NewRenderable(newVisualBody(t, mesh))
	require.NoError(t, err)
	require.Len(t, rd.Parts, 1)
	require.NotNil(t, rd.Parts[0].Wire)
	assert.Len(t, rd.Parts[0].Wire.Faces, 1)

	hf := core.HeightfieldShape(2, 2, []float64{0, 1, 2, 3}, mgl64.Vec3{4, 6, 0})
	rd, err = NewRenderable(newVisualBody(t, hf))
	require.NoError(t, err)
	require.Len(t, rd.Parts, 1)
	require.NotNil(t, rd.Parts[0].Heightfield)
	assert.Equal(t, mgl64.Vec3{4, 6, 0}, rd.Parts[0].Extent)
	corner := rd.Parts[0].Local.Mul4x1(mgl64.Vec4{0, -6, 0, 1})
	assert.InDelta(t, -2, corner.X(), 1e-9)
	assert.InDelta(t, -3, corner.Y(), 1e-9)
}

func TestNewRenderableRejectsBadShapes(t *testing.T) {
	_, err := NewRenderable(newVisualBody(t, core.ShapeData{Type: core.ShapeType(99)}))
	assert.ErrorIs(t, err, core.ErrUnknownShapeType)

	_, err = NewRenderable(newVisualBody(t, core.HeightfieldShape(1, 1, []float64{0}, mgl64.Vec3{1, 1, 1})))
	assert.Error(t, err)
}

func TestRenderableSync(t *testing.T) {
	b := newVisualBody(t, core.BoxShape(mgl64.Vec3{1, 1, 1}))
	rd, err := NewRenderable(b)
	require.NoError(t, err)
	assert.Equal(t, mgl64.Translate3D(0, 0, 1), rd.Pose())

	b.Tf = mgl64.Translate3D(5, 0, 0)
	rd.Sync()
	assert.Equal(t, b.Tf, rd.Pose())
}

func TestLinkRenderableFollowsSource(t *testing.T) {
	pose := mgl64.Translate3D(0, 0, 1)
	visual := core.VisualData{Shape: core.CapsuleShape(0.04, 0.4), Color: mgl64.Vec3{0, 1, 0}}
	rd, err := NewLinkRenderable("walker/thigh", visual, func() mgl64.Mat4 { return pose })
	require.NoError(t, err)
	assert.Len(t, rd.Parts, 3)
	assert.Equal(t, pose, rd.Pose())

	pose = mgl64.Translate3D(2, 0, 0.6)
	rd.Sync()
	assert.Equal(t, pose, rd.Pose())
}

func TestSceneAddLink(t *testing.T) {
	scn := NewScene(nil)
	origin := func() mgl64.Mat4 { return mgl64.Ident4() }
	assert.True(t, scn.AddLink("walker/torso", core.VisualData{Shape: core.BoxShape(mgl64.Vec3{1, 1, 1})}, origin))
	assert.False(t, scn.AddLink("walker/hidden", core.VisualData{}, origin), "no visual shape")
	assert.False(t, scn.AddLink("walker/bad", core.VisualData{Shape: core.ShapeData{Type: core.ShapeType(99)}}, origin))
	require.Len(t, scn.Renderables(), 1)
	assert.Equal(t, "walker/torso", scn.Renderables()[0].Name)
}

func TestStatsLines(t *testing.T) {
	lines := Stats{FPS: 60, SimTime: 1.5, Frames: 1500, Bodies: 5, Contacts: 2}.Lines()
	assert.Equal(t, []string{"FPS: 60", "Time: 1.500 s", "Steps: 1500", "Bodies: 5", "Contacts: 2"}, lines)
}
