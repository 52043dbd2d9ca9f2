package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	BodyAdapter
	tf       mgl64.Mat4
	detached int
}

func (f *fakeAdapter) GetTransform() mgl64.Mat4 { return f.tf }
func (f *fakeAdapter) OnDetach()                { f.detached++ }

type fakeCollider struct{ detached int }

func (f *fakeCollider) Build()    {}
func (f *fakeCollider) OnDetach() { f.detached++ }

func TestRotationFromEulerOrder(t *testing.T) {
	// Rz·Ry·Rx applied to X: the X rotation leaves it, Y(π/2) sends it to -Z, Z leaves -Z.
	r := RotationFromEuler(mgl64.Vec3{math.Pi / 2, math.Pi / 2, math.Pi / 2})
	got := r.Mul3x1(mgl64.Vec3{1, 0, 0})
	assert.True(t, got.ApproxEqualThreshold(mgl64.Vec3{0, 0, -1}, 1e-9), "%v", got)

	r = RotationFromEuler(mgl64.Vec3{0, 0, math.Pi / 2})
	got = r.Mul3x1(mgl64.Vec3{1, 0, 0})
	assert.True(t, got.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9), "%v", got)
}

func TestTransformFromPosRot(t *testing.T) {
	tf := TransformFromPosRot(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{0, 0, math.Pi})
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, Position(tf))
	assert.InDelta(t, -1, Rotation(tf).At(0, 0), 1e-12)
	assert.Equal(t, 1.0, tf.At(3, 3))
}

func TestNewSingleBodyCopiesDescriptors(t *testing.T) {
	verts := []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}
	faces := []int{0, 1, 2}
	data := BodyData{
		DynType:   Dynamic,
		Collision: NewCollisionData(MeshShape(verts, faces, false)),
	}

	b, err := NewSingleBody("tri", data, mgl64.Ident4())
	require.NoError(t, err)
	verts[0] = 99
	faces[0] = 7

	assert.Equal(t, 0.0, b.Data.Collision.Shape.Mesh.Vertices[0])
	assert.Equal(t, 0, b.Data.Collision.Shape.Mesh.Faces[0])
	require.NotNil(t, b.Collider())
	assert.Equal(t, b, b.Collider().Body())
	assert.True(t, b.IsDynamic())
}

func TestBodyWithoutShapeHasNoCollider(t *testing.T) {
	b, err := NewSingleBody("ghost", BodyData{}, mgl64.Ident4())
	require.NoError(t, err)
	assert.Nil(t, b.Collider())
}

func TestBodyAdapterLifecycle(t *testing.T) {
	b, err := NewSingleBody("box", BodyData{Collision: NewCollisionData(BoxShape(mgl64.Vec3{1, 1, 1}))}, mgl64.Ident4())
	require.NoError(t, err)

	a := &fakeAdapter{tf: mgl64.Translate3D(0, 0, 5)}
	c := &fakeCollider{}
	require.NoError(t, b.SetAdapter(a))
	require.NoError(t, b.Collider().SetAdapter(c))
	assert.Error(t, b.SetAdapter(&fakeAdapter{}))
	assert.Error(t, b.Collider().SetAdapter(&fakeCollider{}))

	b.SyncTransform()
	assert.Equal(t, mgl64.Vec3{0, 0, 5}, Position(b.Tf))

	collider := b.Collider()
	b.Detach()
	b.Detach()
	assert.Equal(t, 1, a.detached)
	assert.Equal(t, 1, c.detached)
	assert.True(t, b.Detached())
	assert.Nil(t, b.Adapter())
	assert.Nil(t, collider.Body())
	assert.Error(t, b.SetAdapter(&fakeAdapter{}))
}

func TestHasValidMoments(t *testing.T) {
	assert.True(t, InertialData{Ixx: 1, Iyy: 1, Izz: 1}.HasValidMoments())
	assert.False(t, InertialData{Ixx: 1, Iyy: 0, Izz: 1}.HasValidMoments())
	assert.False(t, InertialData{Ixx: 1, Iyy: 1, Izz: 1, Ixy: -0.1}.HasValidMoments())
}
