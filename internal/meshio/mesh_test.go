package meshio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hschendel/stl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const quadOBJ = `# unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
`

const triangleSTL = `solid tri
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 1 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
endsolid tri
`

func TestReadOBJTriangulatesPolygons(t *testing.T) {
	m, err := ReadOBJ(strings.NewReader(quadOBJ))
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 4)
	require.Len(t, m.Faces, 2)
	for _, f := range m.Faces {
		assert.NotEqual(t, f[0], f[1])
		assert.NotEqual(t, f[1], f[2])
		assert.NotEqual(t, f[0], f[2])
	}

	lo, hi := m.Bounds()
	assert.Equal(t, r3.Vec{}, lo)
	assert.Equal(t, r3.Vec{X: 1, Y: 1}, hi)
}

func TestReadOBJMergesSplitCorners(t *testing.T) {
	// Two texture coordinates on the shared edge make the parser emit separate elements.
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nvt 0 0\nvt 1 1\nf 1/1 2/1 3/1\nf 2/2 4/2 3/2\n"
	m, err := ReadOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 4)
	assert.Len(t, m.Faces, 2)
}

func TestReadOBJErrors(t *testing.T) {
	_, err := ReadOBJ(strings.NewReader("v 0 0 0\n"))
	assert.Error(t, err)

	_, err = ReadOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n"))
	assert.Error(t, err)
}

func TestReadASCIISTLMergesCorners(t *testing.T) {
	m, err := ReadSTL(strings.NewReader(triangleSTL))
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 4)
	assert.Len(t, m.Faces, 2)
}

func TestBinarySTLRoundTrip(t *testing.T) {
	src, err := FromVertexData([]float64{0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0, 4}, []int{0, 1, 2, 0, 2, 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteBinarySTL(&buf, src))
	assert.Equal(t, 84+50*2, buf.Len())

	m, err := ReadSTL(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, m.Faces, 2)
	assert.Len(t, m.Vertices, 4)
	_, hi := m.Bounds()
	assert.Equal(t, r3.Vec{X: 2, Y: 3, Z: 4}, hi)
}

func TestBinarySTLTruncated(t *testing.T) {
	data := make([]byte, 84)
	data[80] = 5
	_, err := ReadSTL(bytes.NewReader(data))
	assert.Error(t, err)
}

func TestFromSolidRejectsEmpty(t *testing.T) {
	_, err := FromSolid(&stl.Solid{Name: "empty"})
	assert.ErrorIs(t, err, ErrEmptyMesh)

	m, err := FromSolid(&stl.Solid{Triangles: []stl.Triangle{{
		Vertices: [3]stl.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}},
	}}})
	require.NoError(t, err)
	assert.Equal(t, [][3]int{{0, 1, 2}}, m.Faces)
}

func TestFromVertexData(t *testing.T) {
	m, err := FromVertexData([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []int{0, 1, 2})
	require.NoError(t, err)
	verts, faces := m.Flatten()
	assert.Equal(t, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, verts)
	assert.Equal(t, []int{0, 1, 2}, faces)

	_, err = FromVertexData(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyMesh)
	_, err = FromVertexData([]float64{0, 0}, []int{0, 1, 2})
	assert.Error(t, err)
	_, err = FromVertexData([]float64{0, 0, 0}, []int{0, 1})
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "quad.OBJ")
	require.NoError(t, os.WriteFile(objPath, []byte(quadOBJ), 0644))
	m, err := Load(objPath)
	require.NoError(t, err)
	assert.Len(t, m.Faces, 2)

	stlPath := filepath.Join(dir, "tri.stl")
	require.NoError(t, os.WriteFile(stlPath, []byte(triangleSTL), 0644))
	_, err = Load(stlPath)
	require.NoError(t, err)

	plyPath := filepath.Join(dir, "tri.ply")
	require.NoError(t, os.WriteFile(plyPath, []byte("ply\n"), 0644))
	_, err = Load(plyPath)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.obj"))
	assert.Error(t, err)
}

func TestPointCloud(t *testing.T) {
	m, err := PointCloud([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1})
	require.NoError(t, err)
	assert.Len(t, m.Vertices, 4)
	assert.Empty(t, m.Faces)

	_, err = PointCloud([]float64{0, 0, 0})
	assert.ErrorIs(t, err, ErrEmptyMesh)
}
