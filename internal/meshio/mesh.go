package meshio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrEmptyMesh is returned when a source yields no triangles.
	ErrEmptyMesh = errors.New("mesh has no triangles")
	// ErrUnsupportedFormat is returned by Load for extensions other than .obj and .stl.
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][3]int
}

// Load reads a Wavefront OBJ or STL (ascii or binary) file, chosen by extension.
func Load(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mesh: %w", err)
	}
	defer f.Close()

	var m *Mesh
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		m, err = ReadOBJ(f)
	case ".stl":
		m, err = ReadSTL(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// FromVertexData builds a mesh from xyz vertex triples and vertex-index triples.
func FromVertexData(vertices []float64, faces []int) (*Mesh, error) {
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("vertex array length %d is not a multiple of 3", len(vertices))
	}
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("face array length %d is not a multiple of 3", len(faces))
	}
	m := &Mesh{
		Vertices: make([]r3.Vec, 0, len(vertices)/3),
		Faces:    make([][3]int, 0, len(faces)/3),
	}
	for i := 0; i < len(vertices); i += 3 {
		m.Vertices = append(m.Vertices, r3.Vec{X: vertices[i], Y: vertices[i+1], Z: vertices[i+2]})
	}
	for i := 0; i < len(faces); i += 3 {
		m.Faces = append(m.Faces, [3]int{faces[i], faces[i+1], faces[i+2]})
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// PointCloud builds a face-less mesh from xyz vertex triples, enough for a convex hull.
func PointCloud(vertices []float64) (*Mesh, error) {
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("vertex array length %d is not a multiple of 3", len(vertices))
	}
	if len(vertices) < 9 {
		return nil, ErrEmptyMesh
	}
	m := &Mesh{Vertices: make([]r3.Vec, 0, len(vertices)/3)}
	for i := 0; i < len(vertices); i += 3 {
		m.Vertices = append(m.Vertices, r3.Vec{X: vertices[i], Y: vertices[i+1], Z: vertices[i+2]})
	}
	return m, nil
}

// vertexIndex merges identical corners into shared vertices of m.
type vertexIndex struct {
	m     *Mesh
	index map[r3.Vec]int
}

func newVertexIndex(faces int) *vertexIndex {
	return &vertexIndex{
		m:     &Mesh{Faces: make([][3]int, 0, faces)},
		index: make(map[r3.Vec]int),
	}
}

func (vi *vertexIndex) add(v r3.Vec) int {
	if i, ok := vi.index[v]; ok {
		return i
	}
	i := len(vi.m.Vertices)
	vi.m.Vertices = append(vi.m.Vertices, v)
	vi.index[v] = i
	return i
}

func (m *Mesh) validate() error {
	if len(m.Faces) == 0 || len(m.Vertices) == 0 {
		return ErrEmptyMesh
	}
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(m.Vertices) {
				return fmt.Errorf("face %d references vertex %d of %d", i, idx, len(m.Vertices))
			}
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounds of the vertices.
func (m *Mesh) Bounds() (lo, hi r3.Vec) {
	if len(m.Vertices) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	lo = r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi = r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, v := range m.Vertices {
		lo = r3.Vec{X: math.Min(lo.X, v.X), Y: math.Min(lo.Y, v.Y), Z: math.Min(lo.Z, v.Z)}
		hi = r3.Vec{X: math.Max(hi.X, v.X), Y: math.Max(hi.Y, v.Y), Z: math.Max(hi.Z, v.Z)}
	}
	return lo, hi
}

// Flatten returns the vertex and face arrays in the layout FromVertexData accepts.
func (m *Mesh) Flatten() ([]float64, []int) {
	verts := make([]float64, 0, 3*len(m.Vertices))
	for _, v := range m.Vertices {
		verts = append(verts, v.X, v.Y, v.Z)
	}
	faces := make([]int, 0, 3*len(m.Faces))
	for _, f := range m.Faces {
		faces = append(faces, f[0], f[1], f[2])
	}
	return verts, faces
}
