package meshio

import (
	"fmt"
	"io"

	"github.com/hschendel/stl"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadSTL parses an ascii or binary STL stream. The format is detected from the content, which is
// why the reader has to seek.
func ReadSTL(r io.ReadSeeker) (*Mesh, error) {
	solid, err := stl.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stl: %w", err)
	}
	return FromSolid(solid)
}

// FromSolid indexes the triangles of solid. STL stores every triangle with its own corners;
// identical corners are merged into shared vertices.
func FromSolid(solid *stl.Solid) (*Mesh, error) {
	vi := newVertexIndex(len(solid.Triangles))
	for _, t := range solid.Triangles {
		var tri [3]int
		for c, v := range t.Vertices {
			tri[c] = vi.add(r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])})
		}
		vi.m.Faces = append(vi.m.Faces, tri)
	}
	if err := vi.m.validate(); err != nil {
		return nil, err
	}
	return vi.m, nil
}

// WriteBinarySTL writes m as binary STL with zero normals.
func WriteBinarySTL(w io.Writer, m *Mesh) error {
	solid := &stl.Solid{
		Name:      "physics-adapter",
		Triangles: make([]stl.Triangle, 0, len(m.Faces)),
	}
	for _, f := range m.Faces {
		var t stl.Triangle
		for c, idx := range f {
			v := m.Vertices[idx]
			t.Vertices[c] = stl.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
		}
		solid.Triangles = append(solid.Triangles, t)
	}
	return solid.WriteAll(w)
}
