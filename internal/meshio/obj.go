package meshio

import (
	"fmt"
	"io"

	"github.com/udhos/gwob"
	"gonum.org/v1/gonum/spatial/r3"
)

// objOptions drops normals and silences the parser's own statistics output.
var objOptions = gwob.ObjParserOptions{
	IgnoreNormals: true,
	Logger:        func(string) {},
}

// ReadOBJ parses the geometry of a Wavefront OBJ stream. Polygons come back fan-triangulated and
// texture or normal references are ignored.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	opts := objOptions
	o, err := gwob.NewObjFromReader("mesh", r, &opts)
	if err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	return FromObj(o)
}

// FromObj indexes the triangles of o. gwob emits one element per distinct corner attribute
// tuple, so corners that share a position are merged back into a single vertex.
func FromObj(o *gwob.Obj) (*Mesh, error) {
	if len(o.Indices) == 0 {
		return nil, ErrEmptyMesh
	}
	if len(o.Indices)%3 != 0 {
		return nil, fmt.Errorf("obj index count %d is not a multiple of 3", len(o.Indices))
	}
	n := o.NumberOfElements()
	vi := newVertexIndex(len(o.Indices) / 3)
	for i := 0; i < len(o.Indices); i += 3 {
		var tri [3]int
		for c := range tri {
			e := o.Indices[i+c]
			if e < 0 || e >= n {
				return nil, fmt.Errorf("face %d references element %d of %d", i/3, e, n)
			}
			x, y, z := o.VertexCoordinates(e)
			tri[c] = vi.add(r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)})
		}
		vi.m.Faces = append(vi.m.Faces, tri)
	}
	if err := vi.m.validate(); err != nil {
		return nil, err
	}
	return vi.m, nil
}
