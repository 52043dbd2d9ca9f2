package dynamics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"physics-adapter/internal/meshio"
)

// Shape is a collision geometry expressed in its own frame.
type Shape interface {
	Type() string
	Volume() float64
	// ComputeInertia returns the 3×3 moment of a solid of the given mass about the shape origin.
	ComputeInertia(mass float64) *mat.Dense
	// LocalBounds returns the axis-aligned bounds in the shape frame.
	LocalBounds() (lo, hi r3.Vec)
}

// PlaneShape is the half-space {p : Normal·p <= Offset}. It is never mobile and has no volume.
type PlaneShape struct {
	Normal r3.Vec
	Offset float64
}

func NewPlaneShape(normal r3.Vec, offset float64) *PlaneShape {
	return &PlaneShape{Normal: r3.Unit(normal), Offset: offset}
}

func (s *PlaneShape) Type() string    { return "plane" }
func (s *PlaneShape) Volume() float64 { return 0 }
func (s *PlaneShape) ComputeInertia(float64) *mat.Dense {
	return mat.NewDense(3, 3, nil)
}

// LocalBounds is infinite except along the normal.
func (s *PlaneShape) LocalBounds() (lo, hi r3.Vec) {
	inf := math.Inf(1)
	return r3.Vec{X: -inf, Y: -inf, Z: -inf}, r3.Vec{X: inf, Y: inf, Z: inf}
}

// BoxShape takes full extents.
type BoxShape struct {
	Size r3.Vec
}

func NewBoxShape(size r3.Vec) *BoxShape { return &BoxShape{Size: size} }

func (s *BoxShape) Type() string    { return "box" }
func (s *BoxShape) Volume() float64 { return s.Size.X * s.Size.Y * s.Size.Z }
func (s *BoxShape) ComputeInertia(mass float64) *mat.Dense {
	return boxInertia(mass, s.Size)
}
func (s *BoxShape) LocalBounds() (lo, hi r3.Vec) {
	half := r3.Scale(0.5, s.Size)
	return r3.Scale(-1, half), half
}

func boxInertia(mass float64, size r3.Vec) *mat.Dense {
	x2, y2, z2 := size.X*size.X, size.Y*size.Y, size.Z*size.Z
	return mat.NewDense(3, 3, []float64{
		mass / 12 * (y2 + z2), 0, 0,
		0, mass / 12 * (x2 + z2), 0,
		0, 0, mass / 12 * (x2 + y2),
	})
}

func diagInertia(ixx, iyy, izz float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{ixx, 0, 0, 0, iyy, 0, 0, 0, izz})
}

type SphereShape struct {
	Radius float64
}

func NewSphereShape(radius float64) *SphereShape { return &SphereShape{Radius: radius} }

func (s *SphereShape) Type() string { return "sphere" }
func (s *SphereShape) Volume() float64 {
	return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
}
func (s *SphereShape) ComputeInertia(mass float64) *mat.Dense {
	i := 0.4 * mass * s.Radius * s.Radius
	return diagInertia(i, i, i)
}
func (s *SphereShape) LocalBounds() (lo, hi r3.Vec) {
	r := s.Radius
	return r3.Vec{X: -r, Y: -r, Z: -r}, r3.Vec{X: r, Y: r, Z: r}
}

// CylinderShape is aligned with the local Z axis and centred on the origin.
type CylinderShape struct {
	Radius float64
	Height float64
}

func NewCylinderShape(radius, height float64) *CylinderShape {
	return &CylinderShape{Radius: radius, Height: height}
}

func (s *CylinderShape) Type() string    { return "cylinder" }
func (s *CylinderShape) Volume() float64 { return math.Pi * s.Radius * s.Radius * s.Height }
func (s *CylinderShape) ComputeInertia(mass float64) *mat.Dense {
	r2, h2 := s.Radius*s.Radius, s.Height*s.Height
	ixx := mass * (3*r2 + h2) / 12
	return diagInertia(ixx, ixx, mass*r2/2)
}
func (s *CylinderShape) LocalBounds() (lo, hi r3.Vec) {
	r, h := s.Radius, s.Height/2
	return r3.Vec{X: -r, Y: -r, Z: -h}, r3.Vec{X: r, Y: r, Z: h}
}

// CapsuleShape is a Z-aligned cylinder of the given height capped by two hemispheres.
type CapsuleShape struct {
	Radius float64
	Height float64
}

func NewCapsuleShape(radius, height float64) *CapsuleShape {
	return &CapsuleShape{Radius: radius, Height: height}
}

func (s *CapsuleShape) Type() string { return "capsule" }
func (s *CapsuleShape) Volume() float64 {
	r := s.Radius
	return math.Pi*r*r*s.Height + 4.0/3.0*math.Pi*r*r*r
}
func (s *CapsuleShape) ComputeInertia(mass float64) *mat.Dense {
	r, h := s.Radius, s.Height
	vc := math.Pi * r * r * h
	vs := 4.0 / 3.0 * math.Pi * r * r * r
	mc := mass * vc / (vc + vs)
	ms := mass - mc
	izz := mc*r*r/2 + ms*0.4*r*r
	ixx := mc*(3*r*r+h*h)/12 + ms*(0.4*r*r+h*h/4+3*h*r/8)
	return diagInertia(ixx, ixx, izz)
}
func (s *CapsuleShape) LocalBounds() (lo, hi r3.Vec) {
	r, h := s.Radius, s.Height/2+s.Radius
	return r3.Vec{X: -r, Y: -r, Z: -h}, r3.Vec{X: r, Y: r, Z: h}
}

// EllipsoidShape takes full axis lengths (diameters).
type EllipsoidShape struct {
	Diameters r3.Vec
}

func NewEllipsoidShape(diameters r3.Vec) *EllipsoidShape {
	return &EllipsoidShape{Diameters: diameters}
}

func (s *EllipsoidShape) Type() string { return "ellipsoid" }
func (s *EllipsoidShape) Volume() float64 {
	d := s.Diameters
	return math.Pi / 6 * d.X * d.Y * d.Z
}
func (s *EllipsoidShape) ComputeInertia(mass float64) *mat.Dense {
	a, b, c := s.Diameters.X/2, s.Diameters.Y/2, s.Diameters.Z/2
	return diagInertia(mass/5*(b*b+c*c), mass/5*(a*a+c*c), mass/5*(a*a+b*b))
}
func (s *EllipsoidShape) LocalBounds() (lo, hi r3.Vec) {
	half := r3.Scale(0.5, s.Diameters)
	return r3.Scale(-1, half), half
}

// MeshShape wraps a triangle mesh scaled per axis. Volume and inertia are those of its bounding box.
type MeshShape struct {
	Mesh   *meshio.Mesh
	Scale  r3.Vec
	Convex bool
}

func NewMeshShape(m *meshio.Mesh, scale r3.Vec, convex bool) *MeshShape {
	return &MeshShape{Mesh: m, Scale: scale, Convex: convex}
}

func (s *MeshShape) Type() string {
	if s.Convex {
		return "convex_mesh"
	}
	return "mesh"
}

func (s *MeshShape) extent() r3.Vec {
	lo, hi := s.LocalBounds()
	return r3.Sub(hi, lo)
}

func (s *MeshShape) Volume() float64 {
	e := s.extent()
	return e.X * e.Y * e.Z
}
func (s *MeshShape) ComputeInertia(mass float64) *mat.Dense {
	return boxInertia(mass, s.extent())
}
func (s *MeshShape) LocalBounds() (lo, hi r3.Vec) {
	lo, hi = s.Mesh.Bounds()
	lo = r3.Vec{X: lo.X * s.Scale.X, Y: lo.Y * s.Scale.Y, Z: lo.Z * s.Scale.Z}
	hi = r3.Vec{X: hi.X * s.Scale.X, Y: hi.Y * s.Scale.Y, Z: hi.Z * s.Scale.Z}
	return minVec(lo, hi), maxVec(lo, hi)
}

// HeightmapShape is a grid of Width × Depth samples centred on the origin in X and Y. Scale.X and
// Scale.Y are the sample spacings, Scale.Z multiplies the heights.
type HeightmapShape struct {
	Width   int
	Depth   int
	Heights []float64
	Scale   r3.Vec
}

func NewHeightmapShape(width, depth int, heights []float64, scale r3.Vec) *HeightmapShape {
	return &HeightmapShape{Width: width, Depth: depth, Heights: heights, Scale: scale}
}

func (s *HeightmapShape) Type() string { return "heightmap" }

func (s *HeightmapShape) Volume() float64 {
	lo, hi := s.LocalBounds()
	e := r3.Sub(hi, lo)
	return e.X * e.Y * e.Z
}
func (s *HeightmapShape) ComputeInertia(mass float64) *mat.Dense {
	lo, hi := s.LocalBounds()
	return boxInertia(mass, r3.Sub(hi, lo))
}
func (s *HeightmapShape) LocalBounds() (lo, hi r3.Vec) {
	hx := float64(s.Width-1) * s.Scale.X / 2
	hy := float64(s.Depth-1) * s.Scale.Y / 2
	zmin, zmax := 0.0, 0.0
	for i, h := range s.Heights {
		z := h * s.Scale.Z
		if i == 0 || z < zmin {
			zmin = z
		}
		if i == 0 || z > zmax {
			zmax = z
		}
	}
	return r3.Vec{X: -hx, Y: -hy, Z: zmin}, r3.Vec{X: hx, Y: hy, Z: zmax}
}

// HeightAt returns the bilinearly interpolated surface height at local (x, y), and false outside
// the grid.
func (s *HeightmapShape) HeightAt(x, y float64) (float64, bool) {
	if s.Width < 2 || s.Depth < 2 || len(s.Heights) < s.Width*s.Depth {
		return 0, false
	}
	lo, _ := s.LocalBounds()
	u := (x - lo.X) / s.Scale.X
	v := (y - lo.Y) / s.Scale.Y
	if u < 0 || v < 0 || u > float64(s.Width-1) || v > float64(s.Depth-1) {
		return 0, false
	}
	i0, j0 := int(u), int(v)
	i1, j1 := min(i0+1, s.Width-1), min(j0+1, s.Depth-1)
	fu, fv := u-float64(i0), v-float64(j0)
	h := func(i, j int) float64 { return s.Heights[j*s.Width+i] }
	top := h(i0, j0)*(1-fu) + h(i1, j0)*fu
	bottom := h(i0, j1)*(1-fu) + h(i1, j1)*fu
	return (top*(1-fv) + bottom*fv) * s.Scale.Z, true
}

// CompoundChild is one part of a CompoundShape with its offset in the compound frame.
type CompoundChild struct {
	Shape  Shape
	Offset Isometry
}

// CompoundShape aggregates child shapes. Mass is split between children by volume.
type CompoundShape struct {
	Children []CompoundChild
}

func NewCompoundShape() *CompoundShape { return &CompoundShape{} }

func (s *CompoundShape) AddChild(shape Shape, offset Isometry) {
	s.Children = append(s.Children, CompoundChild{Shape: shape, Offset: offset})
}

func (s *CompoundShape) Type() string { return "compound" }

func (s *CompoundShape) Volume() float64 {
	v := 0.0
	for _, c := range s.Children {
		v += c.Shape.Volume()
	}
	return v
}

// ComputeInertia sums the rotated child moments and their parallel-axis terms about the compound origin.
func (s *CompoundShape) ComputeInertia(mass float64) *mat.Dense {
	total := mat.NewDense(3, 3, nil)
	vol := s.Volume()
	if vol <= 0 {
		return total
	}
	for _, c := range s.Children {
		m := mass * c.Shape.Volume() / vol
		total.Add(total, rotateInertia(c.Offset.R(), c.Shape.ComputeInertia(m)))
		total.Add(total, parallelAxis(m, c.Offset.Translation))
	}
	return total
}

func (s *CompoundShape) LocalBounds() (lo, hi r3.Vec) {
	if len(s.Children) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	for i, c := range s.Children {
		clo, chi := TransformBounds(c.Offset, c.Shape)
		if i == 0 {
			lo, hi = clo, chi
			continue
		}
		lo, hi = minVec(lo, clo), maxVec(hi, chi)
	}
	return lo, hi
}

// TransformBounds returns the world-aligned bounds of shape placed at tf.
func TransformBounds(tf Isometry, shape Shape) (lo, hi r3.Vec) {
	slo, shi := shape.LocalBounds()
	if math.IsInf(slo.X, 0) || math.IsInf(shi.X, 0) {
		return slo, shi
	}
	for i := 0; i < 8; i++ {
		corner := r3.Vec{X: slo.X, Y: slo.Y, Z: slo.Z}
		if i&1 != 0 {
			corner.X = shi.X
		}
		if i&2 != 0 {
			corner.Y = shi.Y
		}
		if i&4 != 0 {
			corner.Z = shi.Z
		}
		p := tf.Apply(corner)
		if i == 0 {
			lo, hi = p, p
			continue
		}
		lo, hi = minVec(lo, p), maxVec(hi, p)
	}
	return lo, hi
}

func minVec(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

func maxVec(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}
