package collision

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"physics-adapter/internal/dynamics"
)

// Contact is one overlapping pair. Normal points from A towards B. Point is a world point of the
// overlap, used to move articulated bodies.
type Contact struct {
	A, B   *dynamics.ShapeNode
	Normal r3.Vec
	Depth  float64
	Point  r3.Vec
}

// Result collects the contacts of one detection pass.
type Result struct {
	Contacts []Contact
}

func (r Result) NumContacts() int { return len(r.Contacts) }

// InContact reports whether sn appears in any contact.
func (r Result) InContact(sn *dynamics.ShapeNode) bool {
	for _, c := range r.Contacts {
		if c.A == sn || c.B == sn {
			return true
		}
	}
	return false
}

// Detector finds contacts between shape-nodes, skipping pairs the filter ignores.
type Detector interface {
	Name() string
	Detect(nodes []*dynamics.ShapeNode, filter Filter) Result
}

// NullDetector never reports contacts.
type NullDetector struct{}

func (NullDetector) Name() string                                { return "none" }
func (NullDetector) Detect([]*dynamics.ShapeNode, Filter) Result { return Result{} }

// AABBDetector compares world bounding boxes. Planes are treated as half-spaces.
type AABBDetector struct{}

func (AABBDetector) Name() string { return "aabb" }

func (AABBDetector) Detect(nodes []*dynamics.ShapeNode, filter Filter) Result {
	var res Result
	boxes := make([]AABB, len(nodes))
	for i, sn := range nodes {
		if _, ok := sn.Shape().(*dynamics.PlaneShape); !ok {
			boxes[i] = ShapeNodeAABB(sn)
		}
	}
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			if filter != nil && filter.IgnoresCollision(a, b) {
				continue
			}
			if c, ok := detectPair(a, b, boxes[i], boxes[j]); ok {
				res.Contacts = append(res.Contacts, c)
			}
		}
	}
	return res
}

func detectPair(a, b *dynamics.ShapeNode, boxA, boxB AABB) (Contact, bool) {
	pa, aIsPlane := a.Shape().(*dynamics.PlaneShape)
	pb, bIsPlane := b.Shape().(*dynamics.PlaneShape)
	switch {
	case aIsPlane && bIsPlane:
		return Contact{}, false
	case aIsPlane:
		return planeContact(a, pa, b, boxB)
	case bIsPlane:
		c, ok := planeContact(b, pb, a, boxA)
		c.A, c.B = a, b
		c.Normal = r3.Scale(-1, c.Normal)
		return c, ok
	}

	depth, axis := penetrationAxis(boxA, boxB)
	if axis < 0 {
		return Contact{}, false
	}
	n := axisVec(axis)
	if component(boxB.Center(), axis) < component(boxA.Center(), axis) {
		n = r3.Scale(-1, n)
	}
	return Contact{A: a, B: b, Normal: n, Depth: depth, Point: overlapCenter(boxA, boxB)}, true
}

// planeContact tests box against the half-space of plane; the normal points out of the plane.
func planeContact(planeNode *dynamics.ShapeNode, plane *dynamics.PlaneShape, other *dynamics.ShapeNode, box AABB) (Contact, bool) {
	tf := planeNode.Transform()
	n := tf.Rotate(plane.Normal)
	origin := r3.Add(tf.Translation, r3.Scale(plane.Offset, n))

	// Deepest corner of the box along -n.
	corner := box.Min
	if n.X < 0 {
		corner.X = box.Max.X
	}
	if n.Y < 0 {
		corner.Y = box.Max.Y
	}
	if n.Z < 0 {
		corner.Z = box.Max.Z
	}
	dist := r3.Dot(r3.Sub(corner, origin), n)
	if dist >= 0 || math.IsInf(dist, 0) || math.IsNaN(dist) {
		return Contact{}, false
	}
	// Centre of the box face deepest in the plane.
	center := box.Center()
	point := r3.Sub(center, r3.Scale(r3.Dot(r3.Sub(center, corner), n), n))
	return Contact{A: planeNode, B: other, Normal: n, Depth: -dist, Point: point}, true
}
