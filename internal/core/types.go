package core

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownShapeType is returned when a shape type name is not recognised.
var ErrUnknownShapeType = errors.New("unknown shape type")

// ShapeType selects which fields of a ShapeData are meaningful.
type ShapeType int

const (
	ShapeNone ShapeType = iota
	ShapePlane
	ShapeBox
	ShapeSphere
	ShapeCylinder
	ShapeCapsule
	ShapeEllipsoid
	ShapeConvexMesh
	ShapeTriangleMesh
	ShapeHeightfield
	ShapeCompound
)

var shapeTypeNames = [...]string{
	ShapeNone:         "none",
	ShapePlane:        "plane",
	ShapeBox:          "box",
	ShapeSphere:       "sphere",
	ShapeCylinder:     "cylinder",
	ShapeCapsule:      "capsule",
	ShapeEllipsoid:    "ellipsoid",
	ShapeConvexMesh:   "convex_mesh",
	ShapeTriangleMesh: "triangle_mesh",
	ShapeHeightfield:  "heightfield",
	ShapeCompound:     "compound",
}

func (t ShapeType) String() string {
	if t < 0 || int(t) >= len(shapeTypeNames) {
		return fmt.Sprintf("ShapeType(%d)", int(t))
	}
	return shapeTypeNames[t]
}

// ParseShapeType accepts the snake_case names above, case-insensitively. "mesh" is an alias of
// triangle_mesh and the empty string maps to none.
func ParseShapeType(s string) (ShapeType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return ShapeNone, nil
	case "mesh":
		return ShapeTriangleMesh, nil
	}
	for i, name := range shapeTypeNames {
		if name == s {
			return ShapeType(i), nil
		}
	}
	return ShapeNone, fmt.Errorf("%w: %q", ErrUnknownShapeType, s)
}

func (t ShapeType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *ShapeType) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseShapeType(value.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DynamicsType tells whether a body is moved by the world.
type DynamicsType int

const (
	Static DynamicsType = iota
	Dynamic
)

func (d DynamicsType) String() string {
	if d == Dynamic {
		return "dynamic"
	}
	return "static"
}

func (d DynamicsType) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *DynamicsType) UnmarshalYAML(value *yaml.Node) error {
	switch strings.ToLower(value.Value) {
	case "", "static":
		*d = Static
	case "dynamic":
		*d = Dynamic
	default:
		return fmt.Errorf("unknown dynamics type %q", value.Value)
	}
	return nil
}

// JointType names the joints an articulated body can be built from.
type JointType int

const (
	JointFree JointType = iota
	JointRevolute
	JointPrismatic
	JointBall
	JointPlanar
	JointFixed
)

var jointTypeNames = [...]string{
	JointFree:      "free",
	JointRevolute:  "revolute",
	JointPrismatic: "prismatic",
	JointBall:      "ball",
	JointPlanar:    "planar",
	JointFixed:     "fixed",
}

func (t JointType) String() string {
	if t < 0 || int(t) >= len(jointTypeNames) {
		return fmt.Sprintf("JointType(%d)", int(t))
	}
	return jointTypeNames[t]
}

func (t JointType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *JointType) UnmarshalYAML(value *yaml.Node) error {
	s := strings.ToLower(value.Value)
	for i, name := range jointTypeNames {
		if name == s {
			*t = JointType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown joint type %q", value.Value)
}
