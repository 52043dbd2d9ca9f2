package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// LinkData is one rigid link of an articulated agent. Parent names another link of the same agent;
// an empty Parent marks the root, attached to the world by Joint.
type LinkData struct {
	Name      string
	Parent    string
	Joint     JointData
	Collision CollisionData
	Visual    VisualData
	Inertia   InertialData
}

// AgentData describes an articulated agent. Links are listed parent before child.
type AgentData struct {
	Name  string
	Links []LinkData
}

// AgentPlacement is an agent declared by a scenario with the pose its root starts at.
type AgentPlacement struct {
	Agent    AgentData
	Position mgl64.Vec3
	Rotation mgl64.Mat3
}

// Validate checks that there is exactly one root, that link names are unique and that every parent
// is declared before its children.
func (a AgentData) Validate() error {
	if len(a.Links) == 0 {
		return fmt.Errorf("agent %q has no links", a.Name)
	}
	seen := make(map[string]bool, len(a.Links))
	for i, l := range a.Links {
		if l.Name == "" {
			return fmt.Errorf("agent %q: link %d has no name", a.Name, i)
		}
		if seen[l.Name] {
			return fmt.Errorf("agent %q: duplicate link %q", a.Name, l.Name)
		}
		switch {
		case i == 0 && l.Parent != "":
			return fmt.Errorf("agent %q: first link %q must be the root", a.Name, l.Name)
		case i > 0 && l.Parent == "":
			return fmt.Errorf("agent %q: link %q has no parent", a.Name, l.Name)
		case i > 0 && !seen[l.Parent]:
			return fmt.Errorf("agent %q: link %q references unknown parent %q", a.Name, l.Name, l.Parent)
		}
		seen[l.Name] = true
	}
	return nil
}
