package core

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Scenario owns the bodies of one simulation. Insertion order is kept so adapters are built and
// stepped in the order bodies were declared.
type Scenario struct {
	Name   string
	bodies []*SingleBody
	byName map[string]*SingleBody
	byID   map[uuid.UUID]*SingleBody
	agents []AgentPlacement
}

func NewScenario(name string) *Scenario {
	return &Scenario{
		Name:   name,
		byName: make(map[string]*SingleBody),
		byID:   make(map[uuid.UUID]*SingleBody),
	}
}

// Add registers b. Body names are unique within a scenario.
func (s *Scenario) Add(b *SingleBody) error {
	if _, ok := s.byName[b.Name]; ok {
		return fmt.Errorf("duplicate body name %q", b.Name)
	}
	s.bodies = append(s.bodies, b)
	s.byName[b.Name] = b
	s.byID[b.ID] = b
	return nil
}

// Remove detaches the body and drops it from the scenario.
func (s *Scenario) Remove(id uuid.UUID) bool {
	b, ok := s.byID[id]
	if !ok {
		return false
	}
	b.Detach()
	delete(s.byID, id)
	delete(s.byName, b.Name)
	for i, other := range s.bodies {
		if other == b {
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			break
		}
	}
	return true
}

// AddAgent declares an articulated agent. Agent names are unique within a scenario.
func (s *Scenario) AddAgent(p AgentPlacement) error {
	if err := p.Agent.Validate(); err != nil {
		return err
	}
	for _, other := range s.agents {
		if other.Agent.Name == p.Agent.Name {
			return fmt.Errorf("duplicate agent name %q", p.Agent.Name)
		}
	}
	s.agents = append(s.agents, p)
	return nil
}

// Agents returns the declared agents in declaration order.
func (s *Scenario) Agents() []AgentPlacement { return s.agents }

func (s *Scenario) Bodies() []*SingleBody { return s.bodies }

func (s *Scenario) Len() int { return len(s.bodies) }

func (s *Scenario) Body(name string) (*SingleBody, bool) {
	b, ok := s.byName[name]
	return b, ok
}

func (s *Scenario) BodyByID(id uuid.UUID) (*SingleBody, bool) {
	b, ok := s.byID[id]
	return b, ok
}

// scenarioFile is the YAML layout of a scenario (e.g. scenarios/five_bodies.yaml).
type scenarioFile struct {
	Name   string      `yaml:"name"`
	Bodies []bodyFile  `yaml:"bodies"`
	Agents []agentFile `yaml:"agents,omitempty"`
}

type bodyFile struct {
	Name      string        `yaml:"name"`
	DynType   DynamicsType  `yaml:"dyntype"`
	Position  [3]float64    `yaml:"position"`
	Euler     [3]float64    `yaml:"euler,omitempty"`
	Collision *collFile     `yaml:"collision,omitempty"`
	Visual    *visualFile   `yaml:"visual,omitempty"`
	Inertia   *inertialFile `yaml:"inertia,omitempty"`
}

type shapeFile struct {
	Type        ShapeType       `yaml:"type"`
	Size        [3]float64      `yaml:"size,omitempty"`
	Mesh        MeshData        `yaml:"mesh,omitempty"`
	Heightfield HeightfieldData `yaml:"heightfield,omitempty"`
	Children    []childFile     `yaml:"children,omitempty"`
}

type childFile struct {
	shapeFile `yaml:",inline"`
	Position  [3]float64 `yaml:"position,omitempty"`
	Euler     [3]float64 `yaml:"euler,omitempty"`
}

type collFile struct {
	shapeFile `yaml:",inline"`
	Density   *float64 `yaml:"density,omitempty"`
	Friction  *float64 `yaml:"friction,omitempty"`
	Group     *uint32  `yaml:"group,omitempty"`
	Mask      *uint32  `yaml:"mask,omitempty"`
}

type visualFile struct {
	shapeFile `yaml:",inline"`
	Color     [3]float64 `yaml:"color,omitempty"`
}

// inertialFile mirrors InertialData with YAML keys.
type inertialFile struct {
	Mass float64 `yaml:"mass"`
	Ixx  float64 `yaml:"ixx,omitempty"`
	Iyy  float64 `yaml:"iyy,omitempty"`
	Izz  float64 `yaml:"izz,omitempty"`
	Ixy  float64 `yaml:"ixy,omitempty"`
	Ixz  float64 `yaml:"ixz,omitempty"`
	Iyz  float64 `yaml:"iyz,omitempty"`
}

type agentFile struct {
	Name     string     `yaml:"name"`
	Position [3]float64 `yaml:"position"`
	Euler    [3]float64 `yaml:"euler,omitempty"`
	Links    []linkFile `yaml:"links"`
}

type linkFile struct {
	Name      string        `yaml:"name"`
	Parent    string        `yaml:"parent,omitempty"`
	Joint     jointFile     `yaml:"joint"`
	Collision *collFile     `yaml:"collision,omitempty"`
	Visual    *visualFile   `yaml:"visual,omitempty"`
	Inertia   *inertialFile `yaml:"inertia,omitempty"`
}

type jointFile struct {
	Type          JointType   `yaml:"type"`
	Name          string      `yaml:"name,omitempty"`
	Axis          *[3]float64 `yaml:"axis,omitempty"`
	ParentToJoint frameFile   `yaml:"parent_to_joint,omitempty"`
	ChildToJoint  frameFile   `yaml:"child_to_joint,omitempty"`
	Limits        [2]float64  `yaml:"limits,omitempty"`
	Damping       float64     `yaml:"damping,omitempty"`
}

// frameFile is a joint frame relative to its body-node.
type frameFile struct {
	Position [3]float64 `yaml:"position,omitempty"`
	Euler    [3]float64 `yaml:"euler,omitempty"`
}

func (f frameFile) transform() mgl64.Mat4 {
	return TransformFromPosRot(mgl64.Vec3(f.Position), mgl64.Vec3(f.Euler))
}

func (f shapeFile) shape() ShapeData {
	s := ShapeData{
		Type:        f.Type,
		Size:        mgl64.Vec3(f.Size),
		Mesh:        f.Mesh,
		Heightfield: f.Heightfield,
	}
	for _, c := range f.Children {
		s.Children = append(s.Children, c.shape())
		s.ChildrenTransforms = append(s.ChildrenTransforms,
			TransformFromPosRot(mgl64.Vec3(c.Position), mgl64.Vec3(c.Euler)))
	}
	return s
}

func (f *collFile) collision() CollisionData {
	if f == nil {
		return CollisionData{}
	}
	c := NewCollisionData(f.shape())
	if f.Density != nil {
		c.Density = *f.Density
	}
	if f.Friction != nil {
		c.Friction = *f.Friction
	}
	if f.Group != nil {
		c.CollisionGroup = *f.Group
	}
	if f.Mask != nil {
		c.CollisionMask = *f.Mask
	}
	return c
}

// visual falls back to the collider shape in a neutral grey.
func (f *visualFile) visual(coll CollisionData) VisualData {
	if f != nil {
		return VisualData{Shape: f.shape(), Color: mgl64.Vec3(f.Color)}
	}
	if !coll.Shape.IsZero() {
		return VisualData{Shape: coll.Shape, Color: mgl64.Vec3{0.7, 0.7, 0.7}}
	}
	return VisualData{}
}

func (f *inertialFile) inertia() InertialData {
	if f == nil {
		return InertialData{}
	}
	return InertialData(*f)
}

func (f bodyFile) body() (*SingleBody, error) {
	data := BodyData{DynType: f.DynType, Collision: f.Collision.collision()}
	data.Visual = f.Visual.visual(data.Collision)
	data.Inertia = f.Inertia.inertia()
	return NewSingleBody(f.Name, data, TransformFromPosRot(mgl64.Vec3(f.Position), mgl64.Vec3(f.Euler)))
}

func (f jointFile) joint(link string) JointData {
	name := f.Name
	if name == "" {
		name = link + "_joint"
	}
	j := NewJointData(f.Type, name)
	if f.Axis != nil {
		j.Axis = mgl64.Vec3(*f.Axis)
	}
	j.ParentToJoint = f.ParentToJoint.transform()
	j.ChildToJoint = f.ChildToJoint.transform()
	j.Limits = mgl64.Vec2(f.Limits)
	j.Damping = f.Damping
	return j
}

func (f agentFile) placement() AgentPlacement {
	data := AgentData{Name: f.Name}
	for _, lf := range f.Links {
		link := LinkData{
			Name:      lf.Name,
			Parent:    lf.Parent,
			Joint:     lf.Joint.joint(lf.Name),
			Collision: lf.Collision.collision(),
			Inertia:   lf.Inertia.inertia(),
		}
		link.Visual = lf.Visual.visual(link.Collision)
		data.Links = append(data.Links, link)
	}
	return AgentPlacement{
		Agent:    data,
		Position: mgl64.Vec3(f.Position),
		Rotation: RotationFromEuler(mgl64.Vec3(f.Euler)),
	}
}

// LoadScenario decodes a YAML scenario.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var f scenarioFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	s := NewScenario(f.Name)
	for i, bf := range f.Bodies {
		if bf.Name == "" {
			return nil, fmt.Errorf("body %d has no name", i)
		}
		b, err := bf.body()
		if err != nil {
			return nil, err
		}
		if err := s.Add(b); err != nil {
			return nil, err
		}
	}
	for i, af := range f.Agents {
		if af.Name == "" {
			return nil, fmt.Errorf("agent %d has no name", i)
		}
		if err := s.AddAgent(af.placement()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadScenarioFile opens path and decodes it with LoadScenario.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	s, err := LoadScenario(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}
