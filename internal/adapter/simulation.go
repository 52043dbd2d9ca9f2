package adapter

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"physics-adapter/internal/collision"
	"physics-adapter/internal/config"
	"physics-adapter/internal/core"
	"physics-adapter/internal/logger"
	"physics-adapter/internal/simulation"
)

// Simulation owns a world and the adapters of every body of a scenario.
type Simulation struct {
	cfg      config.SimulationConfig
	scenario *core.Scenario
	world    *simulation.World
	filter   *BitmaskCollisionFilter

	adapters []*SingleBodyAdapter
	byID     map[uuid.UUID]*SingleBodyAdapter
	agents   []*Agent

	initialized bool
	log         *zap.Logger
}

// NewDetector maps a config detector name to a collision detector. Unknown names get the AABB one.
func NewDetector(name string) collision.Detector {
	if name == config.DetectorNone {
		return collision.NullDetector{}
	}
	return collision.AABBDetector{}
}

// NewSimulation creates the world from cfg, installs a bitmask filter and builds one adapter per
// scenario body. Bodies that already carry an adapter are skipped with an error log.
func NewSimulation(scenario *core.Scenario, cfg config.SimulationConfig, log *zap.Logger) *Simulation {
	log = logger.OrNop(log)
	if scenario == nil {
		scenario = core.NewScenario("empty")
	}
	s := &Simulation{
		cfg:      cfg,
		scenario: scenario,
		world:    simulation.NewWorld(scenario.Name, log),
		filter:   NewBitmaskCollisionFilter(),
		byID:     make(map[uuid.UUID]*SingleBodyAdapter),
		log:      log.Named("adapter"),
	}
	s.world.SetTimeStep(cfg.TimeStep)
	s.world.SetGravity(r3.Vec{X: cfg.Gravity[0], Y: cfg.Gravity[1], Z: cfg.Gravity[2]})
	s.world.SetSolverIterations(cfg.SolverIterations)
	s.world.SetCollisionDetector(NewDetector(cfg.CollisionDetector))
	s.world.SetCollisionFilter(s.filter)

	for _, body := range scenario.Bodies() {
		a := NewSingleBodyAdapter(body, s.log)
		a.SetDefaultDensity(cfg.DefaultDensity)
		if err := a.Attach(); err != nil {
			s.log.Error("skipping body", zap.String("body", body.Name), zap.Error(err))
			continue
		}
		a.Build()
		s.adapters = append(s.adapters, a)
		s.byID[body.ID] = a
	}
	s.log.Info("created simulation",
		zap.String("scenario", scenario.Name),
		zap.Int("bodies", len(s.adapters)),
		zap.String("detector", s.world.CollisionDetector().Name()))
	return s
}

func (s *Simulation) World() *simulation.World        { return s.world }
func (s *Simulation) Filter() *BitmaskCollisionFilter { return s.filter }
func (s *Simulation) Scenario() *core.Scenario        { return s.scenario }
func (s *Simulation) Adapters() []*SingleBodyAdapter  { return s.adapters }
func (s *Simulation) Agents() []*Agent                { return s.agents }
func (s *Simulation) Config() config.SimulationConfig { return s.cfg }

// Adapter returns the adapter of the body with id, or nil.
func (s *Simulation) Adapter(id uuid.UUID) *SingleBodyAdapter { return s.byID[id] }

// Initialize registers every built adapter with the world. Calling it twice is a no-op.
func (s *Simulation) Initialize() {
	if s.initialized {
		return
	}
	for _, a := range s.adapters {
		a.SetWorld(s.world)
		a.Initialize()
	}
	s.initialized = true
}

// Step advances the world by one frame, 1/FrameRate seconds of fixed steps, then refreshes the
// cached transform of every body.
func (s *Simulation) Step() {
	frame := s.cfg.FrameInterval()
	if frame <= 0 || math.IsInf(frame, 0) {
		frame = s.world.TimeStep()
	}
	start := s.world.Time()
	eps := 1e-9 * frame
	for s.world.Time()-start < frame-eps {
		s.world.Step()
	}
	for _, a := range s.adapters {
		if b := a.Body(); b != nil {
			b.SyncTransform()
		}
	}
}

// Reset rewinds world time and returns every body and agent to its initial state.
func (s *Simulation) Reset() {
	s.world.Reset()
	for _, a := range s.adapters {
		a.Reset()
		if b := a.Body(); b != nil {
			b.SyncTransform()
		}
	}
	for _, ag := range s.agents {
		ag.reset()
	}
}

// AddAgent registers the agent skeleton on first use and places its root joint.
func (s *Simulation) AddAgent(agent *Agent, position mgl64.Vec3, rotation mgl64.Mat3) {
	if agent == nil {
		s.log.Panic("AddAgent needs an agent")
	}
	if !agent.registered {
		s.world.AddSkeleton(agent.skeleton)
		for sn, data := range agent.shapes {
			s.filter.SetCollisionGroup(sn, data.CollisionGroup)
			s.filter.SetCollisionMask(sn, data.CollisionMask)
		}
		agent.registered = true
		s.agents = append(s.agents, agent)
	}
	agent.place(position, rotation)
	s.log.Debug("placed agent",
		zap.String("agent", agent.Name),
		zap.Float64s("position", position[:]))
}

// Detach removes the body's skeleton from the world and the body from the scenario, severing it
// from its adapters. It reports whether id named an attached body.
func (s *Simulation) Detach(id uuid.UUID) bool {
	a, ok := s.byID[id]
	if !ok {
		return false
	}
	if skel := a.Skeleton(); skel != nil {
		s.world.RemoveSkeleton(skel)
	}
	if !s.scenario.Remove(id) {
		if b := a.Body(); b != nil {
			b.Detach()
		} else {
			a.OnDetach()
		}
	}
	delete(s.byID, id)
	for i, other := range s.adapters {
		if other == a {
			s.adapters = append(s.adapters[:i], s.adapters[i+1:]...)
			break
		}
	}
	return true
}

// Close detaches every body. Adapters must not outlive the world.
func (s *Simulation) Close() {
	for _, a := range append([]*SingleBodyAdapter(nil), s.adapters...) {
		if b := a.Body(); b != nil {
			s.Detach(b.ID)
		}
	}
	for _, ag := range s.agents {
		s.world.RemoveSkeleton(ag.skeleton)
		for sn := range ag.shapes {
			s.filter.Remove(sn)
		}
	}
	s.agents = nil
}

var (
	_ core.BodyAdapter     = (*SingleBodyAdapter)(nil)
	_ core.ColliderAdapter = (*SingleBodyColliderAdapter)(nil)
	_ collision.Filter     = (*BitmaskCollisionFilter)(nil)
)
