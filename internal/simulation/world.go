package simulation

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"physics-adapter/internal/collision"
	"physics-adapter/internal/dynamics"
	"physics-adapter/internal/logger"
)

// DefaultTimeStep is the step of a world that was not configured otherwise.
const DefaultTimeStep = 0.001

// World holds a set of skeletons and runs a step: integration, collision detection and
// resolution, then clearing of the transient forces.
type World struct {
	name       string
	timeStep   float64
	time       float64
	frames     int
	gravity    r3.Vec
	iterations int

	skeletons []*dynamics.Skeleton
	detector  collision.Detector
	filter    collision.Filter
	last      collision.Result

	log *zap.Logger
}

// NewWorld returns a world with a 1 ms step, Z-up gravity (0, 0, -9.81), the AABB detector and the
// default body-node filter.
func NewWorld(name string, log *zap.Logger) *World {
	return &World{
		name:       name,
		timeStep:   DefaultTimeStep,
		gravity:    r3.Vec{Z: -9.81},
		iterations: 1,
		detector:   collision.AABBDetector{},
		filter:     collision.BodyNodeFilter{},
		log:        logger.OrNop(log).Named("world"),
	}
}

func (w *World) Name() string { return w.name }

// SetTimeStep ignores non-positive steps.
func (w *World) SetTimeStep(dt float64) {
	if dt <= 0 {
		w.log.Warn("ignoring non-positive time step", zap.Float64("dt", dt))
		return
	}
	w.timeStep = dt
}

func (w *World) TimeStep() float64 { return w.timeStep }

func (w *World) SetGravity(g r3.Vec) { w.gravity = g }
func (w *World) Gravity() r3.Vec     { return w.gravity }

func (w *World) Time() float64 { return w.time }

// SimFrames is the number of steps taken since the last reset.
func (w *World) SimFrames() int { return w.frames }

// Reset rewinds the clock. Skeleton state is left to their owners.
func (w *World) Reset() {
	w.time = 0
	w.frames = 0
	w.last = collision.Result{}
}

// SetSolverIterations sets how many detect-and-resolve passes run per step (at least one).
func (w *World) SetSolverIterations(n int) {
	w.iterations = max(n, 1)
}

func (w *World) SetCollisionDetector(d collision.Detector) {
	if d == nil {
		d = collision.NullDetector{}
	}
	w.detector = d
}

func (w *World) CollisionDetector() collision.Detector { return w.detector }

// SetCollisionFilter installs the pair filter; nil restores the default body-node filter.
func (w *World) SetCollisionFilter(f collision.Filter) {
	if f == nil {
		f = collision.BodyNodeFilter{}
	}
	w.filter = f
}

func (w *World) CollisionFilter() collision.Filter { return w.filter }

// LastCollisionResult returns the contacts of the last detection pass.
func (w *World) LastCollisionResult() collision.Result { return w.last }

// AddSkeleton registers s and returns its name. A name already used in the world gets a numeric
// suffix. Adding the same skeleton twice is a no-op.
func (w *World) AddSkeleton(s *dynamics.Skeleton) string {
	if w.HasSkeleton(s) {
		w.log.Warn("skeleton already in world", zap.String("skeleton", s.Name()))
		return s.Name()
	}
	base := s.Name()
	for i := 1; w.Skeleton(s.Name()) != nil; i++ {
		s.SetName(fmt.Sprintf("%s(%d)", base, i))
	}
	if s.Name() != base {
		w.log.Debug("renamed skeleton", zap.String("from", base), zap.String("to", s.Name()))
	}
	w.skeletons = append(w.skeletons, s)
	return s.Name()
}

// RemoveSkeleton reports whether s was registered.
func (w *World) RemoveSkeleton(s *dynamics.Skeleton) bool {
	for i, other := range w.skeletons {
		if other == s {
			w.skeletons = append(w.skeletons[:i], w.skeletons[i+1:]...)
			return true
		}
	}
	return false
}

func (w *World) HasSkeleton(s *dynamics.Skeleton) bool {
	for _, other := range w.skeletons {
		if other == s {
			return true
		}
	}
	return false
}

// Skeleton returns the named skeleton or nil.
func (w *World) Skeleton(name string) *dynamics.Skeleton {
	for _, s := range w.skeletons {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

func (w *World) Skeletons() []*dynamics.Skeleton { return w.skeletons }

func (w *World) NumSkeletons() int { return len(w.skeletons) }

// shapeNodes gathers every shape-node of every skeleton in registration order.
func (w *World) shapeNodes() []*dynamics.ShapeNode {
	var nodes []*dynamics.ShapeNode
	for _, s := range w.skeletons {
		for _, b := range s.BodyNodes() {
			nodes = append(nodes, b.ShapeNodes()...)
		}
	}
	return nodes
}

// Step advances the world by one time step.
func (w *World) Step() {
	for _, s := range w.skeletons {
		s.Integrate(w.timeStep, w.gravity)
	}

	nodes := w.shapeNodes()
	w.last = collision.Result{}
	for i := 0; i < w.iterations; i++ {
		res := w.detector.Detect(nodes, w.filter)
		if i == 0 {
			w.last = res
		}
		if res.NumContacts() == 0 {
			break
		}
		collision.Resolve(res)
	}

	for _, s := range w.skeletons {
		s.ClearExternalForces()
		s.ClearInternalForces()
	}
	w.time += w.timeStep
	w.frames++
}
