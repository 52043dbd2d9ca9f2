package adapter

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/spatial/r3"

	"physics-adapter/internal/config"
	"physics-adapter/internal/core"
)

type bodySpec struct {
	name  string
	shape core.ShapeData
	dyn   core.DynamicsType
	pos   mgl64.Vec3
	euler mgl64.Vec3
}

func fiveBodies() []bodySpec {
	monkey := core.MeshShape(cubeVertices, cubeFaces, false)
	monkey.Size = mgl64.Vec3{0.2, 0.2, 0.2}
	floor := core.PlaneShape()
	floor.Size = mgl64.Vec3{10, 10, 1}
	return []bodySpec{
		{"floor", floor, core.Static, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}},
		{"boxy", core.BoxShape(mgl64.Vec3{0.1, 0.2, 0.3}), core.Dynamic, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0.2 * math.Pi, 0.2 * math.Pi, 0.2 * math.Pi}},
		{"box_obstacle", core.BoxShape(mgl64.Vec3{0.1, 0.2, 0.3}), core.Static, mgl64.Vec3{0, 1, 1}, mgl64.Vec3{0.3 * math.Pi, 0.3 * math.Pi, 0.3 * math.Pi}},
		{"monkey_head", monkey, core.Dynamic, mgl64.Vec3{1, 0, 1}, mgl64.Vec3{0.4 * math.Pi, 0.4 * math.Pi, 0.4 * math.Pi}},
		{"heavy_sphere", core.SphereShape(0.1), core.Dynamic, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0.5 * math.Pi, 0.5 * math.Pi, 0.5 * math.Pi}},
	}
}

func newScenario(t *testing.T, specs []bodySpec) *core.Scenario {
	t.Helper()
	sc := core.NewScenario("test")
	for _, s := range specs {
		data := core.BodyData{
			DynType:   s.dyn,
			Collision: core.NewCollisionData(s.shape),
			Visual:    core.VisualData{Shape: s.shape, Color: mgl64.Vec3{0.7, 0.5, 0.3}},
		}
		b, err := core.NewSingleBody(s.name, data, core.TransformFromPosRot(s.pos, s.euler))
		require.NoError(t, err)
		require.NoError(t, sc.Add(b))
	}
	return sc
}

func quietConfig() config.SimulationConfig {
	cfg := config.Default().Simulation
	cfg.Gravity = [3]float64{}
	cfg.CollisionDetector = config.DetectorNone
	return cfg
}

func TestFiveBodyScenario(t *testing.T) {
	sc := newScenario(t, fiveBodies())
	sim := NewSimulation(sc, config.Default().Simulation, nil)
	sim.Initialize()

	require.Len(t, sim.Adapters(), 5)
	assert.Equal(t, 5, sim.World().NumSkeletons())
	assert.Equal(t, 5, sim.Filter().Len())

	rho := core.DefaultDensity
	wantMass := map[string]float64{
		"floor":        1,
		"boxy":         0.1 * 0.2 * 0.3 * rho,
		"box_obstacle": 1,
		"heavy_sphere": 4.0 / 3.0 * math.Pi * 0.1 * 0.1 * 0.1 * rho,
	}
	for _, body := range sc.Bodies() {
		a := sim.Adapter(body.ID)
		require.NotNil(t, a, body.Name)
		assert.Equal(t, Initialized, a.State())
		assert.Same(t, a, body.Adapter())
		assert.True(t, a.GetTransform().ApproxEqualThreshold(body.Tf0, 1e-2), body.Name)
		if want, ok := wantMass[body.Name]; ok {
			assert.InDelta(t, want, a.GetMass(), 1e-5, body.Name)
		}
	}
}

func TestStaticBodiesStayPut(t *testing.T) {
	sc := newScenario(t, fiveBodies())
	sim := NewSimulation(sc, config.Default().Simulation, nil)
	sim.Initialize()
	for i := 0; i < 10; i++ {
		sim.Step()
	}

	for _, name := range []string{"floor", "box_obstacle"} {
		body, ok := sc.Body(name)
		require.True(t, ok)
		assert.True(t, body.Tf.ApproxEqualThreshold(body.Tf0, 1e-2), name)
	}
}

func TestStepAdvancesOneFrame(t *testing.T) {
	cfg := config.Default().Simulation
	cfg.CollisionDetector = config.DetectorNone
	sc := newScenario(t, []bodySpec{{"ball", core.SphereShape(0.1), core.Dynamic, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{}}})
	sim := NewSimulation(sc, cfg, nil)
	sim.Initialize()

	sim.Step()
	assert.GreaterOrEqual(t, sim.World().Time(), cfg.FrameInterval()-1e-12)
	assert.Less(t, sim.World().Time(), cfg.FrameInterval()+cfg.TimeStep)

	body, _ := sc.Body("ball")
	assert.Less(t, core.Position(body.Tf).Z(), 1.0, "ball falls")
	assert.Equal(t, sim.Adapter(body.ID).GetTransform(), body.Tf)
	assert.Less(t, sim.Adapter(body.ID).GetLinearVelocity().Z(), 0.0)
}

func TestForceIsClearedAfterStep(t *testing.T) {
	sc := newScenario(t, []bodySpec{{"puck", core.BoxShape(mgl64.Vec3{0.1, 0.2, 0.3}), core.Dynamic, mgl64.Vec3{}, mgl64.Vec3{}}})
	sim := NewSimulation(sc, quietConfig(), nil)
	sim.Initialize()
	body, _ := sc.Body("puck")
	a := sim.Adapter(body.ID)

	a.SetForceCOM(mgl64.Vec3{10, 0, 0})
	sim.Step()
	assert.Equal(t, 0.0, a.BodyNode().ExternalForce().X)
	vx := a.GetLinearVelocity().X()
	assert.InDelta(t, 10.0/6.0*0.001, vx, 1e-9, "force acts for exactly one internal step")

	sim.Step()
	assert.InDelta(t, vx, a.GetLinearVelocity().X(), 1e-12)
}

func TestResetRestoresInitialState(t *testing.T) {
	cfg := config.Default().Simulation
	cfg.CollisionDetector = config.DetectorNone
	sc := newScenario(t, fiveBodies())
	sim := NewSimulation(sc, cfg, nil)
	sim.Initialize()
	for i := 0; i < 5; i++ {
		sim.Step()
	}

	sim.Reset()
	assert.Equal(t, 0.0, sim.World().Time())
	for _, body := range sc.Bodies() {
		a := sim.Adapter(body.ID)
		assert.True(t, a.GetTransform().ApproxEqualThreshold(body.Tf0, 1e-9), body.Name)
		assert.True(t, a.GetLinearVelocity().ApproxEqualThreshold(mgl64.Vec3{}, 1e-9), body.Name)
		assert.True(t, body.Tf.ApproxEqualThreshold(body.Tf0, 1e-9), body.Name)
	}
}

func TestSphereRestsOnFloor(t *testing.T) {
	sc := newScenario(t, []bodySpec{
		{"floor", core.PlaneShape(), core.Static, mgl64.Vec3{}, mgl64.Vec3{}},
		{"ball", core.SphereShape(0.1), core.Dynamic, mgl64.Vec3{0, 0, 0.5}, mgl64.Vec3{}},
	})
	sim := NewSimulation(sc, config.Default().Simulation, nil)
	sim.Initialize()
	for i := 0; i < 60; i++ {
		sim.Step()
	}

	ball, _ := sc.Body("ball")
	z := core.Position(ball.Tf).Z()
	assert.Greater(t, z, 0.0)
	assert.Less(t, z, 0.5)
}

func TestCollisionMaskSeparatesBodies(t *testing.T) {
	sc := newScenario(t, []bodySpec{
		{"floor", core.PlaneShape(), core.Static, mgl64.Vec3{}, mgl64.Vec3{}},
		{"ghost", core.SphereShape(0.1), core.Dynamic, mgl64.Vec3{0, 0, 0.05}, mgl64.Vec3{}},
	})
	ghost, _ := sc.Body("ghost")
	ghost.Collider().Data.CollisionGroup = 2
	ghost.Collider().Data.CollisionMask = 2

	sim := NewSimulation(sc, quietConfig(), nil)
	sim.World().SetCollisionDetector(NewDetector(config.DetectorAABB))
	sim.Initialize()
	sim.World().Step()
	assert.Zero(t, sim.World().LastCollisionResult().NumContacts())

	sim.Adapter(ghost.ID).ColliderAdapter().SetCollisionMask(1)
	assert.Equal(t, uint32(1), ghost.Collider().Data.CollisionMask)
	sim.World().Step()
	assert.NotZero(t, sim.World().LastCollisionResult().NumContacts())
}

func TestDetachRemovesSkeleton(t *testing.T) {
	sc := newScenario(t, fiveBodies())
	sim := NewSimulation(sc, config.Default().Simulation, nil)
	sim.Initialize()

	body, _ := sc.Body("boxy")
	a := sim.Adapter(body.ID)
	skel := a.Skeleton()
	sn := a.ColliderAdapter().ShapeNode()

	require.True(t, sim.Detach(body.ID))
	assert.False(t, sim.World().HasSkeleton(skel))
	assert.Equal(t, 4, sim.World().NumSkeletons())
	assert.Equal(t, Detached, a.State())
	assert.True(t, body.Detached())
	assert.True(t, a.ColliderAdapter().Detached())
	_, registered := sim.Filter().CollisionGroup(sn)
	assert.False(t, registered)
	assert.Nil(t, sim.Adapter(body.ID))
	assert.Equal(t, 4, sc.Len())
	assert.False(t, sim.Detach(body.ID))

	assert.NotPanics(t, sim.Step)
	assert.NotPanics(t, sim.Reset)
}

func TestCloseDetachesEverything(t *testing.T) {
	sc := newScenario(t, fiveBodies())
	sim := NewSimulation(sc, config.Default().Simulation, nil)
	sim.Initialize()
	bodies := append([]*core.SingleBody(nil), sc.Bodies()...)

	sim.Close()
	assert.Zero(t, sim.World().NumSkeletons())
	assert.Empty(t, sim.Adapters())
	assert.Zero(t, sim.Filter().Len())
	for _, b := range bodies {
		assert.True(t, b.Detached(), b.Name)
	}
}

func TestNewSimulationSkipsAdaptedBodies(t *testing.T) {
	sc := newScenario(t, fiveBodies())
	first := NewSimulation(sc, config.Default().Simulation, nil)
	require.Len(t, first.Adapters(), 5)

	obs, logs := observer.New(zap.ErrorLevel)
	second := NewSimulation(sc, config.Default().Simulation, zap.New(obs))
	assert.Empty(t, second.Adapters())
	assert.Equal(t, 5, logs.FilterMessage("skipping body").Len())
}

func TestInitializeTwiceIsNoop(t *testing.T) {
	sim := NewSimulation(newScenario(t, fiveBodies()), config.Default().Simulation, nil)
	sim.Initialize()
	assert.NotPanics(t, sim.Initialize)
	assert.Equal(t, 5, sim.World().NumSkeletons())
}

func TestNewDetector(t *testing.T) {
	assert.Equal(t, "none", NewDetector(config.DetectorNone).Name())
	assert.Equal(t, "aabb", NewDetector(config.DetectorAABB).Name())
	assert.Equal(t, "aabb", NewDetector("").Name())
}

func walkerData() core.AgentData {
	hip := core.NewJointData(core.JointRevolute, "hip")
	hip.Axis = mgl64.Vec3{0, 1, 0}
	hip.ParentToJoint = mgl64.Translate3D(0, 0, -0.2)
	hip.ChildToJoint = mgl64.Translate3D(0, 0, 0.2)
	hip.Limits = mgl64.Vec2{-1, 1}
	return core.AgentData{
		Name: "walker",
		Links: []core.LinkData{
			{
				Name:      "torso",
				Joint:     core.NewJointData(core.JointPlanar, "rootz"),
				Collision: core.NewCollisionData(core.CapsuleShape(0.05, 0.4)),
			},
			{
				Name:      "thigh",
				Parent:    "torso",
				Joint:     hip,
				Collision: core.NewCollisionData(core.CapsuleShape(0.04, 0.4)),
			},
		},
	}
}

func TestNewAgent(t *testing.T) {
	agent, err := NewAgent(walkerData(), 1000, nil)
	require.NoError(t, err)

	skel := agent.Skeleton()
	assert.Equal(t, 2, skel.NumBodyNodes())
	assert.Equal(t, 4, skel.NumDofs())
	assert.Equal(t, "planar", skel.RootJoint().Type())
	thigh := skel.BodyNode("thigh")
	require.NotNil(t, thigh)
	assert.Same(t, skel.RootBodyNode(), thigh.Parent())
	assert.Len(t, thigh.ShapeNodes(), 1)
	assert.Greater(t, thigh.Mass(), 0.0)

	bad := walkerData()
	bad.Links[1].Joint.Type = core.JointType(99)
	_, err = NewAgent(bad, 1000, nil)
	assert.Error(t, err)

	_, err = NewAgent(core.AgentData{Name: "empty"}, 1000, nil)
	assert.Error(t, err)
}

func TestAddAgentPlanarRoot(t *testing.T) {
	sim := NewSimulation(newScenario(t, fiveBodies()), quietConfig(), nil)
	sim.Initialize()
	agent, err := NewAgent(walkerData(), 1000, nil)
	require.NoError(t, err)

	sim.AddAgent(agent, mgl64.Vec3{1, 2, 3}, mgl64.Ident3())
	assert.True(t, agent.Registered())
	assert.Equal(t, 6, sim.World().NumSkeletons())
	assert.Equal(t, 7, sim.Filter().Len())
	q := agent.Skeleton().RootJoint().Positions()
	assert.InDeltaSlice(t, []float64{3, 1, math.Pi / 90}, q, 1e-12)
	assert.InDelta(t, 2.0, agent.Skeleton().RootBodyNode().Transform().Translation.Y, 1e-12)

	sim.AddAgent(agent, mgl64.Vec3{4, 0, 2}, mgl64.Ident3())
	assert.Equal(t, 6, sim.World().NumSkeletons(), "registered once")
	assert.InDeltaSlice(t, []float64{2, 4, math.Pi / 90}, agent.Skeleton().RootJoint().Positions(), 1e-12)
	assert.InDelta(t, 0.0, agent.Skeleton().RootBodyNode().Transform().Translation.Y, 1e-12)

	agent.Skeleton().RootJoint().SetPositions([]float64{0, 0, 0})
	sim.Reset()
	assert.InDeltaSlice(t, []float64{2, 4, math.Pi / 90}, agent.Skeleton().RootJoint().Positions(), 1e-12)
}

func TestAddAgentFreeRoot(t *testing.T) {
	sim := NewSimulation(nil, quietConfig(), nil)
	sim.Initialize()
	agent, err := NewAgent(core.AgentData{
		Name: "drone",
		Links: []core.LinkData{{
			Name:      "frame",
			Joint:     core.NewJointData(core.JointFree, "frame_freejoint"),
			Collision: core.NewCollisionData(core.BoxShape(mgl64.Vec3{0.3, 0.3, 0.1})),
		}},
	}, 1000, nil)
	require.NoError(t, err)

	rot := core.RotationFromEuler(mgl64.Vec3{0, 0, math.Pi / 2})
	sim.AddAgent(agent, mgl64.Vec3{1, 2, 3}, rot)
	q := agent.Skeleton().RootJoint().Positions()
	assert.InDeltaSlice(t, []float64{0, 0, math.Pi / 2, 1, 2, 3}, q, 1e-9)

	tf := agent.Skeleton().RootBodyNode().Transform()
	assert.InDelta(t, 3.0, tf.Translation.Z, 1e-12)
	assert.InDelta(t, 1.0, tf.Apply(r3.Vec{X: 1}).Y-tf.Translation.Y, 1e-9)

	assert.Panics(t, func() { sim.AddAgent(nil, mgl64.Vec3{}, mgl64.Ident3()) })
}

func TestAddAgentComposesAnchoredRoot(t *testing.T) {
	sim := NewSimulation(nil, quietConfig(), nil)
	sim.Initialize()
	pivot := core.NewJointData(core.JointRevolute, "pivot")
	pivot.ParentToJoint = mgl64.Translate3D(0, 0, 0.5)
	agent, err := NewAgent(core.AgentData{
		Name: "pendulum",
		Links: []core.LinkData{{
			Name:      "bob",
			Joint:     pivot,
			Collision: core.NewCollisionData(core.SphereShape(0.1)),
		}},
	}, 1000, nil)
	require.NoError(t, err)

	rot := core.RotationFromEuler(mgl64.Vec3{0, 0, math.Pi / 2})
	sim.AddAgent(agent, mgl64.Vec3{1, 2, 3}, rot)
	frame := agent.Skeleton().RootJoint().TransformFromParentBodyNode()
	assert.InDelta(t, 3.5, frame.Translation.Z, 1e-12, "placement keeps the joint offset")
	assert.InDelta(t, 1.0, frame.Translation.X, 1e-12)
	assert.InDelta(t, 1.0, frame.Rotate(r3.Vec{X: 1}).Y, 1e-9)

	sim.AddAgent(agent, mgl64.Vec3{1, 2, 3}, rot)
	frame = agent.Skeleton().RootJoint().TransformFromParentBodyNode()
	assert.InDelta(t, 3.5, frame.Translation.Z, 1e-12, "placing twice does not stack offsets")
}

func TestWalkerStandsOnFloor(t *testing.T) {
	sc := newScenario(t, []bodySpec{
		{"floor", core.PlaneShape(), core.Static, mgl64.Vec3{}, mgl64.Vec3{}},
	})
	sim := NewSimulation(sc, config.Default().Simulation, nil)
	sim.Initialize()
	agent, err := NewAgent(walkerData(), 1000, nil)
	require.NoError(t, err)
	sim.AddAgent(agent, mgl64.Vec3{0, 0, 1}, mgl64.Ident3())

	for i := 0; i < 120; i++ {
		sim.Step()
	}
	root := agent.Skeleton().RootJoint()
	z := root.Positions()[0]
	assert.Greater(t, z, 0.5, "the thigh holds the torso above the floor")
	assert.Less(t, z, 1.0)
	assert.InDelta(t, 0.0, root.Velocities()[0], 0.5)
	thigh := agent.Skeleton().BodyNode("thigh")
	assert.Greater(t, thigh.Transform().Translation.Z, 0.0)
}
