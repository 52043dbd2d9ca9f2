package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/spatial/r3"

	"physics-adapter/internal/collision"
	"physics-adapter/internal/dynamics"
)

func newFree(name string, z float64) (*dynamics.Skeleton, *dynamics.BodyNode) {
	skel := dynamics.NewSkeleton(name)
	j, b := skel.CreateJointAndBodyNodePair(nil, dynamics.NewFreeJoint(name+"_freejoint"), name)
	j.(*dynamics.FreeJoint).SetTransform(dynamics.Translation(r3.Vec{Z: z}))
	b.CreateShapeNode(dynamics.NewBoxShape(r3.Vec{X: 1, Y: 1, Z: 1}), name)
	return skel, b
}

func newGround() *dynamics.Skeleton {
	skel := dynamics.NewSkeleton("ground")
	_, b := skel.CreateJointAndBodyNodePair(nil, dynamics.NewWeldJoint("ground_weldjoint"), "ground")
	b.CreateShapeNode(dynamics.NewPlaneShape(r3.Vec{Z: 1}, 0), "ground")
	return skel
}

func TestNewWorldDefaults(t *testing.T) {
	w := NewWorld("test", nil)
	assert.Equal(t, DefaultTimeStep, w.TimeStep())
	assert.Equal(t, r3.Vec{Z: -9.81}, w.Gravity())
	assert.Equal(t, "aabb", w.CollisionDetector().Name())
	assert.IsType(t, collision.BodyNodeFilter{}, w.CollisionFilter())
}

func TestAddSkeletonUniqueNames(t *testing.T) {
	w := NewWorld("test", nil)
	a, _ := newFree("box", 0)
	b, _ := newFree("box", 0)

	assert.Equal(t, "box", w.AddSkeleton(a))
	assert.Equal(t, "box(1)", w.AddSkeleton(b))
	assert.Equal(t, "box", w.AddSkeleton(a))
	assert.Equal(t, 2, w.NumSkeletons())
	assert.Same(t, b, w.Skeleton("box(1)"))

	assert.True(t, w.RemoveSkeleton(a))
	assert.False(t, w.RemoveSkeleton(a))
	assert.False(t, w.HasSkeleton(a))
}

func TestStepFreeFallAndClock(t *testing.T) {
	w := NewWorld("test", nil)
	skel, b := newFree("ball", 10)
	w.AddSkeleton(skel)

	for i := 0; i < 100; i++ {
		w.Step()
	}
	assert.InDelta(t, 0.1, w.Time(), 1e-12)
	assert.Equal(t, 100, w.SimFrames())
	assert.InDelta(t, -0.981, b.LinearVelocity().Z, 1e-9)

	w.Reset()
	assert.Equal(t, 0.0, w.Time())
	assert.Equal(t, 0, w.SimFrames())
}

func TestStepClearsExternalForces(t *testing.T) {
	w := NewWorld("test", nil)
	w.SetGravity(r3.Vec{})
	skel, b := newFree("puck", 0)
	w.AddSkeleton(skel)

	b.SetExtForce(r3.Vec{X: 1})
	w.Step()
	v := b.LinearVelocity().X
	assert.InDelta(t, w.TimeStep(), v, 1e-12)
	assert.Equal(t, r3.Vec{}, b.ExternalForce())

	w.Step()
	assert.InDelta(t, v, b.LinearVelocity().X, 1e-12, "force must not persist")
}

func TestBoxRestsOnGround(t *testing.T) {
	w := NewWorld("test", nil)
	w.SetSolverIterations(4)
	w.AddSkeleton(newGround())
	skel, b := newFree("box", 2)
	w.AddSkeleton(skel)

	for i := 0; i < 3000; i++ {
		w.Step()
	}
	assert.InDelta(t, 0.5, b.Transform().Translation.Z, 0.01)
	assert.Equal(t, 1, w.LastCollisionResult().NumContacts())
}

func TestNullDetectorLetsBodiesFallThrough(t *testing.T) {
	w := NewWorld("test", nil)
	w.SetCollisionDetector(nil)
	w.AddSkeleton(newGround())
	skel, b := newFree("box", 0.6)
	w.AddSkeleton(skel)

	for i := 0; i < 1000; i++ {
		w.Step()
	}
	assert.Less(t, b.Transform().Translation.Z, 0.0)
	assert.Equal(t, 0, w.LastCollisionResult().NumContacts())
}

func TestSetTimeStepRejectsNonPositive(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := NewWorld("test", zap.New(core))
	w.SetTimeStep(0)
	assert.Equal(t, DefaultTimeStep, w.TimeStep())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "ignoring non-positive time step", logs.All()[0].Message)
}
