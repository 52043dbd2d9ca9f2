package mapgen

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"physics-adapter/internal/core"
)

func TestHeightsDeterministicForSeed(t *testing.T) {
	opts := DefaultHeightfieldOptions()
	opts.Seed = 42
	a := Heights(opts)
	b := Heights(opts)
	require.Len(t, a, 32*32)
	assert.Equal(t, a, b)

	opts.Seed = 43
	assert.NotEqual(t, a, Heights(opts))
}

func TestHeightsInUnitRange(t *testing.T) {
	opts := DefaultHeightfieldOptions()
	opts.Seed = 7
	opts.WidthSamples, opts.DepthSamples = 16, 9
	heights := Heights(opts)
	require.Len(t, heights, 16*9)
	for _, h := range heights {
		assert.GreaterOrEqual(t, h, 0.0)
		assert.LessOrEqual(t, h, 1.0)
	}
}

func TestGenerateHeightfield(t *testing.T) {
	opts := HeightfieldOptions{WidthSamples: 5, DepthSamples: 4, Extent: mgl64.Vec3{8, 6, 2}, Seed: 1}
	shape := GenerateHeightfield(opts)

	assert.Equal(t, core.ShapeHeightfield, shape.Type)
	assert.Equal(t, mgl64.Vec3{8, 6, 2}, shape.Size)
	assert.Equal(t, 5, shape.Heightfield.WidthSamples)
	assert.Equal(t, 4, shape.Heightfield.DepthSamples)
	assert.Len(t, shape.Heightfield.Heights, 20)
}

func TestGenerateHeightfieldFillsDefaults(t *testing.T) {
	shape := GenerateHeightfield(HeightfieldOptions{Seed: 3})
	assert.Equal(t, 32, shape.Heightfield.WidthSamples)
	assert.Equal(t, mgl64.Vec3{10, 10, 1}, shape.Size)
	assert.Len(t, shape.Heightfield.Heights, 32*32)
}

func TestSmoothStep(t *testing.T) {
	assert.Equal(t, float32(0), smoothStep(-1))
	assert.Equal(t, float32(1), smoothStep(2))
	assert.InDelta(t, 0.5, smoothStep(0.5), 1e-6)
}
