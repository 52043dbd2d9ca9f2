package mapgen

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"

	"physics-adapter/internal/core"
)

// HeightfieldOptions controls procedural heightfield generation.
// WidthSamples/DepthSamples are grid samples along X/Y; Extent is the world size on X and Y and the
// vertical scale on Z. Seed controls randomness; Seed == 0 uses a time-based seed.
// Octaves, Frequency, Lacunarity, and Gain control the fractal noise shape.
type HeightfieldOptions struct {
	WidthSamples int
	DepthSamples int
	Extent       mgl64.Vec3

	Seed       int64
	Octaves    int
	Frequency  float32
	Lacunarity float32
	Gain       float32
}

// DefaultHeightfieldOptions returns a 32×32 grid over 10×10 m with up to 1 m of relief.
func DefaultHeightfieldOptions() HeightfieldOptions {
	return HeightfieldOptions{
		WidthSamples: 32,
		DepthSamples: 32,
		Extent:       mgl64.Vec3{10, 10, 1},
		Seed:         0,
		Octaves:      4,
		Frequency:    0.08,
		Lacunarity:   2.0,
		Gain:         0.5,
	}
}

func (o *HeightfieldOptions) normalize() {
	if o.WidthSamples < 2 {
		o.WidthSamples = 32
	}
	if o.DepthSamples < 2 {
		o.DepthSamples = 32
	}
	if o.Extent.X() <= 0 || o.Extent.Y() <= 0 {
		o.Extent[0], o.Extent[1] = 10, 10
	}
	if o.Extent.Z() <= 0 {
		o.Extent[2] = 1
	}
	if o.Octaves <= 0 {
		o.Octaves = 4
	}
	if o.Frequency <= 0 {
		o.Frequency = 0.08
	}
	if o.Lacunarity <= 0 {
		o.Lacunarity = 2.0
	}
	if o.Gain <= 0 {
		o.Gain = 0.5
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
}

// Heights samples fractal noise on the grid, row-major with X varying fastest. Values are in [0,1];
// the heightfield shape multiplies them by the vertical scale.
func Heights(opts HeightfieldOptions) []float64 {
	opts.normalize()
	heights := make([]float64, 0, opts.WidthSamples*opts.DepthSamples)
	baseFreq := opts.Frequency
	for y := 0; y < opts.DepthSamples; y++ {
		for x := 0; x < opts.WidthSamples; x++ {
			h := fractalValueNoise2D(float32(x)*baseFreq, float32(y)*baseFreq, opts.Seed, opts.Octaves, opts.Lacunarity, opts.Gain)
			if !isFinite(h) {
				h = 0
			}
			heights = append(heights, float64(math32.Max(0, math32.Min(1, h))))
		}
	}
	return heights
}

// GenerateHeightfield returns a heightfield shape descriptor filled with fractal noise.
func GenerateHeightfield(opts HeightfieldOptions) core.ShapeData {
	opts.normalize()
	return core.HeightfieldShape(opts.WidthSamples, opts.DepthSamples, Heights(opts), opts.Extent)
}

// fractalValueNoise2D is layered smooth value noise with configurable octaves, lacunarity and gain.
// Output is in [0,1].
func fractalValueNoise2D(x, y float32, seed int64, octaves int, lacunarity, gain float32) float32 {
	var sum float32
	var amplitude float32 = 1
	var maxAmp float32 = 0
	freq := float32(1)

	for i := 0; i < octaves; i++ {
		n := valueNoise2D(x*freq, y*freq, int32(seed)+int32(i))
		sum += n * amplitude
		maxAmp += amplitude
		amplitude *= gain
		freq *= lacunarity
	}
	if maxAmp == 0 {
		return 0
	}
	return sum / maxAmp
}

// valueNoise2D is smooth value noise in [0,1] on a hashed integer lattice.
func valueNoise2D(x, y float32, seed int32) float32 {
	x0 := int32(math32.Floor(x))
	y0 := int32(math32.Floor(y))
	tx := x - float32(x0)
	ty := y - float32(y0)

	v00 := hash2D(x0, y0, seed)
	v10 := hash2D(x0+1, y0, seed)
	v01 := hash2D(x0, y0+1, seed)
	v11 := hash2D(x0+1, y0+1, seed)

	sx := smoothStep(tx)
	sy := smoothStep(ty)

	ix0 := lerp(v00, v10, sx)
	ix1 := lerp(v01, v11, sx)
	return lerp(ix0, ix1, sy)
}

// hash2D maps integer lattice coordinates to a deterministic pseudo-random float in [0,1].
func hash2D(x, y, seed int32) float32 {
	n := x*374761393 + y*668265263 + seed*362437
	n = (n ^ (n >> 13)) * 1274126177
	n = n ^ (n >> 16)
	const invMaxInt = 1.0 / 2147483647.0
	return float32(n&0x7fffffff) * float32(invMaxInt)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// smoothStep is cubic easing: 3t^2 - 2t^3.
func smoothStep(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

func isFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
