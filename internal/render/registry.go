package render

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"physics-adapter/internal/core"
)

// cached holds mesh and material for a mesh key. Created lazily on first Draw.
type cached struct {
	mesh rl.Mesh
	mtl  rl.Material
}

// Registry maps mesh keys to mesh+material. Meshes are created on first use so that GPU resources
// are allocated after the window/OpenGL context exists.
type Registry struct {
	cache    map[string]cached
	viewPos  [3]float32
	lightDir [3]float32
}

func NewRegistry() *Registry {
	return &Registry{
		cache:    make(map[string]cached),
		lightDir: [3]float32{0.5, 1, 0.5},
	}
}

// SetView sets camera position and direction-to-light for this frame. Call once per frame
// before drawing.
func (r *Registry) SetView(viewPos, lightDir [3]float32) {
	r.viewPos = viewPos
	r.lightDir = lightDir
}

const (
	defaultSphereRings     = 16
	defaultSphereSlices    = 16
	defaultCylinderSlices  = 16
	defaultPlaneResolution = 1
)

func newLitMaterial() rl.Material {
	mtl := rl.LoadMaterialDefault()
	if shader := rl.LoadShaderFromMemory(litVS, litFS); rl.IsShaderValid(shader) {
		mtl.Shader = shader
	}
	return mtl
}

func (r *Registry) ensure(key string, gen func() rl.Mesh) cached {
	c, ok := r.cache[key]
	if !ok {
		c = cached{mesh: gen(), mtl: newLitMaterial()}
		r.cache[key] = c
	}
	return c
}

func (r *Registry) unitMesh(key string) (cached, bool) {
	switch key {
	case meshCube:
		return r.ensure(key, func() rl.Mesh { return rl.GenMeshCube(1, 1, 1) }), true
	case meshSphere:
		return r.ensure(key, func() rl.Mesh { return rl.GenMeshSphere(0.5, defaultSphereRings, defaultSphereSlices) }), true
	case meshCylinder:
		return r.ensure(key, func() rl.Mesh { return rl.GenMeshCylinder(0.5, 1, defaultCylinderSlices) }), true
	case meshPlane:
		return r.ensure(key, func() rl.Mesh {
			return rl.GenMeshPlane(1, 1, defaultPlaneResolution, defaultPlaneResolution)
		}), true
	}
	return cached{}, false
}

// heightfieldMesh builds a raylib heightmap mesh from the samples. Rows are written bottom-up so
// that sample row j lands at simulation y = -extent/2 + j·dy after the axis change.
func (r *Registry) heightfieldMesh(key string, hf *core.HeightfieldData, extent mgl64.Vec3) cached {
	return r.ensure(key, func() rl.Mesh {
		maxH := 0.0
		for _, h := range hf.Heights {
			maxH = max(maxH, h)
		}
		if maxH <= 0 {
			maxH = 1
		}
		img := rl.GenImageColor(hf.WidthSamples, hf.DepthSamples, rl.Black)
		for j := 0; j < hf.DepthSamples; j++ {
			for i := 0; i < hf.WidthSamples; i++ {
				h := mgl64.Clamp(hf.Heights[j*hf.WidthSamples+i]/maxH, 0, 1)
				v := uint8(h * 255)
				rl.ImageDrawPixel(img, int32(i), int32(hf.DepthSamples-1-j), rl.NewColor(v, v, v, 255))
			}
		}
		size := rl.NewVector3(float32(extent.X()), float32(maxH), float32(extent.Y()))
		mesh := rl.GenMeshHeightmap(*img, size)
		rl.UnloadImage(img)
		return mesh
	})
}

// DrawRenderable draws every part of rd at its current pose. Must be called between BeginMode3D
// and EndMode3D.
func (r *Registry) DrawRenderable(rd *Renderable) {
	for i, part := range rd.Parts {
		switch {
		case part.Wire != nil:
			drawWire(part, rd.pose.Mul4(part.Local), rd.Color)
		case part.Heightfield != nil:
			c := r.heightfieldMesh(fmt.Sprintf("heightfield:%s:%d", rd.Name, i), part.Heightfield, part.Extent)
			r.drawCached(c, rd.PartTransform(i), rd.Color)
		default:
			if c, ok := r.unitMesh(part.Mesh); ok {
				r.drawCached(c, rd.PartTransform(i), rd.Color)
			}
		}
	}
}

func (r *Registry) drawCached(c cached, transform rl.Matrix, color rl.Color) {
	if albedo := c.mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = color
	}
	r.setLitShaderUniforms(c.mtl.Shader)
	rl.DrawMesh(c.mesh, c.mtl, transform)
}

// drawWire draws the triangle edges of a mesh part; point clouds draw nothing.
func drawWire(part Part, tf mgl64.Mat4, color rl.Color) {
	m := part.Wire
	world := make([]rl.Vector3, len(m.Vertices))
	for i, v := range m.Vertices {
		p := tf.Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 1}).Vec3()
		world[i] = Vector3(p)
	}
	for _, f := range m.Faces {
		rl.DrawLine3D(world[f[0]], world[f[1]], color)
		rl.DrawLine3D(world[f[1]], world[f[2]], color)
		rl.DrawLine3D(world[f[2]], world[f[0]], color)
	}
}

// Unload releases every cached mesh and material. Call before closing the window.
func (r *Registry) Unload() {
	for key, c := range r.cache {
		rl.UnloadMesh(&c.mesh)
		rl.UnloadMaterial(c.mtl)
		delete(r.cache, key)
	}
}

var (
	defaultAmbient    = [4]float32{0.2, 0.22, 0.26, 1.0}
	defaultLightColor = [3]float32{1.0, 0.98, 0.95}
)

const (
	defaultLightIntensity   = float32(0.75)
	defaultSpecularPower    = float32(48.0)
	defaultSpecularStrength = float32(0.35)
)

// setLitShaderUniforms sets view, light, ambient and specular uniforms (cgo-safe: local arrays).
func (r *Registry) setLitShaderUniforms(shader rl.Shader) {
	if !rl.IsShaderValid(shader) {
		return
	}
	viewPos := [3]float32{r.viewPos[0], r.viewPos[1], r.viewPos[2]}
	lightDir := [3]float32{r.lightDir[0], r.lightDir[1], r.lightDir[2]}
	amb := [4]float32{defaultAmbient[0], defaultAmbient[1], defaultAmbient[2], defaultAmbient[3]}
	lightColor := [3]float32{defaultLightColor[0], defaultLightColor[1], defaultLightColor[2]}
	if loc := rl.GetShaderLocation(shader, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, viewPos[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightDir"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, lightDir[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "ambient"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, amb[:], rl.ShaderUniformVec4, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightColor"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, lightColor[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightIntensity"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{defaultLightIntensity}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "specularPower"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{defaultSpecularPower}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "specularStrength"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{defaultSpecularStrength}, rl.ShaderUniformFloat)
	}
}

const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragPosition;
out vec2 fragTexCoord;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragTexCoord = vertexTexCoord;
  fragNormal = mat3(matModel) * vertexNormal;
  gl_Position = matProjection * matView * worldPos;
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec2 fragTexCoord;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec4 ambient;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform float specularPower;
uniform float specularStrength;
out vec4 finalColor;
void main() {
  vec4 tint = colDiffuse;
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = tint.rgb * NdotL * lightColor * lightIntensity;
  vec3 amb = ambient.rgb * tint.rgb;
  vec3 H = normalize(L + V);
  float NdotH = max(dot(N, H), 0.0);
  float spec = pow(NdotH, specularPower) * specularStrength;
  vec3 specular = lightColor * spec * (NdotL > 0.0 ? 1.0 : 0.0);
  finalColor = vec4(amb + diffuse + specular, tint.a);
}
`
)
