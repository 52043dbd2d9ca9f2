package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"physics-adapter/internal/core"
	"physics-adapter/internal/logger"
)

const (
	gridExtent     = 20
	gridMinorStep  = 1
	gridMajorStep  = 5
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220
)

var simulationAxes = []struct {
	dir   mgl64.Vec3
	color rl.Color
}{
	{mgl64.Vec3{1, 0, 0}, rl.NewColor(220, 80, 80, axisLineAlpha)},
	{mgl64.Vec3{0, 1, 0}, rl.NewColor(80, 220, 80, axisLineAlpha)},
	{mgl64.Vec3{0, 0, 1}, rl.NewColor(80, 80, 220, axisLineAlpha)},
}

// Scene holds a 3D camera and the renderables of one scenario. The simulation floor (z = 0) is the
// raylib XZ plane, where the editor grid is drawn.
type Scene struct {
	Camera      rl.Camera3D
	GridVisible bool

	renderables []*Renderable
	registry    *Registry
	cursorDone  bool
	log         *zap.Logger
}

// NewScene returns a scene with a perspective camera looking at the origin from (6, 4, 6).
func NewScene(log *zap.Logger) *Scene {
	s := &Scene{
		GridVisible: true,
		registry:    NewRegistry(),
		log:         logger.OrNop(log).Named("render"),
	}
	s.Camera.Position = rl.NewVector3(6, 4, 6)
	s.Camera.Target = rl.NewVector3(0, 0, 0)
	s.Camera.Up = rl.NewVector3(0, 1, 0)
	s.Camera.Fovy = 45
	s.Camera.Projection = rl.CameraPerspective
	return s
}

// Add creates a renderable for every body. Bodies whose visual cannot be built are logged and
// skipped. It returns the number of renderables added.
func (s *Scene) Add(bodies ...*core.SingleBody) int {
	n := 0
	for _, b := range bodies {
		rd, err := NewRenderable(b)
		if err != nil {
			s.log.Warn("no visual for body", zap.String("body", b.Name), zap.Error(err))
			continue
		}
		s.renderables = append(s.renderables, rd)
		n++
	}
	return n
}

// AddLink adds a renderable for one agent link. Links without a drawable visual are skipped.
func (s *Scene) AddLink(name string, visual core.VisualData, source PoseSource) bool {
	rd, err := NewLinkRenderable(name, visual, source)
	if err != nil {
		s.log.Warn("no visual for link", zap.String("link", name), zap.Error(err))
		return false
	}
	if len(rd.Parts) == 0 {
		return false
	}
	s.renderables = append(s.renderables, rd)
	return true
}

func (s *Scene) Renderables() []*Renderable { return s.renderables }

// Sync pulls the latest body transforms into the renderables.
func (s *Scene) Sync() {
	for _, rd := range s.renderables {
		rd.Sync()
	}
}

// Update runs once per frame. The free camera captures the cursor on first use.
func (s *Scene) Update() {
	if !s.cursorDone {
		rl.DisableCursor()
		s.cursorDone = true
	}
	rl.UpdateCamera(&s.Camera, rl.CameraFree)
}

// Draw renders the grid and every renderable. Call after ClearBackground and before 2D overlays.
func (s *Scene) Draw() {
	pos := s.Camera.Position
	s.registry.SetView([3]float32{pos.X, pos.Y, pos.Z}, [3]float32{0.4, 1, 0.3})
	rl.BeginMode3D(s.Camera)
	if s.GridVisible {
		drawEditorGrid()
	}
	for _, rd := range s.renderables {
		s.registry.DrawRenderable(rd)
	}
	rl.EndMode3D()
}

// Close releases GPU resources. Call before the window is closed.
func (s *Scene) Close() {
	s.registry.Unload()
}

// drawEditorGrid draws major/minor lines on the floor and the simulation axes (X red, Y green,
// Z blue) through the origin.
func drawEditorGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)

	var start, end rl.Vector3
	for x := -gridExtent; x <= gridExtent; x += gridMinorStep {
		c := major
		if x%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(x), 0, float32(-gridExtent)
		end.X, end.Y, end.Z = float32(x), 0, float32(gridExtent)
		rl.DrawLine3D(start, end, c)
	}
	for z := -gridExtent; z <= gridExtent; z += gridMinorStep {
		c := major
		if z%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(-gridExtent), 0, float32(z)
		end.X, end.Y, end.Z = float32(gridExtent), 0, float32(z)
		rl.DrawLine3D(start, end, c)
	}

	for _, axis := range simulationAxes {
		rl.DrawLine3D(Vector3(axis.dir.Mul(-gridExtent)), Vector3(axis.dir.Mul(gridExtent)), axis.color)
	}
}
