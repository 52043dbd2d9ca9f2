package render

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	statsFontSize   = 20
	statsPadding    = 12
	statsLineHeight = statsFontSize + 4
	// statsInterval: the text is rebuilt every N frames to limit allocations.
	statsInterval   = 30
)

// Stats is the per-frame simulation summary shown by the overlay.
type Stats struct {
	FPS      int32
	SimTime  float64
	Frames   int
	Bodies   int
	Contacts int
}

// Lines formats the stats, one entry per overlay line.
func (s Stats) Lines() []string {
	return []string{
		fmt.Sprintf("FPS: %d", s.FPS),
		fmt.Sprintf("Time: %.3f s", s.SimTime),
		fmt.Sprintf("Steps: %d", s.Frames),
		fmt.Sprintf("Bodies: %d", s.Bodies),
		fmt.Sprintf("Contacts: %d", s.Contacts),
	}
}

// Overlay draws Stats in the top-right corner. Hidden when Visible is false.
type Overlay struct {
	Visible bool

	frameCount uint32
	lines      []string
}

func NewOverlay(visible bool) *Overlay {
	return &Overlay{Visible: visible}
}

// Draw renders the overlay. Call after the 3D scene, outside BeginMode3D.
func (o *Overlay) Draw(stats Stats) {
	if !o.Visible {
		return
	}
	o.frameCount++
	if o.lines == nil || o.frameCount%statsInterval == 0 {
		o.lines = stats.Lines()
	}

	screenW := int32(rl.GetScreenWidth())
	y := int32(statsPadding)
	for _, text := range o.lines {
		w := rl.MeasureText(text, statsFontSize)
		rl.DrawText(text, screenW-w-statsPadding, y, statsFontSize, rl.Green)
		y += statsLineHeight
	}
}
