package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"physics-adapter/internal/config"
)

// Run opens a window sized from cfg and runs the main loop until the window is closed. Each frame
// it calls update (input, stepping), clears the screen and calls draw between BeginDrawing and
// EndDrawing. onClose runs while the GL context is still alive, so GPU resources can be released.
func Run(cfg config.RenderConfig, update, draw, onClose func()) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(cfg.Width, cfg.Height, cfg.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(cfg.TargetFPS)
	if onClose != nil {
		defer onClose()
	}

	for !rl.WindowShouldClose() {
		update()

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(24, 26, 32, 255))
		draw()
		rl.EndDrawing()
	}
}
