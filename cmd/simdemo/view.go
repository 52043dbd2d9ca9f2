package main

import (
	"flag"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"physics-adapter/internal/commands"
	"physics-adapter/internal/graphics"
	"physics-adapter/internal/render"
)

func registerView(reg *commands.Registry) {
	var opts options
	fs := reg.Register("view", "open a window and play the scenario (space pauses, R resets)", func(*flag.FlagSet) error {
		cfg, log, sim, err := setup(opts)
		if err != nil {
			return err
		}
		defer log.Sync()
		defer sim.Close()

		scn := render.NewScene(log)
		scn.Add(sim.Scenario().Bodies()...)
		for _, agent := range sim.Agents() {
			for _, link := range agent.Links() {
				scn.AddLink(agent.Name+"/"+link.Name, link.Visual, func() mgl64.Mat4 {
					tf, _ := agent.LinkTransform(link.Name)
					return tf
				})
			}
		}
		overlay := render.NewOverlay(cfg.Render.ShowStats)
		paused := false

		update := func() {
			switch {
			case rl.IsKeyPressed(rl.KeySpace):
				paused = !paused
			case rl.IsKeyPressed(rl.KeyR):
				sim.Reset()
			case rl.IsKeyPressed(rl.KeyG):
				scn.GridVisible = !scn.GridVisible
			}
			if !paused {
				sim.Step()
			}
			scn.Sync()
			scn.Update()
		}
		draw := func() {
			scn.Draw()
			world := sim.World()
			overlay.Draw(render.Stats{
				FPS:      rl.GetFPS(),
				SimTime:  world.Time(),
				Frames:   world.SimFrames(),
				Bodies:   len(sim.Adapters()),
				Contacts: world.LastCollisionResult().NumContacts(),
			})
		}
		graphics.Run(cfg.Render, update, draw, scn.Close)
		return nil
	})
	opts.bind(fs)
}
