package main

import (
	"flag"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"physics-adapter/internal/adapter"
	"physics-adapter/internal/commands"
	"physics-adapter/internal/core"
)

// bodyReport is one entry of the YAML written by "run".
type bodyReport struct {
	Name     string     `yaml:"name"`
	Dynamic  bool       `yaml:"dynamic"`
	Mass     float64    `yaml:"mass"`
	Position [3]float64 `yaml:"position"`
	Velocity [3]float64 `yaml:"velocity,omitempty"`
}

type runReport struct {
	Time     float64      `yaml:"time"`
	Steps    int          `yaml:"steps"`
	Contacts int          `yaml:"contacts"`
	Bodies   []bodyReport `yaml:"bodies"`
}

func registerRun(reg *commands.Registry) {
	var opts options
	var frames int
	fs := reg.Register("run", "step a scenario headless and print the final state as YAML", func(*flag.FlagSet) error {
		_, log, sim, err := setup(opts)
		if err != nil {
			return err
		}
		defer log.Sync()
		defer sim.Close()

		for i := 0; i < frames; i++ {
			sim.Step()
		}
		log.Info("simulation finished", zap.Int("frames", frames), zap.Float64("time", sim.World().Time()))
		return writeReport(sim)
	})
	opts.bind(fs)
	fs.IntVar(&frames, "frames", 60, "frames to simulate")
}

func writeReport(sim *adapter.Simulation) error {
	world := sim.World()
	report := runReport{
		Time:     world.Time(),
		Steps:    world.SimFrames(),
		Contacts: world.LastCollisionResult().NumContacts(),
	}
	for _, a := range sim.Adapters() {
		body := a.Body()
		if body == nil {
			continue
		}
		entry := bodyReport{
			Name:     a.Name(),
			Dynamic:  body.IsDynamic(),
			Mass:     a.GetMass(),
			Position: core.Position(a.GetTransform()),
		}
		if body.IsDynamic() {
			entry.Velocity = a.GetLinearVelocity()
		}
		report.Bodies = append(report.Bodies, entry)
	}
	for _, agent := range sim.Agents() {
		for _, link := range agent.Links() {
			tf, _ := agent.LinkTransform(link.Name)
			report.Bodies = append(report.Bodies, bodyReport{
				Name:     agent.Name + "/" + link.Name,
				Dynamic:  true,
				Mass:     agent.LinkMass(link.Name),
				Position: core.Position(tf),
			})
		}
	}
	return printYAML(report)
}

func printYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}
