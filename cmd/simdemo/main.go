package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"physics-adapter/internal/adapter"
	"physics-adapter/internal/commands"
	"physics-adapter/internal/config"
	"physics-adapter/internal/core"
	"physics-adapter/internal/logger"
	"physics-adapter/internal/mapgen"
)

const defaultScenario = "scenarios/five_bodies.yaml"

// options are the flags shared by every command that builds a simulation.
type options struct {
	configPath   string
	scenarioPath string
	terrain      bool
	seed         int64
}

func (o *options) bind(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", config.ConfigPath, "config file (missing file = defaults)")
	fs.StringVar(&o.scenarioPath, "scenario", defaultScenario, "scenario YAML")
	fs.BoolVar(&o.terrain, "terrain", false, "add a generated heightfield under the scenario")
	fs.Int64Var(&o.seed, "seed", 1, "terrain seed (0 = time based)")
}

func main() {
	reg := commands.NewRegistry("simdemo")
	registerRun(reg)
	registerView(reg)
	registerShapes(reg)
	registerConfig(reg)

	if len(os.Args) < 2 {
		reg.Usage(os.Stderr)
		os.Exit(2)
	}
	err := reg.Execute(os.Args[1:])
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, commands.ErrUnknownCommand):
		fmt.Fprintln(os.Stderr, err)
		reg.Usage(os.Stderr)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if err := config.LoadEnvFile(config.EnvFilePath); err != nil {
		return config.Default(), err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logger.New(logger.Options{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
		File:     cfg.Log.File,
	})
}

func loadScenario(opts options, log *zap.Logger) (*core.Scenario, error) {
	log = logger.OrNop(log)
	sc, err := core.LoadScenarioFile(opts.scenarioPath)
	if err != nil {
		return nil, err
	}
	if opts.terrain {
		hf := mapgen.DefaultHeightfieldOptions()
		hf.Seed = opts.seed
		shape := mapgen.GenerateHeightfield(hf)
		body, err := core.NewSingleBody("terrain", core.BodyData{
			DynType:   core.Static,
			Collision: core.NewCollisionData(shape),
			Visual:    core.VisualData{Shape: shape, Color: mgl64.Vec3{0.3, 0.55, 0.3}},
		}, core.TransformFromPosRot(mgl64.Vec3{0, 0, -1}, mgl64.Vec3{}))
		if err != nil {
			return nil, err
		}
		if err := sc.Add(body); err != nil {
			return nil, err
		}
		log.Info("generated terrain", zap.Int64("seed", opts.seed), zap.Int("samples", len(shape.Heightfield.Heights)))
	}
	return sc, nil
}

// setup loads config, logger and scenario and returns an initialized simulation.
func setup(opts options) (config.Config, *zap.Logger, *adapter.Simulation, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return cfg, nil, nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return cfg, nil, nil, err
	}
	sc, err := loadScenario(opts, log)
	if err != nil {
		_ = log.Sync()
		return cfg, nil, nil, err
	}
	sim := adapter.NewSimulation(sc, cfg.Simulation, log)
	sim.Initialize()
	if err := placeAgents(sim, cfg.Simulation.DefaultDensity, log); err != nil {
		sim.Close()
		_ = log.Sync()
		return cfg, nil, nil, err
	}
	return cfg, log, sim, nil
}

// placeAgents builds every agent the scenario declares and adds it at its starting pose.
func placeAgents(sim *adapter.Simulation, density float64, log *zap.Logger) error {
	sc := sim.Scenario()
	if sc == nil {
		return nil
	}
	for _, p := range sc.Agents() {
		agent, err := adapter.NewAgent(p.Agent, density, log)
		if err != nil {
			return err
		}
		sim.AddAgent(agent, p.Position, p.Rotation)
	}
	return nil
}
