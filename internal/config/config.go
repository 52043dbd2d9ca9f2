package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file, relative to the process working directory.
const ConfigPath = "config/simulation.yaml"

// Collision detectors understood by the simulation package.
const (
	DetectorAABB = "aabb"
	DetectorNone = "none"
)

// SimulationConfig holds the physics-world constants that used to live in globals: time step,
// target frame interval, gravity, fallback density and the collision pipeline to install.
type SimulationConfig struct {
	TimeStep          float64    `yaml:"time_step"`
	FrameRate         float64    `yaml:"frame_rate"`
	Gravity           [3]float64 `yaml:"gravity"`
	DefaultDensity    float64    `yaml:"default_density"`
	CollisionDetector string     `yaml:"collision_detector"`
	SolverIterations  int        `yaml:"solver_iterations"`
}

// LogConfig selects the zap level, encoding ("console" or "json") and an optional log file.
type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
	File     string `yaml:"file,omitempty"`
}

// RenderConfig holds viewer window preferences. Only the "view" command reads it.
type RenderConfig struct {
	Width     int32  `yaml:"width"`
	Height    int32  `yaml:"height"`
	Title     string `yaml:"title"`
	TargetFPS int32  `yaml:"target_fps"`
	ShowStats bool   `yaml:"show_stats"`
}

// Config is the explicit configuration object passed to constructors instead of process-wide state.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Log        LogConfig        `yaml:"log"`
	Render     RenderConfig     `yaml:"render"`
}

// Default returns the stock configuration: 1 ms steps accumulated into 1/60 s frames, Z-up gravity,
// water density for colliders that do not set one, and the AABB detector.
func Default() Config {
	return Config{
		Simulation: SimulationConfig{
			TimeStep:          0.001,
			FrameRate:         60,
			Gravity:           [3]float64{0, 0, -9.81},
			DefaultDensity:    1000,
			CollisionDetector: DetectorAABB,
			SolverIterations:  4,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		Render: RenderConfig{
			Width:     1024,
			Height:    768,
			Title:     "physics-adapter viewer",
			TargetFPS: 60,
			ShowStats: true,
		},
	}
}

// Load reads a YAML config from path on top of Default(), so a partial file only overrides the keys it
// sets. A missing file is not an error and yields Default(). The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, creating the parent directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var err error
	s := c.Simulation
	if s.TimeStep <= 0 {
		err = multierr.Append(err, fmt.Errorf("simulation.time_step must be positive, got %v", s.TimeStep))
	}
	if s.FrameRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("simulation.frame_rate must be positive, got %v", s.FrameRate))
	} else if s.TimeStep > 1/s.FrameRate {
		err = multierr.Append(err, fmt.Errorf("simulation.time_step %v is longer than one frame (1/%v s)", s.TimeStep, s.FrameRate))
	}
	if s.DefaultDensity <= 0 {
		err = multierr.Append(err, fmt.Errorf("simulation.default_density must be positive, got %v", s.DefaultDensity))
	}
	switch s.CollisionDetector {
	case DetectorAABB, DetectorNone:
	default:
		err = multierr.Append(err, fmt.Errorf("simulation.collision_detector %q is not one of %q, %q", s.CollisionDetector, DetectorAABB, DetectorNone))
	}
	if s.SolverIterations < 1 {
		err = multierr.Append(err, fmt.Errorf("simulation.solver_iterations must be at least 1, got %d", s.SolverIterations))
	}
	switch c.Log.Encoding {
	case "console", "json":
	default:
		err = multierr.Append(err, fmt.Errorf("log.encoding %q is not console or json", c.Log.Encoding))
	}
	return err
}

// ApplyEnv overrides a few fields from the environment: SIM_LOG_LEVEL and SIM_TIMESTEP.
// Malformed numeric values are reported and leave the field unchanged.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("SIM_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv("SIM_TIMESTEP"); ok && v != "" {
		dt, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SIM_TIMESTEP: %w", err)
		}
		c.Simulation.TimeStep = dt
	}
	return nil
}

// FrameInterval is the simulated time one frame covers (1 / FrameRate).
func (s SimulationConfig) FrameInterval() float64 {
	return 1 / s.FrameRate
}
