package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"physics-adapter/internal/adapter"
	"physics-adapter/internal/commands"
	"physics-adapter/internal/config"
)

func registerShapes(reg *commands.Registry) {
	var opts options
	fs := reg.Register("shapes", "build every collision shape of a scenario and list volume and bounds", func(*flag.FlagSet) error {
		cfg, err := loadConfig(opts.configPath)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()
		sc, err := loadScenario(opts, log)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "BODY\tSHAPE\tVOLUME\tMASS\tBOUNDS")
		for _, body := range sc.Bodies() {
			c := body.Collider()
			if c == nil {
				fmt.Fprintf(w, "%s\t-\t-\t-\t-\n", body.Name)
				continue
			}
			shape := adapter.CreateCollisionShape(c.Data.Shape, log)
			if shape == nil {
				fmt.Fprintf(w, "%s\t%s\tinvalid\t-\t-\n", body.Name, c.Data.Shape.Type)
				continue
			}
			density := c.Data.Density
			if density <= 0 {
				density = cfg.Simulation.DefaultDensity
			}
			lo, hi := shape.LocalBounds()
			fmt.Fprintf(w, "%s\t%s\t%.6g\t%.6g\t[%.3g %.3g %.3g]..[%.3g %.3g %.3g]\n",
				body.Name, shape.Type(), shape.Volume(), density*shape.Volume(),
				lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
		}
		return w.Flush()
	})
	opts.bind(fs)
}

// registerConfig prints the effective configuration, or writes the defaults with -write.
func registerConfig(reg *commands.Registry) {
	var path, write string
	fs := reg.Register("config", "print the effective configuration or write the defaults", func(*flag.FlagSet) error {
		if write != "" {
			return config.Save(write, config.Default())
		}
		cfg, err := loadConfig(path)
		if err != nil {
			return err
		}
		return printYAML(cfg)
	})
	fs.StringVar(&path, "config", config.ConfigPath, "config file (missing file = defaults)")
	fs.StringVar(&write, "write", "", "write the default configuration to this path")
}
