// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Reproducible Leontief Demand-Shock Quantiles
// Class: 02-613 at Caregie Mellon University

// Package config loads the YAML run configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"Leontief_Shock_Project/shockrun/internal/experiment"
	"Leontief_Shock_Project/shockrun/internal/leontief"
)

// Config is the run configuration
type Config struct {
	// Path to the ICIO table, e.g. ICIO2021_2018.csv
	Input string `yaml:"input"`

	Seed         int64     `yaml:"seed"`
	Draws        int       `yaml:"draws"`
	Replications int       `yaml:"replications"`
	Quantile     float64   `yaml:"quantile"`
	Magnitudes   []float64 `yaml:"magnitudes"`
	ShockType    string    `yaml:"shock_type"`
	Sampling     string    `yaml:"sampling"`
	Workers      int       `yaml:"workers"`

	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// OutputConfig selects the report files written next to the stdout table
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	CSV         bool   `yaml:"csv"`
	JSON        bool   `yaml:"json"`
	Plot        bool   `yaml:"plot"`
	MetricsFile string `yaml:"metrics_file"`
}

// LogConfig configures zerolog
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// Default returns the configuration of the reference experiment.
func Default() *Config {
	opts := experiment.DefaultOptions()
	return &Config{
		Input:        "ICIO2021_2018.csv",
		Seed:         opts.Seed,
		Draws:        opts.Draws,
		Replications: opts.Replications,
		Quantile:     opts.Quantile,
		Magnitudes:   opts.Magnitudes,
		ShockType:    opts.ShockType.String(),
		Sampling:     opts.Sampling.String(),
		Output: OutputConfig{
			Dir: "out",
			CSV: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Options converts the configuration into experiment options.
func (c *Config) Options() (experiment.Options, error) {
	shockType, err := leontief.ParseShockType(c.ShockType)
	if err != nil {
		return experiment.Options{}, fmt.Errorf("%w: %v", experiment.ErrInvalidConfig, err)
	}
	sampling, err := experiment.ParseSampling(c.Sampling)
	if err != nil {
		return experiment.Options{}, fmt.Errorf("%w: %v", experiment.ErrInvalidConfig, err)
	}

	return experiment.Options{
		Seed:         c.Seed,
		Draws:        c.Draws,
		Magnitudes:   append([]float64(nil), c.Magnitudes...),
		Quantile:     c.Quantile,
		ShockType:    shockType,
		Sampling:     sampling,
		Replications: c.Replications,
		Workers:      c.Workers,
	}, nil
}

// Validate checks everything that does not depend on the input table.
// Options.Validate repeats the checks once the table size is known.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("%w: no input table", experiment.ErrInvalidConfig)
	}
	opts, err := c.Options()
	if err != nil {
		return err
	}
	// unique sampling is checked against the table later
	opts.Sampling = experiment.WithReplacement
	if err := opts.Validate(0); err != nil {
		return err
	}
	switch c.Log.Format {
	case "console", "json", "":
	default:
		return fmt.Errorf("%w: unknown log format %q", experiment.ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
