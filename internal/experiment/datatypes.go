// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Reproducible Leontief Demand-Shock Quantiles
// Class: 02-613 at Caregie Mellon University

package experiment

import (
	"errors"
	"fmt"
	"strings"

	"Leontief_Shock_Project/shockrun/internal/leontief"
)

// ErrInvalidConfig is returned for options no experiment can run with.
var ErrInvalidConfig = errors.New("invalid experiment configuration")

// Sampling selects how targets are drawn
type Sampling int

const (
	// WithReplacement draws every target independently
	WithReplacement Sampling = iota
	// WithoutReplacement draws distinct targets, so Draws cannot exceed the table size
	WithoutReplacement
)

func (s Sampling) String() string {
	switch s {
	case WithReplacement:
		return "replace"
	case WithoutReplacement:
		return "unique"
	}
	return fmt.Sprintf("Sampling(%d)", int(s))
}

// MarshalText writes the sampling mode by name.
func (s Sampling) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ParseSampling accepts "replace" or "unique".
func ParseSampling(s string) (Sampling, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "replace", "":
		return WithReplacement, nil
	case "unique":
		return WithoutReplacement, nil
	}
	return 0, fmt.Errorf("unknown sampling mode %q (replace|unique)", s)
}

// Options for a shock experiment
type Options struct {
	// Master seed; replication seeds are derived from it
	Seed int64 `json:"seed"`
	// Number of random targets drawn per replication
	Draws int `json:"draws"`
	// Shock sizes to evaluate, each in (0, 1]
	Magnitudes []float64 `json:"magnitudes"`
	// Quantile reported for every magnitude (0.99 is the upper 1% quantile)
	Quantile float64 `json:"quantile"`

	ShockType    leontief.ShockType `json:"shock_type"`
	Sampling     Sampling           `json:"sampling"`
	Replications int                `json:"replications"`

	// Parallel replications; 0 uses one per CPU. Never changes results.
	Workers int `json:"-"`
}

// DefaultOptions returns seed 42, 300 draws and the 0.3, 0.7, 1.0 magnitudes.
func DefaultOptions() Options {
	return Options{
		Seed:         42,
		Draws:        300,
		Magnitudes:   []float64{0.3, 0.7, 1.0},
		Quantile:     0.99,
		ShockType:    leontief.Demand,
		Sampling:     WithReplacement,
		Replications: 1,
	}
}

// Replication holds the outcome of one replication at one magnitude.
type Replication struct {
	Index int   `json:"index"`
	Seed  int64 `json:"seed"`
	// Sampled target indices, in draw order
	Targets  []int          `json:"-"`
	Effects  []float64      `json:"-"`
	Quantile float64        `json:"quantile"`
	Stats    leontief.Stats `json:"stats"`
}

// MagnitudeResult collects all replications of one shock size.
type MagnitudeResult struct {
	Magnitude    float64       `json:"magnitude"`
	Replications []Replication `json:"replications"`

	// Mean and population standard deviation of the replication quantiles
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`

	// 95% Student-t interval for the mean; equal to Mean with one replication
	CILow  float64 `json:"ci_low"`
	CIHigh float64 `json:"ci_high"`
}

// Result of a full experiment
type Result struct {
	Options    Options           `json:"options"`
	Sectors    int               `json:"sectors"`
	Magnitudes []MagnitudeResult `json:"magnitudes"`
}
