// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Reproducible Leontief Demand-Shock Quantiles
// Class: 02-613 at Caregie Mellon University

package experiment

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"Leontief_Shock_Project/shockrun/internal/leontief"
)

// Runner draws random shock targets and collects their effects.
type Runner struct {
	model  *leontief.Model
	opts   Options
	logger zerolog.Logger
}

// NewRunner validates the options against the model.
func NewRunner(model *leontief.Model, opts Options, logger zerolog.Logger) (*Runner, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: model not provided", ErrInvalidConfig)
	}
	if err := opts.Validate(model.Table.Size()); err != nil {
		return nil, err
	}
	return &Runner{model: model, opts: opts, logger: logger}, nil
}

// Validate checks the options for a table with n country-sectors.
func (o Options) Validate(n int) error {
	if o.Draws <= 0 {
		return fmt.Errorf("%w: draw count must be > 0, got %d", ErrInvalidConfig, o.Draws)
	}
	if o.Replications <= 0 {
		return fmt.Errorf("%w: replications must be > 0, got %d", ErrInvalidConfig, o.Replications)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, o.Workers)
	}
	if len(o.Magnitudes) == 0 {
		return fmt.Errorf("%w: no shock magnitudes", ErrInvalidConfig)
	}
	for _, m := range o.Magnitudes {
		if math.IsNaN(m) || m <= 0 || m > 1 {
			return fmt.Errorf("%w: shock magnitude %v out of range (0, 1]", ErrInvalidConfig, m)
		}
	}
	if math.IsNaN(o.Quantile) || o.Quantile <= 0 || o.Quantile >= 1 {
		return fmt.Errorf("%w: quantile %v out of range (0, 1)", ErrInvalidConfig, o.Quantile)
	}
	switch o.ShockType {
	case leontief.Demand, leontief.Supply:
	default:
		return fmt.Errorf("%w: unknown shock type %v", ErrInvalidConfig, o.ShockType)
	}
	switch o.Sampling {
	case WithReplacement:
	case WithoutReplacement:
		if o.Draws > n {
			return fmt.Errorf("%w: cannot draw %d distinct targets from %d country-sectors",
				ErrInvalidConfig, o.Draws, n)
		}
	default:
		return fmt.Errorf("%w: unknown sampling mode %v", ErrInvalidConfig, o.Sampling)
	}
	return nil
}

// ReplicationSeeds derives one seed per replication from the master seed, so
// each replication has its own RNG and workers never share one.
func ReplicationSeeds(master int64, replications int) []int64 {
	masterRng := rand.New(rand.NewSource(master))
	seeds := make([]int64, replications)
	for i := range seeds {
		seeds[i] = masterRng.Int63()
	}
	return seeds
}

// DrawTargets draws target indices in [0, n) from rng.
func DrawTargets(rng *rand.Rand, n, draws int, sampling Sampling) []int {
	if sampling == WithoutReplacement {
		return rng.Perm(n)[:draws]
	}
	targets := make([]int, draws)
	for i := range targets {
		targets[i] = rng.Intn(n)
	}
	return targets
}

// Run executes all replications and aggregates them per magnitude.
// Every replication draws one set of targets and reuses it for all
// magnitudes, so results at different magnitudes are directly comparable.
// Results only depend on the options and the model, not on Workers.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := r.opts
	n := r.model.Table.Size()
	seeds := ReplicationSeeds(opts.Seed, opts.Replications)

	// reps[replication][magnitude]
	reps := make([][]Replication, opts.Replications)

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers > opts.Replications {
		workers = opts.Replications
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for b := 0; b < opts.Replications; b++ {
		b := b
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			rng := rand.New(rand.NewSource(seeds[b]))
			targets := DrawTargets(rng, n, opts.Draws, opts.Sampling)

			row := make([]Replication, len(opts.Magnitudes))
			for mi, magnitude := range opts.Magnitudes {
				effects, err := r.model.Effects(opts.ShockType, targets, magnitude)
				if err != nil {
					return fmt.Errorf("replication %d, magnitude %v: %w", b, magnitude, err)
				}
				stats, err := leontief.Describe(effects)
				if err != nil {
					return fmt.Errorf("replication %d, magnitude %v: %w", b, magnitude, err)
				}
				row[mi] = Replication{
					Index:    b,
					Seed:     seeds[b],
					Targets:  targets,
					Effects:  effects,
					Quantile: leontief.Quantile(effects, opts.Quantile),
					Stats:    stats,
				}
			}
			reps[b] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Options:    opts,
		Sectors:    n,
		Magnitudes: make([]MagnitudeResult, len(opts.Magnitudes)),
	}

	for mi, magnitude := range opts.Magnitudes {
		mr := MagnitudeResult{
			Magnitude:    magnitude,
			Replications: make([]Replication, opts.Replications),
		}
		quantiles := make([]float64, opts.Replications)
		for b := range reps {
			mr.Replications[b] = reps[b][mi]
			quantiles[b] = reps[b][mi].Quantile
		}
		mr.Mean, mr.StdDev, mr.CILow, mr.CIHigh = summarize(quantiles)
		result.Magnitudes[mi] = mr

		r.logger.Debug().
			Float64("magnitude", magnitude).
			Float64("quantile_mean", mr.Mean).
			Float64("quantile_std", mr.StdDev).
			Int("replications", opts.Replications).
			Msg("magnitude complete")
	}

	return result, nil
}

// summarize returns mean, population std and a 95% t-interval for the mean.
func summarize(xs []float64) (mean, std, lo, hi float64) {
	mean, std = stat.PopMeanStdDev(xs, nil)
	if len(xs) < 2 {
		return mean, std, mean, mean
	}

	nu := float64(len(xs) - 1)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: nu}.Quantile(0.975)
	se := stat.StdDev(xs, nil) / math.Sqrt(float64(len(xs)))
	return mean, std, mean - t*se, mean + t*se
}
