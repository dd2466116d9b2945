// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Reproducible Leontief Demand-Shock Quantiles
// Class: 02-613 at Caregie Mellon University

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"Leontief_Shock_Project/shockrun/internal/config"
	"Leontief_Shock_Project/shockrun/internal/experiment"
	"Leontief_Shock_Project/shockrun/internal/leontief"
	"Leontief_Shock_Project/shockrun/internal/metrics"
	"Leontief_Shock_Project/shockrun/internal/report"
)

func newRunCmd() *cobra.Command {
	var configPath string
	cfg := config.Default()

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the shock experiment",
		Long: `Loads the input-output table, draws random country-sectors with the given seed
and prints the upper quantile of the shock effects for every shock size.
Values from --config are overridden by flags given on the command line.`,
		Example: `  shockrun run --input ICIO2021_2018.csv --seed 42 --draws 300 --replications 20
  shockrun run --config shockrun.yaml --json --plot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			effective := cfg
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				overrideFromFlags(cmd, loaded, cfg)
				effective = loaded

				// Log settings in the file apply field by field unless given as flags
				level, format := effective.Log.Level, effective.Log.Format
				if cmd.Flags().Changed("log-level") {
					level, _ = cmd.Flags().GetString("log-level")
				}
				if cmd.Flags().Changed("log-format") {
					format, _ = cmd.Flags().GetString("log-format")
				}
				effective.Log.Level, effective.Log.Format = level, format
				if err := setupLogging(cmd.ErrOrStderr(), level, format); err != nil {
					return err
				}
			}
			return runExperiment(cmd.Context(), effective, cmd.OutOrStdout())
		},
	}

	f := runCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	f.StringVarP(&cfg.Input, "input", "i", cfg.Input, "Input-output table in ICIO CSV layout")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Master random seed")
	f.IntVarP(&cfg.Draws, "draws", "n", cfg.Draws, "Random country-sectors drawn per replication")
	f.IntVar(&cfg.Replications, "replications", cfg.Replications, "Independent replications per shock size")
	f.Float64Var(&cfg.Quantile, "quantile", cfg.Quantile, "Reported quantile of the effect distribution")
	f.Float64SliceVar(&cfg.Magnitudes, "magnitudes", cfg.Magnitudes, "Shock sizes in (0, 1]")
	f.StringVar(&cfg.ShockType, "shock-type", cfg.ShockType, "Shock type (demand|supply)")
	f.StringVar(&cfg.Sampling, "sampling", cfg.Sampling, "Target sampling (replace|unique)")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "Parallel replications, 0 for one per CPU")
	f.StringVarP(&cfg.Output.Dir, "out", "o", cfg.Output.Dir, "Output directory for report files")
	f.BoolVar(&cfg.Output.CSV, "csv", cfg.Output.CSV, "Write "+report.CSVFile)
	f.BoolVar(&cfg.Output.JSON, "json", cfg.Output.JSON, "Write "+report.JSONFile)
	f.BoolVar(&cfg.Output.Plot, "plot", cfg.Output.Plot, "Write "+report.HistogramFile)
	f.StringVar(&cfg.Output.MetricsFile, "metrics-file", cfg.Output.MetricsFile, "Write Prometheus metrics to this textfile")

	return runCmd
}

// overrideFromFlags copies every flag set on the command line from flagged
// into loaded.
func overrideFromFlags(cmd *cobra.Command, loaded, flagged *config.Config) {
	set := cmd.Flags().Changed
	if set("input") {
		loaded.Input = flagged.Input
	}
	if set("seed") {
		loaded.Seed = flagged.Seed
	}
	if set("draws") {
		loaded.Draws = flagged.Draws
	}
	if set("replications") {
		loaded.Replications = flagged.Replications
	}
	if set("quantile") {
		loaded.Quantile = flagged.Quantile
	}
	if set("magnitudes") {
		loaded.Magnitudes = flagged.Magnitudes
	}
	if set("shock-type") {
		loaded.ShockType = flagged.ShockType
	}
	if set("sampling") {
		loaded.Sampling = flagged.Sampling
	}
	if set("workers") {
		loaded.Workers = flagged.Workers
	}
	if set("out") {
		loaded.Output.Dir = flagged.Output.Dir
	}
	if set("csv") {
		loaded.Output.CSV = flagged.Output.CSV
	}
	if set("json") {
		loaded.Output.JSON = flagged.Output.JSON
	}
	if set("plot") {
		loaded.Output.Plot = flagged.Output.Plot
	}
	if set("metrics-file") {
		loaded.Output.MetricsFile = flagged.Output.MetricsFile
	}
}

// runExperiment is the whole pipeline: load, invert, sample, report.
func runExperiment(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	// 1. Load the table
	table, err := leontief.LoadICIOCSV(cfg.Input)
	if err != nil {
		return err
	}
	log.Info().Str("input", cfg.Input).Int("sectors", table.Size()).Msg("loaded input-output table")

	// 2. Leontief inverse
	model, err := leontief.NewModel(table)
	if err != nil {
		return err
	}
	summary := model.Summary()
	log.Debug().
		Float64("total_output", summary.TotalOutput).
		Float64("total_final_demand", summary.TotalFinalDemand).
		Float64("identity_residual", summary.IdentityResidual).
		Msg("built leontief model")

	// 3. Draw and propagate
	runner, err := experiment.NewRunner(model, opts, log.Logger)
	if err != nil {
		return err
	}

	log.Info().
		Int64("seed", opts.Seed).
		Int("draws", opts.Draws).
		Int("replications", opts.Replications).
		Floats64("magnitudes", opts.Magnitudes).
		Str("shock_type", opts.ShockType.String()).
		Msg("running shock experiment")

	start := time.Now()
	result, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("experiment: %w", err)
	}
	elapsed := time.Since(start)

	// 4. Report
	rep := report.New(cfg.Input, start, elapsed, result)
	if err := report.WriteTable(stdout, rep); err != nil {
		return err
	}

	written, err := report.WriteFiles(cfg.Output.Dir, rep, report.FileOptions{
		CSV:  cfg.Output.CSV,
		JSON: cfg.Output.JSON,
		Plot: cfg.Output.Plot,
	})
	for _, path := range written {
		log.Info().Str("path", path).Msg("wrote report file")
	}
	if err != nil {
		return err
	}

	if cfg.Output.MetricsFile != "" {
		rec := metrics.NewRecorder()
		rec.Observe(result, elapsed)
		if err := rec.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		log.Info().Str("path", cfg.Output.MetricsFile).Msg("wrote metrics")
	}

	log.Info().Str("run_id", rep.RunID).Dur("elapsed", elapsed).Msg("experiment complete")
	return nil
}
