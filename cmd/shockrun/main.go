// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Reproducible Leontief Demand-Shock Quantiles
// Class: 02-613 at Caregie Mellon University

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "shockrun"
	version = "v1.0.0"
)

// shockrun estimates how large the effect of a random demand (or supply)
// shock to one sector in one country is on the world economy. It loads an
// inter-country input-output table, builds the Leontief inverse, draws random
// country-sectors with a fixed seed and reports the upper 1% quantile of the
// effects for shocks of 30%, 70% and 100%.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg(appName + " failed")
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Reproducible quantiles of random input-output shocks",
		Version: version,
		Long: `shockrun propagates random demand or supply shocks through a Leontief model
built from an inter-country input-output table (OECD ICIO layout) and reports
the upper quantile of the aggregate effect for each shock size, together with
the seed needed to reproduce it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr(), logLevel, logFormat)
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format (console|json)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newPropagateCmd())
	rootCmd.AddCommand(newInspectCmd())

	return rootCmd
}

// setupLogging configures the global zerolog logger.
func setupLogging(w io.Writer, level, format string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	switch format {
	case "json":
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	case "console", "":
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
	default:
		return fmt.Errorf("invalid log format %q (console|json)", format)
	}
	return nil
}
