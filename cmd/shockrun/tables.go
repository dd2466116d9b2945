// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Reproducible Leontief Demand-Shock Quantiles
// Class: 02-613 at Caregie Mellon University

package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"Leontief_Shock_Project/shockrun/internal/leontief"
)

func newGenerateCmd() *cobra.Command {
	var (
		spec = leontief.SyntheticSpec{Countries: 5, Sectors: 5, Coefficient: 0.02}
		out  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic input-output table",
		Long: `Writes a consistent synthetic table in the ICIO layout. Every country-sector
buys the same share (--coefficient) of every other one's output, and the i-th
country-sector has final demand i+1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := leontief.Synthetic(spec)
			if err != nil {
				return err
			}
			if err := leontief.SaveICIOCSV(out, table); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			log.Info().
				Str("path", out).
				Int("countries", spec.Countries).
				Int("sectors", spec.Sectors).
				Float64("coefficient", spec.Coefficient).
				Msg("wrote synthetic table")
			return nil
		},
	}

	cmd.Flags().IntVar(&spec.Countries, "countries", spec.Countries, "Number of countries")
	cmd.Flags().IntVar(&spec.Sectors, "sectors", spec.Sectors, "Number of sectors per country")
	cmd.Flags().Float64Var(&spec.Coefficient, "coefficient", spec.Coefficient, "Uniform technical coefficient")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output CSV path")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newPropagateCmd() *cobra.Command {
	var (
		input     string
		target    string
		magnitude float64
		shockType string
		top       int
	)

	cmd := &cobra.Command{
		Use:     "propagate",
		Short:   "Show how one shock spreads across country-sectors",
		Example: `  shockrun propagate --input ICIO2021_2018.csv --target DEU_C29 --magnitude 0.7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := leontief.ParseShockType(shockType)
			if err != nil {
				return err
			}
			model, err := loadModel(input)
			if err != nil {
				return err
			}
			idx := model.Table.Index(target)
			if idx < 0 {
				return fmt.Errorf("unknown country-sector %q", target)
			}
			return leontief.FprintEffects(cmd.OutOrStdout(), model, st, idx, magnitude, top)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "ICIO2021_2018.csv", "Input-output table in ICIO CSV layout")
	cmd.Flags().StringVarP(&target, "target", "t", "", "Country-sector label to shock, e.g. DEU_C29")
	cmd.Flags().Float64VarP(&magnitude, "magnitude", "m", 0.3, "Shock size in [0, 1]")
	cmd.Flags().StringVar(&shockType, "shock-type", "demand", "Shock type (demand|supply)")
	cmd.Flags().IntVar(&top, "top", 10, "Country-sectors to list, 0 for all")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func newInspectCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarise an input-output table and its Leontief model",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := loadModel(input)
			if err != nil {
				return err
			}
			leontief.FprintSummary(cmd.OutOrStdout(), model.Summary())
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "ICIO2021_2018.csv", "Input-output table in ICIO CSV layout")
	return cmd
}

func loadModel(path string) (*leontief.Model, error) {
	table, err := leontief.LoadICIOCSV(path)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("input", path).Int("sectors", table.Size()).Msg("loaded input-output table")
	return leontief.NewModel(table)
}
