// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Reproducible Leontief Demand-Shock Quantiles
// Class: 02-613 at Caregie Mellon University

// Package report renders experiment results as a text table, CSV, JSON and a
// histogram.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"Leontief_Shock_Project/shockrun/internal/experiment"
)

// Report wraps a result with the run metadata needed to reproduce it.
type Report struct {
	RunID     string             `json:"run_id"`
	Input     string             `json:"input"`
	StartedAt time.Time          `json:"started_at"`
	Duration  float64            `json:"duration_seconds"`
	Result    *experiment.Result `json:"result"`
}

// New tags a result with a fresh run id.
func New(input string, startedAt time.Time, duration time.Duration, result *experiment.Result) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Input:     input,
		StartedAt: startedAt.UTC(),
		Duration:  duration.Seconds(),
		Result:    result,
	}
}

// Files written by WriteFiles
const (
	CSVFile       = "quantiles.csv"
	JSONFile      = "report.json"
	HistogramFile = "quantiles.png"
)

// WriteTable prints quantile against shock size.
func WriteTable(w io.Writer, rep *Report) error {
	res := rep.Result
	opts := res.Options

	shockType := opts.ShockType.String()
	shockType = strings.ToUpper(shockType[:1]) + shockType[1:]

	fmt.Fprintf(w, "=== Upper %s%% Quantile of %s Shock Effects ===\n", upperTail(opts.Quantile), shockType)
	fmt.Fprintf(w, "Input: %s (%d country-sectors)\n", rep.Input, res.Sectors)
	fmt.Fprintf(w, "Seed: %d  Draws: %d  Replications: %d  Sampling: %s\n\n",
		opts.Seed, opts.Draws, opts.Replications, opts.Sampling)

	fmt.Fprintf(w, "%-10s | %12s | %12s | %s\n", "Shock size", "Quantile", "Std. dev.", "95% CI")
	fmt.Fprintln(w, strings.Repeat("-", 66))
	for _, mr := range res.Magnitudes {
		fmt.Fprintf(w, "%9.0f%% | %12.6f | %12.6f | [%.6f, %.6f]\n",
			mr.Magnitude*100, mr.Mean, mr.StdDev, mr.CILow, mr.CIHigh)
	}
	_, err := fmt.Fprintln(w)
	return err
}

// upperTail formats the share above the quantile, 0.99 -> "1".
func upperTail(q float64) string {
	return fmt.Sprintf("%.4g", (1-q)*100)
}

// WriteCSV writes one row per magnitude and replication. Floats are written
// with full precision so runs can be compared bit for bit.
func WriteCSV(w io.Writer, rep *Report) error {
	writer := csv.NewWriter(w)

	header := []string{
		"magnitude",
		"replication",
		"seed",
		"quantile",
		"mean",
		"std_dev",
		"median",
		"upper_5pct",
		"upper_1pct",
		"min",
		"max",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, mr := range rep.Result.Magnitudes {
		for _, r := range mr.Replications {
			record := []string{
				formatFloat(mr.Magnitude),
				strconv.Itoa(r.Index),
				strconv.FormatInt(r.Seed, 10),
				formatFloat(r.Quantile),
				formatFloat(r.Stats.Mean),
				formatFloat(r.Stats.StdDev),
				formatFloat(r.Stats.Median),
				formatFloat(r.Stats.Upper5),
				formatFloat(r.Stats.Upper1),
				formatFloat(r.Stats.Min),
				formatFloat(r.Stats.Max),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteJSON writes the full report, indented.
func WriteJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// FileOptions selects what WriteFiles produces
type FileOptions struct {
	CSV  bool
	JSON bool
	Plot bool
}

// WriteFiles writes the selected outputs into dir, creating it if needed,
// and returns the paths written.
func WriteFiles(dir string, rep *Report, opts FileOptions) ([]string, error) {
	if !opts.CSV && !opts.JSON && !opts.Plot {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	writeTo := func(name string, write func(io.Writer, *Report) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := write(f, rep); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if opts.CSV {
		if err := writeTo(CSVFile, WriteCSV); err != nil {
			return written, err
		}
	}
	if opts.JSON {
		if err := writeTo(JSONFile, WriteJSON); err != nil {
			return written, err
		}
	}
	if opts.Plot {
		path := filepath.Join(dir, HistogramFile)
		if err := WriteHistogram(path, rep.Result); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
