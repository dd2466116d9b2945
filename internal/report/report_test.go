// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Reproducible Leontief Demand-Shock Quantiles
// Class: 02-613 at Caregie Mellon University

package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Leontief_Shock_Project/shockrun/internal/experiment"
	"Leontief_Shock_Project/shockrun/internal/leontief"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// fixedReport has hand-picked numbers so the rendered output is stable.
func fixedReport() *Report {
	opts := experiment.DefaultOptions()
	opts.Draws = 1000
	opts.Replications = 2
	opts.Magnitudes = []float64{0.3, 0.7}

	seeds := []int64{5577006791947779410, 8674665223082153551}

	return &Report{
		RunID:     "6f1c2b8e-0d7a-4c55-9a51-3b0e7f5d2c11",
		Input:     "synthetic-5x5.csv",
		StartedAt: time.Date(2025, 12, 12, 9, 0, 0, 0, time.UTC),
		Duration:  1.5,
		Result: &experiment.Result{
			Options: opts,
			Sectors: 25,
			Magnitudes: []experiment.MagnitudeResult{
				{
					Magnitude: 0.3,
					Replications: []experiment.Replication{
						{Index: 0, Seed: seeds[0], Quantile: 0.023, Effects: []float64{0.01, 0.023},
							Stats: leontief.Stats{N: 1000, Mean: 0.012, StdDev: 0.0065, Median: 0.0115, Upper5: 0.0221, Upper1: 0.023, Min: 0.0023, Max: 0.0231}},
						{Index: 1, Seed: seeds[1], Quantile: 0.0231,
							Stats: leontief.Stats{N: 1000, Mean: 0.0125, StdDev: 0.0066, Median: 0.012, Upper5: 0.0222, Upper1: 0.0231, Min: 0.0023, Max: 0.0231}},
					},
					Mean: 0.023077, StdDev: 0.000125, CILow: 0.021954, CIHigh: 0.0242,
				},
				{
					Magnitude: 0.7,
					Replications: []experiment.Replication{
						{Index: 0, Seed: seeds[0], Quantile: 0.0537, Effects: []float64{0.02, 0.0537},
							Stats: leontief.Stats{N: 1000, Mean: 0.028, StdDev: 0.0152, Median: 0.0268, Upper5: 0.0516, Upper1: 0.0537, Min: 0.0054, Max: 0.0538}},
						{Index: 1, Seed: seeds[1], Quantile: 0.0539,
							Stats: leontief.Stats{N: 1000, Mean: 0.0291, StdDev: 0.0154, Median: 0.028, Upper5: 0.0518, Upper1: 0.0539, Min: 0.0054, Max: 0.0539}},
					},
					Mean: 0.053846, StdDev: 0.000292, CILow: 0.051224, CIHigh: 0.056468,
				},
			},
		},
	}
}

func TestWriteTableGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, fixedReport()))
	newGoldie(t).Assert(t, "table", buf.Bytes())
}

func TestWriteCSVGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixedReport()))
	newGoldie(t).Assert(t, "quantiles_csv", buf.Bytes())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, fixedReport()))

	var decoded struct {
		RunID  string `json:"run_id"`
		Result struct {
			Options struct {
				Seed      int64  `json:"seed"`
				ShockType string `json:"shock_type"`
				Sampling  string `json:"sampling"`
			} `json:"options"`
			Magnitudes []struct {
				Magnitude    float64 `json:"magnitude"`
				Replications []struct {
					Seed     int64   `json:"seed"`
					Quantile float64 `json:"quantile"`
				} `json:"replications"`
			} `json:"magnitudes"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "6f1c2b8e-0d7a-4c55-9a51-3b0e7f5d2c11", decoded.RunID)
	assert.Equal(t, int64(42), decoded.Result.Options.Seed)
	assert.Equal(t, "demand", decoded.Result.Options.ShockType)
	assert.Equal(t, "replace", decoded.Result.Options.Sampling)
	require.Len(t, decoded.Result.Magnitudes, 2)
	assert.Equal(t, int64(8674665223082153551), decoded.Result.Magnitudes[1].Replications[1].Seed)
	assert.Equal(t, 0.0539, decoded.Result.Magnitudes[1].Replications[1].Quantile)
	// raw draws stay out of the report
	assert.NotContains(t, buf.String(), "effects")
}

func TestNewAssignsRunID(t *testing.T) {
	a := New("x.csv", time.Now(), time.Second, fixedReport().Result)
	b := New("x.csv", time.Now(), time.Second, fixedReport().Result)
	assert.NotEmpty(t, a.RunID)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, 1.0, a.Duration)
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	written, err := WriteFiles(dir, fixedReport(), FileOptions{CSV: true, JSON: true, Plot: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, CSVFile),
		filepath.Join(dir, JSONFile),
		filepath.Join(dir, HistogramFile),
	}, written)

	for _, path := range written {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestWriteFilesNothingSelected(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	written, err := WriteFiles(dir, fixedReport(), FileOptions{})
	require.NoError(t, err)
	assert.Empty(t, written)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteHistogramSingleReplication(t *testing.T) {
	rep := fixedReport()
	res := rep.Result
	res.Options.Replications = 1
	for i := range res.Magnitudes {
		res.Magnitudes[i].Replications = res.Magnitudes[i].Replications[:1]
	}

	path := filepath.Join(t.TempDir(), "effects.png")
	require.NoError(t, WriteHistogram(path, res))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestUpperTail(t *testing.T) {
	assert.Equal(t, "1", upperTail(0.99))
	assert.Equal(t, "5", upperTail(0.95))
	assert.Equal(t, "0.5", upperTail(0.995))
}
