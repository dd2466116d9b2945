// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Reproducible Leontief Demand-Shock Quantiles
// Class: 02-613 at Caregie Mellon University

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Leontief_Shock_Project/shockrun/internal/experiment"
)

func sampleResult() *experiment.Result {
	opts := experiment.DefaultOptions()
	opts.Draws = 100
	opts.Replications = 2
	opts.Magnitudes = []float64{0.3, 1.0}
	return &experiment.Result{
		Options: opts,
		Sectors: 25,
		Magnitudes: []experiment.MagnitudeResult{
			{Magnitude: 0.3, Mean: 0.02},
			{Magnitude: 1.0, Mean: 0.07},
		},
	}
}

func TestObserve(t *testing.T) {
	r := NewRecorder()
	r.Observe(sampleResult(), 250*time.Millisecond)

	assert.Equal(t, 400.0, testutil.ToFloat64(r.draws.WithLabelValues("demand")))
	assert.Equal(t, 0.02, testutil.ToFloat64(r.quantile.WithLabelValues("demand", "0.3")))
	assert.Equal(t, 0.07, testutil.ToFloat64(r.quantile.WithLabelValues("demand", "1")))
	assert.Equal(t, 25.0, testutil.ToFloat64(r.sectors))

	count, err := testutil.GatherAndCount(r.Registry(), "shockrun_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Observe(sampleResult(), time.Second)

	path := filepath.Join(t.TempDir(), "shockrun.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `shockrun_quantile{magnitude="0.3",shock_type="demand"} 0.02`)
	assert.Contains(t, string(data), `shockrun_draws_total{shock_type="demand"} 400`)
}
