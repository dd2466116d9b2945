// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Reproducible Leontief Demand-Shock Quantiles
// Class: 02-613 at Caregie Mellon University

// Package metrics exports run metrics in the Prometheus text format for the
// node exporter textfile collector.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"Leontief_Shock_Project/shockrun/internal/experiment"
)

// Recorder holds the metrics of one run on its own registry
type Recorder struct {
	registry *prometheus.Registry

	draws    *prometheus.CounterVec
	quantile *prometheus.GaugeVec
	duration prometheus.Histogram
	sectors  prometheus.Gauge
}

// NewRecorder registers the run metrics on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		draws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shockrun_draws_total",
			Help: "Number of shock draws evaluated",
		}, []string{"shock_type"}),
		quantile: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "shockrun_quantile",
			Help: "Mean over replications of the reported effect quantile",
		}, []string{"shock_type", "magnitude"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shockrun_run_duration_seconds",
			Help:    "Wall time of the experiment",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		sectors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shockrun_table_sectors",
			Help: "Country-sectors in the input table",
		}),
	}
	r.registry.MustRegister(r.draws, r.quantile, r.duration, r.sectors)
	return r
}

// Registry exposes the registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe records a finished experiment.
func (r *Recorder) Observe(result *experiment.Result, elapsed time.Duration) {
	opts := result.Options
	shockType := opts.ShockType.String()

	total := float64(opts.Draws * opts.Replications * len(opts.Magnitudes))
	r.draws.WithLabelValues(shockType).Add(total)
	r.sectors.Set(float64(result.Sectors))
	r.duration.Observe(elapsed.Seconds())

	for _, mr := range result.Magnitudes {
		magnitude := strconv.FormatFloat(mr.Magnitude, 'g', -1, 64)
		r.quantile.WithLabelValues(shockType, magnitude).Set(mr.Mean)
	}
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
