// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Reproducible Leontief Demand-Shock Quantiles
// Class: 02-613 at Caregie Mellon University

package leontief

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// NewModel derives the technical coefficients, I - A and the Leontief inverse
// from an input-output table.
// Columns with zero output get zero coefficients.
// Returns ErrSingularMatrix if I - A cannot be inverted.
func NewModel(table *IOTable) (*Model, error) {
	if table == nil || table.Flows == nil {
		return nil, fmt.Errorf("%w: table not provided", ErrMalformedTable)
	}

	n := table.Size()

	// A = Z / x, dividing column j by the output of sector j
	A := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		xj := table.Output[j]
		if xj == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			A.Set(i, j, table.Flows.At(i, j)/xj)
		}
	}

	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	var iminusA mat.Dense
	iminusA.Sub(mat.NewDiagDense(n, ones), A)

	// gonum reports both exact and numerical singularity as a condition error
	var inverse mat.Dense
	if err := inverse.Inverse(&iminusA); err != nil {
		return nil, fmt.Errorf("%w: invert I - A (%dx%d): %v", ErrSingularMatrix, n, n, err)
	}

	m := &Model{
		Table:            table,
		A:                A,
		IminusA:          &iminusA,
		Inverse:          &inverse,
		TotalOutput:      floats.Sum(table.Output),
		TotalFinalDemand: floats.Sum(table.Demand),
	}

	// Demand shocks: L * d measured against total output.
	// Supply shocks: (I - A) * x measured against total final demand.
	m.demand = newPropagation(m.Inverse, table.Demand, m.TotalOutput)
	m.supply = newPropagation(m.IminusA, table.Output, m.TotalFinalDemand)

	return m, nil
}

func newPropagation(matrix *mat.Dense, vector []float64, benchmark float64) propagation {
	_, c := matrix.Dims()
	sums := make([]float64, c)
	col := make([]float64, c)
	for j := 0; j < c; j++ {
		mat.Col(col, j, matrix)
		sums[j] = floats.Sum(col)
	}
	return propagation{
		matrix:    matrix,
		vector:    vector,
		colSums:   sums,
		baseline:  floats.Dot(sums, vector),
		benchmark: benchmark,
	}
}

func (m *Model) propagationFor(shockType ShockType) (*propagation, error) {
	var p *propagation
	switch shockType {
	case Demand:
		p = &m.demand
	case Supply:
		p = &m.supply
	default:
		return nil, fmt.Errorf("unknown shock type %v", shockType)
	}
	if p.benchmark == 0 {
		return nil, fmt.Errorf("%w: %v benchmark total is zero", ErrMalformedTable, shockType)
	}
	return p, nil
}

func (m *Model) checkShock(target int, magnitude float64) error {
	n := m.Table.Size()
	if target < 0 || target >= n {
		return fmt.Errorf("target must be between 0 and %d, got %d", n-1, target)
	}
	if math.IsNaN(magnitude) || magnitude < 0 || magnitude > 1 {
		return fmt.Errorf("shock magnitude must be in [0, 1], got %v", magnitude)
	}
	return nil
}

// Propagate reduces final demand (or output, for supply shocks) of the target
// country-sector by the given share and returns the resulting output (or
// final demand) for every country-sector.
func (m *Model) Propagate(shockType ShockType, target int, magnitude float64) (*mat.VecDense, error) {
	p, err := m.propagationFor(shockType)
	if err != nil {
		return nil, err
	}
	if err := m.checkShock(target, magnitude); err != nil {
		return nil, err
	}

	shocked := make([]float64, len(p.vector))
	copy(shocked, p.vector)
	shocked[target] *= 1 - magnitude

	var out mat.VecDense
	out.MulVec(p.matrix, mat.NewVecDense(len(shocked), shocked))
	return &out, nil
}

// Effect returns the aggregate effect of a shock, 1 - sum(Propagate) / benchmark.
// Only the target entry changes, so the sum is the baseline minus the
// target's share times its column sum.
func (m *Model) Effect(shockType ShockType, target int, magnitude float64) (float64, error) {
	p, err := m.propagationFor(shockType)
	if err != nil {
		return 0, err
	}
	if err := m.checkShock(target, magnitude); err != nil {
		return 0, err
	}
	return p.effect(target, magnitude), nil
}

func (p *propagation) effect(target int, magnitude float64) float64 {
	total := p.baseline - magnitude*p.vector[target]*p.colSums[target]
	return 1 - total/p.benchmark
}

// Effects computes the aggregate effect for each target in order.
func (m *Model) Effects(shockType ShockType, targets []int, magnitude float64) ([]float64, error) {
	p, err := m.propagationFor(shockType)
	if err != nil {
		return nil, err
	}

	effects := make([]float64, len(targets))
	for i, t := range targets {
		if err := m.checkShock(t, magnitude); err != nil {
			return nil, err
		}
		effects[i] = p.effect(t, magnitude)
	}
	return effects, nil
}

// Summary reports the model dimensions, totals and how far the output
// identity L * d = x is from holding.
func (m *Model) Summary() Summary {
	n := m.Table.Size()

	countries := make(map[string]struct{})
	for _, l := range m.Table.Labels {
		c, _ := SplitLabel(l)
		countries[c] = struct{}{}
	}

	var ld mat.VecDense
	ld.MulVec(m.Inverse, mat.NewVecDense(n, m.Table.Demand))

	residual := 0.0
	for i := 0; i < n; i++ {
		if d := math.Abs(ld.AtVec(i) - m.Table.Output[i]); d > residual {
			residual = d
		}
	}

	return Summary{
		Sectors:          n,
		Countries:        len(countries),
		TotalOutput:      m.TotalOutput,
		TotalFinalDemand: m.TotalFinalDemand,
		IdentityResidual: residual,
	}
}

// Quantile returns the empirical q-quantile of samples, matching numpy's
// default ("linear") method: the value at rank q*(n-1) of the sorted samples,
// interpolated between its two neighbours. q is clamped to [0, 1] and an
// empty sample gives NaN. samples is not modified.
func Quantile(samples []float64, q float64) float64 {
	if len(samples) == 0 {
		return math.NaN()
	}

	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	last := len(sorted) - 1

	rank := math.Max(0, math.Min(1, q)) * float64(last)
	lo := int(rank)
	if lo >= last {
		return sorted[last]
	}
	frac := rank - float64(lo)
	if frac == 0 {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Describe computes the sample statistics reported for every experiment.
// The standard deviation is the population one.
func Describe(samples []float64) (Stats, error) {
	if len(samples) == 0 {
		return Stats{}, ErrEmptySample
	}

	mean, std := stat.PopMeanStdDev(samples, nil)

	return Stats{
		N:      len(samples),
		Mean:   mean,
		StdDev: std,
		Median: Quantile(samples, 0.5),
		Upper5: Quantile(samples, 0.95),
		Upper1: Quantile(samples, 0.99),
		Min:    floats.Min(samples),
		Max:    floats.Max(samples),
	}, nil
}

// Synthetic builds a consistent table with a uniform technical coefficient.
// The i-th country-sector has final demand i+1 and output x_i = d_i + a*X,
// where X = sum(d) / (1 - n*a), so L * d = x holds exactly.
// A demand shock of size s on target i then has effect s * d_i / sum(d).
func Synthetic(spec SyntheticSpec) (*IOTable, error) {
	if spec.Countries <= 0 || spec.Sectors <= 0 {
		return nil, fmt.Errorf("countries and sectors must be > 0, got %d and %d", spec.Countries, spec.Sectors)
	}
	n := spec.Countries * spec.Sectors
	a := spec.Coefficient
	if a < 0 || float64(n)*a >= 1 {
		return nil, fmt.Errorf("coefficient must be in [0, 1/%d), got %v", n, a)
	}

	labels := make([]string, 0, n)
	for c := 1; c <= spec.Countries; c++ {
		for s := 1; s <= spec.Sectors; s++ {
			labels = append(labels, fmt.Sprintf("C%d_S%d", c, s))
		}
	}

	demand := make([]float64, n)
	for i := range demand {
		demand[i] = float64(i + 1)
	}
	totalOutput := floats.Sum(demand) / (1 - float64(n)*a)

	output := make([]float64, n)
	for i := range output {
		output[i] = demand[i] + a*totalOutput
	}

	flows := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			flows.Set(i, j, a*output[j])
		}
	}

	return NewIOTable(labels, flows, demand, output)
}
