// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Reproducible Leontief Demand-Shock Quantiles
// Class: 02-613 at Caregie Mellon University

package leontief

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrMalformedTable is returned when an input-output table cannot be parsed
	// or fails its structural checks.
	ErrMalformedTable = errors.New("malformed input-output table")
	// ErrSingularMatrix is returned when I - A cannot be inverted.
	ErrSingularMatrix = errors.New("singular leontief matrix")
	// ErrEmptySample is returned when statistics are requested for no draws.
	ErrEmptySample = errors.New("empty sample")
)

// IOTable holds one inter-country input-output table
type IOTable struct {
	// Row and column labels of the intermediate block, e.g. "AUS_D01T02"
	Labels []string
	// Intermediate flows Z (n x n), Z[i][j] = sales of i to j
	Flows *mat.Dense
	// Final demand per country-sector, summed over all demand columns
	Demand []float64
	// Gross output per country-sector
	Output []float64
}

// Size returns the number of country-sectors in the table.
func (t *IOTable) Size() int { return len(t.Labels) }

// Index returns the position of a country-sector label, or -1.
func (t *IOTable) Index(label string) int {
	for i, l := range t.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

// Target describes a single country-sector of the table.
type Target struct {
	Index   int
	Label   string
	Country string
	Sector  string
}

// Target returns the country-sector at index i.
func (t *IOTable) Target(i int) Target {
	country, sector := SplitLabel(t.Labels[i])
	return Target{Index: i, Label: t.Labels[i], Country: country, Sector: sector}
}

// SplitLabel splits "CCC_SSS" into country and sector. Labels without an
// underscore are treated as a sector of an unnamed country.
func SplitLabel(label string) (country, sector string) {
	if i := strings.Index(label, "_"); i >= 0 {
		return label[:i], label[i+1:]
	}
	return "", label
}

// NewIOTable checks the dimensions of the parts and builds a table.
func NewIOTable(labels []string, flows *mat.Dense, demand, output []float64) (*IOTable, error) {
	n := len(labels)
	if n == 0 {
		return nil, fmt.Errorf("%w: no country-sectors", ErrMalformedTable)
	}
	if flows == nil {
		return nil, fmt.Errorf("%w: no intermediate flows", ErrMalformedTable)
	}
	r, c := flows.Dims()
	if r != n || c != n {
		return nil, fmt.Errorf("%w: flows are %dx%d, expected %dx%d", ErrMalformedTable, r, c, n, n)
	}
	if len(demand) != n {
		return nil, fmt.Errorf("%w: %d final demand entries, expected %d", ErrMalformedTable, len(demand), n)
	}
	if len(output) != n {
		return nil, fmt.Errorf("%w: %d output entries, expected %d", ErrMalformedTable, len(output), n)
	}

	seen := make(map[string]struct{}, n)
	for _, l := range labels {
		if _, dup := seen[l]; dup {
			return nil, fmt.Errorf("%w: duplicate label %q", ErrMalformedTable, l)
		}
		seen[l] = struct{}{}
	}

	return &IOTable{
		Labels: labels,
		Flows:  flows,
		Demand: demand,
		Output: output,
	}, nil
}

// ShockType selects which side of the economy is shocked
type ShockType int

const (
	// Demand shocks final demand and propagates through the Leontief inverse
	Demand ShockType = iota
	// Supply shocks gross output and propagates through I - A
	Supply
)

func (s ShockType) String() string {
	switch s {
	case Demand:
		return "demand"
	case Supply:
		return "supply"
	}
	return fmt.Sprintf("ShockType(%d)", int(s))
}

// MarshalText writes the shock type by name.
func (s ShockType) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ParseShockType accepts "demand" or "supply" in any case.
func ParseShockType(s string) (ShockType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "demand", "":
		return Demand, nil
	case "supply":
		return Supply, nil
	}
	return 0, fmt.Errorf("unknown shock type %q", s)
}

// Model is a Leontief model derived from an IOTable.
type Model struct {
	Table *IOTable

	// Technical coefficients A = Z / x (column-wise)
	A *mat.Dense
	// I - A
	IminusA *mat.Dense
	// Leontief inverse (I - A)^-1
	Inverse *mat.Dense

	TotalOutput      float64
	TotalFinalDemand float64

	demand propagation
	supply propagation
}

// propagation bundles what a shock of one type runs through. Aggregate
// effects only need the column sums of the matrix, so those are kept too.
type propagation struct {
	matrix    *mat.Dense
	vector    []float64
	colSums   []float64
	baseline  float64 // sum(matrix * vector)
	benchmark float64
}

// Summary describes a model for display.
type Summary struct {
	Sectors          int
	Countries        int
	TotalOutput      float64
	TotalFinalDemand float64
	// max |L d - x|, the output identity only holds approximately in real data
	IdentityResidual float64
}

// Stats are the sample statistics of a set of shock effects
type Stats struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Upper5 float64 `json:"upper_5pct_quantile"`
	Upper1 float64 `json:"upper_1pct_quantile"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// SyntheticSpec parameterises a synthetic table.
type SyntheticSpec struct {
	Countries int
	Sectors   int
	// Uniform technical coefficient a; Countries*Sectors*a must be < 1
	Coefficient float64
}
