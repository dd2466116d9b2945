// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Reproducible Leontief Demand-Shock Quantiles
// Class: 02-613 at Caregie Mellon University

package leontief

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// LoadICIOCSV loads an inter-country input-output table in the OECD ICIO layout.
// A file that cannot be opened is reported as ErrMalformedTable and keeps the
// underlying os error.
func LoadICIOCSV(path string) (*IOTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrMalformedTable, path, err)
	}
	defer f.Close()

	t, err := ReadICIOCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadICIOCSV parses the ICIO layout:
//
//	label, <n intermediate columns>, <final demand columns...>, output
//
// The first n rows must carry the same labels as the intermediate columns,
// in the same order. Rows after them (value added, totals) are ignored.
// Final demand is the sum over all final demand columns. A table that stops
// before every intermediate column has its row, or has such a row out of
// order, is rejected.
func ReadICIOCSV(r io.Reader) (*IOTable, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	// 1. Header row
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedTable)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformedTable, err)
	}
	// label column, at least one sector, one final demand column and output
	if len(header) < 4 {
		return nil, fmt.Errorf("%w: header has %d columns, need at least 4", ErrMalformedTable, len(header))
	}
	width := len(header)
	maxSectors := width - 3

	// 2. Rows whose labels line up with the intermediate columns
	var (
		labels []string
		rows   [][]string
		rest   []string
	)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row %d: %v", ErrMalformedTable, len(rows)+2, err)
		}

		// Skip completely empty lines
		if len(record) == 1 && record[0] == "" {
			continue
		}

		i := len(rows)
		if i >= maxSectors || record[0] != header[i+1] {
			rest = record
			break
		}
		if len(record) != width {
			return nil, fmt.Errorf("%w: row %d: expected %d columns, got %d", ErrMalformedTable, i+2, width, len(record))
		}
		labels = append(labels, record[0])
		rows = append(rows, record)
	}

	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("%w: no row label matches the first column label %q", ErrMalformedTable, header[1])
	}

	// Without a trailing row only a single final demand column is unambiguous
	if rest == nil && n < maxSectors {
		return nil, fmt.Errorf("%w: table ends after %d rows, header has room for %d sectors",
			ErrMalformedTable, n, maxSectors)
	}

	// Columns between the sectors and output are final demand, so no later
	// row may carry one of their labels.
	demandCols := make(map[string]int, width-2-n)
	for j := n + 1; j < width-1; j++ {
		if header[j] != "" {
			demandCols[header[j]] = j
		}
	}
	for line := n + 2; rest != nil; line++ {
		if j, ok := demandCols[rest[0]]; ok {
			return nil, fmt.Errorf("%w: row %d (%s) is out of order, column %d would be read as final demand",
				ErrMalformedTable, line, rest[0], j+1)
		}
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row %d: %v", ErrMalformedTable, line+1, err)
		}
		rest = record
	}

	// 3. Split each row into flows, final demand and output
	flows := make([]float64, 0, n*n)
	demand := make([]float64, n)
	output := make([]float64, n)

	for i, record := range rows {
		for j := 1; j < width; j++ {
			v, err := parseCell(record[j])
			if err != nil {
				return nil, fmt.Errorf("%w: row %d col %d (%s): %v", ErrMalformedTable, i+2, j+1, header[j], err)
			}
			switch {
			case j <= n:
				flows = append(flows, v)
			case j < width-1:
				demand[i] += v
			default:
				output[i] = v
			}
		}
	}

	return NewIOTable(labels, mat.NewDense(n, n, flows), demand, output)
}

func parseCell(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

// WriteICIOCSV writes a table in the layout ReadICIOCSV accepts, with a single
// final demand column and a trailing output row.
func WriteICIOCSV(w io.Writer, t *IOTable) error {
	writer := csv.NewWriter(w)

	n := t.Size()

	header := make([]string, 0, n+3)
	header = append(header, "LABEL")
	header = append(header, t.Labels...)
	header = append(header, "FINAL_DEMAND", "OUTPUT")
	if err := writer.Write(header); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		record := make([]string, 0, n+3)
		record = append(record, t.Labels[i])
		for j := 0; j < n; j++ {
			record = append(record, formatFloat(t.Flows.At(i, j)))
		}
		record = append(record, formatFloat(t.Demand[i]), formatFloat(t.Output[i]))
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	// Output row, as in the published tables
	record := make([]string, 0, n+3)
	record = append(record, "OUTPUT")
	for j := 0; j < n; j++ {
		record = append(record, formatFloat(t.Output[j]))
	}
	record = append(record, "", "")
	if err := writer.Write(record); err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

// SaveICIOCSV writes a table to path.
func SaveICIOCSV(path string, t *IOTable) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteICIOCSV(file, t); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FprintSummary prints the model summary
func FprintSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w, "         Leontief Model Summary      ")
	fmt.Fprintf(w, "Country-sectors (n):     %d\n", s.Sectors)
	fmt.Fprintf(w, "Countries:               %d\n", s.Countries)
	fmt.Fprintf(w, "Total output:            %.6g\n", s.TotalOutput)
	fmt.Fprintf(w, "Total final demand:      %.6g\n", s.TotalFinalDemand)
	fmt.Fprintf(w, "max |L d - x|:           %.6g\n", s.IdentityResidual)
	fmt.Fprintln(w, "=======================================")
}

// FprintEffects prints the topK country-sectors whose value falls the most
// relative to the unshocked baseline.
func FprintEffects(w io.Writer, m *Model, shockType ShockType, target int, magnitude float64, topK int) error {
	shocked, err := m.Propagate(shockType, target, magnitude)
	if err != nil {
		return err
	}
	base, err := m.Propagate(shockType, target, 0)
	if err != nil {
		return err
	}

	n := m.Table.Size()
	type row struct {
		idx        int
		base, diff float64
	}
	rows := make([]row, n)
	for i := 0; i < n; i++ {
		rows[i] = row{idx: i, base: base.AtVec(i), diff: base.AtVec(i) - shocked.AtVec(i)}
	}
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].diff > rows[b].diff })

	if topK <= 0 || topK > n {
		topK = n
	}

	t := m.Table.Target(target)
	fmt.Fprintf(w, "\n=== %s shock of %.0f%% to %s ===\n\n", shockType, magnitude*100, t.Label)
	fmt.Fprintf(w, "%-20s | %14s | %14s | %9s\n", "Country-sector", "Baseline", "Reduction", "Share")
	fmt.Fprintln(w, "------------------------------------------------------------------")
	for _, r := range rows[:topK] {
		share := 0.0
		if r.base != 0 {
			share = r.diff / r.base
		}
		fmt.Fprintf(w, "%-20s | %14.4f | %14.4f | %8.4f%%\n", m.Table.Labels[r.idx], r.base, r.diff, share*100)
	}

	effect, err := m.Effect(shockType, target, magnitude)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nAggregate effect: %.6f\n", effect)
	return nil
}
