// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Reproducible Leontief Demand-Shock Quantiles
// Class: 02-613 at Caregie Mellon University

package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"Leontief_Shock_Project/shockrun/internal/experiment"
)

const histogramBins = 15

// WriteHistogram saves one histogram per shock size. With several
// replications it shows the spread of the replication quantiles; with a
// single replication it shows the raw effects of every draw.
func WriteHistogram(path string, result *experiment.Result) error {
	if len(result.Magnitudes) == 0 {
		return fmt.Errorf("no magnitudes to plot")
	}

	p := plot.New()
	perDraw := result.Options.Replications == 1
	if perDraw {
		p.Title.Text = "Effect of random shocks by shock size"
		p.X.Label.Text = "Effect"
	} else {
		p.Title.Text = fmt.Sprintf("Effect of different shock sizes on upper %s%% quantile", upperTail(result.Options.Quantile))
		p.X.Label.Text = "Effect of different shock size"
	}
	p.Y.Label.Text = "Frequency"

	for i, mr := range result.Magnitudes {
		var values plotter.Values
		if perDraw {
			values = append(values, mr.Replications[0].Effects...)
		} else {
			for _, r := range mr.Replications {
				values = append(values, r.Quantile)
			}
		}
		if len(values) == 0 {
			return fmt.Errorf("magnitude %v: nothing to plot", mr.Magnitude)
		}

		h, err := plotter.NewHist(values, histogramBins)
		if err != nil {
			return fmt.Errorf("histogram for magnitude %v: %w", mr.Magnitude, err)
		}
		h.FillColor = plotutil.Color(i)
		p.Add(h)
		p.Legend.Add(fmt.Sprintf("%.0f%% shock size", mr.Magnitude*100), h)
	}

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
