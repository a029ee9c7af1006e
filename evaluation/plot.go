package evaluation

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/meterlab/farecast/dataset"
	"github.com/meterlab/farecast/fare"
	"github.com/meterlab/farecast/pkg/errors"
)

// SavePredictionPlot writes a predicted-vs-actual scatter for the given trips
// as a PNG, with the y=x diagonal for reference. The file format follows the
// path extension.
func SavePredictionPlot(m *fare.Model, trips []dataset.Trip, path string) error {
	if len(trips) == 0 {
		return errors.NewModelError("evaluation.SavePredictionPlot", "empty test set", errors.ErrEmptyData)
	}

	pts := make(plotter.XYs, len(trips))
	maxFare := 0.0
	for i, trip := range trips {
		estimate, err := fare.Predict(m, trip)
		if err != nil {
			return err
		}
		pts[i].X = trip.FareAmount
		pts[i].Y = estimate
		maxFare = math.Max(maxFare, math.Max(trip.FareAmount, estimate))
	}

	p := plot.New()
	p.Title.Text = "Predicted vs Actual Fare"
	p.X.Label.Text = "Actual Fare"
	p.Y.Label.Text = "Predicted Fare"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "building scatter")
	}
	scatter.Color = color.RGBA{B: 255, A: 255, R: 50, G: 50}
	p.Add(scatter)

	diagonal, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: maxFare, Y: maxFare}})
	if err != nil {
		return errors.Wrap(err, "building diagonal")
	}
	diagonal.Color = color.RGBA{R: 255, A: 255}
	diagonal.LineStyle.Width = vg.Points(1)
	p.Add(diagonal)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrap(err, "saving plot")
	}
	return nil
}
