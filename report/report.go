// Package report renders figures of the data, the model fits and the
// bootstrap ensembles.
package report

import (
	"fmt"

	"github.com/op/go-logging"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"bitbucket.org/Davydov/mtcat/bootstrap"
	"bitbucket.org/Davydov/mtcat/data"
	"bitbucket.org/Davydov/mtcat/dist"
	"bitbucket.org/Davydov/mtcat/model"
)

var log = logging.MustGetLogger("report")

// Figure size.
var (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

const (
	timeLabel = "time to catastrophe (s)"
	ecdfLabel = "ECDF"
)

// Fit is a model with estimated parameters.
type Fit struct {
	Model  model.Model
	Params []float64
}

// CDF returns the cumulative distribution function of the fitted
// model.
func (f Fit) CDF() func(float64) float64 {
	a, b := f.Params[0], f.Params[1]
	if f.Model.Kind() == model.KindGamma {
		return func(t float64) float64 { return dist.GammaCDF(t, a, b) }
	}
	return func(t float64) float64 { return dist.StoryCDF(t, a, b) }
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Legend.Top = false
	p.Legend.Left = false
	return p
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(Width, Height, path); err != nil {
		return err
	}
	log.Infof("Figure saved to %s", path)
	return nil
}

// ecdfPoints returns the points of the empirical distribution
// function.
func ecdfPoints(values []float64) plotter.XYs {
	x, y := dist.ECDF(values)
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}

// addECDF adds an ECDF scatter with the i-th default style.
func addECDF(p *plot.Plot, i int, name string, values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("no values for %s", name)
	}
	s, err := plotter.NewScatter(ecdfPoints(values))
	if err != nil {
		return err
	}
	s.Color = plotutil.Color(i)
	s.Shape = plotutil.Shape(i)
	s.Radius = vg.Points(1.5)
	p.Add(s)
	p.Legend.Add(name, s)
	return nil
}

// DataECDF plots the ECDFs of every concentration.
func DataECDF(g data.Grouped, path string) error {
	p := newPlot("Microtubule catastrophe time by tubulin concentration", timeLabel, ecdfLabel)
	for i, label := range g.Labels() {
		if err := addECDF(p, i, label+" uM", g[label]); err != nil {
			return err
		}
	}
	return save(p, path)
}

// FitCDF plots the data ECDF with the CDFs of the fitted models.
func FitCDF(s data.Sample, fits []Fit, path string) error {
	p := newPlot("Microtubule time to catastrophe", timeLabel, ecdfLabel)
	if err := addECDF(p, 0, "data", s); err != nil {
		return err
	}
	for i, f := range fits {
		fn := plotter.NewFunction(f.CDF())
		fn.Samples = 200
		fn.Color = plotutil.Color(i + 1)
		fn.Dashes = plotutil.Dashes(i)
		fn.Width = vg.Points(2)
		p.Add(fn)
		p.Legend.Add(fmt.Sprintf("%s %.4g", f.Model.Kind(), f.Params), fn)
	}
	return save(p, path)
}

// AICECDF plots the ECDFs of bootstrap AIC values, one per model and
// group.
func AICECDF(e *bootstrap.Ensemble, title, path string) error {
	p := newPlot(title, "AIC", ecdfLabel)
	i := 0
	for _, gs := range e.Summary() {
		name := gs.Model
		if gs.Group != "" {
			name = fmt.Sprintf("%s %s uM", gs.Model, gs.Group)
		}
		if err := addECDF(p, i, name, e.AICs(gs.Model, gs.Group)); err != nil {
			return err
		}
		i++
	}
	return save(p, path)
}

// ParamECDF plots the ECDFs of the i-th parameter for every group.
func ParamECDF(e *bootstrap.Ensemble, i int, path string) error {
	if i < 0 || i >= len(e.Columns) {
		return fmt.Errorf("no parameter %d in %v", i, e.Columns)
	}
	p := newPlot("Distribution of "+e.Columns[i]+" values", e.Columns[i], ecdfLabel)
	for j, group := range e.Groups() {
		if err := addECDF(p, j, group+" uM", e.Param(e.Model, group, i)); err != nil {
			return err
		}
	}
	return save(p, path)
}

// ParamScatter plots the first parameter against the second one for
// every group.
func ParamScatter(e *bootstrap.Ensemble, path string) error {
	if len(e.Columns) < 2 {
		return fmt.Errorf("need two parameters, got %v", e.Columns)
	}
	p := newPlot(e.Columns[0]+" vs "+e.Columns[1], e.Columns[0], e.Columns[1])
	for j, group := range e.Groups() {
		x := e.Param(e.Model, group, 0)
		y := e.Param(e.Model, group, 1)
		pts := make(plotter.XYs, len(x))
		for k := range pts {
			pts[k].X, pts[k].Y = x[k], y[k]
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.Color = plotutil.Color(j)
		s.Shape = plotutil.Shape(j)
		s.Radius = vg.Points(1.5)
		p.Add(s)
		p.Legend.Add(group+" uM", s)
	}
	return save(p, path)
}
