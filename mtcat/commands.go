package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"bitbucket.org/Davydov/mtcat/archive"
	"bitbucket.org/Davydov/mtcat/bootstrap"
	"bitbucket.org/Davydov/mtcat/data"
	"bitbucket.org/Davydov/mtcat/dist"
	"bitbucket.org/Davydov/mtcat/model"
	"bitbucket.org/Davydov/mtcat/optimize"
	"bitbucket.org/Davydov/mtcat/report"
)

// Output stores output destinations. Empty values disable the
// output.
type Output struct {
	// PNG is the figures directory.
	PNG string
	// DB is the archive file.
	DB string
	// FromDB enables loading stored ensembles.
	FromDB bool
	// CSV is the bootstrap records file.
	CSV string
}

// figure returns the figure path, creating the directory.
func (o Output) figure(name string) (string, error) {
	if err := os.MkdirAll(o.PNG, 0755); err != nil {
		return "", err
	}
	return filepath.Join(o.PNG, name), nil
}

// readData reads a tidy table and groups it by concentration.
func readData(fn string) (data.Grouped, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := data.ReadTidy(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	g, err := data.Group(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	log.Infof("Read %d measurements, %d concentrations", g.Len(), len(g))
	return g, nil
}

// selectSample returns the sample of a single concentration.
func selectSample(g data.Grouped, conc string) (data.Sample, error) {
	s, ok := g[conc]
	if !ok {
		return nil, fmt.Errorf("%w: no concentration %s (have %s)",
			data.ErrInvalidInput, conc, strings.Join(g.Labels(), ", "))
	}
	log.Infof("Concentration %s: %d measurements", conc, len(s))
	return s, nil
}

// models returns models given a name, "both" means all of them.
func models(name string) ([]model.Model, error) {
	if name == "both" {
		return []model.Model{model.Gamma{}, model.TwoRateStory{}}, nil
	}
	m, err := model.ByName(name)
	if err != nil {
		return nil, err
	}
	return []model.Model{m}, nil
}

func writeCSV(fn string, e *bootstrap.Ensemble) error {
	var w io.Writer = os.Stdout
	if fn != "-" {
		f, err := os.Create(fn)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := e.WriteCSV(w); err != nil {
		return err
	}
	log.Infof("Wrote %d records to %s", e.Len(), fn)
	return nil
}

// runTidy converts the source table into the tidy format.
func runTidy(in string, skip int, out string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()
	rows, err := data.Melt(f, skip)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	var w io.Writer = os.Stdout
	if out != "" {
		o, err := os.Create(out)
		if err != nil {
			return err
		}
		defer o.Close()
		w = o
	}
	log.Infof("Writing %d rows", len(rows))
	return data.WriteTidy(w, rows)
}

// runECDF logs per-concentration statistics and plots the ECDFs.
func runECDF(in string, out Output) error {
	g, err := readData(in)
	if err != nil {
		return err
	}
	for _, label := range g.Labels() {
		s := g[label].Copy()
		sort.Float64s(s)
		log.Noticef("%s uM: n=%d, mean=%.1f, median=%.1f",
			label, len(s), stat.Mean(s, nil), stat.Quantile(0.5, stat.Empirical, s, nil))
	}
	if out.PNG == "" {
		return nil
	}
	fn, err := out.figure("figure_1.png")
	if err != nil {
		return err
	}
	return report.DataECDF(g, fn)
}

// fitModels fits every model to the sample. It also returns the
// medians of the fitted distributions where they have a closed form.
func fitModels(ms []model.Model, s data.Sample, opts Options) ([]report.Fit, map[string]*optimize.FitResult, map[string]float64, error) {
	fits := make([]report.Fit, 0, len(ms))
	results := make(map[string]*optimize.FitResult, len(ms))
	medians := make(map[string]float64)
	for _, m := range ms {
		res, err := optimize.Fit(m, s, opts.fitSettings(m))
		var cerr *optimize.ConvergenceError
		if errors.As(err, &cerr) && cerr.Params != nil {
			log.Warningf("%s: best point seen %v, lnL=%.4f", m.Kind(), cerr.Params, cerr.LogLikelihood)
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%s: %w", m.Kind(), err)
		}
		if res.AtBound {
			log.Warningf("%s: %s", m.Kind(), res.Message)
		}
		names := m.ParamNames()
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = fmt.Sprintf("%s=%.6g", name, res.Params[i])
		}
		log.Noticef("%s: %s, lnL=%.4f, AIC=%.4f", m.Kind(), strings.Join(parts, ", "), res.LogLikelihood, res.AIC())
		if m.Kind() == model.KindGamma {
			med := dist.QuantileGamma(0.5, res.Params[0], res.Params[1])
			log.Noticef("gamma: median time to catastrophe %.1f s", med)
			medians[m.Kind().String()] = med
		}
		fits = append(fits, report.Fit{Model: m, Params: res.Params})
		results[m.Kind().String()] = res
	}
	return fits, results, medians, nil
}

// runFit fits the models to a single concentration.
func runFit(in, modelName string, opts Options, out Output, summary *RunSummary) error {
	g, err := readData(in)
	if err != nil {
		return err
	}
	s, err := selectSample(g, opts.Concentration)
	if err != nil {
		return err
	}
	ms, err := models(modelName)
	if err != nil {
		return err
	}
	fits, results, medians, err := fitModels(ms, s, opts)
	if err != nil {
		return err
	}
	summary.Concentration = opts.Concentration
	summary.Fits = results
	summary.Medians = medians

	if out.PNG == "" {
		return nil
	}
	for _, f := range fits {
		name := "figure_2.png"
		if f.Model.Kind() == model.KindStory {
			name = "figure_3.png"
		}
		fn, err := out.figure(name)
		if err != nil {
			return err
		}
		if err := report.FitCDF(s, []report.Fit{f}, fn); err != nil {
			return err
		}
	}
	if len(fits) > 1 {
		fn, err := out.figure("figure_4.png")
		if err != nil {
			return err
		}
		return report.FitCDF(s, fits, fn)
	}
	return nil
}

// ensemble loads the ensemble from the archive or computes it.
func ensemble(a *archive.Archive, out Output, m model.Model, label string, compute func() (*bootstrap.Ensemble, error)) (*bootstrap.Ensemble, error) {
	if a != nil && out.FromDB {
		entry, err := a.Load(m.Kind().String(), label)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			return entry.Ensemble, nil
		}
		log.Warningf("No stored ensemble %s/%s, computing", m.Kind(), label)
		if labels, err := storedLabels(a, m.Kind().String()); err == nil && len(labels) > 0 {
			log.Warningf("Stored %s ensembles: %s", m.Kind(), strings.Join(labels, ", "))
		}
	}
	e, err := compute()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Kind(), err)
	}
	return e, nil
}

// storedLabels returns labels of the stored ensembles of a model.
func storedLabels(a *archive.Archive, modelName string) (labels []string, err error) {
	keys, err := a.Keys()
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if m, l := archive.SplitKey(k); m == modelName {
			labels = append(labels, l)
		}
	}
	return
}

func openArchive(out Output) (*archive.Archive, error) {
	if out.DB == "" {
		if out.FromDB {
			log.Warning("No database specified, ignoring --from-db")
		}
		return nil, nil
	}
	return archive.Open(out.DB)
}

// runAIC compares the models on a single concentration with bootstrap
// AIC.
func runAIC(rng *rand.Rand, in string, opts Options, out Output, summary *RunSummary) error {
	g, err := readData(in)
	if err != nil {
		return err
	}
	s, err := selectSample(g, opts.Concentration)
	if err != nil {
		return err
	}
	a, err := openArchive(out)
	if err != nil {
		return err
	}
	if a != nil {
		defer a.Close()
	}
	summary.Concentration = opts.Concentration

	ms, _ := models("both")
	es := make([]*bootstrap.Ensemble, len(ms))
	summary.MeanAIC = make(map[string]float64, len(ms))
	for i, m := range ms {
		m := m
		log.Noticef("Bootstrapping %s model, %d samples", m.Kind(), opts.Iterations)
		es[i], err = ensemble(a, out, m, opts.Concentration, func() (*bootstrap.Ensemble, error) {
			e, err := bootstrap.BootstrapAIC(rng, m, s, opts.settings(m))
			if err == nil && a != nil {
				err = a.Save(opts.Concentration, opts.Seed, e)
			}
			return e, err
		})
		if err != nil {
			return err
		}
		summary.addEnsemble(es[i])
		mean := es[i].MeanAIC(m.Kind().String(), "")
		if finite(mean) {
			summary.MeanAIC[m.Kind().String()] = mean
		}
		log.Noticef("%s: mean AIC=%.4f (%d samples)", m.Kind(), mean, es[i].Len())
	}

	ag, okg := summary.MeanAIC["gamma"]
	as, oks := summary.MeanAIC["story"]
	if okg && oks {
		wg, ws := bootstrap.CompareAIC(ag, as)
		summary.Weights = map[string]float64{"gamma": wg, "story": ws}
		log.Noticef("Akaike weights: gamma=%.4g, story=%.4g", wg, ws)
	}

	all := bootstrap.Concat(es...)
	if out.CSV != "" {
		if err := writeCSV(out.CSV, all); err != nil {
			return err
		}
	}
	if out.PNG == "" {
		return nil
	}
	fn, err := out.figure("figure_5.png")
	if err != nil {
		return err
	}
	return report.AICECDF(all, "AIC values for gamma and story distribution", fn)
}

// compareLabel is the archive label of the all-concentrations
// ensemble.
const compareLabel = "concentrations"

// runCompare bootstraps the model parameters for every concentration.
func runCompare(rng *rand.Rand, in, modelName string, opts Options, out Output, summary *RunSummary) error {
	g, err := readData(in)
	if err != nil {
		return err
	}
	m, err := model.ByName(modelName)
	if err != nil {
		return err
	}
	a, err := openArchive(out)
	if err != nil {
		return err
	}
	if a != nil {
		defer a.Close()
	}

	log.Noticef("Bootstrapping %s model, %d concentrations, %d samples", m.Kind(), len(g), opts.Iterations)
	e, err := ensemble(a, out, m, compareLabel, func() (*bootstrap.Ensemble, error) {
		e, err := bootstrap.CompareConcentrations(rng, m, g, opts.settings(m))
		if err == nil && a != nil {
			err = a.Save(compareLabel, opts.Seed, e)
		}
		return e, err
	})
	if err != nil {
		return err
	}
	summary.addEnsemble(e)
	for _, gs := range e.Summary() {
		parts := make([]string, 0, len(e.Columns))
		for _, name := range e.Columns {
			iv := gs.Params[name]
			parts = append(parts, fmt.Sprintf("%s=%.4g [%.4g, %.4g]", name, iv.Mean, iv.Low, iv.High))
		}
		log.Noticef("%s uM: %s", gs.Group, strings.Join(parts, ", "))
	}

	if out.CSV != "" {
		if err := writeCSV(out.CSV, e); err != nil {
			return err
		}
	}
	if out.PNG == "" {
		return nil
	}
	for i, name := range []string{"figure_6a.png", "figure_6b.png"} {
		fn, err := out.figure(name)
		if err != nil {
			return err
		}
		if err := report.ParamECDF(e, i, fn); err != nil {
			return err
		}
	}
	fn, err := out.figure("figure_7.png")
	if err != nil {
		return err
	}
	return report.ParamScatter(e, fn)
}
