package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"bitbucket.org/Davydov/mtcat/data"
	"bitbucket.org/Davydov/mtcat/model"
	"bitbucket.org/Davydov/mtcat/optimize"
)

// Record is the fit of a single bootstrap sample.
type Record struct {
	// Group is the concentration label, empty for a single sample.
	Group string `json:"group,omitempty"`
	// Model is the model identifier.
	Model string `json:"model"`
	// Params are the maximum likelihood estimates.
	Params []float64 `json:"params"`
	// LogLikelihood is the maximum log likelihood.
	LogLikelihood float64 `json:"logLikelihood"`
	// AIC is -2*LogLikelihood + 2*k.
	AIC float64 `json:"aic"`
}

// NewRecord creates a record from a fit of model m.
func NewRecord(m model.Model, res *optimize.FitResult, group string) Record {
	par := make([]float64, len(res.Params))
	copy(par, res.Params)
	return Record{
		Group:         group,
		Model:         m.Kind().String(),
		Params:        par,
		LogLikelihood: res.LogLikelihood,
		AIC:           model.AIC(res.LogLikelihood, m.NumParams()),
	}
}

// Ensemble is an ordered collection of bootstrap records.
type Ensemble struct {
	// Model is the model identifier, empty if the records come
	// from different models.
	Model string `json:"model"`
	// Columns are the parameter column names.
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
	// Skipped is the number of dropped iterations.
	Skipped int `json:"skipped"`
	// Retried is the number of refits.
	Retried int `json:"retried"`
}

// Len returns the number of records.
func (e *Ensemble) Len() int {
	return len(e.Records)
}

// BootstrapAIC fits model m to settings.Iterations bootstrap samples
// of s and returns the ensemble of AIC records.
func BootstrapAIC(rng *rand.Rand, m model.Model, s data.Sample, settings Settings) (*Ensemble, error) {
	return run(rng, m, s, "", settings)
}

// CompareConcentrations runs BootstrapAIC for every group in the
// natural label order. Records are tagged with the group label and
// concatenated.
func CompareConcentrations(rng *rand.Rand, m model.Model, g data.Grouped, settings Settings) (*Ensemble, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	settings, err := settings.check()
	if err != nil {
		return nil, err
	}
	e := &Ensemble{
		Model:   m.Kind().String(),
		Columns: model.ColumnNames(m),
		Records: make([]Record, 0, len(g)*settings.Iterations),
	}
	for _, label := range g.Labels() {
		ge, err := run(rng, m, g[label], label, settings)
		if err != nil {
			return nil, fmt.Errorf("concentration %s: %w", label, err)
		}
		e.Records = append(e.Records, ge.Records...)
		e.Skipped += ge.Skipped
		e.Retried += ge.Retried
	}
	return e, nil
}

// outcome of a single iteration.
type outcome struct {
	rec     Record
	skipped bool
	retried int
}

func run(rng *rand.Rand, m model.Model, s data.Sample, group string, settings Settings) (*Ensemble, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	settings, err := settings.check()
	if err != nil {
		return nil, err
	}

	n := settings.Iterations
	// Seeds are drawn before dispatch, so the result does not
	// depend on the number of workers.
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	log.Debugf("%s %s: %d iterations, %d workers", m.Kind(), group, n, settings.Workers)
	start := time.Now()
	outcomes := make([]outcome, n)
	var done int64

	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(settings.Workers)
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			o, err := iterate(m, s, group, seeds[i], settings)
			if err != nil {
				return fmt.Errorf("iteration %d: %w", i, err)
			}
			outcomes[i] = o
			if c := atomic.AddInt64(&done, 1); settings.Progress && c%int64(settings.ReportPeriod) == 0 {
				log.Infof("%s %s: %d/%d iterations (%v)", m.Kind(), group, c, n, time.Since(start))
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	e := &Ensemble{
		Model:   m.Kind().String(),
		Columns: model.ColumnNames(m),
		Records: make([]Record, 0, n),
	}
	for _, o := range outcomes {
		e.Retried += o.retried
		if o.skipped {
			e.Skipped++
			continue
		}
		e.Records = append(e.Records, o.rec)
	}
	if e.Skipped > 0 {
		log.Warningf("%s %s: %d iterations skipped", m.Kind(), group, e.Skipped)
	}
	log.Debugf("%s %s: finished in %v", m.Kind(), group, time.Since(start))
	return e, nil
}

// iterate resamples and fits a single bootstrap sample.
func iterate(m model.Model, s data.Sample, group string, seed int64, settings Settings) (o outcome, err error) {
	rng := rand.New(rand.NewSource(seed))
	bs, err := Draw(rng, s)
	if err != nil {
		return
	}

	fs := settings.Fit
	res, err := optimize.Fit(m, bs, fs)
	var cerr *optimize.ConvergenceError
	if err != nil && errors.As(err, &cerr) {
		switch settings.OnFailure {
		case SKIP:
			log.Debugf("skipping sample: %v", err)
			return outcome{skipped: true}, nil
		case RETRY:
			guess := fs.Start
			if guess == nil {
				guess = m.DefaultGuess()
			}
			for o.retried < settings.Retries && errors.As(err, &cerr) {
				fs.Start = perturb(rng, guess)
				o.retried++
				log.Debugf("retry %d from %v: %v", o.retried, fs.Start, err)
				res, err = optimize.Fit(m, bs, fs)
			}
		}
	}
	if err != nil {
		return
	}
	o.rec = NewRecord(m, res, group)
	return
}

// perturb multiplies every value by a random factor in [0.5, 1.5).
func perturb(rng *rand.Rand, x []float64) []float64 {
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = v * (0.5 + rng.Float64())
	}
	return y
}
