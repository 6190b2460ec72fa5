package optimize

import (
	"fmt"
	"math"

	"bitbucket.org/Davydov/mtcat/data"
	"bitbucket.org/Davydov/mtcat/model"
)

// FitResult is the result of a maximum likelihood fit.
type FitResult struct {
	// Params are the maximum likelihood estimates.
	Params []float64 `json:"params"`
	// LogLikelihood is the log likelihood at Params.
	LogLikelihood float64 `json:"logLikelihood"`
	// Converged is true if the optimizer converged.
	Converged bool `json:"converged"`
	// Message is the optimizer diagnostic message.
	Message string `json:"message"`
	// Iterations is the number of optimizer iterations.
	Iterations int `json:"iterations"`
	// Evaluations is the number of likelihood evaluations.
	Evaluations int `json:"evaluations"`
	// AtBound is true if some parameter is at the upper bound.
	AtBound bool `json:"atBound,omitempty"`
}

// AIC returns the Akaike information criterion of the fit.
func (r *FitResult) AIC() float64 {
	return model.AIC(r.LogLikelihood, len(r.Params))
}

// Fit finds the maximum likelihood parameters of model m for the
// sample. The starting point is settings.Start or the model default.
func Fit(m model.Model, s data.Sample, settings Settings) (*FitResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	start := settings.Start
	if start == nil {
		start = m.DefaultGuess()
	}
	if len(start) != m.NumParams() {
		return nil, fmt.Errorf("%w: %d values for %d parameters", ErrInvalidGuess, len(start), m.NumParams())
	}
	for _, v := range start {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGuess, start)
		}
	}

	settings = settings.fillDefaults()
	o, err := NewOptimizer(settings)
	if err != nil {
		return nil, err
	}
	x := make([]float64, len(start))
	copy(x, start)
	res, err := o.Maximize(func(par []float64) float64 {
		for _, v := range par {
			if v > settings.Upper {
				return math.Inf(-1)
			}
		}
		return m.LogLikelihood(par, s)
	}, x)
	if err != nil {
		return nil, err
	}
	res.LogLikelihood = m.LogLikelihood(res.Params, s)
	if math.IsInf(res.LogLikelihood, 0) || math.IsNaN(res.LogLikelihood) {
		return nil, &ConvergenceError{Method: settings.Method, Message: "non-finite likelihood at optimum"}
	}
	for _, v := range res.Params {
		if v > settings.Upper*(1-SMALL) {
			res.AtBound = true
			res.Message = "optimization converged at the parameter bound"
			log.Debugf("Parameters %v are at the bound %g", res.Params, settings.Upper)
		}
	}
	return res, nil
}
