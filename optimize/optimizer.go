// Package optimize finds maximum likelihood parameter estimates with
// derivative-free methods.
package optimize

import (
	"errors"
	"fmt"
	"math"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("optimize")

const (
	TINY  = 1e-10
	SMALL = 1e-6
	// ZERO_STEP is the initial simplex step for a zero coordinate.
	ZERO_STEP = 0.00025
	// MAX is the default upper bound of the parameters.
	MAX = 1e6
	// STALL is the number of simplex iterations without a likelihood
	// improvement larger than SMALL after which the search stops.
	STALL = 500
)

// Optimization methods.
const (
	METHOD_SIMPLEX = "simplex"
	METHOD_NM      = "nm"
)

// ErrInvalidGuess is returned when the starting point has a wrong
// number of parameters or non-finite values.
var ErrInvalidGuess = errors.New("invalid initial guess")

// ConvergenceError is returned when the optimizer fails to find a
// maximum.
type ConvergenceError struct {
	Method  string
	Message string
	// Params and LogLikelihood are the best point seen before the
	// failure, Params is nil if there is none.
	Params        []float64
	LogLikelihood float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: convergence failed: %s", e.Method, e.Message)
}

// Optimizer maximizes a function of a parameter vector.
type Optimizer interface {
	// Maximize finds a maximum of f starting from start.
	Maximize(f func([]float64) float64, start []float64) (*FitResult, error)
}

// Settings stores optimizer settings.
type Settings struct {
	// Method is either "simplex" or "nm".
	Method string `json:"method" yaml:"method"`
	// Start overrides the model default initial guess.
	Start []float64 `json:"start,omitempty" yaml:"start"`
	// Step is the initial simplex step relative to each coordinate.
	Step float64 `json:"step" yaml:"step"`
	// Iterations is the maximum number of iterations.
	Iterations int `json:"iterations" yaml:"iterations"`
	// FTol is the relative function tolerance.
	FTol float64 `json:"ftol" yaml:"ftol"`
	// Upper is the upper bound for every parameter. The gamma
	// likelihood of a sample with equal values grows without limit.
	Upper float64 `json:"upper" yaml:"upper"`
	// ReportPeriod sets how often (in iterations) the progress is
	// logged at the debug level.
	ReportPeriod int `json:"-" yaml:"-"`
}

// DefaultSettings returns default optimizer settings.
func DefaultSettings() Settings {
	return Settings{
		Method:       METHOD_SIMPLEX,
		Step:         0.05,
		Iterations:   20000,
		FTol:         TINY,
		Upper:        MAX,
		ReportPeriod: 100,
	}
}

// fillDefaults replaces zero values by defaults.
func (s Settings) fillDefaults() Settings {
	d := DefaultSettings()
	if s.Method == "" {
		s.Method = d.Method
	}
	if s.Step <= 0 {
		s.Step = d.Step
	}
	if s.Iterations <= 0 {
		s.Iterations = d.Iterations
	}
	if s.FTol <= 0 {
		s.FTol = d.FTol
	}
	if s.Upper <= 0 {
		s.Upper = d.Upper
	}
	if s.ReportPeriod <= 0 {
		s.ReportPeriod = d.ReportPeriod
	}
	return s
}

// NewOptimizer returns an optimizer from settings.
func NewOptimizer(s Settings) (Optimizer, error) {
	s = s.fillDefaults()
	switch s.Method {
	case METHOD_SIMPLEX:
		return NewDS(s), nil
	case METHOD_NM:
		return NewNM(s), nil
	}
	return nil, fmt.Errorf("Unknown optimization method: %s", s.Method)
}

// BaseOptimizer counts function evaluations and keeps the best point
// seen so far.
type BaseOptimizer struct {
	f         func([]float64) float64
	i         int
	calls     int
	maxL      float64
	maxLPar   []float64
	repPeriod int
}

func (o *BaseOptimizer) reset(f func([]float64) float64) {
	o.f = f
	o.i = 0
	o.calls = 0
	o.maxL = math.Inf(-1)
	o.maxLPar = nil
}

// eval evaluates the function. NaN is treated as -Inf, so the point
// is rejected.
func (o *BaseOptimizer) eval(x []float64) float64 {
	l := o.f(x)
	o.calls++
	if math.IsNaN(l) {
		l = math.Inf(-1)
	}
	if l > o.maxL {
		o.maxL = l
		o.maxLPar = append(o.maxLPar[:0], x...)
	}
	return l
}

// report logs the progress every repPeriod iterations.
func (o *BaseOptimizer) report(l, spread float64) {
	if o.repPeriod > 0 && o.i%o.repPeriod == 0 {
		log.Debugf("%d: L=%f (%f)", o.i, l, spread)
	}
}

// GetMaxL returns the maximum likelihood found.
func (o *BaseOptimizer) GetMaxL() float64 {
	return o.maxL
}

// GetMaxLParameters returns the parameters of the maximum likelihood
// found.
func (o *BaseOptimizer) GetMaxLParameters() []float64 {
	return o.maxLPar
}

// convergenceError returns a ConvergenceError with the best point
// seen so far.
func (o *BaseOptimizer) convergenceError(method, msg string) error {
	err := &ConvergenceError{
		Method:        method,
		Message:       msg,
		LogLikelihood: o.GetMaxL(),
	}
	if par := o.GetMaxLParameters(); par != nil {
		err.Params = append([]float64(nil), par...)
	}
	return err
}

// relativeSimplex creates a simplex around start. Every vertex but
// the first moves one coordinate by a fraction step of its magnitude,
// so the simplex follows the scale of each parameter.
func relativeSimplex(start []float64, step float64) [][]float64 {
	points := make([][]float64, len(start)+1)
	for i := range points {
		points[i] = make([]float64, len(start))
		copy(points[i], start)
	}
	for i := range start {
		if start[i] != 0 {
			points[i+1][i] = start[i] * (1 + step)
		} else {
			points[i+1][i] = ZERO_STEP
		}
	}
	return points
}
