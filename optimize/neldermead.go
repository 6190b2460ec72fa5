package optimize

import (
	"math"

	opt "gonum.org/v1/gonum/optimize"
)

// NM maximizes using the gonum Nelder-Mead implementation. It starts
// from the same relative simplex as DS.
type NM struct {
	BaseOptimizer
	step       float64
	ftol       float64
	iterations int
}

// NewNM creates a new Nelder-Mead optimizer.
func NewNM(s Settings) (nm *NM) {
	s = s.fillDefaults()
	nm = &NM{
		step:       s.Step,
		ftol:       s.FTol,
		iterations: s.Iterations,
	}
	nm.repPeriod = s.ReportPeriod
	return
}

func (nm *NM) fail(msg string) error {
	return nm.convergenceError(METHOD_NM, msg)
}

// Maximize runs Nelder-Mead on the negated function.
func (nm *NM) Maximize(f func([]float64) float64, start []float64) (*FitResult, error) {
	nm.reset(f)
	vertices := relativeSimplex(start, nm.step)
	values := make([]float64, len(vertices))
	for i, v := range vertices {
		values[i] = -nm.eval(v)
	}
	if math.IsInf(nm.maxL, -1) {
		return nil, nm.fail("starting simplex is outside of the parameter domain")
	}

	problem := opt.Problem{
		Func: func(x []float64) float64 {
			return -nm.eval(x)
		},
	}
	settings := &opt.Settings{
		MajorIterations: nm.iterations,
		Converger: &opt.FunctionConverge{
			Absolute:   nm.ftol,
			Relative:   nm.ftol,
			Iterations: 100,
		},
	}
	method := &opt.NelderMead{
		InitialVertices: vertices,
		InitialValues:   values,
	}

	res, err := opt.Minimize(problem, start, settings, method)
	if err != nil {
		return nil, nm.fail(err.Error())
	}
	nm.i = res.MajorIterations
	switch res.Status {
	case opt.FunctionConvergence, opt.MethodConverge, opt.Success:
	default:
		return nil, nm.fail(res.Status.String())
	}
	if math.IsInf(res.F, 0) || math.IsNaN(res.F) {
		return nil, nm.fail("non-finite likelihood at optimum")
	}
	par := make([]float64, len(res.X))
	copy(par, res.X)
	log.Debugf("Finished Nelder-Mead after %d iterations, %d evaluations, L=%f", nm.i, nm.calls, -res.F)
	return &FitResult{
		Params:      par,
		Converged:   true,
		Message:     res.Status.String(),
		Iterations:  nm.i,
		Evaluations: nm.calls,
	}, nil
}
