package optimize

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/mtcat/data"
	"bitbucket.org/Davydov/mtcat/model"
)

var sample = data.Sample{10, 20, 30, 40, 50}

func init() {
	logging.SetLevel(logging.WARNING, "optimize")
}

// checkLocalMax checks that small moves in every coordinate do not
// increase the likelihood.
func checkLocalMax(tst *testing.T, m model.Model, res *FitResult) {
	for i := range res.Params {
		for _, f := range []float64{0.99, 1.01} {
			par := append([]float64(nil), res.Params...)
			par[i] *= f
			if l := m.LogLikelihood(par, sample); l > res.LogLikelihood+1e-6 {
				tst.Errorf("%v: L(%v)=%v > L(%v)=%v", m.Kind(), par, l, res.Params, res.LogLikelihood)
			}
		}
	}
}

func TestFitGamma(tst *testing.T) {
	for _, method := range []string{METHOD_SIMPLEX, METHOD_NM} {
		s := DefaultSettings()
		s.Method = method
		res, err := Fit(model.Gamma{}, sample, s)
		if err != nil {
			tst.Fatal(method, ": error:", err)
		}
		alpha, beta := res.Params[0], res.Params[1]
		tst.Logf("%s: alpha=%v, beta=%v, L=%v, iter=%d", method, alpha, beta, res.LogLikelihood, res.Iterations)
		if alpha <= 0 || beta <= 0 {
			tst.Error(method, ": non-positive estimates", res.Params)
		}
		// the gamma MLE satisfies alpha/beta = mean
		if math.Abs(alpha/beta-30)/30 > 1e-3 {
			tst.Error(method, ": expected alpha/beta=30, got", alpha/beta)
		}
		if math.IsInf(res.LogLikelihood, 0) || math.IsNaN(res.LogLikelihood) {
			tst.Error(method, ": non-finite likelihood", res.LogLikelihood)
		}
		if math.Abs(res.AIC()-(-2*res.LogLikelihood+4)) > 1e-9 {
			tst.Error(method, ": wrong AIC", res.AIC())
		}
		if !res.Converged {
			tst.Error(method, ": not converged")
		}
		checkLocalMax(tst, model.Gamma{}, res)
	}
}

func TestFitStory(tst *testing.T) {
	g, err := Fit(model.Gamma{}, sample, DefaultSettings())
	if err != nil {
		tst.Fatal("Error:", err)
	}
	res, err := Fit(model.TwoRateStory{}, sample, DefaultSettings())
	if err != nil {
		tst.Fatal("Error:", err)
	}
	b1, b2 := res.Params[0], res.Params[1]
	tst.Logf("beta1=%v, beta2=%v, L=%v, iter=%d", b1, b2, res.LogLikelihood, res.Iterations)
	if b1 <= 0 || b2 <= 0 || b1 == b2 {
		tst.Error("Expected two distinct positive rates, got", res.Params)
	}
	if math.IsInf(res.LogLikelihood, 0) || math.IsNaN(res.LogLikelihood) {
		tst.Error("Non-finite likelihood", res.LogLikelihood)
	}
	// the story model is nested in the gamma family closure
	if res.LogLikelihood > g.LogLikelihood+1e-6 {
		tst.Error("Story likelihood is larger than gamma", res.LogLikelihood, g.LogLikelihood)
	}
	// mean waiting time matches the sample mean
	if m := 1/b1 + 1/b2; math.Abs(m-30)/30 > 0.02 {
		tst.Error("Expected mean time 30, got", m)
	}
}

func TestFitDeterministic(tst *testing.T) {
	for _, m := range []model.Model{model.Gamma{}, model.TwoRateStory{}} {
		r1, err1 := Fit(m, sample, DefaultSettings())
		r2, err2 := Fit(m, sample, DefaultSettings())
		if err1 != nil || err2 != nil {
			tst.Fatal("Error:", err1, err2)
		}
		if r1.Params[0] != r2.Params[0] || r1.Params[1] != r2.Params[1] || r1.LogLikelihood != r2.LogLikelihood {
			tst.Error("Non-deterministic fit:", r1, r2)
		}
	}
}

func TestFitScale(tst *testing.T) {
	// rescaling time rescales the rate only
	scaled := make(data.Sample, len(sample))
	for i, v := range sample {
		scaled[i] = v * 1000
	}
	r1, err := Fit(model.Gamma{}, sample, DefaultSettings())
	if err != nil {
		tst.Fatal("Error:", err)
	}
	s := DefaultSettings()
	s.Start = []float64{2.5, 0.00001}
	r2, err := Fit(model.Gamma{}, scaled, s)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if math.Abs(r1.Params[0]-r2.Params[0])/r1.Params[0] > 1e-3 {
		tst.Error("Shape depends on scale:", r1.Params[0], r2.Params[0])
	}
	if math.Abs(r1.Params[1]-1000*r2.Params[1])/r1.Params[1] > 1e-3 {
		tst.Error("Rate does not follow scale:", r1.Params[1], r2.Params[1])
	}
}

func TestFitErrors(tst *testing.T) {
	if _, err := Fit(model.Gamma{}, data.Sample{}, DefaultSettings()); !errors.Is(err, data.ErrInvalidInput) {
		tst.Error("Expected ErrInvalidInput, got", err)
	}

	s := DefaultSettings()
	s.Start = []float64{1}
	if _, err := Fit(model.Gamma{}, sample, s); !errors.Is(err, ErrInvalidGuess) {
		tst.Error("Expected ErrInvalidGuess, got", err)
	}

	for _, method := range []string{METHOD_SIMPLEX, METHOD_NM} {
		s = DefaultSettings()
		s.Method = method
		s.Start = []float64{-1, -1}
		_, err := Fit(model.Gamma{}, sample, s)
		var cerr *ConvergenceError
		if !errors.As(err, &cerr) {
			tst.Fatal(method, ": expected ConvergenceError, got", err)
		}
		if cerr.Method != method || cerr.Message == "" || cerr.Params != nil {
			tst.Error("Unexpected error content:", cerr)
		}
	}

	s = DefaultSettings()
	s.Iterations = 3
	_, err := Fit(model.TwoRateStory{}, sample, s)
	var cerr *ConvergenceError
	if !errors.As(err, &cerr) {
		tst.Fatal("Expected ConvergenceError for iteration limit, got", err)
	}
	if len(cerr.Params) != 2 || math.IsInf(cerr.LogLikelihood, 0) {
		tst.Error("Expected the best point seen, got", cerr.Params, cerr.LogLikelihood)
	}

	s = DefaultSettings()
	s.Method = "lbfgsb"
	if _, err := Fit(model.Gamma{}, sample, s); err == nil {
		tst.Error("Expected error for unknown method")
	}
}

func TestRelativeSimplex(tst *testing.T) {
	p := relativeSimplex([]float64{2, 0}, 0.05)
	if len(p) != 3 {
		tst.Fatal("Expected 3 points, got", len(p))
	}
	if p[1][0] != 2.1 || p[1][1] != 0 || p[2][0] != 2 || p[2][1] != ZERO_STEP {
		tst.Error("Unexpected simplex", p)
	}
}

func TestFitEqualValues(tst *testing.T) {
	// gamma likelihood is unbounded, the fit stops at the bound
	res, err := Fit(model.Gamma{}, data.Sample{5, 5, 5}, DefaultSettings())
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if !res.AtBound {
		tst.Error("Expected parameters at the bound, got", res.Params)
	}
	if math.Abs(res.Params[0]/res.Params[1]-5)/5 > 1e-3 {
		tst.Error("Expected alpha/beta=5, got", res.Params[0]/res.Params[1])
	}

	res, err = Fit(model.TwoRateStory{}, data.Sample{5, 5, 5}, DefaultSettings())
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if res.AtBound || res.Params[0] == res.Params[1] {
		tst.Error("Unexpected story fit", res)
	}
}

func TestFitConstantSamples(tst *testing.T) {
	for c := 5; c <= 50; c++ {
		s := data.Sample{float64(c), float64(c), float64(c)}
		methods := []string{METHOD_SIMPLEX}
		if c == 15 {
			methods = append(methods, METHOD_NM)
		}
		for _, method := range methods {
			st := DefaultSettings()
			st.Method = method
			res, err := Fit(model.Gamma{}, s, st)
			if err != nil {
				tst.Errorf("%s, c=%d: error: %v", method, c, err)
				continue
			}
			if !res.AtBound {
				tst.Errorf("%s, c=%d: expected parameters at the bound, got %v", method, c, res.Params)
			}
			if r := res.Params[0] / res.Params[1]; math.Abs(r-float64(c))/float64(c) > 1e-3 {
				tst.Errorf("%s, c=%d: alpha/beta=%v", method, c, r)
			}
		}
		if _, err := Fit(model.TwoRateStory{}, s, DefaultSettings()); err != nil {
			tst.Errorf("story, c=%d: error: %v", c, err)
		}
	}
}

func TestFitZeroTime(tst *testing.T) {
	// the gamma density at zero is infinite for alpha < 1
	s := DefaultSettings()
	s.Start = []float64{1, 0.05}
	_, err := Fit(model.Gamma{}, data.Sample{0, 10, 20, 30, 40}, s)
	var cerr *ConvergenceError
	if !errors.As(err, &cerr) || !strings.Contains(cerr.Message, "unbounded") {
		tst.Error("Expected unbounded likelihood error, got", err)
	}
}
