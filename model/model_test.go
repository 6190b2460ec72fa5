package model

import (
	"math"
	"testing"

	"bitbucket.org/Davydov/mtcat/data"
)

const smallDiff = 1e-9

var sample = data.Sample{10, 20, 30, 40, 50}

func TestGammaDomain(tst *testing.T) {
	g := Gamma{}
	for _, par := range [][]float64{{-1, 2}, {2, -1}, {0, 1}, {1, 0}, {1}, {1, 2, 3}, {math.NaN(), 1}} {
		if l := g.LogLikelihood(par, sample); !math.IsInf(l, -1) {
			tst.Errorf("Parameters %v: expected -Inf, got %v", par, l)
		}
	}
}

func TestStoryDomain(tst *testing.T) {
	m := TwoRateStory{}
	for _, par := range [][]float64{{0.01, 0.01}, {-0.01, 0.02}, {0.02, 0}, {0.01}} {
		if l := m.LogLikelihood(par, sample); !math.IsInf(l, -1) {
			tst.Errorf("Parameters %v: expected -Inf, got %v", par, l)
		}
	}
}

func TestGammaLikelihood(tst *testing.T) {
	alpha, beta := 2.5, 0.1
	ref := 0.0
	lg, _ := math.Lgamma(alpha)
	for _, t := range sample {
		ref += alpha*math.Log(beta) - lg + (alpha-1)*math.Log(t) - beta*t
	}
	l := Gamma{}.LogLikelihood([]float64{alpha, beta}, sample)
	tst.Log("L=", l, ", Ref=", ref)
	if math.Abs(l-ref) > smallDiff {
		tst.Error("Expected ", ref, ", got", l)
	}
}

func TestGammaLikelihoodZero(tst *testing.T) {
	s := data.Sample{0, 10, 20, 30, 40}
	if err := s.Validate(); err != nil {
		tst.Fatal("Zero should be a valid time:", err)
	}
	beta := 0.05
	ref := 0.0
	for _, t := range s {
		ref += math.Log(beta) - beta*t
	}
	if l := (Gamma{}).LogLikelihood([]float64{1, beta}, s); math.Abs(l-ref) > smallDiff {
		tst.Error("Expected ", ref, ", got", l)
	}
	if l := (Gamma{}).LogLikelihood([]float64{0.5, beta}, s); !math.IsInf(l, 1) {
		tst.Error("Expected +Inf for alpha<1, got", l)
	}
	if l := (Gamma{}).LogLikelihood([]float64{2, beta}, s); !math.IsInf(l, -1) {
		tst.Error("Expected -Inf for alpha>1, got", l)
	}
}

func TestStoryLikelihood(tst *testing.T) {
	b1, b2 := 0.05, 0.08
	ref := 0.0
	for _, t := range sample {
		ref += math.Log(b1 * b2 / (b2 - b1) * (math.Exp(-b1*t) - math.Exp(-b2*t)))
	}
	l := TwoRateStory{}.LogLikelihood([]float64{b1, b2}, sample)
	tst.Log("L=", l, ", Ref=", ref)
	if math.Abs(l-ref) > smallDiff {
		tst.Error("Expected ", ref, ", got", l)
	}
	// zero time has zero density
	l = TwoRateStory{}.LogLikelihood([]float64{b1, b2}, data.Sample{0, 10})
	if !math.IsInf(l, -1) {
		tst.Error("Expected -Inf, got", l)
	}
}

func TestByName(tst *testing.T) {
	for _, k := range []Kind{KindGamma, KindStory} {
		m, err := ByName(k.String())
		if err != nil {
			tst.Fatal("Error:", err)
		}
		if m.Kind() != k {
			tst.Error("Wrong model for", k)
		}
		if m.NumParams() != 2 || len(m.DefaultGuess()) != 2 || len(m.ParamNames()) != 2 {
			tst.Error("Wrong arity for", k)
		}
		if !m.InDomain(m.DefaultGuess()) {
			tst.Error("Default guess is not in the domain for", k)
		}
	}
	if _, err := ByName("weibull"); err == nil {
		tst.Error("Expected error for unknown model")
	}
}

func TestColumnNames(tst *testing.T) {
	c := ColumnNames(Gamma{})
	if c[0] != "alpha" || c[1] != "beta" {
		tst.Error("Unexpected gamma column names:", c)
	}
	c = ColumnNames(TwoRateStory{})
	if c[0] != "param1" || c[1] != "param2" {
		tst.Error("Unexpected story column names:", c)
	}
}

func TestAIC(tst *testing.T) {
	for _, l := range []float64{-100, -12.5, 0, 3.25} {
		if a := AIC(l, 2); math.Abs(a-(-2*l+4)) > smallDiff {
			tst.Errorf("logL=%v: expected %v, got %v", l, -2*l+4, a)
		}
	}
}
