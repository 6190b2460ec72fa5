package model

import (
	"math"

	"bitbucket.org/Davydov/mtcat/data"
	"bitbucket.org/Davydov/mtcat/dist"
)

// Gamma is the gamma distribution with shape alpha and rate beta.
type Gamma struct{}

func (Gamma) Kind() Kind {
	return KindGamma
}

func (Gamma) NumParams() int {
	return 2
}

func (Gamma) ParamNames() []string {
	return []string{"alpha", "beta"}
}

func (Gamma) DefaultGuess() []float64 {
	return []float64{2.5, 0.01}
}

// InDomain returns true if alpha > 0 and beta > 0.
func (Gamma) InDomain(params []float64) bool {
	return len(params) == 2 && params[0] > 0 && params[1] > 0 &&
		!math.IsInf(params[0], 0) && !math.IsInf(params[1], 0)
}

func (g Gamma) LogLikelihood(params []float64, s data.Sample) float64 {
	if !g.InDomain(params) {
		return math.Inf(-1)
	}
	alpha, beta := params[0], params[1]
	return sumLog(s, func(t float64) float64 {
		return dist.GammaLogPDF(t, alpha, beta)
	})
}
