package model

import (
	"math"

	"bitbucket.org/Davydov/mtcat/data"
	"bitbucket.org/Davydov/mtcat/dist"
)

// TwoRateStory describes catastrophe as two sequential Poisson
// processes with rates beta1 and beta2. Equal rates are excluded, the
// closed form density is singular there.
type TwoRateStory struct{}

func (TwoRateStory) Kind() Kind {
	return KindStory
}

func (TwoRateStory) NumParams() int {
	return 2
}

func (TwoRateStory) ParamNames() []string {
	return []string{"beta1", "beta2"}
}

func (TwoRateStory) DefaultGuess() []float64 {
	return []float64{0.005, 0.004}
}

// InDomain returns true if both rates are positive and distinct.
func (TwoRateStory) InDomain(params []float64) bool {
	return len(params) == 2 && params[0] > 0 && params[1] > 0 &&
		params[0] != params[1] &&
		!math.IsInf(params[0], 0) && !math.IsInf(params[1], 0)
}

func (m TwoRateStory) LogLikelihood(params []float64, s data.Sample) float64 {
	if !m.InDomain(params) {
		return math.Inf(-1)
	}
	beta1, beta2 := params[0], params[1]
	return sumLog(s, func(t float64) float64 {
		return dist.StoryLogPDF(t, beta1, beta2)
	})
}
