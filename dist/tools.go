// Package dist implements densities and distribution functions for
// the time to catastrophe models.
package dist

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// GammaLogPDF returns the log density of the gamma distribution with
// shape alpha and rate beta at x. Location is fixed at zero. At x=0
// the density is beta for alpha=1, infinite for alpha<1 and zero
// otherwise.
func GammaLogPDF(x, alpha, beta float64) float64 {
	if x == 0 {
		switch {
		case alpha == 1:
			return math.Log(beta)
		case alpha < 1:
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
	return distuv.Gamma{Alpha: alpha, Beta: beta}.LogProb(x)
}

// GammaCDF returns the gamma distribution function, i.e. the
// regularized lower incomplete gamma ratio I(beta*x, alpha).
func GammaCDF(x, alpha, beta float64) float64 {
	if x <= 0 {
		return 0
	}
	return IncompleteGamma(beta*x, alpha)
}

// QuantileGamma returns quantile for gamma distribution.
func QuantileGamma(prob, alpha, beta float64) float64 {
	return mathext.GammaIncRegInv(alpha, prob) / beta
}

/*

IncompleteGamma returns the incomplete gamma ratio I(x,alpha) where x
is the upper limit of the integration and alpha is the shape
parameter.

*/
func IncompleteGamma(x, alpha float64) float64 {
	return mathext.GammaIncReg(alpha, x)
}

// StoryLogPDF returns the log density of the sum of two independent
// exponential waiting times with rates beta1 and beta2:
//
//	beta1*beta2/(beta2-beta1) * (exp(-beta1*t) - exp(-beta2*t))
//
// It is computed as
//
//	log(beta1) + log(beta2) - log|d| - min(beta1,beta2)*t + log(-expm1(-|d|*t))
//
// with d = beta2-beta1, which does not lose precision when the rates
// are close. Non-positive density (including equal rates) gives -Inf.
func StoryLogPDF(t, beta1, beta2 float64) float64 {
	if beta1 <= 0 || beta2 <= 0 || beta1 == beta2 || t <= 0 {
		return math.Inf(-1)
	}
	d := math.Abs(beta2 - beta1)
	lo := math.Min(beta1, beta2)
	tail := -math.Expm1(-d * t)
	if !(tail > 0) {
		return math.Inf(-1)
	}
	return math.Log(beta1) + math.Log(beta2) - math.Log(d) - lo*t + math.Log(tail)
}

// StoryCDF returns the distribution function of the two-rate model:
//
//	1 - (beta2*exp(-beta1*t) - beta1*exp(-beta2*t)) / (beta2-beta1)
func StoryCDF(t, beta1, beta2 float64) float64 {
	if t <= 0 {
		return 0
	}
	if beta1 == beta2 {
		// Erlang with shape 2.
		return GammaCDF(t, 2, beta1)
	}
	return 1 - (beta2*math.Exp(-beta1*t)-beta1*math.Exp(-beta2*t))/(beta2-beta1)
}

// ECDF returns sorted values and the empirical distribution function
// evaluated at each of them. Ties produce a staircase with repeated
// x values.
func ECDF(data []float64) (x, y []float64) {
	x = make([]float64, len(data))
	copy(x, data)
	sort.Float64s(x)
	y = make([]float64, len(x))
	n := float64(len(x))
	for i := range x {
		y[i] = float64(i+1) / n
	}
	return
}
