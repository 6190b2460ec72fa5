// Package model provides probability models of the microtubule time
// to catastrophe.
package model

import (
	"fmt"
	"math"

	"bitbucket.org/Davydov/mtcat/data"
)

// Kind is a tag identifying a model variant.
type Kind int

// Model variants.
const (
	// Gamma distributed times.
	KindGamma Kind = iota
	// Two sequential exponential processes with distinct rates.
	KindStory
)

// String returns the model name used on the command line and in
// the reports.
func (k Kind) String() string {
	switch k {
	case KindGamma:
		return "gamma"
	case KindStory:
		return "story"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Model is a probability model with a fixed number of parameters.
type Model interface {
	// Kind returns the model tag.
	Kind() Kind
	// NumParams returns the number of free parameters.
	NumParams() int
	// ParamNames returns semantic parameter names.
	ParamNames() []string
	// DefaultGuess returns the default starting point for the
	// likelihood optimization.
	DefaultGuess() []float64
	// InDomain checks whether parameters are valid.
	InDomain(params []float64) bool
	// LogLikelihood returns the log likelihood of the sample. It
	// returns -Inf for parameters outside the domain.
	LogLikelihood(params []float64, s data.Sample) float64
}

// ByName returns a model given its name.
func ByName(name string) (Model, error) {
	switch name {
	case KindGamma.String():
		return Gamma{}, nil
	case KindStory.String():
		return TwoRateStory{}, nil
	}
	return nil, fmt.Errorf("Unknown model: %s", name)
}

// ColumnNames returns parameter column names for the reports. Gamma
// parameters are labeled with their names (alpha, beta), other models
// use generic names.
func ColumnNames(m Model) []string {
	if m.Kind() == KindGamma {
		return m.ParamNames()
	}
	names := make([]string, m.NumParams())
	for i := range names {
		names[i] = fmt.Sprintf("param%d", i+1)
	}
	return names
}

// AIC returns the Akaike information criterion for log likelihood
// and number of parameters.
func AIC(logL float64, numParams int) float64 {
	return -2*logL + 2*float64(numParams)
}

// sumLog adds per-observation log densities, stopping at the first
// non-positive density.
func sumLog(s data.Sample, logpdf func(float64) float64) (l float64) {
	for _, t := range s {
		v := logpdf(t)
		if math.IsNaN(v) || math.IsInf(v, -1) {
			return math.Inf(-1)
		}
		l += v
	}
	return
}
