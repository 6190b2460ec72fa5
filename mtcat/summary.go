package main

import (
	"math"

	"bitbucket.org/Davydov/mtcat/bootstrap"
	"bitbucket.org/Davydov/mtcat/optimize"
)

// RunSummary is storing mtcat run summary information.
type RunSummary struct {
	// Version stores mtcat version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// Command is the subcommand.
	Command string `json:"command"`
	// Seed is the seed used for random number generation initialization.
	Seed int64 `json:"seed"`
	// Workers is the number of concurrent fits.
	Workers int `json:"workers"`
	// Time is the computations time in seconds.
	Time float64 `json:"time"`
	// Concentration is the analyzed concentration (fit and aic).
	Concentration string `json:"concentration,omitempty"`
	// Fits are the maximum likelihood fits by model.
	Fits map[string]*optimize.FitResult `json:"fits,omitempty"`
	// Medians are the medians of the fitted distributions.
	Medians map[string]float64 `json:"medians,omitempty"`
	// Ensembles summarizes the bootstrap ensembles.
	Ensembles []bootstrap.GroupSummary `json:"ensembles,omitempty"`
	// MeanAIC is the average bootstrap AIC by model.
	MeanAIC map[string]float64 `json:"meanAIC,omitempty"`
	// Weights are the Akaike weights by model.
	Weights map[string]float64 `json:"akaikeWeights,omitempty"`
	// Skipped is the number of skipped bootstrap iterations.
	Skipped int `json:"skipped,omitempty"`
}

// addEnsemble adds ensemble summaries, skipping values which cannot
// be encoded.
func (s *RunSummary) addEnsemble(e *bootstrap.Ensemble) {
	for _, gs := range e.Summary() {
		if !finite(gs.AIC.Mean, gs.AIC.Low, gs.AIC.High) {
			continue
		}
		s.Ensembles = append(s.Ensembles, gs)
	}
	s.Skipped += e.Skipped
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
