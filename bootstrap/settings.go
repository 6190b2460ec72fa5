package bootstrap

import (
	"fmt"

	"bitbucket.org/Davydov/mtcat/optimize"
)

// Policy defines what happens when a fit does not converge.
type Policy string

// Failure policies.
const (
	// ABORT stops the whole computation, no partial result is
	// returned.
	ABORT Policy = "abort"
	// SKIP drops the bootstrap iteration and counts it.
	SKIP Policy = "skip"
	// RETRY refits the same bootstrap sample from a perturbed
	// starting point.
	RETRY Policy = "retry"
)

const (
	// DefaultIterations is the number of bootstrap samples.
	DefaultIterations = 10000
	// DefaultRetries is the number of refits for RETRY.
	DefaultRetries = 3
	// DefaultReportPeriod is the progress report period.
	DefaultReportPeriod = 1000
)

// Settings stores the bootstrap settings.
type Settings struct {
	// Iterations is the number of bootstrap samples per group.
	Iterations int `json:"iterations"`
	// Workers is the number of concurrent fits.
	Workers int `json:"workers"`
	// Progress enables progress logging.
	Progress bool `json:"-"`
	// ReportPeriod is the number of iterations between progress
	// messages.
	ReportPeriod int `json:"-"`
	// OnFailure is the failure policy.
	OnFailure Policy `json:"onFailure"`
	// Retries is the maximum number of refits for RETRY.
	Retries int `json:"retries,omitempty"`
	// Fit stores the optimizer settings.
	Fit optimize.Settings `json:"fit"`
}

// DefaultSettings returns default bootstrap settings.
func DefaultSettings() Settings {
	return Settings{
		Iterations:   DefaultIterations,
		Workers:      1,
		ReportPeriod: DefaultReportPeriod,
		OnFailure:    ABORT,
		Retries:      DefaultRetries,
		Fit:          optimize.DefaultSettings(),
	}
}

// ParsePolicy converts a string into Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case ABORT, SKIP, RETRY:
		return p, nil
	}
	return "", fmt.Errorf("Unknown failure policy: %s", s)
}

func (s Settings) check() (Settings, error) {
	if s.Iterations <= 0 {
		return s, fmt.Errorf("number of iterations should be positive, got %d", s.Iterations)
	}
	if s.Workers <= 0 {
		s.Workers = 1
	}
	if s.ReportPeriod <= 0 {
		s.ReportPeriod = DefaultReportPeriod
	}
	if s.OnFailure == "" {
		s.OnFailure = ABORT
	}
	if _, err := ParsePolicy(string(s.OnFailure)); err != nil {
		return s, err
	}
	return s, nil
}
