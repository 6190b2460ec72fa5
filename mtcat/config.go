package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bitbucket.org/Davydov/mtcat/bootstrap"
	"bitbucket.org/Davydov/mtcat/model"
	"bitbucket.org/Davydov/mtcat/optimize"
)

// Config stores defaults read from a YAML file. Zero values are
// ignored, except for the seed. Initial guesses (per model name) can
// only be set here, there is no flag for them.
type Config struct {
	Iterations    int                  `yaml:"iterations"`
	Seed          *int64               `yaml:"seed"`
	Workers       int                  `yaml:"workers"`
	Method        string               `yaml:"method"`
	OnFailure     string               `yaml:"onFailure"`
	Retries       int                  `yaml:"retries"`
	Concentration string               `yaml:"concentration"`
	Guess         map[string][]float64 `yaml:"guess"`
}

// readConfig reads a YAML configuration file. Unknown keys are
// errors.
func readConfig(fn string) (*Config, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var c Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	for name := range c.Guess {
		if _, err := model.ByName(name); err != nil {
			return nil, fmt.Errorf("%s: %w", fn, err)
		}
	}
	return &c, nil
}

// Options are the effective run options: command-line values, then
// configuration, then defaults.
type Options struct {
	Iterations    int
	Seed          int64
	Workers       int
	Method        string
	OnFailure     bootstrap.Policy
	Retries       int
	Concentration string
	Progress      bool
	Guess         map[string][]float64
}

func pickInt(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func pickString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// merge combines flag values with the configuration. Flag values
// which are zero or empty are not set.
func merge(flags Options, c *Config) (o Options, err error) {
	if c == nil {
		c = &Config{}
	}
	d := bootstrap.DefaultSettings()
	o.Iterations = pickInt(flags.Iterations, c.Iterations, d.Iterations)
	o.Workers = pickInt(flags.Workers, c.Workers, d.Workers)
	o.Retries = pickInt(flags.Retries, c.Retries, d.Retries)
	o.Method = pickString(flags.Method, c.Method, d.Fit.Method)
	o.Concentration = pickString(flags.Concentration, c.Concentration, defaultConcentration)
	o.Progress = flags.Progress

	o.Seed = flags.Seed
	if o.Seed < 0 && c.Seed != nil {
		o.Seed = *c.Seed
	}

	policy := pickString(string(flags.OnFailure), c.OnFailure, string(d.OnFailure))
	if o.OnFailure, err = bootstrap.ParsePolicy(policy); err != nil {
		return
	}
	if _, err = optimize.NewOptimizer(optimize.Settings{Method: o.Method}); err != nil {
		return
	}

	o.Guess = make(map[string][]float64)
	for name, g := range c.Guess {
		o.Guess[name] = g
	}
	for name, g := range flags.Guess {
		o.Guess[name] = g
	}
	return
}

// settings returns bootstrap settings for the model.
func (o Options) settings(m model.Model) bootstrap.Settings {
	s := bootstrap.DefaultSettings()
	s.Iterations = o.Iterations
	s.Workers = o.Workers
	s.Progress = o.Progress
	s.OnFailure = o.OnFailure
	s.Retries = o.Retries
	s.Fit = o.fitSettings(m)
	return s
}

// fitSettings returns optimizer settings for the model.
func (o Options) fitSettings(m model.Model) optimize.Settings {
	s := optimize.DefaultSettings()
	s.Method = o.Method
	if g, ok := o.Guess[m.Kind().String()]; ok {
		s.Start = g
	}
	return s
}
