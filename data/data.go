// Package data holds time to catastrophe samples and reads them from
// tidy and untidy tables.
package data

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidInput is returned for empty samples and values which are
// not finite non-negative numbers.
var ErrInvalidInput = errors.New("invalid input")

// Sample is a set of times to catastrophe for one experimental
// condition. Order is irrelevant.
type Sample []float64

// Validate checks that sample is not empty and all the values are
// finite and non-negative.
func (s Sample) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty sample", ErrInvalidInput)
	}
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: value %v at position %d", ErrInvalidInput, v, i)
		}
	}
	return nil
}

// Copy returns a copy of the sample.
func (s Sample) Copy() Sample {
	c := make(Sample, len(s))
	copy(c, s)
	return c
}

// Grouped maps a condition label (tubulin concentration) to its
// sample.
type Grouped map[string]Sample

// Validate checks every sample in the dataset.
func (g Grouped) Validate() error {
	if len(g) == 0 {
		return fmt.Errorf("%w: no groups", ErrInvalidInput)
	}
	for _, label := range g.Labels() {
		if err := g[label].Validate(); err != nil {
			return fmt.Errorf("group %s: %w", label, err)
		}
	}
	return nil
}

// Len returns the total number of observations.
func (g Grouped) Len() (n int) {
	for _, s := range g {
		n += len(s)
	}
	return
}

// Labels returns group labels in their natural order. If every label
// starts with a number (e.g. "12" or "12uM") labels are ordered by that
// number, otherwise lexically.
func (g Grouped) Labels() []string {
	labels := make([]string, 0, len(g))
	for label := range g {
		labels = append(labels, label)
	}
	SortLabels(labels)
	return labels
}

// SortLabels sorts labels in place in their natural order (see
// Grouped.Labels).
func SortLabels(labels []string) {
	values := make(map[string]float64, len(labels))
	numeric := true
	for _, label := range labels {
		v, ok := leadingNumber(label)
		if !ok {
			numeric = false
			break
		}
		values[label] = v
	}
	sort.SliceStable(labels, func(i, j int) bool {
		if numeric && values[labels[i]] != values[labels[j]] {
			return values[labels[i]] < values[labels[j]]
		}
		return labels[i] < labels[j]
	})
}

// leadingNumber parses the numeric prefix of a label.
func leadingNumber(label string) (float64, bool) {
	label = strings.TrimSpace(label)
	end := strings.IndexFunc(label, func(r rune) bool {
		return !(unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E')
	})
	if end < 0 {
		end = len(label)
	}
	// a unit may start with 'e'; shrink until the prefix parses
	for ; end > 0; end-- {
		if v, err := strconv.ParseFloat(label[:end], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
