package data

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestSampleValidate(tst *testing.T) {
	if err := (Sample{1, 2, 0}).Validate(); err != nil {
		tst.Error("Unexpected error:", err)
	}
	bad := []Sample{
		{},
		nil,
		{1, -1},
		{1, math.NaN()},
		{math.Inf(1)},
	}
	for _, s := range bad {
		if err := s.Validate(); !errors.Is(err, ErrInvalidInput) {
			tst.Errorf("Sample %v: expected ErrInvalidInput, got %v", s, err)
		}
	}
}

func TestLabels(tst *testing.T) {
	g := Grouped{
		"12": {1}, "7": {1}, "10": {1}, "9": {1}, "14": {1},
	}
	labels := g.Labels()
	ref := []string{"7", "9", "10", "12", "14"}
	for i := range ref {
		if labels[i] != ref[i] {
			tst.Fatalf("Expected %v, got %v", ref, labels)
		}
	}

	g = Grouped{"4uM": {1}, "12uM": {1}, "2uM": {1}}
	labels = g.Labels()
	ref = []string{"2uM", "4uM", "12uM"}
	for i := range ref {
		if labels[i] != ref[i] {
			tst.Fatalf("Expected %v, got %v", ref, labels)
		}
	}

	g = Grouped{"control": {1}, "12": {1}, "b": {1}}
	labels = g.Labels()
	ref = []string{"12", "b", "control"}
	for i := range ref {
		if labels[i] != ref[i] {
			tst.Fatalf("Expected %v, got %v", ref, labels)
		}
	}
}

func TestGroupedValidate(tst *testing.T) {
	if err := (Grouped{}).Validate(); !errors.Is(err, ErrInvalidInput) {
		tst.Error("Expected ErrInvalidInput for empty dataset, got", err)
	}
	if err := (Grouped{"7": {1}, "9": {}}).Validate(); !errors.Is(err, ErrInvalidInput) {
		tst.Error("Expected ErrInvalidInput for empty group, got", err)
	}
	g := Grouped{"7": {1, 2}, "9": {3}}
	if err := g.Validate(); err != nil {
		tst.Error("Unexpected error:", err)
	}
	if g.Len() != 3 {
		tst.Error("Expected 3 observations, got", g.Len())
	}
}

const untidy = `Gardner et al. measurements
line 2, with a comma
3
4
5
6
7
8
"9"
12 uM,7 uM,9 uM
25.0,35.0,40
40.0,45.0,
,60.0,
`

func TestMelt(tst *testing.T) {
	rows, err := Melt(strings.NewReader(untidy), 9)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if len(rows) != 6 {
		tst.Fatal("Expected 6 observations, got", len(rows))
	}
	g, err := Group(rows)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if len(g["12"]) != 2 || len(g["7"]) != 3 || len(g["9"]) != 1 {
		tst.Error("Wrong group sizes:", g)
	}
	if g["7"][2] != 60 {
		tst.Error("Expected 60, got", g["7"][2])
	}
}

func TestMeltBadValue(tst *testing.T) {
	_, err := Melt(strings.NewReader("7 uM\nabc\n"), 0)
	if !errors.Is(err, ErrInvalidInput) {
		tst.Error("Expected ErrInvalidInput, got", err)
	}
	_, err = Melt(strings.NewReader("a\nb\n"), 5)
	if !errors.Is(err, ErrInvalidInput) {
		tst.Error("Expected ErrInvalidInput for missing header, got", err)
	}
}

func TestTidyRoundTrip(tst *testing.T) {
	rows := []Observation{
		{"12", 25}, {"12", 40}, {"7", 35.5},
	}
	var buf bytes.Buffer
	if err := WriteTidy(&buf, rows); err != nil {
		tst.Fatal("Error:", err)
	}
	if !strings.HasPrefix(buf.String(), "concentration_uM,time_s") {
		tst.Error("Unexpected header:", buf.String())
	}
	read, err := ReadTidy(&buf)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if len(read) != len(rows) {
		tst.Fatal("Expected", len(rows), "rows, got", len(read))
	}
	for i := range rows {
		if read[i] != rows[i] {
			tst.Errorf("Row %d: expected %v, got %v", i, rows[i], read[i])
		}
	}
}

func TestGroupRejectsNegative(tst *testing.T) {
	_, err := Group([]Observation{{"7", -3}})
	if !errors.Is(err, ErrInvalidInput) {
		tst.Error("Expected ErrInvalidInput, got", err)
	}
}
