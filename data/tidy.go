package data

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("data")

// Observation is one row of the tidy table.
type Observation struct {
	Concentration string  `csv:"concentration_uM"`
	Time          float64 `csv:"time_s"`
}

// ReadTidy reads a tidy CSV table with concentration_uM and time_s
// columns.
func ReadTidy(r io.Reader) ([]Observation, error) {
	var rows []Observation
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	log.Debugf("Read %d tidy rows", len(rows))
	return rows, nil
}

// WriteTidy writes observations as a tidy CSV table.
func WriteTidy(w io.Writer, rows []Observation) error {
	return gocsv.Marshal(rows, w)
}

// Group collects observations into a validated grouped dataset.
func Group(rows []Observation) (Grouped, error) {
	g := make(Grouped)
	for _, row := range rows {
		label := strings.TrimSpace(row.Concentration)
		g[label] = append(g[label], row.Time)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Melt converts the untidy measurement table into tidy observations.
// The first skip lines are comments. The header has one
// "<concentration> <unit>" column per condition; columns may have
// different lengths, missing values are empty cells.
func Melt(r io.Reader, skip int) ([]Observation, error) {
	br := bufio.NewReader(r)
	for i := 0; i < skip; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("%w: no header after %d lines", ErrInvalidInput, skip)
		}
	}
	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header after %d lines", ErrInvalidInput, skip)
	}
	header := records[0]
	labels := make([]string, len(header))
	for i, col := range header {
		fields := strings.Fields(col)
		if len(fields) == 0 {
			return nil, fmt.Errorf("%w: empty column name %d", ErrInvalidInput, i+1)
		}
		labels[i] = fields[0]
		if len(fields) > 1 {
			log.Debugf("Column %q: concentration %s, unit %s", col, fields[0], fields[1])
		}
	}
	var rows []Observation
	// column-major, like melting a wide table
	for j, label := range labels {
		for i, record := range records[1:] {
			if j >= len(record) {
				continue
			}
			cell := strings.TrimSpace(record[j])
			if cell == "" || strings.EqualFold(cell, "nan") {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d, column %d: %v", ErrInvalidInput, skip+i+2, j+1, err)
			}
			rows = append(rows, Observation{Concentration: label, Time: v})
		}
	}
	log.Infof("Melted %d observations in %d columns", len(rows), len(labels))
	return rows, nil
}
