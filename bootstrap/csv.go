package bootstrap

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

type gammaRow struct {
	Group         string  `csv:"concentration_uM"`
	Model         string  `csv:"model"`
	Alpha         float64 `csv:"alpha"`
	Beta          float64 `csv:"beta"`
	LogLikelihood float64 `csv:"log_likelihood"`
	AIC           float64 `csv:"aic"`
}

type paramRow struct {
	Group         string  `csv:"concentration_uM"`
	Model         string  `csv:"model"`
	Param1        float64 `csv:"param1"`
	Param2        float64 `csv:"param2"`
	LogLikelihood float64 `csv:"log_likelihood"`
	AIC           float64 `csv:"aic"`
}

// WriteCSV writes the ensemble records as a table. Parameter columns
// are named after the ensemble columns.
func (e *Ensemble) WriteCSV(w io.Writer) error {
	for _, r := range e.Records {
		if len(r.Params) != 2 {
			return fmt.Errorf("%s record with %d parameters", r.Model, len(r.Params))
		}
	}
	if len(e.Columns) == 2 && e.Columns[0] == "alpha" && e.Columns[1] == "beta" {
		rows := make([]gammaRow, len(e.Records))
		for i, r := range e.Records {
			rows[i] = gammaRow{r.Group, r.Model, r.Params[0], r.Params[1], r.LogLikelihood, r.AIC}
		}
		return gocsv.Marshal(rows, w)
	}
	rows := make([]paramRow, len(e.Records))
	for i, r := range e.Records {
		rows[i] = paramRow{r.Group, r.Model, r.Params[0], r.Params[1], r.LogLikelihood, r.AIC}
	}
	return gocsv.Marshal(rows, w)
}
