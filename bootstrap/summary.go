package bootstrap

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Interval is a mean with a percentile confidence interval.
type Interval struct {
	Mean float64 `json:"mean"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// GroupSummary summarizes the records of one model and group.
type GroupSummary struct {
	Model  string              `json:"model"`
	Group  string              `json:"group,omitempty"`
	N      int                 `json:"n"`
	Params map[string]Interval `json:"params"`
	AIC    Interval            `json:"aic"`
}

// Percentiles of the 95% summary intervals.
const (
	LowPercentile  = 0.025
	HighPercentile = 0.975
)

// NewInterval computes the mean and the percentile interval of x.
func NewInterval(x []float64) Interval {
	if len(x) == 0 {
		return Interval{math.NaN(), math.NaN(), math.NaN()}
	}
	s := make([]float64, len(x))
	copy(s, x)
	sort.Float64s(s)
	return Interval{
		Mean: stat.Mean(s, nil),
		Low:  stat.Quantile(LowPercentile, stat.Empirical, s, nil),
		High: stat.Quantile(HighPercentile, stat.Empirical, s, nil),
	}
}

type key struct {
	model, group string
}

// keys returns (model, group) pairs in the order of appearance.
func (e *Ensemble) keys() (keys []key) {
	seen := make(map[key]bool)
	for _, r := range e.Records {
		k := key{r.Model, r.Group}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return
}

// Groups returns group labels in the order of appearance.
func (e *Ensemble) Groups() (groups []string) {
	seen := make(map[string]bool)
	for _, r := range e.Records {
		if !seen[r.Group] {
			seen[r.Group] = true
			groups = append(groups, r.Group)
		}
	}
	return
}

// Select returns the records of model and group.
func (e *Ensemble) Select(model, group string) (recs []Record) {
	for _, r := range e.Records {
		if r.Model == model && r.Group == group {
			recs = append(recs, r)
		}
	}
	return
}

// Param returns the i-th parameter of the records of model and
// group.
func (e *Ensemble) Param(model, group string, i int) []float64 {
	recs := e.Select(model, group)
	x := make([]float64, 0, len(recs))
	for _, r := range recs {
		if i < len(r.Params) {
			x = append(x, r.Params[i])
		}
	}
	return x
}

// AICs returns the AIC values of the records of model and group.
func (e *Ensemble) AICs(model, group string) []float64 {
	recs := e.Select(model, group)
	x := make([]float64, len(recs))
	for i, r := range recs {
		x[i] = r.AIC
	}
	return x
}

// MeanAIC returns the average AIC of model and group, or NaN if
// there are no such records.
func (e *Ensemble) MeanAIC(model, group string) float64 {
	x := e.AICs(model, group)
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// Summary summarizes every (model, group) pair.
func (e *Ensemble) Summary() []GroupSummary {
	keys := e.keys()
	res := make([]GroupSummary, 0, len(keys))
	for _, k := range keys {
		gs := GroupSummary{
			Model:  k.model,
			Group:  k.group,
			N:      len(e.Select(k.model, k.group)),
			Params: make(map[string]Interval, len(e.Columns)),
			AIC:    NewInterval(e.AICs(k.model, k.group)),
		}
		for i, name := range e.Columns {
			gs.Params[name] = NewInterval(e.Param(k.model, k.group, i))
		}
		res = append(res, gs)
	}
	return res
}

// Concat joins ensembles. Models and columns are kept if they agree,
// otherwise the model is empty and generic column names are used.
func Concat(es ...*Ensemble) *Ensemble {
	res := &Ensemble{}
	for i, e := range es {
		if i == 0 {
			res.Model = e.Model
			res.Columns = append([]string(nil), e.Columns...)
		} else if e.Model != res.Model {
			res.Model = ""
			for j := range res.Columns {
				res.Columns[j] = fmt.Sprintf("param%d", j+1)
			}
		}
		res.Records = append(res.Records, e.Records...)
		res.Skipped += e.Skipped
		res.Retried += e.Retried
	}
	return res
}

// CompareAIC returns the Akaike weights of two models computed from
// their mean AIC values.
func CompareAIC(a, b float64) (wa, wb float64) {
	m := math.Min(a, b)
	ea := math.Exp(-(a - m) / 2)
	eb := math.Exp(-(b - m) / 2)
	return ea / (ea + eb), eb / (ea + eb)
}
