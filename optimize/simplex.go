package optimize

import (
	"fmt"
	"math"
)

// DS is a downhill simplex maximizer.
type DS struct {
	BaseOptimizer
	step       float64
	ftol       float64
	iterations int
	points     [][]float64
	psum       []float64
	l          []float64
	newPar     []float64
}

// NewDS creates a new downhill simplex optimizer.
func NewDS(s Settings) (ds *DS) {
	s = s.fillDefaults()
	ds = &DS{
		step:       s.Step,
		ftol:       s.FTol,
		iterations: s.Iterations,
	}
	ds.repPeriod = s.ReportPeriod
	return
}

func (ds *DS) createSimplex(start []float64) {
	ds.points = relativeSimplex(start, ds.step)
	ds.l = make([]float64, len(ds.points))
	for i := range ds.points {
		ds.l[i] = ds.eval(ds.points[i])
	}
}

// amotry extrapolates by factor fac throught the face of the simplex accros from
// the low point, tries it, and replaces the low point if the new point is better.
func (ds *DS) amotry(ilo int, fac float64) float64 {
	ndim := len(ds.points[0])
	if ds.newPar == nil {
		ds.newPar = make([]float64, ndim)
	}
	ds.calcPsum()
	fac1 := (1 - fac) / float64(ndim)
	fac2 := fac1 - fac
	for j := 0; j < ndim; j++ {
		ds.newPar[j] = ds.psum[j]*fac1 - ds.points[ilo][j]*fac2
	}
	l := ds.eval(ds.newPar)
	if l > ds.l[ilo] {
		ds.points[ilo], ds.newPar = ds.newPar, ds.points[ilo]
		ds.l[ilo] = l
	}
	return l
}

func (ds *DS) calcPsum() {
	if ds.psum == nil {
		ds.psum = make([]float64, len(ds.points[0]))
	}
	for i := range ds.psum {
		ds.psum[i] = 0
		for _, point := range ds.points {
			ds.psum[i] += point[i]
		}
	}
}

// spread returns the largest extent of the simplex along a coordinate
// relative to the best point.
func (ds *DS) spread(ihi int) (r float64) {
	for j, v := range ds.points[ihi] {
		min, max := v, v
		for _, p := range ds.points {
			min = math.Min(min, p[j])
			max = math.Max(max, p[j])
		}
		r = math.Max(r, (max-min)/(math.Abs(v)+TINY))
	}
	return
}

func (ds *DS) fail(msg string) error {
	return ds.convergenceError(METHOD_SIMPLEX, msg)
}

// Maximize runs the downhill simplex. After the first convergence the
// simplex is rebuilt around the best point; the search stops when two
// consecutive convergences agree.
func (ds *DS) Maximize(f func([]float64) float64, start []float64) (*FitResult, error) {
	ds.reset(f)
	ds.newPar = nil
	ds.psum = nil
	ds.createSimplex(start)

	if math.IsInf(ds.maxL, -1) {
		return nil, ds.fail("starting simplex is outside of the parameter domain")
	}

	// Lowest (worst), next-lowest and highest points
	var ilo, inlo, ihi int
	var llo, lnlo, lhi float64
	var repeat bool
	var oldL float64
	// best likelihood and the iteration it was reached
	bestL, bestI := ds.maxL, 0
	for ds.i = 1; ds.i <= ds.iterations; ds.i++ {
		if ds.l[0] < ds.l[1] {
			ilo = 0
			inlo = 1
			ihi = 1
		} else {
			ilo = 1
			inlo = 0
			ihi = 0
		}
		llo = ds.l[ilo]
		lnlo = ds.l[inlo]
		lhi = ds.l[ihi]
		for i := 2; i < len(ds.points); i++ {
			if ds.l[i] >= lhi {
				lhi = ds.l[i]
				ihi = i
			}
			if ds.l[i] < llo {
				lnlo = llo
				inlo = ilo
				llo = ds.l[i]
				ilo = i
			} else if ds.l[i] < lnlo {
				lnlo = ds.l[i]
				inlo = i
			}
		}
		ds.report(lhi, lhi-llo)
		if math.IsInf(lhi, 1) {
			return nil, ds.fail("likelihood is unbounded")
		}
		if lhi > bestL+SMALL {
			bestL, bestI = lhi, ds.i
		}
		rtol := 2 * math.Abs(lhi-llo) / (math.Abs(llo) + math.Abs(lhi) + TINY)
		// A simplex pressed against a bound shrinks in x while the
		// likelihood still creeps up.
		if rtol < ds.ftol || ds.spread(ihi) < ds.ftol || ds.i-bestI >= STALL {
			bestL, bestI = lhi, ds.i
			if repeat && math.Abs(oldL-lhi) < SMALL {
				return ds.result(ihi), nil
			}
			repeat = true
			oldL = lhi
			log.Debugf("converged at L=%f. retrying", lhi)
			best := make([]float64, len(ds.points[ihi]))
			copy(best, ds.points[ihi])
			ds.createSimplex(best)
			continue
		}
		l := ds.amotry(ilo, -1)
		switch {
		case l >= lhi:
			ds.amotry(ilo, 2)
		case l <= lnlo:
			lsave := llo
			l := ds.amotry(ilo, 0.5)
			if l <= lsave {
				for i := range ds.points {
					if i != ihi {
						for j := range ds.points[i] {
							ds.points[i][j] = 0.5 * (ds.points[i][j] + ds.points[ihi][j])
						}
						ds.l[i] = ds.eval(ds.points[i])
					}
				}
			}
		}
	}
	log.Warningf("Iterations exceeded (%d)", ds.iterations)
	return nil, ds.fail(fmt.Sprintf("maximum number of iterations exceeded (%d), L=%f", ds.iterations, lhi))
}

func (ds *DS) result(ihi int) *FitResult {
	par := make([]float64, len(ds.points[ihi]))
	copy(par, ds.points[ihi])
	log.Debugf("Finished downhill simplex after %d iterations, %d evaluations, L=%f", ds.i, ds.calls, ds.l[ihi])
	return &FitResult{
		Params:      par,
		Converged:   true,
		Message:     "optimization converged",
		Iterations:  ds.i,
		Evaluations: ds.calls,
	}
}
