// Package bootstrap draws nonparametric bootstrap samples and
// computes maximum likelihood fits and AIC values over them.
package bootstrap

import (
	"math/rand"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/mtcat/data"
)

var log = logging.MustGetLogger("bootstrap")

// Draw returns a bootstrap sample: len(s) values drawn uniformly with
// replacement from s. It makes exactly len(s) rng.Intn calls.
func Draw(rng *rand.Rand, s data.Sample) (data.Sample, error) {
	return DrawInto(rng, s, nil)
}

// DrawInto is like Draw, but stores the result in dst if it has enough
// capacity.
func DrawInto(rng *rand.Rand, s, dst data.Sample) (data.Sample, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if cap(dst) < len(s) {
		dst = make(data.Sample, len(s))
	}
	dst = dst[:len(s)]
	for i := range dst {
		dst[i] = s[rng.Intn(len(s))]
	}
	return dst, nil
}
