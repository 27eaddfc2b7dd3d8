// Package stats provides the statistical reduction used to summarize
// replicate outcomes: a single-pass Welford accumulator for mean and
// variance, a normal-approximation 95% confidence interval, and a
// nearest-rank percentile.
package stats

import (
	"fmt"
	"math"
)

// MinSamplesForCI is the minimum number of samples required before a
// confidence interval is defined. With fewer than two samples the
// sample standard deviation does not exist.
const MinSamplesForCI = 2

// z95 is the two-sided 95% critical value of the standard normal
// distribution. The interval is a normal approximation; no Student-t
// correction is applied.
const z95 = 1.96

// InsufficientSamplesError reports a reduction requested over too few
// samples for the statistic to be defined.
type InsufficientSamplesError struct {
	Got int // samples provided
	Min int // samples required
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("insufficient samples: got %d, need at least %d", e.Got, e.Min)
}

// Accumulator maintains a running mean and variance using Welford's
// single-pass update. It avoids the catastrophic cancellation of the
// naive sum-of-squares method. The zero value is ready to use.
type Accumulator struct {
	n    int
	mean float64
	m2   float64
}

// Add folds one observation into the accumulator.
func (a *Accumulator) Add(x float64) {
	a.n++
	delta := x - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (x - a.mean)
}

// N returns the number of observations added so far.
func (a *Accumulator) N() int {
	return a.n
}

// Mean returns the running mean, or 0 if no observations were added.
func (a *Accumulator) Mean() float64 {
	return a.mean
}

// SampleVariance returns the unbiased sample variance (n-1 denominator),
// or 0 if fewer than two observations were added.
func (a *Accumulator) SampleVariance() float64 {
	if a.n < 2 {
		return 0
	}
	return a.m2 / float64(a.n-1)
}

// SampleStdDev returns the unbiased sample standard deviation.
func (a *Accumulator) SampleStdDev() float64 {
	return math.Sqrt(a.SampleVariance())
}

// CI95HalfWidth returns the half-width of the normal-approximation 95%
// confidence interval for the mean: 1.96 * s / sqrt(n).
// Returns *InsufficientSamplesError when fewer than MinSamplesForCI
// observations were added.
func (a *Accumulator) CI95HalfWidth() (float64, error) {
	if a.n < MinSamplesForCI {
		return 0, &InsufficientSamplesError{Got: a.n, Min: MinSamplesForCI}
	}
	return z95 * a.SampleStdDev() / math.Sqrt(float64(a.n)), nil
}

// Percentile returns the q-quantile of sorted using the nearest-rank
// method: the smallest element such that at least q*n observations are
// less than or equal to it. sorted must be in ascending order; q is
// clamped to [0, 1]. Returns NaN for an empty slice.
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	rank := int(math.Ceil(q*float64(n))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= n {
		rank = n - 1
	}
	return sorted[rank]
}
