// Package statistics measures how evenly a generator fills a bounded range.
// It is analysis tooling for tests and the CLI; nothing here feeds back
// into simulation state, so floating point is fine.
package statistics

import (
	"fmt"
	"math"
)

// Z-scores for common one-sided significance levels.
const (
	Z01  = 2.326 // p = 0.01
	Z001 = 3.090 // p = 0.001
)

// Histogram counts samples drawn from [0, len(Counts)).
type Histogram struct {
	Counts []int
	Total  int

	sum  float64
	sum2 float64 // sum of squares for variance
}

// NewHistogram creates a histogram with the given number of buckets.
func NewHistogram(buckets int) (*Histogram, error) {
	if buckets < 2 {
		return nil, fmt.Errorf("histogram needs at least 2 buckets, got %d", buckets)
	}
	return &Histogram{Counts: make([]int, buckets)}, nil
}

// Add records one sample.
func (h *Histogram) Add(v int) error {
	if v < 0 || v >= len(h.Counts) {
		return fmt.Errorf("sample %d outside [0, %d)", v, len(h.Counts))
	}
	h.Counts[v]++
	h.Total++
	f := float64(v)
	h.sum += f
	h.sum2 += f * f
	return nil
}

// Mean returns the sample mean.
func (h *Histogram) Mean() float64 {
	if h.Total == 0 {
		return 0
	}
	return h.sum / float64(h.Total)
}

// Variance returns the sample variance.
func (h *Histogram) Variance() float64 {
	if h.Total < 2 {
		return 0
	}
	mean := h.Mean()
	return (h.sum2 - float64(h.Total)*mean*mean) / float64(h.Total-1)
}

// StdDev returns the sample standard deviation.
func (h *Histogram) StdDev() float64 {
	return math.Sqrt(h.Variance())
}

// StdError returns the standard error of the mean.
func (h *Histogram) StdError() float64 {
	if h.Total == 0 {
		return 0
	}
	return h.StdDev() / math.Sqrt(float64(h.Total))
}

// ConfidenceInterval95 returns the 95% confidence interval of the mean.
func (h *Histogram) ConfidenceInterval95() (float64, float64) {
	mean := h.Mean()
	margin := 1.96 * h.StdError()
	return mean - margin, mean + margin
}

// ExpectedMean is the mean of a perfectly uniform distribution over the buckets.
func (h *Histogram) ExpectedMean() float64 {
	return float64(len(h.Counts)-1) / 2
}

// ChiSquare returns Pearson's statistic against a uniform expectation.
func (h *Histogram) ChiSquare() float64 {
	if h.Total == 0 {
		return 0
	}
	expected := float64(h.Total) / float64(len(h.Counts))
	var chi float64
	for _, c := range h.Counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	return chi
}

// DegreesOfFreedom is buckets - 1.
func (h *Histogram) DegreesOfFreedom() int {
	return len(h.Counts) - 1
}

// Uniform reports whether the chi-square statistic is below the critical
// value for the given z-score.
func (h *Histogram) Uniform(z float64) bool {
	return h.ChiSquare() < ChiSquareCritical(h.DegreesOfFreedom(), z)
}

// LowShare returns the fraction of samples in the lower half of the range.
// Modulo bias shows up as a share above one half.
func (h *Histogram) LowShare() float64 {
	if h.Total == 0 {
		return 0
	}
	half := len(h.Counts) / 2
	low := 0
	for _, c := range h.Counts[:half] {
		low += c
	}
	return float64(low) / float64(h.Total)
}

// ChiSquareCritical approximates the upper critical value of the
// chi-square distribution using the Wilson-Hilferty transform.
func ChiSquareCritical(df int, z float64) float64 {
	k := float64(df)
	t := 2 / (9 * k)
	v := 1 - t + z*math.Sqrt(t)
	return k * v * v * v
}

// Validate checks that bucket counts agree with the total.
func (h *Histogram) Validate() error {
	sum := 0
	for _, c := range h.Counts {
		sum += c
	}
	if sum != h.Total {
		return fmt.Errorf("bucket counts sum to %d, total is %d", sum, h.Total)
	}
	return nil
}
