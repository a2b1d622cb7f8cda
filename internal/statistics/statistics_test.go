package statistics

import (
	"math"
	"testing"
)

func TestHistogram_Empty(t *testing.T) {
	h, err := NewHistogram(4)
	if err != nil {
		t.Fatalf("NewHistogram() error = %v", err)
	}

	if h.Mean() != 0 {
		t.Errorf("Expected mean of 0 for empty histogram, got %f", h.Mean())
	}
	if h.Variance() != 0 {
		t.Errorf("Expected variance of 0 for empty histogram, got %f", h.Variance())
	}
	if h.StdError() != 0 {
		t.Errorf("Expected stderr of 0 for empty histogram, got %f", h.StdError())
	}
	if h.ChiSquare() != 0 {
		t.Errorf("Expected chi-square of 0 for empty histogram, got %f", h.ChiSquare())
	}
	if h.LowShare() != 0 {
		t.Errorf("Expected low share of 0 for empty histogram, got %f", h.LowShare())
	}
}

func TestHistogram_RejectsBadInput(t *testing.T) {
	if _, err := NewHistogram(1); err == nil {
		t.Error("Expected error for single bucket histogram")
	}

	h, _ := NewHistogram(3)
	if err := h.Add(3); err == nil {
		t.Error("Expected error for sample past last bucket")
	}
	if err := h.Add(-1); err == nil {
		t.Error("Expected error for negative sample")
	}
	if h.Total != 0 {
		t.Errorf("Rejected samples must not be counted, total = %d", h.Total)
	}
}

func TestHistogram_KnownValues(t *testing.T) {
	h, _ := NewHistogram(4)
	for _, v := range []int{0, 1, 2, 3, 3, 3} {
		if err := h.Add(v); err != nil {
			t.Fatalf("Add(%d) error = %v", v, err)
		}
	}

	if err := h.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	expectedMean := 12.0 / 6.0
	if math.Abs(h.Mean()-expectedMean) > 1e-9 {
		t.Errorf("Expected mean of %f, got %f", expectedMean, h.Mean())
	}

	// expected 1.5 per bucket: (0.25+0.25+0.25+2.25)/1.5
	if math.Abs(h.ChiSquare()-2.0) > 1e-9 {
		t.Errorf("Expected chi-square of 2.0, got %f", h.ChiSquare())
	}

	if math.Abs(h.LowShare()-2.0/6.0) > 1e-9 {
		t.Errorf("Expected low share of 1/3, got %f", h.LowShare())
	}

	lo, hi := h.ConfidenceInterval95()
	if lo >= h.Mean() || hi <= h.Mean() {
		t.Errorf("Confidence interval [%f, %f] should contain the mean", lo, hi)
	}
}

func TestHistogram_PerfectlyUniform(t *testing.T) {
	h, _ := NewHistogram(10)
	for i := 0; i < 1000; i++ {
		_ = h.Add(i % 10)
	}
	if h.ChiSquare() != 0 {
		t.Errorf("Expected chi-square of 0, got %f", h.ChiSquare())
	}
	if !h.Uniform(Z001) {
		t.Error("Perfectly uniform counts should pass")
	}
	if math.Abs(h.Mean()-h.ExpectedMean()) > 1e-9 {
		t.Errorf("Expected mean %f, got %f", h.ExpectedMean(), h.Mean())
	}
}

func TestHistogram_Skewed(t *testing.T) {
	h, _ := NewHistogram(10)
	for i := 0; i < 1000; i++ {
		_ = h.Add(i % 5)
	}
	if h.Uniform(Z001) {
		t.Errorf("Half-empty histogram should fail, chi-square = %f", h.ChiSquare())
	}
	if h.LowShare() != 1 {
		t.Errorf("Expected low share of 1, got %f", h.LowShare())
	}
}

func TestChiSquareCritical(t *testing.T) {
	tests := []struct {
		df       int
		z        float64
		expected float64 // tabulated value
	}{
		{1, Z01, 6.635},
		{9, Z001, 27.877},
		{99, Z001, 148.230},
	}

	for _, tt := range tests {
		got := ChiSquareCritical(tt.df, tt.z)
		if math.Abs(got-tt.expected) > 0.5 {
			t.Errorf("ChiSquareCritical(%d, %f) = %f, want about %f", tt.df, tt.z, got, tt.expected)
		}
	}
}
