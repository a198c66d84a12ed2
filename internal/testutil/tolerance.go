// Package testutil holds assertions shared by the package tests.
package testutil

import (
	"math"
	"testing"
)

// RequireAllNear fails t at the first element of got outside want ± eps.
func RequireAllNear(t *testing.T, got []float64, want, eps float64) {
	t.Helper()
	for i, v := range got {
		if diff := math.Abs(v - want); !(diff <= eps) {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, v, want, diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// MeanVariance returns the mean and population variance of data.
func MeanVariance(data []float64) (mean, variance float64) {
	if len(data) == 0 {
		return 0, 0
	}
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))
	for _, v := range data {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(data))
	return mean, variance
}
