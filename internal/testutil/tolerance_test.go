package testutil

import (
	"math"
	"testing"
)

func TestMeanVariance(t *testing.T) {
	mean, variance := MeanVariance([]float64{1, 2, 3, 4})
	if mean != 2.5 {
		t.Errorf("mean = %v, want 2.5", mean)
	}
	if math.Abs(variance-1.25) > 1e-12 {
		t.Errorf("variance = %v, want 1.25", variance)
	}

	mean, variance = MeanVariance(nil)
	if mean != 0 || variance != 0 {
		t.Errorf("MeanVariance(nil) = %v, %v, want 0, 0", mean, variance)
	}
}

func TestRequireAllNear(t *testing.T) {
	RequireAllNear(t, []float64{1, 1.0005, 0.9995}, 1, 1e-3)
	RequireFinite(t, []float64{0, -1, 1e300})
}
