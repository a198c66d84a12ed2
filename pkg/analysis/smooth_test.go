package analysis

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/petrzlen/freqbench-golang/internal/testutil"
)

func TestSmoothConstant(t *testing.T) {
	in := make([]float64, 5000)
	for i := range in {
		in[i] = -6.0206
	}
	for _, window := range []int{1, 2, 7, 100, 10000} {
		out, err := Smooth(in, window)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != len(in) {
			t.Fatalf("window %d: length = %d, want %d", window, len(out), len(in))
		}
		testutil.RequireAllNear(t, out, -6.0206, 1e-9)
	}
}

func TestSmoothWindowOne(t *testing.T) {
	in := []float64{3, -1, 4, 1, -5, 9}
	out, err := Smooth(in, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestSmoothShrinkingEdges(t *testing.T) {
	out, err := Smooth([]float64{0, 0, 0, 9}, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0, 3, 4.5}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestSmoothNoisy(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	in := make([]float64, 20000)
	for i := range in {
		in[i] = -3 + rng.NormFloat64()
	}

	out, err := Smooth(in, 51)
	if err != nil {
		t.Fatal(err)
	}

	inMean, inVar := testutil.MeanVariance(in)
	outMean, outVar := testutil.MeanVariance(out)
	if math.Abs(outMean-inMean) > 0.01 {
		t.Errorf("mean moved from %v to %v", inMean, outMean)
	}
	if outVar > inVar/10 {
		t.Errorf("variance = %v, want well below %v", outVar, inVar)
	}
}

func TestSmoothInvalidWindow(t *testing.T) {
	for _, window := range []int{0, -3} {
		if _, err := Smooth([]float64{1, 2}, window); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("Smooth(window=%d) error = %v, want %v", window, err, ErrInvalidWindow)
		}
	}
	out, err := Smooth(nil, 5)
	if err != nil || len(out) != 0 {
		t.Errorf("Smooth(nil) = %v, %v, want empty", out, err)
	}
}
