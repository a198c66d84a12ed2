package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/petrzlen/freqbench-golang/pkg/models"
)

// EstimateLag returns how many samples measured trails reference, found as the
// peak of their FFT cross-correlation. Only non-negative lags up to maxLag are
// searched; maxLag < 0 searches the whole capture. The peak is taken on the
// absolute value so a polarity-inverting device still aligns.
func EstimateLag(reference, measured []float32, maxLag int) (int, error) {
	if len(reference) == 0 || len(measured) == 0 {
		return 0, ErrEmpty
	}

	n := len(reference) + len(measured) - 1
	fftSize := nextPowerOf2(n)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return 0, fmt.Errorf("analysis: failed to create FFT plan: %w", err)
	}

	refPadded := make([]complex128, fftSize)
	for i, v := range reference {
		refPadded[i] = complex(float64(v), 0)
	}
	measPadded := make([]complex128, fftSize)
	for i, v := range measured {
		measPadded[i] = complex(float64(v), 0)
	}

	refFreq := make([]complex128, fftSize)
	if err := plan.Forward(refFreq, refPadded); err != nil {
		return 0, fmt.Errorf("analysis: forward FFT failed: %w", err)
	}
	measFreq := make([]complex128, fftSize)
	if err := plan.Forward(measFreq, measPadded); err != nil {
		return 0, fmt.Errorf("analysis: forward FFT failed: %w", err)
	}

	// corr[k] = sum_i measured[i+k] * reference[i]
	for i := range measFreq {
		measFreq[i] *= cmplx.Conj(refFreq[i])
	}
	corr := make([]complex128, fftSize)
	if err := plan.Inverse(corr, measFreq); err != nil {
		return 0, fmt.Errorf("analysis: inverse FFT failed: %w", err)
	}

	limit := len(measured) - 1
	if maxLag >= 0 && maxLag < limit {
		limit = maxLag
	}
	best, bestVal := 0, -1.0
	for k := 0; k <= limit; k++ {
		if v := math.Abs(real(corr[k])); v > bestVal {
			best, bestVal = k, v
		}
	}
	return best, nil
}

// Align cuts the window of measured that lines up with reference: offset
// samples are skipped and the result has the reference's length, zero-padded
// if the capture runs short. A negative offset is estimated with EstimateLag.
// The offset actually used is returned.
func Align(reference, measured models.Waveform, offset int) (models.Waveform, int, error) {
	if reference.SampleRate != measured.SampleRate {
		return models.Waveform{}, 0, fmt.Errorf("%w: %d vs %d", ErrRateMismatch, reference.SampleRate, measured.SampleRate)
	}
	if offset < 0 {
		var err error
		offset, err = EstimateLag(reference.Samples, measured.Samples, -1)
		if err != nil {
			return models.Waveform{}, 0, err
		}
	}

	out := make([]float32, reference.Len())
	if offset < measured.Len() {
		copy(out, measured.Samples[offset:])
	}
	return models.NewWaveform(out, measured.SampleRate), offset, nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p *= 2
	}

	return p
}
