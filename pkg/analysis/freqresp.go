package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/petrzlen/freqbench-golang/pkg/models"
	"gonum.org/v1/gonum/dsp/fourier"
)

// SilenceFloorDb is reported for bins where the measured spectrum is exactly
// zero but the reference is not.
const SilenceFloorDb = -200.0

var (
	ErrEmpty          = errors.New("analysis: signal is empty")
	ErrLengthMismatch = errors.New("analysis: reference and measured signals differ in length")
	ErrRateMismatch   = errors.New("analysis: reference and measured sample rates differ")
	ErrInvalidWindow  = errors.New("analysis: smoothing window must be positive")
)

// FreqResponse computes the response of measured relative to reference, both
// sampled at sampleRate. The signals must have equal length; trim or Align
// the capture first.
//
// Bins where the reference magnitude is exactly zero carry no information and
// are reported as 0 dB. Bins where only the measured magnitude is zero are
// reported as SilenceFloorDb, which keeps the curve finite for Smooth.
func FreqResponse(reference, measured []float32, sampleRate int) (models.ResponseCurve, error) {
	if sampleRate <= 0 {
		return models.ResponseCurve{}, models.ErrInvalidSampleRate
	}
	if len(reference) == 0 {
		return models.ResponseCurve{}, ErrEmpty
	}
	if len(reference) != len(measured) {
		return models.ResponseCurve{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(reference), len(measured))
	}

	n := len(reference)
	fft := fourier.NewFFT(n)
	refSpec := fft.Coefficients(nil, widen(reference))
	measSpec := fft.Coefficients(nil, widen(measured))

	curve := models.ResponseCurve{
		Frequencies: make([]float64, len(refSpec)),
		ResponseDb:  make([]float64, len(refSpec)),
	}
	for k := range refSpec {
		curve.Frequencies[k] = fft.Freq(k) * float64(sampleRate)
		curve.ResponseDb[k] = ratioDb(cmplx.Abs(measSpec[k]), cmplx.Abs(refSpec[k]))
	}
	return curve, nil
}

// Compare is FreqResponse for two waveforms of the same sample rate.
func Compare(reference, measured models.Waveform) (models.ResponseCurve, error) {
	if err := reference.Validate(); err != nil {
		return models.ResponseCurve{}, err
	}
	if reference.SampleRate != measured.SampleRate {
		return models.ResponseCurve{}, fmt.Errorf("%w: %d vs %d", ErrRateMismatch, reference.SampleRate, measured.SampleRate)
	}
	return FreqResponse(reference.Samples, measured.Samples, reference.SampleRate)
}

func ratioDb(measured, reference float64) float64 {
	switch {
	case reference == 0:
		return 0
	case measured == 0:
		return SilenceFloorDb
	}
	return math.Max(20*math.Log10(measured/reference), SilenceFloorDb)
}

func widen(samples []float32) []float64 {
	out := make([]float64, len(samples))
	for i, v := range samples {
		out[i] = float64(v)
	}
	return out
}
