// Package signal generates the stimulus played into the device under test.
package signal

import (
	"math"

	"github.com/petrzlen/freqbench-golang/pkg/models"
)

// InitialPhaseDeg is the chirp phase offset; -90 degrees turns the cosine into a
// sine so the stimulus starts at zero amplitude.
const InitialPhaseDeg = -90.0

// Chirp generates a linear-frequency sweep from spec.StartFreq to spec.EndFreq.
//
// The instantaneous frequency moves linearly over the duration T:
//
//	f(t) = f0 + (f1-f0) * t / T
//	x(t) = cos(2π * (f0*t + 0.5*(f1-f0)/T * t²) + φ)
//
// with φ = InitialPhaseDeg. The output has round(SampleRate*Duration) samples.
func Chirp(spec models.StimulusSpec) (models.Waveform, error) {
	if err := spec.Validate(); err != nil {
		return models.Waveform{}, err
	}

	n := spec.NumFrames()
	out := make([]float32, n)

	T := spec.Duration
	beta := (spec.EndFreq - spec.StartFreq) / T
	phi := InitialPhaseDeg * math.Pi / 180
	dt := spec.Duration / float64(n)

	for i := range out {
		t := float64(i) * dt
		phase := 2 * math.Pi * (spec.StartFreq*t + 0.5*beta*t*t)
		out[i] = float32(math.Cos(phase + phi))
	}

	return models.NewWaveform(out, spec.SampleRate), nil
}

// TimeAxis returns the sample instants of a signal of the given duration,
// spaced duration/numFrames apart, excluding the final instant.
func TimeAxis(duration float64, sampleRate int) []float32 {
	n := int(math.Round(float64(sampleRate) * duration))
	if n <= 0 {
		return nil
	}
	dt := duration / float64(n)
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(float64(i) * dt)
	}
	return out
}

// Scale returns a copy of w with every sample multiplied by amplitude.
func Scale(w models.Waveform, amplitude float64) models.Waveform {
	out := make([]float32, len(w.Samples))
	a := float32(amplitude)
	for i, v := range w.Samples {
		out[i] = v * a
	}
	return models.NewWaveform(out, w.SampleRate)
}

func Silence(numFrames int, sampleRate int) models.Waveform {
	return models.NewWaveform(make([]float32, numFrames), sampleRate)
}
