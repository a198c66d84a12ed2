package models

import (
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidDuration   = errors.New("duration must be positive")
	ErrInvalidFrequency  = errors.New("frequency must not be negative")
	ErrCurveMismatch     = errors.New("response curve frequencies and values differ in length")
)

type Trace struct {
	CreatedAt time.Time
	Creator   string

	ProcessedAt time.Time
	Processor   string
}

func NewTrace(creator string) Trace {
	return Trace{
		CreatedAt: time.Now(),
		Creator:   creator,
	}
}

func (t *Trace) MarkProcessed(processor string) {
	t.ProcessedAt = time.Now()
	t.Processor = processor
}

func (t Trace) Log() {
	log.Trace().Time("created_at", t.CreatedAt).Str("creator", t.Creator).Time("processed_at", t.ProcessedAt).Str("processor", t.Processor).Dur("dur_to_process", t.ProcessedAt.Sub(t.CreatedAt)).Msgf("tracing")
}

// Waveform is a mono single-precision signal.
type Waveform struct {
	Samples    []float32
	SampleRate int
}

func NewWaveform(samples []float32, sampleRate int) Waveform {
	return Waveform{Samples: samples, SampleRate: sampleRate}
}

func (w Waveform) Len() int {
	return len(w.Samples)
}

func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.SampleRate) * float64(time.Second))
}

func (w Waveform) Validate() error {
	if w.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	return nil
}

// StimulusSpec describes a linear sweep from StartFreq to EndFreq.
type StimulusSpec struct {
	StartFreq  float64 // Hz
	EndFreq    float64 // Hz
	Duration   float64 // seconds
	SampleRate int
}

func (s StimulusSpec) Validate() error {
	if s.StartFreq < 0 || s.EndFreq < 0 {
		return ErrInvalidFrequency
	}
	if s.Duration <= 0 || math.IsNaN(s.Duration) || math.IsInf(s.Duration, 0) {
		return ErrInvalidDuration
	}
	if s.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	return nil
}

func (s StimulusSpec) NumFrames() int {
	return int(math.Round(float64(s.SampleRate) * s.Duration))
}

// ResponseCurve holds one decibel value per frequency bin, bins ascending.
type ResponseCurve struct {
	Frequencies []float64
	ResponseDb  []float64
}

func (c ResponseCurve) Len() int {
	return len(c.Frequencies)
}

func (c ResponseCurve) Validate() error {
	if len(c.Frequencies) != len(c.ResponseDb) {
		return ErrCurveMismatch
	}
	return nil
}

// At returns the response of the bin closest to freq.
func (c ResponseCurve) At(freq float64) float64 {
	if len(c.Frequencies) == 0 {
		return math.NaN()
	}
	lo, hi := 0, len(c.Frequencies)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if c.Frequencies[mid] < freq {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo > 0 && math.Abs(c.Frequencies[lo-1]-freq) <= math.Abs(c.Frequencies[lo]-freq) {
		lo--
	}
	return c.ResponseDb[lo]
}

// Decimate picks points evenly spaced bins, always keeping the first and last.
// A points value of zero or at least Len() returns the curve unchanged.
func (c ResponseCurve) Decimate(points int) ResponseCurve {
	n := c.Len()
	if points <= 0 || points >= n {
		return c
	}
	if points == 1 {
		return ResponseCurve{
			Frequencies: []float64{c.Frequencies[0]},
			ResponseDb:  []float64{c.ResponseDb[0]},
		}
	}
	out := ResponseCurve{
		Frequencies: make([]float64, points),
		ResponseDb:  make([]float64, points),
	}
	step := float64(n-1) / float64(points-1)
	for i := range points {
		idx := int(math.Round(float64(i) * step))
		out.Frequencies[i] = c.Frequencies[idx]
		out.ResponseDb[i] = c.ResponseDb[idx]
	}
	return out
}

// Measurement is the raw outcome of one sweep pass.
type Measurement struct {
	Stimulus Waveform
	Captured Waveform
	Trace    Trace
}
