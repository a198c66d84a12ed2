package models

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestStimulusSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    StimulusSpec
		wantErr error
	}{
		{"valid", StimulusSpec{20, 20000, 1, 48000}, nil},
		{"zero start", StimulusSpec{0, 10, 10, 44100}, nil},
		{"descending", StimulusSpec{20000, 20, 1, 48000}, nil},
		{"negative start", StimulusSpec{-1, 20000, 1, 48000}, ErrInvalidFrequency},
		{"negative end", StimulusSpec{20, -5, 1, 48000}, ErrInvalidFrequency},
		{"zero duration", StimulusSpec{20, 20000, 0, 48000}, ErrInvalidDuration},
		{"nan duration", StimulusSpec{20, 20000, math.NaN(), 48000}, ErrInvalidDuration},
		{"zero rate", StimulusSpec{20, 20000, 1, 0}, ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStimulusSpecNumFrames(t *testing.T) {
	s := StimulusSpec{StartFreq: 20, EndFreq: 200, Duration: 0.0101, SampleRate: 1000}
	if got := s.NumFrames(); got != 10 {
		t.Errorf("NumFrames() = %d, want 10", got)
	}
}

func TestWaveformDuration(t *testing.T) {
	w := NewWaveform(make([]float32, 22050), 44100)
	if got := w.Duration(); got != 500*time.Millisecond {
		t.Errorf("Duration() = %v, want 500ms", got)
	}
	if err := (Waveform{}).Validate(); !errors.Is(err, ErrInvalidSampleRate) {
		t.Errorf("Validate() = %v, want %v", err, ErrInvalidSampleRate)
	}
}

func TestResponseCurveAt(t *testing.T) {
	c := ResponseCurve{
		Frequencies: []float64{0, 10, 20, 30},
		ResponseDb:  []float64{-1, -2, -3, -4},
	}
	tests := []struct {
		freq float64
		want float64
	}{
		{-5, -1},
		{4, -1},
		{6, -2},
		{21, -3},
		{100, -4},
	}
	for _, tt := range tests {
		if got := c.At(tt.freq); got != tt.want {
			t.Errorf("At(%v) = %v, want %v", tt.freq, got, tt.want)
		}
	}
}

func TestResponseCurveDecimate(t *testing.T) {
	n := 101
	c := ResponseCurve{Frequencies: make([]float64, n), ResponseDb: make([]float64, n)}
	for i := range n {
		c.Frequencies[i] = float64(i)
		c.ResponseDb[i] = float64(-i)
	}

	d := c.Decimate(11)
	if d.Len() != 11 {
		t.Fatalf("Len() = %d, want 11", d.Len())
	}
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}
	if d.Frequencies[0] != 0 || d.Frequencies[10] != 100 {
		t.Errorf("endpoints = %v, %v, want 0, 100", d.Frequencies[0], d.Frequencies[10])
	}
	for i := 1; i < d.Len(); i++ {
		if d.Frequencies[i] <= d.Frequencies[i-1] {
			t.Fatalf("frequencies not ascending at %d: %v", i, d.Frequencies)
		}
	}

	if got := c.Decimate(0); got.Len() != n {
		t.Errorf("Decimate(0).Len() = %d, want %d", got.Len(), n)
	}
}
