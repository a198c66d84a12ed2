package audio_utils

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/go-audio/audio"
	"github.com/petrzlen/freqbench-golang/pkg/models"
	"github.com/spf13/afero"
)

func TestFloat32BytesRoundTrip(t *testing.T) {
	samples := []float32{0, 1, -1, 0.25, -0.125, float32(math.Pi)}
	raw := EncodeFloat32(samples)
	if len(raw) != 4*len(samples) {
		t.Fatalf("byte length = %d, want %d", len(raw), 4*len(samples))
	}

	got := make([]float32, len(samples))
	BytesToFloat32(got, raw)
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample[%d] = %v, want %v", i, got[i], samples[i])
		}
	}

	// 1.0 in IEEE-754 little-endian.
	if !bytes.Equal(raw[4:8], []byte{0x00, 0x00, 0x80, 0x3f}) {
		t.Errorf("encoded 1.0 = % x, want 00 00 80 3f", raw[4:8])
	}
}

func TestSaveLoadWav(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := models.NewWaveform(make([]float32, 4410), 44100)
	for i := range w.Samples {
		w.Samples[i] = float32(0.8 * math.Sin(2*math.Pi*440*float64(i)/44100))
	}

	if err := SaveWav(fs, "out/run-1/stimulus.wav", w); err != nil {
		t.Fatal(err)
	}
	got, err := Load(fs, "out/run-1/stimulus.wav")
	if err != nil {
		t.Fatal(err)
	}
	if got.SampleRate != 44100 {
		t.Errorf("sample rate = %d, want 44100", got.SampleRate)
	}
	if got.Len() != w.Len() {
		t.Fatalf("length = %d, want %d", got.Len(), w.Len())
	}
	for i := range w.Samples {
		if d := math.Abs(float64(got.Samples[i] - w.Samples[i])); d > 1e-6 {
			t.Fatalf("sample[%d] = %v, want %v (diff %v)", i, got.Samples[i], w.Samples[i], d)
		}
	}
}

func TestSaveWavClips(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := models.NewWaveform([]float32{2, -3, 0.5}, 8000)
	if err := SaveWav(fs, "clip.wav", w); err != nil {
		t.Fatal(err)
	}
	got, err := Load(fs, "clip.wav")
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{1, -1, 0.5}
	for i := range want {
		if d := math.Abs(float64(got.Samples[i] - want[i])); d > 1e-6 {
			t.Errorf("sample[%d] = %v, want %v", i, got.Samples[i], want[i])
		}
	}
}

func TestSaveWavInvalid(t *testing.T) {
	err := SaveWav(afero.NewMemMapFs(), "x.wav", models.Waveform{Samples: []float32{0}})
	if !errors.Is(err, models.ErrInvalidSampleRate) {
		t.Errorf("SaveWav() error = %v, want %v", err, models.ErrInvalidSampleRate)
	}
}

func TestLoadUnsupported(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "notes.txt", []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(fs, "notes.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load() error = %v, want %v", err, ErrUnsupportedFormat)
	}
	if _, err := Load(fs, "missing.wav"); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestEncodeWav(t *testing.T) {
	data, err := EncodeWav(models.NewWaveform([]float32{0, 0.5, -0.5, 0}, 16000))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 44 {
		t.Fatalf("wav length = %d, want at least a header", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Errorf("header = %q, want RIFF....WAVE", data[:12])
	}

	empty, err := EncodeWav(models.NewWaveform(nil, 16000))
	if err != nil || empty != nil {
		t.Errorf("EncodeWav(empty) = %v, %v, want nil, nil", empty, err)
	}
}

func TestFromIntBuffer(t *testing.T) {
	tests := []struct {
		name     string
		data     []int
		channels int
		bitDepth int
		want     []float32
	}{
		{"8-bit unsigned", []int{128, 255, 0, 192}, 1, 8, []float32{0, 127.0 / 128, -1, 0.5}},
		{"16-bit signed", []int{0, 16384, -32768}, 1, 16, []float32{0, 0.5, -1}},
		{"8-bit stereo", []int{128, 128, 0, 255}, 2, 8, []float32{0, -0.5 / 128}},
		{"24-bit stereo", []int{4194304, 4194304, -8388608, 0}, 2, 24, []float32{0.5, -0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &audio.IntBuffer{
				Data:           tt.data,
				Format:         &audio.Format{NumChannels: tt.channels, SampleRate: 8000},
				SourceBitDepth: tt.bitDepth,
			}
			got, err := fromIntBuffer(buf, 0)
			if err != nil {
				t.Fatal(err)
			}
			if got.Len() != len(tt.want) || got.SampleRate != 8000 {
				t.Fatalf("fromIntBuffer() = %v at %d Hz, want %v at 8000", got.Samples, got.SampleRate, tt.want)
			}
			for i := range tt.want {
				if math.Abs(float64(got.Samples[i]-tt.want[i])) > 1e-7 {
					t.Errorf("sample[%d] = %v, want %v", i, got.Samples[i], tt.want[i])
				}
			}
		})
	}
}
