package config

import (
	"os"
	"path/filepath"
	"testing"
)

func lookupMap(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupMap(nil))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("FromEnv() = %+v, want defaults %+v", cfg, Default())
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookupMap(map[string]string{
		"FREQBENCH_SAMPLE_RATE":   "44100",
		"FREQBENCH_BUFFER_SIZE":   "512",
		"FREQBENCH_INPUT_DEVICE":  "2",
		"FREQBENCH_OUTPUT_DEVICE": "3",
		"FREQBENCH_AMPLITUDE":     "0.25",
		"FREQBENCH_START_FREQ":    "100",
		"FREQBENCH_END_FREQ":      "10000",
		"FREQBENCH_DURATION":      "2.5",
		"FREQBENCH_SMOOTH_WINDOW": "31",
		"FREQBENCH_ALIGN_OFFSET":  "-1",
		"FREQBENCH_OUTPUT_DIR":    "/tmp/bench",
		"FREQBENCH_LOG_LEVEL":     "debug",
		"FREQBENCH_LISTEN_ADDR":   "127.0.0.1:9000",
		"FREQBENCH_SAMPLE":        "ignored",
	}))
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		SampleRate:   44100,
		BufferSize:   512,
		InputDevice:  2,
		OutputDevice: 3,
		Amplitude:    0.25,
		StartFreq:    100,
		EndFreq:      10000,
		Duration:     2.5,
		SmoothWindow: 31,
		AlignOffset:  -1,
		OutputDir:    "/tmp/bench",
		LogLevel:     "debug",
		ListenAddr:   "127.0.0.1:9000",
	}
	if cfg != want {
		t.Errorf("FromEnv() = %+v, want %+v", cfg, want)
	}
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"FREQBENCH_SAMPLE_RATE", "fast"},
		{"FREQBENCH_DURATION", "1s"},
		{"FREQBENCH_ALIGN_OFFSET", "0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if _, err := FromEnv(lookupMap(map[string]string{tt.key: tt.value})); err == nil {
				t.Errorf("FromEnv(%s=%q) error = nil, want parse error", tt.key, tt.value)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.env")
	if err := os.WriteFile(path, []byte("FREQBENCH_END_FREQ=12000\nFREQBENCH_LOG_LEVEL=warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv never overrides variables that are already set.
	t.Setenv("FREQBENCH_LOG_LEVEL", "error")
	t.Setenv("FREQBENCH_END_FREQ", "")
	os.Unsetenv("FREQBENCH_END_FREQ")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Unsetenv("FREQBENCH_END_FREQ")

	if cfg.EndFreq != 12000 {
		t.Errorf("EndFreq = %v, want 12000", cfg.EndFreq)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "error")
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for a missing file", err)
	}
	if cfg.SampleRate <= 0 {
		t.Errorf("SampleRate = %d, want a positive default", cfg.SampleRate)
	}
}
