// Package config resolves bench settings from a .env file and FREQBENCH_*
// environment variables. CLI flags default to the resolved values.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const envPrefix = "FREQBENCH_"

// Config holds everything a sweep, analysis or server run needs.
type Config struct {
	SampleRate   int
	BufferSize   int
	InputDevice  int
	OutputDevice int
	Amplitude    float64
	StartFreq    float64
	EndFreq      float64
	Duration     float64
	SmoothWindow int
	// AlignOffset of -1 estimates the capture delay.
	AlignOffset int
	OutputDir   string
	LogLevel    string
	ListenAddr  string
}

// Default returns the settings the bench was designed around: a 20 Hz to
// 20 kHz sweep over 5 seconds at 48 kHz, played at a tenth of full scale.
func Default() Config {
	return Config{
		SampleRate:   48000,
		BufferSize:   1024,
		InputDevice:  0,
		OutputDevice: 0,
		Amplitude:    0.1,
		StartFreq:    20,
		EndFreq:      20000,
		Duration:     5,
		SmoothWindow: 100,
		AlignOffset:  0,
		OutputDir:    "output",
		LogLevel:     "info",
		ListenAddr:   ":8081",
	}
}

// Load reads envFiles (".env" when none given) into the process environment
// and resolves the configuration from it. A missing env file only warns.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Warn().Err(err).Msg("cannot load .env file")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv resolves the configuration through lookup, starting from Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	ints := []struct {
		key string
		dst *int
	}{
		{"SAMPLE_RATE", &cfg.SampleRate},
		{"BUFFER_SIZE", &cfg.BufferSize},
		{"INPUT_DEVICE", &cfg.InputDevice},
		{"OUTPUT_DEVICE", &cfg.OutputDevice},
		{"SMOOTH_WINDOW", &cfg.SmoothWindow},
		{"ALIGN_OFFSET", &cfg.AlignOffset},
	}
	for _, f := range ints {
		v, ok := lookup(envPrefix + f.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "invalid %s%s", envPrefix, f.key)
		}
		*f.dst = parsed
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"AMPLITUDE", &cfg.Amplitude},
		{"START_FREQ", &cfg.StartFreq},
		{"END_FREQ", &cfg.EndFreq},
		{"DURATION", &cfg.Duration},
	}
	for _, f := range floats {
		v, ok := lookup(envPrefix + f.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, errors.Wrapf(err, "invalid %s%s", envPrefix, f.key)
		}
		*f.dst = parsed
	}

	for key, dst := range map[string]*string{
		"OUTPUT_DIR":  &cfg.OutputDir,
		"LOG_LEVEL":   &cfg.LogLevel,
		"LISTEN_ADDR": &cfg.ListenAddr,
	} {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	return cfg, nil
}
