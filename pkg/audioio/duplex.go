package audioio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/petrzlen/freqbench-golang/pkg/models"
	"github.com/petrzlen/freqbench-golang/pkg/signal"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBufferSize = 1024
	// PaddingBuffers of silence go before and after the stimulus, giving the DUT
	// time to settle and the capture some margin on both ends.
	PaddingBuffers = 5

	pollInterval = time.Millisecond
)

var (
	// ErrDevice classifies failures to open or drive an audio device.
	ErrDevice        = errors.New("audio device error")
	ErrInvalidConfig = errors.New("invalid stream configuration")
	ErrEmptyStimulus = errors.New("stimulus is empty")
)

// Engine plays a stimulus while recording through a duplex stream.
// At most one session runs per engine at a time.
type Engine struct {
	backend Backend
	mutex   sync.Mutex
}

func NewEngine(backend Backend) *Engine {
	return &Engine{backend: backend}
}

func (cfg StreamConfig) validate() error {
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, cfg.SampleRate)
	}
	if cfg.BufferSize <= 0 {
		return fmt.Errorf("%w: buffer size %d", ErrInvalidConfig, cfg.BufferSize)
	}
	if cfg.InputDevice < 0 || cfg.OutputDevice < 0 {
		return fmt.Errorf("%w: device index in=%d out=%d", ErrInvalidDevice, cfg.InputDevice, cfg.OutputDevice)
	}
	return nil
}

// PadStimulus surrounds the stimulus with PaddingBuffers buffers of silence on each side.
func PadStimulus(stimulus models.Waveform, bufferSize int) models.Waveform {
	pad := PaddingBuffers * bufferSize
	padded := signal.Silence(pad+stimulus.Len()+pad, stimulus.SampleRate)
	copy(padded.Samples[pad:], stimulus.Samples)
	return padded
}

// RunSession plays the padded stimulus and records the input until the
// stimulus is exhausted. It returns the padded stimulus as played and the
// capture; the capture is rounded up to whole buffers so the lengths differ.
func (e *Engine) RunSession(cfg StreamConfig, stimulus models.Waveform) (played models.Waveform, captured models.Waveform, err error) {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if err = cfg.validate(); err != nil {
		return
	}
	if stimulus.Len() == 0 {
		err = ErrEmptyStimulus
		return
	}
	if stimulus.SampleRate != cfg.SampleRate {
		err = fmt.Errorf("%w: stimulus sample rate %d does not match stream sample rate %d", ErrInvalidConfig, stimulus.SampleRate, cfg.SampleRate)
		return
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	padded := PadStimulus(stimulus, cfg.BufferSize)
	session := NewStreamSession(padded.Samples, cfg.BufferSize)

	log.Info().Int("input_device", cfg.InputDevice).Int("output_device", cfg.OutputDevice).Int("sample_rate", cfg.SampleRate).Int("buffer_size", cfg.BufferSize).Int("padded_frames", padded.Len()).Msg("opening duplex stream")
	stream, err := e.backend.OpenDuplex(cfg, session.Process)
	if err != nil {
		if !errors.Is(err, ErrDevice) && !errors.Is(err, ErrInvalidDevice) {
			err = fmt.Errorf("%w: %w", ErrDevice, err)
		}
		return
	}
	defer func() { dbg(stream.Close()) }()

	startTime := time.Now()
	if err = stream.Start(); err != nil {
		err = fmt.Errorf("%w: cannot start duplex stream: %w", ErrDevice, err)
		return
	}

	for stream.IsActive() {
		time.Sleep(pollInterval)
	}
	dbg(stream.Stop())

	capture := session.Capture()
	log.Info().Dur("session_duration", time.Since(startTime)).Int("callbacks", capture.Chunks()).Int("captured_frames", capture.Len()).Msg("duplex session done")

	played = padded
	captured = capture.Waveform(cfg.SampleRate)
	return
}

func dbg(err error) {
	if err != nil {
		log.Debug().Err(err).Msg("sth non-essential failed")
	}
}
