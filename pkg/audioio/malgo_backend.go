// TLDR; Go itself cannot work with audio devices well
// BUT it can bind with C-libraries (miniaudio via malgo) which can.
package audioio

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/petrzlen/freqbench-golang/pkg/audio_utils"
	"github.com/rs/zerolog/log"
)

const numChannels uint32 = 1

// Audio owns the miniaudio context. Create it with NewAudio and always
// defer Close; every device opened through it must be closed first.
type Audio struct {
	malgoContext *malgo.AllocatedContext
}

// NewAudio inits the miniaudio context. The driver chatter miniaudio prints
// while probing backends goes to the trace log instead of the terminal.
func NewAudio() (*Audio, error) {
	log.Info().Msg("malgo init context (miniaudio)")
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Trace().Msg(strings.Replace("malgo: "+message, "\n", "", -1))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: cannot init malgo context: %w", ErrDevice, err)
	}
	return &Audio{malgoContext: ctx}, nil
}

func (a *Audio) Close() error {
	if a.malgoContext == nil {
		return nil
	}
	err := a.malgoContext.Uninit()
	a.malgoContext.Free()
	a.malgoContext = nil
	return err
}

// Devices enumerates capture devices as inputs and playback devices as outputs.
func (a *Audio) Devices() (DeviceDirectory, error) {
	captures, err := a.malgoContext.Context.Devices(malgo.Capture)
	if err != nil {
		return DeviceDirectory{}, fmt.Errorf("%w: cannot list capture devices: %w", ErrDevice, err)
	}
	playbacks, err := a.malgoContext.Context.Devices(malgo.Playback)
	if err != nil {
		return DeviceDirectory{}, fmt.Errorf("%w: cannot list playback devices: %w", ErrDevice, err)
	}
	dir := newDeviceDirectory(captures, playbacks)
	log.Debug().Int("inputs", len(dir.Inputs)).Int("outputs", len(dir.Outputs)).Msg("malgo devices enumerated")
	return dir, nil
}

// MalgoBackend opens duplex streams on devices from a DeviceDirectory.
type MalgoBackend struct {
	audio     *Audio
	directory DeviceDirectory
}

func (a *Audio) NewBackend(directory DeviceDirectory) *MalgoBackend {
	return &MalgoBackend{audio: a, directory: directory}
}

func (b *MalgoBackend) OpenDuplex(cfg StreamConfig, callback DuplexCallback) (Stream, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	input, err := b.directory.InputDevice(cfg.InputDevice)
	if err != nil {
		return nil, err
	}
	output, err := b.directory.OutputDevice(cfg.OutputDevice)
	if err != nil {
		return nil, err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Duplex)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = numChannels
	deviceConfig.Capture.DeviceID = input.id.Pointer()
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = numChannels
	deviceConfig.Playback.DeviceID = output.id.Pointer()
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(cfg.BufferSize)
	deviceConfig.Alsa.NoMMap = 1

	s := &malgoStream{
		callback: callback,
		in:       make([]float32, cfg.BufferSize),
		out:      make([]float32, cfg.BufferSize),
	}
	s.device, err = malgo.InitDevice(b.audio.malgoContext.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: s.onData,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: cannot init malgo duplex device %q -> %q: %w", ErrDevice, output.Name, input.Name, err)
	}
	return s, nil
}

type malgoStream struct {
	device   *malgo.Device
	callback DuplexCallback

	// Scratch owned by the audio thread.
	in  []float32
	out []float32

	started   atomic.Bool
	finished  atomic.Bool
	closeOnce sync.Once
}

func (s *malgoStream) onData(pOutputSamples, pInputSamples []byte, framecount uint32) {
	if s.finished.Load() {
		clear(pOutputSamples)
		return
	}
	n := int(framecount)
	if cap(s.in) < n {
		// Only if the driver ignores the requested period size.
		s.in = make([]float32, n)
		s.out = make([]float32, n)
	}
	in, out := s.in[:n], s.out[:n]
	audio_utils.BytesToFloat32(in, pInputSamples)
	status := s.callback(in, out)
	audio_utils.Float32ToBytes(pOutputSamples, out)
	if status == Complete {
		s.finished.Store(true)
	}
}

func (s *malgoStream) Start() error {
	log.Info().Msg("malgo START duplex stream...")
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("cannot start malgo device %w", err)
	}
	s.started.Store(true)
	return nil
}

func (s *malgoStream) IsActive() bool {
	return s.started.Load() && !s.finished.Load() && s.device.IsStarted()
}

func (s *malgoStream) Stop() error {
	log.Info().Msg("malgo STOP duplex stream")
	return s.device.Stop()
}

func (s *malgoStream) Close() error {
	s.closeOnce.Do(func() {
		s.device.Uninit()
	})
	return nil
}
