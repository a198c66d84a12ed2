package audioio

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/petrzlen/freqbench-golang/pkg/audio_utils"
	"github.com/petrzlen/freqbench-golang/pkg/models"
	"github.com/rs/zerolog/log"
)

// playbackPeriods is how many periods miniaudio queues ahead of the device.
const playbackPeriods = 3

// drainTail is how long the queued periods take to reach the speaker once the
// callback has nothing more to write.
func drainTail(sampleRate int) time.Duration {
	frames := time.Duration(playbackPeriods * DefaultBufferSize)
	return frames * time.Second / time.Duration(sampleRate)
}

// playbackDevice plays float32 mono audio on a selected miniaudio output.
// Each Play opens the device and the monitor closes it once drained.
type playbackDevice struct {
	audio      *Audio
	output     Device
	sampleRate int

	mutex   sync.Mutex // Protects current
	current *playback
}

type playback struct {
	device  *malgo.Device
	samples []float32
	cursor  int
	drained atomic.Bool
	stop    atomic.Bool
	done    *sync.WaitGroup
}

// NewPlaybackDevice selects an output from directory for Play.
func (a *Audio) NewPlaybackDevice(directory DeviceDirectory, outputIndex int, sampleRate int) (OutputDevice, error) {
	output, err := directory.OutputDevice(outputIndex)
	if err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, sampleRate)
	}
	return &playbackDevice{audio: a, output: output, sampleRate: sampleRate}, nil
}

// Play reads the whole float32 LE stream up front, so the audio thread only copies.
func (p *playbackDevice) Play(audioOutput io.Reader) (*sync.WaitGroup, error) {
	raw, err := io.ReadAll(audioOutput)
	if err != nil {
		return nil, fmt.Errorf("cannot read playback audio %w", err)
	}
	samples := make([]float32, len(raw)/4)
	audio_utils.BytesToFloat32(samples, raw)

	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.current != nil {
		return nil, fmt.Errorf("playback in progress, you need to call Stop first")
	}

	pb := &playback{samples: samples, done: &sync.WaitGroup{}}
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = numChannels
	deviceConfig.Playback.DeviceID = p.output.id.Pointer()
	deviceConfig.SampleRate = uint32(p.sampleRate)
	deviceConfig.PeriodSizeInFrames = DefaultBufferSize
	deviceConfig.Periods = playbackPeriods
	deviceConfig.Alsa.NoMMap = 1

	pb.device, err = malgo.InitDevice(p.audio.malgoContext.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: pb.onData,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: cannot init malgo playback device %q: %w", ErrDevice, p.output.Name, err)
	}
	if err = pb.device.Start(); err != nil {
		pb.device.Uninit()
		return nil, fmt.Errorf("%w: cannot start malgo playback device: %w", ErrDevice, err)
	}

	pb.done.Add(1)
	p.current = pb
	go p.playerMonitorRoutine(pb)
	return pb.done, nil
}

func (pb *playback) onData(pOutputSamples, _ []byte, framecount uint32) {
	n := int(framecount)
	written := 0
	if !pb.stop.Load() && pb.cursor < len(pb.samples) {
		end := min(pb.cursor+n, len(pb.samples))
		audio_utils.Float32ToBytes(pOutputSamples, pb.samples[pb.cursor:end])
		written = end - pb.cursor
		pb.cursor = end
	}
	clear(pOutputSamples[4*written:])
	if written == 0 {
		pb.drained.Store(true)
	}
}

func (p *playbackDevice) Stop() error {
	p.mutex.Lock()
	pb := p.current
	p.mutex.Unlock()
	if pb == nil {
		return nil
	}
	pb.stop.Store(true)
	pb.done.Wait()
	return nil
}

func (p *playbackDevice) playerMonitorRoutine(pb *playback) {
	defer pb.done.Done()
	startTime := time.Now()
	for !pb.drained.Load() && pb.device.IsStarted() {
		time.Sleep(pollInterval)
	}
	// The driver still holds the last periods when the callback runs dry.
	if !pb.stop.Load() {
		time.Sleep(drainTail(p.sampleRate))
	}
	dbg(pb.device.Stop())
	pb.device.Uninit()

	p.mutex.Lock()
	p.current = nil
	p.mutex.Unlock()
	log.Debug().Dur("playback_duration", time.Since(startTime)).Msg("malgo playback done")
}

// PlayWaveform plays w on outputDevice and blocks until it finished.
func PlayWaveform(outputDevice OutputDevice, w models.Waveform) error {
	log.Info().Int("frames", w.Len()).Dur("duration", w.Duration()).Msg("PlayWaveform started")
	startTime := time.Now()

	waitTilDone, err := outputDevice.Play(bytes.NewReader(audio_utils.EncodeFloat32(w.Samples)))
	if err != nil {
		return fmt.Errorf("cannot play waveform %w", err)
	}
	if waitTilDone != nil {
		waitTilDone.Wait()
	}

	log.Info().Dur("duration", time.Since(startTime)).Msg("PlayWaveform done")
	return nil
}
