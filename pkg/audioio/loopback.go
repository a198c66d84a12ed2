package audioio

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// LoopbackBackend simulates a device under test in-process: every output
// buffer comes back at the input LatencyBuffers periods later, scaled by Gain.
// The driver loop runs on its own goroutine like a real audio thread.
type LoopbackBackend struct {
	Gain float32
	// LatencyBuffers is the round trip in whole buffers; values below 1 mean 1.
	LatencyBuffers int
	// Pace sleeps one buffer period per callback instead of running flat out.
	Pace bool
}

func NewLoopbackBackend(gain float32, latencyBuffers int) *LoopbackBackend {
	return &LoopbackBackend{Gain: gain, LatencyBuffers: latencyBuffers}
}

func (b *LoopbackBackend) OpenDuplex(cfg StreamConfig, callback DuplexCallback) (Stream, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	latency := max(b.LatencyBuffers, 1)
	var period time.Duration
	if b.Pace {
		period = time.Duration(float64(cfg.BufferSize) / float64(cfg.SampleRate) * float64(time.Second))
	}
	return &loopbackStream{
		bufferSize: cfg.BufferSize,
		callback:   callback,
		gain:       b.Gain,
		latency:    latency,
		period:     period,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}, nil
}

type loopbackStream struct {
	bufferSize int
	callback   DuplexCallback
	gain       float32
	latency    int
	period     time.Duration

	started  atomic.Bool
	finished atomic.Bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func (s *loopbackStream) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("loopback stream already started")
	}
	go s.run()
	return nil
}

func (s *loopbackStream) run() {
	defer close(s.done)

	ring := make([][]float32, s.latency)
	for i := range ring {
		ring[i] = make([]float32, s.bufferSize)
	}
	out := make([]float32, s.bufferSize)

	for i := 0; ; i++ {
		select {
		case <-s.stop:
			s.finished.Store(true)
			return
		default:
		}

		slot := ring[i%s.latency]
		status := s.callback(slot, out)
		for j, v := range out {
			slot[j] = v * s.gain
		}
		if status == Complete {
			s.finished.Store(true)
			return
		}
		if s.period > 0 {
			time.Sleep(s.period)
		}
	}
}

func (s *loopbackStream) IsActive() bool {
	return s.started.Load() && !s.finished.Load()
}

func (s *loopbackStream) Stop() error {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.started.Load() {
		<-s.done
	}
	return nil
}

func (s *loopbackStream) Close() error {
	return s.Stop()
}
