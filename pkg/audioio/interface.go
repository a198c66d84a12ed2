package audioio

import (
	"io"
	"sync"
)

// StreamStatus is what the duplex callback tells the driver after each buffer.
type StreamStatus int

const (
	Continue StreamStatus = iota
	Complete
)

func (s StreamStatus) String() string {
	switch s {
	case Continue:
		return "continue"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// DuplexCallback receives the captured input buffer and fills out with len(out)
// frames of output. It runs on the driver thread and must not block.
type DuplexCallback func(in, out []float32) StreamStatus

// StreamConfig selects devices by their DeviceDirectory index.
type StreamConfig struct {
	InputDevice  int
	OutputDevice int
	SampleRate   int
	BufferSize   int
}

// Stream is a live duplex stream. IsActive turns false once the callback
// returned Complete and the driver processed the final buffer.
type Stream interface {
	Start() error
	IsActive() bool
	Stop() error
	Close() error
}

// Backend opens duplex streams against some audio driver.
type Backend interface {
	OpenDuplex(cfg StreamConfig, callback DuplexCallback) (Stream, error)
}

type OutputDevice interface {
	Play(audioOutput io.Reader) (*sync.WaitGroup, error)
	Stop() error
}
