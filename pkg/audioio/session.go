package audioio

import "github.com/petrzlen/freqbench-golang/pkg/models"

// CaptureBuffer accumulates the captured input, one chunk per callback, in
// arrival order. Storage is reserved up front so appends on the audio thread
// do not allocate as long as the driver sticks to the configured buffer size.
type CaptureBuffer struct {
	samples []float32
	chunks  int
}

func newCaptureBuffer(capacity int) *CaptureBuffer {
	return &CaptureBuffer{samples: make([]float32, 0, capacity)}
}

func (c *CaptureBuffer) append(chunk []float32) {
	c.samples = append(c.samples, chunk...)
	c.chunks++
}

// Chunks is the number of callback buffers appended so far.
func (c *CaptureBuffer) Chunks() int {
	return c.chunks
}

func (c *CaptureBuffer) Len() int {
	return len(c.samples)
}

// Waveform freezes the capture. The samples are shared, not copied.
func (c *CaptureBuffer) Waveform(sampleRate int) models.Waveform {
	return models.NewWaveform(c.samples, sampleRate)
}

// StreamSession is the state of one playback+capture pass: the padded
// stimulus, a cursor of frames already written, and the capture buffer.
//
// Process is the whole state transition of the duplex callback; everything it
// touches lives on the session so it can be driven without a device.
type StreamSession struct {
	stimulus []float32
	cursor   int
	capture  *CaptureBuffer
	done     bool
}

// NewStreamSession prepares a session for an already padded stimulus.
func NewStreamSession(stimulus []float32, bufferSize int) *StreamSession {
	// One extra buffer for the final "complete" callback and one for a short tail period.
	buffers := (len(stimulus)+bufferSize-1)/bufferSize + 2
	return &StreamSession{
		stimulus: stimulus,
		capture:  newCaptureBuffer(buffers * bufferSize),
	}
}

// Process handles one buffer period with frameCount = len(out):
//   - copies the next frameCount stimulus samples into out, zero-filling past the end,
//   - appends in to the capture buffer,
//   - advances the cursor,
//   - reports Complete once the cursor had already consumed the whole stimulus.
//
// Once Complete was returned the session is finished and further calls only
// write silence.
func (s *StreamSession) Process(in, out []float32) StreamStatus {
	if s.done {
		clear(out)
		return Complete
	}

	frameCount := len(out)
	status := Continue
	if s.cursor >= len(s.stimulus) {
		status = Complete
		s.done = true
	}

	n := 0
	if s.cursor < len(s.stimulus) {
		n = copy(out, s.stimulus[s.cursor:])
	}
	clear(out[n:])

	s.capture.append(in)
	s.cursor += frameCount

	return status
}

func (s *StreamSession) Cursor() int {
	return s.cursor
}

func (s *StreamSession) Done() bool {
	return s.done
}

func (s *StreamSession) Capture() *CaptureBuffer {
	return s.capture
}

// Captured returns the concatenated capture. Only call it after the stream is
// inactive; the returned slice is not copied.
func (s *StreamSession) Captured() []float32 {
	return s.capture.samples
}
