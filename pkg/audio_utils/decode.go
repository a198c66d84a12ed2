package audio_utils

import (
	"encoding/binary"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
	"github.com/petrzlen/freqbench-golang/pkg/models"
	"github.com/pkg/errors"
)

// DecodeFlac reads an entire flac stream and downmixes it to mono.
func DecodeFlac(r io.Reader) (models.Waveform, error) {
	stream, err := flac.New(r)
	if err != nil {
		return models.Waveform{}, errors.Wrap(err, "cannot parse flac header")
	}
	defer func() { dbg(stream.Close()) }()

	numChannels := int(stream.Info.NChannels)
	if numChannels < 1 {
		return models.Waveform{}, errors.New("flac stream has no channels")
	}
	scale := float64(int64(1) << (stream.Info.BitsPerSample - 1))

	samples := make([]float32, 0, stream.Info.NSamples)
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Waveform{}, errors.Wrap(err, "cannot parse flac frame")
		}
		channels := make([][]int32, len(frame.Subframes))
		for c, sub := range frame.Subframes {
			channels[c] = sub.Samples
		}
		samples = downmixChannels(samples, channels, int(frame.BlockSize), scale)
	}
	return models.NewWaveform(samples, int(stream.Info.SampleRate)), nil
}

// downmixChannels appends the average of blockSize samples across channels,
// divided by scale, to dst.
func downmixChannels(dst []float32, channels [][]int32, blockSize int, scale float64) []float32 {
	for i := range blockSize {
		var sum float64
		for _, ch := range channels {
			sum += float64(ch[i])
		}
		dst = append(dst, float32(sum/float64(len(channels))/scale))
	}
	return dst
}

// DecodeMp3 decodes an mp3 stream; go-mp3 always yields 16-bit little-endian stereo.
func DecodeMp3(r io.Reader) (models.Waveform, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return models.Waveform{}, errors.Wrap(err, "cannot create mp3 decoder")
	}
	raw, err := io.ReadAll(decoder)
	if err != nil {
		return models.Waveform{}, errors.Wrap(err, "cannot decode mp3")
	}

	return models.NewWaveform(downmixStereo16(raw), decoder.SampleRate()), nil
}

// downmixStereo16 averages interleaved 16-bit little-endian stereo into mono.
func downmixStereo16(raw []byte) []float32 {
	const bytesPerFrame = 4
	samples := make([]float32, len(raw)/bytesPerFrame)
	for i := range samples {
		left := int16(binary.LittleEndian.Uint16(raw[i*bytesPerFrame:]))
		right := int16(binary.LittleEndian.Uint16(raw[i*bytesPerFrame+2:]))
		samples[i] = float32((float64(left) + float64(right)) / 2 / 32768)
	}
	return samples
}
