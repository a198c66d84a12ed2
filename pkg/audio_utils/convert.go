package audio_utils

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/petrzlen/freqbench-golang/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// WavBitDepth is used for every wav we write; 24 bits keep the quantization
// noise far below anything a sweep measurement can resolve.
const WavBitDepth = 24

const wavFormatPCM = 1

func dbg(err error) {
	if err != nil {
		log.Debug().Err(err).Msg("sth non-essential failed")
	}
}

// Float32ToBytes writes samples as little-endian IEEE-754 into dst, which must hold 4*len(samples) bytes.
func Float32ToBytes(dst []byte, samples []float32) {
	for i, v := range samples {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(v))
	}
}

// BytesToFloat32 decodes little-endian IEEE-754 samples from src into dst.
func BytesToFloat32(dst []float32, src []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
	}
}

// EncodeFloat32 allocates the byte representation of samples, as fed to the playback devices.
func EncodeFloat32(samples []float32) []byte {
	out := make([]byte, 4*len(samples))
	Float32ToBytes(out, samples)
	return out
}

func toIntBuffer(w models.Waveform, bitDepth int) *audio.IntBuffer {
	full := float64(int(1)<<(bitDepth-1)) - 1
	data := make([]int, len(w.Samples))
	for i, v := range w.Samples {
		s := math.Max(-1, math.Min(1, float64(v)))
		data[i] = int(math.Round(s * full))
	}
	return &audio.IntBuffer{
		Data: data,
		Format: &audio.Format{
			SampleRate:  w.SampleRate,
			NumChannels: 1,
		},
		SourceBitDepth: bitDepth,
	}
}

// fromIntBuffer downmixes to mono and normalizes integer PCM into [-1, 1].
func fromIntBuffer(buf *audio.IntBuffer, bitDepth int) (models.Waveform, error) {
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return models.Waveform{}, fmt.Errorf("invalid pcm buffer")
	}
	if bitDepth <= 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 {
		return models.Waveform{}, fmt.Errorf("unknown pcm bit depth")
	}
	ch := buf.Format.NumChannels
	scale := float64(int(1) << (bitDepth - 1))
	// 8-bit wav is unsigned with silence at 128.
	var offset float64
	if bitDepth == 8 {
		offset = scale
	}
	frames := len(buf.Data) / ch
	out := make([]float32, frames)
	for i := range out {
		var sum float64
		for c := range ch {
			sum += float64(buf.Data[i*ch+c]) - offset
		}
		out[i] = float32(sum / float64(ch) / scale)
	}
	return models.NewWaveform(out, buf.Format.SampleRate), nil
}

// EncodeWav produces an in-memory wav file of w.
func EncodeWav(w models.Waveform) (result []byte, err error) {
	if len(w.Samples) == 0 {
		return // Nothing to do
	}

	// The wav encoder needs an io.WriteSeeker to finalize headers.
	fs := afero.NewMemMapFs()
	inMemoryFilename := "in-memory-output.wav"
	if err = SaveWav(fs, inMemoryFilename, w); err != nil {
		return
	}

	inMemoryFile, err := fs.Open(inMemoryFilename)
	if err != nil {
		return
	}
	defer func() { dbg(inMemoryFile.Close()) }()
	result, err = io.ReadAll(inMemoryFile)
	if err == nil && len(result) == 0 {
		err = fmt.Errorf("wav output is empty when input was not")
	}
	return
}

func encodeWav(out io.WriteSeeker, w models.Waveform) error {
	wavEncoder := wav.NewEncoder(out, w.SampleRate, WavBitDepth, 1, wavFormatPCM)
	log.Debug().Int("sample_count", len(w.Samples)).Int("sample_rate", w.SampleRate).Int("bit_depth", WavBitDepth).Msg("encoding waveform as a wav")
	if err := wavEncoder.Write(toIntBuffer(w, WavBitDepth)); err != nil {
		return fmt.Errorf("cannot encode waveform as wav %w", err)
	}
	// Close flushes the remaining data and finalizes the header.
	if err := wavEncoder.Close(); err != nil {
		return fmt.Errorf("cannot finish wav encoding %w", err)
	}
	return nil
}
