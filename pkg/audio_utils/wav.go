package audio_utils

import (
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/petrzlen/freqbench-golang/pkg/models"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

var ErrUnsupportedFormat = errors.New("unsupported audio file format")

// SaveWav writes w as a mono 24-bit PCM wav file, creating parent directories as needed.
func SaveWav(fs afero.Fs, path string, w models.Waveform) error {
	if err := w.Validate(); err != nil {
		return errors.Wrapf(err, "cannot save %s", path)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "cannot create directory %s", dir)
		}
	}
	f, err := fs.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", path)
	}
	defer func() { dbg(f.Close()) }()

	return errors.Wrapf(encodeWav(f, w), "cannot write %s", path)
}

// Load reads a wav, flac or mp3 file into a mono waveform.
func Load(fs afero.Fs, path string) (models.Waveform, error) {
	f, err := fs.Open(path)
	if err != nil {
		return models.Waveform{}, errors.Wrapf(err, "cannot open %s", path)
	}
	defer func() { dbg(f.Close()) }()

	var w models.Waveform
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav", ".wave":
		w, err = decodeWav(f)
	case ".flac":
		w, err = DecodeFlac(f)
	case ".mp3":
		w, err = DecodeMp3(f)
	default:
		return models.Waveform{}, errors.Wrapf(ErrUnsupportedFormat, "%s", ext)
	}
	if err != nil {
		return models.Waveform{}, errors.Wrapf(err, "cannot decode %s", path)
	}
	return w, nil
}

func decodeWav(f afero.File) (models.Waveform, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return models.Waveform{}, errors.New("invalid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return models.Waveform{}, err
	}
	return fromIntBuffer(buf, int(dec.BitDepth))
}
