package commands

import (
	"github.com/petrzlen/freqbench-golang/pkg/audio_utils"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (a *app) convertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input> <output.wav>",
		Short: "Convert a flac, mp3 or wav file to mono 24-bit wav",
		Long: `Decodes the input, downmixes it to mono and writes a 24-bit PCM wav file,
the format the bench saves its own recordings in.

Examples:
  freqbench convert reference.flac output/reference.wav`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := audio_utils.Load(a.fs, args[0])
			if err != nil {
				return err
			}
			if err := audio_utils.SaveWav(a.fs, args[1], w); err != nil {
				return err
			}
			log.Info().Str("input", args[0]).Str("output", args[1]).Int("sample_rate", w.SampleRate).Dur("duration", w.Duration()).Msg("converted")
			return nil
		},
	}
}
