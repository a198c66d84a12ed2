package commands

import (
	"github.com/petrzlen/freqbench-golang/pkg/audio_utils"
	"github.com/petrzlen/freqbench-golang/pkg/audioio"
	"github.com/spf13/cobra"
)

func (a *app) playCommand() *cobra.Command {
	device := -1

	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play a wav, flac or mp3 file",
		Long: `Plays a file on the chosen output device, or on the system default output
when no device is given.

Examples:
  freqbench play output/stimulus.wav
  freqbench play output/captured.wav --device 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := audio_utils.Load(a.fs, args[0])
			if err != nil {
				return err
			}

			if device < 0 {
				speakers, err := audioio.NewSpeakers(w.SampleRate)
				if err != nil {
					return err
				}
				return audioio.PlayWaveform(speakers, w)
			}

			audio, err := audioio.NewAudio()
			if err != nil {
				return err
			}
			defer func() { dbg(audio.Close()) }()
			directory, err := audio.Devices()
			if err != nil {
				return err
			}
			output, err := audio.NewPlaybackDevice(directory, device, w.SampleRate)
			if err != nil {
				return err
			}
			return audioio.PlayWaveform(output, w)
		},
	}

	cmd.Flags().IntVarP(&device, "device", "d", device, "output device index, -1 plays on the system default output")
	return cmd
}
