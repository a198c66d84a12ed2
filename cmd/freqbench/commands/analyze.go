package commands

import (
	"path/filepath"

	"github.com/petrzlen/freqbench-golang/pkg/audio_utils"
	"github.com/petrzlen/freqbench-golang/pkg/bench"
	"github.com/petrzlen/freqbench-golang/pkg/models"
	"github.com/spf13/cobra"
)

func (a *app) analyzeCommand() *cobra.Command {
	smoothWindow := a.cfg.SmoothWindow
	alignOffset := a.cfg.AlignOffset
	points := 0
	csvPath := filepath.Join(a.cfg.OutputDir, "response.csv")

	cmd := &cobra.Command{
		Use:   "analyze <stimulus> <captured>",
		Short: "Compute the response from a saved stimulus and capture",
		Long: `Loads a stimulus and a capture (wav, flac or mp3), aligns the capture,
computes the frequency response and writes it as CSV.

Examples:
  freqbench analyze output/stimulus.wav output/captured.wav
  freqbench analyze sweep.flac recording.mp3 --align-offset -1 --csv recording.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stimulus, err := audio_utils.Load(a.fs, args[0])
			if err != nil {
				return err
			}
			captured, err := audio_utils.Load(a.fs, args[1])
			if err != nil {
				return err
			}

			m := models.Measurement{Stimulus: stimulus, Captured: captured, Trace: models.NewTrace("freqbench analyze")}
			result, err := bench.Analyze(m, alignOffset, smoothWindow, points)
			if err != nil {
				return err
			}
			m.Trace.MarkProcessed("bench.Analyze")
			m.Trace.Log()

			if err := writeResponseCSV(a.fs, csvPath, result.Curve); err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), result.Curve, result.Offset)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&smoothWindow, "smooth", smoothWindow, "moving average window in bins, 0 or 1 disables")
	flags.IntVar(&alignOffset, "align-offset", alignOffset, "samples to skip in the capture, -1 estimates the delay")
	flags.IntVar(&points, "points", points, "decimate the curve to this many points, 0 keeps all bins")
	flags.StringVar(&csvPath, "csv", csvPath, "where to write the response curve")
	return cmd
}
