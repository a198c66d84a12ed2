package commands

import (
	"path/filepath"

	"github.com/petrzlen/freqbench-golang/pkg/audio_utils"
	"github.com/petrzlen/freqbench-golang/pkg/audioio"
	"github.com/petrzlen/freqbench-golang/pkg/bench"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (a *app) sweepCommand() *cobra.Command {
	req := bench.SweepRequest{
		StartFreq:    a.cfg.StartFreq,
		EndFreq:      a.cfg.EndFreq,
		Duration:     a.cfg.Duration,
		SampleRate:   a.cfg.SampleRate,
		InputDevice:  a.cfg.InputDevice,
		OutputDevice: a.cfg.OutputDevice,
		SmoothWindow: a.cfg.SmoothWindow,
		AlignOffset:  a.cfg.AlignOffset,
	}
	bufferSize := a.cfg.BufferSize
	amplitude := a.cfg.Amplitude
	outDir := a.cfg.OutputDir

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Measure the response of the device under test",
		Long: `Plays a linear sine sweep on the output device while recording the input
device, then writes stimulus.wav, captured.wav and response.csv to the output
directory and prints a short summary.

Examples:
  freqbench sweep --input 1 --output 2
  freqbench sweep --start 100 --end 10000 --duration 2 --smooth 0
  freqbench --loopback sweep --align-offset -1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, directory, closeBackend, err := a.backend()
			if err != nil {
				return err
			}
			defer closeBackend()

			runner := bench.NewRunner(audioio.NewEngine(backend), directory)
			runner.BufferSize = bufferSize
			runner.Amplitude = amplitude

			result, err := runner.Measure(req)
			if err != nil {
				return err
			}

			m := result.Measurement
			if err := audio_utils.SaveWav(a.fs, filepath.Join(outDir, "stimulus.wav"), m.Stimulus); err != nil {
				return err
			}
			if err := audio_utils.SaveWav(a.fs, filepath.Join(outDir, "captured.wav"), m.Captured); err != nil {
				return err
			}
			csvPath := filepath.Join(outDir, "response.csv")
			if err := writeResponseCSV(a.fs, csvPath, result.Curve); err != nil {
				return err
			}
			log.Info().Str("output_dir", outDir).Msg("sweep saved")

			return printSummary(cmd.OutOrStdout(), result.Curve, result.Offset)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&req.StartFreq, "start", req.StartFreq, "sweep start frequency in Hz")
	flags.Float64Var(&req.EndFreq, "end", req.EndFreq, "sweep end frequency in Hz")
	flags.Float64Var(&req.Duration, "duration", req.Duration, "sweep duration in seconds")
	flags.IntVar(&req.SampleRate, "sample-rate", req.SampleRate, "sample rate in Hz")
	flags.IntVarP(&req.InputDevice, "input", "i", req.InputDevice, "input device index (see devices)")
	flags.IntVarP(&req.OutputDevice, "output", "o", req.OutputDevice, "output device index (see devices)")
	flags.IntVar(&req.SmoothWindow, "smooth", req.SmoothWindow, "moving average window in bins, 0 or 1 disables")
	flags.IntVar(&req.AlignOffset, "align-offset", req.AlignOffset, "samples to skip in the capture, -1 estimates the delay")
	flags.IntVar(&req.Points, "points", 0, "decimate the saved curve to this many points, 0 keeps all bins")
	flags.IntVar(&bufferSize, "buffer-size", bufferSize, "frames per audio callback")
	flags.Float64Var(&amplitude, "amplitude", amplitude, "peak amplitude of the sweep, full scale is 1")
	flags.StringVar(&outDir, "out-dir", outDir, "directory for the wav and csv files")
	return cmd
}
