package commands

import (
	"github.com/petrzlen/freqbench-golang/internal/config"
	"github.com/petrzlen/freqbench-golang/pkg/audioio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Loopback dry runs simulate a DUT that halves the signal two buffers late.
const (
	loopbackGain    = 0.5
	loopbackLatency = 2
)

type app struct {
	cfg      config.Config
	fs       afero.Fs
	loopback bool
}

// NewRootCommand builds the freqbench CLI with flag defaults taken from cfg.
// Every file the commands read or write goes through fs.
func NewRootCommand(cfg config.Config, fs afero.Fs) *cobra.Command {
	a := &app{cfg: cfg, fs: fs}

	rootCmd := &cobra.Command{
		Use:   "freqbench",
		Short: "Audio frequency response bench",
		Long: `freqbench plays a linear sine sweep through a device under test while
recording what comes back, then compares the two in the frequency domain.

Defaults are read from .env and FREQBENCH_* environment variables, flags win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&a.loopback, "loopback", false, "use a simulated device under test instead of the sound card")

	rootCmd.AddCommand(a.devicesCommand())
	rootCmd.AddCommand(a.sweepCommand())
	rootCmd.AddCommand(a.analyzeCommand())
	rootCmd.AddCommand(a.playCommand())
	rootCmd.AddCommand(a.convertCommand())
	rootCmd.AddCommand(a.serveCommand())
	return rootCmd
}

// backend opens the audio backend for one command. The returned close func
// must be called once the command is done with the devices.
func (a *app) backend() (audioio.Backend, *audioio.DeviceDirectory, func(), error) {
	if a.loopback {
		log.Info().Float64("gain", loopbackGain).Int("latency_buffers", loopbackLatency).Msg("using loopback backend")
		return audioio.NewLoopbackBackend(loopbackGain, loopbackLatency), nil, func() {}, nil
	}

	audio, err := audioio.NewAudio()
	if err != nil {
		return nil, nil, nil, err
	}
	directory, err := audio.Devices()
	if err != nil {
		dbg(audio.Close())
		return nil, nil, nil, err
	}
	return audio.NewBackend(directory), &directory, func() { dbg(audio.Close()) }, nil
}

func dbg(err error) {
	if err != nil {
		log.Debug().Err(err).Msg("sth non-essential failed")
	}
}
