// freqbench measures the frequency response of an audio device under test.
//
// Usage:
//
//	freqbench devices                      # list input and output devices
//	freqbench sweep --input 1 --output 2   # measure, write wavs and response.csv
//	freqbench analyze stimulus.wav captured.wav
//	freqbench play sweep.wav --device 2
//	freqbench serve --listen :8081         # remote bench over websockets
//	freqbench --loopback sweep             # dry run against a simulated DUT
//
// Defaults come from .env and FREQBENCH_* environment variables.
package main

import (
	"os"

	"github.com/petrzlen/freqbench-golang/cmd/freqbench/commands"
	"github.com/petrzlen/freqbench-golang/internal/config"
	"github.com/petrzlen/freqbench-golang/internal/utils"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = utils.SetupZerolog(cfg.LogLevel)
	}
	if err != nil {
		log.Error().Err(err).Msg("cannot configure freqbench")
		os.Exit(1)
	}

	if err := commands.NewRootCommand(cfg, afero.NewOsFs()).Execute(); err != nil {
		log.Error().Err(err).Msg("freqbench failed")
		os.Exit(1)
	}
}
