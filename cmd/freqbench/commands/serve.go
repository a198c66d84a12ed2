package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/petrzlen/freqbench-golang/internal/networking"
	"github.com/petrzlen/freqbench-golang/pkg/audioio"
	"github.com/petrzlen/freqbench-golang/pkg/bench"
	"github.com/spf13/cobra"
)

const remotePath = "/ws"

func (a *app) serveCommand() *cobra.Command {
	listenAddr := a.cfg.ListenAddr
	bufferSize := a.cfg.BufferSize
	amplitude := a.cfg.Amplitude

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run sweeps requested over a websocket",
		Long: `Serves the remote bench on ws://<listen>/ws. Clients send JSON sweep
requests and get the response curve back; sweeps run one at a time.

Example request:
  {"event": "sweep", "startFreq": 20, "endFreq": 20000, "duration": 5,
   "sampleRate": 48000, "inputDevice": 1, "outputDevice": 2, "smoothWindow": 100, "points": 512}`,
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

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, listenAddr, runner)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&listenAddr, "listen", listenAddr, "address to listen on")
	flags.IntVar(&bufferSize, "buffer-size", bufferSize, "frames per audio callback")
	flags.Float64Var(&amplitude, "amplitude", amplitude, "peak amplitude of the sweep, full scale is 1")
	return cmd
}

func serve(ctx context.Context, addr string, runner *bench.Runner) error {
	remoteHandlerFactory := func() networking.WebsocketMessageHandler {
		return bench.NewRemoteHandler(runner)
	}
	return networking.Serve(ctx, addr, remotePath, remoteHandlerFactory)
}
