package commands

import (
	"fmt"

	"github.com/petrzlen/freqbench-golang/pkg/audioio"
	"github.com/spf13/cobra"
)

func (a *app) devicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input and output devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.loopback {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "loopback: simulated device under test, any index works")
				return err
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
			_, err = fmt.Fprint(cmd.OutOrStdout(), directory.String())
			return err
		},
	}
}
