package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/dtmfcodec/internal/cli/decode"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio devices usable with --device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		devices, err := decode.ListAudioDevices()
		if err != nil {
			return fmt.Errorf("audio: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, d := range devices {
			def := ""
			if d.Default {
				def = " (default)"
			}
			fmt.Fprintf(out, "%-8s [%d] %s%s\n", d.Kind, d.Index, d.Name, def)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
