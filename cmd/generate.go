package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/dtmfcodec/internal/cli/encode"
	"github.com/ColonelBlimp/dtmfcodec/internal/dtmf"
	"github.com/ColonelBlimp/dtmfcodec/internal/observe"
)

var generateCmd = &cobra.Command{
	Use:   "generate SYMBOLS...",
	Short: "Write DTMF tones to a WAV or raw PCM file",
	Long: `Generates the tones for SYMBOLS (0-9, A-D, * and #) into a file.

Spaces and dashes between symbols are ignored. Files ending in .wav get a WAV
header; anything else is written as raw 16-bit little-endian PCM.`,
	Example: `  dtmfcodec generate 555-0123 -o number.wav
  dtmfcodec generate "*#06#" --tone-ms 40 --pause-ms 20 -o code.raw`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("out", "o", "", "output file (.wav or raw PCM)")
	_ = generateCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")

	enc, err := encode.NewEncoder(encode.Options{
		Generator: sess.settings.GeneratorConfig(),
		Metrics:   observe.DefaultMetrics(),
		Logger:    sess.logger,
	})
	if err != nil {
		return err
	}

	stats, err := enc.WriteFile(cmd.Context(), out, strings.Join(args, ""))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d symbols, %d frames, %.2fs\n",
		out, stats.Symbols, stats.Frames, float64(stats.Samples)/dtmf.SampleRate)
	return nil
}
