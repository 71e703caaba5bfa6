package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/dtmfcodec/internal/cli/decode"
	"github.com/ColonelBlimp/dtmfcodec/internal/config"
	"github.com/ColonelBlimp/dtmfcodec/internal/observe"
)

var detectCmd = &cobra.Command{
	Use:   "detect FILE...",
	Short: "Decode DTMF tones from audio files",
	Long: `Decodes DTMF tones from 8000 Hz mono audio files.

Supported inputs are WAV (16-bit, 8-bit or float), Sun AU (8 or 16-bit linear)
and headerless 16-bit little-endian PCM for any other extension.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}

	reports := make([]*decode.Report, 0, len(args))
	for _, path := range args {
		rep, err := decode.DecodeFile(cmd.Context(), path, decode.Options{
			TimestampFormat: sess.settings.TimestampFormat,
			Metrics:         observe.DefaultMetrics(),
			Logger:          sess.logger,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		sess.logger.Debug("decoded", "path", path, "symbols", rep.Symbols, "batches", rep.Batches)
		reports = append(reports, rep)
	}
	return writeReports(cmd.OutOrStdout(), sess.settings.OutputFormat, reports)
}

// writeReports prints reports as text, or as a YAML document stream.
func writeReports(w io.Writer, format string, reports []*decode.Report) error {
	for i, rep := range reports {
		if format != config.FormatYAML {
			if err := rep.WriteText(w); err != nil {
				return err
			}
			continue
		}
		if i > 0 {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		if err := rep.WriteYAML(w); err != nil {
			return err
		}
	}
	return nil
}
