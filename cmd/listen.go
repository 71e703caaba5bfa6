package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ColonelBlimp/dtmfcodec/internal/cli/decode"
	"github.com/ColonelBlimp/dtmfcodec/internal/config"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Decode DTMF tones from a capture device until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, _ []string) error {
	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	metrics, err := sess.metrics(gctx, g)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	yamlOut := sess.settings.OutputFormat == config.FormatYAML
	opts := decode.Options{
		Source:          "device",
		TimestampFormat: sess.settings.TimestampFormat,
		Metrics:         metrics,
		Logger:          sess.logger,
	}
	if !yamlOut {
		opts.OnEvent = func(ev decode.Event) {
			_ = decode.WriteEvent(out, ev)
		}
	}

	var rep *decode.Report
	g.Go(func() error {
		defer cancel()
		var err error
		rep, err = decode.Listen(gctx, sess.audioConfig(), opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if yamlOut {
		return rep.WriteYAML(out)
	}
	_, err = fmt.Fprintf(out, "%s: %q\n", rep.Source, rep.Symbols)
	return err
}
