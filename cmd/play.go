package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ColonelBlimp/dtmfcodec/internal/cli/encode"
	"github.com/ColonelBlimp/dtmfcodec/internal/recovery"
)

var playCmd = &cobra.Command{
	Use:   "play SYMBOLS...",
	Short: "Play DTMF tones on an output device",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
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
	enc, err := encode.NewEncoder(encode.Options{
		Generator: sess.settings.GeneratorConfig(),
		Metrics:   metrics,
		Logger:    sess.logger,
	})
	if err != nil {
		return err
	}

	g.Go(recovery.Guard(func() error {
		defer cancel()
		stats, err := enc.Play(gctx, sess.audioConfig(), strings.Join(args, ""))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "played %d symbols\n", stats.Symbols)
		return nil
	}))
	return g.Wait()
}
