package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ColonelBlimp/dtmfcodec/internal/cli/selftest"
)

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Feed generated tones back into the detector and check the result",
	Long: `Runs the generator straight into the detector without any audio device.

By default every iteration sends the whole keypad in order. With --random each
iteration sends a random sequence of 1 to 20 symbols.`,
	Args: cobra.NoArgs,
	RunE: runSelftest,
}

func init() {
	selftestCmd.Flags().IntP("iterations", "n", 10, "number of round trips")
	selftestCmd.Flags().Bool("random", false, "send random sequences")
	selftestCmd.Flags().Uint64("seed", 1, "seed for --random")
	rootCmd.AddCommand(selftestCmd)
}

func runSelftest(cmd *cobra.Command, _ []string) error {
	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}
	iterations, _ := cmd.Flags().GetInt("iterations")
	random, _ := cmd.Flags().GetBool("random")
	seed, _ := cmd.Flags().GetUint64("seed")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	metrics, err := sess.metrics(gctx, g)
	if err != nil {
		return err
	}

	var res *selftest.Result
	g.Go(func() error {
		defer cancel()
		var err error
		res, err = selftest.Run(gctx, selftest.Options{
			Generator:  sess.settings.GeneratorConfig(),
			Iterations: iterations,
			Random:     random,
			Seed:       seed,
			Metrics:    metrics,
			Logger:     sess.logger,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range res.Failures {
		fmt.Fprintln(out, "FAIL", f)
	}
	if !res.Passed() {
		return fmt.Errorf("%d of %d iterations failed", len(res.Failures), res.Iterations)
	}
	fmt.Fprintf(out, "PASS %d iterations, %d symbols, %d samples\n", res.Iterations, res.Symbols, res.Samples)
	return nil
}
