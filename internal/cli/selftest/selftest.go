// Package selftest runs generator output straight back into a detector and
// checks that every sequence survives the round trip.
package selftest

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/ColonelBlimp/dtmfcodec/internal/dtmf"
	"github.com/ColonelBlimp/dtmfcodec/internal/logging"
	"github.com/ColonelBlimp/dtmfcodec/internal/observe"
)

// Options configures a self-test run.
type Options struct {
	Generator  dtmf.GeneratorConfig
	Iterations int
	// Random sends a random sequence of 1 to MaxSequence symbols per iteration
	// instead of the keypad in order
	Random bool
	Seed   uint64

	Metrics *observe.Metrics
	Logger  *slog.Logger
}

// Failure records one iteration that decoded wrongly.
type Failure struct {
	Iteration int
	Sent      string
	Got       string
}

func (f Failure) String() string {
	return fmt.Sprintf("iteration %d: sent %q, decoded %q", f.Iteration, f.Sent, f.Got)
}

// Result summarises a run.
type Result struct {
	Iterations int
	Symbols    int
	Samples    int
	Failures   []Failure
}

// Passed reports whether every iteration decoded correctly.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Run reuses one generator and one detector for every iteration, resetting the
// generator and clearing the detector's result in between.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be positive, got %d", opts.Iterations)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	g, err := dtmf.NewGenerator(opts.Generator)
	if err != nil {
		return nil, err
	}
	d := dtmf.NewDetector()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	frame := make([]int16, g.FrameSize())

	res := &Result{}
	for i := range opts.Iterations {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		sent := dtmf.Alphabet
		if opts.Random {
			sent = randomSequence(rng)
		}

		g.Reset()
		d.ClearResult()
		n, err := g.Submit(sent)
		if err != nil {
			return res, fmt.Errorf("iteration %d: %w", i, err)
		}
		sent = sent[:n]

		for g.Generate(frame) {
			d.Detect(frame)
			res.Samples += len(frame)
		}

		res.Iterations++
		res.Symbols += n
		if got := d.Result(); got != sent {
			f := Failure{Iteration: i, Sent: sent, Got: got}
			res.Failures = append(res.Failures, f)
			opts.Logger.Warn("round trip failed", "iteration", i, "sent", sent, "got", got)
			if opts.Metrics != nil {
				opts.Metrics.SelftestFailures.Add(ctx, 1)
			}
			continue
		}
		opts.Logger.Debug("round trip ok", "iteration", i, "symbols", sent)
	}
	return res, nil
}

func randomSequence(rng *rand.Rand) string {
	b := make([]byte, 1+rng.IntN(dtmf.MaxSequence))
	for i := range b {
		b[i] = dtmf.Alphabet[rng.IntN(len(dtmf.Alphabet))]
	}
	return string(b)
}
