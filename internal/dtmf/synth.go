package dtmf

import (
	"context"
	"fmt"
)

// FrameFunc receives each generated frame. The slice is reused between calls.
type FrameFunc func(frame []int16) error

// Synthesize plays an arbitrarily long symbol string through g, submitting it in
// chunks of MaxSequence and draining each chunk before the next. g must be Ready.
func Synthesize(ctx context.Context, g *Generator, symbols string, emit FrameFunc) error {
	seq, err := ParseSymbols(symbols)
	if err != nil {
		return err
	}
	if !g.Ready() {
		return ErrBusy
	}

	frame := make([]int16, g.FrameSize())
	for len(seq) > 0 {
		n, err := g.Submit(string(seq[:min(len(seq), MaxSequence)]))
		if err != nil {
			return fmt.Errorf("submit: %w", err)
		}
		seq = seq[n:]

		for g.Generate(frame) {
			if err := ctx.Err(); err != nil {
				g.Reset()
				return err
			}
			if err := emit(frame); err != nil {
				g.Reset()
				return err
			}
		}
	}
	return nil
}
