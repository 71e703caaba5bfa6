// Package encode turns symbol strings into DTMF audio for files, writers and
// output devices.
package encode

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ColonelBlimp/dtmfcodec/internal/audio"
	"github.com/ColonelBlimp/dtmfcodec/internal/dtmf"
	"github.com/ColonelBlimp/dtmfcodec/internal/logging"
	"github.com/ColonelBlimp/dtmfcodec/internal/observe"
)

// Options configures an Encoder.
type Options struct {
	Generator dtmf.GeneratorConfig
	Metrics   *observe.Metrics
	Logger    *slog.Logger
}

// Stats describes what an encoding run produced.
type Stats struct {
	Symbols int
	Frames  int
	Samples int
}

// Encoder owns one generator and feeds it sequences of any length.
type Encoder struct {
	gen  *dtmf.Generator
	opts Options
}

// NewEncoder validates the generator configuration.
func NewEncoder(opts Options) (*Encoder, error) {
	g, err := dtmf.NewGenerator(opts.Generator)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Encoder{gen: g, opts: opts}, nil
}

// source drains a symbol list through the generator, refilling it MaxSequence
// symbols at a time. It implements audio.FrameSource.
type source struct {
	ctx     context.Context
	gen     *dtmf.Generator
	rest    []dtmf.Symbol
	metrics *observe.Metrics
	stats   Stats
}

func (e *Encoder) newSource(ctx context.Context, symbols string) (*source, error) {
	seq, err := dtmf.ParseSymbols(symbols)
	if err != nil {
		return nil, err
	}
	if !e.gen.Ready() {
		return nil, dtmf.ErrBusy
	}
	return &source{ctx: ctx, gen: e.gen, rest: seq, metrics: e.opts.Metrics}, nil
}

func (s *source) FrameSize() int {
	return s.gen.FrameSize()
}

func (s *source) Generate(out []int16) bool {
	if s.gen.Ready() && len(s.rest) > 0 {
		n, err := s.gen.Submit(string(s.rest[:min(len(s.rest), dtmf.MaxSequence)]))
		if err != nil {
			return false
		}
		s.rest = s.rest[n:]
		s.stats.Symbols += n
		if s.metrics != nil {
			s.metrics.RecordSymbols(s.ctx, n)
		}
	}

	// The state before Generate is the phase of the frame it writes
	phase := s.gen.State()
	if !s.gen.Generate(out) {
		return false
	}
	s.stats.Frames++
	s.stats.Samples += s.gen.FrameSize()
	if s.metrics != nil {
		s.metrics.RecordFrame(s.ctx, phase.String())
	}
	return true
}

// Stream generates symbols frame by frame and hands each frame to emit. The
// frame slice is reused between calls.
func (e *Encoder) Stream(ctx context.Context, symbols string, emit dtmf.FrameFunc) (Stats, error) {
	src, err := e.newSource(ctx, symbols)
	if err != nil {
		return Stats{}, err
	}

	frame := make([]int16, e.gen.FrameSize())
	for src.Generate(frame) {
		if err := ctx.Err(); err != nil {
			e.gen.Reset()
			return src.stats, err
		}
		if err := emit(frame); err != nil {
			e.gen.Reset()
			return src.stats, err
		}
	}
	return src.stats, nil
}

// WriteFile renders symbols into path, a .wav file or raw PCM.
func (e *Encoder) WriteFile(ctx context.Context, path, symbols string) (Stats, error) {
	// Parse first so a typo does not leave an empty file behind
	if _, err := dtmf.ParseSymbols(symbols); err != nil {
		return Stats{}, err
	}

	w, err := audio.CreateFile(path, dtmf.SampleRate)
	if err != nil {
		return Stats{}, fmt.Errorf("create output: %w", err)
	}

	stats, err := e.Stream(ctx, symbols, w.Write)
	if cerr := w.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close output: %w", cerr)
	}
	if err != nil {
		return stats, err
	}

	e.opts.Logger.Info("wrote tones", "path", path, "symbols", stats.Symbols, "frames", stats.Frames)
	return stats, nil
}

// Play sends symbols to an output device and blocks until they have been
// played or ctx is cancelled.
func (e *Encoder) Play(ctx context.Context, cfg audio.Config, symbols string) (Stats, error) {
	src, err := e.newSource(ctx, symbols)
	if err != nil {
		return Stats{}, err
	}

	pb := audio.NewPlayback(cfg)
	if err := pb.Init(); err != nil {
		return Stats{}, err
	}
	defer pb.Close()

	e.opts.Logger.Info("playing", "symbols", len(src.rest), "device", cfg.DeviceIndex)
	if err := pb.Play(ctx, src); err != nil {
		return Stats{}, err
	}
	if e.opts.Metrics != nil {
		e.opts.Metrics.StreamOpened(ctx, "playback")
		defer e.opts.Metrics.StreamClosed(context.Background(), "playback")
	}

	<-pb.Done()
	// The device owns src until it is stopped
	if err := pb.Close(); err != nil {
		return Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		e.gen.Reset()
		return src.stats, err
	}
	return src.stats, nil
}

// Reset abandons any sequence in progress.
func (e *Encoder) Reset() {
	e.gen.Reset()
}
