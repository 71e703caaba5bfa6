package decode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ColonelBlimp/dtmfcodec/internal/audio"
	"github.com/ColonelBlimp/dtmfcodec/internal/dtmf"
	"github.com/ColonelBlimp/dtmfcodec/internal/logging"
	"github.com/ColonelBlimp/dtmfcodec/internal/observe"
	"github.com/ColonelBlimp/dtmfcodec/internal/recovery"
)

// chunkSize is how many samples are read from a file per Detect call.
const chunkSize = 4 * dtmf.BatchSize

// Options configures a Decoder.
type Options struct {
	// Source labels metrics and reports, e.g. the file name or "device"
	Source string
	// TimestampFormat is a strftime pattern for event stamps
	TimestampFormat string
	// Start is the wall clock time of sample zero. Zero means time.Now()
	Start time.Time
	// OnEvent is called for every detected tone, from the decoding goroutine
	OnEvent func(Event)

	Metrics *observe.Metrics
	Logger  *slog.Logger
}

// Decoder runs a detection session and keeps the events it produced.
type Decoder struct {
	opts     Options
	detector *dtmf.Detector
	stamper  *stamper
	samples  int
	events   []Event
}

// NewDecoder creates a decoding session.
func NewDecoder(opts Options) (*Decoder, error) {
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = "%H:%M:%S"
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	st, err := newStamper(opts.TimestampFormat)
	if err != nil {
		return nil, err
	}

	d := &Decoder{opts: opts, detector: dtmf.NewDetector(), stamper: st}
	d.detector.SetCallback(d.onTone)
	return d, nil
}

func (d *Decoder) onTone(te dtmf.ToneEvent) {
	offset := time.Duration(te.Offset) * time.Second / dtmf.SampleRate
	at := d.opts.Start.Add(offset)
	ev := Event{
		Symbol: te.Symbol.String(),
		Batch:  te.Batch,
		Offset: offset,
		Time:   at,
		Stamp:  d.stamper.stamp(at),
	}
	d.events = append(d.events, ev)

	d.opts.Logger.Debug("tone detected", "symbol", ev.Symbol, "batch", ev.Batch, "offset", ev.Offset)
	if d.opts.Metrics != nil {
		d.opts.Metrics.RecordTone(context.Background(), ev.Symbol)
	}
	if d.opts.OnEvent != nil {
		d.opts.OnEvent(ev)
	}
}

// Feed runs samples through the detector.
func (d *Decoder) Feed(ctx context.Context, samples []int16) {
	before := d.detector.Batches()
	start := time.Now()
	d.detector.Detect(samples)
	d.samples += len(samples)

	if d.opts.Metrics != nil {
		batches := int(d.detector.Batches() - before)
		d.opts.Metrics.RecordChunk(ctx, d.opts.Source, len(samples), batches, time.Since(start).Seconds())
	}
}

// Report snapshots the session so far.
func (d *Decoder) Report() *Report {
	return &Report{
		Source:   d.opts.Source,
		Samples:  d.samples,
		Batches:  d.detector.Batches(),
		Duration: float64(d.samples) / dtmf.SampleRate,
		Symbols:  d.detector.Result(),
		Events:   append([]Event(nil), d.events...),
	}
}

// DecodeReader drains r, checking ctx between chunks.
func (d *Decoder) DecodeReader(ctx context.Context, r audio.SampleReader) (*Report, error) {
	buf := make([]int16, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return d.Report(), err
		}
		n, err := r.Read(buf)
		if n > 0 {
			d.Feed(ctx, buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return d.Report(), nil
		}
		if err != nil {
			return d.Report(), fmt.Errorf("read samples: %w", err)
		}
	}
}

// DecodeFile opens path and decodes all of it.
func DecodeFile(ctx context.Context, path string, opts Options) (*Report, error) {
	src, err := audio.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if opts.Source == "" {
		opts.Source = path
	}
	if opts.Logger != nil {
		opts.Logger.Info("decoding file", "path", path, "format", src.Format.String())
	}

	d, err := NewDecoder(opts)
	if err != nil {
		return nil, err
	}
	rep, err := d.DecodeReader(ctx, src)
	rep.Format = src.Format.String()
	return rep, err
}

// Listen captures from an input device until ctx is cancelled, feeding every
// delivered chunk into a new Decoder.
func Listen(ctx context.Context, cfg audio.Config, opts Options) (*Report, error) {
	if opts.Source == "" {
		opts.Source = "device"
	}
	d, err := NewDecoder(opts)
	if err != nil {
		return nil, err
	}

	capture := audio.New(cfg)
	if err := capture.Init(); err != nil {
		return nil, err
	}
	defer capture.Close()

	g, gctx := errgroup.WithContext(ctx)
	if err := capture.Start(gctx); err != nil {
		return nil, err
	}
	d.opts.Logger.Info("listening", "device", cfg.DeviceIndex, "rate", cfg.SampleRate, "buffer", cfg.BufferSize)
	if d.opts.Metrics != nil {
		d.opts.Metrics.StreamOpened(ctx, "capture")
		defer d.opts.Metrics.StreamClosed(context.Background(), "capture")
	}

	g.Go(recovery.Guard(func() error {
		return d.consume(gctx, capture.Samples)
	}))

	err = g.Wait()
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		err = nil
	}
	return d.Report(), err
}

// consume feeds chunks from samples until ctx ends or the channel closes.
func (d *Decoder) consume(ctx context.Context, samples <-chan []int16) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-samples:
			if !ok {
				return nil
			}
			d.Feed(ctx, chunk)
		}
	}
}

// ListAudioDevices returns every capture and playback device.
func ListAudioDevices() ([]audio.DeviceInfo, error) {
	return audio.ListDevices()
}
