// Package observe records codec activity as OpenTelemetry metrics and exposes
// them for Prometheus scraping.
//
// Tests should build their own [Metrics] with [NewMetrics] over a private
// meter provider; [DefaultMetrics] uses the global one.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ColonelBlimp/dtmfcodec"

// Metrics holds the instruments. All fields are safe for concurrent use.
type Metrics struct {
	// SamplesIn counts samples fed to detectors. Attribute "source": file, device
	SamplesIn metric.Int64Counter

	// Batches counts decoded analysis batches
	Batches metric.Int64Counter

	// Tones counts detected tone onsets. Attribute "symbol"
	Tones metric.Int64Counter

	// Frames counts generated frames. Attribute "phase": tone, pause
	Frames metric.Int64Counter

	// Symbols counts symbols accepted by generators
	Symbols metric.Int64Counter

	// SelftestFailures counts round trips that did not decode to their input
	SelftestFailures metric.Int64Counter

	// ActiveStreams tracks live capture and playback sessions
	ActiveStreams metric.Int64UpDownCounter

	// ChunkDuration tracks how long Detect takes per delivered chunk
	ChunkDuration metric.Float64Histogram
}

// Chunks at 8 kHz arrive every 10 to 100 ms; processing should be far below.
var chunkBuckets = []float64{
	0.00001, 0.000025, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.005, 0.01,
}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.SamplesIn, err = m.Int64Counter("dtmfcodec.samples",
		metric.WithDescription("Samples fed to the detector."),
	); err != nil {
		return nil, err
	}
	if met.Batches, err = m.Int64Counter("dtmfcodec.batches",
		metric.WithDescription("Analysis batches decoded."),
	); err != nil {
		return nil, err
	}
	if met.Tones, err = m.Int64Counter("dtmfcodec.tones",
		metric.WithDescription("Tone onsets detected by symbol."),
	); err != nil {
		return nil, err
	}
	if met.Frames, err = m.Int64Counter("dtmfcodec.frames",
		metric.WithDescription("Frames written by the generator by phase."),
	); err != nil {
		return nil, err
	}
	if met.Symbols, err = m.Int64Counter("dtmfcodec.symbols",
		metric.WithDescription("Symbols queued for generation."),
	); err != nil {
		return nil, err
	}
	if met.SelftestFailures, err = m.Int64Counter("dtmfcodec.selftest.failures",
		metric.WithDescription("Self-test round trips that decoded wrongly."),
	); err != nil {
		return nil, err
	}
	if met.ActiveStreams, err = m.Int64UpDownCounter("dtmfcodec.active_streams",
		metric.WithDescription("Open capture and playback streams."),
	); err != nil {
		return nil, err
	}
	if met.ChunkDuration, err = m.Float64Histogram("dtmfcodec.chunk.duration",
		metric.WithDescription("Time spent detecting one delivered chunk."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(chunkBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance built on the global meter
// provider. Call it after InitProvider so it binds to the exporter.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordChunk accounts for one Detect call.
func (m *Metrics) RecordChunk(ctx context.Context, source string, samples, batches int, seconds float64) {
	attrs := metric.WithAttributes(attribute.String("source", source))
	m.SamplesIn.Add(ctx, int64(samples), attrs)
	if batches > 0 {
		m.Batches.Add(ctx, int64(batches), attrs)
	}
	m.ChunkDuration.Record(ctx, seconds, attrs)
}

// RecordTone counts one detected symbol.
func (m *Metrics) RecordTone(ctx context.Context, symbol string) {
	m.Tones.Add(ctx, 1, metric.WithAttributes(attribute.String("symbol", symbol)))
}

// RecordFrame counts one generated frame in phase ("tone" or "pause").
func (m *Metrics) RecordFrame(ctx context.Context, phase string) {
	m.Frames.Add(ctx, 1, metric.WithAttributes(attribute.String("phase", phase)))
}

// RecordSymbols counts symbols accepted by Submit.
func (m *Metrics) RecordSymbols(ctx context.Context, n int) {
	m.Symbols.Add(ctx, int64(n))
}

// StreamOpened and StreamClosed bracket a live device session.
func (m *Metrics) StreamOpened(ctx context.Context, kind string) {
	m.ActiveStreams.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) StreamClosed(ctx context.Context, kind string) {
	m.ActiveStreams.Add(ctx, -1, metric.WithAttributes(attribute.String("kind", kind)))
}
