//go:build integration

package audio

import (
	"context"
	"testing"
	"time"

	"github.com/ColonelBlimp/dtmfcodec/internal/dtmf"
)

// These tests require actual audio hardware and are skipped by default.
// Run with: go test -tags=integration ./internal/audio

func TestListDevices_Integration(t *testing.T) {
	devices, err := ListDevices()
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	t.Logf("Found %d devices:", len(devices))
	for _, d := range devices {
		t.Logf("  [%s %d] %s default=%v", d.Kind, d.Index, d.Name, d.Default)
	}
}

func TestCapture_ReceivesSamples_Integration(t *testing.T) {
	capture := New(DefaultConfig())
	defer capture.Close()

	if err := capture.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := capture.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case samples := <-capture.Samples:
		if len(samples) == 0 {
			t.Error("received empty sample batch")
		}
	case <-ctx.Done():
		t.Fatal("no samples within timeout")
	}
}

func TestPlayback_Generator_Integration(t *testing.T) {
	g, err := dtmf.NewGenerator(dtmf.ConfigFor(160, dtmf.DefaultToneDuration, dtmf.DefaultPauseDuration))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Submit("123"); err != nil {
		t.Fatal(err)
	}

	p := NewPlayback(DefaultConfig())
	defer p.Close()
	if err := p.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := p.Play(ctx, g); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	select {
	case <-p.Done():
	case <-ctx.Done():
		t.Fatal("playback did not finish")
	}
	if !g.Ready() {
		t.Error("generator should be drained")
	}
}
