package audio

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DeviceIndex != -1 {
		t.Errorf("DeviceIndex = %d, want -1", cfg.DeviceIndex)
	}
	if cfg.SampleRate != 8000 {
		t.Errorf("SampleRate = %d, want 8000", cfg.SampleRate)
	}
	if cfg.Channels != 1 {
		t.Errorf("Channels = %d, want 1", cfg.Channels)
	}
	if cfg.BufferSize != 160 {
		t.Errorf("BufferSize = %d, want 160", cfg.BufferSize)
	}
}

func TestNew(t *testing.T) {
	cfg := Config{DeviceIndex: 2, SampleRate: 8000, Channels: 1, BufferSize: 80}
	capture := New(cfg)

	if capture.config != cfg {
		t.Errorf("config = %+v, want %+v", capture.config, cfg)
	}
	if capture.Samples == nil {
		t.Fatal("Samples channel is nil")
	}
	if cap(capture.Samples) != 64 {
		t.Errorf("Samples buffer = %d, want 64", cap(capture.Samples))
	}
	if capture.IsRunning() {
		t.Error("new capture should not be running")
	}
	if capture.closed.Load() {
		t.Error("closed flag should be false initially")
	}
}

func TestCapture_SetCallback(t *testing.T) {
	capture := New(DefaultConfig())
	var got []int16
	capture.SetCallback(func(samples []int16) { got = samples })

	capture.mu.RLock()
	cb := capture.callback
	capture.mu.RUnlock()
	if cb == nil {
		t.Fatal("callback not stored")
	}
	cb([]int16{1, 2})
	if len(got) != 2 {
		t.Errorf("callback received %v", got)
	}

	capture.SetCallback(nil)
	if capture.callback != nil {
		t.Error("SetCallback(nil) should clear the callback")
	}
}

func TestCapture_NotInitialized(t *testing.T) {
	capture := New(DefaultConfig())

	if _, err := capture.ListDevices(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ListDevices() error = %v, want ErrNotInitialized", err)
	}
	if err := capture.Start(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Start() error = %v, want ErrNotInitialized", err)
	}
}

func TestCapture_Start_AlreadyRunning(t *testing.T) {
	capture := New(DefaultConfig())
	capture.running = true

	if err := capture.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Start() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestCapture_Stop_NotRunning(t *testing.T) {
	capture := New(DefaultConfig())
	if err := capture.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop() error = %v, want ErrNotRunning", err)
	}
}

func TestCapture_SafeSend_NormalOperation(t *testing.T) {
	capture := New(DefaultConfig())
	capture.safeSend([]int16{1, 2, 3})

	select {
	case samples := <-capture.Samples:
		if len(samples) != 3 {
			t.Errorf("expected 3 samples, got %d", len(samples))
		}
	default:
		t.Error("expected samples on the channel")
	}
}

func TestCapture_SafeSend_ChannelFull(t *testing.T) {
	capture := &Capture{
		config:  DefaultConfig(),
		Samples: make(chan []int16, 1),
	}

	capture.safeSend([]int16{1})
	// Must drop, not block
	capture.safeSend([]int16{2})

	if samples := <-capture.Samples; samples[0] != 1 {
		t.Errorf("expected first batch to survive, got %v", samples)
	}
	select {
	case <-capture.Samples:
		t.Error("second batch should have been dropped")
	default:
	}
}

func TestCapture_SafeSend_ClosedChannel(t *testing.T) {
	capture := New(DefaultConfig())
	close(capture.Samples)

	// Must not panic
	capture.safeSend([]int16{1, 2, 3})
}

func TestCapture_SafeSend_AfterClose(t *testing.T) {
	capture := New(DefaultConfig())
	capture.closed.Store(true)

	capture.safeSend([]int16{1})
	select {
	case <-capture.Samples:
		t.Error("nothing should be sent once closed")
	default:
	}
}

func TestCapture_Close_Twice(t *testing.T) {
	capture := New(DefaultConfig())

	if err := capture.Close(); err != nil {
		t.Fatalf("first Close() error: %v", err)
	}
	if !capture.closed.Load() {
		t.Error("closed flag should be set after Close()")
	}
	if _, ok := <-capture.Samples; ok {
		t.Error("Samples should be closed")
	}

	// closeOnce protects the channel
	if err := capture.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestCapture_ConcurrentCloseAndSend(t *testing.T) {
	for i := 0; i < 50; i++ {
		capture := New(DefaultConfig())

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				capture.safeSend([]int16{int16(j)})
			}
		}()
		go func() {
			defer wg.Done()
			_ = capture.Close()
		}()
		wg.Wait()

		if !capture.closed.Load() {
			t.Fatalf("iteration %d: capture should be closed", i)
		}
	}
}
