// internal/audio/capture.go
package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

// SampleCallback is called directly from the audio thread with new samples.
// Must be non-blocking and fast.
type SampleCallback func(samples []int16)

// Capture records 16-bit mono audio from an input device
type Capture struct {
	config   Config
	ctx      *malgo.AllocatedContext
	device   *malgo.Device
	running  bool
	mu       sync.RWMutex
	callback SampleCallback

	closed    atomic.Bool
	closeOnce sync.Once

	// Output channel for audio samples
	Samples chan []int16
}

// New creates a new audio capture instance
func New(cfg Config) *Capture {
	return &Capture{
		config:  cfg,
		Samples: make(chan []int16, 64),
	}
}

// SetCallback sets a callback for real-time sample processing.
// Set before calling Start().
func (c *Capture) SetCallback(cb SampleCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callback = cb
}

// Init initializes the audio backend
func (c *Capture) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	c.ctx = ctx
	return nil
}

// ListDevices returns available capture devices
func (c *Capture) ListDevices() ([]malgo.DeviceInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.ctx == nil {
		return nil, ErrNotInitialized
	}
	infos, err := c.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	return infos, nil
}

// Start begins audio capture. Cancelling ctx stops it.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	if c.ctx == nil {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	c.mu.Unlock()

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.SampleRate = c.config.SampleRate
	deviceConfig.PeriodSizeInFrames = c.config.BufferSize
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = c.config.Channels

	infos, err := c.ListDevices()
	if err != nil {
		return err
	}
	if deviceConfig.Capture.DeviceID, err = pickDevice(c.config.DeviceIndex, infos); err != nil {
		return err
	}

	onRecvFrames := func(_, inputSamples []byte, _ uint32) {
		if len(inputSamples) == 0 || c.closed.Load() {
			return
		}
		samples := make([]int16, len(inputSamples)/2)
		DecodePCM16(samples, inputSamples, binary.LittleEndian)

		c.mu.RLock()
		cb := c.callback
		c.mu.RUnlock()
		if cb != nil {
			cb(samples)
		}

		c.safeSend(samples)
	}

	device, err := malgo.InitDevice(c.ctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onRecvFrames})
	if err != nil {
		return fmt.Errorf("init device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("start device: %w", err)
	}

	c.mu.Lock()
	c.device = device
	c.running = true
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = c.Stop()
	}()

	return nil
}

// safeSend drops samples when the consumer is behind, and never panics on a
// channel closed under it.
func (c *Capture) safeSend(samples []int16) {
	defer func() { _ = recover() }()
	if c.closed.Load() {
		return
	}
	select {
	case c.Samples <- samples:
	default:
	}
}

// Stop stops audio capture
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return ErrNotRunning
	}
	if c.device != nil {
		_ = c.device.Stop()
		c.device.Uninit()
		c.device = nil
	}
	c.running = false
	return nil
}

// Close releases all audio resources and closes Samples. Safe to call twice.
func (c *Capture) Close() error {
	c.closed.Store(true)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running && c.device != nil {
		_ = c.device.Stop()
		c.device.Uninit()
		c.device = nil
		c.running = false
	}

	var err error
	if c.ctx != nil {
		if uerr := c.ctx.Uninit(); uerr != nil {
			err = fmt.Errorf("uninit context: %w", uerr)
		}
		c.ctx.Free()
		c.ctx = nil
	}

	c.closeOnce.Do(func() { close(c.Samples) })
	return err
}

// IsRunning returns true if capture is active
func (c *Capture) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}
