// internal/audio/playback.go
package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

// FrameSource produces fixed-size frames until it runs dry. *dtmf.Generator
// satisfies it.
type FrameSource interface {
	FrameSize() int
	Generate(out []int16) bool
}

// pump adapts a FrameSource to device callbacks that ask for arbitrary counts.
type pump struct {
	src     FrameSource
	frame   []int16
	pending []int16
	drained bool
}

func newPump(src FrameSource) *pump {
	return &pump{src: src, frame: make([]int16, src.FrameSize())}
}

// fill writes len(dst) samples, padding with silence once the source is dry.
// It reports whether the source has been drained.
func (p *pump) fill(dst []int16) bool {
	for len(dst) > 0 {
		if len(p.pending) == 0 {
			if p.drained || !p.src.Generate(p.frame) {
				p.drained = true
				clear(dst)
				return true
			}
			p.pending = p.frame
		}
		n := copy(dst, p.pending)
		dst = dst[n:]
		p.pending = p.pending[n:]
	}
	return p.drained
}

// Playback plays a FrameSource through an output device
type Playback struct {
	config Config
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	mu     sync.Mutex

	done     chan struct{}
	doneOnce sync.Once
}

// NewPlayback creates a playback instance
func NewPlayback(cfg Config) *Playback {
	return &Playback{config: cfg, done: make(chan struct{})}
}

// Init initializes the audio backend
func (p *Playback) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	p.ctx = ctx
	return nil
}

// Play starts the device and pulls frames from src on the audio thread until
// src is drained or ctx is cancelled. src must not be touched elsewhere until
// Done is closed.
func (p *Playback) Play(ctx context.Context, src FrameSource) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil {
		return ErrNotInitialized
	}
	if p.device != nil {
		return ErrAlreadyRunning
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.SampleRate = p.config.SampleRate
	deviceConfig.PeriodSizeInFrames = p.config.BufferSize
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = p.config.Channels

	infos, err := p.ctx.Devices(malgo.Playback)
	if err != nil {
		return fmt.Errorf("enumerate devices: %w", err)
	}
	if deviceConfig.Playback.DeviceID, err = pickDevice(p.config.DeviceIndex, infos); err != nil {
		return err
	}

	pm := newPump(src)
	var scratch []int16
	onSendFrames := func(outputSamples, _ []byte, frameCount uint32) {
		n := int(frameCount * p.config.Channels)
		if cap(scratch) < n {
			scratch = make([]int16, n)
		}
		buf := scratch[:n]
		if pm.fill(buf) {
			p.finish()
		}
		EncodePCM16(outputSamples, buf)
	}

	device, err := malgo.InitDevice(p.ctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onSendFrames})
	if err != nil {
		return fmt.Errorf("init device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("start device: %w", err)
	}
	p.device = device

	go func() {
		select {
		case <-ctx.Done():
			p.finish()
		case <-p.done:
		}
	}()
	return nil
}

func (p *Playback) finish() {
	p.doneOnce.Do(func() { close(p.done) })
}

// Done is closed once the source is drained or playback is cancelled.
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// Close stops the device and releases the backend.
func (p *Playback) Close() error {
	p.finish()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device != nil {
		_ = p.device.Stop()
		p.device.Uninit()
		p.device = nil
	}
	if p.ctx != nil {
		if err := p.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninit context: %w", err)
		}
		p.ctx.Free()
		p.ctx = nil
	}
	return nil
}
