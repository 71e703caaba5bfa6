// internal/audio/devices.go
package audio

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gen2brain/malgo"
)

var (
	ErrNotInitialized = errors.New("audio device not initialized")
	ErrAlreadyRunning = errors.New("audio device already running")
	ErrNotRunning     = errors.New("audio device not running")
	ErrNoSuchDevice   = errors.New("device index out of range")
)

// Config holds audio device configuration
type Config struct {
	DeviceIndex int    // -1 for default device
	SampleRate  uint32 // the detector needs 8000
	Channels    uint32 // mono only
	BufferSize  uint32 // frames per callback
}

// DefaultConfig returns the settings the DTMF codec runs at
func DefaultConfig() Config {
	return Config{
		DeviceIndex: -1,
		SampleRate:  8000,
		Channels:    1,
		BufferSize:  160,
	}
}

// DeviceInfo describes one capture or playback endpoint.
type DeviceInfo struct {
	Index   int
	Name    string
	Kind    string // capture or playback
	Default bool
}

// ListDevices enumerates capture and playback devices on the default backend.
func ListDevices() ([]DeviceInfo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	var out []DeviceInfo
	for _, kind := range []malgo.DeviceType{malgo.Capture, malgo.Playback} {
		infos, err := ctx.Devices(kind)
		if err != nil {
			return nil, fmt.Errorf("enumerate devices: %w", err)
		}
		out = append(out, describe(kind, infos)...)
	}
	return out, nil
}

func describe(kind malgo.DeviceType, infos []malgo.DeviceInfo) []DeviceInfo {
	name := "capture"
	if kind == malgo.Playback {
		name = "playback"
	}
	out := make([]DeviceInfo, len(infos))
	for i := range infos {
		out[i] = DeviceInfo{
			Index:   i,
			Name:    infos[i].Name(),
			Kind:    name,
			Default: infos[i].IsDefault != 0,
		}
	}
	return out
}

// pickDevice returns the miniaudio ID for index, or nil for the default device.
// infos must outlive the returned pointer.
func pickDevice(index int, infos []malgo.DeviceInfo) (unsafe.Pointer, error) {
	if index < 0 {
		return nil, nil
	}
	if index >= len(infos) {
		return nil, fmt.Errorf("%w: %d (have %d devices)", ErrNoSuchDevice, index, len(infos))
	}
	return infos[index].ID.Pointer(), nil
}
