// internal/audio/wav.go
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/mjibson/go-dsp/wav"
)

// WAVReader decodes 8 kHz mono WAV data (8-bit, 16-bit or float).
type WAVReader struct {
	w         *wav.Wav
	remaining int
}

// NewWAVReader reads the RIFF header from r.
func NewWAVReader(r io.Reader) (*WAVReader, error) {
	w, err := wav.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if w.SampleRate != 8000 || w.NumChannels != 1 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels (want 8000 Hz mono)", ErrUnsupportedFormat, w.SampleRate, w.NumChannels)
	}
	return &WAVReader{w: w, remaining: w.Samples}, nil
}

func (wr *WAVReader) Format() Format {
	enc := fmt.Sprintf("pcm%d", wr.w.BitsPerSample)
	if wr.w.AudioFormat == 3 {
		enc = "float32"
	}
	return Format{Container: "wav", Encoding: enc, SampleRate: int(wr.w.SampleRate), Channels: int(wr.w.NumChannels)}
}

func (wr *WAVReader) Read(dst []int16) (int, error) {
	n := min(len(dst), wr.remaining)
	if n == 0 {
		if len(dst) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}

	data, err := wr.w.ReadSamples(n)
	if err != nil {
		// The data chunk was shorter than its header claimed
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			wr.remaining = 0
			return 0, io.EOF
		}
		return 0, err
	}
	wr.remaining -= n

	switch d := data.(type) {
	case []int16:
		return copy(dst, d), nil
	case []uint8:
		return Unsigned8ToPCM16(dst, d), nil
	case []float32:
		return FloatToPCM16(dst, d), nil
	default:
		return 0, fmt.Errorf("%w: sample type %T", ErrUnsupportedFormat, data)
	}
}

const wavHeaderSize = 44

// WAVWriter streams 16-bit mono PCM into a canonical WAV file. Sizes are
// patched in on Close, so the destination must be seekable.
type WAVWriter struct {
	w          io.WriteSeeker
	sampleRate uint32
	dataBytes  uint32
	buf        []byte
}

// NewWAVWriter writes a placeholder header to w.
func NewWAVWriter(w io.WriteSeeker, sampleRate int) (*WAVWriter, error) {
	ww := &WAVWriter{w: w, sampleRate: uint32(sampleRate)}
	if _, err := w.Write(ww.header()); err != nil {
		return nil, fmt.Errorf("write wav header: %w", err)
	}
	return ww, nil
}

func (ww *WAVWriter) header() []byte {
	h := make([]byte, wavHeaderSize)
	le := binary.LittleEndian
	copy(h[0:], "RIFF")
	le.PutUint32(h[4:], 36+ww.dataBytes)
	copy(h[8:], "WAVE")
	copy(h[12:], "fmt ")
	le.PutUint32(h[16:], 16)
	le.PutUint16(h[20:], 1) // PCM
	le.PutUint16(h[22:], 1) // mono
	le.PutUint32(h[24:], ww.sampleRate)
	le.PutUint32(h[28:], ww.sampleRate*2)
	le.PutUint16(h[32:], 2)
	le.PutUint16(h[34:], 16)
	copy(h[36:], "data")
	le.PutUint32(h[40:], ww.dataBytes)
	return h
}

// Write appends samples.
func (ww *WAVWriter) Write(samples []int16) error {
	if cap(ww.buf) < 2*len(samples) {
		ww.buf = make([]byte, 2*len(samples))
	}
	b := ww.buf[:2*len(samples)]
	EncodePCM16(b, samples)
	n, err := ww.w.Write(b)
	ww.dataBytes += uint32(n)
	if err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return nil
}

// Close rewrites the header with the final sizes. It does not close the
// underlying writer.
func (ww *WAVWriter) Close() error {
	if _, err := ww.w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek wav header: %w", err)
	}
	if _, err := ww.w.Write(ww.header()); err != nil {
		return fmt.Errorf("rewrite wav header: %w", err)
	}
	_, err := ww.w.Seek(0, io.SeekEnd)
	return err
}
