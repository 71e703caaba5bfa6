// internal/audio/sink.go
package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SampleWriter accepts 16-bit mono samples.
type SampleWriter interface {
	Write(samples []int16) error
	Close() error
}

// RawWriter writes headerless little-endian 16-bit PCM.
type RawWriter struct {
	w   io.Writer
	buf []byte
}

func NewRawWriter(w io.Writer) *RawWriter {
	return &RawWriter{w: w}
}

func (rw *RawWriter) Write(samples []int16) error {
	if cap(rw.buf) < 2*len(samples) {
		rw.buf = make([]byte, 2*len(samples))
	}
	b := rw.buf[:2*len(samples)]
	EncodePCM16(b, samples)
	_, err := rw.w.Write(b)
	return err
}

func (rw *RawWriter) Close() error { return nil }

// fileSink closes the file after the encoder has finished with it.
type fileSink struct {
	SampleWriter
	f *os.File
}

func (s *fileSink) Close() error {
	err := s.SampleWriter.Close()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// CreateFile creates path as a .wav file, or raw PCM for any other extension.
func CreateFile(path string, sampleRate int) (SampleWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	var enc SampleWriter
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		ww, err := NewWAVWriter(f, sampleRate)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		enc = ww
	default:
		enc = NewRawWriter(f)
	}
	return &fileSink{SampleWriter: enc, f: f}, nil
}
