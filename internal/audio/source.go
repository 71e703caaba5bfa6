// internal/audio/source.go
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrBadHeader         = errors.New("malformed audio header")
)

// Format describes decoded audio.
type Format struct {
	Container  string // wav, au or raw
	Encoding   string // e.g. pcm16, pcm8
	SampleRate int
	Channels   int
}

func (f Format) String() string {
	return fmt.Sprintf("%s %s %d Hz %d ch", f.Container, f.Encoding, f.SampleRate, f.Channels)
}

// SampleReader yields 16-bit mono samples. Read returns io.EOF once the source
// is drained; a short read with a nil error is allowed.
type SampleReader interface {
	Read(dst []int16) (int, error)
}

// Source is an opened audio file.
type Source struct {
	SampleReader
	Format Format
	closer io.Closer
}

// Close releases the underlying file.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// OpenFile opens a recording, picking the decoder from the extension: .wav,
// .au/.snd, anything else is read as raw 16-bit little-endian at 8 kHz.
func OpenFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	src, err := NewSource(f, filepath.Ext(path))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	src.closer = f
	return src, nil
}

// NewSource decodes r according to a file extension.
func NewSource(r io.Reader, ext string) (*Source, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "wav", "wave":
		wr, err := NewWAVReader(r)
		if err != nil {
			return nil, err
		}
		return &Source{SampleReader: wr, Format: wr.Format()}, nil
	case "au", "snd":
		ar, err := NewAUReader(r)
		if err != nil {
			return nil, err
		}
		return &Source{SampleReader: ar, Format: ar.Format()}, nil
	default:
		rr := NewRawReader(r, binary.LittleEndian)
		return &Source{SampleReader: rr, Format: rr.Format()}, nil
	}
}

// ReadAll drains a reader.
func ReadAll(r SampleReader) ([]int16, error) {
	var out []int16
	buf := make([]int16, 4096)
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// RawReader reads headerless 16-bit PCM.
type RawReader struct {
	r       io.Reader
	order   binary.ByteOrder
	scratch []byte
}

// NewRawReader reads samples from r in the given byte order.
func NewRawReader(r io.Reader, order binary.ByteOrder) *RawReader {
	return &RawReader{r: r, order: order}
}

func (rr *RawReader) Format() Format {
	return Format{Container: "raw", Encoding: "pcm16", SampleRate: 8000, Channels: 1}
}

func (rr *RawReader) Read(dst []int16) (int, error) {
	return readPCM16(rr.r, dst, rr.order, &rr.scratch)
}

// readPCM16 fills as much of dst as the stream holds. A dangling odd byte at the
// end is dropped.
func readPCM16(r io.Reader, dst []int16, order binary.ByteOrder, scratch *[]byte) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if cap(*scratch) < 2*len(dst) {
		*scratch = make([]byte, 2*len(dst))
	}
	buf := (*scratch)[:2*len(dst)]

	n, err := io.ReadFull(r, buf)
	got := DecodePCM16(dst, buf[:n], order)
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		if got == 0 {
			return 0, io.EOF
		}
		return got, nil
	case err != nil:
		return got, err
	}
	return got, nil
}
