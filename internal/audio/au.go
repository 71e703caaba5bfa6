// internal/audio/au.go
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ".snd" read as a big-endian word
const auMagic = 0x2e736e64

const (
	auHeaderSize    = 24
	auUnknownSize   = 0xffffffff
	auEncodingPCM8  = 2
	auEncodingPCM16 = 3
)

// AUHeader is the fixed part of a Sun/NeXT audio file header.
type AUHeader struct {
	DataOffset uint32
	DataSize   uint32
	Encoding   uint32
	SampleRate uint32
	Channels   uint32
}

// AUReader decodes 8 kHz mono linear PCM from an AU stream. Files written
// little-endian (magic "dns.") are accepted and their samples swapped to match.
type AUReader struct {
	Header  AUHeader
	order   binary.ByteOrder
	r       io.Reader
	scratch []byte
}

// NewAUReader parses the header and positions r at the first sample.
func NewAUReader(r io.Reader) (*AUReader, error) {
	var raw [auHeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}

	var order binary.ByteOrder
	switch {
	case binary.BigEndian.Uint32(raw[0:]) == auMagic:
		order = binary.BigEndian
	case binary.LittleEndian.Uint32(raw[0:]) == auMagic:
		order = binary.LittleEndian
	default:
		return nil, fmt.Errorf("%w: bad magic %#08x", ErrBadHeader, binary.BigEndian.Uint32(raw[0:]))
	}

	h := AUHeader{
		DataOffset: order.Uint32(raw[4:]),
		DataSize:   order.Uint32(raw[8:]),
		Encoding:   order.Uint32(raw[12:]),
		SampleRate: order.Uint32(raw[16:]),
		Channels:   order.Uint32(raw[20:]),
	}
	if h.DataOffset < auHeaderSize {
		return nil, fmt.Errorf("%w: data offset %d inside header", ErrBadHeader, h.DataOffset)
	}
	if (h.Encoding != auEncodingPCM8 && h.Encoding != auEncodingPCM16) || h.SampleRate != 8000 || h.Channels != 1 {
		return nil, fmt.Errorf("%w: encoding %d, %d Hz, %d channels (want linear PCM, 8000 Hz, mono)",
			ErrUnsupportedFormat, h.Encoding, h.SampleRate, h.Channels)
	}

	// Skip the annotation field
	if _, err := io.CopyN(io.Discard, r, int64(h.DataOffset-auHeaderSize)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if h.DataSize != auUnknownSize {
		r = io.LimitReader(r, int64(h.DataSize))
	}

	return &AUReader{Header: h, order: order, r: r}, nil
}

func (a *AUReader) Format() Format {
	enc := "pcm16"
	if a.Header.Encoding == auEncodingPCM8 {
		enc = "pcm8"
	}
	return Format{Container: "au", Encoding: enc, SampleRate: int(a.Header.SampleRate), Channels: int(a.Header.Channels)}
}

func (a *AUReader) Read(dst []int16) (int, error) {
	if a.Header.Encoding == auEncodingPCM16 {
		return readPCM16(a.r, dst, a.order, &a.scratch)
	}

	if len(dst) == 0 {
		return 0, nil
	}
	if cap(a.scratch) < len(dst) {
		a.scratch = make([]byte, len(dst))
	}
	buf := a.scratch[:len(dst)]
	n, err := io.ReadFull(a.r, buf)
	got := Signed8ToPCM16(dst, buf[:n])
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return got, nil
	}
	return got, err
}
