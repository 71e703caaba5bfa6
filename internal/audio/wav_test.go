package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ColonelBlimp/dtmfcodec/internal/dtmf"
)

// wavBytes builds a minimal RIFF file. dataSize lets a test lie about the
// length of the data chunk.
func wavBytes(format, channels uint16, rate uint32, bits uint16, data []byte, dataSize uint32) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian
	b.WriteString("RIFF")
	_ = binary.Write(&b, le, uint32(36+len(data)))
	b.WriteString("WAVEfmt ")
	_ = binary.Write(&b, le, uint32(16))
	blockAlign := channels * bits / 8
	for _, v := range []any{format, channels, rate, rate * uint32(blockAlign), blockAlign, bits} {
		_ = binary.Write(&b, le, v)
	}
	b.WriteString("data")
	_ = binary.Write(&b, le, dataSize)
	b.Write(data)
	return b.Bytes()
}

func TestWAVReader_PCM16(t *testing.T) {
	data := []byte{0x34, 0x12, 0xfe, 0xff}
	r, err := NewWAVReader(bytes.NewReader(wavBytes(1, 1, 8000, 16, data, 4)))
	require.NoError(t, err)
	assert.Equal(t, Format{Container: "wav", Encoding: "pcm16", SampleRate: 8000, Channels: 1}, r.Format())

	got, err := ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []int16{0x1234, -2}, got)
}

func TestWAVReader_Unsigned8(t *testing.T) {
	r, err := NewWAVReader(bytes.NewReader(wavBytes(1, 1, 8000, 8, []byte{128, 255, 0}, 3)))
	require.NoError(t, err)
	assert.Equal(t, "pcm8", r.Format().Encoding)

	got, err := ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []int16{0, 32512, -32768}, got)
}

func TestWAVReader_Float(t *testing.T) {
	var data bytes.Buffer
	for _, f := range []float32{0.5, -1, 2} {
		_ = binary.Write(&data, binary.LittleEndian, math.Float32bits(f))
	}
	r, err := NewWAVReader(bytes.NewReader(wavBytes(3, 1, 8000, 32, data.Bytes(), 12)))
	require.NoError(t, err)
	assert.Equal(t, "float32", r.Format().Encoding)

	got, err := ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []int16{16384, -32767, 32767}, got)
}

func TestWAVReader_TruncatedData(t *testing.T) {
	// Header claims 8 samples, only 2 are present
	r, err := NewWAVReader(bytes.NewReader(wavBytes(1, 1, 8000, 16, []byte{1, 0, 2, 0}, 16)))
	require.NoError(t, err)

	got, err := ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWAVReader_RejectsFormat(t *testing.T) {
	_, err := NewWAVReader(bytes.NewReader(wavBytes(1, 1, 44100, 16, nil, 0)))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewWAVReader(bytes.NewReader(wavBytes(1, 2, 8000, 16, nil, 0)))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewWAVReader(bytes.NewReader([]byte("RIFX....WAVE")))
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestWAVWriter_Header(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	w, err := NewWAVWriter(f, 8000)
	require.NoError(t, err)
	require.NoError(t, w.Write([]int16{1, 2, 3}))
	require.NoError(t, w.Write([]int16{4}))
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, wavHeaderSize+8)

	want := wavBytes(1, 1, 8000, 16, []byte{1, 0, 2, 0, 3, 0, 4, 0}, 8)
	assert.Equal(t, want, data)
}

func TestWAV_DetectionRoundTrip(t *testing.T) {
	const symbols = "147*2580369#ABCD"
	path := filepath.Join(t.TempDir(), "dial.wav")

	sink, err := CreateFile(path, dtmf.SampleRate)
	require.NoError(t, err)
	g, err := dtmf.NewGenerator(dtmf.GeneratorConfig{FrameSize: 160, ToneFrames: 3, PauseFrames: 2})
	require.NoError(t, err)
	_, err = g.Submit(symbols)
	require.NoError(t, err)
	frame := make([]int16, 160)
	for g.Generate(frame) {
		require.NoError(t, sink.Write(frame))
	}
	require.NoError(t, sink.Close())

	src, err := OpenFile(path)
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, "wav", src.Format.Container)

	samples, err := ReadAll(src)
	require.NoError(t, err)
	assert.Len(t, samples, len(symbols)*5*160)

	d := dtmf.NewDetector()
	d.Detect(samples)
	assert.Equal(t, symbols, d.Result())
}
