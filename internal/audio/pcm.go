// internal/audio/pcm.go
package audio

import (
	"encoding/binary"
	"math"
)

// Signed8ToPCM16 promotes signed 8-bit samples, shifting them up so the
// detector sees them at a usable level.
func Signed8ToPCM16(dst []int16, src []byte) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] = int16(int8(src[i])) << 8
	}
	return n
}

// Unsigned8ToPCM16 converts offset-binary 8-bit samples (WAV's 8-bit format).
func Unsigned8ToPCM16(dst []int16, src []uint8) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] = (int16(src[i]) - 128) << 8
	}
	return n
}

// FloatToPCM16 scales [-1, 1] floats to 16-bit, saturating anything outside.
func FloatToPCM16(dst []int16, src []float32) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		v := math.Round(float64(src[i]) * math.MaxInt16)
		switch {
		case v > math.MaxInt16:
			dst[i] = math.MaxInt16
		case v < math.MinInt16:
			dst[i] = math.MinInt16
		default:
			dst[i] = int16(v)
		}
	}
	return n
}

// DecodePCM16 reads 16-bit samples from data in the given byte order. A trailing
// odd byte is ignored.
func DecodePCM16(dst []int16, data []byte, order binary.ByteOrder) int {
	n := min(len(dst), len(data)/2)
	for i := 0; i < n; i++ {
		dst[i] = int16(order.Uint16(data[2*i:]))
	}
	return n
}

// EncodePCM16 writes samples as little-endian 16-bit into dst, which must hold
// 2*len(samples) bytes.
func EncodePCM16(dst []byte, samples []int16) {
	for i, s := range samples {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(s))
	}
}

// SwapBytes reverses the byte order of each sample in place.
func SwapBytes(samples []int16) {
	for i, s := range samples {
		u := uint16(s)
		samples[i] = int16(u<<8 | u>>8)
	}
}
