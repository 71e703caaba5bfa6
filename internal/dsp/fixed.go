// Package dsp implements the fixed-point signal processing primitives shared by the
// DTMF detector and generator: a 16x32-bit rounding multiply, sign-bit normalisation,
// a block-based Goertzel filter pair and a two-pole recursive oscillator.
//
// All arithmetic is int32 with two's-complement wrap-around. The detector thresholds
// were tuned against exactly this behaviour, so nothing here saturates unless stated.
package dsp

// Q15One is 1.0 in the Q15 format used by every coefficient.
const Q15One = 1 << 15

// Mpy48SR multiplies a Q15 value by a 32-bit value and returns the product scaled
// back by 2^15. The low half of o32 is multiplied with round-to-nearest, the high
// half exactly, and the two partial products are recombined.
func Mpy48SR(o16 int16, o32 int32) int32 {
	lo := (int32(uint16(o32))*int32(o16) + 0x4000) >> 15
	hi := int32(int16(o32>>16)) * int32(o16)
	return (hi << 1) + lo
}

// NormL returns the number of left shifts needed to bring v into the range
// [0x40000000, 0x7fffffff] (or its negative mirror), i.e. the count of redundant
// sign bits. NormL(0) is 0 and NormL(-1) is 31.
func NormL(v int32) int {
	if v == 0 {
		return 0
	}
	if v == -1 {
		return 31
	}
	if v < 0 {
		v = ^v
	}
	n := 0
	for v < 0x40000000 {
		v <<= 1
		n++
	}
	return n
}
