package dsp

import (
	"errors"
	"math"
)

var (
	// ErrInvalidSampleRate indicates sample rate must be positive
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	// ErrInvalidFrequency indicates frequency must be positive and below Nyquist
	ErrInvalidFrequency = errors.New("target frequency must be positive and less than Nyquist frequency")
	// ErrInvalidBin indicates the DFT bin must lie in (0, blockSize/2)
	ErrInvalidBin = errors.New("bin must be positive and below half the block size")
)

// magnitudeScale is the right shift applied to the final filter state so the
// squared terms of the magnitude fit the 16-bit operands.
const magnitudeScale = 10

// Coefficient returns cos(2π·f/fs) in Q15, the form the filter and the oscillator
// expect. The doubling to 2cos(ω) happens inside the recurrence.
func Coefficient(frequency, sampleRate float64) (int16, error) {
	if sampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}
	if frequency <= 0 || frequency >= sampleRate/2 {
		return 0, ErrInvalidFrequency
	}
	return toQ15(math.Cos(2 * math.Pi * frequency / sampleRate)), nil
}

// BinCoefficient returns the Q15 coefficient centred on DFT bin k of a block of
// blockSize samples.
func BinCoefficient(k, blockSize int) (int16, error) {
	if k <= 0 || 2*k >= blockSize {
		return 0, ErrInvalidBin
	}
	return toQ15(math.Cos(2 * math.Pi * float64(k) / float64(blockSize))), nil
}

func toQ15(v float64) int16 {
	q := math.Round(v * Q15One)
	if q > math.MaxInt16 {
		q = math.MaxInt16
	}
	return int16(q)
}

// GoertzelPair runs the Goertzel recurrence for two coefficients over one block
// and returns the squared magnitude seen by each.
//
// The state starts at zero on every call; nothing is carried between blocks.
// Intermediate products are truncated to 16 bits exactly like the fixed-point
// reference, so large inputs may wrap.
func GoertzelPair(k0, k1 int16, samples []int16) (m0, m1 int32) {
	var prev0, prevPrev0, prev1, prevPrev1 int32

	// out = in + 2*coeff*prev - prevPrev, the doubling done by the <<1
	for _, s := range samples {
		x := int32(s)
		t0 := Mpy48SR(k0, prev0<<1) - prevPrev0 + x
		t1 := Mpy48SR(k1, prev1<<1) - prevPrev1 + x
		prevPrev0, prevPrev1 = prev0, prev1
		prev0, prev1 = t0, t1
	}

	prev0 >>= magnitudeScale
	prev1 >>= magnitudeScale
	prevPrev0 >>= magnitudeScale
	prevPrev1 >>= magnitudeScale

	return magnitude(k0, prev0, prevPrev0), magnitude(k1, prev1, prevPrev1)
}

// magnitude computes prev² + prevPrev² - 2cos(ω)·prev·prevPrev on 16-bit operands.
func magnitude(k int16, prev, prevPrev int32) int32 {
	cross := Mpy48SR(k, prev<<1)
	cross = int32(int16(cross)) * int32(int16(prevPrev))
	p := int32(int16(prev))
	pp := int32(int16(prevPrev))
	return p*p + pp*pp - cross
}
