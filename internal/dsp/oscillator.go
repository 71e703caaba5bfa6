package dsp

import "math"

// Oscillator is a two-pole resonator producing a sinusoid one sample at a time:
// y = 2·cos(ω)·y1 - y2. Its state persists across calls for the life of a tone.
type Oscillator struct {
	Coeff int16 // cos(ω) in Q15
	Y1    int32 // previous output
	Y2    int32 // output before that
}

// Step advances the recurrence by one sample and returns the new output.
func (o *Oscillator) Step() int32 {
	y := Mpy48SR(o.Coeff, o.Y1<<1) - o.Y2
	o.Y2 = o.Y1
	o.Y1 = y
	return y
}

// ToneOscillator sums a low and a high oscillator into one dual-tone signal.
type ToneOscillator struct {
	Low  Oscillator
	High Oscillator
}

// NewToneOscillator seeds both resonators. Starting each with y1 = coeff and
// y2 = seed gives a sinusoid whose amplitude is close to seed.
func NewToneOscillator(low, high int16, seed int32) ToneOscillator {
	return ToneOscillator{
		Low:  Oscillator{Coeff: low, Y1: int32(low), Y2: seed},
		High: Oscillator{Coeff: high, Y1: int32(high), Y2: seed},
	}
}

// Fill writes len(out) samples. When both coefficients are set the sum is halved
// so two full-scale tones still fit in 16 bits.
func (t *ToneOscillator) Fill(out []int16) {
	halve := t.Low.Coeff != 0 && t.High.Coeff != 0
	for i := range out {
		v := t.Low.Step() + t.High.Step()
		if halve {
			v >>= 1
		}
		out[i] = saturate16(v)
	}
}

func saturate16(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
