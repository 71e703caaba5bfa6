package dsp

import (
	"math"
	"testing"
)

// Test configuration constants - the detector's framing at 8 kHz
const (
	testSampleRate = 8000.0
	testBlockSize  = 102
	testNyquist    = testSampleRate / 2.0
)

// generateBinTone creates a sine wave sitting exactly on DFT bin k
func generateBinTone(k, numSamples int, amplitude float64) []int16 {
	samples := make([]int16, numSamples)
	for i := range samples {
		samples[i] = int16(math.Round(amplitude * math.Sin(2*math.Pi*float64(k*i)/float64(numSamples))))
	}
	return samples
}

func TestCoefficient_KnownFrequencies(t *testing.T) {
	testCases := []struct {
		frequency float64
		want      int16
	}{
		{697, 27980},
		{770, 26956},
		{852, 25701},
		{1209, 19073},
		{1336, 16325},
		{1477, 13085},
		{1633, 9315},
		{1000, 23170},
	}

	for _, tc := range testCases {
		got, err := Coefficient(tc.frequency, testSampleRate)
		if err != nil {
			t.Fatalf("Coefficient(%v) error = %v", tc.frequency, err)
		}
		if got != tc.want {
			t.Errorf("Coefficient(%v) = %d, want %d", tc.frequency, got, tc.want)
		}
	}
}

func TestCoefficient_InvalidSampleRate(t *testing.T) {
	testCases := []struct {
		name       string
		sampleRate float64
	}{
		{"zero", 0},
		{"negative", -8000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Coefficient(697, tc.sampleRate)
			if err != ErrInvalidSampleRate {
				t.Errorf("expected ErrInvalidSampleRate, got: %v", err)
			}
		})
	}
}

func TestCoefficient_InvalidFrequency(t *testing.T) {
	testCases := []struct {
		name      string
		frequency float64
	}{
		{"zero", 0},
		{"negative", -697},
		{"at nyquist", testNyquist},
		{"above nyquist", testNyquist + 1000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Coefficient(tc.frequency, testSampleRate)
			if err != ErrInvalidFrequency {
				t.Errorf("expected ErrInvalidFrequency, got: %v", err)
			}
		})
	}
}

func TestBinCoefficient(t *testing.T) {
	got, err := BinCoefficient(17, testBlockSize)
	if err != nil {
		t.Fatalf("BinCoefficient error = %v", err)
	}
	// 17/102 = 1/6 of a cycle, cos(π/3) = 0.5
	if got != 16384 {
		t.Errorf("BinCoefficient(17, 102) = %d, want 16384", got)
	}

	for _, k := range []int{0, -1, 51, 60} {
		if _, err := BinCoefficient(k, testBlockSize); err != ErrInvalidBin {
			t.Errorf("BinCoefficient(%d) expected ErrInvalidBin, got: %v", k, err)
		}
	}
}

func TestCoefficient_ClampsAtFullScale(t *testing.T) {
	// cos of a tiny angle rounds to 32768, one past the int16 range
	got, err := Coefficient(0.001, testSampleRate)
	if err != nil {
		t.Fatalf("Coefficient error = %v", err)
	}
	if got != math.MaxInt16 {
		t.Errorf("Coefficient(0.001) = %d, want %d", got, math.MaxInt16)
	}
}

func TestGoertzelPair_Silence(t *testing.T) {
	m0, m1 := GoertzelPair(27860, 26745, make([]int16, testBlockSize))
	if m0 != 0 || m1 != 0 {
		t.Errorf("GoertzelPair(silence) = (%d, %d), want (0, 0)", m0, m1)
	}
}

func TestGoertzelPair_EmptyBlock(t *testing.T) {
	m0, m1 := GoertzelPair(27860, 26745, nil)
	if m0 != 0 || m1 != 0 {
		t.Errorf("GoertzelPair(nil) = (%d, %d), want (0, 0)", m0, m1)
	}
}

func TestGoertzelPair_SelectsOwnBin(t *testing.T) {
	k9, _ := BinCoefficient(9, testBlockSize)
	k10, _ := BinCoefficient(10, testBlockSize)

	samples := generateBinTone(9, testBlockSize, 8000)
	normalized := make([]int16, len(samples))
	Normalize(normalized, samples)

	m9, m10 := GoertzelPair(k9, k10, normalized)
	if m9 < 1_000_000 {
		t.Errorf("magnitude at own bin = %d, expected a strong response", m9)
	}
	if m10 > m9/1000 {
		t.Errorf("magnitude at neighbouring bin = %d, expected far below %d", m10, m9)
	}

	// Swapping the pair swaps the outputs
	s10, s9 := GoertzelPair(k10, k9, normalized)
	if s9 != m9 || s10 != m10 {
		t.Errorf("swapped pair = (%d, %d), want (%d, %d)", s10, s9, m10, m9)
	}
}

func TestGoertzelPair_NoStateBetweenCalls(t *testing.T) {
	k9, _ := BinCoefficient(9, testBlockSize)
	samples := generateBinTone(9, testBlockSize, 8000)

	a0, a1 := GoertzelPair(k9, k9, samples)
	b0, b1 := GoertzelPair(k9, k9, samples)
	if a0 != b0 || a1 != b1 || a0 != a1 {
		t.Errorf("repeated calls differ: (%d, %d) vs (%d, %d)", a0, a1, b0, b1)
	}
}
