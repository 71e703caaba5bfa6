package dtmf

import "github.com/ColonelBlimp/dtmfcodec/internal/dsp"

// Decision thresholds. The ratios are integer quotients, so "at least 6" means
// a/b truncated toward zero is >= 6.
const (
	// PowerThreshold is the minimum mean absolute amplitude of a batch.
	PowerThreshold = 328
	// DialToneRatio is how far the chosen row and column must stand above the
	// other primary tones.
	DialToneRatio = 6
	// HarmonicRatio is how far they must stand above every harmonic guard.
	HarmonicRatio = 16
	// lowColumnRatio replaces DialToneRatio for the column check when the column
	// is the 1176 Hz filter, which sits 33 Hz below the 1209 Hz keypad tone.
	lowColumnRatio = DialToneRatio / 3
)

// Magnitudes holds one filter output per detector coefficient.
type Magnitudes [NumCoefficients]int32

// Analyze normalises a batch and runs all nine filter pairs over it. The batch
// must hold exactly BatchSize samples.
func Analyze(batch []int16) Magnitudes {
	var scaled [BatchSize]int16
	dsp.Normalize(scaled[:], batch[:BatchSize])

	var m Magnitudes
	for i := 0; i < NumCoefficients; i += 2 {
		m[i], m[i+1] = dsp.GoertzelPair(detectorCoefficients[i], detectorCoefficients[i+1], scaled[:])
	}
	return m
}

// MeanAmplitude returns the truncated mean of |x| over the batch.
func MeanAmplitude(batch []int16) int32 {
	if len(batch) == 0 {
		return 0
	}
	var sum int32
	for _, s := range batch {
		v := int32(s)
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum / int32(len(batch))
}

// DetectBatch decodes one batch of exactly BatchSize samples, returning Silence
// when it is too quiet or fails any of the checks in Decide.
func DetectBatch(batch []int16) Symbol {
	if MeanAmplitude(batch[:BatchSize]) < PowerThreshold {
		return Silence
	}
	return Decide(Analyze(batch))
}

// Decide turns a set of filter magnitudes into a symbol. m is taken by value
// because zero entries are replaced with 1 before the ratio checks.
func Decide(m Magnitudes) Symbol {
	row := peak(&m, rowStart)
	col := peak(&m, colStart)

	// Average of the remaining primaries. Ten entries minus two, hence /8.
	var sum int32
	for i := 0; i < numPrimary; i++ {
		sum += m[i]
	}
	sum -= m[row]
	sum -= m[col]
	sum >>= 3
	if sum == 0 {
		sum = 1
	}

	if m[row]/sum < DialToneRatio || m[col]/sum < DialToneRatio {
		return Silence
	}

	// Twist: column may be at most 4x the row, row at most 8/3x the column.
	if m[row] < m[col]>>2 {
		return Silence
	}
	if m[col] < (m[row]>>1)-(m[row]>>3) {
		return Silence
	}

	for i := range m {
		if m[i] == 0 {
			m[i] = 1
		}
	}

	for i := firstGuard; i < NumCoefficients; i++ {
		if m[row]/m[i] < HarmonicRatio || m[col]/m[i] < HarmonicRatio {
			return Silence
		}
	}

	colRatio := int32(DialToneRatio)
	if col == colStart {
		colRatio = lowColumnRatio
	}
	for i := 0; i < numPrimary; i++ {
		// Entries equal in value to the winners are skipped along with the winners.
		if m[i] == m[col] || m[i] == m[row] {
			continue
		}
		if m[row]/m[i] < DialToneRatio {
			return Silence
		}
		if m[col]/m[i] < colRatio {
			return Silence
		}
	}

	return keypad[row-rowStart][col-colStart]
}

// peak returns the index of the largest of the four magnitudes starting at start.
// Magnitudes that are not positive never win; start is returned if none do.
func peak(m *Magnitudes, start int) int {
	idx := start
	var best int32
	for i := start; i < start+4; i++ {
		if best < m[i] {
			idx = i
			best = m[i]
		}
	}
	return idx
}
