package dtmf

// SampleRate is the only rate the coefficient tables are valid for.
const SampleRate = 8000

// BatchSize is the detector's processing quantum. At 8 kHz each DFT bin of a
// 102-sample batch is about 78.4 Hz wide and every detector coefficient below sits
// exactly on one of those bins.
const BatchSize = 102

// NumCoefficients is the number of frequencies measured per batch.
const NumCoefficients = 18

const (
	numPrimary = 10 // 8 keypad tones plus two guard tones that join the baseline average
	firstGuard = 10 // harmonics checked against the 16:1 ratio
	rowStart   = 0
	colStart   = 4
)

// Detector coefficients, cos(2πk/102) in Q15. The comment gives the bin k and the
// frequency it lands on.
var detectorCoefficients = [NumCoefficients]int16{
	// row tones
	27860, // k=9, 706 Hz
	26745, // k=10, 784 Hz
	25529, // k=11, 863 Hz
	24216, // k=12, 941 Hz
	// column tones
	19747, // k=15, 1176 Hz
	16384, // k=17, 1333 Hz
	12773, // k=19, 1490 Hz
	8967,  // k=21, 1647 Hz
	// extra primaries
	21319, // k=14, 1098 Hz
	29769, // k=7, 549 Hz, a third of 1633 Hz
	// harmonic guards
	32706,  // k=1, 78 Hz
	32210,  // k=3, 235 Hz
	31778,  // k=4, 314 Hz
	31226,  // k=5, 392 Hz
	-1009,  // k=26, 2039 Hz
	-12772, // k=32, 2510 Hz
	-22811, // k=38, 2980 Hz, 2x1490 Hz
	-30555, // k=45, 3529 Hz, 3x1176 Hz
}

// detectorBins is the DFT bin each detector coefficient was derived from.
var detectorBins = [NumCoefficients]int{9, 10, 11, 12, 15, 17, 19, 21, 14, 7, 1, 3, 4, 5, 26, 32, 38, 45}

// Generator coefficients, cos(2πf/8000) in Q15 for the standard DTMF frequencies.
var (
	rowCoefficients = [4]int16{
		27980, // 697 Hz
		26956, // 770 Hz
		25701, // 852 Hz
		24218, // 941 Hz
	}
	colCoefficients = [4]int16{
		19073, // 1209 Hz
		16325, // 1336 Hz
		13085, // 1477 Hz
		9315,  // 1633 Hz
	}
)

// RowFrequencies and ColumnFrequencies are the nominal tones the generator emits.
var (
	RowFrequencies    = [4]float64{697, 770, 852, 941}
	ColumnFrequencies = [4]float64{1209, 1336, 1477, 1633}
)

// DetectorCoefficient returns entry i of the detector table.
func DetectorCoefficient(i int) int16 {
	return detectorCoefficients[i]
}

// DetectorFrequency returns the centre frequency of detector filter i in Hz.
func DetectorFrequency(i int) float64 {
	return float64(detectorBins[i]) * SampleRate / BatchSize
}
