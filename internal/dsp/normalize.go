package dsp

// normUnset is the starting value of the sign-bit scan; a block with no nonzero
// samples keeps it and ends up shifted by normUnset-16.
const normUnset = 32

// Normalize rescales src into dst so the loudest sample uses the full 16-bit range.
// It returns the shift applied: left when positive, right when negative. dst must
// be at least as long as src; dst and src may alias.
func Normalize(dst, src []int16) int {
	minNorm := normUnset
	for _, s := range src {
		if s == 0 {
			continue
		}
		if n := NormL(int32(s)); n < minNorm {
			minNorm = n
		}
	}

	shift := minNorm - 16
	for i, s := range src {
		v := int32(s)
		if shift >= 0 {
			v <<= uint(shift)
		} else {
			v >>= uint(-shift)
		}
		dst[i] = int16(v)
	}
	return shift
}
