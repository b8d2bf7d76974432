package emotion

// DefaultPeakThreshold is the minimum smoothed intensity for a timeline
// index to qualify as a peak.
const DefaultPeakThreshold = 0.7

// DetectPeaks returns the indices of emotional intensity peaks in ascending
// order. An interior index is a peak when it is strictly above the threshold
// and a strict local maximum against both neighbors. The last index is also
// flagged whenever it exceeds the threshold, since it has no next sample to
// compare against. The first index is never flagged.
func DetectPeaks(values []float64, threshold float64) []int {
	peaks := []int{}

	for i := 1; i < len(values)-1; i++ {
		if values[i] > threshold && values[i] > values[i-1] && values[i] > values[i+1] {
			peaks = append(peaks, i)
		}
	}

	if len(values) > 1 && values[len(values)-1] > threshold {
		peaks = append(peaks, len(values)-1)
	}

	return peaks
}
