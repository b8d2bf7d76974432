package emotion

// DefaultSmoothingWindow is the timeline smoothing window used when the
// caller does not specify one.
const DefaultSmoothingWindow = 3

// Smooth applies a centered moving average of the given window size and
// returns a new slice of the same length. Boundary samples use a truncated
// window: the divisor is the count of samples actually included, not the
// window size. A window below 1 is coerced to 1, which makes Smooth the
// identity transform (UI sliders may transiently report 0).
func Smooth(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}

	smoothed := make([]float64, len(values))
	half := window / 2

	for i := range values {
		start := i - half
		if start < 0 {
			start = 0
		}
		end := i + half + 1
		if end > len(values) {
			end = len(values)
		}

		sum := 0.0
		for _, v := range values[start:end] {
			sum += v
		}
		smoothed[i] = sum / float64(end-start)
	}

	return smoothed
}
