package emotion

import "math"

// Confidence is the discretized certainty of a classification.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Bucket boundaries for ConfidenceFromEntropy. Inclusive-exclusive:
// [0, 0.3) high, [0.3, 0.6) medium, [0.6, 1] low.
const (
	highEntropyCeiling   = 0.3
	mediumEntropyCeiling = 0.6
)

// Entropy returns the normalized Shannon entropy of the vector in [0, 1].
// A fully certain vector (one category at 1) yields 0, a uniform vector 1.
func Entropy(v Vector) float64 {
	entropy := 0.0
	for _, p := range v {
		if p > 0 {
			entropy -= p * math.Log2(p)
		}
	}

	maxEntropy := math.Log2(float64(len(Categories)))
	return entropy / maxEntropy
}

// ConfidenceFromEntropy maps a normalized entropy to a confidence bucket.
func ConfidenceFromEntropy(entropy float64) Confidence {
	switch {
	case entropy < highEntropyCeiling:
		return ConfidenceHigh
	case entropy < mediumEntropyCeiling:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
