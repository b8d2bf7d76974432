package emotion

import (
	"errors"
	"fmt"
	"math"
)

// Categories lists the emotion categories in their canonical order.
// The order doubles as the tie-break order when two categories carry the
// same probability, so it must never be reordered.
var Categories = []string{
	"joy",
	"sadness",
	"anger",
	"fear",
	"surprise",
	"stress",
	"tension",
	"disgust",
	"anticipation",
	"neutral",
}

// SumTolerance is the allowed deviation from 1.0 for a vector's total mass.
const SumTolerance = 1e-6

// ErrInvalidVector is returned when a probability distribution is missing a
// category or does not sum to 1. Upstream classifier output is never silently
// renormalized; a malformed vector is surfaced to the caller.
var ErrInvalidVector = errors.New("invalid emotion vector")

// Vector is a probability distribution over the fixed emotion categories.
// A valid vector contains every category and sums to 1 within SumTolerance.
type Vector map[string]float64

// Uniform returns a vector with equal mass on every category.
func Uniform() Vector {
	v := make(Vector, len(Categories))
	share := 1.0 / float64(len(Categories))
	for _, c := range Categories {
		v[c] = share
	}
	return v
}

// Validate checks that the vector covers every category exactly once and
// sums to 1 within SumTolerance.
func (v Vector) Validate() error {
	if len(v) != len(Categories) {
		return fmt.Errorf("%w: got %d categories, want %d", ErrInvalidVector, len(v), len(Categories))
	}

	sum := 0.0
	for _, c := range Categories {
		p, ok := v[c]
		if !ok {
			return fmt.Errorf("%w: missing category %q", ErrInvalidVector, c)
		}
		if p < 0 || p > 1 || math.IsNaN(p) {
			return fmt.Errorf("%w: category %q has probability %v", ErrInvalidVector, c, p)
		}
		sum += p
	}

	if math.Abs(sum-1.0) > SumTolerance {
		return fmt.Errorf("%w: probabilities sum to %v", ErrInvalidVector, sum)
	}

	return nil
}

// Dominant returns the category with the highest probability. Ties are broken
// by canonical category order: iteration follows Categories, and a later
// category only wins with a strictly greater probability.
func (v Vector) Dominant() string {
	dominant := Categories[0]
	best := v[dominant]
	for _, c := range Categories[1:] {
		if v[c] > best {
			dominant = c
			best = v[c]
		}
	}
	return dominant
}

// Clone returns a copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for k, p := range v {
		out[k] = p
	}
	return out
}

// round3 rounds to three decimals, the precision the legacy wire contract
// uses for entropies and timeline intensities.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// round2 rounds to two decimals, used for aggregate confidence.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 is the exported form of round3 for callers that persist entropies.
func Round3(v float64) float64 {
	return round3(v)
}
