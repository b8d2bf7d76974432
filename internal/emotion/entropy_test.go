package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntropyCertainVectorIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Entropy(certainVector("joy")))
}

func TestEntropyUniformVectorIsOne(t *testing.T) {
	assert.InDelta(t, 1.0, Entropy(Uniform()), 1e-9)
}

func TestEntropyStaysNormalized(t *testing.T) {
	vectors := []Vector{
		certainVector("neutral"),
		Uniform(),
		ClassifyFallback("I am so happy and excited!"),
		ClassifyFallback(""),
		ClassifyFallback("the quarterly report is attached"),
	}

	for _, v := range vectors {
		e := Entropy(v)
		assert.GreaterOrEqual(t, e, 0.0)
		assert.LessOrEqual(t, e, 1.0)
	}
}

func TestConfidenceBucketBoundaries(t *testing.T) {
	cases := []struct {
		entropy float64
		want    Confidence
	}{
		{0.0, ConfidenceHigh},
		{0.29999, ConfidenceHigh},
		{0.3, ConfidenceMedium},
		{0.59999, ConfidenceMedium},
		{0.6, ConfidenceLow},
		{1.0, ConfidenceLow},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ConfidenceFromEntropy(tc.entropy), "entropy %v", tc.entropy)
	}
}
