package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func certainVector(category string) Vector {
	v := make(Vector, len(Categories))
	for _, c := range Categories {
		v[c] = 0
	}
	v[category] = 1
	return v
}

func TestUniformIsValid(t *testing.T) {
	assert.NoError(t, Uniform().Validate())
}

func TestValidateRejectsMissingCategory(t *testing.T) {
	v := Uniform()
	delete(v, "tension")

	err := v.Validate()
	assert.ErrorIs(t, err, ErrInvalidVector)
}

func TestValidateRejectsBadSum(t *testing.T) {
	v := Uniform()
	v["joy"] = 0.5

	err := v.Validate()
	assert.ErrorIs(t, err, ErrInvalidVector)
}

func TestValidateRejectsNegativeProbability(t *testing.T) {
	v := certainVector("joy")
	v["joy"] = 1.1
	v["sadness"] = -0.1

	err := v.Validate()
	assert.ErrorIs(t, err, ErrInvalidVector)
}

func TestValidateAllowsFloatingTolerance(t *testing.T) {
	v := certainVector("anger")
	v["anger"] = 1 - 5e-7

	assert.NoError(t, v.Validate())
}

func TestDominant(t *testing.T) {
	v := certainVector("fear")
	assert.Equal(t, "fear", v.Dominant())
}

func TestDominantTieBreaksByCategoryOrder(t *testing.T) {
	v := certainVector("joy")
	v["joy"] = 0.5
	v["sadness"] = 0.5
	assert.Equal(t, "joy", v.Dominant())

	v = certainVector("anger")
	v["anger"] = 0.5
	v["neutral"] = 0.5
	assert.Equal(t, "anger", v.Dominant())
}

func TestCloneIsIndependent(t *testing.T) {
	v := certainVector("joy")
	clone := v.Clone()
	clone["joy"] = 0

	assert.Equal(t, 1.0, v["joy"])
}
