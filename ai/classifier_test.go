package ai

import (
	"testing"

	"empathy-engine/backend/internal/emotion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponseWellFormed(t *testing.T) {
	response := "joy: 0.70, sadness: 0.05, anger: 0.05, fear: 0.05, surprise: 0.05, stress: 0.02, tension: 0.02, disgust: 0.02, anticipation: 0.02, neutral: 0.02"

	vector := parseResponse(response)

	require.NoError(t, vector.Validate())
	assert.Equal(t, "joy", vector.Dominant())
	assert.InDelta(t, 0.70, vector["joy"], 1e-9)
}

func TestParseResponseUppercaseAndWhitespace(t *testing.T) {
	response := "Joy: 0.50,  SADNESS : 0.50"

	vector := parseResponse(response)

	require.NoError(t, vector.Validate())
	assert.InDelta(t, 0.5, vector["joy"], 1e-9)
	assert.InDelta(t, 0.5, vector["sadness"], 1e-9)
	assert.Equal(t, 0.0, vector["anger"])
}

func TestParseResponseClampsAndNormalizes(t *testing.T) {
	response := "joy: 2.0, anger: 1.0"

	vector := parseResponse(response)

	require.NoError(t, vector.Validate())
	assert.InDelta(t, 0.5, vector["joy"], 1e-9)
	assert.InDelta(t, 0.5, vector["anger"], 1e-9)
}

func TestParseResponseGarbageYieldsUniform(t *testing.T) {
	vector := parseResponse("I cannot classify this message.")

	require.NoError(t, vector.Validate())
	assert.Equal(t, emotion.Uniform(), vector)
}

func TestParseResponseIgnoresUnknownCategories(t *testing.T) {
	response := "joy: 0.5, excitement: 0.9, sadness: 0.5"

	vector := parseResponse(response)

	require.NoError(t, vector.Validate())
	assert.InDelta(t, 0.5, vector["joy"], 1e-9)
	assert.InDelta(t, 0.5, vector["sadness"], 1e-9)
}

func TestEnforceAntiNeutralRebalances(t *testing.T) {
	vector := emotion.Vector{}
	for _, c := range emotion.Categories {
		vector[c] = 0.0
	}
	vector["neutral"] = 0.6
	vector["sadness"] = 0.35
	vector["joy"] = 0.05

	rebalanced := enforceAntiNeutral(vector)

	require.NoError(t, rebalanced.Validate())
	assert.Equal(t, "sadness", rebalanced.Dominant())
	assert.InDelta(t, 0.6, rebalanced["sadness"], 1e-9)
	assert.InDelta(t, 0.2, rebalanced["neutral"], 1e-9)
}

func TestEnforceAntiNeutralLeavesModestNeutralAlone(t *testing.T) {
	vector := emotion.Vector{}
	for _, c := range emotion.Categories {
		vector[c] = 0.0
	}
	vector["neutral"] = 0.5
	vector["joy"] = 0.5

	assert.Equal(t, vector, enforceAntiNeutral(vector))
}

func TestEnforceAntiNeutralRequiresCompetingEmotion(t *testing.T) {
	vector := emotion.Vector{}
	share := 0.29 / 9.0
	for _, c := range emotion.Categories {
		vector[c] = share
	}
	vector["neutral"] = 0.71

	assert.Equal(t, vector, enforceAntiNeutral(vector))
}

func TestBuildUserPromptIncludesRecentHistory(t *testing.T) {
	c := &Classifier{historyContext: 2}

	history := []HistoryEntry{
		{Speaker: "user", Text: "first"},
		{Speaker: "agent", Text: "second"},
		{Speaker: "user", Text: "third"},
	}

	prompt := c.buildUserPrompt("Ok.", history)

	assert.NotContains(t, prompt, "first")
	assert.Contains(t, prompt, "agent: second")
	assert.Contains(t, prompt, "user: third")
	assert.Contains(t, prompt, `Current message to analyze: "Ok."`)
}
