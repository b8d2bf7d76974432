package emotion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClassifier returns canned vectors keyed by message text.
func fixedClassifier(byText map[string]Vector) ClassifyFunc {
	return func(text string) (Vector, error) {
		return byText[text], nil
	}
}

// intensityVector builds a valid vector whose dominant emotion is joy with
// the given probability; the remaining mass is spread over the other
// categories.
func intensityVector(p float64) Vector {
	v := make(Vector, len(Categories))
	share := (1 - p) / float64(len(Categories)-1)
	for _, c := range Categories {
		v[c] = share
	}
	v["joy"] = p
	return v
}

func fallbackClassify(text string) (Vector, error) {
	return ClassifyFallback(text), nil
}

func TestAnalyzeEmptyConversation(t *testing.T) {
	analysis, err := Analyze(nil, fallbackClassify, DefaultSmoothingWindow)
	require.NoError(t, err)

	assert.Empty(t, analysis.Messages)
	assert.Empty(t, analysis.Timeline.Raw)
	assert.Empty(t, analysis.Timeline.Smoothed)
	assert.Empty(t, analysis.Timeline.Peaks)
	assert.Equal(t, ConfidenceLow, analysis.SessionConfidence)
}

func TestAnalyzeSingleHappyMessage(t *testing.T) {
	messages := []Message{
		{ID: 1, Speaker: "user", Text: "I am so happy and excited!", TS: "2025-11-22T12:00:00Z"},
	}

	analysis, err := Analyze(messages, fallbackClassify, DefaultSmoothingWindow)
	require.NoError(t, err)
	require.Len(t, analysis.Messages, 1)

	msg := analysis.Messages[0]
	assert.Equal(t, "joy", msg.Dominant)
	assert.Equal(t, ConfidenceHigh, msg.Confidence)
	assert.Equal(t, ConfidenceHigh, analysis.SessionConfidence)

	assert.Equal(t, []float64{0.9}, analysis.Timeline.Raw)
	assert.Equal(t, []float64{0.9}, analysis.Timeline.Smoothed)
	assert.Empty(t, analysis.Timeline.Peaks)
}

func TestAnalyzeTimelineWindowOne(t *testing.T) {
	byText := map[string]Vector{
		"a": intensityVector(0.2),
		"b": intensityVector(0.8),
		"c": intensityVector(0.3),
	}
	messages := []Message{
		{ID: 1, Text: "a"},
		{ID: 2, Text: "b"},
		{ID: 3, Text: "c"},
	}

	analysis, err := Analyze(messages, fixedClassifier(byText), 1)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.2, 0.8, 0.3}, analysis.Timeline.Raw)
	assert.Equal(t, analysis.Timeline.Raw, analysis.Timeline.Smoothed)
	assert.Equal(t, []int{1}, analysis.Timeline.Peaks)
}

func TestAnalyzeSmoothsWithWindow(t *testing.T) {
	byText := map[string]Vector{
		"a": intensityVector(0.2),
		"b": intensityVector(0.8),
		"c": intensityVector(0.2),
	}
	messages := []Message{
		{ID: 1, Text: "a"},
		{ID: 2, Text: "b"},
		{ID: 3, Text: "c"},
	}

	analysis, err := Analyze(messages, fixedClassifier(byText), 3)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 0.4, 0.5}, analysis.Timeline.Smoothed)
	// Smoothing pulled the spike below the threshold.
	assert.Empty(t, analysis.Timeline.Peaks)
}

func TestAnalyzePropagatesClassifierError(t *testing.T) {
	boom := errors.New("model unavailable")
	classify := func(string) (Vector, error) { return nil, boom }

	_, err := Analyze([]Message{{ID: 1, Text: "hello"}}, classify, 3)
	assert.ErrorIs(t, err, boom)
}

func TestAnalyzeRejectsInvalidClassifierOutput(t *testing.T) {
	classify := func(string) (Vector, error) {
		v := Uniform()
		v["joy"] = 0.9 // breaks the sum invariant
		return v, nil
	}

	_, err := Analyze([]Message{{ID: 1, Text: "hello"}}, classify, 3)
	assert.ErrorIs(t, err, ErrInvalidVector)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	messages := []Message{
		{ID: 1, Speaker: "user", Text: "this is ridiculous!!!"},
		{ID: 2, Speaker: "agent", Text: "I hear you"},
		{ID: 3, Speaker: "user", Text: "ok"},
	}

	first, err := Analyze(messages, fallbackClassify, 3)
	require.NoError(t, err)
	second, err := Analyze(messages, fallbackClassify, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
