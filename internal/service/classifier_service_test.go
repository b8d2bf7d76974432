package service

import (
	"context"
	"testing"

	"empathy-engine/backend/ai"
	"empathy-engine/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifierService() *ClassifierService {
	log := logger.New(logger.Config{Level: "error"})
	return NewClassifierService(ai.NewClassifier(log), log)
}

func TestClassifyAlwaysReturnsValidVector(t *testing.T) {
	svc := newTestClassifierService()

	texts := []string{
		"I am furious about this!",
		"Ok.",
		"",
		"The meeting is at 3pm in the usual room.",
	}

	for _, text := range texts {
		vector := svc.Classify(context.Background(), text, nil)
		require.NoError(t, vector.Validate(), "text %q", text)
	}
}

func TestClassifyIsDeterministicWithoutModel(t *testing.T) {
	svc := newTestClassifierService()

	first := svc.Classify(context.Background(), "This is disgusting and awful", nil)
	second := svc.Classify(context.Background(), "This is disgusting and awful", nil)

	assert.Equal(t, first, second)
	assert.Equal(t, "disgust", first.Dominant())
}

func TestClassifyReturnsIndependentCopies(t *testing.T) {
	svc := newTestClassifierService()

	first := svc.Classify(context.Background(), "so happy right now", nil)
	first["joy"] = 0.0

	second := svc.Classify(context.Background(), "so happy right now", nil)
	require.NoError(t, second.Validate())
}

func TestBreakerMetricsExposed(t *testing.T) {
	svc := newTestClassifierService()

	metrics := svc.BreakerMetrics()
	assert.Equal(t, "model-classifier", metrics["name"])
	assert.Equal(t, "closed", metrics["state"])
}
