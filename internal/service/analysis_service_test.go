package service

import (
	"context"
	"fmt"
	"testing"

	"empathy-engine/backend/ai"
	"empathy-engine/backend/internal/emotion"
	"empathy-engine/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalysisService() *AnalysisService {
	log := logger.New(logger.Config{Level: "error"})
	return NewAnalysisService(NewClassifierService(ai.NewClassifier(log), log), log)
}

func TestAnalyzeTranscript(t *testing.T) {
	svc := newTestAnalysisService()

	messages := []emotion.Message{
		{ID: 1, Speaker: "user", Text: "I am so happy and excited!", TS: "2026-08-28T10:00:00Z"},
		{ID: 2, Speaker: "agent", Text: "That sounds wonderful", TS: "2026-08-28T10:00:05Z"},
	}

	analysis, err := svc.Analyze(context.Background(), messages, 0)
	require.NoError(t, err)

	require.Len(t, analysis.Messages, 2)
	assert.Equal(t, "joy", analysis.Messages[0].Dominant)
	assert.Len(t, analysis.Timeline.Raw, 2)
	assert.Len(t, analysis.Timeline.Smoothed, 2)
	assert.Equal(t, emotion.ConfidenceHigh, analysis.SessionConfidence)
}

func TestAnalyzeEmptyTranscript(t *testing.T) {
	svc := newTestAnalysisService()

	analysis, err := svc.Analyze(context.Background(), []emotion.Message{}, 0)
	require.NoError(t, err)

	assert.Empty(t, analysis.Messages)
	assert.Empty(t, analysis.Timeline.Raw)
	assert.Equal(t, emotion.ConfidenceLow, analysis.SessionConfidence)
}

func TestAnalyzeRejectsOversizedTranscript(t *testing.T) {
	svc := newTestAnalysisService()

	messages := make([]emotion.Message, 501)
	for i := range messages {
		messages[i] = emotion.Message{ID: i + 1, Speaker: "user", Text: fmt.Sprintf("message %d", i)}
	}

	_, err := svc.Analyze(context.Background(), messages, 0)
	assert.ErrorIs(t, err, ErrTooManyMessages)
}
