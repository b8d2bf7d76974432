package service

import (
	"context"
	"errors"
	"fmt"

	"empathy-engine/backend/ai"
	"empathy-engine/backend/internal/emotion"
	"empathy-engine/backend/pkg/config"
	"empathy-engine/backend/pkg/logger"
)

// ErrTooManyMessages is returned when a single analysis request exceeds the
// configured message limit.
var ErrTooManyMessages = errors.New("too many messages in one analysis request")

// AnalysisService runs the stateless analysis pipeline over a conversation
// transcript
type AnalysisService struct {
	classifier *ClassifierService
	log        *logger.Logger
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(classifier *ClassifierService, log *logger.Logger) *AnalysisService {
	return &AnalysisService{
		classifier: classifier,
		log:        log,
	}
}

// Analyze classifies every message and builds the timeline and session
// confidence. A non-positive window falls back to the configured default.
// Earlier messages in the same request serve as model context for later ones.
func (s *AnalysisService) Analyze(ctx context.Context, messages []emotion.Message, window int) (*emotion.Analysis, error) {
	cfg := config.Get()

	if len(messages) > cfg.Analysis.MaxMessagesPerCall {
		return nil, fmt.Errorf("%w: got %d, limit %d", ErrTooManyMessages, len(messages), cfg.Analysis.MaxMessagesPerCall)
	}

	if window <= 0 {
		window = cfg.Analysis.SmoothingWindow
	}

	history := make([]ai.HistoryEntry, 0, len(messages))
	index := 0
	classify := func(text string) (emotion.Vector, error) {
		vector := s.classifier.Classify(ctx, text, history)
		if index < len(messages) {
			history = append(history, ai.HistoryEntry{
				Speaker: messages[index].Speaker,
				Text:    messages[index].Text,
			})
			index++
		}
		return vector, nil
	}

	analysis, err := emotion.AnalyzeWithThreshold(messages, classify, window, cfg.Analysis.PeakThreshold)
	if err != nil {
		return nil, err
	}

	s.log.Info("Analysis completed",
		"messages", len(messages),
		"peaks", len(analysis.Timeline.Peaks),
		"session_confidence", string(analysis.SessionConfidence),
	)

	return analysis, nil
}

// Summarize aggregates analyzed messages into a deterministic summary
func (s *AnalysisService) Summarize(messages []emotion.AnalyzedMessage, includeSummaryText bool) (*emotion.Summary, error) {
	return emotion.Aggregate(messages, includeSummaryText)
}
