package service

import (
	"context"
	"strings"

	"empathy-engine/backend/ai"
	"empathy-engine/backend/internal/emotion"
	"empathy-engine/backend/pkg/logger"
	"empathy-engine/backend/pkg/resilience"
)

// crisisKeywords flag messages that need crisis resources instead of a
// tone-matched reply
var crisisKeywords = []string{
	"kill myself",
	"suicide",
	"end my life",
	"hurt myself",
	"self-harm",
	"self harm",
	"want to die",
	"no reason to live",
}

const crisisReply = "I'm really concerned about what you're sharing. You don't have to go through this alone. " +
	"Please reach out to someone you trust, or contact a crisis line such as the 988 Suicide & Crisis Lifeline " +
	"(call or text 988). Support is available right now."

const emptyTranscriptSummary = "No conversation to summarize yet."
const summaryUnavailable = "Unable to generate summary at this time."

// Reply is an empathetic response with the emotion read of the triggering
// message
type Reply struct {
	Reply      string             `json:"reply"`
	Emotion    string             `json:"emotion"`
	Confidence emotion.Confidence `json:"confidence"`
	SafetyFlag bool               `json:"safety_flag"`
}

// ReplyService generates empathetic replies and conversation summaries. Both
// operations prefer the model endpoint behind a circuit breaker and degrade
// to deterministic canned text, so neither ever fails.
type ReplyService struct {
	model      *ai.Classifier
	classifier *ClassifierService
	breaker    *resilience.CircuitBreaker
	log        *logger.Logger
}

// NewReplyService creates a reply service sharing the classifier pipeline
func NewReplyService(model *ai.Classifier, classifier *ClassifierService, log *logger.Logger) *ReplyService {
	return &ReplyService{
		model:      model,
		classifier: classifier,
		breaker:    resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("model-generation"), log),
		log:        log,
	}
}

// Reply classifies the message and produces a tone-matched empathetic
// response. Messages with crisis signals get crisis resources and a raised
// safety flag instead of a generated reply.
func (s *ReplyService) Reply(ctx context.Context, message string, history []ai.HistoryEntry) *Reply {
	probs := s.classifier.Classify(ctx, message, history)
	entropy := emotion.Entropy(probs)

	result := &Reply{
		Emotion:    probs.Dominant(),
		Confidence: emotion.ConfidenceFromEntropy(entropy),
	}

	if containsCrisisSignal(message) {
		result.Reply = crisisReply
		result.SafetyFlag = true
		s.log.Warn("Crisis signal detected in message", "emotion", result.Emotion)
		return result
	}

	result.Reply = s.generateReply(ctx, message, result.Emotion, history)
	return result
}

// SummarizeTranscript classifies each message and produces a prose summary
// of the conversation
func (s *ReplyService) SummarizeTranscript(ctx context.Context, messages []emotion.Message) string {
	if len(messages) == 0 {
		return emptyTranscriptSummary
	}

	entries := make([]ai.TranscriptEntry, 0, len(messages))
	for _, msg := range messages {
		probs := s.classifier.Classify(ctx, msg.Text, nil)
		entries = append(entries, ai.TranscriptEntry{
			Speaker: msg.Speaker,
			Emotion: probs.Dominant(),
			Text:    msg.Text,
		})
	}

	if s.model.Enabled() {
		var summary string
		err := s.breaker.Execute(func() error {
			generated, genErr := s.model.SummarizeTranscript(ctx, entries)
			if genErr != nil {
				return genErr
			}
			summary = generated
			return nil
		})
		if err == nil {
			return summary
		}
		s.log.Warn("Summary generation failed, using fallback text",
			"error", err.Error(),
			"breaker_state", string(s.breaker.GetState()),
		)
	}

	return summaryUnavailable
}

// generateReply tries the model and degrades to the canned per-emotion
// response
func (s *ReplyService) generateReply(ctx context.Context, message, dominant string, history []ai.HistoryEntry) string {
	if s.model.Enabled() {
		var reply string
		err := s.breaker.Execute(func() error {
			generated, genErr := s.model.GenerateReply(ctx, message, dominant, history)
			if genErr != nil {
				return genErr
			}
			reply = generated
			return nil
		})
		if err == nil {
			return reply
		}
		s.log.Warn("Reply generation failed, using fallback response",
			"error", err.Error(),
			"breaker_state", string(s.breaker.GetState()),
		)
	}

	return ai.FallbackReply(dominant)
}

func containsCrisisSignal(message string) bool {
	lowered := strings.ToLower(message)
	for _, keyword := range crisisKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
