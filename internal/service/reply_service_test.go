package service

import (
	"context"
	"testing"

	"empathy-engine/backend/ai"
	"empathy-engine/backend/internal/emotion"
	"empathy-engine/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func newTestReplyService() *ReplyService {
	log := logger.New(logger.Config{Level: "error"})
	model := ai.NewClassifier(log)
	return NewReplyService(model, NewClassifierService(model, log), log)
}

func TestReplyMatchesDetectedEmotion(t *testing.T) {
	svc := newTestReplyService()

	reply := svc.Reply(context.Background(), "I am so happy and excited!", nil)

	assert.Equal(t, "joy", reply.Emotion)
	assert.Equal(t, emotion.ConfidenceHigh, reply.Confidence)
	assert.Equal(t, ai.FallbackReply("joy"), reply.Reply)
	assert.False(t, reply.SafetyFlag)
}

func TestReplyPerEmotionFallbacks(t *testing.T) {
	svc := newTestReplyService()

	cases := map[string]string{
		"I feel so unhappy and alone": "sadness",
		"I am furious about this!":    "anger",
		"I'm terrified of tomorrow":   "fear",
	}
	for text, want := range cases {
		reply := svc.Reply(context.Background(), text, nil)
		assert.Equal(t, want, reply.Emotion, text)
		assert.Equal(t, ai.FallbackReply(want), reply.Reply, text)
	}
}

func TestReplyRaisesSafetyFlag(t *testing.T) {
	svc := newTestReplyService()

	reply := svc.Reply(context.Background(), "Sometimes I just want to hurt myself", nil)

	assert.True(t, reply.SafetyFlag)
	assert.Contains(t, reply.Reply, "988")
	assert.NotEqual(t, ai.FallbackReply(reply.Emotion), reply.Reply)
}

func TestFallbackReplyUnknownEmotion(t *testing.T) {
	assert.Equal(t,
		"I'm here to support you. Tell me more about how you're feeling.",
		ai.FallbackReply("bogus"),
	)
}

func TestSummarizeEmptyTranscript(t *testing.T) {
	svc := newTestReplyService()

	summary := svc.SummarizeTranscript(context.Background(), nil)
	assert.Equal(t, "No conversation to summarize yet.", summary)
}

func TestSummarizeTranscriptWithoutModel(t *testing.T) {
	svc := newTestReplyService()

	summary := svc.SummarizeTranscript(context.Background(), []emotion.Message{
		{ID: 1, Speaker: "user", Text: "I am so happy and excited!"},
	})
	assert.Equal(t, "Unable to generate summary at this time.", summary)
}
