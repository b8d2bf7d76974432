package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const replySystemPrompt = `You are an empathetic AI assistant. Generate a compassionate, supportive response that:
1. Acknowledges the user's emotional state
2. Provides validation and understanding
3. Offers helpful perspective or support
4. Keeps the response concise (2-3 sentences)
5. Matches the intensity of their emotion`

const summarySystemPrompt = `Summarize the conversation, focusing on:
1. Main topics discussed
2. Emotional journey of the user
3. Key concerns or needs expressed
4. Overall tone and outcome

Provide a concise summary (3-4 sentences).`

// fallbackReplies are the deterministic per-emotion responses used when the
// model endpoint is unavailable.
var fallbackReplies = map[string]string{
	"joy":          "I'm so glad you're feeling happy! It's wonderful to share in your positive energy.",
	"sadness":      "I hear you, and I'm here for you. It's okay to feel this way, and your feelings are valid.",
	"anger":        "I understand you're frustrated. Let's work through this together. What would help most right now?",
	"fear":         "I can sense your worry. Remember, you're not alone in this. Let's take it one step at a time.",
	"surprise":     "That's quite unexpected! How are you feeling about it?",
	"stress":       "It sounds like you're under a lot of pressure. Remember to take care of yourself.",
	"tension":      "I sense some tension. Would you like to talk about what's on your mind?",
	"disgust":      "I understand that doesn't sit well with you. Your feelings are completely valid.",
	"anticipation": "It sounds like you're looking forward to something! Tell me more.",
	"neutral":      "I'm here and listening. What's on your mind?",
}

const genericFallbackReply = "I'm here to support you. Tell me more about how you're feeling."

// FallbackReply returns the canned empathetic response for an emotion
func FallbackReply(emotion string) string {
	if reply, ok := fallbackReplies[emotion]; ok {
		return reply
	}
	return genericFallbackReply
}

// TranscriptEntry is one classified message of a conversation being
// summarized
type TranscriptEntry struct {
	Speaker string
	Emotion string
	Text    string
}

// GenerateReply asks the model for an empathetic response tuned to the
// detected dominant emotion. Callers fall back to FallbackReply on error.
func (c *Classifier) GenerateReply(ctx context.Context, text, dominant string, history []HistoryEntry) (string, error) {
	if !c.enabled {
		return "", ErrModelDisabled
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "The user just sent a message with detected emotion: %s.\n\n", dominant)
	if len(history) > 0 {
		sb.WriteString("Conversation history:\n")
		for _, entry := range history {
			sb.WriteString(entry.Speaker)
			sb.WriteString(": ")
			sb.WriteString(entry.Text)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "User's current message: %q", text)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: replySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
	})
	if err != nil {
		return "", fmt.Errorf("reply generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyResponse
	}
	return reply, nil
}

// SummarizeTranscript asks the model for a prose summary of a classified
// conversation
func (c *Classifier) SummarizeTranscript(ctx context.Context, entries []TranscriptEntry) (string, error) {
	if !c.enabled {
		return "", ErrModelDisabled
	}

	var sb strings.Builder
	sb.WriteString("Conversation:\n")
	for _, entry := range entries {
		fmt.Fprintf(&sb, "%s (%s): %s\n", entry.Speaker, entry.Emotion, entry.Text)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summary generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", ErrEmptyResponse
	}
	return summary, nil
}
