package ai

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"empathy-engine/backend/internal/emotion"
	"empathy-engine/backend/pkg/config"
	"empathy-engine/backend/pkg/logger"
	"empathy-engine/backend/pkg/secrets"

	openai "github.com/sashabaranov/go-openai"
)

// ErrModelDisabled is returned when classification via the model endpoint is
// switched off in configuration.
var ErrModelDisabled = errors.New("model classification is disabled")

// ErrEmptyResponse is returned when the model responds with no choices.
var ErrEmptyResponse = errors.New("no choices in model response")

const systemPrompt = `You are an emotion classification engine. Analyze the emotional content of a chat message and classify it into these emotions:
joy, sadness, anger, fear, surprise, stress, tension, disgust, anticipation, neutral

CRITICAL RULES:
1. NEVER classify as neutral if the text contains emotion words, emojis, multiple exclamation marks, ALL CAPS words, or sarcasm.
2. For short responses ("Ok.", "Sure.", "Fine."), inherit emotion from previous context if available.
3. Only return neutral when no other emotion reaches 0.40 and the text is purely factual.
4. Sarcasm ("Yeah great job... not") maps to anger or disgust, NOT neutral.

Respond with ONLY emotion probabilities in this exact format:
joy: X.XX, sadness: X.XX, anger: X.XX, fear: X.XX, surprise: X.XX, stress: X.XX, tension: X.XX, disgust: X.XX, anticipation: X.XX, neutral: X.XX

Probabilities must sum to 1.0.`

// HistoryEntry is one prior message passed to the model as context
type HistoryEntry struct {
	Speaker string
	Text    string
}

// Classifier classifies message emotions using a chat completion model.
// Callers wrap it with caching, circuit breaking, and the rule-based
// fallback; the classifier itself only talks to the endpoint.
type Classifier struct {
	client         *openai.Client
	model          string
	historyContext int
	enabled        bool
	log            *logger.Logger
}

// NewClassifier creates a classifier from application settings. The API key
// is resolved through the secrets manager ("model-api-key") so it can live
// in Vault or in the MODEL_API_KEY environment variable.
func NewClassifier(log *logger.Logger) *Classifier {
	cfg := config.Get()

	apiKey := secrets.GetSecretWithDefault(context.Background(), "model-api-key", "")
	enabled := cfg.Model.Enabled && apiKey != ""
	if cfg.Model.Enabled && apiKey == "" {
		log.Warn("Model API key not configured, classification will use rule-based fallback")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.Model.BaseURL != "" {
		clientConfig.BaseURL = cfg.Model.BaseURL
	}

	return &Classifier{
		client:         openai.NewClientWithConfig(clientConfig),
		model:          cfg.Model.Name,
		historyContext: cfg.Analysis.HistoryContext,
		enabled:        enabled,
		log:            log,
	}
}

// Enabled reports whether the classifier can issue model calls
func (c *Classifier) Enabled() bool {
	return c.enabled
}

// Ping issues a minimal completion request to verify the endpoint is reachable
func (c *Classifier) Ping(ctx context.Context) error {
	if !c.enabled {
		return ErrModelDisabled
	}
	_, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: 1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "ping"},
		},
	})
	return err
}

// Classify returns an emotion vector for the given text. Recent history is
// included as context so short acknowledgements can inherit the surrounding
// mood.
func (c *Classifier) Classify(ctx context.Context, text string, history []HistoryEntry) (emotion.Vector, error) {
	if !c.enabled {
		return nil, ErrModelDisabled
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: c.buildUserPrompt(text, history)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("model classification failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	vector := parseResponse(resp.Choices[0].Message.Content)
	vector = enforceAntiNeutral(vector)

	if err := vector.Validate(); err != nil {
		return nil, fmt.Errorf("model returned unusable distribution: %w", err)
	}

	c.log.Debug("Model classification completed",
		"dominant", vector.Dominant(),
		"text_length", len(text),
	)

	return vector, nil
}

// buildUserPrompt assembles the current message plus recent conversation
// context
func (c *Classifier) buildUserPrompt(text string, history []HistoryEntry) string {
	var sb strings.Builder

	if len(history) > 0 {
		recent := history
		if len(recent) > c.historyContext {
			recent = recent[len(recent)-c.historyContext:]
		}
		sb.WriteString("Recent conversation context:\n")
		for _, entry := range recent {
			sb.WriteString(entry.Speaker)
			sb.WriteString(": ")
			sb.WriteString(entry.Text)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Current message to analyze: \"")
	sb.WriteString(text)
	sb.WriteString("\"")

	return sb.String()
}

// parseResponse extracts "emotion: prob" pairs from the model output. Values
// are clamped to [0, 1] and the result is normalized; an unparseable response
// yields the uniform distribution rather than pure neutral.
func parseResponse(response string) emotion.Vector {
	vector := emotion.Vector{}
	for _, category := range emotion.Categories {
		vector[category] = 0.0
	}

	for _, pair := range strings.Split(strings.ToLower(response), ",") {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			continue
		}

		name := strings.TrimSpace(parts[0])
		if _, known := vector[name]; !known {
			continue
		}

		prob, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}

		if prob < 0 {
			prob = 0
		}
		if prob > 1 {
			prob = 1
		}
		vector[name] = prob
	}

	total := 0.0
	for _, p := range vector {
		total += p
	}
	if total <= 0 {
		return emotion.Uniform()
	}
	for name, p := range vector {
		vector[name] = p / total
	}

	return vector
}

// enforceAntiNeutral rebalances distributions where the model leaned neutral
// despite a clear competing emotion
func enforceAntiNeutral(vector emotion.Vector) emotion.Vector {
	maxEmotion := ""
	maxProb := 0.0
	for _, category := range emotion.Categories {
		if category == "neutral" {
			continue
		}
		if vector[category] > maxProb {
			maxEmotion = category
			maxProb = vector[category]
		}
	}

	if vector["neutral"] <= 0.5 || maxProb < 0.30 {
		return vector
	}

	rebalanced := emotion.Vector{}
	share := 0.2 / float64(len(emotion.Categories)-2)
	for _, category := range emotion.Categories {
		switch category {
		case maxEmotion:
			rebalanced[category] = 0.6
		case "neutral":
			rebalanced[category] = 0.2
		default:
			rebalanced[category] = share
		}
	}

	return rebalanced
}
