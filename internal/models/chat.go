package models

import (
	"encoding/json"
	"time"

	"empathy-engine/backend/internal/emotion"
)

// Chat represents a chat session with denormalized emotion metadata
type Chat struct {
	ID              string    `json:"chatId" gorm:"primaryKey"`
	UserID          string    `json:"userId" gorm:"index"`
	Title           string    `json:"title"`
	Snippet         string    `json:"snippet"`
	DominantEmotion string    `json:"dominant_emotion"`
	MessageCount    int       `json:"messageCount"`
	CreatedAt       time.Time `json:"createdAt"`
	LastUpdatedAt   time.Time `json:"lastUpdatedAt"`
}

// ChatMessage represents a single analyzed message within a chat. Seq is the
// 1-based position within its chat and is what clients see as the message id.
type ChatMessage struct {
	DBID       uint      `json:"-" gorm:"primaryKey;column:id"`
	ChatID     string    `json:"-" gorm:"index"`
	Seq        int       `json:"id"`
	Speaker    string    `json:"speaker"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"ts"`
	Probs      string    `json:"-" gorm:"type:text"`
	Dominant   string    `json:"dominant"`
	Entropy    float64   `json:"entropy"`
	Confidence string    `json:"confidence"`
}

// SetVector serializes an emotion vector into the probs column
func (m *ChatMessage) SetVector(v emotion.Vector) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.Probs = string(data)
	return nil
}

// Vector deserializes the probs column back into an emotion vector
func (m *ChatMessage) Vector() (emotion.Vector, error) {
	var v emotion.Vector
	if err := json.Unmarshal([]byte(m.Probs), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// MarshalJSON includes the deserialized probability vector in API responses
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	type alias ChatMessage
	vector, err := m.Vector()
	if err != nil {
		vector = emotion.Vector{}
	}
	return json.Marshal(struct {
		alias
		ProbsOut emotion.Vector `json:"probs"`
	}{
		alias:    alias(m),
		ProbsOut: vector,
	})
}

// CreateChatRequest is the payload for creating a new chat session
type CreateChatRequest struct {
	UserID         string `json:"userId" binding:"required"`
	InitialMessage string `json:"initialMessage"`
}

// AddMessageRequest is the payload for appending a message to a chat
type AddMessageRequest struct {
	Speaker string `json:"speaker" binding:"required"`
	Text    string `json:"text" binding:"required"`
}

// UpdateTitleRequest is the payload for renaming a chat
type UpdateTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

// ChatPage is one page of a user's chat listing, ordered by last update
type ChatPage struct {
	Chats      []Chat  `json:"chats"`
	NextCursor *string `json:"nextCursor"`
	Total      int64   `json:"total"`
}

// EmotionSummary is the aggregated emotion report for a chat
type EmotionSummary struct {
	ChatID          string             `json:"chatId"`
	ID              string             `json:"id"`
	DominantEmotion string             `json:"dominant_emotion"`
	Scores          map[string]float64 `json:"scores"`
	Confidence      float64            `json:"confidence"`
	SummaryText     string             `json:"summary_text,omitempty"`
	GeneratedAt     time.Time          `json:"generatedAt"`
}
