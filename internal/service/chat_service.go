package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"empathy-engine/backend/ai"
	"empathy-engine/backend/internal/emotion"
	"empathy-engine/backend/internal/models"
	"empathy-engine/backend/internal/repository"
	"empathy-engine/backend/pkg/config"
	"empathy-engine/backend/pkg/logger"
	"empathy-engine/backend/shared/redis"

	"github.com/google/uuid"
)

// ErrNotChatOwner is returned when a caller tries to delete a chat that
// belongs to a different user.
var ErrNotChatOwner = errors.New("chat belongs to a different user")

// ErrInvalidCursor is returned for a malformed pagination cursor.
var ErrInvalidCursor = errors.New("invalid cursor")

const (
	defaultChatTitle   = "New Chat"
	defaultChatSnippet = "New chat"
	snippetMaxLen      = 50
	titleMaxWords      = 5

	summaryCachePrefix = "emotion-summary:"
	summaryCacheTTL    = time.Hour
)

// ChatSession is a chat with its full message history
type ChatSession struct {
	models.Chat
	Messages []models.ChatMessage `json:"messages"`
}

// ChatService manages chat sessions and their analyzed messages. Summaries
// are cached in redis and invalidated whenever a chat changes.
type ChatService struct {
	repo       repository.ChatRepository
	classifier *ClassifierService
	redis      *redis.Client
	log        *logger.Logger
}

// NewChatService creates a chat service. The redis client may be nil, in
// which case summaries are recomputed on every request.
func NewChatService(repo repository.ChatRepository, classifier *ClassifierService, redisClient *redis.Client, log *logger.Logger) *ChatService {
	return &ChatService{
		repo:       repo,
		classifier: classifier,
		redis:      redisClient,
		log:        log,
	}
}

// CreateChat creates a new chat session. A non-empty initial message is
// classified and stored as the first message.
func (s *ChatService) CreateChat(ctx context.Context, userID, initialMessage string) (*models.Chat, error) {
	now := time.Now().UTC()
	chat := &models.Chat{
		ID:              uuid.New().String()[:8],
		UserID:          userID,
		Title:           defaultChatTitle,
		Snippet:         defaultChatSnippet,
		DominantEmotion: "neutral",
		CreatedAt:       now,
		LastUpdatedAt:   now,
	}

	if err := s.repo.CreateChat(chat); err != nil {
		return nil, err
	}

	if initialMessage != "" {
		if _, err := s.AddMessage(ctx, chat.ID, "user", initialMessage); err != nil {
			return nil, err
		}
		return s.repo.GetChat(chat.ID)
	}

	s.log.Info("Chat created", "chat_id", chat.ID, "user_id", userID)
	return chat, nil
}

// GetChat returns a chat session with its full message history
func (s *ChatService) GetChat(ctx context.Context, chatID string) (*ChatSession, error) {
	chat, err := s.repo.GetChat(chatID)
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.GetMessages(chatID)
	if err != nil {
		return nil, err
	}

	return &ChatSession{Chat: *chat, Messages: messages}, nil
}

// ListChats returns one page of a user's chats ordered by last activity.
// The cursor is an opaque offset token; an empty cursor starts at the top.
func (s *ChatService) ListChats(ctx context.Context, userID, cursor string, limit int) (*models.ChatPage, error) {
	if limit <= 0 {
		limit = 20
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, ErrInvalidCursor
		}
		offset = parsed
	}

	chats, total, err := s.repo.ListByUser(userID, limit, offset)
	if err != nil {
		return nil, err
	}

	page := &models.ChatPage{
		Chats: chats,
		Total: total,
	}
	if int64(offset+len(chats)) < total {
		next := strconv.Itoa(offset + len(chats))
		page.NextCursor = &next
	}

	return page, nil
}

// AddMessage classifies and appends a message to a chat, updating the chat's
// denormalized metadata and invalidating its cached summary
func (s *ChatService) AddMessage(ctx context.Context, chatID, speaker, text string) (*models.ChatMessage, error) {
	chat, err := s.repo.GetChat(chatID)
	if err != nil {
		return nil, err
	}

	history, err := s.recentHistory(chatID)
	if err != nil {
		return nil, err
	}

	probs := s.classifier.Classify(ctx, text, history)
	entropy := emotion.Entropy(probs)

	message := &models.ChatMessage{
		ChatID:     chatID,
		Seq:        chat.MessageCount + 1,
		Speaker:    speaker,
		Text:       text,
		Timestamp:  time.Now().UTC(),
		Dominant:   probs.Dominant(),
		Entropy:    emotion.Round3(entropy),
		Confidence: string(emotion.ConfidenceFromEntropy(entropy)),
	}
	if err := message.SetVector(probs); err != nil {
		return nil, err
	}

	if err := s.repo.AddMessage(message); err != nil {
		return nil, err
	}

	chat.MessageCount = message.Seq
	chat.LastUpdatedAt = message.Timestamp

	// First user message names the chat
	if speaker == "user" && message.Seq == 1 {
		chat.Snippet = makeSnippet(text)
		chat.Title = makeTitle(text)
	}

	if dominant, aggErr := s.aggregateDominant(chatID); aggErr == nil {
		chat.DominantEmotion = dominant
	}

	if err := s.repo.UpdateChat(chat); err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, chatID)

	return message, nil
}

// UpdateTitle renames a chat
func (s *ChatService) UpdateTitle(ctx context.Context, chatID, title string) (*models.Chat, error) {
	chat, err := s.repo.GetChat(chatID)
	if err != nil {
		return nil, err
	}

	chat.Title = title
	chat.LastUpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateChat(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// DeleteChat removes a chat and its messages after verifying ownership
func (s *ChatService) DeleteChat(ctx context.Context, chatID, userID string) error {
	chat, err := s.repo.GetChat(chatID)
	if err != nil {
		return err
	}

	if chat.UserID != userID {
		return ErrNotChatOwner
	}

	if err := s.repo.DeleteMessages(chatID); err != nil {
		return err
	}
	if err := s.repo.DeleteChat(chatID); err != nil {
		return err
	}

	s.invalidateSummary(ctx, chatID)
	s.log.Info("Chat deleted", "chat_id", chatID, "user_id", userID)

	return nil
}

// Summarize aggregates a chat's messages into an emotion summary. Summaries
// with text are cached; an empty chat yields the fixed neutral summary.
func (s *ChatService) Summarize(ctx context.Context, chatID string, includeSummaryText bool) (*models.EmotionSummary, error) {
	if _, err := s.repo.GetChat(chatID); err != nil {
		return nil, err
	}

	if includeSummaryText {
		if cached := s.cachedSummary(ctx, chatID); cached != nil {
			return cached, nil
		}
	}

	stored, err := s.repo.GetMessages(chatID)
	if err != nil {
		return nil, err
	}

	summary := &models.EmotionSummary{
		ChatID:      chatID,
		ID:          chatID,
		GeneratedAt: time.Now().UTC(),
	}

	if len(stored) == 0 {
		scores := make(map[string]float64, len(emotion.Categories))
		for _, c := range emotion.Categories {
			scores[c] = 0.1
		}
		summary.DominantEmotion = "neutral"
		summary.Scores = scores
		summary.Confidence = 0.0
		if includeSummaryText {
			summary.SummaryText = "No messages yet."
		}
		return summary, nil
	}

	analyzed := make([]emotion.AnalyzedMessage, 0, len(stored))
	for _, msg := range stored {
		probs, vecErr := msg.Vector()
		if vecErr != nil {
			return nil, vecErr
		}
		analyzed = append(analyzed, emotion.AnalyzedMessage{
			ID:      msg.Seq,
			Speaker: msg.Speaker,
			Text:    msg.Text,
			Probs:   probs,
			Entropy: msg.Entropy,
		})
	}

	aggregated, err := emotion.Aggregate(analyzed, includeSummaryText)
	if err != nil {
		return nil, err
	}

	summary.DominantEmotion = aggregated.DominantEmotion
	summary.Scores = aggregated.Scores
	summary.Confidence = aggregated.Confidence
	summary.SummaryText = aggregated.SummaryText

	if includeSummaryText {
		s.cacheSummary(ctx, chatID, summary)
	}

	return summary, nil
}

// recentHistory loads the last few messages of a chat as model context
func (s *ChatService) recentHistory(chatID string) ([]ai.HistoryEntry, error) {
	messages, err := s.repo.GetMessages(chatID)
	if err != nil {
		return nil, err
	}

	limit := config.Get().Analysis.HistoryContext
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	history := make([]ai.HistoryEntry, 0, len(messages))
	for _, msg := range messages {
		history = append(history, ai.HistoryEntry{Speaker: msg.Speaker, Text: msg.Text})
	}
	return history, nil
}

// aggregateDominant recomputes the chat-level dominant emotion as the most
// frequent per-message dominant. Ties go to the earlier category in canonical
// order.
func (s *ChatService) aggregateDominant(chatID string) (string, error) {
	stored, err := s.repo.GetMessages(chatID)
	if err != nil {
		return "", err
	}
	if len(stored) == 0 {
		return "neutral", nil
	}

	counts := make(map[string]int, len(emotion.Categories))
	for _, msg := range stored {
		counts[msg.Dominant]++
	}

	dominant := "neutral"
	best := 0
	for _, category := range emotion.Categories {
		if counts[category] > best {
			dominant = category
			best = counts[category]
		}
	}
	return dominant, nil
}

func (s *ChatService) cachedSummary(ctx context.Context, chatID string) *models.EmotionSummary {
	if s.redis == nil {
		return nil
	}

	raw, err := s.redis.Get(ctx, summaryCachePrefix+chatID)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("Summary cache read failed", "chat_id", chatID, "error", err.Error())
		}
		return nil
	}

	var summary models.EmotionSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		s.log.Warn("Summary cache entry corrupted", "chat_id", chatID, "error", err.Error())
		return nil
	}
	return &summary
}

func (s *ChatService) cacheSummary(ctx context.Context, chatID string, summary *models.EmotionSummary) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, summaryCachePrefix+chatID, data, summaryCacheTTL); err != nil {
		s.log.Warn("Summary cache write failed", "chat_id", chatID, "error", err.Error())
	}
}

func (s *ChatService) invalidateSummary(ctx context.Context, chatID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, summaryCachePrefix+chatID); err != nil {
		s.log.Warn("Summary cache invalidation failed", "chat_id", chatID, "error", err.Error())
	}
}

// makeSnippet truncates the first message for chat listings. Truncation is
// per rune so a multibyte character at the cut never produces invalid UTF-8.
func makeSnippet(text string) string {
	runes := []rune(text)
	if len(runes) > snippetMaxLen {
		return string(runes[:snippetMaxLen]) + "..."
	}
	return text
}

// makeTitle derives a chat title from the first few words of a message
func makeTitle(text string) string {
	words := strings.Fields(text)
	if len(words) <= titleMaxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:titleMaxWords], " ") + "..."
}
