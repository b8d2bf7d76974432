package service

import (
	"context"
	"sort"
	"strings"
	"testing"
	"unicode/utf8"

	"empathy-engine/backend/ai"
	"empathy-engine/backend/internal/models"
	"empathy-engine/backend/internal/repository"
	"empathy-engine/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo is an in-memory ChatRepository for tests
type memoryRepo struct {
	chats    map[string]models.Chat
	messages map[string][]models.ChatMessage
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		chats:    make(map[string]models.Chat),
		messages: make(map[string][]models.ChatMessage),
	}
}

func (r *memoryRepo) CreateChat(chat *models.Chat) error {
	r.chats[chat.ID] = *chat
	return nil
}

func (r *memoryRepo) GetChat(id string) (*models.Chat, error) {
	chat, ok := r.chats[id]
	if !ok {
		return nil, repository.ErrChatNotFound
	}
	copied := chat
	return &copied, nil
}

func (r *memoryRepo) UpdateChat(chat *models.Chat) error {
	r.chats[chat.ID] = *chat
	return nil
}

func (r *memoryRepo) DeleteChat(id string) error {
	if _, ok := r.chats[id]; !ok {
		return repository.ErrChatNotFound
	}
	delete(r.chats, id)
	return nil
}

func (r *memoryRepo) ListByUser(userID string, limit, offset int) ([]models.Chat, int64, error) {
	var all []models.Chat
	for _, chat := range r.chats {
		if chat.UserID == userID {
			all = append(all, chat)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].LastUpdatedAt.After(all[j].LastUpdatedAt)
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []models.Chat{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memoryRepo) AddMessage(message *models.ChatMessage) error {
	r.messages[message.ChatID] = append(r.messages[message.ChatID], *message)
	return nil
}

func (r *memoryRepo) GetMessages(chatID string) ([]models.ChatMessage, error) {
	return append([]models.ChatMessage{}, r.messages[chatID]...), nil
}

func (r *memoryRepo) CountMessages(chatID string) (int64, error) {
	return int64(len(r.messages[chatID])), nil
}

func (r *memoryRepo) DeleteMessages(chatID string) error {
	delete(r.messages, chatID)
	return nil
}

func newTestChatService(repo repository.ChatRepository) *ChatService {
	log := logger.New(logger.Config{Level: "error"})
	classifier := NewClassifierService(ai.NewClassifier(log), log)
	return NewChatService(repo, classifier, nil, log)
}

func TestCreateChatWithoutMessage(t *testing.T) {
	svc := newTestChatService(newMemoryRepo())

	chat, err := svc.CreateChat(context.Background(), "user-1", "")
	require.NoError(t, err)

	assert.Len(t, chat.ID, 8)
	assert.Equal(t, "user-1", chat.UserID)
	assert.Equal(t, "New Chat", chat.Title)
	assert.Equal(t, "New chat", chat.Snippet)
	assert.Equal(t, "neutral", chat.DominantEmotion)
	assert.Equal(t, 0, chat.MessageCount)
}

func TestCreateChatWithInitialMessage(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestChatService(repo)

	chat, err := svc.CreateChat(context.Background(), "user-1", "I am so happy and excited!")
	require.NoError(t, err)

	assert.Equal(t, 1, chat.MessageCount)
	assert.Equal(t, "I am so happy and...", chat.Title)
	assert.Equal(t, "I am so happy and excited!", chat.Snippet)
	assert.Equal(t, "joy", chat.DominantEmotion)

	messages, err := repo.GetMessages(chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, 1, messages[0].Seq)
	assert.Equal(t, "user", messages[0].Speaker)
	assert.Equal(t, "joy", messages[0].Dominant)
	assert.Equal(t, "high", messages[0].Confidence)
}

func TestAddMessageIncrementsSequence(t *testing.T) {
	svc := newTestChatService(newMemoryRepo())

	chat, err := svc.CreateChat(context.Background(), "user-1", "")
	require.NoError(t, err)

	first, err := svc.AddMessage(context.Background(), chat.ID, "user", "I am so happy today!")
	require.NoError(t, err)
	second, err := svc.AddMessage(context.Background(), chat.ID, "agent", "That is wonderful to hear.")
	require.NoError(t, err)

	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 2, second.Seq)

	updated, err := svc.GetChat(context.Background(), chat.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MessageCount)
	assert.False(t, updated.LastUpdatedAt.Before(second.Timestamp))
}

func TestAddMessageToMissingChat(t *testing.T) {
	svc := newTestChatService(newMemoryRepo())

	_, err := svc.AddMessage(context.Background(), "nope", "user", "hello")
	assert.ErrorIs(t, err, repository.ErrChatNotFound)
}

func TestSummarizeEmptyChat(t *testing.T) {
	svc := newTestChatService(newMemoryRepo())

	chat, err := svc.CreateChat(context.Background(), "user-1", "")
	require.NoError(t, err)

	summary, err := svc.Summarize(context.Background(), chat.ID, true)
	require.NoError(t, err)

	assert.Equal(t, chat.ID, summary.ChatID)
	assert.Equal(t, "neutral", summary.DominantEmotion)
	assert.Equal(t, 0.0, summary.Confidence)
	assert.Equal(t, "No messages yet.", summary.SummaryText)
	for _, score := range summary.Scores {
		assert.Equal(t, 0.1, score)
	}
}

func TestSummarizeAfterMessages(t *testing.T) {
	svc := newTestChatService(newMemoryRepo())

	chat, err := svc.CreateChat(context.Background(), "user-1", "I am so happy and excited!")
	require.NoError(t, err)

	summary, err := svc.Summarize(context.Background(), chat.ID, true)
	require.NoError(t, err)

	assert.Equal(t, "joy", summary.DominantEmotion)
	assert.InDelta(t, 0.76, summary.Confidence, 1e-9)
	assert.Contains(t, summary.SummaryText, "strongly dominated by joy")
}

func TestSummarizeWithoutText(t *testing.T) {
	svc := newTestChatService(newMemoryRepo())

	chat, err := svc.CreateChat(context.Background(), "user-1", "I am so happy and excited!")
	require.NoError(t, err)

	summary, err := svc.Summarize(context.Background(), chat.ID, false)
	require.NoError(t, err)
	assert.Empty(t, summary.SummaryText)
}

func TestDeleteChatRequiresOwnership(t *testing.T) {
	svc := newTestChatService(newMemoryRepo())

	chat, err := svc.CreateChat(context.Background(), "user-1", "")
	require.NoError(t, err)

	err = svc.DeleteChat(context.Background(), chat.ID, "intruder")
	assert.ErrorIs(t, err, ErrNotChatOwner)

	err = svc.DeleteChat(context.Background(), chat.ID, "user-1")
	require.NoError(t, err)

	_, err = svc.GetChat(context.Background(), chat.ID)
	assert.ErrorIs(t, err, repository.ErrChatNotFound)
}

func TestListChatsPaginates(t *testing.T) {
	svc := newTestChatService(newMemoryRepo())

	for i := 0; i < 3; i++ {
		_, err := svc.CreateChat(context.Background(), "user-1", "")
		require.NoError(t, err)
	}

	page, err := svc.ListChats(context.Background(), "user-1", "", 2)
	require.NoError(t, err)
	assert.Len(t, page.Chats, 2)
	assert.Equal(t, int64(3), page.Total)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "2", *page.NextCursor)

	second, err := svc.ListChats(context.Background(), "user-1", *page.NextCursor, 2)
	require.NoError(t, err)
	assert.Len(t, second.Chats, 1)
	assert.Nil(t, second.NextCursor)
}

func TestListChatsRejectsBadCursor(t *testing.T) {
	svc := newTestChatService(newMemoryRepo())

	_, err := svc.ListChats(context.Background(), "user-1", "garbage", 10)
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestUpdateTitle(t *testing.T) {
	svc := newTestChatService(newMemoryRepo())

	chat, err := svc.CreateChat(context.Background(), "user-1", "")
	require.NoError(t, err)

	renamed, err := svc.UpdateTitle(context.Background(), chat.ID, "Quarterly review venting")
	require.NoError(t, err)
	assert.Equal(t, "Quarterly review venting", renamed.Title)
}

func TestMakeTitleAndSnippet(t *testing.T) {
	assert.Equal(t, "short", makeTitle("short"))
	assert.Equal(t, "one two three four five...", makeTitle("one two three four five six"))

	long := ""
	for i := 0; i < 60; i++ {
		long += "x"
	}
	assert.Len(t, makeSnippet(long), 53)
	assert.Equal(t, "keep", makeSnippet("keep"))
}

func TestMakeSnippetMultibyteBoundary(t *testing.T) {
	long := strings.Repeat("é", 60)

	snippet := makeSnippet(long)
	assert.True(t, utf8.ValidString(snippet))
	assert.Equal(t, strings.Repeat("é", 50)+"...", snippet)
	assert.Equal(t, 53, utf8.RuneCountInString(snippet))
}

func TestDominantEmotionIsMostFrequent(t *testing.T) {
	svc := newTestChatService(newMemoryRepo())

	chat, err := svc.CreateChat(context.Background(), "user-1", "")
	require.NoError(t, err)

	for _, text := range []string{"I am happy today", "I feel unhappy", "This is so sad"} {
		_, err = svc.AddMessage(context.Background(), chat.ID, "user", text)
		require.NoError(t, err)
	}

	updated, err := svc.GetChat(context.Background(), chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "sadness", updated.DominantEmotion)
}

func TestDominantEmotionTieBreaksByCategoryOrder(t *testing.T) {
	svc := newTestChatService(newMemoryRepo())

	chat, err := svc.CreateChat(context.Background(), "user-1", "")
	require.NoError(t, err)

	_, err = svc.AddMessage(context.Background(), chat.ID, "user", "I am happy today")
	require.NoError(t, err)
	_, err = svc.AddMessage(context.Background(), chat.ID, "user", "I feel unhappy")
	require.NoError(t, err)

	updated, err := svc.GetChat(context.Background(), chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "joy", updated.DominantEmotion)
}
