package repository

import (
	"errors"

	"empathy-engine/backend/internal/models"

	"gorm.io/gorm"
)

// ErrChatNotFound is returned when a chat does not exist
var ErrChatNotFound = errors.New("chat not found")

type ChatRepository interface {
	CreateChat(chat *models.Chat) error
	GetChat(id string) (*models.Chat, error)
	UpdateChat(chat *models.Chat) error
	DeleteChat(id string) error
	ListByUser(userID string, limit, offset int) ([]models.Chat, int64, error)

	AddMessage(message *models.ChatMessage) error
	GetMessages(chatID string) ([]models.ChatMessage, error)
	CountMessages(chatID string) (int64, error)
	DeleteMessages(chatID string) error
}

type GormChatRepository struct {
	db *gorm.DB
}

func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

func (r *GormChatRepository) CreateChat(chat *models.Chat) error {
	return r.db.Create(chat).Error
}

func (r *GormChatRepository) GetChat(id string) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.First(&chat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *GormChatRepository) UpdateChat(chat *models.Chat) error {
	return r.db.Save(chat).Error
}

func (r *GormChatRepository) DeleteChat(id string) error {
	result := r.db.Delete(&models.Chat{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}

// ListByUser returns one page of a user's chats ordered by most recent
// activity, plus the total count for cursor math
func (r *GormChatRepository) ListByUser(userID string, limit, offset int) ([]models.Chat, int64, error) {
	var total int64
	if err := r.db.Model(&models.Chat{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var chats []models.Chat
	err := r.db.Where("user_id = ?", userID).
		Order("last_updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&chats).Error
	return chats, total, err
}

func (r *GormChatRepository) AddMessage(message *models.ChatMessage) error {
	return r.db.Create(message).Error
}

func (r *GormChatRepository) GetMessages(chatID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.Where("chat_id = ?", chatID).
		Order("seq ASC").
		Find(&messages).Error
	return messages, err
}

func (r *GormChatRepository) CountMessages(chatID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ChatMessage{}).Where("chat_id = ?", chatID).Count(&count).Error
	return count, err
}

func (r *GormChatRepository) DeleteMessages(chatID string) error {
	return r.db.Delete(&models.ChatMessage{}, "chat_id = ?", chatID).Error
}
