// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the ChatMessage model.
package repo

import (
	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// messageOrder sorts messages by their anchor, with id as the tiebreak.
const messageOrder = "timestamps.date ASC, timestamps.time ASC, chat_messages.id ASC"

// CreateMessage inserts a new message row anchored at ts.
func CreateMessage(db *gorm.DB, chatID, senderID uint, text string, ts *domain.Timestamp) (*domain.ChatMessage, error) {
	m := &domain.ChatMessage{
		ChatID:      chatID,
		SenderID:    senderID,
		Text:        text,
		TimestampID: ts.ID,
		Timestamp:   *ts,
	}
	return m, db.Omit("Timestamp", "Chat").Create(m).Error
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error.
func CountMessages(db *gorm.DB, chatID uint) (int64, error) {
	var total int64
	err := db.Raw("SELECT COUNT(*) FROM chat_messages WHERE chat_id = ?", chatID).Scan(&total).Error
	return total, err
}

// ListMessagesPage returns a paginated slice ordered (date ASC, time ASC, ID ASC).
func ListMessagesPage(db *gorm.DB, chatID uint, offset, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := db.
		Joins("JOIN timestamps ON timestamps.id = chat_messages.timestamp_id").
		Preload("Timestamp").
		Where("chat_messages.chat_id = ?", chatID).
		Order(messageOrder).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetMessage fetches a message by ID with its anchor.
func GetMessage(db *gorm.DB, id uint) (*domain.ChatMessage, error) {
	var m domain.ChatMessage
	if err := db.Preload("Timestamp").Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
