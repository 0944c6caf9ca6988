// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency represents a recorded result of a previously posted chat
// message, keyed by (user_id, chat_id, key). It enables safe retries of
// POST /chats/{id}/messages by returning the originally stored message
// without inserting a second one.
type Idempotency struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_user_chat_key,priority:1"`
	ChatID    uint      `gorm:"not null;uniqueIndex:ux_user_chat_key,priority:2"`
	Key       string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_user_chat_key,priority:3"`
	MessageID uint      `gorm:"not null"`
	Status    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
