// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// RankingStats returns the number of rankable questions and the greatest
// UpdatedAt among them. Any vote, publish or visibility change moves one of
// the two, so the pair is a cheap fingerprint of all ranking pages.
//
// When nothing is rankable, the returned count is 0 and maxUpdatedAt is nil.
func RankingStats(ctx context.Context, db *gorm.DB, includeHidden bool) (count int64, maxUpdatedAt *time.Time, err error) {
	q := eligible(db.WithContext(ctx), includeHidden)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = eligible(db.WithContext(ctx), includeHidden).
		Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// MessagesStats returns the number of messages in chatID and the highest
// message id. Messages are append-only, so the pair changes on every post.
func MessagesStats(ctx context.Context, db *gorm.DB, chatID uint) (count int64, lastID uint, err error) {
	q := db.WithContext(ctx).Model(&domain.ChatMessage{}).Where("chat_id = ?", chatID)
	if err = q.Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}
	var row struct {
		ID uint
	}
	if err = db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("chat_id = ?", chatID).
		Select("id").Order("id DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return count, row.ID, nil
}
