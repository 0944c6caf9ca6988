// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the tag
// catalog and for the tags a user follows.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// CreateTag inserts a tag. Names are unique.
func CreateTag(ctx context.Context, db *gorm.DB, name string) (*domain.Tag, error) {
	t := &domain.Tag{Name: name, CreatedAt: time.Now().UTC()}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// ListTags returns the whole catalog ordered by name.
func ListTags(ctx context.Context, db *gorm.DB) ([]domain.Tag, error) {
	var out []domain.Tag
	err := db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

// FindTags returns the tags whose ids are in ids. Unknown ids are simply
// absent from the result; callers compare lengths.
func FindTags(ctx context.Context, db *gorm.DB, ids []uint) ([]domain.Tag, error) {
	var out []domain.Tag
	if len(ids) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&out).Error
	return out, err
}

// ReplaceFollowedTags sets the followed tags of userID to exactly tags.
func ReplaceFollowedTags(ctx context.Context, db *gorm.DB, userID uint, tags []domain.Tag) error {
	u := &domain.User{ID: userID}
	return db.WithContext(ctx).Model(u).Association("Tags").Replace(tags)
}

// ListFollowedTags returns the tags userID follows, ordered by name.
func ListFollowedTags(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Tag, error) {
	var out []domain.Tag
	err := db.WithContext(ctx).
		Joins("JOIN user_tags ON user_tags.tag_id = tags.id").
		Where("user_tags.user_id = ?", userID).
		Order("tags.name ASC").
		Find(&out).Error
	return out, err
}
