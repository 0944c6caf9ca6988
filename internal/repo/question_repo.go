// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Question
// model and its tag bindings.
//
// Lifecycle transitions are written as conditional updates
// (WHERE id = ? AND user_id = ? AND status = ?) so that concurrent callers
// cannot both move the same question out of draft. A transition that matched
// no row returns ErrNotFound and leaves it to the service to explain why.
//
// Functions:
//
//   - CreateQuestion(ctx, db, userID, text) -> *domain.Question, error
//   - GetQuestion(ctx, db, id) -> *domain.Question, error
//   - GetDraft(ctx, db, userID) -> *domain.Question, error
//   - TransitionQuestion(ctx, db, id, userID, from, to) -> error
//   - SetQuestionVisibility(ctx, db, id, visibility) -> error
//   - BindQuestionTags(ctx, db, q, tags) -> error
//   - LoadQuestionTags(ctx, db, q) -> error
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// CreateQuestion inserts a new draft owned by userID. A second draft for the
// same user violates ux_questions_one_draft; the raw error is returned.
func CreateQuestion(ctx context.Context, db *gorm.DB, userID uint, text string) (*domain.Question, error) {
	now := time.Now().UTC()
	q := &domain.Question{
		UserID:     userID,
		Text:       text,
		Status:     domain.StatusDraft,
		Visibility: domain.VisibilityVisible,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.WithContext(ctx).Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

// GetQuestion fetches a question by id, or ErrNotFound.
func GetQuestion(ctx context.Context, db *gorm.DB, id uint) (*domain.Question, error) {
	var q domain.Question
	if err := db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// GetDraft returns the current draft of userID, or ErrNotFound.
func GetDraft(ctx context.Context, db *gorm.DB, userID uint) (*domain.Question, error) {
	var q domain.Question
	err := db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.StatusDraft).
		First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// TransitionQuestion moves question id owned by userID from status `from` to
// status `to`. It returns ErrNotFound when no row matched all three.
func TransitionQuestion(ctx context.Context, db *gorm.DB, id, userID uint, from, to string) error {
	res := db.WithContext(ctx).
		Model(&domain.Question{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetQuestionVisibility overwrites the visibility field of question id.
// Status and counters are untouched.
func SetQuestionVisibility(ctx context.Context, db *gorm.DB, id uint, visibility string) error {
	res := db.WithContext(ctx).
		Model(&domain.Question{}).
		Where("id = ?", id).
		Updates(map[string]any{"visibility": visibility, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// BindQuestionTags associates tags with q in the question_tags join table.
func BindQuestionTags(ctx context.Context, db *gorm.DB, q *domain.Question, tags []domain.Tag) error {
	return db.WithContext(ctx).Model(q).Association("Tags").Append(tags)
}

// LoadQuestionTags fills q.Tags ordered by tag name.
func LoadQuestionTags(ctx context.Context, db *gorm.DB, q *domain.Question) error {
	var tags []domain.Tag
	if err := db.WithContext(ctx).Model(q).Order("tags.name ASC").Association("Tags").Find(&tags); err != nil {
		return err
	}
	q.Tags = tags
	return nil
}
