// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for responses,
// comments and the timestamp anchors they own.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// CreateTimestamp mints and persists a timestamp anchor for now.
func CreateTimestamp(ctx context.Context, db *gorm.DB, now time.Time) (*domain.Timestamp, error) {
	ts := domain.NewTimestamp(now)
	if err := db.WithContext(ctx).Create(&ts).Error; err != nil {
		return nil, err
	}
	return &ts, nil
}

// CreateResponse inserts a published response anchored at ts.
// A second response by the same user on the same question violates
// ux_responses_user_question.
func CreateResponse(ctx context.Context, db *gorm.DB, questionID, userID uint, text string, ts *domain.Timestamp) (*domain.Response, error) {
	r := &domain.Response{
		UserID:      userID,
		QuestionID:  questionID,
		Text:        text,
		Status:      domain.StatusPublished,
		TimestampID: ts.ID,
		Timestamp:   *ts,
	}
	if err := db.WithContext(ctx).Omit("Timestamp", "Question").Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// CreateComment inserts a published comment anchored at ts.
func CreateComment(ctx context.Context, db *gorm.DB, questionID, userID uint, text string, ts *domain.Timestamp) (*domain.Comment, error) {
	c := &domain.Comment{
		UserID:      userID,
		QuestionID:  questionID,
		Text:        text,
		Status:      domain.StatusPublished,
		TimestampID: ts.ID,
		Timestamp:   *ts,
	}
	if err := db.WithContext(ctx).Omit("Timestamp", "Question").Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// HasResponded reports whether userID has a response on questionID.
func HasResponded(ctx context.Context, db *gorm.DB, questionID, userID uint) (bool, error) {
	return exists(ctx, db, &domain.Response{}, questionID, userID)
}

// HasCommented reports whether userID has a comment on questionID.
func HasCommented(ctx context.Context, db *gorm.DB, questionID, userID uint) (bool, error) {
	return exists(ctx, db, &domain.Comment{}, questionID, userID)
}

func exists(ctx context.Context, db *gorm.DB, model any, questionID, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var n int64
	err := db.WithContext(ctx).
		Model(model).
		Where("question_id = ? AND user_id = ?", questionID, userID).
		Count(&n).Error
	return n > 0, err
}

// ListResponses returns every response on questionID, oldest first.
func ListResponses(ctx context.Context, db *gorm.DB, questionID uint) ([]domain.Response, error) {
	var out []domain.Response
	err := db.WithContext(ctx).
		Joins("JOIN timestamps ON timestamps.id = responses.timestamp_id").
		Preload("Timestamp").
		Where("responses.question_id = ?", questionID).
		Order("timestamps.date ASC, timestamps.time ASC, responses.id ASC").
		Find(&out).Error
	return out, err
}

// ListComments returns every comment on questionID, oldest first.
func ListComments(ctx context.Context, db *gorm.DB, questionID uint) ([]domain.Comment, error) {
	var out []domain.Comment
	err := db.WithContext(ctx).
		Joins("JOIN timestamps ON timestamps.id = comments.timestamp_id").
		Preload("Timestamp").
		Where("comments.question_id = ?", questionID).
		Order("timestamps.date ASC, timestamps.time ASC, comments.id ASC").
		Find(&out).Error
	return out, err
}
