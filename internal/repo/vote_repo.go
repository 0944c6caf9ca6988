// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for votes and the
// counters they drive.
package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// counterColumn maps a vote direction to its Question counter column.
func counterColumn(direction string) (string, error) {
	switch direction {
	case domain.VoteUp:
		return "upvotes", nil
	case domain.VoteDown:
		return "downvotes", nil
	default:
		return "", fmt.Errorf("unknown vote direction %q", direction)
	}
}

// GetVote returns the vote userID cast on questionID, or ErrNotFound.
func GetVote(ctx context.Context, db *gorm.DB, userID, questionID uint) (*domain.Vote, error) {
	var v domain.Vote
	err := db.WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVote inserts a vote row. (user_id, question_id) is unique.
func CreateVote(ctx context.Context, db *gorm.DB, userID, questionID uint, direction string) (*domain.Vote, error) {
	now := time.Now().UTC()
	v := &domain.Vote{
		UserID:     userID,
		QuestionID: questionID,
		Direction:  direction,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

// SwitchVote flips an existing vote from `from` to `to`. It returns
// ErrNotFound when the row was not in direction `from`.
func SwitchVote(ctx context.Context, db *gorm.DB, voteID uint, from, to string) error {
	res := db.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("id = ? AND direction = ?", voteID, from).
		Updates(map[string]any{"direction": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustCounter adds delta to the counter for direction on questionID as a
// single in-database arithmetic update, never a read-modify-write.
// updated_at is bumped as well so ranking ETags change.
func AdjustCounter(ctx context.Context, db *gorm.DB, questionID uint, direction string, delta int) error {
	col, err := counterColumn(direction)
	if err != nil {
		return err
	}
	res := db.WithContext(ctx).
		Model(&domain.Question{}).
		Where("id = ?", questionID).
		Updates(map[string]any{
			col:          gorm.Expr(col+" + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
