// Package services – VoteService
//
// This file implements vote application. Each user holds at most one vote
// per question (ux_votes_user_question). Casting the same direction twice is
// a conflict; casting the other direction moves the vote, decrementing one
// counter and incrementing the other in the same transaction.
//
// Counters are changed with in-database arithmetic (col = col + 1) so
// concurrent votes on the same question are never lost.
package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/repo"
)

// VoteService applies votes to published questions.
type VoteService struct {
	DB *gorm.DB
}

// NewVoteService constructs a VoteService.
func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{DB: db}
}

// ApplyVote records userID's vote on questionID in direction ("up"/"down").
//
// Every failure is returned as a *VoteError whose Cause is one of
// ErrInvalidDirection, ErrMissingUser, ErrQuestionNotFound, ErrNotPublished,
// ErrAlreadyVoted, or a StoreError. Nothing is changed on failure.
func (s *VoteService) ApplyVote(ctx context.Context, questionID, userID uint, direction string) (err error) {
	ctx, span := startSpan(ctx, "VoteService", "ApplyVote",
		attribute.Int64("question.id", int64(questionID)),
		attribute.Int64("user.id", int64(userID)),
		attribute.String("direction", direction),
	)
	defer func() { endSpan(span, err) }()

	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction != domain.VoteUp && direction != domain.VoteDown {
		return &VoteError{QuestionID: questionID, Cause: ErrInvalidDirection}
	}
	if userID == 0 {
		return &VoteError{QuestionID: questionID, Cause: ErrMissingUser}
	}

	outcome := "new"
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := repo.GetQuestion(ctx, tx, questionID)
		if err != nil {
			if isNotFound(err) {
				return ErrQuestionNotFound
			}
			return err
		}
		if q.Status != domain.StatusPublished {
			return ErrNotPublished
		}

		prev, err := repo.GetVote(ctx, tx, userID, questionID)
		switch {
		case err == nil && prev.Direction == direction:
			return ErrAlreadyVoted
		case err == nil:
			if err := repo.SwitchVote(ctx, tx, prev.ID, prev.Direction, direction); err != nil {
				if isNotFound(err) {
					return ErrAlreadyVoted
				}
				return err
			}
			if err := repo.AdjustCounter(ctx, tx, questionID, prev.Direction, -1); err != nil {
				return err
			}
			outcome = "switched"
		case isNotFound(err):
			if _, err := repo.CreateVote(ctx, tx, userID, questionID, direction); err != nil {
				if isDuplicate(err) {
					return ErrAlreadyVoted
				}
				return err
			}
		default:
			return err
		}
		return repo.AdjustCounter(ctx, tx, questionID, direction, 1)
	})
	if err != nil {
		return &VoteError{QuestionID: questionID, Cause: storeErr("apply vote", err)}
	}
	votesApplied.WithLabelValues(direction, outcome).Inc()
	return nil
}
