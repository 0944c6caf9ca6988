// Package services – QuestionService
//
// This file implements the QuestionService, which owns the question state
// machine:
//
//	draft --publish--> published
//	draft --cancel-->  cancelled (terminal)
//
// plus the admin-controlled visibility flag, which is orthogonal to status.
//
// A user holds at most one draft. That rule lives in the partial unique index
// ux_questions_one_draft, not in an existence check, so two concurrent
// StartDraft calls cannot both succeed; the loser gets ErrDraftExists.
// StartDraft returns the draft itself and later calls address it by id.
package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/repo"
)

// QuestionService implements the question lifecycle use-cases.
type QuestionService struct {
	// DB is the database handle used for all question operations.
	DB *gorm.DB

	// MaxTextRunes caps question text length. Zero disables the check.
	MaxTextRunes int
}

// NewQuestionService constructs a QuestionService with default limits.
func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{DB: db, MaxTextRunes: 4000}
}

// StartDraft creates a new draft for userID and returns it.
//
// Errors: ErrMissingUser, ErrEmptyText, ErrTooLong, ErrUserNotFound, and
// ErrDraftExists when the user already has a draft.
func (s *QuestionService) StartDraft(ctx context.Context, userID uint, text string) (q *domain.Question, err error) {
	ctx, span := startSpan(ctx, "QuestionService", "StartDraft", attribute.Int64("user.id", int64(userID)))
	defer func() { endSpan(span, err) }()

	text = strings.TrimSpace(text)
	if userID == 0 {
		return nil, ErrMissingUser
	}
	if text == "" {
		return nil, ErrEmptyText
	}
	if s.MaxTextRunes > 0 && utf8.RuneCountInString(text) > s.MaxTextRunes {
		return nil, ErrTooLong
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetUser(ctx, tx, userID); err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}
		created, err := repo.CreateQuestion(ctx, tx, userID, text)
		if err != nil {
			if isDuplicate(err) {
				return ErrDraftExists
			}
			return err
		}
		q = created
		return nil
	})
	if err != nil {
		return nil, storeErr("start draft", err)
	}
	questionTransitions.WithLabelValues(domain.StatusDraft).Inc()
	return q, nil
}

// CurrentDraft returns the caller's draft, or ErrDraftNotFound.
func (s *QuestionService) CurrentDraft(ctx context.Context, userID uint) (*domain.Question, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}
	q, err := repo.GetDraft(ctx, s.DB, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDraftNotFound
		}
		return nil, storeErr("current draft", err)
	}
	return q, nil
}

// PublishDraft publishes the caller's draft questionID and binds tagIDs to it.
// The status flip and every tag binding commit together or not at all.
//
// Errors: ErrNoTags, ErrTagNotFound, and ErrDraftNotFound when questionID is
// not a draft owned by userID.
func (s *QuestionService) PublishDraft(ctx context.Context, userID, questionID uint, tagIDs []uint) (err error) {
	ctx, span := startSpan(ctx, "QuestionService", "PublishDraft",
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("question.id", int64(questionID)),
		attribute.Int("tags", len(tagIDs)),
	)
	defer func() { endSpan(span, err) }()

	if userID == 0 {
		return ErrMissingUser
	}
	ids := uniqueIDs(tagIDs)
	if len(ids) == 0 {
		return ErrNoTags
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := repo.FindTags(ctx, tx, ids)
		if err != nil {
			return err
		}
		if len(tags) != len(ids) {
			return ErrTagNotFound
		}
		if err := repo.TransitionQuestion(ctx, tx, questionID, userID, domain.StatusDraft, domain.StatusPublished); err != nil {
			if isNotFound(err) {
				return ErrDraftNotFound
			}
			return err
		}
		return repo.BindQuestionTags(ctx, tx, &domain.Question{ID: questionID}, tags)
	})
	if err != nil {
		return storeErr("publish draft", err)
	}
	questionTransitions.WithLabelValues(domain.StatusPublished).Inc()
	return nil
}

// CancelDraft moves the caller's draft to cancelled, which is terminal and
// frees the one-draft slot.
//
// Errors: ErrQuestionNotFound when the question is absent or owned by someone
// else, ErrNotDraft when it has already left draft.
func (s *QuestionService) CancelDraft(ctx context.Context, userID, questionID uint) (err error) {
	ctx, span := startSpan(ctx, "QuestionService", "CancelDraft",
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("question.id", int64(questionID)),
	)
	defer func() { endSpan(span, err) }()

	if userID == 0 {
		return ErrMissingUser
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := repo.TransitionQuestion(ctx, tx, questionID, userID, domain.StatusDraft, domain.StatusCancelled)
		if err == nil || !isNotFound(err) {
			return err
		}
		// Nothing matched; tell absent/foreign apart from already-resolved.
		q, gerr := repo.GetQuestion(ctx, tx, questionID)
		if gerr != nil {
			if isNotFound(gerr) {
				return ErrQuestionNotFound
			}
			return gerr
		}
		if q.UserID != userID {
			return ErrQuestionNotFound
		}
		return ErrNotDraft
	})
	if err != nil {
		return storeErr("cancel draft", err)
	}
	questionTransitions.WithLabelValues(domain.StatusCancelled).Inc()
	return nil
}

// SetVisibility shows or hides questionID. Only admins may call it; status
// and counters are left untouched.
func (s *QuestionService) SetVisibility(ctx context.Context, callerID, questionID uint, visible bool) (err error) {
	ctx, span := startSpan(ctx, "QuestionService", "SetVisibility",
		attribute.Int64("user.id", int64(callerID)),
		attribute.Int64("question.id", int64(questionID)),
		attribute.Bool("visible", visible),
	)
	defer func() { endSpan(span, err) }()

	visibility := domain.VisibilityHidden
	if visible {
		visibility = domain.VisibilityVisible
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := isAdmin(ctx, tx, callerID)
		if err != nil {
			return err
		}
		if !admin {
			return ErrNotAdmin
		}
		if err := repo.SetQuestionVisibility(ctx, tx, questionID, visibility); err != nil {
			if isNotFound(err) {
				return ErrQuestionNotFound
			}
			return err
		}
		return nil
	})
	return storeErr("set visibility", err)
}

// uniqueIDs drops zero and repeated ids, keeping first-seen order.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
