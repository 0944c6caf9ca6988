// Package services – ThreadService
//
// This file implements the response/comment gate. A user may hold one
// response and, independently, one comment per question; both rules are
// unique indexes so concurrent submissions cannot slip past a check.
//
// Reading is gated too: a thread only includes other users' responses and
// comments once the caller has responded. Hidden questions are closed to
// everyone but admins.
package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/repo"
)

// Thread is the caller's view of a question.
type Thread struct {
	Question     *domain.Question  `json:"question"`
	HasResponded bool              `json:"has_responded"`
	HasCommented bool              `json:"has_commented"`
	Responses    []domain.Response `json:"responses,omitempty"`
	Comments     []domain.Comment  `json:"comments,omitempty"`
}

// ThreadService implements response/comment submission and thread viewing.
type ThreadService struct {
	DB *gorm.DB

	// MaxTextRunes caps response/comment length. Zero disables the check.
	MaxTextRunes int

	// now is overridable in tests.
	now func() time.Time
}

// NewThreadService constructs a ThreadService with default limits.
func NewThreadService(db *gorm.DB) *ThreadService {
	return &ThreadService{DB: db, MaxTextRunes: 4000}
}

func (s *ThreadService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// SubmitResponse stores userID's response to questionID.
//
// Errors: ErrEmptyText, ErrQuestionNotFound, ErrNotPublished, ErrHidden,
// ErrAlreadyResponded.
func (s *ThreadService) SubmitResponse(ctx context.Context, questionID, userID uint, text string) (r *domain.Response, err error) {
	ctx, span := startSpan(ctx, "ThreadService", "SubmitResponse",
		attribute.Int64("question.id", int64(questionID)),
		attribute.Int64("user.id", int64(userID)),
	)
	defer func() { endSpan(span, err) }()

	text, err = s.validate(userID, text)
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureOpen(ctx, tx, questionID, userID); err != nil {
			return err
		}
		ts, err := repo.CreateTimestamp(ctx, tx, s.clock())
		if err != nil {
			return err
		}
		created, err := repo.CreateResponse(ctx, tx, questionID, userID, text, ts)
		if err != nil {
			if isDuplicate(err) {
				return ErrAlreadyResponded
			}
			return err
		}
		r = created
		return nil
	})
	if err != nil {
		return nil, storeErr("submit response", err)
	}
	return r, nil
}

// SubmitComment stores userID's comment on questionID. It mirrors
// SubmitResponse on its own uniqueness axis.
func (s *ThreadService) SubmitComment(ctx context.Context, questionID, userID uint, text string) (c *domain.Comment, err error) {
	ctx, span := startSpan(ctx, "ThreadService", "SubmitComment",
		attribute.Int64("question.id", int64(questionID)),
		attribute.Int64("user.id", int64(userID)),
	)
	defer func() { endSpan(span, err) }()

	text, err = s.validate(userID, text)
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureOpen(ctx, tx, questionID, userID); err != nil {
			return err
		}
		ts, err := repo.CreateTimestamp(ctx, tx, s.clock())
		if err != nil {
			return err
		}
		created, err := repo.CreateComment(ctx, tx, questionID, userID, text, ts)
		if err != nil {
			if isDuplicate(err) {
				return ErrAlreadyCommented
			}
			return err
		}
		c = created
		return nil
	})
	if err != nil {
		return nil, storeErr("submit comment", err)
	}
	return c, nil
}

// ViewThread returns questionID as seen by callerID (0 for anonymous).
// Responses and comments are only included once the caller has responded.
//
// Errors: ErrQuestionNotFound (also for other users' unpublished questions)
// and ErrHidden for hidden questions viewed by non-admins.
func (s *ThreadService) ViewThread(ctx context.Context, questionID, callerID uint) (out *Thread, err error) {
	ctx, span := startSpan(ctx, "ThreadService", "ViewThread",
		attribute.Int64("question.id", int64(questionID)),
		attribute.Int64("user.id", int64(callerID)),
	)
	defer func() { endSpan(span, err) }()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := repo.GetQuestion(ctx, tx, questionID)
		if err != nil {
			if isNotFound(err) {
				return ErrQuestionNotFound
			}
			return err
		}
		if q.Status != domain.StatusPublished && q.UserID != callerID {
			return ErrQuestionNotFound
		}
		if q.Visibility == domain.VisibilityHidden {
			admin, err := isAdmin(ctx, tx, callerID)
			if err != nil {
				return err
			}
			if !admin {
				return ErrHidden
			}
		}
		if err := repo.LoadQuestionTags(ctx, tx, q); err != nil {
			return err
		}

		t := &Thread{Question: q}
		if t.HasResponded, err = repo.HasResponded(ctx, tx, questionID, callerID); err != nil {
			return err
		}
		if t.HasCommented, err = repo.HasCommented(ctx, tx, questionID, callerID); err != nil {
			return err
		}
		if t.HasResponded {
			if t.Responses, err = repo.ListResponses(ctx, tx, questionID); err != nil {
				return err
			}
			if t.Comments, err = repo.ListComments(ctx, tx, questionID); err != nil {
				return err
			}
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, storeErr("view thread", err)
	}
	return out, nil
}

func (s *ThreadService) validate(userID uint, text string) (string, error) {
	text = strings.TrimSpace(text)
	if userID == 0 {
		return "", ErrMissingUser
	}
	if text == "" {
		return "", ErrEmptyText
	}
	if s.MaxTextRunes > 0 && utf8.RuneCountInString(text) > s.MaxTextRunes {
		return "", ErrTooLong
	}
	return text, nil
}

// ensureOpen checks that questionID accepts contributions from userID.
func (s *ThreadService) ensureOpen(ctx context.Context, tx *gorm.DB, questionID, userID uint) error {
	if _, err := repo.GetUser(ctx, tx, userID); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
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
	if q.Visibility == domain.VisibilityHidden {
		admin, err := isAdmin(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !admin {
			return ErrHidden
		}
	}
	return nil
}
