// Package services defines the business logic for the question lifecycle,
// voting and ranking, the response/comment gate and the chat invitation
// workflow. This file centralizes the service-level error values so that
// they can be returned consistently by service methods and checked by callers.
//
// Every error returned by a service wraps exactly one of the kind sentinels
// below, so handlers translate with errors.Is(err, ErrNotFound) and friends
// instead of matching individual messages. Translation into user-facing
// messages or HTTP status codes happens in the handler layer.
package services

import (
	"errors"
	"fmt"

	"github.com/tbourn/go-forum-backend/internal/repo"
)

// Error kinds.
var (
	// ErrValidation marks a missing or empty required input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a uniqueness invariant violation.
	ErrConflict = errors.New("conflict")
	// ErrState marks an operation that is invalid for the entity's current state.
	ErrState = errors.New("invalid state")
	// ErrUnauthorized marks a caller lacking the role or identity an action requires.
	ErrUnauthorized = errors.New("not authorized")
	// ErrForbidden marks a caller lacking access to a resource (membership, visibility).
	ErrForbidden = errors.New("forbidden")
)

// Validation errors.
var (
	ErrMissingUser      = fmt.Errorf("%w: user id is required", ErrValidation)
	ErrEmptyText        = fmt.Errorf("%w: text is empty", ErrValidation)
	ErrNoTags           = fmt.Errorf("%w: at least one tag is required", ErrValidation)
	ErrEmptyName        = fmt.Errorf("%w: name is empty", ErrValidation)
	ErrNoInvitees       = fmt.Errorf("%w: at least one member is required", ErrValidation)
	ErrDuplicateInvitee = fmt.Errorf("%w: members must be distinct", ErrValidation)
	ErrSelfInvite       = fmt.Errorf("%w: creator cannot invite themselves", ErrValidation)
	ErrInvalidDirection = fmt.Errorf("%w: direction must be up or down", ErrValidation)
	ErrTooLong          = fmt.Errorf("%w: text too long", ErrValidation)
)

// Not-found errors.
var (
	ErrUserNotFound     = fmt.Errorf("%w: user", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("%w: question", ErrNotFound)
	ErrDraftNotFound    = fmt.Errorf("%w: draft", ErrNotFound)
	ErrTagNotFound      = fmt.Errorf("%w: tag", ErrNotFound)
	ErrChatNotFound     = fmt.Errorf("%w: chat", ErrNotFound)
	ErrRequestNotFound  = fmt.Errorf("%w: chat request", ErrNotFound)
	ErrMessageNotFound  = fmt.Errorf("%w: message", ErrNotFound)
)

// Conflict errors.
var (
	ErrDraftExists      = fmt.Errorf("%w: a draft already exists", ErrConflict)
	ErrAlreadyResponded = fmt.Errorf("%w: response already submitted", ErrConflict)
	ErrAlreadyCommented = fmt.Errorf("%w: comment already submitted", ErrConflict)
	ErrAlreadyVoted     = fmt.Errorf("%w: vote already cast", ErrConflict)
	ErrTagExists        = fmt.Errorf("%w: tag already exists", ErrConflict)
)

// State errors.
var (
	ErrNotDraft        = fmt.Errorf("%w: question is not a draft", ErrState)
	ErrNotPublished    = fmt.Errorf("%w: question is not published", ErrState)
	ErrRequestResolved = fmt.Errorf("%w: chat request is not pending", ErrState)
)

// Authorization and access errors.
var (
	ErrNotAdmin     = fmt.Errorf("%w: admin role required", ErrUnauthorized)
	ErrNotAddressee = fmt.Errorf("%w: only the invited user may resolve this request", ErrUnauthorized)
	ErrHidden       = fmt.Errorf("%w: question is hidden", ErrForbidden)
	ErrNotMember    = fmt.Errorf("%w: not a member of this chat", ErrForbidden)
)

// VoteError is returned by ApplyVote for every failure. The counter change
// has been rolled back; Cause carries the reason and stays reachable through
// errors.Is / errors.As.
type VoteError struct {
	QuestionID uint
	Cause      error
}

func (e *VoteError) Error() string {
	return fmt.Sprintf("vote on question %d: %v", e.QuestionID, e.Cause)
}

func (e *VoteError) Unwrap() error { return e.Cause }

// StoreError wraps an unexpected persistence failure with the operation
// that hit it. The operation's transaction has been rolled back.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// storeErr passes classified service errors through and wraps anything else
// in a StoreError.
func storeErr(op string, err error) error {
	if err == nil || isClassified(err) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func isClassified(err error) bool {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrState, ErrUnauthorized, ErrForbidden} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way.
func isNotFound(err error) bool { return errors.Is(err, repo.ErrNotFound) }

// isDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool { return repo.IsUniqueViolation(err) }
