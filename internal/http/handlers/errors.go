// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package) and failErr, which translates service
// errors into those codes by their kind. Clients branch on the code; the message is
// for humans.
//
// Kind to status:
//
//	services.ErrValidation    400 bad_request
//	services.ErrMissingUser   401 unauthorized
//	services.ErrUnauthorized  403 not_authorized
//	services.ErrForbidden     403 forbidden
//	services.ErrNotFound      404 not_found
//	services.ErrConflict      409 conflict
//	services.ErrState         409 invalid_state
//	anything else             500 internal_error
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "conflict",
//	  "message": "conflict: response already submitted"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-forum-backend/internal/services"
)

const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeNotAuthorized = "not_authorized"
	ErrCodeForbidden     = "forbidden"
	ErrCodeNotFound      = "not_found"
	ErrCodeConflict      = "conflict"
	ErrCodeInvalidState  = "invalid_state"
	ErrCodeRateLimited   = "too_many_requests"
	ErrCodeInternal      = "internal_error"

	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// failErr writes the envelope matching err's kind. Store failures are logged
// with their cause and answered with a generic message.
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingUser):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "X-User-ID header required")
	case errors.Is(err, services.ErrValidation):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		fail(c, http.StatusForbidden, ErrCodeNotAuthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrState):
		fail(c, http.StatusConflict, ErrCodeInvalidState, err.Error())
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}
