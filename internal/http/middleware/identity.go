// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller identity. Authentication happens upstream of
// this service; by the time a request arrives the gateway has put the numeric
// user id in X-User-ID. Identity() parses it once and every later consumer
// (handlers, rate limiter, idempotency, logs) reads it through UserID.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderUserID carries the authenticated user id.
const HeaderUserID = "X-User-ID"

// ctxKeyUserID is the Gin context key holding the caller's uint id.
const ctxKeyUserID = "userID"

// Identity parses X-User-ID into the request context. A missing header leaves
// the request anonymous; a malformed one is rejected with 400.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if raw == "" {
			c.Next()
			return
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_request",
				"message":    "X-User-ID must be a positive integer",
			})
			return
		}
		c.Set(ctxKeyUserID, uint(id))
		c.Next()
	}
}

// UserID returns the caller's id, or 0 for anonymous requests.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
