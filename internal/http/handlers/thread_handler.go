// Thread HTTP handlers.
//
// This file exposes a question's thread:
//   - GET  /questions/{id}            (view; other users' posts only after responding)
//   - POST /questions/{id}/responses  (one response per user)
//   - POST /questions/{id}/comments   (one comment per user)
package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-forum-backend/internal/http/middleware"
)

// TextRequest is the JSON payload for a response, comment or chat message.
type TextRequest struct {
	Text string `json:"text" binding:"required" example:"We run gin behind an nginx ingress."`
}

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent normalizes user text: CRLF/CR become LF, runs of blank
// lines collapse to one, and surrounding whitespace is trimmed.
func sanitizeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// ViewThread godoc
// @ID          viewThread
// @Summary     View a question thread
// @Description Returns the question. Responses and comments are included only once the caller has responded.
// @Tags        Threads
// @Produce     json
//
// @Param       X-User-ID  header  integer  false "Caller id"
// @Param       id         path    integer  true  "Question id"
//
// @Success     200  {object}  services.Thread
// @Failure     403  {object}  handlers.ErrorResponse  "Question hidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Question not found"
// @Router      /questions/{id} [get]
func (h *Handlers) ViewThread(c *gin.Context) {
	id, okID := pathID(c, "question")
	if !okID {
		return
	}
	t, err := h.threads.ViewThread(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// SubmitResponse godoc
// @ID          submitResponse
// @Summary     Respond to a question
// @Tags        Threads
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Caller id"  example(2)
// @Param       id         path    integer  true  "Question id"
// @Param       body       body    handlers.TextRequest  true  "Response"
//
// @Success     201  {object}  domain.Response
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Question hidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Question not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already responded or not published"
// @Router      /questions/{id}/responses [post]
func (h *Handlers) SubmitResponse(c *gin.Context) {
	uid, id, text, okReq := h.threadPost(c)
	if !okReq {
		return
	}
	r, err := h.threads.SubmitResponse(c.Request.Context(), id, uid, text)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, r)
}

// SubmitComment godoc
// @ID          submitComment
// @Summary     Comment on a question
// @Tags        Threads
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Caller id"  example(2)
// @Param       id         path    integer  true  "Question id"
// @Param       body       body    handlers.TextRequest  true  "Comment"
//
// @Success     201  {object}  domain.Comment
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Already commented or not published"
// @Router      /questions/{id}/comments [post]
func (h *Handlers) SubmitComment(c *gin.Context) {
	uid, id, text, okReq := h.threadPost(c)
	if !okReq {
		return
	}
	cm, err := h.threads.SubmitComment(c.Request.Context(), id, uid, text)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, cm)
}

func (h *Handlers) threadPost(c *gin.Context) (uid, questionID uint, text string, okReq bool) {
	if uid, okReq = requireUser(c); !okReq {
		return
	}
	if questionID, okReq = pathID(c, "question"); !okReq {
		return
	}
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return 0, 0, "", false
	}
	return uid, questionID, sanitizeContent(req.Text), true
}
