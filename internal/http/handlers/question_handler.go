// Question HTTP handlers.
//
// This file exposes the question lifecycle and voting:
//   - POST /questions                  (start a draft)
//   - GET  /questions/draft            (the caller's current draft)
//   - POST /questions/{id}/publish     (publish the draft with tags)
//   - POST /questions/{id}/cancel      (cancel the draft)
//   - PUT  /questions/{id}/visibility  (admin: show or hide)
//   - POST /questions/{id}/votes       (vote up or down)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// DTOs
//

// CreateQuestionRequest is the JSON payload for starting a draft.
type CreateQuestionRequest struct {
	Text string `json:"text" binding:"required" example:"Which Go web framework do you use in production?"`
}

// PublishQuestionRequest lists the tags the published question is filed under.
type PublishQuestionRequest struct {
	TagIDs []uint `json:"tag_ids" example:"1,2"`
}

// VisibilityRequest shows or hides a question.
type VisibilityRequest struct {
	Visible *bool `json:"visible" binding:"required" example:"false"`
}

// VoteRequest carries a vote direction.
type VoteRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down" example:"up"`
}

// CreateQuestion godoc
// @ID          createQuestion
// @Summary     Start a question draft
// @Description Creates the caller's draft. A user holds at most one draft at a time.
// @Tags        Questions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Caller id"  example(1)
// @Param       body       body    handlers.CreateQuestionRequest  true  "Draft payload"
//
// @Success     201  {object}  domain.Question
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     409  {object}  handlers.ErrorResponse  "A draft already exists"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /questions [post]
func (h *Handlers) CreateQuestion(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}
	q, err := h.questions.StartDraft(c.Request.Context(), uid, sanitizeContent(req.Text))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, q)
}

// CurrentDraft godoc
// @ID          currentDraft
// @Summary     Get the caller's draft
// @Tags        Questions
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Caller id"  example(1)
//
// @Success     200  {object}  domain.Question
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     404  {object}  handlers.ErrorResponse  "No draft"
// @Router      /questions/draft [get]
func (h *Handlers) CurrentDraft(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	q, err := h.questions.CurrentDraft(c.Request.Context(), uid)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, q)
}

// PublishQuestion godoc
// @ID          publishQuestion
// @Summary     Publish a draft
// @Description Binds the given tags and publishes the caller's draft. At least one existing tag is required.
// @Tags        Questions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Caller id"  example(1)
// @Param       id         path    integer  true  "Question id"
// @Param       body       body    handlers.PublishQuestionRequest  true  "Tags"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Draft or tag not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Not a draft"
// @Router      /questions/{id}/publish [post]
func (h *Handlers) PublishQuestion(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	id, okID := pathID(c, "question")
	if !okID {
		return
	}
	var req PublishQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.questions.PublishDraft(c.Request.Context(), uid, id, req.TagIDs); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// CancelQuestion godoc
// @ID          cancelQuestion
// @Summary     Cancel a draft
// @Tags        Questions
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Caller id"  example(1)
// @Param       id         path    integer  true  "Question id"
//
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Draft not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Not a draft"
// @Router      /questions/{id}/cancel [post]
func (h *Handlers) CancelQuestion(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	id, okID := pathID(c, "question")
	if !okID {
		return
	}
	if err := h.questions.CancelDraft(c.Request.Context(), uid, id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// SetVisibility godoc
// @ID          setQuestionVisibility
// @Summary     Show or hide a question (admin)
// @Tags        Questions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Admin id"  example(1)
// @Param       id         path    integer  true  "Question id"
// @Param       body       body    handlers.VisibilityRequest  true  "Visibility"
//
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin role required"
// @Failure     404  {object}  handlers.ErrorResponse  "Question not found"
// @Router      /questions/{id}/visibility [put]
func (h *Handlers) SetVisibility(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	id, okID := pathID(c, "question")
	if !okID {
		return
	}
	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "visible required")
		return
	}
	if err := h.questions.SetVisibility(c.Request.Context(), uid, id, *req.Visible); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// Vote godoc
// @ID          voteQuestion
// @Summary     Vote on a question
// @Description Casts or switches the caller's vote. Repeating the same direction is a conflict.
// @Tags        Votes
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Caller id"  example(1)
// @Param       id         path    integer  true  "Question id"
// @Param       body       body    handlers.VoteRequest  true  "Direction"
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad direction"
// @Failure     404  {object}  handlers.ErrorResponse  "Question not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already voted or not published"
// @Router      /questions/{id}/votes [post]
func (h *Handlers) Vote(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	id, okID := pathID(c, "question")
	if !okID {
		return
	}
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "direction must be up or down")
		return
	}
	if err := h.votes.ApplyVote(c.Request.Context(), id, uid, req.Direction); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
