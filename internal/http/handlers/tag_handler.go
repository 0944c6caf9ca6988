// Tag HTTP handlers: the global catalog and the caller's followed tags.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// CreateTagRequest is the JSON payload for adding a catalog tag.
type CreateTagRequest struct {
	Name string `json:"name" binding:"required" example:"golang"`
}

// FollowTagsRequest replaces the caller's followed tags.
type FollowTagsRequest struct {
	TagIDs []uint `json:"tag_ids" example:"1,3"`
}

// ListTagsResponse wraps a list of tags.
type ListTagsResponse struct {
	Tags []domain.Tag `json:"tags"`
}

// ListTags godoc
// @ID          listTags
// @Summary     List the tag catalog
// @Tags        Tags
// @Produce     json
// @Success     200  {object}  handlers.ListTagsResponse
// @Router      /tags [get]
func (h *Handlers) ListTags(c *gin.Context) {
	items, err := h.tags.List(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListTagsResponse{Tags: items})
}

// CreateTag godoc
// @ID          createTag
// @Summary     Add a tag (admin)
// @Description Names are case-folded and whitespace-collapsed before storing.
// @Tags        Tags
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Admin id"  example(1)
// @Param       body       body    handlers.CreateTagRequest  true  "Tag"
//
// @Success     201  {object}  domain.Tag
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin role required"
// @Failure     409  {object}  handlers.ErrorResponse  "Tag exists"
// @Router      /tags [post]
func (h *Handlers) CreateTag(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required")
		return
	}
	t, err := h.tags.Create(c.Request.Context(), uid, req.Name)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, t)
}

// FollowedTags godoc
// @ID          followedTags
// @Summary     Tags the caller follows
// @Tags        Tags
// @Produce     json
// @Param       X-User-ID  header  integer  true  "Caller id"  example(2)
// @Success     200  {object}  handlers.ListTagsResponse
// @Router      /me/tags [get]
func (h *Handlers) FollowedTags(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	items, err := h.tags.Followed(c.Request.Context(), uid)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListTagsResponse{Tags: items})
}

// FollowTags godoc
// @ID          followTags
// @Summary     Replace the tags the caller follows
// @Tags        Tags
// @Accept      json
// @Param       X-User-ID  header  integer  true  "Caller id"  example(2)
// @Param       body       body    handlers.FollowTagsRequest  true  "Tag ids; empty clears"
// @Success     204  {string}  string  "No Content"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown tag"
// @Router      /me/tags [put]
func (h *Handlers) FollowTags(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	var req FollowTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.tags.Follow(c.Request.Context(), uid, req.TagIDs); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
