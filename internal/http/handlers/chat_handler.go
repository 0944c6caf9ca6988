// Chat HTTP handlers.
//
// This file exposes the chat invitation workflow and member messaging:
//   - POST /chats                         (create; invites every listed member)
//   - GET  /chats                         (chats the caller belongs to)
//   - GET  /chats/{id}/members            (members only)
//   - POST /chats/{id}/messages           (members only, Idempotency-Key aware)
//   - GET  /chats/{id}/messages           (members only, paginated, ETag support)
//   - GET  /chat-requests                 (pending invitations for the caller)
//   - POST /chat-requests/{id}/accept
//   - POST /chat-requests/{id}/reject
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// post exists for (user, chat, key), the handler returns the recorded message
// and sets `Idempotency-Replayed: true` without storing a second one.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/http/middleware"
	"github.com/tbourn/go-forum-backend/internal/repo"
	"github.com/tbourn/go-forum-backend/internal/services"
)

//
// DTOs
//

// CreateChatRequest is the JSON payload for creating a chat.
type CreateChatRequest struct {
	// Name is stored trimmed and clipped to the service's limit.
	Name string `json:"name" binding:"required" example:"Weekend plans"`
	// MemberIDs are invited in order; each gets a pending request.
	MemberIDs []uint `json:"member_ids" binding:"required,min=1" example:"2,3"`
}

// ListChatsResponse wraps the caller's chats.
type ListChatsResponse struct {
	Chats []domain.Chat `json:"chats"`
}

// ListMembersResponse wraps a chat's members.
type ListMembersResponse struct {
	Members []domain.ChatMember `json:"members"`
}

// ListRequestsResponse wraps pending chat requests.
type ListRequestsResponse struct {
	Requests []domain.ChatRequest `json:"requests"`
}

// PostMessageResponse is the JSON envelope for a posted message.
type PostMessageResponse struct {
	Message *domain.ChatMessage `json:"message"`
}

// ListMessagesResponse contains a page of chat messages and pagination metadata.
type ListMessagesResponse struct {
	Messages   []domain.ChatMessage `json:"messages"`
	Pagination Pagination           `json:"pagination"`
}

// CreateChat godoc
// @ID          createChat
// @Summary     Create a chat
// @Description Creates a chat with the caller as its only member and files one pending request per invitee, in order. Nothing is stored when any invitee is invalid.
// @Tags        Chats
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Caller id"  example(1)
// @Param       body       body    handlers.CreateChatRequest  true  "Create chat payload"
//
// @Success     201  {object}  services.CreatedChat
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown invitee"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chats [post]
func (h *Handlers) CreateChat(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and member_ids required")
		return
	}
	out, err := h.chats.CreateChat(c.Request.Context(), uid, req.Name, req.MemberIDs)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, out)
}

// ListChats godoc
// @ID          listChats
// @Summary     List the caller's chats
// @Tags        Chats
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Caller id"  example(1)
//
// @Success     200  {object}  handlers.ListChatsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Router      /chats [get]
func (h *Handlers) ListChats(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	items, err := h.chats.ListChats(c.Request.Context(), uid)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListChatsResponse{Chats: items})
}

// ListMembers godoc
// @ID          listChatMembers
// @Summary     List chat members
// @Tags        Chats
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Caller id"  example(1)
// @Param       id         path    integer  true  "Chat id"
//
// @Success     200  {object}  handlers.ListMembersResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Not a member"
// @Failure     404  {object}  handlers.ErrorResponse  "Chat not found"
// @Router      /chats/{id}/members [get]
func (h *Handlers) ListMembers(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	chatID, okID := pathID(c, "chat")
	if !okID {
		return
	}
	items, err := h.chats.ListMembers(c.Request.Context(), chatID, uid)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListMembersResponse{Members: items})
}

// ListPendingRequests godoc
// @ID          listChatRequests
// @Summary     Pending chat invitations for the caller
// @Tags        Chat requests
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Caller id"  example(2)
//
// @Success     200  {object}  handlers.ListRequestsResponse
// @Router      /chat-requests [get]
func (h *Handlers) ListPendingRequests(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	items, err := h.chats.ListPendingRequests(c.Request.Context(), uid)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListRequestsResponse{Requests: items})
}

// AcceptChatRequest godoc
// @ID          acceptChatRequest
// @Summary     Accept an invitation
// @Description Only the addressee may resolve a request, and only once.
// @Tags        Chat requests
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Addressee id"  example(2)
// @Param       id         path    integer  true  "Request id"
//
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the addressee"
// @Failure     404  {object}  handlers.ErrorResponse  "Request not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already resolved"
// @Router      /chat-requests/{id}/accept [post]
func (h *Handlers) AcceptChatRequest(c *gin.Context) {
	h.resolveRequest(c, h.chats.AcceptChatRequest)
}

// RejectChatRequest godoc
// @ID          rejectChatRequest
// @Summary     Reject an invitation
// @Tags        Chat requests
// @Produce     json
//
// @Param       X-User-ID  header  integer  true  "Addressee id"  example(2)
// @Param       id         path    integer  true  "Request id"
//
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the addressee"
// @Failure     409  {object}  handlers.ErrorResponse  "Already resolved"
// @Router      /chat-requests/{id}/reject [post]
func (h *Handlers) RejectChatRequest(c *gin.Context) {
	h.resolveRequest(c, h.chats.RejectChatRequest)
}

func (h *Handlers) resolveRequest(c *gin.Context, resolve func(ctx context.Context, requestID, callerID uint) error) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	id, okID := pathID(c, "request")
	if !okID {
		return
	}
	if err := resolve(c.Request.Context(), id, uid); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// PostMessage godoc
// @ID          postMessage
// @Summary     Post a message to a chat
// @Description Appends a message on behalf of a member. Supports idempotency via the Idempotency-Key header (same key, same result).
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  integer  true  "Member id"  example(1)
// @Param       Idempotency-Key  header  string   false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path    integer  true  "Chat id"
// @Param       body             body    handlers.TextRequest  true  "Message payload"
//
// @Success     201  {object}  handlers.PostMessageResponse  "Stored message"
// @Success     200  {object}  handlers.PostMessageResponse  "Replayed message"
// @Failure     400  {object}  handlers.ErrorResponse        "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse        "Not a member"
// @Failure     404  {object}  handlers.ErrorResponse        "Chat not found"
// @Failure     500  {object}  handlers.ErrorResponse        "Internal error"
// @Router      /chats/{id}/messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	ctx := c.Request.Context()
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	chatID, okID := pathID(c, "chat")
	if !okID {
		return
	}
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}

	svc, _ := h.chats.(*services.ChatService)
	idemKey, _ := middleware.GetIdempotencyKey(c)

	// Replay path.
	if idemKey != "" && svc != nil && svc.DB != nil {
		if rec, err := repo.GetIdempotency(ctx, svc.DB, uid, chatID, idemKey, time.Now().UTC()); err == nil {
			if prev, err := repo.GetMessage(svc.DB.WithContext(ctx), rec.MessageID); err == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, http.StatusOK, PostMessageResponse{Message: prev})
				return
			}
		}
	}

	m, err := h.chats.PostMessage(ctx, chatID, uid, sanitizeContent(req.Text))
	if err != nil {
		failErr(c, err)
		return
	}

	// Store path (best effort).
	if idemKey != "" && svc != nil && svc.DB != nil {
		if _, err := repo.CreateIdempotency(ctx, svc.DB, uid, chatID, idemKey, m.ID, http.StatusCreated, h.IdempotencyTTL); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Uint("chat_id", chatID).Msg("idempotency record not stored")
		}
	}

	ok(c, http.StatusCreated, PostMessageResponse{Message: m})
}

// ListMessages godoc
// @ID          listMessages
// @Summary     List messages in a chat
// @Description Returns a page of the chat's messages, oldest first. Supports weak ETag via If-None-Match.
// @Tags        Messages
// @Produce     json
//
// @Param       X-User-ID      header  integer  true  "Member id"  example(1)
// @Param       If-None-Match  header  string   false "Return 304 if ETag matches"
// @Param       id             path    integer  true  "Chat id"
// @Param       page           query   int      false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int      false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListMessagesResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     403  {object} handlers.ErrorResponse "Not a member"
// @Failure     404  {object} handlers.ErrorResponse "Chat not found"
// @Router      /chats/{id}/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	chatID, okID := pathID(c, "chat")
	if !okID {
		return
	}
	page, pageSize := clampPagination(c, 20)

	// Membership is checked by the service before any fingerprint is exposed.
	items, total, err := h.chats.ListMessages(ctx, chatID, uid, page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}

	if svc, okSvc := h.chats.(*services.ChatService); okSvc && svc.DB != nil {
		if count, lastID, err := repo.MessagesStats(ctx, svc.DB, chatID); err == nil {
			etag := fmt.Sprintf(`W/"messages:%d:%d:%d:%d:%d"`, chatID, count, lastID, page, pageSize)
			if notModified(c, etag) {
				return
			}
		}
	}

	ok(c, http.StatusOK, ListMessagesResponse{
		Messages:   items,
		Pagination: newPagination(page, pageSize, total),
	})
}
