// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they parse identity, path and body, call an
// application service, and translate the result (or the service error kind)
// into an HTTP response. Business rules live in internal/services.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/http/middleware"
	"github.com/tbourn/go-forum-backend/internal/repo"
	"github.com/tbourn/go-forum-backend/internal/services"
	"github.com/tbourn/go-forum-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// QuestionService drives the question lifecycle.
type QuestionService interface {
	StartDraft(ctx context.Context, userID uint, text string) (*domain.Question, error)
	CurrentDraft(ctx context.Context, userID uint) (*domain.Question, error)
	PublishDraft(ctx context.Context, userID, questionID uint, tagIDs []uint) error
	CancelDraft(ctx context.Context, userID, questionID uint) error
	SetVisibility(ctx context.Context, callerID, questionID uint, visible bool) error
}

// VoteService records votes.
type VoteService interface {
	ApplyVote(ctx context.Context, questionID, userID uint, direction string) error
}

// RankingService serves ranking pages and the home page.
type RankingService interface {
	Rank(ctx context.Context, callerID uint, r repo.Ranking, page, pageSize int) (*services.Page, error)
	Home(ctx context.Context, callerID uint) (*services.Home, error)
	IncludesHidden(ctx context.Context, callerID uint) (bool, error)
}

// ThreadService handles responses, comments and thread views.
type ThreadService interface {
	SubmitResponse(ctx context.Context, questionID, userID uint, text string) (*domain.Response, error)
	SubmitComment(ctx context.Context, questionID, userID uint, text string) (*domain.Comment, error)
	ViewThread(ctx context.Context, questionID, callerID uint) (*services.Thread, error)
}

// ChatService drives the chat invitation workflow and messaging.
type ChatService interface {
	CreateChat(ctx context.Context, creatorID uint, name string, memberIDs []uint) (*services.CreatedChat, error)
	AcceptChatRequest(ctx context.Context, requestID, callerID uint) error
	RejectChatRequest(ctx context.Context, requestID, callerID uint) error
	ListPendingRequests(ctx context.Context, userID uint) ([]domain.ChatRequest, error)
	ListChats(ctx context.Context, userID uint) ([]domain.Chat, error)
	ListMembers(ctx context.Context, chatID, userID uint) ([]domain.ChatMember, error)
	PostMessage(ctx context.Context, chatID, userID uint, text string) (*domain.ChatMessage, error)
	ListMessages(ctx context.Context, chatID, userID uint, page, pageSize int) ([]domain.ChatMessage, int64, error)
}

// TagService manages the tag catalog and follows.
type TagService interface {
	Create(ctx context.Context, callerID uint, name string) (*domain.Tag, error)
	List(ctx context.Context) ([]domain.Tag, error)
	Follow(ctx context.Context, userID uint, tagIDs []uint) error
	Followed(ctx context.Context, userID uint) ([]domain.Tag, error)
}

//
// Handler wiring
//

// Services bundles the services the handlers depend on.
type Services struct {
	Questions QuestionService
	Votes     VoteService
	Rankings  RankingService
	Threads   ThreadService
	Chats     ChatService
	Tags      TagService
}

// Handlers groups every HTTP endpoint of the API.
type Handlers struct {
	questions QuestionService
	votes     VoteService
	rankings  RankingService
	threads   ThreadService
	chats     ChatService
	tags      TagService

	// IdempotencyTTL is how long a posted message can be replayed by key.
	IdempotencyTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(s Services) *Handlers {
	return &Handlers{
		questions:      s.Questions,
		votes:          s.Votes,
		rankings:       s.Rankings,
		threads:        s.Threads,
		chats:          s.Chats,
		tags:           s.Tags,
		IdempotencyTTL: 24 * time.Hour,
	}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Helpers
//

// requireUser returns the caller id or answers 401 for anonymous requests.
func requireUser(c *gin.Context) (uint, bool) {
	uid := middleware.UserID(c)
	if uid == 0 {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "X-User-ID header required")
		return 0, false
	}
	return uid, true
}

// pathID parses the :id path parameter, answering 400 when it is not a
// positive integer.
func pathID(c *gin.Context, what string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || n == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, what+" id must be a positive integer")
		return 0, false
	}
	return uint(n), true
}

// clampPagination parses and bounds page and page_size query params,
// returning (page, pageSize). A missing page_size yields def.
func clampPagination(c *gin.Context, def int) (page, pageSize int) {
	const maxPageSize = 100
	page = utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), def)
	if pageSize < 1 {
		pageSize = def
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// notModified sets ETag and reports whether the client already holds it.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
