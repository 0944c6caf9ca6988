// Package services – ChatService
//
// This file implements the chat invitation workflow. Creating a chat makes
// the creator its first member and files one pending ChatRequest per invitee,
// in the order supplied, all in one transaction. Invitees join only by
// accepting; requests are resolved once, by their addressee, through a
// conditional update so the first resolution wins and every later one sees
// ErrRequestResolved.
//
// Messages may be posted and read by members only. Each message mints its
// own timestamp anchor; reading orders by (date, time, id).
//
// Service-level errors are returned for predictable cases so handlers can
// map them to HTTP results consistently.
package services

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/utils"
)

// ChatRepo defines the repository contract required by ChatService.
// Every method receives the handle to run on, which is the transaction when
// called from inside one.
type ChatRepo interface {
	// ExistingUserIDs returns which of ids belong to real users.
	ExistingUserIDs(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]bool, error)

	// CreateChat inserts a chat row created by creatorID.
	CreateChat(ctx context.Context, db *gorm.DB, creatorID uint, name string) (*domain.Chat, error)
	// GetChat fetches a chat by id.
	GetChat(ctx context.Context, db *gorm.DB, id uint) (*domain.Chat, error)
	// ListChatsForMember returns the chats userID belongs to.
	ListChatsForMember(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Chat, error)

	// AddChatMember grants membership.
	AddChatMember(ctx context.Context, db *gorm.DB, chatID, userID uint) error
	// IsChatMember reports membership.
	IsChatMember(ctx context.Context, db *gorm.DB, chatID, userID uint) (bool, error)
	// ListChatMembers returns the memberships of a chat.
	ListChatMembers(ctx context.Context, db *gorm.DB, chatID uint) ([]domain.ChatMember, error)

	// CreateChatRequest files a pending invitation.
	CreateChatRequest(ctx context.Context, db *gorm.DB, chatID, fromID, toID uint) (*domain.ChatRequest, error)
	// GetChatRequest fetches a request by id.
	GetChatRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.ChatRequest, error)
	// ResolveChatRequest moves a pending request to status, or reports not found.
	ResolveChatRequest(ctx context.Context, db *gorm.DB, id uint, status string) error
	// ListPendingRequests returns pending requests addressed to userID.
	ListPendingRequests(ctx context.Context, db *gorm.DB, userID uint) ([]domain.ChatRequest, error)

	// CreateTimestamp mints a timestamp anchor.
	CreateTimestamp(ctx context.Context, db *gorm.DB, now time.Time) (*domain.Timestamp, error)
	// CreateMessage appends a message anchored at ts.
	CreateMessage(ctx context.Context, db *gorm.DB, chatID, senderID uint, text string, ts *domain.Timestamp) (*domain.ChatMessage, error)
	// CountMessages returns the number of messages in a chat.
	CountMessages(ctx context.Context, db *gorm.DB, chatID uint) (int64, error)
	// ListMessagesPage returns a page of messages in anchor order.
	ListMessagesPage(ctx context.Context, db *gorm.DB, chatID uint, offset, limit int) ([]domain.ChatMessage, error)
}

// CreatedChat is the result of CreateChat.
type CreatedChat struct {
	Chat     *domain.Chat         `json:"chat"`
	Requests []domain.ChatRequest `json:"requests"`
}

// ChatService provides the chat invitation workflow and member messaging.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the chat repository used by this service.
	Repo ChatRepo

	// NameMaxLen caps stored chat names by rune length.
	NameMaxLen int
	// MaxMessageRunes caps message length. Zero disables the check.
	MaxMessageRunes int

	now func() time.Time
}

// NewChatService constructs a ChatService with default limits.
func NewChatService(db *gorm.DB, r ChatRepo) *ChatService {
	return &ChatService{
		DB:              db,
		Repo:            r,
		NameMaxLen:      60,
		MaxMessageRunes: 4000,
	}
}

func (s *ChatService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// CreateChat creates a chat named name with creatorID as its only member and
// one pending request per entry of memberIDs, in order.
//
// Errors: ErrMissingUser, ErrEmptyName, ErrNoInvitees, ErrDuplicateInvitee,
// ErrSelfInvite, ErrUserNotFound. On any failure nothing is stored.
func (s *ChatService) CreateChat(ctx context.Context, creatorID uint, name string, memberIDs []uint) (out *CreatedChat, err error) {
	ctx, span := startSpan(ctx, "ChatService", "CreateChat",
		attribute.Int64("user.id", int64(creatorID)),
		attribute.Int("invitees", len(memberIDs)),
	)
	defer func() { endSpan(span, err) }()

	if creatorID == 0 {
		return nil, ErrMissingUser
	}
	name = normalizeName(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(memberIDs) == 0 {
		return nil, ErrNoInvitees
	}
	seen := make(map[uint]bool, len(memberIDs))
	for _, id := range memberIDs {
		if id == creatorID {
			return nil, ErrSelfInvite
		}
		if seen[id] {
			return nil, ErrDuplicateInvitee
		}
		seen[id] = true
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		known, err := s.Repo.ExistingUserIDs(ctx, tx, append([]uint{creatorID}, memberIDs...))
		if err != nil {
			return err
		}
		if !known[creatorID] {
			return ErrUserNotFound
		}
		for _, id := range memberIDs {
			if !known[id] {
				return ErrUserNotFound
			}
		}

		chat, err := s.Repo.CreateChat(ctx, tx, creatorID, s.clip(name))
		if err != nil {
			return err
		}
		if err := s.Repo.AddChatMember(ctx, tx, chat.ID, creatorID); err != nil {
			return err
		}
		reqs := make([]domain.ChatRequest, 0, len(memberIDs))
		for _, id := range memberIDs {
			r, err := s.Repo.CreateChatRequest(ctx, tx, chat.ID, creatorID, id)
			if err != nil {
				return err
			}
			reqs = append(reqs, *r)
		}
		out = &CreatedChat{Chat: chat, Requests: reqs}
		return nil
	})
	if err != nil {
		return nil, storeErr("create chat", err)
	}
	return out, nil
}

// AcceptChatRequest accepts requestID on behalf of callerID and makes the
// caller a member, atomically.
func (s *ChatService) AcceptChatRequest(ctx context.Context, requestID, callerID uint) error {
	return s.resolve(ctx, requestID, callerID, domain.RequestAccepted)
}

// RejectChatRequest rejects requestID on behalf of callerID. Membership is
// unchanged.
func (s *ChatService) RejectChatRequest(ctx context.Context, requestID, callerID uint) error {
	return s.resolve(ctx, requestID, callerID, domain.RequestRejected)
}

// resolve moves a pending request to status.
//
// Errors: ErrRequestNotFound, ErrNotAddressee (caller is not the invitee),
// ErrRequestResolved (no longer pending, including losing a race).
func (s *ChatService) resolve(ctx context.Context, requestID, callerID uint, status string) (err error) {
	ctx, span := startSpan(ctx, "ChatService", "ResolveChatRequest",
		attribute.Int64("request.id", int64(requestID)),
		attribute.Int64("user.id", int64(callerID)),
		attribute.String("status", status),
	)
	defer func() { endSpan(span, err) }()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := s.Repo.GetChatRequest(ctx, tx, requestID)
		if err != nil {
			if isNotFound(err) {
				return ErrRequestNotFound
			}
			return err
		}
		if callerID == 0 || req.ToUserID != callerID {
			return ErrNotAddressee
		}
		if req.Status != domain.RequestPending {
			return ErrRequestResolved
		}
		if err := s.Repo.ResolveChatRequest(ctx, tx, requestID, status); err != nil {
			if isNotFound(err) {
				return ErrRequestResolved
			}
			return err
		}
		if status == domain.RequestAccepted {
			return s.Repo.AddChatMember(ctx, tx, req.ChatID, callerID)
		}
		return nil
	})
	if err != nil {
		return storeErr("resolve chat request", err)
	}
	chatRequestsResolved.WithLabelValues(status).Inc()
	return nil
}

// ListPendingRequests returns the pending requests addressed to userID.
func (s *ChatService) ListPendingRequests(ctx context.Context, userID uint) ([]domain.ChatRequest, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}
	out, err := s.Repo.ListPendingRequests(ctx, s.DB, userID)
	if err != nil {
		return nil, storeErr("list pending requests", err)
	}
	return out, nil
}

// ListChats returns the chats userID is a member of.
func (s *ChatService) ListChats(ctx context.Context, userID uint) ([]domain.Chat, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}
	out, err := s.Repo.ListChatsForMember(ctx, s.DB, userID)
	if err != nil {
		return nil, storeErr("list chats", err)
	}
	return out, nil
}

// ListMembers returns the members of chatID. Only members may list them.
func (s *ChatService) ListMembers(ctx context.Context, chatID, userID uint) (out []domain.ChatMember, err error) {
	ctx, span := startSpan(ctx, "ChatService", "ListMembers",
		attribute.Int64("chat.id", int64(chatID)),
		attribute.Int64("user.id", int64(userID)),
	)
	defer func() { endSpan(span, err) }()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureMember(ctx, tx, chatID, userID); err != nil {
			return err
		}
		out, err = s.Repo.ListChatMembers(ctx, tx, chatID)
		return err
	})
	if err != nil {
		return nil, storeErr("list members", err)
	}
	return out, nil
}

// PostMessage appends text to chatID on behalf of userID.
//
// Errors: ErrEmptyText, ErrTooLong, ErrChatNotFound, ErrNotMember. A
// rejected post stores nothing.
func (s *ChatService) PostMessage(ctx context.Context, chatID, userID uint, text string) (m *domain.ChatMessage, err error) {
	ctx, span := startSpan(ctx, "ChatService", "PostMessage",
		attribute.Int64("chat.id", int64(chatID)),
		attribute.Int64("user.id", int64(userID)),
	)
	defer func() { endSpan(span, err) }()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(text) > s.MaxMessageRunes {
		return nil, ErrTooLong
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureMember(ctx, tx, chatID, userID); err != nil {
			return err
		}
		ts, err := s.Repo.CreateTimestamp(ctx, tx, s.clock())
		if err != nil {
			return err
		}
		m, err = s.Repo.CreateMessage(ctx, tx, chatID, userID, text, ts)
		return err
	})
	if err != nil {
		return nil, storeErr("post message", err)
	}
	return m, nil
}

// ListMessages returns page `page` of chatID's messages, oldest first, with
// the total count. Only members may read.
func (s *ChatService) ListMessages(ctx context.Context, chatID, userID uint, page, pageSize int) (items []domain.ChatMessage, total int64, err error) {
	ctx, span := startSpan(ctx, "ChatService", "ListMessages",
		attribute.Int64("chat.id", int64(chatID)),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)
	defer func() { endSpan(span, err) }()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureMember(ctx, tx, chatID, userID); err != nil {
			return err
		}
		n, err := s.Repo.CountMessages(ctx, tx, chatID)
		if err != nil {
			return err
		}
		total = n
		if n == 0 {
			items = []domain.ChatMessage{}
			return nil
		}
		items, err = s.Repo.ListMessagesPage(ctx, tx, chatID, utils.Offset(page, pageSize), pageSize)
		return err
	})
	if err != nil {
		return nil, 0, storeErr("list messages", err)
	}
	return items, total, nil
}

// ensureMember checks that chatID exists and userID belongs to it.
func (s *ChatService) ensureMember(ctx context.Context, tx *gorm.DB, chatID, userID uint) error {
	if _, err := s.Repo.GetChat(ctx, tx, chatID); err != nil {
		if isNotFound(err) {
			return ErrChatNotFound
		}
		return err
	}
	if userID == 0 {
		return ErrNotMember
	}
	ok, err := s.Repo.IsChatMember(ctx, tx, chatID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}

// clip truncates a chat name to the configured maximum rune length.
func (s *ChatService) clip(name string) string {
	if s.NameMaxLen > 0 && utf8.RuneCountInString(name) > s.NameMaxLen {
		return string([]rune(name)[:s.NameMaxLen])
	}
	return name
}

// normalizeName trims whitespace and collapses multiple spaces to one.
func normalizeName(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)
