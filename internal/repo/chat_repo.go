// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for chats, their
// memberships and the invitation requests that lead to membership.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a row is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - ResolveChatRequest returns ErrNotFound when the request was no longer
//     pending, which is how concurrent resolutions lose.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - CreateChat(ctx, db, creatorID, name) -> *domain.Chat, error
//   - GetChat(ctx, db, id) -> *domain.Chat, error
//   - AddChatMember(ctx, db, chatID, userID) -> error
//   - IsChatMember(ctx, db, chatID, userID) -> bool, error
//   - ListChatsForMember(ctx, db, userID) -> []domain.Chat, error
//   - ListChatMembers(ctx, db, chatID) -> []domain.ChatMember, error
//   - CreateChatRequest(ctx, db, chatID, fromID, toID) -> *domain.ChatRequest, error
//   - GetChatRequest(ctx, db, id) -> *domain.ChatRequest, error
//   - ResolveChatRequest(ctx, db, id, status) -> error
//   - ListPendingRequests(ctx, db, userID) -> []domain.ChatRequest, error
//
// Usage:
//
//	// Within a service layer transaction
//	if err := repo.ResolveChatRequest(ctx, tx, reqID, domain.RequestAccepted); errors.Is(err, repo.ErrNotFound) {
//	    // lost the race, or already resolved
//	}
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// CreateChat inserts a new Chat row created by creatorID with the given name.
// CreatedAt is set to UTC.
func CreateChat(ctx context.Context, db *gorm.DB, creatorID uint, name string) (*domain.Chat, error) {
	c := &domain.Chat{
		Name:      name,
		CreatorID: creatorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetChat fetches a single chat by its ID, or ErrNotFound.
func GetChat(ctx context.Context, db *gorm.DB, id uint) (*domain.Chat, error) {
	var c domain.Chat
	if err := db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// AddChatMember grants membership of chatID to userID.
func AddChatMember(ctx context.Context, db *gorm.DB, chatID, userID uint) error {
	m := &domain.ChatMember{ChatID: chatID, UserID: userID, JoinedAt: time.Now().UTC()}
	return db.WithContext(ctx).Omit("Chat").Create(m).Error
}

// IsChatMember reports whether userID is a member of chatID.
func IsChatMember(ctx context.Context, db *gorm.DB, chatID, userID uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ChatMember{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&n).Error
	return n > 0, err
}

// ListChatsForMember returns the chats userID belongs to, newest first.
func ListChatsForMember(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Chat, error) {
	var out []domain.Chat
	err := db.WithContext(ctx).
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id").
		Where("chat_members.user_id = ?", userID).
		Order("chats.created_at DESC, chats.id DESC").
		Find(&out).Error
	return out, err
}

// ListChatMembers returns the memberships of chatID in join order.
func ListChatMembers(ctx context.Context, db *gorm.DB, chatID uint) ([]domain.ChatMember, error) {
	var out []domain.ChatMember
	err := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("joined_at ASC, user_id ASC").
		Find(&out).Error
	return out, err
}

// CreateChatRequest inserts a pending invitation from fromID to toID.
// (chat_id, to_user_id) is unique.
func CreateChatRequest(ctx context.Context, db *gorm.DB, chatID, fromID, toID uint) (*domain.ChatRequest, error) {
	r := &domain.ChatRequest{
		ChatID:     chatID,
		FromUserID: fromID,
		ToUserID:   toID,
		Status:     domain.RequestPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Omit("Chat").Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetChatRequest fetches a request by id, or ErrNotFound.
func GetChatRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.ChatRequest, error) {
	var r domain.ChatRequest
	if err := db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ResolveChatRequest moves request id from pending to status. Only one caller
// can win: the update is conditional on status still being pending, and a
// request that was already resolved yields ErrNotFound.
func ResolveChatRequest(ctx context.Context, db *gorm.DB, id uint, status string) error {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.ChatRequest{}).
		Where("id = ? AND status = ?", id, domain.RequestPending).
		Updates(map[string]any{"status": status, "resolved_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPendingRequests returns the pending requests addressed to userID,
// oldest first, with their chat preloaded.
func ListPendingRequests(ctx context.Context, db *gorm.DB, userID uint) ([]domain.ChatRequest, error) {
	var out []domain.ChatRequest
	err := db.WithContext(ctx).
		Preload("Chat").
		Where("to_user_id = ? AND status = ?", userID, domain.RequestPending).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
