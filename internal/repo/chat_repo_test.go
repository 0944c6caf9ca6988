package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

func TestCreateChat_Error_NoTable(t *testing.T) {
	db := newBareDB(t)
	chat, err := CreateChat(context.Background(), db, 1, "t")
	if err == nil || chat != nil {
		t.Fatalf("expected error creating without table, got chat=%v err=%v", chat, err)
	}
}

func TestCreateChat_Success_PersistsAndSetsFields(t *testing.T) {
	db := newTestDB(t)

	start := time.Now().UTC().Add(-time.Minute)
	chat, err := CreateChat(context.Background(), db, 7, "Book club")
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if chat.ID == 0 || chat.CreatorID != 7 || chat.Name != "Book club" {
		t.Fatalf("unexpected Chat fields: %+v", chat)
	}
	if chat.CreatedAt.Before(start) {
		t.Fatalf("CreatedAt seems unset/really old: %v", chat.CreatedAt)
	}

	got, err := GetChat(context.Background(), db, chat.ID)
	if err != nil || got.Name != "Book club" {
		t.Fatalf("round-trip mismatch: %+v %v", got, err)
	}
	if _, err := GetChat(context.Background(), db, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMembership(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c1, _ := CreateChat(ctx, db, 1, "first")
	c2, _ := CreateChat(ctx, db, 2, "second")

	if err := AddChatMember(ctx, db, c1.ID, 1); err != nil {
		t.Fatalf("AddChatMember: %v", err)
	}
	if err := AddChatMember(ctx, db, c2.ID, 1); err != nil {
		t.Fatalf("AddChatMember: %v", err)
	}
	if err := AddChatMember(ctx, db, c2.ID, 2); err != nil {
		t.Fatalf("AddChatMember: %v", err)
	}
	if err := AddChatMember(ctx, db, c2.ID, 2); err == nil {
		t.Fatalf("expected duplicate membership to fail")
	}

	if ok, _ := IsChatMember(ctx, db, c1.ID, 1); !ok {
		t.Fatalf("expected member")
	}
	if ok, _ := IsChatMember(ctx, db, c1.ID, 2); ok {
		t.Fatalf("expected non-member")
	}

	chats, err := ListChatsForMember(ctx, db, 1)
	if err != nil || len(chats) != 2 {
		t.Fatalf("ListChatsForMember = %+v, %v", chats, err)
	}
	members, err := ListChatMembers(ctx, db, c2.ID)
	if err != nil || len(members) != 2 {
		t.Fatalf("ListChatMembers = %+v, %v", members, err)
	}
}

func TestChatRequests_ResolveOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c, _ := CreateChat(ctx, db, 1, "invites")

	r, err := CreateChatRequest(ctx, db, c.ID, 1, 2)
	if err != nil || r.Status != domain.RequestPending {
		t.Fatalf("CreateChatRequest: %+v %v", r, err)
	}
	if _, err := CreateChatRequest(ctx, db, c.ID, 1, 2); !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation on (chat, to), got %v", err)
	}
	other, _ := CreateChatRequest(ctx, db, c.ID, 1, 3)

	pending, err := ListPendingRequests(ctx, db, 2)
	if err != nil || len(pending) != 1 || pending[0].Chat.Name != "invites" {
		t.Fatalf("ListPendingRequests = %+v, %v", pending, err)
	}

	if err := ResolveChatRequest(ctx, db, r.ID, domain.RequestAccepted); err != nil {
		t.Fatalf("ResolveChatRequest: %v", err)
	}
	if err := ResolveChatRequest(ctx, db, r.ID, domain.RequestRejected); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected second resolution to lose, got %v", err)
	}
	got, _ := GetChatRequest(ctx, db, r.ID)
	if got.Status != domain.RequestAccepted || got.ResolvedAt == nil {
		t.Fatalf("unexpected request: %+v", got)
	}

	pending, _ = ListPendingRequests(ctx, db, 2)
	if len(pending) != 0 {
		t.Fatalf("expected no pending for user 2, got %d", len(pending))
	}
	pending, _ = ListPendingRequests(ctx, db, 3)
	if len(pending) != 1 || pending[0].ID != other.ID {
		t.Fatalf("expected user 3 request to stay pending: %+v", pending)
	}
}
