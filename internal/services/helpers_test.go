package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/repo"
)

// newTestDB returns a private, fully migrated in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	return openMigrated(t, dsn)
}

// newFileDB returns a migrated file-backed database opened exactly as the
// server opens its default store.
func newFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "forum.db"))
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, repo.AutoMigrate(db))
	return db
}

func openMigrated(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, repo.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) uint {
	t.Helper()
	u := &domain.User{DisplayName: name, Role: role}
	require.NoError(t, repo.CreateUser(context.Background(), db, u))
	return u.ID
}

func seedTag(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	tag, err := repo.CreateTag(context.Background(), db, name)
	require.NoError(t, err)
	return tag.ID
}

// publishQuestion runs the real lifecycle: start a draft, then publish it.
func publishQuestion(t *testing.T, db *gorm.DB, userID uint, text string, tagIDs ...uint) uint {
	t.Helper()
	ctx := context.Background()
	qs := NewQuestionService(db)
	q, err := qs.StartDraft(ctx, userID, text)
	require.NoError(t, err)
	if len(tagIDs) == 0 {
		tagIDs = []uint{seedTag(t, db, "tag-"+uuid.NewString()[:8])}
	}
	require.NoError(t, qs.PublishDraft(ctx, userID, q.ID, tagIDs))
	return q.ID
}

// gormChatRepo adapts the repo package to ChatRepo for tests.
type gormChatRepo struct{}

func (gormChatRepo) ExistingUserIDs(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]bool, error) {
	return repo.ExistingUserIDs(ctx, db, ids)
}
func (gormChatRepo) CreateChat(ctx context.Context, db *gorm.DB, creatorID uint, name string) (*domain.Chat, error) {
	return repo.CreateChat(ctx, db, creatorID, name)
}
func (gormChatRepo) GetChat(ctx context.Context, db *gorm.DB, id uint) (*domain.Chat, error) {
	return repo.GetChat(ctx, db, id)
}
func (gormChatRepo) ListChatsForMember(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Chat, error) {
	return repo.ListChatsForMember(ctx, db, userID)
}
func (gormChatRepo) AddChatMember(ctx context.Context, db *gorm.DB, chatID, userID uint) error {
	return repo.AddChatMember(ctx, db, chatID, userID)
}
func (gormChatRepo) IsChatMember(ctx context.Context, db *gorm.DB, chatID, userID uint) (bool, error) {
	return repo.IsChatMember(ctx, db, chatID, userID)
}
func (gormChatRepo) ListChatMembers(ctx context.Context, db *gorm.DB, chatID uint) ([]domain.ChatMember, error) {
	return repo.ListChatMembers(ctx, db, chatID)
}
func (gormChatRepo) CreateChatRequest(ctx context.Context, db *gorm.DB, chatID, fromID, toID uint) (*domain.ChatRequest, error) {
	return repo.CreateChatRequest(ctx, db, chatID, fromID, toID)
}
func (gormChatRepo) GetChatRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.ChatRequest, error) {
	return repo.GetChatRequest(ctx, db, id)
}
func (gormChatRepo) ResolveChatRequest(ctx context.Context, db *gorm.DB, id uint, status string) error {
	return repo.ResolveChatRequest(ctx, db, id, status)
}
func (gormChatRepo) ListPendingRequests(ctx context.Context, db *gorm.DB, userID uint) ([]domain.ChatRequest, error) {
	return repo.ListPendingRequests(ctx, db, userID)
}
func (gormChatRepo) CreateTimestamp(ctx context.Context, db *gorm.DB, now time.Time) (*domain.Timestamp, error) {
	return repo.CreateTimestamp(ctx, db, now)
}
func (gormChatRepo) CreateMessage(ctx context.Context, db *gorm.DB, chatID, senderID uint, text string, ts *domain.Timestamp) (*domain.ChatMessage, error) {
	return repo.CreateMessage(db.WithContext(ctx), chatID, senderID, text, ts)
}
func (gormChatRepo) CountMessages(ctx context.Context, db *gorm.DB, chatID uint) (int64, error) {
	return repo.CountMessages(db.WithContext(ctx), chatID)
}
func (gormChatRepo) ListMessagesPage(ctx context.Context, db *gorm.DB, chatID uint, offset, limit int) ([]domain.ChatMessage, error) {
	return repo.ListMessagesPage(db.WithContext(ctx), chatID, offset, limit)
}
