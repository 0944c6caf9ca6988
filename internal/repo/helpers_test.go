package repo

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// newTestDB opens a private in-memory database. With no models given, the
// full schema is migrated.
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if len(migrate) == 0 {
		if err := AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
		return db
	}
	if err := db.AutoMigrate(migrate...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// newBareDB opens a private in-memory database with no tables.
func newBareDB(t *testing.T) *gorm.DB {
	t.Helper()
	return newTestDB(t, &domain.Tag{}) // one unrelated table keeps the DSN alive
}

func seedUser(t *testing.T, db *gorm.DB, name string, role string) *domain.User {
	t.Helper()
	u := &domain.User{DisplayName: name, Role: role}
	if err := CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

func seedPublished(t *testing.T, db *gorm.DB, userID uint, text string) *domain.Question {
	t.Helper()
	ctx := context.Background()
	q, err := CreateQuestion(ctx, db, userID, text)
	if err != nil {
		t.Fatalf("seed question: %v", err)
	}
	if err := TransitionQuestion(ctx, db, q.ID, userID, domain.StatusDraft, domain.StatusPublished); err != nil {
		t.Fatalf("publish question: %v", err)
	}
	q.Status = domain.StatusPublished
	return q
}
