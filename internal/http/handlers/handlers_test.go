package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/http/middleware"
	"github.com/tbourn/go-forum-backend/internal/repo"
	"github.com/tbourn/go-forum-backend/internal/services"
)

// ---------- test DB + repo shim ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
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
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testChatRepo implements services.ChatRepo on top of the repo package (like router.go).
type testChatRepo struct{}

func (testChatRepo) ExistingUserIDs(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]bool, error) {
	return repo.ExistingUserIDs(ctx, db, ids)
}
func (testChatRepo) CreateChat(ctx context.Context, db *gorm.DB, creatorID uint, name string) (*domain.Chat, error) {
	return repo.CreateChat(ctx, db, creatorID, name)
}
func (testChatRepo) GetChat(ctx context.Context, db *gorm.DB, id uint) (*domain.Chat, error) {
	return repo.GetChat(ctx, db, id)
}
func (testChatRepo) ListChatsForMember(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Chat, error) {
	return repo.ListChatsForMember(ctx, db, userID)
}
func (testChatRepo) AddChatMember(ctx context.Context, db *gorm.DB, chatID, userID uint) error {
	return repo.AddChatMember(ctx, db, chatID, userID)
}
func (testChatRepo) IsChatMember(ctx context.Context, db *gorm.DB, chatID, userID uint) (bool, error) {
	return repo.IsChatMember(ctx, db, chatID, userID)
}
func (testChatRepo) ListChatMembers(ctx context.Context, db *gorm.DB, chatID uint) ([]domain.ChatMember, error) {
	return repo.ListChatMembers(ctx, db, chatID)
}
func (testChatRepo) CreateChatRequest(ctx context.Context, db *gorm.DB, chatID, fromID, toID uint) (*domain.ChatRequest, error) {
	return repo.CreateChatRequest(ctx, db, chatID, fromID, toID)
}
func (testChatRepo) GetChatRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.ChatRequest, error) {
	return repo.GetChatRequest(ctx, db, id)
}
func (testChatRepo) ResolveChatRequest(ctx context.Context, db *gorm.DB, id uint, status string) error {
	return repo.ResolveChatRequest(ctx, db, id, status)
}
func (testChatRepo) ListPendingRequests(ctx context.Context, db *gorm.DB, userID uint) ([]domain.ChatRequest, error) {
	return repo.ListPendingRequests(ctx, db, userID)
}
func (testChatRepo) CreateTimestamp(ctx context.Context, db *gorm.DB, now time.Time) (*domain.Timestamp, error) {
	return repo.CreateTimestamp(ctx, db, now)
}
func (testChatRepo) CreateMessage(ctx context.Context, db *gorm.DB, chatID, senderID uint, text string, ts *domain.Timestamp) (*domain.ChatMessage, error) {
	return repo.CreateMessage(db.WithContext(ctx), chatID, senderID, text, ts)
}
func (testChatRepo) CountMessages(ctx context.Context, db *gorm.DB, chatID uint) (int64, error) {
	return repo.CountMessages(db.WithContext(ctx), chatID)
}
func (testChatRepo) ListMessagesPage(ctx context.Context, db *gorm.DB, chatID uint, offset, limit int) ([]domain.ChatMessage, error) {
	return repo.ListMessagesPage(db.WithContext(ctx), chatID, offset, limit)
}

// ---------- harness ----------

type harness struct {
	t  *testing.T
	db *gorm.DB
	r  *gin.Engine
}

// newHarness wires real services over a fresh database behind the same
// routes the server registers.
func newHarness(t *testing.T) *harness {
	t.Helper()
	db := newHandlerDB(t)
	h := New(Services{
		Questions: services.NewQuestionService(db),
		Votes:     services.NewVoteService(db),
		Rankings:  services.NewRankingService(db, 5),
		Threads:   services.NewThreadService(db),
		Chats:     services.NewChatService(db, testChatRepo{}),
		Tags:      services.NewTagService(db),
	})
	return &harness{t: t, db: db, r: testRouter(h)}
}

func testRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Identity(), middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))

	r.POST("/questions", h.CreateQuestion)
	r.GET("/questions/draft", h.CurrentDraft)
	r.GET("/questions/popular", h.RankPopular)
	r.GET("/questions/controversial", h.RankControversial)
	r.GET("/questions/recent", h.RankRecent)
	r.GET("/questions/:id", h.ViewThread)
	r.POST("/questions/:id/publish", h.PublishQuestion)
	r.POST("/questions/:id/cancel", h.CancelQuestion)
	r.PUT("/questions/:id/visibility", h.SetVisibility)
	r.POST("/questions/:id/votes", h.Vote)
	r.POST("/questions/:id/responses", h.SubmitResponse)
	r.POST("/questions/:id/comments", h.SubmitComment)
	r.GET("/home", h.Home)

	r.POST("/chats", h.CreateChat)
	r.GET("/chats", h.ListChats)
	r.GET("/chats/:id/members", h.ListMembers)
	r.POST("/chats/:id/messages", h.PostMessage)
	r.GET("/chats/:id/messages", h.ListMessages)
	r.GET("/chat-requests", h.ListPendingRequests)
	r.POST("/chat-requests/:id/accept", h.AcceptChatRequest)
	r.POST("/chat-requests/:id/reject", h.RejectChatRequest)

	r.GET("/tags", h.ListTags)
	r.POST("/tags", h.CreateTag)
	r.GET("/me/tags", h.FollowedTags)
	r.PUT("/me/tags", h.FollowTags)
	return r
}

func (hs *harness) user(name, role string) uint {
	hs.t.Helper()
	u := &domain.User{DisplayName: name, Role: role}
	if err := repo.CreateUser(context.Background(), hs.db, u); err != nil {
		hs.t.Fatalf("seed user: %v", err)
	}
	return u.ID
}

func (hs *harness) tag(name string) uint {
	hs.t.Helper()
	tg, err := repo.CreateTag(context.Background(), hs.db, name)
	if err != nil {
		hs.t.Fatalf("seed tag: %v", err)
	}
	return tg.ID
}

// do sends a request as uid (0 = anonymous) with an optional JSON body and
// extra headers given as name/value pairs.
func (hs *harness) do(method, path string, uid uint, body any, headers ...string) *httptest.ResponseRecorder {
	hs.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			hs.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if uid != 0 {
		req.Header.Set(middleware.HeaderUserID, strconv.FormatUint(uint64(uid), 10))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	hs.r.ServeHTTP(w, req)
	return w
}

// publish drives a question through the HTTP lifecycle and returns its id.
func (hs *harness) publish(uid uint, text string, tagIDs ...uint) uint {
	hs.t.Helper()
	w := hs.do(http.MethodPost, "/questions", uid, gin.H{"text": text})
	expectStatus(hs.t, w, http.StatusCreated)
	var q domain.Question
	decode(hs.t, w, &q)
	if len(tagIDs) == 0 {
		tagIDs = []uint{hs.tag("t-" + uuid.NewString()[:8])}
	}
	w = hs.do(http.MethodPost, fmt.Sprintf("/questions/%d/publish", q.ID), uid, gin.H{"tag_ids": tagIDs})
	expectStatus(hs.t, w, http.StatusNoContent)
	return q.ID
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d; want %d; body=%s", w.Code, want, w.Body.String())
	}
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, w, status)
	var er ErrorResponse
	decode(t, w, &er)
	if er.Code != code {
		t.Fatalf("code = %q; want %q (%s)", er.Code, code, er.Message)
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

// ---------- helper tests ----------

func Test_pathID_and_requireUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		param string
		want  uint
		ok    bool
	}{
		{"7", 7, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: tc.param}}
		got, ok := pathID(c, "question")
		if got != tc.want || ok != tc.ok {
			t.Fatalf("pathID(%q) = %d,%v", tc.param, got, ok)
		}
		if !ok && w.Code != http.StatusBadRequest {
			t.Fatalf("pathID(%q) wrote %d", tc.param, w.Code)
		}
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := requireUser(c); ok || w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous caller must get 401, got %d", w.Code)
	}
}

func Test_clampPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct {
		query          string
		def            int
		page, pageSize int
	}{
		{"", 20, 1, 20},
		{"?page=3&page_size=7", 20, 3, 7},
		{"?page=0&page_size=0", 20, 1, 20},
		{"?page=-2&page_size=1000", 5, 1, 100},
		{"?page=x&page_size=y", 0, 1, 0},
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)
		p, ps := clampPagination(c, tc.def)
		if p != tc.page || ps != tc.pageSize {
			t.Fatalf("clampPagination(%q) = %d,%d; want %d,%d", tc.query, p, ps, tc.page, tc.pageSize)
		}
	}
}

func Test_sanitizeContent(t *testing.T) {
	in := "  line1\r\n\r\n\r\n\r\nline2\rline3  "
	if got := sanitizeContent(in); got != "line1\n\nline2\nline3" {
		t.Fatalf("sanitizeContent = %q", got)
	}
}
