package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-forum-backend/internal/config"
	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/http/middleware"
	"github.com/tbourn/go-forum-backend/internal/repo"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
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
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func baseConfig() config.Config {
	return config.Config{
		APIBasePath:     "/api/v1",
		DefaultPageSize: 5,
		RateRPS:         100,
		RateBurst:       50,
		IdempotencyTTL:  time.Hour,
		OTEL:            config.OTELConfig{ServiceName: "test-svc"},
	}
}

func seedUser(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	u := &domain.User{DisplayName: name, Role: domain.RoleUser}
	if err := repo.CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u.ID
}

func call(r *gin.Engine, method, path string, uid uint, body any, headers ...string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
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
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestDB(t), baseConfig())

	w := call(r, http.MethodGet, "/health", 0, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	w = call(r, http.MethodGet, "/metrics", 0, nil)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	if w = call(r, http.MethodGet, "/nope", 0, nil); w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}
	if w = call(r, http.MethodPost, "/health", 0, nil); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}

	// Swagger is off unless enabled.
	if w = call(r, http.MethodGet, "/swagger/index.html", 0, nil); w.Code != http.StatusNotFound {
		t.Fatalf("swagger should be disabled, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := baseConfig()
	cfg.APIBasePath = "/api/v2"
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	RegisterRoutes(r, newTestDB(t), cfg)

	w := call(r, http.MethodGet, "/health", 0, nil, "Origin", "http://example.com")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}

	w = call(r, http.MethodGet, "/health", 0, nil, "Origin", "http://evil.example")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "http://evil.example" {
		t.Fatalf("unlisted origin echoed")
	}
}

func TestRegisterRoutes_SwaggerEnabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := baseConfig()
	cfg.SwaggerEnabled = true
	RegisterRoutes(r, newTestDB(t), cfg)

	w := call(r, http.MethodGet, "/swagger/doc.json", 0, nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("/questions/{id}/votes")) {
		t.Fatalf("GET /swagger/doc.json = %d %s", w.Code, w.Body.String())
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		w := call(r, http.MethodGet, path, 0, nil)
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, w.Code, w.Body.String())
		}
	}
}

// A forum round trip through the full middleware stack.
func TestPipeline_ForumSmoke(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := baseConfig()
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour}
	db := newTestDB(t)
	RegisterRoutes(r, db, cfg)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	tag, err := repo.CreateTag(context.Background(), db, "golang")
	if err != nil {
		t.Fatalf("seed tag: %v", err)
	}

	w := call(r, http.MethodPost, "/api/v1/questions", alice, gin.H{"text": "Which router?"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create draft = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
	var q domain.Question
	if err := json.Unmarshal(w.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = call(r, http.MethodPost, fmt.Sprintf("/api/v1/questions/%d/publish", q.ID), alice, gin.H{"tag_ids": []uint{tag.ID}})
	if w.Code != http.StatusNoContent {
		t.Fatalf("publish = %d %s", w.Code, w.Body.String())
	}
	w = call(r, http.MethodPost, fmt.Sprintf("/api/v1/questions/%d/votes", q.ID), bob, gin.H{"direction": "up"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("vote = %d %s", w.Code, w.Body.String())
	}

	w = call(r, http.MethodGet, "/api/v1/questions/popular", 0, nil)
	if w.Code != http.StatusOK || w.Header().Get("ETag") == "" {
		t.Fatalf("popular = %d etag=%q", w.Code, w.Header().Get("ETag"))
	}

	// Malformed identity never reaches a handler.
	w = call(r, http.MethodGet, "/api/v1/questions/draft", 0, nil, middleware.HeaderUserID, "alice")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad X-User-ID = %d", w.Code)
	}
}

func Test_chatRepoShim_Proxies(t *testing.T) {
	db := newTestDB(t)
	shim := chatRepoShim{}
	ctx := context.Background()

	k := seedUser(t, db, "k")
	m := seedUser(t, db, "m")

	known, err := shim.ExistingUserIDs(ctx, db, []uint{k, m, 9999})
	if err != nil || !known[k] || !known[m] || known[9999] {
		t.Fatalf("ExistingUserIDs = %v, %v", known, err)
	}

	chat, err := shim.CreateChat(ctx, db, k, "pair")
	if err != nil || chat.ID == 0 {
		t.Fatalf("CreateChat: %+v, %v", chat, err)
	}
	if got, err := shim.GetChat(ctx, db, chat.ID); err != nil || got.Name != "pair" {
		t.Fatalf("GetChat: %+v, %v", got, err)
	}
	if err := shim.AddChatMember(ctx, db, chat.ID, k); err != nil {
		t.Fatalf("AddChatMember: %v", err)
	}
	if ok, err := shim.IsChatMember(ctx, db, chat.ID, k); err != nil || !ok {
		t.Fatalf("IsChatMember(k) = %v, %v", ok, err)
	}

	req, err := shim.CreateChatRequest(ctx, db, chat.ID, k, m)
	if err != nil {
		t.Fatalf("CreateChatRequest: %v", err)
	}
	pending, err := shim.ListPendingRequests(ctx, db, m)
	if err != nil || len(pending) != 1 || pending[0].ID != req.ID {
		t.Fatalf("ListPendingRequests = %+v, %v", pending, err)
	}
	if got, err := shim.GetChatRequest(ctx, db, req.ID); err != nil || got.Status != domain.RequestPending {
		t.Fatalf("GetChatRequest = %+v, %v", got, err)
	}
	if err := shim.ResolveChatRequest(ctx, db, req.ID, domain.RequestAccepted); err != nil {
		t.Fatalf("ResolveChatRequest: %v", err)
	}
	if err := shim.AddChatMember(ctx, db, chat.ID, m); err != nil {
		t.Fatalf("AddChatMember(m): %v", err)
	}

	members, err := shim.ListChatMembers(ctx, db, chat.ID)
	if err != nil || len(members) != 2 {
		t.Fatalf("ListChatMembers = %+v, %v", members, err)
	}
	chats, err := shim.ListChatsForMember(ctx, db, m)
	if err != nil || len(chats) != 1 {
		t.Fatalf("ListChatsForMember = %+v, %v", chats, err)
	}

	ts, err := shim.CreateTimestamp(ctx, db, time.Now())
	if err != nil {
		t.Fatalf("CreateTimestamp: %v", err)
	}
	if _, err := shim.CreateMessage(ctx, db, chat.ID, k, "hello", ts); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if n, err := shim.CountMessages(ctx, db, chat.ID); err != nil || n != 1 {
		t.Fatalf("CountMessages = %d, %v", n, err)
	}
	page, err := shim.ListMessagesPage(ctx, db, chat.ID, 0, 10)
	if err != nil || len(page) != 1 || page[0].Text != "hello" {
		t.Fatalf("ListMessagesPage = %+v, %v", page, err)
	}
}

func TestRegisterRoutes_IdempotencyLookup_Replay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := baseConfig()
	// Two tokens, spent on the chat and the first post; only a replay gets
	// past the limiter afterwards.
	cfg.RateRPS = 0.0001
	cfg.RateBurst = 2
	db := newTestDB(t)
	RegisterRoutes(r, db, cfg)

	k := seedUser(t, db, "k")
	m := seedUser(t, db, "m")
	w := call(r, http.MethodPost, "/api/v1/chats", k, gin.H{"name": "pair", "member_ids": []uint{m}})
	if w.Code != http.StatusCreated {
		t.Fatalf("create chat = %d %s", w.Code, w.Body.String())
	}
	var created struct {
		Chat domain.Chat `json:"chat"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	path := fmt.Sprintf("/api/v1/chats/%d/messages", created.Chat.ID)

	if w = call(r, http.MethodPost, path, k, gin.H{"text": "once"}, middleware.HeaderIdempotencyKey, "k-1"); w.Code != http.StatusCreated {
		t.Fatalf("first post = %d %s", w.Code, w.Body.String())
	}
	if w = call(r, http.MethodPost, path, k, gin.H{"text": "twice"}); w.Code != http.StatusTooManyRequests {
		t.Fatalf("bucket should be empty, got %d", w.Code)
	}
	w = call(r, http.MethodPost, path, k, gin.H{"text": "once"}, middleware.HeaderIdempotencyKey, "k-1")
	if w.Code != http.StatusOK || w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay = %d replayed=%q", w.Code, w.Header().Get("Idempotency-Replayed"))
	}
}

func TestRegisterRoutes_IdempotencyLookup_ErrorBranch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	db := newTestDB(t)
	RegisterRoutes(r, db, baseConfig())

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	_ = sqlDB.Close()

	// Lookup errors are swallowed; the request proceeds to the fallback.
	w := call(r, http.MethodPost, "/health", 7, nil, middleware.HeaderIdempotencyKey, "force-error")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_RedisRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)

	r := gin.New()
	cfg := baseConfig()
	cfg.RateRedisURL = "redis://" + mr.Addr()
	cfg.RateLimit = 2
	cfg.RateWindow = time.Minute
	RegisterRoutes(r, newTestDB(t), cfg)

	for i := 0; i < 2; i++ {
		if w := call(r, http.MethodGet, "/health", 9, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, w.Code)
		}
	}
	if w := call(r, http.MethodGet, "/health", 9, nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d; want 429", w.Code)
	}
}

func TestRegisterRoutes_RedisUnreachable_FallsBack(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := baseConfig()
	cfg.RateRedisURL = "not a url"
	RegisterRoutes(r, newTestDB(t), cfg)

	if w := call(r, http.MethodGet, "/health", 0, nil); w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
}
