// Package httpapi wires the HTTP transport (Gin) to the forum services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, caller identity, logging/redaction, panic
// recovery, metrics, CORS, security headers, idempotency, and rate limiting.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/docs"
	"github.com/tbourn/go-forum-backend/internal/config"
	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/http/handlers"
	"github.com/tbourn/go-forum-backend/internal/http/middleware"
	"github.com/tbourn/go-forum-backend/internal/repo"
	"github.com/tbourn/go-forum-backend/internal/services"
)

// chatRepoShim adapts the repository free functions to the services.ChatRepo
// interface expected by the ChatService.
type chatRepoShim struct{}

func (chatRepoShim) ExistingUserIDs(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]bool, error) {
	return repo.ExistingUserIDs(ctx, db, ids)
}

func (chatRepoShim) CreateChat(ctx context.Context, db *gorm.DB, creatorID uint, name string) (*domain.Chat, error) {
	return repo.CreateChat(ctx, db, creatorID, name)
}

func (chatRepoShim) GetChat(ctx context.Context, db *gorm.DB, id uint) (*domain.Chat, error) {
	return repo.GetChat(ctx, db, id)
}

func (chatRepoShim) ListChatsForMember(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Chat, error) {
	return repo.ListChatsForMember(ctx, db, userID)
}

func (chatRepoShim) AddChatMember(ctx context.Context, db *gorm.DB, chatID, userID uint) error {
	return repo.AddChatMember(ctx, db, chatID, userID)
}

func (chatRepoShim) IsChatMember(ctx context.Context, db *gorm.DB, chatID, userID uint) (bool, error) {
	return repo.IsChatMember(ctx, db, chatID, userID)
}

func (chatRepoShim) ListChatMembers(ctx context.Context, db *gorm.DB, chatID uint) ([]domain.ChatMember, error) {
	return repo.ListChatMembers(ctx, db, chatID)
}

func (chatRepoShim) CreateChatRequest(ctx context.Context, db *gorm.DB, chatID, fromID, toID uint) (*domain.ChatRequest, error) {
	return repo.CreateChatRequest(ctx, db, chatID, fromID, toID)
}

func (chatRepoShim) GetChatRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.ChatRequest, error) {
	return repo.GetChatRequest(ctx, db, id)
}

func (chatRepoShim) ResolveChatRequest(ctx context.Context, db *gorm.DB, id uint, status string) error {
	return repo.ResolveChatRequest(ctx, db, id, status)
}

func (chatRepoShim) ListPendingRequests(ctx context.Context, db *gorm.DB, userID uint) ([]domain.ChatRequest, error) {
	return repo.ListPendingRequests(ctx, db, userID)
}

func (chatRepoShim) CreateTimestamp(ctx context.Context, db *gorm.DB, now time.Time) (*domain.Timestamp, error) {
	return repo.CreateTimestamp(ctx, db, now)
}

// CreateMessage proxies repo.CreateMessage, binding ctx to the handle.
func (chatRepoShim) CreateMessage(ctx context.Context, db *gorm.DB, chatID, senderID uint, text string, ts *domain.Timestamp) (*domain.ChatMessage, error) {
	return repo.CreateMessage(db.WithContext(ctx), chatID, senderID, text, ts)
}

func (chatRepoShim) CountMessages(ctx context.Context, db *gorm.DB, chatID uint) (int64, error) {
	return repo.CountMessages(db.WithContext(ctx), chatID)
}

func (chatRepoShim) ListMessagesPage(ctx context.Context, db *gorm.DB, chatID uint, offset, limit int) ([]domain.ChatMessage, error) {
	return repo.ListMessagesPage(db.WithContext(ctx), chatID, offset, limit)
}

// limiter is satisfied by both the in-process and the Redis-backed limiter.
type limiter interface {
	Handler() gin.HandlerFunc
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the forum API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Identity: parse X-User-ID once for every later consumer
//  4. RedactingLogger: structured logs with PII scrubbing
//  5. Recovery: capture panics after logger
//  6. Body size limiter
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. Compression, CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Identity())

	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, userID, chatID uint, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, chatID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	r.Use(newLimiter(cfg).Handler())

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID, middleware.HeaderIdempotencyKey, "If-None-Match"}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", "Idempotency-Replayed"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// HSTS only when enabled and the request is HTTPS.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:     cfg.Security.EnableHSTS,
		HSTSMaxAge:     cfg.Security.HSTSMaxAge,
		NoStore:        false,
		EnablePolicy:   true,
		VaryOnIdentity: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(handlers.Services{
		Questions: services.NewQuestionService(db),
		Votes:     services.NewVoteService(db),
		Rankings:  services.NewRankingService(db, cfg.DefaultPageSize),
		Threads:   services.NewThreadService(db),
		Chats:     services.NewChatService(db, chatRepoShim{}),
		Tags:      services.NewTagService(db),
	})
	if cfg.IdempotencyTTL > 0 {
		h.IdempotencyTTL = cfg.IdempotencyTTL
	}

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Question lifecycle
		api.POST("/questions", h.CreateQuestion)
		api.GET("/questions/draft", h.CurrentDraft)
		api.POST("/questions/:id/publish", h.PublishQuestion)
		api.POST("/questions/:id/cancel", h.CancelQuestion)
		api.PUT("/questions/:id/visibility", h.SetVisibility)
		api.POST("/questions/:id/votes", h.Vote)

		// Rankings
		api.GET("/questions/popular", h.RankPopular)
		api.GET("/questions/controversial", h.RankControversial)
		api.GET("/questions/recent", h.RankRecent)
		api.GET("/home", h.Home)

		// Threads
		api.GET("/questions/:id", h.ViewThread)
		api.POST("/questions/:id/responses", h.SubmitResponse)
		api.POST("/questions/:id/comments", h.SubmitComment)

		// Chats
		api.POST("/chats", h.CreateChat)
		api.GET("/chats", h.ListChats)
		api.GET("/chats/:id/members", h.ListMembers)
		api.POST("/chats/:id/messages", h.PostMessage)
		api.GET("/chats/:id/messages", h.ListMessages)
		api.GET("/chat-requests", h.ListPendingRequests)
		api.POST("/chat-requests/:id/accept", h.AcceptChatRequest)
		api.POST("/chat-requests/:id/reject", h.RejectChatRequest)

		// Tags
		api.GET("/tags", h.ListTags)
		api.POST("/tags", h.CreateTag)
		api.GET("/me/tags", h.FollowedTags)
		api.PUT("/me/tags", h.FollowTags)
	}
}

// newLimiter picks the Redis fixed-window limiter when RATE_REDIS_URL is set
// and reachable, and the in-process token bucket otherwise.
func newLimiter(cfg config.Config) limiter {
	if cfg.RateRedisURL != "" {
		rl, err := middleware.NewRedisRateLimiter(cfg.RateRedisURL, cfg.RateLimit, cfg.RateWindow, middleware.KeyByUserOrIP())
		if err == nil {
			return rl
		}
		log.Warn().Err(err).Msg("redis rate limiter unavailable; using in-process limiter")
	}
	return middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
}

// limitBody caps the request body size for all endpoints to maxBytes using
// http.MaxBytesReader. Requests exceeding the cap cause downstream body reads
// to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
