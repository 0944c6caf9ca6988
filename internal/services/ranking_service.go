// Package services – RankingService
//
// This file implements the three paginated question rankings:
//
//   - popular:       upvotes DESC
//   - controversial: (downvotes - upvotes) DESC
//   - recent:        created_at DESC
//
// all with id DESC as the tiebreak. Only published questions are eligible,
// and non-admin callers additionally see only visible ones. Pages are
// 1-based; each result carries the eligible total and ceil(total/pageSize).
package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/repo"
	"github.com/tbourn/go-forum-backend/internal/utils"
)

// DefaultPageSize is the ranking page size used when callers pass none.
const DefaultPageSize = 5

// Page is one page of a ranking.
type Page struct {
	Ranking    string            `json:"ranking"`
	Items      []domain.Question `json:"items"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"total_pages"`
}

// Home holds the first page of every ranking.
type Home struct {
	Popular       *Page `json:"popular"`
	Controversial *Page `json:"controversial"`
	Recent        *Page `json:"recent"`
}

// RankingService serves ranking pages.
type RankingService struct {
	DB *gorm.DB

	// PageSize is used when a caller passes pageSize <= 0.
	PageSize int
	// MaxPageSize caps caller-supplied page sizes. Zero disables the cap.
	MaxPageSize int
}

// NewRankingService constructs a RankingService with the default page size.
func NewRankingService(db *gorm.DB, pageSize int) *RankingService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &RankingService{DB: db, PageSize: pageSize, MaxPageSize: 100}
}

// RankPopular returns page `page` of the popular ranking as seen by callerID.
func (s *RankingService) RankPopular(ctx context.Context, callerID uint, page, pageSize int) (*Page, error) {
	return s.Rank(ctx, callerID, repo.RankPopular, page, pageSize)
}

// RankControversial returns page `page` of the controversial ranking.
func (s *RankingService) RankControversial(ctx context.Context, callerID uint, page, pageSize int) (*Page, error) {
	return s.Rank(ctx, callerID, repo.RankControversial, page, pageSize)
}

// RankRecent returns page `page` of the recent ranking.
func (s *RankingService) RankRecent(ctx context.Context, callerID uint, page, pageSize int) (*Page, error) {
	return s.Rank(ctx, callerID, repo.RankRecent, page, pageSize)
}

// Rank returns one page of ranking r. The count and the page are read in one
// transaction so total_pages matches the items returned.
func (s *RankingService) Rank(ctx context.Context, callerID uint, r repo.Ranking, page, pageSize int) (out *Page, err error) {
	ctx, span := startSpan(ctx, "RankingService", "Rank",
		attribute.String("ranking", string(r)),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)
	defer func() { endSpan(span, err) }()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.pageSize()
	}
	if s.MaxPageSize > 0 && pageSize > s.MaxPageSize {
		pageSize = s.MaxPageSize
	}

	out = &Page{Ranking: string(r), Page: page, PageSize: pageSize, Items: []domain.Question{}}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := isAdmin(ctx, tx, callerID)
		if err != nil {
			return err
		}
		total, err := repo.CountRankable(ctx, tx, admin)
		if err != nil {
			return err
		}
		out.Total = total
		out.TotalPages = utils.TotalPages(total, pageSize)
		if total == 0 {
			return nil
		}
		items, err := repo.ListRanked(ctx, tx, r, admin, utils.Offset(page, pageSize), pageSize)
		if err != nil {
			return err
		}
		out.Items = items
		return nil
	})
	if err != nil {
		return nil, storeErr("rank "+string(r), err)
	}
	return out, nil
}

// Home returns the first page of each ranking, as the landing page shows them.
func (s *RankingService) Home(ctx context.Context, callerID uint) (*Home, error) {
	popular, err := s.RankPopular(ctx, callerID, 1, 0)
	if err != nil {
		return nil, err
	}
	controversial, err := s.RankControversial(ctx, callerID, 1, 0)
	if err != nil {
		return nil, err
	}
	recent, err := s.RankRecent(ctx, callerID, 1, 0)
	if err != nil {
		return nil, err
	}
	return &Home{Popular: popular, Controversial: controversial, Recent: recent}, nil
}

// IncludesHidden reports whether callerID sees hidden questions in rankings.
func (s *RankingService) IncludesHidden(ctx context.Context, callerID uint) (bool, error) {
	return isAdmin(ctx, s.DB.WithContext(ctx), callerID)
}

func (s *RankingService) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return DefaultPageSize
}
