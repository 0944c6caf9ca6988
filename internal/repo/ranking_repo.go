// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file holds the ranking queries behind the popular,
// controversial and recent question lists.
package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// Ranking names one of the supported question orderings.
type Ranking string

const (
	RankPopular       Ranking = "popular"
	RankControversial Ranking = "controversial"
	RankRecent        Ranking = "recent"
)

// orderClause returns the ORDER BY for r. Every ordering ends in id DESC so
// pages are stable when scores tie.
func (r Ranking) orderClause() (string, error) {
	switch r {
	case RankPopular:
		return "upvotes DESC, id DESC", nil
	case RankControversial:
		return "(downvotes - upvotes) DESC, id DESC", nil
	case RankRecent:
		return "created_at DESC, id DESC", nil
	default:
		return "", fmt.Errorf("unknown ranking %q", string(r))
	}
}

// eligible scopes a query to questions that may appear in a ranking:
// published, and visible unless includeHidden is set.
func eligible(db *gorm.DB, includeHidden bool) *gorm.DB {
	q := db.Model(&domain.Question{}).Where("status = ?", domain.StatusPublished)
	if !includeHidden {
		q = q.Where("visibility = ?", domain.VisibilityVisible)
	}
	return q
}

// CountRankable returns the number of questions eligible for a ranking.
func CountRankable(ctx context.Context, db *gorm.DB, includeHidden bool) (int64, error) {
	var total int64
	err := eligible(db.WithContext(ctx), includeHidden).Count(&total).Error
	return total, err
}

// ListRanked returns one page of eligible questions in ranking r.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListRanked(ctx context.Context, db *gorm.DB, r Ranking, includeHidden bool, offset, limit int) ([]domain.Question, error) {
	order, err := r.orderClause()
	if err != nil {
		return nil, err
	}
	var out []domain.Question
	err = eligible(db.WithContext(ctx), includeHidden).
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
