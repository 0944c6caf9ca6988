// Package services – TagService
//
// Tags form a global catalog that questions bind at publish time and users
// follow. Names are case-folded and whitespace-normalized before storage so
// "Go", "go" and " GO " are one tag.
package services

import (
	"context"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/repo"
)

// maxTagRunes matches the tags.name column width.
const maxTagRunes = 64

// TagService manages the tag catalog and followed tags.
type TagService struct {
	DB *gorm.DB
}

// NewTagService constructs a TagService.
func NewTagService(db *gorm.DB) *TagService {
	return &TagService{DB: db}
}

// NormalizeTag returns the canonical form of a tag name. A Caser keeps state,
// so each call gets its own.
func NormalizeTag(name string) string {
	return cases.Fold().String(normalizeName(name))
}

// Create adds name to the catalog. Admin only.
func (s *TagService) Create(ctx context.Context, callerID uint, name string) (t *domain.Tag, err error) {
	name = NormalizeTag(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if utf8.RuneCountInString(name) > maxTagRunes {
		return nil, ErrTooLong
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := isAdmin(ctx, tx, callerID)
		if err != nil {
			return err
		}
		if !admin {
			return ErrNotAdmin
		}
		t, err = repo.CreateTag(ctx, tx, name)
		if isDuplicate(err) {
			return ErrTagExists
		}
		return err
	})
	if err != nil {
		return nil, storeErr("create tag", err)
	}
	return t, nil
}

// List returns the whole catalog ordered by name.
func (s *TagService) List(ctx context.Context) ([]domain.Tag, error) {
	out, err := repo.ListTags(ctx, s.DB)
	if err != nil {
		return nil, storeErr("list tags", err)
	}
	return out, nil
}

// Follow replaces the set of tags userID follows with tagIDs. An empty list
// unfollows everything.
func (s *TagService) Follow(ctx context.Context, userID uint, tagIDs []uint) error {
	if userID == 0 {
		return ErrMissingUser
	}
	ids := uniqueIDs(tagIDs)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetUser(ctx, tx, userID); err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}
		tags, err := repo.FindTags(ctx, tx, ids)
		if err != nil {
			return err
		}
		if len(tags) != len(ids) {
			return ErrTagNotFound
		}
		return repo.ReplaceFollowedTags(ctx, tx, userID, tags)
	})
	return storeErr("follow tags", err)
}

// Followed returns the tags userID follows.
func (s *TagService) Followed(ctx context.Context, userID uint) ([]domain.Tag, error) {
	if userID == 0 {
		return nil, ErrMissingUser
	}
	out, err := repo.ListFollowedTags(ctx, s.DB, userID)
	if err != nil {
		return nil, storeErr("followed tags", err)
	}
	return out, nil
}
