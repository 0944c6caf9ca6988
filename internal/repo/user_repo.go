// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// Users are provisioned out of band (see the forumd "user add" command) and
// only read by the request path.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// CreateUser inserts a user row. The display name must be unique.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(u).Error
}

// GetUser fetches a user by id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserRole returns the role of user id. An unknown id yields ErrNotFound.
func GetUserRole(ctx context.Context, db *gorm.DB, id uint) (string, error) {
	var role string
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Limit(1).
		Pluck("role", &role)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", ErrNotFound
	}
	return role, nil
}

// ExistingUserIDs returns the subset of ids that belong to real users.
func ExistingUserIDs(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var found []uint
	if err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		out[id] = true
	}
	return out, nil
}
