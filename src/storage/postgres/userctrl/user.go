package userctrl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"okchat/src/core/permission"
)

type User struct {
	ID        int64  `gorm:"primaryKey"`
	Email     string `gorm:"not null;uniqueIndex"`
	Role      string `gorm:"not null;default:USER"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID resolves a user summary. An unknown id returns (nil, nil) so the
// permission filter can fail closed without treating absence as an error.
func (r *Repository) GetByID(ctx context.Context, id int64) (*permission.User, error) {
	var user User
	result := r.db.WithContext(ctx).First(&user, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get user: %v", result.Error)
	}

	return &permission.User{
		ID:    user.ID,
		Email: user.Email,
		Role:  permission.UserRole(user.Role),
	}, nil
}
