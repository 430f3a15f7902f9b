package membershipctrl

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"okchat/src/core/permission"
)

// KnowledgeBaseMembership rows are unique per (knowledge base, user) pair.
type KnowledgeBaseMembership struct {
	ID              int64  `gorm:"primaryKey"`
	KnowledgeBaseID int64  `gorm:"not null;uniqueIndex:idx_kb_user"`
	UserID          int64  `gorm:"not null;uniqueIndex:idx_kb_user"`
	Role            string `gorm:"not null;default:MEMBER"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByUserID returns all memberships of one user in a single query. The
// permission filter bulk-loads these once per invocation.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) ([]permission.KnowledgeBaseMembership, error) {
	var memberships []KnowledgeBaseMembership
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&memberships)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list memberships: %v", result.Error)
	}

	domainMemberships := make([]permission.KnowledgeBaseMembership, 0, len(memberships))
	for _, m := range memberships {
		domainMemberships = append(domainMemberships, permission.KnowledgeBaseMembership{
			KnowledgeBaseID: m.KnowledgeBaseID,
			UserID:          m.UserID,
			Role:            permission.MembershipRole(m.Role),
		})
	}

	return domainMemberships, nil
}
