package permissionctrl

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"okchat/src/core/permission"
)

// DocumentPathPermission scopes a user's access to a document subtree. A
// NULL knowledge_base_id applies the rule across all knowledge bases.
type DocumentPathPermission struct {
	ID              int64 `gorm:"primaryKey"`
	UserID          int64 `gorm:"not null;index"`
	KnowledgeBaseID *int64
	DocumentPath    string `gorm:"not null"`
	PermissionLevel string `gorm:"not null;default:ALLOW"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByUserID returns all path rules targeting one user in a single query.
func (r *Repository) FindByUserID(ctx context.Context, userID int64) ([]permission.DocumentPathPermission, error) {
	var rules []DocumentPathPermission
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&rules)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to list path permissions: %v", result.Error)
	}

	domainRules := make([]permission.DocumentPathPermission, 0, len(rules))
	for _, rule := range rules {
		domainRules = append(domainRules, permission.DocumentPathPermission{
			UserID:          rule.UserID,
			KnowledgeBaseID: rule.KnowledgeBaseID,
			DocumentPath:    rule.DocumentPath,
			Level:           permission.PermissionLevel(rule.PermissionLevel),
		})
	}

	return domainRules, nil
}
