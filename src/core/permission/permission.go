package permission

import "context"

// PathDelimiter separates segments of hierarchical document paths, e.g.
// "Team > Project > Doc".
const PathDelimiter = " > "

// UserRole is the system-wide role of a user.
type UserRole string

const (
	RoleUser        UserRole = "USER"
	RoleSystemAdmin UserRole = "SYSTEM_ADMIN"
)

// User is the caller summary used for permission evaluation.
type User struct {
	ID    int64
	Email string
	Role  UserRole
}

// MembershipRole is the role a user holds inside one knowledge base.
type MembershipRole string

const (
	MembershipMember MembershipRole = "MEMBER"
	MembershipAdmin  MembershipRole = "ADMIN"
)

// KnowledgeBaseMembership grants a user access to a knowledge base. The
// owning store enforces at most one membership per (user, knowledge base)
// pair.
type KnowledgeBaseMembership struct {
	KnowledgeBaseID int64
	UserID          int64
	Role            MembershipRole
}

// PermissionLevel is the effect of a path rule. Absence of a matching rule
// means allow for knowledge-base members.
type PermissionLevel string

const (
	LevelAllow PermissionLevel = "ALLOW"
	LevelDeny  PermissionLevel = "DENY"
)

// DocumentPathPermission scopes a user's access to a document subtree. A nil
// KnowledgeBaseID applies the rule across all knowledge bases.
type DocumentPathPermission struct {
	UserID          int64
	KnowledgeBaseID *int64
	DocumentPath    string
	Level           PermissionLevel
}

// UserStore resolves callers. GetByID returns (nil, nil) for unknown ids.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}

// MembershipStore returns all knowledge-base memberships of one user.
type MembershipStore interface {
	GetByUserID(ctx context.Context, userID int64) ([]KnowledgeBaseMembership, error)
}

// PathPermissionStore returns all path rules targeting one user.
type PathPermissionStore interface {
	FindByUserID(ctx context.Context, userID int64) ([]DocumentPathPermission, error)
}
