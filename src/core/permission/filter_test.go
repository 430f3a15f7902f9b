package permission_test

import (
	"context"
	"errors"
	"testing"

	"okchat/src/core/permission"
	"okchat/src/core/search"
)

type fakeUserStore struct {
	users map[int64]*permission.User
	err   error
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*permission.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

type fakeMembershipStore struct {
	memberships []permission.KnowledgeBaseMembership
	err         error
}

func (f *fakeMembershipStore) GetByUserID(ctx context.Context, userID int64) ([]permission.KnowledgeBaseMembership, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.memberships, nil
}

type fakePermissionStore struct {
	rules []permission.DocumentPathPermission
	err   error
}

func (f *fakePermissionStore) FindByUserID(ctx context.Context, userID int64) ([]permission.DocumentPathPermission, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rules, nil
}

func result(id string, kbID int64, path string) search.SearchResult {
	return search.SearchResult{
		ID:              id,
		KnowledgeBaseID: kbID,
		Path:            path,
		Score:           search.Score{Value: 0.5, Kind: search.ScoreKindCombined},
	}
}

func kbScoped(kbID int64) *int64 { return &kbID }

func member(kbID int64) permission.KnowledgeBaseMembership {
	return permission.KnowledgeBaseMembership{KnowledgeBaseID: kbID, UserID: 1, Role: permission.MembershipMember}
}

func admin(kbID int64) permission.KnowledgeBaseMembership {
	return permission.KnowledgeBaseMembership{KnowledgeBaseID: kbID, UserID: 1, Role: permission.MembershipAdmin}
}

func denyRule(kbID *int64, path string) permission.DocumentPathPermission {
	return permission.DocumentPathPermission{UserID: 1, KnowledgeBaseID: kbID, DocumentPath: path, Level: permission.LevelDeny}
}

func allowRule(kbID *int64, path string) permission.DocumentPathPermission {
	return permission.DocumentPathPermission{UserID: 1, KnowledgeBaseID: kbID, DocumentPath: path, Level: permission.LevelAllow}
}

func newFilterService(user *permission.User, memberships []permission.KnowledgeBaseMembership, rules []permission.DocumentPathPermission) *permission.Service {
	users := map[int64]*permission.User{}
	if user != nil {
		users[user.ID] = user
	}
	return permission.NewService(
		&fakeUserStore{users: users},
		&fakeMembershipStore{memberships: memberships},
		&fakePermissionStore{rules: rules},
	)
}

func TestFilterByUserUnknownUserFailsClosed(t *testing.T) {
	svc := newFilterService(nil, nil, nil)

	filtered, err := svc.FilterByUser(context.Background(), []search.SearchResult{result("a", 1, "")}, 42)
	if err != nil {
		t.Fatalf("FilterByUser() error = %v", err)
	}
	if len(filtered) != 0 {
		t.Errorf("got %d results for unknown user, want 0", len(filtered))
	}
}

func TestFilterByUserSystemAdminBypassesEverything(t *testing.T) {
	// No memberships, and a deny rule that would otherwise match.
	svc := newFilterService(
		&permission.User{ID: 1, Role: permission.RoleSystemAdmin},
		nil,
		[]permission.DocumentPathPermission{denyRule(nil, "A")},
	)

	in := []search.SearchResult{
		result("a", 1, "A > B"),
		result("b", 2, ""),
	}
	filtered, err := svc.FilterByUser(context.Background(), in, 1)
	if err != nil {
		t.Fatalf("FilterByUser() error = %v", err)
	}
	if len(filtered) != len(in) {
		t.Errorf("system admin got %d of %d results, want all", len(filtered), len(in))
	}
}

func TestFilterByUserMembershipIsTheBoundary(t *testing.T) {
	svc := newFilterService(
		&permission.User{ID: 1, Role: permission.RoleUser},
		[]permission.KnowledgeBaseMembership{member(5)},
		nil,
	)

	in := []search.SearchResult{
		result("in-kb", 5, "Docs"),
		result("other-kb", 6, "Docs"),
	}
	filtered, err := svc.FilterByUser(context.Background(), in, 1)
	if err != nil {
		t.Fatalf("FilterByUser() error = %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "in-kb" {
		t.Errorf("filtered = %+v, want only the result from knowledge base 5", filtered)
	}
}

func TestFilterByUserKnowledgeBaseAdminIgnoresPathRules(t *testing.T) {
	svc := newFilterService(
		&permission.User{ID: 1, Role: permission.RoleUser},
		[]permission.KnowledgeBaseMembership{admin(5)},
		[]permission.DocumentPathPermission{denyRule(kbScoped(5), "Secret")},
	)

	filtered, err := svc.FilterByUser(context.Background(), []search.SearchResult{result("a", 5, "Secret > Plans")}, 1)
	if err != nil {
		t.Fatalf("FilterByUser() error = %v", err)
	}
	if len(filtered) != 1 {
		t.Errorf("knowledge-base admin was denied by a path rule, want access")
	}
}

func TestFilterByUserPathRules(t *testing.T) {
	tests := []struct {
		name  string
		rules []permission.DocumentPathPermission
		path  string
		want  bool
	}{
		{
			name: "no rules allows",
			path: "A > B > C",
			want: true,
		},
		{
			name: "blank path always allowed",
			rules: []permission.DocumentPathPermission{
				denyRule(nil, "A"),
			},
			path: "",
			want: true,
		},
		{
			name: "deny at ancestor excludes descendants",
			rules: []permission.DocumentPathPermission{
				denyRule(nil, "A"),
			},
			path: "A > B > C",
			want: false,
		},
		{
			name: "deny at ancestor excludes exact node",
			rules: []permission.DocumentPathPermission{
				denyRule(nil, "A"),
			},
			path: "A",
			want: false,
		},
		{
			name: "deeper allow overrides shallow deny",
			rules: []permission.DocumentPathPermission{
				denyRule(nil, "A"),
				allowRule(nil, "A > B"),
			},
			path: "A > B > C",
			want: true,
		},
		{
			name: "deeper deny overrides shallow allow",
			rules: []permission.DocumentPathPermission{
				allowRule(nil, "A"),
				denyRule(nil, "A > B"),
			},
			path: "A > B",
			want: false,
		},
		{
			name: "segment boundary prevents sibling bleed",
			rules: []permission.DocumentPathPermission{
				denyRule(nil, "Team > Pro"),
			},
			path: "Team > Project",
			want: true,
		},
		{
			name: "rule scoped to another knowledge base is ignored",
			rules: []permission.DocumentPathPermission{
				denyRule(kbScoped(9), "A"),
			},
			path: "A > B",
			want: true,
		},
		{
			name: "scoped rule beats global at equal depth",
			rules: []permission.DocumentPathPermission{
				denyRule(nil, "A > B"),
				allowRule(kbScoped(5), "A > B"),
			},
			path: "A > B > C",
			want: true,
		},
		{
			name: "scoped rule beats global regardless of slice order",
			rules: []permission.DocumentPathPermission{
				allowRule(kbScoped(5), "A > B"),
				denyRule(nil, "A > B"),
			},
			path: "A > B > C",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFilterService(
				&permission.User{ID: 1, Role: permission.RoleUser},
				[]permission.KnowledgeBaseMembership{member(5)},
				tt.rules,
			)

			filtered, err := svc.FilterByUser(context.Background(), []search.SearchResult{result("doc", 5, tt.path)}, 1)
			if err != nil {
				t.Fatalf("FilterByUser() error = %v", err)
			}
			got := len(filtered) == 1
			if got != tt.want {
				t.Errorf("path %q with rules %+v: included = %v, want %v", tt.path, tt.rules, got, tt.want)
			}
		})
	}
}

func TestFilterByUserStoreErrorsPropagate(t *testing.T) {
	storeErr := errors.New("connection reset")

	t.Run("user store", func(t *testing.T) {
		svc := permission.NewService(
			&fakeUserStore{err: storeErr},
			&fakeMembershipStore{},
			&fakePermissionStore{},
		)
		if _, err := svc.FilterByUser(context.Background(), nil, 1); !errors.Is(err, storeErr) {
			t.Errorf("error = %v, want wrapped store error", err)
		}
	})

	t.Run("membership store", func(t *testing.T) {
		svc := permission.NewService(
			&fakeUserStore{users: map[int64]*permission.User{1: {ID: 1, Role: permission.RoleUser}}},
			&fakeMembershipStore{err: storeErr},
			&fakePermissionStore{},
		)
		if _, err := svc.FilterByUser(context.Background(), []search.SearchResult{result("a", 1, "")}, 1); !errors.Is(err, storeErr) {
			t.Errorf("error = %v, want wrapped store error", err)
		}
	})

	t.Run("permission store", func(t *testing.T) {
		svc := permission.NewService(
			&fakeUserStore{users: map[int64]*permission.User{1: {ID: 1, Role: permission.RoleUser}}},
			&fakeMembershipStore{},
			&fakePermissionStore{err: storeErr},
		)
		if _, err := svc.FilterByUser(context.Background(), []search.SearchResult{result("a", 1, "")}, 1); !errors.Is(err, storeErr) {
			t.Errorf("error = %v, want wrapped store error", err)
		}
	})
}
