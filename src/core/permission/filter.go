package permission

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"okchat/src/core/search"
	"okchat/src/log"
)

// Service filters search results down to the subset a requesting user is
// authorized to see. Evaluation is layered and short-circuiting:
//
//  1. unknown caller: empty result set (fail closed)
//  2. system admin: full input, unfiltered
//  3. no membership in the result's knowledge base: exclude (default deny)
//  4. knowledge-base admin: include, path rules do not apply
//  5. path ACL with longest-prefix matching: include unless the most
//     specific matching rule denies (default allow inside a knowledge base)
//
// The asymmetry between 3 and 5 is deliberate: membership is the hard
// boundary, path rules only carve out exceptions within it.
type Service struct {
	users       UserStore
	memberships MembershipStore
	permissions PathPermissionStore
}

func NewService(users UserStore, memberships MembershipStore, permissions PathPermissionStore) *Service {
	return &Service{
		users:       users,
		memberships: memberships,
		permissions: permissions,
	}
}

// FilterByUser evaluates the layered policy over a batch of results for one
// user. Memberships and path rules are bulk-fetched once per invocation; the
// per-result pass is pure computation over the fetched data.
func (s *Service) FilterByUser(ctx context.Context, results []search.SearchResult, userID int64) ([]search.SearchResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %d: %w", userID, err)
	}
	if user == nil {
		log.Info("filtering for unknown user, returning empty set", "userId", userID)
		return []search.SearchResult{}, nil
	}

	if user.Role == RoleSystemAdmin {
		return results, nil
	}

	memberships, rules, err := s.fetchContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	membershipByKB := make(map[int64]KnowledgeBaseMembership, len(memberships))
	for _, m := range memberships {
		membershipByKB[m.KnowledgeBaseID] = m
	}

	filtered := make([]search.SearchResult, 0, len(results))
	for _, result := range results {
		membership, ok := membershipByKB[result.KnowledgeBaseID]
		if !ok {
			continue
		}
		if membership.Role == MembershipAdmin {
			filtered = append(filtered, result)
			continue
		}
		if allowedByPathRules(rules, result.KnowledgeBaseID, result.Path) {
			filtered = append(filtered, result)
		}
	}

	return filtered, nil
}

// fetchContext bulk-loads the user's memberships and path rules in two
// concurrent calls, never one call per result.
func (s *Service) fetchContext(ctx context.Context, userID int64) ([]KnowledgeBaseMembership, []DocumentPathPermission, error) {
	var (
		wg             sync.WaitGroup
		memberships    []KnowledgeBaseMembership
		rules          []DocumentPathPermission
		membershipsErr error
		rulesErr       error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		memberships, membershipsErr = s.memberships.GetByUserID(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		rules, rulesErr = s.permissions.FindByUserID(ctx, userID)
	}()
	wg.Wait()

	if membershipsErr != nil {
		return nil, nil, fmt.Errorf("failed to fetch memberships for user %d: %w", userID, membershipsErr)
	}
	if rulesErr != nil {
		return nil, nil, fmt.Errorf("failed to fetch path permissions for user %d: %w", userID, rulesErr)
	}
	return memberships, rules, nil
}

// allowedByPathRules applies the path ACL for a member-role user. Blank
// paths are root-level documents and always allowed. Otherwise the most
// specific matching rule decides; no matching rule means allow.
func allowedByPathRules(rules []DocumentPathPermission, knowledgeBaseID int64, path string) bool {
	if path == "" {
		return true
	}
	rule := mostSpecificRule(rules, knowledgeBaseID, path)
	if rule == nil {
		return true
	}
	return rule.Level != LevelDeny
}

// mostSpecificRule selects the matching rule with the longest DocumentPath.
// At equal length a knowledge-base-scoped rule wins over a global one.
func mostSpecificRule(rules []DocumentPathPermission, knowledgeBaseID int64, path string) *DocumentPathPermission {
	var best *DocumentPathPermission
	for i := range rules {
		rule := &rules[i]
		if rule.KnowledgeBaseID != nil && *rule.KnowledgeBaseID != knowledgeBaseID {
			continue
		}
		if !pathMatches(path, rule.DocumentPath) {
			continue
		}
		if best == nil {
			best = rule
			continue
		}
		switch {
		case len(rule.DocumentPath) > len(best.DocumentPath):
			best = rule
		case len(rule.DocumentPath) == len(best.DocumentPath) &&
			best.KnowledgeBaseID == nil && rule.KnowledgeBaseID != nil:
			best = rule
		}
	}
	return best
}

// pathMatches reports whether rulePath covers path: exact match or a proper
// ancestor along the segment delimiter. "Team > Pro" never matches
// "Team > Project".
func pathMatches(path, rulePath string) bool {
	if rulePath == "" {
		return false
	}
	if path == rulePath {
		return true
	}
	return strings.HasPrefix(path, rulePath+PathDelimiter)
}
