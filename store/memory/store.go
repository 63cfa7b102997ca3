// Package memory provides an in-memory implementation of the Ostium
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ostium-io/ostium/audit"
	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/relation"
	"github.com/ostium-io/ostium/role"
	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/sec"
	"github.com/ostium-io/ostium/token"
)

// Compile-time interface checks.
var (
	_ rule.Store     = (*Store)(nil)
	_ role.Store     = (*Store)(nil)
	_ relation.Store = (*Store)(nil)
	_ token.Store    = (*Store)(nil)
	_ audit.Store    = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all Ostium entities.
type Store struct {
	mu sync.RWMutex

	rules     map[string]*rule.Rule
	roles     map[string]*role.Role
	mappings  map[string]*role.Mapping
	relations map[string]*relation.Tuple
	tokens    map[string]*token.Token
	audits    map[string]*audit.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		rules:     make(map[string]*rule.Rule),
		roles:     make(map[string]*role.Role),
		mappings:  make(map[string]*role.Mapping),
		relations: make(map[string]*relation.Tuple),
		tokens:    make(map[string]*token.Token),
		audits:    make(map[string]*audit.Entry),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Rule Store
// ──────────────────────────────────────────────────

func (s *Store) CreateRule(_ context.Context, r *rule.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[r.ID.String()] = copyRule(r)
	return nil
}

func (s *Store) GetRule(_ context.Context, ruleID id.ID) (*rule.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[ruleID.String()]
	if !ok {
		return nil, fmt.Errorf("rule %s: %w", ruleID, rule.ErrNotFound)
	}
	return copyRule(r), nil
}

func (s *Store) UpdateRule(_ context.Context, r *rule.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[r.ID.String()]; !ok {
		return fmt.Errorf("rule %s: %w", r.ID, rule.ErrNotFound)
	}
	s.rules[r.ID.String()] = copyRule(r)
	return nil
}

func (s *Store) DeleteRule(_ context.Context, ruleID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[ruleID.String()]; !ok {
		return fmt.Errorf("rule %s: %w", ruleID, rule.ErrNotFound)
	}
	delete(s.rules, ruleID.String())
	return nil
}

func (s *Store) FindRules(_ context.Context, filter *rule.Filter) ([]*rule.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*rule.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		if !filter.Matches(r) {
			continue
		}
		result = append(result, copyRule(r))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if filter != nil {
		result = applyPagination(result, filter.Limit, filter.Offset)
	}
	return result, nil
}

func (s *Store) CountRules(ctx context.Context, filter *rule.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, r := range s.rules {
		if filter.Matches(r) {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteRulesByResource(_ context.Context, resourceType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, r := range s.rules {
		if r.ResourceType == resourceType {
			delete(s.rules, key)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Role Store
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.roles {
		if existing.Name == r.Name {
			return fmt.Errorf("role name %q: %w", r.Name, role.ErrDuplicate)
		}
	}
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) GetRole(_ context.Context, roleID id.ID) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID.String()]
	if !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, role.ErrNotFound)
	}
	return copyRole(r), nil
}

func (s *Store) GetRoleByName(_ context.Context, name string) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.Name == name {
			return copyRole(r), nil
		}
	}
	return nil, fmt.Errorf("role name %q: %w", name, role.ErrNotFound)
}

func (s *Store) UpdateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[r.ID.String()]; !ok {
		return fmt.Errorf("role %s: %w", r.ID, role.ErrNotFound)
	}
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) DeleteRole(_ context.Context, roleID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[roleID.String()]; !ok {
		return fmt.Errorf("role %s: %w", roleID, role.ErrNotFound)
	}
	delete(s.roles, roleID.String())
	for key, m := range s.mappings {
		if m.RoleID == roleID {
			delete(s.mappings, key)
		}
	}
	return nil
}

func (s *Store) ListRoles(_ context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*role.Role, 0, len(s.roles))
	for _, r := range s.roles {
		if filter != nil && filter.Search != "" &&
			!strings.Contains(strings.ToLower(r.Name), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, copyRole(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	if filter != nil {
		result = applyPagination(result, filter.Limit, filter.Offset)
	}
	return result, nil
}

func (s *Store) CreateMapping(_ context.Context, m *role.Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[m.RoleID.String()]; !ok {
		return fmt.Errorf("role %s: %w", m.RoleID, role.ErrNotFound)
	}
	s.mappings[m.ID.String()] = copyMapping(m)
	return nil
}

func (s *Store) DeleteMapping(_ context.Context, mappingID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mappings[mappingID.String()]; !ok {
		return fmt.Errorf("mapping %s: %w", mappingID, role.ErrNotFound)
	}
	delete(s.mappings, mappingID.String())
	return nil
}

func (s *Store) ListMappings(_ context.Context, filter *role.MappingFilter) ([]*role.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*role.Mapping, 0, len(s.mappings))
	for _, m := range s.mappings {
		if filter != nil {
			if filter.RoleID != nil && m.RoleID != *filter.RoleID {
				continue
			}
			if filter.PrincipalType != "" && m.PrincipalType != filter.PrincipalType {
				continue
			}
			if filter.PrincipalID != "" && m.PrincipalID != filter.PrincipalID {
				continue
			}
		}
		result = append(result, copyMapping(m))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if filter != nil {
		result = applyPagination(result, filter.Limit, filter.Offset)
	}
	return result, nil
}

func (s *Store) HasMapping(_ context.Context, roleID id.ID, principalType sec.PrincipalType, principalID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.mappings {
		if m.RoleID == roleID && m.PrincipalType == principalType && m.PrincipalID == principalID {
			return true, nil
		}
	}
	return false, nil
}

// ──────────────────────────────────────────────────
// Relation Store
// ──────────────────────────────────────────────────

func (s *Store) CreateRelation(_ context.Context, t *relation.Tuple) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relations[t.ID.String()] = copyTuple(t)
	return nil
}

func (s *Store) DeleteRelation(_ context.Context, relID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.relations[relID.String()]; !ok {
		return fmt.Errorf("relation %s: %w", relID, relation.ErrNotFound)
	}
	delete(s.relations, relID.String())
	return nil
}

func (s *Store) ListRelations(_ context.Context, filter *relation.ListFilter) ([]*relation.Tuple, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*relation.Tuple, 0, len(s.relations))
	for _, t := range s.relations {
		if filter != nil {
			if filter.ObjectType != "" && t.ObjectType != filter.ObjectType {
				continue
			}
			if filter.ObjectID != "" && t.ObjectID != filter.ObjectID {
				continue
			}
			if filter.Relation != "" && t.Relation != filter.Relation {
				continue
			}
			if filter.SubjectType != "" && t.SubjectType != filter.SubjectType {
				continue
			}
			if filter.SubjectID != "" && t.SubjectID != filter.SubjectID {
				continue
			}
		}
		result = append(result, copyTuple(t))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if filter != nil {
		result = applyPagination(result, filter.Limit, filter.Offset)
	}
	return result, nil
}

func (s *Store) CheckDirectRelation(_ context.Context, objectType, objectID, rel, subjectType, subjectID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.relations {
		if t.ObjectType == objectType && t.ObjectID == objectID && t.Relation == rel &&
			t.SubjectType == subjectType && t.SubjectID == subjectID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListObjectTuples(_ context.Context, objectType, objectID string) ([]*relation.Tuple, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*relation.Tuple
	for _, t := range s.relations {
		if t.ObjectType == objectType && t.ObjectID == objectID {
			result = append(result, copyTuple(t))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) DeleteRelationsByObject(_ context.Context, objectType, objectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.relations {
		if t.ObjectType == objectType && t.ObjectID == objectID {
			delete(s.relations, key)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Token Store
// ──────────────────────────────────────────────────

func (s *Store) FindToken(_ context.Context, tokenID id.ID) (*token.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[tokenID.String()]
	if !ok || t.Expired(time.Now()) {
		return nil, fmt.Errorf("token %s: %w", tokenID, token.ErrNotFound)
	}
	return copyToken(t), nil
}

func (s *Store) CreateToken(_ context.Context, t *token.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.ID.String()] = copyToken(t)
	return nil
}

func (s *Store) DeleteToken(_ context.Context, tokenID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[tokenID.String()]; !ok {
		return fmt.Errorf("token %s: %w", tokenID, token.ErrNotFound)
	}
	delete(s.tokens, tokenID.String())
	return nil
}

// ──────────────────────────────────────────────────
// Audit Store
// ──────────────────────────────────────────────────

func (s *Store) WriteEntry(_ context.Context, e *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits[e.ID.String()] = copyEntry(e)
	return nil
}

func (s *Store) GetEntry(_ context.Context, entryID id.ID) (*audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.audits[entryID.String()]
	if !ok {
		return nil, fmt.Errorf("audit entry %s: %w", entryID, audit.ErrNotFound)
	}
	return copyEntry(e), nil
}

func (s *Store) QueryEntries(_ context.Context, filter *audit.QueryFilter) ([]*audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*audit.Entry, 0, len(s.audits))
	for _, e := range s.audits {
		if filter != nil {
			if filter.PrincipalType != "" && e.PrincipalType != filter.PrincipalType {
				continue
			}
			if filter.PrincipalID != "" && e.PrincipalID != filter.PrincipalID {
				continue
			}
			if filter.ResourceType != "" && e.ResourceType != filter.ResourceType {
				continue
			}
			if filter.ResourceID != "" && e.ResourceID != filter.ResourceID {
				continue
			}
			if filter.Permission != "" && e.Permission != filter.Permission {
				continue
			}
			if filter.After != nil && !e.CreatedAt.After(*filter.After) {
				continue
			}
			if filter.Before != nil && !e.CreatedAt.Before(*filter.Before) {
				continue
			}
		}
		result = append(result, copyEntry(e))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter != nil {
		result = applyPagination(result, filter.Limit, filter.Offset)
	}
	return result, nil
}

func (s *Store) PurgeEntriesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, e := range s.audits {
		if e.CreatedAt.Before(cutoff) {
			delete(s.audits, key)
			n++
		}
	}
	return n, nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func applyPagination[T any](items []*T, limit, offset int) []*T {
	if offset >= len(items) {
		return nil
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func copyRule(r *rule.Rule) *rule.Rule {
	c := *r
	return &c
}

func copyRole(r *role.Role) *role.Role {
	c := *r
	if r.Metadata != nil {
		c.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func copyMapping(m *role.Mapping) *role.Mapping {
	c := *m
	return &c
}

func copyTuple(t *relation.Tuple) *relation.Tuple {
	c := *t
	return &c
}

func copyToken(t *token.Token) *token.Token {
	c := *t
	if t.Scopes != nil {
		c.Scopes = append([]string(nil), t.Scopes...)
	}
	return &c
}

func copyEntry(e *audit.Entry) *audit.Entry {
	c := *e
	if e.Metadata != nil {
		c.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
