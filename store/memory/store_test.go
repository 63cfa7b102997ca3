package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ostium-io/ostium/audit"
	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/relation"
	"github.com/ostium-io/ostium/role"
	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/sec"
	"github.com/ostium-io/ostium/token"
)

func newRule(resourceType, principalID string, perm sec.Permission, createdAt time.Time) *rule.Rule {
	return &rule.Rule{
		ID:            id.NewRuleID(),
		ResourceType:  resourceType,
		Property:      sec.All,
		AccessType:    sec.AnyAccess,
		PrincipalType: sec.PrincipalUser,
		PrincipalID:   principalID,
		Permission:    perm,
		CreatedAt:     createdAt,
	}
}

func TestRuleCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := newRule("account", "u1", sec.Allow, time.Now())
	if err := s.CreateRule(ctx, r); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetRule(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.PrincipalID != "u1" || got.Permission != sec.Allow {
		t.Fatalf("unexpected rule: %+v", got)
	}

	// The store hands back copies, not aliases.
	got.Permission = sec.Deny
	again, err := s.GetRule(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Permission != sec.Allow {
		t.Fatal("mutating a returned rule leaked into the store")
	}

	r.Permission = sec.Deny
	if err := s.UpdateRule(ctx, r); err != nil {
		t.Fatal(err)
	}
	got, err = s.GetRule(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Permission != sec.Deny {
		t.Fatalf("update lost: %s", got.Permission)
	}

	if err := s.DeleteRule(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetRule(ctx, r.ID); !errors.Is(err, rule.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := s.DeleteRule(ctx, r.ID); !errors.Is(err, rule.ErrNotFound) {
		t.Fatalf("double delete: got %v, want ErrNotFound", err)
	}
}

func TestFindRules_FilterAndPagination(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := time.Now()
	for i, pid := range []string{"u1", "u2", "u3"} {
		if err := s.CreateRule(ctx, newRule("account", pid, sec.Allow, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.CreateRule(ctx, newRule("invoice", "u1", sec.Deny, base)); err != nil {
		t.Fatal(err)
	}

	rules, err := s.FindRules(ctx, &rule.Filter{ResourceType: "account"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 3 {
		t.Fatalf("got %d rules, want 3", len(rules))
	}
	// Oldest first.
	if rules[0].PrincipalID != "u1" || rules[2].PrincipalID != "u3" {
		t.Fatalf("unexpected order: %s .. %s", rules[0].PrincipalID, rules[2].PrincipalID)
	}

	page, err := s.FindRules(ctx, &rule.Filter{ResourceType: "account", Limit: 1, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].PrincipalID != "u2" {
		t.Fatalf("unexpected page: %+v", page)
	}

	n, err := s.CountRules(ctx, &rule.Filter{ResourceType: "account"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("got count %d, want 3", n)
	}

	if err := s.DeleteRulesByResource(ctx, "account"); err != nil {
		t.Fatal(err)
	}
	n, err = s.CountRules(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("got %d rules after purge, want 1", n)
	}
}

func TestRoleCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := &role.Role{ID: id.NewRoleID(), Name: "editors", CreatedAt: time.Now()}
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}
	dup := &role.Role{ID: id.NewRoleID(), Name: "editors"}
	if err := s.CreateRole(ctx, dup); !errors.Is(err, role.ErrDuplicate) {
		t.Fatalf("duplicate role name: got %v, want ErrDuplicate", err)
	}

	byName, err := s.GetRoleByName(ctx, "editors")
	if err != nil {
		t.Fatal(err)
	}
	if byName.ID != r.ID {
		t.Fatal("lookup by name returned the wrong role")
	}
	if _, err := s.GetRoleByName(ctx, "ghosts"); !errors.Is(err, role.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	roles, err := s.ListRoles(ctx, &role.ListFilter{Search: "EDIT"})
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 1 {
		t.Fatalf("search should be case-insensitive, got %d", len(roles))
	}
}

func TestDeleteRole_CascadesMappings(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := &role.Role{ID: id.NewRoleID(), Name: "editors"}
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}
	m := &role.Mapping{
		ID:            id.NewMappingID(),
		RoleID:        r.ID,
		PrincipalType: sec.PrincipalUser,
		PrincipalID:   "u1",
		CreatedAt:     time.Now(),
	}
	if err := s.CreateMapping(ctx, m); err != nil {
		t.Fatal(err)
	}

	held, err := s.HasMapping(ctx, r.ID, sec.PrincipalUser, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !held {
		t.Fatal("mapping should exist before delete")
	}

	if err := s.DeleteRole(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	mappings, err := s.ListMappings(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(mappings) != 0 {
		t.Fatalf("mappings should cascade, %d left", len(mappings))
	}
}

func TestCreateMapping_RequiresRole(t *testing.T) {
	s := New()

	err := s.CreateMapping(context.Background(), &role.Mapping{
		ID:            id.NewMappingID(),
		RoleID:        id.NewRoleID(),
		PrincipalType: sec.PrincipalUser,
		PrincipalID:   "u1",
	})
	if !errors.Is(err, role.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestRelationQueries(t *testing.T) {
	s := New()
	ctx := context.Background()

	tup := &relation.Tuple{
		ID:          id.NewRelationID(),
		ObjectType:  "account",
		ObjectID:    "a1",
		Relation:    relation.Owner,
		SubjectType: "user",
		SubjectID:   "u1",
		CreatedAt:   time.Now(),
	}
	if err := s.CreateRelation(ctx, tup); err != nil {
		t.Fatal(err)
	}

	held, err := s.CheckDirectRelation(ctx, "account", "a1", relation.Owner, "user", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !held {
		t.Fatal("direct relation should be found")
	}
	held, err = s.CheckDirectRelation(ctx, "account", "a1", "member", "user", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if held {
		t.Fatal("wrong relation name should not match")
	}

	tuples, err := s.ListObjectTuples(ctx, "account", "a1")
	if err != nil {
		t.Fatal(err)
	}
	if len(tuples) != 1 {
		t.Fatalf("got %d tuples, want 1", len(tuples))
	}

	if err := s.DeleteRelationsByObject(ctx, "account", "a1"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteRelation(ctx, tup.ID); !errors.Is(err, relation.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestFindToken_Expiry(t *testing.T) {
	s := New()
	ctx := context.Background()

	live := &token.Token{ID: id.NewTokenID(), UserID: "u1", TTL: time.Hour, CreatedAt: time.Now()}
	stale := &token.Token{ID: id.NewTokenID(), UserID: "u2", TTL: time.Minute, CreatedAt: time.Now().Add(-time.Hour)}
	for _, tok := range []*token.Token{live, stale} {
		if err := s.CreateToken(ctx, tok); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := s.FindToken(ctx, live.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.FindToken(ctx, stale.ID); !errors.Is(err, token.ErrNotFound) {
		t.Fatalf("expired token: got %v, want ErrNotFound", err)
	}
}

func TestQueryEntries_OrderAndPurge(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 3; i++ {
		err := s.WriteEntry(ctx, &audit.Entry{
			ID:            id.NewAuditID(),
			PrincipalType: sec.PrincipalUser,
			PrincipalID:   "u1",
			ResourceType:  "account",
			Permission:    sec.Audit,
			Allowed:       true,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.QueryEntries(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if !entries[0].CreatedAt.After(entries[2].CreatedAt) {
		t.Fatal("entries should come back newest first")
	}

	cutoff := base.Add(90 * time.Second)
	n, err := s.PurgeEntriesBefore(ctx, cutoff)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("purged %d entries, want 2", n)
	}
	entries, err = s.QueryEntries(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries after purge, want 1", len(entries))
	}
}
