package ostium

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/relation"
	"github.com/ostium-io/ostium/resource"
	"github.com/ostium-io/ostium/role"
	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/sec"
	"github.com/ostium-io/ostium/store/memory"
	"github.com/ostium-io/ostium/token"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *memory.Store) {
	t.Helper()
	s := memory.New()
	eng, err := NewEngine(append([]Option{WithStore(s)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return eng, s
}

// accountDescriptor locks the type down and opens it back up selectively.
func accountDescriptor() *resource.Descriptor {
	return &resource.Descriptor{
		Name:              "account",
		DefaultPermission: sec.Deny,
		Rules: []resource.Spec{
			{PrincipalType: sec.PrincipalRole, PrincipalID: sec.RoleEveryone, Permission: sec.Deny},
			{PrincipalType: sec.PrincipalRole, PrincipalID: sec.RoleOwner, Permission: sec.Allow},
		},
		Properties: map[string]resource.Property{
			"find": {Aliases: []string{"all", "findById"}},
		},
	}
}

func TestNewEngine_RequiresStore(t *testing.T) {
	if _, err := NewEngine(); !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("got %v, want ErrStoreRequired", err)
	}
}

func TestCheckAccess_InvalidRequest(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := eng.CheckAccess(ctx, nil); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("nil context: got %v", err)
	}
	if _, err := eng.CheckAccess(ctx, NewAccessContext("", "", "", "")); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("missing resource type: got %v", err)
	}

	actx := NewAccessContext("account", "", "", "")
	actx.AccessType = "BOGUS"
	if _, err := eng.CheckAccess(ctx, actx); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("bad access type: got %v", err)
	}
}

func TestCheckAccess_DefaultAllow(t *testing.T) {
	eng, _ := newTestEngine(t)

	result, err := eng.CheckAccess(context.Background(), NewAccessContext("widget", "", "", ""))
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Permission != sec.Allow {
		t.Fatalf("no rules, no descriptor: got %s, want ALLOW", result.Permission)
	}
}

func TestCheckAccess_DescriptorDefault(t *testing.T) {
	eng, _ := newTestEngine(t, WithResources(&resource.Descriptor{
		Name:              "vault",
		DefaultPermission: sec.Deny,
	}))

	result, err := eng.CheckAccess(context.Background(), NewAccessContext("vault", "", "", ""))
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatalf("descriptor default should deny, got %s", result.Permission)
	}
}

func TestCheckAccess_ConfigDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultPermission = sec.Deny
	eng, _ := newTestEngine(t, WithConfig(cfg))

	result, err := eng.CheckAccess(context.Background(), NewAccessContext("widget", "", "", ""))
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatalf("configured default should deny, got %s", result.Permission)
	}
}

func TestCheckAccess_OwnerBeatsEveryone(t *testing.T) {
	eng, s := newTestEngine(t, WithResources(accountDescriptor()))
	ctx := context.Background()

	_ = s.CreateRelation(ctx, &relation.Tuple{
		ID:          id.NewRelationID(),
		ObjectType:  "account",
		ObjectID:    "a1",
		Relation:    relation.Owner,
		SubjectType: "user",
		SubjectID:   "u1",
		CreatedAt:   time.Now(),
	})

	owner := NewAccessContext("account", "a1", "find", sec.Read)
	owner.AddPrincipal(sec.PrincipalUser, "u1", "")
	result, err := eng.CheckAccess(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("owner should be allowed, got %s", result.Permission)
	}

	stranger := NewAccessContext("account", "a1", "find", sec.Read)
	stranger.AddPrincipal(sec.PrincipalUser, "u2", "")
	result, err = eng.CheckAccess(ctx, stranger)
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatalf("stranger should be denied, got %s", result.Permission)
	}
}

func TestCheckAccess_DynamicRuleOverStatic(t *testing.T) {
	eng, _ := newTestEngine(t, WithResources(accountDescriptor()))
	ctx := context.Background()

	err := eng.CreateRule(ctx, &rule.Rule{
		ResourceType:  "account",
		Property:      "find",
		AccessType:    sec.Read,
		PrincipalType: sec.PrincipalUser,
		PrincipalID:   "u3",
		Permission:    sec.Allow,
	})
	if err != nil {
		t.Fatal(err)
	}

	actx := NewAccessContext("account", "a1", "find", sec.Read)
	actx.AddPrincipal(sec.PrincipalUser, "u3", "")
	result, err := eng.CheckAccess(ctx, actx)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("user rule should outrank the $everyone deny, got %s", result.Permission)
	}
}

func TestCheckAccess_AliasMatchesPropertyRule(t *testing.T) {
	eng, _ := newTestEngine(t, WithResources(accountDescriptor()))
	ctx := context.Background()

	// Rule names the alias; the check names the property.
	err := eng.CreateRule(ctx, &rule.Rule{
		ResourceType:  "account",
		Property:      "all",
		AccessType:    sec.Read,
		PrincipalType: sec.PrincipalUser,
		PrincipalID:   "u1",
		Permission:    sec.Allow,
	})
	if err != nil {
		t.Fatal(err)
	}

	actx := NewAccessContext("account", "a1", "find", sec.Read)
	actx.AddPrincipal(sec.PrincipalUser, "u1", "")
	result, err := eng.CheckAccess(ctx, actx)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("alias rule should apply, got %s", result.Permission)
	}
}

func TestCheckAccess_NamedRole(t *testing.T) {
	eng, _ := newTestEngine(t, WithResources(accountDescriptor()))
	ctx := context.Background()

	r := &role.Role{Name: "editors"}
	if err := eng.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.MapPrincipal(ctx, r.ID, sec.PrincipalUser, "u1"); err != nil {
		t.Fatal(err)
	}
	err := eng.CreateRule(ctx, &rule.Rule{
		ResourceType:  "account",
		PrincipalType: sec.PrincipalRole,
		PrincipalID:   "editors",
		Permission:    sec.Allow,
	})
	if err != nil {
		t.Fatal(err)
	}

	member := NewAccessContext("account", "a1", "find", sec.Read)
	member.AddPrincipal(sec.PrincipalUser, "u1", "")
	result, err := eng.CheckAccess(ctx, member)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("editor should be allowed, got %s", result.Permission)
	}

	outsider := NewAccessContext("account", "a1", "find", sec.Read)
	outsider.AddPrincipal(sec.PrincipalUser, "u9", "")
	result, err = eng.CheckAccess(ctx, outsider)
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatalf("non-member should be denied, got %s", result.Permission)
	}
}

func TestCheckAccess_ResolverErrorFailsCheck(t *testing.T) {
	eng, _ := newTestEngine(t,
		WithRoleResolver("flaky", func(_ context.Context, _ *Engine, _ *AccessContext) (bool, error) {
			return false, errors.New("backend down")
		}),
	)
	ctx := context.Background()

	err := eng.CreateRule(ctx, &rule.Rule{
		ResourceType:  "account",
		PrincipalType: sec.PrincipalRole,
		PrincipalID:   "flaky",
		Permission:    sec.Allow,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = eng.CheckAccess(ctx, NewAccessContext("account", "a1", "", ""))
	if !errors.Is(err, ErrRoleResolution) {
		t.Fatalf("got %v, want ErrRoleResolution", err)
	}
}

func TestCheckAccess_AuditWritesEntry(t *testing.T) {
	eng, s := newTestEngine(t, WithResources(&resource.Descriptor{
		Name: "ledger",
		Rules: []resource.Spec{
			{PrincipalType: sec.PrincipalRole, PrincipalID: sec.RoleEveryone, Permission: sec.Audit},
		},
	}))
	ctx := context.Background()

	actx := NewAccessContext("ledger", "l1", "find", sec.Read)
	actx.AddPrincipal(sec.PrincipalUser, "u1", "")
	result, err := eng.CheckAccess(ctx, actx)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Permission != sec.Audit {
		t.Fatalf("got %s, want AUDIT (allowed)", result.Permission)
	}

	entries, err := s.QueryEntries(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(entries))
	}
	e := entries[0]
	if e.ResourceType != "ledger" || e.Permission != sec.Audit || !e.Allowed {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.PrincipalType != sec.PrincipalUser || e.PrincipalID != "u1" {
		t.Fatalf("entry should carry the first principal, got %s %s", e.PrincipalType, e.PrincipalID)
	}
}

func TestCheckAccess_AuditAll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuditAll = true
	eng, s := newTestEngine(t, WithConfig(cfg))
	ctx := context.Background()

	if _, err := eng.CheckAccess(ctx, NewAccessContext("widget", "", "", "")); err != nil {
		t.Fatal(err)
	}
	entries, err := s.QueryEntries(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(entries))
	}
}

func TestCheckAccessForToken(t *testing.T) {
	eng, _ := newTestEngine(t, WithResources(&resource.Descriptor{
		Name:              "report",
		DefaultPermission: sec.Deny,
	}))
	ctx := context.Background()

	err := eng.CreateRule(ctx, &rule.Rule{
		ResourceType:  "report",
		AccessType:    sec.Read,
		PrincipalType: sec.PrincipalScope,
		PrincipalID:   "reports:read",
		Permission:    sec.Allow,
	})
	if err != nil {
		t.Fatal(err)
	}

	scoped := &token.Token{ID: id.NewTokenID(), UserID: "u1", Scopes: []string{"reports:read"}}
	result, err := eng.CheckAccessForToken(ctx, scoped, "report", "r1", "find", sec.Read)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("scoped token should be allowed, got %s", result.Permission)
	}

	bare := &token.Token{ID: id.NewTokenID(), UserID: "u1"}
	result, err = eng.CheckAccessForToken(ctx, bare, "report", "r1", "find", sec.Read)
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatalf("token without the scope should be denied, got %s", result.Permission)
	}
}

func TestCheckAccessForCredential_MissingTokenIsAnonymous(t *testing.T) {
	eng, _ := newTestEngine(t, WithResources(&resource.Descriptor{
		Name:              "landing",
		DefaultPermission: sec.Deny,
		Rules: []resource.Spec{
			{PrincipalType: sec.PrincipalRole, PrincipalID: sec.RoleUnauthenticated, Permission: sec.Allow},
		},
	}))

	result, err := eng.CheckAccessForCredential(context.Background(), id.NewTokenID(), "landing", "", "", sec.Read)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("missing credential should degrade to anonymous, got %s", result.Permission)
	}
}

func TestCheckAccessForCredential_KnownToken(t *testing.T) {
	eng, s := newTestEngine(t, WithResources(accountDescriptor()))
	ctx := context.Background()

	tok := &token.Token{ID: id.NewTokenID(), UserID: "u1", CreatedAt: time.Now()}
	if err := s.CreateToken(ctx, tok); err != nil {
		t.Fatal(err)
	}
	_ = s.CreateRelation(ctx, &relation.Tuple{
		ID:          id.NewRelationID(),
		ObjectType:  "account",
		ObjectID:    "a1",
		Relation:    relation.Owner,
		SubjectType: "user",
		SubjectID:   "u1",
		CreatedAt:   time.Now(),
	})

	result, err := eng.CheckAccessForCredential(ctx, tok.ID, "account", "a1", "find", sec.Read)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("credential owner should be allowed, got %s", result.Permission)
	}
}

func TestCheckAccess_CancellationSurfacesAsContextError(t *testing.T) {
	eng, _ := newTestEngine(t,
		WithRoleResolver("slow", func(ctx context.Context, _ *Engine, _ *AccessContext) (bool, error) {
			return false, ctx.Err()
		}),
	)
	bg := context.Background()

	err := eng.CreateRule(bg, &rule.Rule{
		ResourceType:  "account",
		PrincipalType: sec.PrincipalRole,
		PrincipalID:   "slow",
		Permission:    sec.Allow,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(bg)
	cancel()
	_, err = eng.CheckAccess(ctx, NewAccessContext("account", "a1", "", ""))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestCheckPermission_StaticDenyShortCircuits(t *testing.T) {
	eng, _ := newTestEngine(t, WithResources(&resource.Descriptor{
		Name: "secrets",
		Rules: []resource.Spec{
			{PrincipalType: sec.PrincipalUser, PrincipalID: "u1", Permission: sec.Deny},
		},
	}))

	result, err := eng.CheckPermission(context.Background(), sec.PrincipalUser, "u1", "secrets", "find", sec.Read)
	if err != nil {
		t.Fatal(err)
	}
	if result.Permission != sec.Deny {
		t.Fatalf("got %s, want DENY", result.Permission)
	}
}

func TestCheckPermission_StaticRoleRulesApply(t *testing.T) {
	// A resource-wide $everyone DENY must reach principal queries even
	// though CheckPermission never resolves role membership: static
	// rules resolve in full, as declared on the descriptor.
	eng, _ := newTestEngine(t, WithResources(&resource.Descriptor{
		Name: "secrets",
		Rules: []resource.Spec{
			{PrincipalType: sec.PrincipalRole, PrincipalID: sec.RoleEveryone, Permission: sec.Deny},
		},
	}))

	result, err := eng.CheckPermission(context.Background(), sec.PrincipalUser, "u1", "secrets", "find", sec.Read)
	if err != nil {
		t.Fatal(err)
	}
	if result.Permission != sec.Deny || result.Allowed {
		t.Fatalf("got %s, want DENY", result.Permission)
	}
}

func TestCheckScopePermission(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	err := eng.CreateRule(ctx, &rule.Rule{
		ResourceType:  "report",
		AccessType:    sec.Read,
		PrincipalType: sec.PrincipalScope,
		PrincipalID:   "reports:read",
		Permission:    sec.Allow,
	})
	if err != nil {
		t.Fatal(err)
	}

	result, err := eng.CheckScopePermission(ctx, "reports:read", "report", "find", sec.Read)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("scope should be allowed, got %s", result.Permission)
	}
}

func TestEnforce(t *testing.T) {
	eng, _ := newTestEngine(t, WithResources(&resource.Descriptor{
		Name:              "vault",
		DefaultPermission: sec.Deny,
	}))

	err := eng.Enforce(context.Background(), NewAccessContext("vault", "", "", ""))
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("got %v, want ErrAccessDenied", err)
	}
}

func TestBuildStaticRules(t *testing.T) {
	eng, _ := newTestEngine(t, WithResources(&resource.Descriptor{
		Name: "account",
		Rules: []resource.Spec{
			{PrincipalType: sec.PrincipalRole, PrincipalID: sec.RoleEveryone, Permission: sec.Deny},
		},
		Properties: map[string]resource.Property{
			"find": {Rules: []resource.Spec{
				{PrincipalType: sec.PrincipalRole, PrincipalID: sec.RoleEveryone, Permission: sec.Allow},
			}},
			"destroy": {Rules: []resource.Spec{
				{PrincipalType: sec.PrincipalRole, PrincipalID: sec.RoleEveryone, Permission: sec.Deny},
			}},
		},
	}))

	rules := eng.BuildStaticRules("account", "find")
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want resource rule + find rule", len(rules))
	}
	for _, r := range rules {
		if !r.IsStatic() {
			t.Fatal("synthesized rules must carry the nil ID")
		}
	}

	// Wildcard lookups yield resource-level rules only; a single
	// property's DENY must not color the whole type.
	rules = eng.BuildStaticRules("account", "")
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want the resource rule alone", len(rules))
	}

	if got := eng.BuildStaticRules("unknown", ""); got != nil {
		t.Fatalf("unknown type should build nothing, got %d", len(got))
	}
}

func TestCreateRule_Validation(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	err := eng.CreateRule(ctx, &rule.Rule{ResourceType: "account", PrincipalType: "BOGUS", PrincipalID: "x"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("got %v, want ErrInvalidRequest", err)
	}

	r := &rule.Rule{
		ResourceType:  "account",
		PrincipalType: sec.PrincipalUser,
		PrincipalID:   "u1",
		Permission:    sec.Allow,
	}
	if err := eng.CreateRule(ctx, r); err != nil {
		t.Fatal(err)
	}
	if r.ID.IsNil() {
		t.Fatal("expected an assigned ID")
	}
	if r.Property != sec.All || r.AccessType != sec.AnyAccess {
		t.Fatalf("expected normalized patterns, got %q %q", r.Property, r.AccessType)
	}
}
