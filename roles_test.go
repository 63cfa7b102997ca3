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
	"github.com/ostium-io/ostium/sec"
	"github.com/ostium-io/ostium/store/memory"
)

func userContext(uid, resourceType, resourceID string) *AccessContext {
	actx := NewAccessContext(resourceType, resourceID, "", "")
	if uid != "" {
		actx.AddPrincipal(sec.PrincipalUser, uid, "")
	}
	return actx
}

func mustTuple(t *testing.T, s *memory.Store, objType, objID, rel, subjType, subjID string) {
	t.Helper()
	err := s.CreateRelation(context.Background(), &relation.Tuple{
		ID:          id.NewRelationID(),
		ObjectType:  objType,
		ObjectID:    objID,
		Relation:    rel,
		SubjectType: subjType,
		SubjectID:   subjID,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestInRole_Builtins(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	authed := userContext("u1", "account", "a1")
	anon := userContext("", "account", "a1")

	cases := []struct {
		roleID string
		actx   *AccessContext
		want   bool
	}{
		{sec.RoleEveryone, authed, true},
		{sec.RoleEveryone, anon, true},
		{sec.RoleAuthenticated, authed, true},
		{sec.RoleAuthenticated, anon, false},
		{sec.RoleUnauthenticated, authed, false},
		{sec.RoleUnauthenticated, anon, true},
	}
	for _, tc := range cases {
		held, err := eng.InRole(ctx, tc.roleID, tc.actx)
		if err != nil {
			t.Fatalf("%s: %v", tc.roleID, err)
		}
		if held != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.roleID, held, tc.want)
		}
	}
}

func TestInRole_OwnerViaTuple(t *testing.T) {
	eng, s := newTestEngine(t)
	ctx := context.Background()

	mustTuple(t, s, "account", "a1", relation.Owner, "user", "u1")

	held, err := eng.InRole(ctx, sec.RoleOwner, userContext("u1", "account", "a1"))
	if err != nil {
		t.Fatal(err)
	}
	if !held {
		t.Fatal("tuple owner should hold $owner")
	}

	held, err = eng.InRole(ctx, sec.RoleOwner, userContext("u2", "account", "a1"))
	if err != nil {
		t.Fatal(err)
	}
	if held {
		t.Fatal("non-owner should not hold $owner")
	}
}

func TestInRole_SelfOwnership(t *testing.T) {
	eng, _ := newTestEngine(t, WithResources(&resource.Descriptor{
		Name:    "user",
		OwnedBy: "user",
	}))

	held, err := eng.InRole(context.Background(), sec.RoleOwner, userContext("u1", "user", "u1"))
	if err != nil {
		t.Fatal(err)
	}
	if !held {
		t.Fatal("a user should own their own record")
	}
}

func TestInRole_OwnerNeedsInstance(t *testing.T) {
	eng, s := newTestEngine(t)
	mustTuple(t, s, "account", "a1", relation.Owner, "user", "u1")

	// Type-level checks have no instance to own.
	held, err := eng.InRole(context.Background(), sec.RoleOwner, userContext("u1", "account", ""))
	if err != nil {
		t.Fatal(err)
	}
	if held {
		t.Fatal("$owner must not hold without a resource ID")
	}
}

func TestInRole_RelatedTraversesGraph(t *testing.T) {
	eng, s := newTestEngine(t)
	ctx := context.Background()

	// u1 -> team t1 -> project p1, two hops.
	mustTuple(t, s, "project", "p1", "parent", "team", "t1")
	mustTuple(t, s, "team", "t1", "member", "user", "u1")

	held, err := eng.InRole(ctx, sec.RoleRelated, userContext("u1", "project", "p1"))
	if err != nil {
		t.Fatal(err)
	}
	if !held {
		t.Fatal("two-hop subject should be related")
	}

	held, err = eng.InRole(ctx, sec.RoleRelated, userContext("u2", "project", "p1"))
	if err != nil {
		t.Fatal(err)
	}
	if held {
		t.Fatal("unconnected subject should not be related")
	}
}

func TestInRole_RelatedDepthLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRelationDepth = 1
	eng, s := newTestEngine(t, WithConfig(cfg))
	ctx := context.Background()

	mustTuple(t, s, "project", "p1", "parent", "team", "t1")
	mustTuple(t, s, "team", "t1", "member", "user", "u1")

	held, err := eng.InRole(ctx, sec.RoleRelated, userContext("u1", "project", "p1"))
	if err != nil {
		t.Fatal(err)
	}
	if held {
		t.Fatal("two hops should be out of reach at depth 1")
	}
}

func TestInRole_NamedRole(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	r := &role.Role{Name: "editors"}
	if err := eng.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.MapPrincipal(ctx, r.ID, sec.PrincipalUser, "u1"); err != nil {
		t.Fatal(err)
	}

	held, err := eng.InRole(ctx, "editors", userContext("u1", "account", "a1"))
	if err != nil {
		t.Fatal(err)
	}
	if !held {
		t.Fatal("mapped user should hold the role")
	}

	held, err = eng.InRole(ctx, "editors", userContext("u2", "account", "a1"))
	if err != nil {
		t.Fatal(err)
	}
	if held {
		t.Fatal("unmapped user should not hold the role")
	}
}

func TestInRole_RolePrincipalMatchesDirectly(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	if err := eng.CreateRole(ctx, &role.Role{Name: "editors"}); err != nil {
		t.Fatal(err)
	}

	actx := NewAccessContext("account", "a1", "", "")
	actx.AddPrincipal(sec.PrincipalRole, "editors", "")
	held, err := eng.InRole(ctx, "editors", actx)
	if err != nil {
		t.Fatal(err)
	}
	if !held {
		t.Fatal("a role principal holds its own role")
	}
}

func TestInRole_NestedRole(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	outer := &role.Role{Name: "staff"}
	inner := &role.Role{Name: "admins"}
	if err := eng.CreateRole(ctx, outer); err != nil {
		t.Fatal(err)
	}
	if err := eng.CreateRole(ctx, inner); err != nil {
		t.Fatal(err)
	}
	// admins are staff; u1 is an admin.
	if _, err := eng.MapPrincipal(ctx, outer.ID, sec.PrincipalRole, "admins"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.MapPrincipal(ctx, inner.ID, sec.PrincipalUser, "u1"); err != nil {
		t.Fatal(err)
	}

	held, err := eng.InRole(ctx, "staff", userContext("u1", "account", "a1"))
	if err != nil {
		t.Fatal(err)
	}
	if !held {
		t.Fatal("admin should hold staff through the nested mapping")
	}
}

func TestInRole_UnknownRoleIsNotHeld(t *testing.T) {
	eng, _ := newTestEngine(t)

	held, err := eng.InRole(context.Background(), "ghosts", userContext("u1", "account", "a1"))
	if err != nil {
		t.Fatal(err)
	}
	if held {
		t.Fatal("an unknown role is simply not held")
	}
}

func TestRegisterRoleResolver_OverridesBuiltin(t *testing.T) {
	eng, _ := newTestEngine(t)
	eng.RegisterRoleResolver(sec.RoleEveryone, func(_ context.Context, _ *Engine, _ *AccessContext) (bool, error) {
		return false, nil
	})

	held, err := eng.InRole(context.Background(), sec.RoleEveryone, userContext("u1", "account", "a1"))
	if err != nil {
		t.Fatal(err)
	}
	if held {
		t.Fatal("registered resolver should replace the built-in")
	}
}

func TestRegisterRoleResolver_ErrorWraps(t *testing.T) {
	eng, _ := newTestEngine(t)
	eng.RegisterRoleResolver("custom", func(_ context.Context, _ *Engine, _ *AccessContext) (bool, error) {
		return false, errors.New("lookup failed")
	})

	_, err := eng.InRole(context.Background(), "custom", userContext("u1", "account", "a1"))
	if !errors.Is(err, ErrRoleResolution) {
		t.Fatalf("got %v, want ErrRoleResolution", err)
	}
}
