package plugin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/role"
	"github.com/ostium-io/ostium/rule"
)

// testPlugin records every event it receives.
type testPlugin struct {
	name string

	beforeChecks int
	afterChecks  int
	rulesCreated []*rule.Rule
	rolesCreated []*role.Role
	rolesDeleted []id.ID
	shutdowns    int

	hookErr error
}

func (p *testPlugin) Name() string { return p.name }

func (p *testPlugin) OnBeforeCheck(_ context.Context, _ any) error {
	p.beforeChecks++
	return p.hookErr
}

func (p *testPlugin) OnAfterCheck(_ context.Context, _, _ any) error {
	p.afterChecks++
	return p.hookErr
}

func (p *testPlugin) OnRuleCreated(_ context.Context, r *rule.Rule) error {
	p.rulesCreated = append(p.rulesCreated, r)
	return p.hookErr
}

func (p *testPlugin) OnRoleCreated(_ context.Context, r *role.Role) error {
	p.rolesCreated = append(p.rolesCreated, r)
	return p.hookErr
}

func (p *testPlugin) OnRoleDeleted(_ context.Context, roleID id.ID) error {
	p.rolesDeleted = append(p.rolesDeleted, roleID)
	return p.hookErr
}

func (p *testPlugin) OnShutdown(_ context.Context) error {
	p.shutdowns++
	return p.hookErr
}

// minimalPlugin implements only the base interface.
type minimalPlugin struct{}

func (minimalPlugin) Name() string { return "minimal" }

func newTestRegistry() *Registry {
	return NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegistry_Dispatch(t *testing.T) {
	r := newTestRegistry()
	p := &testPlugin{name: "recorder"}
	r.Register(p)
	ctx := context.Background()

	r.EmitBeforeCheck(ctx, nil)
	r.EmitAfterCheck(ctx, nil, nil)

	created := &rule.Rule{ID: id.NewRuleID()}
	r.EmitRuleCreated(ctx, created)

	rl := &role.Role{ID: id.NewRoleID(), Name: "editors"}
	r.EmitRoleCreated(ctx, rl)
	r.EmitRoleDeleted(ctx, rl.ID)
	r.EmitShutdown(ctx)

	if p.beforeChecks != 1 || p.afterChecks != 1 {
		t.Fatalf("check hooks: got %d/%d, want 1/1", p.beforeChecks, p.afterChecks)
	}
	if len(p.rulesCreated) != 1 || p.rulesCreated[0] != created {
		t.Fatalf("rule hook: got %+v", p.rulesCreated)
	}
	if len(p.rolesCreated) != 1 || p.rolesCreated[0].Name != "editors" {
		t.Fatalf("role hook: got %+v", p.rolesCreated)
	}
	if len(p.rolesDeleted) != 1 || p.rolesDeleted[0] != rl.ID {
		t.Fatalf("role delete hook: got %+v", p.rolesDeleted)
	}
	if p.shutdowns != 1 {
		t.Fatalf("shutdown hook: got %d, want 1", p.shutdowns)
	}
}

func TestRegistry_MinimalPluginIgnoresEvents(t *testing.T) {
	r := newTestRegistry()
	r.Register(minimalPlugin{})
	ctx := context.Background()

	// None of these may panic for a plugin without hooks.
	r.EmitBeforeCheck(ctx, nil)
	r.EmitAfterCheck(ctx, nil, nil)
	r.EmitRuleCreated(ctx, &rule.Rule{})
	r.EmitRuleDeleted(ctx, id.NewRuleID())
	r.EmitRoleCreated(ctx, &role.Role{})
	r.EmitShutdown(ctx)

	if got := len(r.Plugins()); got != 1 {
		t.Fatalf("got %d plugins, want 1", got)
	}
}

func TestRegistry_HookErrorsAreSwallowed(t *testing.T) {
	r := newTestRegistry()
	failing := &testPlugin{name: "failing", hookErr: errors.New("boom")}
	healthy := &testPlugin{name: "healthy"}
	r.Register(failing)
	r.Register(healthy)

	r.EmitRoleCreated(context.Background(), &role.Role{Name: "editors"})

	// A failing hook must not stop later plugins from being notified.
	if len(healthy.rolesCreated) != 1 {
		t.Fatalf("healthy plugin missed the event, got %d", len(healthy.rolesCreated))
	}
}

func TestRegistry_OrderPreserved(t *testing.T) {
	r := newTestRegistry()
	var order []string
	first := &orderedPlugin{name: "first", order: &order}
	second := &orderedPlugin{name: "second", order: &order}
	r.Register(first)
	r.Register(second)

	r.EmitShutdown(context.Background())

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("got %v, want registration order", order)
	}
}

type orderedPlugin struct {
	name  string
	order *[]string
}

func (p *orderedPlugin) Name() string { return p.name }

func (p *orderedPlugin) OnShutdown(_ context.Context) error {
	*p.order = append(*p.order, p.name)
	return nil
}
