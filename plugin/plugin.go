// Package plugin defines the plugin system for Ostium.
// Plugins are notified of lifecycle events (access checked, rule
// created, principal mapped, etc.) and can react: logging, metrics,
// external sync.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/relation"
	"github.com/ostium-io/ostium/role"
	"github.com/ostium-io/ostium/rule"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Check lifecycle hooks
// ──────────────────────────────────────────────────

// BeforeCheck is called before an access check is evaluated.
// The req parameter is *ostium.AccessContext (passed as any to avoid import cycle).
type BeforeCheck interface {
	OnBeforeCheck(ctx context.Context, req any) error
}

// AfterCheck is called after an access check completes.
// The req parameter is *ostium.AccessContext; result is *ostium.Result.
type AfterCheck interface {
	OnAfterCheck(ctx context.Context, req, result any) error
}

// ──────────────────────────────────────────────────
// Rule lifecycle hooks
// ──────────────────────────────────────────────────

// RuleCreated is called after an access rule is created.
type RuleCreated interface {
	OnRuleCreated(ctx context.Context, r *rule.Rule) error
}

// RuleDeleted is called after an access rule is deleted.
type RuleDeleted interface {
	OnRuleDeleted(ctx context.Context, ruleID id.ID) error
}

// ──────────────────────────────────────────────────
// Role lifecycle hooks
// ──────────────────────────────────────────────────

// RoleCreated is called after a role is created.
type RoleCreated interface {
	OnRoleCreated(ctx context.Context, r *role.Role) error
}

// RoleDeleted is called after a role is deleted.
type RoleDeleted interface {
	OnRoleDeleted(ctx context.Context, roleID id.ID) error
}

// PrincipalMapped is called after a principal is mapped into a role.
type PrincipalMapped interface {
	OnPrincipalMapped(ctx context.Context, m *role.Mapping) error
}

// PrincipalUnmapped is called after a principal is removed from a role.
type PrincipalUnmapped interface {
	OnPrincipalUnmapped(ctx context.Context, mappingID id.ID) error
}

// ──────────────────────────────────────────────────
// Relation lifecycle hooks
// ──────────────────────────────────────────────────

// RelationWritten is called after a relation tuple is written.
type RelationWritten interface {
	OnRelationWritten(ctx context.Context, t *relation.Tuple) error
}

// RelationDeleted is called after a relation tuple is deleted.
type RelationDeleted interface {
	OnRelationDeleted(ctx context.Context, relID id.ID) error
}

// ──────────────────────────────────────────────────
// Shutdown hook
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
