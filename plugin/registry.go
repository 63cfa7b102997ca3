package plugin

import (
	"context"
	"log/slog"

	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/relation"
	"github.com/ostium-io/ostium/role"
	"github.com/ostium-io/ostium/rule"
)

// Named entry types pair a hook with the plugin name for logging.

type beforeCheckEntry struct {
	name string
	hook BeforeCheck
}
type afterCheckEntry struct {
	name string
	hook AfterCheck
}
type ruleCreatedEntry struct {
	name string
	hook RuleCreated
}
type ruleDeletedEntry struct {
	name string
	hook RuleDeleted
}
type roleCreatedEntry struct {
	name string
	hook RoleCreated
}
type roleDeletedEntry struct {
	name string
	hook RoleDeleted
}
type principalMappedEntry struct {
	name string
	hook PrincipalMapped
}
type principalUnmappedEntry struct {
	name string
	hook PrincipalUnmapped
}
type relationWrittenEntry struct {
	name string
	hook RelationWritten
}
type relationDeletedEntry struct {
	name string
	hook RelationDeleted
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	beforeCheck       []beforeCheckEntry
	afterCheck        []afterCheckEntry
	ruleCreated       []ruleCreatedEntry
	ruleDeleted       []ruleDeletedEntry
	roleCreated       []roleCreatedEntry
	roleDeleted       []roleDeletedEntry
	principalMapped   []principalMappedEntry
	principalUnmapped []principalUnmappedEntry
	relationWritten   []relationWrittenEntry
	relationDeleted   []relationDeletedEntry
	shutdown          []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeCheck); ok {
		r.beforeCheck = append(r.beforeCheck, beforeCheckEntry{name, h})
	}
	if h, ok := p.(AfterCheck); ok {
		r.afterCheck = append(r.afterCheck, afterCheckEntry{name, h})
	}
	if h, ok := p.(RuleCreated); ok {
		r.ruleCreated = append(r.ruleCreated, ruleCreatedEntry{name, h})
	}
	if h, ok := p.(RuleDeleted); ok {
		r.ruleDeleted = append(r.ruleDeleted, ruleDeletedEntry{name, h})
	}
	if h, ok := p.(RoleCreated); ok {
		r.roleCreated = append(r.roleCreated, roleCreatedEntry{name, h})
	}
	if h, ok := p.(RoleDeleted); ok {
		r.roleDeleted = append(r.roleDeleted, roleDeletedEntry{name, h})
	}
	if h, ok := p.(PrincipalMapped); ok {
		r.principalMapped = append(r.principalMapped, principalMappedEntry{name, h})
	}
	if h, ok := p.(PrincipalUnmapped); ok {
		r.principalUnmapped = append(r.principalUnmapped, principalUnmappedEntry{name, h})
	}
	if h, ok := p.(RelationWritten); ok {
		r.relationWritten = append(r.relationWritten, relationWrittenEntry{name, h})
	}
	if h, ok := p.(RelationDeleted); ok {
		r.relationDeleted = append(r.relationDeleted, relationDeletedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Check event emitters
// ──────────────────────────────────────────────────

// EmitBeforeCheck notifies all plugins that implement BeforeCheck.
func (r *Registry) EmitBeforeCheck(ctx context.Context, req any) {
	for _, e := range r.beforeCheck {
		if err := e.hook.OnBeforeCheck(ctx, req); err != nil {
			r.logHookError("OnBeforeCheck", e.name, err)
		}
	}
}

// EmitAfterCheck notifies all plugins that implement AfterCheck.
func (r *Registry) EmitAfterCheck(ctx context.Context, req, result any) {
	for _, e := range r.afterCheck {
		if err := e.hook.OnAfterCheck(ctx, req, result); err != nil {
			r.logHookError("OnAfterCheck", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Rule event emitters
// ──────────────────────────────────────────────────

// EmitRuleCreated notifies all plugins that implement RuleCreated.
func (r *Registry) EmitRuleCreated(ctx context.Context, rl *rule.Rule) {
	for _, e := range r.ruleCreated {
		if err := e.hook.OnRuleCreated(ctx, rl); err != nil {
			r.logHookError("OnRuleCreated", e.name, err)
		}
	}
}

// EmitRuleDeleted notifies all plugins that implement RuleDeleted.
func (r *Registry) EmitRuleDeleted(ctx context.Context, ruleID id.ID) {
	for _, e := range r.ruleDeleted {
		if err := e.hook.OnRuleDeleted(ctx, ruleID); err != nil {
			r.logHookError("OnRuleDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Role event emitters
// ──────────────────────────────────────────────────

// EmitRoleCreated notifies all plugins that implement RoleCreated.
func (r *Registry) EmitRoleCreated(ctx context.Context, rl *role.Role) {
	for _, e := range r.roleCreated {
		if err := e.hook.OnRoleCreated(ctx, rl); err != nil {
			r.logHookError("OnRoleCreated", e.name, err)
		}
	}
}

// EmitRoleDeleted notifies all plugins that implement RoleDeleted.
func (r *Registry) EmitRoleDeleted(ctx context.Context, roleID id.ID) {
	for _, e := range r.roleDeleted {
		if err := e.hook.OnRoleDeleted(ctx, roleID); err != nil {
			r.logHookError("OnRoleDeleted", e.name, err)
		}
	}
}

// EmitPrincipalMapped notifies all plugins that implement PrincipalMapped.
func (r *Registry) EmitPrincipalMapped(ctx context.Context, m *role.Mapping) {
	for _, e := range r.principalMapped {
		if err := e.hook.OnPrincipalMapped(ctx, m); err != nil {
			r.logHookError("OnPrincipalMapped", e.name, err)
		}
	}
}

// EmitPrincipalUnmapped notifies all plugins that implement PrincipalUnmapped.
func (r *Registry) EmitPrincipalUnmapped(ctx context.Context, mappingID id.ID) {
	for _, e := range r.principalUnmapped {
		if err := e.hook.OnPrincipalUnmapped(ctx, mappingID); err != nil {
			r.logHookError("OnPrincipalUnmapped", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Relation event emitters
// ──────────────────────────────────────────────────

// EmitRelationWritten notifies all plugins that implement RelationWritten.
func (r *Registry) EmitRelationWritten(ctx context.Context, t *relation.Tuple) {
	for _, e := range r.relationWritten {
		if err := e.hook.OnRelationWritten(ctx, t); err != nil {
			r.logHookError("OnRelationWritten", e.name, err)
		}
	}
}

// EmitRelationDeleted notifies all plugins that implement RelationDeleted.
func (r *Registry) EmitRelationDeleted(ctx context.Context, relID id.ID) {
	for _, e := range r.relationDeleted {
		if err := e.hook.OnRelationDeleted(ctx, relID); err != nil {
			r.logHookError("OnRelationDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Shutdown emitter
// ──────────────────────────────────────────────────

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated; they must not block checks.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
