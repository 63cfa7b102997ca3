package ostium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ostium-io/ostium/audit"
	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/plugin"
	"github.com/ostium-io/ostium/relation"
	"github.com/ostium-io/ostium/resource"
	"github.com/ostium-io/ostium/role"
	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/sec"
	"github.com/ostium-io/ostium/store"
	"github.com/ostium-io/ostium/token"
)

// Engine is the ACL resolution engine. It gathers static and persisted
// rules for a request, admits role-typed rules after concurrent
// membership checks, ranks candidates by match score, and produces a
// single permission. One engine serves many concurrent checks.
type Engine struct {
	store     store.Store
	resources *resource.Registry
	plugins   *plugin.Registry
	logger    *slog.Logger
	tracer    Tracer
	config    Config

	mu        sync.RWMutex
	resolvers map[string]RoleResolver
}

// NewEngine creates an engine with the given options. A store is
// required; everything else has a default.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		resources: resource.NewRegistry(),
		logger:    slog.Default(),
		tracer:    NopTracer{},
		config:    DefaultConfig(),
		resolvers: make(map[string]RoleResolver),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, ErrStoreRequired
	}
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Resources returns the resource descriptor registry.
func (e *Engine) Resources() *resource.Registry { return e.resources }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown, notifying plugins.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// BuildStaticRules synthesizes the rules declared on the resource
// descriptor for the given property. Property-scoped rules join only
// for the named property (or one of its aliases); a wildcard lookup
// yields the resource-level rules alone, so one property's DENY cannot
// leak into the whole type. Static rules carry the nil ID.
func (e *Engine) BuildStaticRules(resourceType, property string) []*rule.Rule {
	desc, ok := e.resources.Lookup(resourceType)
	if !ok {
		return nil
	}

	var rules []*rule.Rule
	appendSpec := func(prop string, s resource.Spec) {
		r := &rule.Rule{
			ResourceType:  desc.Name,
			Property:      s.Property,
			AccessType:    s.AccessType,
			PrincipalType: s.PrincipalType,
			PrincipalID:   s.PrincipalID,
			Permission:    s.Permission,
		}
		if r.Property == "" {
			r.Property = prop
		}
		r.Normalize()
		rules = append(rules, r)
	}

	for _, s := range desc.Rules {
		appendSpec("", s)
	}
	if property == "" || property == sec.All {
		return rules
	}
	aliases := desc.MethodNames(property)
	for propName, p := range desc.Properties {
		if propName != property && !containsName(aliases, propName) {
			continue
		}
		for _, s := range p.Rules {
			appendSpec(propName, s)
		}
	}
	return rules
}

// CheckAccess runs the full resolution pipeline for an access context.
// Role-typed rules resolve membership concurrently; a resolver failure
// fails the whole check rather than degrading to a deny.
func (e *Engine) CheckAccess(ctx context.Context, actx *AccessContext) (*Result, error) {
	if actx == nil || actx.ResourceType == "" {
		return nil, fmt.Errorf("%w: missing resource type", ErrInvalidRequest)
	}
	if actx.AccessType != "" && !actx.AccessType.Valid() {
		return nil, fmt.Errorf("%w: access type %q", ErrInvalidRequest, actx.AccessType)
	}
	start := time.Now()

	if e.plugins != nil {
		e.plugins.EmitBeforeCheck(ctx, actx)
	}

	desc, _ := e.resources.Lookup(actx.ResourceType)
	if len(actx.MethodNames) == 0 {
		actx.MethodNames = desc.MethodNames(actx.Property)
	}
	req := actx.request()

	candidates, err := e.gatherRules(ctx, actx, req)
	if err != nil {
		return nil, err
	}

	applicable, err := e.admitRules(ctx, actx, candidates)
	if err != nil {
		return nil, err
	}

	perm, _ := resolvePermission(ctx, applicable, req, e.tracer)
	perm = e.fillDefault(perm, desc)

	result := &Result{
		Permission: perm,
		Allowed:    perm != sec.Deny && perm != sec.Default,
		EvalTimeNs: time.Since(start).Nanoseconds(),
	}

	if err := e.postCheck(ctx, actx, result); err != nil {
		return nil, err
	}

	if e.plugins != nil {
		e.plugins.EmitAfterCheck(ctx, actx, result)
	}
	return result, nil
}

// gatherRules collects the candidates for a check: persisted rules for
// the resource type narrowed to the property and access type, plus the
// static rules from the descriptor.
func (e *Engine) gatherRules(ctx context.Context, actx *AccessContext, req AccessRequest) ([]*rule.Rule, error) {
	filter := &rule.Filter{ResourceType: actx.ResourceType}
	if req.Property != sec.All {
		filter.Properties = append([]string{}, req.MethodNames...)
		filter.Properties = append(filter.Properties, req.Property, sec.All)
	}
	if req.AccessType != sec.AnyAccess {
		filter.AccessTypes = []sec.AccessType{req.AccessType, sec.AnyAccess}
	}

	dynamic, err := e.store.FindRules(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ostium: find rules: %w", err)
	}
	return append(dynamic, e.BuildStaticRules(actx.ResourceType, actx.Property)...), nil
}

// admitRules keeps rules whose principal applies to the context.
// USER, APP, and SCOPE rules apply when a context principal matches
// them directly. ROLE rules apply when the context holds the role;
// memberships resolve concurrently, one goroutine per distinct role.
func (e *Engine) admitRules(ctx context.Context, actx *AccessContext, candidates []*rule.Rule) ([]*rule.Rule, error) {
	roleIDs := make([]string, 0, 4)
	seen := make(map[string]int)
	for _, r := range candidates {
		if r.PrincipalType == sec.PrincipalRole {
			if _, ok := seen[r.PrincipalID]; !ok {
				seen[r.PrincipalID] = len(roleIDs)
				roleIDs = append(roleIDs, r.PrincipalID)
			}
		}
	}

	held := make([]bool, len(roleIDs))
	errs := make([]error, len(roleIDs))
	var wg sync.WaitGroup
	for i, roleID := range roleIDs {
		wg.Add(1)
		go func(i int, roleID string) {
			defer wg.Done()
			held[i], errs[i] = e.InRole(ctx, roleID, actx)
		}(i, roleID)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
	}

	applicable := make([]*rule.Rule, 0, len(candidates))
	for _, r := range candidates {
		switch r.PrincipalType {
		case sec.PrincipalRole:
			if held[seen[r.PrincipalID]] {
				applicable = append(applicable, r)
			}
		default:
			for _, p := range actx.Principals {
				if p.Type == r.PrincipalType && p.ID == r.PrincipalID {
					applicable = append(applicable, r)
					break
				}
			}
		}
	}
	return applicable, nil
}

// fillDefault replaces an undecided permission with the descriptor's
// default, then the engine's configured fallback.
func (e *Engine) fillDefault(perm sec.Permission, desc *resource.Descriptor) sec.Permission {
	if perm != sec.Default && perm != "" {
		return perm
	}
	if desc != nil && desc.DefaultPermission != "" && desc.DefaultPermission != sec.Default {
		return desc.DefaultPermission
	}
	return e.config.defaultPermission()
}

// postCheck handles the side effects of a decision: ALARM logs a
// warning, AUDIT writes an audit entry, and AuditAll audits every
// check. A failed audit write fails the check.
func (e *Engine) postCheck(ctx context.Context, actx *AccessContext, result *Result) error {
	if result.Permission == sec.Alarm {
		e.logger.WarnContext(ctx, "access alarm",
			"resource_type", actx.ResourceType,
			"resource_id", actx.ResourceID,
			"property", actx.Property,
			"access_type", actx.AccessType,
			"user_id", actx.UserID(),
			"app_id", actx.AppID(),
		)
	}
	if result.Permission != sec.Audit && result.Permission != sec.Alarm && !e.config.AuditAll {
		return nil
	}

	entry := &audit.Entry{
		ID:           id.NewAuditID(),
		ResourceType: actx.ResourceType,
		ResourceID:   actx.ResourceID,
		Property:     actx.Property,
		AccessType:   actx.AccessType,
		Permission:   result.Permission,
		Allowed:      result.Allowed,
		EvalTimeNs:   result.EvalTimeNs,
		CreatedAt:    time.Now().UTC(),
	}
	if len(actx.Principals) > 0 {
		entry.PrincipalType = actx.Principals[0].Type
		entry.PrincipalID = actx.Principals[0].ID
	}
	if err := e.store.WriteEntry(ctx, entry); err != nil {
		return fmt.Errorf("ostium: audit write: %w", err)
	}
	return nil
}

// CheckPermission resolves the permission a single known principal has
// on a resource property, without role membership resolution. The full
// static rule set resolves first, role-typed rules included as
// declared; a static DENY short-circuits the store lookup. Only the
// dynamic query is narrowed to the principal.
func (e *Engine) CheckPermission(ctx context.Context, principalType sec.PrincipalType, principalID, resourceType, property string, accessType sec.AccessType) (*Result, error) {
	if !principalType.Valid() {
		return nil, fmt.Errorf("%w: principal type %q", ErrInvalidRequest, principalType)
	}
	start := time.Now()
	desc, _ := e.resources.Lookup(resourceType)
	req := NewAccessRequest(resourceType, property, accessType, desc.MethodNames(property)...)

	statics := e.BuildStaticRules(resourceType, property)
	if perm, _ := resolvePermission(ctx, statics, req, e.tracer); perm == sec.Deny {
		return &Result{
			Permission: sec.Deny,
			EvalTimeNs: time.Since(start).Nanoseconds(),
		}, nil
	}

	filter := &rule.Filter{
		PrincipalType: principalType,
		PrincipalID:   principalID,
		ResourceType:  resourceType,
	}
	if req.Property != sec.All {
		filter.Properties = append([]string{}, req.MethodNames...)
		filter.Properties = append(filter.Properties, req.Property, sec.All)
	}
	if req.AccessType != sec.AnyAccess {
		filter.AccessTypes = []sec.AccessType{req.AccessType, sec.AnyAccess}
	}
	dynamic, err := e.store.FindRules(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ostium: find rules: %w", err)
	}

	perm, _ := resolvePermission(ctx, append(dynamic, statics...), req, e.tracer)
	perm = e.fillDefault(perm, desc)
	return &Result{
		Permission: perm,
		Allowed:    perm != sec.Deny && perm != sec.Default,
		EvalTimeNs: time.Since(start).Nanoseconds(),
	}, nil
}

// CheckScopePermission resolves what a token scope may do on a resource
// property. Scopes are ordinary principals of type SCOPE.
func (e *Engine) CheckScopePermission(ctx context.Context, scope, resourceType, property string, accessType sec.AccessType) (*Result, error) {
	return e.CheckPermission(ctx, sec.PrincipalScope, scope, resourceType, property, accessType)
}

// CheckAccessForToken runs a full check on behalf of a credential. The
// token's user and application identities become principals, and each
// token scope joins as a SCOPE principal so scope-typed rules take part
// in resolution.
func (e *Engine) CheckAccessForToken(ctx context.Context, t *token.Token, resourceType, resourceID, property string, accessType sec.AccessType) (*Result, error) {
	if t == nil {
		t = token.Anonymous
	}
	actx := NewAccessContext(resourceType, resourceID, property, accessType).WithToken(t)
	for _, scope := range t.Scopes {
		actx.AddPrincipal(sec.PrincipalScope, scope, "")
	}
	return e.CheckAccess(ctx, actx)
}

// CheckAccessForCredential looks up the token by ID and checks access
// on its behalf. A missing or expired token degrades to anonymous
// rather than failing the check.
func (e *Engine) CheckAccessForCredential(ctx context.Context, tokenID id.ID, resourceType, resourceID, property string, accessType sec.AccessType) (*Result, error) {
	t, err := e.store.FindToken(ctx, tokenID)
	if err != nil {
		if !errors.Is(err, token.ErrNotFound) {
			return nil, fmt.Errorf("ostium: find token: %w", err)
		}
		t = token.Anonymous
	}
	return e.CheckAccessForToken(ctx, t, resourceType, resourceID, property, accessType)
}

// Enforce returns ErrAccessDenied when the check does not allow access.
func (e *Engine) Enforce(ctx context.Context, actx *AccessContext) error {
	result, err := e.CheckAccess(ctx, actx)
	if err != nil {
		return err
	}
	if !result.Allowed {
		return fmt.Errorf("%w: %s %s on %s", ErrAccessDenied, result.Permission, actx.AccessType, actx.ResourceType)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Administrative operations
// ──────────────────────────────────────────────────

// CreateRule persists a dynamic rule. Empty pattern fields normalize to
// the wildcard and a fresh ID is assigned when none is set.
func (e *Engine) CreateRule(ctx context.Context, r *rule.Rule) error {
	if !r.PrincipalType.Valid() {
		return fmt.Errorf("%w: principal type %q", ErrInvalidRequest, r.PrincipalType)
	}
	if r.ID.IsNil() {
		r.ID = id.NewRuleID()
	}
	r.Normalize()
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	if err := e.store.CreateRule(ctx, r); err != nil {
		return err
	}
	if e.plugins != nil {
		e.plugins.EmitRuleCreated(ctx, r)
	}
	return nil
}

// DeleteRule removes a dynamic rule.
func (e *Engine) DeleteRule(ctx context.Context, ruleID id.ID) error {
	if err := e.store.DeleteRule(ctx, ruleID); err != nil {
		return err
	}
	if e.plugins != nil {
		e.plugins.EmitRuleDeleted(ctx, ruleID)
	}
	return nil
}

// CreateRole persists a named role.
func (e *Engine) CreateRole(ctx context.Context, r *role.Role) error {
	if r.Name == "" {
		return fmt.Errorf("%w: role requires a name", ErrInvalidRequest)
	}
	if r.ID.IsNil() {
		r.ID = id.NewRoleID()
	}
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	if err := e.store.CreateRole(ctx, r); err != nil {
		return err
	}
	if e.plugins != nil {
		e.plugins.EmitRoleCreated(ctx, r)
	}
	return nil
}

// DeleteRole removes a role and its principal mappings.
func (e *Engine) DeleteRole(ctx context.Context, roleID id.ID) error {
	if err := e.store.DeleteRole(ctx, roleID); err != nil {
		return err
	}
	if e.plugins != nil {
		e.plugins.EmitRoleDeleted(ctx, roleID)
	}
	return nil
}

// MapPrincipal binds a principal to a role and returns the mapping.
func (e *Engine) MapPrincipal(ctx context.Context, roleID id.ID, principalType sec.PrincipalType, principalID string) (*role.Mapping, error) {
	if !principalType.Valid() {
		return nil, fmt.Errorf("%w: principal type %q", ErrInvalidRequest, principalType)
	}
	m := &role.Mapping{
		ID:            id.NewMappingID(),
		RoleID:        roleID,
		PrincipalType: principalType,
		PrincipalID:   principalID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := e.store.CreateMapping(ctx, m); err != nil {
		return nil, err
	}
	if e.plugins != nil {
		e.plugins.EmitPrincipalMapped(ctx, m)
	}
	return m, nil
}

// UnmapPrincipal removes a principal-to-role binding.
func (e *Engine) UnmapPrincipal(ctx context.Context, mappingID id.ID) error {
	if err := e.store.DeleteMapping(ctx, mappingID); err != nil {
		return err
	}
	if e.plugins != nil {
		e.plugins.EmitPrincipalUnmapped(ctx, mappingID)
	}
	return nil
}

// WriteRelation persists a relation tuple.
func (e *Engine) WriteRelation(ctx context.Context, t *relation.Tuple) error {
	if t.ObjectType == "" || t.ObjectID == "" || t.Relation == "" {
		return fmt.Errorf("%w: relation tuple requires object and relation", ErrInvalidRequest)
	}
	if t.ID.IsNil() {
		t.ID = id.NewRelationID()
	}
	t.CreatedAt = time.Now().UTC()
	if err := e.store.CreateRelation(ctx, t); err != nil {
		return err
	}
	if e.plugins != nil {
		e.plugins.EmitRelationWritten(ctx, t)
	}
	return nil
}

// DeleteRelation removes a relation tuple.
func (e *Engine) DeleteRelation(ctx context.Context, relID id.ID) error {
	if err := e.store.DeleteRelation(ctx, relID); err != nil {
		return err
	}
	if e.plugins != nil {
		e.plugins.EmitRelationDeleted(ctx, relID)
	}
	return nil
}

func containsName(names []string, v string) bool {
	for _, n := range names {
		if n == v {
			return true
		}
	}
	return false
}
