package ostium

import (
	"context"
	"errors"
	"fmt"

	"github.com/ostium-io/ostium/relation"
	"github.com/ostium-io/ostium/role"
	"github.com/ostium-io/ostium/sec"
)

// RoleResolver decides whether the principals in an access context hold
// a role. Resolvers run concurrently during a check; they must be safe
// for concurrent use and honor ctx cancellation.
type RoleResolver func(ctx context.Context, eng *Engine, actx *AccessContext) (bool, error)

// RegisterRoleResolver binds a resolver to a role id. Registering over
// a built-in name ($owner, $everyone, ...) replaces the built-in
// behavior for that role.
func (e *Engine) RegisterRoleResolver(roleID string, resolver RoleResolver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resolvers[roleID] = resolver
}

// InRole reports whether the context's principals hold the given role.
// Resolution order: registered resolvers, then the built-in dynamic
// roles, then named roles from the role store. An unknown role is
// simply not held; only resolver and store failures return an error.
func (e *Engine) InRole(ctx context.Context, roleID string, actx *AccessContext) (bool, error) {
	e.mu.RLock()
	resolver, ok := e.resolvers[roleID]
	e.mu.RUnlock()
	if ok {
		held, err := resolver(ctx, e, actx)
		if err != nil {
			return false, fmt.Errorf("%w: %s: %w", ErrRoleResolution, roleID, err)
		}
		return held, nil
	}

	switch roleID {
	case sec.RoleEveryone:
		return true, nil
	case sec.RoleAuthenticated:
		return actx.IsAuthenticated(), nil
	case sec.RoleUnauthenticated:
		return !actx.IsAuthenticated(), nil
	case sec.RoleOwner:
		return e.isOwner(ctx, actx)
	case sec.RoleRelated:
		return e.isRelated(ctx, actx)
	}

	return e.inNamedRole(ctx, roleID, actx)
}

// isOwner reports whether the user principal owns the checked instance.
// Ownership holds when the instance is the principal itself (the
// descriptor declares the type self-owned) or when an owner relation
// tuple links the user to the instance.
func (e *Engine) isOwner(ctx context.Context, actx *AccessContext) (bool, error) {
	uid := actx.UserID()
	if uid == "" || actx.ResourceType == "" || actx.ResourceID == "" {
		return false, nil
	}

	ownerType := "user"
	if desc, ok := e.resources.Lookup(actx.ResourceType); ok && desc.OwnedBy != "" {
		ownerType = desc.OwnedBy
	}
	if ownerType == actx.ResourceType && actx.ResourceID == uid {
		return true, nil
	}

	held, err := e.store.CheckDirectRelation(ctx, actx.ResourceType, actx.ResourceID, relation.Owner, ownerType, uid)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrRoleResolution, sec.RoleOwner, err)
	}
	return held, nil
}

// isRelated reports whether the user principal is connected to the
// checked instance through the relation graph, by any relation name,
// within the configured depth.
func (e *Engine) isRelated(ctx context.Context, actx *AccessContext) (bool, error) {
	uid := actx.UserID()
	if uid == "" || actx.ResourceType == "" || actx.ResourceID == "" {
		return false, nil
	}

	ownerType := "user"
	if desc, ok := e.resources.Lookup(actx.ResourceType); ok && desc.OwnedBy != "" {
		ownerType = desc.OwnedBy
	}

	type node struct {
		objectType string
		objectID   string
	}
	visited := map[node]struct{}{}
	frontier := []node{{actx.ResourceType, actx.ResourceID}}

	for depth := 0; depth < e.config.maxRelationDepth() && len(frontier) > 0; depth++ {
		var next []node
		for _, n := range frontier {
			if _, seen := visited[n]; seen {
				continue
			}
			visited[n] = struct{}{}

			tuples, err := e.store.ListObjectTuples(ctx, n.objectType, n.objectID)
			if err != nil {
				return false, fmt.Errorf("%w: %s: %w", ErrRoleResolution, sec.RoleRelated, err)
			}
			for _, t := range tuples {
				if t.SubjectType == ownerType && t.SubjectID == uid {
					return true, nil
				}
				next = append(next, node{t.SubjectType, t.SubjectID})
			}
		}
		frontier = next
	}
	return false, ctx.Err()
}

// inNamedRole checks persisted role membership. Direct mappings are
// checked for every principal; role-typed mappings nest one level so a
// role can include the members of another role.
func (e *Engine) inNamedRole(ctx context.Context, roleID string, actx *AccessContext) (bool, error) {
	r, err := e.store.GetRoleByName(ctx, roleID)
	if err != nil {
		if errors.Is(err, role.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s: %w", ErrRoleResolution, roleID, err)
	}

	for _, p := range actx.Principals {
		if p.Type == sec.PrincipalRole && p.ID == roleID {
			return true, nil
		}
		held, err := e.store.HasMapping(ctx, r.ID, p.Type, p.ID)
		if err != nil {
			return false, fmt.Errorf("%w: %s: %w", ErrRoleResolution, roleID, err)
		}
		if held {
			return true, nil
		}
	}

	// One level of nesting: mappings whose principal is itself a role.
	nested, err := e.store.ListMappings(ctx, &role.MappingFilter{
		RoleID:        &r.ID,
		PrincipalType: sec.PrincipalRole,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrRoleResolution, roleID, err)
	}
	for _, m := range nested {
		inner, err := e.store.GetRoleByName(ctx, m.PrincipalID)
		if err != nil {
			if errors.Is(err, role.ErrNotFound) {
				continue
			}
			return false, fmt.Errorf("%w: %s: %w", ErrRoleResolution, roleID, err)
		}
		for _, p := range actx.Principals {
			held, err := e.store.HasMapping(ctx, inner.ID, p.Type, p.ID)
			if err != nil {
				return false, fmt.Errorf("%w: %s: %w", ErrRoleResolution, roleID, err)
			}
			if held {
				return true, nil
			}
		}
	}
	return false, nil
}
