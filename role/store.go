package role

import (
	"context"
	"errors"

	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/sec"
)

// ErrNotFound is returned when a role or mapping does not exist.
var ErrNotFound = errors.New("role not found")

// ErrDuplicate is returned when a role name or principal mapping
// already exists.
var ErrDuplicate = errors.New("role already exists")

// Store defines persistence operations for roles and their mappings.
type Store interface {
	// CreateRole persists a new role.
	CreateRole(ctx context.Context, r *Role) error

	// GetRole retrieves a role by ID.
	GetRole(ctx context.Context, roleID id.ID) (*Role, error)

	// GetRoleByName retrieves a role by its unique name.
	GetRoleByName(ctx context.Context, name string) (*Role, error)

	// UpdateRole persists changes to a role.
	UpdateRole(ctx context.Context, r *Role) error

	// DeleteRole removes a role and its mappings.
	DeleteRole(ctx context.Context, roleID id.ID) error

	// ListRoles returns roles matching the filter.
	ListRoles(ctx context.Context, filter *ListFilter) ([]*Role, error)

	// CreateMapping binds a principal to a role.
	CreateMapping(ctx context.Context, m *Mapping) error

	// DeleteMapping removes a principal binding by ID.
	DeleteMapping(ctx context.Context, mappingID id.ID) error

	// ListMappings returns mappings matching the filter.
	ListMappings(ctx context.Context, filter *MappingFilter) ([]*Mapping, error)

	// HasMapping reports whether the principal is bound to the role.
	HasMapping(ctx context.Context, roleID id.ID, principalType sec.PrincipalType, principalID string) (bool, error)
}
