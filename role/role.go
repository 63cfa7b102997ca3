// Package role defines named roles and their principal mappings.
//
// A Role groups principals; a Mapping binds one principal (user, app, or
// nested role) to a role. The built-in dynamic roles ($owner, $everyone,
// ...) are never stored here; they are evaluated against the access
// context at check time.
package role

import (
	"time"

	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/sec"
)

// Role is a named collection of principals that rules can target.
type Role struct {
	ID          id.ID          `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description,omitempty" db:"description"`
	Metadata    map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// Mapping binds a principal to a role. A ROLE-typed mapping nests one
// role inside another.
type Mapping struct {
	ID            id.ID             `json:"id" db:"id"`
	RoleID        id.ID             `json:"role_id" db:"role_id"`
	PrincipalType sec.PrincipalType `json:"principal_type" db:"principal_type"`
	PrincipalID   string            `json:"principal_id" db:"principal_id"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}

// ListFilter contains filters for listing roles.
type ListFilter struct {
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// MappingFilter contains filters for listing role mappings.
type MappingFilter struct {
	RoleID        *id.ID            `json:"role_id,omitempty"`
	PrincipalType sec.PrincipalType `json:"principal_type,omitempty"`
	PrincipalID   string            `json:"principal_id,omitempty"`
	Limit         int               `json:"limit,omitempty"`
	Offset        int               `json:"offset,omitempty"`
}
