// Package audit defines the access audit log Entry entity.
//
// Entries are written by the engine whenever a check resolves to the
// AUDIT permission, and optionally for every decision when full auditing
// is enabled.
package audit

import (
	"time"

	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/sec"
)

// Entry is a single recorded authorization decision.
type Entry struct {
	ID            id.ID             `json:"id" db:"id"`
	PrincipalType sec.PrincipalType `json:"principal_type" db:"principal_type"`
	PrincipalID   string            `json:"principal_id" db:"principal_id"`
	ResourceType  string            `json:"resource_type" db:"resource_type"`
	ResourceID    string            `json:"resource_id,omitempty" db:"resource_id"`
	Property      string            `json:"property" db:"property"`
	AccessType    sec.AccessType    `json:"access_type" db:"access_type"`
	Permission    sec.Permission    `json:"permission" db:"permission"`
	Allowed       bool              `json:"allowed" db:"allowed"`
	EvalTimeNs    int64             `json:"eval_time_ns" db:"eval_time_ns"`
	Metadata      map[string]any    `json:"metadata,omitempty" db:"metadata"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying audit entries.
type QueryFilter struct {
	PrincipalType sec.PrincipalType `json:"principal_type,omitempty"`
	PrincipalID   string            `json:"principal_id,omitempty"`
	ResourceType  string            `json:"resource_type,omitempty"`
	ResourceID    string            `json:"resource_id,omitempty"`
	Permission    sec.Permission    `json:"permission,omitempty"`
	After         *time.Time        `json:"after,omitempty"`
	Before        *time.Time        `json:"before,omitempty"`
	Limit         int               `json:"limit,omitempty"`
	Offset        int               `json:"offset,omitempty"`
}
