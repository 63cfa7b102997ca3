// Package rule defines the ACL rule entity and its store interface.
package rule

import (
	"time"

	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/sec"
)

// Rule maps a principal plus a resource/property/access-type pattern to a
// permission. Persisted rules carry a stable ID; static rules synthesized
// from resource metadata carry the Nil ID and are rebuilt on every lookup.
type Rule struct {
	ID            id.ID             `json:"id" db:"id"`
	ResourceType  string            `json:"resource_type" db:"resource_type"`
	Property      string            `json:"property" db:"property"`
	AccessType    sec.AccessType    `json:"access_type" db:"access_type"`
	PrincipalType sec.PrincipalType `json:"principal_type" db:"principal_type"`
	PrincipalID   string            `json:"principal_id" db:"principal_id"`
	Permission    sec.Permission    `json:"permission" db:"permission"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

// IsStatic reports whether the rule was synthesized from resource
// metadata rather than read from the store.
func (r *Rule) IsStatic() bool { return r.ID.IsNil() }

// Normalize fills empty pattern fields with the wildcard. Permission is
// left as-is: an unset permission scores as ALLOW but must not silently
// become one in storage.
func (r *Rule) Normalize() {
	if r.Property == "" {
		r.Property = sec.All
	}
	if r.AccessType == "" {
		r.AccessType = sec.AnyAccess
	}
}

// Filter selects persisted rules by equality and membership predicates.
// Nil slices mean "any". The store evaluates these as an indexed prefix
// query, not a full rule scan.
type Filter struct {
	PrincipalType sec.PrincipalType `json:"principal_type,omitempty"`
	PrincipalID   string            `json:"principal_id,omitempty"`
	ResourceType  string            `json:"resource_type,omitempty"`
	Properties    []string          `json:"properties,omitempty"`
	AccessTypes   []sec.AccessType  `json:"access_types,omitempty"`
	Limit         int               `json:"limit,omitempty"`
	Offset        int               `json:"offset,omitempty"`
}

// Matches reports whether the rule satisfies every predicate in the
// filter. Store backends without native membership queries use it.
func (f *Filter) Matches(r *Rule) bool {
	if f == nil {
		return true
	}
	if f.PrincipalType != "" && r.PrincipalType != f.PrincipalType {
		return false
	}
	if f.PrincipalID != "" && r.PrincipalID != f.PrincipalID {
		return false
	}
	if f.ResourceType != "" && r.ResourceType != f.ResourceType {
		return false
	}
	if len(f.Properties) > 0 && !containsString(f.Properties, r.Property) {
		return false
	}
	if len(f.AccessTypes) > 0 && !containsAccessType(f.AccessTypes, r.AccessType) {
		return false
	}
	return true
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsAccessType(set []sec.AccessType, v sec.AccessType) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
