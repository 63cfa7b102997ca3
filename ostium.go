// Package ostium is an ACL resolution engine for Go.
//
// Ostium decides, per request, whether a principal (user, application,
// role, or scope) may perform an access type on a resource property.
// Rules come from two sources: static rules declared on resource
// descriptors, and dynamic rules persisted in a store. Candidate rules
// are ranked by a weighted matching score, role-typed rules are
// admitted after concurrent membership checks, and the winning
// permission is one of ALLOW, ALARM, AUDIT, or DENY.
//
//	eng, err := ostium.NewEngine(
//	    ostium.WithStore(memStore),
//	    ostium.WithResources(accountDescriptor),
//	)
//	actx := ostium.NewAccessContext("account", "a1", "find", sec.Read)
//	actx.AddPrincipal(sec.PrincipalUser, "u42", "")
//	result, err := eng.CheckAccess(ctx, actx)
package ostium

import (
	"github.com/ostium-io/ostium/sec"
)

// Aliases for the shared security vocabulary, so callers composing
// checks rarely need to import package sec directly.
type (
	// Permission is the outcome a rule assigns and a resolution produces.
	Permission = sec.Permission

	// AccessType classifies what an operation does to a resource.
	AccessType = sec.AccessType

	// PrincipalType identifies the kind of actor a rule refers to.
	PrincipalType = sec.PrincipalType
)

// All is the wildcard matching any resource type, property, or access type.
const All = sec.All

// Principal represents an identity that can be granted or denied access:
// an individual, an application, a role, or a token scope.
type Principal struct {
	Type PrincipalType `json:"type"`
	ID   string        `json:"id"`
	Name string        `json:"name,omitempty"`
}

// Equals reports identity equality: same type and same stringified ID.
func (p Principal) Equals(other Principal) bool {
	return p.Type == other.Type && p.ID == other.ID
}

// Result is the outcome of an authorization check.
type Result struct {
	Permission Permission `json:"permission"`
	Allowed    bool       `json:"allowed"`
	EvalTimeNs int64      `json:"eval_time_ns"`
}
