package ostium

import (
	"github.com/ostium-io/ostium/sec"
	"github.com/ostium-io/ostium/token"
)

// AccessContext carries everything one authorization check needs: the
// principals asking, the resource and property being touched, the
// access type, and a free-form remote context passed through to role
// resolvers. Contexts are built per check and discarded afterwards.
type AccessContext struct {
	// Principals are the identities on whose behalf the check runs.
	// Duplicates (by Principal.Equals) are not added.
	Principals []Principal

	// ResourceType names the protected resource type.
	ResourceType string

	// ResourceID identifies the specific instance, when known. Required
	// for $owner and $related role checks.
	ResourceID string

	// Property is the property or method being accessed; empty means
	// the wildcard.
	Property string

	// MethodNames are the property's aliases. The engine fills them
	// from the resource descriptor when left empty.
	MethodNames []string

	// AccessType is the kind of access requested.
	AccessType sec.AccessType

	// Token is the credential the request arrived with; its user and
	// application identities become principals. Nil means anonymous.
	Token *token.Token

	// Remote is caller-supplied context handed through to custom role
	// resolvers (e.g. transport metadata). The engine never reads it.
	Remote map[string]any
}

// NewAccessContext builds a context for one check. Empty property and
// access type normalize to the wildcard.
func NewAccessContext(resourceType, resourceID, property string, accessType sec.AccessType) *AccessContext {
	if property == "" {
		property = sec.All
	}
	if accessType == "" {
		accessType = sec.AnyAccess
	}
	return &AccessContext{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Property:     property,
		AccessType:   accessType,
	}
}

// WithToken attaches a credential and derives its principals: the
// token's user ID becomes a USER principal and its application ID an
// APP principal. Returns the context for chaining.
func (a *AccessContext) WithToken(t *token.Token) *AccessContext {
	a.Token = t
	if t == nil {
		return a
	}
	if t.UserID != "" {
		a.AddPrincipal(sec.PrincipalUser, t.UserID, "")
	}
	if t.AppID != "" {
		a.AddPrincipal(sec.PrincipalApp, t.AppID, "")
	}
	return a
}

// AddPrincipal appends a principal unless an equal one is already
// present. Reports whether the principal was added.
func (a *AccessContext) AddPrincipal(ptype sec.PrincipalType, pid, name string) bool {
	p := Principal{Type: ptype, ID: pid, Name: name}
	for _, existing := range a.Principals {
		if existing.Equals(p) {
			return false
		}
	}
	a.Principals = append(a.Principals, p)
	return true
}

// UserID returns the first USER principal's ID, or "".
func (a *AccessContext) UserID() string {
	for _, p := range a.Principals {
		if p.Type == sec.PrincipalUser {
			return p.ID
		}
	}
	return ""
}

// AppID returns the first APP principal's ID, or "".
func (a *AccessContext) AppID() string {
	for _, p := range a.Principals {
		if p.Type == sec.PrincipalApp {
			return p.ID
		}
	}
	return ""
}

// IsAuthenticated reports whether the context carries a resolvable user
// or application identity.
func (a *AccessContext) IsAuthenticated() bool {
	return a.UserID() != "" || a.AppID() != ""
}

// request converts the context into the AccessRequest put to resolution.
func (a *AccessContext) request() AccessRequest {
	return NewAccessRequest(a.ResourceType, a.Property, a.AccessType, a.MethodNames...)
}
