package ostium

import (
	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/sec"
)

// AccessRequest is one concrete question put to the resolver: may
// something perform AccessType on Property of ResourceType? Permission
// starts as DEFAULT and is filled in by resolution. MethodNames lists
// the aliases of the property being invoked; a rule naming any of them
// matches the property exactly.
type AccessRequest struct {
	ResourceType string         `json:"resource_type"`
	Property     string         `json:"property"`
	AccessType   sec.AccessType `json:"access_type"`
	Permission   sec.Permission `json:"permission"`
	MethodNames  []string       `json:"method_names,omitempty"`
}

// NewAccessRequest builds a request, normalizing empty fields to the
// wildcard and the permission to DEFAULT.
func NewAccessRequest(resourceType, property string, accessType sec.AccessType, methodNames ...string) AccessRequest {
	if resourceType == "" {
		resourceType = sec.All
	}
	if property == "" {
		property = sec.All
	}
	if accessType == "" {
		accessType = sec.AnyAccess
	}
	return AccessRequest{
		ResourceType: resourceType,
		Property:     property,
		AccessType:   accessType,
		Permission:   sec.Default,
		MethodNames:  methodNames,
	}
}

// IsWildcard reports whether any of resource type, property, or access
// type is the wildcard. Wildcard requests aggregate permissions across
// all applicable rules instead of stopping at the top-scored one.
func (r AccessRequest) IsWildcard() bool {
	return r.ResourceType == sec.All ||
		r.Property == sec.All ||
		r.AccessType == sec.AnyAccess
}

// MatchesExactly reports whether the rule applies to this request
// structurally: resource type and access type equal, and the rule's
// property either equals the request's property or is one of its
// method aliases.
func (r AccessRequest) MatchesExactly(rl *rule.Rule) bool {
	if rl.ResourceType != r.ResourceType || rl.AccessType != r.AccessType {
		return false
	}
	if rl.Property == r.Property {
		return true
	}
	for _, name := range r.MethodNames {
		if rl.Property == name {
			return true
		}
	}
	return false
}

// Allowed reports whether the resolved permission permits the access.
func (r AccessRequest) Allowed() bool {
	return r.Permission != sec.Deny
}
