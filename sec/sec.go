// Package sec defines the closed security vocabulary shared by every
// Ostium package: principal types, access types, permissions and their
// total order, the wildcard, and the built-in dynamic role names.
//
// Keeping these as typed constants in one leaf package means the scoring
// and resolution paths can switch exhaustively over them, and adding a
// new principal kind is a compile-time-enforced change.
package sec

// All is the wildcard matching any resource type, property, or access type.
const All = "*"

// PrincipalType identifies the kind of actor a rule or principal refers to.
type PrincipalType string

const (
	// PrincipalUser grants or denies a specific human user.
	PrincipalUser PrincipalType = "USER"

	// PrincipalApp grants or denies a specific application.
	PrincipalApp PrincipalType = "APP"

	// PrincipalRole grants or denies members of a role, either a named
	// role or one of the built-in dynamic roles below.
	PrincipalRole PrincipalType = "ROLE"

	// PrincipalScope grants or denies holders of a named token scope.
	PrincipalScope PrincipalType = "SCOPE"
)

// Valid reports whether t is one of the closed principal types.
func (t PrincipalType) Valid() bool {
	switch t {
	case PrincipalUser, PrincipalApp, PrincipalRole, PrincipalScope:
		return true
	default:
		return false
	}
}

// AccessType classifies what an operation does to a resource.
type AccessType string

const (
	// Read covers lookups and queries.
	Read AccessType = "READ"

	// Write covers creation, mutation, and deletion.
	Write AccessType = "WRITE"

	// Execute covers everything else (custom remote methods).
	Execute AccessType = "EXECUTE"

	// AnyAccess is the access-type wildcard.
	AnyAccess AccessType = All
)

// Valid reports whether t is one of the closed access types.
func (t AccessType) Valid() bool {
	switch t {
	case Read, Write, Execute, AnyAccess:
		return true
	default:
		return false
	}
}

// Permission is the outcome a rule assigns and a resolution produces.
type Permission string

const (
	// Default means no rule decided; resolution replaces it with the
	// resource's configured fallback before a decision is returned.
	Default Permission = "DEFAULT"

	// Allow permits the access.
	Allow Permission = "ALLOW"

	// Alarm permits the access but raises a warning.
	Alarm Permission = "ALARM"

	// Audit permits the access and records it.
	Audit Permission = "AUDIT"

	// Deny blocks the access.
	Deny Permission = "DENY"
)

// Valid reports whether p is one of the closed permissions.
func (p Permission) Valid() bool {
	switch p {
	case Default, Allow, Alarm, Audit, Deny:
		return true
	default:
		return false
	}
}

// Order returns the permission's position in the total order
// DEFAULT < ALLOW < ALARM < AUDIT < DENY. Resolution uses this order
// both as the scoring tie-break and for strongest-permission-wins
// aggregation under wildcard requests. Unknown values order as DEFAULT.
func (p Permission) Order() int {
	switch p {
	case Default:
		return 0
	case Allow:
		return 1
	case Alarm:
		return 2
	case Audit:
		return 3
	case Deny:
		return 4
	default:
		return 0
	}
}

// Stronger reports whether p outranks other in the permission order.
func (p Permission) Stronger(other Permission) bool {
	return p.Order() > other.Order()
}

// Built-in dynamic role names. Resolution evaluates these against the
// access context rather than against persisted role mappings.
const (
	// RoleOwner matches when the principal owns the target instance.
	RoleOwner = "$owner"

	// RoleRelated matches when the principal has any relationship to the
	// target instance. Superset of RoleOwner.
	RoleRelated = "$related"

	// RoleAuthenticated matches any authenticated user or application.
	RoleAuthenticated = "$authenticated"

	// RoleUnauthenticated matches anonymous requests.
	RoleUnauthenticated = "$unauthenticated"

	// RoleEveryone matches unconditionally.
	RoleEveryone = "$everyone"
)

// AccessTypeForMethod maps a CRUD-style method name to its access type.
// Unrecognized methods are classified as Execute.
func AccessTypeForMethod(method string) AccessType {
	switch method {
	case "create", "updateOrCreate", "upsert",
		"destroyById", "deleteById", "removeById":
		return Write
	case "exists", "all", "find", "findById", "findOne", "one", "count":
		return Read
	default:
		return Execute
	}
}
