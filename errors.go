package ostium

import "errors"

var (
	// ErrAccessDenied is returned by Enforce when the resolved
	// permission does not grant access.
	ErrAccessDenied = errors.New("ostium: access denied")

	// ErrInvalidRequest indicates a malformed access request, such as
	// an unknown access type or an empty principal set where one is
	// required.
	ErrInvalidRequest = errors.New("ostium: invalid access request")

	// ErrRoleResolution wraps failures from role membership resolvers.
	// A resolver error is never treated as a deny; it fails the whole
	// check so the caller can distinguish outage from policy.
	ErrRoleResolution = errors.New("ostium: role resolution failed")

	// ErrStoreRequired is returned by NewEngine when no store is
	// configured.
	ErrStoreRequired = errors.New("ostium: store is required")
)
