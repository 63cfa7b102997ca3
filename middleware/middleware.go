// Package middleware provides HTTP access-control middleware for Ostium.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/ostium-io/ostium"
	"github.com/ostium-io/ostium/sec"
)

// Guard names one access check a middleware performs. ResourceID is
// taken from the request path parameter "id" when left empty.
type Guard struct {
	ResourceType string
	ResourceID   string
	Property     string
	AccessType   sec.AccessType
}

// Require enforces access to a resource type. It resolves the principal
// from the request context (Forge user > anonymous) and checks whether
// it may perform the access type on the resource.
func Require(eng *ostium.Engine, accessType sec.AccessType, resourceType string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			actx := buildContext(ctx, Guard{
				ResourceType: resourceType,
				AccessType:   accessType,
			})
			if err := eng.Enforce(ctx.Context(), actx); err != nil {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireProperty enforces access to a specific resource property.
func RequireProperty(eng *ostium.Engine, accessType sec.AccessType, resourceType, property string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			actx := buildContext(ctx, Guard{
				ResourceType: resourceType,
				Property:     property,
				AccessType:   accessType,
			})
			if err := eng.Enforce(ctx.Context(), actx); err != nil {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAny allows the request if ANY of the guards pass.
func RequireAny(eng *ostium.Engine, guards ...Guard) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			for _, g := range guards {
				result, err := eng.CheckAccess(ctx.Context(), buildContext(ctx, g))
				if err == nil && result.Allowed {
					return next(ctx)
				}
			}
			return denyResponse(ctx)
		}
	}
}

// RequireAll allows the request only if ALL guards pass.
func RequireAll(eng *ostium.Engine, guards ...Guard) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			for _, g := range guards {
				if err := eng.Enforce(ctx.Context(), buildContext(ctx, g)); err != nil {
					return denyResponse(ctx)
				}
			}
			return next(ctx)
		}
	}
}

// buildContext assembles the access context for one guard. The Forge
// user ID, when present, joins as a USER principal.
func buildContext(ctx forge.Context, g Guard) *ostium.AccessContext {
	resourceID := g.ResourceID
	if resourceID == "" {
		resourceID = ctx.Param("id")
	}
	actx := ostium.NewAccessContext(g.ResourceType, resourceID, g.Property, g.AccessType)
	if userID := forge.UserIDFromContext(ctx.Context()); userID != "" {
		actx.AddPrincipal(sec.PrincipalUser, userID, "")
	}
	return actx
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
