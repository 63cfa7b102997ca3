package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/ostium-io/ostium"
	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/sec"
)

func (a *API) registerCheckRoutes(router forge.Router) error {
	g := router.Group("/v1/access", forge.WithGroupTags("access"))

	if err := g.POST("/check", a.check,
		forge.WithSummary("Access check"),
		forge.WithDescription("Resolves the permission the principals have on the resource property."),
		forge.WithOperationID("accessCheck"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/enforce", a.enforce,
		forge.WithSummary("Enforce access"),
		forge.WithDescription("Returns 200 if allowed, 403 if denied."),
		forge.WithOperationID("accessEnforce"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Allowed", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/permission", a.checkPermission,
		forge.WithSummary("Principal permission check"),
		forge.WithDescription("Resolves what a single known principal may do, without role membership resolution."),
		forge.WithOperationID("accessPermission"),
		forge.WithRequestSchema(PermissionCheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", CheckResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) check(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	result, err := a.runCheck(ctx, req)
	if err != nil {
		return nil, err
	}
	resp := toCheckResponse(result)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) enforce(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	result, err := a.runCheck(ctx, req)
	if err != nil {
		return nil, err
	}
	resp := toCheckResponse(result)
	if !result.Allowed {
		return resp, ctx.JSON(http.StatusForbidden, resp)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) runCheck(ctx forge.Context, req *CheckRequest) (*ostium.Result, error) {
	if req.ResourceType == "" {
		return nil, forge.BadRequest("resource_type is required")
	}

	if req.TokenID != "" {
		tokenID, err := id.ParseTokenID(req.TokenID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid token_id: %v", err))
		}
		result, err := a.eng.CheckAccessForCredential(ctx.Context(), tokenID,
			req.ResourceType, req.ResourceID, req.Property, sec.AccessType(req.AccessType))
		if err != nil {
			return nil, mapError(err)
		}
		return result, nil
	}

	actx := ostium.NewAccessContext(req.ResourceType, req.ResourceID, req.Property, sec.AccessType(req.AccessType))
	actx.Remote = req.Remote
	for _, p := range req.Principals {
		ptype := sec.PrincipalType(p.Type)
		if !ptype.Valid() {
			return nil, forge.BadRequest(fmt.Sprintf("invalid principal type %q", p.Type))
		}
		actx.AddPrincipal(ptype, p.ID, p.Name)
	}

	result, err := a.eng.CheckAccess(ctx.Context(), actx)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (a *API) checkPermission(ctx forge.Context, req *PermissionCheckRequest) (*CheckResponse, error) {
	if req.PrincipalID == "" || req.ResourceType == "" {
		return nil, forge.BadRequest("principal_id and resource_type are required")
	}

	result, err := a.eng.CheckPermission(ctx.Context(),
		sec.PrincipalType(req.PrincipalType), req.PrincipalID,
		req.ResourceType, req.Property, sec.AccessType(req.AccessType))
	if err != nil {
		return nil, mapError(err)
	}

	resp := toCheckResponse(result)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func toCheckResponse(r *ostium.Result) *CheckResponse {
	return &CheckResponse{
		Allowed:    r.Allowed,
		Permission: string(r.Permission),
		EvalTimeNs: r.EvalTimeNs,
	}
}
