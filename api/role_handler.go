package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/role"
	"github.com/ostium-io/ostium/sec"
)

func (a *API) registerRoleRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("roles"))

	if err := g.POST("/roles", a.createRole,
		forge.WithSummary("Create role"),
		forge.WithDescription("Creates a named role."),
		forge.WithOperationID("createRole"),
		forge.WithRequestSchema(CreateRoleRequest{}),
		forge.WithCreatedResponse(&role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/roles/:roleId", a.getRole,
		forge.WithSummary("Get role"),
		forge.WithDescription("Returns details of a specific role."),
		forge.WithOperationID("getRole"),
		forge.WithResponseSchema(http.StatusOK, "Role details", &role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/roles/:roleId", a.deleteRole,
		forge.WithSummary("Delete role"),
		forge.WithDescription("Deletes a role and its principal mappings."),
		forge.WithOperationID("deleteRole"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/roles", a.listRoles,
		forge.WithSummary("List roles"),
		forge.WithDescription("Lists roles with optional filters."),
		forge.WithOperationID("listRoles"),
		forge.WithRequestSchema(ListRolesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Role list", []*role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/roles/:roleId/principals", a.mapPrincipal,
		forge.WithSummary("Map principal to role"),
		forge.WithDescription("Binds a principal to a role."),
		forge.WithOperationID("mapPrincipal"),
		forge.WithRequestSchema(MapPrincipalRequest{}),
		forge.WithCreatedResponse(&role.Mapping{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/roles/:roleId/principals/:mappingId", a.unmapPrincipal,
		forge.WithSummary("Unmap principal from role"),
		forge.WithDescription("Removes a principal-to-role binding."),
		forge.WithOperationID("unmapPrincipal"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/roles/:roleId/principals", a.listMappings,
		forge.WithSummary("List role mappings"),
		forge.WithDescription("Lists the principals bound to a role."),
		forge.WithOperationID("listRoleMappings"),
		forge.WithRequestSchema(ListMappingsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Mapping list", []*role.Mapping{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createRole(ctx forge.Context, req *CreateRoleRequest) (*role.Role, error) {
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	r := &role.Role{
		Name:        req.Name,
		Description: req.Description,
		Metadata:    req.Metadata,
	}
	if err := a.eng.CreateRole(ctx.Context(), r); err != nil {
		return nil, mapError(err)
	}
	return r, ctx.JSON(http.StatusCreated, r)
}

func (a *API) getRole(ctx forge.Context, _ *GetRoleRequest) (*role.Role, error) {
	roleID, err := id.ParseRoleID(ctx.Param("roleId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role ID: %v", err))
	}

	r, err := a.eng.Store().GetRole(ctx.Context(), roleID)
	if err != nil {
		return nil, mapError(err)
	}
	return r, ctx.JSON(http.StatusOK, r)
}

func (a *API) deleteRole(ctx forge.Context, _ *GetRoleRequest) (*struct{}, error) {
	roleID, err := id.ParseRoleID(ctx.Param("roleId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role ID: %v", err))
	}

	if err := a.eng.DeleteRole(ctx.Context(), roleID); err != nil {
		return nil, mapError(err)
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listRoles(ctx forge.Context, req *ListRolesRequest) ([]*role.Role, error) {
	filter := &role.ListFilter{
		Search: req.Search,
		Limit:  defaultLimit(req.Limit),
		Offset: req.Offset,
	}

	roles, err := a.eng.Store().ListRoles(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	return roles, ctx.JSON(http.StatusOK, roles)
}

func (a *API) mapPrincipal(ctx forge.Context, req *MapPrincipalRequest) (*role.Mapping, error) {
	roleID, err := id.ParseRoleID(ctx.Param("roleId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role ID: %v", err))
	}
	if req.PrincipalID == "" {
		return nil, forge.BadRequest("principal_id is required")
	}

	m, err := a.eng.MapPrincipal(ctx.Context(), roleID, sec.PrincipalType(req.PrincipalType), req.PrincipalID)
	if err != nil {
		return nil, mapError(err)
	}
	return m, ctx.JSON(http.StatusCreated, m)
}

func (a *API) unmapPrincipal(ctx forge.Context, _ *struct{}) (*struct{}, error) {
	mappingID, err := id.ParseMappingID(ctx.Param("mappingId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid mapping ID: %v", err))
	}

	if err := a.eng.UnmapPrincipal(ctx.Context(), mappingID); err != nil {
		return nil, mapError(err)
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listMappings(ctx forge.Context, req *ListMappingsRequest) ([]*role.Mapping, error) {
	roleID, err := id.ParseRoleID(ctx.Param("roleId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role ID: %v", err))
	}

	filter := &role.MappingFilter{
		RoleID:        &roleID,
		PrincipalType: sec.PrincipalType(req.PrincipalType),
		PrincipalID:   req.PrincipalID,
		Limit:         defaultLimit(req.Limit),
		Offset:        req.Offset,
	}

	mappings, err := a.eng.Store().ListMappings(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	return mappings, ctx.JSON(http.StatusOK, mappings)
}
