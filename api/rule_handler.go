package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/sec"
)

func (a *API) registerRuleRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("rules"))

	if err := g.POST("/rules", a.createRule,
		forge.WithSummary("Create rule"),
		forge.WithDescription("Creates a dynamic ACL rule."),
		forge.WithOperationID("createRule"),
		forge.WithRequestSchema(CreateRuleRequest{}),
		forge.WithCreatedResponse(&rule.Rule{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/rules/:ruleId", a.getRule,
		forge.WithSummary("Get rule"),
		forge.WithDescription("Returns a specific rule."),
		forge.WithOperationID("getRule"),
		forge.WithResponseSchema(http.StatusOK, "Rule details", &rule.Rule{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/rules/:ruleId", a.deleteRule,
		forge.WithSummary("Delete rule"),
		forge.WithDescription("Deletes a rule."),
		forge.WithOperationID("deleteRule"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/rules", a.listRules,
		forge.WithSummary("List rules"),
		forge.WithDescription("Lists rules with optional filters."),
		forge.WithOperationID("listRules"),
		forge.WithRequestSchema(ListRulesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Rule list", []*rule.Rule{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createRule(ctx forge.Context, req *CreateRuleRequest) (*rule.Rule, error) {
	if req.ResourceType == "" {
		return nil, forge.BadRequest("resource_type is required")
	}
	if req.PrincipalID == "" {
		return nil, forge.BadRequest("principal_id is required")
	}
	perm := sec.Permission(req.Permission)
	if !perm.Valid() {
		return nil, forge.BadRequest(fmt.Sprintf("invalid permission %q", req.Permission))
	}

	r := &rule.Rule{
		ResourceType:  req.ResourceType,
		Property:      req.Property,
		AccessType:    sec.AccessType(req.AccessType),
		PrincipalType: sec.PrincipalType(req.PrincipalType),
		PrincipalID:   req.PrincipalID,
		Permission:    perm,
	}

	if err := a.eng.CreateRule(ctx.Context(), r); err != nil {
		return nil, mapError(err)
	}
	return r, ctx.JSON(http.StatusCreated, r)
}

func (a *API) getRule(ctx forge.Context, _ *GetRuleRequest) (*rule.Rule, error) {
	ruleID, err := id.ParseRuleID(ctx.Param("ruleId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid rule ID: %v", err))
	}

	r, err := a.eng.Store().GetRule(ctx.Context(), ruleID)
	if err != nil {
		return nil, mapError(err)
	}
	return r, ctx.JSON(http.StatusOK, r)
}

func (a *API) deleteRule(ctx forge.Context, _ *GetRuleRequest) (*struct{}, error) {
	ruleID, err := id.ParseRuleID(ctx.Param("ruleId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid rule ID: %v", err))
	}

	if err := a.eng.DeleteRule(ctx.Context(), ruleID); err != nil {
		return nil, mapError(err)
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listRules(ctx forge.Context, req *ListRulesRequest) ([]*rule.Rule, error) {
	filter := &rule.Filter{
		PrincipalType: sec.PrincipalType(req.PrincipalType),
		PrincipalID:   req.PrincipalID,
		ResourceType:  req.ResourceType,
		Limit:         defaultLimit(req.Limit),
		Offset:        req.Offset,
	}

	rules, err := a.eng.Store().FindRules(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	return rules, ctx.JSON(http.StatusOK, rules)
}
