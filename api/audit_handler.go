package api

import (
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/ostium-io/ostium/audit"
	"github.com/ostium-io/ostium/sec"
)

func (a *API) registerAuditRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("audit"))

	return g.GET("/audit-entries", a.listAuditEntries,
		forge.WithSummary("Query audit entries"),
		forge.WithDescription("Returns access audit entries with optional filters, newest first."),
		forge.WithOperationID("listAuditEntries"),
		forge.WithRequestSchema(ListAuditEntriesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Audit entry list", []*audit.Entry{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listAuditEntries(ctx forge.Context, req *ListAuditEntriesRequest) ([]*audit.Entry, error) {
	filter := &audit.QueryFilter{
		PrincipalType: sec.PrincipalType(req.PrincipalType),
		PrincipalID:   req.PrincipalID,
		ResourceType:  req.ResourceType,
		ResourceID:    req.ResourceID,
		Permission:    sec.Permission(req.Permission),
		Limit:         defaultLimit(req.Limit),
		Offset:        req.Offset,
	}

	if req.After != "" {
		t, err := time.Parse(time.RFC3339, req.After)
		if err != nil {
			return nil, forge.BadRequest("invalid after timestamp")
		}
		filter.After = &t
	}
	if req.Before != "" {
		t, err := time.Parse(time.RFC3339, req.Before)
		if err != nil {
			return nil, forge.BadRequest("invalid before timestamp")
		}
		filter.Before = &t
	}

	entries, err := a.eng.Store().QueryEntries(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	return entries, ctx.JSON(http.StatusOK, entries)
}
