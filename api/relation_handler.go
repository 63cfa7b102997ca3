package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/ostium-io/ostium/id"
	"github.com/ostium-io/ostium/relation"
)

func (a *API) registerRelationRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("relations"))

	if err := g.POST("/relations", a.writeRelation,
		forge.WithSummary("Write relation"),
		forge.WithDescription("Creates a relation tuple."),
		forge.WithOperationID("writeRelation"),
		forge.WithRequestSchema(WriteRelationRequest{}),
		forge.WithCreatedResponse(&relation.Tuple{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/relations/:relationId", a.deleteRelation,
		forge.WithSummary("Delete relation"),
		forge.WithDescription("Deletes a relation tuple."),
		forge.WithOperationID("deleteRelation"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/relations", a.listRelations,
		forge.WithSummary("List relations"),
		forge.WithOperationID("listRelations"),
		forge.WithRequestSchema(ListRelationsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Relation list", []*relation.Tuple{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) writeRelation(ctx forge.Context, req *WriteRelationRequest) (*relation.Tuple, error) {
	if req.ObjectType == "" || req.ObjectID == "" || req.Relation == "" || req.SubjectType == "" || req.SubjectID == "" {
		return nil, forge.BadRequest("object_type, object_id, relation, subject_type, and subject_id are required")
	}

	t := &relation.Tuple{
		ObjectType:      req.ObjectType,
		ObjectID:        req.ObjectID,
		Relation:        req.Relation,
		SubjectType:     req.SubjectType,
		SubjectID:       req.SubjectID,
		SubjectRelation: req.SubjectRelation,
	}
	if err := a.eng.WriteRelation(ctx.Context(), t); err != nil {
		return nil, mapError(err)
	}
	return t, ctx.JSON(http.StatusCreated, t)
}

func (a *API) deleteRelation(ctx forge.Context, _ *DeleteRelationRequest) (*struct{}, error) {
	relID, err := id.ParseRelationID(ctx.Param("relationId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid relation ID: %v", err))
	}

	if err := a.eng.DeleteRelation(ctx.Context(), relID); err != nil {
		return nil, mapError(err)
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listRelations(ctx forge.Context, req *ListRelationsRequest) ([]*relation.Tuple, error) {
	filter := &relation.ListFilter{
		ObjectType:  req.ObjectType,
		ObjectID:    req.ObjectID,
		Relation:    req.Relation,
		SubjectType: req.SubjectType,
		SubjectID:   req.SubjectID,
		Limit:       defaultLimit(req.Limit),
		Offset:      req.Offset,
	}

	tuples, err := a.eng.Store().ListRelations(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	return tuples, ctx.JSON(http.StatusOK, tuples)
}
