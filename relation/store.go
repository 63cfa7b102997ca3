package relation

import (
	"context"
	"errors"

	"github.com/ostium-io/ostium/id"
)

// ErrNotFound is returned when a relation tuple does not exist.
var ErrNotFound = errors.New("relation not found")

// Store defines persistence operations for relation tuples.
type Store interface {
	// CreateRelation persists a new relation tuple.
	CreateRelation(ctx context.Context, t *Tuple) error

	// DeleteRelation removes a relation tuple by ID.
	DeleteRelation(ctx context.Context, relID id.ID) error

	// ListRelations returns relation tuples matching the filter.
	ListRelations(ctx context.Context, filter *ListFilter) ([]*Tuple, error)

	// CheckDirectRelation reports whether a tuple with the given relation
	// links the subject to the object.
	CheckDirectRelation(ctx context.Context, objectType, objectID, relation, subjectType, subjectID string) (bool, error)

	// ListObjectTuples returns all tuples attached to an object,
	// regardless of relation name.
	ListObjectTuples(ctx context.Context, objectType, objectID string) ([]*Tuple, error)

	// DeleteRelationsByObject removes all relation tuples for an object.
	DeleteRelationsByObject(ctx context.Context, objectType, objectID string) error
}
