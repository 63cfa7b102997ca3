// Package relation defines ownership and relationship tuples.
//
// Tuples back the $owner and $related dynamic roles: an "owner" tuple
// records that a subject owns a resource instance, and any tuple at all
// records that the subject is related to it. Tuples may also point at
// subject sets (a relation on another object), which the related-party
// check follows transitively.
package relation

import (
	"time"

	"github.com/ostium-io/ostium/id"
)

// Owner is the relation name recording instance ownership.
const Owner = "owner"

// Tuple represents a relationship between a subject and an object.
//
//	account:a1#owner@user:u42
//	invoice:i9#viewer@team:billing#member
type Tuple struct {
	ID              id.ID     `json:"id" db:"id"`
	ObjectType      string    `json:"object_type" db:"object_type"`
	ObjectID        string    `json:"object_id" db:"object_id"`
	Relation        string    `json:"relation" db:"relation"`
	SubjectType     string    `json:"subject_type" db:"subject_type"`
	SubjectID       string    `json:"subject_id" db:"subject_id"`
	SubjectRelation string    `json:"subject_relation,omitempty" db:"subject_relation"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ListFilter contains filters for listing relation tuples.
type ListFilter struct {
	ObjectType  string `json:"object_type,omitempty"`
	ObjectID    string `json:"object_id,omitempty"`
	Relation    string `json:"relation,omitempty"`
	SubjectType string `json:"subject_type,omitempty"`
	SubjectID   string `json:"subject_id,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}
