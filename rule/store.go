package rule

import (
	"context"
	"errors"

	"github.com/ostium-io/ostium/id"
)

// ErrNotFound is returned when a rule does not exist. Backends wrap it
// so callers can match with errors.Is.
var ErrNotFound = errors.New("rule not found")

// Store defines persistence operations for ACL rules.
type Store interface {
	// CreateRule persists a new rule.
	CreateRule(ctx context.Context, r *Rule) error

	// GetRule retrieves a rule by ID.
	GetRule(ctx context.Context, ruleID id.ID) (*Rule, error)

	// UpdateRule persists changes to a rule.
	UpdateRule(ctx context.Context, r *Rule) error

	// DeleteRule removes a rule by ID.
	DeleteRule(ctx context.Context, ruleID id.ID) error

	// FindRules returns rules matching the filter.
	FindRules(ctx context.Context, filter *Filter) ([]*Rule, error)

	// CountRules returns the number of rules matching the filter.
	CountRules(ctx context.Context, filter *Filter) (int64, error)

	// DeleteRulesByResource removes all rules for a resource type.
	DeleteRulesByResource(ctx context.Context, resourceType string) error
}
