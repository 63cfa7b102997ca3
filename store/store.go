// Package store defines the aggregate persistence interface. Each
// subsystem (rule, role, relation, token, audit) defines its own store
// interface; the composite Store composes them all. Backends: Postgres,
// SQLite, MongoDB, and Memory.
package store

import (
	"context"

	"github.com/ostium-io/ostium/audit"
	"github.com/ostium-io/ostium/relation"
	"github.com/ostium-io/ostium/role"
	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/token"
)

// Store is the aggregate persistence interface. A single backend
// implements all subsystem stores.
type Store interface {
	rule.Store
	role.Store
	relation.Store
	token.Store
	audit.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
