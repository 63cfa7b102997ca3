package audit

import (
	"context"
	"errors"
	"time"

	"github.com/ostium-io/ostium/id"
)

// ErrNotFound is returned when an audit entry does not exist.
var ErrNotFound = errors.New("audit entry not found")

// Store defines persistence operations for audit entries.
type Store interface {
	// WriteEntry persists an audit entry.
	WriteEntry(ctx context.Context, e *Entry) error

	// GetEntry retrieves an entry by ID.
	GetEntry(ctx context.Context, entryID id.ID) (*Entry, error)

	// QueryEntries returns entries matching the filter, newest first.
	QueryEntries(ctx context.Context, filter *QueryFilter) ([]*Entry, error)

	// PurgeEntriesBefore removes entries created before the cutoff and
	// returns how many were removed.
	PurgeEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
