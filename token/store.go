package token

import (
	"context"
	"errors"

	"github.com/ostium-io/ostium/id"
)

// ErrNotFound is returned for tokens that do not exist or have expired.
var ErrNotFound = errors.New("token not found")

// Store defines the read side of token persistence. Expired tokens are
// reported as not found, never returned.
type Store interface {
	// FindToken retrieves a live token by ID.
	FindToken(ctx context.Context, tokenID id.ID) (*Token, error)

	// CreateToken persists a token. Exposed for bootstrapping and tests;
	// token lifecycle management lives outside Ostium.
	CreateToken(ctx context.Context, t *Token) error

	// DeleteToken removes a token by ID.
	DeleteToken(ctx context.Context, tokenID id.ID) error
}
