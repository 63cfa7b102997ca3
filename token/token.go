// Package token defines the access token collaborator.
//
// Ostium only reads tokens: given an opaque token ID it needs the user
// and application identity bound to it. Minting, hashing, and revocation
// belong to the credential system that issues the tokens.
package token

import (
	"time"

	"github.com/ostium-io/ostium/id"
)

// Token associates an opaque credential with a user and/or application.
type Token struct {
	ID        id.ID         `json:"id" db:"id"`
	UserID    string        `json:"user_id,omitempty" db:"user_id"`
	AppID     string        `json:"app_id,omitempty" db:"app_id"`
	Scopes    []string      `json:"scopes,omitempty" db:"-"`
	TTL       time.Duration `json:"ttl,omitempty" db:"ttl"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// Anonymous is the token used when a request carries no credential.
// It resolves to no principals, so only $everyone and $unauthenticated
// rules can match.
var Anonymous = &Token{}

// IsAnonymous reports whether the token carries no identity.
func (t *Token) IsAnonymous() bool {
	return t == nil || (t.UserID == "" && t.AppID == "")
}

// Expired reports whether the token's TTL has elapsed as of now.
// A zero TTL never expires.
func (t *Token) Expired(now time.Time) bool {
	if t.TTL <= 0 || t.CreatedAt.IsZero() {
		return false
	}
	return now.After(t.CreatedAt.Add(t.TTL))
}

// HasScope reports whether the token carries the named scope.
func (t *Token) HasScope(name string) bool {
	for _, s := range t.Scopes {
		if s == name {
			return true
		}
	}
	return false
}
