package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/ostium-io/ostium"
	"github.com/ostium-io/ostium/audit"
	"github.com/ostium-io/ostium/relation"
	"github.com/ostium-io/ostium/role"
	"github.com/ostium-io/ostium/rule"
	"github.com/ostium-io/ostium/token"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, ostium.ErrInvalidRequest) || errors.Is(err, role.ErrDuplicate) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, ostium.ErrAccessDenied) {
		return forge.Forbidden(err.Error())
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, rule.ErrNotFound) ||
		errors.Is(err, role.ErrNotFound) ||
		errors.Is(err, relation.ErrNotFound) ||
		errors.Is(err, token.ErrNotFound) ||
		errors.Is(err, audit.ErrNotFound)
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
