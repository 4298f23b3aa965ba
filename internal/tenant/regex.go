// Package tenant resolves an inbound request to a tenant identifier (C2)
// and maintains a cache of per-tenant database connection pools that the
// schema resolver and query layer draw on (supporting C1/C3).
//
// Two identifiers are synthesized into SQL rather than bound: the tenant
// prefix and the matrix-content table name (see internal/query). Both are
// gated by a regex before composition, never by string escaping — this is
// an invariant, not a convenience, and it starts here with the tenant
// identifier itself.
package tenant

import (
	"regexp"

	"github.com/roamdigital/explainer/internal/errs"
)

// idPattern matches a safe tenant identifier: lower-case, starts with a
// letter, at most 64 characters of [a-z0-9_].
var idPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// Validate reports an *errs.BadTenant-wrapped error if id does not match
// the tenant identifier pattern. Every code path that will eventually
// compose SQL with a tenant prefix must call this first.
func Validate(id string) error {
	if !idPattern.MatchString(id) {
		return &invalidTenantError{id: id}
	}
	return nil
}

type invalidTenantError struct{ id string }

func (e *invalidTenantError) Error() string {
	return "invalid tenant identifier: " + e.id
}

func (e *invalidTenantError) Unwrap() error { return errs.BadTenant }
