// resolve.go implements C2, the Tenant Router: map an inbound request to a
// safe tenant identifier.
package tenant

import (
	"context"
	"strings"

	"github.com/roamdigital/explainer/internal/kv"
)

// Request carries the fields ResolveTenant considers, in precedence
// order: explicit tenant, then hostname, then the process default.
type Request struct {
	Tenant   string // explicit tenant field from the request body
	Hostname string // hostname hint from the request body
}

// ResolveTenant maps req to a tenant identifier. Precedence: explicit
// tenant field, then a KV lookup of "origin:{hostname}" (value shape
// "{tenant}.{rootDomain}", parsed with the same tenant regex), then the
// process-wide default. It performs at most one KV read. The returned
// identifier always satisfies Validate; any other outcome is an
// *errs.BadTenant error.
func ResolveTenant(ctx context.Context, req Request, store kv.Store, defaultTenant string) (string, error) {
	if req.Tenant != "" {
		if err := Validate(req.Tenant); err != nil {
			return "", err
		}
		return req.Tenant, nil
	}

	if req.Hostname != "" {
		tenant, ok, err := LookupByHostname(ctx, store, req.Hostname)
		if err != nil {
			return "", err
		}
		if ok {
			return tenant, nil
		}
	}

	if err := Validate(defaultTenant); err != nil {
		return "", err
	}
	return defaultTenant, nil
}

// LookupByHostname performs the single "origin:{hostname}" KV read on its
// own, with no default-tenant fallback. The /api/resolve-tenant endpoint
// uses this directly so it can report a genuine miss instead of masking
// one behind the process default.
func LookupByHostname(ctx context.Context, store kv.Store, hostname string) (tenant string, ok bool, err error) {
	raw, hit, err := store.Get(ctx, "origin:"+hostname)
	if err != nil {
		return "", false, err
	}
	if !hit {
		return "", false, nil
	}
	tenant = tenantFromOriginValue(string(raw))
	if err := Validate(tenant); err != nil {
		return "", false, err
	}
	return tenant, true, nil
}

// tenantFromOriginValue extracts the tenant label from a KV value of the
// shape "{tenant}.{rootDomain}".
func tenantFromOriginValue(v string) string {
	if i := strings.IndexByte(v, '.'); i != -1 {
		return v[:i]
	}
	return v
}
