// internal/tenant/helpers.go
//
// DSN construction for per-tenant connection pools.
//
// Context
// -------
// buildTenantDSN fills the MySQL DSN template from a control-plane tenant
// row plus a Vault-resolved password. The tenant identifier itself never
// appears in the DSN directly; host, schema, and user come from the
// `tenant` table row, which is looked up only after the identifier has
// passed Validate.
package tenant

import (
	"fmt"

	"github.com/roamdigital/explainer/internal/tenant/meta"
)

// buildTenantDSN fills the canonical template:
//
//	{user}:{password}@tcp({host})/{schema}?parseTime=true&loc=Local
func buildTenantDSN(rec meta.Record, pw string) string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s)/%s?parseTime=true&loc=Local",
		rec.DSNUser, pw, rec.DSNHost, rec.DSNSchema,
	)
}
