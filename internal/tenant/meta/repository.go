// internal/tenant/meta/repository.go
//
// tenant-table query helpers.
//
// Context
// -------
// `ByTenant` is the one query the per-tenant connection pool cache needs:
// translate a validated tenant identifier into the row describing where
// its content database lives.
//
// Notes
// -----
//   • Column list matches the fields in `meta.Record`; update both together.
//   • Oxford commas, two spaces after periods.
package meta

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ByTenant fetches a single tenant row that is not suspended.  The lookup
// respects request deadlines via the supplied context.Context.
func ByTenant(ctx context.Context, db *sqlx.DB, tenant string) (*Record, error) {
	const q = `
        SELECT id, tenant, dsn_host, dsn_schema, dsn_user,
               suspended_at, created_at, updated_at
        FROM   tenant
        WHERE  tenant = ?
          AND  suspended_at IS NULL
        LIMIT  1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, tenant); err != nil {
		zap.S().Debugw("meta.ByTenant miss", "tenant", tenant, "err", err)
		return nil, err
	}
	return &rec, nil
}
