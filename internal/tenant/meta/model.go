// internal/tenant/meta/model.go
//
// `tenant` control-plane table row model.
//
// Context
// -------
// The `Record` struct mirrors one row in the persistent **tenant** table,
// the control-plane row that tells this service where a tenant's content
// database lives. It is used by the tenant pool loader to open a
// per-tenant sqlx.DB.
//
// Schema reference
//
//	CREATE TABLE tenant (
//	    id           INT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	    tenant       VARCHAR(64)  NOT NULL UNIQUE,
//	    dsn_host     VARCHAR(256) NOT NULL,
//	    dsn_schema   VARCHAR(64)  NOT NULL,
//	    dsn_user     VARCHAR(64)  NOT NULL,
//	    suspended_at TIMESTAMP NULL,
//	    created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
//	);
//
// Notes
// -----
// • Nullable timestamps are `*time.Time`; callers must nil-check before use.
// • The connection password never lives in this row; it comes from Vault
//   at DSN-build time, keeping it out of flat files and query results.
// • This struct contains no behaviour—pure data model for sqlx scans.
package meta

import "time"

// Record mirrors one row in the `tenant` control-plane table.
type Record struct {
	ID          uint64     `db:"id"`
	Tenant      string     `db:"tenant"`
	DSNHost     string     `db:"dsn_host"`
	DSNSchema   string     `db:"dsn_schema"`
	DSNUser     string     `db:"dsn_user"`
	SuspendedAt *time.Time `db:"suspended_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}
