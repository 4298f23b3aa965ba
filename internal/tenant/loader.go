// internal/tenant/loader.go
//
// tenant identifier → Pool loader (Vault-aware).
//
// Context
// -------
// The cache's slow-path calls loadTenantDB to transform a validated tenant
// identifier into a live *Pool. The function performs three blocking
// steps:
//
//  1. Fetch the control-plane row (meta.ByTenant).
//  2. Resolve the tenant's database password from Vault and build the DSN.
//  3. Open a small per-tenant DB pool.
//
// The pool is created once per cache entry and reused until eviction.
//
// Notes
// -----
// • DSN construction lives in helpers.go (buildTenantDSN).
// • Oxford commas, two spaces after periods.
package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roamdigital/explainer/internal/database"
	"github.com/roamdigital/explainer/internal/tenant/meta"
	"github.com/roamdigital/explainer/internal/vault"
)

// loadTenantDB executes the slow-path load in three well-defined steps.
func loadTenantDB(
	ctx context.Context,
	global *sqlx.DB,
	tenantID string,
	vcli *vault.Client,
) (*Pool, error) {

	// 1. fetch control-plane row
	rec, err := meta.ByTenant(ctx, global, tenantID)
	if err != nil {
		return nil, ErrNotFound
	}

	// 2. resolve password and build DSN
	pw, err := vcli.GetKV(
		ctx,
		fmt.Sprintf("secret/explainer/tenant/%s/db", tenantID),
		"password",
		10*time.Minute,
	)
	if err != nil {
		return nil, err
	}
	dsn := buildTenantDSN(*rec, pw)

	// 3. tenant DB pool (small, single-tenant)
	db, err := database.OpenWithOptions(dsn, 5, 2)
	if err != nil {
		return nil, err
	}

	return &Pool{Meta: *rec, DB: db}, nil
}
