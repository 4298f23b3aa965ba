// internal/schema/resolver_test.go
//
// Unit tests for the cache-or-rebuild behaviour of Resolver.Get, using an
// in-memory KV store so no real Redis is required.

package schema

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/roamdigital/explainer/internal/kv"
)

func expectFullRebuild(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta(`
        SELECT bt.uid
        FROM   acme.craft_matrixblocktypes bt
        JOIN   acme.craft_fields f ON f.id = bt.fieldId
        WHERE  f.handle = ?
        LIMIT  1`)).
		WithArgs("pageBuilder").
		WillReturnRows(sqlmock.NewRows([]string{"uid"}).AddRow("uid-1"))

	mock.ExpectQuery(regexp.QuoteMeta(`
        SELECT id, handle
        FROM   acme.craft_fields
        WHERE  context = ?`)).
		WithArgs("matrixBlockType:uid-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "handle"}))

	mock.ExpectQuery(`SELECT id, handle\s+FROM\s+acme\.craft_fields\s+WHERE context = \? AND handle IN \(.+\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "handle"}).AddRow(20, "pageBuilder"))

	mock.ExpectQuery(`SELECT id, handle\s+FROM\s+acme\.craft_sections\s+WHERE handle IN \(.+\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "handle"}).AddRow(1, "products"))
}

func TestResolverGetCachesAcrossCalls(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer rawDB.Close()
	db := sqlx.NewDb(rawDB, "sqlmock")

	expectFullRebuild(mock)

	store := kv.NewMemory(16)
	r := New(store, time.Hour)
	ctx := context.Background()

	first, err := r.Get(ctx, "acme", db)
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}

	second, err := r.Get(ctx, "acme", db)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if second.MatrixContentTable != first.MatrixContentTable {
		t.Fatalf("cached schema diverged from rebuilt schema")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations (rebuild ran more than once): %v", err)
	}
}

func TestResolverInvalidateForcesRebuild(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer rawDB.Close()
	db := sqlx.NewDb(rawDB, "sqlmock")

	expectFullRebuild(mock)
	expectFullRebuild(mock)

	store := kv.NewMemory(16)
	r := New(store, time.Hour)
	ctx := context.Background()

	if _, err := r.Get(ctx, "acme", db); err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if err := r.Invalidate(ctx, "acme"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := r.Get(ctx, "acme", db); err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
