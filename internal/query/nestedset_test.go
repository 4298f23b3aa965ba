package query

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func TestStripAncestorsRemovesParents(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer rawDB.Close()
	db := sqlx.NewDb(rawDB, "sqlmock")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT parent.elementId")).
		WillReturnRows(sqlmock.NewRows([]string{"elementId"}).AddRow(1))

	got, err := StripAncestors(context.Background(), db, "acme.", []int{1, 2, 3})
	if err != nil {
		t.Fatalf("StripAncestors error: %v", err)
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("expected [2 3], got %v", got)
	}
}

func TestStripAncestorsSingleIDShortCircuits(t *testing.T) {
	rawDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer rawDB.Close()
	db := sqlx.NewDb(rawDB, "sqlmock")

	got, err := StripAncestors(context.Background(), db, "acme.", []int{7})
	if err != nil {
		t.Fatalf("StripAncestors error: %v", err)
	}
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("expected [7], got %v", got)
	}
}
