package query

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func TestProductIDsByNameEmptyInput(t *testing.T) {
	rawDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer rawDB.Close()
	db := sqlx.NewDb(rawDB, "sqlmock")

	got, err := ProductIDsByName(context.Background(), db, "acme.", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestProductIDsByNameExactMatch(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer rawDB.Close()
	db := sqlx.NewDb(rawDB, "sqlmock")

	mock.ExpectQuery(`SELECT e\.id`).
		WithArgs("Great Barrier Reef Tour").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	got, err := ProductIDsByName(context.Background(), db, "acme.", []string{"Great Barrier Reef Tour"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != 42 {
		t.Fatalf("expected [42], got %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestProductIDsByNameFallsBackToBroadMatch(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer rawDB.Close()
	db := sqlx.NewDb(rawDB, "sqlmock")

	mock.ExpectQuery(`WHERE  LOWER\(en\.title\) = LOWER\(\?\)`).
		WithArgs("Reef Tour").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`WHERE  en\.title LIKE \?`).
		WithArgs("%Reef Tour%").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7).AddRow(8))

	got, err := ProductIDsByName(context.Background(), db, "acme.", []string{"Reef Tour"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 ids, got %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestProductIDsByNameDedupesAcrossNames(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer rawDB.Close()
	db := sqlx.NewDb(rawDB, "sqlmock")

	mock.ExpectQuery(`WHERE  LOWER\(en\.title\) = LOWER\(\?\)`).
		WithArgs("Reef Tour").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`WHERE  LOWER\(en\.title\) = LOWER\(\?\)`).
		WithArgs("reef tour").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	got, err := ProductIDsByName(context.Background(), db, "acme.", []string{"Reef Tour", "reef tour"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("expected deduped [7], got %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
