package query

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/roamdigital/explainer/internal/model"
)

func TestProductTitlesEmptyInput(t *testing.T) {
	rawDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer rawDB.Close()
	db := sqlx.NewDb(rawDB, "sqlmock")

	got, err := ProductTitles(context.Background(), db, "acme.", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestProductTitlesFetchesTitles(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer rawDB.Close()
	db := sqlx.NewDb(rawDB, "sqlmock")

	mock.ExpectQuery(`SELECT e\.id AS id, en\.title AS title\s+FROM\s+acme\.craft_elements e\s+JOIN\s+acme\.craft_entries en ON en\.id = e\.id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(1, "Sunset Tour").AddRow(2, "Aurora Walk"))

	got, err := ProductTitles(context.Background(), db, "acme.", []int{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.Product{{ID: 1, Title: "Sunset Tour"}, {ID: 2, Title: "Aurora Walk"}}
	if len(got) != len(want) {
		t.Fatalf("expected %d products, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("product %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
