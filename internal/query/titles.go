// titles.go implements the product title lookup the alphabetical sort
// strategy needs: it cannot order in Go without knowing each product's
// display title.
package query

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roamdigital/explainer/internal/model"
)

// ProductTitles fetches {id, title} for every id in ids. Missing ids are
// silently omitted rather than erroring, since a dangling relation
// target should not abort the whole filter chain.
func ProductTitles(ctx context.Context, db *sqlx.DB, prefix string, ids []int) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(fmt.Sprintf(`
        SELECT e.id AS id, en.title AS title
        FROM   %[1]scraft_elements e
        JOIN   %[1]scraft_entries en ON en.id = e.id
        WHERE  e.id IN (?)`, prefix), ids)
	if err != nil {
		return nil, err
	}
	q = db.Rebind(q)

	var out []model.Product
	if err := db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}
