// productstate.go implements the product-state lookup: one row joining
// element/content/entry tables, plus two scalar counts.
package query

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roamdigital/explainer/internal/model"
)

// ProductState loads a single product's element/content/entry row, its
// related-category count, and its related-image count. Returns (nil,
// nil) if the product id does not resolve.
func ProductState(ctx context.Context, db *sqlx.DB, prefix string, productID int) (*model.ProductState, error) {
	q := fmt.Sprintf(`
        SELECT e.id AS id, en.title AS title, e.enabled AS enabled,
               (SELECT COUNT(*) FROM %[1]scraft_relations cr
                  JOIN %[1]scraft_fields cf ON cf.id = cr.fieldId
                  WHERE cr.sourceId = e.id AND cf.handle = ?) AS category_count,
               (SELECT COUNT(*) FROM %[1]scraft_relations ir
                  JOIN %[1]scraft_fields ifld ON ifld.id = ir.fieldId
                  WHERE ir.sourceId = e.id AND ifld.handle = 'images') AS image_count
        FROM   %[1]scraft_elements e
        JOIN   %[1]scraft_entries en ON en.id = e.id
        WHERE  e.id = ?
        LIMIT  1`, prefix)

	var ps model.ProductState
	if err := db.GetContext(ctx, &ps, q, model.FieldIncludeCategories, productID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &ps, nil
}
