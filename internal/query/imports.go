// imports.go implements import record lookup by primary id or by name,
// for the ATDW import domain.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/roamdigital/explainer/internal/model"
)

// sanitizeLikeInput strips characters that would let an import product
// name escape a LIKE pattern or break out of the quoted JSON key match.
func sanitizeLikeInput(name string) string {
	r := strings.NewReplacer(`"`, "", "%", "", `\`, "")
	return r.Replace(name)
}

// ImportRecordByID fetches a single import record by its primary id.
// Returns (nil, nil) on a miss, not an error.
func ImportRecordByID(ctx context.Context, db *sqlx.DB, prefix string, id int) (*model.ImportRecordRow, error) {
	q := fmt.Sprintf(`
        SELECT id, product_name, category, atdw_status, imported, entry_id, payload, audit_reason, date_updated
        FROM   %satdw_import
        WHERE  id = ?
        LIMIT  1`, prefix)
	var rec model.ImportRecordRow
	if err := db.GetContext(ctx, &rec, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// ImportRecordByName runs the two-stage LIKE search: a tight match on the
// quoted JSON title key first, then a broad substring match, each capped
// at 10 rows ordered by date_updated desc. The first match from the tight
// pass wins; only if that pass is empty do we consult the broad pass.
func ImportRecordByName(ctx context.Context, db *sqlx.DB, prefix, name string) (*model.ImportRecordRow, error) {
	clean := sanitizeLikeInput(name)
	if clean == "" {
		return nil, nil
	}

	tight, err := importRecordsByPattern(ctx, db, prefix, `%"title":"`+clean+`%`)
	if err != nil {
		return nil, err
	}
	if len(tight) > 0 {
		return &tight[0], nil
	}

	broad, err := importRecordsByPattern(ctx, db, prefix, "%"+clean+"%")
	if err != nil {
		return nil, err
	}
	if len(broad) > 0 {
		return &broad[0], nil
	}
	return nil, nil
}

func importRecordsByPattern(ctx context.Context, db *sqlx.DB, prefix, pattern string) ([]model.ImportRecordRow, error) {
	q := fmt.Sprintf(`
        SELECT id, product_name, category, atdw_status, imported, entry_id, payload, audit_reason, date_updated
        FROM   %satdw_import
        WHERE  payload LIKE ?
        ORDER BY date_updated DESC
        LIMIT  10`, prefix)
	var rows []model.ImportRecordRow
	if err := db.SelectContext(ctx, &rows, q, pattern); err != nil {
		return nil, err
	}
	return rows, nil
}
