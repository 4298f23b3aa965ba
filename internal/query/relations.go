// relations.go implements relation harvesting: for a block, gather the
// seven known relation fields and any other relation present,
// deduplicated per handle, preserving server-side sort order.
package query

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roamdigital/explainer/internal/model"
)

type relationRow struct {
	FieldHandle string `db:"field_handle"`
	TargetID    int    `db:"target_id"`
	Title       string `db:"title"`
}

// harvestRelations loads every relation row for sourceID, groups by field
// handle, and dedupes while preserving the order the database returned
// (relation rows already carry a sortOrder column).
func harvestRelations(ctx context.Context, db *sqlx.DB, prefix string, sourceID int) (map[string][]model.Product, error) {
	q := fmt.Sprintf(`
        SELECT f.handle AS field_handle, r.targetId AS target_id, en.title AS title
        FROM   %scraft_relations r
        JOIN   %scraft_fields f ON f.id = r.fieldId
        JOIN   %scraft_entries en ON en.id = r.targetId
        WHERE  r.sourceId = ?
        ORDER BY r.sourceSortOrder`, prefix, prefix, prefix)

	var rows []relationRow
	if err := db.SelectContext(ctx, &rows, q, sourceID); err != nil {
		return nil, err
	}

	out := map[string][]model.Product{}
	seen := map[string]map[int]bool{}
	for _, r := range rows {
		if seen[r.FieldHandle] == nil {
			seen[r.FieldHandle] = map[int]bool{}
		}
		if seen[r.FieldHandle][r.TargetID] {
			continue
		}
		seen[r.FieldHandle][r.TargetID] = true
		out[r.FieldHandle] = append(out[r.FieldHandle], model.Product{ID: r.TargetID, Title: r.Title})
	}

	// Ensure every known handle has at least an empty (nil) slice entry so
	// callers can range over model.KnownRelationHandles without nil
	// checks; a handle not present in the rows maps to a nil slice, which
	// ranges identically to an empty one.
	for _, h := range model.KnownRelationHandles {
		if _, ok := out[h]; !ok {
			out[h] = nil
		}
	}
	return out, nil
}
