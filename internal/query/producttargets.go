// producttargets.go resolves the human-readable product names an intent
// carries into the numeric element ids the filter chain's target-presence
// predicate needs. A miss is not an error: a name the intent guessed at
// that doesn't exist yet simply contributes no target id.
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ProductIDsByName looks up each name with a case-insensitive exact match
// first, falling back to a substring match, and returns the deduplicated
// set of ids found. Names that match nothing are silently dropped.
func ProductIDsByName(ctx context.Context, db *sqlx.DB, prefix string, names []string) ([]int, error) {
	seen := map[int]bool{}
	var out []int
	for _, name := range names {
		clean := strings.TrimSpace(name)
		if clean == "" {
			continue
		}
		ids, err := productIDsMatching(ctx, db, prefix, clean)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out, nil
}

func productIDsMatching(ctx context.Context, db *sqlx.DB, prefix, name string) ([]int, error) {
	exactQ := fmt.Sprintf(`
        SELECT e.id
        FROM   %[1]scraft_elements e
        JOIN   %[1]scraft_entries en ON en.id = e.id
        WHERE  LOWER(en.title) = LOWER(?) AND e.dateDeleted IS NULL
        LIMIT  5`, prefix)
	var ids []int
	if err := db.SelectContext(ctx, &ids, exactQ, name); err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		return ids, nil
	}

	broadQ := fmt.Sprintf(`
        SELECT e.id
        FROM   %[1]scraft_elements e
        JOIN   %[1]scraft_entries en ON en.id = e.id
        WHERE  en.title LIKE ? AND e.dateDeleted IS NULL
        LIMIT  5`, prefix)
	if err := db.SelectContext(ctx, &ids, broadQ, "%"+name+"%"); err != nil {
		return nil, err
	}
	return ids, nil
}
