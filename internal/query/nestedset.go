// nestedset.go implements ancestor stripping over the nested-set
// structure table: given a set S of category ids, return the subset
// whose members have no descendant also in S.
package query

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// StripAncestors returns the subset of ids whose members are not an
// ancestor (in the lft/rgt nested-set sense) of any other member of ids.
// Complexity is linear in the number of rows returned, via a single
// self-join rather than recursive lookups.
func StripAncestors(ctx context.Context, db *sqlx.DB, prefix string, ids []int) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) == 1 {
		return ids, nil
	}

	q, args, err := sqlx.In(fmt.Sprintf(`
        SELECT DISTINCT parent.elementId
        FROM   %scraft_structureelements parent
        JOIN   %scraft_structureelements child
               ON  parent.structureId = child.structureId
               AND parent.lft < child.lft
               AND parent.rgt > child.rgt
               AND parent.elementId <> child.elementId
        WHERE  parent.elementId IN (?)
          AND  child.elementId IN (?)`, prefix, prefix), ids, ids)
	if err != nil {
		return nil, err
	}
	q = db.Rebind(q)

	var ancestors []int
	if err := db.SelectContext(ctx, &ancestors, q, args...); err != nil {
		return nil, err
	}

	isAncestor := make(map[int]bool, len(ancestors))
	for _, a := range ancestors {
		isAncestor[a] = true
	}

	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !isAncestor[id] {
			out = append(out, id)
		}
	}
	return out, nil
}
