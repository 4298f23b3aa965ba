// dimensions.go implements the multi-dimensional AND: given N non-empty
// id-sets across relation dimensions, run one parameterised query per
// dimension and intersect the resulting product sets.
package query

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Dimension names the relation field whose target ids gate a product.
type Dimension struct {
	FieldHandle string
	IDs         []int
}

// IntersectDimensions returns the product set related to at least one id
// in every non-empty dimension. An empty dims slice yields an empty
// result, per contract.
func IntersectDimensions(ctx context.Context, db *sqlx.DB, prefix string, dims []Dimension) ([]int, error) {
	var active []Dimension
	for _, d := range dims {
		if len(d.IDs) > 0 {
			active = append(active, d)
		}
	}
	if len(active) == 0 {
		return nil, nil
	}

	var intersection map[int]bool
	for _, d := range active {
		ids, err := productsByDimension(ctx, db, prefix, d.FieldHandle, d.IDs)
		if err != nil {
			return nil, err
		}
		set := make(map[int]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		if intersection == nil {
			intersection = set
			continue
		}
		for id := range intersection {
			if !set[id] {
				delete(intersection, id)
			}
		}
		if len(intersection) == 0 {
			return nil, nil
		}
	}

	out := make([]int, 0, len(intersection))
	for id := range intersection {
		out = append(out, id)
	}
	return out, nil
}

func productsByDimension(ctx context.Context, db *sqlx.DB, prefix, fieldHandle string, ids []int) ([]int, error) {
	q, args, err := sqlx.In(fmt.Sprintf(`
        SELECT DISTINCT r.sourceId
        FROM   %[1]scraft_relations r
        JOIN   %[1]scraft_fields f ON f.id = r.fieldId
        JOIN   %[1]scraft_elements e ON e.id = r.sourceId
        WHERE  f.handle = ?
          AND  r.targetId IN (?)
          AND  e.enabled = 1
          AND  e.dateDeleted IS NULL`, prefix), fieldHandle, ids)
	if err != nil {
		return nil, err
	}
	q = db.Rebind(q)

	var out []int
	if err := db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}
