// sort.go implements the three sort strategies a products block
// supports: alphabetical (fetch titles, localized compare, id as
// tie-break), event-date (assumed already ordered by the database), and
// random (left as-is, noted in the trace).
package filterchain

import (
	"context"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/roamdigital/explainer/internal/model"
	"github.com/roamdigital/explainer/internal/query"
)

func applySort(ctx context.Context, db *sqlx.DB, prefix string, ids []int, order model.SortOrder) ([]int, map[string]any, error) {
	switch order {
	case model.SortAlphabetically:
		return sortAlphabetically(ctx, db, prefix, ids)
	case model.SortRandom:
		return ids, map[string]any{"note": "shuffles on each load"}, nil
	default: // model.SortEventDate
		return ids, nil, nil
	}
}

func sortAlphabetically(ctx context.Context, db *sqlx.DB, prefix string, ids []int) ([]int, map[string]any, error) {
	if len(ids) == 0 {
		return ids, nil, nil
	}
	titled, err := query.ProductTitles(ctx, db, prefix, ids)
	if err != nil {
		return nil, nil, err
	}

	sort.SliceStable(titled, func(i, j int) bool {
		ti, tj := strings.ToLower(titled[i].Title), strings.ToLower(titled[j].Title)
		if ti != tj {
			return ti < tj
		}
		return titled[i].ID < titled[j].ID
	})

	out := make([]int, len(titled))
	for i, p := range titled {
		out[i] = p.ID
	}
	return out, nil, nil
}
