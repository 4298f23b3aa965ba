// region.go implements the region→product expansion: postcode
// extraction from a JSON field, postcode-indexed product search, and
// direct region→product relation lookup.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/roamdigital/explainer/internal/model"
)

type postcodePair struct {
	Col1 string `json:"col1"`
	Col2 string `json:"col2"`
}

// PostcodesForRegions parses field_roam_categories_regionPostcodes for
// each region element id, collects col2 trimmed and non-empty, and
// dedupes across regions.
func PostcodesForRegions(ctx context.Context, db *sqlx.DB, sc *model.SchemaCache, prefix string, regionIDs []int) ([]string, error) {
	if len(regionIDs) == 0 {
		return nil, nil
	}
	fieldID, ok := sc.FieldIDs["global:"+model.GlobalFieldRegionPostcodes]
	if !ok {
		return nil, nil
	}

	q, args, err := sqlx.In(fmt.Sprintf(`
        SELECT content.field_roam_categories_regionPostcodes AS payload
        FROM   %scraft_content content
        WHERE  content.elementId IN (?) AND content.fieldId = ?`, prefix), regionIDs, fieldID)
	if err != nil {
		return nil, err
	}
	q = db.Rebind(q)

	var payloads []string
	if err := db.SelectContext(ctx, &payloads, q, args...); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []string
	for _, raw := range payloads {
		if raw == "" {
			continue
		}
		var pairs []postcodePair
		if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
			continue // malformed payload, skip rather than fail the request
		}
		for _, p := range pairs {
			pc := strings.TrimSpace(p.Col2)
			if pc == "" || seen[pc] {
				continue
			}
			seen[pc] = true
			out = append(out, pc)
		}
	}
	return out, nil
}

// ProductsByPostcode matches field_roam_products_locations keywords
// against each postcode, space-padded, unions across postcodes, and
// returns only enabled, non-deleted products.
func ProductsByPostcode(ctx context.Context, db *sqlx.DB, prefix string, postcodes []string) ([]int, error) {
	if len(postcodes) == 0 {
		return nil, nil
	}

	seen := map[int]bool{}
	var out []int
	for _, pc := range postcodes {
		q := fmt.Sprintf(`
            SELECT DISTINCT e.id
            FROM   %scraft_elements e
            JOIN   %scraft_searchindex si ON si.elementId = e.id
            WHERE  si.attribute = 'field_roam_products_locations'
              AND  si.keywords LIKE ?
              AND  e.enabled = 1
              AND  e.dateDeleted IS NULL`, prefix, prefix)
		var ids []int
		if err := db.SelectContext(ctx, &ids, q, "% "+pc+" %"); err != nil {
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

// ProductsByRegionRelation looks up products directly related to any of
// regionIDs via the relations table, sectionId = products, enabled and
// non-deleted only.
func ProductsByRegionRelation(ctx context.Context, db *sqlx.DB, sc *model.SchemaCache, prefix string, regionIDs []int) ([]int, error) {
	if len(regionIDs) == 0 {
		return nil, nil
	}
	productsSectionID, ok := sc.SectionIDs[model.SectionProducts]
	if !ok {
		return nil, nil
	}

	q, args, err := sqlx.In(fmt.Sprintf(`
        SELECT DISTINCT e.id
        FROM   %scraft_relations r
        JOIN   %scraft_elements e ON e.id = r.sourceId
        JOIN   %scraft_entries en ON en.id = e.id
        WHERE  r.targetId IN (?)
          AND  en.sectionId = ?
          AND  e.enabled = 1
          AND  e.dateDeleted IS NULL`, prefix, prefix, prefix), regionIDs, productsSectionID)
	if err != nil {
		return nil, err
	}
	q = db.Rebind(q)

	var ids []int
	if err := db.SelectContext(ctx, &ids, q, args...); err != nil {
		return nil, err
	}
	return ids, nil
}
