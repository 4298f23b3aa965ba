// atdw.go implements the data-access helpers the Import-Domain Collector
// (C6) needs: enabled product-region categories with their postcode
// sets, category-mapping-group slug lookups, and linked-entry state.
package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// RegionPostcodes pairs a region category id with its configured
// postcode set, for the subset of regions that are enabled for product
// filtering.
type RegionPostcodes struct {
	RegionID  int      `db:"region_id"`
	Postcodes []string `db:"-"`
}

// EnabledProductRegions enumerates every enabled product-region category
// and the postcode set configured against it.
func EnabledProductRegions(ctx context.Context, db *sqlx.DB, prefix string) ([]RegionPostcodes, error) {
	q := fmt.Sprintf(`
        SELECT e.id AS region_id, content.field_roam_categories_regionPostcodes AS payload
        FROM   %[1]scraft_elements e
        JOIN   %[1]scraft_categories c ON c.id = e.id
        JOIN   %[1]scraft_content content ON content.elementId = e.id
        WHERE  c.enabled = 1 AND e.dateDeleted IS NULL`, prefix)

	var rows []struct {
		RegionID int    `db:"region_id"`
		Payload  string `db:"payload"`
	}
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}

	out := make([]RegionPostcodes, 0, len(rows))
	for _, r := range rows {
		var pairs []postcodePair
		if r.Payload != "" {
			_ = json.Unmarshal([]byte(r.Payload), &pairs)
		}
		var postcodes []string
		for _, p := range pairs {
			if p.Col2 != "" {
				postcodes = append(postcodes, p.Col2)
			}
		}
		out = append(out, RegionPostcodes{RegionID: r.RegionID, Postcodes: postcodes})
	}
	return out, nil
}

// ImportTableStats reports the total row count in the ATDW import table,
// for the "no match" trace step when a lookup misses entirely.
func ImportTableStats(ctx context.Context, db *sqlx.DB, prefix string) (int, error) {
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %satdw_import`, prefix)
	var total int
	if err := db.GetContext(ctx, &total, q); err != nil {
		return 0, err
	}
	return total, nil
}

// CategoryBySlug finds the category in mappingGroup whose slug matches
// slug (case-insensitive), returning (0, nil) on a miss.
func CategoryBySlug(ctx context.Context, db *sqlx.DB, prefix, mappingGroup, slug string) (int, error) {
	q := fmt.Sprintf(`
        SELECT c.id
        FROM   %[1]scraft_categories c
        JOIN   %[1]scraft_categorygroups g ON g.id = c.groupId
        WHERE  g.handle = ? AND LOWER(c.slug) = LOWER(?)
        LIMIT  1`, prefix)
	var id int
	if err := db.GetContext(ctx, &id, q, mappingGroup, slug); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return id, nil
}

// RelatedProductCategories returns the titles of product categories
// related to mappingCategoryID.
func RelatedProductCategories(ctx context.Context, db *sqlx.DB, prefix string, mappingCategoryID int) ([]string, error) {
	q := fmt.Sprintf(`
        SELECT en.title
        FROM   %[1]scraft_relations r
        JOIN   %[1]scraft_entries en ON en.id = r.targetId
        WHERE  r.sourceId = ?`, prefix)
	var out []string
	if err := db.SelectContext(ctx, &out, q, mappingCategoryID); err != nil {
		return nil, err
	}
	return out, nil
}

// EntryState is the subset of a linked entry's fields the status
// evaluation step reports.
type EntryState struct {
	Enabled       bool       `db:"enabled"`
	Custom        bool       `db:"custom"`
	CategoryCount int        `db:"category_count"`
	ImageCount    int        `db:"image_count"`
	ExpiryDate    *string    `db:"expiry_date"`
	TypeID        int        `db:"type_id"`
	Categories    []string   `db:"-"`
}

// EntryByID loads the linked-entry row for entryID. Returns (nil, nil)
// on a miss.
func EntryByID(ctx context.Context, db *sqlx.DB, prefix string, entryID int) (*EntryState, error) {
	q := fmt.Sprintf(`
        SELECT e.enabled AS enabled, en.custom AS custom, en.typeId AS type_id, en.expiryDate AS expiry_date,
               (SELECT COUNT(*) FROM %[1]scraft_relations cr
                  JOIN %[1]scraft_fields cf ON cf.id = cr.fieldId
                  WHERE cr.sourceId = e.id AND cf.handle = 'includeCategories') AS category_count,
               (SELECT COUNT(*) FROM %[1]scraft_relations ir
                  JOIN %[1]scraft_fields ifld ON ifld.id = ir.fieldId
                  WHERE ir.sourceId = e.id AND ifld.handle = 'images') AS image_count
        FROM   %[1]scraft_elements e
        JOIN   %[1]scraft_entries en ON en.id = e.id
        WHERE  e.id = ?
        LIMIT  1`, prefix)
	var st EntryState
	if err := db.GetContext(ctx, &st, q, entryID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	cats, err := RelatedProductCategories(ctx, db, prefix, entryID)
	if err != nil {
		return nil, err
	}
	st.Categories = cats
	return &st, nil
}
