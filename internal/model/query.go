package model

import "time"

// Known relation field handles. Relation harvesting always checks these
// seven before folding in any other relation field the block carries.
const (
	FieldIncludeCategories = "includeCategories"
	FieldIncludeRegions    = "includeRegions"
	FieldIncludeTiers      = "includeTiers"
	FieldIncludeTaxonomy   = "includeTaxonomy"
	FieldProducts          = "products"
	FieldIncludeProducts   = "includeProducts"
	FieldExcludeProducts   = "excludeProducts"
)

// KnownRelationHandles lists the seven named relation fields that
// relation harvesting always looks for, in a stable order.
var KnownRelationHandles = []string{
	FieldIncludeCategories,
	FieldIncludeRegions,
	FieldIncludeTiers,
	FieldIncludeTaxonomy,
	FieldProducts,
	FieldIncludeProducts,
	FieldExcludeProducts,
}

// InternalColumns are excluded when the Generic Block Inspector (C5)
// summarises a block's scalar fields.
var InternalColumns = map[string]bool{
	"id": true, "elementId": true, "siteId": true,
	"dateCreated": true, "dateUpdated": true, "uid": true,
}

// ImportRecordRow is one row of the ATDW import content table, as found
// by id or by name.
type ImportRecordRow struct {
	ID           int       `db:"id"`
	ProductName  string    `db:"product_name"`
	Category     string    `db:"category"`
	AtdwStatus   string    `db:"atdw_status"`
	Imported     bool      `db:"imported"`
	EntryID      *int      `db:"entry_id"`
	PayloadJSON  string    `db:"payload"`
	AuditReason  string    `db:"audit_reason"`
	DateUpdated  time.Time `db:"date_updated"`
}

// ProductState is the row the orchestrator uses to confirm a target
// product exists and to report its basic shape, plus two scalar counts.
type ProductState struct {
	ID               int    `db:"id"`
	Title            string `db:"title"`
	Enabled          bool   `db:"enabled"`
	CategoryCount    int    `db:"category_count"`
	ImageCount       int    `db:"image_count"`
}
