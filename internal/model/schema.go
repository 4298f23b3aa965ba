package model

import "time"

// SchemaCache is the per-tenant mapping of well-known handles to numeric
// identifiers and derived table names that the Schema Resolver (C1)
// builds and the Query Layer (C3) depends on.
type SchemaCache struct {
	// FieldIDs is keyed "global:{handle}" for global-context fields and
	// "{handle}" (bare) for fields scoped to the page-builder block type.
	FieldIDs map[string]int `json:"fieldIds"`

	// SectionIDs maps section handle ("products", "pages", "homepage") to
	// numeric section id.
	SectionIDs map[string]int `json:"sectionIds"`

	// MatrixContentTable is "craft_matrixcontent_" + the lower-cased
	// page-builder field handle. Must match
	// ^craft_matrixcontent_[a-z0-9_]+$ before any query uses it.
	MatrixContentTable string `json:"matrixContentTable"`

	CachedAt time.Time `json:"cachedAt"`
}

// Well-known handles the rebuild algorithm resolves, per spec section 4.2.
const (
	PageBuilderBlockTypeHandle = "pageBuilder"

	GlobalFieldPageBuilder           = "pageBuilder"
	GlobalFieldProductLocations      = "productLocations"
	GlobalFieldDescription           = "description"
	GlobalFieldNextEvent             = "nextEvent"
	GlobalFieldTiers                 = "tiers"
	GlobalFieldRegionPostcodes       = "regionPostcodes"
	GlobalFieldRegionLocalities      = "regionLocalities"

	SectionProducts  = "products"
	SectionPages     = "pages"
	SectionHomepage  = "homepage"
)

// GlobalFieldHandles lists the fixed global-context fields the rebuild
// algorithm step 3 loads, keyed "global:{handle}".
var GlobalFieldHandles = []string{
	GlobalFieldPageBuilder,
	GlobalFieldProductLocations,
	GlobalFieldDescription,
	GlobalFieldNextEvent,
	GlobalFieldTiers,
	GlobalFieldRegionPostcodes,
	GlobalFieldRegionLocalities,
}

// WellKnownSections lists the sections the rebuild algorithm step 4 loads.
var WellKnownSections = []string{SectionProducts, SectionPages, SectionHomepage}
