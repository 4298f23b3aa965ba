// Package model holds the wire/domain types shared across the explanation
// pipeline: the structured intent C7 produces, the page-component and
// ATDW-import configs C4/C5/C6 build, the trace every collector emits, and
// the chat history C9 folds into its prompt. These mirror the data model
// in the specification section by section; nothing here owns behaviour
// beyond small constructors and the enum sets a field is restricted to.
package model

import "time"

// Product is the {id, title} pair used throughout relation lists and the
// final trace step's details.products payload.
type Product struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

//
// Block (page-builder unit)
//

// Block is one instance of a page-builder component on a page: the unit of
// configuration and tracing.
type Block struct {
	BlockID     int                    `json:"blockId"`
	BlockType   string                 `json:"blockType"` // handle
	SortOrder   int                    `json:"sortOrder"`
	FieldValues map[string]any         `json:"fieldValues"`
	Relations   map[string][]Product   `json:"relations"` // field-handle -> ordered list
}

//
// ComponentConfig (products block)
//

// SortOrder enumerates the three sort strategies a products block supports.
type SortOrder string

const (
	SortAlphabetically SortOrder = "alphabetically"
	SortEventDate      SortOrder = "eventDate"
	SortRandom         SortOrder = "random"
)

// ComponentConfig is the resolved configuration of a "products" block: six
// relation lists plus four scalars.
type ComponentConfig struct {
	Categories       []int     `json:"categories"`
	Regions          []int     `json:"regions"`
	Tiers            []int     `json:"tiers"`
	Taxonomy         []int     `json:"taxonomy"`
	ExplicitProducts []int     `json:"explicitProducts"`
	ExcludeProducts  []int     `json:"excludeProducts"`
	Limit            int       `json:"limit"`
	Order            SortOrder `json:"order"`
	Style            *string   `json:"style"`
	Layout           string    `json:"layout"`
}

//
// Trace step
//

// StepName enumerates the filter-chain and collector step identifiers that
// appear in a trace, in the fixed order they must be emitted.
type StepName string

const (
	StepResolveCategories StepName = "resolve_categories"
	StepResolveRegions    StepName = "resolve_regions"
	StepRegionToProducts  StepName = "region_to_products"
	StepResolveTaxonomy   StepName = "resolve_taxonomy"
	StepMainQuery         StepName = "main_query"
	StepMergeExplicit     StepName = "merge_explicit"
	StepApplyExcludes     StepName = "apply_excludes"
	StepSort              StepName = "sort"
	StepLimit             StepName = "limit"

	StepBlockConfig StepName = "block_config"

	StepAtdwLookup          StepName = "atdw_lookup"
	StepAtdwRegionConfig    StepName = "atdw_region_config"
	StepAtdwPostcodeMatch   StepName = "atdw_postcode_match"
	StepAtdwStatusEval      StepName = "atdw_status_eval"
	StepAtdwCategoryMapping StepName = "atdw_category_mapping"
	StepAtdwEntryState      StepName = "atdw_entry_state"
)

// StepLabels maps each enumerated step to the human-friendly label the
// generator renders in its prompt. Internal step names never reach the
// model or the client verbatim.
var StepLabels = map[StepName]string{
	StepResolveCategories:   "Category filters",
	StepResolveRegions:      "Region filters",
	StepRegionToProducts:    "Products matching selected regions",
	StepResolveTaxonomy:     "Taxonomy filters",
	StepMainQuery:           "Products matching category, tier, and taxonomy filters",
	StepMergeExplicit:       "Combined with manually pinned products",
	StepApplyExcludes:       "Manually excluded products removed",
	StepSort:                "Sort order applied",
	StepLimit:               "Display limit applied",
	StepBlockConfig:         "Component settings",
	StepAtdwLookup:          "Import record lookup",
	StepAtdwRegionConfig:    "Region import settings",
	StepAtdwPostcodeMatch:   "Postcode match against region settings",
	StepAtdwStatusEval:      "Import status",
	StepAtdwCategoryMapping: "Category mapping",
	StepAtdwEntryState:      "Linked entry state",
}

// TraceStep is one verifiable snapshot in a trace, including a
// target-presence predicate.
type TraceStep struct {
	Step          StepName       `json:"step"`
	Description   string         `json:"description"`
	Count         int            `json:"count"`
	ProductIDs    []int          `json:"productIds"`
	TargetPresent *bool          `json:"targetPresent"` // nil means "no target supplied"
	Details       map[string]any `json:"details,omitempty"`
}

// TargetPresence computes the TraceStep.TargetPresent value for a step
// given the surviving product-id set and the caller's targets. Returns nil
// when no targets were supplied, matching the "no meaningful predicate"
// invariant in the spec.
func TargetPresence(productIDs, targets []int) *bool {
	if len(targets) == 0 {
		return nil
	}
	set := make(map[int]struct{}, len(productIDs))
	for _, id := range productIDs {
		set[id] = struct{}{}
	}
	present := false
	for _, t := range targets {
		if _, ok := set[t]; ok {
			present = true
			break
		}
	}
	return &present
}

//
// Parsed intent
//

// Domain enumerates the two content domains plus the catch-all the intent
// parser can route a question to.
type Domain string

const (
	DomainPageComponent Domain = "page_component"
	DomainAtdwImport    Domain = "atdw_import"
	DomainGeneral       Domain = "general"
)

// QuestionType enumerates the five question classes the parser recognises.
type QuestionType string

const (
	QuestionWhyIncluded QuestionType = "why_included"
	QuestionWhyExcluded QuestionType = "why_excluded"
	QuestionWhatShows   QuestionType = "what_shows"
	QuestionWhyOrder    QuestionType = "why_order"
	QuestionGeneral     QuestionType = "general"
)

// ParsedIntent is the structured interpretation of a free-form question.
type ParsedIntent struct {
	Domain        Domain       `json:"domain"`
	PageURI       string       `json:"pageUri,omitempty"`
	PageName      string       `json:"pageName,omitempty"`
	ComponentType string       `json:"componentType"` // lower-case
	ProductNames  []string     `json:"productNames"`
	AtdwProductID string       `json:"atdwProductId,omitempty"`
	QuestionType  QuestionType `json:"questionType"`
	RawQuestion   string       `json:"rawQuestion"`
}

//
// Import record snapshot (AtdwImportConfig)
//

// AtdwImportConfig is the data snapshot for an external-import (ATDW)
// product record, plus the sets the region/category steps derive.
type AtdwImportConfig struct {
	ProductID    string     `json:"productId"`
	ProductName  string     `json:"productName"`
	Category     string     `json:"category"`
	AtdwStatus   string     `json:"atdwStatus"`
	Imported     bool       `json:"imported"`
	HasEntry     bool       `json:"hasEntry"`
	EntryID      *int       `json:"entryId,omitempty"`
	Postcode     string     `json:"postcode,omitempty"`
	City         string     `json:"city,omitempty"`
	Organisation string     `json:"organisation,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	LastUpdated  *time.Time `json:"lastUpdated,omitempty"`

	// Derived sets.
	ConfiguredRegions  []int    `json:"configuredRegions"`
	ConfiguredPostcodes []string `json:"configuredPostcodes"`
	MatchingRegions    []int    `json:"matchingRegions"`
	MappedCategories   []string `json:"mappedCategories"`
	EntryCategories    []string `json:"entryCategories"`
}

//
// Chat history
//

// Role enumerates the two chat-turn roles accepted in history.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of prior conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SanitizeHistory discards malformed entries (unknown role, empty content)
// and caps the result at the 20 most-recent turns, preserving order.
func SanitizeHistory(raw []ChatMessage) []ChatMessage {
	clean := make([]ChatMessage, 0, len(raw))
	for _, m := range raw {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		if m.Content == "" {
			continue
		}
		clean = append(clean, m)
	}
	const maxTurns = 20
	if len(clean) > maxTurns {
		clean = clean[len(clean)-maxTurns:]
	}
	return clean
}
