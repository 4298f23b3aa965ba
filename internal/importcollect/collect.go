// Package importcollect implements the Import-Domain Collector (C6): it
// turns a parsed intent's atdwProductId/productNames into an
// AtdwImportConfig snapshot plus a six-step trace. Each step reports
// pure facts; the generator is responsible for the prose interpretation.
package importcollect

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/roamdigital/explainer/internal/model"
	"github.com/roamdigital/explainer/internal/query"
)

const categoryMappingGroup = "atdwCategoryMapping"

// Collect runs the six collector steps. nearbyWindow is the numeric
// postcode-distance window ("nearby" means within this many units of the
// miss) the pipeline configures; the spec's default is 50.
func Collect(ctx context.Context, db *sqlx.DB, prefix string, intent model.ParsedIntent, nearbyWindow int) (*model.AtdwImportConfig, []model.TraceStep, error) {
	cfg := &model.AtdwImportConfig{}
	var trace []model.TraceStep

	// 1. atdw_lookup
	rec, err := lookup(ctx, db, prefix, intent)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		total, statErr := query.ImportTableStats(ctx, db, prefix)
		if statErr != nil {
			return nil, nil, statErr
		}
		trace = append(trace, model.TraceStep{
			Step:        model.StepAtdwLookup,
			Description: model.StepLabels[model.StepAtdwLookup],
			Count:       0,
			Details:     map[string]any{"tableRowCount": total, "matched": false},
		})
		return cfg, trace, nil
	}

	cfg.ProductID = strconv.Itoa(rec.ID)
	cfg.ProductName = rec.ProductName
	cfg.Category = rec.Category
	cfg.AtdwStatus = rec.AtdwStatus
	cfg.Imported = rec.Imported
	cfg.EntryID = rec.EntryID
	cfg.HasEntry = rec.EntryID != nil
	cfg.Reason = rec.AuditReason
	lastUpdated := rec.DateUpdated
	cfg.LastUpdated = &lastUpdated

	payload := parsePayload(rec.PayloadJSON)
	cfg.Postcode = payload.FirstLocation.Postcode
	cfg.City = payload.FirstLocation.City
	cfg.Organisation = payload.FirstLocation.Organisation

	trace = append(trace, model.TraceStep{
		Step:        model.StepAtdwLookup,
		Description: model.StepLabels[model.StepAtdwLookup],
		Count:       1,
		Details:     map[string]any{"matched": true, "productId": cfg.ProductID, "productName": cfg.ProductName},
	})

	// 2. atdw_region_config
	regions, err := query.EnabledProductRegions(ctx, db, prefix)
	if err != nil {
		return nil, nil, err
	}
	var configuredRegions []int
	var configuredPostcodes []string
	seenPostcode := map[string]bool{}
	for _, r := range regions {
		if len(r.Postcodes) == 0 {
			continue
		}
		configuredRegions = append(configuredRegions, r.RegionID)
		for _, pc := range r.Postcodes {
			if !seenPostcode[pc] {
				seenPostcode[pc] = true
				configuredPostcodes = append(configuredPostcodes, pc)
			}
		}
	}
	cfg.ConfiguredRegions = configuredRegions
	cfg.ConfiguredPostcodes = configuredPostcodes
	trace = append(trace, model.TraceStep{
		Step:        model.StepAtdwRegionConfig,
		Description: model.StepLabels[model.StepAtdwRegionConfig],
		Count:       len(configuredRegions),
		Details:     map[string]any{"postcodeCount": len(configuredPostcodes)},
	})

	// 3. atdw_postcode_match
	regionFilteringActive := len(configuredRegions) > 0
	postcodeInSet := containsString(configuredPostcodes, cfg.Postcode)
	present := postcodeInSet || !regionFilteringActive
	nearby := nearbyPostcodes(cfg.Postcode, configuredPostcodes, nearbyWindow, 10)
	trace = append(trace, model.TraceStep{
		Step:          model.StepAtdwPostcodeMatch,
		Description:   model.StepLabels[model.StepAtdwPostcodeMatch],
		Count:         len(nearby),
		TargetPresent: &present,
		Details:       map[string]any{"postcode": cfg.Postcode, "nearby": nearby},
	})

	// 4. atdw_status_eval
	trace = append(trace, model.TraceStep{
		Step:        model.StepAtdwStatusEval,
		Description: model.StepLabels[model.StepAtdwStatusEval],
		Details: map[string]any{
			"status":      cfg.AtdwStatus,
			"imported":    cfg.Imported,
			"hasEntry":    cfg.HasEntry,
			"lastUpdated": cfg.LastUpdated,
			"reason":      cfg.Reason,
		},
	})

	// 5. atdw_category_mapping
	var mapped, unmapped []string
	var entryCategories []string
	topSlug := strings.ToLower(cfg.Category)
	if topCatID, err := query.CategoryBySlug(ctx, db, prefix, categoryMappingGroup, topSlug); err == nil && topCatID > 0 {
		cats, err := query.RelatedProductCategories(ctx, db, prefix, topCatID)
		if err != nil {
			return nil, nil, err
		}
		mapped = append(mapped, cats...)
	} else if err != nil {
		return nil, nil, err
	}

	for _, class := range payload.Classifications {
		catID, err := query.CategoryBySlug(ctx, db, prefix, categoryMappingGroup, strings.ToLower(class))
		if err != nil {
			return nil, nil, err
		}
		if catID > 0 {
			cats, err := query.RelatedProductCategories(ctx, db, prefix, catID)
			if err != nil {
				return nil, nil, err
			}
			mapped = append(mapped, cats...)
		} else {
			unmapped = append(unmapped, class)
		}
	}
	cfg.MappedCategories = dedupeStrings(mapped)

	var entryState *query.EntryState
	if cfg.HasEntry {
		entryState, err = query.EntryByID(ctx, db, prefix, *cfg.EntryID)
		if err != nil {
			return nil, nil, err
		}
		if entryState != nil {
			entryCategories = entryState.Categories
		}
	}
	cfg.EntryCategories = entryCategories

	trace = append(trace, model.TraceStep{
		Step:        model.StepAtdwCategoryMapping,
		Description: model.StepLabels[model.StepAtdwCategoryMapping],
		Count:       len(cfg.MappedCategories),
		Details:     map[string]any{"mapped": cfg.MappedCategories, "unmapped": unmapped, "entryCategories": entryCategories},
	})

	// 6. atdw_entry_state / atdw_entry_link
	if cfg.HasEntry && entryState != nil {
		trace = append(trace, model.TraceStep{
			Step:        model.StepAtdwEntryState,
			Description: model.StepLabels[model.StepAtdwEntryState],
			Details: map[string]any{
				"enabled":       entryState.Enabled,
				"custom":        entryState.Custom,
				"categoryCount": entryState.CategoryCount,
				"imageCount":    entryState.ImageCount,
				"expiryDate":    entryState.ExpiryDate,
				"typeId":        entryState.TypeID,
			},
		})
	} else {
		trace = append(trace, model.TraceStep{
			Step:        model.StepAtdwEntryState,
			Description: model.StepLabels[model.StepAtdwEntryState],
			Details:     map[string]any{"entry": "none"},
		})
	}

	return cfg, trace, nil
}

func lookup(ctx context.Context, db *sqlx.DB, prefix string, intent model.ParsedIntent) (*model.ImportRecordRow, error) {
	if intent.AtdwProductID != "" {
		id, err := strconv.Atoi(intent.AtdwProductID)
		if err == nil {
			if rec, err := query.ImportRecordByID(ctx, db, prefix, id); err != nil {
				return nil, err
			} else if rec != nil {
				return rec, nil
			}
		}
	}
	for _, name := range intent.ProductNames {
		rec, err := query.ImportRecordByName(ctx, db, prefix, name)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}
	}
	return nil, nil
}

func containsString(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func dedupeStrings(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// nearbyPostcodes returns up to limit postcodes from candidates whose
// numeric value lies within window of miss, ordered by closeness.
func nearbyPostcodes(miss string, candidates []string, window, limit int) []string {
	missVal, err := strconv.Atoi(miss)
	if err != nil {
		return nil
	}
	type scored struct {
		pc   string
		dist int
	}
	var near []scored
	for _, c := range candidates {
		cv, err := strconv.Atoi(c)
		if err != nil {
			continue
		}
		d := cv - missVal
		if d < 0 {
			d = -d
		}
		if d <= window {
			near = append(near, scored{pc: c, dist: d})
		}
	}
	sort.Slice(near, func(i, j int) bool { return near[i].dist < near[j].dist })
	if len(near) > limit {
		near = near[:limit]
	}
	out := make([]string, len(near))
	for i, s := range near {
		out[i] = s.pc
	}
	return out
}
