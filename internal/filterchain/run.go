// Package filterchain implements the Page-Component Filter Chain (C4):
// the nine-step algorithm that turns a resolved products block into a
// ComponentConfig plus an ordered, target-annotated trace.
package filterchain

import (
	"context"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/roamdigital/explainer/internal/model"
	"github.com/roamdigital/explainer/internal/query"
)

// Run executes the nine filter-chain steps against block, appending one
// TraceStep per step in fixed order. targets is the optional list of
// product ids the intent asked about; it only affects TargetPresent, not
// the computed sets.
func Run(ctx context.Context, db *sqlx.DB, sc *model.SchemaCache, prefix string, block model.Block, targets []int) (*model.ComponentConfig, []model.TraceStep, error) {
	cfg := &model.ComponentConfig{
		Limit:  intField(block.FieldValues, "limit", 0),
		Order:  sortOrderField(block.FieldValues, "order"),
		Style:  stringPtrField(block.FieldValues, "style"),
		Layout: stringField(block.FieldValues, "layout"),
	}

	var trace []model.TraceStep

	// 1. resolve_categories
	categories, err := query.StripAncestors(ctx, db, prefix, ids(block.Relations[model.FieldIncludeCategories]))
	if err != nil {
		return nil, nil, err
	}
	cfg.Categories = categories
	trace = append(trace, step(model.StepResolveCategories, categories, targets, nil))

	// 2. resolve_regions
	regions, err := query.StripAncestors(ctx, db, prefix, ids(block.Relations[model.FieldIncludeRegions]))
	if err != nil {
		return nil, nil, err
	}
	cfg.Regions = regions
	trace = append(trace, step(model.StepResolveRegions, regions, targets, nil))

	// 3. region_to_products
	var regionProducts []int
	regionDetails := map[string]any{}
	if len(regions) > 0 {
		var postcodes []string
		var byPostcode, byRelation []int
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			postcodes, err = query.PostcodesForRegions(gctx, db, sc, prefix, regions)
			if err != nil {
				return err
			}
			byPostcode, err = query.ProductsByPostcode(gctx, db, prefix, postcodes)
			return err
		})
		g.Go(func() (err error) {
			byRelation, err = query.ProductsByRegionRelation(gctx, db, sc, prefix, regions)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
		regionProducts = union(byPostcode, byRelation)
		regionDetails["postcodes"] = postcodes
	}
	trace = append(trace, step(model.StepRegionToProducts, regionProducts, targets, regionDetails))

	// 4. resolve_taxonomy
	taxonomy, err := query.StripAncestors(ctx, db, prefix, ids(block.Relations[model.FieldIncludeTaxonomy]))
	if err != nil {
		return nil, nil, err
	}
	cfg.Taxonomy = taxonomy
	trace = append(trace, step(model.StepResolveTaxonomy, taxonomy, targets, nil))

	// tiers are used directly; there is no ancestor-stripping step for a
	// flat, non-hierarchical dimension.
	tiers := ids(block.Relations[model.FieldIncludeTiers])
	cfg.Tiers = tiers

	// 5. main_query
	dims := []query.Dimension{
		{FieldHandle: model.FieldIncludeCategories, IDs: categories},
		{FieldHandle: model.FieldIncludeTiers, IDs: tiers},
		{FieldHandle: model.FieldIncludeTaxonomy, IDs: taxonomy},
	}
	relationSetsActive := len(categories) > 0 || len(tiers) > 0 || len(taxonomy) > 0
	regionSetActive := len(regions) > 0

	var mainSet []int
	switch {
	case regionSetActive && relationSetsActive:
		andResult, err := query.IntersectDimensions(ctx, db, prefix, dims)
		if err != nil {
			return nil, nil, err
		}
		mainSet = intersect(regionProducts, andResult)
	case regionSetActive:
		mainSet = regionProducts
	case relationSetsActive:
		mainSet, err = query.IntersectDimensions(ctx, db, prefix, dims)
		if err != nil {
			return nil, nil, err
		}
	default:
		mainSet = nil
	}
	trace = append(trace, step(model.StepMainQuery, mainSet, targets, nil))

	// 6. merge_explicit
	explicit := union(ids(block.Relations[model.FieldProducts]), ids(block.Relations[model.FieldIncludeProducts]))
	cfg.ExplicitProducts = explicit

	anyFilterActive := len(categories) > 0 || len(regions) > 0 || len(tiers) > 0 || len(taxonomy) > 0
	var merged []int
	if anyFilterActive {
		merged = union(mainSet, explicit)
	} else {
		merged = explicit
	}
	trace = append(trace, step(model.StepMergeExplicit, merged, targets, nil))

	// 7. apply_excludes
	exclude := ids(block.Relations[model.FieldExcludeProducts])
	cfg.ExcludeProducts = exclude
	afterExcludes := subtract(merged, exclude)
	trace = append(trace, step(model.StepApplyExcludes, afterExcludes, targets, nil))

	// 8. sort
	sorted, sortDetails, err := applySort(ctx, db, prefix, afterExcludes, cfg.Order)
	if err != nil {
		return nil, nil, err
	}
	trace = append(trace, step(model.StepSort, sorted, targets, sortDetails))

	// 9. limit
	final := sorted
	if cfg.Limit > 0 && len(final) > cfg.Limit {
		final = final[:cfg.Limit]
	} else if cfg.Limit == 0 {
		final = nil
	}
	finalStep := step(model.StepLimit, final, targets, nil)
	if titles, err := query.ProductTitles(ctx, db, prefix, final); err == nil {
		pairs := make([]map[string]any, 0, len(titles))
		for _, p := range titles {
			pairs = append(pairs, map[string]any{"id": p.ID, "title": p.Title})
		}
		finalStep.Details = map[string]any{"products": pairs}
	}
	trace = append(trace, finalStep)

	return cfg, trace, nil
}

func step(name model.StepName, productIDs []int, targets []int, details map[string]any) model.TraceStep {
	return model.TraceStep{
		Step:          name,
		Description:   model.StepLabels[name],
		Count:         len(productIDs),
		ProductIDs:    productIDs,
		TargetPresent: model.TargetPresence(productIDs, targets),
		Details:       details,
	}
}

func ids(products []model.Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func union(sets ...[]int) []int {
	seen := map[int]bool{}
	var out []int
	for _, set := range sets {
		for _, id := range set {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

func intersect(a, b []int) []int {
	inB := make(map[int]bool, len(b))
	for _, id := range b {
		inB[id] = true
	}
	var out []int
	for _, id := range a {
		if inB[id] {
			out = append(out, id)
		}
	}
	return out
}

func subtract(a, remove []int) []int {
	gone := make(map[int]bool, len(remove))
	for _, id := range remove {
		gone[id] = true
	}
	var out []int
	for _, id := range a {
		if !gone[id] {
			out = append(out, id)
		}
	}
	return out
}

func intField(fv map[string]any, key string, def int) int {
	if v, ok := fv[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return def
}

func stringField(fv map[string]any, key string) string {
	if v, ok := fv[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func stringPtrField(fv map[string]any, key string) *string {
	if v, ok := fv[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return &s
		}
	}
	return nil
}

func sortOrderField(fv map[string]any, key string) model.SortOrder {
	switch stringField(fv, key) {
	case string(model.SortEventDate):
		return model.SortEventDate
	case string(model.SortRandom):
		return model.SortRandom
	default:
		return model.SortAlphabetically
	}
}
