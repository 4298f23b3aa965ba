// Package blockinspect implements the Generic Block Inspector (C5): for
// any non-"products" block, summarise its populated relations and
// non-trivial scalar fields into a single trace step. No filter
// semantics are implied; this is presentation, not computation.
package blockinspect

import (
	"github.com/roamdigital/explainer/internal/model"
)

// Inspect builds a minimal ComponentConfig from block's relations (the
// same four relation handles the filter chain reads, without ancestor
// stripping or any other computation) and a single block_config trace
// step summarising what the block actually carries.
func Inspect(block model.Block, targets []int) (*model.ComponentConfig, model.TraceStep) {
	cfg := &model.ComponentConfig{
		Categories:       idsOf(block.Relations[model.FieldIncludeCategories]),
		Regions:          idsOf(block.Relations[model.FieldIncludeRegions]),
		Tiers:            idsOf(block.Relations[model.FieldIncludeTiers]),
		Taxonomy:         idsOf(block.Relations[model.FieldIncludeTaxonomy]),
		ExplicitProducts: unionIDs(block.Relations[model.FieldProducts], block.Relations[model.FieldIncludeProducts]),
	}

	details := map[string]any{}
	for handle, products := range block.Relations {
		if len(products) == 0 {
			continue
		}
		details[handle] = idsOf(products)
	}
	for field, value := range block.FieldValues {
		if model.InternalColumns[field] {
			continue
		}
		if isTrivial(value) {
			continue
		}
		details[field] = value
	}

	allIDs := cfg.ExplicitProducts
	step := model.TraceStep{
		Step:          model.StepBlockConfig,
		Description:   model.StepLabels[model.StepBlockConfig],
		Count:         len(allIDs),
		ProductIDs:    allIDs,
		TargetPresent: model.TargetPresence(allIDs, targets),
		Details:       details,
	}
	return cfg, step
}

func idsOf(products []model.Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func unionIDs(a, b []model.Product) []int {
	seen := map[int]bool{}
	var out []int
	for _, list := range [][]model.Product{a, b} {
		for _, p := range list {
			if !seen[p.ID] {
				seen[p.ID] = true
				out = append(out, p.ID)
			}
		}
	}
	return out
}

// isTrivial reports whether a scalar field value is empty enough to
// exclude from the summary (blank string, zero, false, nil).
func isTrivial(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	}
	return false
}
