package blockinspect

import (
	"testing"

	"github.com/roamdigital/explainer/internal/model"
)

func TestInspectSummarisesRelationsAndScalars(t *testing.T) {
	block := model.Block{
		FieldValues: map[string]any{
			"heading":     "Why visit",
			"subtitle":    "",
			"id":          42,
			"dateCreated": "2026-01-01",
		},
		Relations: map[string][]model.Product{
			model.FieldIncludeCategories: {{ID: 1, Title: "Tours"}},
			model.FieldProducts:          {{ID: 9, Title: "Reef Dive"}},
		},
	}

	cfg, step := Inspect(block, []int{9})

	if len(cfg.Categories) != 1 || cfg.Categories[0] != 1 {
		t.Errorf("expected categories [1], got %v", cfg.Categories)
	}
	if len(cfg.ExplicitProducts) != 1 || cfg.ExplicitProducts[0] != 9 {
		t.Errorf("expected explicit products [9], got %v", cfg.ExplicitProducts)
	}
	if _, ok := step.Details["heading"]; !ok {
		t.Errorf("expected heading in details, got %v", step.Details)
	}
	if _, ok := step.Details["subtitle"]; ok {
		t.Errorf("expected empty subtitle to be excluded")
	}
	if _, ok := step.Details["id"]; ok {
		t.Errorf("expected internal column id to be excluded")
	}
	if step.TargetPresent == nil || !*step.TargetPresent {
		t.Errorf("expected targetPresent=true, got %v", step.TargetPresent)
	}
}
