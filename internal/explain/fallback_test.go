package explain

import (
	"strings"
	"testing"

	"github.com/roamdigital/explainer/internal/model"
)

func TestFallbackNamesDropoutStep(t *testing.T) {
	present := true
	absent := false
	trace := []model.TraceStep{
		{Step: model.StepResolveCategories, Count: 3, TargetPresent: &present},
		{Step: model.StepMainQuery, Count: 0, TargetPresent: &absent},
	}
	got := Fallback(trace)
	if !strings.Contains(got, "0 item(s)") {
		t.Errorf("expected final count, got %s", got)
	}
	if !strings.Contains(got, "Products matching category, tier, and taxonomy filters") {
		t.Errorf("expected dropout step name, got %s", got)
	}
}

func TestFallbackEmptyTrace(t *testing.T) {
	got := Fallback(nil)
	if got == "" {
		t.Error("expected a non-empty clarifying fallback")
	}
}
