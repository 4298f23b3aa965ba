package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/roamdigital/explainer/internal/model"
)

// fakeModel is a minimal llms.Model stand-in that returns a canned
// response or error without making any network call.
type fakeModel struct {
	content string
	err     error
}

func (f *fakeModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.content}}}, nil
}

func (f *fakeModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return f.content, f.err
}

func TestParseUsesModelOutput(t *testing.T) {
	llm := &fakeModel{content: `{"domain":"page_component","componentType":"FeaturedProducts","questionType":"why_included","productNames":["Reef Dive"]}`}
	got := Parse(context.Background(), llm, "Why does Reef Dive show on the homepage?", "/tours/homepage")

	if got.Domain != model.DomainPageComponent {
		t.Errorf("expected page_component, got %s", got.Domain)
	}
	if got.ComponentType != "featuredproducts" {
		t.Errorf("expected lower-cased component type, got %s", got.ComponentType)
	}
	if got.QuestionType != model.QuestionWhyIncluded {
		t.Errorf("expected why_included, got %s", got.QuestionType)
	}
	if len(got.ProductNames) != 1 || got.ProductNames[0] != "Reef Dive" {
		t.Errorf("expected [Reef Dive], got %v", got.ProductNames)
	}
}

func TestParseFallsBackOnModelError(t *testing.T) {
	llm := &fakeModel{err: errors.New("upstream timeout")}
	got := Parse(context.Background(), llm, "Why was this ATDW product not imported?", "")

	if got.Domain != model.DomainAtdwImport {
		t.Errorf("expected atdw_import fallback, got %s", got.Domain)
	}
}

func TestParseFallsBackOnUnparseableResponse(t *testing.T) {
	llm := &fakeModel{content: "I'm not sure, can you clarify?"}
	got := Parse(context.Background(), llm, "How does the hero banner work?", "")

	if got.Domain != model.DomainPageComponent {
		t.Errorf("expected page_component fallback, got %s", got.Domain)
	}
}

func TestParseAdminURLOverridesDomainAndMergesName(t *testing.T) {
	llm := &fakeModel{content: `{"domain":"page_component","productNames":["Caravan Park"]}`}
	got := Parse(context.Background(), llm, "why isn't this product importing?", "/admin/entries/products/13229-wycheproof-caravan-park")

	if got.Domain != model.DomainAtdwImport {
		t.Errorf("expected admin URL to force atdw_import, got %s", got.Domain)
	}
	if len(got.ProductNames) != 2 || got.ProductNames[0] != "Wycheproof Caravan Park" {
		t.Errorf("expected admin name first, got %v", got.ProductNames)
	}
}

func TestParseNilModelFallsBack(t *testing.T) {
	got := Parse(context.Background(), nil, "why is this product import stuck?", "")
	if got.Domain != model.DomainAtdwImport {
		t.Errorf("expected fallback classification with nil model, got %s", got.Domain)
	}
}
