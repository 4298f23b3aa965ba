package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roamdigital/explainer/internal/errs"
	"github.com/roamdigital/explainer/internal/explain"
	"github.com/roamdigital/explainer/internal/kv"
	"github.com/roamdigital/explainer/internal/model"
	"github.com/roamdigital/explainer/internal/tenant"
)

type fakeTenants struct {
	pool *tenant.Pool
	err  error
}

func (f *fakeTenants) Get(ctx context.Context, tenantID string) (*tenant.Pool, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pool, nil
}

type fakeRetriever struct{ text string }

func (f *fakeRetriever) Retrieve(ctx context.Context, intent model.ParsedIntent, tenant string) string {
	return f.text
}

type fakeGenerator struct {
	text         string
	usedFallback bool
	reason       string
	streamChunks [][]byte
	streamErr    error
}

func (f *fakeGenerator) Generate(ctx context.Context, in explain.PromptInput) (string, bool, string) {
	return f.text, f.usedFallback, f.reason
}

func (f *fakeGenerator) Stream(ctx context.Context, in explain.PromptInput, onChunk func([]byte) error) error {
	if f.streamErr != nil {
		return f.streamErr
	}
	for _, c := range f.streamChunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return nil
}

func newTestOrchestrator() (*Orchestrator, *fakeGenerator) {
	gen := &fakeGenerator{text: "It shows because of its category."}
	o := New(Deps{
		Tenants:       &fakeTenants{pool: &tenant.Pool{}},
		Schema:        nil,
		TraceStore:    kv.NewMemory(16),
		TraceTTL:      5 * time.Minute,
		Retriever:     &fakeRetriever{text: "code context"},
		Generator:     nil,
		LLM:           nil,
		DefaultTenant: "acme",
		NearbyWindow:  50,
	})
	o.generator = gen
	return o, gen
}

func stubResolve(cfg any, trace []model.TraceStep, targets []int, err error) func(ctx context.Context, deps domainDeps, store kv.Store, ttl time.Duration, req Request, parsed model.ParsedIntent) (any, []model.TraceStep, []int, bool, error) {
	return func(ctx context.Context, deps domainDeps, store kv.Store, ttl time.Duration, req Request, parsed model.ParsedIntent) (any, []model.TraceStep, []int, bool, error) {
		return cfg, trace, targets, false, err
	}
}

func TestExplainRejectsEmptyQuestion(t *testing.T) {
	o, _ := newTestOrchestrator()
	o.resolve = stubResolve(nil, nil, nil, nil)

	_, err := o.Explain(context.Background(), Request{Question: ""})
	if !errors.Is(err, errs.BadRequest) {
		t.Fatalf("expected errs.BadRequest, got %v", err)
	}
}

func TestExplainHappyPath(t *testing.T) {
	o, gen := newTestOrchestrator()
	present := true
	trace := []model.TraceStep{{Step: model.StepLimit, Count: 2, TargetPresent: &present}}
	cfg := &model.ComponentConfig{Limit: 2}
	o.resolve = stubResolve(cfg, trace, []int{9}, nil)

	resp, err := o.Explain(context.Background(), Request{Question: "why does product X show?", Tenant: "acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Explanation != gen.text {
		t.Errorf("expected generator text, got %q", resp.Explanation)
	}
	if len(resp.Trace) != 1 {
		t.Errorf("expected trace to pass through, got %v", resp.Trace)
	}
	if resp.Debug.Timing["retrieval"] < 0 {
		t.Errorf("expected a recorded retrieval timing")
	}
}

func TestExplainDegradesGracefullyOnPageNotFound(t *testing.T) {
	o, gen := newTestOrchestrator()
	gen.usedFallback = true
	gen.reason = "no evidence"
	o.resolve = stubResolve(nil, nil, nil, errs.PageNotFound)

	resp, err := o.Explain(context.Background(), Request{Question: "why does product X show?", Tenant: "acme"})
	if err != nil {
		t.Fatalf("expected graceful degradation, got error: %v", err)
	}
	if len(resp.Trace) != 0 {
		t.Errorf("expected empty trace on page-not-found, got %v", resp.Trace)
	}
}

func TestExplainPropagatesDatabaseFailure(t *testing.T) {
	o, _ := newTestOrchestrator()
	o.resolve = stubResolve(nil, nil, nil, errs.DatabaseFailure)

	_, err := o.Explain(context.Background(), Request{Question: "why?", Tenant: "acme"})
	if !errors.Is(err, errs.DatabaseFailure) {
		t.Fatalf("expected errs.DatabaseFailure, got %v", err)
	}
}

func TestStreamEmitsMetadataBeforeChunks(t *testing.T) {
	o, gen := newTestOrchestrator()
	gen.streamChunks = [][]byte{[]byte("hel"), []byte("lo")}
	o.resolve = stubResolve(&model.ComponentConfig{}, nil, nil, nil)

	var gotMetadata bool
	var gotChunks []byte
	err := o.Stream(context.Background(), Request{Question: "why?", Tenant: "acme"},
		func(m MetadataEvent) error {
			gotMetadata = true
			return nil
		},
		func(c []byte) error {
			if !gotMetadata {
				t.Fatal("chunk arrived before metadata")
			}
			gotChunks = append(gotChunks, c...)
			return nil
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(gotChunks) != "hello" {
		t.Errorf("expected hello, got %s", gotChunks)
	}
}

func TestCacheSlotUsesAtdwSlotForImportDomain(t *testing.T) {
	req := Request{PageURI: "/ignored"}
	intent := model.ParsedIntent{Domain: model.DomainAtdwImport, AtdwProductID: "12345"}
	pageURI, componentType, blockIndex := cacheSlot(req, intent)
	if pageURI != "atdw" || componentType != "12345" || blockIndex != 0 {
		t.Errorf("unexpected cache slot: %s %s %d", pageURI, componentType, blockIndex)
	}
}

func TestCacheSlotUsesRequestPageURIWhenIntentOmitsIt(t *testing.T) {
	req := Request{PageURI: "/why-this-shows", ComponentIndex: 1}
	intent := model.ParsedIntent{Domain: model.DomainPageComponent, ComponentType: "products"}
	pageURI, componentType, blockIndex := cacheSlot(req, intent)
	if pageURI != "/why-this-shows" || componentType != "products" || blockIndex != 1 {
		t.Errorf("unexpected cache slot: %s %s %d", pageURI, componentType, blockIndex)
	}
}
