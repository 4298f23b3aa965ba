package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/roamdigital/explainer/internal/errs"
	"github.com/roamdigital/explainer/internal/kv"
	"github.com/roamdigital/explainer/internal/orchestrator"
)

type fakeExplainer struct {
	resp         *orchestrator.Response
	err          error
	streamMeta   orchestrator.MetadataEvent
	streamChunks [][]byte
	streamErr    error
}

func (f *fakeExplainer) Explain(ctx context.Context, req orchestrator.Request) (*orchestrator.Response, error) {
	return f.resp, f.err
}

func (f *fakeExplainer) Stream(ctx context.Context, req orchestrator.Request, onMetadata func(orchestrator.MetadataEvent) error, onChunk func([]byte) error) error {
	if err := onMetadata(f.streamMeta); err != nil {
		return err
	}
	for _, c := range f.streamChunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return f.streamErr
}

type fakeSchema struct {
	invalidated string
	err         error
}

func (f *fakeSchema) Invalidate(ctx context.Context, tenant string) error {
	f.invalidated = tenant
	return f.err
}

func newTestRouter(exp *fakeExplainer, sch *fakeSchema, store kv.Store) http.Handler {
	return Router(Deps{
		Orchestrator:  exp,
		Schema:        sch,
		TraceStore:    store,
		DefaultTenant: "acme",
	})
}

func TestHandleExplainHappyPath(t *testing.T) {
	exp := &fakeExplainer{resp: &orchestrator.Response{Explanation: "because of category"}}
	r := newTestRouter(exp, &fakeSchema{}, kv.NewMemory(8))

	body, _ := json.Marshal(explainRequest{Question: "why?"})
	req := httptest.NewRequest(http.MethodPost, "/api/explain", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got orchestrator.Response
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Explanation != "because of category" {
		t.Errorf("unexpected explanation: %q", got.Explanation)
	}
}

func TestHandleExplainMapsBadRequestTo400(t *testing.T) {
	exp := &fakeExplainer{err: errs.BadRequest}
	r := newTestRouter(exp, &fakeSchema{}, kv.NewMemory(8))

	body, _ := json.Marshal(explainRequest{Question: "why?"})
	req := httptest.NewRequest(http.MethodPost, "/api/explain", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleExplainMapsDatabaseFailureTo500(t *testing.T) {
	exp := &fakeExplainer{err: errs.DatabaseFailure}
	r := newTestRouter(exp, &fakeSchema{}, kv.NewMemory(8))

	body, _ := json.Marshal(explainRequest{Question: "why?"})
	req := httptest.NewRequest(http.MethodPost, "/api/explain", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestHandleExplainRejectsMalformedJSON(t *testing.T) {
	exp := &fakeExplainer{}
	r := newTestRouter(exp, &fakeSchema{}, kv.NewMemory(8))

	req := httptest.NewRequest(http.MethodPost, "/api/explain", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleExplainStreamOrdersMetadataBeforeContent(t *testing.T) {
	exp := &fakeExplainer{
		streamMeta:   orchestrator.MetadataEvent{Config: map[string]any{"limit": 2}},
		streamChunks: [][]byte{[]byte("hel"), []byte("lo")},
	}
	r := newTestRouter(exp, &fakeSchema{}, kv.NewMemory(8))

	body, _ := json.Marshal(explainRequest{Question: "why?"})
	req := httptest.NewRequest(http.MethodPost, "/api/explain/stream", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := w.Body.String()
	metaIdx := strings.Index(out, "event: metadata")
	contentIdx := strings.Index(out, "event: content")
	doneIdx := strings.Index(out, "event: done")
	if metaIdx == -1 || contentIdx == -1 || doneIdx == -1 {
		t.Fatalf("missing expected SSE events: %s", out)
	}
	if !(metaIdx < contentIdx && contentIdx < doneIdx) {
		t.Fatalf("events out of order: %s", out)
	}
}

func TestHandleExplainStreamEmitsErrorEventOnFailure(t *testing.T) {
	exp := &fakeExplainer{streamErr: errs.GenerationFailure}
	r := newTestRouter(exp, &fakeSchema{}, kv.NewMemory(8))

	body, _ := json.Marshal(explainRequest{Question: "why?"})
	req := httptest.NewRequest(http.MethodPost, "/api/explain/stream", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), "event: error") {
		t.Fatalf("expected an error event, got: %s", w.Body.String())
	}
}

func TestHandleResolveTenantHit(t *testing.T) {
	store := kv.NewMemory(8)
	_ = store.Set(context.Background(), "origin:acme.example.com", []byte("acme.example.com"), 0)
	r := newTestRouter(&fakeExplainer{}, &fakeSchema{}, store)

	body, _ := json.Marshal(resolveTenantRequest{Hostname: "acme.example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/resolve-tenant", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var got resolveTenantResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Tenant == nil || *got.Tenant != "acme" {
		t.Errorf("expected tenant acme, got %v", got.Tenant)
	}
}

func TestHandleResolveTenantMiss(t *testing.T) {
	store := kv.NewMemory(8)
	r := newTestRouter(&fakeExplainer{}, &fakeSchema{}, store)

	body, _ := json.Marshal(resolveTenantRequest{Hostname: "unknown.example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/resolve-tenant", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var got resolveTenantResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Tenant != nil {
		t.Errorf("expected nil tenant, got %v", *got.Tenant)
	}
}

func TestHandleRefreshSchemaDefaultsTenant(t *testing.T) {
	sch := &fakeSchema{}
	r := newTestRouter(&fakeExplainer{}, sch, kv.NewMemory(8))

	req := httptest.NewRequest(http.MethodPost, "/api/refresh-schema", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if sch.invalidated != "acme" {
		t.Errorf("expected default tenant acme, got %q", sch.invalidated)
	}
}

func TestHandleHealth(t *testing.T) {
	r := newTestRouter(&fakeExplainer{}, &fakeSchema{}, kv.NewMemory(8))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected health body: %s", w.Body.String())
	}
}

func TestOptionsPreflightReturns204WithCORSHeaders(t *testing.T) {
	r := newTestRouter(&fakeExplainer{}, &fakeSchema{}, kv.NewMemory(8))

	req := httptest.NewRequest(http.MethodOptions, "/api/explain", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}
}

func TestUnknownRouteReturns404JSON(t *testing.T) {
	r := newTestRouter(&fakeExplainer{}, &fakeSchema{}, kv.NewMemory(8))

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var got errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("expected JSON body: %v", err)
	}
}
