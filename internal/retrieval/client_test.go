package retrieval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/roamdigital/explainer/internal/config"
	"github.com/roamdigital/explainer/internal/model"
)

func TestRetrieveJoinsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.TopK != topK || !req.RewriteQuery || !req.Reranking {
			t.Errorf("unexpected request shape: %+v", req)
		}
		if !strings.Contains(req.Query, "FeaturedProducts") {
			t.Errorf("expected component descriptor in query, got %q", req.Query)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(searchResponse{Data: []searchResult{
			{Filename: "featured.go", Score: 0.81, Content: []contentChunk{{Text: "renders the featured list"}}},
		}})
	}))
	defer srv.Close()

	c := New(config.Retrieval{BaseURL: srv.URL, Corpus: "site-a", APIKey: "k"})
	intent := model.ParsedIntent{Domain: model.DomainPageComponent, ComponentType: "FeaturedProducts", RawQuestion: "why does this show?"}

	got := c.Retrieve(context.Background(), intent, "tenant-a")
	if !strings.Contains(got, "featured.go") || !strings.Contains(got, "renders the featured list") {
		t.Errorf("unexpected blob: %q", got)
	}
}

func TestRetrieveEmptyResultsYieldsEmptyString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer srv.Close()

	c := New(config.Retrieval{BaseURL: srv.URL, Corpus: "site-a"})
	got := c.Retrieve(context.Background(), model.ParsedIntent{Domain: model.DomainGeneral, RawQuestion: "hi"}, "")
	if got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestRetrieveTransportFailureYieldsEmptyString(t *testing.T) {
	c := New(config.Retrieval{BaseURL: "http://127.0.0.1:0", Corpus: "site-a"})
	got := c.Retrieve(context.Background(), model.ParsedIntent{Domain: model.DomainGeneral, RawQuestion: "hi"}, "")
	if got != "" {
		t.Errorf("expected empty string on transport failure, got %q", got)
	}
}

func TestRetrieveServerErrorYieldsEmptyString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(config.Retrieval{BaseURL: srv.URL, Corpus: "site-a"})
	got := c.Retrieve(context.Background(), model.ParsedIntent{Domain: model.DomainGeneral, RawQuestion: "hi"}, "")
	if got != "" {
		t.Errorf("expected empty string on 500, got %q", got)
	}
}
