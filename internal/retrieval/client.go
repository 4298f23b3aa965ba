// Package retrieval implements the Context Retriever (C8): a thin HTTP
// client over a semantic-search service that returns ranked code/doc
// chunks for a natural-language query. Every failure mode here is
// swallowed and reported as an empty result; the pipeline treats missing
// context as a degrade-gracefully condition, never a hard error.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/roamdigital/explainer/internal/config"
	"github.com/roamdigital/explainer/internal/metrics"
	"github.com/roamdigital/explainer/internal/model"
)

const (
	topK           = 10
	scoreThreshold = 0.2
	requestTimeout = 8 * time.Second
)

// Client is the mockable interface the orchestrator depends on, so tests
// can substitute a canned responder instead of a live HTTP round trip.
type Client interface {
	Retrieve(ctx context.Context, intent model.ParsedIntent, tenant string) string
}

// HTTPClient calls a semantic-search service's /search endpoint.
type HTTPClient struct {
	cfg config.Retrieval
	hc  *http.Client
}

// New builds an HTTPClient from configuration.
func New(cfg config.Retrieval) *HTTPClient {
	return &HTTPClient{
		cfg: cfg,
		hc:  &http.Client{Timeout: requestTimeout},
	}
}

type searchRequest struct {
	Query          string  `json:"query"`
	Corpus         string  `json:"corpus"`
	RewriteQuery   bool    `json:"rewrite_query"`
	TopK           int     `json:"top_k"`
	Reranking      bool    `json:"reranking"`
	ScoreThreshold float64 `json:"score_threshold"`
	ThemeHint      string  `json:"theme_hint,omitempty"`
}

type contentChunk struct {
	Text string `json:"text"`
}

type searchResult struct {
	Filename string         `json:"filename"`
	Score    float64        `json:"score"`
	Content  []contentChunk `json:"content"`
}

type searchResponse struct {
	Data []searchResult `json:"data"`
}

// Retrieve builds a domain-aware query from intent, calls the
// semantic-search service, and joins the ranked results into a single
// text blob. Any transport, status, or decode failure returns "" instead
// of an error; the caller never branches on retrieval having failed.
func (c *HTTPClient) Retrieve(ctx context.Context, intent model.ParsedIntent, tenant string) string {
	req := searchRequest{
		Query:          buildQuery(intent),
		Corpus:         c.cfg.Corpus,
		RewriteQuery:   true,
		TopK:           topK,
		Reranking:      true,
		ScoreThreshold: scoreThreshold,
		ThemeHint:      tenant,
	}

	body, err := json.Marshal(req)
	if err != nil {
		metrics.RetrievalFailuresTotal.Inc()
		return ""
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+"/search", bytes.NewReader(body))
	if err != nil {
		metrics.RetrievalFailuresTotal.Inc()
		return ""
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		metrics.RetrievalFailuresTotal.Inc()
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		metrics.RetrievalFailuresTotal.Inc()
		return ""
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.RetrievalFailuresTotal.Inc()
		return ""
	}

	return joinResults(parsed.Data)
}

// buildQuery concatenates the raw question with a domain descriptor, the
// way the generator prompt also distinguishes page-component from
// ATDW-import questions.
func buildQuery(intent model.ParsedIntent) string {
	var descriptor string
	switch intent.Domain {
	case model.DomainAtdwImport:
		descriptor = "ATDW product import and synchronisation"
	case model.DomainPageComponent:
		component := intent.ComponentType
		if component == "" {
			component = "page"
		}
		descriptor = fmt.Sprintf("How does the %s component work", component)
	default:
		descriptor = "general site behaviour"
	}
	return intent.RawQuestion + " — " + descriptor
}

func joinResults(results []searchResult) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	wrote := false
	for _, r := range results {
		var chunks strings.Builder
		for _, c := range r.Content {
			if c.Text == "" {
				continue
			}
			if chunks.Len() > 0 {
				chunks.WriteString("\n")
			}
			chunks.WriteString(c.Text)
		}
		if chunks.Len() == 0 {
			continue
		}
		if wrote {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- %s (score: %.2f) ---\n%s", r.Filename, r.Score, chunks.String())
		wrote = true
	}
	return b.String()
}
