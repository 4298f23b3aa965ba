// Package intent implements the Intent Parser (C7): it turns a free-form
// question plus an optional page-URI hint into a ParsedIntent the rest of
// the pipeline can dispatch on. A CMS admin-entry URL is decided
// deterministically before the model ever runs; everything else goes
// through a small, low-temperature model call with a rule-based fallback
// for when that call fails or returns something unparseable.
package intent

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/roamdigital/explainer/internal/model"
)

const systemPrompt = `You classify a question about a tourism website's CMS into a JSON object.
Domains: "page_component" (a visible page section drawing in categories, regions, tiers, or explicit products), "atdw_import" (an externally imported product record and its sync/import status), "general" (neither).
Question types: "why_included", "why_excluded", "what_shows", "why_order", "general".
Respond with exactly one JSON object and nothing else, shaped like:
{"domain":"page_component","pageUri":"","pageName":"","componentType":"","productNames":[],"atdwProductId":"","questionType":"what_shows"}
Omit fields you cannot infer by leaving them empty strings or empty arrays.`

var fallbackAtdwPattern = regexp.MustCompile(`(?i)\batdw\b|\batlas\b|\bimport(?:ed)?\b.*\bproduct\b|\bproduct\b.*\bimport`)

const maxResponseTokens = 256
const modelTemperature = 0.1

// modelIntent is the JSON shape the model is asked to produce; it is a
// separate type from model.ParsedIntent so a malformed or partial
// response can't corrupt the caller's struct before validation.
type modelIntent struct {
	Domain        string   `json:"domain"`
	PageURI       string   `json:"pageUri"`
	PageName      string   `json:"pageName"`
	ComponentType string   `json:"componentType"`
	ProductNames  []string `json:"productNames"`
	AtdwProductID string   `json:"atdwProductId"`
	QuestionType  string   `json:"questionType"`
}

// Parse turns question (plus an optional hinting page URI, which may be a
// normal front-end page or a CMS admin entry-edit URL) into a structured
// intent.
func Parse(ctx context.Context, llm llms.Model, question, pageURIHint string) model.ParsedIntent {
	admin := matchAdminProductURL(pageURIHint)

	mi, err := callModel(ctx, llm, question, pageURIHint)
	if err != nil {
		mi = fallbackClassify(question)
	}

	out := model.ParsedIntent{
		Domain:        model.Domain(mi.Domain),
		PageURI:       mi.PageURI,
		PageName:      mi.PageName,
		ComponentType: strings.ToLower(mi.ComponentType),
		ProductNames:  mi.ProductNames,
		AtdwProductID: mi.AtdwProductID,
		QuestionType:  model.QuestionType(mi.QuestionType),
		RawQuestion:   question,
	}
	if out.PageURI == "" {
		out.PageURI = pageURIHint
	}
	if out.Domain == "" {
		out.Domain = model.DomainGeneral
	}
	if out.QuestionType == "" {
		out.QuestionType = model.QuestionGeneral
	}

	if admin != nil {
		out.Domain = model.DomainAtdwImport
		out.ProductNames = mergeProductNames(admin.name, out.ProductNames)
	}

	return out
}

// mergeProductNames dedupes case-insensitively, keeping adminName first
// when present.
func mergeProductNames(adminName string, modelNames []string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, name)
	}
	add(adminName)
	for _, n := range modelNames {
		add(n)
	}
	return out
}

func callModel(ctx context.Context, llm llms.Model, question, pageURIHint string) (modelIntent, error) {
	if llm == nil {
		return modelIntent{}, errNoModel
	}
	userPrompt := "Question: " + question
	if pageURIHint != "" {
		userPrompt += "\nPage URI: " + pageURIHint
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}
	resp, err := llm.GenerateContent(ctx, messages,
		llms.WithTemperature(modelTemperature),
		llms.WithMaxTokens(maxResponseTokens),
	)
	if err != nil {
		return modelIntent{}, err
	}
	if len(resp.Choices) == 0 {
		return modelIntent{}, errEmptyResponse
	}

	raw := firstJSONObject(resp.Choices[0].Content)
	if raw == "" {
		return modelIntent{}, errNoJSON
	}
	var mi modelIntent
	if err := json.Unmarshal([]byte(raw), &mi); err != nil {
		return modelIntent{}, err
	}
	return mi, nil
}

// fallbackClassify runs when the model call errors or its output can't be
// parsed. It only ever decides between the two content domains; every
// other field is left for the caller's defaults.
func fallbackClassify(question string) modelIntent {
	if fallbackAtdwPattern.MatchString(question) {
		return modelIntent{Domain: string(model.DomainAtdwImport), QuestionType: string(model.QuestionGeneral)}
	}
	return modelIntent{Domain: string(model.DomainPageComponent), QuestionType: string(model.QuestionGeneral)}
}
