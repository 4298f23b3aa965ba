// Package llmclient constructs the langchaingo model used by the intent
// parser (C7) and the explanation generator (C9). Provider, model name,
// base URL, and key all come from configuration, so a single binary can
// point at any OpenAI-compatible endpoint without a rebuild.
package llmclient

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/roamdigital/explainer/internal/config"
)

// New builds an llms.Model from cfg. Every provider this service talks to
// speaks the OpenAI chat-completions wire format, so "provider" only
// changes which base URL and key get used, never the client type.
func New(cfg config.LLM) (llms.Model, error) {
	switch cfg.Provider {
	case "openai", "openai-compatible", "":
		opts := []openai.Option{
			openai.WithModel(cfg.Model),
			openai.WithToken(cfg.APIKey),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)
	default:
		return nil, fmt.Errorf("llmclient: unsupported provider %q", cfg.Provider)
	}
}
