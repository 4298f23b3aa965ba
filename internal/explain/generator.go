package explain

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// Generator wraps the langchaingo model with the two generation modes the
// orchestrator needs. It is a thin wrapper over the llms.Model interface,
// so tests can substitute a canned or failing model without a network
// round trip.
type Generator struct {
	llm               llms.Model
	temperature       float64
	maxTokens         int
	historyCharBudget int
	historyMessageCap int
}

// New builds a Generator. historyCharBudget/historyMessageCap come from
// pipeline configuration so they can be tuned without a redeploy.
func New(llm llms.Model, temperature float64, maxTokens, historyCharBudget, historyMessageCap int) *Generator {
	return &Generator{
		llm:               llm,
		temperature:       temperature,
		maxTokens:         maxTokens,
		historyCharBudget: historyCharBudget,
		historyMessageCap: historyMessageCap,
	}
}

func (g *Generator) messages(in PromptInput) []llms.MessageContent {
	return []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, SystemPrompt(in.Intent.Domain)),
		llms.TextParts(llms.ChatMessageTypeHuman, BuildUserPrompt(in, g.historyCharBudget, g.historyMessageCap)),
	}
}

// Generate runs the buffered mode: on any model failure it returns the
// deterministic fallback paraphrase instead of propagating the error, so
// the caller can treat "reason" as metrics-only context.
func (g *Generator) Generate(ctx context.Context, in PromptInput) (text string, usedFallback bool, reason string) {
	if g.llm == nil {
		return Fallback(in.Trace), true, "no model configured"
	}
	resp, err := g.llm.GenerateContent(ctx, g.messages(in),
		llms.WithTemperature(g.temperature),
		llms.WithMaxTokens(g.maxTokens),
	)
	if err != nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return Fallback(in.Trace), true, "model call failed"
	}
	return resp.Choices[0].Content, false, ""
}

// Stream runs the streaming mode: onChunk is called once per content
// chunk exactly as the model produced it. On any failure it returns a
// non-nil error; the caller is expected to have already committed to
// streaming (emitted the metadata event) and must translate this into a
// terminal SSE error event rather than retrying in place.
func (g *Generator) Stream(ctx context.Context, in PromptInput, onChunk func([]byte) error) error {
	if g.llm == nil {
		return errNoModel
	}
	_, err := g.llm.GenerateContent(ctx, g.messages(in),
		llms.WithTemperature(g.temperature),
		llms.WithMaxTokens(g.maxTokens),
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			return onChunk(chunk)
		}),
	)
	return err
}
