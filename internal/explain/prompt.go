// Package explain implements the Explanation Generator (C9): it turns a
// parsed intent, a data snapshot/trace from C4/C5/C6, and retrieved code
// context into a natural-language answer, in buffered or streaming mode,
// with a deterministic fallback when the model call fails.
package explain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roamdigital/explainer/internal/model"
)

const (
	maxTraceArrayItems  = 10
	maxTraceDetailChars = 400
)

const pageComponentPersona = `You are a friendly assistant explaining how a tourism website decides what to show on a page. Speak in plain language about "component settings", "categories", "regions", and "products" — never mention files, functions, internal step names, database tables, or raw numeric ids. If the evidence you're given is thin or inconclusive, ask a clarifying question instead of guessing. Keep your answer to two or three short paragraphs.`

const atdwPersona = `You are a friendly assistant explaining why a tourism product from an external directory import has or hasn't appeared on the website, and what its current import status is. Speak in plain language about "import status", "region settings", and "category mapping" — never mention files, functions, internal step names, database tables, or raw numeric ids. If the evidence you're given is thin or inconclusive, ask a clarifying question instead of guessing. Keep your answer to two or three short paragraphs.`

// SystemPrompt picks the persona variant for intent's domain.
func SystemPrompt(domain model.Domain) string {
	if domain == model.DomainAtdwImport {
		return atdwPersona
	}
	return pageComponentPersona
}

// PromptInput bundles everything the user-turn prompt packs together.
type PromptInput struct {
	Intent      model.ParsedIntent
	TargetIDs   []int
	Config      any // *model.ComponentConfig or *model.AtdwImportConfig
	Trace       []model.TraceStep
	CodeContext string
	History     []model.ChatMessage
}

// BuildUserPrompt renders PromptInput into the single user-turn string
// the model sees, applying the trace truncation and history budget rules.
func BuildUserPrompt(in PromptInput, historyCharBudget, historyMessageCap int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n", in.Intent.RawQuestion)
	if in.Intent.PageURI != "" {
		fmt.Fprintf(&b, "Page: %s\n", in.Intent.PageURI)
	}
	if len(in.TargetIDs) > 0 {
		fmt.Fprintf(&b, "Products in question (internal ids, do not repeat these to the user): %v\n", in.TargetIDs)
	}

	if cfgJSON := formatJSON(in.Config); cfgJSON != "" {
		fmt.Fprintf(&b, "\nComponent settings:\n%s\n", cfgJSON)
	}

	b.WriteString("\nSteps taken, in order:\n")
	for _, step := range in.Trace {
		b.WriteString(renderStep(step))
	}

	if in.CodeContext != "" {
		fmt.Fprintf(&b, "\nRelevant implementation context:\n%s\n", in.CodeContext)
	}

	if hist := renderHistory(in.History, historyCharBudget, historyMessageCap); hist != "" {
		fmt.Fprintf(&b, "\nPrior conversation:\n%s\n", hist)
	}

	return b.String()
}

func renderStep(step model.TraceStep) string {
	label := model.StepLabels[step.Step]
	if label == "" {
		label = string(step.Step)
	}
	line := fmt.Sprintf("- %s: %d item(s)", label, step.Count)
	if step.TargetPresent != nil {
		if *step.TargetPresent {
			line += ", target present"
		} else {
			line += ", target absent"
		}
	}
	if details := truncateDetails(step.Details); details != "" {
		line += fmt.Sprintf(" (%s)", details)
	}
	return line + "\n"
}

// truncateDetails JSON-encodes details with arrays over maxTraceArrayItems
// collapsed to a count placeholder, and drops the whole payload if it's
// still too long to be worth the model's attention.
func truncateDetails(details map[string]any) string {
	if len(details) == 0 {
		return ""
	}
	shrunk := make(map[string]any, len(details))
	for k, v := range details {
		shrunk[k] = shrinkValue(v)
	}
	raw, err := json.Marshal(shrunk)
	if err != nil {
		return ""
	}
	if len(raw) > maxTraceDetailChars {
		return ""
	}
	return string(raw)
}

func shrinkValue(v any) any {
	switch t := v.(type) {
	case []string:
		if len(t) > maxTraceArrayItems {
			return fmt.Sprintf("[%d items]", len(t))
		}
	case []int:
		if len(t) > maxTraceArrayItems {
			return fmt.Sprintf("[%d items]", len(t))
		}
	case []any:
		if len(t) > maxTraceArrayItems {
			return fmt.Sprintf("[%d items]", len(t))
		}
	}
	return v
}

func formatJSON(v any) string {
	if v == nil {
		return ""
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(raw)
}

// renderHistory keeps the most recent turns first, trimming individual
// messages to 500 chars and dropping the oldest once the running
// character budget is exceeded.
func renderHistory(history []model.ChatMessage, charBudget, messageCap int) string {
	if len(history) == 0 {
		return ""
	}
	if messageCap > 0 && len(history) > messageCap {
		history = history[len(history)-messageCap:]
	}

	const perMessageCap = 500
	type rendered struct {
		role, text string
	}
	var kept []rendered
	budget := charBudget
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		text := msg.Content
		if len(text) > perMessageCap {
			text = text[:perMessageCap] + "…"
		}
		if charBudget > 0 && len(text) > budget {
			break
		}
		kept = append([]rendered{{role: string(msg.Role), text: text}}, kept...)
		budget -= len(text)
	}

	var b strings.Builder
	for _, r := range kept {
		fmt.Fprintf(&b, "%s: %s\n", r.role, r.text)
	}
	return b.String()
}
