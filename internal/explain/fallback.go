package explain

import (
	"fmt"
	"strings"

	"github.com/roamdigital/explainer/internal/model"
)

// Fallback paraphrases a trace deterministically when the model call
// fails: it lists the filters that ran, cites the final item count, and
// names the first step where the target dropped out of the surviving
// set, if any target was supplied.
func Fallback(trace []model.TraceStep) string {
	if len(trace) == 0 {
		return "I wasn't able to work out what's driving this page, and I don't have enough information to explain it further. Could you tell me which page or product you're asking about?"
	}

	var filters []string
	for _, step := range trace {
		if step.Count == 0 && step.TargetPresent == nil {
			continue
		}
		label := model.StepLabels[step.Step]
		if label == "" {
			label = string(step.Step)
		}
		filters = append(filters, label)
	}

	last := trace[len(trace)-1]
	var b strings.Builder
	if len(filters) > 0 {
		fmt.Fprintf(&b, "This went through the following checks: %s. ", strings.Join(filters, ", "))
	}
	fmt.Fprintf(&b, "The final result had %d item(s).", last.Count)

	for _, step := range trace {
		if step.TargetPresent != nil && !*step.TargetPresent {
			label := model.StepLabels[step.Step]
			if label == "" {
				label = string(step.Step)
			}
			fmt.Fprintf(&b, " The product dropped out of consideration at the \"%s\" step.", label)
			break
		}
	}

	return b.String()
}
