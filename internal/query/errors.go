package query

import (
	"fmt"

	"github.com/roamdigital/explainer/internal/errs"
)

// errPageNotFound is returned by ResolveBlocks when none of the page URI
// variants match an eligible page. The orchestrator treats this as a
// degrade-gracefully case, not a hard failure.
var errPageNotFound = fmt.Errorf("no matching page: %w", errs.PageNotFound)
