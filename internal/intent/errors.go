package intent

import "errors"

var (
	errNoModel       = errors.New("intent: no model configured")
	errEmptyResponse = errors.New("intent: empty model response")
	errNoJSON        = errors.New("intent: no JSON object in model response")
)
