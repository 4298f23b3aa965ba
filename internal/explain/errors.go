package explain

import "errors"

var errNoModel = errors.New("explain: no model configured")
