package schema

import (
	"fmt"
	"regexp"

	"github.com/roamdigital/explainer/internal/errs"
)

// matrixContentTablePattern gates any matrix-content table name before it
// is composed into SQL. The query layer calls ValidateMatrixContentTable
// on every SchemaCache it receives; this package enforces it once more at
// rebuild time so a malformed handle never reaches the cache.
var matrixContentTablePattern = regexp.MustCompile(`^craft_matrixcontent_[a-z0-9_]+$`)

// ValidateMatrixContentTable reports an *errs.SchemaIncomplete-wrapped
// error if name does not match the expected matrix-content table shape.
func ValidateMatrixContentTable(name string) error {
	if !matrixContentTablePattern.MatchString(name) {
		return fmt.Errorf("matrix content table %q: %w", name, errs.SchemaIncomplete)
	}
	return nil
}
