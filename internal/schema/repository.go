// repository.go executes the five-step rebuild algorithm against a
// tenant's own database connection. Every query prefixes its craft_
// tokens with "{tenant}." because BadTenant has already fired by the time
// a *sqlx.DB for that tenant exists — see internal/tenant.Validate.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roamdigital/explainer/internal/errs"
	"github.com/roamdigital/explainer/internal/model"
)

// rebuild runs the five steps from the schema rebuild algorithm in order
// and assembles a model.SchemaCache.
func rebuild(ctx context.Context, db *sqlx.DB, tenant string) (*model.SchemaCache, error) {
	prefix := tenant + "."

	// 1. unique identifier of the page-builder block type.
	uid, err := blockTypeUID(ctx, db, prefix, model.PageBuilderBlockTypeHandle)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("page builder field %q not found: %w", model.PageBuilderBlockTypeHandle, errs.SchemaIncomplete)
	}
	if err != nil {
		return nil, fmt.Errorf("schema rebuild step 1: %w", errs.DatabaseFailure)
	}

	fieldIDs := make(map[string]int)

	// 2. fields scoped to that block type, keyed bare handle.
	blockFields, err := fieldsByContext(ctx, db, prefix, "matrixBlockType:"+uid)
	if err != nil {
		return nil, fmt.Errorf("schema rebuild step 2: %w", errs.DatabaseFailure)
	}
	for handle, id := range blockFields {
		fieldIDs[handle] = id
	}

	// 3. fixed global-context fields, keyed "global:{handle}".
	globalFields, err := fieldsByHandles(ctx, db, prefix, "global", model.GlobalFieldHandles)
	if err != nil {
		return nil, fmt.Errorf("schema rebuild step 3: %w", errs.DatabaseFailure)
	}
	for handle, id := range globalFields {
		fieldIDs["global:"+handle] = id
	}

	// 4. well-known sections.
	sectionIDs, err := sectionsByHandles(ctx, db, prefix, model.WellKnownSections)
	if err != nil {
		return nil, fmt.Errorf("schema rebuild step 4: %w", errs.DatabaseFailure)
	}

	// 5. derived matrix-content table name.
	table := "craft_matrixcontent_" + strings.ToLower(model.GlobalFieldPageBuilder)
	if err := ValidateMatrixContentTable(table); err != nil {
		return nil, err
	}

	return &model.SchemaCache{
		FieldIDs:           fieldIDs,
		SectionIDs:         sectionIDs,
		MatrixContentTable: table,
		CachedAt:           time.Now(),
	}, nil
}

// blockTypeUID looks up the uid of the matrix block type whose field
// handle is handle.
func blockTypeUID(ctx context.Context, db *sqlx.DB, prefix, handle string) (string, error) {
	q := fmt.Sprintf(`
        SELECT bt.uid
        FROM   %[1]scraft_matrixblocktypes bt
        JOIN   %[1]scraft_fields f ON f.id = bt.fieldId
        WHERE  f.handle = ?
        LIMIT  1`, prefix)
	var uid string
	if err := db.GetContext(ctx, &uid, q, handle); err != nil {
		return "", err
	}
	return uid, nil
}

// fieldsByContext loads every field whose context column equals
// fieldContext, keyed by handle.
func fieldsByContext(ctx context.Context, db *sqlx.DB, prefix, fieldContext string) (map[string]int, error) {
	q := fmt.Sprintf(`
        SELECT id, handle
        FROM   %scraft_fields
        WHERE  context = ?`, prefix)
	var rows []struct {
		ID     int    `db:"id"`
		Handle string `db:"handle"`
	}
	if err := db.SelectContext(ctx, &rows, q, fieldContext); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Handle] = r.ID
	}
	return out, nil
}

// fieldsByHandles loads the global-context fields named in handles.
func fieldsByHandles(ctx context.Context, db *sqlx.DB, prefix, fieldContext string, handles []string) (map[string]int, error) {
	if len(handles) == 0 {
		return map[string]int{}, nil
	}
	q, args, err := sqlx.In(fmt.Sprintf(`
        SELECT id, handle
        FROM   %scraft_fields
        WHERE  context = ? AND handle IN (?)`, prefix), fieldContext, handles)
	if err != nil {
		return nil, err
	}
	q = db.Rebind(q)
	var rows []struct {
		ID     int    `db:"id"`
		Handle string `db:"handle"`
	}
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Handle] = r.ID
	}
	return out, nil
}

// sectionsByHandles resolves section ids for the given handles.
func sectionsByHandles(ctx context.Context, db *sqlx.DB, prefix string, handles []string) (map[string]int, error) {
	if len(handles) == 0 {
		return map[string]int{}, nil
	}
	q, args, err := sqlx.In(fmt.Sprintf(`
        SELECT id, handle
        FROM   %scraft_sections
        WHERE  handle IN (?)`, prefix), handles)
	if err != nil {
		return nil, err
	}
	q = db.Rebind(q)
	var rows []struct {
		ID     int    `db:"id"`
		Handle string `db:"handle"`
	}
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Handle] = r.ID
	}
	return out, nil
}
