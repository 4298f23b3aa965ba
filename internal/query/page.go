// Package query holds the single-purpose, parameterised SQL primitives
// the filter chain and block inspector are built from. Every function
// takes a context and a *sqlx.DB already scoped to one tenant, and
// returns a typed row slice or a single typed row.
//
// A tenant identifier has already passed internal/tenant.Validate before
// any *sqlx.DB reaches this package; every query here still prefixes its
// craft_ tokens with "{tenant}." and, where a table name is itself
// data-derived (the matrix-content table), guards it with
// schema.ValidateMatrixContentTable before composing SQL.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/roamdigital/explainer/internal/model"
	"github.com/roamdigital/explainer/internal/schema"
)

// pageCandidates returns the URI variants tried in order, per the
// page-block resolution contract.
func pageCandidates(uri string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	add(uri)
	if uri == "" || uri == "/" {
		add("__home__")
	}
	add(strings.TrimPrefix(uri, "/"))
	if !strings.HasPrefix(uri, "/") {
		add("/" + uri)
	}
	return out
}

// ResolveBlocks finds the first enabled, non-deleted, non-revision,
// non-draft page matching one of pageURI's variants, then returns its
// page-builder blocks (filtered to blockTypeHandle when non-empty),
// ordered by sortOrder. Relations and field values for each block are
// fetched concurrently.
func ResolveBlocks(ctx context.Context, db *sqlx.DB, sc *model.SchemaCache, tenant, pageURI, blockTypeHandle string) ([]model.Block, error) {
	if err := schema.ValidateMatrixContentTable(sc.MatrixContentTable); err != nil {
		return nil, err
	}
	prefix := tenant + "."

	pageID, err := findPage(ctx, db, prefix, pageCandidates(pageURI))
	if err != nil {
		return nil, err
	}
	if pageID == 0 {
		return nil, errPageNotFound
	}

	blockRows, err := blockRows(ctx, db, prefix, pageID, sc.FieldIDs[model.PageBuilderBlockTypeHandle], blockTypeHandle)
	if err != nil {
		return nil, err
	}

	blocks := make([]model.Block, len(blockRows))
	g, gctx := errgroup.WithContext(ctx)
	for i, row := range blockRows {
		i, row := i, row
		blocks[i] = model.Block{
			BlockID:     row.ID,
			BlockType:   row.TypeHandle,
			SortOrder:   row.SortOrder,
			FieldValues: map[string]any{},
			Relations:   map[string][]model.Product{},
		}
		g.Go(func() error {
			fv, err := fieldValues(gctx, db, prefix, sc.MatrixContentTable, row.ID)
			if err != nil {
				return err
			}
			blocks[i].FieldValues = fv
			return nil
		})
		g.Go(func() error {
			rel, err := harvestRelations(gctx, db, prefix, row.ID)
			if err != nil {
				return err
			}
			blocks[i].Relations = rel
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}

type blockRow struct {
	ID         int    `db:"id"`
	TypeHandle string `db:"type_handle"`
	SortOrder  int    `db:"sort_order"`
}

func findPage(ctx context.Context, db *sqlx.DB, prefix string, candidates []string) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In(fmt.Sprintf(`
        SELECT e.id
        FROM   %scraft_elements e
        JOIN   %scraft_entries en ON en.id = e.id
        WHERE  en.uri IN (?)
          AND  e.enabled = 1
          AND  e.dateDeleted IS NULL
          AND  e.revisionId IS NULL
          AND  e.draftId IS NULL
        ORDER BY FIELD(en.uri, ?)
        LIMIT  1`, prefix, prefix), candidates, candidates)
	if err != nil {
		return 0, err
	}
	q = db.Rebind(q)
	var id int
	if err := db.GetContext(ctx, &id, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil // no matching page is not a database error; caller treats 0 as not-found
		}
		return 0, err
	}
	return id, nil
}

func blockRows(ctx context.Context, db *sqlx.DB, prefix string, pageID, pageBuilderFieldID int, blockTypeHandle string) ([]blockRow, error) {
	q := fmt.Sprintf(`
        SELECT mb.id AS id, bt.handle AS type_handle, mb.sortOrder AS sort_order
        FROM   %scraft_matrixblocks mb
        JOIN   %scraft_matrixblocktypes bt ON bt.id = mb.typeId
        WHERE  mb.ownerId = ? AND mb.fieldId = ?`, prefix, prefix)
	args := []any{pageID, pageBuilderFieldID}
	if blockTypeHandle != "" {
		q += " AND bt.handle = ?"
		args = append(args, blockTypeHandle)
	}
	q += " ORDER BY mb.sortOrder"

	var rows []blockRow
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// fieldValues loads the scalar column values for one block from the
// matrix-content table, excluding the internal columns.
func fieldValues(ctx context.Context, db *sqlx.DB, prefix, matrixContentTable string, blockID int) (map[string]any, error) {
	q := fmt.Sprintf("SELECT * FROM %s%s WHERE elementId = ? LIMIT 1", prefix, matrixContentTable)
	rows, err := db.QueryxContext(ctx, q, blockID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]any{}
	if rows.Next() {
		raw, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		for i, col := range cols {
			if model.InternalColumns[col] {
				continue
			}
			out[col] = raw[i]
		}
	}
	return out, rows.Err()
}
