package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/smartwardrobe/wardrobe-server/internal/id"
	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

// Select returns the rows of table matching filter, oldest first.
func (s *Store) Select(ctx context.Context, table string, filter store.Filter) ([]store.Row, error) {
	tbl, err := store.LookupTable(table)
	if err != nil {
		return nil, err
	}
	if err := tbl.CheckFilter(filter); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	query := `SELECT ` + strings.Join(tbl.ColumnNames(), ", ") + ` FROM ` + tbl.Name
	args := make([]any, 0, len(keys))
	if len(keys) > 0 {
		conds := make([]string, len(keys))
		for i, k := range keys {
			conds[i] = k + " = ?"
			args = append(args, fmt.Sprint(filter[k]))
		}
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []store.Row{}
	for rows.Next() {
		row, err := scanRow(tbl, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert stores a new row, assigning its id and timestamps.
// Returns store.ErrAlreadyExists when a unique column collides.
func (s *Store) Insert(ctx context.Context, table string, row store.Row) (store.Row, error) {
	tbl, err := store.LookupTable(table)
	if err != nil {
		return nil, err
	}
	prepared, err := tbl.PrepareInsert(row)
	if err != nil {
		return nil, err
	}

	recordID, err := id.Generate(tbl.IDPrefix)
	if err != nil {
		return nil, err
	}
	now := formatTime(s.now())
	prepared[store.ColID] = recordID
	prepared[store.ColCreatedAt] = now
	prepared[store.ColUpdatedAt] = now

	cols := tbl.ColumnNames()
	args := make([]any, 0, len(cols)+1)
	for _, c := range cols {
		v, err := toSQL(tbl, c, prepared[c])
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	if tbl.UniqueFold != "" {
		cols = append(cols, foldColumn(tbl.UniqueFold))
		args = append(args, store.FoldKey(prepared[tbl.UniqueFold].(string)))
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+tbl.Name+` (`+strings.Join(cols, ", ")+`) VALUES (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, mapError(err)
	}

	return prepared, nil
}

// Update applies patch to the row with the given id and returns the stored row.
// Returns store.ErrNotFound if no such row exists.
func (s *Store) Update(ctx context.Context, table, recordID string, patch store.Row) (store.Row, error) {
	tbl, err := store.LookupTable(table)
	if err != nil {
		return nil, err
	}
	prepared, err := tbl.PreparePatch(patch)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(prepared))
	for k := range prepared {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	sets := make([]string, 0, len(keys)+2)
	args := make([]any, 0, len(keys)+3)
	for _, k := range keys {
		v, err := toSQL(tbl, k, prepared[k])
		if err != nil {
			return nil, err
		}
		sets = append(sets, k+" = ?")
		args = append(args, v)
		if k == tbl.UniqueFold {
			sets = append(sets, foldColumn(k)+" = ?")
			args = append(args, store.FoldKey(prepared[k].(string)))
		}
	}
	sets = append(sets, store.ColUpdatedAt+" = ?")
	args = append(args, formatTime(s.now()), recordID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE `+tbl.Name+` SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, mapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, store.ErrNotFound.WithMessage(fmt.Sprintf("%s %s not found", tbl.Name, recordID))
	}

	updated, err := scanRow(tbl, tx.QueryRowContext(ctx,
		`SELECT `+strings.Join(tbl.ColumnNames(), ", ")+` FROM `+tbl.Name+` WHERE id = ?`, recordID))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the row with the given id.
// Returns store.ErrNotFound if no such row exists.
func (s *Store) Delete(ctx context.Context, table, recordID string) error {
	tbl, err := store.LookupTable(table)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM `+tbl.Name+` WHERE id = ?`, recordID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage(fmt.Sprintf("%s %s not found", tbl.Name, recordID))
	}
	return nil
}

// scanRow scans a sql.Row (or sql.Rows via its Scan method) into a store.Row.
// Columns are scanned in schema order.
func scanRow(tbl *store.Table, scanner interface{ Scan(dest ...any) error }) (store.Row, error) {
	values := make([]sql.NullString, len(tbl.Columns))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := scanner.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	row := make(store.Row, len(tbl.Columns))
	for i, col := range tbl.Columns {
		if col.Kind == store.KindTags {
			tags := []any{}
			if values[i].String != "" {
				if err := json.Unmarshal([]byte(values[i].String), &tags); err != nil {
					return nil, fmt.Errorf("decode %s.%s: %w", tbl.Name, col.Name, err)
				}
			}
			row[col.Name] = tags
			continue
		}
		row[col.Name] = values[i].String
	}
	return row, nil
}

func toSQL(tbl *store.Table, name string, v any) (any, error) {
	col, ok := tbl.Column(name)
	if ok && col.Kind == store.KindTags {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s.%s: %w", tbl.Name, name, err)
		}
		return string(data), nil
	}
	return v, nil
}
