// Package store defines the record boundary between the inventory engine and
// its persistence service, along with the table schema both sides agree on.
package store

import (
	"context"
	"maps"
)

// Table names.
const (
	TableSections = "sections"
	TableItems    = "items"
)

// Row is a single record as it travels over the boundary.
// Values are JSON-compatible: strings, numbers, bools, []any and nil.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return Row{}
	}
	return maps.Clone(r)
}

// Filter selects rows whose columns equal the given values. An empty filter
// selects every row.
type Filter map[string]any

// Records is the remote persistence boundary. Implementations assign ids and
// timestamps on insert and return the stored row from every mutation.
type Records interface {
	Select(ctx context.Context, table string, filter Filter) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table, id string, patch Row) (Row, error)
	Delete(ctx context.Context, table, id string) error
}
