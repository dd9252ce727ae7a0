package kv

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

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

	out := []store.Row{}
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = recordPrefix(tbl.Name)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var row store.Row
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &row)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			if store.Matches(row, filter) {
				out = append(out, row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(out, func(a, b store.Row) int {
		return cmp.Or(
			cmp.Compare(fmt.Sprint(a[store.ColCreatedAt]), fmt.Sprint(b[store.ColCreatedAt])),
			cmp.Compare(fmt.Sprint(a[store.ColID]), fmt.Sprint(b[store.ColID])),
		)
	})
	return out, nil
}

// Insert stores a new row, assigning its id and timestamps.
// Returns store.ErrAlreadyExists when a unique column collides.
func (s *Store) Insert(_ context.Context, table string, row store.Row) (store.Row, error) {
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

	err = s.db.Update(func(txn *badger.Txn) error {
		if tbl.UniqueFold != "" {
			value, err := uniqueValue(tbl, prepared)
			if err != nil {
				return err
			}
			if err := claimIndex(txn, indexKey(tbl.Name, tbl.UniqueFold, value), recordID); err != nil {
				return err
			}
		}
		return putRow(txn, tbl.Name, recordID, prepared)
	})
	if err != nil {
		return nil, err
	}
	return prepared, nil
}

// Update applies patch to the row with the given id and returns the stored row.
// Returns store.ErrNotFound if no such row exists.
func (s *Store) Update(_ context.Context, table, recordID string, patch store.Row) (store.Row, error) {
	tbl, err := store.LookupTable(table)
	if err != nil {
		return nil, err
	}
	prepared, err := tbl.PreparePatch(patch)
	if err != nil {
		return nil, err
	}

	var updated store.Row
	err = s.db.Update(func(txn *badger.Txn) error {
		current, err := getRow(txn, tbl.Name, recordID)
		if err != nil {
			return err
		}

		if newValue, ok := prepared[tbl.UniqueFold].(string); ok && tbl.UniqueFold != "" {
			oldValue, _ := current[tbl.UniqueFold].(string)
			if store.FoldKey(oldValue) != store.FoldKey(newValue) {
				if err := claimIndex(txn, indexKey(tbl.Name, tbl.UniqueFold, newValue), recordID); err != nil {
					return err
				}
				if err := txn.Delete(indexKey(tbl.Name, tbl.UniqueFold, oldValue)); err != nil {
					return err
				}
			}
		}

		for k, v := range prepared {
			current[k] = v
		}
		current[store.ColUpdatedAt] = formatTime(s.now())
		updated = current
		return putRow(txn, tbl.Name, recordID, current)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the row with the given id and releases its unique index.
// Returns store.ErrNotFound if no such row exists.
func (s *Store) Delete(_ context.Context, table, recordID string) error {
	tbl, err := store.LookupTable(table)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		current, err := getRow(txn, tbl.Name, recordID)
		if err != nil {
			return err
		}
		if tbl.UniqueFold != "" {
			value, _ := current[tbl.UniqueFold].(string)
			if err := txn.Delete(indexKey(tbl.Name, tbl.UniqueFold, value)); err != nil {
				return err
			}
		}
		return txn.Delete(recordKey(tbl.Name, recordID))
	})
}

// claimIndex points key at recordID unless another record already owns it.
func claimIndex(txn *badger.Txn, key []byte, recordID string) error {
	item, err := txn.Get(key)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return txn.Set(key, []byte(recordID))
	case err != nil:
		return err
	}

	owner, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	if string(owner) != recordID {
		return store.ErrAlreadyExists
	}
	return nil
}

func getRow(txn *badger.Txn, table, recordID string) (store.Row, error) {
	item, err := txn.Get(recordKey(table, recordID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound.WithMessage(fmt.Sprintf("%s %s not found", table, recordID))
	}
	if err != nil {
		return nil, err
	}

	var row store.Row
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &row)
	})
	return row, err
}

func putRow(txn *badger.Txn, table, recordID string, row store.Row) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", table, recordID, err)
	}
	return txn.Set(recordKey(table, recordID), data)
}

// uniqueValue returns the value row holds for the table's unique column.
func uniqueValue(tbl *store.Table, row store.Row) (string, error) {
	value, ok := row[tbl.UniqueFold].(string)
	if !ok {
		return "", store.ErrInvalidInput.WithMessage(fmt.Sprintf("%s.%s must be a string", tbl.Name, tbl.UniqueFold))
	}
	return value, nil
}
