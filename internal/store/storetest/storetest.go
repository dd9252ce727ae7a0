// Package storetest holds the behaviour every store.Records implementation
// must share. Backends run it from their own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

// Run exercises records returned by newRecords. Each subtest gets a fresh
// instance.
func Run(t *testing.T, newRecords func(t *testing.T) store.Records) {
	t.Helper()

	t.Run("InsertAssignsIDAndTimestamps", func(t *testing.T) {
		r := newRecords(t)
		ctx := context.Background()

		row, err := r.Insert(ctx, store.TableSections, store.Row{store.ColName: "Closet"})
		require.NoError(t, err)

		assert.NotEmpty(t, row[store.ColID])
		assert.Equal(t, "Closet", row[store.ColName])
		assert.NotEmpty(t, row[store.ColCreatedAt])
		assert.Equal(t, row[store.ColCreatedAt], row[store.ColUpdatedAt])
	})

	t.Run("InsertAppliesItemDefaults", func(t *testing.T) {
		r := newRecords(t)
		ctx := context.Background()

		row, err := r.Insert(ctx, store.TableItems, store.Row{
			store.ColName:     "Blue Tee",
			store.ColLocation: "Drawer 1",
		})
		require.NoError(t, err)

		assert.Equal(t, "Other", row[store.ColType])
		assert.Equal(t, "casual", row[store.ColCategory])
		assert.Equal(t, []any{}, row[store.ColTags])
	})

	t.Run("UniqueNameIsCaseInsensitive", func(t *testing.T) {
		r := newRecords(t)
		ctx := context.Background()

		_, err := r.Insert(ctx, store.TableSections, store.Row{store.ColName: "Closet"})
		require.NoError(t, err)

		_, err = r.Insert(ctx, store.TableSections, store.Row{store.ColName: "CLOSET"})
		assert.ErrorIs(t, err, store.ErrAlreadyExists)

		rows, err := r.Select(ctx, store.TableSections, nil)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("SelectFiltersAndOrders", func(t *testing.T) {
		r := newRecords(t)
		ctx := context.Background()

		for _, name := range []string{"Tee", "Dress", "Coat"} {
			loc := "Drawer"
			if name == "Coat" {
				loc = "Closet"
			}
			_, err := r.Insert(ctx, store.TableItems, store.Row{store.ColName: name, store.ColLocation: loc})
			require.NoError(t, err)
		}

		all, err := r.Select(ctx, store.TableItems, store.Filter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Tee", all[0][store.ColName])
		assert.Equal(t, "Coat", all[2][store.ColName])

		drawer, err := r.Select(ctx, store.TableItems, store.Filter{store.ColLocation: "Drawer"})
		require.NoError(t, err)
		assert.Len(t, drawer, 2)
	})

	t.Run("SelectRejectsUnknownColumn", func(t *testing.T) {
		r := newRecords(t)

		_, err := r.Select(context.Background(), store.TableItems, store.Filter{"size": "M"})
		assert.ErrorIs(t, err, store.ErrInvalidInput)
	})

	t.Run("UnknownTable", func(t *testing.T) {
		r := newRecords(t)

		_, err := r.Select(context.Background(), "books", nil)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("UpdateReturnsStoredRow", func(t *testing.T) {
		r := newRecords(t)
		ctx := context.Background()

		created, err := r.Insert(ctx, store.TableItems, store.Row{
			store.ColName:     "Tee",
			store.ColLocation: "Drawer",
			store.ColTags:     []any{"summer"},
		})
		require.NoError(t, err)
		itemID := created[store.ColID].(string)

		updated, err := r.Update(ctx, store.TableItems, itemID, store.Row{
			store.ColTags: []any{"summer", "favorite"},
		})
		require.NoError(t, err)

		assert.Equal(t, itemID, updated[store.ColID])
		assert.Equal(t, "Tee", updated[store.ColName])
		assert.ElementsMatch(t, []any{"summer", "favorite"}, updated[store.ColTags])
		assert.Equal(t, created[store.ColCreatedAt], updated[store.ColCreatedAt])
		assert.GreaterOrEqual(t, updated[store.ColUpdatedAt], created[store.ColUpdatedAt])
	})

	t.Run("UpdateRenameCollision", func(t *testing.T) {
		r := newRecords(t)
		ctx := context.Background()

		_, err := r.Insert(ctx, store.TableSections, store.Row{store.ColName: "Closet"})
		require.NoError(t, err)
		drawer, err := r.Insert(ctx, store.TableSections, store.Row{store.ColName: "Drawer"})
		require.NoError(t, err)
		drawerID := drawer[store.ColID].(string)

		_, err = r.Update(ctx, store.TableSections, drawerID, store.Row{store.ColName: "closet"})
		assert.ErrorIs(t, err, store.ErrAlreadyExists)

		// Case-only rename of the same row is allowed.
		renamed, err := r.Update(ctx, store.TableSections, drawerID, store.Row{store.ColName: "DRAWER"})
		require.NoError(t, err)
		assert.Equal(t, "DRAWER", renamed[store.ColName])
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		r := newRecords(t)

		_, err := r.Update(context.Background(), store.TableSections, "sec-missing", store.Row{store.ColName: "X"})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("UpdateRejectsManagedColumn", func(t *testing.T) {
		r := newRecords(t)
		ctx := context.Background()

		row, err := r.Insert(ctx, store.TableSections, store.Row{store.ColName: "Closet"})
		require.NoError(t, err)

		_, err = r.Update(ctx, store.TableSections, row[store.ColID].(string), store.Row{store.ColID: "other"})
		assert.ErrorIs(t, err, store.ErrInvalidInput)
	})

	t.Run("Delete", func(t *testing.T) {
		r := newRecords(t)
		ctx := context.Background()

		row, err := r.Insert(ctx, store.TableSections, store.Row{store.ColName: "Closet"})
		require.NoError(t, err)
		sectionID := row[store.ColID].(string)

		require.NoError(t, r.Delete(ctx, store.TableSections, sectionID))
		assert.ErrorIs(t, r.Delete(ctx, store.TableSections, sectionID), store.ErrNotFound)

		// The name is free again once deleted.
		_, err = r.Insert(ctx, store.TableSections, store.Row{store.ColName: "closet"})
		assert.NoError(t, err)
	})
}
