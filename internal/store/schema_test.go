package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupTable(t *testing.T) {
	tbl, err := LookupTable(TableItems)
	require.NoError(t, err)
	assert.Equal(t, "itm", tbl.IDPrefix)

	_, err = LookupTable("books")
	assert.ErrorIs(t, err, ErrUnknownTable)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{TableItems, TableSections}, TableNames())
}

func TestPrepareInsert_FillsDefaults(t *testing.T) {
	tbl, err := LookupTable(TableItems)
	require.NoError(t, err)

	row, err := tbl.PrepareInsert(Row{ColName: "Blue Tee", ColLocation: "Drawer 1"})
	require.NoError(t, err)

	assert.Equal(t, "Other", row[ColType])
	assert.Equal(t, "Unknown", row[ColColor])
	assert.Equal(t, "Unknown", row[ColStyle])
	assert.Equal(t, "casual", row[ColCategory])
	assert.Equal(t, []any{}, row[ColTags])
	assert.NotContains(t, row, ColID)
}

func TestPrepareInsert_Rejects(t *testing.T) {
	tbl, err := LookupTable(TableItems)
	require.NoError(t, err)

	tests := []struct {
		name string
		row  Row
	}{
		{"unknown column", Row{ColName: "Tee", ColLocation: "A", "size": "M"}},
		{"managed column", Row{ColName: "Tee", ColLocation: "A", ColID: "itm-1"}},
		{"missing required", Row{ColName: "Tee"}},
		{"blank required", Row{ColName: "  ", ColLocation: "A"}},
		{"wrong type", Row{ColName: 42.0, ColLocation: "A"}},
		{"bad tags", Row{ColName: "Tee", ColLocation: "A", ColTags: []any{1.0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tbl.PrepareInsert(tt.row)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestPreparePatch(t *testing.T) {
	tbl, err := LookupTable(TableItems)
	require.NoError(t, err)

	patch, err := tbl.PreparePatch(Row{ColTags: []string{"favorite", "linen"}})
	require.NoError(t, err)
	assert.Equal(t, Row{ColTags: []any{"favorite", "linen"}}, patch)

	_, err = tbl.PreparePatch(Row{ColName: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCheckFilterAndMatches(t *testing.T) {
	tbl, err := LookupTable(TableSections)
	require.NoError(t, err)

	assert.NoError(t, tbl.CheckFilter(Filter{ColName: "Closet"}))
	assert.ErrorIs(t, tbl.CheckFilter(Filter{"color": "red"}), ErrInvalidInput)

	items, err := LookupTable(TableItems)
	require.NoError(t, err)
	assert.ErrorIs(t, items.CheckFilter(Filter{ColTags: "favorite"}), ErrInvalidInput)

	row := Row{ColID: "7", ColName: "Closet"}
	assert.True(t, Matches(row, Filter{}))
	assert.True(t, Matches(row, Filter{ColID: 7.0}))
	assert.False(t, Matches(row, Filter{ColName: "Drawer"}))
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, FoldKey("Closet"), FoldKey("  CLOSET "))
	assert.NotEqual(t, FoldKey("Closet"), FoldKey("Closet 2"))
}
