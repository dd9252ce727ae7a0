package store

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Kind is the storage type of a column.
type Kind int

const (
	KindString Kind = iota
	KindTags
	KindTime
)

// Column describes one column of a table.
type Column struct {
	Name     string
	Kind     Kind
	Default  any
	Required bool
	// Managed columns are assigned by the backend and rejected in writes.
	Managed bool
}

// Table describes a record table.
type Table struct {
	Name     string
	IDPrefix string
	Columns  []Column
	// UniqueFold names a column whose values must be unique under Unicode
	// case folding.
	UniqueFold string
}

// Common column names.
const (
	ColID        = "id"
	ColName      = "name"
	ColType      = "type"
	ColColor     = "color"
	ColStyle     = "style"
	ColLocation  = "location"
	ColCategory  = "category"
	ColImageURL  = "image_url"
	ColTags      = "tags"
	ColCreatedAt = "created_at"
	ColUpdatedAt = "updated_at"
)

var tables = map[string]*Table{
	TableSections: {
		Name:     TableSections,
		IDPrefix: "sec",
		Columns: []Column{
			{Name: ColID, Kind: KindString, Managed: true},
			{Name: ColName, Kind: KindString, Required: true},
			{Name: ColCreatedAt, Kind: KindTime, Managed: true},
			{Name: ColUpdatedAt, Kind: KindTime, Managed: true},
		},
		UniqueFold: ColName,
	},
	TableItems: {
		Name:     TableItems,
		IDPrefix: "itm",
		Columns: []Column{
			{Name: ColID, Kind: KindString, Managed: true},
			{Name: ColName, Kind: KindString, Required: true},
			{Name: ColType, Kind: KindString, Default: "Other"},
			{Name: ColColor, Kind: KindString, Default: "Unknown"},
			{Name: ColStyle, Kind: KindString, Default: "Unknown"},
			{Name: ColLocation, Kind: KindString, Required: true},
			{Name: ColCategory, Kind: KindString, Default: "casual"},
			{Name: ColImageURL, Kind: KindString, Default: ""},
			{Name: ColTags, Kind: KindTags, Default: []any{}},
			{Name: ColCreatedAt, Kind: KindTime, Managed: true},
			{Name: ColUpdatedAt, Kind: KindTime, Managed: true},
		},
	},
}

// LookupTable returns the schema for name or ErrUnknownTable.
func LookupTable(name string) (*Table, error) {
	t, ok := tables[name]
	if !ok {
		return nil, ErrUnknownTable.WithMessage(fmt.Sprintf("unknown table %q", name))
	}
	return t, nil
}

// TableNames returns the known table names in sorted order.
func TableNames() []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in schema order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// PrepareInsert validates row against the schema, fills defaults and returns a
// normalized copy. Tags become []any of strings; managed columns are rejected.
func (t *Table) PrepareInsert(row Row) (Row, error) {
	out := make(Row, len(t.Columns))
	for key, value := range row {
		col, err := t.writable(key)
		if err != nil {
			return nil, err
		}
		v, err := normalizeValue(col, value)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	for _, col := range t.Columns {
		if col.Managed {
			continue
		}
		if _, ok := out[col.Name]; ok {
			if col.Required && strings.TrimSpace(out[col.Name].(string)) == "" {
				return nil, ErrInvalidInput.WithMessage(fmt.Sprintf("column %q is required", col.Name))
			}
			continue
		}
		if col.Required {
			return nil, ErrInvalidInput.WithMessage(fmt.Sprintf("column %q is required", col.Name))
		}
		out[col.Name] = cloneDefault(col.Default)
	}
	return out, nil
}

// PreparePatch validates a partial update and returns a normalized copy.
func (t *Table) PreparePatch(patch Row) (Row, error) {
	out := make(Row, len(patch))
	for key, value := range patch {
		col, err := t.writable(key)
		if err != nil {
			return nil, err
		}
		v, err := normalizeValue(col, value)
		if err != nil {
			return nil, err
		}
		if col.Required && strings.TrimSpace(v.(string)) == "" {
			return nil, ErrInvalidInput.WithMessage(fmt.Sprintf("column %q is required", col.Name))
		}
		out[key] = v
	}
	return out, nil
}

// CheckFilter rejects filters on unknown or tag columns.
func (t *Table) CheckFilter(filter Filter) error {
	for key := range filter {
		col, ok := t.Column(key)
		if !ok {
			return ErrInvalidInput.WithMessage(fmt.Sprintf("unknown column %q in %s", key, t.Name))
		}
		if col.Kind == KindTags {
			return ErrInvalidInput.WithMessage(fmt.Sprintf("column %q cannot be filtered", key))
		}
	}
	return nil
}

// Matches reports whether row satisfies filter. Values are compared by their
// string form so numeric ids from JSON match string ids.
func Matches(row Row, filter Filter) bool {
	for key, want := range filter {
		got, ok := row[key]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// TimeLayout is RFC3339 with fixed-width nanoseconds, so stored timestamps
// sort lexically in time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// FoldKey returns the case-folded form used for unique-name comparisons.
func FoldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func (t *Table) writable(key string) (Column, error) {
	col, ok := t.Column(key)
	if !ok {
		return Column{}, ErrInvalidInput.WithMessage(fmt.Sprintf("unknown column %q in %s", key, t.Name))
	}
	if col.Managed {
		return Column{}, ErrInvalidInput.WithMessage(fmt.Sprintf("column %q is assigned by the store", key))
	}
	return col, nil
}

func normalizeValue(col Column, value any) (any, error) {
	switch col.Kind {
	case KindString:
		if value == nil {
			if d, ok := col.Default.(string); ok {
				return d, nil
			}
			return "", nil
		}
		s, ok := value.(string)
		if !ok {
			return nil, ErrInvalidInput.WithMessage(fmt.Sprintf("column %q must be a string", col.Name))
		}
		return s, nil
	case KindTags:
		tags, err := coerceTags(value)
		if err != nil {
			return nil, ErrInvalidInput.WithMessage(fmt.Sprintf("column %q: %v", col.Name, err))
		}
		out := make([]any, len(tags))
		for i, tag := range tags {
			out[i] = tag
		}
		return out, nil
	case KindTime:
		ts, err := coerceTime(value)
		if err != nil {
			return nil, ErrInvalidInput.WithMessage(fmt.Sprintf("column %q: %v", col.Name, err))
		}
		return FormatTime(ts), nil
	default:
		return value, nil
	}
}

func cloneDefault(v any) any {
	if tags, ok := v.([]any); ok {
		return slices.Clone(tags)
	}
	return v
}
