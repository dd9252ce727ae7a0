package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smartwardrobe/wardrobe-server/internal/domain"
)

// timeLayouts are accepted when decoding timestamps. The last one is what
// SQL defaults such as CURRENT_TIMESTAMP produce.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// DecodeSection converts a returned row into a Section.
func DecodeSection(row Row) (domain.Section, error) {
	var s domain.Section

	id, err := coerceID(row[ColID])
	if err != nil {
		return s, fmt.Errorf("section id: %w", err)
	}
	name, _ := row[ColName].(string)
	if strings.TrimSpace(name) == "" {
		return s, fmt.Errorf("section %s: missing name", id)
	}

	s.ID = id
	s.Name = name
	if s.CreatedAt, err = coerceTime(row[ColCreatedAt]); err != nil {
		return s, fmt.Errorf("section %s created_at: %w", id, err)
	}
	if s.UpdatedAt, err = coerceTime(row[ColUpdatedAt]); err != nil {
		return s, fmt.Errorf("section %s updated_at: %w", id, err)
	}
	return s, nil
}

// DecodeItem converts a returned row into an Item. Descriptive fields the row
// leaves empty take their defaults.
func DecodeItem(row Row) (domain.Item, error) {
	var it domain.Item

	id, err := coerceID(row[ColID])
	if err != nil {
		return it, fmt.Errorf("item id: %w", err)
	}
	name, _ := row[ColName].(string)
	if strings.TrimSpace(name) == "" {
		return it, fmt.Errorf("item %s: missing name", id)
	}

	tags, err := coerceTags(row[ColTags])
	if err != nil {
		return it, fmt.Errorf("item %s tags: %w", id, err)
	}

	it = domain.Item{
		ID:       id,
		Name:     name,
		Type:     stringOr(row[ColType], domain.DefaultItemType),
		Color:    stringOr(row[ColColor], domain.DefaultItemColor),
		Style:    stringOr(row[ColStyle], domain.DefaultItemStyle),
		Location: stringOr(row[ColLocation], ""),
		Category: domain.Category(stringOr(row[ColCategory], string(domain.DefaultCategory))),
		ImageURL: stringOr(row[ColImageURL], ""),
		Tags:     domain.NewTagSet(tags...),
	}
	if it.CreatedAt, err = coerceTime(row[ColCreatedAt]); err != nil {
		return it, fmt.Errorf("item %s created_at: %w", id, err)
	}
	if it.UpdatedAt, err = coerceTime(row[ColUpdatedAt]); err != nil {
		return it, fmt.Errorf("item %s updated_at: %w", id, err)
	}
	return it, nil
}

// EncodeSection builds the insert row for a section.
func EncodeSection(name string) Row {
	return Row{ColName: name}
}

// EncodeItem builds the insert row for a draft, applying defaults.
func EncodeItem(d domain.ItemDraft) Row {
	category := d.Category
	if category == "" {
		category = domain.DefaultCategory
	}
	return Row{
		ColName:     d.Name,
		ColType:     orDefault(d.Type, domain.DefaultItemType),
		ColColor:    orDefault(d.Color, domain.DefaultItemColor),
		ColStyle:    orDefault(d.Style, domain.DefaultItemStyle),
		ColLocation: d.Location,
		ColCategory: string(category),
		ColImageURL: d.ImageURL,
		ColTags:     EncodeTags(domain.NewTagSet(d.Tags...)),
	}
}

// EncodeItemPatch builds the update row for the fields a patch sets.
func EncodeItemPatch(p domain.ItemPatch) Row {
	row := Row{}
	if p.Name != nil {
		row[ColName] = *p.Name
	}
	if p.Type != nil {
		row[ColType] = orDefault(*p.Type, domain.DefaultItemType)
	}
	if p.Color != nil {
		row[ColColor] = orDefault(*p.Color, domain.DefaultItemColor)
	}
	if p.Style != nil {
		row[ColStyle] = orDefault(*p.Style, domain.DefaultItemStyle)
	}
	if p.Location != nil {
		row[ColLocation] = *p.Location
	}
	if p.Category != nil {
		row[ColCategory] = string(*p.Category)
	}
	if p.ImageURL != nil {
		row[ColImageURL] = *p.ImageURL
	}
	if p.Tags != nil {
		row[ColTags] = EncodeTags(domain.NewTagSet(*p.Tags...))
	}
	return row
}

// EncodeTags renders a tag set as a sorted JSON-compatible array.
func EncodeTags(tags domain.TagSet) []any {
	sorted := tags.Slice()
	out := make([]any, len(sorted))
	for i, t := range sorted {
		out[i] = t
	}
	return out
}

func coerceID(v any) (string, error) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", errors.New("empty id")
		}
		return id, nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(id), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	case json.Number:
		return id.String(), nil
	case nil:
		return "", errors.New("missing id")
	default:
		return "", fmt.Errorf("unsupported id type %T", v)
	}
}

// coerceTags accepts a JSON array, a []string, a JSON-encoded array string
// or a comma-separated string.
func coerceTags(v any) ([]string, error) {
	switch tags := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return tags, nil
	case []any:
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			s, ok := t.(string)
			if !ok {
				return nil, fmt.Errorf("tag %v is not a string", t)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		trimmed := strings.TrimSpace(tags)
		if trimmed == "" {
			return nil, nil
		}
		if strings.HasPrefix(trimmed, "[") {
			var out []string
			if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
				return nil, fmt.Errorf("decode tags: %w", err)
			}
			return out, nil
		}
		return strings.Split(trimmed, ","), nil
	default:
		return nil, fmt.Errorf("unsupported tags type %T", v)
	}
}

func coerceTime(v any) (time.Time, error) {
	switch ts := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return ts, nil
	case float64:
		return time.Unix(int64(ts), 0).UTC(), nil
	case string:
		if ts == "" {
			return time.Time{}, nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, ts); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", ts)
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func stringOr(v any, def string) string {
	s, _ := v.(string)
	return orDefault(s, def)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
