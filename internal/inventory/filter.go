package inventory

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/smartwardrobe/wardrobe-server/internal/domain"
)

// Query selects the visible items.
type Query struct {
	// Category is a tab id: a category, "all-items" or "favorites".
	// Empty means "all-items".
	Category string
	// Section is the name of the selected section. Only consulted for "all-items".
	Section string
	// Search is matched case-insensitively as a substring.
	Search string
}

// Visible returns the items q selects, preserving input order.
//
//  1. "favorites" keeps items tagged favorite.
//  2. "all-items" keeps everything, or only items at Section when one is set.
//  3. Any other value keeps items whose category equals it; Section is ignored.
//
// Independently, a non-empty Search must appear in the name, type, color or
// one of the tags.
func Visible(items []domain.Item, q Query) []domain.Item {
	fold := cases.Fold()
	needle := fold.String(q.Search)

	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if !matchesTab(it, q) {
			continue
		}
		if needle != "" && !matchesSearch(fold, it, needle) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchesTab(it domain.Item, q Query) bool {
	switch q.Category {
	case domain.TabFavorites:
		return it.IsFavorite()
	case domain.TabAllItems, "":
		return q.Section == "" || it.Location == q.Section
	default:
		return string(it.Category) == q.Category
	}
}

func matchesSearch(fold cases.Caser, it domain.Item, needle string) bool {
	for _, field := range []string{it.Name, it.Type, it.Color} {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	for tag := range it.Tags {
		if strings.Contains(fold.String(tag), needle) {
			return true
		}
	}
	return false
}
