package domain

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// MaxSectionNameLength bounds section names after trimming.
const MaxSectionNameLength = 64

// Section is a named physical storage location (a drawer, a closet, a shelf).
// Items reference a section by its name, not by its ID.
type Section struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// fold applies Unicode case folding. cases.Caser is stateful, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// NormalizeSectionName trims surrounding whitespace from a user-entered name.
func NormalizeSectionName(name string) string {
	return strings.TrimSpace(name)
}

// SameSectionName reports whether two section names collide under Unicode case folding.
func SameSectionName(a, b string) bool {
	return fold(NormalizeSectionName(a)) == fold(NormalizeSectionName(b))
}

// SectionSummary pairs a section with the number of items stored in it.
type SectionSummary struct {
	Section   Section `json:"section"`
	ItemCount int     `json:"item_count"`
}

// IsEmpty reports whether no item references the section.
func (s SectionSummary) IsEmpty() bool {
	return s.ItemCount == 0
}

// Label renders the item count the way section cards display it.
func (s SectionSummary) Label() string {
	switch s.ItemCount {
	case 0:
		return "Empty"
	case 1:
		return "1 item"
	default:
		return strconv.Itoa(s.ItemCount) + " items"
	}
}
