package inventory

import (
	"fmt"

	"github.com/smartwardrobe/wardrobe-server/internal/domain"
	domainerrors "github.com/smartwardrobe/wardrobe-server/internal/errors"
)

// View holds the browsing state: active tab, selected section and search
// text. It keeps category and section selection mutually exclusive.
type View struct {
	category  string
	sectionID string
	search    string
}

// NewView returns a view on "all-items" with nothing selected.
func NewView() *View {
	return &View{category: domain.TabAllItems}
}

// Category returns the active tab id.
func (v *View) Category() string { return v.category }

// SectionID returns the selected section id, or "".
func (v *View) SectionID() string { return v.sectionID }

// Search returns the search text.
func (v *View) Search() string { return v.search }

// SelectCategory switches tabs. Any tab change clears the section selection.
func (v *View) SelectCategory(tab string) error {
	if !validTab(tab) {
		return domainerrors.Validationf("unknown category %q", tab)
	}
	v.category = tab
	v.sectionID = ""
	return nil
}

// SelectSection selects a section, switching to "all-items". Selecting the
// already selected section clears it.
func (v *View) SelectSection(sectionID string) {
	v.category = domain.TabAllItems
	if v.sectionID == sectionID {
		v.sectionID = ""
		return
	}
	v.sectionID = sectionID
}

// SetSearch replaces the search text.
func (v *View) SetSearch(text string) { v.search = text }

// Reset returns to "all-items" with no section selected. The search text is kept.
func (v *View) Reset() {
	v.category = domain.TabAllItems
	v.sectionID = ""
}

// Query resolves the view against a snapshot. A selected section that no
// longer exists is dropped.
func (v *View) Query(snap Snapshot) Query {
	q := Query{Category: v.category, Search: v.search}
	if v.sectionID == "" {
		return q
	}
	for _, s := range snap.Sections {
		if s.ID == v.sectionID {
			q.Section = s.Name
			return q
		}
	}
	v.sectionID = ""
	return q
}

// Visible applies the view to a snapshot.
func (v *View) Visible(snap Snapshot) []domain.Item {
	return Visible(snap.Items, v.Query(snap))
}

func (v *View) String() string {
	return fmt.Sprintf("category=%s section=%s search=%q", v.category, v.sectionID, v.search)
}

func validTab(tab string) bool {
	for _, t := range domain.Tabs {
		if t.ID == tab {
			return true
		}
	}
	return false
}
