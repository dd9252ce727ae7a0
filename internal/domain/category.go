package domain

// Category is the clothing category an item is filed under, independent of its section.
type Category string

// Item categories.
const (
	CategoryWorkwear  Category = "workwear"
	CategoryPartywear Category = "partywear"
	CategoryCasual    Category = "casual"
)

// DefaultCategory is applied when a draft leaves the category empty.
const DefaultCategory = CategoryCasual

// Pseudo-categories used only as filter tabs. No item carries them.
const (
	TabAllItems  = "all-items"
	TabFavorites = "favorites"
)

// Tab is one entry of the category bar.
type Tab struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Tabs lists the category bar in display order.
var Tabs = []Tab{
	{ID: TabAllItems, Name: "All Items"},
	{ID: string(CategoryWorkwear), Name: "Work Wear"},
	{ID: string(CategoryPartywear), Name: "Party Wear"},
	{ID: string(CategoryCasual), Name: "Casual"},
	{ID: TabFavorites, Name: "Favorites"},
}

// Categories lists the categories an item can be filed under.
func Categories() []Category {
	return []Category{CategoryWorkwear, CategoryPartywear, CategoryCasual}
}

// Valid reports whether c is one of the item categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryWorkwear, CategoryPartywear, CategoryCasual:
		return true
	default:
		return false
	}
}
