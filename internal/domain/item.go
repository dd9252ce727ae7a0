package domain

import "time"

// Defaults applied to descriptive fields a draft leaves empty.
const (
	DefaultItemType  = "Other"
	DefaultItemColor = "Unknown"
	DefaultItemStyle = "Unknown"
)

// Item is a single catalogued garment.
// Location holds the Name of the Section the item is stored in.
type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Color     string    `json:"color"`
	Style     string    `json:"style"`
	Location  string    `json:"location"`
	Category  Category  `json:"category"`
	ImageURL  string    `json:"image_url"`
	Tags      TagSet    `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsFavorite reports whether the item carries the favorite tag.
func (i Item) IsFavorite() bool {
	return i.Tags.Has(FavoriteTag)
}

// Clone returns a copy that shares no mutable state with i.
func (i Item) Clone() Item {
	i.Tags = i.Tags.Clone()
	return i
}

// ItemDraft is the input for creating an item.
type ItemDraft struct {
	Name     string   `json:"name" validate:"required,max=120"`
	Type     string   `json:"type" validate:"max=60"`
	Color    string   `json:"color" validate:"max=60"`
	Style    string   `json:"style" validate:"max=60"`
	Location string   `json:"location" validate:"required"`
	Category Category `json:"category" validate:"omitempty,oneof=workwear partywear casual"`
	ImageURL string   `json:"image_url" validate:"omitempty,url"`
	Tags     []string `json:"tags"`
}

// ItemPatch is the input for editing an item. Nil fields are left unchanged.
type ItemPatch struct {
	Name     *string   `json:"name,omitempty" validate:"omitempty,max=120"`
	Type     *string   `json:"type,omitempty" validate:"omitempty,max=60"`
	Color    *string   `json:"color,omitempty" validate:"omitempty,max=60"`
	Style    *string   `json:"style,omitempty" validate:"omitempty,max=60"`
	Location *string   `json:"location,omitempty"`
	Category *Category `json:"category,omitempty" validate:"omitempty,oneof=workwear partywear casual"`
	ImageURL *string   `json:"image_url,omitempty" validate:"omitempty,url"`
	Tags     *[]string `json:"tags,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Type == nil && p.Color == nil && p.Style == nil &&
		p.Location == nil && p.Category == nil && p.ImageURL == nil && p.Tags == nil
}
