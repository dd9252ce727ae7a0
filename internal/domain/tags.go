package domain

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// FavoriteTag is the one tag with engine-level meaning: it drives the Favorites tab
// and the heart toggle on item cards.
const FavoriteTag = "favorite"

// TagSet is an unordered set of labels.
// Mutating helpers return a new set; a TagSet held by an Item is never changed in place.
type TagSet map[string]struct{}

// NewTagSet builds a set from labels, dropping blanks and duplicates.
func NewTagSet(tags ...string) TagSet {
	set := make(TagSet, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

// Has reports whether tag is in the set.
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Len returns the number of tags.
func (s TagSet) Len() int {
	return len(s)
}

// Clone returns an independent copy. A nil set clones to an empty one.
func (s TagSet) Clone() TagSet {
	if s == nil {
		return TagSet{}
	}
	return maps.Clone(s)
}

// With returns a copy of the set that contains tag.
func (s TagSet) With(tag string) TagSet {
	out := s.Clone()
	if tag = strings.TrimSpace(tag); tag != "" {
		out[tag] = struct{}{}
	}
	return out
}

// Without returns a copy of the set that does not contain tag.
func (s TagSet) Without(tag string) TagSet {
	out := s.Clone()
	delete(out, tag)
	return out
}

// Equal reports whether both sets hold the same tags.
func (s TagSet) Equal(other TagSet) bool {
	if len(s) != len(other) {
		return false
	}
	for t := range s {
		if !other.Has(t) {
			return false
		}
	}
	return true
}

// Slice returns the tags sorted, so persisted and printed forms are stable.
func (s TagSet) Slice() []string {
	out := slices.Sorted(maps.Keys(s))
	if out == nil {
		return []string{}
	}
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes an array of labels.
func (s *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*s = NewTagSet(tags...)
	return nil
}
