package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTagSet_DropsBlanksAndDuplicates(t *testing.T) {
	set := NewTagSet("summer", " summer ", "", "  ", "linen")

	assert.Equal(t, []string{"linen", "summer"}, set.Slice())
}

func TestTagSet_WithAndWithoutDoNotMutate(t *testing.T) {
	base := NewTagSet("linen")

	withFav := base.With(FavoriteTag)
	assert.True(t, withFav.Has(FavoriteTag))
	assert.False(t, base.Has(FavoriteTag), "With must not change the receiver")

	without := withFav.Without(FavoriteTag)
	assert.False(t, without.Has(FavoriteTag))
	assert.True(t, withFav.Has(FavoriteTag), "Without must not change the receiver")
}

func TestTagSet_WithIsIdempotent(t *testing.T) {
	once := NewTagSet().With(FavoriteTag)
	twice := once.With(FavoriteTag)

	assert.True(t, once.Equal(twice))
	assert.Equal(t, 1, twice.Len())
}

func TestTagSet_NilClone(t *testing.T) {
	var set TagSet
	clone := set.Clone()

	require.NotNil(t, clone)
	assert.Equal(t, 0, clone.Len())
	assert.False(t, set.Has(FavoriteTag))
}

func TestTagSet_JSONIsSortedArray(t *testing.T) {
	data, err := json.Marshal(NewTagSet("b", "a", FavoriteTag))
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b","favorite"]`, string(data))

	var decoded TagSet
	require.NoError(t, json.Unmarshal([]byte(`["x","x","y"]`), &decoded))
	assert.Equal(t, []string{"x", "y"}, decoded.Slice())
}

func TestItem_IsFavorite(t *testing.T) {
	assert.True(t, Item{Tags: NewTagSet(FavoriteTag)}.IsFavorite())
	assert.False(t, Item{Tags: NewTagSet("favourite")}.IsFavorite())
	assert.False(t, Item{}.IsFavorite())
}

func TestItem_CloneIsIndependent(t *testing.T) {
	orig := Item{ID: "itm-1", Tags: NewTagSet("a")}
	clone := orig.Clone()
	clone.Tags["b"] = struct{}{}

	assert.False(t, orig.Tags.Has("b"))
}
