package inventory

import (
	"context"
	"fmt"

	"github.com/smartwardrobe/wardrobe-server/internal/domain"
	domainerrors "github.com/smartwardrobe/wardrobe-server/internal/errors"
	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

// SetFavorite adds or removes the favorite tag. The new tag set is computed
// from the latest mirrored tags and always written in full, so repeated calls
// converge on the same set.
func (inv *Inventory) SetFavorite(ctx context.Context, id string, favorite bool) (domain.Item, error) {
	const title = "Failed to update favorite"

	inv.mu.RLock()
	i := inv.itemIndexLocked(id)
	var tags domain.TagSet
	if i >= 0 {
		tags = inv.items[i].Tags
	}
	inv.mu.RUnlock()
	if i < 0 {
		return domain.Item{}, inv.fail(title, domainerrors.NotFoundf("item %s not found", id))
	}

	next := tags.Without(domain.FavoriteTag)
	if favorite {
		next = tags.With(domain.FavoriteTag)
	}

	row, err := inv.records.Update(ctx, store.TableItems, id, store.Row{store.ColTags: store.EncodeTags(next)})
	if abandonErr := abandoned(ctx); abandonErr != nil {
		return domain.Item{}, inv.fail(title, abandonErr)
	}
	if err != nil {
		return domain.Item{}, inv.fail(title, remoteError(err, fmt.Sprintf("failed to update favorite for item %s", id)))
	}
	item, err := store.DecodeItem(row)
	if err != nil {
		return domain.Item{}, inv.fail(title, domainerrors.Persistence(err, "record service returned an invalid item"))
	}

	inv.applyItem(item)
	return item.Clone(), nil
}

// ToggleFavorite flips the favorite tag based on the latest mirrored state.
func (inv *Inventory) ToggleFavorite(ctx context.Context, id string) (domain.Item, error) {
	inv.mu.RLock()
	i := inv.itemIndexLocked(id)
	favorite := i >= 0 && inv.items[i].IsFavorite()
	inv.mu.RUnlock()

	return inv.SetFavorite(ctx, id, !favorite)
}
