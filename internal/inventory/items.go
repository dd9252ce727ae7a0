package inventory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/smartwardrobe/wardrobe-server/internal/domain"
	domainerrors "github.com/smartwardrobe/wardrobe-server/internal/errors"
	"github.com/smartwardrobe/wardrobe-server/internal/media/images"
	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

// Items returns a copy of every item, in load order.
func (inv *Inventory) Items() []domain.Item {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]domain.Item, len(inv.items))
	for i, it := range inv.items {
		out[i] = it.Clone()
	}
	return out
}

// Item returns the item with the given id.
func (inv *Inventory) Item(id string) (domain.Item, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	i := inv.itemIndexLocked(id)
	if i < 0 {
		return domain.Item{}, false
	}
	return inv.items[i].Clone(), true
}

// CreateItem validates a draft, uploads its image when one is supplied, and
// persists the item. An upload failure aborts before the insert, so the item
// collection is untouched.
func (inv *Inventory) CreateItem(ctx context.Context, draft domain.ItemDraft, image *images.File) (domain.Item, error) {
	const title = "Failed to add item"

	draft.Name = strings.TrimSpace(draft.Name)
	draft.Location = strings.TrimSpace(draft.Location)
	draft.ImageURL = strings.TrimSpace(draft.ImageURL)
	if err := inv.validator.Validate(draft); err != nil {
		return domain.Item{}, inv.fail(title, err)
	}

	inv.mu.RLock()
	location, known := inv.resolveLocationLocked(draft.Location)
	inv.mu.RUnlock()
	if !known {
		return domain.Item{}, inv.fail(title, domainerrors.UnknownLocationf("no section named %q", draft.Location))
	}
	draft.Location = location

	switch {
	case image != nil:
		url, err := inv.upload(ctx, *image)
		if err != nil {
			return domain.Item{}, inv.fail(title, err)
		}
		draft.ImageURL = url
	case draft.ImageURL != "":
		// Caller supplied a hosted image.
	case inv.opts.RequireImageOnCreate:
		return domain.Item{}, inv.fail(title, domainerrors.ValidationWithDetails(
			"an image is required to add an item", map[string]string{"image": "is required"}))
	default:
		draft.ImageURL = inv.opts.PlaceholderImageURL
	}

	row, err := inv.records.Insert(ctx, store.TableItems, store.EncodeItem(draft))
	if abandonErr := abandoned(ctx); abandonErr != nil {
		return domain.Item{}, inv.fail(title, abandonErr)
	}
	if err != nil {
		return domain.Item{}, inv.fail(title, remoteError(err, fmt.Sprintf("failed to create item %q", draft.Name)))
	}
	item, err := store.DecodeItem(row)
	if err != nil {
		return domain.Item{}, inv.fail(title, domainerrors.Persistence(err, "record service returned an invalid item"))
	}

	inv.mu.Lock()
	inv.items = append(inv.items, item)
	inv.mu.Unlock()

	inv.succeed("Item added", fmt.Sprintf("%q stored in %q", item.Name, item.Location))
	return item.Clone(), nil
}

// UpdateItem validates the fields a patch changes, re-uploads the image when
// one is supplied, and applies the row the service returns. The previous image
// is not deleted.
func (inv *Inventory) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch, image *images.File) (domain.Item, error) {
	const title = "Failed to update item"

	inv.mu.RLock()
	i := inv.itemIndexLocked(id)
	var current domain.Item
	if i >= 0 {
		current = inv.items[i].Clone()
	}
	inv.mu.RUnlock()
	if i < 0 {
		return domain.Item{}, inv.fail(title, domainerrors.NotFoundf("item %s not found", id))
	}

	if patch.IsEmpty() && image == nil {
		return current, nil
	}

	if err := inv.checkPatch(&patch, image != nil); err != nil {
		return domain.Item{}, inv.fail(title, err)
	}

	if image != nil {
		url, err := inv.upload(ctx, *image)
		if err != nil {
			return domain.Item{}, inv.fail(title, err)
		}
		patch.ImageURL = &url
	}

	row, err := inv.records.Update(ctx, store.TableItems, id, store.EncodeItemPatch(patch))
	if abandonErr := abandoned(ctx); abandonErr != nil {
		return domain.Item{}, inv.fail(title, abandonErr)
	}
	if err != nil {
		return domain.Item{}, inv.fail(title, remoteError(err, fmt.Sprintf("failed to update item %q", current.Name)))
	}
	item, err := store.DecodeItem(row)
	if err != nil {
		return domain.Item{}, inv.fail(title, domainerrors.Persistence(err, "record service returned an invalid item"))
	}

	inv.applyItem(item)
	inv.succeed("Item updated", fmt.Sprintf("%q saved", item.Name))
	return item.Clone(), nil
}

// DeleteItem removes an item remotely, then locally. Sections are unaffected.
func (inv *Inventory) DeleteItem(ctx context.Context, id string) error {
	const title = "Failed to delete item"

	inv.mu.RLock()
	i := inv.itemIndexLocked(id)
	var name string
	if i >= 0 {
		name = inv.items[i].Name
	}
	inv.mu.RUnlock()
	if i < 0 {
		return inv.fail(title, domainerrors.NotFoundf("item %s not found", id))
	}

	err := inv.records.Delete(ctx, store.TableItems, id)
	if abandonErr := abandoned(ctx); abandonErr != nil {
		return inv.fail(title, abandonErr)
	}
	if err != nil {
		return inv.fail(title, remoteError(err, fmt.Sprintf("failed to delete item %q", name)))
	}

	inv.mu.Lock()
	if j := inv.itemIndexLocked(id); j >= 0 {
		inv.items = slices.Delete(inv.items, j, j+1)
	}
	inv.mu.Unlock()

	inv.succeed("Item deleted", fmt.Sprintf("%q was removed", name))
	return nil
}

// checkPatch trims and validates the fields a patch sets, resolving a new
// location to the stored section spelling. A cleared image URL falls back to
// the placeholder unless an image is required.
func (inv *Inventory) checkPatch(patch *domain.ItemPatch, replacingImage bool) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domainerrors.ValidationWithDetails("name is required", map[string]string{"name": "is required"})
		}
		patch.Name = &name
	}
	if patch.ImageURL != nil {
		url := strings.TrimSpace(*patch.ImageURL)
		if url == "" {
			if inv.opts.RequireImageOnCreate && !replacingImage {
				return domainerrors.ValidationWithDetails("an item image cannot be removed",
					map[string]string{"image_url": "is required"})
			}
			url = inv.opts.PlaceholderImageURL
		}
		patch.ImageURL = &url
	}
	if err := inv.validator.Validate(*patch); err != nil {
		return err
	}

	if patch.Location != nil {
		loc := strings.TrimSpace(*patch.Location)
		if loc == "" {
			return domainerrors.ValidationWithDetails("location is required", map[string]string{"location": "is required"})
		}
		inv.mu.RLock()
		resolved, known := inv.resolveLocationLocked(loc)
		inv.mu.RUnlock()
		if !known {
			return domainerrors.UnknownLocationf("no section named %q", loc)
		}
		patch.Location = &resolved
	}
	return nil
}

func (inv *Inventory) upload(ctx context.Context, image images.File) (string, error) {
	if inv.uploader == nil {
		return "", domainerrors.UploadFailed(nil, "image uploads are not configured")
	}
	return inv.uploader.Upload(ctx, image)
}

func (inv *Inventory) itemIndexLocked(id string) int {
	return slices.IndexFunc(inv.items, func(it domain.Item) bool { return it.ID == id })
}
