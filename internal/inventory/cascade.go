package inventory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/smartwardrobe/wardrobe-server/internal/domain"
	domainerrors "github.com/smartwardrobe/wardrobe-server/internal/errors"
	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

// Inconsistency lists items left at a stale location after a section rename
// could not update them. It stays recorded until RepairSection succeeds or
// the section is deleted.
type Inconsistency struct {
	SectionID string   `json:"section_id"`
	ItemIDs   []string `json:"item_ids"`
}

// Inconsistencies returns the recorded rename inconsistencies, ordered by
// section id.
func (inv *Inventory) Inconsistencies() []Inconsistency {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]Inconsistency, 0, len(inv.inconsistencies))
	for _, inc := range inv.inconsistencies {
		out = append(out, Inconsistency{SectionID: inc.SectionID, ItemIDs: slices.Clone(inc.ItemIDs)})
	}
	slices.SortFunc(out, func(a, b Inconsistency) int { return strings.Compare(a.SectionID, b.SectionID) })
	return out
}

// RepairSection retries the location rewrite for the items recorded against
// a section. Items that were deleted or moved to another existing section
// since are dropped from the record. Nothing is retried automatically; this
// runs only when called.
func (inv *Inventory) RepairSection(ctx context.Context, id string) error {
	const title = "Failed to repair section"

	inv.mu.RLock()
	inc, ok := inv.inconsistencies[id]
	if !ok {
		inv.mu.RUnlock()
		return nil
	}
	i := inv.sectionIndexLocked(id)
	if i < 0 {
		inv.mu.RUnlock()
		return inv.fail(title, domainerrors.NotFoundf("section %s not found", id))
	}
	section := inv.sections[i]
	var stale []string
	for _, itemID := range inc.ItemIDs {
		j := inv.itemIndexLocked(itemID)
		if j < 0 {
			continue
		}
		loc := inv.items[j].Location
		if loc == section.Name {
			continue
		}
		if _, known := inv.resolveLocationLocked(loc); known {
			continue
		}
		stale = append(stale, itemID)
	}
	inv.mu.RUnlock()

	failed, err := inv.relocate(ctx, stale, section.Name)

	inv.mu.Lock()
	if len(failed) == 0 {
		delete(inv.inconsistencies, id)
	} else {
		inv.inconsistencies[id] = &Inconsistency{SectionID: id, ItemIDs: failed}
	}
	inv.mu.Unlock()

	if len(failed) > 0 {
		return inv.fail(title, domainerrors.Wrapf(err, domainerrors.CodeInconsistent,
			"%d of %d items still do not reference %q", len(failed), len(stale), section.Name).WithDetails(failed))
	}
	inv.succeed("Section repaired", fmt.Sprintf("%d items moved to %q", len(stale), section.Name))
	return nil
}

// Orphans returns the items whose location matches no section. They appear
// when a rename cascade was interrupted in an earlier session.
func (inv *Inventory) Orphans() []domain.Item {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	var out []domain.Item
	for _, it := range inv.items {
		if _, ok := inv.resolveLocationLocked(it.Location); !ok {
			out = append(out, it.Clone())
		}
	}
	return out
}

// AdoptOrphans moves orphaned items into a section. With no ids every orphan
// is moved. Ids that are unknown or not orphaned are rejected before any
// write. A partial failure is recorded like a failed rename cascade.
func (inv *Inventory) AdoptOrphans(ctx context.Context, sectionID string, itemIDs ...string) (int, error) {
	const title = "Failed to adopt items"

	inv.mu.RLock()
	i := inv.sectionIndexLocked(sectionID)
	if i < 0 {
		inv.mu.RUnlock()
		return 0, inv.fail(title, domainerrors.NotFoundf("section %s not found", sectionID))
	}
	section := inv.sections[i]

	var targets []string
	if len(itemIDs) == 0 {
		for _, it := range inv.items {
			if _, ok := inv.resolveLocationLocked(it.Location); !ok {
				targets = append(targets, it.ID)
			}
		}
	}
	for _, itemID := range itemIDs {
		j := inv.itemIndexLocked(itemID)
		if j < 0 {
			inv.mu.RUnlock()
			return 0, inv.fail(title, domainerrors.NotFoundf("item %s not found", itemID))
		}
		if _, ok := inv.resolveLocationLocked(inv.items[j].Location); ok {
			inv.mu.RUnlock()
			return 0, inv.fail(title, domainerrors.Validationf("item %s is stored in %q, not orphaned", itemID, inv.items[j].Location))
		}
		targets = append(targets, itemID)
	}
	inv.mu.RUnlock()

	if len(targets) == 0 {
		return 0, nil
	}

	failed, err := inv.relocate(ctx, targets, section.Name)
	if len(failed) > 0 {
		inv.recordInconsistency(sectionID, failed)
		return len(targets) - len(failed), inv.fail(title, domainerrors.Wrapf(err, domainerrors.CodeInconsistent,
			"%d of %d items could not be moved to %q", len(failed), len(targets), section.Name).WithDetails(failed))
	}
	inv.succeed("Items adopted", fmt.Sprintf("%d items moved to %q", len(targets), section.Name))
	return len(targets), nil
}

// relocate sets the location of each item, applying every confirmed row as it
// arrives. It returns the ids that could not be updated. Once the caller
// abandons, the current and remaining items count as failed.
func (inv *Inventory) relocate(ctx context.Context, itemIDs []string, location string) ([]string, error) {
	var (
		failed []string
		errs   []error
	)
	for k, itemID := range itemIDs {
		if abandonErr := abandoned(ctx); abandonErr != nil {
			failed = append(failed, itemIDs[k:]...)
			errs = append(errs, abandonErr)
			break
		}
		row, err := inv.records.Update(ctx, store.TableItems, itemID, store.Row{store.ColLocation: location})
		if abandonErr := abandoned(ctx); abandonErr != nil {
			failed = append(failed, itemIDs[k:]...)
			errs = append(errs, abandonErr)
			break
		}
		if errors.Is(err, store.ErrNotFound) {
			inv.logger.Info("item vanished during relocation", "item_id", itemID)
			continue
		}
		if err != nil {
			failed = append(failed, itemID)
			errs = append(errs, fmt.Errorf("item %s: %w", itemID, err))
			continue
		}
		it, err := store.DecodeItem(row)
		if err != nil {
			failed = append(failed, itemID)
			errs = append(errs, fmt.Errorf("item %s: %w", itemID, err))
			continue
		}
		inv.applyItem(it)
	}
	return failed, errors.Join(errs...)
}

func (inv *Inventory) recordInconsistency(sectionID string, itemIDs []string) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	inc, ok := inv.inconsistencies[sectionID]
	if !ok {
		inc = &Inconsistency{SectionID: sectionID}
		inv.inconsistencies[sectionID] = inc
	}
	for _, itemID := range itemIDs {
		if !slices.Contains(inc.ItemIDs, itemID) {
			inc.ItemIDs = append(inc.ItemIDs, itemID)
		}
	}
}

// applyItem replaces the mirrored item with a confirmed row. Items deleted in
// the meantime are not resurrected.
func (inv *Inventory) applyItem(it domain.Item) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if i := inv.itemIndexLocked(it.ID); i >= 0 {
		inv.items[i] = it
	}
}
