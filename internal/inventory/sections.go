package inventory

import (
	"context"
	"fmt"
	"slices"

	"github.com/smartwardrobe/wardrobe-server/internal/domain"
	domainerrors "github.com/smartwardrobe/wardrobe-server/internal/errors"
	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

// Sections returns every section with its item count, in load order.
func (inv *Inventory) Sections() []domain.SectionSummary {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make([]domain.SectionSummary, len(inv.sections))
	for i, s := range inv.sections {
		out[i] = domain.SectionSummary{Section: s, ItemCount: inv.countItemsLocked(s.Name)}
	}
	return out
}

// Section returns the section with the given id.
func (inv *Inventory) Section(id string) (domain.Section, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	i := inv.sectionIndexLocked(id)
	if i < 0 {
		return domain.Section{}, false
	}
	return inv.sections[i], true
}

// CreateSection persists a new section and appends the returned row.
func (inv *Inventory) CreateSection(ctx context.Context, name string) (domain.Section, error) {
	const title = "Failed to add section"

	name, err := inv.checkSectionName(name)
	if err != nil {
		return domain.Section{}, inv.fail(title, err)
	}

	inv.mu.RLock()
	conflict, taken := inv.sectionNamedLocked(name, "")
	inv.mu.RUnlock()
	if taken {
		return domain.Section{}, inv.fail(title, domainerrors.Duplicatef("a section named %q already exists", conflict.Name))
	}

	row, err := inv.records.Insert(ctx, store.TableSections, store.EncodeSection(name))
	if abandonErr := abandoned(ctx); abandonErr != nil {
		return domain.Section{}, inv.fail(title, abandonErr)
	}
	if err != nil {
		return domain.Section{}, inv.fail(title, remoteError(err, fmt.Sprintf("failed to create section %q", name)))
	}
	section, err := store.DecodeSection(row)
	if err != nil {
		return domain.Section{}, inv.fail(title, domainerrors.Persistence(err, "record service returned an invalid section"))
	}

	inv.mu.Lock()
	inv.sections = append(inv.sections, section)
	inv.mu.Unlock()

	inv.succeed("Section added", fmt.Sprintf("%q is ready for items", section.Name))
	return section, nil
}

// RenameSection renames a section and rewrites the location of every item
// that referenced the old name.
//
// The two steps are not atomic. When some item updates fail the section keeps
// its new name, the failed items are recorded as an inconsistency and an
// INCONSISTENT error listing them is returned alongside the renamed section.
func (inv *Inventory) RenameSection(ctx context.Context, id, newName string) (domain.Section, error) {
	const title = "Failed to rename section"

	newName, err := inv.checkSectionName(newName)
	if err != nil {
		return domain.Section{}, inv.fail(title, err)
	}

	inv.mu.RLock()
	i := inv.sectionIndexLocked(id)
	if i < 0 {
		inv.mu.RUnlock()
		return domain.Section{}, inv.fail(title, domainerrors.NotFoundf("section %s not found", id))
	}
	current := inv.sections[i]
	conflict, taken := inv.sectionNamedLocked(newName, id)
	affected := inv.itemIDsAtLocked(current.Name)
	inv.mu.RUnlock()

	if current.Name == newName {
		return current, nil
	}
	if taken {
		return domain.Section{}, inv.fail(title, domainerrors.Duplicatef("a section named %q already exists", conflict.Name))
	}

	row, err := inv.records.Update(ctx, store.TableSections, id, store.Row{store.ColName: newName})
	if err != nil {
		if abandonErr := abandoned(ctx); abandonErr != nil {
			return domain.Section{}, inv.fail(title, abandonErr)
		}
		return domain.Section{}, inv.fail(title, remoteError(err, fmt.Sprintf("failed to rename section %q", current.Name)))
	}
	// The service has the new name. A caller that gives up from here on
	// leaves items at the old name, which relocate records as failed.
	renamed, err := store.DecodeSection(row)
	if err != nil {
		return domain.Section{}, inv.fail(title, domainerrors.Persistence(err, "record service returned an invalid section"))
	}

	inv.mu.Lock()
	if j := inv.sectionIndexLocked(id); j >= 0 {
		inv.sections[j] = renamed
	}
	inv.mu.Unlock()

	failed, cascadeErr := inv.relocate(ctx, affected, renamed.Name)
	if len(failed) > 0 {
		inv.recordInconsistency(renamed.ID, failed)
		err := domainerrors.Wrapf(cascadeErr, domainerrors.CodeInconsistent,
			"section renamed to %q but %d of %d items still reference %q",
			renamed.Name, len(failed), len(affected), current.Name).WithDetails(failed)
		return renamed, inv.fail("Section partially renamed", err)
	}

	inv.succeed("Section renamed", fmt.Sprintf("%q is now %q; %d items moved", current.Name, renamed.Name, len(affected)))
	return renamed, nil
}

// DeleteSection removes an empty section. A section still referenced by any
// item is refused with NOT_EMPTY and nothing changes.
func (inv *Inventory) DeleteSection(ctx context.Context, id string) error {
	const title = "Failed to delete section"

	inv.mu.RLock()
	i := inv.sectionIndexLocked(id)
	if i < 0 {
		inv.mu.RUnlock()
		return inv.fail(title, domainerrors.NotFoundf("section %s not found", id))
	}
	section := inv.sections[i]
	count := inv.countItemsLocked(section.Name)
	inv.mu.RUnlock()

	if count > 0 {
		return inv.fail(title, domainerrors.NotEmptyf("section %q still holds %d item(s); move or delete them first", section.Name, count))
	}

	err := inv.records.Delete(ctx, store.TableSections, id)
	if abandonErr := abandoned(ctx); abandonErr != nil {
		return inv.fail(title, abandonErr)
	}
	if err != nil {
		return inv.fail(title, remoteError(err, fmt.Sprintf("failed to delete section %q", section.Name)))
	}

	inv.mu.Lock()
	if j := inv.sectionIndexLocked(id); j >= 0 {
		inv.sections = slices.Delete(inv.sections, j, j+1)
	}
	delete(inv.inconsistencies, id)
	inv.mu.Unlock()

	inv.succeed("Section deleted", fmt.Sprintf("%q was removed", section.Name))
	return nil
}

// checkSectionName trims and validates a user-entered section name.
func (inv *Inventory) checkSectionName(name string) (string, error) {
	name = domain.NormalizeSectionName(name)
	if err := inv.validator.ValidateField("name", name, fmt.Sprintf("required,max=%d", domain.MaxSectionNameLength)); err != nil {
		return "", err
	}
	return name, nil
}

func (inv *Inventory) sectionIndexLocked(id string) int {
	return slices.IndexFunc(inv.sections, func(s domain.Section) bool { return s.ID == id })
}

// sectionNamedLocked finds a section whose name collides with name, ignoring
// the section with id except.
func (inv *Inventory) sectionNamedLocked(name, except string) (domain.Section, bool) {
	for _, s := range inv.sections {
		if s.ID != except && domain.SameSectionName(s.Name, name) {
			return s, true
		}
	}
	return domain.Section{}, false
}

// resolveLocationLocked returns the stored spelling of the section matching name.
func (inv *Inventory) resolveLocationLocked(name string) (string, bool) {
	for _, s := range inv.sections {
		if s.Name == name {
			return s.Name, true
		}
	}
	if s, ok := inv.sectionNamedLocked(name, ""); ok {
		return s.Name, true
	}
	return "", false
}

func (inv *Inventory) countItemsLocked(location string) int {
	n := 0
	for _, it := range inv.items {
		if it.Location == location {
			n++
		}
	}
	return n
}

func (inv *Inventory) itemIDsAtLocked(location string) []string {
	var ids []string
	for _, it := range inv.items {
		if it.Location == location {
			ids = append(ids, it.ID)
		}
	}
	return ids
}
