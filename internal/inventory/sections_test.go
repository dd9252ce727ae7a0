package inventory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartwardrobe/wardrobe-server/internal/domain"
	domainerrors "github.com/smartwardrobe/wardrobe-server/internal/errors"
	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

func TestCreateThenDeleteRestoresSections(t *testing.T) {
	names := []string{"Closet", "Drawer 1", "  Shoe Rack  ", "Été", strings.Repeat("x", domain.MaxSectionNameLength)}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, Options{})
			f.section(t, "Existing")
			before := f.inv.Snapshot().Sections

			s, err := f.inv.CreateSection(context.Background(), name)
			require.NoError(t, err)
			require.NoError(t, f.inv.DeleteSection(context.Background(), s.ID))

			assert.Equal(t, before, f.inv.Snapshot().Sections)
		})
	}
}

func TestCreateSection_UsesServiceID(t *testing.T) {
	f := newFixture(t, Options{})

	s, err := f.inv.CreateSection(context.Background(), "  Closet ")
	require.NoError(t, err)

	assert.Equal(t, "sec-1", s.ID)
	assert.Equal(t, "Closet", s.Name)
	assert.False(t, s.CreatedAt.IsZero())
}

// Uniqueness is checked against the local mirror; a single client session is
// assumed, so the mirror is the latest known state.
func TestCreateSection_DuplicateIgnoringCase(t *testing.T) {
	f := newFixture(t, Options{})
	f.section(t, "Closet")

	_, err := f.inv.CreateSection(context.Background(), "closet")

	assert.True(t, domainerrors.Is(err, domainerrors.ErrDuplicate))
	assert.Len(t, f.inv.Snapshot().Sections, 1)
	assert.Equal(t, 1, f.records.callCount("insert:"), "duplicate must be caught before the network")
	require.Len(t, f.notifier.errors(), 1)
	assert.Equal(t, "Failed to add section", f.notifier.errors()[0].Title)
}

func TestCreateSection_ServiceUniqueViolation(t *testing.T) {
	f := newFixture(t, Options{})
	// Another client created it after our load.
	f.records.seed(t, store.TableSections, store.Row{store.ColName: "Closet"})

	_, err := f.inv.CreateSection(context.Background(), "CLOSET")

	assert.True(t, domainerrors.Is(err, domainerrors.ErrDuplicate))
	assert.Empty(t, f.inv.Snapshot().Sections)
}

func TestCreateSection_ValidationNeverReachesNetwork(t *testing.T) {
	f := newFixture(t, Options{})

	for _, name := range []string{"", "   ", strings.Repeat("x", domain.MaxSectionNameLength+1)} {
		_, err := f.inv.CreateSection(context.Background(), name)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "name %q", name)
	}
	assert.Zero(t, f.records.callCount("insert:"))
	assert.Len(t, f.notifier.errors(), 3)
}

func TestCreateSection_PersistenceFailure(t *testing.T) {
	f := newFixture(t, Options{})
	f.records.insertErr = func(string, store.Row) error { return errors.New("connection reset") }

	_, err := f.inv.CreateSection(context.Background(), "Closet")

	assert.True(t, domainerrors.Is(err, domainerrors.ErrPersistence))
	assert.ErrorContains(t, err, "connection reset")
	assert.Empty(t, f.inv.Snapshot().Sections)
}

func TestDeleteSection_NotEmpty(t *testing.T) {
	f := newFixture(t, Options{})
	s := f.section(t, "Closet")
	f.item(t, "Wool Coat", "Closet")
	before := f.inv.Snapshot()

	err := f.inv.DeleteSection(context.Background(), s.ID)

	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotEmpty))
	assert.Equal(t, before, f.inv.Snapshot())
	assert.Zero(t, f.records.callCount("delete:"))
}

func TestDeleteSection_UnknownID(t *testing.T) {
	f := newFixture(t, Options{})

	err := f.inv.DeleteSection(context.Background(), "sec-404")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestDeleteSection_RemoteFailureLeavesMirror(t *testing.T) {
	f := newFixture(t, Options{})
	s := f.section(t, "Closet")
	f.records.deleteErr = func(string, string) error { return errors.New("timeout") }

	err := f.inv.DeleteSection(context.Background(), s.ID)

	assert.True(t, domainerrors.Is(err, domainerrors.ErrPersistence))
	assert.Len(t, f.inv.Snapshot().Sections, 1)
}

func TestRenameSection_CascadesAcrossRenames(t *testing.T) {
	f := newFixture(t, Options{})
	s := f.section(t, "Closet")
	f.section(t, "Drawer")
	f.item(t, "Wool Coat", "Closet")
	f.item(t, "Silk Dress", "Closet")
	other := f.item(t, "Blue Tee", "Drawer")

	_, err := f.inv.RenameSection(context.Background(), s.ID, "X")
	require.NoError(t, err)
	renamed, err := f.inv.RenameSection(context.Background(), s.ID, "Y")
	require.NoError(t, err)
	assert.Equal(t, "Y", renamed.Name)

	snap := f.inv.Snapshot()
	for _, it := range snap.Items {
		if it.ID == other.ID {
			assert.Equal(t, "Drawer", it.Location)
			continue
		}
		assert.Equal(t, "Y", it.Location, "item %s", it.Name)
	}

	// The service agrees with the mirror.
	rows, err := f.records.Select(context.Background(), store.TableItems, store.Filter{store.ColLocation: "Y"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Empty(t, f.inv.Inconsistencies())
}

func TestRenameSection_UnchangedIsNoop(t *testing.T) {
	f := newFixture(t, Options{})
	s := f.section(t, "Closet")

	got, err := f.inv.RenameSection(context.Background(), s.ID, " Closet ")

	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.Zero(t, f.records.callCount("update:"))
}

func TestRenameSection_CaseOnlyChange(t *testing.T) {
	f := newFixture(t, Options{})
	s := f.section(t, "closet")
	f.item(t, "Wool Coat", "closet")

	renamed, err := f.inv.RenameSection(context.Background(), s.ID, "Closet")

	require.NoError(t, err)
	assert.Equal(t, "Closet", renamed.Name)
	assert.Equal(t, "Closet", f.inv.Snapshot().Items[0].Location)
}

func TestRenameSection_DuplicateOfAnother(t *testing.T) {
	f := newFixture(t, Options{})
	f.section(t, "Closet")
	drawer := f.section(t, "Drawer")

	_, err := f.inv.RenameSection(context.Background(), drawer.ID, "CLOSET")

	assert.True(t, domainerrors.Is(err, domainerrors.ErrDuplicate))
	got, _ := f.inv.Section(drawer.ID)
	assert.Equal(t, "Drawer", got.Name)
}

func TestRenameSection_PartialCascadeIsReportedAndRepairable(t *testing.T) {
	f := newFixture(t, Options{})
	s := f.section(t, "Closet")
	coat := f.item(t, "Wool Coat", "Closet")
	dress := f.item(t, "Silk Dress", "Closet")

	f.records.updateErr = func(table, id string, _ store.Row) error {
		if table == store.TableItems && id == dress.ID {
			return errors.New("503 service unavailable")
		}
		return nil
	}

	renamed, err := f.inv.RenameSection(context.Background(), s.ID, "Wardrobe")

	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInconsistent))
	assert.Equal(t, "Wardrobe", renamed.Name)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, []string{dress.ID}, domainErr.Details)

	got, _ := f.inv.Item(coat.ID)
	assert.Equal(t, "Wardrobe", got.Location)
	got, _ = f.inv.Item(dress.ID)
	assert.Equal(t, "Closet", got.Location)

	assert.Equal(t, []Inconsistency{{SectionID: s.ID, ItemIDs: []string{dress.ID}}}, f.inv.Inconsistencies())
	reports := f.notifier.errors()
	require.NotEmpty(t, reports)
	assert.Equal(t, "Section partially renamed", reports[len(reports)-1].Title)

	// Still failing: the record stays.
	assert.True(t, domainerrors.Is(f.inv.RepairSection(context.Background(), s.ID), domainerrors.ErrInconsistent))
	assert.Len(t, f.inv.Inconsistencies(), 1)

	f.records.updateErr = nil
	require.NoError(t, f.inv.RepairSection(context.Background(), s.ID))

	got, _ = f.inv.Item(dress.ID)
	assert.Equal(t, "Wardrobe", got.Location)
	assert.Empty(t, f.inv.Inconsistencies())
}

func TestRepairSection_SkipsItemsMovedElsewhere(t *testing.T) {
	f := newFixture(t, Options{})
	s := f.section(t, "Closet")
	f.section(t, "Drawer")
	dress := f.item(t, "Silk Dress", "Closet")

	f.records.updateErr = func(table, id string, _ store.Row) error {
		if table == store.TableItems {
			return errors.New("boom")
		}
		return nil
	}
	_, err := f.inv.RenameSection(context.Background(), s.ID, "Wardrobe")
	require.Error(t, err)
	f.records.updateErr = nil

	drawer := "Drawer"
	_, err = f.inv.UpdateItem(context.Background(), dress.ID, domain.ItemPatch{Location: &drawer}, nil)
	require.NoError(t, err)

	updatesBefore := f.records.callCount("update:")
	require.NoError(t, f.inv.RepairSection(context.Background(), s.ID))

	assert.Equal(t, updatesBefore, f.records.callCount("update:"))
	got, _ := f.inv.Item(dress.ID)
	assert.Equal(t, "Drawer", got.Location)
	assert.Empty(t, f.inv.Inconsistencies())
}

func TestSections_Summaries(t *testing.T) {
	f := newFixture(t, Options{})
	f.section(t, "Closet")
	f.section(t, "Drawer")
	f.section(t, "Shelf")
	f.item(t, "Wool Coat", "Closet")
	f.item(t, "Silk Dress", "Closet")
	f.item(t, "Blue Tee", "Drawer")

	summaries := f.inv.Sections()
	require.Len(t, summaries, 3)

	labels := make([]string, len(summaries))
	for i, s := range summaries {
		labels[i] = s.Section.Name + ": " + s.Label()
	}
	assert.Equal(t, []string{"Closet: 2 items", "Drawer: 1 item", "Shelf: Empty"}, labels)
}
