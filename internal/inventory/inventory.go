// Package inventory owns the in-memory mirror of sections and items and
// funnels every mutation through the record service.
//
// A mutation is applied to the mirror only after the remote call confirms it,
// and always with the row the service returned. Remote calls run without the
// lock held; the lock guards reads and the final apply.
package inventory

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/smartwardrobe/wardrobe-server/internal/domain"
	domainerrors "github.com/smartwardrobe/wardrobe-server/internal/errors"
	"github.com/smartwardrobe/wardrobe-server/internal/media/images"
	"github.com/smartwardrobe/wardrobe-server/internal/store"
	"github.com/smartwardrobe/wardrobe-server/internal/validation"
)

// Severity classifies a report.
type Severity string

// Report severities.
const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notifier receives fire-and-forget user-facing reports.
type Notifier interface {
	Report(severity Severity, title, message string)
}

// Uploader turns an image into a durable public URL.
type Uploader interface {
	Upload(ctx context.Context, f images.File) (string, error)
}

// DefaultPlaceholderImageURL is used for items created without an image under
// the lenient policy.
const DefaultPlaceholderImageURL = "https://placehold.co/400x320"

// Options tunes engine policy.
type Options struct {
	// RequireImageOnCreate rejects item creation without an image or image URL.
	RequireImageOnCreate bool
	// PlaceholderImageURL replaces a missing image under the lenient policy.
	PlaceholderImageURL string
}

// Inventory is the single owner of the section and item collections.
type Inventory struct {
	records   store.Records
	uploader  Uploader
	notifier  Notifier
	validator *validation.Validator
	logger    *slog.Logger
	opts      Options

	mu              sync.RWMutex
	sections        []domain.Section
	items           []domain.Item
	inconsistencies map[string]*Inconsistency
}

// New creates an empty inventory. Call Load to populate it.
func New(records store.Records, uploader Uploader, notifier Notifier, logger *slog.Logger, opts Options) *Inventory {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if opts.PlaceholderImageURL == "" {
		opts.PlaceholderImageURL = DefaultPlaceholderImageURL
	}
	return &Inventory{
		records:         records,
		uploader:        uploader,
		notifier:        notifier,
		validator:       validation.New(),
		logger:          logger,
		opts:            opts,
		inconsistencies: make(map[string]*Inconsistency),
	}
}

// Snapshot is an immutable copy of the mirror.
type Snapshot struct {
	Sections []domain.Section
	Items    []domain.Item
}

// Snapshot returns a deep copy of the current collections.
func (inv *Inventory) Snapshot() Snapshot {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	snap := Snapshot{
		Sections: make([]domain.Section, len(inv.sections)),
		Items:    make([]domain.Item, len(inv.items)),
	}
	copy(snap.Sections, inv.sections)
	for i, it := range inv.items {
		snap.Items[i] = it.Clone()
	}
	return snap
}

// Load replaces both collections with the service's current rows.
//
// Each collection is fetched independently. A failed fetch leaves that
// collection empty, is reported, and contributes to the returned error; the
// inventory stays usable either way. Rows that fail to decode are skipped.
func (inv *Inventory) Load(ctx context.Context) error {
	var errs []error

	sectionRows, err := inv.records.Select(ctx, store.TableSections, nil)
	if abandonErr := abandoned(ctx); abandonErr != nil {
		return abandonErr
	}
	sections := []domain.Section{}
	if err != nil {
		errs = append(errs, inv.fail("Failed to load sections", domainerrors.Persistence(err, "failed to load sections")))
	} else {
		for _, row := range sectionRows {
			s, err := store.DecodeSection(row)
			if err != nil {
				inv.logger.Warn("skipping invalid section row", "error", err)
				continue
			}
			sections = append(sections, s)
		}
	}

	itemRows, err := inv.records.Select(ctx, store.TableItems, nil)
	if abandonErr := abandoned(ctx); abandonErr != nil {
		return abandonErr
	}
	items := []domain.Item{}
	if err != nil {
		errs = append(errs, inv.fail("Failed to load items", domainerrors.Persistence(err, "failed to load items")))
	} else {
		for _, row := range itemRows {
			it, err := store.DecodeItem(row)
			if err != nil {
				inv.logger.Warn("skipping invalid item row", "error", err)
				continue
			}
			items = append(items, it)
		}
	}

	inv.mu.Lock()
	inv.sections = sections
	inv.items = items
	inv.mu.Unlock()

	inv.logger.Debug("inventory loaded", "sections", len(sections), "items", len(items))
	return errors.Join(errs...)
}

// abandoned returns an ABANDONED error once the caller's context is done.
// Results that arrive after that point are ignored.
func abandoned(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.Abandoned(err, "request abandoned before the result was applied")
	}
	return nil
}

// fail reports err through the notifier and returns it unchanged.
// Abandonment is not reported; nobody is waiting for the answer.
func (inv *Inventory) fail(title string, err error) error {
	if domainerrors.CodeOf(err) == domainerrors.CodeAbandoned {
		inv.logger.Debug("operation abandoned", "operation", title, "error", err)
		return err
	}
	inv.logger.Warn(title, "error", err)
	inv.notifier.Report(SeverityError, title, err.Error())
	return err
}

func (inv *Inventory) succeed(title, message string) {
	inv.notifier.Report(SeverityInfo, title, message)
}

// remoteError maps a record service failure onto the engine taxonomy.
func remoteError(err error, msg string) error {
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.Wrap(err, domainerrors.CodeDuplicate, msg)
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.Wrap(err, domainerrors.CodeNotFound, msg)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Wrap(err, domainerrors.CodeValidation, msg)
	default:
		return domainerrors.Persistence(err, msg)
	}
}
