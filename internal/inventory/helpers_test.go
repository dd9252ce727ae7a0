package inventory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smartwardrobe/wardrobe-server/internal/domain"
	"github.com/smartwardrobe/wardrobe-server/internal/media/images"
	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

// fakeRecords is an in-memory record service with per-call failure hooks.
// Uniqueness is enforced like the real service so stale-mirror races can be
// simulated by seeding rows directly.
type fakeRecords struct {
	mu     sync.Mutex
	rows   map[string][]store.Row
	nextID int
	calls  []string

	selectErr func(table string) error
	insertErr func(table string, row store.Row) error
	updateErr func(table, id string, patch store.Row) error
	deleteErr func(table, id string) error
	// afterUpdate may rewrite the row the service returns.
	afterUpdate func(row store.Row)
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{rows: map[string][]store.Row{}}
}

func (f *fakeRecords) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeRecords) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeRecords) Select(_ context.Context, table string, filter store.Filter) ([]store.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("select:" + table)

	if f.selectErr != nil {
		if err := f.selectErr(table); err != nil {
			return nil, err
		}
	}
	out := []store.Row{}
	for _, r := range f.rows[table] {
		if store.Matches(r, filter) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (f *fakeRecords) Insert(_ context.Context, table string, row store.Row) (store.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("insert:" + table)

	if f.insertErr != nil {
		if err := f.insertErr(table, row); err != nil {
			return nil, err
		}
	}
	return f.insertLocked(table, row)
}

func (f *fakeRecords) insertLocked(table string, row store.Row) (store.Row, error) {
	tbl, err := store.LookupTable(table)
	if err != nil {
		return nil, err
	}
	prepared, err := tbl.PrepareInsert(row)
	if err != nil {
		return nil, err
	}
	if tbl.UniqueFold != "" {
		for _, existing := range f.rows[table] {
			if store.FoldKey(existing[tbl.UniqueFold].(string)) == store.FoldKey(prepared[tbl.UniqueFold].(string)) {
				return nil, store.ErrAlreadyExists
			}
		}
	}
	f.nextID++
	prepared[store.ColID] = fmt.Sprintf("%s-%d", tbl.IDPrefix, f.nextID)
	prepared[store.ColCreatedAt] = "2024-05-01T09:00:00Z"
	prepared[store.ColUpdatedAt] = "2024-05-01T09:00:00Z"
	f.rows[table] = append(f.rows[table], prepared)
	return prepared.Clone(), nil
}

func (f *fakeRecords) Update(_ context.Context, table, id string, patch store.Row) (store.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update:" + table + ":" + id)

	if f.updateErr != nil {
		if err := f.updateErr(table, id, patch); err != nil {
			return nil, err
		}
	}
	tbl, err := store.LookupTable(table)
	if err != nil {
		return nil, err
	}
	prepared, err := tbl.PreparePatch(patch)
	if err != nil {
		return nil, err
	}
	for i, r := range f.rows[table] {
		if r[store.ColID] != id {
			continue
		}
		for k, v := range prepared {
			r[k] = v
		}
		r[store.ColUpdatedAt] = "2024-05-01T10:00:00Z"
		if f.afterUpdate != nil {
			f.afterUpdate(r)
		}
		f.rows[table][i] = r
		return r.Clone(), nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeRecords) Delete(_ context.Context, table, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete:" + table + ":" + id)

	if f.deleteErr != nil {
		if err := f.deleteErr(table, id); err != nil {
			return err
		}
	}
	for i, r := range f.rows[table] {
		if r[store.ColID] == id {
			f.rows[table] = append(f.rows[table][:i], f.rows[table][i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// seed inserts a row without going through the engine.
func (f *fakeRecords) seed(t *testing.T, table string, row store.Row) store.Row {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out, err := f.insertLocked(table, row)
	require.NoError(t, err)
	return out
}

type report struct {
	Severity Severity
	Title    string
	Message  string
}

type fakeNotifier struct {
	mu      sync.Mutex
	reports []report
}

func (n *fakeNotifier) Report(severity Severity, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reports = append(n.reports, report{severity, title, message})
}

func (n *fakeNotifier) errors() []report {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []report
	for _, r := range n.reports {
		if r.Severity == SeverityError {
			out = append(out, r)
		}
	}
	return out
}

type fakeUploader struct {
	mu    sync.Mutex
	calls int
	url   string
	err   error
}

func (u *fakeUploader) Upload(context.Context, images.File) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

type fixture struct {
	inv      *Inventory
	records  *fakeRecords
	notifier *fakeNotifier
	uploader *fakeUploader
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		records:  newFakeRecords(),
		notifier: &fakeNotifier{},
		uploader: &fakeUploader{url: "https://objects.test/objects/items/2024/05/01/a.jpg"},
	}
	f.inv = New(f.records, f.uploader, f.notifier, discardLogger(), opts)
	return f
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// section creates a section through the engine.
func (f *fixture) section(t *testing.T, name string) domain.Section {
	t.Helper()
	s, err := f.inv.CreateSection(context.Background(), name)
	require.NoError(t, err)
	return s
}

// item creates an item through the engine.
func (f *fixture) item(t *testing.T, name, location string, tags ...string) domain.Item {
	t.Helper()
	it, err := f.inv.CreateItem(context.Background(), domain.ItemDraft{
		Name:     name,
		Location: location,
		Tags:     tags,
	}, nil)
	require.NoError(t, err)
	return it
}
