package providers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/smartwardrobe/wardrobe-server/internal/config"
	"github.com/smartwardrobe/wardrobe-server/internal/logger"
	"github.com/smartwardrobe/wardrobe-server/internal/store"
	"github.com/smartwardrobe/wardrobe-server/internal/store/kv"
	"github.com/smartwardrobe/wardrobe-server/internal/store/sqlite"
)

// RecordStoreHandle wraps the configured record backend with shutdown capability.
type RecordStoreHandle struct {
	store.Records
	closer io.Closer
	Driver string
}

// Shutdown implements do.Shutdownable.
func (h *RecordStoreHandle) Shutdown() error {
	return h.closer.Close()
}

// ProvideRecordStore opens the backend selected by Store.Driver.
func ProvideRecordStore(i do.Injector) (*RecordStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	switch cfg.Store.Driver {
	case config.DriverBadger:
		db, err := kv.Open(cfg.Store.Path, log.Component("store").Logger)
		if err != nil {
			return nil, err
		}
		return &RecordStoreHandle{Records: db, closer: db, Driver: cfg.Store.Driver}, nil
	default:
		db, err := sqlite.Open(cfg.Store.Path, log.Component("store").Logger)
		if err != nil {
			return nil, err
		}
		return &RecordStoreHandle{Records: db, closer: db, Driver: config.DriverSQLite}, nil
	}
}
