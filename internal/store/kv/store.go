// Package kv implements store.Records on an embedded Badger database.
//
// Layout:
//
//	rec:{table}:{id}              JSON-encoded row
//	idx:{table}:{column}:{folded} id owning a unique folded value
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ store.Records = (*Store)(nil)

// Open opens the database at path. An empty path opens an in-memory database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
		opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	}
	opts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Badger record store opened", "path", path, "in_memory", path == "")

	return &Store{
		db:     db,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Ping reports whether the database is open and accepting reads.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	s.logger.Info("Closing record store")
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return store.FormatTime(t)
}

func recordPrefix(table string) []byte {
	return []byte("rec:" + table + ":")
}

func recordKey(table, id string) []byte {
	return []byte("rec:" + table + ":" + id)
}

func indexKey(table, column, value string) []byte {
	return []byte("idx:" + table + ":" + column + ":" + store.FoldKey(value))
}
