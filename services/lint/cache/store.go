// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache stores finished per-file lint results in BadgerDB.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
)

// ErrCacheMiss is returned by Get when no entry exists.
var ErrCacheMiss = errors.New("cache miss")

const (
	keyPrefix = "lint:result:"

	// DefaultTTL bounds how long an entry is kept.
	DefaultTTL = 7 * 24 * time.Hour
)

// Entry is the cached portion of a file result. It is independent of the
// file path so identical content at different paths shares one entry.
type Entry struct {
	Diagnostics     []report.Diagnostic `json:"diagnostics"`
	Suppressed      int                 `json:"suppressed,omitempty"`
	HasSyntaxErrors bool                `json:"has_syntax_errors,omitempty"`
	StoredAtMilli   int64               `json:"stored_at_milli"`
}

// Store is a result cache backed by BadgerDB.
//
// Description:
//
//	Entries are keyed by config fingerprint and content hash. Only finished
//	diagnostics are stored; no listener state crosses file boundaries.
//
// Key Schema:
//
//	lint:result:{fingerprint}:{contentHash} -> JSON(Entry)
//
// Thread Safety:
//
//	Safe for concurrent use. BadgerDB handles its own concurrency control.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	ttl    time.Duration
	owned  bool
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides DefaultTTL. Zero or negative disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New wraps an already opened database. The caller keeps ownership of db.
func New(db *badger.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("badger db must not be nil")
	}
	s := &Store{db: db, logger: slog.Default(), ttl: DefaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open opens (or creates) a cache directory. An empty dir opens an
// in-memory cache. Close releases the database.
func Open(dir string, opts ...Option) (*Store, error) {
	bopts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		bopts = bopts.WithInMemory(true)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("opening cache at %q: %w", dir, err)
	}
	s, err := New(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	s.logger.Debug("result cache opened", slog.String("dir", dir), slog.Bool("in_memory", dir == ""))
	return s, nil
}

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func resultKey(fingerprint, contentHash string) []byte {
	return []byte(keyPrefix + fingerprint + ":" + contentHash)
}

// Get returns the cached result for content linted under fingerprint.
//
// Inputs:
//
//	ctx         - Context for cancellation.
//	fingerprint - Config fingerprint. Must not be empty.
//	contentHash - SHA256 of the file content. Must not be empty.
//	filePath    - Path stamped onto every returned diagnostic location.
//
// Outputs:
//
//	*Entry - The cached entry with locations rewritten to filePath.
//	error  - ErrCacheMiss when absent, or a storage/decoding error.
func (s *Store) Get(ctx context.Context, fingerprint, contentHash, filePath string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fingerprint == "" || contentHash == "" {
		return nil, fmt.Errorf("fingerprint and content hash must not be empty")
	}

	var entry Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(resultKey(fingerprint, contentHash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	if entry.Diagnostics == nil {
		entry.Diagnostics = make([]report.Diagnostic, 0)
	}
	for i := range entry.Diagnostics {
		entry.Diagnostics[i].Location.FilePath = filePath
	}
	return &entry, nil
}

// Put stores a file result.
func (s *Store) Put(ctx context.Context, fingerprint, contentHash string, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if fingerprint == "" || contentHash == "" {
		return fmt.Errorf("fingerprint and content hash must not be empty")
	}

	entry.StoredAtMilli = time.Now().UnixMilli()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(resultKey(fingerprint, contentHash), data)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Prune deletes every entry not written under keep.
//
// Outputs:
//
//	int   - Number of entries removed.
//	error - Non-nil if the iteration or deletion fails.
func (s *Store) Prune(ctx context.Context, keep string) (int, error) {
	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		keepPrefix := keyPrefix + keep + ":"
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := it.Item().KeyCopy(nil)
			if !strings.HasPrefix(string(key), keepPrefix) {
				stale = append(stale, key)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scanning cache: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("deleting stale entry: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flushing cache prune: %w", err)
	}

	s.logger.Info("pruned stale cache entries", slog.Int("count", len(stale)))
	return len(stale), nil
}
