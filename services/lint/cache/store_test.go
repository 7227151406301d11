// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cache

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(openTestDB(t))
	require.NoError(t, err)
	return s
}

func sampleEntry() Entry {
	return Entry{
		Diagnostics: []report.Diagnostic{{
			RuleID:   "remove-event-listener",
			Message:  "click on this.node does not have a corresponding removeEventListener",
			Location: ast.Location{FilePath: "old/path.js", StartLine: 4, StartCol: 2},
		}},
		Suppressed: 1,
	}
}

func TestNew_NilDB(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, "fp1", "hash1", sampleEntry()))

	got, err := s.Get(ctx, "fp1", "hash1", "new/path.js")
	require.NoError(t, err)
	require.Len(t, got.Diagnostics, 1)
	assert.Equal(t, "new/path.js", got.Diagnostics[0].Location.FilePath)
	assert.Equal(t, 4, got.Diagnostics[0].Location.StartLine)
	assert.Equal(t, 1, got.Suppressed)
	assert.NotZero(t, got.StoredAtMilli)
}

func TestStore_Miss(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Put(ctx, "fp1", "hash1", sampleEntry()))

	_, err := s.Get(ctx, "fp2", "hash1", "a.js")
	assert.ErrorIs(t, err, ErrCacheMiss, "fingerprint is part of the key")

	_, err = s.Get(ctx, "fp1", "hash2", "a.js")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestStore_EmptyDiagnosticsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Put(ctx, "fp", "clean", Entry{}))

	got, err := s.Get(ctx, "fp", "clean", "a.js")
	require.NoError(t, err)
	assert.NotNil(t, got.Diagnostics)
	assert.Empty(t, got.Diagnostics)
}

func TestStore_InvalidArguments(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	assert.Error(t, s.Put(ctx, "", "hash", Entry{}))
	_, err := s.Get(ctx, "fp", "", "a.js")
	assert.Error(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.Put(canceled, "fp", "hash", Entry{}), context.Canceled)
}

func TestStore_Prune(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Put(ctx, "old", "h1", sampleEntry()))
	require.NoError(t, s.Put(ctx, "old", "h2", sampleEntry()))
	require.NoError(t, s.Put(ctx, "current", "h1", sampleEntry()))

	removed, err := s.Prune(ctx, "current")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = s.Get(ctx, "old", "h1", "a.js")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = s.Get(ctx, "current", "h1", "a.js")
	assert.NoError(t, err)

	removed, err = s.Prune(ctx, "current")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestOpen_InMemoryAndDirectory(t *testing.T) {
	ctx := context.Background()

	mem, err := Open("")
	require.NoError(t, err)
	require.NoError(t, mem.Put(ctx, "fp", "h", sampleEntry()))
	require.NoError(t, mem.Close())

	dir := t.TempDir()
	disk, err := Open(dir, WithTTL(0))
	require.NoError(t, err)
	require.NoError(t, disk.Put(ctx, "fp", "h", sampleEntry()))
	require.NoError(t, disk.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()
	_, err = reopened.Get(ctx, "fp", "h", "a.js")
	assert.NoError(t, err, "entries persist across reopen")
}
