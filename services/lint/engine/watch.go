// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
)

// DefaultWatchDebounce is how long Watch waits for a burst of file events
// to settle before re-linting.
const DefaultWatchDebounce = 150 * time.Millisecond

// Watch lints paths, then re-lints changed files until ctx is canceled.
//
// Description:
//
//	The initial run covers every path. Afterwards each settled burst of
//	write and create events produces one result holding only the changed
//	files. Directories created under a watched tree are watched too.
//
// Inputs:
//
//	ctx      - Cancel to stop watching.
//	paths    - Files or directories, as for LintPaths.
//	debounce - Settle time. Zero or negative uses DefaultWatchDebounce.
//	onResult - Called for the initial run and for every re-lint. Never
//	           called concurrently.
//
// Outputs:
//
//	error - nil when ctx is canceled, otherwise the setup or watcher error.
func (e *Engine) Watch(ctx context.Context, paths []string, debounce time.Duration, onResult func(*report.Result)) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	roots := make(map[string]string)
	files := make(map[string]bool)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		if !info.IsDir() {
			if err := watcher.Add(filepath.Dir(p)); err != nil {
				return fmt.Errorf("watching %s: %w", p, err)
			}
			files[filepath.Clean(p)] = true
			continue
		}
		if err := e.watchTree(watcher, p, p); err != nil {
			return err
		}
		roots[filepath.Clean(p)] = p
	}

	initial, err := e.LintPaths(ctx, paths)
	if err != nil {
		return err
	}
	onResult(initial)

	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("watcher error", slog.String("error", err.Error()))

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			root := rootFor(roots, ev.Name)
			if root == "" && !files[filepath.Clean(ev.Name)] {
				continue
			}
			if root != "" && e.Excluded(root, ev.Name) {
				continue
			}
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				if ev.Has(fsnotify.Create) && root != "" {
					if err := e.watchTree(watcher, root, ev.Name); err != nil {
						e.logger.Warn("watching new directory failed", slog.String("dir", ev.Name), slog.String("error", err.Error()))
					}
				}
				continue
			}
			if !e.hasLintedExtension(ev.Name) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = true
			timer.Reset(debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			res, err := e.relint(ctx, changed)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			onResult(res)
		}
	}
}

// relint lints changed files that still exist.
func (e *Engine) relint(ctx context.Context, changed []string) (*report.Result, error) {
	existing := make([]string, 0, len(changed))
	for _, p := range changed {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	e.logger.Debug("re-linting changed files", slog.Int("files", len(existing)))
	return e.LintPaths(ctx, existing)
}

func (e *Engine) watchTree(w *fsnotify.Watcher, root, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && e.Excluded(root, path) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// rootFor returns the watched root containing path, or "".
func rootFor(roots map[string]string, path string) string {
	clean := filepath.Clean(path)
	for cleanRoot, root := range roots {
		rel, err := filepath.Rel(cleanRoot, clean)
		if err == nil && rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel) {
			return root
		}
	}
	return ""
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
