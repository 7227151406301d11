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
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
)

// LintPaths lints files and directory trees.
//
// Description:
//
//	Directories are walked recursively, keeping files whose extension is
//	configured and skipping excluded names. Explicit file arguments are
//	linted whenever their language is supported. Files are linted in
//	parallel, bounded by the configured worker count.
//
// Inputs:
//
//	ctx   - Context for cancellation.
//	paths - Files or directories. Duplicates are linted once.
//
// Outputs:
//
//	*report.Result - Per-file results sorted by path.
//	error          - Non-nil if a path does not exist or ctx is canceled.
//	                 Per-file read and parse failures are recorded in the result.
func (e *Engine) LintPaths(ctx context.Context, paths []string) (*report.Result, error) {
	started := time.Now()

	files, err := e.CollectFiles(paths)
	if err != nil {
		return nil, err
	}

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]report.FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			fr, err := e.LintFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = fr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("linting paths: %w", err)
	}

	res := report.NewResult(started, results)
	e.logger.Info("lint run complete",
		slog.String("run_id", res.RunID),
		slog.Int("files", len(res.Files)),
		slog.Int("diagnostics", res.DiagnosticCount),
		slog.Int("errors", res.ErrorCount),
		slog.Int64("duration_ms", res.DurationMs),
	)
	return res, nil
}

// CollectFiles expands paths into the list of files LintPaths would lint.
func (e *Engine) CollectFiles(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	files := make([]string, 0)
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", root, err)
		}
		if !info.IsDir() {
			if _, ok := ast.LanguageForPath(root); ok {
				add(root)
			} else {
				e.logger.Debug("skipping unsupported file", slog.String("file", root))
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && e.Excluded(root, path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && e.hasLintedExtension(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	return files, nil
}

func (e *Engine) hasLintedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range e.cfg.Extensions {
		if strings.ToLower(want) == ext {
			_, ok := ast.LanguageForPath(path)
			return ok
		}
	}
	return false
}

// Excluded reports whether path, found under root, matches an exclude
// pattern. Patterns match either a single path element or the slash
// separated path relative to root.
func (e *Engine) Excluded(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	elems := strings.Split(rel, "/")

	for _, pattern := range e.cfg.Exclude {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		for _, elem := range elems {
			if ok, _ := filepath.Match(pattern, elem); ok {
				return true
			}
		}
	}
	return false
}
