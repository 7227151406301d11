// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// FileResult holds the outcome of linting one file.
type FileResult struct {
	// FilePath is the path as given to the linter.
	FilePath string `json:"file_path"`

	// Hash is the SHA256 of the file content. Empty when the file was unreadable.
	Hash string `json:"hash,omitempty"`

	Diagnostics []Diagnostic `json:"diagnostics"`

	// Suppressed counts diagnostics dropped by eslint-disable directives.
	Suppressed int `json:"suppressed,omitempty"`

	// Error is set when the file could not be read or parsed.
	Error string `json:"error,omitempty"`

	// Cached is true when the diagnostics came from the result cache.
	Cached bool `json:"cached,omitempty"`

	// HasSyntaxErrors is true when the parser recovered from syntax errors.
	HasSyntaxErrors bool `json:"has_syntax_errors,omitempty"`
}

// Result is the outcome of one lint run.
//
// Thread Safety: Immutable after NewResult returns.
type Result struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMs int64        `json:"duration_ms"`
	Files      []FileResult `json:"files"`

	DiagnosticCount int `json:"diagnostic_count"`
	ErrorCount      int `json:"error_count"`
}

// NewResult assembles a run result.
//
// Description:
//
//	Sorts files by path, sorts diagnostics within each file by position,
//	and computes the counts. A fresh run id is assigned.
//
// Inputs:
//
//	started - When the run began. Used for DurationMs.
//	files   - Per-file results. The slice is reordered in place.
//
// Outputs:
//
//	*Result - Never nil.
func NewResult(started time.Time, files []FileResult) *Result {
	sort.SliceStable(files, func(i, j int) bool { return files[i].FilePath < files[j].FilePath })

	res := &Result{
		RunID:      uuid.NewString(),
		StartedAt:  started,
		DurationMs: time.Since(started).Milliseconds(),
		Files:      files,
	}
	res.Recount()
	return res
}

// Recount normalizes nil diagnostic slices, sorts diagnostics within each
// file and recomputes the counts. Call it after replacing Files.
func (r *Result) Recount() {
	r.DiagnosticCount, r.ErrorCount = 0, 0
	for i := range r.Files {
		if r.Files[i].Diagnostics == nil {
			r.Files[i].Diagnostics = make([]Diagnostic, 0)
		}
		SortDiagnostics(r.Files[i].Diagnostics)
		r.DiagnosticCount += len(r.Files[i].Diagnostics)
		if r.Files[i].Error != "" {
			r.ErrorCount++
		}
	}
}

// HasProblems reports whether any file produced a diagnostic.
func (r *Result) HasProblems() bool {
	return r.DiagnosticCount > 0
}
