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
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
)

// AddedLines maps a slash-separated file path to the set of line numbers
// added in that file.
type AddedLines map[string]map[int]bool

// ParseAddedLines reads a unified diff and records the new-side line
// numbers of every added line. Deleted files are ignored.
func ParseAddedLines(unified []byte) (AddedLines, error) {
	fileDiffs, err := diff.ParseMultiFileDiff(unified)
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	added := make(AddedLines)
	for _, fd := range fileDiffs {
		name := stripDiffPrefix(fd.NewName)
		if name == "" || name == "/dev/null" {
			continue
		}
		lines := added[name]
		if lines == nil {
			lines = make(map[int]bool)
			added[name] = lines
		}
		for _, h := range fd.Hunks {
			line := int(h.NewStartLine)
			for _, raw := range bytes.Split(h.Body, []byte("\n")) {
				if len(raw) == 0 {
					continue
				}
				switch raw[0] {
				case '+':
					lines[line] = true
					line++
				case ' ':
					line++
				}
			}
		}
	}
	return added, nil
}

func stripDiffPrefix(name string) string {
	if strings.HasPrefix(name, "b/") || strings.HasPrefix(name, "a/") {
		return name[2:]
	}
	return name
}

// lookup finds the added lines for a diagnostic path. Paths match when one
// is a slash-separated suffix of the other, so absolute lint paths match
// repository-relative diff paths.
func (a AddedLines) lookup(path string) map[int]bool {
	p := filepath.ToSlash(filepath.Clean(path))
	if lines, ok := a[p]; ok {
		return lines
	}
	for name, lines := range a {
		if strings.HasSuffix(p, "/"+name) || strings.HasSuffix(name, "/"+p) {
			return lines
		}
	}
	return nil
}

// FilterByDiff keeps only diagnostics that start on a line added by the
// diff. Files the diff does not touch are dropped. File errors are kept
// for touched files.
//
// Outputs:
//
//	*report.Result - A filtered copy sharing the run id of res.
//	error          - Non-nil if the diff cannot be parsed.
func FilterByDiff(res *report.Result, unified []byte) (*report.Result, error) {
	added, err := ParseAddedLines(unified)
	if err != nil {
		return nil, err
	}

	out := *res
	out.Files = make([]report.FileResult, 0, len(res.Files))
	for _, fr := range res.Files {
		lines := added.lookup(fr.FilePath)
		if lines == nil {
			continue
		}
		kept := make([]report.Diagnostic, 0, len(fr.Diagnostics))
		for _, d := range fr.Diagnostics {
			if lines[d.Location.StartLine] {
				kept = append(kept, d)
			}
		}
		fr.Diagnostics = kept
		out.Files = append(out.Files, fr)
	}
	out.Recount()
	return &out, nil
}
