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
	"strings"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/rules"
)

type directiveKind int

const (
	directiveDisable directiveKind = iota
	directiveEnable
	directiveDisableLine
	directiveDisableNextLine
)

var directiveKeywords = map[string]directiveKind{
	"eslint-disable":           directiveDisable,
	"eslint-enable":            directiveEnable,
	"eslint-disable-line":      directiveDisableLine,
	"eslint-disable-next-line": directiveDisableNextLine,
}

// directive is one parsed eslint-disable style comment.
type directive struct {
	kind directiveKind

	// rules holds normalized rule ids. Nil means every rule.
	rules []string

	line int
	col  int
}

func (d directive) covers(ruleID string) bool {
	if d.rules == nil {
		return true
	}
	for _, r := range d.rules {
		if r == ruleID {
			return true
		}
	}
	return false
}

// parseDirectives extracts suppression directives from comments.
//
// Description:
//
//	eslint-disable and eslint-enable are honored only in block comments.
//	The line forms are honored in both comment styles. A rule list may
//	follow the keyword, comma separated, and anything after " -- " is a
//	free-form description.
func parseDirectives(comments []ast.Comment) []directive {
	out := make([]directive, 0)
	for _, c := range comments {
		body := strings.TrimSpace(commentBody(c))
		if desc := strings.Index(body, " -- "); desc >= 0 {
			body = strings.TrimSpace(body[:desc])
		}

		keyword, rest, _ := strings.Cut(body, " ")
		kind, ok := directiveKeywords[keyword]
		if !ok {
			continue
		}
		if (kind == directiveDisable || kind == directiveEnable) && !c.Block {
			continue
		}

		d := directive{kind: kind, line: c.Location.StartLine, col: c.Location.StartCol}
		if kind == directiveDisableNextLine {
			d.line = c.Location.EndLine + 1
		}
		for _, id := range strings.Split(rest, ",") {
			if id = rules.NormalizeID(id); id != "" {
				d.rules = append(d.rules, id)
			}
		}
		out = append(out, d)
	}
	return out
}

func commentBody(c ast.Comment) string {
	text := c.Text
	if c.Block {
		text = strings.TrimPrefix(text, "/*")
		return strings.TrimSuffix(text, "*/")
	}
	return strings.TrimPrefix(text, "//")
}

// suppressor decides which diagnostics are silenced by directives.
type suppressor struct {
	directives []directive
}

func newSuppressor(comments []ast.Comment) *suppressor {
	return &suppressor{directives: parseDirectives(comments)}
}

// filter splits diagnostics into kept and suppressed counts.
func (s *suppressor) filter(diags []report.Diagnostic) ([]report.Diagnostic, int) {
	if len(s.directives) == 0 {
		return diags, 0
	}
	kept := make([]report.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if !s.suppressed(d) {
			kept = append(kept, d)
		}
	}
	return kept, len(diags) - len(kept)
}

func (s *suppressor) suppressed(d report.Diagnostic) bool {
	ruleID := rules.NormalizeID(d.RuleID)
	line, col := d.Location.StartLine, d.Location.StartCol

	allDisabled := false
	disabled := make(map[string]bool)
	exceptions := make(map[string]bool)

	for _, dir := range s.directives {
		switch dir.kind {
		case directiveDisableLine, directiveDisableNextLine:
			if dir.line == line && dir.covers(ruleID) {
				return true
			}
			continue
		}

		if dir.line > line || (dir.line == line && dir.col > col) {
			continue
		}
		switch {
		case dir.kind == directiveDisable && dir.rules == nil:
			allDisabled = true
			clear(exceptions)
		case dir.kind == directiveDisable:
			for _, r := range dir.rules {
				if allDisabled {
					delete(exceptions, r)
				} else {
					disabled[r] = true
				}
			}
		case dir.kind == directiveEnable && dir.rules == nil:
			allDisabled = false
			clear(disabled)
			clear(exceptions)
		case dir.kind == directiveEnable:
			for _, r := range dir.rules {
				if allDisabled {
					exceptions[r] = true
				}
				delete(disabled, r)
			}
		}
	}
	return (allDisabled && !exceptions[ruleID]) || disabled[ruleID]
}
