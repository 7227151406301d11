// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
)

func lineComment(line int, text string) ast.Comment {
	return ast.Comment{Text: "// " + text, Location: ast.Location{StartLine: line, EndLine: line}}
}

func blockComment(line int, text string) ast.Comment {
	return ast.Comment{Text: "/* " + text + " */", Block: true, Location: ast.Location{StartLine: line, EndLine: line}}
}

func diagAt(line int, ruleID string) report.Diagnostic {
	return report.Diagnostic{RuleID: ruleID, Location: ast.Location{StartLine: line, StartCol: 2}}
}

func TestParseDirectives(t *testing.T) {
	dirs := parseDirectives([]ast.Comment{
		lineComment(1, "eslint-disable-line"),
		lineComment(2, "eslint-disable-next-line tipsi/remove-event-listener, no-console -- why"),
		blockComment(3, "eslint-disable remove-event-listener"),
		lineComment(4, "eslint-disable"),
		lineComment(5, "eslint-disabled"),
		lineComment(6, "just a comment"),
		blockComment(7, "eslint-enable"),
	})

	require.Len(t, dirs, 4)
	assert.Equal(t, directiveDisableLine, dirs[0].kind)
	assert.Nil(t, dirs[0].rules)

	assert.Equal(t, directiveDisableNextLine, dirs[1].kind)
	assert.Equal(t, 3, dirs[1].line)
	assert.Equal(t, []string{"remove-event-listener", "no-console"}, dirs[1].rules)

	assert.Equal(t, directiveDisable, dirs[2].kind)
	assert.Equal(t, directiveEnable, dirs[3].kind)
}

func TestSuppressor(t *testing.T) {
	const rule = "remove-event-listener"
	tests := []struct {
		name       string
		comments   []ast.Comment
		line       int
		suppressed bool
	}{
		{"no directives", nil, 5, false},
		{"disable-line all", []ast.Comment{lineComment(5, "eslint-disable-line")}, 5, true},
		{"disable-line other line", []ast.Comment{lineComment(4, "eslint-disable-line")}, 5, false},
		{"disable-line other rule", []ast.Comment{lineComment(5, "eslint-disable-line no-console")}, 5, false},
		{"disable-next-line prefixed", []ast.Comment{lineComment(4, "eslint-disable-next-line tipsi/remove-event-listener")}, 5, true},
		{"block disable before", []ast.Comment{blockComment(1, "eslint-disable")}, 5, true},
		{"block disable after", []ast.Comment{blockComment(6, "eslint-disable")}, 5, false},
		{"line comment disable ignored", []ast.Comment{lineComment(1, "eslint-disable")}, 5, false},
		{"disable then enable", []ast.Comment{blockComment(1, "eslint-disable"), blockComment(3, "eslint-enable")}, 5, false},
		{"disable rule", []ast.Comment{blockComment(1, "eslint-disable remove-event-listener")}, 5, true},
		{"disable all then enable rule", []ast.Comment{
			blockComment(1, "eslint-disable"),
			blockComment(2, "eslint-enable remove-event-listener"),
		}, 5, false},
		{"disable all then enable other rule", []ast.Comment{
			blockComment(1, "eslint-disable"),
			blockComment(2, "eslint-enable no-console"),
		}, 5, true},
		{"disable rule then enable all", []ast.Comment{
			blockComment(1, "eslint-disable remove-event-listener"),
			blockComment(2, "eslint-enable"),
		}, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, suppressed := newSuppressor(tt.comments).filter([]report.Diagnostic{diagAt(tt.line, rule)})
			if tt.suppressed {
				assert.Empty(t, kept)
				assert.Equal(t, 1, suppressed)
			} else {
				assert.Len(t, kept, 1)
				assert.Zero(t, suppressed)
			}
		})
	}
}

func TestSuppressor_SameLineColumnOrder(t *testing.T) {
	disable := blockComment(5, "eslint-disable")
	disable.Location.StartCol = 10

	kept, _ := newSuppressor([]ast.Comment{disable}).filter([]report.Diagnostic{diagAt(5, "remove-event-listener")})
	assert.Len(t, kept, 1, "directive after the diagnostic column does not apply")
}
