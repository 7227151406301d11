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

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
)

// Reporter is the sink a rule reports defects to.
type Reporter interface {
	Report(loc ast.Location, message string)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(loc ast.Location, message string)

// Report calls f(loc, message).
func (f ReporterFunc) Report(loc ast.Location, message string) {
	f(loc, message)
}

// Diagnostic is one reported problem attributed to a rule.
type Diagnostic struct {
	RuleID   string       `json:"rule_id"`
	Message  string       `json:"message"`
	Location ast.Location `json:"location"`
}

// Collector gathers diagnostics reported by one rule instance.
//
// Thread Safety: Not safe for concurrent use. Each file scan owns its collectors.
type Collector struct {
	ruleID      string
	diagnostics []Diagnostic
}

// NewCollector creates a collector that attributes reports to ruleID.
func NewCollector(ruleID string) *Collector {
	return &Collector{ruleID: ruleID, diagnostics: make([]Diagnostic, 0)}
}

// Report implements Reporter.
func (c *Collector) Report(loc ast.Location, message string) {
	c.diagnostics = append(c.diagnostics, Diagnostic{
		RuleID:   c.ruleID,
		Message:  message,
		Location: loc,
	})
}

// Diagnostics returns everything reported so far, in report order.
func (c *Collector) Diagnostics() []Diagnostic {
	return c.diagnostics
}

// SortDiagnostics orders diagnostics by position. Diagnostics on the same
// position keep their report order.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Location, diags[j].Location
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.StartCol < b.StartCol
	})
}
