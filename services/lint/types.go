// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/rules"
)

// CheckRequest is the body of POST /v1/lint/check.
type CheckRequest struct {
	// FilePath selects the grammar by extension and is echoed in locations.
	FilePath string `json:"file_path" binding:"required,max=4096"`

	// Content is the source text to lint.
	Content string `json:"content"`
}

// CheckResponse is the result of a single-source lint.
type CheckResponse struct {
	RequestID string            `json:"request_id"`
	Result    report.FileResult `json:"result"`
}

// RulesResponse lists the rules the server runs.
type RulesResponse struct {
	Rules []RuleInfo `json:"rules"`
}

// RuleInfo describes one catalog rule.
type RuleInfo struct {
	rules.Meta
	Enabled bool `json:"enabled"`
}

// HealthResponse is returned by GET /v1/lint/health.
type HealthResponse struct {
	Status string `json:"status"`
	Rules  int    `json:"rules"`
	Cache  bool   `json:"cache"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}
