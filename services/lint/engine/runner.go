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
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/rules"
)

// scopeRunner drives rule instances over one file.
//
// Description:
//
//	Every scope that opens a registry gets fresh rule instances, so no
//	listener state crosses a scope boundary. In program mode only the
//	program scope opens a registry. In class mode every class body opens
//	its own registry as well and calls are routed to the innermost one;
//	calls outside any class are paired at program level.
//
// Thread Safety: Not safe for concurrent use. One runner per file.
type scopeRunner struct {
	defs       []rules.Definition
	settings   rules.Settings
	collectors []*report.Collector
	perClass   bool
	frames     [][]rules.Rule
}

func newScopeRunner(defs []rules.Definition, settings rules.Settings, perClass bool) *scopeRunner {
	collectors := make([]*report.Collector, len(defs))
	for i, def := range defs {
		collectors[i] = report.NewCollector(def.Meta.ID)
	}
	return &scopeRunner{defs: defs, settings: settings, collectors: collectors, perClass: perClass}
}

func (r *scopeRunner) opensRegistry(scope ast.Scope) bool {
	return scope.Kind == ast.ScopeProgram || (r.perClass && scope.Kind == ast.ScopeClass)
}

func (r *scopeRunner) EnterScope(scope ast.Scope) {
	if !r.opensRegistry(scope) {
		return
	}
	frame := make([]rules.Rule, len(r.defs))
	for i, def := range r.defs {
		frame[i] = def.Create(r.collectors[i], r.settings)
	}
	r.frames = append(r.frames, frame)
}

func (r *scopeRunner) CallExpression(call *ast.CallExpr) {
	if len(r.frames) == 0 {
		return
	}
	for _, rule := range r.frames[len(r.frames)-1] {
		rule.OnCallExpression(call)
	}
}

func (r *scopeRunner) ExitScope(scope ast.Scope) {
	if !r.opensRegistry(scope) || len(r.frames) == 0 {
		return
	}
	frame := r.frames[len(r.frames)-1]
	r.frames = r.frames[:len(r.frames)-1]
	for _, rule := range frame {
		rule.OnScopeExit()
	}
}

// diagnostics returns everything reported, grouped by rule in catalog order.
func (r *scopeRunner) diagnostics() []report.Diagnostic {
	out := make([]report.Diagnostic, 0)
	for _, c := range r.collectors {
		out = append(out, c.Diagnostics()...)
	}
	return out
}
