// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package listener implements the remove-event-listener rule.
//
// The rule requires every addEventListener call on a target to be paired
// with a removeEventListener call for the same target, event and handler,
// and forbids inline function literals as handlers because they can never
// be removed by reference.
package listener

import (
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/rules"
)

// RuleID is the rule identifier.
const RuleID = "remove-event-listener"

// Definition returns the catalog entry for the rule.
func Definition() rules.Definition {
	return rules.Definition{
		Meta: rules.Meta{
			ID:          RuleID,
			Description: "remove event listener if addEventListener exists",
			Category:    "Best Practices",
			Recommended: true,
			URL:         "https://github.com/tipsi/eslint-plugin-tipsi",
			HasOptions:  false,
		},
		Create: func(r report.Reporter, settings rules.Settings) rules.Rule {
			return New(r, NewTargetResolver(settings.GlobalReceivers...))
		},
	}
}

// Rule checks listener registration and removal balance for one scope.
//
// Description:
//
//	OnCallExpression folds each listener call into a fresh Registry.
//	OnScopeExit reconciles the registry, reports every defect and drops the
//	registry. Calling OnScopeExit again without new calls reports nothing.
//
// Thread Safety: Not safe for concurrent use. Create one Rule per scan.
type Rule struct {
	reporter report.Reporter
	resolver *TargetResolver
	registry *Registry
}

// New creates a rule instance.
//
// Inputs:
//
//	r        - Sink for defects. Must not be nil.
//	resolver - Target resolver. Nil uses the default instance-only resolver.
func New(r report.Reporter, resolver *TargetResolver) *Rule {
	if resolver == nil {
		resolver = NewTargetResolver()
	}
	return &Rule{reporter: r, resolver: resolver}
}

// OnCallExpression observes one call expression.
func (r *Rule) OnCallExpression(call *ast.CallExpr) {
	obs, ok := ClassifyCall(call, r.resolver)
	if !ok {
		return
	}
	if r.registry == nil {
		r.registry = NewRegistry()
	}
	r.registry.Record(obs)
	observationsTotal.WithLabelValues(obs.Kind.String()).Inc()
}

// OnScopeExit reconciles the scope and reports defects.
func (r *Rule) OnScopeExit() {
	reg := r.registry
	r.registry = nil
	if reg == nil {
		return
	}
	for _, d := range Reconcile(reg) {
		defectsTotal.WithLabelValues(d.Kind.String()).Inc()
		r.reporter.Report(d.Location, d.Message)
	}
}
