// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rules defines the lint rule contract and the rule catalog.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
)

// PluginPrefix is the namespace rule ids may be written with in config and
// suppression comments, e.g. "tipsi/remove-event-listener".
const PluginPrefix = "tipsi/"

// ErrUnknownRule is returned when a rule id is not in the catalog.
var ErrUnknownRule = errors.New("unknown rule")

// Meta describes a rule.
type Meta struct {
	// ID is the kebab-case rule identifier without the plugin prefix.
	ID string `json:"id"`

	Description string `json:"description"`
	Category    string `json:"category"`
	Recommended bool   `json:"recommended"`
	URL         string `json:"url"`

	// HasOptions is false for rules that accept no configuration.
	HasOptions bool `json:"has_options"`
}

// Rule is one rule instance bound to a single scope scan.
//
// Description:
//
//	The host calls OnCallExpression once per call expression in the scope,
//	in traversal order, then OnScopeExit exactly once. A rule reports only
//	from OnScopeExit and holds no state afterwards.
type Rule interface {
	OnCallExpression(call *ast.CallExpr)
	OnScopeExit()
}

// Settings are host-wide settings shared by every rule. They are not rule
// options.
type Settings struct {
	// GlobalReceivers lists bare identifiers (e.g. "window") that rules may
	// treat as stable, nameable objects.
	GlobalReceivers []string
}

// Definition pairs rule metadata with a constructor.
type Definition struct {
	Meta Meta

	// Create returns a fresh rule instance reporting to r.
	Create func(r report.Reporter, settings Settings) Rule
}

// Catalog is an ordered, immutable set of rule definitions.
//
// Thread Safety: Safe for concurrent use after construction.
type Catalog struct {
	defs []Definition
	byID map[string]Definition
}

// NewCatalog builds a catalog. Later definitions with a duplicate id are ignored.
func NewCatalog(defs ...Definition) *Catalog {
	c := &Catalog{byID: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		if _, dup := c.byID[def.Meta.ID]; dup {
			continue
		}
		c.byID[def.Meta.ID] = def
		c.defs = append(c.defs, def)
	}
	return c
}

// All returns every definition in registration order.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Lookup finds a definition by id, with or without the plugin prefix.
func (c *Catalog) Lookup(id string) (Definition, error) {
	def, ok := c.byID[NormalizeID(id)]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownRule, id)
	}
	return def, nil
}

// NormalizeID trims whitespace and the plugin prefix from a rule id.
func NormalizeID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), PluginPrefix)
}
