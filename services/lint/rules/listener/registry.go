// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package listener

import "github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"

// Key identifies a registry slot.
type Key struct {
	Kind   CallKind
	Target TargetKey
	Event  EventName
}

// Entry is the most recent observation recorded for a Key.
type Entry struct {
	Key      Key
	Handler  Handler
	Location ast.Location
}

type targetSlot struct {
	kind   CallKind
	target TargetKey
}

// Registry accumulates listener observations for one scope.
//
// Description:
//
//	Each (kind, target, event) key holds only the last observation recorded
//	for it; earlier ones are overwritten. Iteration order is fixed by first
//	insertion: targets in the order they were first seen for a kind, then
//	events in the order they were first seen for that target. Overwriting an
//	entry keeps its original position.
//
// Thread Safety: Not safe for concurrent use. A registry belongs to one scan.
type Registry struct {
	entries map[Key]Entry
	targets map[CallKind][]TargetKey
	events  map[targetSlot][]EventName
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[Key]Entry),
		targets: make(map[CallKind][]TargetKey),
		events:  make(map[targetSlot][]EventName),
	}
}

// Record folds an observation into the registry.
func (r *Registry) Record(obs Observation) {
	key := Key{Kind: obs.Kind, Target: obs.Target, Event: obs.Event}
	if _, exists := r.entries[key]; !exists {
		slot := targetSlot{kind: obs.Kind, target: obs.Target}
		if _, seen := r.events[slot]; !seen {
			r.targets[obs.Kind] = append(r.targets[obs.Kind], obs.Target)
		}
		r.events[slot] = append(r.events[slot], obs.Event)
	}
	r.entries[key] = Entry{Key: key, Handler: obs.Handler, Location: obs.Location}
}

// Lookup returns the entry for the given key.
func (r *Registry) Lookup(kind CallKind, target TargetKey, event EventName) (Entry, bool) {
	e, ok := r.entries[Key{Kind: kind, Target: target, Event: event}]
	return e, ok
}

// Entries returns every entry of the given kind in iteration order.
func (r *Registry) Entries(kind CallKind) []Entry {
	out := make([]Entry, 0)
	for _, target := range r.targets[kind] {
		for _, event := range r.events[targetSlot{kind: kind, target: target}] {
			out = append(out, r.entries[Key{Kind: kind, Target: target, Event: event}])
		}
	}
	return out
}

// Len returns the number of distinct keys recorded.
func (r *Registry) Len() int {
	return len(r.entries)
}
