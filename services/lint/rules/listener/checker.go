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

import (
	"fmt"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
)

// DefectKind classifies a reconciliation failure.
type DefectKind int

const (
	// DefectMissingRemoval means no removal exists for the registration's
	// target and event.
	DefectMissingRemoval DefectKind = iota

	// DefectProhibitedHandler means the registration handler is an inline
	// function or arrow literal.
	DefectProhibitedHandler

	// DefectHandlerMismatch means registration and removal name different
	// handlers.
	DefectHandlerMismatch
)

// String returns a label-safe name for the kind.
func (k DefectKind) String() string {
	switch k {
	case DefectMissingRemoval:
		return "missing_removal"
	case DefectProhibitedHandler:
		return "prohibited_handler"
	case DefectHandlerMismatch:
		return "handler_mismatch"
	default:
		return fmt.Sprintf("DefectKind(%d)", int(k))
	}
}

// Defect is one reported violation.
type Defect struct {
	Kind     DefectKind
	Target   TargetKey
	Event    EventName
	Location ast.Location
	Message  string
}

// Reconcile checks every registration in reg against its removal.
//
// Description:
//
//	For each registration, in registry order:
//	  - no removal for the same target and event -> DefectMissingRemoval
//	  - else an inline literal handler           -> DefectProhibitedHandler
//	  - else a different removal handler         -> DefectHandlerMismatch
//	Only the registration handler is checked for literal shapes. Removals
//	without a registration are never reported.
//
// Inputs:
//
//	reg - The populated registry. Must not be nil.
//
// Outputs:
//
//	[]Defect - Defects in deterministic order. Empty when balanced.
func Reconcile(reg *Registry) []Defect {
	defects := make([]Defect, 0)
	for _, add := range reg.Entries(Registration) {
		target, event := add.Key.Target, add.Key.Event

		remove, ok := reg.Lookup(Removal, target, event)
		switch {
		case !ok:
			defects = append(defects, Defect{
				Kind:     DefectMissingRemoval,
				Target:   target,
				Event:    event,
				Location: add.Location,
				Message:  missingRemovalMessage(target, event),
			})

		case add.Handler.Prohibited():
			defects = append(defects, Defect{
				Kind:     DefectProhibitedHandler,
				Target:   target,
				Event:    event,
				Location: add.Location,
				Message:  prohibitedHandlerMessage(target, event, add.Handler),
			})

		case add.Handler != remove.Handler:
			defects = append(defects, Defect{
				Kind:     DefectHandlerMismatch,
				Target:   target,
				Event:    event,
				Location: add.Location,
				Message:  mismatchMessage(target, event, add.Handler, remove.Handler),
			})
		}
	}
	return defects
}

func missingRemovalMessage(target TargetKey, event EventName) string {
	return fmt.Sprintf("%s on %s does not have a corresponding %s", event, target, removeEventListener)
}

func prohibitedHandlerMessage(target TargetKey, event EventName, handler Handler) string {
	shape := handler.String()
	return fmt.Sprintf("event handler for %s on %s is %s %ss are prohibited as event handlers", event, target, shape, shape)
}

func mismatchMessage(target TargetKey, event EventName, add, remove Handler) string {
	return fmt.Sprintf("%s and %s on %s for %s do not match", add, remove, target, event)
}
