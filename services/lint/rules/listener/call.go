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

const (
	addEventListener    = "addEventListener"
	removeEventListener = "removeEventListener"
)

// CallKind is the role of a listener call.
type CallKind int

const (
	Registration CallKind = iota
	Removal
)

// String returns the DOM method name for the kind.
func (k CallKind) String() string {
	switch k {
	case Registration:
		return addEventListener
	case Removal:
		return removeEventListener
	default:
		return fmt.Sprintf("CallKind(%d)", int(k))
	}
}

// EventName is the literal event argument of a listener call.
//
// The zero value is the unresolved event name, used when the first argument
// is missing or is not a literal.
type EventName struct {
	value    string
	resolved bool
}

// Event returns a resolved event name.
func Event(name string) EventName {
	return EventName{value: name, resolved: true}
}

// Resolved reports whether the event name came from a literal.
func (e EventName) Resolved() bool { return e.resolved }

// String renders the event name as it appears in messages.
func (e EventName) String() string {
	if !e.resolved {
		return unresolvedText
	}
	return e.value
}

// Observation is one listener call decomposed for the registry.
type Observation struct {
	Kind     CallKind
	Target   TargetKey
	Event    EventName
	Handler  Handler
	Location ast.Location
}

// ClassifyCall decides whether call registers or removes a listener.
//
// Description:
//
//	A call is relevant only when its callee is a member access whose
//	property is exactly addEventListener or removeEventListener. The
//	receiver is resolved with resolver, the event name comes from the first
//	argument and the handler from the second. Missing or unsupported
//	arguments degrade to unresolved values.
//
// Inputs:
//
//	call     - The call expression. May be nil.
//	resolver - Target resolver. Must not be nil.
//
// Outputs:
//
//	Observation - The decomposed call. Only meaningful when ok is true.
//	bool        - False for irrelevant calls.
func ClassifyCall(call *ast.CallExpr, resolver *TargetResolver) (Observation, bool) {
	if call == nil {
		return Observation{}, false
	}
	callee, ok := call.Callee.(*ast.MemberExpr)
	if !ok {
		return Observation{}, false
	}

	var kind CallKind
	switch callee.Property {
	case addEventListener:
		kind = Registration
	case removeEventListener:
		kind = Removal
	default:
		return Observation{}, false
	}

	return Observation{
		Kind:     kind,
		Target:   resolver.Resolve(callee),
		Event:    eventName(call.Arg(0)),
		Handler:  ClassifyHandler(call.Arg(1)),
		Location: call.Location,
	}, true
}

// eventName reads the value of a literal event argument.
func eventName(arg ast.Node) EventName {
	if lit, ok := arg.(*ast.Literal); ok {
		return Event(lit.Value)
	}
	return EventName{}
}
