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
	"strings"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
)

// TargetKey is the canonical identity of the object a listener is attached to.
//
// The zero value is the unresolved key. All unresolved receivers share it.
type TargetKey struct {
	path     string
	resolved bool
}

// ResolvedTarget returns a resolved key for the given dotted path.
func ResolvedTarget(path string) TargetKey {
	return TargetKey{path: path, resolved: true}
}

// Resolved reports whether the receiver shape was recognized.
func (k TargetKey) Resolved() bool { return k.resolved }

// String renders the key as it appears in messages.
func (k TargetKey) String() string {
	if !k.resolved {
		return unresolvedText
	}
	return k.path
}

// TargetResolver derives TargetKeys from listener call callees.
//
// Description:
//
//	Only receivers rooted at the enclosing instance resolve by default:
//	`this.node.addEventListener` and `this.child.node.addEventListener`
//	key as "this.node" and "this.child.node". When the receiver is `this`
//	itself the accessed property completes the key, so
//	`this.addEventListener` keys as "this.addEventListener" and never pairs
//	with `this.removeEventListener`. Bare identifiers, call results,
//	computed access and everything else are unresolved.
//
//	Globals is the opt-in widening for bare identifiers: a receiver chain
//	rooted at an identifier listed there resolves to its own dotted path,
//	e.g. `window` or `document.body`.
//
// Thread Safety: Safe for concurrent use after construction (read-only).
type TargetResolver struct {
	globals map[string]struct{}
}

// NewTargetResolver creates a resolver that additionally resolves chains
// rooted at the given global identifiers.
func NewTargetResolver(globals ...string) *TargetResolver {
	r := &TargetResolver{globals: make(map[string]struct{}, len(globals))}
	for _, g := range globals {
		if g = strings.TrimSpace(g); g != "" {
			r.globals[g] = struct{}{}
		}
	}
	return r
}

// Resolve returns the canonical key for the receiver of a member-access
// callee.
//
// Inputs:
//
//	callee - The member-access callee, e.g. `this.node.addEventListener`.
//	         May be nil.
//
// Outputs:
//
//	TargetKey - Resolved key, or the unresolved zero value.
func (r *TargetResolver) Resolve(callee *ast.MemberExpr) TargetKey {
	if callee == nil {
		return TargetKey{}
	}
	switch n := callee.Object.(type) {
	case *ast.ThisExpr:
		return ResolvedTarget("this." + callee.Property)
	case *ast.MemberExpr:
		if path, ok := r.memberPath(n); ok {
			return ResolvedTarget(path)
		}
	case *ast.Identifier:
		if r.isGlobal(n.Name) {
			return ResolvedTarget(n.Name)
		}
	case *ast.CallExpr, *ast.FunctionLiteral, *ast.ArrowFunction, *ast.Literal, *ast.Unsupported, nil:
	}
	return TargetKey{}
}

func (r *TargetResolver) memberPath(m *ast.MemberExpr) (string, bool) {
	return chainPath(m, r.isGlobal)
}

func (r *TargetResolver) isGlobal(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.globals[name]
	return ok
}

// instancePath resolves a member chain whose root is `this`.
func instancePath(m *ast.MemberExpr) (string, bool) {
	return chainPath(m, nil)
}

// chainPath walks a member chain down to its root and joins the property
// names. The root must be `this`, or an identifier accepted by rootIdent.
func chainPath(m *ast.MemberExpr, rootIdent func(string) bool) (string, bool) {
	parts := []string{m.Property}
	var cur ast.Node = m.Object
	for depth := 0; depth <= ast.MaxExpressionDepth; depth++ {
		switch n := cur.(type) {
		case *ast.MemberExpr:
			parts = append(parts, n.Property)
			cur = n.Object
			continue
		case *ast.ThisExpr:
			parts = append(parts, "this")
		case *ast.Identifier:
			if rootIdent == nil || !rootIdent(n.Name) {
				return "", false
			}
			parts = append(parts, n.Name)
		default:
			return "", false
		}
		for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
			parts[i], parts[j] = parts[j], parts[i]
		}
		return strings.Join(parts, "."), true
	}
	return "", false
}
