// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package listener

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
)

func this() ast.Node { return &ast.ThisExpr{} }

func ident(name string) ast.Node { return &ast.Identifier{Name: name} }

// chain builds a member chain from a root and property names:
// chain(this(), "a", "b") is this.a.b.
func chain(root ast.Node, props ...string) ast.Node {
	cur := root
	for _, p := range props {
		cur = &ast.MemberExpr{Object: cur, Property: p}
	}
	return cur
}

func str(v string) ast.Node { return &ast.Literal{Kind: ast.LiteralString, Value: v} }

func arrow() ast.Node { return &ast.ArrowFunction{} }

func function() ast.Node { return &ast.FunctionLiteral{} }

// listenerCallee builds the member-access callee receiver.method.
func listenerCallee(receiver ast.Node, method string) *ast.MemberExpr {
	return &ast.MemberExpr{Object: receiver, Property: method}
}

// listenerCall builds receiver.method(args...) located on the given line.
func listenerCall(line int, receiver ast.Node, method string, args ...ast.Node) *ast.CallExpr {
	return &ast.CallExpr{
		Callee:   listenerCallee(receiver, method),
		Args:     args,
		Location: ast.Location{FilePath: "app.js", StartLine: line, EndLine: line},
	}
}

func add(line int, receiver ast.Node, args ...ast.Node) *ast.CallExpr {
	return listenerCall(line, receiver, addEventListener, args...)
}

func remove(line int, receiver ast.Node, args ...ast.Node) *ast.CallExpr {
	return listenerCall(line, receiver, removeEventListener, args...)
}

// runCalls feeds calls to a fresh rule and returns the reported messages.
func runCalls(resolver *TargetResolver, calls ...*ast.CallExpr) []report.Diagnostic {
	collector := report.NewCollector(RuleID)
	rule := New(collector, resolver)
	for _, c := range calls {
		rule.OnCallExpression(c)
	}
	rule.OnScopeExit()
	return collector.Diagnostics()
}

func messages(diags []report.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Message)
	}
	return out
}

// programVisitor drives a rule over a whole file, one registry per program.
type programVisitor struct {
	rule *Rule
}

func (v *programVisitor) EnterScope(ast.Scope) {}

func (v *programVisitor) CallExpression(call *ast.CallExpr) { v.rule.OnCallExpression(call) }

func (v *programVisitor) ExitScope(scope ast.Scope) {
	if scope.Kind == ast.ScopeProgram {
		v.rule.OnScopeExit()
	}
}

// lintSource parses JSX source and runs the rule over the whole program.
func lintSource(t *testing.T, source string, globals ...string) []report.Diagnostic {
	t.Helper()
	collector := report.NewCollector(RuleID)
	v := &programVisitor{rule: New(collector, NewTargetResolver(globals...))}
	_, err := ast.NewParser().Walk(context.Background(), []byte(strings.TrimSpace(source)), "App.jsx", v)
	require.NoError(t, err)
	return collector.Diagnostics()
}
