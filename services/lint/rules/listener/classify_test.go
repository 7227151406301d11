// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package listener

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
)

func TestClassifyHandler(t *testing.T) {
	tests := []struct {
		name     string
		arg      ast.Node
		want     Handler
		rendered string
	}{
		{"function literal", function(), Handler{Shape: HandlerAnonymousFunction}, "plain function"},
		{"arrow literal", arrow(), Handler{Shape: HandlerAnonymousArrow}, "arrow function"},
		{"identifier", ident("onClick"), Handler{Shape: HandlerNamed, Name: "onClick"}, "onClick"},
		{"this member", chain(this(), "handleClick"), Handler{Shape: HandlerQualified, Name: "this.handleClick"}, "this.handleClick"},
		{"deep this member", chain(this(), "handlers", "click"), Handler{Shape: HandlerQualified, Name: "this.handlers.click"}, "this.handlers.click"},
		{"member on identifier", chain(ident("handlers"), "click"), Handler{}, "undefined"},
		{"bound method", &ast.CallExpr{Callee: chain(this(), "onClick", "bind"), Args: []ast.Node{this()}}, Handler{}, "undefined"},
		{"bare this", this(), Handler{}, "undefined"},
		{"literal", str("nope"), Handler{}, "undefined"},
		{"unsupported", &ast.Unsupported{Kind: "as_expression"}, Handler{}, "undefined"},
		{"missing", nil, Handler{}, "undefined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyHandler(tt.arg)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rendered, got.String())
		})
	}
}

func TestHandler_Prohibited(t *testing.T) {
	assert.True(t, Handler{Shape: HandlerAnonymousFunction}.Prohibited())
	assert.True(t, Handler{Shape: HandlerAnonymousArrow}.Prohibited())
	assert.False(t, Handler{Shape: HandlerNamed, Name: "h"}.Prohibited())
	assert.False(t, Handler{Shape: HandlerQualified, Name: "this.h"}.Prohibited())
	assert.False(t, Handler{}.Prohibited())
}

func TestTargetResolver_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		globals  []string
		receiver ast.Node
		want     string
		resolved bool
	}{
		{"this field", nil, chain(this(), "rootNodeRef"), "this.rootNodeRef", true},
		{"nested this field", nil, chain(this(), "subcomponent", "node"), "this.subcomponent.node", true},
		{"bare this keys by the accessed property", nil, this(), "this.addEventListener", true},
		{"global identifier", nil, ident("window"), "undefined", false},
		{"global member", nil, chain(ident("document"), "body"), "undefined", false},
		{"call result", nil, &ast.CallExpr{Callee: ident("getNode")}, "undefined", false},
		{"member on call result", nil, chain(&ast.CallExpr{Callee: ident("getNode")}, "node"), "undefined", false},
		{"unsupported", nil, &ast.Unsupported{Kind: "subscript_expression"}, "undefined", false},
		{"missing", nil, nil, "undefined", false},
		{"opt-in global identifier", []string{"window"}, ident("window"), "window", true},
		{"opt-in global member", []string{"document"}, chain(ident("document"), "body"), "document.body", true},
		{"other global stays unresolved", []string{"window"}, ident("document"), "undefined", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTargetResolver(tt.globals...).Resolve(listenerCallee(tt.receiver, addEventListener))
			assert.Equal(t, tt.resolved, got.Resolved())
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTargetKey_UnresolvedKeysAreEqual(t *testing.T) {
	r := NewTargetResolver()
	on := func(receiver ast.Node) TargetKey { return r.Resolve(listenerCallee(receiver, addEventListener)) }
	assert.Equal(t, on(ident("window")), on(ident("document")))
	assert.NotEqual(t, on(chain(this(), "a")), on(chain(this(), "b")))
	assert.NotEqual(t,
		r.Resolve(listenerCallee(this(), addEventListener)),
		r.Resolve(listenerCallee(this(), removeEventListener)),
	)
	assert.False(t, r.Resolve(nil).Resolved())
}

func TestClassifyCall(t *testing.T) {
	resolver := NewTargetResolver()

	t.Run("registration", func(t *testing.T) {
		obs, ok := ClassifyCall(add(3, chain(this(), "node"), str("click"), ident("onClick")), resolver)
		require.True(t, ok)
		assert.Equal(t, Registration, obs.Kind)
		assert.Equal(t, ResolvedTarget("this.node"), obs.Target)
		assert.Equal(t, Event("click"), obs.Event)
		assert.Equal(t, Handler{Shape: HandlerNamed, Name: "onClick"}, obs.Handler)
		assert.Equal(t, 3, obs.Location.StartLine)
	})

	t.Run("removal", func(t *testing.T) {
		obs, ok := ClassifyCall(remove(9, chain(this(), "node"), str("click"), ident("onClick")), resolver)
		require.True(t, ok)
		assert.Equal(t, Removal, obs.Kind)
	})

	t.Run("missing arguments degrade", func(t *testing.T) {
		obs, ok := ClassifyCall(add(1, chain(this(), "node")), resolver)
		require.True(t, ok)
		assert.False(t, obs.Event.Resolved())
		assert.Equal(t, "undefined", obs.Event.String())
		assert.Equal(t, Handler{}, obs.Handler)
	})

	t.Run("non-literal event degrades", func(t *testing.T) {
		obs, ok := ClassifyCall(add(1, chain(this(), "node"), ident("EVENT"), ident("h")), resolver)
		require.True(t, ok)
		assert.False(t, obs.Event.Resolved())
	})

	t.Run("numeric literal event keeps its text", func(t *testing.T) {
		obs, ok := ClassifyCall(add(1, chain(this(), "node"), &ast.Literal{Kind: ast.LiteralNumber, Value: "1"}, ident("h")), resolver)
		require.True(t, ok)
		assert.Equal(t, Event("1"), obs.Event)
	})

	t.Run("irrelevant calls", func(t *testing.T) {
		irrelevant := []*ast.CallExpr{
			nil,
			{Callee: ident("addEventListener"), Args: []ast.Node{str("click"), ident("h")}},
			listenerCall(1, chain(this(), "node"), "addListener", str("click"), ident("h")),
			listenerCall(1, chain(this(), "node"), "on", str("click"), ident("h")),
			{Callee: &ast.Unsupported{Kind: "subscript_expression"}},
		}
		for _, call := range irrelevant {
			_, ok := ClassifyCall(call, resolver)
			assert.False(t, ok)
		}
	})
}
