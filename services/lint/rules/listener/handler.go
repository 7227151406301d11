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

// unresolvedText is how an unresolved target, event or handler is rendered
// in messages.
const unresolvedText = "undefined"

// HandlerShape classifies the syntactic shape of a handler argument.
type HandlerShape int

const (
	// HandlerUnresolved is any shape outside the modeled set, including a
	// missing argument.
	HandlerUnresolved HandlerShape = iota

	// HandlerNamed is a bare identifier.
	HandlerNamed

	// HandlerQualified is a member chain rooted at `this`.
	HandlerQualified

	// HandlerAnonymousFunction is an inline function literal.
	HandlerAnonymousFunction

	// HandlerAnonymousArrow is an inline arrow function literal.
	HandlerAnonymousArrow
)

// String returns the shape name.
func (s HandlerShape) String() string {
	switch s {
	case HandlerUnresolved:
		return "unresolved"
	case HandlerNamed:
		return "named"
	case HandlerQualified:
		return "qualified"
	case HandlerAnonymousFunction:
		return "plain function"
	case HandlerAnonymousArrow:
		return "arrow function"
	default:
		return fmt.Sprintf("HandlerShape(%d)", int(s))
	}
}

// Handler describes a listener callback argument.
//
// Handler is a comparable value: two descriptors are the same handler when
// both Shape and Name are equal. Name is empty for every shape except
// HandlerNamed and HandlerQualified. Two unresolved handlers compare equal.
type Handler struct {
	Shape HandlerShape
	Name  string
}

// Prohibited reports whether the handler is an inline literal that can never
// be passed again by reference.
func (h Handler) Prohibited() bool {
	return h.Shape == HandlerAnonymousFunction || h.Shape == HandlerAnonymousArrow
}

// String renders the handler as it appears in messages.
func (h Handler) String() string {
	switch h.Shape {
	case HandlerNamed, HandlerQualified:
		return h.Name
	case HandlerAnonymousFunction, HandlerAnonymousArrow:
		return h.Shape.String()
	default:
		return unresolvedText
	}
}

// ClassifyHandler determines the shape of a handler argument.
//
// Description:
//
//	Decision order, first match wins:
//	  1. inline function literal  -> HandlerAnonymousFunction
//	  2. inline arrow literal     -> HandlerAnonymousArrow
//	  3. bare identifier          -> HandlerNamed
//	  4. member chain on `this`   -> HandlerQualified (dotted path)
//	  5. anything else or nil     -> HandlerUnresolved
//
// Inputs:
//
//	arg - The handler argument. May be nil when the call has no second argument.
//
// Outputs:
//
//	Handler - The descriptor. Never fails.
func ClassifyHandler(arg ast.Node) Handler {
	switch n := arg.(type) {
	case *ast.FunctionLiteral:
		return Handler{Shape: HandlerAnonymousFunction}
	case *ast.ArrowFunction:
		return Handler{Shape: HandlerAnonymousArrow}
	case *ast.Identifier:
		return Handler{Shape: HandlerNamed, Name: n.Name}
	case *ast.MemberExpr:
		if path, ok := instancePath(n); ok {
			return Handler{Shape: HandlerQualified, Name: path}
		}
		return Handler{}
	case *ast.CallExpr, *ast.ThisExpr, *ast.Literal, *ast.Unsupported, nil:
		return Handler{}
	default:
		return Handler{}
	}
}
