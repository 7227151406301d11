// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import "fmt"

// Location identifies a span of source text.
//
// Lines are 1-based, columns are 0-based byte offsets within the line.
type Location struct {
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	StartCol  int    `json:"start_col"`
	EndCol    int    `json:"end_col"`
}

// String renders the location as path:line:col with a 1-based column.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.FilePath, l.StartLine, l.StartCol+1)
}

// Node is an expression node relevant to lint rules.
//
// Description:
//
//	Node is a closed set. Only the variants declared in this file implement
//	it, so consumers can switch over the concrete types exhaustively and
//	treat every other syntax shape as *Unsupported.
//
// Variants:
//
//	*CallExpr, *MemberExpr, *ThisExpr, *Identifier, *FunctionLiteral,
//	*ArrowFunction, *Literal, *Unsupported
type Node interface {
	// Loc returns the source span of the node.
	Loc() Location

	sealed()
}

// CallExpr is a call such as `callee(args...)`.
type CallExpr struct {
	Callee   Node
	Args     []Node
	Location Location
}

// MemberExpr is a non-computed property access such as `object.property`.
//
// Optional chaining (`object?.property`) is represented the same way.
// Computed access (`object[key]`) is not a MemberExpr; it becomes *Unsupported.
type MemberExpr struct {
	Object   Node
	Property string
	Location Location
}

// ThisExpr is a reference to the enclosing instance (`this`).
type ThisExpr struct {
	Location Location
}

// Identifier is a bare name reference.
type Identifier struct {
	Name     string
	Location Location
}

// FunctionLiteral is an inline `function` expression, named or not,
// including generator functions.
type FunctionLiteral struct {
	Location Location
}

// ArrowFunction is an inline arrow function literal.
type ArrowFunction struct {
	Location Location
}

// LiteralKind distinguishes the primitive literal forms.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBoolean
	LiteralNull
)

// String returns the literal kind name.
func (k LiteralKind) String() string {
	switch k {
	case LiteralString:
		return "string"
	case LiteralNumber:
		return "number"
	case LiteralBoolean:
		return "boolean"
	case LiteralNull:
		return "null"
	default:
		return fmt.Sprintf("LiteralKind(%d)", int(k))
	}
}

// Literal is a primitive literal. Value holds the string contents without
// quotes, or the source text for numbers, booleans and null.
type Literal struct {
	Kind     LiteralKind
	Value    string
	Location Location
}

// Unsupported is any syntax outside the closed set. Kind carries the
// underlying tree-sitter node type for diagnostics and debugging.
type Unsupported struct {
	Kind     string
	Location Location
}

func (n *CallExpr) Loc() Location        { return n.Location }
func (n *MemberExpr) Loc() Location      { return n.Location }
func (n *ThisExpr) Loc() Location        { return n.Location }
func (n *Identifier) Loc() Location      { return n.Location }
func (n *FunctionLiteral) Loc() Location { return n.Location }
func (n *ArrowFunction) Loc() Location   { return n.Location }
func (n *Literal) Loc() Location         { return n.Location }
func (n *Unsupported) Loc() Location     { return n.Location }

func (*CallExpr) sealed()        {}
func (*MemberExpr) sealed()      {}
func (*ThisExpr) sealed()        {}
func (*Identifier) sealed()      {}
func (*FunctionLiteral) sealed() {}
func (*ArrowFunction) sealed()   {}
func (*Literal) sealed()         {}
func (*Unsupported) sealed()     {}

// Arg returns the i-th argument, or nil when the call has fewer arguments.
func (n *CallExpr) Arg(i int) Node {
	if i < 0 || i >= len(n.Args) {
		return nil
	}
	return n.Args[i]
}

// ScopeKind identifies the syntactic construct that opened a scope.
type ScopeKind int

const (
	// ScopeProgram is the whole file.
	ScopeProgram ScopeKind = iota

	// ScopeClass is a class declaration or class expression.
	ScopeClass
)

// String returns the scope kind name.
func (k ScopeKind) String() string {
	switch k {
	case ScopeProgram:
		return "program"
	case ScopeClass:
		return "class"
	default:
		return fmt.Sprintf("ScopeKind(%d)", int(k))
	}
}

// Scope describes a syntactic scope entered during traversal.
type Scope struct {
	Kind ScopeKind

	// Name is the class name when known, empty otherwise.
	Name     string
	Location Location
}

// Comment is a source comment collected during traversal.
type Comment struct {
	// Text is the raw comment including its delimiters.
	Text     string
	Block    bool
	Location Location
}
