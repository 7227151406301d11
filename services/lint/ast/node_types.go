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

// tree-sitter node types shared by the javascript, typescript and tsx grammars.
const (
	jsNodeProgram            = "program"
	jsNodeComment            = "comment"
	jsNodeCallExpression     = "call_expression"
	jsNodeArguments          = "arguments"
	jsNodeMemberExpression   = "member_expression"
	jsNodeThis               = "this"
	jsNodeIdentifier         = "identifier"
	jsNodeUndefined          = "undefined"
	jsNodeParenthesized      = "parenthesized_expression"
	jsNodeString             = "string"
	jsNodeStringFragment     = "string_fragment"
	jsNodeEscapeSequence     = "escape_sequence"
	jsNodeNumber             = "number"
	jsNodeTrue               = "true"
	jsNodeFalse              = "false"
	jsNodeNull               = "null"
	jsNodeArrowFunction      = "arrow_function"
	jsNodeGeneratorFunction  = "generator_function"
	jsNodeFunctionExpression = "function_expression"

	// jsNodeFunction is the function expression type in grammar versions
	// that predate the function_expression rename.
	jsNodeFunction = "function"

	jsNodeClassDeclaration         = "class_declaration"
	jsNodeClass                    = "class"
	jsNodeAbstractClassDeclaration = "abstract_class_declaration"
)

// classNodeTypes open a ScopeClass during traversal. "class" is also the
// keyword token, so callers must check IsNamed.
var classNodeTypes = map[string]bool{
	jsNodeClassDeclaration:         true,
	jsNodeClass:                    true,
	jsNodeAbstractClassDeclaration: true,
}
