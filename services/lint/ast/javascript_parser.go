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

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("lint.ast")

var (
	// ErrFileTooLarge is returned when the content exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("file exceeds maximum parse size")

	// ErrInvalidContent is returned when the content is not valid UTF-8.
	ErrInvalidContent = errors.New("content is not valid UTF-8")

	// ErrUnsupportedLanguage is returned when no grammar handles the file extension.
	ErrUnsupportedLanguage = errors.New("unsupported file extension")
)

// MaxExpressionDepth bounds recursion when converting nested expressions
// such as long member chains. Deeper subtrees become *Unsupported.
const MaxExpressionDepth = 512

// cancelCheckInterval is how many nodes are visited between context checks.
const cancelCheckInterval = 256

// Language names a grammar the parser can load.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
)

var extensionLanguages = map[string]Language{
	".js":  LanguageJavaScript,
	".jsx": LanguageJavaScript,
	".mjs": LanguageJavaScript,
	".cjs": LanguageJavaScript,
	".ts":  LanguageTypeScript,
	".mts": LanguageTypeScript,
	".cts": LanguageTypeScript,
	".tsx": LanguageTSX,
}

// LanguageForPath returns the grammar for a file based on its extension.
func LanguageForPath(filePath string) (Language, bool) {
	lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(filePath))]
	return lang, ok
}

func (l Language) grammar() *sitter.Language {
	switch l {
	case LanguageTypeScript:
		return typescript.GetLanguage()
	case LanguageTSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// Visitor receives traversal events.
//
// Description:
//
//	EnterScope is called in document order when a scope opens. CallExpression
//	is called once per call expression when the traversal leaves it, so
//	nested calls in arguments are reported before the enclosing call.
//	ExitScope is called after the last call inside the scope.
//
//	The program scope is always the first scope entered and the last exited.
type Visitor interface {
	EnterScope(scope Scope)
	CallExpression(call *CallExpr)
	ExitScope(scope Scope)
}

// WalkResult summarizes a completed traversal.
type WalkResult struct {
	FilePath string
	Language Language

	// Hash is the hex SHA-256 of the content.
	Hash string

	// Comments holds every comment in document order.
	Comments []Comment

	CallCount int
	NodeCount int

	// HasSyntaxErrors is true when tree-sitter recovered from parse errors.
	// The traversal still covers every node that was produced.
	HasSyntaxErrors bool
}

// ParserOptions configures Parser behavior.
type ParserOptions struct {
	// MaxFileSize is the maximum file size in bytes to parse.
	// Default: 10MB
	MaxFileSize int
}

// DefaultParserOptions returns the default options.
func DefaultParserOptions() ParserOptions {
	return ParserOptions{
		MaxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

// ParserOption is a functional option for configuring Parser.
type ParserOption func(*ParserOptions)

// WithMaxFileSize sets the maximum file size for parsing.
func WithMaxFileSize(size int) ParserOption {
	return func(o *ParserOptions) {
		if size > 0 {
			o.MaxFileSize = size
		}
	}
}

// Parser turns JavaScript and TypeScript source into lint traversal events.
//
// Description:
//
//	Parser uses tree-sitter to parse a file and walks the resulting tree,
//	converting call expressions into the closed Node variants and reporting
//	them to a Visitor together with scope boundaries.
//
// Thread Safety:
//
//	Parser is safe for concurrent use. Each Walk call creates its own
//	tree-sitter parser instance.
//
// Example:
//
//	parser := NewParser()
//	result, err := parser.Walk(ctx, content, "app.jsx", visitor)
//	if err != nil {
//	    return fmt.Errorf("walk: %w", err)
//	}
type Parser struct {
	options ParserOptions
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...ParserOption) *Parser {
	options := DefaultParserOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Parser{options: options}
}

// HashContent returns the hex SHA-256 of content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Walk parses content and reports traversal events to v.
//
// Description:
//
//	Selects the grammar from the file extension, parses with tree-sitter and
//	performs a single iterative depth-first traversal. Class declarations and
//	class expressions open nested scopes. Comments are collected into the
//	result rather than reported to the visitor.
//
// Inputs:
//
//	ctx      - Context for cancellation. Checked before parsing and periodically during traversal.
//	content  - Raw source bytes. Must be valid UTF-8.
//	filePath - Path used for language selection and locations.
//	v        - Receives traversal events. Must not be nil.
//
// Outputs:
//
//	*WalkResult - Traversal summary. Never nil on success.
//	error       - ErrFileTooLarge, ErrInvalidContent, ErrUnsupportedLanguage,
//	              a tree-sitter failure or a wrapped context error.
//
// Thread Safety:
//
//	This method is safe for concurrent use.
func (p *Parser) Walk(ctx context.Context, content []byte, filePath string, v Visitor) (*WalkResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("walk canceled before start: %w", err)
	}

	lang, ok := LanguageForPath(filePath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filePath)
	}
	if len(content) > p.options.MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidContent
	}

	ctx, span := tracer.Start(ctx, "Parser.Walk")
	defer span.End()

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang.grammar())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	result := &WalkResult{
		FilePath:        filePath,
		Language:        lang,
		Hash:            HashContent(content),
		Comments:        make([]Comment, 0),
		HasSyntaxErrors: root.HasError(),
	}
	if result.HasSyntaxErrors {
		slog.Debug("syntax errors recovered during parse",
			slog.String("file", filePath),
			slog.String("language", string(lang)),
		)
	}

	w := &walker{content: content, filePath: filePath, visitor: v, result: result}
	if err := w.run(ctx, root); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("file", filePath),
		attribute.String("language", string(lang)),
		attribute.Int("calls_found", result.CallCount),
		attribute.Int("nodes_traversed", result.NodeCount),
	)

	return result, nil
}

// walker holds per-traversal state.
type walker struct {
	content  []byte
	filePath string
	visitor  Visitor
	result   *WalkResult
}

type walkFrame struct {
	node  *sitter.Node
	exit  bool
	scope *Scope
}

func (w *walker) run(ctx context.Context, root *sitter.Node) error {
	program := Scope{Kind: ScopeProgram, Location: w.location(root)}
	w.visitor.EnterScope(program)

	stack := make([]walkFrame, 0, 64)
	for i := int(root.ChildCount()) - 1; i >= 0; i-- {
		if child := root.Child(i); child != nil {
			stack = append(stack, walkFrame{node: child})
		}
	}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := frame.node

		if frame.exit {
			if node.Type() == jsNodeCallExpression {
				w.result.CallCount++
				w.visitor.CallExpression(w.convertCall(node, 0))
			}
			if frame.scope != nil {
				w.visitor.ExitScope(*frame.scope)
			}
			continue
		}

		w.result.NodeCount++
		if w.result.NodeCount%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("walk canceled after %d nodes: %w", w.result.NodeCount, err)
			}
		}

		nodeType := node.Type()
		if nodeType == jsNodeComment {
			w.collectComment(node)
			continue
		}

		var scope *Scope
		if node.IsNamed() && classNodeTypes[nodeType] {
			scope = &Scope{Kind: ScopeClass, Name: w.fieldText(node, "name"), Location: w.location(node)}
			w.visitor.EnterScope(*scope)
		}
		if nodeType == jsNodeCallExpression || scope != nil {
			stack = append(stack, walkFrame{node: node, exit: true, scope: scope})
		}

		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			if child := node.Child(i); child != nil {
				stack = append(stack, walkFrame{node: child})
			}
		}
	}

	w.visitor.ExitScope(program)
	return nil
}

func (w *walker) collectComment(node *sitter.Node) {
	text := node.Content(w.content)
	w.result.Comments = append(w.result.Comments, Comment{
		Text:     text,
		Block:    strings.HasPrefix(text, "/*"),
		Location: w.location(node),
	})
}

// convertCall builds a *CallExpr from a call_expression node.
func (w *walker) convertCall(node *sitter.Node, depth int) *CallExpr {
	call := &CallExpr{Location: w.location(node)}

	funcNode := node.ChildByFieldName("function")
	if funcNode == nil && node.ChildCount() > 0 {
		funcNode = node.Child(0)
	}
	call.Callee = w.convert(funcNode, depth+1)

	argsNode := node.ChildByFieldName("arguments")
	if argsNode != nil && argsNode.Type() == jsNodeArguments {
		for i := 0; i < int(argsNode.NamedChildCount()); i++ {
			arg := argsNode.NamedChild(i)
			if arg == nil || arg.Type() == jsNodeComment {
				continue
			}
			call.Args = append(call.Args, w.convert(arg, depth+1))
		}
	}
	return call
}

// convert maps a tree-sitter expression onto the closed Node set.
func (w *walker) convert(node *sitter.Node, depth int) Node {
	if node == nil {
		return &Unsupported{Kind: "missing"}
	}
	loc := w.location(node)
	if depth > MaxExpressionDepth {
		slog.Debug("max expression depth reached",
			slog.String("file", w.filePath),
			slog.Int("line", loc.StartLine),
		)
		return &Unsupported{Kind: node.Type(), Location: loc}
	}

	switch node.Type() {
	case jsNodeCallExpression:
		return w.convertCall(node, depth)

	case jsNodeMemberExpression:
		property := node.ChildByFieldName("property")
		if property == nil {
			return &Unsupported{Kind: node.Type(), Location: loc}
		}
		return &MemberExpr{
			Object:   w.convert(node.ChildByFieldName("object"), depth+1),
			Property: property.Content(w.content),
			Location: loc,
		}

	case jsNodeThis:
		return &ThisExpr{Location: loc}

	case jsNodeIdentifier, jsNodeUndefined:
		return &Identifier{Name: node.Content(w.content), Location: loc}

	case jsNodeFunction, jsNodeFunctionExpression, jsNodeGeneratorFunction:
		return &FunctionLiteral{Location: loc}

	case jsNodeArrowFunction:
		return &ArrowFunction{Location: loc}

	case jsNodeString:
		return &Literal{Kind: LiteralString, Value: w.stringContent(node), Location: loc}

	case jsNodeNumber:
		return &Literal{Kind: LiteralNumber, Value: node.Content(w.content), Location: loc}

	case jsNodeTrue, jsNodeFalse:
		return &Literal{Kind: LiteralBoolean, Value: node.Type(), Location: loc}

	case jsNodeNull:
		return &Literal{Kind: LiteralNull, Value: "null", Location: loc}

	case jsNodeParenthesized:
		for i := 0; i < int(node.NamedChildCount()); i++ {
			inner := node.NamedChild(i)
			if inner != nil && inner.Type() != jsNodeComment {
				return w.convert(inner, depth+1)
			}
		}
		return &Unsupported{Kind: node.Type(), Location: loc}

	default:
		return &Unsupported{Kind: node.Type(), Location: loc}
	}
}

// stringContent extracts the value of a string literal without quotes.
func (w *walker) stringContent(node *sitter.Node) string {
	var sb strings.Builder
	found := false
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case jsNodeStringFragment:
			sb.WriteString(child.Content(w.content))
			found = true
		case jsNodeEscapeSequence:
			sb.WriteString(unescape(child.Content(w.content)))
			found = true
		}
	}
	if found {
		return sb.String()
	}
	// Fallback: remove quotes manually
	text := node.Content(w.content)
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

// unescape decodes the single-character escapes; anything else is kept verbatim.
func unescape(seq string) string {
	if len(seq) != 2 || seq[0] != '\\' {
		return seq
	}
	switch seq[1] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\', '\'', '"', '`':
		return seq[1:]
	default:
		return seq
	}
}

func (w *walker) fieldText(node *sitter.Node, field string) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(w.content)
}

func (w *walker) location(node *sitter.Node) Location {
	return Location{
		FilePath:  w.filePath,
		StartLine: int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		StartCol:  int(node.StartPoint().Column),
		EndCol:    int(node.EndPoint().Column),
	}
}
