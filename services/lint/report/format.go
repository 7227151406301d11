// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format names an output format.
type Format string

const (
	// FormatStylish is the human-readable grouped-by-file text output.
	FormatStylish Format = "stylish"

	// FormatJSON is the ESLint-compatible JSON output.
	FormatJSON Format = "json"
)

// ColorMode controls ANSI styling of text output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatStylish, FormatJSON:
		return f, nil
	case "":
		return FormatStylish, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Formatter renders a lint result.
type Formatter interface {
	Write(w io.Writer, res *Result) error
}

// NewFormatter returns the formatter for the given format.
//
// Inputs:
//
//	format - Output format. Unknown values fall back to stylish.
//	color  - Color mode for stylish output. Ignored for JSON.
func NewFormatter(format Format, color ColorMode) Formatter {
	if format == FormatJSON {
		return jsonFormatter{}
	}
	return stylishFormatter{color: color}
}

// =============================================================================
// JSON
// =============================================================================

// eslintMessage mirrors one entry of ESLint's JSON formatter output.
type eslintMessage struct {
	RuleID    *string `json:"ruleId"`
	Severity  int     `json:"severity"`
	Message   string  `json:"message"`
	Line      int     `json:"line"`
	Column    int     `json:"column"`
	EndLine   int     `json:"endLine,omitempty"`
	EndColumn int     `json:"endColumn,omitempty"`
	Fatal     bool    `json:"fatal,omitempty"`
}

type eslintFile struct {
	FilePath        string          `json:"filePath"`
	Messages        []eslintMessage `json:"messages"`
	ErrorCount      int             `json:"errorCount"`
	FatalErrorCount int             `json:"fatalErrorCount"`
	WarningCount    int             `json:"warningCount"`
}

const severityError = 2

type jsonFormatter struct{}

func (jsonFormatter) Write(w io.Writer, res *Result) error {
	files := make([]eslintFile, 0, len(res.Files))
	for _, fr := range res.Files {
		ef := eslintFile{FilePath: fr.FilePath, Messages: make([]eslintMessage, 0, len(fr.Diagnostics))}
		if fr.Error != "" {
			ef.Messages = append(ef.Messages, eslintMessage{Severity: severityError, Message: fr.Error, Fatal: true})
			ef.ErrorCount++
			ef.FatalErrorCount++
		}
		for _, d := range fr.Diagnostics {
			ruleID := d.RuleID
			ef.Messages = append(ef.Messages, eslintMessage{
				RuleID:    &ruleID,
				Severity:  severityError,
				Message:   d.Message,
				Line:      d.Location.StartLine,
				Column:    d.Location.StartCol + 1,
				EndLine:   d.Location.EndLine,
				EndColumn: d.Location.EndCol + 1,
			})
			ef.ErrorCount++
		}
		files = append(files, ef)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(files); err != nil {
		return fmt.Errorf("encoding json report: %w", err)
	}
	return nil
}

// =============================================================================
// Stylish
// =============================================================================

type stylishFormatter struct {
	color ColorMode
}

// useColor resolves the color mode against the destination writer.
func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s stylishFormatter) Write(w io.Writer, res *Result) error {
	renderer := lipgloss.NewRenderer(w)
	if useColor(w, s.color) {
		renderer.SetColorProfile(termenv.ANSI)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
	pathStyle := renderer.NewStyle().Underline(true)
	posStyle := renderer.NewStyle().Faint(true)
	errStyle := renderer.NewStyle().Foreground(lipgloss.Color("1"))
	ruleStyle := renderer.NewStyle().Faint(true)
	summaryStyle := renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))

	var b strings.Builder
	problems := 0
	for _, fr := range res.Files {
		if len(fr.Diagnostics) == 0 && fr.Error == "" {
			continue
		}
		b.WriteString(pathStyle.Render(fr.FilePath))
		b.WriteByte('\n')
		if fr.Error != "" {
			fmt.Fprintf(&b, "  %s  %s  %s\n", posStyle.Render("0:0"), errStyle.Render("error"), fr.Error)
			problems++
		}
		for _, d := range fr.Diagnostics {
			pos := fmt.Sprintf("%d:%d", d.Location.StartLine, d.Location.StartCol+1)
			fmt.Fprintf(&b, "  %s  %s  %s  %s\n", posStyle.Render(pos), errStyle.Render("error"), d.Message, ruleStyle.Render(d.RuleID))
			problems++
		}
		b.WriteByte('\n')
	}
	if problems > 0 {
		summary := fmt.Sprintf("✖ %d %s (%d %s, 0 warnings)",
			problems, plural(problems, "problem"), problems, plural(problems, "error"))
		b.WriteString(summaryStyle.Render(summary))
		b.WriteByte('\n')
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing stylish report: %w", err)
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
