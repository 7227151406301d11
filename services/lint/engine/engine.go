// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine runs lint rules over source files.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/cache"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/config"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/rules"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/rules/listener"
)

var tracer = otel.Tracer("lint.engine")

// DefaultCatalog returns the catalog of every built-in rule.
func DefaultCatalog() *rules.Catalog {
	return rules.NewCatalog(listener.Definition())
}

// Engine lints JavaScript and TypeScript sources.
//
// Description:
//
//	Each file is parsed once and walked with fresh rule instances per
//	scope. Files are fully independent: no rule state is shared between
//	files, which makes LintPaths safe to parallelize.
//
// Thread Safety: Safe for concurrent use after construction.
type Engine struct {
	cfg      *config.Config
	catalog  *rules.Catalog
	enabled  []rules.Definition
	settings rules.Settings
	parser   *ast.Parser
	cache    *cache.Store
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog replaces the built-in rule catalog.
func WithCatalog(c *rules.Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithCache enables the result cache.
func WithCache(s *cache.Store) Option {
	return func(e *Engine) { e.cache = s }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine.
//
// Inputs:
//
//	cfg  - Configuration. Nil uses the embedded defaults.
//	opts - Optional catalog, cache and logger.
//
// Outputs:
//
//	*Engine - The configured engine.
//	error   - Non-nil if the default config cannot be loaded or cfg names
//	          a rule that is not in the catalog.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		var err error
		if cfg, err = config.Default(); err != nil {
			return nil, err
		}
	}
	e := &Engine{
		cfg:      cfg,
		catalog:  DefaultCatalog(),
		settings: rules.Settings{GlobalReceivers: cfg.GlobalReceivers},
		parser:   ast.NewParser(ast.WithMaxFileSize(int(cfg.MaxFileSize))),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	for id := range cfg.Rules {
		if _, err := e.catalog.Lookup(id); err != nil {
			return nil, fmt.Errorf("config rules: %w", err)
		}
	}
	for _, def := range e.catalog.All() {
		if cfg.RuleEnabled(def.Meta.ID) {
			e.enabled = append(e.enabled, def)
		}
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Catalog returns the rule catalog.
func (e *Engine) Catalog() *rules.Catalog {
	return e.catalog
}

// EnabledRules returns the definitions that run on every file.
func (e *Engine) EnabledRules() []rules.Definition {
	out := make([]rules.Definition, len(e.enabled))
	copy(out, e.enabled)
	return out
}

// LintSource lints one file's content.
//
// Description:
//
//	Consults the cache first when configured. Otherwise parses the content,
//	runs every enabled rule, drops diagnostics silenced by eslint-disable
//	comments and sorts the rest by position.
//
// Inputs:
//
//	ctx      - Context for cancellation and tracing.
//	content  - Source bytes.
//	filePath - Path used for language selection and diagnostic locations.
//
// Outputs:
//
//	report.FileResult - Diagnostics for the file. Error is left empty.
//	error             - Parse failures (ast.ErrFileTooLarge, ast.ErrInvalidContent,
//	                    ast.ErrUnsupportedLanguage) or cancellation.
func (e *Engine) LintSource(ctx context.Context, content []byte, filePath string) (report.FileResult, error) {
	ctx, span := tracer.Start(ctx, "Engine.LintSource",
		trace.WithAttributes(
			attribute.String("file", filePath),
			attribute.Int("bytes", len(content)),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() { lintDuration.Observe(time.Since(start).Seconds()) }()

	hash := ast.HashContent(content)
	if fr, ok := e.lookupCache(ctx, hash, filePath); ok {
		span.SetAttributes(attribute.Bool("cached", true))
		filesLinted.WithLabelValues("cached").Inc()
		return fr, nil
	}

	runner := newScopeRunner(e.enabled, e.settings, e.cfg.Scope == config.ScopeClass)
	walk, err := e.parser.Walk(ctx, content, filePath, runner)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		filesLinted.WithLabelValues("error").Inc()
		return report.FileResult{FilePath: filePath, Hash: hash}, fmt.Errorf("linting %s: %w", filePath, err)
	}

	diags, suppressed := newSuppressor(walk.Comments).filter(runner.diagnostics())
	report.SortDiagnostics(diags)

	for _, d := range diags {
		diagnosticsReported.WithLabelValues(d.RuleID).Inc()
	}
	diagnosticsSuppressed.Add(float64(suppressed))
	filesLinted.WithLabelValues("linted").Inc()

	span.SetAttributes(
		attribute.Int("diagnostics", len(diags)),
		attribute.Int("suppressed", suppressed),
		attribute.Int("calls", walk.CallCount),
	)
	e.logger.Debug("file linted",
		slog.String("file", filePath),
		slog.Int("diagnostics", len(diags)),
		slog.Int("suppressed", suppressed),
		slog.Bool("syntax_errors", walk.HasSyntaxErrors),
	)

	fr := report.FileResult{
		FilePath:        filePath,
		Hash:            hash,
		Diagnostics:     diags,
		Suppressed:      suppressed,
		HasSyntaxErrors: walk.HasSyntaxErrors,
	}
	e.storeCache(ctx, hash, fr)
	return fr, nil
}

// LintFile reads and lints one file. Read and parse failures are recorded
// in the result's Error field; only cancellation is returned as an error.
func (e *Engine) LintFile(ctx context.Context, path string) (report.FileResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		filesLinted.WithLabelValues("error").Inc()
		e.logger.Warn("reading file failed", slog.String("file", path), slog.String("error", err.Error()))
		return report.FileResult{FilePath: path, Error: err.Error()}, nil
	}

	fr, err := e.LintSource(ctx, content, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fr, err
		}
		e.logger.Warn("linting file failed", slog.String("file", path), slog.String("error", err.Error()))
		fr.Error = err.Error()
	}
	return fr, nil
}

func (e *Engine) lookupCache(ctx context.Context, hash, filePath string) (report.FileResult, bool) {
	if e.cache == nil {
		return report.FileResult{}, false
	}
	entry, err := e.cache.Get(ctx, e.cfg.Fingerprint(), hash, filePath)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		cacheLookups.WithLabelValues("miss").Inc()
		return report.FileResult{}, false
	case err != nil:
		cacheLookups.WithLabelValues("error").Inc()
		e.logger.Warn("cache lookup failed", slog.String("file", filePath), slog.String("error", err.Error()))
		return report.FileResult{}, false
	}
	cacheLookups.WithLabelValues("hit").Inc()
	return report.FileResult{
		FilePath:        filePath,
		Hash:            hash,
		Diagnostics:     entry.Diagnostics,
		Suppressed:      entry.Suppressed,
		HasSyntaxErrors: entry.HasSyntaxErrors,
		Cached:          true,
	}, true
}

func (e *Engine) storeCache(ctx context.Context, hash string, fr report.FileResult) {
	if e.cache == nil {
		return
	}
	entry := cache.Entry{Diagnostics: fr.Diagnostics, Suppressed: fr.Suppressed, HasSyntaxErrors: fr.HasSyntaxErrors}
	if err := e.cache.Put(ctx, e.cfg.Fingerprint(), hash, entry); err != nil {
		e.logger.Warn("cache store failed", slog.String("file", fr.FilePath), slog.String("error", err.Error()))
	}
}
