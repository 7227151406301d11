// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/cache"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/config"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/engine"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/report"
)

// projectOptions are the flags that select and override configuration.
type projectOptions struct {
	configPath      string
	scope           string
	globalReceivers []string
	cacheDir        string
}

func (p *projectOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.configPath, "config", "c", "", "config file (default: .listenercheck.yaml in the working directory)")
	cmd.Flags().StringVar(&p.scope, "scope", "", "registry scope override: program or class")
	cmd.Flags().StringSliceVar(&p.globalReceivers, "global-receiver", nil, "treat this global identifier as a resolvable target (repeatable)")
	cmd.Flags().StringVar(&p.cacheDir, "cache-dir", "", "persist results in a badger cache at this directory")
}

// loadConfig resolves the project configuration and applies flag overrides.
func (p *projectOptions) loadConfig() (*config.Config, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if p.configPath != "" {
		cfg, err = config.LoadFile(p.configPath)
		path = p.configPath
	} else {
		cfg, path, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}
	if path != "" {
		slog.Debug("config loaded", slog.String("path", path))
	}

	if p.scope != "" {
		cfg.Scope = p.scope
	}
	if len(p.globalReceivers) > 0 {
		cfg.GlobalReceivers = append(cfg.GlobalReceivers, p.globalReceivers...)
	}
	if p.cacheDir != "" {
		cfg.Cache.Enabled = true
		cfg.Cache.Dir = p.cacheDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openCache opens the configured cache and drops entries written under
// other configurations. Returns nil when caching is disabled.
func openCache(cmd *cobra.Command, cfg *config.Config) (*cache.Store, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	store, err := cache.Open(cfg.Cache.Dir, cache.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}
	pruned, err := store.Prune(cmd.Context(), cfg.Fingerprint())
	if err != nil {
		slog.Warn("cache prune failed", slog.String("error", err.Error()))
	} else if pruned > 0 {
		slog.Debug("cache pruned", slog.Int("entries", pruned))
	}
	return store, nil
}

type checkOptions struct {
	project projectOptions
	format  string
	color   string
	diff    string
	watch   bool
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Lint files and directories (default: the working directory)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckCommand(cmd, args, opts)
		},
	}
	opts.project.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(report.FormatStylish), "output format: stylish or json")
	cmd.Flags().StringVar(&opts.color, "color", string(report.ColorAuto), "color mode: auto, always or never")
	cmd.Flags().StringVar(&opts.diff, "diff", "", "only report on lines added by this unified diff (\"-\" reads stdin)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-lint on file changes until interrupted")
	return cmd
}

func parseColor(name string) (report.ColorMode, error) {
	switch mode := report.ColorMode(name); mode {
	case report.ColorAuto, report.ColorAlways, report.ColorNever:
		return mode, nil
	case "":
		return report.ColorAuto, nil
	default:
		return "", fmt.Errorf("invalid --color %q: want auto, always or never", name)
	}
}

func readDiff(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func runCheckCommand(cmd *cobra.Command, args []string, opts *checkOptions) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return &exitCodeError{code: exitError, err: err}
	}
	color, err := parseColor(opts.color)
	if err != nil {
		return &exitCodeError{code: exitError, err: err}
	}
	if opts.watch && opts.diff != "" {
		return &exitCodeError{code: exitError, err: errors.New("--watch and --diff cannot be combined")}
	}

	var unified []byte
	if opts.diff != "" {
		unified, err = readDiff(opts.diff, cmd.InOrStdin())
		if err != nil {
			return &exitCodeError{code: exitError, err: fmt.Errorf("reading diff: %w", err)}
		}
	}

	cfg, err := opts.project.loadConfig()
	if err != nil {
		return &exitCodeError{code: exitError, err: err}
	}
	store, err := openCache(cmd, cfg)
	if err != nil {
		return &exitCodeError{code: exitError, err: err}
	}
	engineOpts := []engine.Option{engine.WithLogger(slog.Default())}
	if store != nil {
		defer store.Close()
		engineOpts = append(engineOpts, engine.WithCache(store))
	}

	eng, err := engine.New(cfg, engineOpts...)
	if err != nil {
		return &exitCodeError{code: exitError, err: err}
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	formatter := report.NewFormatter(format, color)
	out := cmd.OutOrStdout()

	if opts.watch {
		err := eng.Watch(cmd.Context(), paths, 0, func(res *report.Result) {
			if err := formatter.Write(out, res); err != nil {
				slog.Error("writing report", slog.String("error", err.Error()))
			}
		})
		if err != nil {
			return &exitCodeError{code: exitError, err: err}
		}
		return nil
	}

	res, err := eng.LintPaths(cmd.Context(), paths)
	if err != nil {
		return &exitCodeError{code: exitError, err: err}
	}
	if unified != nil {
		res, err = engine.FilterByDiff(res, unified)
		if err != nil {
			return &exitCodeError{code: exitError, err: err}
		}
	}

	if err := formatter.Write(out, res); err != nil {
		return &exitCodeError{code: exitError, err: fmt.Errorf("writing report: %w", err)}
	}

	switch {
	case res.ErrorCount > 0:
		return &exitCodeError{code: exitError}
	case res.DiagnosticCount > 0:
		return &exitCodeError{code: exitDiagnostics}
	}
	return nil
}
