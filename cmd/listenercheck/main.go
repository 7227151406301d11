// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command listenercheck reports unbalanced addEventListener and
// removeEventListener calls in JavaScript and TypeScript sources.
//
// Usage:
//
//	listenercheck check [paths...]
//	listenercheck check --format json src/
//	git diff main | listenercheck check --diff - src/
//	listenercheck check --watch src/
//	listenercheck rules
//	listenercheck serve --addr :8080
//
// Exit codes: 0 clean, 1 diagnostics reported, 2 usage or file errors.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/telemetry"
)

const (
	exitClean       = 0
	exitDiagnostics = 1
	exitError       = 2
)

// exitCodeError carries a process exit code out of a command.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitCodeError) Unwrap() error { return e.err }

// globalOptions are flags shared by every subcommand.
type globalOptions struct {
	logLevel    string
	traceStdout bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}
	var shutdownTracing telemetry.ShutdownFunc

	root := &cobra.Command{
		Use:           "listenercheck",
		Short:         "Check that event listeners added in JavaScript are removed again",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := parseLevel(opts.logLevel)
			if err != nil {
				return &exitCodeError{code: exitError, err: err}
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

			shutdownTracing, err = telemetry.Setup(telemetry.Options{Stdout: opts.traceStdout, Writer: stderr})
			if err != nil {
				return &exitCodeError{code: exitError, err: err}
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if shutdownTracing != nil {
				return shutdownTracing(cmd.Context())
			}
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&opts.traceStdout, "trace-stdout", false, "export OpenTelemetry spans to stderr")

	root.AddCommand(newCheckCmd(), newRulesCmd(), newServeCmd())
	return root
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q", name)
	}
	return level, nil
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitClean
	}

	var coded *exitCodeError
	if errors.As(err, &coded) {
		if coded.err != nil {
			fmt.Fprintln(stderr, "listenercheck:", coded.err)
		}
		return coded.code
	}
	fmt.Fprintln(stderr, "listenercheck:", err)
	return exitError
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
