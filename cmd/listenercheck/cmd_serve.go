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
	"log/slog"

	"github.com/spf13/cobra"

	lint "github.com/tipsi/eslint-plugin-tipsi/services/lint"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/cache"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/engine"
)

func newServeCmd() *cobra.Command {
	var (
		project projectOptions
		addr    string
		router  = lint.DefaultRouterOptions()
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lint API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := project.loadConfig()
			if err != nil {
				return &exitCodeError{code: exitError, err: err}
			}

			// The server always caches; without a configured directory it stays in memory.
			dir := ""
			if cfg.Cache.Enabled {
				dir = cfg.Cache.Dir
			}
			store, err := cache.Open(dir, cache.WithLogger(slog.Default()))
			if err != nil {
				return &exitCodeError{code: exitError, err: err}
			}
			defer store.Close()

			eng, err := engine.New(cfg, engine.WithCache(store), engine.WithLogger(slog.Default()))
			if err != nil {
				return &exitCodeError{code: exitError, err: err}
			}

			handler := lint.NewRouter(lint.NewHandlers(eng, true), router)
			if err := lint.Serve(cmd.Context(), addr, handler); err != nil {
				return &exitCodeError{code: exitError, err: err}
			}
			return nil
		},
	}
	project.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().Float64Var(&router.RequestsPerSecond, "rate", router.RequestsPerSecond, "sustained requests per second on /v1 (0 disables limiting)")
	cmd.Flags().IntVar(&router.Burst, "burst", router.Burst, "rate limiter burst size")
	return cmd
}
