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
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/engine"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/rules"
)

type ruleRow struct {
	rules.Meta
	Enabled bool `json:"enabled"`
}

func newRulesCmd() *cobra.Command {
	var (
		project projectOptions
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the available rules and whether the project enables them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := project.loadConfig()
			if err != nil {
				return &exitCodeError{code: exitError, err: err}
			}
			eng, err := engine.New(cfg)
			if err != nil {
				return &exitCodeError{code: exitError, err: err}
			}

			var rows []ruleRow
			for _, def := range eng.Catalog().All() {
				rows = append(rows, ruleRow{Meta: def.Meta, Enabled: cfg.RuleEnabled(def.Meta.ID)})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RULE\tENABLED\tCATEGORY\tDESCRIPTION")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s%s\t%t\t%s\t%s\n", rules.PluginPrefix, r.ID, r.Enabled, r.Category, r.Description)
			}
			return tw.Flush()
		},
	}
	project.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rules as JSON")
	return cmd
}
