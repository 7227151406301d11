// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// filesLinted counts files processed.
	// Labels: outcome (linted, cached, error)
	filesLinted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lint",
		Subsystem: "engine",
		Name:      "files_total",
		Help:      "Files processed by outcome",
	}, []string{"outcome"})

	// diagnosticsReported counts diagnostics kept after suppression.
	// Labels: rule
	diagnosticsReported = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lint",
		Subsystem: "engine",
		Name:      "diagnostics_total",
		Help:      "Diagnostics reported after suppression",
	}, []string{"rule"})

	// diagnosticsSuppressed counts diagnostics dropped by eslint-disable comments.
	diagnosticsSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lint",
		Subsystem: "engine",
		Name:      "suppressed_total",
		Help:      "Diagnostics dropped by suppression directives",
	})

	// cacheLookups counts result cache lookups.
	// Labels: result (hit, miss, error)
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lint",
		Subsystem: "engine",
		Name:      "cache_lookups_total",
		Help:      "Result cache lookups by result",
	}, []string{"result"})

	// lintDuration records per-file lint latency.
	lintDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "lint",
		Subsystem: "engine",
		Name:      "file_duration_seconds",
		Help:      "Time to lint one file",
		Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	})
)
