// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package listener

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// observationsTotal counts listener calls folded into registries.
	// Labels: kind (addEventListener, removeEventListener)
	observationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lint",
		Subsystem: "listener",
		Name:      "observations_total",
		Help:      "Listener registration and removal calls observed",
	}, []string{"kind"})

	// defectsTotal counts reported defects.
	// Labels: kind (missing_removal, prohibited_handler, handler_mismatch)
	defectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lint",
		Subsystem: "listener",
		Name:      "defects_total",
		Help:      "Listener defects reported by kind",
	}, []string{"kind"})
)
