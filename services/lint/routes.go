// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all lint routes with the router.
//
// Description:
//
//	Registers all /v1/lint/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Inputs:
//
//	rg       - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/lint/check  - Lint one source file
//	GET  /v1/lint/rules  - List catalog rules
//	GET  /v1/lint/health - Health check
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	lint := rg.Group("/lint")
	{
		lint.POST("/check", handlers.HandleCheck)
		lint.GET("/rules", handlers.HandleRules)
		lint.GET("/health", handlers.HandleHealth)
	}
}
