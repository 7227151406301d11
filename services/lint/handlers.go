// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lint exposes the listener lint engine over HTTP.
package lint

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tipsi/eslint-plugin-tipsi/services/lint/ast"
	"github.com/tipsi/eslint-plugin-tipsi/services/lint/engine"
)

// requestIDHeader carries the caller's request id, echoed on responses.
const requestIDHeader = "X-Request-ID"

// requestEnvelopeBytes is the allowance for the JSON envelope around the
// source content of a check request.
const requestEnvelopeBytes = 64 << 10

// Handlers serves the lint HTTP endpoints.
//
// Thread Safety: Safe for concurrent use. The engine is shared.
type Handlers struct {
	engine   *engine.Engine
	hasCache bool
}

// NewHandlers creates the handlers.
//
// Inputs:
//
//	eng      - The lint engine. Must not be nil.
//	hasCache - Whether eng was built with a result cache. Reported by health.
func NewHandlers(eng *engine.Engine, hasCache bool) *Handlers {
	return &Handlers{engine: eng, hasCache: hasCache}
}

func getOrCreateRequestID(c *gin.Context) string {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(requestIDHeader, id)
	return id
}

// HandleCheck lints one source file.
//
// Description:
//
//	POST /v1/lint/check
//
// Request Body: CheckRequest
//
// Response:
//
//	200 OK: CheckResponse
//	400 Bad Request: Malformed body or unsupported file extension
//	413 Request Entity Too Large: Content exceeds max_file_size, or the body
//	    exceeds the limit from maxBodyBytes before it is fully read
//	500 Internal Server Error: Lint failure
func (h *Handlers) HandleCheck(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCheck")

	limit := h.maxBodyBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error:     fmt.Sprintf("request body exceeds %d bytes", limit),
				Code:      "FILE_TOO_LARGE",
				RequestID: requestID,
			})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "invalid request body: " + err.Error(),
			Code:      "INVALID_REQUEST",
			RequestID: requestID,
		})
		return
	}

	fr, err := h.engine.LintSource(c.Request.Context(), []byte(req.Content), req.FilePath)
	if err != nil {
		status, code := http.StatusInternalServerError, "LINT_FAILED"
		switch {
		case errors.Is(err, ast.ErrUnsupportedLanguage):
			status, code = http.StatusBadRequest, "UNSUPPORTED_LANGUAGE"
		case errors.Is(err, ast.ErrInvalidContent):
			status, code = http.StatusBadRequest, "INVALID_CONTENT"
		case errors.Is(err, ast.ErrFileTooLarge):
			status, code = http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"
		}
		if status == http.StatusInternalServerError {
			logger.Error("lint failed", slog.String("file", req.FilePath), slog.String("error", err.Error()))
		}
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code, RequestID: requestID})
		return
	}

	logger.Debug("check complete",
		slog.String("file", req.FilePath),
		slog.Int("diagnostics", len(fr.Diagnostics)),
		slog.Bool("cached", fr.Cached),
	)
	c.JSON(http.StatusOK, CheckResponse{RequestID: requestID, Result: fr})
}

// maxBodyBytes bounds a check request body. JSON escaping can double the
// size of the content, so the limit is twice max_file_size plus the envelope.
func (h *Handlers) maxBodyBytes() int64 {
	return 2*h.engine.Config().MaxFileSize + requestEnvelopeBytes
}

// HandleRules lists every catalog rule and whether it is enabled.
//
// Description:
//
//	GET /v1/lint/rules
func (h *Handlers) HandleRules(c *gin.Context) {
	enabled := make(map[string]bool)
	for _, def := range h.engine.EnabledRules() {
		enabled[def.Meta.ID] = true
	}

	resp := RulesResponse{Rules: make([]RuleInfo, 0)}
	for _, def := range h.engine.Catalog().All() {
		resp.Rules = append(resp.Rules, RuleInfo{Meta: def.Meta, Enabled: enabled[def.Meta.ID]})
	}
	c.JSON(http.StatusOK, resp)
}

// HandleHealth reports liveness.
//
// Description:
//
//	GET /v1/lint/health
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
		Rules:  len(h.engine.EnabledRules()),
		Cache:  h.hasCache,
	})
}
