// StepSocial - Dance Community Platform
// Copyright 2026 StepSocial
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stepsocial/stepsocial

// Package api provides the HTTP surface of the recommendation service:
// the chi router, the recommendation and auth handlers, and response
// helpers.
//
// Recommendation endpoints return a bare JSON array of result objects.
// Errors use a small envelope with a machine-readable code and the
// request id for tracing.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/stepsocial/stepsocial/internal/logging"
)

// APIError is the error envelope for all non-2xx responses.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// Error codes for API responses.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// writeJSON writes data with JSON headers. Used for both result arrays
// and error envelopes.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error envelope carrying the request id.
func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorResponse{
		Error: APIError{
			Code:      code,
			Message:   message,
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func writeTooManyRequests(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, message)
}

func writeInternalError(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusInternalServerError, ErrCodeInternalError, message)
}
