// Package httpserver contains HTTP handlers and middleware.
//
// It exposes the generation and session endpoints as a JSON REST API
// and keeps a clear separation between HTTP concerns and the usecases.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/interview-oracle/api/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto the uniform status
// surface: 400 validation, 404 not found, everything gateway/recovery/
// internal is 500. The message is human-readable; diagnostic previews
// stay in logs.
func writeError(w http.ResponseWriter, _ *http.Request, err error, details interface{}) {
	code := http.StatusInternalServerError
	codeStr := "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		code = http.StatusBadRequest
		codeStr = "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
		codeStr = "NOT_FOUND"
	case errors.Is(err, domain.ErrGateway):
		codeStr = "GATEWAY"
	case errors.Is(err, domain.ErrTruncated):
		codeStr = "REPLY_TRUNCATED"
	case errors.Is(err, domain.ErrMalformedPayload):
		codeStr = "REPLY_MALFORMED"
	case errors.Is(err, domain.ErrSchemaInvalid):
		codeStr = "REPLY_SCHEMA_INVALID"
	}
	writeJSON(w, code, errorEnvelope{Error: apiError{Code: codeStr, Message: err.Error(), Details: details}})
}

// MethodNotAllowed is the router's JSON 405 handler.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorEnvelope{Error: apiError{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"}})
}

// NotFound is the router's JSON 404 handler.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorEnvelope{Error: apiError{Code: "NOT_FOUND", Message: "not found"}})
}
