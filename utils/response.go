package utils

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeUpstream           = "UPSTREAM_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIResponse is the error envelope. Success bodies are written as-is so the
// browser client reads fields like apiCalls at the top level.
type APIResponse struct {
	Status      string            `json:"status"`
	Message     string            `json:"message,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	Code        string            `json:"code,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "status", statusCode, "error", err)
	}
}

func codeFromStatus(statusCode int) string {
	switch {
	case statusCode == http.StatusServiceUnavailable:
		return ErrCodeServiceUnavailable
	case statusCode == http.StatusBadGateway, statusCode == http.StatusGatewayTimeout:
		return ErrCodeUpstream
	case statusCode >= 500:
		return ErrCodeInternalError
	case statusCode == http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case statusCode == http.StatusForbidden:
		return ErrCodeForbidden
	case statusCode == http.StatusNotFound:
		return ErrCodeNotFound
	case statusCode == http.StatusConflict:
		return ErrCodeConflict
	case statusCode == http.StatusTooManyRequests:
		return ErrCodeRateLimit
	case statusCode >= 400:
		return ErrCodeBadRequest
	default:
		return "OK"
	}
}

func RespondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	writeJSON(w, statusCode, data)
}

func RespondError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, APIResponse{
		Status:    "error",
		Message:   message,
		Code:      codeFromStatus(statusCode),
		Timestamp: time.Now().UTC(),
	})
}

// RespondInternal logs err server-side and sends only message to the client.
func RespondInternal(w http.ResponseWriter, r *http.Request, err error, message string) {
	slog.ErrorContext(r.Context(), message,
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
	)
	RespondError(w, http.StatusInternalServerError, message)
}

func RespondValidationError(w http.ResponseWriter, message string, fields []string) {
	if message == "" {
		message = "Validation failed"
	}
	if len(fields) > 0 {
		message = fmt.Sprintf("%s: %s", message, strings.Join(fields, ", "))
	}
	writeJSON(w, http.StatusBadRequest, APIResponse{
		Status:    "error",
		Message:   message,
		Code:      ErrCodeValidation,
		Timestamp: time.Now().UTC(),
	})
}

func RespondFieldErrors(w http.ResponseWriter, fieldErrors map[string]string) {
	writeJSON(w, http.StatusBadRequest, APIResponse{
		Status:      "error",
		Message:     "Validation failed",
		FieldErrors: fieldErrors,
		Code:        ErrCodeValidation,
		Timestamp:   time.Now().UTC(),
	})
}
