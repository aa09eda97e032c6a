package httpx

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ramitaha13/KamelStore/internal/platform/requestctx"
)

const (
	CodeInvalidRequest     = "invalid_request"
	CodeUnauthenticated    = "unauthenticated"
	CodePayloadTooLarge    = "payload_too_large"
	CodeServiceUnavailable = "service_unavailable"
)

const (
	maxCodeLen    = 80
	maxMessageLen = 512
)

// Error is the JSON error body shared by every endpoint:
//
//	{"error": code, "message": ..., "status": ..., "request_id": ..., "trace_id": ..., <details>}
//
// Details are merged at the top level so clients can read e.g. "fields" next to "error".
type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]any
}

func NewError(code, message string, status int) Error {
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    sanitize(code, maxCodeLen),
		Message: sanitize(message, maxMessageLen),
		Status:  status,
	}
}

func (e Error) Error() string {
	return e.Code + ": " + e.Message
}

// WithDetails returns a copy of e carrying extra top-level members. Reserved keys are not overwritten.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	merged := make(map[string]any, len(e.Details)+len(details))
	maps.Copy(merged, e.Details)
	maps.Copy(merged, details)
	e.Details = merged
	return e
}

func (e Error) body(ctx context.Context) map[string]any {
	out := make(map[string]any, len(e.Details)+5)
	maps.Copy(out, e.Details)
	out["error"] = e.Code
	out["message"] = e.Message
	out["status"] = e.Status
	if id := sanitize(middleware.GetReqID(ctx), maxCodeLen); id != "" {
		out["request_id"] = id
	}
	if id := sanitize(requestctx.TraceID(ctx), 64); id != "" {
		out["trace_id"] = id
	}
	return out
}

// WriteError renders err with the request and trace ids found on ctx. Error bodies are never cached.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	if err.Status == 0 {
		err.Status = http.StatusInternalServerError
	}
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, err.Status, err.body(ctx))
}

// WriteJSON encodes payload with HTML escaping disabled.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

// sanitize flattens line breaks and truncates to at most limit bytes without splitting a rune.
func sanitize(value string, limit int) string {
	value = strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(value))
	if len(value) <= limit {
		return value
	}
	value = value[:limit]
	for len(value) > 0 && !utf8.ValidString(value) {
		value = value[:len(value)-1]
	}
	return value
}
