// Package http exposes the ledger as a JSON API.
//
// This file holds the fluent builder every handler uses to shape its
// response, including the notification that accompanies a mutation.
package http

import (
	"encoding/json"
	"net/http"

	"studentspend/internal/core"
)

// JSONResponseBuilder assembles a JSON object response field by field.
type JSONResponseBuilder struct {
	fields     map[string]any
	statusCode int
	headers    map[string]string
}

// Notification is the toast payload attached to mutating responses.
type Notification struct {
	EventID     string         `json:"eventId"`
	Type        core.EventType `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		fields:     make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Field adds a top-level member to the body.
func (b *JSONResponseBuilder) Field(name string, value any) *JSONResponseBuilder {
	b.fields[name] = value
	return b
}

// Notify attaches the toast text of ev.
func (b *JSONResponseBuilder) Notify(ev core.Event) *JSONResponseBuilder {
	return b.Field("notification", Notification{
		EventID:     ev.ID,
		Type:        ev.Type,
		Title:       ev.Title,
		Description: ev.Description,
	})
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the built response. A 204 is written without a body.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}
	writeJSON(w, b.statusCode, "application/json", b.fields)
}

func writeJSON(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Problem is the error body, shaped after RFC 7807.
type Problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// ErrorResponse writes a problem document.
func ErrorResponse(w http.ResponseWriter, statusCode int, detail string) {
	writeJSON(w, statusCode, "application/problem+json", Problem{
		Title:  http.StatusText(statusCode),
		Status: statusCode,
		Detail: detail,
	})
}

// BadRequestError writes a 400 Bad Request problem.
func BadRequestError(w http.ResponseWriter, detail string) {
	ErrorResponse(w, http.StatusBadRequest, detail)
}

// UnprocessableEntityError writes a 422 Unprocessable Entity problem.
func UnprocessableEntityError(w http.ResponseWriter, detail string) {
	ErrorResponse(w, http.StatusUnprocessableEntity, detail)
}

// NotFoundError writes a 404 Not Found problem.
func NotFoundError(w http.ResponseWriter, detail string) {
	ErrorResponse(w, http.StatusNotFound, detail)
}

// InternalServerError writes a 500 problem; detail must not leak internals.
func InternalServerError(w http.ResponseWriter) {
	ErrorResponse(w, http.StatusInternalServerError, "internal error")
}
