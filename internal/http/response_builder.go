// Package http serves the household ledger: the three-section HTML UI, the
// form posts that append rows and a small JSON API over the same Book.
//
// This file implements a fluent builder for non-template responses so JSON
// bodies, error fragments and headers are written the same way everywhere.

package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// ResponseBuilder accumulates status, headers and body and writes them once.
type ResponseBuilder struct {
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyString sets the response body as plain text.
func (b *ResponseBuilder) BodyString(content string) *ResponseBuilder {
	b.headers["Content-Type"] = "text/plain; charset=utf-8"
	b.body = []byte(content)
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *ResponseBuilder) BodyHTML(html string) *ResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// JSON encodes v as the body. An encoding failure turns the response into a 500.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		b.statusCode = http.StatusInternalServerError
		data = []byte(`{"error":"encoding failed"}`)
	}
	b.headers["Content-Type"] = "application/json; charset=utf-8"
	b.body = append(data, '\n')
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates an error response; the message is HTML-escaped when
// rendered as a fragment.
func ErrorResponse(statusCode int, message string, asJSON bool) *ResponseBuilder {
	b := NewResponse().Status(statusCode)
	if asJSON {
		return b.JSON(errorBody{Error: message})
	}
	return b.BodyHTML(`<div class="notice error">` + template.HTMLEscapeString(message) + `</div>`)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string, asJSON bool) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message, asJSON)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string, asJSON bool) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message, asJSON)
}
