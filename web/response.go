// Package web holds the HTTP-facing types of the framework: the Request
// and Response passed through the dispatch pipeline, session handling,
// the Router contract with its mux and chi backed implementations, and
// server middleware.
package web

import (
	"bytes"
	"net/http"
)

// Response is the mutable output of one pipeline run. Listeners write the
// rendered body into it; the application delivers it to the transport at
// the end of the run.
type Response struct {
	status int
	header http.Header
	body   bytes.Buffer
}

// NewResponse creates a response with the given status code.
func NewResponse(status int) *Response {
	if status == 0 {
		status = http.StatusOK
	}
	return &Response{status: status, header: make(http.Header)}
}

// StatusCode returns the response status code.
func (r *Response) StatusCode() int {
	return r.status
}

// SetStatus updates the response status code.
func (r *Response) SetStatus(status int) {
	r.status = status
}

// Header returns the mutable response headers.
func (r *Response) Header() http.Header {
	return r.header
}

// Body returns the accumulated body.
func (r *Response) Body() string {
	return r.body.String()
}

// SetBody replaces the body.
func (r *Response) SetBody(body string) {
	r.body.Reset()
	r.body.WriteString(body)
}

// Write appends to the body, satisfying io.Writer so renderers can stream
// into the response.
func (r *Response) Write(p []byte) (int, error) {
	return r.body.Write(p)
}

// WriteString appends a string to the body.
func (r *Response) WriteString(s string) (int, error) {
	return r.body.WriteString(s)
}

// Len returns the current body length in bytes.
func (r *Response) Len() int {
	return r.body.Len()
}

// Deliver writes status, headers and body to the transport writer.
func (r *Response) Deliver(w http.ResponseWriter) error {
	for key, values := range r.header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(r.status)
	_, err := w.Write(r.body.Bytes())
	return err
}
