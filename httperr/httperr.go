// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package httperr provides error types that carry the HTTP status code of the
// response that produced them.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

// CodedError wraps an error with the HTTP status code returned by a remote
// server. Callers classify failures with Code or errors.As instead of parsing
// error strings.
type CodedError struct {
	err  error
	code int
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	return e.err.Error()
}

// Unwrap returns the underlying error for errors.Is() and errors.As() compatibility.
func (e *CodedError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *CodedError) HTTPCode() int {
	return e.code
}

// WithCode wraps an error with an HTTP status code.
// The returned error implements Unwrap() for use with errors.Is() and errors.As().
// If err is nil, WithCode returns nil.
func WithCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &CodedError{err: err, code: code}
}

// Code extracts the HTTP status code from an error chain.
// It returns 0 when the chain carries no status, which is the case for
// transport failures where no response was received.
func Code(err error) int {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.code
	}
	return 0
}

// New creates a new error with the given message and HTTP status code.
func New(message string, code int) error {
	return &CodedError{err: errors.New(message), code: code}
}

// FromStatus builds a coded error for a non-success response. The message has
// the form "HTTP 503 Service Unavailable: detail", wrapping sentinel so callers
// can test for the error class with errors.Is.
func FromStatus(sentinel error, code int, detail string) error {
	msg := fmt.Sprintf("HTTP %d %s", code, http.StatusText(code))
	if detail != "" {
		msg += ": " + detail
	}
	if sentinel == nil {
		return &CodedError{err: errors.New(msg), code: code}
	}
	return &CodedError{err: fmt.Errorf("%w: %s", sentinel, msg), code: code}
}

// IsNotFound reports whether the error chain carries a 404 status.
func IsNotFound(err error) bool {
	return Code(err) == http.StatusNotFound
}

// IsClientError reports whether the error chain carries a 4xx status.
func IsClientError(err error) bool {
	c := Code(err)
	return c >= 400 && c < 500
}
