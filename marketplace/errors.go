// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package marketplace

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRequestTimeout is returned when a call exceeds its timeout.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrAuthenticationFailed is returned for HTTP 401 responses.
	ErrAuthenticationFailed = errors.New("API authentication failed")

	// ErrHTTPStatus is returned for non-2xx responses other than 401.
	ErrHTTPStatus = errors.New("HTTP error")

	// ErrTransport is returned when no response was received.
	ErrTransport = errors.New("request failed")

	// ErrInvalidResponse is returned when a 2xx body is not a JSON object or
	// does not match the response envelope.
	ErrInvalidResponse = errors.New("invalid API response")

	// ErrAPIFailure is returned when the envelope reports success=false.
	ErrAPIFailure = errors.New("API returned an error")
)

// TimeoutError reports a call that did not complete within Timeout.
type TimeoutError struct {
	Timeout time.Duration
	Err     error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %d seconds", int(e.Timeout.Round(time.Second)/time.Second))
}

// Unwrap returns ErrRequestTimeout and the underlying cause.
func (e *TimeoutError) Unwrap() []error {
	return []error{ErrRequestTimeout, e.Err}
}

// AuthError reports a rejected credential. Message is the server's explanation.
type AuthError struct {
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAuthenticationFailed, e.Message)
}

// Unwrap returns ErrAuthenticationFailed.
func (*AuthError) Unwrap() error {
	return ErrAuthenticationFailed
}

// TransportError reports a failure before any response arrived, such as DNS
// resolution or a refused connection.
type TransportError struct {
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransport, e.Err)
}

// Unwrap returns ErrTransport and the underlying cause.
func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// APIError is the error object of an envelope with success=false.
type APIError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	code, msg := e.Code, e.Message
	if code == "" {
		code = "UNKNOWN"
	}
	if msg == "" {
		msg = "Unknown error"
	}
	return fmt.Sprintf("%s: %s - %s", ErrAPIFailure, code, msg)
}

// Unwrap returns ErrAPIFailure.
func (*APIError) Unwrap() error {
	return ErrAPIFailure
}
