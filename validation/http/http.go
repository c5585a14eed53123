// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package http provides validation functions for HTTP header values and the
// URLs the marketplace client talks to.
package http

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// maxHeaderValueLength mirrors the common server limit on a single header.
const maxHeaderValueLength = 8192

// ValidateHeaderValue validates that a string is a valid HTTP header value per RFC 7230.
// It checks for CRLF injection and control characters.
func ValidateHeaderValue(value string) error {
	if value == "" {
		return fmt.Errorf("header value cannot be empty")
	}

	if len(value) > maxHeaderValueLength {
		return fmt.Errorf("header value exceeds maximum length of %d bytes", maxHeaderValueLength)
	}

	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("invalid HTTP header value: contains control characters")
	}

	return nil
}

// ValidateBearerToken checks that token can be sent as "Authorization: Bearer <token>".
// Whitespace inside the token is rejected since servers split the header on it.
func ValidateBearerToken(token string) error {
	if err := ValidateHeaderValue(token); err != nil {
		return fmt.Errorf("invalid bearer token: %w", err)
	}
	if strings.ContainsAny(token, " \t") {
		return fmt.Errorf("invalid bearer token: contains whitespace")
	}
	return nil
}

// ValidateBaseURL validates an API base URL. It must be absolute http or https
// with a host, and carry neither query nor fragment since endpoint paths and
// parameters are appended to it.
func ValidateBaseURL(raw string) error {
	u, err := parseHTTPURL(raw, "base URL")
	if err != nil {
		return err
	}
	if u.RawQuery != "" {
		return fmt.Errorf("base URL must not contain a query: %s", raw)
	}
	if u.Fragment != "" {
		return fmt.Errorf("base URL must not contain fragments (#): %s", raw)
	}
	return nil
}

// ValidateDownloadURL validates an archive download URL: absolute http or https
// with a host.
func ValidateDownloadURL(raw string) error {
	_, err := parseHTTPURL(raw, "download URL")
	return err
}

func parseHTTPURL(raw, what string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%s cannot be empty", what)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", what, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s must use http or https: %s", what, raw)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("%s must include a host: %s", what, raw)
	}

	return u, nil
}
