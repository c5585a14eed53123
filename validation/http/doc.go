// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package http provides validation functions for HTTP header values and URLs.

# Header Validation

Credentials end up in an Authorization header, so they are checked before a
request is built:

	if err := http.ValidateBearerToken(key); err != nil {
		// refuse to send
	}

The validators check for CRLF injection attempts, control characters, and a
length limit of 8192 bytes.

# URL Validation

	if err := http.ValidateBaseURL("https://skillsmp.com/api/v1"); err != nil {
		// Handle invalid base URL
	}

Base URLs and download URLs must be absolute http or https URLs with a host.
Base URLs additionally may not carry a query or fragment.
*/
package http
