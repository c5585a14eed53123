// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package httperr provides error types with HTTP status codes for client-side
error classification.

The marketplace gateway and the archive downloader both attach the status of
a failed response to the error they return, so that callers can distinguish
"not found at source" from "server unavailable" without string matching.

# Basic Usage

	err := httperr.FromStatus(ErrHTTPStatus, resp.StatusCode, detail)

	switch {
	case httperr.IsNotFound(err):
		// 404
	case httperr.Code(err) == 0:
		// no response was received at all
	}

# Error Wrapping

CodedError supports the standard Go error wrapping pattern:

	var coded *httperr.CodedError
	if errors.As(err, &coded) {
		log.Printf("HTTP %d: %s", coded.HTTPCode(), coded.Error())
	}
*/
package httperr
