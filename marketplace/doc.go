// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package marketplace is the HTTP gateway to the SkillsMP marketplace API.

Every call is an authenticated GET with a bearer token, an optional proxy
taken from HTTP_PROXY/HTTPS_PROXY/NO_PROXY, and a timeout (10 seconds by
default). Failures are classified so callers can branch on them:

	*TimeoutError    errors.Is(err, ErrRequestTimeout)
	*AuthError       errors.Is(err, ErrAuthenticationFailed), HTTP 401
	coded error      errors.Is(err, ErrHTTPStatus), httperr.Code(err) is the status
	*TransportError  errors.Is(err, ErrTransport), no response received
	                 errors.Is(err, ErrInvalidResponse), 2xx but not JSON

# Basic Usage

	client, err := marketplace.NewClient(
	    marketplace.WithLogger(logger),
	)
	if err != nil {
	    return err
	}

	res, err := client.Search(ctx, marketplace.SearchParams{Query: "pdf", Limit: 5})
	for _, rec := range res.Skills {
	    fmt.Println(rec.Name, rec.Stars)
	}

Request returns the decoded body untouched. The typed helpers (Search,
AISearch, Details, CheckUpdates) additionally validate the response envelope
against an embedded JSON Schema and turn success=false into an *APIError.
*/
package marketplace
