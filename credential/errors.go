// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package credential

import "errors"

var (
	// ErrNoCredential is returned when no source yields a usable API key.
	ErrNoCredential = errors.New("no valid API key found")

	// ErrInvalidCredential is returned when a key cannot be sent in a header.
	ErrInvalidCredential = errors.New("invalid API key")
)

const remediation = `Please configure your API key using one of these methods:
1. Set environment variable ` + EnvKey + ` (recommended)
2. Create file: ` + DevFile + `
3. Edit file: ` + TemplateFile

// Error is returned by Resolve when no credential could be found.
type Error struct{}

// Error implements the error interface.
func (*Error) Error() string {
	return ErrNoCredential.Error() + "\n\n" + remediation
}

// Unwrap returns ErrNoCredential.
func (*Error) Unwrap() error {
	return ErrNoCredential
}
