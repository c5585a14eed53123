// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFrontMatter is returned when the file does not open with "---".
	ErrNoFrontMatter = errors.New("manifest must start with front matter (---)")

	// ErrUnterminated is returned when the closing "---" line is missing.
	ErrUnterminated = errors.New("front matter missing closing delimiter (---)")

	// ErrTooLarge is returned when the front-matter block exceeds MaxFrontMatterSize.
	ErrTooLarge = errors.New("front matter too large")

	// ErrInvalidYAML is returned when the block is not a YAML mapping.
	ErrInvalidYAML = errors.New("invalid front matter YAML")
)

// ParseError describes a manifest that could not be parsed.
type ParseError struct {
	// Path is the manifest file, empty when parsing raw bytes.
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parsing manifest: %v", e.Err)
	}
	return fmt.Sprintf("parsing manifest %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
