// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package name

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MaxLength is the longest directory name accepted, in bytes.
const MaxLength = 255

// reservedSuffix marks backup directories, which the registry never lists.
const reservedSuffix = ".backup"

// ErrInvalidName is returned for any name that fails validation.
var ErrInvalidName = errors.New("invalid package directory name")

// ValidateDirName checks that dir is safe to use as a single directory
// below the skills root.
func ValidateDirName(dir string) error {
	if dir == "" || strings.TrimSpace(dir) == "" {
		return fmt.Errorf("%w: cannot be empty or consist only of whitespace", ErrInvalidName)
	}
	if strings.Contains(dir, "\x00") {
		return fmt.Errorf("%w: cannot contain null bytes", ErrInvalidName)
	}
	if dir == "." || dir == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, dir)
	}
	if strings.ContainsAny(dir, `/\`) {
		return fmt.Errorf("%w: cannot contain path separators: %q", ErrInvalidName, dir)
	}
	if strings.IndexFunc(dir, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: cannot contain control characters: %q", ErrInvalidName, dir)
	}
	if strings.TrimSpace(dir) != dir {
		return fmt.Errorf("%w: cannot have leading or trailing whitespace: %q", ErrInvalidName, dir)
	}
	if strings.HasSuffix(strings.ToLower(dir), reservedSuffix) {
		return fmt.Errorf("%w: %q ends in the reserved suffix %s", ErrInvalidName, dir, reservedSuffix)
	}
	if len(dir) > MaxLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, MaxLength)
	}
	return nil
}
