// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"errors"
	"fmt"

	"github.com/stacklok/skillsmp/registry"
)

var (
	// ErrPackageNotFound is returned when the package to update is not installed.
	ErrPackageNotFound = registry.ErrPackageNotFound

	// ErrNoDownloadSource is returned when no archive URL is given or inferable.
	ErrNoDownloadSource = errors.New("no download URL available")

	// ErrNotFoundAtSource is returned when the archive URL answers 404.
	ErrNotFoundAtSource = errors.New("package not found at source")

	// ErrDownloadFailed is returned for any other download failure.
	ErrDownloadFailed = errors.New("download failed")

	// ErrInvalidPackage is returned when the archive fails validation.
	ErrInvalidPackage = errors.New("invalid skill package")

	// ErrReplaceFailed is returned when the installed directory could not be
	// replaced. See ReplaceError for whether the old content was restored.
	ErrReplaceFailed = errors.New("replacing installed package failed")

	// ErrRestoreFailed is returned when a failed replacement could not be
	// rolled back. The registry then holds neither the old nor the new
	// package and needs manual recovery from the backup.
	ErrRestoreFailed = errors.New("restoring package from backup failed")

	// ErrAlreadyInstalled is returned by Install when the target directory
	// exists or the package name is installed under another directory.
	ErrAlreadyInstalled = errors.New("package already installed")

	// ErrTargetOccupied is returned when the archive's directory is held by
	// a different installed directory than the one being replaced.
	ErrTargetOccupied = errors.New("install directory is occupied")
)

// ReplaceError reports a failed REPLACE step. Restored is true when the
// previous installation was put back from its backup.
type ReplaceError struct {
	Path     string
	Restored bool
	Err      error
}

// Error implements the error interface.
func (e *ReplaceError) Error() string {
	if e.Restored {
		return fmt.Sprintf("%s: %s: %v (previous version restored from backup)", ErrReplaceFailed, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrReplaceFailed, e.Path, e.Err)
}

// Unwrap returns ErrReplaceFailed and the underlying cause.
func (e *ReplaceError) Unwrap() []error {
	return []error{ErrReplaceFailed, e.Err}
}

// RestoreError reports a rollback that failed after the old directory was removed.
type RestoreError struct {
	Backup     string
	Target     string
	ReplaceErr error
	RestoreErr error
}

// Error implements the error interface.
func (e *RestoreError) Error() string {
	return fmt.Sprintf("%s: could not copy %s back to %s: %v (install failed with: %v)",
		ErrRestoreFailed, e.Backup, e.Target, e.RestoreErr, e.ReplaceErr)
}

// Unwrap returns ErrRestoreFailed and both causes.
func (e *RestoreError) Unwrap() []error {
	return []error{ErrRestoreFailed, e.ReplaceErr, e.RestoreErr}
}

// IsSevere reports whether err means the registry may be left without either
// version of a package.
func IsSevere(err error) bool {
	return errors.Is(err, ErrRestoreFailed)
}
