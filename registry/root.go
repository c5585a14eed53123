// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"

	"github.com/stacklok/skillsmp/env"
)

// RootError reports a registry root that could not be created.
type RootError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *RootError) Error() string {
	return fmt.Sprintf("%s: creating skills directory %s: %v", ErrRegistry, e.Path, e.Err)
}

// Unwrap returns ErrRegistry and the underlying cause.
func (e *RootError) Unwrap() []error {
	return []error{ErrRegistry, e.Err}
}

// Resolver locates the registry root. Fields are injectable for tests; use
// DefaultResolver for the current user.
type Resolver struct {
	Home     string
	DataHome string
	AppData  string
	GOOS     string
}

// DefaultResolver describes the current user and platform.
func DefaultResolver(r env.Reader) Resolver {
	if r == nil {
		r = &env.OSReader{}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = xdg.Home
	}
	return Resolver{
		Home:     home,
		DataHome: xdg.DataHome,
		AppData:  r.Getenv("APPDATA"),
		GOOS:     runtime.GOOS,
	}
}

// Primary is the conventional root, created when nothing else exists.
func (r Resolver) Primary() string {
	return filepath.Join(r.Home, ".claude", "skills")
}

// Candidates returns the primary root followed by the platform alternates.
func (r Resolver) Candidates() []string {
	out := []string{r.Primary()}
	switch r.GOOS {
	case "darwin":
		out = append(out, filepath.Join(r.Home, "Library", "Application Support", "Claude", "skills"))
	case "windows":
		if r.AppData != "" {
			out = append(out, filepath.Join(r.AppData, "Claude", "skills"))
		}
	default:
		if r.DataHome != "" {
			out = append(out, filepath.Join(r.DataHome, "claude", "skills"))
		}
	}
	return out
}

// Resolve returns explicit when set, otherwise the first existing candidate.
// If none exists the primary root is created.
func (r Resolver) Resolve(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, c := range r.Candidates() {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c, nil
		}
	}
	primary := r.Primary()
	if err := os.MkdirAll(primary, 0o755); err != nil {
		return "", &RootError{Path: primary, Err: err}
	}
	return primary, nil
}

// ResolveRoot resolves the registry root for the current user.
func ResolveRoot(explicit string) (string, error) {
	return DefaultResolver(nil).Resolve(explicit)
}
