// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/stacklok/skillsmp/env"
)

const (
	// EnvKey is the environment variable holding the marketplace API key.
	EnvKey = "SKILLSMP_API_KEY"

	// DevFile is the development override, relative to the install root.
	DevFile = "references/api_key_real.txt"

	// TemplateFile is the shipped template, relative to the install root.
	TemplateFile = "references/api_key.txt"

	// PlaceholderMarker is the text an unconfigured template still contains.
	PlaceholderMarker = "your_api_key_here"
)

// Source is one place a credential may come from. Lookup reports ok=false when
// the source holds no usable value; a non-nil error means the source exists but
// could not be read.
type Source interface {
	Lookup() (value string, ok bool, err error)
}

// EnvSource reads the credential from an environment variable.
type EnvSource struct {
	Key    string
	Reader env.Reader
}

// Lookup implements Source.
func (s EnvSource) Lookup() (string, bool, error) {
	r := s.Reader
	if r == nil {
		r = &env.OSReader{}
	}
	v := strings.TrimSpace(r.Getenv(s.Key))
	return v, v != "", nil
}

// StaticSource is a fixed value, such as one taken from a command-line flag.
type StaticSource string

// Lookup implements Source.
func (s StaticSource) Lookup() (string, bool, error) {
	v := strings.TrimSpace(string(s))
	return v, v != "", nil
}

// FileSource reads the credential from a file. Empty files and values starting
// with '#' are treated as absent, as is any value containing one of Reject.
type FileSource struct {
	Path   string
	Reject []string
}

// Lookup implements Source.
func (s FileSource) Lookup() (string, bool, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading credential file %s: %w", s.Path, err)
	}

	v := strings.TrimSpace(string(data))
	if v == "" || strings.HasPrefix(v, "#") {
		return "", false, nil
	}
	for _, marker := range s.Reject {
		if strings.Contains(v, marker) {
			return "", false, nil
		}
	}
	return v, true, nil
}

// DefaultBaseDir returns the default install root under the XDG config home.
func DefaultBaseDir() string {
	return filepath.Join(xdg.ConfigHome, "skillsmp")
}

// DefaultSources returns the standard lookup order: environment variable,
// development file, then template file. An empty baseDir uses DefaultBaseDir.
func DefaultSources(baseDir string, r env.Reader) []Source {
	if baseDir == "" {
		baseDir = DefaultBaseDir()
	}
	return []Source{
		EnvSource{Key: EnvKey, Reader: r},
		FileSource{Path: filepath.Join(baseDir, filepath.FromSlash(DevFile))},
		FileSource{
			Path:   filepath.Join(baseDir, filepath.FromSlash(TemplateFile)),
			Reject: []string{PlaceholderMarker},
		},
	}
}

// Resolver tries an ordered list of sources.
type Resolver struct {
	Sources []Source
}

// NewResolver returns a Resolver over the default sources rooted at baseDir.
func NewResolver(baseDir string, r env.Reader) *Resolver {
	return &Resolver{Sources: DefaultSources(baseDir, r)}
}

// Resolve returns explicit when it is non-empty, otherwise the first value
// produced by the sources in order. It fails with an *Error wrapping
// ErrNoCredential when nothing yields a value.
func (r *Resolver) Resolve(explicit string) (string, error) {
	if v := strings.TrimSpace(explicit); v != "" {
		return v, nil
	}
	if r == nil {
		return "", &Error{}
	}
	for _, src := range r.Sources {
		v, ok, err := src.Lookup()
		if err != nil {
			return "", err
		}
		if ok {
			return v, nil
		}
	}
	return "", &Error{}
}
