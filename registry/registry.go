// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/stacklok/skillsmp/manifest"
)

var (
	// ErrPackageNotFound is returned when no installed package has the requested name.
	ErrPackageNotFound = errors.New("package not found")

	// ErrRegistry is returned when the registry root cannot be set up.
	ErrRegistry = errors.New("registry error")
)

// BackupSuffix marks the transient backup copy of a package directory.
// Such directories are never listed as installed packages.
const BackupSuffix = ".backup"

// Package is an installed package directory.
type Package struct {
	// Name is the manifest name, the package identity.
	Name string
	// Dir is the absolute or root-relative package directory.
	Dir      string
	Manifest *manifest.Manifest
	// ModTime is the directory's modification time.
	ModTime time.Time
}

// ReadManifest reads the manifest of the package in dir. It returns nil, nil
// when the manifest is missing or unparseable, and an error only when the file
// exists but cannot be read.
func ReadManifest(dir string) (*manifest.Manifest, error) {
	m, err := manifest.ReadFile(filepath.Join(dir, manifest.FileName))
	if err == nil {
		return m, nil
	}
	var pe *manifest.ParseError
	if errors.Is(err, os.ErrNotExist) || errors.As(err, &pe) {
		return nil, nil
	}
	return nil, err
}

// ListInstalled returns the packages directly under root, sorted by directory
// name. Only subdirectories, or symlinks to directories, whose manifest
// yields a non-empty name qualify.
// A missing root yields an empty list.
func ListInstalled(root string) ([]Package, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading registry root %s: %w", root, err)
	}

	// os.ReadDir sorts by filename.
	var pkgs []Package
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), BackupSuffix) {
			continue
		}
		dir := filepath.Join(root, e.Name())
		// Stat follows symlinked package directories.
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		m, err := ReadManifest(dir)
		if err != nil || m == nil || m.Name() == "" {
			continue
		}
		pkgs = append(pkgs, Package{
			Name:     m.Name(),
			Dir:      dir,
			Manifest: m,
			ModTime:  info.ModTime(),
		})
	}
	return pkgs, nil
}

// Find returns the installed package whose manifest name equals name,
// ignoring case. When several match, the first by directory name wins.
func Find(root, name string) (*Package, error) {
	pkgs, err := ListInstalled(root)
	if err != nil {
		return nil, err
	}
	for i := range pkgs {
		if strings.EqualFold(pkgs[i].Name, name) {
			return &pkgs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
}

// Names returns the identities of pkgs, sorted case-insensitively.
func Names(pkgs []Package) []string {
	names := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		names = append(names, p.Name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}
