// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/stacklok/skillsmp/manifest"
	"github.com/stacklok/skillsmp/validation/name"
)

// MaxArchiveFileSize is the maximum size of a single file in a package (100MB).
// This prevents decompression bombs.
const MaxArchiveFileSize = 100 * 1024 * 1024

// macOS archivers add this directory; it is never part of a package.
const resourceForkDir = "__MACOSX/"

// Layout describes where a validated archive will be installed.
type Layout struct {
	// Name is the directory name the package installs under.
	Name string
	// Flat is true when files sit at the archive root rather than under a
	// single top-level directory.
	Flat bool
	// Entries is the number of entries considered.
	Entries int
	// Manifest is the package manifest when one was found at the package root.
	Manifest *manifest.Manifest
}

type archiveEntry struct {
	file *zip.File
	name string // normalized, slash-separated
}

// Inspect validates the zip archive at archivePath and works out its layout.
// The archive must open, hold at least one entry, and contain no traversal
// paths, absolute paths, links, or files over MaxArchiveFileSize. The first
// entry's first path segment names the package. When the first entry is a
// root-level file, or entries do not share one top-level directory, the
// archive is flat and the name comes from the SKILL.md at its root.
func Inspect(archivePath string) (*Layout, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid zip archive: %w", ErrInvalidPackage, err)
	}
	defer func() { _ = r.Close() }()
	return inspect(&r.Reader)
}

func inspect(r *zip.Reader) (*Layout, error) {
	entries, err := collectEntries(r)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty archive", ErrInvalidPackage)
	}

	first := entries[0].name
	layout := &Layout{Entries: len(entries)}
	if top, _, nested := strings.Cut(first, "/"); nested {
		layout.Name = top
	} else {
		layout.Flat = true
	}

	if !layout.Flat {
		prefix := layout.Name + "/"
		for _, e := range entries {
			if !strings.HasPrefix(e.name, prefix) {
				// Several top-level entries: treat as a flat package.
				layout.Name = ""
				layout.Flat = true
				break
			}
		}
	}

	manifestPath := manifest.FileName
	if !layout.Flat {
		manifestPath = layout.Name + "/" + manifest.FileName
	}
	for _, e := range entries {
		if e.name != manifestPath {
			continue
		}
		m, err := readManifest(e.file)
		if err != nil {
			return nil, err
		}
		layout.Manifest = m
		break
	}

	if layout.Flat {
		if layout.Manifest == nil || layout.Manifest.Name() == "" {
			return nil, fmt.Errorf("%w: flat archive has no %s with a name", ErrInvalidPackage, manifest.FileName)
		}
		layout.Name = layout.Manifest.Name()
	}
	if err := validateDirName(layout.Name); err != nil {
		return nil, err
	}
	return layout, nil
}

func collectEntries(r *zip.Reader) ([]archiveEntry, error) {
	entries := make([]archiveEntry, 0, len(r.File))
	for _, f := range r.File {
		entryName := strings.ReplaceAll(f.Name, `\`, "/")
		if strings.HasPrefix(entryName, resourceForkDir) {
			continue
		}
		if err := validateEntryPath(entryName); err != nil {
			return nil, err
		}

		mode := f.Mode()
		if mode&fs.ModeSymlink != 0 {
			return nil, fmt.Errorf("%w: archive contains disallowed link: %s", ErrInvalidPackage, f.Name)
		}
		if !mode.IsDir() && !mode.IsRegular() {
			return nil, fmt.Errorf("%w: archive contains disallowed entry type %s: %s", ErrInvalidPackage, mode.Type(), f.Name)
		}
		if f.UncompressedSize64 > MaxArchiveFileSize {
			return nil, fmt.Errorf("%w: file %s exceeds maximum size of %d bytes", ErrInvalidPackage, f.Name, MaxArchiveFileSize)
		}
		entries = append(entries, archiveEntry{file: f, name: entryName})
	}
	return entries, nil
}

// validateEntryPath checks that an archive entry path is safe.
func validateEntryPath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty entry name", ErrInvalidPackage)
	}
	// path.Clean resolves all ".." segments; any remaining leading ".."
	// means the path escapes the archive root.
	cleaned := path.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("%w: path traversal detected in archive: %s", ErrInvalidPackage, p)
	}
	if path.IsAbs(cleaned) || filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return fmt.Errorf("%w: absolute path not allowed in archive: %s", ErrInvalidPackage, p)
	}
	return nil
}

func validateDirName(dir string) error {
	if err := name.ValidateDirName(dir); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPackage, err)
	}
	return nil
}

func readManifest(f *zip.File) (*manifest.Manifest, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrInvalidPackage, f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, MaxArchiveFileSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalidPackage, f.Name, err)
	}
	m, err := manifest.Parse(data)
	if err != nil {
		// A nested package with a malformed manifest still installs; only
		// flat archives need the name from it.
		return nil, nil //nolint:nilerr
	}
	return m, nil
}

// extractArchive unpacks archivePath into destRoot/<layout name> and returns
// that directory. The destination must not exist; on failure anything
// written is removed.
func extractArchive(archivePath, destRoot string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("%w: not a valid zip archive: %w", ErrInvalidPackage, err)
	}
	defer func() { _ = r.Close() }()

	layout, err := inspect(&r.Reader)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(destRoot, layout.Name)
	if _, err := os.Lstat(dest); err == nil {
		return "", fmt.Errorf("extracting into %s: %w", dest, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("checking %s: %w", dest, err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dest, err)
	}

	entries, err := collectEntries(&r.Reader)
	if err != nil {
		_ = os.RemoveAll(dest)
		return "", err
	}
	for _, e := range entries {
		rel := e.name
		if !layout.Flat {
			rel = strings.TrimPrefix(rel, layout.Name+"/")
		}
		if rel == "" {
			continue
		}
		if err := extractEntry(e.file, dest, rel); err != nil {
			_ = os.RemoveAll(dest)
			return "", err
		}
	}
	return dest, nil
}

func extractEntry(f *zip.File, dest, rel string) error {
	target := filepath.Join(dest, filepath.FromSlash(rel))
	if target != dest && !strings.HasPrefix(target, dest+string(filepath.Separator)) {
		return fmt.Errorf("%w: path traversal detected in archive: %s", ErrInvalidPackage, f.Name)
	}

	if f.Mode().IsDir() || strings.HasSuffix(rel, "/") {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm|0o600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", rel, err)
	}

	// Use LimitReader to enforce the limit during reading
	n, err := io.Copy(out, io.LimitReader(rc, MaxArchiveFileSize+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if n > MaxArchiveFileSize {
		return fmt.Errorf("%w: file %s exceeds maximum size of %d bytes", ErrInvalidPackage, f.Name, MaxArchiveFileSize)
	}
	return nil
}
