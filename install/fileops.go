// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileOps performs the destructive filesystem steps of an install. Each step
// is separate so tests can fail any one of them.
type FileOps interface {
	// CopyDir copies the tree at src to dst, which must not exist.
	CopyDir(src, dst string) error
	// RemoveAll removes path and everything below it.
	RemoveAll(path string) error
	// Extract unpacks a validated archive under destRoot and returns the
	// package directory it created.
	Extract(archivePath, destRoot string) (string, error)
}

// OSFileOps implements FileOps on the local filesystem.
type OSFileOps struct{}

// RemoveAll implements FileOps.
func (OSFileOps) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Extract implements FileOps.
func (OSFileOps) Extract(archivePath, destRoot string) (string, error) {
	return extractArchive(archivePath, destRoot)
}

// CopyDir implements FileOps. Regular files keep their permission bits and
// symlinks are recreated as links; other special files are skipped.
func (OSFileOps) CopyDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("copying %s: not a directory", src)
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("copying to %s: %w", dst, fs.ErrExist)
	}

	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			fi, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, fi.Mode().Perm()|0o700)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(p)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			fi, err := d.Info()
			if err != nil {
				return err
			}
			return copyFile(p, target, fi.Mode().Perm())
		default:
			return nil
		}
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm|0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
