// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacklok/skillsmp/httperr"
)

type zipEntry struct {
	name string
	body string
	mode fs.FileMode
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		switch {
		case e.mode != 0:
			hdr.SetMode(e.mode)
		case strings.HasSuffix(e.name, "/"):
			hdr.SetMode(fs.ModeDir | 0o755)
		default:
			hdr.SetMode(0o644)
		}
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		if e.body != "" {
			_, err = w.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeArchive(t *testing.T, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pkg.skill")
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func skillArchive(t *testing.T, dir, name, version string) []byte {
	t.Helper()
	return buildZip(t,
		zipEntry{name: dir + "/SKILL.md", body: "---\nname: " + name + "\nversion: " + version + "\n---\n# " + name + "\n"},
		zipEntry{name: dir + "/scripts/run.sh", body: "echo " + version + "\n", mode: 0o755},
	)
}

func installSkillDir(t *testing.T, root, dir, name, version string) string {
	t.Helper()
	p := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(p, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p, "SKILL.md"),
		[]byte("---\nname: "+name+"\nversion: "+version+"\n---\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(p, "scripts", "run.sh"), []byte("echo "+version+"\n"), 0o755))
	return p
}

// snapshot maps relative path to content for every file under dir.
func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// fakeDownloader serves archives from memory.
type fakeDownloader struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
	urls  []string
}

func (f *fakeDownloader) Download(_ context.Context, rawURL string, w io.Writer) error {
	f.mu.Lock()
	f.urls = append(f.urls, rawURL)
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	data, ok := f.files[rawURL]
	if !ok {
		return httperr.FromStatus(ErrNotFoundAtSource, 404, rawURL)
	}
	_, err := w.Write(data)
	return err
}

// faultyOps wraps OSFileOps and fails selected steps.
type faultyOps struct {
	OSFileOps

	copyCalls   int
	failCopyOn  map[int]error // call number (1-based) -> error
	failRemove  map[string]error
	failExtract error
}

func (f *faultyOps) CopyDir(src, dst string) error {
	f.copyCalls++
	if err, ok := f.failCopyOn[f.copyCalls]; ok {
		return err
	}
	return f.OSFileOps.CopyDir(src, dst)
}

func (f *faultyOps) RemoveAll(path string) error {
	if err, ok := f.failRemove[path]; ok {
		return err
	}
	return f.OSFileOps.RemoveAll(path)
}

func (f *faultyOps) Extract(archivePath, destRoot string) (string, error) {
	if f.failExtract != nil {
		return "", f.failExtract
	}
	return f.OSFileOps.Extract(archivePath, destRoot)
}

var errInjected = errors.New("injected failure")
