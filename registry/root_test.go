// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/skillsmp/env"
)

func TestResolver_Candidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		r    Resolver
		want []string
	}{
		{
			name: "linux",
			r:    Resolver{Home: "/home/u", DataHome: "/home/u/.local/share", GOOS: "linux"},
			want: []string{
				filepath.Join("/home/u", ".claude", "skills"),
				filepath.Join("/home/u/.local/share", "claude", "skills"),
			},
		},
		{
			name: "darwin",
			r:    Resolver{Home: "/Users/u", GOOS: "darwin"},
			want: []string{
				filepath.Join("/Users/u", ".claude", "skills"),
				filepath.Join("/Users/u", "Library", "Application Support", "Claude", "skills"),
			},
		},
		{
			name: "windows",
			r:    Resolver{Home: "/c/u", AppData: "/c/u/AppData/Roaming", GOOS: "windows"},
			want: []string{
				filepath.Join("/c/u", ".claude", "skills"),
				filepath.Join("/c/u/AppData/Roaming", "Claude", "skills"),
			},
		},
		{
			name: "windows without appdata",
			r:    Resolver{Home: "/c/u", GOOS: "windows"},
			want: []string{filepath.Join("/c/u", ".claude", "skills")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.r.Candidates())
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("explicit wins", func(t *testing.T) {
		t.Parallel()
		got, err := Resolver{Home: t.TempDir()}.Resolve("/custom/skills")
		require.NoError(t, err)
		assert.Equal(t, "/custom/skills", got)
	})

	t.Run("existing alternate", func(t *testing.T) {
		t.Parallel()
		home := t.TempDir()
		data := t.TempDir()
		alt := filepath.Join(data, "claude", "skills")
		require.NoError(t, os.MkdirAll(alt, 0o755))

		got, err := Resolver{Home: home, DataHome: data, GOOS: "linux"}.Resolve("")
		require.NoError(t, err)
		assert.Equal(t, alt, got)
	})

	t.Run("primary preferred", func(t *testing.T) {
		t.Parallel()
		home := t.TempDir()
		data := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(data, "claude", "skills"), 0o755))
		require.NoError(t, os.MkdirAll(filepath.Join(home, ".claude", "skills"), 0o755))

		got, err := Resolver{Home: home, DataHome: data, GOOS: "linux"}.Resolve("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".claude", "skills"), got)
	})

	t.Run("creates primary", func(t *testing.T) {
		t.Parallel()
		home := t.TempDir()
		got, err := Resolver{Home: home, GOOS: "linux"}.Resolve("")
		require.NoError(t, err)
		assert.DirExists(t, got)
		assert.Equal(t, filepath.Join(home, ".claude", "skills"), got)
	})

	t.Run("creation failure", func(t *testing.T) {
		t.Parallel()
		// A regular file where the home directory should be.
		home := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(home, []byte("x"), 0o644))

		_, err := Resolver{Home: home, GOOS: "linux"}.Resolve("")
		require.ErrorIs(t, err, ErrRegistry)
		var rootErr *RootError
		require.ErrorAs(t, err, &rootErr)
		assert.Equal(t, filepath.Join(home, ".claude", "skills"), rootErr.Path)
	})
}

func TestDefaultResolver(t *testing.T) {
	t.Parallel()

	r := DefaultResolver(env.MapReader{"APPDATA": `C:\Users\u\AppData\Roaming`})
	assert.NotEmpty(t, r.Home)
	assert.NotEmpty(t, r.GOOS)
	assert.Equal(t, `C:\Users\u\AppData\Roaming`, r.AppData)
}
