// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/skillsmp/marketplace"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := load("", filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, marketplace.DefaultBaseURL, cfg.APIBaseURL)
	assert.Equal(t, d.CredentialDir, cfg.CredentialDir)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.DownloadTimeout)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.SkillsDir)
	assert.Empty(t, cfg.File)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	p := writeConfig(t, `
api_base_url: https://staging.skillsmp.com/api/v1
skills_dir: /srv/skills
request_timeout: 3s
cache_ttl: 1h
log_format: json
log_level: debug
`)

	for _, tc := range []struct{ name, path, def string }{
		{name: "explicit", path: p},
		{name: "default location", def: p},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := load(tc.path, tc.def)
			require.NoError(t, err)
			assert.Equal(t, p, cfg.File)
			assert.Equal(t, "https://staging.skillsmp.com/api/v1", cfg.APIBaseURL)
			assert.Equal(t, "/srv/skills", cfg.SkillsDir)
			assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
			assert.Equal(t, 30*time.Second, cfg.DownloadTimeout)
			assert.Equal(t, time.Hour, cfg.CacheTTL)
			assert.Equal(t, "json", cfg.LogFormat)
			assert.Equal(t, "debug", cfg.LogLevel)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "bad base url", body: "api_base_url: ftp://example.com\n", wantErr: ErrInvalid},
		{name: "zero timeout", body: "request_timeout: 0s\n", wantErr: ErrInvalid},
		{name: "negative ttl", body: "cache_ttl: -1h\n", wantErr: ErrInvalid},
		{name: "bad format", body: "log_format: xml\n", wantErr: ErrInvalid},
		{name: "bad level", body: "log_level: loud\n", wantErr: ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := load(writeConfig(t, tt.body), "")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = load(writeConfig(t, "request_timeout: [unclosed\n"), "")
	require.Error(t, err)
}

// Environment overrides mutate process state, so this test is not parallel.
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SKILLSMP_SKILLS_DIR", "/env/skills")
	t.Setenv("SKILLSMP_DOWNLOAD_TIMEOUT", "45s")
	t.Setenv("SKILLSMP_LOG_LEVEL", "warn")

	p := writeConfig(t, "skills_dir: /file/skills\nlog_level: debug\n")
	cfg, err := load(p, "")
	require.NoError(t, err)
	assert.Equal(t, "/env/skills", cfg.SkillsDir)
	assert.Equal(t, 45*time.Second, cfg.DownloadTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
}
