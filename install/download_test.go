// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/skillsmp/env"
	"github.com/stacklok/skillsmp/httperr"
)

func TestHTTPDownloader_Download(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		wantCode int
	}{
		{name: "ok", status: http.StatusOK, body: "PK archive bytes"},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrNotFoundAtSource, wantCode: 404},
		{name: "server error", status: http.StatusInternalServerError, wantErr: ErrDownloadFailed, wantCode: 500},
		{name: "forbidden", status: http.StatusForbidden, wantErr: ErrDownloadFailed, wantCode: 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uaCh := make(chan string, 1)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				uaCh <- r.Header.Get("User-Agent")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			d := &HTTPDownloader{Client: srv.Client(), UserAgent: "skillsmp-test"}
			var buf bytes.Buffer
			err := d.Download(context.Background(), srv.URL+"/pkg.skill?token=secret", &buf)
			assert.Equal(t, "skillsmp-test", <-uaCh)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.body, buf.String())
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, httperr.Code(err))
			assert.NotContains(t, err.Error(), "secret")
		})
	}
}

func TestHTTPDownloader_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	d := &HTTPDownloader{Client: srv.Client(), Timeout: 50 * time.Millisecond}
	err := d.Download(context.Background(), srv.URL+"/slow.skill", &bytes.Buffer{})
	require.ErrorIs(t, err, ErrDownloadFailed)
	assert.Contains(t, err.Error(), "timed out")
	assert.Zero(t, httperr.Code(err))
}

func TestHTTPDownloader_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPDownloader(env.MapReader{}).Download(context.Background(), url+"/pkg.skill", &bytes.Buffer{})
	require.ErrorIs(t, err, ErrDownloadFailed)
	assert.Zero(t, httperr.Code(err))
}

func TestRedactURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://example.com/a.skill", redactURL("https://user:pw@example.com/a.skill?sig=abc#frag"))
	assert.Equal(t, "<invalid URL>", redactURL("http://[::1"))
}
