// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package marketplace

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/skillsmp/credential"
	"github.com/stacklok/skillsmp/env"
	"github.com/stacklok/skillsmp/httperr"
)

// newTestClient returns a client pointed at srv with a fixed credential.
func newTestClient(t *testing.T, srv *httptest.Server, opts ...ClientOption) *Client {
	t.Helper()
	base := []ClientOption{
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithResolver(&credential.Resolver{Sources: []credential.Source{credential.StaticSource("test-key")}}),
		WithEnvReader(env.MapReader{}),
	}
	c, err := NewClient(append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c, err := NewClient(WithEnvReader(env.MapReader{}))
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.timeout)
}

func TestNewClient_BaseURL(t *testing.T) {
	t.Parallel()

	c, err := NewClient(WithEnvReader(env.MapReader{BaseURLEnvKey: "http://localhost:9000/api/"}))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/api", c.BaseURL())

	c, err = NewClient(
		WithEnvReader(env.MapReader{BaseURLEnvKey: "http://localhost:9000/api"}),
		WithBaseURL("https://example.com/v2"),
	)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/v2", c.BaseURL())

	_, err = NewClient(WithBaseURL("ftp://example.com"))
	require.Error(t, err)
}

func TestRequest_Success(t *testing.T) {
	t.Parallel()

	reqs := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs <- r.Clone(context.Background())
		respond(http.StatusOK, `{"success":true,"data":{"skills":[],"extra":1}}`)(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, WithUserAgent("skillsmp-test"))
	out, err := c.Request(context.Background(), "/skills/search", url.Values{"q": {"pdf"}})
	require.NoError(t, err)

	assert.Equal(t, true, out["success"])
	assert.Contains(t, out, "data")

	got := <-reqs
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/skills/search", got.URL.Path)
	assert.Equal(t, "pdf", got.URL.Query().Get("q"))
	assert.Equal(t, "Bearer test-key", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "skillsmp-test", got.Header.Get("User-Agent"))
}

func TestRequest_ExplicitCredential(t *testing.T) {
	t.Parallel()

	auths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths <- r.Header.Get("Authorization")
		respond(http.StatusOK, `{"success":true}`)(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Request(context.Background(), "/x", nil, WithCredential("override"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer override", <-auths)
}

func TestRequest_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		sentinel error
		code     int
		contains string
	}{
		{
			name:     "unauthorized with message",
			handler:  respond(http.StatusUnauthorized, `{"error":{"message":"bad key"}}`),
			sentinel: ErrAuthenticationFailed,
			code:     http.StatusUnauthorized,
			contains: "bad key",
		},
		{
			name:     "unauthorized without json",
			handler:  respond(http.StatusUnauthorized, `nope`),
			sentinel: ErrAuthenticationFailed,
			code:     http.StatusUnauthorized,
			contains: "Invalid API key",
		},
		{
			name:     "server error",
			handler:  respond(http.StatusInternalServerError, `boom`),
			sentinel: ErrHTTPStatus,
			code:     http.StatusInternalServerError,
			contains: "HTTP 500",
		},
		{
			name:     "not found with error object",
			handler:  respond(http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"no such skill"}}`),
			sentinel: ErrHTTPStatus,
			code:     http.StatusNotFound,
			contains: "no such skill",
		},
		{
			name:     "non json success",
			handler:  respond(http.StatusOK, `<html></html>`),
			sentinel: ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestClient(t, srv).Request(context.Background(), "/skills/search", nil)
			require.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.code, httperr.Code(err))
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestRequest_AuthErrorMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(respond(http.StatusUnauthorized, `{"error":{"message":"bad key"}}`))
	defer srv.Close()

	_, err := newTestClient(t, srv).Request(context.Background(), "/skills/search", nil)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "bad key", authErr.Message)
}

func TestRequest_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
		respond(http.StatusOK, `{}`)(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Request(context.Background(), "/slow", nil, WithRequestTimeout(50*time.Millisecond))
	require.ErrorIs(t, err, ErrRequestTimeout)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 50*time.Millisecond, te.Timeout)
	assert.Equal(t, 0, httperr.Code(err))
}

func TestRequest_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(respond(http.StatusOK, `{}`))
	c := newTestClient(t, srv)
	srv.Close()

	_, err := c.Request(context.Background(), "/x", nil)
	require.ErrorIs(t, err, ErrTransport)
	assert.False(t, errors.Is(err, ErrRequestTimeout))
}

func TestRequest_CredentialFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("request should not be sent")
	}))
	defer srv.Close()

	c := newTestClient(t, srv, WithResolver(&credential.Resolver{}))
	_, err := c.Request(context.Background(), "/x", nil)
	require.ErrorIs(t, err, credential.ErrNoCredential)

	_, err = c.Request(context.Background(), "/x", nil, WithCredential("bad\r\nkey"))
	require.ErrorIs(t, err, credential.ErrInvalidCredential)
}

func TestProxyFunc(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ProxyFunc(env.MapReader{}))

	fn := ProxyFunc(env.MapReader{
		"https_proxy": "http://proxy.internal:3128",
		"NO_PROXY":    "internal.example.com",
	})
	require.NotNil(t, fn)

	req, err := http.NewRequest(http.MethodGet, "https://skillsmp.com/api/v1/skills/search", nil)
	require.NoError(t, err)
	u, err := fn(req)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "proxy.internal:3128", u.Host)

	req, err = http.NewRequest(http.MethodGet, "https://internal.example.com/x", nil)
	require.NoError(t, err)
	u, err = fn(req)
	require.NoError(t, err)
	assert.Nil(t, u)

	// Only an HTTPS proxy is set, so plain http goes direct.
	req, err = http.NewRequest(http.MethodGet, "http://skillsmp.com/x", nil)
	require.NoError(t, err)
	u, err = fn(req)
	require.NoError(t, err)
	assert.Nil(t, u)
}
