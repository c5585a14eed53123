// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchParams_Values(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  SearchParams
		want    map[string]string
		wantErr bool
	}{
		{
			name:   "defaults",
			params: SearchParams{Query: "pdf"},
			want:   map[string]string{"q": "pdf", "page": "1", "limit": "20", "sortBy": "stars"},
		},
		{
			name:   "limit capped",
			params: SearchParams{Query: "pdf", Page: 3, Limit: 500, SortBy: SortRecent},
			want:   map[string]string{"q": "pdf", "page": "3", "limit": "100", "sortBy": "recent"},
		},
		{
			name:    "empty query",
			params:  SearchParams{Query: "  "},
			wantErr: true,
		},
		{
			name:    "bad sort",
			params:  SearchParams{Query: "pdf", SortBy: "downloads"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := tt.params.Values()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidParams)
				return
			}
			require.NoError(t, err)
			for k, want := range tt.want {
				assert.Equal(t, want, v.Get(k), k)
			}
		})
	}
}

func TestClient_Search(t *testing.T) {
	t.Parallel()

	queries := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, SearchEndpoint, r.URL.Path)
		queries <- r.URL.RawQuery
		respond(http.StatusOK, `{
			"success": true,
			"data": {
				"skills": [
					{"id":"1","name":"pdf-tools","author":"acme","stars":42,"updatedAt":1712345678,
					 "githubUrl":"https://github.com/acme/skills","description":"PDFs"},
					{"id":"2","name":"pdf-lite","stars":3,"updatedAt":"2024-04-05T19:34:38Z","repository_url":"https://github.com/b/c"}
				],
				"total": 2
			}
		}`)(w, r)
	}))
	defer srv.Close()

	res, err := newTestClient(t, srv).Search(context.Background(), SearchParams{Query: "pdf", Limit: 5})
	require.NoError(t, err)

	assert.Contains(t, <-queries, "limit=5")
	require.Len(t, res.Skills, 2)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, "pdf-tools", res.Skills[0].Name)
	assert.Equal(t, 42, res.Skills[0].Stars)
	assert.Equal(t, Timestamp(1712345678), res.Skills[0].UpdatedAt)
	assert.Equal(t, "https://github.com/acme/skills", res.Skills[0].SourceURL())
	assert.Equal(t, "https://github.com/b/c", res.Skills[1].SourceURL())
	assert.Equal(t, Timestamp(1712345678), res.Skills[1].UpdatedAt)
}

func TestClient_Search_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(respond(http.StatusOK,
		`{"success":false,"error":{"code":"RATE_LIMITED","message":"slow down"}}`))
	defer srv.Close()

	_, err := newTestClient(t, srv).Search(context.Background(), SearchParams{Query: "pdf"})
	require.ErrorIs(t, err, ErrAPIFailure)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "RATE_LIMITED", apiErr.Code)
	assert.Contains(t, err.Error(), "slow down")
}

func TestClient_Search_InvalidEnvelope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"missing success", `{"data":{"skills":[]}}`},
		{"negative stars", `{"success":true,"data":{"skills":[{"name":"x","stars":-1}]}}`},
		{"skill without name", `{"success":true,"data":{"skills":[{"stars":1}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(respond(http.StatusOK, tt.body))
			defer srv.Close()

			_, err := newTestClient(t, srv).Search(context.Background(), SearchParams{Query: "pdf"})
			require.ErrorIs(t, err, ErrInvalidResponse)
		})
	}
}

func TestClient_AISearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, AISearchEndpoint, r.URL.Path)
		assert.Equal(t, "tools for reading pdfs", r.URL.Query().Get("q"))
		respond(http.StatusOK, `{"success":true,"data":{"skills":[{"name":"pdf-tools","relevance_score":0.92}]}}`)(w, r)
	}))
	defer srv.Close()

	res, err := newTestClient(t, srv).AISearch(context.Background(), "tools for reading pdfs")
	require.NoError(t, err)
	require.Len(t, res.Skills, 1)
	assert.InDelta(t, 0.92, res.Skills[0].RelevanceScore, 1e-9)
	assert.Equal(t, 1, res.Total)

	_, err = newTestClient(t, srv).AISearch(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestClient_Details(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"wrapped", `{"success":true,"data":{"skill":{"id":"abc","name":"pdf-tools","tags":["pdf"]}}}`},
		{"flat", `{"success":true,"data":{"id":"abc","name":"pdf-tools","tags":["pdf"]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "abc", r.URL.Query().Get("id"))
				respond(http.StatusOK, tt.body)(w, r)
			}))
			defer srv.Close()

			rec, err := newTestClient(t, srv).Details(context.Background(), "abc")
			require.NoError(t, err)
			assert.Equal(t, "pdf-tools", rec.Name)
			assert.Equal(t, []string{"pdf"}, rec.Tags)
		})
	}
}

func TestClient_CheckUpdates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, CheckUpdatesEndpoint, r.URL.Path)
		assert.Equal(t, "pdf-tools", r.URL.Query().Get("skill"))
		respond(http.StatusOK, `{"success":true,"data":{"hasUpdate":true,"latestVersion":"1.1.0"}}`)(w, r)
	}))
	defer srv.Close()

	out, err := newTestClient(t, srv).CheckUpdates(context.Background(), "pdf-tools")
	require.NoError(t, err)
	assert.Equal(t, true, out["hasUpdate"])
	assert.Equal(t, "1.1.0", out["latestVersion"])
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Timestamp
		wantErr bool
	}{
		{`1712345678`, 1712345678, false},
		{`1712345678.9`, 1712345678, false},
		{`"1712345678"`, 1712345678, false},
		{`"2024-04-05T19:34:38Z"`, 1712345678, false},
		{`null`, 0, false},
		{`""`, 0, false},
		{`"yesterday"`, 0, true},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.in), &ts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ts)
		})
	}

	assert.True(t, Timestamp(0).Time().IsZero())
	assert.Equal(t, time.Unix(1712345678, 0), Timestamp(1712345678).Time())
}
