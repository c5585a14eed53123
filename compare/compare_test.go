// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package compare

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/skillsmp/manifest"
	"github.com/stacklok/skillsmp/marketplace"
	"github.com/stacklok/skillsmp/registry"
)

type fakeSearcher struct {
	skills []marketplace.Record
	err    error
	got    marketplace.SearchParams
}

func (f *fakeSearcher) Search(_ context.Context, p marketplace.SearchParams) (*marketplace.SearchResult, error) {
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	return &marketplace.SearchResult{Skills: f.skills, Total: len(f.skills)}, nil
}

func TestFindRemoteMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		skills []marketplace.Record
		query  string
		want   string
	}{
		{
			name:   "exact case-insensitive match beats rank",
			skills: []marketplace.Record{{Name: "foo-skill-pro", Stars: 90}, {Name: "foo-skill", Stars: 10}},
			query:  "Foo-Skill",
			want:   "foo-skill",
		},
		{
			name:   "falls back to top result",
			skills: []marketplace.Record{{Name: "pdf-tools-2"}, {Name: "pdf"}},
			query:  "pdf-tools",
			want:   "pdf-tools-2",
		},
		{
			name:  "no results",
			query: "nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &fakeSearcher{skills: tt.skills}
			rec, err := FindRemoteMatch(context.Background(), s, tt.query)
			require.NoError(t, err)

			assert.Equal(t, tt.query, s.got.Query)
			assert.Equal(t, MatchLimit, s.got.Limit)
			assert.Equal(t, marketplace.SortStars, s.got.SortBy)

			if tt.want == "" {
				assert.Nil(t, rec)
				return
			}
			require.NotNil(t, rec)
			assert.Equal(t, tt.want, rec.Name)
		})
	}
}

func TestFindRemoteMatch_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := FindRemoteMatch(context.Background(), &fakeSearcher{err: boom}, "x")
	require.ErrorIs(t, err, boom)
}

func mustManifest(t *testing.T, fields map[string]string) *manifest.Manifest {
	t.Helper()
	var b strings.Builder
	b.WriteString("---\n")
	for k, v := range fields {
		fmt.Fprintf(&b, "%s: %q\n", k, v)
	}
	b.WriteString("---\n")
	m, err := manifest.Parse([]byte(b.String()))
	require.NoError(t, err)
	return m
}

func TestDiff_FieldPresence(t *testing.T) {
	t.Parallel()

	values := []string{"", "a", "b"}
	for _, fieldName := range []string{"name", "description", "author"} {
		for _, l := range values {
			for _, r := range values {
				t.Run(fmt.Sprintf("%s/%q/%q", fieldName, l, r), func(t *testing.T) {
					t.Parallel()

					local := mustManifest(t, map[string]string{fieldName: l})
					remote := &marketplace.Record{Stars: 7}
					switch fieldName {
					case "name":
						remote.Name = r
					case "description":
						remote.Description = r
					case "author":
						remote.Author = r
					}

					diffs := Diff(local, remote)
					require.NotEmpty(t, diffs)

					last := diffs[len(diffs)-1]
					assert.Equal(t, FieldDiff{Field: "stars", Remote: "7", Informational: true}, last)

					wantEntry := l != "" && r != "" && l != r
					if wantEntry {
						require.Len(t, diffs, 2)
						assert.Equal(t, FieldDiff{Field: fieldName, Local: l, Remote: r}, diffs[0])
						assert.True(t, HasChanges(diffs))
					} else {
						assert.Len(t, diffs, 1)
						assert.False(t, HasChanges(diffs))
					}
				})
			}
		}
	}
}

func TestDiff_OrderAndTruncation(t *testing.T) {
	t.Parallel()

	longLocal := strings.Repeat("é", 150)
	longRemote := strings.Repeat("x", 150)
	local := mustManifest(t, map[string]string{
		"author": "alice", "description": longLocal, "name": "pdf-tools",
	})
	remote := &marketplace.Record{Name: "pdf-tools-v2", Description: longRemote, Author: "bob", Stars: 3}

	diffs := Diff(local, remote)
	require.Len(t, diffs, 4)
	assert.Equal(t, []string{"name", "description", "author", "stars"},
		[]string{diffs[0].Field, diffs[1].Field, diffs[2].Field, diffs[3].Field})
	assert.Equal(t, 100, len([]rune(diffs[1].Local)))
	assert.Equal(t, 100, len(diffs[1].Remote))

	// Same result regardless of manifest key order.
	again := Diff(mustManifest(t, map[string]string{
		"name": "pdf-tools", "author": "alice", "description": longLocal,
	}), remote)
	assert.Equal(t, diffs, again)
}

func TestDiff_EqualAfterTruncation(t *testing.T) {
	t.Parallel()

	prefix := strings.Repeat("d", 100)
	local := mustManifest(t, map[string]string{"description": prefix + "local tail"})
	remote := &marketplace.Record{Description: prefix + "remote tail"}

	diffs := Diff(local, remote)
	assert.Len(t, diffs, 1)
}

func TestCompare(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "foo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"),
		[]byte("---\nname: Foo-Skill\nauthor: alice\n---\n"), 0o644))

	s := &fakeSearcher{skills: []marketplace.Record{{Name: "foo-skill", Author: "bob", Stars: 12}}}

	cmp, err := Compare(context.Background(), s, root, "FOO-skill")
	require.NoError(t, err)
	assert.True(t, cmp.Exact)
	assert.Equal(t, dir, cmp.Local.Dir)
	assert.Equal(t, "foo-skill", cmp.Remote.Name)
	// Names differ only in case, which is still reported.
	require.Len(t, cmp.Fields, 3)
	assert.Equal(t, "name", cmp.Fields[0].Field)
	assert.Equal(t, "author", cmp.Fields[1].Field)
	assert.True(t, cmp.Fields[2].Informational)

	_, err = Compare(context.Background(), &fakeSearcher{}, root, "foo-skill")
	require.ErrorIs(t, err, ErrNoRemoteMatch)

	_, err = Compare(context.Background(), s, root, "missing")
	require.ErrorIs(t, err, registry.ErrPackageNotFound)
}
