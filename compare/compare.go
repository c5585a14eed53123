// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package compare

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stacklok/skillsmp/manifest"
	"github.com/stacklok/skillsmp/marketplace"
	"github.com/stacklok/skillsmp/registry"
)

// MatchLimit is how many search results are considered when matching a name.
const MatchLimit = 5

// maxDescriptionLen is the number of runes of a description kept in a diff.
const maxDescriptionLen = 100

// ErrNoRemoteMatch is returned by Compare when the search found nothing.
var ErrNoRemoteMatch = errors.New("no matching skill in the marketplace")

// Searcher runs a marketplace keyword search. *marketplace.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, p marketplace.SearchParams) (*marketplace.SearchResult, error)
}

// FindRemoteMatch searches for name and returns the result whose name equals
// it ignoring case, else the top result, else nil.
func FindRemoteMatch(ctx context.Context, s Searcher, name string) (*marketplace.Record, error) {
	res, err := s.Search(ctx, marketplace.SearchParams{
		Query:  name,
		Limit:  MatchLimit,
		SortBy: marketplace.SortStars,
	})
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.Skills) == 0 {
		return nil, nil
	}
	for i := range res.Skills {
		if strings.EqualFold(res.Skills[i].Name, name) {
			return &res.Skills[i], nil
		}
	}
	return &res.Skills[0], nil
}

// FieldDiff is one reported difference between a local and a remote package.
type FieldDiff struct {
	Field  string `json:"field"`
	Local  string `json:"local,omitempty"`
	Remote string `json:"remote"`
	// Informational marks entries with no local counterpart. They are
	// reported for display and do not indicate a change.
	Informational bool `json:"informational,omitempty"`
}

// Diff compares name, description and author, reporting a field only when
// both sides are non-empty and differ. A final informational stars entry is
// always appended. Descriptions are truncated to 100 runes.
func Diff(local *manifest.Manifest, remote *marketplace.Record) []FieldDiff {
	var out []FieldDiff
	if remote == nil {
		return out
	}

	add := func(field, l, r string) {
		if l != "" && r != "" && l != r {
			out = append(out, FieldDiff{Field: field, Local: l, Remote: r})
		}
	}
	add("name", local.Name(), strings.TrimSpace(remote.Name))
	add("description",
		truncate(local.Description(), maxDescriptionLen),
		truncate(strings.TrimSpace(remote.Description), maxDescriptionLen))
	add("author", local.Author(), strings.TrimSpace(remote.Author))

	out = append(out, FieldDiff{
		Field:         "stars",
		Remote:        strconv.Itoa(remote.Stars),
		Informational: true,
	})
	return out
}

// HasChanges reports whether diffs holds any non-informational entry.
func HasChanges(diffs []FieldDiff) bool {
	for _, d := range diffs {
		if !d.Informational {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Comparison is the result of comparing one installed package with the marketplace.
type Comparison struct {
	Local  registry.Package
	Remote *marketplace.Record
	// Exact is false when Remote is only the best search hit.
	Exact  bool
	Fields []FieldDiff
}

// Compare looks up name in the registry at root, finds its marketplace match
// and diffs the two.
func Compare(ctx context.Context, s Searcher, root, name string) (*Comparison, error) {
	pkg, err := registry.Find(root, name)
	if err != nil {
		return nil, err
	}
	remote, err := FindRemoteMatch(ctx, s, pkg.Name)
	if err != nil {
		return nil, fmt.Errorf("searching marketplace for %s: %w", pkg.Name, err)
	}
	if remote == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRemoteMatch, pkg.Name)
	}
	return &Comparison{
		Local:  *pkg,
		Remote: remote,
		Exact:  strings.EqualFold(remote.Name, pkg.Name),
		Fields: Diff(pkg.Manifest, remote),
	}, nil
}
