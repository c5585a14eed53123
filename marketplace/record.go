// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package marketplace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Record is a remote skill as returned by the search and details endpoints.
type Record struct {
	ID             string    `json:"id,omitempty"`
	Name           string    `json:"name"`
	Author         string    `json:"author,omitempty"`
	Description    string    `json:"description,omitempty"`
	Stars          int       `json:"stars"`
	RelevanceScore float64   `json:"relevance_score,omitempty"`
	GitHubURL      string    `json:"githubUrl,omitempty"`
	SkillURL       string    `json:"skillUrl,omitempty"`
	RepositoryURL  string    `json:"repository_url,omitempty"`
	DownloadURL    string    `json:"download_url,omitempty"`
	UpdatedAt      Timestamp `json:"updatedAt,omitempty"`
	Version        string    `json:"version,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	Requirements   []string  `json:"requirements,omitempty"`
	Examples       []string  `json:"examples,omitempty"`
}

// SourceURL returns the repository the skill was published from.
func (r *Record) SourceURL() string {
	if r.GitHubURL != "" {
		return r.GitHubURL
	}
	return r.RepositoryURL
}

// Timestamp is a Unix time in seconds. The API sends it as a number, but a
// numeric string or an RFC 3339 string is accepted too.
type Timestamp int64

// Time converts t to a time.Time; the zero Timestamp maps to the zero time.
func (t Timestamp) Time() time.Time {
	if t == 0 {
		return time.Time{}
	}
	return time.Unix(int64(t), 0)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*t = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*t = 0
			return nil
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			*t = Timestamp(n)
			return nil
		}
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q", s)
		}
		*t = Timestamp(ts.Unix())
		return nil
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s", b)
	}
	*t = Timestamp(n)
	return nil
}
