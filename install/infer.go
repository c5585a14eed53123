// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"fmt"
	"regexp"
	"strings"
)

var githubRepoPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/?#]+)`)

// InferDownloadURL derives a GitHub release-asset URL from a repository URL:
//
//	https://github.com/<owner>/<repo>/releases/latest/download/<name>.skill
//
// Only this one filename is produced and it is not checked for existence.
func InferDownloadURL(repoURL, name string) (string, bool) {
	m := githubRepoPattern.FindStringSubmatch(repoURL)
	if m == nil || name == "" {
		return "", false
	}
	owner, repo := m[1], strings.TrimSuffix(m[2], ".git")
	if repo == "" {
		return "", false
	}
	return fmt.Sprintf("https://github.com/%s/%s/releases/latest/download/%s.skill", owner, repo, name), true
}
