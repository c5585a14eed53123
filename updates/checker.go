// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package updates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/stacklok/skillsmp/compare"
	"github.com/stacklok/skillsmp/logging"
	"github.com/stacklok/skillsmp/marketplace"
	"github.com/stacklok/skillsmp/registry"
)

const (
	// DefaultDelay is the pause between marketplace lookups.
	DefaultDelay = 300 * time.Millisecond

	// clockSkew is tolerated between remote and local timestamps.
	clockSkew = time.Second
)

// Update is an installed package with a newer remote version.
type Update struct {
	Name        string    `json:"name"`
	Dir         string    `json:"dir"`
	LocalTime   time.Time `json:"local_modified"`
	RemoteTime  time.Time `json:"remote_updated"`
	Stars       int       `json:"stars"`
	SourceURL   string    `json:"source_url,omitempty"`
	DownloadURL string    `json:"download_url,omitempty"`
}

// PackageError is a lookup failure for one package.
type PackageError struct {
	Name string
	Err  error
}

// MarshalJSON renders the error as its message.
func (e *PackageError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string `json:"name"`
		Error string `json:"error"`
	}{e.Name, e.Err.Error()})
}

// Error implements the error interface.
func (e *PackageError) Error() string {
	return fmt.Sprintf("checking %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *PackageError) Unwrap() error {
	return e.Err
}

// Report is the outcome of a scan.
type Report struct {
	Checked  int             `json:"checked"`
	Updates  []Update        `json:"updates"`
	UpToDate []string        `json:"up_to_date"`
	NotFound []string        `json:"not_found"`
	Skipped  []string        `json:"skipped"`
	Errors   []*PackageError `json:"errors"`
}

// Checker scans a registry for available updates.
type Checker struct {
	Searcher compare.Searcher
	Root     string
	// Cache is optional; without it every package is checked.
	Cache  *Cache
	Logger *slog.Logger
	// Delay is the pause between lookups. Zero means DefaultDelay; use a
	// negative value to disable it.
	Delay time.Duration
	// Now returns the current time; nil means time.Now.
	Now func() time.Time
}

// CheckAll checks every installed package. It fails only when the registry
// cannot be listed or ctx ends; per-package failures land in Report.Errors.
func (c *Checker) CheckAll(ctx context.Context) (*Report, error) {
	logger := c.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	now := c.Now
	if now == nil {
		now = time.Now
	}
	delay := c.Delay
	if delay == 0 {
		delay = DefaultDelay
	}

	pkgs, err := registry.ListInstalled(c.Root)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	looked := false
	for _, pkg := range pkgs {
		if c.Cache.Fresh(pkg.Name, now()) {
			report.Skipped = append(report.Skipped, pkg.Name)
			continue
		}

		if looked && delay > 0 {
			if err := sleep(ctx, delay); err != nil {
				return report, err
			}
		}
		looked = true

		remote, err := compare.FindRemoteMatch(ctx, c.Searcher, pkg.Name)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			logger.Warn("update check failed", "skill", pkg.Name, "error", err)
			report.Errors = append(report.Errors, &PackageError{Name: pkg.Name, Err: err})
			continue
		}
		report.Checked++
		c.Cache.Touch(pkg.Name, now())

		switch {
		case remote == nil:
			report.NotFound = append(report.NotFound, pkg.Name)
		case newer(remote, pkg):
			report.Updates = append(report.Updates, Update{
				Name:        pkg.Name,
				Dir:         pkg.Dir,
				LocalTime:   pkg.ModTime,
				RemoteTime:  remote.UpdatedAt.Time(),
				Stars:       remote.Stars,
				SourceURL:   remote.SourceURL(),
				DownloadURL: remote.DownloadURL,
			})
		default:
			report.UpToDate = append(report.UpToDate, pkg.Name)
		}
	}

	if c.Cache != nil {
		if err := c.Cache.Save(); err != nil {
			logger.Warn("could not save update cache", "path", c.Cache.Path(), "error", err)
		}
	}
	return report, nil
}

// newer reports whether the remote record was updated after the local copy.
func newer(remote *marketplace.Record, pkg registry.Package) bool {
	if remote.UpdatedAt == 0 {
		return false
	}
	return remote.UpdatedAt.Time().After(pkg.ModTime.Add(clockSkew))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
