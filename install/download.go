// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/stacklok/skillsmp/env"
	"github.com/stacklok/skillsmp/httperr"
	"github.com/stacklok/skillsmp/marketplace"
)

const (
	// DefaultDownloadTimeout bounds one archive download.
	DefaultDownloadTimeout = 30 * time.Second

	// MaxArchiveSize is the upper bound on a downloaded archive (512MB).
	MaxArchiveSize = 512 << 20
)

// Downloader fetches an archive and streams it to w.
type Downloader interface {
	Download(ctx context.Context, rawURL string, w io.Writer) error
}

// HTTPDownloader downloads archives over HTTP(S).
type HTTPDownloader struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
}

// NewHTTPDownloader returns a downloader that honours the proxy variables in r.
func NewHTTPDownloader(r env.Reader) *HTTPDownloader {
	if r == nil {
		r = &env.OSReader{}
	}
	return &HTTPDownloader{
		Client:  &http.Client{Transport: marketplace.NewTransport(r)},
		Timeout: DefaultDownloadTimeout,
	}
}

// Download implements Downloader. A 404 yields ErrNotFoundAtSource; any other
// failure yields ErrDownloadFailed. Both carry the status via httperr when a
// response was received.
func (d *HTTPDownloader) Download(ctx context.Context, rawURL string, w io.Writer) error {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: creating request: %w", ErrDownloadFailed, err)
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: timed out after %s: %s", ErrDownloadFailed, timeout, redactURL(rawURL))
		}
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return httperr.FromStatus(ErrNotFoundAtSource, resp.StatusCode, redactURL(rawURL))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httperr.FromStatus(ErrDownloadFailed, resp.StatusCode, redactURL(rawURL))
	}

	n, err := io.Copy(w, io.LimitReader(resp.Body, MaxArchiveSize+1))
	if err != nil {
		return fmt.Errorf("%w: reading body: %w", ErrDownloadFailed, err)
	}
	if n > MaxArchiveSize {
		return fmt.Errorf("%w: archive exceeds maximum size of %d bytes", ErrDownloadFailed, MaxArchiveSize)
	}
	return nil
}

// redactURL strips query parameters and fragments from a URL for safe inclusion
// in error messages, since download URLs may carry signed tokens.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid URL>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String()
}
