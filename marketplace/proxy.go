// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package marketplace

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"

	"github.com/stacklok/skillsmp/env"
)

// ProxyFunc returns a proxy selector built from HTTP_PROXY, HTTPS_PROXY and
// NO_PROXY (either case) as seen through r. With none set every request goes
// direct.
func ProxyFunc(r env.Reader) func(*http.Request) (*url.URL, error) {
	cfg := &httpproxy.Config{
		HTTPProxy:  env.FirstNonEmpty(r, "HTTP_PROXY", "http_proxy"),
		HTTPSProxy: env.FirstNonEmpty(r, "HTTPS_PROXY", "https_proxy"),
		NoProxy:    env.FirstNonEmpty(r, "NO_PROXY", "no_proxy"),
	}
	if cfg.HTTPProxy == "" && cfg.HTTPSProxy == "" {
		return nil
	}
	fn := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return fn(req.URL)
	}
}

// NewTransport returns an http.Transport whose proxy comes from r.
func NewTransport(r env.Reader) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = ProxyFunc(r)
	t.TLSHandshakeTimeout = 10 * time.Second
	return t
}
