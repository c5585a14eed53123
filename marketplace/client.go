// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stacklok/skillsmp/credential"
	"github.com/stacklok/skillsmp/env"
	"github.com/stacklok/skillsmp/httperr"
	"github.com/stacklok/skillsmp/logging"
	validation "github.com/stacklok/skillsmp/validation/http"
)

const (
	// DefaultBaseURL is the public marketplace API.
	DefaultBaseURL = "https://skillsmp.com/api/v1"

	// BaseURLEnvKey overrides the base URL when no explicit option is given.
	BaseURLEnvKey = "SKILLSMP_API_BASE_URL"

	// DefaultTimeout bounds each API call.
	DefaultTimeout = 10 * time.Second

	defaultUserAgent = "skillsmp/dev"

	// maxJSONResponseBytes is the upper bound on API response size (10 MB).
	maxJSONResponseBytes = 10 << 20

	// maxDetailLen bounds the response excerpt carried in HTTP errors.
	maxDetailLen = 200
)

// CredentialResolver supplies the bearer token for a request.
// *credential.Resolver satisfies it.
type CredentialResolver interface {
	Resolve(explicit string) (string, error)
}

// Client issues authenticated GET requests against the marketplace API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	resolver   CredentialResolver
	envReader  env.Reader
	timeout    time.Duration
	logger     *slog.Logger
	userAgent  string
}

// ClientOption configures a Client during construction.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient sets a custom HTTP client. The client's own proxy settings
// are used as-is.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithResolver sets the credential resolver used when a request carries no
// explicit credential.
func WithResolver(r CredentialResolver) ClientOption {
	return func(c *Client) {
		c.resolver = r
	}
}

// WithEnvReader sets the environment used for the base URL override, proxy
// settings, and the default credential resolver.
func WithEnvReader(r env.Reader) ClientOption {
	return func(c *Client) {
		c.envReader = r
	}
}

// WithTimeout sets the default per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a Client. Without options it talks to DefaultBaseURL (or
// $SKILLSMP_API_BASE_URL), resolves credentials from the default sources, and
// routes through any proxy named in the environment.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		timeout:   DefaultTimeout,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.envReader == nil {
		c.envReader = &env.OSReader{}
	}
	if c.baseURL == "" {
		c.baseURL = strings.TrimRight(c.envReader.Getenv(BaseURLEnvKey), "/")
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if err := validation.ValidateBaseURL(c.baseURL); err != nil {
		return nil, err
	}
	if c.resolver == nil {
		c.resolver = credential.NewResolver("", c.envReader)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Transport: NewTransport(c.envReader)}
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	return c, nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type requestOptions struct {
	credential string
	timeout    time.Duration
}

// RequestOption adjusts a single Request call.
type RequestOption func(*requestOptions)

// WithCredential sends token instead of resolving one.
func WithCredential(token string) RequestOption {
	return func(o *requestOptions) {
		o.credential = token
	}
}

// WithRequestTimeout overrides the client timeout for one call.
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Request performs GET <base><endpoint>?<params> and returns the decoded JSON
// body unmodified. The marketplace's success/error envelope is not interpreted
// here; see the typed helpers for that.
func (c *Client) Request(
	ctx context.Context, endpoint string, params url.Values, opts ...RequestOption,
) (map[string]any, error) {
	ro := requestOptions{timeout: c.timeout}
	for _, opt := range opts {
		opt(&ro)
	}

	token, err := c.resolver.Resolve(ro.credential)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateBearerToken(token); err != nil {
		return nil, fmt.Errorf("%w: %w", credential.ErrInvalidCredential, err)
	}

	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, ro.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("marketplace request failed", "endpoint", endpoint, "error", err)
		return nil, classifyTransport(ctx, err, ro.timeout)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONResponseBytes))
	if err != nil {
		return nil, classifyTransport(ctx, err, ro.timeout)
	}

	c.logger.Debug("marketplace request",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, httperr.WithCode(&AuthError{Message: authMessage(body)}, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httperr.FromStatus(ErrHTTPStatus, resp.StatusCode, errorDetail(body))
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return out, nil
}

// classifyTransport maps a failed round trip to a TimeoutError or TransportError.
func classifyTransport(ctx context.Context, err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Timeout: timeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Timeout: timeout, Err: err}
	}
	return &TransportError{Err: err}
}

// errorBody is the error object the marketplace puts in failure responses.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func authMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	return "Invalid API key"
}

func errorDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	detail := strings.TrimSpace(string(body))
	if len(detail) > maxDetailLen {
		detail = detail[:maxDetailLen] + "..."
	}
	return detail
}
