// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package marketplace

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Endpoint paths relative to the base URL.
const (
	SearchEndpoint       = "/skills/search"
	AISearchEndpoint     = "/skills/ai-search"
	DetailsEndpoint      = "/skills/details"
	CheckUpdatesEndpoint = "/skills/check-updates"
)

const (
	// DefaultLimit is the page size when none is given.
	DefaultLimit = 20
	// MaxLimit is the largest page size the API accepts.
	MaxLimit = 100
)

// SortOrder selects the ordering of search results.
type SortOrder string

const (
	// SortStars orders by popularity.
	SortStars SortOrder = "stars"
	// SortRecent orders by last update.
	SortRecent SortOrder = "recent"
)

// ErrInvalidParams is returned for search parameters the API would reject.
var ErrInvalidParams = errors.New("invalid search parameters")

// SearchParams are the query parameters of the keyword search endpoint.
type SearchParams struct {
	Query  string
	Page   int
	Limit  int
	SortBy SortOrder
}

// Values validates p and encodes it, applying defaults and capping Limit.
func (p SearchParams) Values() (url.Values, error) {
	q := strings.TrimSpace(p.Query)
	if q == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrInvalidParams)
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	limit := p.Limit
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = SortStars
	}
	if sortBy != SortStars && sortBy != SortRecent {
		return nil, fmt.Errorf("%w: sortBy must be %q or %q, got %q", ErrInvalidParams, SortStars, SortRecent, sortBy)
	}

	v := url.Values{}
	v.Set("q", q)
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))
	v.Set("sortBy", string(sortBy))
	return v, nil
}

// SearchResult is the data payload of a search response.
type SearchResult struct {
	Skills []Record `json:"skills"`
	Total  int      `json:"total"`
}

// Search runs a keyword search.
func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	params, err := p.Values()
	if err != nil {
		return nil, err
	}
	return c.search(ctx, SearchEndpoint, params)
}

// AISearch runs a semantic search for a natural-language query.
func (c *Client) AISearch(ctx context.Context, query string) (*SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrInvalidParams)
	}
	return c.search(ctx, AISearchEndpoint, url.Values{"q": {q}})
}

func (c *Client) search(ctx context.Context, endpoint string, params url.Values) (*SearchResult, error) {
	raw, err := c.Request(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	data, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	res := &SearchResult{}
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, res); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
	}
	if res.Total == 0 {
		res.Total = len(res.Skills)
	}
	return res, nil
}

// Details fetches one skill by ID.
func (c *Client) Details(ctx context.Context, id string) (*Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id cannot be empty", ErrInvalidParams)
	}
	raw, err := c.Request(ctx, DetailsEndpoint, url.Values{"id": {id}})
	if err != nil {
		return nil, err
	}
	data, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}

	// The payload is either {"skill": {...}} or the record itself.
	var wrapped struct {
		Skill *Record `json:"skill"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Skill != nil {
		return wrapped.Skill, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if rec.Name == "" {
		return nil, fmt.Errorf("%w: skill record has no name", ErrInvalidResponse)
	}
	return &rec, nil
}

// CheckUpdates asks the marketplace about updates for one skill and returns
// the data payload as sent.
func (c *Client) CheckUpdates(ctx context.Context, name string) (map[string]any, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: skill name cannot be empty", ErrInvalidParams)
	}
	raw, err := c.Request(ctx, CheckUpdatesEndpoint, url.Values{"skill": {name}})
	if err != nil {
		return nil, err
	}
	data, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
	}
	return out, nil
}

//go:embed envelope.schema.json
var envelopeSchema []byte

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeEnvelope validates raw against the envelope schema and returns the
// data payload, or an *APIError when success is false.
func decodeEnvelope(raw map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if err := ValidateEnvelope(body); err != nil {
		return nil, err
	}

	var resp envelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if !resp.Success {
		apiErr := &APIError{}
		if resp.Error != nil {
			apiErr.Code = resp.Error.Code
			apiErr.Message = resp.Error.Message
		}
		return nil, apiErr
	}
	return resp.Data, nil
}

// ValidateEnvelope checks a raw response body against the envelope schema.
func ValidateEnvelope(body []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(envelopeSchema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidResponse, strings.Join(msgs, "; "))
}
