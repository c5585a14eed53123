// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package updates

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
)

const (
	// CacheFileName is the name of the cache file inside the config directory.
	CacheFileName = "update-cache.json"

	// DefaultCacheTTL is how long a check result stays fresh.
	DefaultCacheTTL = 24 * time.Hour
)

// DefaultCachePath returns $XDG_CONFIG_HOME/skillsmp/update-cache.json.
func DefaultCachePath() string {
	return filepath.Join(xdg.ConfigHome, "skillsmp", CacheFileName)
}

// Cache records the last check time per package name.
type Cache struct {
	path string
	ttl  time.Duration

	mu      sync.Mutex
	checked map[string]time.Time
}

// NewCache returns an empty cache that saves to path.
func NewCache(path string, ttl time.Duration) *Cache {
	return &Cache{path: path, ttl: ttl, checked: map[string]time.Time{}}
}

// LoadCache reads the cache at path, a JSON object mapping package name to
// an ISO-8601 timestamp. A missing file yields an empty cache; entries with
// unparseable timestamps are dropped.
func LoadCache(path string, ttl time.Duration) (*Cache, error) {
	c := NewCache(path, ttl)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading update cache: %w", err)
	}

	var f map[string]string
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing update cache %s: %w", path, err)
	}
	for name, ts := range f {
		t, ok := parseTimestamp(ts)
		if !ok {
			continue
		}
		c.checked[key(name)] = t
	}
	return c, nil
}

// Path returns the file the cache saves to.
func (c *Cache) Path() string {
	return c.path
}

// Fresh reports whether name was checked less than the TTL before now.
func (c *Cache) Fresh(name string, now time.Time) bool {
	if c == nil || c.ttl <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.checked[key(name)]
	return ok && now.Sub(t) < c.ttl
}

// Touch records that name was checked at now.
func (c *Cache) Touch(name string, now time.Time) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked[key(name)] = now.UTC()
}

// Save writes the cache, replacing the file through a rename.
func (c *Cache) Save() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	f := make(map[string]string, len(c.checked))
	for name, t := range c.checked {
		f[name] = t.Format(time.RFC3339)
	}
	c.mu.Unlock()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding update cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o750); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".update-cache-*")
	if err != nil {
		return fmt.Errorf("writing update cache: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing update cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing update cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing update cache: %w", err)
	}
	return nil
}

// parseTimestamp accepts RFC 3339 and ISO-8601 without a zone, which is
// read as local time.
func parseTimestamp(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
