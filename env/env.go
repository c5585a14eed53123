// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package env

//go:generate mockgen -copyright_file=../.github/license-header.txt -source=env.go -destination=mocks/mock_reader.go -package=mocks Reader

import "os"

// Reader defines an interface for environment variable access. Credential
// lookup, proxy discovery and the registry root resolver read the
// environment only through it.
type Reader interface {
	Getenv(key string) string
}

// OSReader implements Reader using the standard os package
type OSReader struct{}

// Getenv returns the value of the environment variable named by the key
func (*OSReader) Getenv(key string) string {
	return os.Getenv(key)
}

// MapReader implements Reader over a fixed map, for wiring a known
// environment into components without touching the process environment.
type MapReader map[string]string

// Getenv returns the value stored under key, or "" if absent.
func (m MapReader) Getenv(key string) string {
	return m[key]
}

// FirstNonEmpty returns the first non-empty value among keys, in order.
// It is used for variables that come in several spellings, such as
// HTTPS_PROXY and https_proxy.
func FirstNonEmpty(r Reader, keys ...string) string {
	for _, k := range keys {
		if v := r.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
