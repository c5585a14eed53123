// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest file at the root of every package.
const FileName = "SKILL.md"

// MaxFrontMatterSize limits the front-matter block to prevent YAML parsing attacks.
const MaxFrontMatterSize = 64 * 1024

const delimiter = "---"

// Manifest is the identity metadata from a package's front-matter block.
type Manifest struct {
	// Fields holds every scalar key as a string.
	Fields map[string]string
	// Extra lists keys whose values were sequences or mappings.
	Extra []string
}

// Get returns the trimmed value of key, or "".
func (m *Manifest) Get(key string) string {
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m.Fields[key])
}

// Name returns the package identity.
func (m *Manifest) Name() string { return m.Get("name") }

// Author returns the author field.
func (m *Manifest) Author() string { return m.Get("author") }

// Description returns the description field.
func (m *Manifest) Description() string { return m.Get("description") }

// Version returns the version field.
func (m *Manifest) Version() string { return m.Get("version") }

// ReadFile reads and parses the manifest at path. Parse failures are returned
// as *ParseError with Path set.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return m, nil
}

// Parse extracts the front-matter block from content. The block must open with
// a "---" line at the first non-blank line and close with another "---" line.
func Parse(content []byte) (*Manifest, error) {
	block, err := extractBlock(content)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(block) > MaxFrontMatterSize {
		return nil, &ParseError{Err: fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(block), MaxFrontMatterSize)}
	}

	m := &Manifest{Fields: map[string]string{}}
	if len(bytes.TrimSpace(block)) == 0 {
		return m, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return nil, &ParseError{Err: fmt.Errorf("%w: %w", ErrInvalidYAML, err)}
	}
	if len(doc.Content) == 0 {
		return m, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Err: fmt.Errorf("%w: front matter is not a mapping", ErrInvalidYAML)}
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind == yaml.AliasNode && val.Alias != nil {
			val = val.Alias
		}
		if val.Kind != yaml.ScalarNode {
			m.Extra = append(m.Extra, key.Value)
			continue
		}
		if val.Tag == "!!null" {
			m.Fields[key.Value] = ""
			continue
		}
		m.Fields[key.Value] = val.Value
	}
	return m, nil
}

// extractBlock returns the raw bytes between the delimiter lines.
func extractBlock(content []byte) ([]byte, error) {
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 4096), MaxFrontMatterSize+1)

	opened := false
	var block bytes.Buffer
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if !opened {
			if line == "" {
				continue
			}
			if line != delimiter {
				return nil, ErrNoFrontMatter
			}
			opened = true
			continue
		}
		if line == delimiter {
			return block.Bytes(), nil
		}
		if block.Len() > MaxFrontMatterSize {
			return nil, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, MaxFrontMatterSize)
		}
		block.WriteString(sc.Text())
		block.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: line too long", ErrTooLarge)
		}
		return nil, fmt.Errorf("scanning manifest: %w", err)
	}
	if !opened {
		return nil, ErrNoFrontMatter
	}
	return nil, ErrUnterminated
}
