// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package manifest parses the YAML front-matter block of a SKILL.md file.
//
// A manifest looks like:
//
//	---
//	name: pdf-tools
//	author: acme
//	description: Work with PDF files
//	---
//	# body...
//
// Scalar values are exposed as strings through Manifest.Fields. Malformed
// input yields a *ParseError wrapping one of ErrNoFrontMatter,
// ErrUnterminated, ErrTooLarge, or ErrInvalidYAML.
package manifest
