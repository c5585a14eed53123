// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package cmd implements the skillsmp command tree. Commands are thin: they
// resolve configuration, build the library clients, and render results.
package cmd
