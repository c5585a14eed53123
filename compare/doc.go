// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package compare matches installed packages against marketplace records and
// reports field-level differences.
//
// The stars entry in a diff is always present and marked Informational; it has
// no local counterpart, so use HasChanges to decide whether anything changed.
package compare
