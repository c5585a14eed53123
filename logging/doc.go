// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package logging provides a pre-configured [log/slog.Logger] factory with
consistent defaults for the skillsmp packages and CLI.

# Defaults

  - Format: JSON ([FormatJSON]) via [log/slog.JSONHandler]
  - Level: INFO ([log/slog.LevelInfo])
  - Output: [os.Stderr]
  - Timestamps: [time.RFC3339]

[FormatText] renders through github.com/lmittmann/tint and colours output
only when writing to a terminal.

# Basic Usage

	logger := logging.New(
		logging.WithFormat(logging.FormatText),
		logging.WithLevel(slog.LevelDebug),
	)
	logger.Info("skill updated", "name", "pdf-tools")

Library types in this module accept a *slog.Logger option and fall back to
[Discard] when none is given.
*/
package logging
