// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package updates scans the installed packages for newer marketplace versions.

A Checker lists the registry, looks each package up with the same match rule
as the compare package, and classifies it by comparing the remote updatedAt
timestamp with the local directory's modification time. Failures for one
package are recorded in the Report and the scan moves on.

# Cache

A Cache remembers when each package was last checked so repeated scans within
the TTL skip the network:

	cache, err := updates.LoadCache(updates.DefaultCachePath(), 24*time.Hour)
	checker := &updates.Checker{Searcher: client, Root: root, Cache: cache}
	report, err := checker.CheckAll(ctx)

The cache file is not locked; concurrent scans may overwrite each other's
entries.
*/
package updates
