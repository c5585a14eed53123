// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package install downloads skill archives and installs them into a registry
root, replacing an existing installation with backup and rollback.

An update runs as a state machine:

	RESOLVE_TARGET -> BACKUP -> DOWNLOAD -> VALIDATE -> REPLACE -> COMMIT
	                                                          \-> ROLLBACK

Up to the start of REPLACE either the original directory or its backup
(<dir>.backup) is intact. Download and validation failures leave the
installed package untouched. A failed extraction after the old directory
was removed restores the backup and reports a *ReplaceError with Restored
set. Should the restore fail as well, a *RestoreError is returned; use
IsSevere to detect it and direct the user to the backup directory.

# Basic Usage

	engine := install.NewEngine(root,
	    install.WithLogger(logger),
	    install.WithDownloader(install.NewHTTPDownloader(&env.OSReader{})),
	)

	res, err := engine.Update(ctx, install.UpdateRequest{
	    Name:          "pdf-tools",
	    RepositoryURL: "https://github.com/acme/skills",
	})
	switch {
	case install.IsSevere(err):
	    // manual recovery required
	case errors.Is(err, install.ErrNotFoundAtSource):
	    // nothing was changed
	}

Without a DownloadURL the archive address is inferred from a GitHub
repository URL as the latest release asset named <skill>.skill. Only that
one candidate is tried.

# Archive Validation

Archives are zip files. Entries may not escape the package directory, be
absolute, be links, or exceed MaxArchiveFileSize. The first entry's top-level
directory names the installed directory. Flat archives install under the name
in their root SKILL.md.

# Testing

The filesystem steps go through FileOps, so tests can fail the backup copy,
the removal, the extraction, or the restore individually.
*/
package install
