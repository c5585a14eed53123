// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package name validates the directory names skill packages install under.

A package directory name comes from an archive entry or a manifest, both of
which are untrusted. It must name exactly one directory directly below the
skills root.

# Name Validation

	if err := name.ValidateDirName("pdf-tools"); err != nil {
		// reject the archive
	}

Valid names must:
  - Be non-empty and not "." or ".."
  - Contain no path separators, null bytes or control characters
  - Not have leading or trailing whitespace
  - Not end in the backup suffix ".backup"
  - Be at most 255 bytes long

# Examples

Valid names:

	"pdf-tools"
	"PDF Tools"
	"skill_v2.1"

Invalid names:

	""               // empty
	".."             // parent directory
	"a/b"            // separator
	" pdf"           // leading space
	"pdf.backup"     // reserved for backups
*/
package name
