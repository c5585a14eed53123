// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package registry scans the local skills directory for installed packages.

An installed package is an immediate subdirectory of the registry root that
holds a SKILL.md whose front matter has a non-empty name. The name, matched
case-insensitively, is the package identity; the directory name is not.

# Root Resolution

Without an explicit root, the first existing directory among these is used:

	~/.claude/skills                                   (all platforms)
	~/Library/Application Support/Claude/skills        (darwin)
	%APPDATA%\Claude\skills                            (windows)
	$XDG_DATA_HOME/claude/skills                       (others)

If none exists, ~/.claude/skills is created. A creation failure is a
*RootError wrapping ErrRegistry.

# Basic Usage

	root, err := registry.ResolveRoot("")
	pkgs, err := registry.ListInstalled(root)
	pkg, err := registry.Find(root, "PDF-Tools") // matches name: pdf-tools
*/
package registry
