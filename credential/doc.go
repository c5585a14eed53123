// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package credential resolves the marketplace API key from layered sources.

The precedence is fixed: an explicit value passed by the caller, then the
SKILLSMP_API_KEY environment variable, then the development file
references/api_key_real.txt, then the template file references/api_key.txt.
Both files live under an install root, by default $XDG_CONFIG_HOME/skillsmp.

A template that still carries the placeholder text or starts with '#' is
treated as absent, so a shipped but unconfigured template never becomes a key.

# Basic Usage

	r := credential.NewResolver("", &env.OSReader{})
	key, err := r.Resolve(flagValue)
	if errors.Is(err, credential.ErrNoCredential) {
	    fmt.Fprintln(os.Stderr, err) // includes setup instructions
	}

Custom orderings are built by filling Resolver.Sources directly.
*/
package credential
