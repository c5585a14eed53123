// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package config loads skillsmp settings from defaults, an optional YAML file
and SKILLSMP_* environment variables, in increasing order of precedence.

	cfg, err := config.Load("")           // $XDG_CONFIG_HOME/skillsmp/config.yaml if present
	cfg, err := config.Load("./dev.yaml") // this file, which must exist

Recognised keys:

	api_base_url      marketplace API root
	skills_dir        registry root; empty selects the platform default
	credential_dir    directory holding references/api_key*.txt
	request_timeout   marketplace request timeout (10s)
	download_timeout  archive download timeout (30s)
	cache_ttl         update-check cache lifetime (24h)
	log_format        text or json
	log_level         debug, info, warn or error

The API key is deliberately not a config key; it is resolved by the
credential package.
*/
package config
