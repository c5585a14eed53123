// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package env provides an interface-based abstraction for environment variable
access, enabling dependency injection and testing isolation.

Every component in this module that consults the environment (the credential
resolver, proxy discovery, registry root fallback) takes an env.Reader instead
of calling os.Getenv directly.

# Basic Usage

	reader := &env.OSReader{}
	key := reader.Getenv("SKILLSMP_API_KEY")

	proxy := env.FirstNonEmpty(reader, "HTTPS_PROXY", "https_proxy")

# Testing

Use MapReader for a fixed environment, or the generated mock in the mocks
sub-package when call expectations matter:

	ctrl := gomock.NewController(t)
	mock := mocks.NewMockReader(ctrl)
	mock.EXPECT().Getenv("SKILLSMP_API_KEY").Return("sk_test")
*/
package env
