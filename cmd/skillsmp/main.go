// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Command skillsmp searches the SkillsMP marketplace and manages locally
// installed skill packages.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/stacklok/skillsmp/cmd/skillsmp/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cmd.Execute(ctx)
	stop()
	os.Exit(code)
}
