// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package filter selects marketplace records with CEL expressions.

An expression sees one variable, skill, a map with these keys:

	name         string
	author       string
	description  string
	stars        int
	score        double  (relevance score, AI search only)
	updatedAt    int     (Unix seconds, 0 when unknown)
	url          string  (GitHub or repository URL)
	tags         list(string)

# Basic Usage

	f, err := filter.Compile(`skill.stars >= 50 && skill.author == "anthropic"`)
	if err != nil {
	    // handle *ExprError
	}
	kept, err := f.Apply(result.Skills)

# Error Handling

A rejected expression is an *ExprError naming the stage that failed and the
line and column of each issue. Pointer renders them for a terminal:

	var exprErr *filter.ExprError
	if errors.As(err, &exprErr) {
	    fmt.Print(exprErr.Pointer())
	}
	//   skill.stars >
	//                ^ Syntax error: mismatched input '<EOF>'

ExprError wraps ErrExpressionCheck.

# Limits

Expressions longer than MaxExpressionLength are rejected before parsing, and
evaluation stops once it exceeds CostLimit.

# Concurrency

A compiled Filter is safe for concurrent use.
*/
package filter
