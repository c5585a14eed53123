// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package filter

import (
	"errors"
	"fmt"
	"strings"

	celgo "github.com/google/cel-go/cel"
)

var (
	// ErrExpressionCheck is returned when an expression fails syntax or type checking.
	ErrExpressionCheck = errors.New("filter expression check failed")

	// ErrEvaluation is returned when evaluating an expression fails.
	ErrEvaluation = errors.New("filter expression evaluation failed")

	// ErrInvalidResult is returned when an expression does not yield a bool.
	ErrInvalidResult = errors.New("filter expression must evaluate to a bool")
)

// Stage is the compilation step an expression was rejected in.
type Stage string

const (
	// StageSyntax means the expression did not parse.
	StageSyntax Stage = "syntax"
	// StageType means it parsed but referenced unknown fields or mixed types,
	// for example skill.stars > "many".
	StageType Stage = "type"
)

// Issue is one problem in an expression. Line and Column are 1-based.
type Issue struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%d:%d: %s", i.Line, i.Column, i.Message)
}

// ExprError is an expression CEL rejected at compile time. It wraps
// ErrExpressionCheck.
type ExprError struct {
	Stage  Stage   `json:"stage"`
	Expr   string  `json:"expression"`
	Issues []Issue `json:"issues"`
	cause  error
}

// Error implements the error interface.
func (e *ExprError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("%s error in filter %q", e.Stage, e.Expr)
	}
	return fmt.Sprintf("%s error in filter %q at %s", e.Stage, e.Expr, e.Issues[0])
}

// Unwrap returns ErrExpressionCheck and the CEL error.
func (e *ExprError) Unwrap() []error {
	return []error{ErrExpressionCheck, e.cause}
}

// Pointer renders each issue under the expression line it refers to, with a
// caret at its column.
func (e *ExprError) Pointer() string {
	lines := strings.Split(e.Expr, "\n")
	var b strings.Builder
	for _, is := range e.Issues {
		if is.Line < 1 || is.Line > len(lines) {
			fmt.Fprintf(&b, "  %s\n", is.Message)
			continue
		}
		fmt.Fprintf(&b, "  %s\n  %s^ %s\n",
			lines[is.Line-1], strings.Repeat(" ", max(is.Column-1, 0)), is.Message)
	}
	return b.String()
}

func newExprError(stage Stage, expr string, issues *celgo.Issues) *ExprError {
	e := &ExprError{Stage: stage, Expr: expr, cause: issues.Err()}
	for _, ce := range issues.Errors() {
		// CEL columns are 0-based.
		e.Issues = append(e.Issues, Issue{
			Line:    ce.Location.Line(),
			Column:  ce.Location.Column() + 1,
			Message: ce.Message,
		})
	}
	return e
}
