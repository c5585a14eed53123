// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package filter

import (
	"fmt"
	"strings"
	"sync"

	celgo "github.com/google/cel-go/cel"

	"github.com/stacklok/skillsmp/marketplace"
)

const (
	// MaxExpressionLength is the longest expression Compile accepts.
	MaxExpressionLength = 10000

	// CostLimit bounds the runtime cost of one evaluation.
	CostLimit = 1000000

	// VarName is the variable holding the record under test.
	VarName = "skill"
)

// environment is shared by every Filter.
var environment = sync.OnceValues(func() (*celgo.Env, error) {
	return celgo.NewEnv(
		celgo.Variable(VarName, celgo.MapType(celgo.StringType, celgo.DynType)),
	)
})

// Filter is a compiled expression that selects records.
type Filter struct {
	source  string
	program celgo.Program
}

// Compile parses and type-checks expr. Rejected expressions yield an
// *ExprError; blank or too long ones an error wrapping ErrExpressionCheck.
func Compile(expr string) (*Filter, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrExpressionCheck)
	}
	if len(expr) > MaxExpressionLength {
		return nil, fmt.Errorf("%w: expression length %d exceeds maximum of %d",
			ErrExpressionCheck, len(expr), MaxExpressionLength)
	}

	env, err := environment()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	parsed, issues := env.Parse(expr)
	if issues.Err() != nil {
		return nil, newExprError(StageSyntax, expr, issues)
	}
	checked, issues := env.Check(parsed)
	if issues.Err() != nil {
		return nil, newExprError(StageType, expr, issues)
	}
	if out := checked.OutputType(); !out.IsAssignableType(celgo.BoolType) {
		return nil, fmt.Errorf("%w: %q has type %s", ErrInvalidResult, expr, out)
	}

	program, err := env.Program(checked, celgo.CostLimit(CostLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program for %q: %w", expr, err)
	}
	return &Filter{source: expr, program: program}, nil
}

// Source returns the expression f was compiled from.
func (f *Filter) Source() string {
	return f.source
}

// Match reports whether r satisfies the expression. A nil Filter matches
// everything.
func (f *Filter) Match(r marketplace.Record) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, _, err := f.program.Eval(map[string]any{VarName: Vars(r)})
	if err != nil {
		return false, fmt.Errorf("%w: %s: record %q: %s", ErrEvaluation, f.source, r.Name, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: got %T", ErrInvalidResult, out.Value())
	}
	return b, nil
}

// Apply returns the records that match, in order. It stops at the first
// evaluation error.
func (f *Filter) Apply(records []marketplace.Record) ([]marketplace.Record, error) {
	if f == nil {
		return records, nil
	}
	kept := make([]marketplace.Record, 0, len(records))
	for _, r := range records {
		ok, err := f.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// Vars returns the value bound to the skill variable for r.
func Vars(r marketplace.Record) map[string]any {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"name":        r.Name,
		"author":      r.Author,
		"description": r.Description,
		"stars":       int64(r.Stars),
		"score":       r.RelevanceScore,
		"updatedAt":   int64(r.UpdatedAt),
		"url":         r.SourceURL(),
		"tags":        tags,
	}
}
