// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/stacklok/skillsmp/marketplace"
)

var (
	headerStyle  = color.New(color.FgCyan, color.Bold)
	nameStyle    = color.New(color.Bold)
	successStyle = color.New(color.FgGreen)
	warningStyle = color.New(color.FgYellow, color.Bold)
	errorStyle   = color.New(color.FgRed, color.Bold)
	mutedStyle   = color.New(color.FgHiBlack)
)

const (
	star      = "★"
	arrow     = "→"
	checkmark = "✓"
	xmark     = "✗"

	descWidth = 76
)

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to width display columns, counting wide runes twice.
func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "...")
}

// pad right-fills s to width display columns.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func columnWidth(values []string, minWidth int) int {
	w := minWidth
	for _, v := range values {
		if n := runewidth.StringWidth(v); n > w {
			w = n
		}
	}
	return w
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// printRecords renders a numbered result list. showScore adds the AI
// relevance score.
func printRecords(w io.Writer, skills []marketplace.Record, total int, showScore bool) {
	if len(skills) == 0 {
		_, _ = fmt.Fprintln(w, "No skills found.")
		return
	}
	_, _ = headerStyle.Fprintf(w, "Found %d skill(s)", total)
	if len(skills) != total {
		_, _ = fmt.Fprintf(w, ", showing %d", len(skills))
	}
	_, _ = fmt.Fprintln(w)

	for i, r := range skills {
		_, _ = fmt.Fprintf(w, "\n%2d. %s  %s %d", i+1, nameStyle.Sprint(r.Name), star, r.Stars)
		if r.Author != "" {
			_, _ = fmt.Fprintf(w, "  by %s", r.Author)
		}
		if showScore && r.RelevanceScore > 0 {
			_, _ = fmt.Fprintf(w, "  (score %.2f)", r.RelevanceScore)
		}
		_, _ = fmt.Fprintln(w)
		if r.Description != "" {
			_, _ = fmt.Fprintf(w, "    %s\n", truncate(r.Description, descWidth))
		}
		if u := r.SourceURL(); u != "" {
			_, _ = mutedStyle.Fprintf(w, "    %s\n", u)
		}
	}
}

func printRecord(w io.Writer, r *marketplace.Record) {
	_, _ = headerStyle.Fprintln(w, r.Name)
	row := func(label, value string) {
		if value != "" {
			_, _ = fmt.Fprintf(w, "  %s %s\n", pad(label+":", 14), value)
		}
	}
	row("ID", r.ID)
	row("Author", r.Author)
	row("Version", r.Version)
	row("Stars", fmt.Sprint(r.Stars))
	if r.UpdatedAt != 0 {
		row("Updated", formatTime(r.UpdatedAt.Time()))
	}
	row("Source", r.SourceURL())
	row("Download", r.DownloadURL)
	row("Page", r.SkillURL)
	row("Tags", strings.Join(r.Tags, ", "))
	if r.Description != "" {
		_, _ = fmt.Fprintf(w, "\n  %s\n", r.Description)
	}
	for _, list := range []struct {
		title string
		items []string
	}{{"Requirements", r.Requirements}, {"Examples", r.Examples}} {
		if len(list.items) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "\n  %s:\n", list.title)
		for _, it := range list.items {
			_, _ = fmt.Fprintf(w, "    - %s\n", it)
		}
	}
}
