// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/stacklok/skillsmp/filter"
	"github.com/stacklok/skillsmp/marketplace"
)

type searchOutput struct {
	Skills []marketplace.Record `json:"skills"`
	Total  int                  `json:"total"`
}

func (a *app) searchCmd() *cobra.Command {
	var (
		limit  int
		page   int
		sortBy string
		expr   string
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the marketplace by keyword",
		Example: `  skillsmp search pdf
  skillsmp search "data analysis" --sort recent --limit 5
  skillsmp search pdf --filter 'skill.stars >= 50'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := compileFilter(expr)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			res, err := client.Search(cmd.Context(), marketplace.SearchParams{
				Query:  strings.Join(args, " "),
				Page:   page,
				Limit:  limit,
				SortBy: marketplace.SortOrder(sortBy),
			})
			if err != nil {
				return err
			}
			return a.renderResults(cmd, f, res, false)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", marketplace.DefaultLimit, "results per page (max 100)")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "result page")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", string(marketplace.SortStars), "sort order: stars or recent")
	cmd.Flags().StringVarP(&expr, "filter", "f", "", "CEL expression over skill, e.g. 'skill.stars > 10'")
	return cmd
}

func (a *app) aiSearchCmd() *cobra.Command {
	var expr string
	cmd := &cobra.Command{
		Use:     "ai-search <query>",
		Short:   "Search the marketplace in natural language",
		Example: `  skillsmp ai-search "help me fill in PDF forms"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := compileFilter(expr)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			res, err := client.AISearch(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.renderResults(cmd, f, res, true)
		},
	}
	cmd.Flags().StringVarP(&expr, "filter", "f", "", "CEL expression over skill, e.g. 'skill.score > 0.5'")
	return cmd
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <skill-id>",
		Short: "Show the details of a marketplace skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			rec, err := client.Details(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}
}

func compileFilter(expr string) (*filter.Filter, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	return filter.Compile(expr)
}

func (a *app) renderResults(cmd *cobra.Command, f *filter.Filter, res *marketplace.SearchResult, showScore bool) error {
	skills, err := f.Apply(res.Skills)
	if err != nil {
		return err
	}
	total := res.Total
	if f != nil {
		total = len(skills)
	}
	if a.jsonOut {
		return writeJSON(cmd.OutOrStdout(), searchOutput{Skills: skills, Total: total})
	}
	printRecords(cmd.OutOrStdout(), skills, total, showScore)
	return nil
}
