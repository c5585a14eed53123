// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/stacklok/skillsmp/registry"
	"github.com/stacklok/skillsmp/updates"
)

type listEntry struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	Dir         string `json:"dir"`
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := a.registryRoot()
			if err != nil {
				return err
			}
			pkgs, err := registry.ListInstalled(root)
			if err != nil {
				return err
			}

			entries := make([]listEntry, 0, len(pkgs))
			for _, p := range pkgs {
				entries = append(entries, listEntry{
					Name:        p.Name,
					Version:     p.Manifest.Version(),
					Author:      p.Manifest.Author(),
					Description: p.Manifest.Description(),
					Dir:         p.Dir,
				})
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), entries)
			}

			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, _ = fmt.Fprintf(w, "No skills installed in %s\n", root)
				return nil
			}
			names := registry.Names(pkgs)
			nameW := columnWidth(names, 4)
			_, _ = headerStyle.Fprintf(w, "%s  %s  %s\n", pad("NAME", nameW), pad("VERSION", 9), "DESCRIPTION")
			for _, e := range entries {
				version := e.Version
				if version == "" {
					version = "-"
				}
				_, _ = fmt.Fprintf(w, "%s  %s  %s\n", pad(e.Name, nameW), pad(version, 9), truncate(e.Description, 60))
			}
			_, _ = mutedStyle.Fprintf(w, "\n%d skill(s) in %s\n", len(entries), root)
			return nil
		},
	}
}

func (a *app) checkUpdatesCmd() *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:   "check-updates [skill-name]",
		Short: "Check installed skills for a newer marketplace version",
		Long: `check-updates looks each installed skill up in the marketplace and reports
those whose listing was updated after the local copy was installed. Results
are cached for cache_ttl (24h by default); --no-cache checks everything.

With a skill name, the marketplace's own update endpoint is queried for that
skill and its answer printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return a.remoteUpdateCheck(cmd, args[0])
			}
			root, err := a.registryRoot()
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			checker := &updates.Checker{Searcher: client, Root: root, Logger: a.logger}
			if !noCache {
				cache, err := updates.LoadCache(updates.DefaultCachePath(), a.cfg.CacheTTL)
				if err != nil {
					a.logger.Warn("ignoring unreadable update cache", "error", err)
					cache = updates.NewCache(updates.DefaultCachePath(), a.cfg.CacheTTL)
				}
				checker.Cache = cache
			}

			report, err := checker.CheckAll(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), report)
			}

			w := cmd.OutOrStdout()
			if len(report.Updates) == 0 {
				_, _ = successStyle.Fprintf(w, "%s All checked skills are up to date\n", checkmark)
			} else {
				_, _ = headerStyle.Fprintf(w, "%d update(s) available\n", len(report.Updates))
				for _, u := range report.Updates {
					_, _ = fmt.Fprintf(w, "  %s  installed %s, published %s  %s %d\n",
						nameStyle.Sprint(u.Name), formatTime(u.LocalTime), formatTime(u.RemoteTime), star, u.Stars)
					if u.SourceURL != "" {
						_, _ = mutedStyle.Fprintf(w, "    skillsmp update %s --github-url %s\n", u.Name, u.SourceURL)
					}
				}
			}
			if len(report.NotFound) > 0 {
				_, _ = fmt.Fprintf(w, "Not in marketplace: %v\n", report.NotFound)
			}
			if len(report.Skipped) > 0 {
				_, _ = mutedStyle.Fprintf(w, "Checked recently, skipped: %v\n", report.Skipped)
			}
			for _, e := range report.Errors {
				_, _ = errorStyle.Fprintf(w, "%s %v\n", xmark, e)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "ignore and do not update the check cache")
	return cmd
}

func (a *app) remoteUpdateCheck(cmd *cobra.Command, skill string) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	data, err := client.CheckUpdates(cmd.Context(), skill)
	if err != nil {
		return err
	}
	if a.jsonOut {
		return writeJSON(cmd.OutOrStdout(), data)
	}

	w := cmd.OutOrStdout()
	_, _ = headerStyle.Fprintln(w, skill)
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	width := columnWidth(keys, 8)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "  %s  %v\n", pad(k+":", width+1), data[k])
	}
	return nil
}
