// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"

	"github.com/stacklok/skillsmp/compare"
	"github.com/stacklok/skillsmp/install"
	"github.com/stacklok/skillsmp/marketplace"
)

func (a *app) updateCmd() *cobra.Command {
	var (
		downloadURL string
		githubURL   string
		noBackup    bool
		dryRun      bool
		sha         string
	)
	cmd := &cobra.Command{
		Use:   "update <skill-name>",
		Short: "Download and install a new version of an installed skill",
		Long: `update replaces an installed skill with a freshly downloaded package.

The package URL is taken from --download-url, inferred from --github-url as
<repo>/releases/latest/download/<name>.skill, or, when neither is given,
looked up in the marketplace. The installed copy is backed up first and
restored if the new package cannot be extracted.`,
		Example: `  skillsmp update pdf-tools --github-url https://github.com/acme/skills
  skillsmp update pdf-tools --download-url https://example.com/pdf-tools.skill --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expected, err := parseDigest(sha)
			if err != nil {
				return err
			}
			root, err := a.registryRoot()
			if err != nil {
				return err
			}

			req := install.UpdateRequest{
				Name:           args[0],
				DownloadURL:    downloadURL,
				RepositoryURL:  githubURL,
				SkipBackup:     noBackup,
				ExpectedDigest: expected,
			}
			if req.DownloadURL == "" && req.RepositoryURL == "" {
				if err := a.lookupSource(cmd.Context(), &req); err != nil {
					return err
				}
			}

			engine := a.engine(root)
			if dryRun {
				plan, err := engine.DryRun(req)
				if err != nil {
					return err
				}
				return a.printPlan(cmd.OutOrStdout(), plan)
			}

			res, err := engine.Update(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), "Updated", res)
		},
	}
	cmd.Flags().StringVar(&downloadURL, "download-url", "", "package archive URL")
	cmd.Flags().StringVar(&githubURL, "github-url", "", "GitHub repository URL to infer the archive URL from")
	cmd.MarkFlagsMutuallyExclusive("download-url", "github-url")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "skip the backup (no rollback on failure)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be done without changing anything")
	cmd.Flags().StringVar(&sha, "sha256", "", "expected sha256 of the archive")
	return cmd
}

func (a *app) installCmd() *cobra.Command {
	var (
		index  int
		page   int
		sortBy string
		force  bool
		sha    string
	)
	cmd := &cobra.Command{
		Use:   "install <url|file|query>",
		Short: "Install a skill package",
		Long: `install installs a .skill package from a URL or a local file. Any other
argument is used as a marketplace search and the result at --index is
installed.`,
		Example: `  skillsmp install ./pdf-tools.skill
  skillsmp install https://github.com/acme/skills/releases/latest/download/pdf-tools.skill
  skillsmp install pdf --index 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expected, err := parseDigest(sha)
			if err != nil {
				return err
			}
			root, err := a.registryRoot()
			if err != nil {
				return err
			}
			if err := ensureDir(root); err != nil {
				return err
			}

			source := strings.Join(args, " ")
			if !isDirectSource(source) {
				source, err = a.sourceFromSearch(cmd.Context(), marketplace.SearchParams{
					Query:  source,
					Page:   page,
					Limit:  marketplace.DefaultLimit,
					SortBy: marketplace.SortOrder(sortBy),
				}, index)
				if err != nil {
					return err
				}
			}

			res, err := a.engine(root).Install(cmd.Context(), install.InstallRequest{
				Source:         source,
				Force:          force,
				ExpectedDigest: expected,
			})
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), "Installed", res)
		},
	}
	cmd.Flags().IntVarP(&index, "index", "i", 1, "which search result to install (1-based)")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "search result page")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", string(marketplace.SortStars), "search sort order: stars or recent")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing skill directory of the same name")
	cmd.Flags().StringVar(&sha, "sha256", "", "expected sha256 of the archive")
	return cmd
}

// lookupSource fills the download source of req from the marketplace record
// whose name matches exactly.
func (a *app) lookupSource(ctx context.Context, req *install.UpdateRequest) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	rec, err := compare.FindRemoteMatch(ctx, client, req.Name)
	if err != nil {
		return err
	}
	if rec == nil || !strings.EqualFold(rec.Name, req.Name) {
		return fmt.Errorf("%w: %s is not listed in the marketplace; use --download-url or --github-url",
			install.ErrNoDownloadSource, req.Name)
	}
	a.logger.Debug("using marketplace source", "skill", rec.Name, "download_url", rec.DownloadURL, "source", rec.SourceURL())
	req.DownloadURL = rec.DownloadURL
	req.RepositoryURL = rec.SourceURL()
	return nil
}

// sourceFromSearch picks the index-th result (1-based) of a search and
// returns its archive URL.
func (a *app) sourceFromSearch(ctx context.Context, p marketplace.SearchParams, index int) (string, error) {
	client, err := a.client()
	if err != nil {
		return "", err
	}
	res, err := client.Search(ctx, p)
	if err != nil {
		return "", err
	}
	if index < 1 || index > len(res.Skills) {
		return "", fmt.Errorf("%w: search for %q returned %d result(s), --index %d is out of range",
			install.ErrNoDownloadSource, p.Query, len(res.Skills), index)
	}
	rec := res.Skills[index-1]
	if rec.DownloadURL != "" {
		return rec.DownloadURL, nil
	}
	if u, ok := install.InferDownloadURL(rec.SourceURL(), rec.Name); ok {
		a.logger.Info("using inferred download URL", "skill", rec.Name, "url", u)
		return u, nil
	}
	return "", fmt.Errorf("%w for %s", install.ErrNoDownloadSource, rec.Name)
}

func isDirectSource(s string) bool {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return true
	}
	if strings.HasSuffix(s, ".skill") || strings.HasSuffix(s, ".zip") {
		return true
	}
	info, err := os.Stat(s)
	return err == nil && !info.IsDir()
}

func parseDigest(hex string) (digest.Digest, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return "", nil
	}
	d := digest.Digest(hex)
	if !strings.Contains(hex, ":") {
		d = digest.NewDigestFromEncoded(digest.SHA256, strings.ToLower(hex))
	}
	if err := d.Validate(); err != nil {
		return "", fmt.Errorf("invalid --sha256 value: %w", err)
	}
	return d, nil
}

func (a *app) printPlan(w io.Writer, p *install.Plan) error {
	if a.jsonOut {
		return writeJSON(w, p)
	}
	_, _ = headerStyle.Fprintln(w, "Dry run, no changes made")
	_, _ = fmt.Fprintf(w, "  skill:    %s\n", p.Name)
	_, _ = fmt.Fprintf(w, "  target:   %s\n", p.TargetDir)
	if p.Inferred {
		_, _ = fmt.Fprintf(w, "  download: %s (inferred)\n", p.URL)
	} else {
		_, _ = fmt.Fprintf(w, "  download: %s\n", p.URL)
	}
	if p.Backup {
		_, _ = fmt.Fprintf(w, "  backup:   %s\n", p.BackupPath)
	} else {
		_, _ = warningStyle.Fprintln(w, "  backup:   disabled")
	}
	return nil
}

func (a *app) printResult(w io.Writer, verb string, res *install.Result) error {
	if a.jsonOut {
		return writeJSON(w, res)
	}
	for _, warn := range res.Warnings {
		_, _ = warningStyle.Fprintf(w, "Warning: %s\n", warn)
	}
	_, _ = successStyle.Fprintf(w, "%s %s %s\n", checkmark, verb, res.Name)
	_, _ = fmt.Fprintf(w, "  location: %s\n", res.Dir)
	if res.PreviousDir != "" && res.PreviousDir != res.Dir {
		_, _ = fmt.Fprintf(w, "  replaced: %s\n", res.PreviousDir)
	}
	_, _ = mutedStyle.Fprintf(w, "  digest:   %s\n", res.Digest)
	return nil
}
