// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stacklok/skillsmp/config"
	"github.com/stacklok/skillsmp/credential"
	"github.com/stacklok/skillsmp/env"
	"github.com/stacklok/skillsmp/filter"
	"github.com/stacklok/skillsmp/install"
	"github.com/stacklok/skillsmp/logging"
	"github.com/stacklok/skillsmp/marketplace"
	"github.com/stacklok/skillsmp/registry"
)

// Version is set at build time via ldflags.
var Version = "dev"

// app holds the global flags and everything derived from them.
type app struct {
	cfgFile   string
	apiKey    string
	skillsDir string
	jsonOut   bool
	verbose   bool

	env    env.Reader
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd builds the skillsmp command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{env: &env.OSReader{}})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "skillsmp",
		Short: "Search the SkillsMP marketplace and manage installed skills",
		Long: `skillsmp searches the SkillsMP skill marketplace, compares installed
skills with their published versions, and installs or updates skill packages.

The API key is read from --api-key, $SKILLSMP_API_KEY, or the files
references/api_key_real.txt and references/api_key.txt under the credential
directory, in that order.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/skillsmp/config.yaml)")
	pf.StringVar(&a.apiKey, "api-key", "", "marketplace API key (overrides environment and key files)")
	pf.StringVar(&a.skillsDir, "skills-dir", "", "skills directory (default ~/.claude/skills)")
	pf.BoolVar(&a.jsonOut, "json", false, "print machine-readable JSON")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.searchCmd(),
		a.aiSearchCmd(),
		a.infoCmd(),
		a.diffCmd(),
		a.updateCmd(),
		a.installCmd(),
		a.listCmd(),
		a.checkUpdatesCmd(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		printError(root.ErrOrStderr(), err)
		return 1
	}
	return 0
}

func (a *app) init(logOut io.Writer) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	a.logger = logging.New(
		logging.WithFormat(format),
		logging.WithLevel(level),
		logging.WithOutput(logOut),
	)
	return nil
}

func (a *app) resolver() *credential.Resolver {
	r := credential.NewResolver(a.cfg.CredentialDir, a.env)
	if a.apiKey != "" {
		r.Sources = append([]credential.Source{credential.StaticSource(a.apiKey)}, r.Sources...)
	}
	return r
}

func (a *app) client() (*marketplace.Client, error) {
	return marketplace.NewClient(
		marketplace.WithBaseURL(a.cfg.APIBaseURL),
		marketplace.WithResolver(a.resolver()),
		marketplace.WithEnvReader(a.env),
		marketplace.WithTimeout(a.cfg.RequestTimeout),
		marketplace.WithLogger(a.logger),
		marketplace.WithUserAgent("skillsmp/"+Version),
	)
}

// registryRoot resolves the skills directory: flag, then config, then the
// platform default.
func (a *app) registryRoot() (string, error) {
	explicit := a.skillsDir
	if explicit == "" {
		explicit = a.cfg.SkillsDir
	}
	return registry.DefaultResolver(a.env).Resolve(explicit)
}

func (a *app) engine(root string) *install.Engine {
	dl := install.NewHTTPDownloader(a.env)
	dl.Timeout = a.cfg.DownloadTimeout
	dl.UserAgent = "skillsmp/" + Version
	return install.NewEngine(root,
		install.WithDownloader(dl),
		install.WithLogger(a.logger),
	)
}

// printError reports err on w, with recovery instructions when an install
// left the registry without either version of a package.
func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "%s %v\n", errorStyle.Sprint("Error:"), err)

	var restoreErr *install.RestoreError
	if errors.As(err, &restoreErr) {
		_, _ = fmt.Fprintf(w, "\n%s the previous version is still in %s\n",
			warningStyle.Sprint("Manual recovery needed:"), restoreErr.Backup)
		_, _ = fmt.Fprintf(w, "  Move it back with: mv %q %q\n", restoreErr.Backup, restoreErr.Target)
	}
	var exprErr *filter.ExprError
	if errors.As(err, &exprErr) {
		_, _ = fmt.Fprintf(w, "\n%s", mutedStyle.Sprint(exprErr.Pointer()))
	}
	if errors.Is(err, install.ErrTargetOccupied) {
		_, _ = fmt.Fprintln(w, "  Move or remove the other directory, then retry.")
	}
	if errors.Is(err, config.ErrNotFound) {
		_, _ = fmt.Fprintln(w, "  Create the file or omit --config to use defaults.")
	}
}

// ensureDir creates dir when an explicit skills directory does not exist yet.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &registry.RootError{Path: dir, Err: err}
	}
	return nil
}
