// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/stacklok/skillsmp/logging"
	"github.com/stacklok/skillsmp/registry"
	validation "github.com/stacklok/skillsmp/validation/http"
)

// State is a step of the install state machine.
type State int

const (
	// ResolveTarget locates the installed package and the archive URL.
	ResolveTarget State = iota
	// Backup copies the installed directory to its backup sibling.
	Backup
	// Download fetches the archive to a temporary file.
	Download
	// Validate checks the archive before anything is removed.
	Validate
	// Replace removes the old directory and extracts the new one.
	Replace
	// Commit removes the backup after a successful replace.
	Commit
	// Rollback restores the backup after a failed replace.
	Rollback
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case ResolveTarget:
		return "RESOLVE_TARGET"
	case Backup:
		return "BACKUP"
	case Download:
		return "DOWNLOAD"
	case Validate:
		return "VALIDATE"
	case Replace:
		return "REPLACE"
	case Commit:
		return "COMMIT"
	case Rollback:
		return "ROLLBACK"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// BackupSuffix is appended to a package directory to name its backup.
const BackupSuffix = registry.BackupSuffix

// Engine downloads, validates and installs packages into a registry root.
// One Engine runs one operation at a time; it takes no locks against other
// processes using the same root.
type Engine struct {
	root       string
	downloader Downloader
	ops        FileOps
	logger     *slog.Logger
	observer   func(State)
	tempDir    string
}

// Option configures an Engine.
type Option func(*Engine)

// WithDownloader sets the archive downloader.
func WithDownloader(d Downloader) Option {
	return func(e *Engine) {
		e.downloader = d
	}
}

// WithFileOps replaces the filesystem operations.
func WithFileOps(ops FileOps) Option {
	return func(e *Engine) {
		e.ops = ops
	}
}

// WithLogger sets the logger for progress and warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithStateObserver registers fn to be called on every state transition.
func WithStateObserver(fn func(State)) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// WithTempDir sets where archives are downloaded before validation.
func WithTempDir(dir string) Option {
	return func(e *Engine) {
		e.tempDir = dir
	}
}

// NewEngine returns an Engine for the registry at root.
func NewEngine(root string, opts ...Option) *Engine {
	e := &Engine{root: root}
	for _, opt := range opts {
		opt(e)
	}
	if e.downloader == nil {
		e.downloader = NewHTTPDownloader(nil)
	}
	if e.ops == nil {
		e.ops = OSFileOps{}
	}
	if e.logger == nil {
		e.logger = logging.Discard()
	}
	return e
}

// UpdateRequest names an installed package and where to fetch its new version.
type UpdateRequest struct {
	// Name is the manifest name of the installed package.
	Name string
	// DownloadURL is the archive URL. When empty it is inferred from RepositoryURL.
	DownloadURL   string
	RepositoryURL string
	// SkipBackup disables the backup, and with it any rollback.
	SkipBackup bool
	// ExpectedDigest, when set, must match the downloaded archive.
	ExpectedDigest digest.Digest
}

// InstallRequest names an archive to install fresh.
type InstallRequest struct {
	// Source is an http(s) URL or a local .skill/.zip path.
	Source string
	// Force replaces an existing directory of the same name.
	Force          bool
	ExpectedDigest digest.Digest
}

// Result describes a completed install or update.
type Result struct {
	// Name is the manifest name of the installed package, if it has one.
	Name string `json:"name"`
	// Dir is the installed package directory.
	Dir string `json:"dir"`
	// PreviousDir is the directory that was replaced, if any.
	PreviousDir string        `json:"previous_dir,omitempty"`
	Source      string        `json:"source"`
	Digest      digest.Digest `json:"digest"`
	// BackedUp reports whether a backup protected the replacement.
	BackedUp bool `json:"backed_up"`
	// Warnings lists non-fatal problems, such as a failed backup.
	Warnings []string `json:"warnings,omitempty"`
}

// Plan is what Update would do, as computed by DryRun.
type Plan struct {
	Name       string `json:"name"`
	TargetDir  string `json:"target_dir"`
	URL        string `json:"url"`
	Inferred   bool   `json:"inferred"`
	Backup     bool   `json:"backup"`
	BackupPath string `json:"backup_path,omitempty"`
}

// DryRun resolves the target and URL of req without touching anything.
func (e *Engine) DryRun(req UpdateRequest) (*Plan, error) {
	pkg, url, inferred, err := e.resolveTarget(req)
	if err != nil {
		return nil, err
	}
	p := &Plan{
		Name:      pkg.Name,
		TargetDir: pkg.Dir,
		URL:       url,
		Inferred:  inferred,
		Backup:    !req.SkipBackup,
	}
	if p.Backup {
		p.BackupPath = pkg.Dir + BackupSuffix
	}
	return p, nil
}

// Update replaces an installed package with a freshly downloaded archive.
//
// Until the old directory is removed, a failure leaves it untouched. If
// extraction fails afterwards the backup is copied back and a *ReplaceError
// with Restored set is returned; if that copy fails too, a *RestoreError is
// returned and the backup is left in place for manual recovery.
func (e *Engine) Update(ctx context.Context, req UpdateRequest) (*Result, error) {
	e.enter(ResolveTarget)
	pkg, url, inferred, err := e.resolveTarget(req)
	if err != nil {
		return nil, err
	}
	if inferred {
		e.logger.Info("using inferred download URL", "skill", pkg.Name, "url", url)
	}

	res := &Result{Name: pkg.Name, PreviousDir: pkg.Dir, Source: url}
	return e.run(ctx, res, pkg.Dir, runOptions{
		backup:   !req.SkipBackup,
		expected: req.ExpectedDigest,
	}, func(w io.Writer) error {
		return e.downloader.Download(ctx, url, w)
	})
}

// Install installs a package from a URL or local archive. If a directory with
// the package's name already exists, or the manifest name is installed under
// another directory, ErrAlreadyInstalled is returned unless Force is set, in
// which case that directory is replaced as in Update.
func (e *Engine) Install(ctx context.Context, req InstallRequest) (*Result, error) {
	src := strings.TrimSpace(req.Source)
	if src == "" {
		return nil, ErrNoDownloadSource
	}

	var fetch func(io.Writer) error
	if isURL(src) {
		if err := validation.ValidateDownloadURL(src); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoDownloadSource, err)
		}
		fetch = func(w io.Writer) error { return e.downloader.Download(ctx, src, w) }
	} else {
		fetch = func(w io.Writer) error { return copyLocal(src, w) }
	}

	e.enter(ResolveTarget)
	res := &Result{Source: src}
	return e.run(ctx, res, "", runOptions{
		backup:   true,
		force:    req.Force,
		expected: req.ExpectedDigest,
	}, fetch)
}

type runOptions struct {
	backup   bool
	force    bool
	expected digest.Digest
}

// run drives BACKUP through COMMIT/ROLLBACK. existing is the directory being
// replaced; for a fresh install it is empty and derived from the archive.
func (e *Engine) run(
	ctx context.Context, res *Result, existing string, opts runOptions, fetch func(io.Writer) error,
) (*Result, error) {
	backupPath := ""
	if existing != "" && opts.backup {
		backupPath = e.backup(existing, res)
	}

	e.enter(Download)
	archive, dgst, err := e.fetchToTemp(fetch)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(archive) }()
	res.Digest = dgst

	e.enter(Validate)
	if opts.expected != "" && opts.expected != dgst {
		return nil, fmt.Errorf("%w: digest mismatch: expected %s, got %s", ErrInvalidPackage, opts.expected, dgst)
	}
	layout, err := Inspect(archive)
	if err != nil {
		return nil, err
	}
	if layout.Manifest != nil && layout.Manifest.Name() != "" {
		res.Name = layout.Manifest.Name()
	}

	target := filepath.Join(e.root, layout.Name)
	if existing == "" {
		// Fresh install: the archive decides the directory.
		existing, err = e.installedAs(target, res.Name, opts.force)
		if err != nil {
			return nil, err
		}
		if existing != "" {
			res.PreviousDir = existing
			if opts.backup {
				backupPath = e.backup(existing, res)
			}
		}
	}
	if existing != "" && occupied(target, existing) {
		return nil, fmt.Errorf("%w: archive unpacks into %s, which is not %s", ErrTargetOccupied, target, existing)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.enter(Replace)
	if existing != "" {
		if err := e.ops.RemoveAll(existing); err != nil {
			// Nothing extracted yet; the backup stays for inspection.
			return nil, &ReplaceError{Path: existing, Err: err}
		}
	}

	dir, err := e.ops.Extract(archive, e.root)
	if err != nil {
		if existing == "" {
			return nil, &ReplaceError{Path: filepath.Join(e.root, layout.Name), Err: err}
		}
		return nil, e.rollback(existing, backupPath, err)
	}
	res.Dir = dir

	e.enter(Commit)
	if backupPath != "" {
		if err := e.ops.RemoveAll(backupPath); err != nil {
			e.logger.Warn("could not remove backup", "path", backupPath, "error", err)
			res.Warnings = append(res.Warnings, fmt.Sprintf("could not remove backup %s: %v", backupPath, err))
		}
	}
	if res.Name == "" {
		res.Name = layout.Name
	}
	e.logger.Info("installed skill", "skill", res.Name, "path", dir, "digest", dgst.String())
	return res, nil
}

// installedAs returns the directory a fresh install of name into target
// would replace: target itself, or another directory already holding a
// package called name. Without force either is ErrAlreadyInstalled.
func (e *Engine) installedAs(target, name string, force bool) (string, error) {
	current := ""
	if _, err := os.Lstat(target); err == nil {
		current = target
	}
	if name != "" {
		pkg, err := registry.Find(e.root, name)
		switch {
		case errors.Is(err, registry.ErrPackageNotFound):
		case err != nil:
			return "", err
		case current == "":
			current = pkg.Dir
		case !sameDir(pkg.Dir, current):
			return "", fmt.Errorf("%w: %s is installed at %s and %s is taken", ErrAlreadyInstalled, name, pkg.Dir, target)
		}
	}
	if current != "" && !force {
		if current != target {
			return "", fmt.Errorf("%w: %s is installed at %s", ErrAlreadyInstalled, name, current)
		}
		return "", fmt.Errorf("%w: %s", ErrAlreadyInstalled, target)
	}
	return current, nil
}

// occupied reports whether target exists and is not the directory existing.
func occupied(target, existing string) bool {
	if _, err := os.Lstat(target); err != nil {
		return false
	}
	return !sameDir(target, existing)
}

func sameDir(a, b string) bool {
	if a == b {
		return true
	}
	ai, err := os.Lstat(a)
	if err != nil {
		return false
	}
	bi, err := os.Lstat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// resolveTarget finds the installed package and the archive URL.
func (e *Engine) resolveTarget(req UpdateRequest) (*registry.Package, string, bool, error) {
	pkg, err := registry.Find(e.root, req.Name)
	if err != nil {
		return nil, "", false, err
	}

	url, inferred := strings.TrimSpace(req.DownloadURL), false
	if url == "" && req.RepositoryURL != "" {
		url, inferred = InferDownloadURL(req.RepositoryURL, pkg.Name)
	}
	if url == "" {
		return nil, "", false, fmt.Errorf("%w for %s: provide a download URL or a GitHub repository URL",
			ErrNoDownloadSource, pkg.Name)
	}
	if err := validation.ValidateDownloadURL(url); err != nil {
		return nil, "", false, fmt.Errorf("%w: %w", ErrNoDownloadSource, err)
	}
	return pkg, url, inferred, nil
}

// backup copies dir to its sibling backup path, replacing a stale one. A
// failure only costs rollback safety, so it is logged and "" returned.
func (e *Engine) backup(dir string, res *Result) string {
	e.enter(Backup)
	path := dir + BackupSuffix
	if err := e.ops.RemoveAll(path); err != nil {
		e.warnBackup(res, path, err)
		return ""
	}
	if err := e.ops.CopyDir(dir, path); err != nil {
		_ = e.ops.RemoveAll(path)
		e.warnBackup(res, path, err)
		return ""
	}
	res.BackedUp = true
	e.logger.Debug("backup created", "path", path)
	return path
}

func (e *Engine) warnBackup(res *Result, path string, err error) {
	e.logger.Warn("could not create backup, continuing without rollback", "path", path, "error", err)
	res.Warnings = append(res.Warnings, fmt.Sprintf("could not create backup %s: %v", path, err))
}

// rollback puts the backup back at target after a failed extraction.
func (e *Engine) rollback(target, backupPath string, cause error) error {
	e.enter(Rollback)
	if backupPath == "" {
		return &ReplaceError{Path: target, Err: cause}
	}

	// Anything at target now is partial output of the failed extraction.
	if _, err := os.Lstat(target); err == nil {
		if err := e.ops.RemoveAll(target); err != nil {
			return &RestoreError{Backup: backupPath, Target: target, ReplaceErr: cause, RestoreErr: err}
		}
	}
	if err := e.ops.CopyDir(backupPath, target); err != nil {
		e.logger.Error("restore from backup failed; manual recovery needed",
			"backup", backupPath, "target", target, "error", err)
		return &RestoreError{Backup: backupPath, Target: target, ReplaceErr: cause, RestoreErr: err}
	}
	if err := e.ops.RemoveAll(backupPath); err != nil {
		e.logger.Warn("could not remove backup after restore", "path", backupPath, "error", err)
	}
	e.logger.Info("restored previous version from backup", "path", target)
	return &ReplaceError{Path: target, Restored: true, Err: cause}
}

// fetchToTemp writes the archive to a temp file and returns its path and digest.
func (e *Engine) fetchToTemp(fetch func(io.Writer) error) (string, digest.Digest, error) {
	f, err := os.CreateTemp(e.tempDir, "skillsmp-*.skill")
	if err != nil {
		return "", "", fmt.Errorf("%w: creating temp file: %w", ErrDownloadFailed, err)
	}
	path := f.Name()

	digester := digest.SHA256.Digester()
	err = fetch(io.MultiWriter(f, digester.Hash()))
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %w", ErrDownloadFailed, cerr)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", "", err
	}
	return path, digester.Digest(), nil
}

func (e *Engine) enter(s State) {
	e.logger.Debug("install state", "state", s.String())
	if e.observer != nil {
		e.observer(s)
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// copyLocal streams a local archive into w.
func copyLocal(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFoundAtSource, path)
		}
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrDownloadFailed, path, err)
	}
	return nil
}
