// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/stacklok/skillsmp/credential"
	"github.com/stacklok/skillsmp/logging"
	"github.com/stacklok/skillsmp/marketplace"
	validation "github.com/stacklok/skillsmp/validation/http"
)

const (
	// AppName names the config directory.
	AppName = "skillsmp"
	// FileName is the config file inside the config directory.
	FileName = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. SKILLSMP_SKILLS_DIR.
	EnvPrefix = "SKILLSMP"
)

var (
	// ErrNotFound is returned when an explicitly named config file is missing.
	ErrNotFound = errors.New("config file not found")

	// ErrInvalid is returned when a setting has an unusable value.
	ErrInvalid = errors.New("invalid configuration")
)

// Config holds the resolved settings.
type Config struct {
	APIBaseURL      string        `mapstructure:"api_base_url"`
	SkillsDir       string        `mapstructure:"skills_dir"`
	CredentialDir   string        `mapstructure:"credential_dir"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	LogFormat       string        `mapstructure:"log_format"`
	LogLevel        string        `mapstructure:"log_level"`

	// File is the config file that was read, or "" when none was.
	File string `mapstructure:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		APIBaseURL:      marketplace.DefaultBaseURL,
		CredentialDir:   credential.DefaultBaseDir(),
		RequestTimeout:  marketplace.DefaultTimeout,
		DownloadTimeout: 30 * time.Second,
		CacheTTL:        24 * time.Hour,
		LogFormat:       "text",
		LogLevel:        "info",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/skillsmp/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, FileName)
}

// Load reads the configuration. An explicit path must exist; with path ""
// the default location is used when present and skipped otherwise.
func Load(path string) (*Config, error) {
	return load(path, DefaultPath())
}

func load(path, defaultPath string) (*Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("api_base_url", d.APIBaseURL)
	v.SetDefault("skills_dir", d.SkillsDir)
	v.SetDefault("credential_dir", d.CredentialDir)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("download_timeout", d.DownloadTimeout)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("log_level", d.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	file := ""
	switch {
	case path != "":
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		file = path
	case defaultPath != "":
		if _, err := os.Stat(defaultPath); err == nil {
			file = defaultPath
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.File = file
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.APIBaseURL != "" {
		if err := validation.ValidateBaseURL(c.APIBaseURL); err != nil {
			errs = append(errs, fmt.Errorf("api_base_url: %w", err))
		}
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.DownloadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("download_timeout must be positive, got %s", c.DownloadTimeout))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL))
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, fmt.Errorf("log_format: %w", err))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
