// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for Pressroom.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Store configures the document store.
	Store StoreConfig `yaml:"store"`

	// Collaboration configures edit locking and presence.
	Collaboration CollaborationConfig `yaml:"collaboration"`

	// Slugs configures URL slug validation.
	Slugs SlugsConfig `yaml:"slugs"`

	// Translation configures the background translation queue.
	Translation TranslationConfig `yaml:"translation"`

	// Render configures the markdown render cache.
	Render RenderConfig `yaml:"render"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Store         *StoreConfig         `yaml:"store,omitempty"`
	Collaboration *CollaborationConfig `yaml:"collaboration,omitempty"`
	Translation   *TranslationConfig   `yaml:"translation,omitempty"`
	Render        *RenderConfig        `yaml:"render,omitempty"`
}

// StoreConfig configures the document store.
type StoreConfig struct {
	// Path is the SQLite database file.
	// Default: ${PRESSROOM_ROOT}/documents.db
	Path string `yaml:"path"`

	// PoolSize is the connection pool size.
	// Default: 0 (one connection per CPU)
	PoolSize int `yaml:"pool_size"`
}

// CollaborationConfig configures edit locking and presence.
type CollaborationConfig struct {
	// FailOpen controls what happens when the presence backend is
	// unreachable: true falls back to a process-local registry so a
	// lone editor keeps working, false refuses new edit sessions.
	// Default: true (development), false may suit clustered
	// production where a split-brain lock is worse than downtime.
	FailOpen *bool `yaml:"fail_open"`

	// LockTimeout is how long an owner may idle before the lock is
	// surrendered. Default: 30m
	LockTimeout string `yaml:"lock_timeout"`

	// WarnAfter is how long an owner may idle before the expiry
	// warning. Must be below LockTimeout. Default: 25m
	WarnAfter string `yaml:"warn_after"`

	// PollInterval is how often the expiration monitor checks.
	// Default: 60s
	PollInterval string `yaml:"poll_interval"`
}

// SlugsConfig configures URL slug validation.
type SlugsConfig struct {
	// RouteWords are router path segments that custom slugs must not
	// shadow (e.g. "admin", "api", "sitemap").
	RouteWords []string `yaml:"route_words"`

	// ExtraLanguageCodes extends the reserved ISO 639-1 set with
	// deployment-specific codes (regional variants like "pt-br").
	ExtraLanguageCodes []string `yaml:"extra_language_codes"`
}

// TranslationConfig configures the background translation queue.
type TranslationConfig struct {
	// QueueSize caps pending translation jobs. Default: 64
	QueueSize int `yaml:"queue_size"`
}

// RenderConfig configures the markdown render cache.
type RenderConfig struct {
	// MaxCacheEntries caps the rendered-HTML cache. Default: 256
	MaxCacheEntries int `yaml:"max_cache_entries"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "pressroom")
	failOpen := true

	return &Config{
		Environment: Development,
		Store: StoreConfig{
			Path: filepath.Join(defaultRoot, "documents.db"),
		},
		Collaboration: CollaborationConfig{
			FailOpen:     &failOpen,
			LockTimeout:  "30m",
			WarnAfter:    "25m",
			PollInterval: "60s",
		},
		Slugs: SlugsConfig{
			RouteWords: []string{"admin", "api", "assets", "feed", "sitemap"},
		},
		Translation: TranslationConfig{
			QueueSize: 64,
		},
		Render: RenderConfig{
			MaxCacheEntries: 256,
		},
	}
}

// Load loads configuration from the PRESSROOM_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or defaults - if PRESSROOM_CONFIG is not set,
// this fails. This ensures deterministic, auditable configuration with
// no hidden overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("PRESSROOM_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("PRESSROOM_CONFIG environment variable not set; " +
			"set it to the path of your pressroom.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables
// do not override config values. The only expansion performed is ${HOME}
// and similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production default: a clustered deployment should not
		// fork edit locks across nodes during a presence outage.
		if overrides == nil {
			failClosed := false
			overrides = &ConfigOverrides{
				Collaboration: &CollaborationConfig{
					FailOpen: &failClosed,
				},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Store != nil {
		if overrides.Store.Path != "" {
			c.Store.Path = overrides.Store.Path
		}
		if overrides.Store.PoolSize != 0 {
			c.Store.PoolSize = overrides.Store.PoolSize
		}
	}

	if overrides.Collaboration != nil {
		if overrides.Collaboration.FailOpen != nil {
			c.Collaboration.FailOpen = overrides.Collaboration.FailOpen
		}
		if overrides.Collaboration.LockTimeout != "" {
			c.Collaboration.LockTimeout = overrides.Collaboration.LockTimeout
		}
		if overrides.Collaboration.WarnAfter != "" {
			c.Collaboration.WarnAfter = overrides.Collaboration.WarnAfter
		}
		if overrides.Collaboration.PollInterval != "" {
			c.Collaboration.PollInterval = overrides.Collaboration.PollInterval
		}
	}

	if overrides.Translation != nil {
		if overrides.Translation.QueueSize != 0 {
			c.Translation.QueueSize = overrides.Translation.QueueSize
		}
	}

	if overrides.Render != nil {
		if overrides.Render.MaxCacheEntries != 0 {
			c.Render.MaxCacheEntries = overrides.Render.MaxCacheEntries
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"PRESSROOM_ROOT": filepath.Dir(c.Store.Path),
		"HOME":           os.Getenv("HOME"),
	}

	c.Store.Path = expandVars(c.Store.Path, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// FailOpenEnabled reports whether presence outages fall back to a
// local registry. The pointer field distinguishes "unset" from an
// explicit false.
func (c *CollaborationConfig) FailOpenEnabled() bool {
	if c.FailOpen == nil {
		return true
	}
	return *c.FailOpen
}

// LockTimeoutDuration returns the parsed lock timeout.
func (c *CollaborationConfig) LockTimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(c.LockTimeout)
}

// WarnAfterDuration returns the parsed warning threshold.
func (c *CollaborationConfig) WarnAfterDuration() (time.Duration, error) {
	return time.ParseDuration(c.WarnAfter)
}

// PollIntervalDuration returns the parsed monitor poll interval.
func (c *CollaborationConfig) PollIntervalDuration() (time.Duration, error) {
	return time.ParseDuration(c.PollInterval)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store.path is required"))
	}
	if c.Store.PoolSize < 0 {
		errs = append(errs, fmt.Errorf("store.pool_size must not be negative"))
	}

	lockTimeout, err := c.Collaboration.LockTimeoutDuration()
	if err != nil {
		errs = append(errs, fmt.Errorf("collaboration.lock_timeout: %w", err))
	}
	warnAfter, err := c.Collaboration.WarnAfterDuration()
	if err != nil {
		errs = append(errs, fmt.Errorf("collaboration.warn_after: %w", err))
	}
	if _, err := c.Collaboration.PollIntervalDuration(); err != nil {
		errs = append(errs, fmt.Errorf("collaboration.poll_interval: %w", err))
	}
	if lockTimeout > 0 && warnAfter > 0 && warnAfter >= lockTimeout {
		errs = append(errs, fmt.Errorf("collaboration.warn_after (%s) must be below lock_timeout (%s)",
			c.Collaboration.WarnAfter, c.Collaboration.LockTimeout))
	}

	if c.Translation.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("translation.queue_size must not be negative"))
	}
	if c.Render.MaxCacheEntries < 0 {
		errs = append(errs, fmt.Errorf("render.max_cache_entries must not be negative"))
	}

	return errors.Join(errs...)
}
