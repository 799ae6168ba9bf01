// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when no --config flag is
// given.
const EnvironmentVariable = "TIMEKEEP_CONFIG"

// Store backends, as spelled in the file.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Time authorities, as spelled in the file.
const (
	AuthorityTimeAPI  = "timeapi"
	AuthorityHTTPDate = "http-date"
	AuthorityNone     = "none"
)

// Config is the complete timekeep configuration.
type Config struct {
	// Store selects where engine state is persisted.
	Store StoreConfig `yaml:"store"`

	// Stopwatch and Countdown tune the engines' recomputation.
	Stopwatch EngineConfig `yaml:"stopwatch"`
	Countdown EngineConfig `yaml:"countdown"`

	// Clock configures synchronization and display of the wall clock.
	Clock ClockConfig `yaml:"clock"`

	// Log configures diagnostics.
	Log LogConfig `yaml:"log"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Backend is sqlite, file, or memory. Default: sqlite.
	Backend string `yaml:"backend"`

	// Path is the database or snapshot file. Empty selects a
	// backend-specific file under ${XDG_STATE_HOME:-~/.local/state}/timekeep.
	Path string `yaml:"path"`
}

// EngineConfig tunes one timing engine.
type EngineConfig struct {
	// TickInterval is how often the displayed value is recomputed
	// while running. Default: 10ms.
	TickInterval string `yaml:"tick_interval"`
}

// ClockConfig configures the synchronized clock.
type ClockConfig struct {
	// Authority is timeapi, http-date, or none. Default: timeapi.
	Authority string `yaml:"authority"`

	// HTTPDateURL is queried by the http-date authority.
	// Default: https://www.google.com
	HTTPDateURL string `yaml:"http_date_url"`

	// ResyncInterval is the period between syncs. Default: 1h.
	ResyncInterval string `yaml:"resync_interval"`

	// SyncTimeout bounds one authority query. Default: 10s.
	SyncTimeout string `yaml:"sync_timeout"`

	// Timezone is an IANA zone name or "Local". Default: Local.
	Timezone string `yaml:"timezone"`
}

// LogConfig configures diagnostics.
type LogConfig struct {
	// Level is debug, info, warn, or error. Default: info.
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given, and
// the base that a file is merged onto.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendSQLite,
		},
		Stopwatch: EngineConfig{TickInterval: "10ms"},
		Countdown: EngineConfig{TickInterval: "10ms"},
		Clock: ClockConfig{
			Authority:      AuthorityTimeAPI,
			HTTPDateURL:    "https://www.google.com",
			ResyncInterval: "1h",
			SyncTimeout:    "10s",
			Timezone:       "Local",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load loads configuration from the file named by TIMEKEEP_CONFIG. It
// fails if the variable is not set; use Resolve for the command-line
// behaviour that falls back to Default.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your timekeep.yaml, or use --config", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, merged onto Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

// Resolve returns the configuration for a command invocation: the file
// at flagPath if non-empty, else the file named by TIMEKEEP_CONFIG if
// set, else Default.
func Resolve(flagPath string) (*Config, error) {
	if flagPath != "" {
		return LoadFile(flagPath)
	}
	if os.Getenv(EnvironmentVariable) != "" {
		return Load()
	}
	cfg := Default()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Store.Path = expandVars(c.Store.Path, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	backends := []string{BackendSQLite, BackendFile, BackendMemory}
	if !slices.Contains(backends, c.Store.Backend) {
		errs = append(errs, fmt.Errorf("store.backend must be one of %v, got %q", backends, c.Store.Backend))
	}

	errs = appendDurationError(errs, "stopwatch.tick_interval", c.Stopwatch.TickInterval)
	errs = appendDurationError(errs, "countdown.tick_interval", c.Countdown.TickInterval)
	errs = appendDurationError(errs, "clock.resync_interval", c.Clock.ResyncInterval)
	errs = appendDurationError(errs, "clock.sync_timeout", c.Clock.SyncTimeout)

	authorities := []string{AuthorityTimeAPI, AuthorityHTTPDate, AuthorityNone}
	if !slices.Contains(authorities, c.Clock.Authority) {
		errs = append(errs, fmt.Errorf("clock.authority must be one of %v, got %q", authorities, c.Clock.Authority))
	}
	if c.Clock.Authority == AuthorityHTTPDate && c.Clock.HTTPDateURL == "" {
		errs = append(errs, fmt.Errorf("clock.http_date_url is required for the http-date authority"))
	}
	if _, err := c.Clock.Location(); err != nil {
		errs = append(errs, fmt.Errorf("clock.timezone: %w", err))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

func appendDurationError(errs []error, field, value string) []error {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", field, err))
	}
	if duration <= 0 {
		return append(errs, fmt.Errorf("%s must be positive, got %s", field, value))
	}
	return errs
}

// mustDuration parses a duration that Validate has accepted.
func mustDuration(value string) time.Duration {
	duration, _ := time.ParseDuration(value)
	return duration
}

// Tick returns the parsed tick interval.
func (e EngineConfig) Tick() time.Duration {
	return mustDuration(e.TickInterval)
}

// Resync returns the parsed resync interval.
func (c ClockConfig) Resync() time.Duration {
	return mustDuration(c.ResyncInterval)
}

// Timeout returns the parsed sync timeout.
func (c ClockConfig) Timeout() time.Duration {
	return mustDuration(c.SyncTimeout)
}

// Location resolves Timezone. "Local" and the empty string mean the
// system zone.
func (c ClockConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// SlogLevel returns the parsed log level, or info if it does not parse.
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// StorePath returns Store.Path, or the backend's default file when it
// is empty. The memory backend has no path.
func (c *Config) StorePath() string {
	if c.Store.Path != "" || c.Store.Backend == BackendMemory {
		return c.Store.Path
	}
	name := "state.db"
	if c.Store.Backend == BackendFile {
		name = "state.cbor"
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = filepath.Join(os.Getenv("HOME"), ".local", "state")
	}
	return filepath.Join(stateHome, "timekeep", name)
}

// EnsurePaths creates the directory that holds the store file.
func (c *Config) EnsurePaths() error {
	path := c.StorePath()
	if path == "" {
		return nil
	}
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating %s: %w", directory, err)
	}
	return nil
}
