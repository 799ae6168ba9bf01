// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/timekeep/cmd/timekeep/cli"
	"github.com/bureau-foundation/timekeep/lib/anchor"
	"github.com/bureau-foundation/timekeep/lib/clock"
	"github.com/bureau-foundation/timekeep/lib/config"
	"github.com/bureau-foundation/timekeep/lib/countdown"
	"github.com/bureau-foundation/timekeep/lib/kvstore"
	"github.com/bureau-foundation/timekeep/lib/realtime"
	"github.com/bureau-foundation/timekeep/lib/stopwatch"
	"github.com/bureau-foundation/timekeep/lib/timeauthority"
)

// App holds the process-level dependencies shared by every command.
// The zero value writes to the process's stdout and stderr and uses the
// real clock and the configured time authority.
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Authority, when set, replaces the authority named in the
	// configuration.
	Authority timeauthority.Authority
}

func (app *App) stdout() io.Writer {
	if app.Stdout == nil {
		return os.Stdout
	}
	return app.Stdout
}

func (app *App) stderr() io.Writer {
	if app.Stderr == nil {
		return os.Stderr
	}
	return app.Stderr
}

func (app *App) clock() clock.Clock {
	if app.Clock == nil {
		return clock.Real()
	}
	return app.Clock
}

// globalOptions are the root flags, available before any subcommand.
type globalOptions struct {
	configPath  string
	backend     string
	storePath   string
	showVersion bool
}

func (options *globalOptions) flagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("timekeep", pflag.ContinueOnError)
	flagSet.StringVar(&options.configPath, "config", "", "path to timekeep.yaml (default: $"+config.EnvironmentVariable+", then built-in defaults)")
	flagSet.StringVar(&options.backend, "store", "", "store backend: sqlite, file, or memory (overrides store.backend)")
	flagSet.StringVar(&options.storePath, "store-path", "", "store file path (overrides store.path)")
	flagSet.BoolVar(&options.showVersion, "version", false, "print version information and exit")
	return flagSet
}

// session is one command invocation's configuration and open store.
type session struct {
	app    *App
	config *config.Config
	store  kvstore.Store
	logger *slog.Logger
}

// open resolves the configuration, applies the root flag overrides,
// and opens the store it names. A nil logger selects the stderr command
// logger at the configured level. The caller must Close the session.
func (app *App) open(options *globalOptions, logger *slog.Logger) (*session, error) {
	cfg, err := config.Resolve(options.configPath)
	if err != nil {
		return nil, cli.Validation("loading configuration: %w", err)
	}
	if options.backend != "" {
		cfg.Store.Backend = options.backend
	}
	if options.storePath != "" {
		cfg.Store.Path = options.storePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration: %w", err)
	}

	if logger == nil {
		logger = cli.NewCommandLogger(app.stderr(), cfg.Log.SlogLevel())
	}
	if err := cfg.EnsurePaths(); err != nil {
		return nil, cli.Internal("preparing store directory: %w", err)
	}
	store, err := kvstore.Open(kvstore.Options{
		Backend: kvstore.Backend(cfg.Store.Backend),
		Path:    cfg.StorePath(),
		Logger:  logger,
	})
	if err != nil {
		return nil, cli.Internal("opening %s store: %w", cfg.Store.Backend, err)
	}
	return &session{app: app, config: cfg, store: store, logger: logger}, nil
}

// withSession opens a session, runs fn, and closes the session.
func (app *App) withSession(options *globalOptions, fn func(*session) error) error {
	return app.withSessionLogger(options, nil, fn)
}

// withSessionLogger is withSession with every component of the session,
// the store included, logging to logger instead of stderr.
func (app *App) withSessionLogger(options *globalOptions, logger *slog.Logger, fn func(*session) error) error {
	s, err := app.open(options, logger)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing store failed", "error", err)
	}
}

func (s *session) stopwatch() *stopwatch.Engine {
	return stopwatch.New(stopwatch.Config{
		Clock:        s.app.clock(),
		Repository:   anchor.NewStopwatchRepository(s.store, s.logger),
		Logger:       s.logger.With("engine", "stopwatch"),
		TickInterval: s.config.Stopwatch.Tick(),
	})
}

func (s *session) countdown() *countdown.Engine {
	return countdown.New(countdown.Config{
		Clock:        s.app.clock(),
		Repository:   anchor.NewCountdownRepository(s.store, s.logger),
		Logger:       s.logger.With("engine", "countdown"),
		TickInterval: s.config.Countdown.Tick(),
	})
}

func (s *session) views() *anchor.ViewRepository {
	return anchor.NewViewRepository(s.store, s.logger)
}

// realTime builds the clock sync engine. logger replaces the session
// logger so the TUI can route sync warnings to its status bar.
func (s *session) realTime(logger *slog.Logger) (*realtime.Engine, error) {
	location, err := s.config.Clock.Location()
	if err != nil {
		return nil, cli.Validation("clock.timezone: %w", err)
	}
	return realtime.New(realtime.Config{
		Clock:          s.app.clock(),
		Authority:      s.authority(),
		Preferences:    anchor.NewPreferencesRepository(s.store, logger),
		Logger:         logger.With("engine", "clock"),
		ResyncInterval: s.config.Clock.Resync(),
		SyncTimeout:    s.config.Clock.Timeout(),
		Location:       location,
	}), nil
}

func (s *session) authority() timeauthority.Authority {
	if s.app.Authority != nil {
		return s.app.Authority
	}
	switch s.config.Clock.Authority {
	case config.AuthorityTimeAPI:
		return &timeauthority.IPTimeAPI{}
	case config.AuthorityHTTPDate:
		return &timeauthority.HTTPDate{URL: s.config.Clock.HTTPDateURL}
	default:
		return timeauthority.None
	}
}
