// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/slushie-cfo/internal/assistant"
	"github.com/jeranaias/slushie-cfo/internal/commands"
	"github.com/jeranaias/slushie-cfo/internal/config"
	"github.com/jeranaias/slushie-cfo/internal/events"
	"github.com/jeranaias/slushie-cfo/internal/ledger"
	"github.com/jeranaias/slushie-cfo/internal/logging"
	"github.com/jeranaias/slushie-cfo/internal/ollama"
	"github.com/jeranaias/slushie-cfo/internal/payments"
)

// App holds the components every front end shares.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Ledger    *ledger.Ledger
	Feed      *payments.Feed
	Publisher events.Publisher
	Interp    *commands.Interpreter
	Client    *ollama.Client
	Service   *assistant.OllamaService

	// mu guards the Config fields Reload rewrites.
	mu      sync.Mutex
	closers []func() error
}

// LoadConfig loads the config named by args, or the default config file,
// then applies command-line overrides.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.Model != "" {
		cfg.Assistant.Model = args.Model
	}
	if args.Verbose {
		cfg.Logging.Level = "debug"
	}
	if args.NoColor {
		cfg.UI.NoColor = true
	}
	if cfg.UI.NoColor {
		DisableColors()
	}
	return cfg, nil
}

// NewApp wires the ledger, payment feed, event publisher, interpreter, and
// Ollama client from cfg. Log text goes to stderr.
func NewApp(cfg *config.Config, stderr io.Writer) (*App, error) {
	app := &App{Config: cfg}

	logger, closeLog, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Journal: cfg.Logging.Journal,
		Stderr:  stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	app.Logger = logger
	app.closers = append(app.closers, closeLog)

	app.Ledger = ledger.New()
	if err := app.Ledger.SetSyncInterval(cfg.Payments.SyncIntervalMinutes); err != nil {
		app.Close()
		return nil, err
	}

	app.Feed = payments.NewFeed(payments.NewStubProvider(nil), app.Ledger, logger)
	app.Feed.SetAutoSyncOnConnect(cfg.Payments.AutoSync)

	app.Publisher = events.Noop{}
	if cfg.Events.Enabled {
		pub, err := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to set up event publisher: %w", err)
		}
		app.Publisher = pub
		logger.Info("publishing ledger events", "topic", pub.Topic(), "brokers", cfg.Events.Brokers)
	}
	app.closers = append(app.closers, app.Publisher.Close)

	app.Interp = commands.New(app.Ledger,
		commands.WithFeed(app.Feed),
		commands.WithPublisher(app.Publisher),
		commands.WithLogger(logger),
	)

	app.Client = ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:       cfg.Assistant.OllamaURL,
		StreamTimeout: time.Duration(cfg.Assistant.TimeoutSecs) * time.Second,
		DefaultModel:  cfg.Assistant.Model,
	})
	app.Service = assistant.NewOllamaService(app.Client, cfg.Assistant.Model)

	return app, nil
}

// Profile returns the assistant profile configured in the config file.
func (a *App) Profile() assistant.Profile {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := assistant.DefaultProfile()
	if c, err := assistant.Resolve(a.Config.Assistant.Context, assistant.Contexts); err == nil {
		p.Context = c
	}
	if t, err := assistant.Resolve(a.Config.Assistant.Tone, assistant.Tones); err == nil {
		p.Tone = t
	}
	p.Background = a.Config.Assistant.Background
	return p
}

// NewSession starts a chat session over the app's interpreter.
func (a *App) NewSession() *assistant.Session {
	return assistant.NewSession(a.Interp, a.Service,
		assistant.WithProfile(a.Profile()),
		assistant.WithLimiter(assistant.NewLimiter(a.Config.Assistant.RequestsPerMinute)),
		assistant.WithLogger(a.Logger),
	)
}

// StartAutoSync runs the payment auto-syncer until ctx is cancelled. Syncs
// that add transactions publish a ledger event like /venmo sync does.
// onSync, if non-nil, is told about each automatic sync.
func (a *App) StartAutoSync(ctx context.Context, onSync func(payments.SyncResult, error)) {
	syncer := payments.NewAutoSyncer(a.Feed)
	syncer.OnSync = func(res payments.SyncResult, err error) {
		a.autoSynced(ctx, res, err)
		if onSync != nil {
			onSync(res, err)
		}
	}
	syncer.Start(ctx)
}

// AutoSyncCommand names automatic syncs in published ledger events.
const AutoSyncCommand = "venmo_auto_sync"

func (a *App) autoSynced(ctx context.Context, res payments.SyncResult, err error) {
	if err != nil || res.Added == 0 {
		return
	}
	a.Interp.Publish(ctx, AutoSyncCommand, "")
}

// Reload applies the settings of cfg that can change while the app runs:
// the sync interval, auto-sync, and the assistant profile. Profile fields
// are pushed to sessions only when they differ from the previous config, so
// a /tone chosen in chat survives an unrelated edit. Everything else in cfg
// takes effect on the next start.
func (a *App) Reload(cfg *config.Config, sessions ...*assistant.Session) error {
	a.mu.Lock()
	prev := *a.Config
	a.Config.Payments.SyncIntervalMinutes = cfg.Payments.SyncIntervalMinutes
	a.Config.Payments.AutoSync = cfg.Payments.AutoSync
	a.Config.Assistant.Context = cfg.Assistant.Context
	a.Config.Assistant.Tone = cfg.Assistant.Tone
	a.Config.Assistant.Background = cfg.Assistant.Background
	a.mu.Unlock()

	var errs []error
	if err := a.Feed.SetInterval(cfg.Payments.SyncIntervalMinutes); err != nil {
		errs = append(errs, err)
	}
	a.Feed.SetAutoSyncOnConnect(cfg.Payments.AutoSync)
	if cfg.Payments.AutoSync != prev.Payments.AutoSync && a.Ledger.SyncSchedule().Connected {
		if err := a.Feed.SetAutoSync(cfg.Payments.AutoSync); err != nil {
			errs = append(errs, err)
		}
	}

	for _, s := range sessions {
		if cfg.Assistant.Context != prev.Assistant.Context {
			if _, err := s.SetContext(cfg.Assistant.Context); err != nil {
				errs = append(errs, err)
			}
		}
		if cfg.Assistant.Tone != prev.Assistant.Tone {
			if _, err := s.SetTone(cfg.Assistant.Tone); err != nil {
				errs = append(errs, err)
			}
		}
		if cfg.Assistant.Background != prev.Assistant.Background {
			s.SetBackground(cfg.Assistant.Background)
		}
	}
	return errors.Join(errs...)
}

// Close releases the publisher and log file.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
