// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/slushie-cfo/internal/assistant"
	"github.com/jeranaias/slushie-cfo/internal/config"
)

// defaultReloadDebounce collapses the burst of events one save produces.
const defaultReloadDebounce = 200 * time.Millisecond

// configFile returns the config file a front end reads: --config, or the
// default location.
func configFile(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPath()
}

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// ConfigWatcher reloads the config file into a running App when it changes
// on disk. The file's directory is watched rather than the file, so saves
// that replace the file by rename are seen, as is a file created after start.
type ConfigWatcher struct {
	app      *App
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	sessions []*assistant.Session

	// OnReload is called after each reload attempt. Optional.
	OnReload func(error)
}

// WatchConfig starts watching path. Reloads are applied to the app and to
// sessions. Call Run or Start to process changes.
func (a *App) WatchConfig(path string, sessions ...*assistant.Session) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &ConfigWatcher{
		app:      a,
		path:     abs,
		watcher:  w,
		debounce: defaultReloadDebounce,
		sessions: sessions,
	}, nil
}

// Run processes file events until ctx is cancelled, then closes the watcher.
func (cw *ConfigWatcher) Run(ctx context.Context) {
	defer cw.watcher.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(cw.debounce)
			} else {
				timer.Reset(cw.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			cw.reload()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.app.Logger.Warn("config watcher error", "error", err)
		}
	}
}

// Start runs the watcher in a new goroutine.
func (cw *ConfigWatcher) Start(ctx context.Context) {
	go cw.Run(ctx)
}

// reload keeps the running settings when the file does not load.
func (cw *ConfigWatcher) reload() {
	cfg, err := config.LoadFromPath(cw.path)
	if err == nil {
		err = cw.app.Reload(cfg, cw.sessions...)
	}
	if err != nil {
		cw.app.Logger.Warn("config not reloaded", "path", cw.path, "error", err)
	} else {
		cw.app.Logger.Info("config reloaded", "path", cw.path,
			"sync_interval_minutes", cfg.Payments.SyncIntervalMinutes,
			"auto_sync", cfg.Payments.AutoSync,
		)
	}
	if cw.OnReload != nil {
		cw.OnReload(err)
	}
}

// watchConfig starts a watcher for the front end's config file. A config
// directory that does not exist yet is not an error; the session just
// keeps its start-up settings.
func watchConfig(ctx context.Context, app *App, args Args, sessions ...*assistant.Session) {
	path, err := configFile(args)
	if err == nil {
		var cw *ConfigWatcher
		if cw, err = app.WatchConfig(path, sessions...); err == nil {
			cw.Start(ctx)
			return
		}
	}
	app.Logger.Debug("config live reload disabled", "error", err)
}
