// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package payments

import (
	"context"
	"time"
)

// AutoSyncer syncs a Feed every SyncIntervalMinutes while the feed is
// connected with auto-sync enabled. The interval is re-read after every
// tick so /venmo interval takes effect on the next cycle.
type AutoSyncer struct {
	feed *Feed
	unit time.Duration

	// OnSync is called after each automatic sync attempt. Optional.
	OnSync func(SyncResult, error)
}

// NewAutoSyncer creates an auto-syncer for feed. The interval unit is one
// minute.
func NewAutoSyncer(feed *Feed) *AutoSyncer {
	return &AutoSyncer{feed: feed, unit: time.Minute}
}

// WithUnit changes the length of one interval unit and returns a. Tests use
// milliseconds.
func (a *AutoSyncer) WithUnit(unit time.Duration) *AutoSyncer {
	if unit > 0 {
		a.unit = unit
	}
	return a
}

// Run blocks until ctx is cancelled.
func (a *AutoSyncer) Run(ctx context.Context) {
	for {
		wait := time.Duration(a.feed.ledger.SyncSchedule().IntervalMinutes) * a.unit
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if !a.feed.ledger.SyncSchedule().Due() {
			continue
		}

		res, err := a.feed.Sync(ctx)
		if err != nil {
			a.feed.logger.Warn("auto-sync failed", "error", err)
		}
		if a.OnSync != nil {
			a.OnSync(res, err)
		}
	}
}

// Start runs the auto-syncer in a new goroutine.
func (a *AutoSyncer) Start(ctx context.Context) {
	go a.Run(ctx)
}
