// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package payments

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jeranaias/slushie-cfo/internal/ledger"
	"github.com/jeranaias/slushie-cfo/internal/logging"
)

// SyncResult describes one completed sync.
type SyncResult struct {
	Added      int
	DailyTotal decimal.Decimal
}

// Feed drives the ledger's payment feed through a Provider.
type Feed struct {
	mu       sync.Mutex
	provider Provider
	ledger   *ledger.Ledger
	logger   *slog.Logger

	// autoSyncOnConnect enables auto-sync after each successful Connect.
	autoSyncOnConnect bool
}

// NewFeed binds a provider to a ledger. A nil logger discards output.
func NewFeed(provider Provider, l *ledger.Ledger, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Feed{
		provider: provider,
		ledger:   l,
		logger:   logger.With("provider", provider.Name()),
	}
}

// ProviderName returns the display name of the bound provider.
func (f *Feed) ProviderName() string {
	return f.provider.Name()
}

// Ledger returns the ledger the feed writes to.
func (f *Feed) Ledger() *ledger.Ledger {
	return f.ledger
}

// SetAutoSyncOnConnect makes Connect turn auto-sync on once connected.
func (f *Feed) SetAutoSyncOnConnect(on bool) {
	f.mu.Lock()
	f.autoSyncOnConnect = on
	f.mu.Unlock()
}

// Connect authenticates with the provider and marks the feed connected.
func (f *Feed) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ledger.Connected() {
		return ledger.ErrAlreadyConnected
	}
	credential, err := f.provider.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect %s: %w", f.provider.Name(), err)
	}
	if err := f.ledger.Connect(credential); err != nil {
		return err
	}
	if f.autoSyncOnConnect {
		if err := f.ledger.SetAutoSync(true); err != nil {
			return err
		}
	}
	f.logger.Info("payment feed connected", "auto_sync", f.autoSyncOnConnect)
	return nil
}

// Sync pulls a batch of transactions into the ledger.
func (f *Feed) Sync(ctx context.Context) (SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	credential := f.ledger.Credential()
	if !f.ledger.Connected() {
		return SyncResult{}, ledger.ErrNotConnected
	}
	batch, err := f.provider.Sync(ctx, credential)
	if err != nil {
		return SyncResult{}, fmt.Errorf("sync %s: %w", f.provider.Name(), err)
	}
	total, err := f.ledger.RecordSync(batch)
	if err != nil {
		return SyncResult{}, err
	}
	f.logger.Info("payment feed synced", "added", len(batch), "daily_total", total.StringFixed(2))
	return SyncResult{Added: len(batch), DailyTotal: total}, nil
}

// Disconnect revokes the credential and marks the feed disconnected. The
// ledger is disconnected even if the provider fails to revoke.
func (f *Feed) Disconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	credential := f.ledger.Credential()
	if err := f.ledger.Disconnect(); err != nil {
		return err
	}
	if err := f.provider.Disconnect(ctx, credential); err != nil {
		f.logger.Warn("provider disconnect failed", "error", err)
	}
	f.logger.Info("payment feed disconnected")
	return nil
}

// SetAutoSync turns periodic syncing on or off.
func (f *Feed) SetAutoSync(on bool) error {
	if err := f.ledger.SetAutoSync(on); err != nil {
		return err
	}
	f.logger.Info("auto-sync changed", "enabled", on)
	return nil
}

// SetInterval changes the auto-sync period in minutes.
func (f *Feed) SetInterval(minutes int) error {
	if err := f.ledger.SetSyncInterval(minutes); err != nil {
		return fmt.Errorf("%w: %d minutes", err, minutes)
	}
	f.logger.Info("sync interval changed", "minutes", minutes)
	return nil
}

// ApplyToProfits adds the feed's daily total to net profit.
func (f *Feed) ApplyToProfits() (applied, netProfit decimal.Decimal, err error) {
	applied, netProfit, err = f.ledger.ApplyDailyTotal()
	if err != nil {
		return applied, netProfit, err
	}
	f.logger.Info("daily total applied to net profit", "amount", applied.StringFixed(2))
	return applied, netProfit, nil
}
