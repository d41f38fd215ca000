// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events publishes a record of every ledger-changing command so
// other systems (bookkeeping, dashboards) can follow the session.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTopic is the Kafka topic ledger events are written to.
const DefaultTopic = "slushie.ledger.changed"

// LedgerChanged is emitted after a command mutates the ledger.
type LedgerChanged struct {
	ID         string          `json:"id"`
	Command    string          `json:"command"`
	Input      string          `json:"input"`
	NetProfit  decimal.Decimal `json:"net_profit"`
	TotalSales int64           `json:"total_sales"`
	DailyTotal decimal.Decimal `json:"daily_total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewLedgerChanged fills in a fresh event ID and timestamp.
func NewLedgerChanged(command, input string, at time.Time) LedgerChanged {
	return LedgerChanged{
		ID:         uuid.New().String(),
		Command:    command,
		Input:      input,
		OccurredAt: at.UTC(),
	}
}

// Publisher delivers ledger events.
type Publisher interface {
	Publish(ctx context.Context, event LedgerChanged) error
	Close() error
}

// =============================================================================
// NOOP
// =============================================================================

// Noop drops every event.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, LedgerChanged) error { return nil }

// Close implements Publisher.
func (Noop) Close() error { return nil }

// =============================================================================
// RECORDER
// =============================================================================

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []LedgerChanged
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, event LedgerChanged) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Close implements Publisher.
func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []LedgerChanged {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LedgerChanged, len(r.events))
	copy(out, r.events)
	return out
}
