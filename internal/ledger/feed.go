// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ledger

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one record pulled from the payment provider.
type Transaction struct {
	ID     string
	Amount decimal.Decimal
	Note   string
	Time   string
}

// FeedSnapshot is a copy of the payment feed state.
type FeedSnapshot struct {
	Connected           bool
	AutoSync            bool
	SyncIntervalMinutes int
	Transactions        []Transaction
	DailyTotal          decimal.Decimal
	LastSync            time.Time
}

// HasSynced reports whether a sync time has been recorded.
func (f FeedSnapshot) HasSynced() bool {
	return !f.LastSync.IsZero()
}

// Equal reports whether two feed snapshots hold the same values.
func (f FeedSnapshot) Equal(o FeedSnapshot) bool {
	return f.Connected == o.Connected &&
		f.AutoSync == o.AutoSync &&
		f.SyncIntervalMinutes == o.SyncIntervalMinutes &&
		f.DailyTotal.Equal(o.DailyTotal) &&
		f.LastSync.Equal(o.LastSync) &&
		slices.EqualFunc(f.Transactions, o.Transactions, func(a, b Transaction) bool {
			return a.ID == b.ID && a.Amount.Equal(b.Amount) && a.Note == b.Note && a.Time == b.Time
		})
}

// Feed returns a copy of the payment feed state.
func (l *Ledger) Feed() FeedSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.feedSnapshotLocked()
}

func (l *Ledger) feedSnapshotLocked() FeedSnapshot {
	return FeedSnapshot{
		Connected:           l.feed.connected,
		AutoSync:            l.feed.autoSync,
		SyncIntervalMinutes: l.feed.interval,
		Transactions:        slices.Clone(l.feed.transactions),
		DailyTotal:          l.feed.dailyTotal,
		LastSync:            l.feed.lastSync,
	}
}

// SyncSchedule is the part of the feed state the auto-syncer reads on
// every tick.
type SyncSchedule struct {
	Connected       bool
	AutoSync        bool
	IntervalMinutes int
}

// Due reports whether an automatic sync should run.
func (s SyncSchedule) Due() bool {
	return s.Connected && s.AutoSync
}

// SyncSchedule returns the connection flag, auto-sync flag and interval
// without copying the transaction log.
func (l *Ledger) SyncSchedule() SyncSchedule {
	l.mu.Lock()
	defer l.mu.Unlock()
	return SyncSchedule{
		Connected:       l.feed.connected,
		AutoSync:        l.feed.autoSync,
		IntervalMinutes: l.feed.interval,
	}
}

// Connected reports whether the payment feed is connected.
func (l *Ledger) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.feed.connected
}

// Credential returns the stored provider credential, empty when disconnected.
func (l *Ledger) Credential() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.feed.credential
}

// Connect marks the feed connected with auto-sync off and records the
// connection time as the last sync.
func (l *Ledger) Connect(credential string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.feed.connected {
		return ErrAlreadyConnected
	}
	l.feed.connected = true
	l.feed.autoSync = false
	l.feed.credential = credential
	l.feed.lastSync = l.now()
	return nil
}

// Disconnect marks the feed disconnected, turns auto-sync off and forgets
// the credential. Synced transactions are kept.
func (l *Ledger) Disconnect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.feed.connected {
		return ErrNotConnected
	}
	l.feed.connected = false
	l.feed.autoSync = false
	l.feed.credential = ""
	return nil
}

// RecordSync appends a batch of synced transactions and returns the new daily
// total. The whole batch is rejected if any amount is negative.
func (l *Ledger) RecordSync(batch []Transaction) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.feed.connected {
		return l.feed.dailyTotal, ErrNotConnected
	}

	sum := decimal.Zero
	for _, tx := range batch {
		if tx.Amount.IsNegative() {
			return l.feed.dailyTotal, ErrNegativeAmount
		}
		sum = sum.Add(tx.Amount)
	}

	l.feed.transactions = append(l.feed.transactions, batch...)
	l.feed.dailyTotal = l.feed.dailyTotal.Add(sum)
	l.feed.lastSync = l.now()
	return l.feed.dailyTotal, nil
}

// SetAutoSync turns periodic syncing on or off. It requires a connection.
func (l *Ledger) SetAutoSync(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.feed.connected {
		return ErrNotConnected
	}
	l.feed.autoSync = on
	return nil
}

// SetSyncInterval sets the auto-sync period. Only SyncIntervals are accepted.
func (l *Ledger) SetSyncInterval(minutes int) error {
	if !slices.Contains(SyncIntervals, minutes) {
		return ErrInvalidInterval
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.feed.interval = minutes
	return nil
}

// ApplyDailyTotal adds the feed's daily total to net profit and returns the
// amount applied together with the new net profit.
func (l *Ledger) ApplyDailyTotal() (applied, netProfit decimal.Decimal, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.feed.connected {
		return decimal.Zero, l.netProfit, ErrNotConnected
	}
	l.netProfit = l.netProfit.Add(l.feed.dailyTotal)
	return l.feed.dailyTotal, l.netProfit, nil
}
