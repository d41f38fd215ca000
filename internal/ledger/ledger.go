// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ledger holds the in-memory business state of one session: net
// profit, units sold, the best-day label, notes and the simulated payment
// feed.
//
// A Ledger is created explicitly and passed to whoever mutates it. Every
// method takes the ledger's lock for its whole read-modify-write, so the
// command interpreter, the auto-syncer and any direct caller can share one
// instance and each call is a single atomic transaction.
package ledger

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBestDay is the label shown before a best day has been recorded.
const DefaultBestDay = "None"

// DefaultSyncInterval is the auto-sync period in minutes for a new ledger.
const DefaultSyncInterval = 5

// SyncIntervals lists the permitted auto-sync periods in minutes.
var SyncIntervals = []int{1, 5, 10, 15, 30}

var (
	// ErrNegativeSales is returned when a change would leave the unit count below zero.
	ErrNegativeSales = errors.New("total sales cannot be negative")

	// ErrNotConnected is returned for feed operations that need a connection.
	ErrNotConnected = errors.New("payment feed not connected")

	// ErrAlreadyConnected is returned when connecting an already connected feed.
	ErrAlreadyConnected = errors.New("payment feed already connected")

	// ErrInvalidInterval is returned for sync intervals outside SyncIntervals.
	ErrInvalidInterval = errors.New("invalid sync interval")

	// ErrNegativeAmount is returned when a payment record has a negative amount.
	ErrNegativeAmount = errors.New("transaction amount cannot be negative")
)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger is the mutable business state for a session.
type Ledger struct {
	mu sync.Mutex

	netProfit  decimal.Decimal
	totalSales int64
	bestDay    string
	notes      []string

	feed feedState

	now func() time.Time
}

// feedState is the payment feed portion of the ledger.
type feedState struct {
	connected    bool
	autoSync     bool
	interval     int
	transactions []Transaction
	dailyTotal   decimal.Decimal
	lastSync     time.Time
	credential   string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used for sync timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// New returns a ledger holding the default values.
func New(opts ...Option) *Ledger {
	l := &Ledger{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	l.resetMetrics()
	l.feed = feedState{interval: DefaultSyncInterval}
	return l
}

func (l *Ledger) resetMetrics() {
	l.netProfit = decimal.Zero
	l.totalSales = 0
	l.bestDay = DefaultBestDay
	l.notes = nil
}

// =============================================================================
// BUSINESS METRICS
// =============================================================================

// NetProfit returns the current net profit.
func (l *Ledger) NetProfit() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.netProfit
}

// AddNetProfit adds delta, which may be negative, and returns the new total.
func (l *Ledger) AddNetProfit(delta decimal.Decimal) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.netProfit = l.netProfit.Add(delta)
	return l.netProfit
}

// SetNetProfit replaces the net profit.
func (l *Ledger) SetNetProfit(v decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.netProfit = v
}

// TotalSales returns the number of units sold.
func (l *Ledger) TotalSales() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalSales
}

// AddSales adds delta units and returns the new total. A delta that would
// take the total below zero is rejected with ErrNegativeSales and the
// total is left unchanged.
func (l *Ledger) AddSales(delta int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := l.totalSales + delta
	if next < 0 || (delta > 0 && next < l.totalSales) {
		return l.totalSales, ErrNegativeSales
	}
	l.totalSales = next
	return next, nil
}

// SetTotalSales replaces the unit count. Negative counts are rejected.
func (l *Ledger) SetTotalSales(n int64) error {
	if n < 0 {
		return ErrNegativeSales
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totalSales = n
	return nil
}

// BestDay returns the best-day label.
func (l *Ledger) BestDay() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bestDay
}

// SetBestDay replaces the best-day label.
func (l *Ledger) SetBestDay(day string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bestDay = day
}

// Notes returns a copy of the notes in insertion order.
func (l *Ledger) Notes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.notes)
}

// AddNote appends a note and returns the new note count.
func (l *Ledger) AddNote(note string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notes = append(l.notes, note)
	return len(l.notes)
}

// ClearNotes removes every note.
func (l *Ledger) ClearNotes() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notes = nil
}

// =============================================================================
// RESET
// =============================================================================

// ResetAll restores net profit, sales, best day and notes to their defaults.
// The payment feed is an integration rather than a metric and keeps its
// connection and records.
func (l *Ledger) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetMetrics()
}

// ResetProfits sets net profit back to zero.
func (l *Ledger) ResetProfits() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.netProfit = decimal.Zero
}

// ResetSales sets the unit count back to zero.
func (l *Ledger) ResetSales() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totalSales = 0
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a point-in-time copy of the whole ledger.
type Snapshot struct {
	NetProfit  decimal.Decimal
	TotalSales int64
	BestDay    string
	Notes      []string
	Feed       FeedSnapshot
}

// Snapshot copies the ledger under a single lock acquisition.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		NetProfit:  l.netProfit,
		TotalSales: l.totalSales,
		BestDay:    l.bestDay,
		Notes:      slices.Clone(l.notes),
		Feed:       l.feedSnapshotLocked(),
	}
}

// Equal reports whether two snapshots hold the same values.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.NetProfit.Equal(o.NetProfit) &&
		s.TotalSales == o.TotalSales &&
		s.BestDay == o.BestDay &&
		slices.Equal(s.Notes, o.Notes) &&
		s.Feed.Equal(o.Feed)
}
