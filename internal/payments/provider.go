// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package payments connects the ledger's payment feed to a payment provider.
//
// # Key Types
//
//   - Provider: capability interface a payment integration implements
//   - StubProvider: deterministic provider returning canned Venmo records
//   - Feed: the only path that moves the ledger's feed between states
//   - AutoSyncer: background worker that syncs on the configured interval
//
// Swapping the Provider never changes Feed logic; the ledger enforces which
// transitions are legal in which state.
package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jeranaias/slushie-cfo/internal/ledger"
)

// TimeLayout is the clock format stamped on synced records.
const TimeLayout = "3:04 PM"

// Provider is a payment integration.
type Provider interface {
	// Name identifies the provider in responses and logs.
	Name() string

	// Connect authenticates and returns a credential for later calls.
	Connect(ctx context.Context) (string, error)

	// Sync fetches the transactions received since the previous sync.
	Sync(ctx context.Context, credential string) ([]ledger.Transaction, error)

	// Disconnect revokes the credential.
	Disconnect(ctx context.Context, credential string) error
}

// =============================================================================
// STUB PROVIDER
// =============================================================================

type cannedRecord struct {
	amount string
	note   string
}

var cannedBatch = []cannedRecord{
	{"5.50", "Blue Raspberry Slushie"},
	{"4.00", "Cherry Slushie"},
	{"6.00", "Large Strawberry"},
}

// StubProvider stands in for Venmo. Every sync returns the same three
// slushie sales stamped with the current time.
type StubProvider struct {
	now func() time.Time
}

// NewStubProvider creates a stub provider. A nil clock uses time.Now.
func NewStubProvider(now func() time.Time) *StubProvider {
	if now == nil {
		now = time.Now
	}
	return &StubProvider{now: now}
}

// Name implements Provider.
func (p *StubProvider) Name() string { return "Venmo" }

// Connect implements Provider. The credential is a random opaque token.
func (p *StubProvider) Connect(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "stub-" + uuid.New().String(), nil
}

// Sync implements Provider.
func (p *StubProvider) Sync(ctx context.Context, credential string) ([]ledger.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stamp := p.now().Format(TimeLayout)
	batch := make([]ledger.Transaction, 0, len(cannedBatch))
	for _, rec := range cannedBatch {
		batch = append(batch, ledger.Transaction{
			ID:     uuid.New().String(),
			Amount: decimal.RequireFromString(rec.amount),
			Note:   rec.note,
			Time:   stamp,
		})
	}
	return batch, nil
}

// Disconnect implements Provider.
func (p *StubProvider) Disconnect(ctx context.Context, credential string) error {
	return ctx.Err()
}
