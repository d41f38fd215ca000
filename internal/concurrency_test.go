// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package internal contains race detection tests that drive several
// packages together.
//
// Run with: go test -race -v ./internal/...
package internal

import (
	"context"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jeranaias/slushie-cfo/internal/assistant"
	"github.com/jeranaias/slushie-cfo/internal/commands"
	"github.com/jeranaias/slushie-cfo/internal/events"
	"github.com/jeranaias/slushie-cfo/internal/ledger"
	"github.com/jeranaias/slushie-cfo/internal/payments"
)

// =============================================================================
// TEST CONFIGURATION
// =============================================================================

const (
	// Number of concurrent goroutines for race tests
	raceConcurrency = 50
	// Number of iterations per goroutine
	raceIterations = 20
	// Timeout for race tests
	raceTimeout = 30 * time.Second
)

// =============================================================================
// LEDGER CONCURRENCY TESTS
// =============================================================================

// TestConcurrency_InterpreterAdds checks that concurrent increments are
// never lost.
func TestConcurrency_InterpreterAdds(t *testing.T) {
	l := ledger.New()
	rec := &events.Recorder{}
	interp := commands.New(l, commands.WithPublisher(rec))

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				if ctx.Err() != nil {
					return
				}
				if res := interp.Execute(ctx, "/add 1.25 to net profit"); res.Kind.IsError() {
					t.Errorf("add net profit failed: %s", res.Text)
				}
				if res := interp.Execute(ctx, "/add 2 to sales"); res.Kind.IsError() {
					t.Errorf("add sales failed: %s", res.Text)
				}
				_ = interp.Execute(ctx, "/status")
			}
		}()
	}
	wg.Wait()

	total := raceConcurrency * raceIterations
	wantProfit := decimal.RequireFromString("1.25").Mul(decimal.NewFromInt(int64(total)))
	if !l.NetProfit().Equal(wantProfit) {
		t.Errorf("NetProfit() = %s, want %s", l.NetProfit(), wantProfit)
	}
	if got, want := l.TotalSales(), int64(2*total); got != want {
		t.Errorf("TotalSales() = %d, want %d", got, want)
	}
	if got, want := len(rec.Events()), 2*total; got != want {
		t.Errorf("published %d events, want %d", got, want)
	}
}

// TestConcurrency_FeedUnderLoad runs manual syncs, applies, and the
// auto-syncer together and checks the daily total still matches the
// transaction list.
func TestConcurrency_FeedUnderLoad(t *testing.T) {
	l := ledger.New()
	feed := payments.NewFeed(payments.NewStubProvider(nil), l, nil)
	interp := commands.New(l, commands.WithFeed(feed))

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	if res := interp.Execute(ctx, "/venmo connect"); res.Kind.IsError() {
		t.Fatalf("connect failed: %s", res.Text)
	}
	if res := interp.Execute(ctx, "/venmo auto on"); res.Kind.IsError() {
		t.Fatalf("auto on failed: %s", res.Text)
	}

	syncCtx, stopSync := context.WithCancel(ctx)
	payments.NewAutoSyncer(feed).WithUnit(time.Millisecond).Start(syncCtx)

	lines := []string{"/venmo sync", "/venmo apply", "/venmo transactions", "/venmo", "/status"}
	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				if ctx.Err() != nil {
					return
				}
				_ = interp.Execute(ctx, lines[(idx+j)%len(lines)])
			}
		}(i)
	}
	wg.Wait()
	stopSync()

	state := l.Feed()
	sum := decimal.Zero
	for _, tx := range state.Transactions {
		sum = sum.Add(tx.Amount)
	}
	if !state.DailyTotal.Equal(sum) {
		t.Errorf("DailyTotal = %s, want sum of transactions %s", state.DailyTotal, sum)
	}
	if !state.Connected {
		t.Error("feed should still be connected")
	}
}

// =============================================================================
// SESSION CONCURRENCY TESTS
// =============================================================================

type echoService struct{}

func (echoService) Stream(ctx context.Context, systemPrompt string, history []assistant.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !yield("noted", nil) {
			return
		}
		yield(".", nil)
	}
}

// TestConcurrency_SessionTurns mixes commands and questions on one session
// and checks every exchange is recorded as a pair.
func TestConcurrency_SessionTurns(t *testing.T) {
	l := ledger.New()
	s := assistant.NewSession(commands.New(l), echoService{})

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				input := "how are sales?"
				if (idx+j)%2 == 0 {
					input = "/add 1 to sales"
				}
				for range s.Turn(ctx, input) {
				}
				_ = s.Profile()
			}
		}(i)
	}
	wg.Wait()

	if got, want := len(s.History()), 2*raceConcurrency*raceIterations; got != want {
		t.Errorf("history has %d messages, want %d", got, want)
	}
	if got, want := l.TotalSales(), int64(raceConcurrency*raceIterations/2); got != want {
		t.Errorf("TotalSales() = %d, want %d", got, want)
	}
}
