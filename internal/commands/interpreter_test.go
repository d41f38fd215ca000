// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/slushie-cfo/internal/events"
	"github.com/jeranaias/slushie-cfo/internal/ledger"
)

var testNow = time.Date(2025, 7, 4, 15, 4, 0, 0, time.Local)

func testClock() time.Time { return testNow }

func newTestInterpreter(opts ...Option) (*Interpreter, *ledger.Ledger) {
	l := ledger.New(ledger.WithClock(testClock))
	opts = append([]Option{WithClock(testClock)}, opts...)
	return New(l, opts...), l
}

func run(t *testing.T, in *Interpreter, input string) Result {
	t.Helper()
	return in.Execute(context.Background(), input)
}

func TestScenarioAddThenQuery(t *testing.T) {
	l := ledger.New()
	assert.Equal(t, "✅ Added $150.00 to net profits. New total: $150.00", Process("/add 150 to net profit", l))
	assert.Equal(t, "💰 **Current Net Profits:** $150.00", Process("/net profits", l))
}

func TestAddNetProfitProperty(t *testing.T) {
	in, l := newTestInterpreter()
	for _, n := range []string{"10", "-3.25", "0", "1234.56", "-2000"} {
		before := l.NetProfit()
		res := run(t, in, "/add "+n+" to net profit")
		require.Equal(t, KindOK, res.Kind, res.Text)
		want := before.Add(decimal.RequireFromString(n))
		if !l.NetProfit().Equal(want) {
			t.Errorf("after /add %s to net profit: NetProfit = %s, want %s", n, l.NetProfit(), want)
		}
	}
}

func TestSetTotalSales(t *testing.T) {
	in, l := newTestInterpreter()

	res := run(t, in, "/set total sales 1200")
	assert.Equal(t, KindOK, res.Kind)
	assert.Equal(t, "✅ Set total sales to: 1,200 units", res.Text)
	assert.Equal(t, int64(1200), l.TotalSales())

	for _, bad := range []string{"2.5", "-3", "many"} {
		before := l.Snapshot()
		res := run(t, in, "/set total sales "+bad)
		assert.Equal(t, KindParseError, res.Kind, "input %q", bad)
		assert.True(t, strings.HasPrefix(res.Text, FailureMarker), res.Text)
		assert.Contains(t, res.Text, "/set total sales <units>")
		assert.True(t, before.Equal(l.Snapshot()), "state changed for %q", bad)
	}
}

func TestAddSalesRejectsNegativeTotal(t *testing.T) {
	in, l := newTestInterpreter()
	require.Equal(t, KindOK, run(t, in, "/add 5 to sales").Kind)
	require.Equal(t, KindOK, run(t, in, "/add -2 to sales").Kind)
	assert.Equal(t, int64(3), l.TotalSales())

	res := run(t, in, "/add -4 to sales")
	assert.Equal(t, KindParseError, res.Kind)
	assert.Contains(t, res.Text, "cannot be negative")
	assert.Equal(t, int64(3), l.TotalSales())
	assert.False(t, res.Mutated)
}

func TestResetAllRestoresDefaults(t *testing.T) {
	in, l := newTestInterpreter()
	for _, line := range []string{
		"/add 99 to net profit",
		"/add 7 to sales",
		"/set best day Saturday",
		"/add note restock cups",
	} {
		require.Equal(t, KindOK, run(t, in, line).Kind, line)
	}

	res := run(t, in, "/reset all")
	assert.Equal(t, "🔄 All data reset to default values.", res.Text)

	s := l.Snapshot()
	assert.True(t, s.NetProfit.IsZero())
	assert.Equal(t, int64(0), s.TotalSales)
	assert.Equal(t, "None", s.BestDay)
	assert.Empty(t, s.Notes)
}

func TestResetScopes(t *testing.T) {
	in, l := newTestInterpreter()
	run(t, in, "/set net profit 40")
	run(t, in, "/set total sales 9")

	assert.Equal(t, "🔄 Net profits reset to $0.00", run(t, in, "/reset profits").Text)
	assert.Equal(t, int64(9), l.TotalSales())
	assert.Equal(t, "🔄 Total sales reset to 0 units", run(t, in, "/reset sales").Text)
	assert.Equal(t, int64(0), l.TotalSales())
}

func TestNotes(t *testing.T) {
	in, _ := newTestInterpreter()
	assert.Equal(t, "📝 No notes saved yet.", run(t, in, "/notes").Text)

	assert.Equal(t, "📝 **Note added:** buy more cups", run(t, in, "/add note buy   more  cups").Text)
	run(t, in, "/add note Call Supplier")

	first := run(t, in, "/notes").Text
	second := run(t, in, "/notes").Text
	assert.Equal(t, first, second)
	assert.Equal(t, "📝 **Saved Notes:**\n1. buy more cups\n2. Call Supplier", first)

	assert.Equal(t, "🗑️ All notes cleared.", run(t, in, "/clear notes").Text)
	assert.Equal(t, "📝 No notes saved yet.", run(t, in, "/notes").Text)
}

func TestNoteRowWinsOverNumericAdd(t *testing.T) {
	in, l := newTestInterpreter()
	res := run(t, in, "/add note to sales")
	assert.Equal(t, "add_note", res.Command)
	assert.Equal(t, []string{"to sales"}, l.Notes())
	assert.Equal(t, int64(0), l.TotalSales())
}

func TestBestDay(t *testing.T) {
	in, _ := newTestInterpreter()
	assert.Equal(t, "📅 **Best Performing Day:** None", run(t, in, "/best day").Text)
	assert.Equal(t, "✅ Set best performing day to: Saturday July 4th", run(t, in, "/set best day Saturday July 4th").Text)
	assert.Equal(t, "📅 **Best Performing Day:** Saturday July 4th", run(t, in, "/best day").Text)
}

func TestUnknownCommandLeavesState(t *testing.T) {
	in, l := newTestInterpreter()
	run(t, in, "/add 12 to net profit")
	before := l.Snapshot()

	for _, input := range []string{
		"/foo bar",
		"/add 5 to net profit now",
		"/add 5 to profit",
		"/net PROFITS",
		"/reset everything",
		"hello there",
	} {
		res := run(t, in, input)
		assert.Equal(t, KindUnknownCommand, res.Kind, "input %q", input)
		assert.Contains(t, res.Text, input)
		assert.Contains(t, res.Text, "/help")
		assert.True(t, strings.HasPrefix(res.Text, FailureMarker))
		assert.True(t, before.Equal(l.Snapshot()), "state changed for %q", input)
	}
}

func TestEmptyInput(t *testing.T) {
	in, _ := newTestInterpreter()
	for _, input := range []string{"", "   ", "\t\n"} {
		res := run(t, in, input)
		assert.Equal(t, KindEmptyInput, res.Kind)
		assert.True(t, strings.HasPrefix(res.Text, FailureMarker))
		assert.Contains(t, res.Text, "/help")
	}
}

func TestKeywordCaseInsensitive(t *testing.T) {
	in, _ := newTestInterpreter()
	assert.Equal(t, KindOK, run(t, in, "/NET profits").Kind)
	assert.Equal(t, KindOK, run(t, in, "/Status").Kind)
	assert.Equal(t, KindOK, run(t, in, "/CALCULATE MARKUP 10 50").Kind)
	assert.Equal(t, KindOK, run(t, in, "/venmo CONNECT").Kind)
}

func TestParseErrorNamesUsage(t *testing.T) {
	in, l := newTestInterpreter()
	before := l.Snapshot()

	res := run(t, in, "/add abc to net profit")
	assert.Equal(t, KindParseError, res.Kind)
	assert.Equal(t, "❌ Invalid amount. Please enter a valid number. Use: `/add <amount> to net profit`", res.Text)

	res = run(t, in, "/add 2.5 to sales")
	assert.Equal(t, KindParseError, res.Kind)
	assert.Contains(t, res.Text, "/add <units> to sales")

	res = run(t, in, "/profit margin lots 5")
	assert.Equal(t, "❌ Invalid numbers. Use: `/profit margin <revenue> <costs>`", res.Text)

	assert.True(t, before.Equal(l.Snapshot()))
}

func TestOutOfRangeAmountsAreParseErrors(t *testing.T) {
	in, l := newTestInterpreter()
	require.Equal(t, KindOK, run(t, in, "/add 1e12 to net profit").Kind)

	for _, input := range []string{
		"/add 1e5000000 to net profit",
		"/add -1e5000000 to net profit",
		"/set net profit 1e-5000000",
		"/add 1e16 to net profit",
		"/calculate markup 1e3000000 1e3000000",
		"/break even 1e900 2 1",
	} {
		before := l.Snapshot()
		done := make(chan Result, 1)
		go func() { done <- in.Execute(context.Background(), input) }()

		select {
		case res := <-done:
			assert.Equal(t, KindParseError, res.Kind, "input %q", input)
			assert.True(t, before.Equal(l.Snapshot()), "state changed for %q", input)
		case <-time.After(5 * time.Second):
			t.Fatalf("Execute(%q) did not return", input)
		}
	}

	res := run(t, in, "/net profits")
	assert.Equal(t, "💰 **Current Net Profits:** $1,000,000,000,000.00", res.Text)
}

func TestCalculators(t *testing.T) {
	in, _ := newTestInterpreter()
	tests := []struct {
		input string
		want  string
	}{
		{"/profit margin 1000 600", "💰 **Profit Margin Calculation:**\nRevenue: $1,000.00\nCosts: $600.00\nProfit: $400.00\nMargin: 40.0%"},
		{"/calculate margin 0 50", "💰 **Profit Margin:**\nRevenue: $0.00\nCosts: $50.00\nProfit: $-50.00\nMargin: 0.0%"},
		{"/break even 1000 0 5", "📊 **Break-Even Analysis:**\nFixed Costs: $1,000.00\nPrice per Unit: $0.00\nVariable Cost per Unit: $5.00\nContribution Margin: $-5.00\nBreak-Even Units: 0"},
		{"/break even 1000 5 2", "📊 **Break-Even Analysis:**\nFixed Costs: $1,000.00\nPrice per Unit: $5.00\nVariable Cost per Unit: $2.00\nContribution Margin: $3.00\nBreak-Even Units: 333"},
		{"/calculate markup 10 50", "🏷️ **Markup Calculation:**\nCost: $10.00\nMarkup: 50.0%\nMarkup Amount: $5.00\nSelling Price: $15.00"},
		{"/calculate discount 80 25", "🏷️ **Discount Calculation:**\nOriginal Price: $80.00\nDiscount: 25.0%\nDiscount Amount: $20.00\nFinal Price: $60.00"},
		{"/calculate tax 100 8.25", "💰 **Tax Calculation:**\nAmount: $100.00\nTax Rate: 8.3%\nTax Amount: $8.25\nTotal with Tax: $108.25"},
		{"/calculate tip 42 20", "💡 **Tip Calculation:**\nBill Amount: $42.00\nTip: 20.0%\nTip Amount: $8.40\nTotal with Tip: $50.40"},
		{"/calculate inventory 120 8", "📦 **Inventory Analysis:**\nCurrent Stock: 120.0 units\nDaily Usage: 8.0 units\nDays Remaining: 15.0 days"},
		{"/calculate inventory 50 0", "📦 **Inventory Analysis:**\nCurrent Stock: 50.0 units\nDaily Usage: 0.0 units\nDays Remaining: unlimited (no daily usage)"},
		{"/calculate roi 0 500", "📈 **ROI Calculation:**\nInvestment: $0.00\nReturns: $500.00\nROI: 0.0%"},
		{"/calculate roi 1000 1500", "📈 **ROI Calculation:**\nInvestment: $1,000.00\nReturns: $1,500.00\nROI: 50.0%"},
	}

	for _, tc := range tests {
		res := run(t, in, tc.input)
		if res.Kind != KindOK {
			t.Errorf("Execute(%q).Kind = %v, want ok (%s)", tc.input, res.Kind, res.Text)
			continue
		}
		if res.Text != tc.want {
			t.Errorf("Execute(%q) =\n%s\nwant\n%s", tc.input, res.Text, tc.want)
		}
		if res.Mutated {
			t.Errorf("Execute(%q).Mutated = true, calculators must not mutate", tc.input)
		}
	}
}

func TestCalculateFallbacks(t *testing.T) {
	in, _ := newTestInterpreter()

	res := run(t, in, "/calculate payroll 1 2")
	assert.Equal(t, KindUnknownCommand, res.Kind)
	assert.Equal(t, "❌ Unknown calculation. Available: margin, markup, discount, tax, tip, inventory, roi", res.Text)

	res = run(t, in, "/calculate")
	assert.Contains(t, res.Text, "Unknown calculation")

	res = run(t, in, "/calculate markup 10")
	assert.Equal(t, KindParseError, res.Kind)
	assert.Equal(t, "❌ Invalid numbers. Use: `/calculate markup <cost> <markup%>`", res.Text)
}

func TestStatus(t *testing.T) {
	in, _ := newTestInterpreter()
	run(t, in, "/set net profit 1234.5")
	run(t, in, "/add 3 to sales")
	run(t, in, "/add note hi")

	want := strings.Join([]string{
		"📊 **Current Status:**",
		"• Net Profits: $1,234.50",
		"• Total Sales: 3 units",
		"• Best Day: None",
		"• Notes: 1 saved",
		"• Venmo Connected: ❌ No",
		"• Auto Sync: ❌ Off",
	}, "\n")
	assert.Equal(t, want, run(t, in, "/status").Text)
}

func TestHelp(t *testing.T) {
	in, _ := newTestInterpreter()

	help := run(t, in, "/help")
	assert.Equal(t, KindOK, help.Kind)
	for _, cmd := range in.Registry().All() {
		assert.Contains(t, help.Text, cmd.Usage)
	}

	quick := run(t, in, "/commands")
	assert.Equal(t, KindOK, quick.Kind)
	assert.Contains(t, quick.Text, "`/venmo sync`")
	assert.Less(t, len(quick.Text), len(help.Text))
}

func TestVenmoStateMachine(t *testing.T) {
	in, l := newTestInterpreter()

	res := run(t, in, "/venmo sync")
	assert.Equal(t, KindInvalidState, res.Kind)
	assert.Contains(t, res.Text, "/venmo connect")

	res = run(t, in, "/venmo auto on")
	assert.Equal(t, KindInvalidState, res.Kind)

	res = run(t, in, "/venmo transactions")
	assert.Equal(t, KindOK, res.Kind)
	assert.Equal(t, "📭 No Venmo transactions found. Try `/venmo sync` to fetch transactions.", res.Text)

	res = run(t, in, "/venmo connect")
	assert.Equal(t, KindOK, res.Kind)
	assert.True(t, l.Connected())

	res = run(t, in, "/venmo connect")
	assert.Equal(t, KindInvalidState, res.Kind)
	assert.Contains(t, res.Text, "already connected")

	res = run(t, in, "/venmo sync")
	require.Equal(t, KindOK, res.Kind, res.Text)
	assert.Equal(t, "✅ **Venmo Sync Complete:**\nSynced 3 new transactions\nToday's Total: $15.50\nLast Sync: 15:04", res.Text)
	firstLen := len(l.Feed().Transactions)

	res = run(t, in, "/venmo sync")
	require.Equal(t, KindOK, res.Kind)
	f := l.Feed()
	assert.Greater(t, len(f.Transactions), firstLen)
	sum := decimal.Zero
	for _, tx := range f.Transactions {
		sum = sum.Add(tx.Amount)
	}
	assert.True(t, f.DailyTotal.Equal(sum))
	assert.Contains(t, res.Text, "Today's Total: $31.00")

	res = run(t, in, "/venmo auto on")
	assert.Equal(t, "✅ Auto-sync enabled. Venmo will sync every 5 minutes.", res.Text)
	assert.True(t, l.Feed().AutoSync)

	res = run(t, in, "/status")
	assert.Contains(t, res.Text, "• Venmo Connected: ✅ Yes")
	assert.Contains(t, res.Text, "• Auto Sync: ✅ On")

	res = run(t, in, "/venmo disconnect")
	assert.Equal(t, "🔌 Venmo disconnected successfully.", res.Text)
	f = l.Feed()
	assert.False(t, f.Connected)
	assert.False(t, f.AutoSync)
	assert.Empty(t, l.Credential())

	res = run(t, in, "/venmo transactions")
	assert.Equal(t, KindOK, res.Kind)
	assert.Contains(t, res.Text, "Blue Raspberry Slushie")
	assert.Contains(t, res.Text, "Total Today: $31.00")
}

func TestVenmoTransactionsShowsLastTen(t *testing.T) {
	in, _ := newTestInterpreter()
	run(t, in, "/venmo connect")
	for i := 0; i < 4; i++ {
		require.Equal(t, KindOK, run(t, in, "/venmo sync").Kind)
	}

	res := run(t, in, "/venmo transactions")
	assert.Equal(t, 10, strings.Count(res.Text, "\n• $"))
	assert.Contains(t, res.Text, "• $5.50 - Blue Raspberry Slushie (3:04 PM)")
	assert.Contains(t, res.Text, "Total Today: $62.00")
}

func TestVenmoIntervalAndApply(t *testing.T) {
	in, l := newTestInterpreter()

	res := run(t, in, "/venmo interval 10")
	assert.Equal(t, "✅ Venmo sync interval set to 10 minutes.", res.Text)
	assert.Equal(t, 10, l.Feed().SyncIntervalMinutes)

	res = run(t, in, "/venmo interval 7")
	assert.Equal(t, KindParseError, res.Kind)
	assert.Contains(t, res.Text, "1, 5, 10, 15, 30")
	assert.Equal(t, 10, l.Feed().SyncIntervalMinutes)

	for _, bad := range []string{"soon", "0", "-5", "60", "4294967301", "9223372036854775807"} {
		res = run(t, in, "/venmo interval "+bad)
		assert.Equal(t, KindParseError, res.Kind, "interval %q", bad)
		assert.Equal(t, 10, l.Feed().SyncIntervalMinutes, "interval %q", bad)
	}

	res = run(t, in, "/venmo apply")
	assert.Equal(t, KindInvalidState, res.Kind)

	run(t, in, "/venmo connect")
	run(t, in, "/venmo sync")
	run(t, in, "/set net profit 100")
	res = run(t, in, "/venmo apply")
	assert.Equal(t, "✅ Added $15.50 from Venmo to net profits. New total: $115.50", res.Text)
}

func TestVenmoFallbacks(t *testing.T) {
	in, _ := newTestInterpreter()

	res := run(t, in, "/venmo auto maybe")
	assert.Equal(t, KindParseError, res.Kind)
	assert.Equal(t, "❌ Use: `/venmo auto on` or `/venmo auto off`", res.Text)

	res = run(t, in, "/venmo dance")
	assert.Equal(t, KindUnknownCommand, res.Kind)
	assert.Contains(t, res.Text, "Venmo Commands")
	assert.Contains(t, res.Text, "/venmo disconnect")

	res = run(t, in, "/venmo")
	assert.Equal(t, KindUnknownCommand, res.Kind)
}

func TestMutationsPublishEvents(t *testing.T) {
	rec := &events.Recorder{}
	in, _ := newTestInterpreter(WithPublisher(rec))

	run(t, in, "/add 5 to net profit")
	run(t, in, "/net profits")
	run(t, in, "/add abc to net profit")
	run(t, in, "/set total sales 4")

	got := rec.Events()
	require.Len(t, got, 2)
	assert.Equal(t, "add_net_profit", got[0].Command)
	assert.Equal(t, "/add 5 to net profit", got[0].Input)
	assert.True(t, got[0].NetProfit.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "set_total_sales", got[1].Command)
	assert.Equal(t, int64(4), got[1].TotalSales)
}

func TestResultMutatedFlag(t *testing.T) {
	in, _ := newTestInterpreter()
	assert.True(t, run(t, in, "/add note x").Mutated)
	assert.False(t, run(t, in, "/notes").Mutated)
	assert.False(t, run(t, in, "/venmo sync").Mutated)
}
