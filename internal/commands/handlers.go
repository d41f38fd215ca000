// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/slushie-cfo/internal/calc"
	"github.com/jeranaias/slushie-cfo/internal/ledger"
	"github.com/jeranaias/slushie-cfo/internal/money"
)

// =============================================================================
// HELP
// =============================================================================

func handleHelp(ctx *Context, _ Args) Result {
	return okResult(GenerateHelpText(ctx.Registry))
}

func handleCommands(ctx *Context, _ Args) Result {
	return okResult(GenerateQuickHelp(ctx.Registry))
}

// =============================================================================
// BUSINESS METRICS
// =============================================================================

func handleNetProfits(ctx *Context, _ Args) Result {
	return okResult("💰 **Current Net Profits:** " + money.FormatCurrency(ctx.Ledger.NetProfit()))
}

func handleTotalSales(ctx *Context, _ Args) Result {
	return okResult("📊 **Total Sales:** " + money.FormatUnits(ctx.Ledger.TotalSales()) + " units")
}

func handleBestDay(ctx *Context, _ Args) Result {
	return okResult("📅 **Best Performing Day:** " + ctx.Ledger.BestDay())
}

func handleStatus(ctx *Context, _ Args) Result {
	return okResult(formatStatus(ctx.Ledger.Snapshot()))
}

func handleAddNetProfit(ctx *Context, args Args) Result {
	delta := args.Amount(0)
	total := ctx.Ledger.AddNetProfit(delta)
	return okResult(fmt.Sprintf("✅ Added %s to net profits. New total: %s",
		money.FormatCurrency(delta), money.FormatCurrency(total)))
}

func handleAddSales(ctx *Context, args Args) Result {
	delta := args.Units(0)
	total, err := ctx.Ledger.AddSales(delta)
	if errors.Is(err, ledger.ErrNegativeSales) {
		return negativeSales(ctx, "add_sales")
	}
	return okResult(fmt.Sprintf("✅ Added %s to total sales. New total: %s units",
		money.FormatUnits(delta), money.FormatUnits(total)))
}

func handleSetNetProfit(ctx *Context, args Args) Result {
	v := args.Amount(0)
	ctx.Ledger.SetNetProfit(v)
	return okResult("✅ Set net profits to: " + money.FormatCurrency(v))
}

func handleSetTotalSales(ctx *Context, args Args) Result {
	n := args.Units(0)
	if err := ctx.Ledger.SetTotalSales(n); errors.Is(err, ledger.ErrNegativeSales) {
		return negativeSales(ctx, "set_total_sales")
	}
	return okResult("✅ Set total sales to: " + money.FormatUnits(n) + " units")
}

func handleSetBestDay(ctx *Context, args Args) Result {
	day := args.Text(0)
	ctx.Ledger.SetBestDay(day)
	return okResult("✅ Set best performing day to: " + day)
}

func negativeSales(ctx *Context, name string) Result {
	text := FailureMarker + " Total sales cannot be negative."
	if cmd := ctx.Registry.Get(name); cmd != nil {
		text += " Use: `" + cmd.Usage + "`"
	}
	return parseError(text)
}

// =============================================================================
// NOTES
// =============================================================================

func handleAddNote(ctx *Context, args Args) Result {
	note := args.Text(0)
	ctx.Ledger.AddNote(note)
	return okResult("📝 **Note added:** " + note)
}

func handleNotes(ctx *Context, _ Args) Result {
	return okResult(formatNotes(ctx.Ledger.Notes()))
}

func handleClearNotes(ctx *Context, _ Args) Result {
	ctx.Ledger.ClearNotes()
	return okResult("🗑️ All notes cleared.")
}

// =============================================================================
// CALCULATORS
// =============================================================================

func handleProfitMargin(header string) Handler {
	return func(_ *Context, args Args) Result {
		return okResult(formatMargin(header, calc.ProfitMargin(args.Amount(0), args.Amount(1))))
	}
}

func handleBreakEven(_ *Context, args Args) Result {
	return okResult(formatBreakEven(calc.BreakEven(args.Amount(0), args.Amount(1), args.Amount(2))))
}

func handleMarkup(_ *Context, args Args) Result {
	return okResult(formatMarkup(calc.Markup(args.Amount(0), args.Amount(1))))
}

func handleDiscount(_ *Context, args Args) Result {
	return okResult(formatDiscount(calc.Discount(args.Amount(0), args.Amount(1))))
}

func handleTax(_ *Context, args Args) Result {
	return okResult(formatTax(calc.Tax(args.Amount(0), args.Amount(1))))
}

func handleTip(_ *Context, args Args) Result {
	return okResult(formatTip(calc.Tip(args.Amount(0), args.Amount(1))))
}

func handleInventory(_ *Context, args Args) Result {
	return okResult(formatInventory(calc.InventoryDaysRemaining(args.Amount(0), args.Amount(1))))
}

func handleROI(_ *Context, args Args) Result {
	return okResult(formatROI(calc.ROI(args.Amount(0), args.Amount(1))))
}

// calculationKinds lists the /calculate sub-commands for error messages.
var calculationKinds = []string{"margin", "markup", "discount", "tax", "tip", "inventory", "roi"}

// calculateFallback handles /calculate lines no row matched: a known kind
// with the wrong arguments gets its usage, anything else the list of kinds.
func calculateFallback(ctx *Context, tokens []string) (Result, bool) {
	if len(tokens) >= 2 {
		if cmd := ctx.Registry.Get("calculate_" + strings.ToLower(tokens[1])); cmd != nil {
			res := parseError(cmd.parseFailure())
			res.Command = cmd.Name
			return res, true
		}
	}
	return Result{
		Text: FailureMarker + " Unknown calculation. Available: " + strings.Join(calculationKinds, ", "),
		Kind: KindUnknownCommand,
	}, true
}

// =============================================================================
// DATA MANAGEMENT
// =============================================================================

func handleReset(scope string) Handler {
	return func(ctx *Context, _ Args) Result {
		switch scope {
		case "profits":
			ctx.Ledger.ResetProfits()
			return okResult("🔄 Net profits reset to " + money.FormatCurrency(ctx.Ledger.NetProfit()))
		case "sales":
			ctx.Ledger.ResetSales()
			return okResult("🔄 Total sales reset to " + money.FormatUnits(ctx.Ledger.TotalSales()) + " units")
		default:
			ctx.Ledger.ResetAll()
			return okResult("🔄 All data reset to default values.")
		}
	}
}

// =============================================================================
// VENMO
// =============================================================================

func handleVenmoConnect(ctx *Context, _ Args) Result {
	if err := ctx.Feed.Connect(ctx.Ctx); err != nil {
		return feedFailure(ctx, err)
	}
	f := ctx.Ledger.Feed()
	name := ctx.Feed.ProviderName()
	return okResult(fmt.Sprintf("✅ **%s Connected**\nAuto-sync is off (interval: %d minutes).\nUse `/venmo sync` to fetch transactions or `/venmo auto on` to sync automatically.",
		name, f.SyncIntervalMinutes))
}

func handleVenmoSync(ctx *Context, _ Args) Result {
	res, err := ctx.Feed.Sync(ctx.Ctx)
	if err != nil {
		return feedFailure(ctx, err)
	}
	return okResult(formatSync(ctx.Feed.ProviderName(), res, ctx.Ledger.Feed()))
}

func handleVenmoTransactions(ctx *Context, _ Args) Result {
	return okResult(formatTransactions(ctx.Feed.ProviderName(), ctx.Ledger.Feed()))
}

func handleVenmoAuto(on bool) Handler {
	return func(ctx *Context, _ Args) Result {
		if err := ctx.Feed.SetAutoSync(on); err != nil {
			return feedFailure(ctx, err)
		}
		if !on {
			return okResult("⏸️ Auto-sync disabled.")
		}
		minutes := ctx.Ledger.SyncSchedule().IntervalMinutes
		return okResult(fmt.Sprintf("✅ Auto-sync enabled. %s will sync every %d minutes.", ctx.Feed.ProviderName(), minutes))
	}
}

func handleVenmoInterval(ctx *Context, args Args) Result {
	n := args.Units(0)
	if int64(int(n)) != n {
		return feedFailure(ctx, ledger.ErrInvalidInterval)
	}
	if err := ctx.Feed.SetInterval(int(n)); err != nil {
		return feedFailure(ctx, err)
	}
	return okResult(fmt.Sprintf("✅ %s sync interval set to %d minutes.", ctx.Feed.ProviderName(), n))
}

func handleVenmoApply(ctx *Context, _ Args) Result {
	applied, total, err := ctx.Feed.ApplyToProfits()
	if err != nil {
		return feedFailure(ctx, err)
	}
	return okResult(fmt.Sprintf("✅ Added %s from %s to net profits. New total: %s",
		money.FormatCurrency(applied), ctx.Feed.ProviderName(), money.FormatCurrency(total)))
}

func handleVenmoDisconnect(ctx *Context, _ Args) Result {
	if err := ctx.Feed.Disconnect(ctx.Ctx); err != nil {
		return feedFailure(ctx, err)
	}
	return okResult("🔌 " + ctx.Feed.ProviderName() + " disconnected successfully.")
}

// venmoFallback handles /venmo lines no row matched.
func venmoFallback(ctx *Context, tokens []string) (Result, bool) {
	if len(tokens) >= 2 {
		switch strings.ToLower(tokens[1]) {
		case "auto":
			return parseError(FailureMarker + " Use: `/venmo auto on` or `/venmo auto off`"), true
		case "interval":
			return parseError(ctx.Registry.Get("venmo_interval").parseFailure()), true
		}
	}
	return Result{
		Text: FailureMarker + " Unknown Venmo command.\n\n" + GenerateCategoryHelp(ctx.Registry, "Venmo"),
		Kind: KindUnknownCommand,
	}, true
}

// feedFailure turns a payment feed error into a response.
func feedFailure(ctx *Context, err error) Result {
	name := ctx.Feed.ProviderName()
	switch {
	case errors.Is(err, ledger.ErrNotConnected):
		return invalidState(fmt.Sprintf("%s %s not connected. Use `/venmo connect` first.", FailureMarker, name))
	case errors.Is(err, ledger.ErrAlreadyConnected):
		return invalidState(fmt.Sprintf("%s %s is already connected. Use `/venmo disconnect` to disconnect.", FailureMarker, name))
	case errors.Is(err, ledger.ErrInvalidInterval):
		return parseError(fmt.Sprintf("%s Sync interval must be one of %s minutes.", FailureMarker, joinInts(ledger.SyncIntervals)))
	default:
		return invalidState(fmt.Sprintf("%s %s request failed: %v", FailureMarker, name, err))
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}

// =============================================================================
// FALLBACK MESSAGES
// =============================================================================

const emptyInputText = FailureMarker + " Invalid command. Type `/help` for available commands."

func unknownCommand(echo string) Result {
	return Result{
		Text: FailureMarker + " Unknown command: " + echo + "\nType `/help` for available commands.",
		Kind: KindUnknownCommand,
	}
}
